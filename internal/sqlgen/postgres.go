package sqlgen

import "db_prog_object_migrator/internal/operation"

// Postgres generates PostgreSQL batches. Trigger definitions require
// PostgreSQL 14+ for CREATE OR REPLACE TRIGGER.
type Postgres struct{}

func (Postgres) Generate(ops []operation.Operation) ([]string, error) {
	return generate(dialect{
		name:          "postgres",
		quote:         doubleQuote,
		identity:      "GENERATED BY DEFAULT AS IDENTITY",
		qualifySchema: true,
		routines:      true,
	}, ops)
}
