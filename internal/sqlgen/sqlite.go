package sqlgen

import "db_prog_object_migrator/internal/operation"

// SQLite generates SQLite batches. SQLite has no schema namespaces or stored
// routines; schemas are dropped from identifiers and routine operations are
// rejected.
type SQLite struct{}

func (SQLite) Generate(ops []operation.Operation) ([]string, error) {
	return generate(dialect{
		name:          "sqlite",
		quote:         doubleQuote,
		identity:      "",
		qualifySchema: false,
		routines:      false,
	}, ops)
}
