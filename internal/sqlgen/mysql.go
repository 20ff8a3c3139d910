package sqlgen

import (
	"strings"

	"db_prog_object_migrator/internal/operation"
)

// MySQL generates MySQL/MariaDB batches. A "schema" maps to a MySQL database
// name in qualified identifiers.
type MySQL struct{}

func (MySQL) Generate(ops []operation.Operation) ([]string, error) {
	return generate(dialect{
		name:          "mysql",
		quote:         backtickQuote,
		identity:      "AUTO_INCREMENT",
		qualifySchema: true,
		routines:      true,
	}, ops)
}

func backtickQuote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
