package asset

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// HashSQL computes the drift-detection hash of a SQL definition. The text is
// normalized first (trim, CRLF and lone CR to LF, per-line trailing
// whitespace stripped, trim again) so line-ending noise does not register as
// drift; any other byte difference changes the hash. SHA-256 over the UTF-8
// bytes, uppercase hex.
func HashSQL(sql string) string {
	normalized := normalizeSQL(sql)
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%X", sum)
}

func normalizeSQL(sql string) string {
	s := strings.TrimSpace(sql)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
