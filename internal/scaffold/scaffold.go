// Package scaffold renders diff results into new migration unit source files
// and maintains the snapshot and manifest that record each scaffold.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"db_prog_object_migrator/internal/operation"
)

// DefaultName is used when sanitizing the requested migration name leaves
// nothing behind.
const DefaultName = "Migration"

// idFormat yields second-granular, lexicographically sortable migration IDs.
const idFormat = "20060102_150405"

// NewID returns a migration ID for the given moment in UTC.
func NewID(now time.Time) string {
	return now.UTC().Format(idFormat)
}

// SanitizeName reduces a human migration label to an identifier-safe string,
// keeping letters and digits only. An empty result falls back to DefaultName.
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return DefaultName
	}
	return sb.String()
}

// ScaffoldToFile writes a new migration unit source file under dir, creating
// the directory if needed. The rendered Up body makes one builder call per
// operation, in input order. Down is left a no-op: this tool never generates
// automatic rollback of programmable-object changes. The snapshot and
// manifest are not touched here; callers sequence those writes themselves.
func ScaffoldToFile(dir, name string, ops []operation.Operation) (string, error) {
	return scaffoldAt(dir, name, ops, time.Now())
}

func scaffoldAt(dir, name string, ops []operation.Operation, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations directory: %w", err)
	}

	id := NewID(now)
	safeName := SanitizeName(name)
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.go", id, strings.ToLower(safeName)))

	src, err := render(id, safeName, ops)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("migration file already exists: %s", path)
		}
		return "", fmt.Errorf("write migration file: %w", err)
	}
	if _, err := f.WriteString(src); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write migration file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write migration file: %w", err)
	}
	return path, nil
}

// idFromPath recovers the migration ID from a scaffolded file path. The file
// stem is "<yyyyMMdd>_<HHmmss>_<lowername>".
func idFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(base, "_", 3)
	if len(parts) >= 2 {
		return parts[0] + "_" + parts[1]
	}
	return base
}

func render(id, name string, ops []operation.Operation) (string, error) {
	var body strings.Builder
	for _, op := range ops {
		call, err := renderCall(op)
		if err != nil {
			return "", err
		}
		body.WriteString("\t\t")
		body.WriteString(call)
		body.WriteString("\n")
	}

	var sb strings.Builder
	sb.WriteString("// Code generated by prog add; authored thereafter by hand if needed.\n\n")
	sb.WriteString("package migrations\n\n")
	sb.WriteString("import (\n")
	sb.WriteString("\t\"db_prog_object_migrator/internal/migrate\"\n")
	sb.WriteString("\t\"db_prog_object_migrator/internal/operation\"\n")
	sb.WriteString(")\n\n")
	sb.WriteString("func init() {\n")
	sb.WriteString(fmt.Sprintf("\tmigrate.Register(migrate.NewMigration(%q, %q, func(b *operation.Builder) {\n", id, name))
	sb.WriteString(body.String())
	sb.WriteString("\t}, nil))\n")
	sb.WriteString("}\n")
	return sb.String(), nil
}

func renderCall(op operation.Operation) (string, error) {
	switch o := op.(type) {
	case operation.CreateOrAlterViewOp:
		return fmt.Sprintf("b.CreateOrAlterView(%q, %q, %q)", o.Schema, o.Name, o.SQL), nil
	case operation.CreateOrAlterRoutineOp:
		return fmt.Sprintf("b.CreateOrAlterRoutine(%q, %q, %s, %q)", o.Schema, o.Name, routineLiteral(o.Routine), o.SQL), nil
	case operation.CreateOrAlterTriggerOp:
		return fmt.Sprintf("b.CreateOrAlterTrigger(%q, %q, %q)", o.Schema, o.Name, o.SQL), nil
	case operation.RawSQLOp:
		return fmt.Sprintf("b.Sql(%q)", o.SQL), nil
	default:
		// The differ only produces the four kinds above; anything else means
		// a caller wired an unsupported operation into the scaffolder.
		return "", fmt.Errorf("cannot scaffold operation kind %d", op.OpKind())
	}
}

func routineLiteral(k operation.RoutineKind) string {
	switch k {
	case operation.RoutineScalarFunction:
		return "operation.RoutineScalarFunction"
	case operation.RoutineTableFunction:
		return "operation.RoutineTableFunction"
	default:
		return "operation.RoutineProcedure"
	}
}
