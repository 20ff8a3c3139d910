// Package sqlgen provides engine-specific SQL generation for the abstract
// operation model. The operation model itself is engine-neutral; one
// generator per target engine turns it into executable batches, one batch
// per operation, in operation order, deterministically.
//
// Programmable-object definitions (views, routines, triggers) are authored
// as complete create-or-replace statements in the engine's own idiom, so for
// those operations every generator emits the definition text verbatim.
package sqlgen

import (
	"fmt"
	"strings"

	"db_prog_object_migrator/internal/operation"
)

// ForEngine returns the generator for a named engine.
func ForEngine(engine string) (Generator, error) {
	switch strings.ToLower(engine) {
	case "postgres":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("no sql generator for engine %q", engine)
	}
}

// Generator mirrors migrate.SQLGenerator; redeclared here so the package has
// no dependency on the orchestration layer.
type Generator interface {
	Generate(ops []operation.Operation) ([]string, error)
}

// dialect captures the handful of places engines disagree.
type dialect struct {
	name     string
	quote    func(string) string
	identity string
	// qualifySchema is false for engines without schema namespaces (SQLite);
	// object names are then emitted unqualified.
	qualifySchema bool
	// routines is false for engines without stored procedures/functions.
	routines bool
}

func generate(d dialect, ops []operation.Operation) ([]string, error) {
	batches := make([]string, 0, len(ops))
	for _, op := range ops {
		batch, err := generateOne(d, op)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func generateOne(d dialect, op operation.Operation) (string, error) {
	switch o := op.(type) {
	case *operation.CreateTableOp:
		return createTable(d, o), nil
	case operation.DropTableOp:
		return fmt.Sprintf("DROP TABLE %s;", d.qualified(o.Schema, o.Table)), nil
	case operation.AddColumnOp:
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", d.qualified(o.Schema, o.Table), columnDef(d, o.Column)), nil
	case operation.DropColumnOp:
		return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", d.qualified(o.Schema, o.Table), d.quote(o.Column)), nil
	case operation.AddPrimaryKeyOp:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);",
			d.qualified(o.Schema, o.Table), d.quote(o.Name), columnList(d, o.Columns)), nil
	case operation.DropPrimaryKeyOp:
		return dropConstraint(d, o.Schema, o.Table, o.Name), nil
	case operation.AddUniqueOp:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);",
			d.qualified(o.Schema, o.Table), d.quote(o.Name), columnList(d, o.Columns)), nil
	case operation.DropUniqueOp:
		return dropConstraint(d, o.Schema, o.Table, o.Name), nil
	case operation.AddCheckOp:
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);",
			d.qualified(o.Schema, o.Table), d.quote(o.Name), o.Expression), nil
	case operation.DropCheckOp:
		return dropConstraint(d, o.Schema, o.Table, o.Name), nil
	case operation.CreateIndexOp:
		unique := ""
		if o.Unique {
			unique = "UNIQUE "
		}
		return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
			unique, d.quote(o.Name), d.qualified(o.Schema, o.Table), columnList(d, o.Columns)), nil
	case operation.DropIndexOp:
		if d.name == "mysql" {
			return fmt.Sprintf("DROP INDEX %s ON %s;", d.quote(o.Name), d.qualified(o.Schema, o.Table)), nil
		}
		return fmt.Sprintf("DROP INDEX %s;", d.qualified(o.Schema, o.Name)), nil
	case *operation.AddForeignKeyOp:
		return addForeignKey(d, o), nil
	case operation.DropForeignKeyOp:
		if d.name == "mysql" {
			return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", d.qualified(o.Schema, o.Table), d.quote(o.Name)), nil
		}
		return dropConstraint(d, o.Schema, o.Table, o.Name), nil
	case operation.CreateOrAlterViewOp:
		return ensureTerminated(o.SQL), nil
	case operation.CreateOrAlterRoutineOp:
		if !d.routines {
			return "", fmt.Errorf("%s: stored routines are not supported", d.name)
		}
		return ensureTerminated(o.SQL), nil
	case operation.CreateOrAlterTriggerOp:
		return ensureTerminated(o.SQL), nil
	case operation.DropViewOp:
		return fmt.Sprintf("DROP VIEW IF EXISTS %s;", d.qualified(o.Schema, o.Name)), nil
	case operation.DropRoutineOp:
		if !d.routines {
			return "", fmt.Errorf("%s: stored routines are not supported", d.name)
		}
		kw := "FUNCTION"
		if o.Routine == operation.RoutineProcedure {
			kw = "PROCEDURE"
		}
		return fmt.Sprintf("DROP %s IF EXISTS %s;", kw, d.qualified(o.Schema, o.Name)), nil
	case operation.DropTriggerOp:
		if d.name == "postgres" {
			// Postgres scopes triggers to a table the operation does not
			// carry; authors drop triggers through a raw batch instead.
			return "", fmt.Errorf("postgres: drop trigger %s.%s requires a raw sql operation naming its table", o.Schema, o.Name)
		}
		return fmt.Sprintf("DROP TRIGGER IF EXISTS %s;", d.qualified(o.Schema, o.Name)), nil
	case operation.RawSQLOp:
		return o.SQL, nil
	default:
		return "", fmt.Errorf("%s: unsupported operation kind %d", d.name, op.OpKind())
	}
}

func createTable(d dialect, o *operation.CreateTableOp) string {
	parts := make([]string, 0, len(o.Columns)+1+len(o.Uniques)+len(o.Checks))
	for _, c := range o.Columns {
		parts = append(parts, columnDef(d, c))
	}
	if o.PrimaryKey != nil {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", d.quote(o.PrimaryKey.Name), columnList(d, o.PrimaryKey.Columns)))
	}
	for _, u := range o.Uniques {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", d.quote(u.Name), columnList(d, u.Columns)))
	}
	for _, c := range o.Checks {
		parts = append(parts, fmt.Sprintf("CONSTRAINT %s CHECK (%s)", d.quote(c.Name), c.Expression))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", d.qualified(o.Schema, o.Table), strings.Join(parts, ",\n  "))
}

func addForeignKey(d dialect, o *operation.AddForeignKeyOp) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.qualified(o.Schema, o.Table), d.quote(o.Name), columnList(d, o.Columns),
		d.qualified(o.RefSchema, o.RefTable), columnList(d, o.RefColumns))
	if o.OnDelete != "" && o.OnDelete != operation.NoAction {
		fmt.Fprintf(&sb, " ON DELETE %s", o.OnDelete)
	}
	if o.OnUpdate != "" && o.OnUpdate != operation.NoAction {
		fmt.Fprintf(&sb, " ON UPDATE %s", o.OnUpdate)
	}
	sb.WriteString(";")
	return sb.String()
}

func columnDef(d dialect, c operation.Column) string {
	var sb strings.Builder
	sb.WriteString(d.quote(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if c.Identity && d.identity != "" {
		sb.WriteString(" ")
		sb.WriteString(d.identity)
	}
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	return sb.String()
}

func dropConstraint(d dialect, schema, table, name string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", d.qualified(schema, table), d.quote(name))
}

func columnList(d dialect, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	return strings.Join(quoted, ", ")
}

func (d dialect) qualified(schema, name string) string {
	if schema == "" || !d.qualifySchema {
		return d.quote(name)
	}
	return d.quote(schema) + "." + d.quote(name)
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func ensureTerminated(sql string) string {
	trimmed := strings.TrimRight(sql, " \t\r\n")
	if strings.HasSuffix(trimmed, ";") {
		return trimmed
	}
	return trimmed + ";"
}
