// Package operation defines the engine-neutral schema change model.
//
// Every schema change a migration can express is one of a closed set of
// operation variants. Operations are pure value objects: they identify the
// target object and carry the structural delta, nothing else. Generating
// executable SQL from them is the job of an engine-specific generator.
package operation

// Kind discriminates the closed set of operation variants.
type Kind int

const (
	KindCreateTable Kind = iota
	KindDropTable
	KindAddColumn
	KindDropColumn
	KindAddPrimaryKey
	KindDropPrimaryKey
	KindAddUnique
	KindDropUnique
	KindAddCheck
	KindDropCheck
	KindCreateIndex
	KindDropIndex
	KindAddForeignKey
	KindDropForeignKey
	KindCreateOrAlterView
	KindDropView
	KindCreateOrAlterRoutine
	KindDropRoutine
	KindCreateOrAlterTrigger
	KindDropTrigger
	KindRawSQL
)

// RoutineKind distinguishes the flavors of CreateOrAlterRoutine/DropRoutine.
type RoutineKind int

const (
	RoutineProcedure RoutineKind = iota
	RoutineScalarFunction
	RoutineTableFunction
)

// ReferentialAction is a foreign key ON DELETE / ON UPDATE rule.
type ReferentialAction string

const (
	NoAction   ReferentialAction = "NO ACTION"
	Cascade    ReferentialAction = "CASCADE"
	SetNull    ReferentialAction = "SET NULL"
	SetDefault ReferentialAction = "SET DEFAULT"
	Restrict   ReferentialAction = "RESTRICT"
)

// Operation is one abstract schema change. Implementations are the variant
// structs below; consumers dispatch on OpKind and type-assert.
type Operation interface {
	OpKind() Kind
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
	Identity bool
}

// PrimaryKey names a table's primary key constraint and its columns.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// Unique names a unique constraint and its columns.
type Unique struct {
	Name    string
	Columns []string
}

// Check names a check constraint and its expression.
type Check struct {
	Name       string
	Expression string
}

// CreateTableOp creates a table. It is the one composite operation: the
// builder returns it by pointer so the migration can attach columns and
// constraints before Up returns. Once handed to a generator it is read-only.
type CreateTableOp struct {
	Schema     string
	Table      string
	Columns    []Column
	PrimaryKey *PrimaryKey
	Uniques    []Unique
	Checks     []Check
}

func (o *CreateTableOp) OpKind() Kind { return KindCreateTable }

// WithColumn appends a column and returns the op for chaining.
func (o *CreateTableOp) WithColumn(c Column) *CreateTableOp {
	o.Columns = append(o.Columns, c)
	return o
}

// WithPrimaryKey sets the primary key constraint.
func (o *CreateTableOp) WithPrimaryKey(name string, columns ...string) *CreateTableOp {
	o.PrimaryKey = &PrimaryKey{Name: name, Columns: columns}
	return o
}

// WithUnique appends a unique constraint.
func (o *CreateTableOp) WithUnique(name string, columns ...string) *CreateTableOp {
	o.Uniques = append(o.Uniques, Unique{Name: name, Columns: columns})
	return o
}

// WithCheck appends a check constraint.
func (o *CreateTableOp) WithCheck(name, expression string) *CreateTableOp {
	o.Checks = append(o.Checks, Check{Name: name, Expression: expression})
	return o
}

type DropTableOp struct {
	Schema string
	Table  string
}

func (o DropTableOp) OpKind() Kind { return KindDropTable }

type AddColumnOp struct {
	Schema string
	Table  string
	Column Column
}

func (o AddColumnOp) OpKind() Kind { return KindAddColumn }

type DropColumnOp struct {
	Schema string
	Table  string
	Column string
}

func (o DropColumnOp) OpKind() Kind { return KindDropColumn }

type AddPrimaryKeyOp struct {
	Schema  string
	Table   string
	Name    string
	Columns []string
}

func (o AddPrimaryKeyOp) OpKind() Kind { return KindAddPrimaryKey }

type DropPrimaryKeyOp struct {
	Schema string
	Table  string
	Name   string
}

func (o DropPrimaryKeyOp) OpKind() Kind { return KindDropPrimaryKey }

type AddUniqueOp struct {
	Schema  string
	Table   string
	Name    string
	Columns []string
}

func (o AddUniqueOp) OpKind() Kind { return KindAddUnique }

type DropUniqueOp struct {
	Schema string
	Table  string
	Name   string
}

func (o DropUniqueOp) OpKind() Kind { return KindDropUnique }

type AddCheckOp struct {
	Schema     string
	Table      string
	Name       string
	Expression string
}

func (o AddCheckOp) OpKind() Kind { return KindAddCheck }

type DropCheckOp struct {
	Schema string
	Table  string
	Name   string
}

func (o DropCheckOp) OpKind() Kind { return KindDropCheck }

type CreateIndexOp struct {
	Schema  string
	Table   string
	Name    string
	Unique  bool
	Columns []string
}

func (o CreateIndexOp) OpKind() Kind { return KindCreateIndex }

type DropIndexOp struct {
	Schema string
	Table  string
	Name   string
}

func (o DropIndexOp) OpKind() Kind { return KindDropIndex }

// AddForeignKeyOp is returned by pointer from the builder so referential
// actions can be attached after the initial call.
type AddForeignKeyOp struct {
	Schema     string
	Table      string
	Name       string
	Columns    []string
	RefSchema  string
	RefTable   string
	RefColumns []string
	OnDelete   ReferentialAction
	OnUpdate   ReferentialAction
}

func (o *AddForeignKeyOp) OpKind() Kind { return KindAddForeignKey }

// WithOnDelete sets the ON DELETE action and returns the op for chaining.
func (o *AddForeignKeyOp) WithOnDelete(a ReferentialAction) *AddForeignKeyOp {
	o.OnDelete = a
	return o
}

// WithOnUpdate sets the ON UPDATE action and returns the op for chaining.
func (o *AddForeignKeyOp) WithOnUpdate(a ReferentialAction) *AddForeignKeyOp {
	o.OnUpdate = a
	return o
}

type DropForeignKeyOp struct {
	Schema string
	Table  string
	Name   string
}

func (o DropForeignKeyOp) OpKind() Kind { return KindDropForeignKey }

type CreateOrAlterViewOp struct {
	Schema string
	Name   string
	SQL    string
}

func (o CreateOrAlterViewOp) OpKind() Kind { return KindCreateOrAlterView }

type DropViewOp struct {
	Schema string
	Name   string
}

func (o DropViewOp) OpKind() Kind { return KindDropView }

type CreateOrAlterRoutineOp struct {
	Schema  string
	Name    string
	Routine RoutineKind
	SQL     string
}

func (o CreateOrAlterRoutineOp) OpKind() Kind { return KindCreateOrAlterRoutine }

type DropRoutineOp struct {
	Schema  string
	Name    string
	Routine RoutineKind
}

func (o DropRoutineOp) OpKind() Kind { return KindDropRoutine }

type CreateOrAlterTriggerOp struct {
	Schema string
	Name   string
	SQL    string
}

func (o CreateOrAlterTriggerOp) OpKind() Kind { return KindCreateOrAlterTrigger }

type DropTriggerOp struct {
	Schema string
	Name   string
}

func (o DropTriggerOp) OpKind() Kind { return KindDropTrigger }

// RawSQLOp carries a verbatim SQL batch. Escape hatch for anything the typed
// variants cannot express.
type RawSQLOp struct {
	SQL string
}

func (o RawSQLOp) OpKind() Kind { return KindRawSQL }
