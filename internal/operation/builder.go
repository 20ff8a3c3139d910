package operation

// Builder accumulates operations in insertion order while a migration's Up
// or Down function runs. It performs no validation: duplicate names or
// unsatisfiable deltas surface later as SQL errors from the target engine.
type Builder struct {
	ops []Operation
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Operations returns the accumulated list in the order the builder methods
// were called. The returned slice must be treated as read-only.
func (b *Builder) Operations() []Operation {
	return b.ops
}

// Len reports how many operations have been accumulated.
func (b *Builder) Len() int {
	return len(b.ops)
}

func (b *Builder) append(op Operation) {
	b.ops = append(b.ops, op)
}

// CreateTable appends a create-table operation and returns it so the caller
// can attach columns and constraints before the migration function returns.
func (b *Builder) CreateTable(schema, table string) *CreateTableOp {
	op := &CreateTableOp{Schema: schema, Table: table}
	b.append(op)
	return op
}

func (b *Builder) DropTable(schema, table string) {
	b.append(DropTableOp{Schema: schema, Table: table})
}

func (b *Builder) AddColumn(schema, table string, column Column) {
	b.append(AddColumnOp{Schema: schema, Table: table, Column: column})
}

func (b *Builder) DropColumn(schema, table, column string) {
	b.append(DropColumnOp{Schema: schema, Table: table, Column: column})
}

func (b *Builder) AddPrimaryKey(schema, table, name string, columns ...string) {
	b.append(AddPrimaryKeyOp{Schema: schema, Table: table, Name: name, Columns: columns})
}

func (b *Builder) DropPrimaryKey(schema, table, name string) {
	b.append(DropPrimaryKeyOp{Schema: schema, Table: table, Name: name})
}

func (b *Builder) AddUnique(schema, table, name string, columns ...string) {
	b.append(AddUniqueOp{Schema: schema, Table: table, Name: name, Columns: columns})
}

func (b *Builder) DropUnique(schema, table, name string) {
	b.append(DropUniqueOp{Schema: schema, Table: table, Name: name})
}

func (b *Builder) AddCheck(schema, table, name, expression string) {
	b.append(AddCheckOp{Schema: schema, Table: table, Name: name, Expression: expression})
}

func (b *Builder) DropCheck(schema, table, name string) {
	b.append(DropCheckOp{Schema: schema, Table: table, Name: name})
}

func (b *Builder) CreateIndex(schema, table, name string, unique bool, columns ...string) {
	b.append(CreateIndexOp{Schema: schema, Table: table, Name: name, Unique: unique, Columns: columns})
}

func (b *Builder) DropIndex(schema, table, name string) {
	b.append(DropIndexOp{Schema: schema, Table: table, Name: name})
}

// AddForeignKey appends a foreign key operation and returns it so referential
// actions can be chained on.
func (b *Builder) AddForeignKey(schema, table, name string, columns []string, refSchema, refTable string, refColumns []string) *AddForeignKeyOp {
	op := &AddForeignKeyOp{
		Schema:     schema,
		Table:      table,
		Name:       name,
		Columns:    columns,
		RefSchema:  refSchema,
		RefTable:   refTable,
		RefColumns: refColumns,
		OnDelete:   NoAction,
		OnUpdate:   NoAction,
	}
	b.append(op)
	return op
}

func (b *Builder) DropForeignKey(schema, table, name string) {
	b.append(DropForeignKeyOp{Schema: schema, Table: table, Name: name})
}

func (b *Builder) CreateOrAlterView(schema, name, sql string) {
	b.append(CreateOrAlterViewOp{Schema: schema, Name: name, SQL: sql})
}

func (b *Builder) DropView(schema, name string) {
	b.append(DropViewOp{Schema: schema, Name: name})
}

func (b *Builder) CreateOrAlterRoutine(schema, name string, routine RoutineKind, sql string) {
	b.append(CreateOrAlterRoutineOp{Schema: schema, Name: name, Routine: routine, SQL: sql})
}

func (b *Builder) DropRoutine(schema, name string, routine RoutineKind) {
	b.append(DropRoutineOp{Schema: schema, Name: name, Routine: routine})
}

func (b *Builder) CreateOrAlterTrigger(schema, name, sql string) {
	b.append(CreateOrAlterTriggerOp{Schema: schema, Name: name, SQL: sql})
}

func (b *Builder) DropTrigger(schema, name string) {
	b.append(DropTriggerOp{Schema: schema, Name: name})
}

// Sql appends a verbatim SQL batch.
func (b *Builder) Sql(sql string) {
	b.append(RawSQLOp{SQL: sql})
}
