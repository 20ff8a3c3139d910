package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderPreservesInsertionOrder(t *testing.T) {
	b := NewBuilder()
	b.CreateTable("public", "t1")
	b.AddColumn("public", "t1", Column{Name: "c", Type: "TEXT"})
	b.CreateIndex("public", "t1", "ix_c", false, "c")
	b.Sql("VACUUM;")

	ops := b.Operations()
	require.Len(t, ops, 4)
	assert.Equal(t, KindCreateTable, ops[0].OpKind())
	assert.Equal(t, KindAddColumn, ops[1].OpKind())
	assert.Equal(t, KindCreateIndex, ops[2].OpKind())
	assert.Equal(t, KindRawSQL, ops[3].OpKind())
}

func TestCreateTableHandleMutatesAccumulatedOp(t *testing.T) {
	b := NewBuilder()
	tbl := b.CreateTable("public", "orders")
	tbl.WithColumn(Column{Name: "id", Type: "BIGINT", Identity: true}).
		WithColumn(Column{Name: "ref", Type: "TEXT", Nullable: true}).
		WithPrimaryKey("pk_orders", "id").
		WithUnique("uq_orders_ref", "ref").
		WithCheck("ck_orders_ref", "length(ref) > 0")

	ops := b.Operations()
	require.Len(t, ops, 1)

	got, ok := ops[0].(*CreateTableOp)
	require.True(t, ok)
	assert.Len(t, got.Columns, 2)
	require.NotNil(t, got.PrimaryKey)
	assert.Equal(t, []string{"id"}, got.PrimaryKey.Columns)
	assert.Len(t, got.Uniques, 1)
	assert.Len(t, got.Checks, 1)
}

func TestForeignKeyHandleChainsActions(t *testing.T) {
	b := NewBuilder()
	b.AddForeignKey("public", "orders", "fk_orders_accounts",
		[]string{"account_id"}, "public", "accounts", []string{"id"}).
		WithOnDelete(Cascade).
		WithOnUpdate(SetNull)

	ops := b.Operations()
	require.Len(t, ops, 1)

	fk, ok := ops[0].(*AddForeignKeyOp)
	require.True(t, ok)
	assert.Equal(t, Cascade, fk.OnDelete)
	assert.Equal(t, SetNull, fk.OnUpdate)
}

func TestBuilderNoValidation(t *testing.T) {
	// Duplicate names are accepted; the target engine rejects them later.
	b := NewBuilder()
	b.AddColumn("public", "t", Column{Name: "dup", Type: "TEXT"})
	b.AddColumn("public", "t", Column{Name: "dup", Type: "TEXT"})
	assert.Equal(t, 2, b.Len())
}
