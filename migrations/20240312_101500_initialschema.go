package migrations

import (
	"db_prog_object_migrator/internal/migrate"
	"db_prog_object_migrator/internal/operation"
)

func init() {
	migrate.Register(migrate.NewMigration("20240312_101500", "InitialSchema", func(b *operation.Builder) {
		b.CreateTable("public", "accounts").
			WithColumn(operation.Column{Name: "id", Type: "BIGINT", Identity: true}).
			WithColumn(operation.Column{Name: "email", Type: "TEXT"}).
			WithColumn(operation.Column{Name: "created_at", Type: "TIMESTAMPTZ", Default: "now()"}).
			WithPrimaryKey("pk_accounts", "id").
			WithUnique("uq_accounts_email", "email")
		b.CreateIndex("public", "accounts", "ix_accounts_created_at", false, "created_at")
	}, func(b *operation.Builder) {
		b.DropTable("public", "accounts")
	}))
}
