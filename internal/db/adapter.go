// Package db provides per-engine adapters that implement the migration
// collaborator contracts (history repository, lock provider, executor)
// against a live database.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"db_prog_object_migrator/internal/migrate"
)

// Adapter is one engine-specific connection implementing every collaborator
// the Migrator needs, plus history inspection for the status surfaces.
type Adapter interface {
	migrate.HistoryRepository
	migrate.LockProvider
	migrate.Executor

	Engine() string
	Ping(ctx context.Context) error
	// History returns recent applied-migration rows, newest first.
	History(ctx context.Context, limit int) ([]HistoryRow, error)
	Close() error
}

// Open builds an adapter for the given engine and DSN. scope partitions the
// history rows; an empty scope falls back to the migrator's default.
func Open(engine, dsn, scope string) (Adapter, error) {
	if scope == "" {
		scope = migrate.DefaultLockScope
	}
	switch strings.ToLower(engine) {
	case "postgres":
		return openPostgres(dsn, scope)
	case "mysql":
		return openMySQL(dsn, scope)
	case "sqlite":
		return openSQLite(dsn, scope)
	default:
		return nil, fmt.Errorf("unsupported engine %q", engine)
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
