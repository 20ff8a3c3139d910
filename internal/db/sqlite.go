package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"db_prog_object_migrator/internal/migrate"
)

// SQLiteAdapter targets a local SQLite file through the pure-Go driver.
// SQLite has no server-side named locks, so mutual exclusion claims a row in
// a lock table; contenders fail fast instead of blocking.
type SQLiteAdapter struct {
	db    *sql.DB
	scope string
}

const sqliteLockTable = "prog_migration_lock"

func openSQLite(dsn, scope string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// The lock row protocol assumes a single connection per process.
	db.SetMaxOpenConns(1)
	return &SQLiteAdapter{db: db, scope: scope}, nil
}

func (a *SQLiteAdapter) Engine() string { return "sqlite" }

func (a *SQLiteAdapter) Close() error { return a.db.Close() }

func (a *SQLiteAdapter) Ping(ctx context.Context) error { return a.db.PingContext(ctx) }

func (a *SQLiteAdapter) EnsureCreated(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+historyTable+` (
  scope TEXT NOT NULL,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  product_version TEXT NOT NULL DEFAULT '',
  applied_at TIMESTAMP NOT NULL,
  PRIMARY KEY (scope, id)
)`)
	if err != nil {
		return fmt.Errorf("ensure history table: %w", err)
	}
	return nil
}

func (a *SQLiteAdapter) AppliedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id FROM `+historyTable+` WHERE scope = ?`, a.scope)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan applied id: %w", err)
		}
		applied[id] = struct{}{}
	}
	return applied, rows.Err()
}

func (a *SQLiteAdapter) Insert(ctx context.Context, id, name, productVersion string, appliedAt time.Time) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO `+historyTable+` (scope, id, name, product_version, applied_at) VALUES (?, ?, ?, ?, ?)`,
		a.scope, id, name, productVersion, appliedAt)
	return err
}

func (a *SQLiteAdapter) History(ctx context.Context, limit int) ([]HistoryRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, product_version, applied_at FROM `+historyTable+` WHERE scope = ? ORDER BY applied_at DESC LIMIT ?`,
		a.scope, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (a *SQLiteAdapter) ExecuteBatch(ctx context.Context, batch string, timeout time.Duration) error {
	execCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	_, err := a.db.ExecContext(execCtx, batch)
	return err
}

func (a *SQLiteAdapter) Acquire(ctx context.Context, scope string) (migrate.Lock, error) {
	_, err := a.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+sqliteLockTable+` (
  scope TEXT PRIMARY KEY,
  acquired_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		return nil, fmt.Errorf("ensure lock table: %w", err)
	}
	res, err := a.db.ExecContext(ctx,
		`INSERT INTO `+sqliteLockTable+` (scope, acquired_at) VALUES (?, ?) ON CONFLICT (scope) DO NOTHING`,
		scope, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("claim lock row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.New("migration lock already held")
	}
	return &sqliteLock{db: a.db, scope: scope}, nil
}

type sqliteLock struct {
	db    *sql.DB
	scope string
}

func (l *sqliteLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM `+sqliteLockTable+` WHERE scope = ?`, l.scope)
	return err
}
