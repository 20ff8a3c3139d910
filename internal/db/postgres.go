package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"db_prog_object_migrator/internal/migrate"
)

// PostgresAdapter speaks to PostgreSQL through the pgx stdlib driver.
// Cross-process mutual exclusion uses session-scoped advisory locks held on
// a dedicated connection for the duration of the migration run.
type PostgresAdapter struct {
	db    *sql.DB
	scope string
}

func openPostgres(dsn, scope string) (*PostgresAdapter, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxOpenConns(5)
	return &PostgresAdapter{db: db, scope: scope}, nil
}

func (a *PostgresAdapter) Engine() string { return "postgres" }

func (a *PostgresAdapter) Close() error { return a.db.Close() }

func (a *PostgresAdapter) Ping(ctx context.Context) error { return a.db.PingContext(ctx) }

func (a *PostgresAdapter) EnsureCreated(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+historyTable+` (
  scope TEXT NOT NULL,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  product_version TEXT NOT NULL DEFAULT '',
  applied_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (scope, id)
)`)
	if err != nil {
		return fmt.Errorf("ensure history table: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) AppliedIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id FROM `+historyTable+` WHERE scope = $1`, a.scope)
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

func (a *PostgresAdapter) Insert(ctx context.Context, id, name, productVersion string, appliedAt time.Time) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO `+historyTable+` (scope, id, name, product_version, applied_at) VALUES ($1, $2, $3, $4, $5)`,
		a.scope, id, name, productVersion, appliedAt)
	return err
}

func (a *PostgresAdapter) History(ctx context.Context, limit int) ([]HistoryRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, product_version, applied_at FROM `+historyTable+` WHERE scope = $1 ORDER BY applied_at DESC LIMIT $2`,
		a.scope, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (a *PostgresAdapter) ExecuteBatch(ctx context.Context, batch string, timeout time.Duration) error {
	execCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	_, err := a.db.ExecContext(execCtx, batch)
	return err
}

// Acquire takes a session advisory lock on a connection reserved for the
// holder. Blocks until the lock is available, per pg_advisory_lock semantics.
func (a *PostgresAdapter) Acquire(ctx context.Context, scope string) (migrate.Lock, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	key := advisoryKey(scope)
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	return &pgLock{conn: conn, key: key}, nil
}

type pgLock struct {
	conn *sql.Conn
	key  int64
}

func (l *pgLock) Release(ctx context.Context) error {
	_, err := l.conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, l.key)
	if closeErr := l.conn.Close(); err == nil {
		err = closeErr
	}
	return err
}

// advisoryKey folds a scope string into the int64 key space that
// pg_advisory_lock expects.
func advisoryKey(scope string) int64 {
	sum := sha256.Sum256([]byte(scope))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
