package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"db_prog_object_migrator/internal/migrate"
)

// MySQLAdapter speaks to MySQL/MariaDB. Mutual exclusion uses GET_LOCK on a
// dedicated connection; the named lock is session-scoped and survives until
// released or the connection drops.
type MySQLAdapter struct {
	db    *sql.DB
	scope string
}

func openMySQL(dsn, scope string) (*MySQLAdapter, error) {
	// Validate the DSN early so misconfiguration fails with an actionable
	// error instead of a connect timeout.
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxOpenConns(5)
	return &MySQLAdapter{db: db, scope: scope}, nil
}

func (a *MySQLAdapter) Engine() string { return "mysql" }

func (a *MySQLAdapter) Close() error { return a.db.Close() }

func (a *MySQLAdapter) Ping(ctx context.Context) error { return a.db.PingContext(ctx) }

func (a *MySQLAdapter) EnsureCreated(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+historyTable+` (
  scope VARCHAR(255) NOT NULL,
  id VARCHAR(255) NOT NULL,
  name VARCHAR(255) NOT NULL,
  product_version VARCHAR(255) NOT NULL DEFAULT '',
  applied_at DATETIME(6) NOT NULL,
  PRIMARY KEY (scope, id)
)`)
	if err != nil {
		return fmt.Errorf("ensure history table: %w", err)
	}
	return nil
}

func (a *MySQLAdapter) AppliedIDs(ctx context.Context) (map[string]struct{}, error) {
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

func (a *MySQLAdapter) Insert(ctx context.Context, id, name, productVersion string, appliedAt time.Time) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO `+historyTable+` (scope, id, name, product_version, applied_at) VALUES (?, ?, ?, ?, ?)`,
		a.scope, id, name, productVersion, appliedAt)
	return err
}

func (a *MySQLAdapter) History(ctx context.Context, limit int) ([]HistoryRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, product_version, applied_at FROM `+historyTable+` WHERE scope = ? ORDER BY applied_at DESC LIMIT ?`,
		a.scope, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistory(rows)
}

func (a *MySQLAdapter) ExecuteBatch(ctx context.Context, batch string, timeout time.Duration) error {
	execCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	_, err := a.db.ExecContext(execCtx, batch)
	return err
}

func (a *MySQLAdapter) Acquire(ctx context.Context, scope string) (migrate.Lock, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, scope, lockWaitSeconds).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("get lock: %w", err)
	}
	if !got.Valid || got.Int64 != 1 {
		_ = conn.Close()
		return nil, errors.New("could not acquire migration lock")
	}
	return &mysqlLock{conn: conn, name: scope}, nil
}

type mysqlLock struct {
	conn *sql.Conn
	name string
}

func (l *mysqlLock) Release(ctx context.Context) error {
	_, err := l.conn.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, l.name)
	if closeErr := l.conn.Close(); err == nil {
		err = closeErr
	}
	return err
}
