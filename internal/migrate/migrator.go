package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"db_prog_object_migrator/internal/operation"
)

// DefaultLockScope is the lock name used when Options does not set one.
const DefaultLockScope = "ProgObjectMigrator.Migrations"

// DefaultCommandTimeout bounds each SQL batch execution.
const DefaultCommandTimeout = 60 * time.Second

// Options configures a Migrator.
type Options struct {
	// LockScope names the cross-process lock; defaults to DefaultLockScope.
	// History and lock are partitioned per scope, so one database can host
	// several independent migration histories.
	LockScope string

	// CommandTimeout bounds each batch execution; defaults to
	// DefaultCommandTimeout.
	CommandTimeout time.Duration

	// ProductVersion is recorded with each applied migration.
	ProductVersion string

	// Logger receives per-unit progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes a successful Migrate call so callers can report "up to
// date" distinctly from "applied N".
type Result struct {
	Applied []string
	Skipped int
}

// UpToDate reports whether the run applied nothing.
func (r Result) UpToDate() bool { return len(r.Applied) == 0 }

// Migrator orchestrates history, locking, generation and execution. It holds
// no in-process locks; cross-process mutual exclusion is entirely the lock
// provider's job.
type Migrator struct {
	gen     SQLGenerator
	history HistoryRepository
	locks   LockProvider
	exec    Executor
	opts    Options
}

// New builds a Migrator. All four collaborators are required.
func New(gen SQLGenerator, history HistoryRepository, locks LockProvider, exec Executor, opts Options) *Migrator {
	if opts.LockScope == "" {
		opts.LockScope = DefaultLockScope
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Migrator{gen: gen, history: history, locks: locks, exec: exec, opts: opts}
}

// Migrate applies every unit not yet recorded in history, in ascending ID
// order regardless of the order units are supplied in. Already-applied IDs
// are skipped without invoking Up. Any failure propagates immediately: the
// in-flight unit stays unrecorded (a later run retries it from its first
// batch) and no further units run. The lock is released on every exit path.
func (m *Migrator) Migrate(ctx context.Context, units []Migration) (Result, error) {
	var res Result

	if err := m.history.EnsureCreated(ctx); err != nil {
		return res, fmt.Errorf("ensure history storage: %w", err)
	}

	lock, err := m.locks.Acquire(ctx, m.opts.LockScope)
	if err != nil {
		return res, fmt.Errorf("acquire migration lock %q: %w", m.opts.LockScope, err)
	}
	defer func() {
		if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			m.opts.Logger.Error("migration lock release failed", "scope", m.opts.LockScope, "error", relErr)
		}
	}()

	applied, err := m.history.AppliedIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("read applied migrations: %w", err)
	}

	ordered := make([]Migration, len(units))
	copy(ordered, units)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	for _, unit := range ordered {
		if _, ok := applied[unit.ID()]; ok {
			res.Skipped++
			continue
		}
		if err := m.applyUnit(ctx, unit); err != nil {
			return res, err
		}
		res.Applied = append(res.Applied, unit.ID())
	}
	return res, nil
}

func (m *Migrator) applyUnit(ctx context.Context, unit Migration) error {
	b := operation.NewBuilder()
	unit.Up(b)

	batches, err := m.gen.Generate(b.Operations())
	if err != nil {
		return fmt.Errorf("generate sql for migration %s: %w", unit.ID(), err)
	}

	m.opts.Logger.Info("applying migration",
		"id", unit.ID(), "name", unit.Name(), "operations", b.Len(), "batches", len(batches))

	for i, batch := range batches {
		if err := m.exec.ExecuteBatch(ctx, batch, m.opts.CommandTimeout); err != nil {
			return fmt.Errorf("migration %s batch %d/%d: %w", unit.ID(), i+1, len(batches), err)
		}
	}

	if err := m.history.Insert(ctx, unit.ID(), unit.Name(), m.opts.ProductVersion, time.Now().UTC()); err != nil {
		return fmt.Errorf("record migration %s: %w", unit.ID(), err)
	}

	m.opts.Logger.Info("migration applied", "id", unit.ID(), "name", unit.Name())
	return nil
}
