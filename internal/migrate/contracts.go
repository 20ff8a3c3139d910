package migrate

import (
	"context"
	"time"

	"db_prog_object_migrator/internal/operation"
)

// SQLGenerator turns an ordered operation list into an ordered list of
// executable SQL batches for one database engine. Generation must be
// deterministic for a given operation list; batch order must follow
// operation order.
type SQLGenerator interface {
	Generate(ops []operation.Operation) ([]string, error)
}

// HistoryRepository tracks which migration IDs have been applied.
type HistoryRepository interface {
	// EnsureCreated creates the history storage if missing. Idempotent.
	EnsureCreated(ctx context.Context) error
	// AppliedIDs returns the set of already-applied migration IDs.
	AppliedIDs(ctx context.Context) (map[string]struct{}, error)
	// Insert records one migration as applied.
	Insert(ctx context.Context, id, name, productVersion string, appliedAt time.Time) error
}

// Lock is a held mutual-exclusion lock. Release must be safe to call on every
// exit path of the holder.
type Lock interface {
	Release(ctx context.Context) error
}

// LockProvider hands out named cross-process locks. Whether Acquire blocks or
// fails on contention is the provider's own policy.
type LockProvider interface {
	Acquire(ctx context.Context, scope string) (Lock, error)
}

// Executor runs one SQL batch against the target database. Exceeding the
// timeout is an execution failure.
type Executor interface {
	ExecuteBatch(ctx context.Context, sql string, timeout time.Duration) error
}
