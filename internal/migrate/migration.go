// Package migrate applies versioned migration units to a target database:
// it tracks history, takes a cross-process lock, and executes each pending
// unit's generated SQL batches in order, exactly once per unit.
package migrate

import (
	"sort"
	"sync"

	"db_prog_object_migrator/internal/operation"
)

// Migration is one named, ID-ordered change set. IDs must be globally unique
// and lexicographically sortable (the scaffolder uses yyyyMMdd_HHmmss); the
// Migrator applies units strictly in ascending ID order using byte-wise
// string comparison. A migration is authored once and never modified;
// applied state lives in the history repository, not on the unit.
type Migration interface {
	ID() string
	Name() string
	Up(b *operation.Builder)
	Down(b *operation.Builder)
}

// FuncMigration adapts a pair of builder functions into a Migration. A nil
// down function is a deliberate no-op, the scaffolder's default.
type FuncMigration struct {
	id   string
	name string
	up   func(*operation.Builder)
	down func(*operation.Builder)
}

// NewMigration builds a FuncMigration. up must not be nil.
func NewMigration(id, name string, up, down func(*operation.Builder)) *FuncMigration {
	return &FuncMigration{id: id, name: name, up: up, down: down}
}

func (m *FuncMigration) ID() string   { return m.id }
func (m *FuncMigration) Name() string { return m.name }

func (m *FuncMigration) Up(b *operation.Builder) {
	if m.up != nil {
		m.up(b)
	}
}

func (m *FuncMigration) Down(b *operation.Builder) {
	if m.down != nil {
		m.down(b)
	}
}

var registry struct {
	mu    sync.Mutex
	units []Migration
}

// Register adds a migration unit to the process-wide registry. Scaffolded
// migration files call this from init; discovery order is irrelevant because
// the Migrator sorts by ID.
func Register(m Migration) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.units = append(registry.units, m)
}

// Registered returns all registered units sorted by ID.
func Registered() []Migration {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	units := make([]Migration, len(registry.units))
	copy(units, registry.units)
	sort.Slice(units, func(i, j int) bool { return units[i].ID() < units[j].ID() })
	return units
}
