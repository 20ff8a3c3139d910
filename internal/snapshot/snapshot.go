// Package snapshot persists the last-known content hash per programmable
// object so drift can be computed without reading the live database.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"db_prog_object_migrator/internal/asset"
)

// Item records one programmable object's hash at the last scaffold.
type Item struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Kind   int    `json:"kind"`
	Hash   string `json:"hash"`
}

// Snapshot is the full last-known state. It holds at most one item per
// (schema, name, kind) key; schema and name compare case-insensitively.
type Snapshot struct {
	Items []Item `json:"items"`
}

// Key returns the lookup key for a (schema, name, kind) triple. Schema and
// name fold case; kind does not participate in folding.
func Key(schema, name string, kind asset.Kind) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(schema), strings.ToLower(name), kind)
}

// Lookup builds a hash-by-key map over the snapshot's items. Later duplicates
// win, matching the wholesale-overwrite semantics of Save.
func (s *Snapshot) Lookup() map[string]string {
	m := make(map[string]string, len(s.Items))
	for _, item := range s.Items {
		m[Key(item.Schema, item.Name, asset.Kind(item.Kind))] = item.Hash
	}
	return m
}

// Build produces a snapshot reflecting exactly the given assets, hashing each
// definition. It is what Save persists after a successful scaffold: the new
// snapshot replaces the old one wholesale, never merging with it.
func Build(assets []asset.Asset) *Snapshot {
	snap := &Snapshot{Items: make([]Item, 0, len(assets))}
	for _, a := range assets {
		snap.Items = append(snap.Items, Item{
			Schema: a.Schema,
			Name:   a.Name,
			Kind:   int(a.Kind),
			Hash:   asset.HashSQL(a.SQL),
		})
	}
	return snap
}

// Load reads a snapshot file. A missing file yields an empty snapshot, not an
// error: the first scaffold of a project starts from nothing.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// Save overwrites the snapshot file with the given state.
func Save(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
