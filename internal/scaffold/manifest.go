package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ManifestEntry records one scaffolded migration.
type ManifestEntry struct {
	UID          string    `json:"uid"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Ops          int       `json:"ops"`
	File         string    `json:"file"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

// Manifest is the append-only scaffold log. Appends rewrite the whole file;
// entries are never removed or edited.
type Manifest struct {
	Scope        string          `json:"scope"`
	UpdatedAtUtc time.Time       `json:"updatedAtUtc"`
	Migrations   []ManifestEntry `json:"migrations"`
}

// LoadManifest reads the manifest at path, returning an empty manifest with
// the given scope when the file does not exist yet.
func LoadManifest(path, scope string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{Scope: scope}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// AppendManifest loads the manifest, appends one entry describing a scaffold,
// stamps the update time, and rewrites the file. File paths are stored with
// forward slashes so manifests are portable across platforms.
func AppendManifest(path, scope, id, name, file string, ops int) error {
	m, err := LoadManifest(path, scope)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	m.Scope = scope
	m.UpdatedAtUtc = now
	m.Migrations = append(m.Migrations, ManifestEntry{
		UID:          uuid.NewString(),
		ID:           id,
		Name:         name,
		Ops:          ops,
		File:         filepath.ToSlash(file),
		CreatedAtUtc: now,
	})
	return saveManifest(path, m)
}

func saveManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
