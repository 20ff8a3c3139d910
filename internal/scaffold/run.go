package scaffold

import (
	"fmt"
	"log/slog"

	"db_prog_object_migrator/internal/asset"
	"db_prog_object_migrator/internal/diff"
	"db_prog_object_migrator/internal/snapshot"
)

// RunInput names everything one scaffold pass needs.
type RunInput struct {
	Provider     asset.Provider
	SnapshotPath string
	ManifestPath string
	OutputDir    string
	Name         string
	Scope        string
	Logger       *slog.Logger
}

// RunResult reports what a scaffold pass produced. Ops == 0 means everything
// was up to date and no file was written; that is a success, not an error.
type RunResult struct {
	Ops     int
	File    string
	Summary string
}

// Run executes one full scaffold pass: read current assets, diff them against
// the snapshot, render a migration file for any changes, then save the new
// snapshot and append to the manifest.
//
// The three writes (migration file, snapshot, manifest) are sequential and
// independent; a crash between them leaves the snapshot or manifest stale
// relative to the migration file, to be reconciled by re-running the diff.
func Run(in RunInput) (RunResult, error) {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	assets, err := in.Provider.Assets()
	if err != nil {
		return RunResult{}, fmt.Errorf("read assets: %w", err)
	}

	old, err := snapshot.Load(in.SnapshotPath)
	if err != nil {
		return RunResult{}, err
	}

	ops := diff.Compare(old, assets)
	if len(ops) == 0 {
		logger.Info("no programmable object changes detected", "assets", len(assets))
		return RunResult{}, nil
	}

	file, err := ScaffoldToFile(in.OutputDir, in.Name, ops)
	if err != nil {
		return RunResult{}, err
	}
	logger.Info("migration scaffolded", "file", file, "operations", len(ops))

	if err := snapshot.Save(in.SnapshotPath, snapshot.Build(assets)); err != nil {
		return RunResult{}, err
	}

	id, name := idAndNameFromFile(file, in.Name)
	if err := AppendManifest(in.ManifestPath, in.Scope, id, name, file, len(ops)); err != nil {
		return RunResult{}, err
	}

	return RunResult{Ops: len(ops), File: file, Summary: diff.Describe(ops)}, nil
}

func idAndNameFromFile(file, requested string) (id, name string) {
	// The file stem is "<yyyyMMdd_HHmmss>_<lowername>"; the ID is its first
	// two underscore-separated segments.
	return idFromPath(file), SanitizeName(requested)
}
