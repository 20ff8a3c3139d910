package scaffold

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db_prog_object_migrator/internal/asset"
	"db_prog_object_migrator/internal/snapshot"
)

func runInput(t *testing.T, fsys fstest.MapFS) RunInput {
	t.Helper()
	root := t.TempDir()
	return RunInput{
		Provider:     asset.NewFSProvider(fsys, "public", asset.KindProcedure),
		SnapshotPath: filepath.Join(root, "prog_snapshot.json"),
		ManifestPath: filepath.Join(root, "prog_manifest.json"),
		OutputDir:    filepath.Join(root, "migrations"),
		Name:         "AddViews",
		Scope:        "App.Migrations",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunUpToDateWritesNothing(t *testing.T) {
	fsys := fstest.MapFS{
		"views/public.v_active.sql": {Data: []byte("CREATE OR REPLACE VIEW public.v_active AS SELECT 1;")},
	}
	in := runInput(t, fsys)

	assets, err := in.Provider.Assets()
	require.NoError(t, err)
	require.NoError(t, snapshot.Save(in.SnapshotPath, snapshot.Build(assets)))
	before, err := os.ReadFile(in.SnapshotPath)
	require.NoError(t, err)

	res, err := Run(in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Ops)
	assert.Empty(t, res.File)

	_, err = os.Stat(in.OutputDir)
	assert.True(t, os.IsNotExist(err), "no migration directory should be created")
	_, err = os.Stat(in.ManifestPath)
	assert.True(t, os.IsNotExist(err), "no manifest should be created")

	after, err := os.ReadFile(in.SnapshotPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunScaffoldsAndRecordsChanges(t *testing.T) {
	fsys := fstest.MapFS{
		"views/public.v_active.sql": {Data: []byte("CREATE OR REPLACE VIEW public.v_active AS SELECT 1;")},
	}
	in := runInput(t, fsys)

	// The prior snapshot knows only an object that no longer exists; the
	// saved snapshot must reflect exactly the current assets, not a merge.
	stale := &snapshot.Snapshot{Items: []snapshot.Item{
		{Schema: "public", Name: "v_gone", Kind: int(asset.KindView), Hash: "AAAA"},
	}}
	require.NoError(t, snapshot.Save(in.SnapshotPath, stale))

	res, err := Run(in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ops)
	assert.Contains(t, res.Summary, "v_active")

	body, err := os.ReadFile(res.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "b.CreateOrAlterView(")

	snap, err := snapshot.Load(in.SnapshotPath)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "v_active", snap.Items[0].Name)

	m, err := LoadManifest(in.ManifestPath, in.Scope)
	require.NoError(t, err)
	require.Len(t, m.Migrations, 1)
	assert.Equal(t, "App.Migrations", m.Scope)
	assert.Equal(t, 1, m.Migrations[0].Ops)
	assert.Equal(t, "AddViews", m.Migrations[0].Name)
	assert.Equal(t, idFromPath(res.File), m.Migrations[0].ID)
}

func TestRunSecondPassIsUpToDate(t *testing.T) {
	fsys := fstest.MapFS{
		"views/public.v_active.sql":       {Data: []byte("CREATE VIEW v_active AS SELECT 1;")},
		"procedures/public.sp_rotate.sql": {Data: []byte("CREATE PROCEDURE sp_rotate AS BEGIN END;")},
	}
	in := runInput(t, fsys)

	first, err := Run(in)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Ops)

	second, err := Run(in)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Ops)

	entries, err := os.ReadDir(in.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
