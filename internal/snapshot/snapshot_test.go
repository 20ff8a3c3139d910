package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db_prog_object_migrator/internal/asset"
)

func TestLoadMissingFileYieldsEmptySnapshot(t *testing.T) {
	snap, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := &Snapshot{Items: []Item{
		{Schema: "public", Name: "vw_orders", Kind: int(asset.KindView), Hash: "AA"},
		{Schema: "sales", Name: "sp_close", Kind: int(asset.KindProcedure), Hash: "BB"},
	}}
	require.NoError(t, Save(path, snap))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Items, loaded.Items)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLookupIsCaseInsensitiveOnSchemaAndName(t *testing.T) {
	snap := &Snapshot{Items: []Item{
		{Schema: "Public", Name: "VW_Orders", Kind: int(asset.KindView), Hash: "AA"},
	}}
	m := snap.Lookup()

	hash, ok := m[Key("public", "vw_orders", asset.KindView)]
	require.True(t, ok)
	assert.Equal(t, "AA", hash)

	// Kind participates in the key without folding.
	_, ok = m[Key("public", "vw_orders", asset.KindTrigger)]
	assert.False(t, ok)
}

func TestBuildReflectsExactlyTheGivenAssets(t *testing.T) {
	assets := []asset.Asset{
		{Schema: "public", Name: "vw_a", Kind: asset.KindView, SQL: "SELECT 1;"},
		{Schema: "public", Name: "vw_b", Kind: asset.KindView, SQL: "SELECT 2;"},
	}
	snap := Build(assets)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, asset.HashSQL("SELECT 1;"), snap.Items[0].Hash)
	assert.Equal(t, asset.HashSQL("SELECT 2;"), snap.Items[1].Hash)
}

func TestSaveOverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, Save(path, &Snapshot{Items: []Item{
		{Schema: "public", Name: "vw_old", Kind: int(asset.KindView), Hash: "AA"},
	}}))
	require.NoError(t, Save(path, &Snapshot{Items: []Item{
		{Schema: "public", Name: "vw_new", Kind: int(asset.KindView), Hash: "BB"},
	}}))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "vw_new", loaded.Items[0].Name)
}
