package asset

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"views/vw_orders.sql":            {Data: []byte("CREATE OR REPLACE VIEW vw_orders AS SELECT 1;")},
		"procedures/sales.sp_close.sql":  {Data: []byte("CREATE OR REPLACE PROCEDURE sales.sp_close() ...;")},
		"functions/fn_total.sql":         {Data: []byte("CREATE OR REPLACE FUNCTION fn_total() ...;")},
		"table_functions/fn_rows.sql":    {Data: []byte("CREATE OR REPLACE FUNCTION fn_rows() RETURNS TABLE ...;")},
		"triggers/trg_audit.sql":         {Data: []byte("CREATE OR REPLACE TRIGGER trg_audit ...;")},
		"misc/seed_data.sql":             {Data: []byte("INSERT INTO lookup VALUES (1);")},
		"views/readme.txt":               {Data: []byte("not sql")},
		"views/nested/deep/vw_inner.sql": {Data: []byte("CREATE OR REPLACE VIEW vw_inner AS SELECT 2;")},
	}
}

func TestFSProviderKindsByDirectory(t *testing.T) {
	p := NewFSProvider(testTree(), "", KindUnknown)
	assets, err := p.Assets()
	require.NoError(t, err)

	byName := map[string]Asset{}
	for _, a := range assets {
		byName[a.Name] = a
	}

	assert.Equal(t, KindView, byName["vw_orders"].Kind)
	assert.Equal(t, KindProcedure, byName["sp_close"].Kind)
	assert.Equal(t, KindScalarFunction, byName["fn_total"].Kind)
	assert.Equal(t, KindTableFunction, byName["fn_rows"].Kind)
	assert.Equal(t, KindTrigger, byName["trg_audit"].Kind)
}

func TestFSProviderDefaultsUnknownDirsToConfiguredKind(t *testing.T) {
	p := NewFSProvider(testTree(), "", KindUnknown)
	assets, err := p.Assets()
	require.NoError(t, err)

	for _, a := range assets {
		if a.Name == "seed_data" {
			// Safe default kind is procedure when the directory is not part
			// of the convention.
			assert.Equal(t, KindProcedure, a.Kind)
			return
		}
	}
	t.Fatal("seed_data asset not found")
}

func TestFSProviderSchemaFromFileName(t *testing.T) {
	p := NewFSProvider(testTree(), "dbo", KindUnknown)
	assets, err := p.Assets()
	require.NoError(t, err)

	for _, a := range assets {
		switch a.Name {
		case "sp_close":
			assert.Equal(t, "sales", a.Schema)
		case "vw_orders":
			assert.Equal(t, "dbo", a.Schema)
		}
	}
}

func TestFSProviderSkipsNonSQL(t *testing.T) {
	p := NewFSProvider(testTree(), "", KindUnknown)
	assets, err := p.Assets()
	require.NoError(t, err)

	for _, a := range assets {
		assert.NotEqual(t, "readme", a.Name)
	}
}

func TestFSProviderNestedDirsInheritTopLevelKind(t *testing.T) {
	p := NewFSProvider(testTree(), "", KindUnknown)
	assets, err := p.Assets()
	require.NoError(t, err)

	for _, a := range assets {
		if a.Name == "vw_inner" {
			assert.Equal(t, KindView, a.Kind)
			return
		}
	}
	t.Fatal("vw_inner asset not found")
}

func TestFSProviderDeterministicOrder(t *testing.T) {
	p := NewFSProvider(testTree(), "", KindUnknown)
	first, err := p.Assets()
	require.NoError(t, err)
	second, err := p.Assets()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
