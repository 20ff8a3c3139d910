package asset

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// DefaultSchema is used when a source file does not encode a schema in its
// name.
const DefaultSchema = "public"

// kindDirs maps the conventional directory names to object kinds. Anything
// outside this map falls back to the provider's configured default kind.
var kindDirs = map[string]Kind{
	"views":           KindView,
	"procedures":      KindProcedure,
	"functions":       KindScalarFunction,
	"table_functions": KindTableFunction,
	"triggers":        KindTrigger,
}

// KindDirNames returns the conventional directory names in a stable order,
// used by the init command to materialize the expected layout.
func KindDirNames() []string {
	names := make([]string, 0, len(kindDirs))
	for name := range kindDirs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FSProvider reads assets from a filesystem tree laid out by convention:
// one directory per object kind, one .sql file per object. A file named
// "schema.object.sql" encodes its schema explicitly; otherwise the
// provider's default schema applies. Directories outside the convention are
// still scanned, with their files classified as the default kind.
type FSProvider struct {
	fsys          fs.FS
	defaultSchema string
	defaultKind   Kind
}

// NewFSProvider builds a provider over an fs.FS rooted at the asset tree.
// Empty defaultSchema falls back to DefaultSchema; the zero defaultKind
// (KindUnknown) falls back to KindProcedure, the conventional safe default.
func NewFSProvider(fsys fs.FS, defaultSchema string, defaultKind Kind) *FSProvider {
	if defaultSchema == "" {
		defaultSchema = DefaultSchema
	}
	if defaultKind == KindUnknown {
		defaultKind = KindProcedure
	}
	return &FSProvider{fsys: fsys, defaultSchema: defaultSchema, defaultKind: defaultKind}
}

// NewDirProvider builds a provider over a directory on disk.
func NewDirProvider(root, defaultSchema string, defaultKind Kind) *FSProvider {
	return NewFSProvider(os.DirFS(root), defaultSchema, defaultKind)
}

// Assets walks the tree and returns every .sql file as an asset. Enumeration
// order is deterministic (lexical walk order), which fixes the order of any
// diff computed from the result.
func (p *FSProvider) Assets() ([]Asset, error) {
	var assets []Asset
	err := fs.WalkDir(p.fsys, ".", func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(entryPath), ".sql") {
			return nil
		}
		body, err := fs.ReadFile(p.fsys, entryPath)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", entryPath, err)
		}
		schema, name := p.splitName(path.Base(entryPath))
		assets = append(assets, Asset{
			Schema: schema,
			Name:   name,
			Kind:   p.kindOf(entryPath),
			SQL:    string(body),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (p *FSProvider) kindOf(entryPath string) Kind {
	dir := path.Dir(entryPath)
	if dir == "." {
		return p.defaultKind
	}
	// Only the top-level directory carries kind meaning.
	top := strings.SplitN(dir, "/", 2)[0]
	if kind, ok := kindDirs[strings.ToLower(top)]; ok {
		return kind
	}
	return p.defaultKind
}

func (p *FSProvider) splitName(base string) (schema, name string) {
	stem := strings.TrimSuffix(base, path.Ext(base))
	if i := strings.Index(stem, "."); i > 0 && i < len(stem)-1 {
		return stem[:i], stem[i+1:]
	}
	return p.defaultSchema, stem
}
