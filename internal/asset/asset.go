// Package asset models programmable database objects (views, procedures,
// functions, triggers) as (schema, name, kind, SQL text) tuples and supplies
// their current definitions from a source such as a directory tree.
package asset

// Kind classifies a programmable object. The integer values are persisted in
// snapshot files and must not be renumbered.
type Kind int

const (
	KindUnknown Kind = iota
	KindView
	KindProcedure
	KindScalarFunction
	KindTableFunction
	KindTrigger
)

// String returns the lowercase label used in logs and manifests.
func (k Kind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindProcedure:
		return "procedure"
	case KindScalarFunction:
		return "scalar_function"
	case KindTableFunction:
		return "table_function"
	case KindTrigger:
		return "trigger"
	default:
		return "unknown"
	}
}

// Asset is a programmable object's current full definition. Providers produce
// assets fresh on every query; they are not cached beyond one diff cycle.
type Asset struct {
	Schema string
	Name   string
	Kind   Kind
	SQL    string
}

// Provider supplies the current set of assets from some source.
type Provider interface {
	Assets() ([]Asset, error)
}
