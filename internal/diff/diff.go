// Package diff compares the current programmable-object assets against the
// last-saved snapshot and emits the operations needed to bring a database up
// to date.
package diff

import (
	"fmt"
	"strings"

	"db_prog_object_migrator/internal/asset"
	"db_prog_object_migrator/internal/operation"
	"db_prog_object_migrator/internal/snapshot"
)

// Compare diffs current assets against the old snapshot and returns one
// create-or-alter operation per new or changed asset, in asset enumeration
// order. Assets present in the snapshot but absent from the input produce
// nothing: this differ never emits drops.
func Compare(old *snapshot.Snapshot, assets []asset.Asset) []operation.Operation {
	known := old.Lookup()

	b := operation.NewBuilder()
	for _, a := range assets {
		hash := asset.HashSQL(a.SQL)
		if prev, ok := known[snapshot.Key(a.Schema, a.Name, a.Kind)]; ok && prev == hash {
			continue
		}
		appendOp(b, a)
	}
	return b.Operations()
}

// Describe renders a short human-readable summary of a diff result.
func Describe(ops []operation.Operation) string {
	if len(ops) == 0 {
		return "up to date"
	}
	lines := make([]string, 0, len(ops))
	for _, op := range ops {
		switch o := op.(type) {
		case operation.CreateOrAlterViewOp:
			lines = append(lines, fmt.Sprintf("create or alter view %s.%s", o.Schema, o.Name))
		case operation.CreateOrAlterRoutineOp:
			lines = append(lines, fmt.Sprintf("create or alter routine %s.%s", o.Schema, o.Name))
		case operation.CreateOrAlterTriggerOp:
			lines = append(lines, fmt.Sprintf("create or alter trigger %s.%s", o.Schema, o.Name))
		case operation.RawSQLOp:
			lines = append(lines, "raw sql batch")
		default:
			lines = append(lines, fmt.Sprintf("operation kind %d", op.OpKind()))
		}
	}
	return strings.Join(lines, "\n")
}

func appendOp(b *operation.Builder, a asset.Asset) {
	switch a.Kind {
	case asset.KindView:
		b.CreateOrAlterView(a.Schema, a.Name, a.SQL)
	case asset.KindProcedure:
		b.CreateOrAlterRoutine(a.Schema, a.Name, operation.RoutineProcedure, a.SQL)
	case asset.KindScalarFunction:
		b.CreateOrAlterRoutine(a.Schema, a.Name, operation.RoutineScalarFunction, a.SQL)
	case asset.KindTableFunction:
		b.CreateOrAlterRoutine(a.Schema, a.Name, operation.RoutineTableFunction, a.SQL)
	case asset.KindTrigger:
		b.CreateOrAlterTrigger(a.Schema, a.Name, a.SQL)
	default:
		// Unrecognized kind: carry the definition verbatim rather than guess.
		b.Sql(a.SQL)
	}
}
