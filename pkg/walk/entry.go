// Package walk implements the module walker (C6): it locates the
// entry function, walks its call tree, applies classification and
// rewriting to every reachable shot-loop block, and validates the
// module's post-conditions before returning.
package walk

import (
	"regexp"

	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
)

// EntrypointAttribute is the implementation-defined attribute name
// this tool looks for on a function definition to identify the entry
// point.
const EntrypointAttribute = "entry_point"

// entryNamePattern is the documented fallback: QIR toolchains commonly
// mangle a program's entry function as "<Name>__Interop" or, in the
// convention this tool falls back to, anything ending "Run__body".
var entryNamePattern = regexp.MustCompile(`Run__body$`)

// FindEntry locates the module's entry function: first by the
// entrypoint attribute, then by the documented name-pattern fallback.
// Finding more than one candidate at either stage is an error.
func FindEntry(m *ir.Module) (*ir.Function, bool, error) {
	var byAttribute []*ir.Function
	for _, f := range m.Functions {
		if f.Entrypoint && !f.External {
			byAttribute = append(byAttribute, f)
		}
	}
	switch len(byAttribute) {
	case 1:
		return byAttribute[0], false, nil
	case 0:
		// fall through to name-pattern matching
	default:
		return nil, false, diag.New(diag.MultipleEntry, "", "").
			Wrap("%d functions carry the %s attribute", len(byAttribute), EntrypointAttribute)
	}

	var byName []*ir.Function
	for _, f := range m.Functions {
		if !f.External && entryNamePattern.MatchString(f.Name) {
			byName = append(byName, f)
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], true, nil
	case 0:
		return nil, false, diag.New(diag.NoEntry, "", "").Wrap("no function carries the %s attribute or matches the entry name pattern", EntrypointAttribute)
	default:
		return nil, false, diag.New(diag.MultipleEntry, "", "").
			Wrap("%d functions match the entry name pattern", len(byName))
	}
}
