// Package qir2quil is the two-entry-point public API of the pass:
// Transform rewrites a QIR module's shot loops into Quil-executing
// preambles, and TranspileToQuil runs the simpler single-block mode.
package qir2quil

import (
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/facade"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/rewrite"
	"github.com/qir2quil/qir2quil/pkg/walk"
)

// PatchOptions configures Transform. It mirrors original_source's
// PatchOptions/ContextOptions: every knob is a CLI flag, and none of
// it persists between invocations.
type PatchOptions struct {
	// AddMainEntrypoint synthesizes a process entry point distinct
	// from the QIR entrypoint-attributed function.
	AddMainEntrypoint bool

	// Target selects the simulator or a named QPU for every rewritten
	// shot loop in the module.
	Target rewrite.Target

	// CacheExecutables enables the executable-cache ABI hooks around
	// each rewrite's executable construction.
	CacheExecutables bool

	// QuilRewiringPragma, when non-empty, is emitted as a
	// PRAGMA INITIAL_REWIRING line in every generated Quil program.
	QuilRewiringPragma string

	// Sink receives non-fatal findings (e.g. opaque blocks skipped).
	// A nil Sink discards them.
	Sink diag.Sink
}

// Transform rewrites every reachable shot-loop block of m in place,
// per the module walker's traversal (C6) and the rewrite engine
// (C5). On success, m is the transformed module; on failure, m may
// have been partially mutated and must be discarded by the caller.
func Transform(m *ir.Module, opts PatchOptions) error {
	if err := walk.Run(m, walk.Options{
		Rewrite: rewrite.Options{
			Target:             opts.Target,
			CacheExecutables:   opts.CacheExecutables,
			QuilRewiringPragma: opts.QuilRewiringPragma,
			Sink:               opts.Sink,
		},
		Sink: opts.Sink,
	}); err != nil {
		return err
	}

	if opts.AddMainEntrypoint {
		entry, _, err := walk.FindEntry(m)
		if err != nil {
			return err
		}
		rewrite.AddMainEntrypoint(m, entry)
	}

	return nil
}

// TranspileToQuilResult is what TranspileToQuil returns on success.
type TranspileToQuilResult = facade.Result

// TranspileToQuil applies the simpler façade (C7) to m's entry
// function, without mutating m.
func TranspileToQuil(m *ir.Module) (*TranspileToQuilResult, error) {
	return facade.Transpile(m)
}
