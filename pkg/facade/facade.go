// Package facade implements the transpile-to-Quil façade (C7): the
// simpler mode that applies the intrinsic catalog and Quil builder to
// the single "body" block of the entry function, without mutating the
// module.
package facade

import (
	"github.com/qir2quil/qir2quil/pkg/catalog"
	"github.com/qir2quil/qir2quil/pkg/classify"
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/quil"
	"github.com/qir2quil/qir2quil/pkg/quilbuild"
	"github.com/qir2quil/qir2quil/pkg/walk"
)

// RecordedOutputName is a recording-schedule entry rendered as one of
// the documented strings (shot_start, shot_end, result, tuple_start,
// tuple_end, array_start, array_end), in source order.
type RecordedOutputName = string

// Result is everything Transpile returns on success.
type Result struct {
	Program         string
	ShotCount       uint64
	RecordedOutput  []RecordedOutputName
}

// Transpile runs C1–C3 over the entry function's "body" block and
// returns the Quil program text, the shot count, and the
// output-recording schedule. It never mutates m.
func Transpile(m *ir.Module) (*Result, error) {
	entry, _, err := walk.FindEntry(m)
	if err != nil {
		return nil, wrapFailure(err)
	}

	blk, ok := entry.BlockByLabel("body")
	if !ok {
		return nil, wrapFailure(diag.New(diag.MissingBlock, entry.Name, "body").
			Wrap("no basic block named 'body' found in function"))
	}

	if err := checkNoUserCalls(entry, blk); err != nil {
		return nil, wrapFailure(err)
	}

	shotCount := uint64(1)
	cls := classify.Classify(entry, blk.Node)
	if cls.Verdict == classify.ShotLoop {
		shotCount = cls.ShotCount
	}

	built, err := quilbuild.Build(entry.Name, blk.Label, blk, nil)
	if err != nil {
		return nil, wrapFailure(err)
	}

	return &Result{
		Program:        quil.String(built.Program),
		ShotCount:      shotCount,
		RecordedOutput: renderSchedule(built.Schedule),
	}, nil
}

func checkNoUserCalls(entry *ir.Function, blk *ir.BasicBlock) error {
	for offset, inst := range blk.Instructions {
		call, ok := inst.(*ir.Call)
		if !ok {
			continue
		}
		if _, known := catalog.Lookup(call.Callee); known {
			continue
		}
		return diag.New(diag.PreconditionViolation, entry.Name, blk.Label).
			WithOffset(offset).
			Wrap("body block calls user-defined function %s", call.Callee)
	}
	return nil
}

func renderSchedule(schedule []quilbuild.RecordedOutput) []string {
	names := make([]string, 0, len(schedule))
	for _, s := range schedule {
		switch s.Kind {
		case catalog.RecordResult:
			names = append(names, "result")
		case catalog.RecordTupleStart:
			names = append(names, "tuple_start")
		case catalog.RecordTupleEnd:
			names = append(names, "tuple_end")
		case catalog.RecordArrayStart:
			names = append(names, "array_start")
		case catalog.RecordArrayEnd:
			names = append(names, "array_end")
		}
	}
	return names
}

func wrapFailure(cause error) error {
	return diag.New(diag.PreconditionViolation, "", "").Wrap("transpilation failed: %v", cause)
}
