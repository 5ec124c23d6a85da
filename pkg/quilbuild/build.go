// Package quilbuild implements the Quil builder (C3): a pure,
// symbolic walk of one block's quantum-intrinsic calls that produces a
// Quil program, an output-recording schedule, and (via an optional
// params.Hoister) a parameter table.
package quilbuild

import (
	"fmt"

	"github.com/qir2quil/qir2quil/pkg/catalog"
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/params"
	"github.com/qir2quil/qir2quil/pkg/quil"
)

// RecordedOutput is one entry of the output-recording schedule.
type RecordedOutput struct {
	Kind  catalog.RecordKind
	Index uint64 // meaningful only for RecordResult
	Tag   string // optional string label, meaningful only for RecordResult
}

// Result is everything the builder produces from one block.
type Result struct {
	Program       *quil.Program
	Schedule      []RecordedOutput
	ReadoutWidth uint64 // R in DECLARE ro BIT[R]

	// ReadResultROs maps each read_result call instruction in blk to
	// the ro register index it resolves to, so the rewrite engine can
	// replace exactly that call with get_readout_bit(handle, iv, ro).
	ReadResultROs map[*ir.Call]uint64
}

// Build symbolically executes the quantum intrinsics of blk in source
// order. When hoister is non-nil, every real-valued gate argument is
// hoisted through it (the path the rewrite engine requires, since its
// preamble must call set_param for every slot); when hoister is nil,
// constant real arguments are emitted as Quil literals directly and a
// dynamic (non-constant) real argument is an error, since there is no
// runtime parameter-passing mechanism without a rewrite.
func Build(function, block string, blk *ir.BasicBlock, hoister *params.Hoister) (*Result, error) {
	prog := &quil.Program{}
	res := &Result{Program: prog, ReadResultROs: map[*ir.Call]uint64{}}

	resultToRO := map[uint64]uint64{}
	var nextRO uint64
	var sawReset bool

	for offset, inst := range blk.Instructions {
		call, ok := inst.(*ir.Call)
		if !ok {
			continue
		}
		entry, known := catalog.Lookup(call.Callee)
		if !known {
			continue
		}

		switch entry.Kind {
		case catalog.Unitary:
			if entry.Mnemonic == "RESET" {
				sawReset = true
				continue
			}
			gate, err := buildGate(entry, call, hoister)
			if err != nil {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("build gate for %s: %v", call.Callee, err)
			}
			prog.AddInstruction(*gate)

		case catalog.Measurement:
			if len(call.Args) != 2 {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("mz expects 2 arguments, got %d", len(call.Args))
			}
			q, ok := call.Args[0].(ir.QubitRef)
			if !ok {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("mz first argument is not a qubit reference")
			}
			r, ok := call.Args[1].(ir.ResultRef)
			if !ok {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("mz second argument is not a result reference")
			}
			ro, seen := resultToRO[r.Index]
			if !seen {
				ro = nextRO
				resultToRO[r.Index] = ro
				nextRO++
			}
			prog.AddInstruction(quil.Measurement{
				Qubit:  quil.Qubit(q.Index),
				Target: quil.MemoryRef{Name: "ro", Index: ro},
			})

		case catalog.ResultReadout:
			if len(call.Args) != 1 {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("read_result expects 1 argument, got %d", len(call.Args))
			}
			r, ok := call.Args[0].(ir.ResultRef)
			if !ok {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("read_result argument is not a result reference")
			}
			ro, seen := resultToRO[r.Index]
			if !seen {
				return nil, diag.New(diag.InvalidOperand, function, block).
					WithOffset(offset).Wrap("result %d was never the target of a measurement", r.Index)
			}
			res.ReadResultROs[call] = ro

		case catalog.RecordOutput:
			out := RecordedOutput{Kind: entry.Record}
			if entry.Record == catalog.RecordResult && len(call.Args) > 0 {
				if r, ok := call.Args[0].(ir.ResultRef); ok {
					out.Index = resultToRO[r.Index]
				}
			}
			if entry.TaggedRecord && len(call.Args) > 1 {
				if tag, ok := call.Args[1].(ir.GlobalRef); ok {
					out.Tag = tag.Name
				}
			}
			res.Schedule = append(res.Schedule, out)
		}
	}

	if sawReset {
		prependReset(prog)
	}

	width := nextRO
	prog.Declarations = append([]quil.Declare{{Name: "ro", Type: "BIT", Size: width}}, prog.Declarations...)
	res.ReadoutWidth = width

	if hoister != nil && hoister.Len() > 0 {
		prog.Declarations = append([]quil.Declare{{Name: params.RegionName, Type: "REAL", Size: uint64(hoister.Len())}}, prog.Declarations...)
	}

	return res, nil
}

func prependReset(prog *quil.Program) {
	prog.Body = append([]quil.Instruction{quil.Gate{Name: "RESET"}}, prog.Body...)
}

func buildGate(entry catalog.Intrinsic, call *ir.Call, hoister *params.Hoister) (*quil.Gate, error) {
	if len(call.Args) != entry.ParamArity+entry.QubitArity {
		return nil, fmt.Errorf("expected %d arguments, got %d", entry.ParamArity+entry.QubitArity, len(call.Args))
	}

	parameters := make([]quil.Expression, 0, entry.ParamArity)
	for i := 0; i < entry.ParamArity; i++ {
		expr, err := buildExpression(call.Args[i], hoister)
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, expr)
	}

	qubits := make([]quil.Qubit, 0, entry.QubitArity)
	for i := entry.ParamArity; i < entry.ParamArity+entry.QubitArity; i++ {
		q, ok := call.Args[i].(ir.QubitRef)
		if !ok {
			return nil, fmt.Errorf("argument %d is not a qubit reference", i)
		}
		qubits = append(qubits, quil.Qubit(q.Index))
	}

	return &quil.Gate{
		Name:       entry.Mnemonic,
		Dagger:     entry.Adjoint,
		Parameters: parameters,
		Qubits:     qubits,
	}, nil
}

func buildExpression(operand ir.Operand, hoister *params.Hoister) (quil.Expression, error) {
	if hoister != nil {
		slot := hoister.Hoist(operand)
		return quil.MemoryRef{Name: params.RegionName, Index: slot}, nil
	}
	lit, ok := operand.(ir.ConstFloat)
	if !ok {
		return nil, fmt.Errorf("dynamic parameter value requires a hoister")
	}
	return quil.Literal{Value: lit.Value}, nil
}
