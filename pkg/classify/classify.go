// Package classify implements the block classifier (C2): it decides
// whether a basic block is a shot loop, a unitary body, or neither,
// purely from the block's instruction sequence. Classification never
// mutates the function; a structural near-match that fails an
// invariant becomes Opaque plus a reason, not an error.
package classify

import (
	"github.com/qir2quil/qir2quil/pkg/catalog"
	"github.com/qir2quil/qir2quil/pkg/ir"
)

// Verdict is the three-way classification outcome.
type Verdict int

const (
	Opaque Verdict = iota
	ShotLoop
	UnitaryBody
)

func (v Verdict) String() string {
	switch v {
	case ShotLoop:
		return "ShotLoop"
	case UnitaryBody:
		return "UnitaryBody"
	default:
		return "Opaque"
	}
}

// Result is the full outcome of classifying one block.
type Result struct {
	Verdict Verdict

	// Populated when Verdict == ShotLoop.
	ShotCount    uint64
	Induction    ir.ValueID
	Phi          *ir.Phi
	EntryPred    ir.Node // the phi's "initial" incoming block
	BackEdge     ir.Node // the phi's "updated" incoming block (== the block itself)
	ExitBlock    ir.Node
	Increment    *ir.BinOp
	Compare      *ir.ICmp
	Branch       *ir.Br

	// Populated when Verdict == Opaque, for the caller to surface as a
	// warning without re-deriving the reason.
	Reason string
}

// Classify inspects fn's block at node and returns its verdict.
// Classification is syntactic and deterministic: calling it twice on
// the same block returns the same verdict (the idempotence property).
func Classify(fn *ir.Function, node ir.Node) Result {
	blk := fn.Blocks[node]
	if blk == nil || len(blk.Instructions) == 0 {
		return Result{Verdict: Opaque, Reason: "empty block"}
	}

	if res, matched := classifyShotLoop(fn, node, blk); matched {
		return res
	}

	if res, ok := classifyUnitaryBody(blk); ok {
		return res
	}

	return Result{Verdict: Opaque, Reason: "no recognizable shot-loop or unitary-body structure"}
}

func classifyShotLoop(fn *ir.Function, node ir.Node, blk *ir.BasicBlock) (Result, bool) {
	phi, ok := blk.Instructions[0].(*ir.Phi)
	if !ok || len(phi.Incoming) != 2 {
		return Result{}, false
	}

	var entryPred, backEdge ir.Node
	var sawBackEdge bool
	for _, in := range phi.Incoming {
		if in.From == node {
			backEdge = in.From
			sawBackEdge = true
		} else {
			entryPred = in.From
		}
	}
	if !sawBackEdge {
		return Result{}, false
	}

	if len(blk.Instructions) < 4 {
		return Result{Verdict: Opaque, Reason: "shot-loop-shaped phi but block too short for a termination triple"}, true
	}

	n := len(blk.Instructions)
	inc, ok := blk.Instructions[n-3].(*ir.BinOp)
	if !ok || inc.Op != "add" {
		return Result{}, false
	}
	cmp, ok := blk.Instructions[n-2].(*ir.ICmp)
	if !ok {
		return Result{}, false
	}
	br, ok := blk.Instructions[n-1].(*ir.Br)
	if !ok || !br.IsConditional() {
		return Result{}, false
	}

	if incRef, ok := inc.LHS.(ir.ValueRef); !ok || incRef.ID != phi.Result {
		return Result{Verdict: Opaque, Reason: "termination triple does not increment the loop's phi"}, true
	}
	if lit, ok := inc.RHS.(ir.ConstInt); !ok || lit.Value != 1 {
		return Result{Verdict: Opaque, Reason: "termination triple does not increment by exactly 1"}, true
	}
	cmpRef, ok := cmp.LHS.(ir.ValueRef)
	if !ok || cmpRef.ID != inc.Result {
		return Result{Verdict: Opaque, Reason: "comparison does not test the incremented induction variable"}, true
	}
	shotCountLit, ok := cmp.RHS.(ir.ConstInt)
	if !ok {
		return Result{Verdict: Opaque, Reason: "shot count operand is not a literal"}, true
	}
	brRef, ok := br.Cond.(ir.ValueRef)
	if !ok || brRef.ID != cmp.Result {
		return Result{Verdict: Opaque, Reason: "branch does not test the comparison result"}, true
	}
	if br.TrueBlock != node {
		return Result{Verdict: Opaque, Reason: "loop does not branch back to itself on the true edge"}, true
	}

	if violation := classicalToQuantumDataFlow(blk); violation != "" {
		return Result{Verdict: Opaque, Reason: violation}, true
	}

	return Result{
		Verdict:   ShotLoop,
		ShotCount: uint64(shotCountLit.Value),
		Induction: phi.Result,
		Phi:       phi,
		EntryPred: entryPred,
		BackEdge:  backEdge,
		ExitBlock: br.FalseBlock,
		Increment: inc,
		Compare:   cmp,
		Branch:    br,
	}, true
}

// classicalToQuantumDataFlow reports a non-empty reason if any
// intrinsic call consumes a value produced earlier in the block by a
// non-intrinsic, non-phi instruction — rejected classical-to-quantum
// data flow per the shot-loop invariants.
func classicalToQuantumDataFlow(blk *ir.BasicBlock) string {
	classicalDefs := map[ir.ValueID]bool{}
	for _, inst := range blk.Instructions {
		switch v := inst.(type) {
		case *ir.BinOp:
			classicalDefs[v.Result] = true
		case *ir.ICmp:
			classicalDefs[v.Result] = true
		case *ir.Call:
			if _, known := catalog.Lookup(v.Callee); known {
				for _, arg := range v.Args {
					if ref, ok := arg.(ir.ValueRef); ok && classicalDefs[ref.ID] {
						return "intrinsic call consumes a value produced earlier in the block by a classical instruction"
					}
				}
			} else if v.Result != nil {
				classicalDefs[*v.Result] = true
			}
		}
	}
	return ""
}

func classifyUnitaryBody(blk *ir.BasicBlock) (Result, bool) {
	sawIntrinsic := false
	for _, inst := range blk.Instructions {
		call, ok := inst.(*ir.Call)
		if !ok {
			continue
		}
		if _, known := catalog.Lookup(call.Callee); known {
			sawIntrinsic = true
		}
	}
	if !sawIntrinsic {
		return Result{}, false
	}
	term := blk.Terminator()
	switch term.(type) {
	case *ir.Ret:
		return Result{Verdict: UnitaryBody}, true
	case *ir.Br:
		if !term.(*ir.Br).IsConditional() {
			return Result{Verdict: UnitaryBody}, true
		}
	}
	return Result{}, false
}
