// Package rewrite implements the rewrite engine (C5): it replaces a
// recognized shot-loop block with the execution preamble → loop body
// → cleanup structure, rewiring phi nodes, result readouts, and
// control flow, and leaves every other block untouched.
package rewrite

import (
	"fmt"
	"strconv"

	"github.com/qir2quil/qir2quil/pkg/catalog"
	"github.com/qir2quil/qir2quil/pkg/classify"
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/params"
	"github.com/qir2quil/qir2quil/pkg/quil"
	"github.com/qir2quil/qir2quil/pkg/quilbuild"
)

// Target selects where the rewritten code executes a shot loop: the
// simulator (QVM) or a named QPU.
type Target struct {
	QPU   string
	IsQPU bool
}

// QVM returns the simulator target.
func QVM() Target { return Target{} }

// QPU returns the named-processor target.
func QPU(id string) Target { return Target{QPU: id, IsQPU: true} }

// Options configures one rewrite pass over a module.
type Options struct {
	Target             Target
	CacheExecutables   bool
	QuilRewiringPragma string
	Sink               diag.Sink
}

// Block rewrites fn's block at node — which must already have been
// classified classify.ShotLoop by the caller — into the preamble/loop
// body/cleanup structure, declaring the collaborator ABI on m as
// needed. It returns the index assigned to this rewrite's globals
// (useful for tests).
func Block(m *ir.Module, fn *ir.Function, node ir.Node, cls classify.Result, opts Options) (uint64, error) {
	if cls.Verdict != classify.ShotLoop {
		return 0, diag.New(diag.PreconditionViolation, fn.Name, "").
			Wrap("rewrite.Block called on a non-ShotLoop classification")
	}
	blk := fn.Blocks[node]
	declareABI(m)

	hoister := params.NewHoister()
	built, err := quilbuild.Build(fn.Name, blk.Label, blk, hoister)
	if err != nil {
		return 0, err
	}

	if opts.QuilRewiringPragma != "" {
		pragma := quil.Pragma{Name: "INITIAL_REWIRING", Args: []string{strconv.Quote(opts.QuilRewiringPragma)}}
		built.Program.Body = append([]quil.Instruction{pragma}, built.Program.Body...)
	}

	idx := m.NextRewriteIndex()
	quilGlobal := m.AddGlobalString(fmt.Sprintf("__qir2quil.quil.%d", idx), quil.String(built.Program))

	var qpuGlobal string
	if opts.Target.IsQPU {
		qpuGlobal = m.AddGlobalString(fmt.Sprintf("__qir2quil.qpu.%d", idx), opts.Target.QPU)
	}

	if opts.CacheExecutables {
		m.AddGlobalString(cacheKeyName(idx), quil.String(built.Program))
	}

	preambleNode, resultHandle, executableID, cacheHandle := buildPreamble(fn, idx, node, cls, hoister, quilGlobal, qpuGlobal, opts)

	// Redirect every incoming edge to B except its own back-edge so
	// the loop's initial iteration now starts from the preamble,
	// mirroring replace_phi_clauses(reverse_match=true).
	cls.Phi.ReplaceIncomingFrom(node, preambleNode, true)
	for _, pred := range fn.Predecessors(node) {
		if pred == node || pred == preambleNode {
			continue
		}
		redirectBranch(fn.Blocks[pred].Terminator(), node, preambleNode)
	}

	stripIntrinsics(blk, built, resultHandle, cls.Induction)

	cleanupNode := buildCleanup(fn, idx, resultHandle, executableID, cacheHandle, cls.ExitBlock, opts.CacheExecutables)
	cls.Branch.FalseBlock = cleanupNode

	return idx, nil
}

func redirectBranch(term ir.Instruction, old, repl ir.Node) {
	br, ok := term.(*ir.Br)
	if !ok {
		return
	}
	if br.TrueBlock == old {
		br.TrueBlock = repl
	}
	if br.Cond != nil && br.FalseBlock == old {
		br.FalseBlock = repl
	}
}

// buildPreamble allocates and fills the block that builds, parameterizes,
// and executes the Quil program, returning its node plus the SSA ids of
// the execution-result handle, the executable handle, and (when caching
// is enabled) the cache handle.
func buildPreamble(fn *ir.Function, idx uint64, loopNode ir.Node, cls classify.Result, hoister *params.Hoister, quilGlobal, qpuGlobal string, opts Options) (ir.Node, ir.ValueID, ir.ValueID, ir.ValueID) {
	preamble := fn.AddBlock(fmt.Sprintf("qir2quil.preamble.%d", idx))

	var cacheHandle ir.ValueID
	if opts.CacheExecutables {
		cacheHandle = fn.AllocValue()
		preamble.Append(valueCall(cacheHandle, "Cache*", "create_executable_cache"))

		readHandle := fn.AllocValue()
		preamble.Append(valueCall(readHandle, "Executable*", "read_executable_from_cache",
			ir.ValueRef{ID: cacheHandle}, ir.GlobalRef{Name: cacheKeyName(idx)}))
	}

	executableID := fn.AllocValue()
	preamble.Append(valueCall(executableID, "Executable*", "executable_from_quil", ir.GlobalRef{Name: quilGlobal}))

	if opts.CacheExecutables {
		preamble.Append(voidCall("add_executable_to_cache",
			ir.ValueRef{ID: cacheHandle}, ir.GlobalRef{Name: cacheKeyName(idx)}, ir.ValueRef{ID: executableID}))
	}

	preamble.Append(voidCall("wrap_in_shots", ir.ValueRef{ID: executableID}, ir.ConstInt{Value: int64(cls.ShotCount), Bits: 32}))

	for _, b := range hoister.Bindings() {
		preamble.Append(voidCall("set_param",
			ir.ValueRef{ID: executableID},
			ir.GlobalRef{Name: params.RegionName},
			ir.ConstInt{Value: int64(b.Index), Bits: 32},
			b.Value,
		))
	}

	resultHandle := fn.AllocValue()
	if opts.Target.IsQPU {
		preamble.Append(valueCall(resultHandle, "ExecutionResult*", "execute_on_qpu",
			ir.ValueRef{ID: executableID}, ir.GlobalRef{Name: qpuGlobal}))
	} else {
		preamble.Append(valueCall(resultHandle, "ExecutionResult*", "execute_on_qvm", ir.ValueRef{ID: executableID}))
	}
	preamble.Append(voidCall("panic_on_failure", ir.ValueRef{ID: resultHandle}))

	preamble.Append(&ir.Br{TrueBlock: loopNode})

	return preamble.Node, resultHandle, executableID, cacheHandle
}

// stripIntrinsics removes every quantum-intrinsic call from blk except
// read_result calls, which are morphed in place into get_readout_bit
// calls against resultHandle so that every existing use of their
// result value keeps resolving.
func stripIntrinsics(blk *ir.BasicBlock, built *quilbuild.Result, resultHandle, induction ir.ValueID) {
	doomed := map[ir.Instruction]bool{}
	for _, inst := range blk.Instructions {
		call, ok := inst.(*ir.Call)
		if !ok {
			continue
		}
		if ro, isReadout := built.ReadResultROs[call]; isReadout {
			call.Callee = "get_readout_bit"
			call.Args = []ir.Operand{
				ir.ValueRef{ID: resultHandle},
				ir.ValueRef{ID: induction},
				ir.ConstInt{Value: int64(ro), Bits: 64},
			}
			continue
		}
		if isCatalogCall(call) {
			doomed[inst] = true
		}
	}
	blk.RemoveInstructions(doomed)
}

func isCatalogCall(call *ir.Call) bool {
	_, known := catalog.Lookup(call.Callee)
	return known
}

// buildCleanup allocates and fills the block that frees the
// execution-result handle and then either the executable (caching
// off) or the per-block cache that owns it (caching on), before
// falling through to the loop's original exit block.
func buildCleanup(fn *ir.Function, idx uint64, resultHandle, executableID, cacheHandle ir.ValueID, exit ir.Node, cacheExecutables bool) ir.Node {
	cleanup := fn.AddBlock(fmt.Sprintf("qir2quil.cleanup.%d", idx))
	cleanup.Append(voidCall("free_execution_result", ir.ValueRef{ID: resultHandle}))
	if cacheExecutables {
		cleanup.Append(voidCall("free_executable_cache", ir.ValueRef{ID: cacheHandle}))
	} else {
		cleanup.Append(voidCall("free_executable", ir.ValueRef{ID: executableID}))
	}
	cleanup.Append(&ir.Br{TrueBlock: exit})
	return cleanup.Node
}
