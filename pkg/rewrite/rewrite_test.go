package rewrite

import (
	"testing"

	"github.com/qir2quil/qir2quil/pkg/classify"
	"github.com/qir2quil/qir2quil/pkg/ir"
)

// buildShotLoopModule builds a minimal module with one function whose
// body block is a classifiable shot loop: H on qubit 0, then a
// measurement and a read_result, looping shotCount times.
func buildShotLoopModule(shotCount int64) (*ir.Module, *ir.Function, ir.Node) {
	m := ir.NewModule("m")
	fn := ir.NewFunction("f")
	entry := fn.AddBlock("entry")
	body := fn.AddBlock("body")
	exit := fn.AddBlock("exit")

	entry.Append(&ir.Br{TrueBlock: body.Node})

	iv := fn.AllocValue()
	ivNext := fn.AllocValue()
	cmp := fn.AllocValue()
	readoutBit := fn.AllocValue()

	phi := &ir.Phi{Result: iv, Incoming: []ir.PhiIncoming{
		{Value: ir.ConstInt{Value: 0}, From: entry.Node},
		{Value: ir.ValueRef{ID: ivNext}, From: body.Node},
	}}
	body.Append(phi)
	body.Append(&ir.Call{Callee: "__quantum__qis__h__body", Args: []ir.Operand{ir.QubitRef{Index: 0}}})
	body.Append(&ir.Call{Callee: "__quantum__qis__mz__body", Args: []ir.Operand{ir.QubitRef{Index: 0}, ir.ResultRef{Index: 0}}})
	readoutID := readoutBit
	body.Append(&ir.Call{Result: &readoutID, Type: "i1", Callee: "__quantum__qis__read_result__body", Args: []ir.Operand{ir.ResultRef{Index: 0}}})
	body.Append(&ir.BinOp{Result: ivNext, Op: "add", LHS: ir.ValueRef{ID: iv}, RHS: ir.ConstInt{Value: 1}})
	body.Append(&ir.ICmp{Result: cmp, Pred: "eq", LHS: ir.ValueRef{ID: ivNext}, RHS: ir.ConstInt{Value: shotCount}})
	body.Append(&ir.Br{Cond: ir.ValueRef{ID: cmp}, TrueBlock: body.Node, FalseBlock: exit.Node})

	exit.Append(&ir.Ret{})

	fn.Entry = entry.Node
	m.AddFunction(fn)
	return m, fn, body.Node
}

func countCatalogCalls(blk *ir.BasicBlock) int {
	n := 0
	for _, inst := range blk.Instructions {
		if call, ok := inst.(*ir.Call); ok {
			if isCatalogCall(call) {
				n++
			}
		}
	}
	return n
}

func TestBlockStripsAllIntrinsics(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)
	if cls.Verdict != classify.ShotLoop {
		t.Fatalf("precondition: classify verdict = %v, want ShotLoop", cls.Verdict)
	}

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	body := fn.Blocks[node]
	if n := countCatalogCalls(body); n != 0 {
		t.Errorf("body still has %d catalog calls after rewrite, want 0", n)
	}
}

func TestBlockMorphsReadResultInPlace(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	body := fn.Blocks[node]
	var found *ir.Call
	for _, inst := range body.Instructions {
		if call, ok := inst.(*ir.Call); ok && call.Callee == "get_readout_bit" {
			found = call
		}
	}
	if found == nil {
		t.Fatal("no get_readout_bit call found in rewritten body")
	}
	if len(found.Args) != 3 {
		t.Fatalf("get_readout_bit has %d args, want 3", len(found.Args))
	}
	if ref, ok := found.Args[1].(ir.ValueRef); !ok || ref.ID != cls.Induction {
		t.Errorf("get_readout_bit's shot argument is not the loop's induction variable: %#v", found.Args[1])
	}
}

func TestBlockRedirectsPhiExceptBackEdge(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)
	phi := cls.Phi

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	var sawBackEdge, sawPreamble bool
	for _, in := range phi.Incoming {
		if in.From == node {
			sawBackEdge = true
		} else {
			sawPreamble = true
		}
	}
	if !sawBackEdge {
		t.Error("phi lost its self back-edge after rewrite")
	}
	if !sawPreamble {
		t.Error("phi's non-back-edge incoming was not redirected to the preamble")
	}
}

func TestBlockSplicesPreambleAndCleanup(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)
	exit := cls.ExitBlock

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	preds := fn.Predecessors(node)
	var preambleNode ir.Node
	foundPreamble := false
	for _, p := range preds {
		if p != node {
			preambleNode = p
			foundPreamble = true
		}
	}
	if !foundPreamble {
		t.Fatal("no preamble block found among body's predecessors")
	}
	preamble := fn.Blocks[preambleNode]
	if len(preamble.Instructions) == 0 {
		t.Fatal("preamble block is empty")
	}
	term, ok := preamble.Terminator().(*ir.Br)
	if !ok || term.IsConditional() || term.TrueBlock != node {
		t.Errorf("preamble does not unconditionally branch into the loop body: %#v", term)
	}

	cleanupNode := cls.Branch.FalseBlock
	if cleanupNode == exit {
		t.Fatal("the loop's false edge still points directly at the exit block, no cleanup was spliced in")
	}
	cleanup := fn.Blocks[cleanupNode]
	cleanupTerm, ok := cleanup.Terminator().(*ir.Br)
	if !ok || cleanupTerm.IsConditional() || cleanupTerm.TrueBlock != exit {
		t.Errorf("cleanup does not fall through to the original exit block: %#v", cleanupTerm)
	}
}

func hasCall(blk *ir.BasicBlock, callee string) bool {
	for _, inst := range blk.Instructions {
		if call, ok := inst.(*ir.Call); ok && call.Callee == callee {
			return true
		}
	}
	return false
}

func TestBlockDeclaresCollaboratorABI(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	for _, name := range []string{
		"executable_from_quil", "wrap_in_shots", "set_param", "execute_on_qvm",
		"execute_on_qpu", "panic_on_failure", "get_readout_bit",
		"free_execution_result", "free_executable",
		"create_executable_cache", "add_executable_to_cache",
		"read_executable_from_cache", "free_executable_cache",
	} {
		if _, ok := m.FunctionByName(name); !ok {
			t.Errorf("module is missing ABI declaration for %s", name)
		}
	}
}

func TestBlockWithoutCachingFreesExecutableDirectly(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)

	if _, err := Block(m, fn, node, cls, Options{Target: QVM()}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	cleanup := fn.Blocks[cls.Branch.FalseBlock]
	if !hasCall(cleanup, "free_executable") {
		t.Error("cleanup block does not free the executable when caching is disabled")
	}
	if hasCall(cleanup, "free_executable_cache") {
		t.Error("cleanup block frees an executable cache when caching was never enabled")
	}

	preds := fn.Predecessors(node)
	for _, p := range preds {
		if p == node {
			continue
		}
		if hasCall(fn.Blocks[p], "create_executable_cache") {
			t.Error("preamble created an executable cache when caching was never enabled")
		}
	}
}

func TestBlockWithCachingBracketsExecutableLookup(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)

	if _, err := Block(m, fn, node, cls, Options{Target: QVM(), CacheExecutables: true}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	preds := fn.Predecessors(node)
	var preamble *ir.BasicBlock
	for _, p := range preds {
		if p != node {
			preamble = fn.Blocks[p]
		}
	}
	if preamble == nil {
		t.Fatal("no preamble found")
	}

	var createIdx, readIdx, buildIdx, addIdx = -1, -1, -1, -1
	for i, inst := range preamble.Instructions {
		call, ok := inst.(*ir.Call)
		if !ok {
			continue
		}
		switch call.Callee {
		case "create_executable_cache":
			createIdx = i
		case "read_executable_from_cache":
			readIdx = i
		case "executable_from_quil":
			buildIdx = i
		case "add_executable_to_cache":
			addIdx = i
		}
	}
	if createIdx < 0 || readIdx < 0 || buildIdx < 0 || addIdx < 0 {
		t.Fatalf("preamble is missing one of the cache-bracketing calls: create=%d read=%d build=%d add=%d", createIdx, readIdx, buildIdx, addIdx)
	}
	if !(createIdx < readIdx && readIdx < buildIdx && buildIdx < addIdx) {
		t.Errorf("cache calls are not in create, read, build, add order: %d %d %d %d", createIdx, readIdx, buildIdx, addIdx)
	}

	cleanup := fn.Blocks[cls.Branch.FalseBlock]
	if !hasCall(cleanup, "free_executable_cache") {
		t.Error("cleanup does not free the executable cache when caching was enabled")
	}
	if hasCall(cleanup, "free_executable") {
		t.Error("cleanup frees the bare executable directly even though the cache now owns it")
	}
}

func TestBlockRejectsNonShotLoopClassification(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	opaque := classify.Result{Verdict: classify.Opaque, Reason: "not a shot loop"}

	if _, err := Block(m, fn, node, opaque, Options{Target: QVM()}); err == nil {
		t.Error("Block accepted a non-ShotLoop classification")
	}
}

func TestBlockOnQPUTargetCallsExecuteOnQPU(t *testing.T) {
	m, fn, node := buildShotLoopModule(42)
	cls := classify.Classify(fn, node)

	if _, err := Block(m, fn, node, cls, Options{Target: QPU("Aspen-M-3")}); err != nil {
		t.Fatalf("Block: %v", err)
	}

	preds := fn.Predecessors(node)
	var preamble *ir.BasicBlock
	for _, p := range preds {
		if p != node {
			preamble = fn.Blocks[p]
		}
	}
	if !hasCall(preamble, "execute_on_qpu") {
		t.Error("QPU target did not emit an execute_on_qpu call")
	}
	if hasCall(preamble, "execute_on_qvm") {
		t.Error("QPU target unexpectedly also emitted an execute_on_qvm call")
	}
}
