package ir

import "testing"

func TestFunctionAllocValueUnique(t *testing.T) {
	fn := NewFunction("f")
	seen := map[ValueID]bool{}
	for i := 0; i < 100; i++ {
		id := fn.AllocValue()
		if seen[id] {
			t.Fatalf("AllocValue returned a repeated id %d", id)
		}
		seen[id] = true
	}
}

func TestModuleDeclareIdempotent(t *testing.T) {
	m := NewModule("test")
	m.Declare("foo", "void", []Param{{Type: "i64"}})
	m.Declare("foo", "i32", []Param{{Type: "double"}})

	fn, ok := m.FunctionByName("foo")
	if !ok {
		t.Fatal("foo was not declared")
	}
	if fn.ReturnType != "void" {
		t.Errorf("second Declare call overwrote the first: ReturnType = %q", fn.ReturnType)
	}
	if len(m.Functions) != 1 {
		t.Errorf("len(Functions) = %d, want 1", len(m.Functions))
	}
}

func TestModuleAddFunctionSupersedesDeclaration(t *testing.T) {
	m := NewModule("test")
	m.Declare("foo", "void", nil)

	def := NewFunction("foo")
	def.ReturnType = "void"
	m.AddFunction(def)

	fn, _ := m.FunctionByName("foo")
	if fn.External {
		t.Error("AddFunction did not supersede the external declaration")
	}
	if len(m.Functions) != 1 {
		t.Errorf("len(Functions) = %d, want 1", len(m.Functions))
	}
}

func TestAddGlobalStringDedupesNames(t *testing.T) {
	m := NewModule("test")
	first := m.AddGlobalString("__qir2quil.quil", "A")
	second := m.AddGlobalString("__qir2quil.quil", "B")

	if first == second {
		t.Fatalf("two distinct globals were given the same name %q", first)
	}
	if len(m.Globals) != 2 {
		t.Fatalf("len(Globals) = %d, want 2", len(m.Globals))
	}
}

func TestFunctionPredecessors(t *testing.T) {
	fn := NewFunction("f")
	entry := fn.AddBlock("entry")
	body := fn.AddBlock("body")
	exit := fn.AddBlock("exit")

	entry.Append(&Br{TrueBlock: body.Node})
	body.Append(&Br{Cond: ValueRef{}, TrueBlock: body.Node, FalseBlock: exit.Node})
	exit.Append(&Ret{})

	preds := fn.Predecessors(body.Node)
	if len(preds) != 2 {
		t.Fatalf("Predecessors(body) = %v, want 2 entries (entry, body's own back-edge)", preds)
	}
}

func TestPhiReplaceIncomingFromReverseMatch(t *testing.T) {
	fn := NewFunction("f")
	entry := fn.AddBlock("entry")
	loop := fn.AddBlock("loop")
	preamble := fn.AddBlock("preamble")

	phi := &Phi{
		Result: fn.AllocValue(),
		Incoming: []PhiIncoming{
			{Value: ConstInt{Value: 0}, From: entry.Node},
			{Value: ValueRef{}, From: loop.Node},
		},
	}

	// reverseMatch=true redirects every edge except the one whose
	// source is loop itself.
	phi.ReplaceIncomingFrom(loop.Node, preamble.Node, true)

	if phi.Incoming[0].From != preamble.Node {
		t.Errorf("entry-predecessor edge was not redirected to the preamble")
	}
	if phi.Incoming[1].From != loop.Node {
		t.Errorf("loop's own back-edge was redirected; it must stay pointing at loop")
	}
}

func TestBasicBlockRemoveInstructionsPreservesOrder(t *testing.T) {
	blk := &BasicBlock{Label: "b"}
	a := &Call{Callee: "a"}
	b := &Call{Callee: "b"}
	c := &Call{Callee: "c"}
	blk.Append(a)
	blk.Append(b)
	blk.Append(c)

	blk.RemoveInstructions(map[Instruction]bool{b: true})

	if len(blk.Instructions) != 2 || blk.Instructions[0] != a || blk.Instructions[1] != c {
		t.Fatalf("RemoveInstructions did not preserve order of the surviving instructions: %v", blk.Instructions)
	}
}
