package walk

import (
	"testing"

	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/rewrite"
)

func simpleFunction(name string) *ir.Function {
	fn := ir.NewFunction(name)
	entry := fn.AddBlock("entry")
	entry.Append(&ir.Ret{})
	fn.Entry = entry.Node
	return fn
}

func TestFindEntryByAttribute(t *testing.T) {
	m := ir.NewModule("m")
	fn := simpleFunction("RunProgram")
	fn.Entrypoint = true
	m.AddFunction(fn)

	found, fallback, err := FindEntry(m)
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if fallback {
		t.Error("FindEntry reported fallback when the entrypoint attribute was present")
	}
	if found.Name != "RunProgram" {
		t.Errorf("found = %s, want RunProgram", found.Name)
	}
}

func TestFindEntryByNamePatternFallback(t *testing.T) {
	m := ir.NewModule("m")
	m.AddFunction(simpleFunction("Program__Run__body"))

	found, fallback, err := FindEntry(m)
	if err != nil {
		t.Fatalf("FindEntry: %v", err)
	}
	if !fallback {
		t.Error("FindEntry did not report using the fallback")
	}
	if found.Name != "Program__Run__body" {
		t.Errorf("found = %s, want Program__Run__body", found.Name)
	}
}

func TestFindEntryNoEntry(t *testing.T) {
	m := ir.NewModule("m")
	m.AddFunction(simpleFunction("helper"))

	_, _, err := FindEntry(m)
	if err == nil {
		t.Fatal("FindEntry succeeded on a module with no entrypoint-attributed or pattern-matching function")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.NoEntry {
		t.Errorf("error = %v, want a diag.NoEntry diagnostic", err)
	}
}

func TestFindEntryMultipleByAttribute(t *testing.T) {
	m := ir.NewModule("m")
	a := simpleFunction("A")
	a.Entrypoint = true
	b := simpleFunction("B")
	b.Entrypoint = true
	m.AddFunction(a)
	m.AddFunction(b)

	_, _, err := FindEntry(m)
	if err == nil {
		t.Fatal("FindEntry succeeded with two entrypoint-attributed functions")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.MultipleEntry {
		t.Errorf("error = %v, want a diag.MultipleEntry diagnostic", err)
	}
}

func TestFindEntryMultipleByNamePattern(t *testing.T) {
	m := ir.NewModule("m")
	m.AddFunction(simpleFunction("A__Run__body"))
	m.AddFunction(simpleFunction("B__Run__body"))

	_, _, err := FindEntry(m)
	if err == nil {
		t.Fatal("FindEntry succeeded with two name-pattern matches")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.MultipleEntry {
		t.Errorf("error = %v, want a diag.MultipleEntry diagnostic", err)
	}
}

// buildCallTree builds entry -> helper, where entry is attribute-marked
// and helper contains the one shot-loop block in the module.
func buildCallTree(shotCount int64) *ir.Module {
	m := ir.NewModule("m")

	helper := ir.NewFunction("helper")
	hEntry := helper.AddBlock("entry")
	body := helper.AddBlock("body")
	exit := helper.AddBlock("exit")
	hEntry.Append(&ir.Br{TrueBlock: body.Node})

	iv := helper.AllocValue()
	ivNext := helper.AllocValue()
	cmp := helper.AllocValue()
	phi := &ir.Phi{Result: iv, Incoming: []ir.PhiIncoming{
		{Value: ir.ConstInt{Value: 0}, From: hEntry.Node},
		{Value: ir.ValueRef{ID: ivNext}, From: body.Node},
	}}
	body.Append(phi)
	body.Append(&ir.Call{Callee: "__quantum__qis__h__body", Args: []ir.Operand{ir.QubitRef{Index: 0}}})
	body.Append(&ir.BinOp{Result: ivNext, Op: "add", LHS: ir.ValueRef{ID: iv}, RHS: ir.ConstInt{Value: 1}})
	body.Append(&ir.ICmp{Result: cmp, Pred: "eq", LHS: ir.ValueRef{ID: ivNext}, RHS: ir.ConstInt{Value: shotCount}})
	body.Append(&ir.Br{Cond: ir.ValueRef{ID: cmp}, TrueBlock: body.Node, FalseBlock: exit.Node})
	exit.Append(&ir.Ret{})
	helper.Entry = hEntry.Node
	m.AddFunction(helper)

	entryFn := ir.NewFunction("RunProgram")
	entryFn.Entrypoint = true
	eEntry := entryFn.AddBlock("entry")
	eEntry.Append(&ir.Call{Callee: "helper"})
	eEntry.Append(&ir.Ret{})
	entryFn.Entry = eEntry.Node
	m.AddFunction(entryFn)

	return m
}

func TestRunRewritesReachableShotLoopThroughCallTree(t *testing.T) {
	m := buildCallTree(42)

	if err := Run(m, Options{Rewrite: rewrite.Options{Target: rewrite.QVM()}}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	helper, _ := m.FunctionByName("helper")
	for _, node := range helper.Order {
		for _, inst := range helper.Blocks[node].Instructions {
			if call, ok := inst.(*ir.Call); ok && call.Callee == "__quantum__qis__h__body" {
				t.Errorf("residual intrinsic call survived Run: %s", call.Callee)
			}
		}
	}

	for _, name := range requiredExternals {
		if fn, ok := m.FunctionByName(name); !ok || !fn.External {
			t.Errorf("Run did not declare required external %s", name)
		}
	}
}

func TestRunWithNoShotLoopsSkipsABIRequirement(t *testing.T) {
	m := ir.NewModule("m")
	entryFn := simpleFunction("RunProgram")
	entryFn.Entrypoint = true
	m.AddFunction(entryFn)

	if err := Run(m, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := m.FunctionByName("executable_from_quil"); ok {
		t.Error("Run declared the collaborator ABI even though it performed zero rewrites")
	}
}

func TestRunRecordsOpaqueBlockWarnings(t *testing.T) {
	m := ir.NewModule("m")
	entryFn := ir.NewFunction("RunProgram")
	entryFn.Entrypoint = true
	entry := entryFn.AddBlock("entry")
	entry.Append(&ir.Ret{})
	entryFn.Entry = entry.Node
	m.AddFunction(entryFn)

	sink := &diag.CollectingSink{}
	if err := Run(m, Options{Sink: sink}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// entry's single block is Opaque only if Classify finds no
	// recognizable structure with a non-empty reason; a Ret-only
	// block is empty of intrinsics, so Classify returns Opaque with
	// the "no recognizable..." reason, which Run must forward.
	if len(sink.Warnings) == 0 {
		t.Error("Run recorded no warnings for an opaque block with a reason")
	}
}

func TestRunFlagsFallbackEntryAsWarning(t *testing.T) {
	m := ir.NewModule("m")
	m.AddFunction(simpleFunction("Program__Run__body"))

	sink := &diag.CollectingSink{}
	if err := Run(m, Options{Sink: sink}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var sawFallbackWarning bool
	for _, w := range sink.Warnings {
		if w.Function == "Program__Run__body" {
			sawFallbackWarning = true
		}
	}
	if !sawFallbackWarning {
		t.Error("Run did not warn about locating the entry function via the name-pattern fallback")
	}
}
