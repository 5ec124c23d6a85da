package params

import (
	"testing"

	"github.com/qir2quil/qir2quil/pkg/ir"
)

func TestHoistDedupesByValueIdentity(t *testing.T) {
	h := NewHoister()
	a := ir.ValueRef{ID: 1}
	b := ir.ValueRef{ID: 2}

	slotA1 := h.Hoist(a)
	slotB := h.Hoist(b)
	slotA2 := h.Hoist(a)

	if slotA1 != slotA2 {
		t.Errorf("the same ValueID got two different slots: %d, %d", slotA1, slotA2)
	}
	if slotA1 == slotB {
		t.Errorf("distinct ValueIDs collapsed into the same slot")
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHoistNeverDedupesConstantsStructurally(t *testing.T) {
	h := NewHoister()
	slot1 := h.Hoist(ir.ConstFloat{Value: 2.0})
	slot2 := h.Hoist(ir.ConstFloat{Value: 2.0})

	if slot1 == slot2 {
		t.Error("two occurrences of an equal-valued constant were collapsed into one slot")
	}
}

func TestBindingsPreserveFirstOccurrenceOrder(t *testing.T) {
	h := NewHoister()
	a := ir.ValueRef{ID: 10}
	lit := ir.ConstFloat{Value: 2.0}
	lit2 := ir.ConstFloat{Value: 12.123456789}

	h.Hoist(a)
	h.Hoist(a) // repeat use, same slot
	h.Hoist(lit)
	h.Hoist(lit2)

	bindings := h.Bindings()
	if len(bindings) != 3 {
		t.Fatalf("Bindings() returned %d entries, want 3", len(bindings))
	}
	if bindings[0].Value != ir.Operand(a) {
		t.Errorf("Bindings()[0] = %#v, want the first value seen (a)", bindings[0])
	}
	if bindings[1].Value != ir.Operand(lit) {
		t.Errorf("Bindings()[1] = %#v, want lit", bindings[1])
	}
	if bindings[2].Value != ir.Operand(lit2) {
		t.Errorf("Bindings()[2] = %#v, want lit2", bindings[2])
	}
}

func TestHoisterSlotsStableAcrossRepeatedRuns(t *testing.T) {
	build := func() []Binding {
		h := NewHoister()
		a := ir.ValueRef{ID: 42}
		h.Hoist(a)
		h.Hoist(ir.ConstFloat{Value: 1})
		h.Hoist(a)
		return h.Bindings()
	}

	first := build()
	second := build()
	if len(first) != len(second) {
		t.Fatalf("got different binding counts across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Index != second[i].Index {
			t.Errorf("binding %d: slot %d vs %d across identical runs", i, first[i].Index, second[i].Index)
		}
	}
}
