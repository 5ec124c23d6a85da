// Package params implements the parameter hoister (C4): for each
// distinct real-valued IR value seen at a shot-loop call site, it
// assigns a stable slot in the named "__qir_param" memory region.
package params

import "github.com/qir2quil/qir2quil/pkg/ir"

// RegionName is the fixed, null-terminated-in-the-emitted-module name
// of the parameter memory region, shared across every rewrite in a
// module per the data model's parameter-memory-region naming rule.
const RegionName = "__qir_param"

// Binding records that slot Index was bound to the original IR value
// Value at hoist time.
type Binding struct {
	Index uint64
	Value ir.Operand
}

// Hoister maintains a per-block mapping from IR-value identity to a
// parameter slot. It never compares operands structurally: two
// ConstFloat operands with equal values still get distinct slots.
// Only ir.ValueRef operands with the same ir.ValueID share a slot;
// operands with no ValueID are never deduplicated (see Hoist).
type Hoister struct {
	order    []Binding
	slotByID map[ir.ValueID]uint64
	hasID    map[uint64]bool // slot -> whether it was keyed by ValueID
}

// NewHoister returns an empty hoister, ready for one block's call
// sequence.
func NewHoister() *Hoister {
	return &Hoister{slotByID: map[ir.ValueID]uint64{}}
}

// Hoist returns the slot index bound to operand, allocating a new one
// in order-of-first-encounter if this is the first time this exact IR
// value has been seen. Operands that denote an SSA definition
// (ir.ValueRef) are deduplicated by ValueID; every other operand kind
// (constants decoded at parse time with no identity of their own) is
// never deduplicated against another occurrence — each call site gets
// its own slot unless the caller passes the identical ir.ValueRef.
func (h *Hoister) Hoist(operand ir.Operand) uint64 {
	if ref, ok := operand.(ir.ValueRef); ok {
		if slot, ok := h.slotByID[ref.ID]; ok {
			return slot
		}
		slot := uint64(len(h.order))
		h.slotByID[ref.ID] = slot
		h.order = append(h.order, Binding{Index: slot, Value: operand})
		return slot
	}
	slot := uint64(len(h.order))
	h.order = append(h.order, Binding{Index: slot, Value: operand})
	return slot
}

// Bindings returns the parameter table in slot order.
func (h *Hoister) Bindings() []Binding {
	return h.order
}

// Len reports how many slots have been allocated (the P in
// DECLARE __qir_param REAL[P]).
func (h *Hoister) Len() int {
	return len(h.order)
}
