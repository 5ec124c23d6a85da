// Package ir defines the QIR data model: modules, functions, a
// node-indexed control-flow graph of basic blocks, and the operand
// types that name qubits, results, constants, and SSA values.
package ir

// Node identifies a basic block within a function's CFG, mirroring the
// teacher's rtl.Node idiom: small, dense, and allocated per function
// rather than per module.
type Node int

// ValueID identifies an SSA definition (an instruction result, a block
// parameter, or a function argument) within the function that defines
// it. Hoisting and readout rewriting key on ValueID, never on textual
// or structural equality between operands. Allocated by
// (*Function).AllocValue, never shared across functions or modules.
type ValueID uint64

// Operand is any value an instruction may consume: a reference to a
// prior definition, a constant, or a decoded qubit/result index.
type Operand interface {
	isOperand()
}

// ValueRef refers to a previously defined SSA value by identity.
type ValueRef struct {
	ID   ValueID
	Name string // source-level name, e.g. "%3"; informational only
}

// ConstInt is an integer literal operand.
type ConstInt struct {
	Value int64
	Bits  int // bit width, e.g. 1, 32, 64
}

// ConstFloat is a floating-point literal operand (QIR uses double).
type ConstFloat struct {
	Value float64
}

// QubitRef is a decoded qubit index. In the source text this appears
// as an opaque-pointer operand ("integer cast to qubit-pointer"); the
// parser centralizes that decoding so nothing downstream sees the cast.
type QubitRef struct {
	Index uint64
}

// ResultRef is a decoded result index, decoded the same way as QubitRef.
type ResultRef struct {
	Index uint64
}

// GlobalRef names a module-level global (a string constant or a
// function) by symbol name.
type GlobalRef struct {
	Name string
}

func (ValueRef) isOperand()   {}
func (ConstInt) isOperand()   {}
func (ConstFloat) isOperand() {}
func (QubitRef) isOperand()   {}
func (ResultRef) isOperand()  {}
func (GlobalRef) isOperand()  {}

// Param is a function parameter: a name and a source-level type string
// (kept as text since the pass never interprets classical types beyond
// the handful it must recognize).
type Param struct {
	Name string
	ID   ValueID
	Type string
}
