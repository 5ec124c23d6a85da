// Package quil models the small subset of the Quil instruction
// language this tool ever emits: memory declarations, gate
// instructions (with DAGGER), and MEASURE. It also provides a printer
// and a minimal parser used only by tests to check round-tripping.
package quil

import "fmt"

// Expression is a gate parameter: either a literal real number or a
// reference into a declared memory region.
type Expression interface {
	String() string
}

// Literal is a constant real number, formatted with enough precision
// to round-trip (at least 17 significant digits).
type Literal struct {
	Value float64
}

func (l Literal) String() string {
	return fmt.Sprintf("%.17g", l.Value)
}

// MemoryRef addresses one slot of a declared memory region, e.g.
// __qir_param[3].
type MemoryRef struct {
	Name  string
	Index uint64
}

func (m MemoryRef) String() string {
	return fmt.Sprintf("%s[%d]", m.Name, m.Index)
}

// Qubit is a fixed qubit index.
type Qubit uint64

// Declare is a DECLARE header instruction.
type Declare struct {
	Name string
	Type string // "REAL" or "BIT"
	Size uint64
}

// Gate is a unitary instruction, optionally carrying the DAGGER
// modifier.
type Gate struct {
	Name       string
	Dagger     bool
	Parameters []Expression
	Qubits     []Qubit
}

// Measurement is a MEASURE instruction.
type Measurement struct {
	Qubit  Qubit
	Target MemoryRef
}

// Pragma is a PRAGMA instruction, used for the rewiring pragma.
type Pragma struct {
	Name string
	Args []string
}

// Instruction is any Quil body instruction (excluding DECLARE
// headers, which are tracked separately on Program).
type Instruction interface {
	isInstruction()
}

func (Gate) isInstruction()        {}
func (Measurement) isInstruction() {}
func (Pragma) isInstruction()      {}

// Program is a whole Quil program: DECLARE headers in declaration
// order, followed by body instructions in source order.
type Program struct {
	Declarations []Declare
	Body         []Instruction
}

// AddDeclaration appends a DECLARE header.
func (p *Program) AddDeclaration(d Declare) {
	p.Declarations = append(p.Declarations, d)
}

// AddInstruction appends a body instruction.
func (p *Program) AddInstruction(i Instruction) {
	p.Body = append(p.Body, i)
}
