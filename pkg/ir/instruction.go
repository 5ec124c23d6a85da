package ir

// Instruction is satisfied by every instruction kind the pass
// recognizes. Successors mirrors the teacher's rtl.Instruction
// interface: every instruction, even a non-terminator, reports the
// nodes control may flow to next (empty for non-terminators).
type Instruction interface {
	Successors() []Node
}

// Definer is implemented by instructions that produce an SSA value.
type Definer interface {
	Defines() (ValueID, bool)
}

// PhiIncoming is one incoming edge of a Phi instruction.
type PhiIncoming struct {
	Value Operand
	From  Node
}

// Phi selects among values depending on which predecessor block
// transferred control. A shot loop's induction variable is always
// defined by the first Phi of its block.
type Phi struct {
	Result   ValueID
	Name     string
	Type     string
	Incoming []PhiIncoming
}

func (i *Phi) Successors() []Node       { return nil }
func (i *Phi) Defines() (ValueID, bool) { return i.Result, true }

// IncomingFrom returns the operand supplied along the edge from pred,
// and whether such an edge exists.
func (i *Phi) IncomingFrom(pred Node) (Operand, bool) {
	for _, in := range i.Incoming {
		if in.From == pred {
			return in.Value, true
		}
	}
	return nil, false
}

// ReplaceIncomingFrom rewrites every incoming edge whose source block
// matches old (when reverseMatch is false) or whose source block does
// NOT match old (when reverseMatch is true) to instead originate from
// newBlock, preserving the operand value. This mirrors
// replace_phi_clauses from the collaborator's instruction-rewiring
// helper: reverseMatch=true is used to redirect every edge except the
// loop's own back-edge when a preamble block is spliced in front of it.
func (i *Phi) ReplaceIncomingFrom(old, newBlock Node, reverseMatch bool) {
	for idx := range i.Incoming {
		matches := i.Incoming[idx].From == old
		if matches != reverseMatch {
			i.Incoming[idx].From = newBlock
		}
	}
}

// Call invokes a named external function. Result is nil for a void
// call. Quantum-intrinsic calls, ABI calls introduced by the rewrite
// engine, and ordinary user-function calls are all represented here;
// callers distinguish them by looking Callee up in the catalog.
type Call struct {
	Result *ValueID
	Name   string // source-level name of the result, if any
	Type   string // return type, if Result != nil
	Callee string
	Args   []Operand
}

func (i *Call) Successors() []Node { return nil }
func (i *Call) Defines() (ValueID, bool) {
	if i.Result == nil {
		return 0, false
	}
	return *i.Result, true
}

// BinOp is a classical binary arithmetic instruction (e.g. the add-1
// of a shot loop's termination triple).
type BinOp struct {
	Result ValueID
	Name   string
	Op     string // "add", "sub", "mul", ...
	Type   string
	LHS    Operand
	RHS    Operand
}

func (i *BinOp) Successors() []Node       { return nil }
func (i *BinOp) Defines() (ValueID, bool) { return i.Result, true }

// ICmp is an integer comparison instruction, used in a shot loop's
// termination triple to compare the induction variable to the shot
// count literal.
type ICmp struct {
	Result ValueID
	Name   string
	Pred   string // "eq", "ne", "ult", "slt", ...
	LHS    Operand
	RHS    Operand
}

func (i *ICmp) Successors() []Node       { return nil }
func (i *ICmp) Defines() (ValueID, bool) { return i.Result, true }

// Br is a terminator: unconditional when Cond is nil, otherwise a
// two-way conditional branch.
type Br struct {
	Cond       Operand
	TrueBlock  Node
	FalseBlock Node
}

func (i *Br) Successors() []Node {
	if i.Cond == nil {
		return []Node{i.TrueBlock}
	}
	return []Node{i.TrueBlock, i.FalseBlock}
}

// IsConditional reports whether this is a two-way branch.
func (i *Br) IsConditional() bool { return i.Cond != nil }

// Ret is a terminator that returns from the function, optionally with
// a value.
type Ret struct {
	Value Operand // nil for void return
}

func (i *Ret) Successors() []Node { return nil }

// Unreachable marks a block whose control flow never proceeds
// further. No pass in this repository creates one; the printer
// renders it as "unreachable", a keyword the parser does not accept.
type Unreachable struct{}

func (i *Unreachable) Successors() []Node { return nil }

// Terminator reports whether an instruction ends a basic block.
func Terminator(i Instruction) bool {
	switch i.(type) {
	case *Br, *Ret, *Unreachable:
		return true
	default:
		return false
	}
}
