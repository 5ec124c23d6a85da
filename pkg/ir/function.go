package ir

// BasicBlock is one node of a function's CFG: a source label and an
// ordered instruction list ending in a terminator (every block the
// parser accepts is terminated; the rewrite engine is responsible for
// keeping that invariant true of any block it edits).
type BasicBlock struct {
	Node         Node
	Label        string
	Instructions []Instruction
}

// Terminator returns the block's last instruction, which must satisfy
// Terminator(i).
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}

// Append adds an instruction after everything already in the block,
// a terminator included, so callers append the terminator last.
// Callers that need to replace the terminator should do so by
// mutating Instructions directly.
func (b *BasicBlock) Append(i Instruction) {
	b.Instructions = append(b.Instructions, i)
}

// RemoveInstructions deletes every instruction in doomed from the
// block, preserving relative order of what remains. Mirrors
// remove_instructions_in_safe_order's effect once the caller has
// already established that nothing outside doomed still uses their
// results (the rewrite engine enforces that before calling this).
func (b *BasicBlock) RemoveInstructions(doomed map[Instruction]bool) {
	kept := b.Instructions[:0:0]
	for _, i := range b.Instructions {
		if !doomed[i] {
			kept = append(kept, i)
		}
	}
	b.Instructions = kept
}

// Function is a defined or declared QIR function: a name, parameters,
// and — for a definition — a node-indexed CFG mirroring the teacher's
// rtl.Function.Code map[Node]Instruction.
type Function struct {
	Name       string
	Params     []Param
	ReturnType string
	External   bool // true for a declaration with no body
	Entrypoint bool // carries the entrypoint attribute

	Order  []Node // source order of block definition
	Blocks map[Node]*BasicBlock
	Entry  Node

	nextNode  Node
	nextValue ValueID
}

// NewFunction creates an empty function definition ready for the
// builder to populate.
func NewFunction(name string) *Function {
	return &Function{
		Name:   name,
		Blocks: map[Node]*BasicBlock{},
	}
}

// AllocNode reserves a fresh Node for a new basic block, mirroring
// CFGBuilder.AllocNode.
func (f *Function) AllocNode() Node {
	n := f.nextNode
	f.nextNode++
	return n
}

// AllocValue reserves a fresh ValueID for a new SSA definition in this
// function, mirroring AllocNode's per-function counter.
func (f *Function) AllocValue() ValueID {
	f.nextValue++
	return f.nextValue
}

// AddBlock allocates a node, creates a block with the given label, and
// appends it to Order, returning the new block for the caller to fill
// in.
func (f *Function) AddBlock(label string) *BasicBlock {
	n := f.AllocNode()
	b := &BasicBlock{Node: n, Label: label}
	f.Blocks[n] = b
	f.Order = append(f.Order, n)
	return b
}

// InsertBlockAfter splices blk into Order immediately after the block
// named after, so text output keeps the new block near the code it
// belongs with. It does not rewire any control flow.
func (f *Function) InsertBlockAfter(after Node, blk *BasicBlock) {
	f.Blocks[blk.Node] = blk
	for idx, n := range f.Order {
		if n == after {
			f.Order = append(f.Order[:idx+1], append([]Node{blk.Node}, f.Order[idx+1:]...)...)
			return
		}
	}
	f.Order = append(f.Order, blk.Node)
}

// BlockByLabel finds a block by its source label.
func (f *Function) BlockByLabel(label string) (*BasicBlock, bool) {
	for _, n := range f.Order {
		if f.Blocks[n].Label == label {
			return f.Blocks[n], true
		}
	}
	return nil, false
}

// Predecessors returns every node with an edge into target, in block
// order.
func (f *Function) Predecessors(target Node) []Node {
	var preds []Node
	for _, n := range f.Order {
		b := f.Blocks[n]
		term := b.Terminator()
		if term == nil {
			continue
		}
		for _, s := range term.Successors() {
			if s == target {
				preds = append(preds, n)
				break
			}
		}
	}
	return preds
}

// CalledFunctions returns the set of callee symbol names invoked
// anywhere in the function body, deduplicated.
func (f *Function) CalledFunctions() []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range f.Order {
		for _, inst := range f.Blocks[n].Instructions {
			if call, ok := inst.(*Call); ok {
				if !seen[call.Callee] {
					seen[call.Callee] = true
					names = append(names, call.Callee)
				}
			}
		}
	}
	return names
}
