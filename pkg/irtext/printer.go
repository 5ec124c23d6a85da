package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qir2quil/qir2quil/pkg/ir"
)

// Print renders m back to the textual grammar documented in token.go.
// Block order within each function is computed by reverse-postorder
// DFS from the entry node, following the teacher's linearize.go
// idiom, rather than trusting Function.Order's insertion sequence —
// a rewrite can leave Order in an order that would read strangely
// (preamble/cleanup blocks appended after blocks that logically
// follow them), while a DFS from the entry always reads top-to-bottom
// the way control actually flows.
//
// Global string constants are appended as `@name = constant "..."`
// lines; that form is not part of the grammar in token.go, and the
// parser does not read it back.
func Print(m *ir.Module) string {
	var b strings.Builder
	for _, fn := range m.Functions {
		if fn.External {
			printDeclaration(&b, fn)
		}
	}
	for _, fn := range m.Functions {
		if !fn.External {
			printDefinition(&b, fn)
		}
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&b, "@%s = constant %q\n", g.Name, g.Value)
	}
	return b.String()
}

func printDeclaration(b *strings.Builder, fn *ir.Function) {
	types := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		types[i] = p.Type
	}
	fmt.Fprintf(b, "declare %s @%s(%s)\n", fn.ReturnType, fn.Name, strings.Join(types, ", "))
}

func printDefinition(b *strings.Builder, fn *ir.Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Type, p.Name)
	}
	fmt.Fprintf(b, "define %s @%s(%s)", fn.ReturnType, fn.Name, strings.Join(params, ", "))
	if fn.Entrypoint {
		b.WriteString(" entry_point")
	}
	b.WriteString(" {\n")

	order := reversePostorder(fn)
	labels := blockLabels(fn, order)
	for idx, n := range order {
		blk := fn.Blocks[n]
		fmt.Fprintf(b, "%s:\n", labels[n])
		for i := 0; i < len(blk.Instructions)-1; i++ {
			printInstruction(b, blk.Instructions[i], labels)
		}
		if term := blk.Terminator(); term != nil {
			printTerminator(b, term, labels, order, idx)
		}
	}
	b.WriteString("}\n")
}

// reversePostorder computes block ordering for fn via DFS over
// successors from the entry, matching the teacher's computeOrder.
func reversePostorder(fn *ir.Function) []ir.Node {
	visited := map[ir.Node]bool{}
	var postorder []ir.Node

	var dfs func(n ir.Node)
	dfs = func(n ir.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		blk, ok := fn.Blocks[n]
		if !ok {
			return
		}
		if term := blk.Terminator(); term != nil {
			for _, succ := range term.Successors() {
				dfs(succ)
			}
		}
		postorder = append(postorder, n)
	}

	entry := fn.Entry
	if len(fn.Order) > 0 {
		entry = fn.Order[0]
	}
	// The entry's own reverse postorder comes first; blocks unreachable
	// from it follow, each group in its own reverse postorder.
	var order []ir.Node
	for _, root := range append([]ir.Node{entry}, fn.Order...) {
		if visited[root] {
			continue
		}
		postorder = nil
		dfs(root)
		for i := len(postorder) - 1; i >= 0; i-- {
			order = append(order, postorder[i])
		}
	}
	return order
}

func blockLabels(fn *ir.Function, order []ir.Node) map[ir.Node]string {
	labels := make(map[ir.Node]string, len(order))
	for _, n := range order {
		labels[n] = fn.Blocks[n].Label
	}
	return labels
}

func printInstruction(b *strings.Builder, inst ir.Instruction, labels map[ir.Node]string) {
	switch i := inst.(type) {
	case *ir.Phi:
		parts := make([]string, len(i.Incoming))
		for idx, in := range i.Incoming {
			parts[idx] = fmt.Sprintf("[ %s, %%%s ]", renderOperand(in.Value), labels[in.From])
		}
		fmt.Fprintf(b, "  %%%s = phi %s %s\n", i.Name, i.Type, strings.Join(parts, ", "))
	case *ir.Call:
		args := make([]string, len(i.Args))
		for idx, a := range i.Args {
			args[idx] = renderArgument(a)
		}
		if i.Result != nil {
			fmt.Fprintf(b, "  %%%s = call %s @%s(%s)\n", i.Name, i.Type, i.Callee, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(b, "  call void @%s(%s)\n", i.Callee, strings.Join(args, ", "))
		}
	case *ir.BinOp:
		fmt.Fprintf(b, "  %%%s = %s %s %s, %s\n", i.Name, i.Op, i.Type, renderOperand(i.LHS), renderOperand(i.RHS))
	case *ir.ICmp:
		fmt.Fprintf(b, "  %%%s = icmp %s %s %s, %s\n", i.Name, i.Pred, "i64", renderOperand(i.LHS), renderOperand(i.RHS))
	}
}

func printTerminator(b *strings.Builder, term ir.Instruction, labels map[ir.Node]string, order []ir.Node, idx int) {
	var next ir.Node
	hasNext := idx+1 < len(order)
	if hasNext {
		next = order[idx+1]
	}

	switch t := term.(type) {
	case *ir.Br:
		if !t.IsConditional() {
			if hasNext && t.TrueBlock == next {
				return
			}
			fmt.Fprintf(b, "  br label %%%s\n", labels[t.TrueBlock])
			return
		}
		fmt.Fprintf(b, "  br i1 %s, label %%%s, label %%%s\n",
			renderOperand(t.Cond), labels[t.TrueBlock], labels[t.FalseBlock])
	case *ir.Ret:
		if t.Value == nil {
			b.WriteString("  ret void\n")
			return
		}
		fmt.Fprintf(b, "  ret %s %s\n", argType(t.Value), renderOperand(t.Value))
	case *ir.Unreachable:
		b.WriteString("  unreachable\n")
	}
}

// renderArgument renders one call argument: the bare qubit(N) /
// result(N) shorthand stands alone, everything else gets a type
// prefix so the parser's "type operand" pairing round-trips.
func renderArgument(op ir.Operand) string {
	switch op.(type) {
	case ir.QubitRef, ir.ResultRef:
		return renderOperand(op)
	}
	return argType(op) + " " + renderOperand(op)
}

func argType(op ir.Operand) string {
	switch op.(type) {
	case ir.ConstFloat:
		return "double"
	case ir.GlobalRef:
		return "string*"
	default:
		return "i64"
	}
}

func renderOperand(op ir.Operand) string {
	switch v := op.(type) {
	case ir.ValueRef:
		return "%" + v.Name
	case ir.ConstInt:
		return strconv.FormatInt(v.Value, 10)
	case ir.ConstFloat:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case ir.QubitRef:
		return "qubit(" + strconv.FormatUint(v.Index, 10) + ")"
	case ir.ResultRef:
		return "result(" + strconv.FormatUint(v.Index, 10) + ")"
	case ir.GlobalRef:
		return "@" + v.Name
	default:
		return ""
	}
}
