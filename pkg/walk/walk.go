package walk

import (
	"github.com/qir2quil/qir2quil/pkg/catalog"
	"github.com/qir2quil/qir2quil/pkg/classify"
	"github.com/qir2quil/qir2quil/pkg/diag"
	"github.com/qir2quil/qir2quil/pkg/ir"
	"github.com/qir2quil/qir2quil/pkg/rewrite"
)

// requiredExternals are the collaborator-ABI externals every
// rewritten module must declare, per the module walker's
// post-condition.
var requiredExternals = []string{
	"executable_from_quil",
	"execute_on_qvm",
	"execute_on_qpu",
	"set_param",
	"wrap_in_shots",
	"get_readout_bit",
	"panic_on_failure",
	"free_execution_result",
}

// Options configures one walk over a module.
type Options struct {
	Rewrite rewrite.Options
	Sink    diag.Sink
}

// Run finds the entry function, walks its call tree, rewrites every
// reachable shot-loop block, and validates the module's
// post-conditions.
func Run(m *ir.Module, opts Options) error {
	sink := opts.Sink
	if sink == nil {
		sink = diag.NopSink{}
	}

	entry, usedFallback, err := FindEntry(m)
	if err != nil {
		return err
	}
	if usedFallback {
		sink.Warn(diag.Warning{
			Kind:     diag.OpaqueBlockSkipped,
			Function: entry.Name,
			Reason:   "entry function located via name-pattern fallback, not the entrypoint attribute",
		})
	}

	visited := map[string]bool{}
	var queue []*ir.Function
	queue = append(queue, entry)
	rewrites := 0

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		if visited[fn.Name] || fn.External {
			continue
		}
		visited[fn.Name] = true

		n, err := walkFunction(m, fn, sink, opts.Rewrite)
		if err != nil {
			return err
		}
		rewrites += n

		for _, callee := range fn.CalledFunctions() {
			if next, ok := m.FunctionByName(callee); ok && !next.External && !visited[next.Name] {
				queue = append(queue, next)
			}
		}
	}

	return validatePostConditions(m, visited, rewrites)
}

func walkFunction(m *ir.Module, fn *ir.Function, sink diag.Sink, ropts rewrite.Options) (int, error) {
	// Snapshot the block list before rewriting: rewrite.Block adds new
	// blocks to fn.Order, and those synthetic blocks must never be
	// reclassified.
	nodes := append([]ir.Node(nil), fn.Order...)
	rewrites := 0

	for _, node := range nodes {
		cls := classify.Classify(fn, node)
		switch cls.Verdict {
		case classify.ShotLoop:
			if _, err := rewrite.Block(m, fn, node, cls, ropts); err != nil {
				return rewrites, err
			}
			rewrites++
		case classify.Opaque:
			if cls.Reason != "" {
				sink.Warn(diag.Warning{
					Kind:     diag.OpaqueBlockSkipped,
					Function: fn.Name,
					Block:    fn.Blocks[node].Label,
					Reason:   cls.Reason,
				})
			}
		case classify.UnitaryBody:
			// left unchanged; only the façade (C7) consumes these
		}
	}
	return rewrites, nil
}

func validatePostConditions(m *ir.Module, visited map[string]bool, rewrites int) error {
	for name := range visited {
		fn, _ := m.FunctionByName(name)
		for _, node := range fn.Order {
			blk := fn.Blocks[node]
			for offset, inst := range blk.Instructions {
				call, ok := inst.(*ir.Call)
				if !ok {
					continue
				}
				if _, known := catalog.Lookup(call.Callee); known {
					return diag.New(diag.PreconditionViolation, fn.Name, blk.Label).
						WithSub(diag.PostRewriteIntegrity).WithOffset(offset).
						Wrap("residual intrinsic call to %s survived rewrite", call.Callee)
				}
			}
		}
	}

	if rewrites == 0 {
		return nil
	}
	for _, name := range requiredExternals {
		if fn, ok := m.FunctionByName(name); !ok || !fn.External {
			return diag.New(diag.PreconditionViolation, "", "").
				WithSub(diag.PostRewriteIntegrity).
				Wrap("required external %s is not declared", name)
		}
	}
	return nil
}
