package rewrite

import "github.com/qir2quil/qir2quil/pkg/ir"

// declareABI registers every collaborator-ABI external the rewritten
// module may call, regardless of whether this particular block uses
// caching — so linking never fails no matter which blocks in the
// module were rewritten.
func declareABI(m *ir.Module) {
	m.Declare("executable_from_quil", "Executable*", []ir.Param{{Name: "quil", Type: "string*"}})
	m.Declare("wrap_in_shots", "void", []ir.Param{{Name: "executable", Type: "Executable*"}, {Name: "shots", Type: "i32"}})
	m.Declare("set_param", "void", []ir.Param{
		{Name: "executable", Type: "Executable*"},
		{Name: "region", Type: "string*"},
		{Name: "index", Type: "i32"},
		{Name: "value", Type: "double"},
	})
	m.Declare("execute_on_qvm", "ExecutionResult*", []ir.Param{{Name: "executable", Type: "Executable*"}})
	m.Declare("execute_on_qpu", "ExecutionResult*", []ir.Param{
		{Name: "executable", Type: "Executable*"},
		{Name: "qpu_id", Type: "string*"},
	})
	m.Declare("panic_on_failure", "void", []ir.Param{{Name: "result", Type: "ExecutionResult*"}})
	m.Declare("get_readout_bit", "i1", []ir.Param{
		{Name: "result", Type: "ExecutionResult*"},
		{Name: "shot", Type: "i64"},
		{Name: "readout_index", Type: "i64"},
	})
	m.Declare("free_execution_result", "void", []ir.Param{{Name: "result", Type: "ExecutionResult*"}})
	m.Declare("free_executable", "void", []ir.Param{{Name: "executable", Type: "Executable*"}})

	// Executable-cache ABI. Declared unconditionally per the data
	// model's "hooks only" scope; only called when a rewrite runs
	// with CacheExecutables set.
	m.Declare("create_executable_cache", "Cache*", nil)
	m.Declare("add_executable_to_cache", "void", []ir.Param{
		{Name: "cache", Type: "Cache*"},
		{Name: "key", Type: "string*"},
		{Name: "executable", Type: "Executable*"},
	})
	m.Declare("read_executable_from_cache", "Executable*", []ir.Param{
		{Name: "cache", Type: "Cache*"},
		{Name: "key", Type: "string*"},
	})
	m.Declare("free_executable_cache", "void", []ir.Param{{Name: "cache", Type: "Cache*"}})
}

func voidCall(callee string, args ...ir.Operand) *ir.Call {
	return &ir.Call{Callee: callee, Args: args}
}

func valueCall(result ir.ValueID, typ, callee string, args ...ir.Operand) *ir.Call {
	id := result
	return &ir.Call{Result: &id, Type: typ, Callee: callee, Args: args}
}
