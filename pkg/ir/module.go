package ir

import "strconv"

// Global is a module-level global constant. The pass only ever
// introduces string constants (Quil program text, a QPU id, a
// cache key), so that is the only global kind modeled here.
type Global struct {
	Name  string
	Value string
}

// Module is a whole QIR program: function declarations (external, no
// body), function definitions, and global string constants.
type Module struct {
	Name      string
	Globals   []Global
	Functions []*Function

	nextRewrite uint64
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// FunctionByName looks up a function (declared or defined) by symbol.
func (m *Module) FunctionByName(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// AddFunction appends a function to the module, replacing any prior
// declaration of the same name (a definition that follows a forward
// declaration supersedes it, matching ordinary LLVM-IR modules).
func (m *Module) AddFunction(f *Function) {
	for idx, existing := range m.Functions {
		if existing.Name == f.Name {
			m.Functions[idx] = f
			return
		}
	}
	m.Functions = append(m.Functions, f)
}

// Declare registers an external function declaration if one by this
// name is not already present, and is a no-op otherwise. Used by the
// rewrite engine to ensure the collaborator ABI is always declared on
// a rewritten module regardless of how many blocks get rewritten.
func (m *Module) Declare(name, returnType string, params []Param) {
	if _, ok := m.FunctionByName(name); ok {
		return
	}
	m.Functions = append(m.Functions, &Function{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		External:   true,
	})
}

// AddGlobalString appends a uniquely-named string global derived from
// base (suffixed with a counter if base collides with an existing
// global) and returns the name actually used. Per the design note on
// global-string collisions, every rewrite must be able to call this
// without colliding with another rewrite's globals in the same
// module.
func (m *Module) AddGlobalString(base, value string) string {
	name := base
	suffix := 0
	for m.hasGlobal(name) {
		suffix++
		name = base + "." + strconv.Itoa(suffix)
	}
	m.Globals = append(m.Globals, Global{Name: name, Value: value})
	return name
}

// NextRewriteIndex returns a module-unique, monotonically increasing
// index for the rewrite engine to suffix onto a rewritten block's
// private globals and labels, so two rewrites in the same module never
// collide (the global-string collisions design note). Scoped to this
// Module, not process-wide.
func (m *Module) NextRewriteIndex() uint64 {
	idx := m.nextRewrite
	m.nextRewrite++
	return idx
}

func (m *Module) hasGlobal(name string) bool {
	for _, g := range m.Globals {
		if g.Name == name {
			return true
		}
	}
	return false
}
