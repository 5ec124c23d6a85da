package irtext

import (
	"fmt"
	"strconv"

	"github.com/qir2quil/qir2quil/pkg/ir"
)

// Parser is a recursive-descent parser over a Lexer's token stream,
// mirroring the teacher's Parser: a lexer, one token of lookahead,
// and an accumulated error list rather than panicking on the first
// malformed line.
type Parser struct {
	l         *Lexer
	curToken  Token
	peekToken Token
	errors    []string

	fn      *ir.Function
	locals  map[string]ir.ValueID
	pending []pendingTarget // branch/phi targets to resolve once all blocks are known
}

type pendingTarget struct {
	resolve func(ir.Node)
	label   string
}

// NewParser returns a Parser reading from l.
func NewParser(l *Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s", p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curIs(k Kind) bool  { return p.curToken.Kind == k }
func (p *Parser) curIsKeyword(kw string) bool {
	return p.curToken.Kind == Ident && p.curToken.Text == kw
}

func (p *Parser) expect(k Kind) (string, bool) {
	if p.curIs(k) {
		text := p.curToken.Text
		p.nextToken()
		return text, true
	}
	p.addError("expected token kind %d, got %q", k, p.curToken.Text)
	return "", false
}

func (p *Parser) skipNewlines() {
	for p.curIs(Newline) {
		p.nextToken()
	}
}

// ParseModule parses a whole module from the lexer's input.
func (p *Parser) ParseModule(name string) (*ir.Module, error) {
	m := ir.NewModule(name)
	p.skipNewlines()
	for !p.curIs(EOF) {
		switch {
		case p.curIsKeyword("declare"):
			p.parseDeclaration(m)
		case p.curIsKeyword("define"):
			p.parseDefinition(m)
		default:
			p.addError("expected 'declare' or 'define', got %q", p.curToken.Text)
			p.nextToken()
		}
		p.skipNewlines()
	}
	if len(p.errors) > 0 {
		return nil, fmt.Errorf("irtext: %d parse error(s): %s", len(p.errors), p.errors[0])
	}
	return m, nil
}

func (p *Parser) parseType() string {
	if !p.curIs(Ident) {
		p.addError("expected a type, got %q", p.curToken.Text)
		p.nextToken()
		return ""
	}
	typ := p.curToken.Text
	p.nextToken()
	for p.curIs(Star) {
		typ += "*"
		p.nextToken()
	}
	return typ
}

func (p *Parser) parseDeclaration(m *ir.Module) {
	p.nextToken() // "declare"
	ret := p.parseType()
	name, _ := p.expect(Global)
	p.expect(LParen)
	var params []ir.Param
	for !p.curIs(RParen) && !p.curIs(EOF) {
		t := p.parseType()
		params = append(params, ir.Param{Type: t})
		if p.curIs(Comma) {
			p.nextToken()
		}
	}
	p.expect(RParen)
	m.Declare(name, ret, params)
}

func (p *Parser) parseDefinition(m *ir.Module) {
	p.nextToken() // "define"
	ret := p.parseType()
	name, _ := p.expect(Global)

	fn := ir.NewFunction(name)
	fn.ReturnType = ret
	p.fn = fn
	p.locals = map[string]ir.ValueID{}
	p.pending = nil

	p.expect(LParen)
	for !p.curIs(RParen) && !p.curIs(EOF) {
		t := p.parseType()
		paramName, _ := p.expect(Local)
		id := fn.AllocValue()
		p.locals[paramName] = id
		fn.Params = append(fn.Params, ir.Param{Name: paramName, ID: id, Type: t})
		if p.curIs(Comma) {
			p.nextToken()
		}
	}
	p.expect(RParen)

	if p.curIsKeyword("entry_point") {
		fn.Entrypoint = true
		p.nextToken()
	}

	p.expect(LBrace)
	p.skipNewlines()
	for !p.curIs(RBrace) && !p.curIs(EOF) {
		p.parseBlock(fn)
		p.skipNewlines()
	}
	p.expect(RBrace)

	for _, pt := range p.pending {
		blk, ok := fn.BlockByLabel(pt.label)
		if !ok {
			p.addError("branch target %%%s is not a block in %s", pt.label, fn.Name)
			continue
		}
		pt.resolve(blk.Node)
	}

	// Print leaves out an unconditional branch to the block printed
	// right after it; restore that fall-through edge so every accepted
	// block ends in a terminator.
	for idx, n := range fn.Order {
		blk := fn.Blocks[n]
		if term := blk.Terminator(); term != nil && ir.Terminator(term) {
			continue
		}
		if idx+1 < len(fn.Order) {
			blk.Append(&ir.Br{TrueBlock: fn.Order[idx+1]})
		} else {
			p.addError("block %s in %s has no terminator", blk.Label, fn.Name)
		}
	}

	m.AddFunction(fn)
}

func (p *Parser) parseBlock(fn *ir.Function) {
	label, _ := p.expect(Ident)
	p.expect(Colon)
	p.skipNewlines()

	blk := fn.AddBlock(label)
	for !p.curIs(RBrace) && !p.curIsBlockStart() && !p.curIs(EOF) {
		inst := p.parseInstruction()
		if inst != nil {
			blk.Append(inst)
		}
		p.skipNewlines()
	}
}

// curIsBlockStart reports whether the parser is looking at the start
// of the next block: an identifier immediately followed by ':'.
func (p *Parser) curIsBlockStart() bool {
	return p.curIs(Ident) && p.peekToken.Kind == Colon
}

func (p *Parser) parseInstruction() ir.Instruction {
	switch {
	case p.curIs(Local):
		return p.parseAssignment()
	case p.curIsKeyword("call"):
		return p.parseCall(nil, "")
	case p.curIsKeyword("br"):
		return p.parseBr()
	case p.curIsKeyword("ret"):
		return p.parseRet()
	default:
		p.addError("unexpected token %q at start of instruction", p.curToken.Text)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseAssignment() ir.Instruction {
	name, _ := p.expect(Local)
	p.expect(Equals)
	// A phi earlier in the block may already have forward-referenced
	// this name (e.g. the induction variable's self incoming edge);
	// reuse that identity instead of allocating a second one.
	id, ok := p.locals[name]
	if !ok {
		id = p.fn.AllocValue()
		p.locals[name] = id
	}

	switch {
	case p.curIsKeyword("phi"):
		return p.parsePhi(id, name)
	case p.curIsKeyword("call"):
		return p.parseCall(&id, name)
	case p.curIsKeyword("add") || p.curIsKeyword("sub") || p.curIsKeyword("mul"):
		return p.parseBinOp(id, name)
	case p.curIsKeyword("icmp"):
		return p.parseICmp(id, name)
	default:
		p.addError("unexpected opcode %q after assignment", p.curToken.Text)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parsePhi(id ir.ValueID, name string) ir.Instruction {
	p.nextToken() // "phi"
	typ := p.parseType()
	phi := &ir.Phi{Result: id, Name: name, Type: typ}
	for {
		p.expect(LBracket)
		val := p.parseOperand()
		p.expect(Comma)
		label, _ := p.expect(Local)
		p.expect(RBracket)

		in := ir.PhiIncoming{Value: val}
		idx := len(phi.Incoming)
		phi.Incoming = append(phi.Incoming, in)
		p.pending = append(p.pending, pendingTarget{label: label, resolve: func(n ir.Node) {
			phi.Incoming[idx].From = n
		}})

		if p.curIs(Comma) {
			p.nextToken()
			continue
		}
		break
	}
	return phi
}

func (p *Parser) parseCall(id *ir.ValueID, name string) ir.Instruction {
	p.nextToken() // "call"
	typ := p.parseType()
	callee, _ := p.expect(Global)
	p.expect(LParen)
	var args []ir.Operand
	for !p.curIs(RParen) && !p.curIs(EOF) {
		args = append(args, p.parseArgument())
		if p.curIs(Comma) {
			p.nextToken()
		}
	}
	p.expect(RParen)
	return &ir.Call{Result: id, Name: name, Type: typ, Callee: callee, Args: args}
}

func (p *Parser) parseBinOp(id ir.ValueID, name string) ir.Instruction {
	op := p.curToken.Text
	p.nextToken()
	typ := p.parseType()
	lhs := p.parseOperand()
	p.expect(Comma)
	rhs := p.parseOperand()
	return &ir.BinOp{Result: id, Name: name, Op: op, Type: typ, LHS: lhs, RHS: rhs}
}

func (p *Parser) parseICmp(id ir.ValueID, name string) ir.Instruction {
	p.nextToken() // "icmp"
	pred, _ := p.expect(Ident)
	p.parseType()
	lhs := p.parseOperand()
	p.expect(Comma)
	rhs := p.parseOperand()
	return &ir.ICmp{Result: id, Name: name, Pred: pred, LHS: lhs, RHS: rhs}
}

func (p *Parser) parseBr() ir.Instruction {
	p.nextToken() // "br"
	if p.curIsKeyword("label") {
		p.nextToken()
		target, _ := p.expect(Local)
		br := &ir.Br{}
		p.pending = append(p.pending, pendingTarget{label: target, resolve: func(n ir.Node) { br.TrueBlock = n }})
		return br
	}
	p.parseType() // "i1"
	cond := p.parseOperand()
	p.expect(Comma)
	p.expect(Ident) // "label"
	trueLabel, _ := p.expect(Local)
	p.expect(Comma)
	p.expect(Ident) // "label"
	falseLabel, _ := p.expect(Local)

	br := &ir.Br{Cond: cond}
	p.pending = append(p.pending,
		pendingTarget{label: trueLabel, resolve: func(n ir.Node) { br.TrueBlock = n }},
		pendingTarget{label: falseLabel, resolve: func(n ir.Node) { br.FalseBlock = n }},
	)
	return br
}

func (p *Parser) parseRet() ir.Instruction {
	p.nextToken() // "ret"
	if p.curIsKeyword("void") {
		p.nextToken()
		return &ir.Ret{}
	}
	p.parseType()
	return &ir.Ret{Value: p.parseOperand()}
}

// parseArgument parses one call argument: either the bare qubit(N) /
// result(N) shorthand, which is self-contained and carries no type
// prefix, or an ordinary "type operand" pair.
func (p *Parser) parseArgument() ir.Operand {
	if p.curIsKeyword("qubit") || p.curIsKeyword("result") {
		return p.parseOperand()
	}
	p.parseType()
	return p.parseOperand()
}

func (p *Parser) parseOperand() ir.Operand {
	switch {
	case p.curIs(Local):
		name, _ := p.expect(Local)
		id, ok := p.locals[name]
		if !ok {
			id = p.fn.AllocValue()
			p.locals[name] = id
		}
		return ir.ValueRef{ID: id, Name: name}
	case p.curIs(Global):
		name, _ := p.expect(Global)
		return ir.GlobalRef{Name: name}
	case p.curIs(Int):
		text := p.curToken.Text
		p.nextToken()
		v, _ := strconv.ParseInt(text, 10, 64)
		return ir.ConstInt{Value: v}
	case p.curIs(Float):
		text := p.curToken.Text
		p.nextToken()
		v, _ := strconv.ParseFloat(text, 64)
		return ir.ConstFloat{Value: v}
	case p.curIsKeyword("qubit"):
		return p.parseIndexed(func(idx uint64) ir.Operand { return ir.QubitRef{Index: idx} })
	case p.curIsKeyword("result"):
		return p.parseIndexed(func(idx uint64) ir.Operand { return ir.ResultRef{Index: idx} })
	default:
		p.addError("unexpected operand token %q", p.curToken.Text)
		p.nextToken()
		return ir.ConstInt{}
	}
}

func (p *Parser) parseIndexed(build func(uint64) ir.Operand) ir.Operand {
	p.nextToken() // "qubit" or "result"
	p.expect(LParen)
	text, _ := p.expect(Int)
	p.expect(RParen)
	idx, _ := strconv.ParseUint(text, 10, 64)
	return build(idx)
}
