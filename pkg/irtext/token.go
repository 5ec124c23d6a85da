// Package irtext implements a lexer, recursive-descent parser, and
// printer for the textual subset of LLVM-IR assembly this tool reads
// and writes in place of the binary bitcode container format (see the
// repository's notes on that substitution). The grammar is a small,
// documented subset:
//
//	module       ::= (declaration | definition)*
//	declaration  ::= "declare" type "@" ident "(" typelist ")" NEWLINE
//	definition   ::= "define" type "@" ident "(" paramlist ")" ["entry_point"] "{" NEWLINE block* "}" NEWLINE
//	block        ::= label ":" NEWLINE instruction*
//	instruction  ::= phi | call | binop | icmp | br | ret
//
// Qubit and result identities, which LLVM-IR proper encodes as
// "integer cast to opaque-pointer" operands, are written here with
// the explicit shorthand qubit(N) / result(N); the parser decodes
// both forms into ir.QubitRef / ir.ResultRef so nothing downstream of
// the parser ever sees a pointer cast. Every other call argument is
// written as an ordinary "type operand" pair (e.g. "double %a", "i64
// 1"); qubit(N) and result(N) carry no type prefix, since the
// shorthand already names what they are.
package irtext

// Kind enumerates lexical token kinds.
type Kind int

const (
	EOF Kind = iota
	Ident
	Global  // @name
	Local   // %name
	Label   // a bare identifier followed by ':'
	Int
	Float
	String
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Equals
	Star
	Newline
	Illegal
)

// Token is one lexical token with its source position, for
// diagnostics.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}
