// Package diag implements the pass's closed error taxonomy and its
// non-fatal warning sink. Diagnostic causal chains are built with
// tlog.app/go/errors, the same library and call pattern the pack's
// other compiler-pass repo uses for its front/back/analyze stages,
// because the taxonomy requires a printable multi-level chain and the
// standard library's %w wrapping does not render one on its own.
package diag

import (
	"fmt"

	"tlog.app/go/errors"
)

// Kind is the closed set of fatal error shapes the pass can report.
type Kind int

const (
	NoEntry Kind = iota
	MultipleEntry
	MissingBlock
	UnknownIntrinsic
	PreconditionViolation
	ClassicalToQuantumDataFlow
	InvalidOperand
)

func (k Kind) String() string {
	switch k {
	case NoEntry:
		return "NoEntry"
	case MultipleEntry:
		return "MultipleEntry"
	case MissingBlock:
		return "MissingBlock"
	case UnknownIntrinsic:
		return "UnknownIntrinsic"
	case PreconditionViolation:
		return "PreconditionViolation"
	case ClassicalToQuantumDataFlow:
		return "ClassicalToQuantumDataFlow"
	case InvalidOperand:
		return "InvalidOperand"
	default:
		return "Unknown"
	}
}

// PostRewriteIntegrity is the PreconditionViolation sub-kind used when
// the pass's own post-condition check finds a leftover intrinsic call
// after a rewrite it performed itself — a bug in the pass, not bad
// input.
const PostRewriteIntegrity = "PostRewriteIntegrity"

// Diagnostic is the sum type every fatal error from this tool takes.
// It carries source location (function, block) and wraps a causal
// chain built with tlog.app/go/errors.
type Diagnostic struct {
	Kind     Kind
	Function string
	Block    string
	Symbol   string // set for UnknownIntrinsic
	Sub      string // sub-kind, e.g. PostRewriteIntegrity
	Offset   int    // instruction offset, set for InvalidOperand
	cause    error
}

// New creates a Diagnostic with no cause chain yet; Wrap adds to it.
func New(kind Kind, function, block string) *Diagnostic {
	return &Diagnostic{Kind: kind, Function: function, Block: block}
}

// Wrap appends a formatted message to the diagnostic's causal chain.
// Each call to Wrap deepens the chain by one level, the same pattern
// slowlang-slow's compiler passes use for errors.Wrap.
func (d *Diagnostic) Wrap(format string, args ...any) *Diagnostic {
	if d.cause == nil {
		d.cause = errors.New(format, args...)
	} else {
		d.cause = errors.Wrap(d.cause, format, args...)
	}
	return d
}

// WithSymbol sets the offending symbol name (UnknownIntrinsic).
func (d *Diagnostic) WithSymbol(symbol string) *Diagnostic {
	d.Symbol = symbol
	return d
}

// WithSub sets a sub-kind string (e.g. PostRewriteIntegrity).
func (d *Diagnostic) WithSub(sub string) *Diagnostic {
	d.Sub = sub
	return d
}

// WithOffset sets the offending instruction offset (InvalidOperand).
func (d *Diagnostic) WithOffset(offset int) *Diagnostic {
	d.Offset = offset
	return d
}

// Error satisfies the error interface with a one-line summary; the
// full causal chain is available from Chain.
func (d *Diagnostic) Error() string {
	loc := d.Function
	if d.Block != "" {
		loc = fmt.Sprintf("%s/%s", d.Function, d.Block)
	}
	msg := d.Kind.String()
	if d.Symbol != "" {
		msg = fmt.Sprintf("%s(%s)", msg, d.Symbol)
	}
	if d.Sub != "" {
		msg = fmt.Sprintf("%s[%s]", msg, d.Sub)
	}
	switch {
	case loc != "" && d.cause != nil:
		return fmt.Sprintf("%s at %s: %v", msg, loc, d.cause)
	case loc != "":
		return fmt.Sprintf("%s at %s", msg, loc)
	case d.cause != nil:
		return fmt.Sprintf("%s: %v", msg, d.cause)
	default:
		return msg
	}
}

// Unwrap exposes the causal chain to errors.Is/As and to Chain.
func (d *Diagnostic) Unwrap() error { return d.cause }

// Chain renders the diagnostic's causal chain as a sequence of
// messages, outermost first, suitable for display beneath the
// one-line summary a CLI prints to stderr.
func (d *Diagnostic) Chain() []string {
	chain := []string{d.Error()}
	cause := d.cause
	for cause != nil {
		chain = append(chain, cause.Error())
		u, ok := cause.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cause = u.Unwrap()
	}
	return chain
}
