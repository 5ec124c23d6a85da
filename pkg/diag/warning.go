package diag

import (
	"context"

	"tlog.app/go/tlog"
)

// WarningKind is the closed set of non-fatal findings the pass can
// report.
type WarningKind int

const (
	OpaqueBlockSkipped WarningKind = iota
)

func (k WarningKind) String() string {
	switch k {
	case OpaqueBlockSkipped:
		return "OpaqueBlockSkipped"
	default:
		return "Unknown"
	}
}

// Warning is one non-fatal finding: it never aborts the pass, but the
// caller may want to know about it.
type Warning struct {
	Kind     WarningKind
	Function string
	Block    string
	Reason   string
}

// Sink receives warnings as the pass runs. It is an interface, not a
// concrete logger, so C2/C6 can report findings without importing any
// particular logging library.
type Sink interface {
	Warn(Warning)
}

// NopSink discards every warning. Used by callers that only care
// about the final error, and by tests that assert on the returned
// value rather than on log output.
type NopSink struct{}

func (NopSink) Warn(Warning) {}

// CollectingSink records every warning it receives, in order. Useful
// for tests that want to assert on exactly which warnings were
// raised.
type CollectingSink struct {
	Warnings []Warning
}

func (s *CollectingSink) Warn(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// TlogSink logs every warning through a tlog.Span carried on a
// context.Context, the same structured-event pattern the pack's other
// compiler-pass repo uses for per-pass logging.
type TlogSink struct {
	Ctx context.Context
}

// NewTlogSink wraps ctx, which should already carry a span via
// tlog.ContextWithSpan (the CLI does this once at startup).
func NewTlogSink(ctx context.Context) TlogSink {
	return TlogSink{Ctx: ctx}
}

func (s TlogSink) Warn(w Warning) {
	tlog.SpanFromContext(s.Ctx).Printw("diagnostic warning",
		"kind", w.Kind.String(),
		"function", w.Function,
		"block", w.Block,
		"reason", w.Reason,
	)
}
