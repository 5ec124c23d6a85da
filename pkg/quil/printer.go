package quil

import (
	"fmt"
	"io"
	"strings"
)

// Printer renders a Program as Quil text, one instruction per line.
// Modeled on the teacher's label-oriented text printers: a thin
// struct wrapping an io.Writer with a single entry point.
type Printer struct {
	w io.Writer
}

// NewPrinter wraps w for printing.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print renders p's DECLARE headers followed by its body, one
// instruction per line, with no trailing blank line.
func (pr *Printer) Print(p *Program) error {
	lines := Lines(p)
	_, err := io.WriteString(pr.w, strings.Join(lines, "\n"))
	return err
}

// Lines renders p as a slice of Quil source lines, in the order a
// consumer expects: DECLARE headers first, then body instructions.
func Lines(p *Program) []string {
	lines := make([]string, 0, len(p.Declarations)+len(p.Body))
	for _, d := range p.Declarations {
		lines = append(lines, fmt.Sprintf("DECLARE %s %s[%d]", d.Name, d.Type, d.Size))
	}
	for _, inst := range p.Body {
		lines = append(lines, renderInstruction(inst))
	}
	return lines
}

// String renders p as a single Quil text block.
func String(p *Program) string {
	return strings.Join(Lines(p), "\n")
}

func renderInstruction(inst Instruction) string {
	switch v := inst.(type) {
	case Gate:
		return renderGate(v)
	case Measurement:
		return fmt.Sprintf("MEASURE %d %s", v.Qubit, v.Target.String())
	case Pragma:
		parts := append([]string{"PRAGMA", v.Name}, v.Args...)
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func renderGate(g Gate) string {
	var sb strings.Builder
	if g.Dagger {
		sb.WriteString("DAGGER ")
	}
	sb.WriteString(g.Name)
	if len(g.Parameters) > 0 {
		sb.WriteString("(")
		for i, p := range g.Parameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString(")")
	}
	for _, q := range g.Qubits {
		sb.WriteString(fmt.Sprintf(" %d", q))
	}
	return sb.String()
}
