package quil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseGateLines parses the gate/measurement lines of a rendered Quil
// program back into instructions, skipping DECLARE and PRAGMA lines.
// It exists only to support the round-trip testable property (parsed
// gate instructions correspond one-for-one to the original intrinsic
// sequence); it is not a general Quil parser.
func ParseGateLines(text string) ([]Instruction, error) {
	var out []Instruction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "DECLARE") || strings.HasPrefix(line, "PRAGMA") {
			continue
		}
		inst, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func parseLine(line string) (Instruction, error) {
	dagger := false
	if strings.HasPrefix(line, "DAGGER ") {
		dagger = true
		line = strings.TrimPrefix(line, "DAGGER ")
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty instruction line")
	}
	if fields[0] == "MEASURE" {
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed MEASURE line %q", line)
		}
		qubit, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed qubit in %q: %w", line, err)
		}
		ref, err := parseMemoryRef(fields[2])
		if err != nil {
			return nil, err
		}
		return Measurement{Qubit: Qubit(qubit), Target: ref}, nil
	}

	name := fields[0]
	var params []Expression
	if idx := strings.Index(name, "("); idx >= 0 {
		closeIdx := strings.Index(name, ")")
		if closeIdx < 0 {
			return nil, fmt.Errorf("malformed parameter list in %q", line)
		}
		for _, p := range strings.Split(name[idx+1:closeIdx], ",") {
			p = strings.TrimSpace(p)
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed parameter %q in %q: %w", p, line, err)
			}
			params = append(params, Literal{Value: v})
		}
		name = name[:idx]
	}

	qubits := make([]Qubit, 0, len(fields)-1)
	for _, f := range fields[1:] {
		q, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed qubit %q in %q: %w", f, line, err)
		}
		qubits = append(qubits, Qubit(q))
	}

	return Gate{Name: name, Dagger: dagger, Parameters: params, Qubits: qubits}, nil
}

func parseMemoryRef(s string) (MemoryRef, error) {
	open := strings.Index(s, "[")
	close := strings.Index(s, "]")
	if open < 0 || close < open {
		return MemoryRef{}, fmt.Errorf("malformed memory reference %q", s)
	}
	idx, err := strconv.ParseUint(s[open+1:close], 10, 64)
	if err != nil {
		return MemoryRef{}, fmt.Errorf("malformed memory index in %q: %w", s, err)
	}
	return MemoryRef{Name: s[:open], Index: idx}, nil
}
