// Package catalog classifies quantum-runtime symbol names by their
// Quil meaning and operand arity. It is the one static table every
// other component consults; an unrecognized symbol is never guessed
// at — the block that calls it is left opaque.
package catalog

// Kind distinguishes the four intrinsic shapes named in the data
// model: a unitary gate, a measurement, a result readout, and an
// output-recording marker.
type Kind int

const (
	Unitary Kind = iota
	Measurement
	ResultReadout
	RecordOutput
)

func (k Kind) String() string {
	switch k {
	case Unitary:
		return "Unitary"
	case Measurement:
		return "Measurement"
	case ResultReadout:
		return "ResultReadout"
	case RecordOutput:
		return "RecordOutput"
	default:
		return "Unknown"
	}
}

// RecordKind distinguishes the five output-recording markers.
type RecordKind int

const (
	RecordResult RecordKind = iota
	RecordTupleStart
	RecordTupleEnd
	RecordArrayStart
	RecordArrayEnd
)

// Intrinsic describes one catalog entry: enough to decide how the
// Quil builder should handle a call to it.
type Intrinsic struct {
	Symbol string
	Kind   Kind

	// Unitary fields.
	Mnemonic   string // Quil gate name, e.g. "H", "RZ", "CNOT"
	Adjoint    bool   // this symbol is the explicit "_adj" form
	QubitArity int
	ParamArity int

	// RecordOutput fields.
	Record       RecordKind
	TaggedRecord bool // takes an optional string-label pointer operand
}

var table = map[string]Intrinsic{
	// single-qubit unitaries and their adjoints
	"__quantum__qis__h__body":    {Symbol: "__quantum__qis__h__body", Kind: Unitary, Mnemonic: "H", QubitArity: 1},
	"__quantum__qis__x__body":    {Symbol: "__quantum__qis__x__body", Kind: Unitary, Mnemonic: "X", QubitArity: 1},
	"__quantum__qis__y__body":    {Symbol: "__quantum__qis__y__body", Kind: Unitary, Mnemonic: "Y", QubitArity: 1},
	"__quantum__qis__z__body":    {Symbol: "__quantum__qis__z__body", Kind: Unitary, Mnemonic: "Z", QubitArity: 1},
	"__quantum__qis__s__body":    {Symbol: "__quantum__qis__s__body", Kind: Unitary, Mnemonic: "S", QubitArity: 1},
	"__quantum__qis__s__adj":     {Symbol: "__quantum__qis__s__adj", Kind: Unitary, Mnemonic: "S", Adjoint: true, QubitArity: 1},
	"__quantum__qis__t__body":    {Symbol: "__quantum__qis__t__body", Kind: Unitary, Mnemonic: "T", QubitArity: 1},
	"__quantum__qis__t__adj":     {Symbol: "__quantum__qis__t__adj", Kind: Unitary, Mnemonic: "T", Adjoint: true, QubitArity: 1},
	"__quantum__qis__reset__body": {Symbol: "__quantum__qis__reset__body", Kind: Unitary, Mnemonic: "RESET", QubitArity: 1},

	// single-qubit parametric unitaries
	"__quantum__qis__rx__body": {Symbol: "__quantum__qis__rx__body", Kind: Unitary, Mnemonic: "RX", QubitArity: 1, ParamArity: 1},
	"__quantum__qis__ry__body": {Symbol: "__quantum__qis__ry__body", Kind: Unitary, Mnemonic: "RY", QubitArity: 1, ParamArity: 1},
	"__quantum__qis__rz__body": {Symbol: "__quantum__qis__rz__body", Kind: Unitary, Mnemonic: "RZ", QubitArity: 1, ParamArity: 1},

	// two-qubit unitaries
	"__quantum__qis__cnot__body": {Symbol: "__quantum__qis__cnot__body", Kind: Unitary, Mnemonic: "CNOT", QubitArity: 2},
	"__quantum__qis__cz__body":   {Symbol: "__quantum__qis__cz__body", Kind: Unitary, Mnemonic: "CZ", QubitArity: 2},
	"__quantum__qis__swap__body": {Symbol: "__quantum__qis__swap__body", Kind: Unitary, Mnemonic: "SWAP", QubitArity: 2},

	// three-qubit unitaries
	"__quantum__qis__toffoli__body": {Symbol: "__quantum__qis__toffoli__body", Kind: Unitary, Mnemonic: "CCNOT", QubitArity: 3},

	// measurement
	"__quantum__qis__mz__body": {Symbol: "__quantum__qis__mz__body", Kind: Measurement, QubitArity: 1},

	// result readout
	"__quantum__qis__read_result__body": {Symbol: "__quantum__qis__read_result__body", Kind: ResultReadout},

	// output recording
	"__quantum__rt__result_record_output":       {Symbol: "__quantum__rt__result_record_output", Kind: RecordOutput, Record: RecordResult, TaggedRecord: true},
	"__quantum__rt__tuple_start_record_output":  {Symbol: "__quantum__rt__tuple_start_record_output", Kind: RecordOutput, Record: RecordTupleStart},
	"__quantum__rt__tuple_end_record_output":    {Symbol: "__quantum__rt__tuple_end_record_output", Kind: RecordOutput, Record: RecordTupleEnd},
	"__quantum__rt__array_start_record_output":  {Symbol: "__quantum__rt__array_start_record_output", Kind: RecordOutput, Record: RecordArrayStart},
	"__quantum__rt__array_end_record_output":    {Symbol: "__quantum__rt__array_end_record_output", Kind: RecordOutput, Record: RecordArrayEnd},
}

// Lookup returns the intrinsic descriptor for symbol, if the catalog
// recognizes it. The catalog is intentionally closed: an unrecognized
// "__quantum__…" symbol is not an error here, it is simply ok=false,
// and the caller must treat the containing block as opaque.
func Lookup(symbol string) (Intrinsic, bool) {
	i, ok := table[symbol]
	return i, ok
}

// Symbols returns every symbol name the catalog recognizes, sorted by
// insertion is not guaranteed; callers that need determinism should
// sort the result themselves.
func Symbols() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}
