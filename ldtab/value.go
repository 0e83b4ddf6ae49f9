// Package ldtab reads LDTab statement tables: RDF-style triples whose object
// cells are either bare identifiers or serialized structured literals
// encoding anonymous OWL class expressions.
package ldtab

import "encoding/json"

// Fixed identifiers interpreted by the tree engine.
const (
	IsA            = "rdfs:subClassOf"
	PartOf         = "obo:BFO_0000050"
	OnProperty     = "owl:onProperty"
	SomeValuesFrom = "owl:someValuesFrom"
	RDFType        = "rdf:type"
	Restriction    = "owl:Restriction"
	LabelPredicate = "rdfs:label"
	PreferredRoot  = "obo:IAO_0000700"
	Nothing        = "owl:Nothing"
)

// Datatype markers used by the statement table's datatype column.
const (
	DatatypeIRI  = "_IRI"
	DatatypeJSON = "_JSON"
)

// Entry is one element of a structured literal's predicate list: the value
// it points at plus that value's datatype.
type Entry struct {
	Object   json.RawMessage `json:"object"`
	Datatype string          `json:"datatype"`
}

// Atom returns the entry's object as a bare identifier. It reports false
// when the object is itself a nested structure.
func (e Entry) Atom() (string, bool) {
	var s string
	if err := json.Unmarshal(e.Object, &s); err != nil {
		return "", false
	}
	return s, true
}

// Value is the decoded form of an object cell: either a bare identifier or
// a mapping from predicates to entry lists.
type Value struct {
	atom       string
	structured map[string][]Entry
}

// Decode normalizes an object cell. A cell that parses as a JSON mapping from
// predicates to entry lists is structured; anything else, including
// ill-formed input and mappings of any other shape, is an atom holding the
// cell unchanged. Decode never fails.
func Decode(cell string) Value {
	var m map[string][]Entry
	if err := json.Unmarshal([]byte(cell), &m); err == nil && m != nil {
		return Value{structured: m}
	}
	return Value{atom: cell}
}

// IsAtom reports whether the value is a bare identifier.
func (v Value) IsAtom() bool { return v.structured == nil }

// Atom returns the bare identifier, or "" for a structured value.
func (v Value) Atom() string { return v.atom }

// Get returns the entry list for a predicate of a structured value.
func (v Value) Get(predicate string) ([]Entry, bool) {
	e, ok := v.structured[predicate]
	return e, ok
}
