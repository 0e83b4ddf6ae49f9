package ldtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		cell string
		atom bool
	}{
		{
			name: "bare curie",
			cell: "obo:ZFA_0000354",
			atom: true,
		},
		{
			name: "plain label text",
			cell: "zebrafish anatomical entity",
			atom: true,
		},
		{
			name: "structured restriction",
			cell: `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
			atom: false,
		},
		{
			name: "ill-formed json degrades to atom",
			cell: `{"owl:onProperty":[`,
			atom: true,
		},
		{
			name: "json array is an atom",
			cell: `["a","b"]`,
			atom: true,
		},
		{
			name: "empty string",
			cell: "",
			atom: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decode(tt.cell)
			assert.Equal(t, tt.atom, v.IsAtom())
			if tt.atom {
				assert.Equal(t, tt.cell, v.Atom())
			}
		})
	}
}

func TestDecodeStructuredEntries(t *testing.T) {
	cell := `{"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}]}`
	v := Decode(cell)
	require.False(t, v.IsAtom())

	entries, ok := v.Get(SomeValuesFrom)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, DatatypeIRI, entries[0].Datatype)

	atom, ok := entries[0].Atom()
	require.True(t, ok)
	assert.Equal(t, "obo:ZFA_0000272", atom)

	_, ok = v.Get(OnProperty)
	assert.False(t, ok)
}

func TestEntryAtomNested(t *testing.T) {
	cell := `{"owl:someValuesFrom":[{"datatype":"_JSON","object":{"owl:onProperty":[]}}]}`
	v := Decode(cell)
	require.False(t, v.IsAtom())

	entries, ok := v.Get(SomeValuesFrom)
	require.True(t, ok)
	require.Len(t, entries, 1)

	_, ok = entries[0].Atom()
	assert.False(t, ok, "nested object is not an atom")
}
