package ldtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartOfFiller(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		filler string
		ok     bool
	}{
		{
			name:   "canonical part-of restriction",
			cell:   `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
			filler: "obo:ZFA_0000272",
			ok:     true,
		},
		{
			name: "different property",
			cell: `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:RO_0002496"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFS_0000000"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
		},
		{
			name: "missing rdf:type",
			cell: `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}]}`,
		},
		{
			name: "two on-property entries",
			cell: `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"},{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
		},
		{
			name: "non-IRI property datatype",
			cell: `{"owl:onProperty":[{"datatype":"_JSON","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"obo:ZFA_0000272"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
		},
		{
			name: "nested filler is not an atom",
			cell: `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":{"owl:intersectionOf":[]}}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`,
		},
		{
			name: "bare atom",
			cell: "obo:ZFA_0000272",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filler, ok := Decode(tt.cell).PartOfFiller()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.filler, filler)
		})
	}
}
