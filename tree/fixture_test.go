package tree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ontodev/nanobot/db"
	"github.com/ontodev/nanobot/ldtab"
	"github.com/ontodev/nanobot/models"
)

const partOfTemplate = `{"owl:onProperty":[{"datatype":"_IRI","object":"obo:BFO_0000050"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"%s"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`

func partOf(filler string) string {
	return fmt.Sprintf(partOfTemplate, filler)
}

func someValuesFrom(property, filler string) string {
	return fmt.Sprintf(`{"owl:onProperty":[{"datatype":"_IRI","object":"%s"}],"owl:someValuesFrom":[{"datatype":"_IRI","object":"%s"}],"rdf:type":[{"datatype":"_IRI","object":"owl:Restriction"}]}`, property, filler)
}

func isA(subject, object string) models.Statement {
	datatype := ldtab.DatatypeIRI
	if !ldtab.Decode(object).IsAtom() {
		datatype = ldtab.DatatypeJSON
	}
	return models.Statement{
		Assertion: 1,
		Graph:     "graph",
		Subject:   subject,
		Predicate: ldtab.IsA,
		Object:    object,
		Datatype:  datatype,
	}
}

func labelRow(subject, label string) models.Statement {
	return models.Statement{
		Assertion: 1,
		Graph:     "graph",
		Subject:   subject,
		Predicate: ldtab.LabelPredicate,
		Object:    label,
		Datatype:  "xsd:string",
	}
}

func newTestStore(t *testing.T, statements []models.Statement) *ldtab.Store {
	t.Helper()
	conn, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	if len(statements) > 0 {
		require.NoError(t, conn.Create(&statements).Error)
	}
	store, err := ldtab.NewStore(conn, "statement")
	require.NoError(t, err)
	return store
}

// zfaLabels maps every identifier in the zebrafish-anatomy excerpt to its
// label.
var zfaLabels = map[string]string{
	"obo:ZFA_0100000": "zebrafish anatomical entity",
	"obo:ZFA_0000037": "anatomical structure",
	"obo:ZFA_0001512": "anatomical group",
	"obo:ZFA_0001439": "anatomical system",
	"obo:ZFA_0000272": "respiratory system",
	"obo:ZFA_0000354": "gill",
	"obo:ZFA_0000496": "compound organ",
	"obo:ZFA_0001094": "whole organism",
	"obo:ZFA_0000716": "afferent branchial artery",
	"obo:ZFA_0005012": "afferent filamental artery",
	"obo:ZFA_0005013": "concurrent branch afferent branchial artery",
	"obo:ZFA_0005014": "recurrent branch afferent branchial artery",
	"obo:ZFA_0000319": "branchiostegal membrane",
	"obo:ZFA_0000202": "efferent branchial artery",
	"obo:ZFA_0005018": "efferent filamental artery",
	"obo:ZFA_0000667": "gill filament",
	"obo:ZFA_0000666": "filamental artery",
	"obo:ZFA_0005324": "gill ionocyte",
	"obo:ZFA_0000211": "gill lamella",
	"obo:ZFA_0005015": "afferent lamellar arteriole",
	"obo:ZFA_0005019": "efferent lamellar arteriole",
	"obo:ZFA_0001613": "pharyngeal arch 3-7",
	"obo:ZFA_0000172": "branchial muscle",
	"obo:ZFA_0005390": "gill ray",
	"obo:ZFA_0001606": "pharyngeal arch 3",
	"obo:ZFA_0000095": "pharyngeal arch 3-7 skeleton",
	"obo:ZFA_0001607": "pharyngeal arch 4",
	"obo:ZFA_0001608": "pharyngeal arch 5",
	"obo:ZFA_0001609": "pharyngeal arch 6",
	"obo:ZFA_0001610": "pharyngeal arch 7",
}

// zfaStatements is the zebrafish-anatomy excerpt around "gill": its is-a
// and part-of ancestry up to the root, its direct parts and their own
// children, plus restriction noise over unrelated properties that the
// pruner must discard.
func zfaStatements() []models.Statement {
	statements := []models.Statement{
		// is-a ancestry
		isA("obo:ZFA_0000272", "obo:ZFA_0001439"),
		isA("obo:ZFA_0001439", "obo:ZFA_0001512"),
		isA("obo:ZFA_0001512", "obo:ZFA_0000037"),
		isA("obo:ZFA_0000037", "obo:ZFA_0100000"),
		isA("obo:ZFA_0000354", "obo:ZFA_0000496"),
		isA("obo:ZFA_0001094", "obo:ZFA_0000037"),
		isA("obo:ZFA_0000496", "obo:ZFA_0000037"),

		// part-of ancestry
		isA("obo:ZFA_0000354", partOf("obo:ZFA_0000272")),
		isA("obo:ZFA_0001439", partOf("obo:ZFA_0001094")),
		isA("obo:ZFA_0000496", partOf("obo:ZFA_0001094")),

		// restriction noise over other properties
		isA("obo:ZFA_0000354", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0000354", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0000272", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0001512", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),

		// direct parts of gill
		isA("obo:ZFA_0000716", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0000319", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0000202", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0000667", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0005324", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0000211", partOf("obo:ZFA_0000354")),
		isA("obo:ZFA_0001613", partOf("obo:ZFA_0000354")),

		// children of gill's parts
		isA("obo:ZFA_0005012", partOf("obo:ZFA_0000716")),
		isA("obo:ZFA_0005013", partOf("obo:ZFA_0000716")),
		isA("obo:ZFA_0005014", partOf("obo:ZFA_0000716")),
		isA("obo:ZFA_0005018", partOf("obo:ZFA_0000202")),
		isA("obo:ZFA_0000666", partOf("obo:ZFA_0000667")),
		isA("obo:ZFA_0005015", partOf("obo:ZFA_0000211")),
		isA("obo:ZFA_0005019", partOf("obo:ZFA_0000211")),
		isA("obo:ZFA_0000172", partOf("obo:ZFA_0001613")),
		isA("obo:ZFA_0005390", partOf("obo:ZFA_0001613")),
		isA("obo:ZFA_0000095", partOf("obo:ZFA_0001613")),
		isA("obo:ZFA_0001606", "obo:ZFA_0001613"),
		isA("obo:ZFA_0001607", "obo:ZFA_0001613"),
		isA("obo:ZFA_0001608", "obo:ZFA_0001613"),
		isA("obo:ZFA_0001609", "obo:ZFA_0001613"),
		isA("obo:ZFA_0001610", "obo:ZFA_0001613"),
	}

	for id, label := range zfaLabels {
		statements = append(statements, labelRow(id, label))
	}
	return statements
}
