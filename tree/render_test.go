package tree

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontodev/nanobot/hiccup"
	"github.com/ontodev/nanobot/models"
)

// unlabelledStatements is the smaller excerpt around "gill": the ancestor
// edges only, without labels, including restriction noise over unrelated
// properties.
func unlabelledStatements() []models.Statement {
	return []models.Statement{
		isA("obo:ZFA_0000272", "obo:ZFA_0001439"),
		isA("obo:ZFA_0000272", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0000272", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0001439", "obo:ZFA_0001512"),
		isA("obo:ZFA_0001439", partOf("obo:ZFA_0001094")),
		isA("obo:ZFA_0001439", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0001439", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0001512", "obo:ZFA_0000037"),
		isA("obo:ZFA_0001512", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0001512", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0000037", "obo:ZFA_0100000"),
		isA("obo:ZFA_0000037", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000001")),
		isA("obo:ZFA_0000037", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0000354", someValuesFrom("obo:RO_0002202", "obo:ZFA_0001107")),
		isA("obo:ZFA_0000354", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0000354", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0000354", partOf("obo:ZFA_0000272")),
		isA("obo:ZFA_0000354", "obo:ZFA_0000496"),
		isA("obo:ZFA_0001094", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
		isA("obo:ZFA_0001094", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000001")),
		isA("obo:ZFA_0001094", "obo:ZFA_0000037"),
		isA("obo:ZFA_0000496", "obo:ZFA_0000037"),
		isA("obo:ZFA_0000496", partOf("obo:ZFA_0001094")),
		isA("obo:ZFA_0000496", someValuesFrom("obo:RO_0002496", "obo:ZFS_0000000")),
		isA("obo:ZFA_0000496", someValuesFrom("obo:RO_0002497", "obo:ZFS_0000044")),
	}
}

func TestLabelledFallsBackToIdentifiers(t *testing.T) {
	store := newTestStore(t, unlabelledStatements())

	labelled, err := Labelled(context.Background(), store, "obo:ZFA_0000354")
	require.NoError(t, err)

	got, err := json.Marshal(labelled)
	require.NoError(t, err)

	expected := `{"obo:ZFA_0100000":{"obo:ZFA_0000037":{"obo:ZFA_0000496":{"obo:ZFA_0000354":"owl:Nothing"},"obo:ZFA_0001094":{"partOf obo:ZFA_0000496":{"obo:ZFA_0000354":"owl:Nothing"},"partOf obo:ZFA_0001439":{"obo:ZFA_0000272":{"partOf obo:ZFA_0000354":"owl:Nothing"}}},"obo:ZFA_0001512":{"obo:ZFA_0001439":{"obo:ZFA_0000272":{"partOf obo:ZFA_0000354":"owl:Nothing"}}}}}}`
	assert.Equal(t, expected, string(got))
}

func TestLabelledIncludesImmediateChildren(t *testing.T) {
	store := newTestStore(t, zfaStatements())

	labelled, err := Labelled(context.Background(), store, "obo:ZFA_0000354")
	require.NoError(t, err)

	got, err := json.Marshal(labelled)
	require.NoError(t, err)

	// The focus entity's immediate children hang off its first occurrence,
	// exactly as in the rich shape; only the encoding differs.
	assert.Contains(t, string(got), `"partOf afferent branchial artery":{`)
	assert.Contains(t, string(got), `"partOf afferent filamental artery":"owl:Nothing"`)
	assert.Contains(t, string(got), `"pharyngeal arch 3":"owl:Nothing"`)
	// The second occurrence of the entity stays a leaf.
	assert.Contains(t, string(got), `"gill":"owl:Nothing"`)
}

func TestLabelledNoTriples(t *testing.T) {
	store := newTestStore(t, unlabelledStatements())

	labelled, err := Labelled(context.Background(), store, "obo:ZFA_missing")
	require.NoError(t, err)
	assert.Empty(t, labelled)
}

func TestTextGill(t *testing.T) {
	store := newTestStore(t, zfaStatements())

	text, err := Text(context.Background(), store, "obo:ZFA_0000354")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(text, "- zebrafish anatomical entity"),
		"text starts with the root label, got %q", firstLine(text))
	assert.Contains(t, text, "\n\t\t\t\t\t- partOf gill")
	assert.Contains(t, text, "\n\t- anatomical structure")
	assert.Contains(t, text, "\n\t\t\t\t- respiratory system")

	// The gill's own immediate children appear below its first occurrence,
	// one level deeper, with their own children one level below that.
	assert.Contains(t, text, "\n\t\t\t\t\t\t- partOf afferent branchial artery")
	assert.Contains(t, text, "\n\t\t\t\t\t\t- partOf gill lamella")
	assert.Contains(t, text, "\n\t\t\t\t\t\t\t- partOf afferent filamental artery")
	assert.Contains(t, text, "\n\t\t\t\t\t\t\t- pharyngeal arch 3\n")
}

func TestTextRoundTrip(t *testing.T) {
	store := newTestStore(t, zfaStatements())

	text, err := Text(context.Background(), store, "obo:ZFA_0000354")
	require.NoError(t, err)

	parsed := parseIndented(t, text)
	var b strings.Builder
	require.NoError(t, writeText(&b, parsed, 0))
	reEmitted := strings.TrimPrefix(b.String(), "\n")

	if text != reEmitted {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(text),
			B:        difflib.SplitLines(reEmitted),
			FromFile: "rendered",
			ToFile:   "round-tripped",
			Context:  3,
		})
		t.Fatalf("text round trip changed output:\n%s", diff)
	}
}

func TestMarkupShape(t *testing.T) {
	store := newTestStore(t, unlabelledStatements())

	markup, err := Markup(context.Background(), store, "obo:ZFA_0000354", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, markup)
	assert.Equal(t, "ul", markup[0])

	got, err := json.Marshal(markup)
	require.NoError(t, err)
	assert.Contains(t, string(got), `["li","Ontology"]`)
	assert.Contains(t, string(got), `["a",{"resource":"owl:Class"},"owl:Class"]`)
	assert.Contains(t, string(got), `["a",{"resource":"obo:ZFA_0100000"},"obo:ZFA_0100000"]`)
}

func TestMarkupRendersToHTML(t *testing.T) {
	store := newTestStore(t, unlabelledStatements())

	markup, err := Markup(context.Background(), store, "obo:ZFA_0000354", Options{})
	require.NoError(t, err)

	fragment, err := hiccup.Render(markup)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fragment, "<ul>"))
	// The focus entity carries the expandable children list.
	assert.Contains(t, fragment, `<ul id="children">`)
	assert.Contains(t, fragment, `rev="rdfs:subClassOf"`)
	assert.Contains(t, fragment, `rev="obo:BFO_0000050"`)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// parseIndented reads the bullet-list format back into the nested map shape
// the text renderer consumes.
func parseIndented(t *testing.T, text string) map[string]any {
	t.Helper()

	type frame struct {
		name     string
		children []*frame
	}
	root := &frame{}
	stack := []*frame{root}

	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}
		name, ok := strings.CutPrefix(line[depth:], "- ")
		require.True(t, ok, "line %q is not a bullet", line)

		require.Less(t, depth, len(stack), "line %q skips a level", line)
		stack = stack[:depth+1]
		node := &frame{name: name}
		parent := stack[depth]
		parent.children = append(parent.children, node)
		stack = append(stack, node)
	}

	var value func(f *frame) any
	value = func(f *frame) any {
		if len(f.children) == 1 && len(f.children[0].children) == 0 {
			return f.children[0].name
		}
		m := map[string]any{}
		for _, c := range f.children {
			m[c.name] = value(c)
		}
		return m
	}

	out, ok := value(root).(map[string]any)
	require.True(t, ok)
	return out
}
