package tree

import (
	"context"
	"sort"
	"strings"

	"github.com/ontodev/nanobot/ldtab"
)

// Labelled returns the entity's term tree as a nested object keyed by
// labels: each key is a node's label (falling back to its identifier), with
// part-of edges carrying a "partOf " prefix; leaves map to the owl:Nothing
// sentinel. The map is derived from the same sorted, child-attached forest
// the other renderers share; only the encoding differs. Serializers emit
// object keys in sorted order, which is what makes this shape
// deterministic.
func Labelled(ctx context.Context, store *ldtab.Store, entity string) (map[string]any, error) {
	forest, err := build(ctx, store, entity, Options{})
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for _, root := range forest {
		out[labelKey(root)] = labelledValue(root)
	}
	return out, nil
}

// labelKey names a node in the labelled shape.
func labelKey(n *Node) string {
	name := n.ID
	if n.Label != "" {
		name = n.Label
	}
	if n.Relation == RelationPartOf {
		return "partOf " + name
	}
	return name
}

// labelledValue renders the subtree below a node: a nested map for an
// inner node, the sentinel string for a leaf.
func labelledValue(n *Node) any {
	if len(n.Children) == 0 {
		return ldtab.Nothing
	}
	m := map[string]any{}
	for _, child := range n.Children {
		m[labelKey(child)] = labelledValue(child)
	}
	return m
}

// Text renders the labelled tree as a markdown bullet list, one tab per
// depth level.
func Text(ctx context.Context, store *ldtab.Store, entity string) (string, error) {
	labelled, err := Labelled(ctx, store, entity)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := writeText(&b, labelled, 0); err != nil {
		return "", err
	}
	return strings.TrimPrefix(b.String(), "\n"), nil
}

func writeText(b *strings.Builder, value any, indent int) error {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("\t", indent))
			b.WriteString("- ")
			b.WriteString(key)
			if err := writeText(b, v[key], indent+1); err != nil {
				return err
			}
		}
	case string:
		b.WriteString("\n")
		b.WriteString(strings.Repeat("\t", indent))
		b.WriteString("- ")
		b.WriteString(v)
	default:
		return &DecodeError{Msg: "unexpected value in labelled tree"}
	}
	return nil
}
