package tree

import (
	"context"

	"github.com/ontodev/nanobot/ldtab"
)

// Markup returns the term tree as a hiccup-style nested array: the first
// element of each array names a tag, an optional second element is an
// attribute map, and the rest are children. The result is rendered to HTML
// by the hiccup package. The focus entity's node carries a ul tagged with
// id "children" listing its immediate children for incremental expansion.
func Markup(ctx context.Context, store *ldtab.Store, entity string, opts Options) ([]any, error) {
	forest, err := build(ctx, store, entity, opts)
	if err != nil {
		return nil, err
	}

	roots := []any{"ul"}
	for _, root := range forest {
		li := []any{
			"li",
			[]any{"a", map[string]any{"resource": root.ID}, displayName(root)},
		}
		li = append(li, markupElement(entity, root))
		roots = append(roots, li)
	}

	class := []any{"a", map[string]any{"resource": "owl:Class"}, "owl:Class"}
	return []any{
		"ul",
		[]any{"li", "Ontology"},
		[]any{"li", class, roots},
	}, nil
}

// markupElement encodes the list below node: the focus entity gets its
// children block, every other node its descendants.
func markupElement(entity string, node *Node) []any {
	if node.ID == entity {
		return markupChildren(node)
	}
	return markupDescendants(entity, node)
}

// markupChildren lists the focus entity's immediate children as anchors,
// without recursing further; the UI expands them on demand.
func markupChildren(parent *Node) []any {
	ul := []any{"ul", map[string]any{"id": "children"}}
	for _, child := range parent.Children {
		ul = append(ul, []any{"li", anchor(parent.ID, child)})
	}
	return ul
}

func markupDescendants(entity string, parent *Node) []any {
	ul := []any{"ul"}
	for _, child := range parent.Children {
		li := []any{"li", anchor(parent.ID, child)}
		li = append(li, markupElement(entity, child))
		ul = append(ul, li)
	}
	return ul
}

func anchor(parent string, child *Node) []any {
	return []any{
		"a",
		map[string]any{
			"resource": child.ID,
			"about":    parent,
			"rev":      string(child.Relation),
		},
		displayName(child),
	}
}

func displayName(n *Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}
