// Package tree builds term trees over an LDTab statement table: the
// ancestors of an entity through the is-a relation and the part-of
// existential restriction, assembled into a label-sorted forest together
// with the entity's immediate children, and rendered as rich JSON, labelled
// JSON, indented text, or hiccup-style markup.
package tree

import (
	"sort"

	"github.com/ontodev/nanobot/ldtab"
)

// Relation tags a tree edge with the relationship it came from.
type Relation string

const (
	RelationIsA    Relation = ldtab.IsA
	RelationPartOf Relation = ldtab.PartOf
)

// Node is one entry of the rich tree. Children are ordered; the relation
// records how the node relates to its parent (roots default to is-a).
type Node struct {
	ID       string   `json:"curie"`
	Label    string   `json:"label,omitempty"`
	Relation Relation `json:"property"`
	Children []*Node  `json:"children"`
}

// sortKey orders nodes by label, falling back to the identifier when no
// label is known. Byte-wise comparison keeps output locale-independent.
func (n *Node) sortKey() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// sortSiblings orders one sibling list by (label, id) ascending.
func sortSiblings(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].sortKey(), nodes[j].sortKey()
		if a != b {
			return a < b
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// sortForest orders every sibling list in the forest, children before the
// siblings that contain them.
func sortForest(nodes []*Node) {
	for _, n := range nodes {
		sortForest(n.Children)
	}
	sortSiblings(nodes)
}
