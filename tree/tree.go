package tree

import (
	"context"
	"sort"

	"github.com/ontodev/nanobot/ldtab"
)

// Options controls optional tree behavior.
type Options struct {
	// PreferredRoots trims the forest above the store's declared preferred
	// root set.
	PreferredRoots bool
}

// Rich returns the entity's term forest: ancestors over is-a and part-of
// down to the entity, with the entity's immediate children (and their
// children) attached at its first occurrence in sorted order. An entity
// with no triples yields an empty forest.
func Rich(ctx context.Context, store *ldtab.Store, entity string) ([]*Node, error) {
	return build(ctx, store, entity, Options{})
}

// build assembles the sorted, labelled, child-attached forest.
func build(ctx context.Context, store *ldtab.Store, entity string, opts Options) ([]*Node, error) {
	h, err := collect(ctx, store, entity)
	if err != nil {
		return nil, err
	}
	h.prune()

	if opts.PreferredRoots {
		preferred, err := store.PreferredRoots(ctx)
		if err != nil {
			return nil, err
		}
		h.trim(preferred)
	}

	labels, err := store.Labels(ctx, sorted(h.identifiers()))
	if err != nil {
		return nil, err
	}

	forest, err := h.assemble(labels)
	if err != nil {
		return nil, err
	}
	sortForest(forest)

	// The forest is sorted before the children are attached, so the
	// attachment point is the lexicographically first occurrence and the
	// output is deterministic.
	children, err := immediateChildren(ctx, store, entity, true)
	if err != nil {
		return nil, err
	}
	attach(forest, entity, children)

	return forest, nil
}

// assemble materializes the forest from the adjacency maps, one tree per
// root. The graph is a DAG that may contain diamonds; subtrees reachable
// along several paths are intentionally replicated, one copy per path.
func (h *hierarchy) assemble(labels map[string]string) ([]*Node, error) {
	forest := make([]*Node, 0)
	for _, root := range sortedKeys(h.roots()) {
		node, err := h.branch(root, RelationIsA, labels, map[string]struct{}{})
		if err != nil {
			return nil, err
		}
		forest = append(forest, node)
	}
	return forest, nil
}

func (h *hierarchy) branch(id string, rel Relation, labels map[string]string, path map[string]struct{}) (*Node, error) {
	if _, ok := path[id]; ok {
		return nil, &InvariantError{Msg: "cycle through " + id}
	}
	path[id] = struct{}{}
	defer delete(path, id)

	node := &Node{
		ID:       id,
		Label:    labels[id],
		Relation: rel,
		Children: []*Node{},
	}
	for _, child := range sortedKeys(h.subclasses[id]) {
		sub, err := h.branch(child, RelationIsA, labels, path)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, sub)
	}
	for _, child := range sortedKeys(h.parts[id]) {
		sub, err := h.branch(child, RelationPartOf, labels, path)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

// attach grafts children onto the first node whose identifier is entity,
// walking the sorted forest depth first. Later occurrences are left as
// leaves, so the immediate children appear exactly once.
func attach(forest []*Node, entity string, children []*Node) bool {
	for _, node := range forest {
		if node.ID == entity {
			node.Children = append(node.Children, children...)
			sortSiblings(node.Children)
			return true
		}
		if attach(node.Children, entity, children) {
			return true
		}
	}
	return false
}

// Children returns the entity's one-hop is-a and part-of children, sorted
// by (label, id). Used by incremental tree expansion in the UI.
func Children(ctx context.Context, store *ldtab.Store, entity string) ([]*Node, error) {
	return immediateChildren(ctx, store, entity, false)
}

// immediateChildren fetches the entity's direct is-a and part-of children;
// with grandchildren set, each child additionally carries its own direct
// children one further level down.
func immediateChildren(ctx context.Context, store *ldtab.Store, entity string, grandchildren bool) ([]*Node, error) {
	nodes, err := directChildren(ctx, store, entity)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	if grandchildren {
		for _, n := range nodes {
			grand, err := directChildren(ctx, store, n.ID)
			if err != nil {
				return nil, err
			}
			n.Children = grand
			for _, g := range grand {
				ids = append(ids, g.ID)
			}
		}
	}

	labels, err := store.Labels(ctx, sorted(ids))
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		n.Label = labels[n.ID]
		for _, g := range n.Children {
			g.Label = labels[g.ID]
		}
		sortSiblings(n.Children)
	}
	sortSiblings(nodes)
	return nodes, nil
}

// directChildren returns unlabelled one-hop children of entity, is-a before
// part-of; ordering is finalized by the caller once labels are known.
func directChildren(ctx context.Context, store *ldtab.Store, entity string) ([]*Node, error) {
	subclasses, err := store.DirectNamedSubclasses(ctx, entity)
	if err != nil {
		return nil, err
	}
	parts, err := store.DirectSubParts(ctx, entity)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(subclasses)+len(parts))
	for _, id := range subclasses {
		nodes = append(nodes, &Node{ID: id, Relation: RelationIsA, Children: []*Node{}})
	}
	for _, id := range parts {
		nodes = append(nodes, &Node{ID: id, Relation: RelationPartOf, Children: []*Node{}})
	}
	return nodes, nil
}

func sorted(ids []string) []string {
	sort.Strings(ids)
	return ids
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
