package tree

import (
	"context"

	"github.com/ontodev/nanobot/ldtab"
)

// hierarchy holds the two adjacency maps the collector produces: superclass
// to subclasses for is-a, whole to parts for part-of. Both maps point
// downward and are acyclic.
type hierarchy struct {
	subclasses map[string]map[string]struct{}
	parts      map[string]map[string]struct{}
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		subclasses: map[string]map[string]struct{}{},
		parts:      map[string]map[string]struct{}{},
	}
}

func insert(m map[string]map[string]struct{}, key, value string) {
	set, ok := m[key]
	if !ok {
		set = map[string]struct{}{}
		m[key] = set
	}
	set[value] = struct{}{}
}

// collect gathers the ancestor closure of entity over both relations. Each
// seed's full is-a chain comes back from one recursive query; part-of
// fillers mined from those rows become the seeds of the next round, since
// the engine must climb the is-a ancestors of each whole as well. Fillers
// already present as superclass keys, or already processed, are not
// re-seeded, so the loop terminates.
func collect(ctx context.Context, store *ldtab.Store, entity string) (*hierarchy, error) {
	h := newHierarchy()

	pending := []string{entity}
	seen := map[string]struct{}{}

	for len(pending) > 0 {
		fillers := map[string]struct{}{}

		for _, seed := range pending {
			seen[seed] = struct{}{}

			edges, err := store.SuperclassPairs(ctx, seed)
			if err != nil {
				return nil, err
			}
			for _, edge := range edges {
				if edge.Subject == edge.Object {
					return nil, &InvariantError{
						Msg: "is-a cycle at " + edge.Subject,
					}
				}
				insert(h.subclasses, edge.Object, edge.Subject)

				if filler, ok := ldtab.Decode(edge.Object).PartOfFiller(); ok {
					insert(h.parts, filler, edge.Subject)
					fillers[filler] = struct{}{}
				}
			}
		}

		pending = pending[:0]
		for filler := range fillers {
			if _, ok := h.subclasses[filler]; ok {
				continue
			}
			if _, ok := seen[filler]; ok {
				continue
			}
			pending = append(pending, filler)
		}
	}

	return h, nil
}

// prune removes anonymous identifiers from the is-a map, as keys and as set
// members. No re-linking is needed: the part-of restrictions that matter
// were already lifted into the parts map, and the rest are noise for the
// displayed hierarchy. Pruning a pruned map changes nothing.
func (h *hierarchy) prune() {
	invalid := map[string]struct{}{}
	for key, subs := range h.subclasses {
		if !ldtab.Decode(key).IsAtom() {
			invalid[key] = struct{}{}
		}
		for sub := range subs {
			if !ldtab.Decode(sub).IsAtom() {
				invalid[sub] = struct{}{}
			}
		}
	}
	for id := range invalid {
		delete(h.subclasses, id)
	}
	for _, subs := range h.subclasses {
		for id := range invalid {
			delete(subs, id)
		}
	}
}

// trim removes the strict ancestors of the preferred root set from both
// maps, re-rooting the forest at the preferred roots or their descendants.
// A preferred root is kept even when an ancestor edge points at it.
func (h *hierarchy) trim(preferred map[string]struct{}) {
	if len(preferred) == 0 {
		return
	}

	// parent sets over the union graph
	parents := map[string]map[string]struct{}{}
	for _, m := range []map[string]map[string]struct{}{h.subclasses, h.parts} {
		for key, children := range m {
			for child := range children {
				insert(parents, child, key)
			}
		}
	}

	ancestors := map[string]struct{}{}
	queue := make([]string, 0, len(preferred))
	for p := range preferred {
		queue = append(queue, p)
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for parent := range parents[node] {
			if _, ok := preferred[parent]; ok {
				continue
			}
			if _, ok := ancestors[parent]; ok {
				continue
			}
			ancestors[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}

	for _, m := range []map[string]map[string]struct{}{h.subclasses, h.parts} {
		for id := range ancestors {
			delete(m, id)
		}
		for _, children := range m {
			for id := range ancestors {
				delete(children, id)
			}
		}
	}
	for key, children := range h.subclasses {
		if len(children) == 0 {
			delete(h.subclasses, key)
		}
	}
	for key, children := range h.parts {
		if len(children) == 0 {
			delete(h.parts, key)
		}
	}
}

// roots returns the keys of either map that appear as no value in either
// map; every root has in-degree zero in the union graph.
func (h *hierarchy) roots() map[string]struct{} {
	values := map[string]struct{}{}
	roots := map[string]struct{}{}
	for _, m := range []map[string]map[string]struct{}{h.subclasses, h.parts} {
		for _, children := range m {
			for child := range children {
				values[child] = struct{}{}
			}
		}
	}
	for _, m := range []map[string]map[string]struct{}{h.subclasses, h.parts} {
		for key := range m {
			if _, ok := values[key]; !ok {
				roots[key] = struct{}{}
			}
		}
	}
	return roots
}

// identifiers returns every bare identifier appearing in either map, as key
// or as value.
func (h *hierarchy) identifiers() []string {
	set := map[string]struct{}{}
	for _, m := range []map[string]map[string]struct{}{h.subclasses, h.parts} {
		for key, children := range m {
			if ldtab.Decode(key).IsAtom() {
				set[key] = struct{}{}
			}
			for child := range children {
				if ldtab.Decode(child).IsAtom() {
					set[child] = struct{}{}
				}
			}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
