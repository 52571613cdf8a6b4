package domain

import "sort"

// ChildLister returns the ids of all activities whose parent is in parentIDs.
type ChildLister func(parentIDs []int64) ([]int64, error)

// ExpandClosure walks the activity forest breadth first starting at root and
// returns root followed by every descendant, level by level. Each level costs
// one call to children. Ids already visited are never expanded again, so
// malformed data containing a cycle still terminates.
func ExpandClosure(root int64, children ChildLister) ([]int64, error) {
	visited := map[int64]struct{}{root: {}}
	closure := []int64{root}
	frontier := []int64{root}
	for len(frontier) > 0 {
		next, err := children(frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0:0]
		for _, id := range next {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			closure = append(closure, id)
			frontier = append(frontier, id)
		}
	}
	return closure, nil
}

// ActivityTree is an id-indexed arena of activities. Parent links are plain ids.
type ActivityTree struct {
	nodes    map[int64]Activity
	children map[int64][]int64
}

// NewActivityTree indexes the supplied activities.
func NewActivityTree(activities []Activity) *ActivityTree {
	t := &ActivityTree{
		nodes:    make(map[int64]Activity, len(activities)),
		children: make(map[int64][]int64),
	}
	for _, a := range activities {
		t.nodes[a.ID] = a
		if a.ParentID != nil {
			t.children[*a.ParentID] = append(t.children[*a.ParentID], a.ID)
		}
	}
	for parent := range t.children {
		ids := t.children[parent]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return t
}

// Len returns the number of indexed activities.
func (t *ActivityTree) Len() int { return len(t.nodes) }

// Get returns the activity with the given id.
func (t *ActivityTree) Get(id int64) (Activity, bool) {
	a, ok := t.nodes[id]
	return a, ok
}

// Children returns the direct children of every id in parentIDs.
func (t *ActivityTree) Children(parentIDs []int64) []int64 {
	var out []int64
	for _, parent := range parentIDs {
		out = append(out, t.children[parent]...)
	}
	return out
}

// Closure returns id plus all of its descendants. An unknown id yields the
// singleton set.
func (t *ActivityTree) Closure(id int64) []int64 {
	ids, _ := ExpandClosure(id, func(parents []int64) ([]int64, error) {
		return t.Children(parents), nil
	})
	return ids
}
