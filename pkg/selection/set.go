package selection

import (
	"slices"

	"github.com/matzehuels/topoview/pkg/graph"
)

// NodeSet is a set of node ids. Membership is id equality; the zero value
// is not usable, use [NewNodeSet].
type NodeSet map[int]struct{}

// NewNodeSet returns a set holding the given ids. Duplicates collapse.
func NewNodeSet(ids ...int) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a member.
func (s NodeSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s NodeSet) Add(id int) { s[id] = struct{}{} }

// Remove deletes id from the set.
func (s NodeSet) Remove(id int) { delete(s, id) }

// Toggle flips the membership of id.
func (s NodeSet) Toggle(id int) {
	if s.Has(id) {
		delete(s, id)
		return
	}
	s[id] = struct{}{}
}

// Len returns the number of members.
func (s NodeSet) Len() int { return len(s) }

// IDs returns the members in ascending order.
func (s NodeSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy of the set.
func (s NodeSet) Clone() NodeSet {
	c := make(NodeSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same ids.
func (s NodeSet) Equal(o NodeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// LinkSet is a set of links identified by their index in the graph's link
// sequence.
type LinkSet map[int]struct{}

// Has reports whether the link with the given index is a member.
func (s LinkSet) Has(index int) bool {
	_, ok := s[index]
	return ok
}

// Len returns the number of members.
func (s LinkSet) Len() int { return len(s) }

// Indices returns the member link indices in ascending order, which is the
// order the links appear in the dataset.
func (s LinkSet) Indices() []int {
	idx := make([]int, 0, len(s))
	for i := range s {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// Links resolves the members against g in dataset order.
func (s LinkSet) Links(g *graph.Graph) []*graph.Link {
	all := g.Links()
	out := make([]*graph.Link, 0, len(s))
	for _, i := range s.Indices() {
		if i >= 0 && i < len(all) {
			out = append(out, all[i])
		}
	}
	return out
}
