package selection

import (
	"github.com/matzehuels/topoview/pkg/graph"
)

// DimmedOpacity is the opacity of entities outside a non-empty selection.
const DimmedOpacity = 0.2

// Initial returns the ids of all nodes flagged as selected.
// The set is empty when no node is flagged.
func Initial(g *graph.Graph) NodeSet {
	s := make(NodeSet)
	for _, n := range g.Nodes() {
		if n.Selected {
			s.Add(n.ID)
		}
	}
	return s
}

// Filter returns the members of sel that belong to g. Unknown ids are
// dropped silently.
func Filter(g *graph.Graph, sel NodeSet) NodeSet {
	out := make(NodeSet, len(sel))
	for id := range sel {
		if g.Has(id) {
			out.Add(id)
		}
	}
	return out
}

// DeriveEdges returns the links whose source and target are both selected.
// Isolated selected nodes select no edges.
func DeriveEdges(g *graph.Graph, sel NodeSet) LinkSet {
	return deriveLinks(g, sel)
}

// DeriveEdgeLabels returns the links whose labels are selected. The rule is
// the edge rule applied to every link, labelled or not, so a label always
// tracks its owning edge.
func DeriveEdgeLabels(g *graph.Graph, sel NodeSet) LinkSet {
	return deriveLinks(g, sel)
}

func deriveLinks(g *graph.Graph, sel NodeSet) LinkSet {
	out := make(LinkSet)
	if len(sel) == 0 {
		return out
	}
	for _, l := range g.Links() {
		if sel.Has(l.SourceID) && sel.Has(l.TargetID) {
			out[l.Index] = struct{}{}
		}
	}
	return out
}

// Opacity returns the opacity of an entity. Everything is fully visible when
// nothing is selected; otherwise members are fully visible and the rest are
// dimmed.
func Opacity(member, selectionEmpty bool) float64 {
	return opacity(member, selectionEmpty, DimmedOpacity)
}

func opacity(member, selectionEmpty bool, dimmed float64) float64 {
	if selectionEmpty || member {
		return 1
	}
	return dimmed
}

// Engine owns the current node selection of one rendering instance.
//
// The selection is only ever replaced wholesale; derived selections are
// recomputed from it and never stored.
type Engine struct {
	sel NodeSet
}

// NewEngine creates an engine seeded with a copy of initial.
func NewEngine(initial NodeSet) *Engine {
	if initial == nil {
		initial = NewNodeSet()
	}
	return &Engine{sel: initial.Clone()}
}

// Set replaces the selection. Prior members not in s are discarded.
func (e *Engine) Set(s NodeSet) {
	if s == nil {
		e.sel = NewNodeSet()
		return
	}
	e.sel = s.Clone()
}

// Get returns a copy of the current selection.
func (e *Engine) Get() NodeSet { return e.sel.Clone() }

// Reseed replaces the selection with the flagged nodes of g.
func (e *Engine) Reseed(g *graph.Graph) { e.sel = Initial(g) }
