package selection

import (
	"github.com/matzehuels/topoview/pkg/graph"
)

// RenderState is the emphasis derived from one node selection: the
// effective node set, the derived edge and edge-label sets, and an opacity
// for every node, link, edge label and node image.
//
// A RenderState is rebuilt wholesale by [DeriveAll] on every change and is
// never patched in place.
type RenderState struct {
	Nodes      NodeSet
	Edges      LinkSet
	EdgeLabels LinkSet

	NodeOpacity      map[int]float64 // by node id
	ImageOpacity     map[int]float64 // by node id, nodes with an icon only
	LinkOpacity      map[int]float64 // by link index
	EdgeLabelOpacity map[int]float64 // by link index, labelled links only
}

// Empty reports whether nothing is selected.
func (rs RenderState) Empty() bool { return len(rs.Nodes) == 0 }

// Option configures DeriveAll.
type Option func(*deriveConfig)

type deriveConfig struct {
	dimmed float64
}

// WithDimmedOpacity sets the opacity of unselected entities.
// Values outside (0, 1) are ignored.
func WithDimmedOpacity(v float64) Option {
	return func(c *deriveConfig) {
		if v > 0 && v < 1 {
			c.dimmed = v
		}
	}
}

// DeriveAll computes the complete render state for sel over g. Members of
// sel that are not in g are ignored. The result depends only on the
// arguments, so repeated calls with equal inputs yield equal states.
func DeriveAll(g *graph.Graph, sel NodeSet, opts ...Option) RenderState {
	cfg := deriveConfig{dimmed: DimmedOpacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes := Filter(g, sel)
	rs := RenderState{
		Nodes:            nodes,
		Edges:            DeriveEdges(g, nodes),
		EdgeLabels:       DeriveEdgeLabels(g, nodes),
		NodeOpacity:      make(map[int]float64, g.NodeCount()),
		ImageOpacity:     make(map[int]float64),
		LinkOpacity:      make(map[int]float64, g.LinkCount()),
		EdgeLabelOpacity: make(map[int]float64),
	}
	// Dimming keys off the node selection alone. A non-empty selection with no
	// derived edges still dims every link and label.
	empty := rs.Empty()

	for _, n := range g.Nodes() {
		o := opacity(nodes.Has(n.ID), empty, cfg.dimmed)
		rs.NodeOpacity[n.ID] = o
		if n.HasIcon() {
			rs.ImageOpacity[n.ID] = o
		}
	}
	for _, l := range g.Links() {
		rs.LinkOpacity[l.Index] = opacity(rs.Edges.Has(l.Index), empty, cfg.dimmed)
		if l.HasLabel() {
			rs.EdgeLabelOpacity[l.Index] = opacity(rs.EdgeLabels.Has(l.Index), empty, cfg.dimmed)
		}
	}
	return rs
}
