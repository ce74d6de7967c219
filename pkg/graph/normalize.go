package graph

import (
	"math"
	"slices"

	"github.com/matzehuels/topoview/pkg/errors"
)

// Graph is the canonical in-memory form of a dataset: an ordered node
// sequence, an ordered link sequence, and an id→node index built once.
//
// A Graph is immutable after Normalize returns.
type Graph struct {
	nodes []*Node
	links []*Link
	byID  map[int]*Node
}

// Normalize converts raw records into a Graph.
//
// Nodes without an explicit id receive their index as id. Link endpoints are
// resolved from positional indices to node ids. Input order is preserved and
// the raw slices are never modified.
//
// Returns a *errors.DataIntegrityError when a link index is out of range or
// two nodes share an id, and an INVALID_INPUT error when a radius, thickness,
// width or distance is negative or not finite. No partial Graph is returned
// on error.
func Normalize(rawNodes []RawNode, rawLinks []RawLink) (*Graph, error) {
	g := &Graph{
		nodes: make([]*Node, len(rawNodes)),
		links: make([]*Link, len(rawLinks)),
		byID:  make(map[int]*Node, len(rawNodes)),
	}

	for i, rn := range rawNodes {
		n := &Node{
			ID:       i,
			Index:    i,
			Name:     rn.Name,
			Group:    rn.Group,
			Radius:   rn.Radius,
			Fill:     rn.Fill,
			Icon:     rn.Icon,
			Selected: rn.Selected,
		}
		if rn.ID != nil {
			n.ID = *rn.ID
		}
		if err := checkMeasure("node", i, "radius", n.Radius); err != nil {
			return nil, err
		}
		if n.Radius == 0 {
			n.Radius = DefaultRadius
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, &errors.DataIntegrityError{Link: -1, Index: n.ID, NodeCount: len(rawNodes)}
		}
		g.nodes[i] = n
		g.byID[n.ID] = n
	}

	for i, rl := range rawLinks {
		if err := checkIndex(i, "source", rl.Source, len(rawNodes)); err != nil {
			return nil, err
		}
		if err := checkIndex(i, "target", rl.Target, len(rawNodes)); err != nil {
			return nil, err
		}
		for _, m := range []struct {
			field string
			v     float64
		}{{"thickness", rl.Thickness}, {"width", rl.Width}, {"distance", rl.Distance}} {
			if err := checkMeasure("link", i, m.field, m.v); err != nil {
				return nil, err
			}
		}
		g.links[i] = &Link{
			Index:     i,
			SourceID:  g.nodes[rl.Source].ID,
			TargetID:  g.nodes[rl.Target].ID,
			Thickness: thickness(rl),
			Distance:  distance(rl),
			Label:     rl.Label,
			Dashes:    rl.Dashes,
			Stroke:    rl.Stroke,
		}
	}

	return g, nil
}

// Normalize is a convenience for Normalize(d.Nodes, d.Links) that also
// validates the settings.
func (d *Dataset) Normalize() (*Graph, error) {
	if err := d.Settings.Validate(); err != nil {
		return nil, err
	}
	return Normalize(d.Nodes, d.Links)
}

func checkIndex(link int, endpoint string, idx, n int) error {
	if idx < 0 || idx >= n {
		return &errors.DataIntegrityError{Link: link, Endpoint: endpoint, Index: idx, NodeCount: n}
	}
	return nil
}

// checkMeasure rejects values that would poison the simulation. Zero means
// unset and is replaced by the default.
func checkMeasure(kind string, index int, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s %d: %s must be a finite non-negative number, got %v", kind, index, field, v)
	}
	return nil
}

func thickness(rl RawLink) float64 {
	switch {
	case rl.Thickness > 0:
		return rl.Thickness
	case rl.Width > 0:
		return rl.Width
	default:
		return DefaultThickness
	}
}

func distance(rl RawLink) float64 {
	if rl.Distance > 0 {
		return rl.Distance
	}
	return DefaultDistance
}

// =============================================================================
// Accessors
// =============================================================================

// Nodes returns the node sequence in input order.
// The returned slice must not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Links returns the link sequence in input order.
// The returned slice must not be modified.
func (g *Graph) Links() []*Link { return g.links }

// Node looks up a node by id.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Has reports whether a node with the given id belongs to the graph.
func (g *Graph) Has(id int) bool {
	_, ok := g.byID[id]
	return ok
}

// Source resolves the source node of a link.
func (g *Graph) Source(l *Link) *Node { return g.byID[l.SourceID] }

// Target resolves the target node of a link.
func (g *Graph) Target(l *Link) *Node { return g.byID[l.TargetID] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Groups returns the distinct cluster keys in ascending order.
func (g *Graph) Groups() []int {
	seen := make(map[int]struct{})
	var groups []int
	for _, n := range g.nodes {
		if _, ok := seen[n.Group]; ok {
			continue
		}
		seen[n.Group] = struct{}{}
		groups = append(groups, n.Group)
	}
	slices.Sort(groups)
	return groups
}
