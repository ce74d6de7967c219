package scene

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/selection"
)

// Primitive classes. Hosts and test harnesses address primitives by class.
const (
	ClassNode      = "node"
	ClassLink      = "link"
	ClassEdgeLabel = "edgelabel"
	ClassImage     = "image"
	ClassNodeLabel = "nodelabel"
)

// imageScale sizes a node image relative to the node diameter.
const imageScale = 1.2

// =============================================================================
// Primitives
// =============================================================================

// NodePrimitive is the circle drawn for one node, plus its label.
type NodePrimitive struct {
	ID       int
	Name     string
	Group    int
	X, Y     float64
	Radius   float64
	Fill     string
	Opacity  float64
	Selected bool
	Pinned   bool
	ShowName bool // Label visibility
}

// ImagePrimitive is an icon overlaid on a node.
type ImagePrimitive struct {
	NodeID  int
	Href    string
	X, Y    float64 // Top-left corner
	Size    float64
	Opacity float64
}

// LinkPrimitive is the line drawn for one link.
type LinkPrimitive struct {
	Index     int
	SourceID  int
	TargetID  int
	X1, Y1    float64
	X2, Y2    float64
	Thickness float64
	Dashes    bool
	Stroke    string
	Opacity   float64
	Selected  bool
}

// EdgeLabelPrimitive is the text anchored at the midpoint of a labelled link.
type EdgeLabelPrimitive struct {
	LinkIndex int
	Text      string
	X, Y      float64
	Opacity   float64
	Selected  bool
	Visible   bool
}

// Element is a class-addressed view of a primitive, returned by
// [Surface.Query].
type Element struct {
	Class   string
	Key     int // Node id for node, image and nodelabel; link index otherwise
	Opacity float64
	Visible bool
}

// Positioner supplies node positions and pin state, typically a
// *layout.Simulation.
type Positioner interface {
	Position(id int) (r2.Vec, bool)
	Pinned(id int) bool
}

// =============================================================================
// Surface
// =============================================================================

// Surface holds the visual primitives of one rendering: one per node, one
// per node icon, one per link, and one per labelled link.
//
// A Surface is not safe for concurrent use.
type Surface struct {
	nodes  []*NodePrimitive
	images []*ImagePrimitive
	links  []*LinkPrimitive
	labels []*EdgeLabelPrimitive

	byNode   map[int]*NodePrimitive
	imgNode  map[int]*ImagePrimitive
	attached bool
}

// NewSurface returns an empty, detached surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Build replaces all primitives with fresh ones for g. Everything starts at
// full opacity; label visibility follows settings.
func (s *Surface) Build(g *graph.Graph, settings graph.Settings) {
	s.nodes = make([]*NodePrimitive, 0, g.NodeCount())
	s.images = nil
	s.links = make([]*LinkPrimitive, 0, g.LinkCount())
	s.labels = nil
	s.byNode = make(map[int]*NodePrimitive, g.NodeCount())
	s.imgNode = make(map[int]*ImagePrimitive)

	for _, n := range g.Nodes() {
		np := &NodePrimitive{
			ID:       n.ID,
			Name:     n.Name,
			Group:    n.Group,
			Radius:   n.Radius,
			Fill:     n.Fill,
			Opacity:  1,
			ShowName: settings.ShowNodeLabels,
		}
		s.nodes = append(s.nodes, np)
		s.byNode[n.ID] = np
		if n.HasIcon() {
			ip := &ImagePrimitive{NodeID: n.ID, Href: n.Icon, Size: 2 * n.Radius * imageScale, Opacity: 1}
			s.images = append(s.images, ip)
			s.imgNode[n.ID] = ip
		}
	}
	for _, l := range g.Links() {
		s.links = append(s.links, &LinkPrimitive{
			Index:     l.Index,
			SourceID:  l.SourceID,
			TargetID:  l.TargetID,
			Thickness: l.Thickness,
			Dashes:    l.Dashes,
			Stroke:    l.Stroke,
			Opacity:   1,
		})
		if l.HasLabel() {
			s.labels = append(s.labels, &EdgeLabelPrimitive{
				LinkIndex: l.Index,
				Text:      l.Label,
				Opacity:   1,
				Visible:   settings.ShowEdgeLabels,
			})
		}
	}
	s.attached = true
}

// Reposition moves every primitive to the positions reported by p.
// Called once per simulation tick.
func (s *Surface) Reposition(p Positioner) {
	for _, n := range s.nodes {
		if v, ok := p.Position(n.ID); ok {
			n.X, n.Y = v.X, v.Y
		}
		n.Pinned = p.Pinned(n.ID)
		if img, ok := s.imgNode[n.ID]; ok {
			img.X = n.X - img.Size/2
			img.Y = n.Y - img.Size/2
		}
	}

	mid := make(map[int]r2.Vec, len(s.labels))
	for _, l := range s.links {
		src, dst := s.byNode[l.SourceID], s.byNode[l.TargetID]
		if src == nil || dst == nil {
			continue
		}
		l.X1, l.Y1, l.X2, l.Y2 = src.X, src.Y, dst.X, dst.Y
		mid[l.Index] = r2.Scale(0.5, r2.Add(r2.Vec{X: src.X, Y: src.Y}, r2.Vec{X: dst.X, Y: dst.Y}))
	}
	for _, lb := range s.labels {
		m := mid[lb.LinkIndex]
		lb.X, lb.Y = m.X, m.Y
	}
}

// Apply reapplies emphasis from rs and label visibility from settings.
// Called whenever the selection or settings change.
func (s *Surface) Apply(rs selection.RenderState, settings graph.Settings) {
	for _, n := range s.nodes {
		n.Opacity = opacityOr1(rs.NodeOpacity, n.ID)
		n.Selected = rs.Nodes.Has(n.ID)
		n.ShowName = settings.ShowNodeLabels
	}
	for _, img := range s.images {
		img.Opacity = opacityOr1(rs.ImageOpacity, img.NodeID)
	}
	for _, l := range s.links {
		l.Opacity = opacityOr1(rs.LinkOpacity, l.Index)
		l.Selected = rs.Edges.Has(l.Index)
	}
	for _, lb := range s.labels {
		lb.Opacity = opacityOr1(rs.EdgeLabelOpacity, lb.LinkIndex)
		lb.Selected = rs.EdgeLabels.Has(lb.LinkIndex)
		lb.Visible = settings.ShowEdgeLabels
	}
}

func opacityOr1(m map[int]float64, key int) float64 {
	if o, ok := m[key]; ok {
		return o
	}
	return 1
}

// Detach releases every primitive. Detaching twice is a no-op.
func (s *Surface) Detach() {
	s.nodes, s.images, s.links, s.labels = nil, nil, nil, nil
	s.byNode, s.imgNode = nil, nil
	s.attached = false
}

// Attached reports whether the surface holds primitives from a Build.
func (s *Surface) Attached() bool { return s.attached }

// Nodes returns the node primitives in dataset order.
func (s *Surface) Nodes() []*NodePrimitive { return s.nodes }

// Images returns the image primitives in dataset order.
func (s *Surface) Images() []*ImagePrimitive { return s.images }

// Links returns the link primitives in dataset order.
func (s *Surface) Links() []*LinkPrimitive { return s.links }

// EdgeLabels returns the edge label primitives in dataset order.
func (s *Surface) EdgeLabels() []*EdgeLabelPrimitive { return s.labels }

// Query returns every primitive of the given class. Unknown classes yield
// nothing.
func (s *Surface) Query(class string) []Element {
	var out []Element
	switch class {
	case ClassNode:
		for _, n := range s.nodes {
			out = append(out, Element{Class: class, Key: n.ID, Opacity: n.Opacity, Visible: true})
		}
	case ClassNodeLabel:
		for _, n := range s.nodes {
			out = append(out, Element{Class: class, Key: n.ID, Opacity: n.Opacity, Visible: n.ShowName})
		}
	case ClassImage:
		for _, img := range s.images {
			out = append(out, Element{Class: class, Key: img.NodeID, Opacity: img.Opacity, Visible: true})
		}
	case ClassLink:
		for _, l := range s.links {
			out = append(out, Element{Class: class, Key: l.Index, Opacity: l.Opacity, Visible: true})
		}
	case ClassEdgeLabel:
		for _, lb := range s.labels {
			out = append(out, Element{Class: class, Key: lb.LinkIndex, Opacity: lb.Opacity, Visible: lb.Visible})
		}
	}
	return out
}
