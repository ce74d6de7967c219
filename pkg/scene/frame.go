package scene

import (
	"github.com/matzehuels/topoview/pkg/graph"
)

// FrameInfo carries the simulation metadata recorded with a frame.
type FrameInfo struct {
	Tick          int
	State         string
	Alpha         float64
	Width, Height float64
	Selection     []int
}

// Frame snapshots the surface into its serialization form.
func (s *Surface) Frame(info FrameInfo) graph.Frame {
	f := graph.Frame{
		Tick:      info.Tick,
		State:     info.State,
		Width:     info.Width,
		Height:    info.Height,
		Alpha:     info.Alpha,
		Selection: info.Selection,
		Nodes:     make([]graph.FrameNode, 0, len(s.nodes)),
		Links:     make([]graph.FrameLink, 0, len(s.links)),
	}
	if f.Selection == nil {
		f.Selection = []int{}
	}
	for _, n := range s.nodes {
		f.Nodes = append(f.Nodes, graph.FrameNode{
			ID:       n.ID,
			Name:     n.Name,
			Group:    n.Group,
			X:        n.X,
			Y:        n.Y,
			Radius:   n.Radius,
			Opacity:  n.Opacity,
			Selected: n.Selected,
			Pinned:   n.Pinned,
		})
	}

	labels := make(map[int]string, len(s.labels))
	for _, lb := range s.labels {
		if lb.Visible {
			labels[lb.LinkIndex] = lb.Text
		}
	}
	for _, l := range s.links {
		f.Links = append(f.Links, graph.FrameLink{
			Index:    l.Index,
			Source:   l.SourceID,
			Target:   l.TargetID,
			X1:       l.X1,
			Y1:       l.Y1,
			X2:       l.X2,
			Y2:       l.Y2,
			Opacity:  l.Opacity,
			Selected: l.Selected,
			Label:    labels[l.Index],
		})
	}
	return f
}

// RenderJSON serializes the surface as a pretty-printed frame.
func RenderJSON(s *Surface, info FrameInfo) ([]byte, error) {
	return graph.MarshalFrame(s.Frame(info))
}
