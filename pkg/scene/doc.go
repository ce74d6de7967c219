// Package scene maintains the visual primitives of a rendered topology and
// writes them out as SVG, Graphviz, PNG, PDF or JSON frames.
//
// # Primitives
//
// A [Surface] holds one primitive per entity, each addressable by class:
//
//   - node: a circle per node
//   - image: an icon per node that declares one
//   - link: a line per link
//   - edgelabel: a text anchor per link that carries a label
//   - nodelabel: the name printed beside a node
//
// The surface is updated in two ways. [Surface.Reposition] runs after every
// simulation tick and moves primitives to the latest coordinates.
// [Surface.Apply] runs after every selection or settings change and
// reapplies opacity and label visibility from a selection.RenderState.
//
// # Output
//
//	svg := scene.RenderSVG(s, 484, 700, scene.WithInteraction())
//	png, err := scene.ToPNG(ctx, svg, 2.0)
//	dot := scene.ToDOT(s, 700)
//	frame := s.Frame(scene.FrameInfo{Tick: 120, Width: 484, Height: 700})
//
// PNG and PDF conversion shell out to rsvg-convert.
package scene
