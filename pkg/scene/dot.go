package scene

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT converts the surface to Graphviz DOT with every node pinned at its
// simulated position. Graphviz is y-up, so y is flipped against height.
// Dimmed primitives are written with an alpha channel.
func ToDOT(s *Surface, height float64) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, label=\"\"];\n")
	buf.WriteString("\n")

	for _, n := range s.nodes {
		fill := n.Fill
		if fill == "" {
			fill = defaultFill
		}
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\", width=%.3f, fillcolor=%q, color=%q, class=%q",
			n.X, height-n.Y, 2*n.Radius/72, fill, alphaHex("#ffffff", n.Opacity), ClassNode)
		if n.ShowName && n.Name != "" {
			attrs += fmt.Sprintf(", xlabel=%q", n.Name)
		}
		if n.Opacity < 1 {
			attrs += fmt.Sprintf(", penwidth=0, fontcolor=%q", alphaHex("#000000", n.Opacity))
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	labels := make(map[int]*EdgeLabelPrimitive, len(s.labels))
	for _, lb := range s.labels {
		labels[lb.LinkIndex] = lb
	}
	for _, l := range s.links {
		stroke := l.Stroke
		if stroke == "" {
			stroke = defaultStroke
		}
		attrs := fmt.Sprintf("color=%q, penwidth=%.1f, class=%q", alphaHex(stroke, l.Opacity), l.Thickness, ClassLink)
		if l.Dashes {
			attrs += ", style=dashed"
		}
		if lb, ok := labels[l.Index]; ok && lb.Visible {
			attrs += fmt.Sprintf(", label=%q, fontsize=9, fontcolor=%q", lb.Text, alphaHex("#000000", lb.Opacity))
		}
		fmt.Fprintf(&buf, "  n%d -- n%d [%s];\n", l.SourceID, l.TargetID, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// alphaHex appends an alpha channel to a #rrggbb colour. Named colours are
// returned unchanged.
func alphaHex(color string, opacity float64) string {
	if len(color) != 7 || color[0] != '#' || opacity >= 1 {
		return color
	}
	return fmt.Sprintf("%s%02x", color, int(opacity*255))
}

// RenderDOTSVG renders DOT produced by [ToDOT] to SVG. The DOT selects the
// neato engine, which honours the pinned positions.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
