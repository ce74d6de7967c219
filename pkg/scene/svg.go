package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	defaultFill   = "#9ecae1"
	defaultStroke = "#999999"
	fontFamily    = "Helvetica, Arial, sans-serif"
)

const interactionCSS = `
    .node { cursor: pointer; transition: stroke-width 0.2s ease; }
    .node.highlight { stroke-width: 3; }
    .link.highlight { stroke: #ff7f0e; }`

const interactionJS = `
    function highlight(id) {
      document.querySelectorAll('.node').forEach(n => n.classList.toggle('highlight', n.dataset.id === id));
      document.querySelectorAll('.link').forEach(l => l.classList.toggle('highlight', l.dataset.source === id || l.dataset.target === id));
    }
    function clearHighlight() {
      document.querySelectorAll('.node, .link').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.id));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	interactive bool
	title       string
}

// WithBackground fills the canvas with a colour. The default is transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithInteraction embeds hover highlighting for standalone viewing.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithTitle sets the document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws the surface on a width×height canvas. Every primitive
// carries its class and an explicit opacity attribute. Links are drawn below
// nodes; labels are drawn last.
func RenderSVG(s *Surface, width, height float64, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, l := range s.links {
		renderLink(&buf, l)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range s.nodes {
		renderNode(&buf, n)
	}
	for _, img := range s.images {
		fmt.Fprintf(&buf, `    <image class="%s" data-id="%d" href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" opacity="%s"/>`+"\n",
			ClassImage, img.NodeID, escapeXML(img.Href), img.X, img.Y, img.Size, img.Size, fmtOpacity(img.Opacity))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="labels">` + "\n")
	for _, n := range s.nodes {
		if !n.ShowName || n.Name == "" {
			continue
		}
		fmt.Fprintf(&buf, `    <text class="%s" data-id="%d" x="%.2f" y="%.2f" font-family="%s" font-size="12" opacity="%s">%s</text>`+"\n",
			ClassNodeLabel, n.ID, n.X+n.Radius+4, n.Y+4, fontFamily, fmtOpacity(n.Opacity), escapeXML(n.Name))
	}
	for _, lb := range s.labels {
		vis := ""
		if !lb.Visible {
			vis = ` visibility="hidden"`
		}
		fmt.Fprintf(&buf, `    <text class="%s" data-link="%d" x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="10" opacity="%s"%s>%s</text>`+"\n",
			ClassEdgeLabel, lb.LinkIndex, lb.X, lb.Y, fontFamily, fmtOpacity(lb.Opacity), vis, escapeXML(lb.Text))
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLink(buf *bytes.Buffer, l *LinkPrimitive) {
	stroke := l.Stroke
	if stroke == "" {
		stroke = defaultStroke
	}
	dash := ""
	if l.Dashes {
		dash = ` stroke-dasharray="5,5"`
	}
	fmt.Fprintf(buf, `    <line class="%s" data-source="%d" data-target="%d" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f"%s opacity="%s"/>`+"\n",
		ClassLink, l.SourceID, l.TargetID, l.X1, l.Y1, l.X2, l.Y2, escapeXML(stroke), l.Thickness, dash, fmtOpacity(l.Opacity))
}

func renderNode(buf *bytes.Buffer, n *NodePrimitive) {
	fill := n.Fill
	if fill == "" {
		fill = defaultFill
	}
	stroke := "#ffffff"
	if n.Pinned {
		stroke = "#333333"
	}
	fmt.Fprintf(buf, `    <circle class="%s" data-id="%d" data-group="%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1.5" opacity="%s"><title>%s</title></circle>`+"\n",
		ClassNode, n.ID, n.Group, n.X, n.Y, n.Radius, escapeXML(fill), stroke, fmtOpacity(n.Opacity), escapeXML(n.Name))
}

// fmtOpacity prints opacity without trailing zeros, so full opacity is "1".
func fmtOpacity(o float64) string {
	return fmt.Sprintf("%g", o)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
