package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
)

const sampleJSON = `{
  "nodes": [
    {"id": 1, "name": "service: guestbook", "radius": 16, "selected": true},
    {"id": 2, "name": "pod: guestbook-controller", "radius": 20, "selected": true},
    {"id": 3, "name": "pod: guestbook-controller", "radius": 20, "selected": true},
    {"id": 55, "name": "pod: guestbook-controller", "radius": 20},
    {"id": 77, "name": "container: php-redis", "radius": 24}
  ],
  "links": [
    {"source": 0, "target": 1, "width": 2},
    {"source": 0, "target": 2, "width": 2},
    {"source": 1, "target": 3, "width": 2, "label": "owns"}
  ],
  "settings": {"showNodeLabels": true, "showEdgeLabels": true}
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guestbook.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var buf bytes.Buffer
	return New(&buf, log.DebugLevel), &buf
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,json", []string{"svg", "pdf", "json"}},
		{"spaces trimmed", "svg, dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid all", []string{"svg", "png", "pdf", "json", "dot", "graphviz"}, false},
		{"invalid format", []string{"gif"}, true},
		{"mixed valid invalid", []string{"svg", "gif"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		format string
		single bool
		want   string
	}{
		{"derived from input", "", "data/topo.yaml", "svg", true, "data/topo.svg"},
		{"explicit single", "out.svg", "topo.json", "svg", true, "out.svg"},
		{"base with extension", "out/graph.svg", "topo.json", "png", false, "out/graph.png"},
		{"base without extension", "out/graph", "topo.json", "json", false, "out/graph.json"},
		{"graphviz extension", "", "topo.json", "graphviz", false, "topo.gv.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.input, tt.format, tt.single); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeSample(t)
	base := filepath.Join(t.TempDir(), "out", "guestbook")

	c, _ := testCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "-f", "svg,json,dot", "-o", base, "--select", "2,55", "--container-width", "500"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`width="484"`)) {
		t.Errorf("svg not sized to the container: %.200s", svg)
	}

	f, err := graph.ReadFrameFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Selection) != 2 || f.Selection[0] != 2 || f.Selection[1] != 55 {
		t.Errorf("frame selection = %v, want [2 55]", f.Selection)
	}
	if f.State != "converged" {
		t.Errorf("frame state = %q, want converged", f.State)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "graph G {") {
		t.Errorf("dot output = %.60s", dot)
	}
}

func TestRenderExplicitSize(t *testing.T) {
	input := writeSample(t)
	out := filepath.Join(t.TempDir(), "sized.json")

	c, _ := testCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "-f", "json", "-o", out, "--width", "750", "--height", "750", "--no-selection"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := graph.ReadFrameFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Width != 750 || f.Height != 750 {
		t.Errorf("frame size = %vx%v, want 750x750", f.Width, f.Height)
	}
	if len(f.Selection) != 0 {
		t.Errorf("selection = %v, want empty", f.Selection)
	}
	for _, n := range f.Nodes {
		if n.Opacity != 1 {
			t.Errorf("node %d opacity = %v with empty selection", n.ID, n.Opacity)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	input := writeSample(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nodes":[{"name":"a"}],"links":[{"source":0,"target":3}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"InvalidFormat", []string{"render", input, "-f", "gif"}},
		{"ConflictingSelection", []string{"render", input, "--select", "1", "--no-selection"}},
		{"InvalidMaxTicks", []string{"render", input, "--max-ticks", "0"}},
		{"DataIntegrity", []string{"render", bad, "-o", filepath.Join(t.TempDir(), "x.svg")}},
		{"MissingFile", []string{"render", filepath.Join(t.TempDir(), "nope.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCLI(t)
			root := c.RootCommand()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			if err := root.ExecuteContext(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigFlag(t *testing.T) {
	input := writeSample(t)
	cfgPath := filepath.Join(t.TempDir(), "topoview.toml")
	if err := os.WriteFile(cfgPath, []byte("[sizing]\ncontainer_width = 316\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "cfg.json")

	c, _ := testCLI(t)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "render", input, "-f", "json", "-o", out})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := graph.ReadFrameFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Width != 300 {
		t.Errorf("frame width = %v, want 300 from container_width", f.Width)
	}
}

func TestRenderUsesArtifactCache(t *testing.T) {
	input := writeSample(t)
	out := filepath.Join(t.TempDir(), "cached.svg")
	c, logs := testCLI(t)

	run := func(extra ...string) string {
		t.Helper()
		logs.Reset()
		root := c.RootCommand()
		root.SetArgs(append([]string{"render", input, "-o", out}, extra...))
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("render: %v", err)
		}
		return logs.String()
	}

	if first := run(); strings.Contains(first, "skipping layout") {
		t.Error("first render hit the cache")
	}
	want, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}

	if second := run(); !strings.Contains(second, "skipping layout") {
		t.Errorf("second render did not use the cache: %s", second)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Error("cached artifact differs from the rendered one")
	}

	if third := run("--no-cache"); strings.Contains(third, "skipping layout") {
		t.Error("--no-cache still used the cache")
	}
	if fourth := run("--select", "77"); strings.Contains(fourth, "skipping layout") {
		t.Error("changed selection hit the cache")
	}
}
