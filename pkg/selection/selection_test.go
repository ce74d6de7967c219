package selection

import (
	"slices"
	"testing"

	"github.com/matzehuels/topoview/pkg/graph"
)

func intPtr(v int) *int { return &v }

// scenarioGraph builds nodes 1, 2, 3, 55, 77 with links (1,2), (1,3), (2,55).
// Nodes 1, 2 and 3 are flagged selected.
func scenarioGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Normalize(
		[]graph.RawNode{
			{ID: intPtr(1), Selected: true, Icon: "service.svg"},
			{ID: intPtr(2), Selected: true},
			{ID: intPtr(3), Selected: true},
			{ID: intPtr(55)},
			{ID: intPtr(77), Icon: "container.svg"},
		},
		[]graph.RawLink{
			{Source: 0, Target: 1, Width: 2, Distance: 80, Label: "port: 3000"},
			{Source: 0, Target: 2, Width: 2, Distance: 80},
			{Source: 1, Target: 3, Width: 2, Distance: 80, Label: "port: 6379"},
		},
	)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return g
}

func endpoints(g *graph.Graph, s LinkSet) [][2]int {
	var out [][2]int
	for _, l := range s.Links(g) {
		out = append(out, [2]int{g.Source(l).ID, g.Target(l).ID})
	}
	return out
}

func TestInitial(t *testing.T) {
	g := scenarioGraph(t)
	got := Initial(g)
	if want := []int{1, 2, 3}; !slices.Equal(got.IDs(), want) {
		t.Errorf("Initial() = %v, want %v", got.IDs(), want)
	}

	none, err := graph.Normalize([]graph.RawNode{{}, {}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := Initial(none); got.Len() != 0 {
		t.Errorf("Initial() without flags = %v, want empty", got.IDs())
	}
}

func TestScenario(t *testing.T) {
	g := scenarioGraph(t)
	e := NewEngine(Initial(g))

	if got := e.Get().Len(); got != 3 {
		t.Fatalf("initial selection size = %d, want 3", got)
	}
	edges := DeriveEdges(g, e.Get())
	if got, want := endpoints(g, edges), [][2]int{{1, 2}, {1, 3}}; !slices.Equal(got, want) {
		t.Errorf("initial edges = %v, want %v", got, want)
	}
	labels := DeriveEdgeLabels(g, e.Get())
	if got := labels.Len(); got != 2 {
		t.Errorf("initial edge labels = %d, want 2", got)
	}

	e.Set(NewNodeSet(2, 55))
	if got := e.Get().Len(); got != 2 {
		t.Fatalf("updated selection size = %d, want 2", got)
	}
	edges = DeriveEdges(g, e.Get())
	if got, want := endpoints(g, edges), [][2]int{{2, 55}}; !slices.Equal(got, want) {
		t.Errorf("updated edges = %v, want %v", got, want)
	}
	labels = DeriveEdgeLabels(g, e.Get())
	if got, want := endpoints(g, labels), [][2]int{{2, 55}}; !slices.Equal(got, want) {
		t.Errorf("updated edge labels = %v, want %v", got, want)
	}
}

func TestDeriveEdges(t *testing.T) {
	g := scenarioGraph(t)
	loop, err := graph.Normalize(
		[]graph.RawNode{{ID: intPtr(4)}, {ID: intPtr(5)}},
		[]graph.RawLink{{Source: 0, Target: 0}, {Source: 0, Target: 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		g    *graph.Graph
		sel  NodeSet
		want []int
	}{
		{"Empty", g, NewNodeSet(), []int{}},
		{"Nil", g, nil, []int{}},
		{"Isolated", g, NewNodeSet(77), []int{}},
		{"OneEndpoint", g, NewNodeSet(1), []int{}},
		{"Conjunctive", g, NewNodeSet(1, 3), []int{1}},
		{"NotTransitive", g, NewNodeSet(1, 55), []int{}},
		{"All", g, NewNodeSet(1, 2, 3, 55, 77), []int{0, 1, 2}},
		{"StaleMembers", g, NewNodeSet(2, 55, 1000), []int{2}},
		{"SelfLoopSelected", loop, NewNodeSet(4), []int{0}},
		{"SelfLoopUnselected", loop, NewNodeSet(5), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveEdges(tt.g, tt.sel).Indices()
			if !slices.Equal(got, tt.want) {
				t.Errorf("DeriveEdges() = %v, want %v", got, tt.want)
			}
			labels := DeriveEdgeLabels(tt.g, tt.sel).Indices()
			if !slices.Equal(labels, got) {
				t.Errorf("DeriveEdgeLabels() = %v, diverges from edges %v", labels, got)
			}
		})
	}
}

func TestDeriveEdgesOrderIndependent(t *testing.T) {
	g := scenarioGraph(t)
	a := NewNodeSet(1, 2, 3)
	b := NewNodeSet()
	b.Add(3)
	b.Add(1)
	b.Add(2)
	b.Add(1)
	if !slices.Equal(DeriveEdges(g, a).Indices(), DeriveEdges(g, b).Indices()) {
		t.Error("edge derivation depends on construction order")
	}
}

func TestEngineReplaces(t *testing.T) {
	e := NewEngine(NewNodeSet(1, 2, 3))
	e.Set(NewNodeSet(55))
	if got := e.Get().IDs(); !slices.Equal(got, []int{55}) {
		t.Errorf("Get() = %v, want [55]", got)
	}

	// Mutating the argument or the result must not leak into the engine.
	s := NewNodeSet(2)
	e.Set(s)
	s.Add(3)
	got := e.Get()
	got.Add(77)
	if ids := e.Get().IDs(); !slices.Equal(ids, []int{2}) {
		t.Errorf("Get() = %v after external mutation, want [2]", ids)
	}

	e.Set(nil)
	if e.Get().Len() != 0 {
		t.Error("Set(nil) did not clear the selection")
	}
}

func TestOpacity(t *testing.T) {
	tests := []struct {
		member, empty bool
		want          float64
	}{
		{false, true, 1},
		{true, true, 1},
		{true, false, 1},
		{false, false, DimmedOpacity},
	}
	for _, tt := range tests {
		if got := Opacity(tt.member, tt.empty); got != tt.want {
			t.Errorf("Opacity(%v, %v) = %v, want %v", tt.member, tt.empty, got, tt.want)
		}
	}
}

func TestDeriveAll(t *testing.T) {
	g := scenarioGraph(t)
	rs := DeriveAll(g, NewNodeSet(1, 2, 3))

	for id, want := range map[int]float64{1: 1, 2: 1, 3: 1, 55: DimmedOpacity, 77: DimmedOpacity} {
		if got := rs.NodeOpacity[id]; got != want {
			t.Errorf("node %d opacity = %v, want %v", id, got, want)
		}
	}
	for idx, want := range map[int]float64{0: 1, 1: 1, 2: DimmedOpacity} {
		if got := rs.LinkOpacity[idx]; got != want {
			t.Errorf("link %d opacity = %v, want %v", idx, got, want)
		}
	}
	if len(rs.EdgeLabelOpacity) != 2 {
		t.Errorf("edge label opacities = %v, want entries for labelled links only", rs.EdgeLabelOpacity)
	}
	if rs.EdgeLabelOpacity[0] != 1 || rs.EdgeLabelOpacity[2] != DimmedOpacity {
		t.Errorf("edge label opacities = %v", rs.EdgeLabelOpacity)
	}
	if rs.ImageOpacity[1] != 1 || rs.ImageOpacity[77] != DimmedOpacity || len(rs.ImageOpacity) != 2 {
		t.Errorf("image opacities = %v", rs.ImageOpacity)
	}
}

func TestDeriveAllIsolatedNode(t *testing.T) {
	g := scenarioGraph(t)
	rs := DeriveAll(g, NewNodeSet(77))

	if rs.Empty() {
		t.Fatal("Empty() = true for a selection of one node")
	}
	if got := rs.Edges.Indices(); len(got) != 0 {
		t.Errorf("edges = %v, want none", got)
	}
	if rs.NodeOpacity[77] != 1 || rs.NodeOpacity[1] != DimmedOpacity {
		t.Errorf("node opacities = %v", rs.NodeOpacity)
	}
	for idx, o := range rs.LinkOpacity {
		if o != DimmedOpacity {
			t.Errorf("link %d opacity = %v, want %v", idx, o, DimmedOpacity)
		}
	}
	for idx, o := range rs.EdgeLabelOpacity {
		if o != DimmedOpacity {
			t.Errorf("edge label %d opacity = %v, want %v", idx, o, DimmedOpacity)
		}
	}
}

func TestDeriveAllEmptySelection(t *testing.T) {
	g := scenarioGraph(t)
	for _, sel := range []NodeSet{NewNodeSet(), NewNodeSet(1000)} {
		rs := DeriveAll(g, sel)
		if !rs.Empty() {
			t.Fatalf("Empty() = false for %v", sel.IDs())
		}
		for _, m := range []map[int]float64{rs.NodeOpacity, rs.ImageOpacity, rs.LinkOpacity, rs.EdgeLabelOpacity} {
			for k, v := range m {
				if v != 1 {
					t.Errorf("opacity[%d] = %v, want 1", k, v)
				}
			}
		}
	}
}

func TestDeriveAllIdempotent(t *testing.T) {
	g := scenarioGraph(t)
	e := NewEngine(nil)
	e.Set(NewNodeSet(2, 55))
	first := DeriveAll(g, e.Get())
	e.Set(NewNodeSet(2, 55))
	second := DeriveAll(g, e.Get())

	if !first.Nodes.Equal(second.Nodes) {
		t.Error("node sets differ")
	}
	if !slices.Equal(first.Edges.Indices(), second.Edges.Indices()) {
		t.Error("edge sets differ")
	}
	for idx, o := range first.LinkOpacity {
		if second.LinkOpacity[idx] != o {
			t.Errorf("link %d opacity differs: %v vs %v", idx, o, second.LinkOpacity[idx])
		}
	}
}

func TestWithDimmedOpacity(t *testing.T) {
	g := scenarioGraph(t)
	rs := DeriveAll(g, NewNodeSet(1), WithDimmedOpacity(0.5))
	if got := rs.NodeOpacity[55]; got != 0.5 {
		t.Errorf("dimmed = %v, want 0.5", got)
	}
	rs = DeriveAll(g, NewNodeSet(1), WithDimmedOpacity(0))
	if got := rs.NodeOpacity[55]; got != DimmedOpacity {
		t.Errorf("out-of-range option applied: %v", got)
	}
}

func TestNodeSetToggle(t *testing.T) {
	s := NewNodeSet(1)
	s.Toggle(2)
	s.Toggle(1)
	if got := s.IDs(); !slices.Equal(got, []int{2}) {
		t.Errorf("IDs() = %v, want [2]", got)
	}
}
