package selection_test

import (
	"fmt"

	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/selection"
)

func ExampleDeriveAll() {
	ids := []int{1, 2, 3, 55, 77}
	nodes := make([]graph.RawNode, len(ids))
	for i := range ids {
		nodes[i] = graph.RawNode{ID: &ids[i]}
	}
	g, _ := graph.Normalize(nodes, []graph.RawLink{
		{Source: 0, Target: 1},
		{Source: 0, Target: 2},
		{Source: 1, Target: 3},
	})

	rs := selection.DeriveAll(g, selection.NewNodeSet(2, 55))
	for _, l := range rs.Edges.Links(g) {
		fmt.Printf("edge %d-%d\n", g.Source(l).ID, g.Target(l).ID)
	}
	fmt.Println("node 2:", rs.NodeOpacity[2])
	fmt.Println("node 77:", rs.NodeOpacity[77])
	// Output:
	// edge 2-55
	// node 2: 1
	// node 77: 0.2
}
