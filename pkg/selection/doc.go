// Package selection derives edge emphasis from a node selection.
//
// The node selection is the only mutable input. Edge and edge-label
// selections are derived from it with a conjunctive rule: a link is selected
// if and only if both of its endpoints are selected. Opacity follows
// membership, except that an empty selection shows everything at full
// opacity.
//
//	sel := selection.NewNodeSet(2, 55)
//	rs := selection.DeriveAll(g, sel)
//	rs.Edges.Indices()      // links between 2 and 55 only
//	rs.NodeOpacity[77]      // selection.DimmedOpacity
//
// [Engine] holds the current selection for a rendering instance and replaces
// it wholesale on every [Engine.Set].
package selection
