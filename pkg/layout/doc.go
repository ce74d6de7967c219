// Package layout computes node positions with a force-directed simulation.
//
// # Forces
//
// Every tick accumulates velocity from a set of forces, then integrates:
//
//   - Link: springs pull linked nodes toward the link's rest distance;
//     thicker links pull harder
//   - Charge: all node pairs repel with inverse-square falloff
//   - Gravity: a weak pull toward the centre of the bounds
//   - Collide: overlapping circles are pushed apart by radius
//   - Cluster (clustered settings only): nodes are drawn to the largest node
//     of their group; collisions use the intra-cluster padding within a group
//     and the cluster padding between groups
//
// Positions are clamped to the bounds after each step.
//
// # Cooling
//
// Alpha starts at 1 and decays geometrically. The simulation converges when
// alpha falls below [Config.AlphaMin] or when the largest displacement of a
// tick is below [Config.ConvergenceDelta].
//
//	Idle --Start--> Ticking --Tick--> Converged
//	                   ^                  |
//	                   +-----Reheat-------+
//
// Resizing, pinning and dragging reheat a converged simulation to
// [Config.AlphaRestart].
//
// # Pinning
//
// [Simulation.Pin] fixes a node at a position; forces never move a pinned
// node. [Simulation.Drag] moves it while pinned and [Simulation.Unpin]
// releases it.
//
//	sim := layout.New(g, settings, 484, 700)
//	sim.Start()
//	for sim.Tick() {
//	    draw(sim.Positions())
//	}
package layout
