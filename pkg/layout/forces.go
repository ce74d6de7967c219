package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// force accumulates velocity changes for one tick at the given alpha.
type force interface {
	apply(s *Simulation, alpha float64)
}

// jiggle returns a tiny non-zero offset used to separate coincident nodes.
// It is derived from the node index so that layouts stay reproducible.
func jiggle(seed int) float64 {
	return (float64(seed%7) - 2.5) * 1e-6
}

// =============================================================================
// Link force
// =============================================================================

// linkForce pulls the endpoints of each link toward its rest distance.
// Strength is inversely proportional to the degree of the less connected
// endpoint and grows with link thickness.
type linkForce struct {
	links []spring
}

type spring struct {
	source, target int // body indices
	distance       float64
	strength       float64
	bias           float64 // share of the correction applied to the target
}

func newLinkForce(s *Simulation) *linkForce {
	degree := make([]int, len(s.bodies))
	for _, l := range s.g.Links() {
		degree[s.index[l.SourceID]]++
		degree[s.index[l.TargetID]]++
	}

	f := &linkForce{}
	for _, l := range s.g.Links() {
		if l.IsSelfLoop() {
			continue
		}
		si, ti := s.index[l.SourceID], s.index[l.TargetID]
		ds, dt := float64(degree[si]), float64(degree[ti])
		strength := math.Sqrt(l.Thickness) / math.Min(ds, dt)
		f.links = append(f.links, spring{
			source:   si,
			target:   ti,
			distance: l.Distance,
			strength: math.Min(strength, 1),
			bias:     ds / (ds + dt),
		})
	}
	return f
}

func (f *linkForce) apply(s *Simulation, alpha float64) {
	for i, sp := range f.links {
		src, dst := s.bodies[sp.source], s.bodies[sp.target]
		d := r2.Sub(r2.Add(dst.pos, dst.vel), r2.Add(src.pos, src.vel))
		if d.X == 0 {
			d.X = jiggle(i)
		}
		if d.Y == 0 {
			d.Y = jiggle(i + 1)
		}
		l := r2.Norm(d)
		k := (l - sp.distance) / l * alpha * sp.strength
		d = r2.Scale(k, d)
		dst.vel = r2.Sub(dst.vel, r2.Scale(sp.bias, d))
		src.vel = r2.Add(src.vel, r2.Scale(1-sp.bias, d))
	}
}

// =============================================================================
// Charge force
// =============================================================================

// chargeForce applies pairwise repulsion (or attraction for positive
// strength) with inverse-square falloff.
type chargeForce struct {
	strength float64
}

func (f chargeForce) apply(s *Simulation, alpha float64) {
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		bi := s.bodies[i]
		for j := i + 1; j < n; j++ {
			bj := s.bodies[j]
			d := r2.Sub(bj.pos, bi.pos)
			if d.X == 0 {
				d.X = jiggle(i + j)
			}
			if d.Y == 0 {
				d.Y = jiggle(i * j)
			}
			l2 := r2.Norm2(d)
			if l2 < 1 {
				l2 = math.Sqrt(l2)
			}
			w := f.strength * alpha / l2
			bi.vel = r2.Add(bi.vel, r2.Scale(w, d))
			bj.vel = r2.Sub(bj.vel, r2.Scale(w, d))
		}
	}
}

// =============================================================================
// Gravity
// =============================================================================

// gravityForce pulls nodes toward the centre of the bounds so that
// disconnected components do not drift apart.
type gravityForce struct {
	strength float64
}

func (f gravityForce) apply(s *Simulation, alpha float64) {
	c := s.center()
	for _, b := range s.bodies {
		b.vel = r2.Add(b.vel, r2.Scale(f.strength*alpha, r2.Sub(c, b.pos)))
	}
}

// =============================================================================
// Collision
// =============================================================================

// collideForce separates overlapping nodes. The required gap between two
// nodes comes from pad, which lets clustered layouts keep distinct groups
// further apart than members of the same group.
type collideForce struct {
	strength float64
	pad      func(a, b *body) float64
}

func (f collideForce) apply(s *Simulation, _ float64) {
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		bi := s.bodies[i]
		for j := i + 1; j < n; j++ {
			bj := s.bodies[j]
			r := bi.radius + bj.radius + f.pad(bi, bj)
			d := r2.Sub(r2.Add(bi.pos, bi.vel), r2.Add(bj.pos, bj.vel))
			if d.X == 0 {
				d.X = jiggle(i + j)
			}
			if d.Y == 0 {
				d.Y = jiggle(j)
			}
			l := r2.Norm(d)
			if l >= r {
				continue
			}
			k := (r - l) / l * f.strength
			ri2, rj2 := bi.radius*bi.radius, bj.radius*bj.radius
			wi := rj2 / (ri2 + rj2)
			bi.vel = r2.Add(bi.vel, r2.Scale(k*wi, d))
			bj.vel = r2.Sub(bj.vel, r2.Scale(k*(1-wi), d))
		}
	}
}

// =============================================================================
// Cluster force
// =============================================================================

// clusterForce pulls every node toward the largest node of its group until
// their circles touch. The anchor is pulled back by the same amount, so
// clusters move as a whole.
type clusterForce struct {
	strength float64
	anchors  map[int]int // group -> body index
}

func newClusterForce(s *Simulation) *clusterForce {
	f := &clusterForce{strength: s.cfg.ClusterStrength, anchors: make(map[int]int)}
	for i, b := range s.bodies {
		a, ok := f.anchors[b.group]
		if !ok || b.radius > s.bodies[a].radius {
			f.anchors[b.group] = i
		}
	}
	return f
}

func (f *clusterForce) apply(s *Simulation, alpha float64) {
	for i, b := range s.bodies {
		ai := f.anchors[b.group]
		if ai == i {
			continue
		}
		a := s.bodies[ai]
		d := r2.Sub(b.pos, a.pos)
		l := r2.Norm(d)
		r := b.radius + a.radius
		if l == 0 || l == r {
			continue
		}
		k := (l - r) / l * alpha * f.strength
		d = r2.Scale(k, d)
		b.vel = r2.Sub(b.vel, d)
		a.vel = r2.Add(a.vel, d)
	}
}
