package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/topoview/pkg/graph"
)

// Initial placement follows d3-force: nodes are laid out on a phyllotaxis
// spiral by index, which is deterministic and avoids coincident starts.
const (
	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// State is the lifecycle state of a Simulation.
type State int

const (
	// Idle: not started, or stopped. Ticks are ignored.
	Idle State = iota
	// Ticking: positions are still changing.
	Ticking
	// Converged: cooled down. A reheat returns to Ticking.
	Converged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ticking:
		return "ticking"
	case Converged:
		return "converged"
	default:
		return "unknown"
	}
}

type body struct {
	id     int
	group  int
	radius float64
	pos    r2.Vec
	vel    r2.Vec
	fixed  *r2.Vec
}

// Simulation positions the nodes of one graph inside a width×height box.
//
// A Simulation is not safe for concurrent use. Callers drive it one
// [Simulation.Tick] at a time, typically once per animation frame.
type Simulation struct {
	g        *graph.Graph
	settings graph.Settings
	cfg      Config
	seed     map[int]r2.Vec

	width, height float64

	bodies []*body
	index  map[int]int // node id -> body index
	forces []force

	state State
	alpha float64
	ticks int
	moved float64
}

// New creates a simulation for g within the given bounds. Nodes start on a
// spiral around the centre unless seeded with [WithPositions]. The
// simulation is Idle until [Simulation.Start] is called.
func New(g *graph.Graph, settings graph.Settings, width, height float64, opts ...Option) *Simulation {
	s := &Simulation{
		g:        g,
		settings: settings,
		cfg:      DefaultConfig(),
		width:    width,
		height:   height,
		index:    make(map[int]int, g.NodeCount()),
		alpha:    1,
	}
	for _, opt := range opts {
		opt(s)
	}

	c := s.center()
	for i, n := range g.Nodes() {
		b := &body{id: n.ID, group: n.Group, radius: n.Radius}
		if p, ok := s.seed[n.ID]; ok {
			b.pos = p
		} else {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			b.pos = r2.Vec{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
		}
		s.bodies = append(s.bodies, b)
		s.index[n.ID] = i
	}
	s.seed = nil

	s.forces = []force{
		newLinkForce(s),
		chargeForce{strength: s.cfg.Charge},
		gravityForce{strength: s.cfg.Gravity},
	}
	if settings.Clustered {
		clusterPad, pad := settings.Paddings()
		s.forces = append(s.forces,
			newClusterForce(s),
			collideForce{strength: s.cfg.CollideStrength, pad: func(a, b *body) float64 {
				if a.group == b.group {
					return pad
				}
				return clusterPad
			}},
		)
	} else {
		pad := s.cfg.CollidePadding
		s.forces = append(s.forces, collideForce{
			strength: s.cfg.CollideStrength,
			pad:      func(*body, *body) float64 { return pad },
		})
	}
	return s
}

// =============================================================================
// State machine
// =============================================================================

// Start moves an Idle simulation to Ticking at full heat. It has no effect
// in any other state.
func (s *Simulation) Start() {
	if s.state != Idle {
		return
	}
	s.alpha = 1
	s.state = Ticking
}

// Reheat resumes a Converged simulation and raises alpha to at least the
// restart value. Resizing, dataset changes and drags reheat. An Idle
// simulation stays Idle.
func (s *Simulation) Reheat() {
	if s.state == Idle {
		return
	}
	if s.alpha < s.cfg.AlphaRestart {
		s.alpha = s.cfg.AlphaRestart
	}
	s.state = Ticking
}

// Stop halts the simulation. Later ticks are ignored until Start.
func (s *Simulation) Stop() { s.state = Idle }

// State returns the current lifecycle state.
func (s *Simulation) State() State { return s.state }

// Alpha returns the current heat.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns the number of steps taken since creation.
func (s *Simulation) Ticks() int { return s.ticks }

// Moved returns the largest node displacement of the last tick.
func (s *Simulation) Moved() float64 { return s.moved }

// Tick advances the simulation by one step and reports whether a step was
// taken. Only a Ticking simulation steps; it becomes Converged once alpha
// drops below AlphaMin or no node moved more than ConvergenceDelta.
func (s *Simulation) Tick() bool {
	if s.state != Ticking {
		return false
	}
	s.alpha += (0 - s.alpha) * s.cfg.AlphaDecay

	for _, f := range s.forces {
		f.apply(s, s.alpha)
	}

	moved := 0.0
	for _, b := range s.bodies {
		prev := b.pos
		if b.fixed != nil {
			b.pos = *b.fixed
			b.vel = r2.Vec{}
		} else {
			b.vel = r2.Scale(1-s.cfg.VelocityDecay, b.vel)
			b.pos = s.contain(r2.Add(b.pos, b.vel), b.radius)
		}
		if m := r2.Norm(r2.Sub(b.pos, prev)); m > moved {
			moved = m
		}
	}
	s.moved = moved
	s.ticks++

	if s.alpha < s.cfg.AlphaMin || moved < s.cfg.ConvergenceDelta {
		s.state = Converged
	}
	return true
}

// Run starts the simulation if needed and ticks until it converges or
// maxTicks steps were taken. It returns the number of steps taken.
func (s *Simulation) Run(maxTicks int) int {
	s.Start()
	if s.state == Converged {
		s.Reheat()
	}
	n := 0
	for n < maxTicks && s.Tick() {
		n++
	}
	return n
}

// =============================================================================
// Bounds
// =============================================================================

// Bounds returns the current width and height.
func (s *Simulation) Bounds() (width, height float64) { return s.width, s.height }

// SetBounds changes the containment box and reheats. Nodes outside the new
// box are pulled back in on the next tick.
func (s *Simulation) SetBounds(width, height float64) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.Reheat()
}

func (s *Simulation) center() r2.Vec {
	return r2.Vec{X: s.width / 2, Y: s.height / 2}
}

// contain clamps p so that a circle of radius r stays inside the bounds.
// When the box is smaller than the circle the node is centred.
func (s *Simulation) contain(p r2.Vec, r float64) r2.Vec {
	return r2.Vec{X: clamp(p.X, r, s.width-r), Y: clamp(p.Y, r, s.height-r)}
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// =============================================================================
// Pinning
// =============================================================================

// Pin fixes node id at (x, y). Forces no longer move it until Unpin.
// Returns false if the node does not exist.
func (s *Simulation) Pin(id int, x, y float64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	b := s.bodies[i]
	p := s.contain(r2.Vec{X: x, Y: y}, b.radius)
	b.fixed = &p
	b.pos = p
	b.vel = r2.Vec{}
	s.Reheat()
	return true
}

// Drag moves a node to (x, y), pinning it if it was not pinned already.
func (s *Simulation) Drag(id int, x, y float64) bool {
	return s.Pin(id, x, y)
}

// Unpin releases node id back into the free simulation.
func (s *Simulation) Unpin(id int) bool {
	i, ok := s.index[id]
	if !ok || s.bodies[i].fixed == nil {
		return false
	}
	s.bodies[i].fixed = nil
	s.Reheat()
	return true
}

// Pinned reports whether node id is pinned.
func (s *Simulation) Pinned(id int) bool {
	i, ok := s.index[id]
	return ok && s.bodies[i].fixed != nil
}

// =============================================================================
// Positions
// =============================================================================

// Position returns the current position of node id.
func (s *Simulation) Position(id int) (r2.Vec, bool) {
	i, ok := s.index[id]
	if !ok {
		return r2.Vec{}, false
	}
	return s.bodies[i].pos, true
}

// Positions returns a copy of all node positions keyed by id.
func (s *Simulation) Positions() map[int]r2.Vec {
	out := make(map[int]r2.Vec, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = b.pos
	}
	return out
}
