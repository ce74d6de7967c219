package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Cooling and convergence defaults. The alpha schedule follows d3-force: a
// simulation started at alpha 1 reaches AlphaMin after roughly 300 ticks.
const (
	DefaultAlphaMin         = 0.001
	DefaultAlphaRestart     = 0.3
	DefaultVelocityDecay    = 0.4
	DefaultConvergenceDelta = 0.05
	DefaultCharge           = -120.0
	DefaultGravity          = 0.05
	DefaultCollideStrength  = 0.7
	DefaultClusterStrength  = 0.5
	DefaultCollidePadding   = 1.0
)

// DefaultAlphaDecay cools alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Config holds the physical parameters of a simulation.
type Config struct {
	// Charge is the pairwise many-body strength. Negative values repel.
	Charge float64

	// Gravity pulls every node toward the centre of the bounds.
	Gravity float64

	// VelocityDecay is the fraction of velocity lost per tick.
	VelocityDecay float64

	// AlphaMin is the cooling threshold below which the simulation converges.
	AlphaMin float64

	// AlphaDecay is the per-tick cooling rate.
	AlphaDecay float64

	// AlphaRestart is the alpha a reheated simulation resumes from.
	AlphaRestart float64

	// ConvergenceDelta stops the simulation early once no node moved
	// further than this in one tick.
	ConvergenceDelta float64

	// CollideStrength scales overlap resolution, in [0, 1].
	CollideStrength float64

	// CollidePadding separates nodes in unclustered layouts.
	CollidePadding float64

	// ClusterStrength scales the pull toward each cluster's anchor node.
	ClusterStrength float64
}

// DefaultConfig returns the parameters used when no options are given.
func DefaultConfig() Config {
	return Config{
		Charge:           DefaultCharge,
		Gravity:          DefaultGravity,
		VelocityDecay:    DefaultVelocityDecay,
		AlphaMin:         DefaultAlphaMin,
		AlphaDecay:       DefaultAlphaDecay,
		AlphaRestart:     DefaultAlphaRestart,
		ConvergenceDelta: DefaultConvergenceDelta,
		CollideStrength:  DefaultCollideStrength,
		CollidePadding:   DefaultCollidePadding,
		ClusterStrength:  DefaultClusterStrength,
	}
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithConfig replaces the physical parameters. Zero fields keep their
// defaults.
func WithConfig(c Config) Option {
	return func(s *Simulation) {
		d := &s.cfg
		setIf(&d.Charge, c.Charge)
		setIf(&d.Gravity, c.Gravity)
		setIf(&d.VelocityDecay, c.VelocityDecay)
		setIf(&d.AlphaMin, c.AlphaMin)
		setIf(&d.AlphaDecay, c.AlphaDecay)
		setIf(&d.AlphaRestart, c.AlphaRestart)
		setIf(&d.ConvergenceDelta, c.ConvergenceDelta)
		setIf(&d.CollideStrength, c.CollideStrength)
		setIf(&d.CollidePadding, c.CollidePadding)
		setIf(&d.ClusterStrength, c.ClusterStrength)
	}
}

// WithPositions seeds nodes with known positions, typically those of the
// previous dataset, so that a replaced dataset does not start from scratch.
// Ids not present in the graph are ignored.
func WithPositions(pos map[int]r2.Vec) Option {
	return func(s *Simulation) {
		s.seed = pos
	}
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
