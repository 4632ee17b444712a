package flock

import (
	"image/color"
	"math"
)

// Parameter floors used when a live value arrives out of range.
const (
	minRange    = 1.0
	minSpeed    = 0.1
	minForce    = 0.001
	maxSharks   = 64
	maxPerSwarm = 5000
)

// Color is an RGBA tint identifying a group on screen.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGBA converts to the image/color representation used by renderers.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// SwarmParams controls one group of boids. The whole set is read once per tick.
type SwarmParams struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
	Count int    `json:"count"` // target population

	SeparationFactor float64 `json:"separationFactor"`
	AlignmentFactor  float64 `json:"alignmentFactor"`
	CohesionFactor   float64 `json:"cohesionFactor"`
	AvoidanceFactor  float64 `json:"avoidanceFactor"`

	VisualRange        float64 `json:"visualRange"`        // alignment + cohesion radius
	SeparationDistance float64 `json:"separationDistance"` // personal space radius
	AvoidanceRange     float64 `json:"avoidanceRange"`     // other species and predators

	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`
}

// PredatorParams controls every shark. When Enabled is false the predators are frozen
// and invisible to the rest of the simulation.
type PredatorParams struct {
	Enabled          bool    `json:"enabled"`
	Count            int     `json:"count"`
	MaxSpeed         float64 `json:"maxSpeed"`
	MaxForce         float64 `json:"maxForce"`
	PerceptionRadius float64 `json:"perceptionRadius"`
	StrikeRadius     float64 `json:"strikeRadius"`
}

// Snapshot is the immutable-per-tick parameter set handed to World.Tick.
// The control layer owns mutation; the simulation only ever reads a copy.
type Snapshot struct {
	Swarms    []SwarmParams  `json:"swarms"`
	Predators PredatorParams `json:"predators"`
}

// Clone returns a deep copy so the caller may keep mutating its own value.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Swarms = append([]SwarmParams(nil), s.Swarms...)
	return out
}

// Sanitize clamps every out of range value to the nearest valid one.
// A bad slider value must never halt the simulation, so nothing is rejected here.
func (s Snapshot) Sanitize() Snapshot {
	out := s.Clone()
	for i := range out.Swarms {
		out.Swarms[i] = out.Swarms[i].sanitize()
	}
	out.Predators = out.Predators.sanitize()
	return out
}

func (p SwarmParams) sanitize() SwarmParams {
	p.Count = clampInt(p.Count, 0, maxPerSwarm)
	p.SeparationFactor = nonNegative(p.SeparationFactor)
	p.AlignmentFactor = nonNegative(p.AlignmentFactor)
	p.CohesionFactor = nonNegative(p.CohesionFactor)
	p.AvoidanceFactor = nonNegative(p.AvoidanceFactor)
	p.VisualRange = atLeast(p.VisualRange, minRange)
	p.SeparationDistance = atLeast(p.SeparationDistance, minRange)
	p.AvoidanceRange = atLeast(p.AvoidanceRange, minRange)
	p.MaxSpeed = atLeast(p.MaxSpeed, minSpeed)
	p.MaxForce = atLeast(p.MaxForce, minForce)
	return p
}

func (p PredatorParams) sanitize() PredatorParams {
	p.Count = clampInt(p.Count, 0, maxSharks)
	p.MaxSpeed = atLeast(p.MaxSpeed, minSpeed)
	p.MaxForce = atLeast(p.MaxForce, minForce)
	p.PerceptionRadius = atLeast(p.PerceptionRadius, minRange)
	p.StrikeRadius = nonNegative(p.StrikeRadius)
	return p
}

// maxRange is the largest radius any boid looks at this tick, used as grid cell size.
func (s Snapshot) maxRange() float64 {
	r := 0.0
	for _, p := range s.Swarms {
		r = math.Max(r, p.VisualRange)
		r = math.Max(r, p.SeparationDistance)
		r = math.Max(r, p.AvoidanceRange)
	}
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nonNegative also maps NaN to zero.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat32
	}
	return v
}

func atLeast(v, floor float64) float64 {
	v = nonNegative(v)
	if v < floor {
		return floor
	}
	return v
}
