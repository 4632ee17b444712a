package flock

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
)

const (
	// sharkEdgeBuffer is the border width inside which a shark turns back.
	sharkEdgeBuffer = 24.0
	// wanderJitter bounds the per-tick random walk of the wander angle (radians).
	wanderJitter = 0.3
	// wanderStrength is the wander force as a fraction of max force.
	wanderStrength = 0.5
)

// Shark is a predator. It hunts the nearest visible boid or wanders, and eats
// every boid inside its strike radius.
type Shark struct {
	ID  uuid.UUID
	Pos geometry.Vector2D
	Vel geometry.Vector2D
	Acc geometry.Vector2D

	wanderAngle float64
}

func newShark(id uuid.UUID, bounds Bounds, rng *rand.Rand) *Shark {
	return &Shark{
		ID:          id,
		Pos:         geometry.Vector2D{X: rng.Float64() * bounds.Width, Y: rng.Float64() * bounds.Height},
		Vel:         geometry.NewVectorPolar(2, rng.Float64()*2*math.Pi),
		wanderAngle: rng.Float64() * 2 * math.Pi,
	}
}

func (s *Shark) applyForce(f geometry.Vector2D) {
	if f.IsFinite() {
		s.Acc = s.Acc.Add(f)
	}
}

// nearest returns the index of the closest boid strictly inside radius, or -1.
// Ties keep the first boid found.
func (s *Shark) nearest(boids []*Boid, radius float64) int {
	best := -1
	bestSq := radius * radius
	for i, b := range boids {
		if d := s.Pos.DistanceSquaredTo(b.Pos); d < bestSq {
			bestSq = d
			best = i
		}
	}
	return best
}

// hunt chases the nearest boid within the perception radius, or wanders.
// The decision is made fresh every tick; there is no persistent state besides the
// wander angle. It reports whether a target was found.
func (s *Shark) hunt(boids []*Boid, p PredatorParams, rng *rand.Rand) bool {
	if i := s.nearest(boids, p.PerceptionRadius); i >= 0 {
		s.applyForce(seek(s.Pos, s.Vel, boids[i].Pos, p.MaxSpeed, p.MaxForce))
		return true
	}
	s.wander(p, rng)
	return false
}

// wander turns the heading by a small random step so motion stays smooth.
func (s *Shark) wander(p PredatorParams, rng *rand.Rand) {
	s.wanderAngle += (rng.Float64()*2 - 1) * wanderJitter
	s.applyForce(geometry.NewVectorPolar(p.MaxForce*wanderStrength, s.wanderAngle))
}

// steerFromEdges pushes the shark back inward near the borders so it does not
// vanish off screen mid-chase. The vertical check wins when both axes trigger.
func (s *Shark) steerFromEdges(bounds Bounds, p PredatorParams) {
	var force geometry.Vector2D
	switch {
	case s.Pos.X < sharkEdgeBuffer:
		force = geometry.Vector2D{X: p.MaxSpeed, Y: s.Vel.Y}.Sub(s.Vel)
	case s.Pos.X > bounds.Width-sharkEdgeBuffer:
		force = geometry.Vector2D{X: -p.MaxSpeed, Y: s.Vel.Y}.Sub(s.Vel)
	}
	switch {
	case s.Pos.Y < sharkEdgeBuffer:
		force = geometry.Vector2D{X: s.Vel.X, Y: p.MaxSpeed}.Sub(s.Vel)
	case s.Pos.Y > bounds.Height-sharkEdgeBuffer:
		force = geometry.Vector2D{X: s.Vel.X, Y: -p.MaxSpeed}.Sub(s.Vel)
	}
	if force.LenSqr() > 0 {
		s.applyForce(force.Limit(2 * p.MaxForce))
	}
}

func (s *Shark) integrate(bounds Bounds, p PredatorParams) bool {
	ok := s.Acc.IsFinite()
	if !ok {
		s.Acc = geometry.Zero
	}
	s.Vel = s.Vel.Add(s.Acc).Limit(p.MaxSpeed)
	s.Pos = s.Pos.Add(s.Vel).Wrap(bounds.Width, bounds.Height)
	s.Acc = geometry.Zero
	return ok
}

// strike marks every boid within the strike radius that is not already eaten.
// It returns how many boids this shark claimed.
func (s *Shark) strike(boids []*Boid, strikeRadius float64, eaten map[*Boid]struct{}) int {
	n := 0
	rSq := strikeRadius * strikeRadius
	for _, b := range boids {
		if _, done := eaten[b]; done {
			continue
		}
		if s.Pos.DistanceSquaredTo(b.Pos) < rSq {
			eaten[b] = struct{}{}
			n++
		}
	}
	return n
}
