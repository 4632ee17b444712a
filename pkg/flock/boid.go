package flock

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
)

const (
	// stallSpeedSq is the squared speed under which a boid is considered stuck.
	stallSpeedSq = 0.001
	// nudgeSpeed is the speed given to a stuck boid along a random heading.
	nudgeSpeed = 0.1
	// coincident is the distance under which two entities share a position.
	coincident = 1e-9
)

// Boid is one member of a swarm. Boids is an artificial life model by Craig Reynolds (1986):
// each bird-oid steers from purely local rules. https://en.wikipedia.org/wiki/Boids
type Boid struct {
	ID    uuid.UUID
	Group int // index of the owning swarm, never changes
	Pos   geometry.Vector2D
	Vel   geometry.Vector2D
	Acc   geometry.Vector2D // per-tick force accumulator
}

// entity is the read-only view of a boid or shark captured at the start of a tick.
type entity struct {
	pos   geometry.Vector2D
	vel   geometry.Vector2D
	group int // sharkGroup for predators
}

const sharkGroup = -1

func newBoid(id uuid.UUID, group int, bounds Bounds, p SwarmParams, rng *rand.Rand) *Boid {
	angle := rng.Float64() * 2 * math.Pi
	speed := 1 + rng.Float64()*(math.Max(1.1, p.MaxSpeed/2)-1)
	return &Boid{
		ID:    id,
		Group: group,
		Pos:   geometry.Vector2D{X: rng.Float64() * bounds.Width, Y: rng.Float64() * bounds.Height},
		Vel:   geometry.NewVectorPolar(math.Min(speed, p.MaxSpeed), angle),
	}
}

// applyForce adds f to the accumulator unless it is not finite.
func (b *Boid) applyForce(f geometry.Vector2D) {
	if f.IsFinite() {
		b.Acc = b.Acc.Add(f)
	}
}

// steer turns a desired direction into a force: set to max speed, subtract the
// current velocity, clamp to max force.
func steer(desired, vel geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	if desired.LenSqr() > 0 {
		desired = desired.SetLen(maxSpeed)
	}
	return desired.Sub(vel).Limit(maxForce)
}

// seek steers toward target. A target on top of us yields no force.
func seek(pos, vel, target geometry.Vector2D, maxSpeed, maxForce float64) geometry.Vector2D {
	desired := target.Sub(pos)
	if desired.Len() <= 0 {
		return geometry.Zero
	}
	return steer(desired, vel, maxSpeed, maxForce)
}

// repulsion points from other to self, weighted by 1/dist (the offset divided by dist²,
// floored at 1). Coincident entities push along a random heading.
func repulsion(self, other geometry.Vector2D, distSq float64, rng *rand.Rand) geometry.Vector2D {
	if distSq < coincident*coincident {
		return geometry.NewVectorPolar(1, rng.Float64()*2*math.Pi)
	}
	return self.Sub(other).Mul(1 / math.Max(distSq, 1))
}

// flock accumulates the four weighted steering rules against the captured view.
// candidates must be sorted ascending and contain every entity within the largest range.
func (b *Boid) flock(self int, view []entity, candidates []int, p SwarmParams, rng *rand.Rand) {
	var (
		sepSum, aliSum, cohSum, avoSum geometry.Vector2D
		sepN, aliN, cohN, avoN         int

		sepSq = p.SeparationDistance * p.SeparationDistance
		visSq = p.VisualRange * p.VisualRange
		avoSq = p.AvoidanceRange * p.AvoidanceRange
	)

	for _, i := range candidates {
		if i == self {
			continue
		}
		other := view[i]
		distSq := b.Pos.DistanceSquaredTo(other.pos)

		if other.group != b.Group {
			if distSq < avoSq {
				avoSum = avoSum.Add(repulsion(b.Pos, other.pos, distSq, rng))
				avoN++
			}
			continue
		}

		if distSq < sepSq {
			sepSum = sepSum.Add(repulsion(b.Pos, other.pos, distSq, rng))
			sepN++
		}
		if distSq < visSq {
			if other.vel.LenSqr() > 0 {
				aliSum = aliSum.Add(other.vel)
				aliN++
			}
			cohSum = cohSum.Add(other.pos)
			cohN++
		}
	}

	if sepN > 0 {
		sep := steer(sepSum.Mul(1/float64(sepN)), b.Vel, p.MaxSpeed, p.MaxForce)
		b.applyForce(sep.Mul(p.SeparationFactor))
	}
	if aliN > 0 {
		ali := steer(aliSum.Mul(1/float64(aliN)), b.Vel, p.MaxSpeed, p.MaxForce)
		b.applyForce(ali.Mul(p.AlignmentFactor))
	}
	if cohN > 0 {
		coh := seek(b.Pos, b.Vel, cohSum.Mul(1/float64(cohN)), p.MaxSpeed, p.MaxForce)
		b.applyForce(coh.Mul(p.CohesionFactor))
	}
	if avoN > 0 {
		avo := steer(avoSum.Mul(1/float64(avoN)), b.Vel, p.MaxSpeed, p.MaxForce)
		b.applyForce(avo.Mul(p.AvoidanceFactor))
	}
}

// integrate applies the accumulated force, clamps speed and moves the boid.
// It reports false when the accumulator was not finite and had to be discarded.
func (b *Boid) integrate(p SwarmParams, rng *rand.Rand) bool {
	ok := b.Acc.IsFinite()
	if !ok {
		b.Acc = geometry.Zero
	}
	b.Vel = b.Vel.Add(b.Acc)
	if b.Vel.LenSqr() < stallSpeedSq {
		b.Vel = geometry.NewVectorPolar(math.Min(nudgeSpeed, p.MaxSpeed), rng.Float64()*2*math.Pi)
	} else {
		b.Vel = b.Vel.Limit(p.MaxSpeed)
	}
	b.Pos = b.Pos.Add(b.Vel)
	b.Acc = geometry.Zero
	return ok
}

// wrap maps the boid back onto the torus.
func (b *Boid) wrap(bounds Bounds) {
	b.Pos = b.Pos.Wrap(bounds.Width, bounds.Height)
}
