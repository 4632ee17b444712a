// Package shape computes the outlines used to draw fish and sharks.
// Everything here is pure geometry in world coordinates; the renderer only
// turns the points into triangles.
package shape

import (
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
)

const (
	// FishSize is the body scale of a boid.
	FishSize = 6.0
	// SharkSize is the body scale of a predator.
	SharkSize = 12.0
	// RestRadiusFactor scales FishSize into the dot drawn for a boid at rest.
	RestRadiusFactor = 0.8
	// restSpeedSq is the squared speed below which a boid is drawn as a dot.
	restSpeedSq = 0.01
)

// Fish holds the body proportions of one swarm, each a multiple of FishSize.
type Fish struct {
	TipFactor        float64 `json:"tipFactor"`
	MidOffsetFactor  float64 `json:"midOffsetFactor"`
	WidthFactor      float64 `json:"widthFactor"`
	TailOffsetFactor float64 `json:"tailOffsetFactor"`
	TailWidthFactor  float64 `json:"tailWidthFactor"`
}

// DefaultFish is the shared body used when a swarm does not configure one.
var DefaultFish = Fish{
	TipFactor:        1.6,
	MidOffsetFactor:  0.1,
	WidthFactor:      0.6,
	TailOffsetFactor: 0.9,
	TailWidthFactor:  0.2,
}

// IsZero reports whether no proportion was set.
func (f Fish) IsZero() bool { return f == Fish{} }

// Outline returns the five body points: tip, mid left, tail left, tail right, mid right.
// heading must be a unit vector.
func (f Fish) Outline(pos, heading geometry.Vector2D, size float64) [5]geometry.Vector2D {
	perp := heading.Perp()
	tip := pos.Add(heading.Mul(size * f.TipFactor))
	mid := pos.Add(heading.Mul(size * f.MidOffsetFactor))
	tail := pos.Sub(heading.Mul(size * f.TailOffsetFactor))
	midW := perp.Mul(size * f.WidthFactor)
	tailW := perp.Mul(size * f.TailWidthFactor)
	return [5]geometry.Vector2D{
		tip,
		mid.Add(midW),
		tail.Add(tailW),
		tail.Sub(tailW),
		mid.Sub(midW),
	}
}

// AtRest reports whether a boid moving at speed should be drawn as a dot.
func AtRest(speed float64) bool {
	return speed*speed < restSpeedSq
}

// Shark returns the predator arrow: tip, base left, base right.
func Shark(pos, heading geometry.Vector2D, size float64) [3]geometry.Vector2D {
	perp := heading.Perp().Mul(size * 0.5)
	base := pos.Sub(heading.Mul(size * 0.8))
	return [3]geometry.Vector2D{
		pos.Add(heading.Mul(size * 2.5)),
		base.Add(perp),
		base.Sub(perp),
	}
}

// FanIndices triangulates a convex polygon of n points around its first vertex.
func FanIndices(n int) []uint16 {
	if n < 3 {
		return nil
	}
	out := make([]uint16, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		out = append(out, 0, uint16(i), uint16(i+1))
	}
	return out
}
