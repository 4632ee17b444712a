package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the tolerance used for float comparisons and degenerate lengths.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in cartesian space.
// Fields are public because they are plain data, so literals like Vector2D{1, 2} work.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the null vector.
var Zero = Vector2D{}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewVectorPolar creates a new Vector2D from polar coordinates.
// theta is in radians.
func NewVectorPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// Snap the tiny residues of cos/sin near multiples of Pi/2
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}

	return Vector2D{X: x, Y: y}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers everywhere: vectors are small and never mutated in place.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar.
// A zero scalar yields an Inf vector together with an error.
func (v Vector2D) Div(scalar float64) (Vector2D, error) {
	if scalar == 0 {
		return Vector2D{math.Inf(1), math.Inf(1)}, errors.New("vector cannot be divided by zero")
	}
	return Vector2D{v.X / scalar, v.Y / scalar}, nil
}

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross calculates the 2D scalar cross product (z-component of 3D cross product).
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perp returns the vector rotated by +90 degrees: (-y, x).
func (v Vector2D) Perp() Vector2D {
	return Vector2D{-v.Y, v.X}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector. Use it for comparisons.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon {
		return Vector2D{0, 0}
	}
	return v.Mul(1 / l)
}

// SetLen returns the vector scaled to the given length.
// A degenerate vector stays zero since it has no direction to scale along.
func (v Vector2D) SetLen(length float64) Vector2D {
	return v.Normalize().Mul(length)
}

// Limit clamps the magnitude of the vector to max, keeping its direction.
func (v Vector2D) Limit(max float64) Vector2D {
	if v.LenSqr() > max*max {
		return v.SetLen(max)
	}
	return v
}

// Heading returns the unit direction of v, or fallback when v is too short to have one.
func (v Vector2D) Heading(fallback Vector2D) Vector2D {
	if v.LenSqr() < Epsilon {
		return fallback
	}
	return v.Normalize()
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Angle returns the angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate rotates the vector by angle (in radians) around the origin (0,0).
func (v Vector2D) Rotate(angle float64) Vector2D {
	cosTheta := math.Cos(angle)
	sinTheta := math.Sin(angle)
	return Vector2D{
		X: v.X*cosTheta - v.Y*sinTheta,
		Y: v.X*sinTheta + v.Y*cosTheta,
	}
}

// Wrap maps the point onto the torus [0,width) x [0,height).
func (v Vector2D) Wrap(width, height float64) Vector2D {
	return Vector2D{X: wrapAxis(v.X, width), Y: wrapAxis(v.Y, height)}
}

func wrapAxis(x, size float64) float64 {
	if size <= 0 {
		return 0
	}
	x = math.Mod(x, size)
	if x < 0 {
		x += size
	}
	// -tiny + size rounds up to size
	if x >= size {
		x = 0
	}
	return x
}

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
