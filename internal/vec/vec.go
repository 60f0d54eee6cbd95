// Package vec holds the small set of 2D helpers the simulator needs on top
// of mgl64.Vec2.
package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Zero  = mgl64.Vec2{0, 0}
	UnitX = mgl64.Vec2{1, 0}
	UnitY = mgl64.Vec2{0, 1}
)

// Rotate turns v counter-clockwise by angle radians.
func Rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	if angle == 0 {
		return v
	}
	return mgl64.Rotate2D(angle).Mul2x1(v)
}

// Cross is the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// CrossSV returns s x v for a scalar angular quantity s.
func CrossSV(s float64, v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-s * v[1], s * v[0]}
}

// Perp rotates v by +90 degrees.
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}

// ToGlobal maps a point in a frame at (position, angle) to world space.
func ToGlobal(local, position mgl64.Vec2, angle float64) mgl64.Vec2 {
	return Rotate(local, angle).Add(position)
}

// ToLocal is the inverse of ToGlobal.
func ToLocal(world, position mgl64.Vec2, angle float64) mgl64.Vec2 {
	return Rotate(world.Sub(position), -angle)
}

// Normalize returns v scaled to unit length, or fallback when v is degenerate.
func Normalize(v, fallback mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return fallback
	}
	return v.Mul(1 / l)
}

func IsFinite(v mgl64.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsInf(v[0], 0) && !math.IsNaN(v[1]) && !math.IsInf(v[1], 0)
}

// ClosestPointOnSegment projects p onto the segment [a, b].
func ClosestPointOnSegment(p, a, b mgl64.Vec2) mgl64.Vec2 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}
