package body

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/vec"
)

const (
	DefaultStiffness = 100.0
	DefaultDamping   = 1.0
)

// Spring pulls two bodies towards RestLength with a damped Hooke force.
// Anchors are in each body's local frame.
type Spring struct {
	BodyA, BodyB *Body

	Stiffness  float64
	Damping    float64
	RestLength float64

	LocalAnchorA mgl64.Vec2
	LocalAnchorB mgl64.Vec2
}

// NewSpring connects the body origins with the current distance as rest length.
func NewSpring(a, b *Body, stiffness, damping float64) *Spring {
	return &Spring{
		BodyA:      a,
		BodyB:      b,
		Stiffness:  stiffness,
		Damping:    damping,
		RestLength: b.Position.Sub(a.Position).Len(),
	}
}

// ApplyForce adds equal and opposite spring forces to both bodies.
func (s *Spring) ApplyForce() {
	a, b := s.BodyA, s.BodyB

	ra := vec.Rotate(s.LocalAnchorA, a.Angle)
	rb := vec.Rotate(s.LocalAnchorB, b.Angle)
	d := b.Position.Add(rb).Sub(a.Position.Add(ra))

	length := d.Len()
	if length < 1e-12 {
		return
	}
	u := d.Mul(1 / length)

	relVel := b.VelocityAt(rb).Sub(a.VelocityAt(ra))
	f := -s.Stiffness*(length-s.RestLength) - s.Damping*u.Dot(relVel)

	fb := u.Mul(f)
	b.ApplyForce(fb, rb)
	a.ApplyForce(fb.Mul(-1), ra)
}

// Extension is the current length minus the rest length.
func (s *Spring) Extension() float64 {
	pa := s.BodyA.ToWorldFrame(s.LocalAnchorA)
	pb := s.BodyB.ToWorldFrame(s.LocalAnchorB)
	return pb.Sub(pa).Len() - s.RestLength
}

// PotentialEnergy is the elastic energy currently stored in the spring.
func (s *Spring) PotentialEnergy() float64 {
	x := s.Extension()
	return 0.5 * s.Stiffness * x * x
}
