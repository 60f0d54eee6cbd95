// Package body holds the rigid bodies and springs moved by the simulator.
package body

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/vec"
)

var idCounter atomic.Int64

// ShapeEntry places a shape on its body: Offset and Angle are relative to
// the body frame.
type ShapeEntry struct {
	Shape  shape.Shape
	Offset mgl64.Vec2
	Angle  float64
}

type Body struct {
	ID int

	Mass       float64
	InvMass    float64
	Inertia    float64
	InvInertia float64

	Position        mgl64.Vec2
	Angle           float64
	Velocity        mgl64.Vec2
	AngularVelocity float64

	Force        mgl64.Vec2
	AngularForce float64

	Shapes []ShapeEntry

	// VLambda and WLambda accumulate solver impulses during a solve.
	VLambda mgl64.Vec2
	WLambda float64
}

type Options struct {
	Mass            float64
	Position        mgl64.Vec2
	Angle           float64
	Velocity        mgl64.Vec2
	AngularVelocity float64
}

// New creates a body. A zero mass makes the body static.
func New(opts Options) *Body {
	b := &Body{
		ID:              int(idCounter.Add(1)),
		Mass:            opts.Mass,
		Position:        opts.Position,
		Angle:           opts.Angle,
		Velocity:        opts.Velocity,
		AngularVelocity: opts.AngularVelocity,
	}
	b.UpdateMassProperties()
	return b
}

// NewStatic is shorthand for a zero-mass body at position.
func NewStatic(position mgl64.Vec2) *Body {
	return New(Options{Position: position})
}

func (b *Body) IsStatic() bool { return b.Mass <= 0 }

// AddShape attaches s at the given offset and angle and refreshes the mass
// properties.
func (b *Body) AddShape(s shape.Shape, offset mgl64.Vec2, angle float64) {
	b.Shapes = append(b.Shapes, ShapeEntry{Shape: s, Offset: offset, Angle: angle})
	b.UpdateMassProperties()
}

// UpdateMassProperties derives InvMass, Inertia and InvInertia from Mass and
// the attached shapes. Mass is shared between shapes in proportion to area,
// or evenly when no shape has area.
func (b *Body) UpdateMassProperties() {
	if b.Mass <= 0 {
		b.Mass = 0
		b.InvMass = 0
		b.Inertia = 0
		b.InvInertia = 0
		return
	}
	b.InvMass = 1 / b.Mass

	var totalArea float64
	for _, e := range b.Shapes {
		totalArea += e.Shape.Area()
	}

	b.Inertia = 0
	for _, e := range b.Shapes {
		m := b.Mass / float64(len(b.Shapes))
		if totalArea > 0 {
			m = b.Mass * e.Shape.Area() / totalArea
		}
		b.Inertia += e.Shape.Inertia(m) + m*e.Offset.LenSqr()
	}

	if b.Inertia > 0 {
		b.InvInertia = 1 / b.Inertia
	} else {
		b.InvInertia = 0
	}
}

// ApplyForce adds force at a point given relative to the body position in
// world orientation, accumulating the matching torque.
func (b *Body) ApplyForce(force, relativePoint mgl64.Vec2) {
	b.Force = b.Force.Add(force)
	b.AngularForce += vec.Cross(relativePoint, force)
}

func (b *Body) ResetForces() {
	b.Force = vec.Zero
	b.AngularForce = 0
}

// VelocityAt is the world velocity of a point at relativePoint from the body
// position.
func (b *Body) VelocityAt(relativePoint mgl64.Vec2) mgl64.Vec2 {
	return b.Velocity.Add(vec.CrossSV(b.AngularVelocity, relativePoint))
}

func (b *Body) ToWorldFrame(local mgl64.Vec2) mgl64.Vec2 {
	return vec.ToGlobal(local, b.Position, b.Angle)
}

func (b *Body) ToLocalFrame(world mgl64.Vec2) mgl64.Vec2 {
	return vec.ToLocal(world, b.Position, b.Angle)
}

// ShapePose returns the world position and angle of the i-th shape.
func (b *Body) ShapePose(i int) (mgl64.Vec2, float64) {
	e := b.Shapes[i]
	return vec.Rotate(e.Offset, b.Angle).Add(b.Position), e.Angle + b.Angle
}

// BoundingRadius covers every shape on the body. A body with a plane is
// unbounded.
func (b *Body) BoundingRadius() float64 {
	var r float64
	for _, e := range b.Shapes {
		r = math.Max(r, e.Offset.Len()+e.Shape.BoundingRadius())
	}
	return r
}

func (b *Body) KineticEnergy() float64 {
	if b.Mass <= 0 {
		return 0
	}
	v2 := b.Velocity.LenSqr()
	w := b.AngularVelocity
	return 0.5*b.Mass*v2 + 0.5*b.Inertia*w*w
}
