package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/shape"
)

// Broadphase proposes candidate colliding pairs. The result is read two
// bodies at a time; its order becomes the order of the generated equations.
type Broadphase interface {
	CollisionPairs(w *World) []*body.Body
}

// Solver finds the multipliers for a batch of equations and applies the
// resulting impulses to the bodies.
type Solver interface {
	AddEquation(eq equation.Equation)
	// Solve must accept an empty batch.
	Solve(dt float64, w *World) error
	RemoveAllEquations()
}

// Nearphase turns shape pairs into contact and friction equations. Every
// routine takes, for each side, the body, the shape, and the shape's world
// position and angle. Equations accumulate until the next Reset.
type Nearphase interface {
	Reset()
	SetEnableFriction(enabled bool)
	SetSlipForce(slipForce float64)
	ContactEquations() []*equation.Contact
	FrictionEquations() []*equation.Friction

	CircleCircle(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Circle, xj mgl64.Vec2, aj float64)
	CircleParticle(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Particle, xj mgl64.Vec2, aj float64)
	CirclePlane(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64)
	CircleConvex(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64)
	CircleLine(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Line, xj mgl64.Vec2, aj float64)
	ParticlePlane(bi *body.Body, si *shape.Particle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64)
	ParticleConvex(bi *body.Body, si *shape.Particle, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64)
	ConvexPlane(bi *body.Body, si shape.Polygon, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64)
	ConvexConvex(bi *body.Body, si shape.Polygon, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64)
	PlaneLine(bi *body.Body, si *shape.Plane, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Line, xj mgl64.Vec2, aj float64)
}
