// Package equation defines the constraint rows consumed by the solver.
//
// Every row couples two bodies through a Jacobian G over the generalised
// velocities (vA, wA, vB, wB) and a position error Gq. Rows are rebuilt every
// step and discarded once the solver is cleared.
package equation

import (
	"math"

	"github.com/san-kum/rigidsim/internal/body"
)

const (
	DefaultStiffness  = 1e7
	DefaultRelaxation = 4.0
)

type Kind int

const (
	KindContact Kind = iota
	KindFriction
	KindDistance
	KindPivot
)

func (k Kind) String() string {
	switch k {
	case KindContact:
		return "contact"
	case KindFriction:
		return "friction"
	case KindDistance:
		return "distance"
	case KindPivot:
		return "pivot"
	default:
		return "unknown"
	}
}

type Equation interface {
	Kind() Kind
	// Row exposes the state the solver works on.
	Row() *Core
	// Update refreshes G and Gq from the current body geometry.
	Update()
}

// Core is the state shared by every row kind.
type Core struct {
	BodyA, BodyB *body.Body

	// G holds the Jacobian as [vAx, vAy, wA, vBx, vBy, wB].
	G  [6]float64
	Gq float64

	MinForce, MaxForce float64

	Stiffness  float64
	Relaxation float64

	// Multiplier is the constraint force found by the last solve.
	Multiplier float64
}

func newCore(a, b *body.Body, minForce, maxForce float64) Core {
	return Core{
		BodyA:      a,
		BodyB:      b,
		MinForce:   minForce,
		MaxForce:   maxForce,
		Stiffness:  DefaultStiffness,
		Relaxation: DefaultRelaxation,
	}
}

// SpookParams returns the SPOOK regularisation constants for time step h.
func (c *Core) SpookParams(h float64) (a, b, eps float64) {
	k, d := c.Stiffness, c.Relaxation
	a = 4 / (h * (1 + 4*d))
	b = 4 * d / (1 + 4*d)
	eps = 4 / (h * h * k * (1 + 4*d))
	return a, b, eps
}

// ComputeB is the right-hand side -a*Gq - b*GW - h*GiMf.
func (c *Core) ComputeB(a, b, h float64) float64 {
	return -c.Gq*a - c.computeGW()*b - c.computeGiMf()*h
}

// ComputeC is the diagonal G*iM*G' + eps.
func (c *Core) ComputeC(eps float64) float64 {
	return c.ComputeGiMGt() + eps
}

func (c *Core) computeGW() float64 {
	a, b := c.BodyA, c.BodyB
	return c.G[0]*a.Velocity[0] + c.G[1]*a.Velocity[1] + c.G[2]*a.AngularVelocity +
		c.G[3]*b.Velocity[0] + c.G[4]*b.Velocity[1] + c.G[5]*b.AngularVelocity
}

func (c *Core) computeGiMf() float64 {
	a, b := c.BodyA, c.BodyB
	return c.G[0]*a.Force[0]*a.InvMass + c.G[1]*a.Force[1]*a.InvMass + c.G[2]*a.AngularForce*a.InvInertia +
		c.G[3]*b.Force[0]*b.InvMass + c.G[4]*b.Force[1]*b.InvMass + c.G[5]*b.AngularForce*b.InvInertia
}

func (c *Core) ComputeGiMGt() float64 {
	a, b := c.BodyA, c.BodyB
	return a.InvMass*(c.G[0]*c.G[0]+c.G[1]*c.G[1]) + a.InvInertia*c.G[2]*c.G[2] +
		b.InvMass*(c.G[3]*c.G[3]+c.G[4]*c.G[4]) + b.InvInertia*c.G[5]*c.G[5]
}

// ComputeGWlambda is G applied to the impulse velocities accumulated so far.
func (c *Core) ComputeGWlambda() float64 {
	a, b := c.BodyA, c.BodyB
	return c.G[0]*a.VLambda[0] + c.G[1]*a.VLambda[1] + c.G[2]*a.WLambda +
		c.G[3]*b.VLambda[0] + c.G[4]*b.VLambda[1] + c.G[5]*b.WLambda
}

// AddToWlambda distributes an impulse increment to both bodies.
func (c *Core) AddToWlambda(deltalambda float64) {
	a, b := c.BodyA, c.BodyB
	a.VLambda[0] += a.InvMass * c.G[0] * deltalambda
	a.VLambda[1] += a.InvMass * c.G[1] * deltalambda
	a.WLambda += a.InvInertia * c.G[2] * deltalambda
	b.VLambda[0] += b.InvMass * c.G[3] * deltalambda
	b.VLambda[1] += b.InvMass * c.G[4] * deltalambda
	b.WLambda += b.InvInertia * c.G[5] * deltalambda
}

func unbounded() (float64, float64) {
	return -math.MaxFloat64, math.MaxFloat64
}
