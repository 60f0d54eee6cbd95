// Package constraint holds user-defined relations between two bodies. Each
// constraint rebuilds its equations from the current geometry on Update.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/vec"
)

type Kind int

const (
	KindDistance Kind = iota
	KindPointToPoint
)

func (k Kind) String() string {
	switch k {
	case KindDistance:
		return "distance"
	case KindPointToPoint:
		return "point_to_point"
	default:
		return "unknown"
	}
}

type Constraint interface {
	Kind() Kind
	ID() int
	SetID(id int)
	Bodies() (a, b *body.Body)
	// Update recomputes the equations; call it before handing them to a solver.
	Update()
	Equations() []equation.Equation
}

type base struct {
	id        int
	bodyA     *body.Body
	bodyB     *body.Body
	equations []equation.Equation
}

func (c *base) ID() int                          { return c.id }
func (c *base) SetID(id int)                     { c.id = id }
func (c *base) Bodies() (*body.Body, *body.Body) { return c.bodyA, c.bodyB }
func (c *base) Equations() []equation.Equation   { return c.equations }

func (c *base) Update() {
	for _, eq := range c.equations {
		eq.Update()
	}
}

// MaxForce returns the largest |multiplier| across the constraint's
// equations after a solve. Breakable joints compare it against a limit.
func MaxForce(c Constraint) float64 {
	var m float64
	for _, eq := range c.Equations() {
		m = math.Max(m, math.Abs(eq.Row().Multiplier))
	}
	return m
}

// Distance keeps the centres of two bodies at a fixed distance.
type Distance struct {
	base
	eq *equation.Distance
}

// NewDistance fixes the current centre distance. maxForce <= 0 means
// unbounded.
func NewDistance(a, b *body.Body, maxForce float64) *Distance {
	dist := b.Position.Sub(a.Position).Len()
	eq := equation.NewDistance(a, b, dist, maxForce)
	return &Distance{
		base: base{bodyA: a, bodyB: b, equations: []equation.Equation{eq}},
		eq:   eq,
	}
}

func (d *Distance) Kind() Kind { return KindDistance }

func (d *Distance) Distance() float64 { return d.eq.Distance }

func (d *Distance) SetDistance(dist float64) { d.eq.Distance = dist }

// PointToPoint pins a point on each body together, leaving rotation free.
type PointToPoint struct {
	base
	PivotA, PivotB mgl64.Vec2
}

// NewPointToPoint connects pivotA (local to a) with pivotB (local to b).
func NewPointToPoint(a *body.Body, pivotA mgl64.Vec2, b *body.Body, pivotB mgl64.Vec2, maxForce float64) *PointToPoint {
	eqs := []equation.Equation{
		equation.NewPivot(a, b, vec.UnitX, pivotA, pivotB, maxForce),
		equation.NewPivot(a, b, vec.UnitY, pivotA, pivotB, maxForce),
	}
	return &PointToPoint{
		base:   base{bodyA: a, bodyB: b, equations: eqs},
		PivotA: pivotA,
		PivotB: pivotB,
	}
}

// NewPointToPointAt pins both bodies at a shared world point.
func NewPointToPointAt(a, b *body.Body, worldPivot mgl64.Vec2, maxForce float64) *PointToPoint {
	return NewPointToPoint(a, a.ToLocalFrame(worldPivot), b, b.ToLocalFrame(worldPivot), maxForce)
}

func (p *PointToPoint) Kind() Kind { return KindPointToPoint }

func (p *PointToPoint) Update() {
	for _, eq := range p.equations {
		pv := eq.(*equation.Pivot)
		pv.LocalPivotA = p.PivotA
		pv.LocalPivotB = p.PivotB
		pv.Update()
	}
}
