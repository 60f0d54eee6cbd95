package equation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/vec"
)

// Contact keeps two bodies from interpenetrating along Normal, which points
// from BodyA towards BodyB. Ri and Rj run from each body position to its
// contact point.
type Contact struct {
	Core

	Ri, Rj mgl64.Vec2
	Normal mgl64.Vec2
}

func NewContact(a, b *body.Body) *Contact {
	return &Contact{Core: newCore(a, b, 0, math.MaxFloat64)}
}

func (c *Contact) Kind() Kind { return KindContact }
func (c *Contact) Row() *Core { return &c.Core }

// Reset rebinds a pooled row to a new body pair.
func (c *Contact) Reset(a, b *body.Body) {
	*c = Contact{Core: newCore(a, b, 0, math.MaxFloat64)}
}

// Update fills the Jacobian and the gap from the current geometry. A
// negative Gq is penetration.
func (c *Contact) Update() {
	n := c.Normal
	c.G = [6]float64{
		-n[0], -n[1], -vec.Cross(c.Ri, n),
		n[0], n[1], vec.Cross(c.Rj, n),
	}
	pi := c.BodyA.Position.Add(c.Ri)
	pj := c.BodyB.Position.Add(c.Rj)
	c.Gq = pj.Sub(pi).Dot(n)
}

// Penetration is the overlap depth, zero when separated.
func (c *Contact) Penetration() float64 {
	return math.Max(0, -c.Gq)
}

// WorldPoint is the contact point on BodyA.
func (c *Contact) WorldPoint() mgl64.Vec2 {
	return c.BodyA.Position.Add(c.Ri)
}
