// Package narrowphase generates contact and friction equations for pairs of
// posed shapes.
//
// Each routine receives the two bodies, their shapes, and the world
// position and angle of each shape. Contact normals always point from the
// first body towards the second. Equations are drawn from pools that are
// recycled on Reset, so a warmed-up Narrowphase does not allocate.
package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/vec"
)

type Narrowphase struct {
	EnableFriction bool
	SlipForce      float64

	// Stiffness and Relaxation are copied onto every generated equation.
	Stiffness  float64
	Relaxation float64

	contacts    []*equation.Contact
	numContacts int
	friction    []*equation.Friction
	numFriction int

	scratch [2]polygonScratch
}

type polygonScratch struct {
	verts   []mgl64.Vec2
	normals []mgl64.Vec2
}

func New() *Narrowphase {
	return &Narrowphase{
		EnableFriction: true,
		Stiffness:      equation.DefaultStiffness,
		Relaxation:     equation.DefaultRelaxation,
	}
}

// Reset recycles every equation handed out since the previous Reset.
func (n *Narrowphase) Reset() {
	n.numContacts = 0
	n.numFriction = 0
}

func (n *Narrowphase) SetEnableFriction(enabled bool) { n.EnableFriction = enabled }
func (n *Narrowphase) SetSlipForce(slipForce float64) { n.SlipForce = slipForce }

func (n *Narrowphase) ContactEquations() []*equation.Contact {
	return n.contacts[:n.numContacts]
}

func (n *Narrowphase) FrictionEquations() []*equation.Friction {
	return n.friction[:n.numFriction]
}

func (n *Narrowphase) nextContact(a, b *body.Body) *equation.Contact {
	if n.numContacts == len(n.contacts) {
		n.contacts = append(n.contacts, equation.NewContact(a, b))
	}
	c := n.contacts[n.numContacts]
	n.numContacts++
	c.Reset(a, b)
	c.Stiffness = n.Stiffness
	c.Relaxation = n.Relaxation
	return c
}

func (n *Narrowphase) nextFriction(a, b *body.Body) *equation.Friction {
	if n.numFriction == len(n.friction) {
		n.friction = append(n.friction, equation.NewFriction(a, b, n.SlipForce))
	}
	f := n.friction[n.numFriction]
	n.numFriction++
	f.Reset(a, b, n.SlipForce)
	f.Stiffness = n.Stiffness
	f.Relaxation = n.Relaxation
	return f
}

// addContact records a contact between world points pa (on a) and pb (on b)
// with normal pointing from a to b, plus a matching friction row when
// friction is enabled.
func (n *Narrowphase) addContact(a, b *body.Body, pa, pb, normal mgl64.Vec2) {
	c := n.nextContact(a, b)
	c.Normal = normal
	c.Ri = pa.Sub(a.Position)
	c.Rj = pb.Sub(b.Position)
	c.Update()

	if !n.EnableFriction {
		return
	}
	f := n.nextFriction(a, b)
	f.Tangent = vec.Perp(normal)
	f.Ri = c.Ri
	f.Rj = c.Rj
	f.Update()
}
