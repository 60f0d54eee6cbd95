package equation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/vec"
)

// Friction bounds the tangential impulse at a contact to +-SlipForce.
type Friction struct {
	Core

	Ri, Rj  mgl64.Vec2
	Tangent mgl64.Vec2
}

func NewFriction(a, b *body.Body, slipForce float64) *Friction {
	return &Friction{Core: newCore(a, b, -slipForce, slipForce)}
}

func (f *Friction) Kind() Kind { return KindFriction }
func (f *Friction) Row() *Core { return &f.Core }

func (f *Friction) Reset(a, b *body.Body, slipForce float64) {
	*f = Friction{Core: newCore(a, b, -slipForce, slipForce)}
}

func (f *Friction) SetSlipForce(slipForce float64) {
	f.MinForce = -slipForce
	f.MaxForce = slipForce
}

func (f *Friction) SlipForce() float64 { return f.MaxForce }

func (f *Friction) Update() {
	t := f.Tangent
	f.G = [6]float64{
		-t[0], -t[1], -vec.Cross(f.Ri, t),
		t[0], t[1], vec.Cross(f.Rj, t),
	}
	f.Gq = 0
}
