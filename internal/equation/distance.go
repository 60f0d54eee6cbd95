package equation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/vec"
)

// Distance holds the body centres Distance apart.
type Distance struct {
	Core

	Distance float64
}

func NewDistance(a, b *body.Body, distance, maxForce float64) *Distance {
	d := &Distance{Core: newCore(a, b, -maxForce, maxForce), Distance: distance}
	if maxForce <= 0 {
		d.MinForce, d.MaxForce = unbounded()
	}
	return d
}

func (d *Distance) Kind() Kind { return KindDistance }
func (d *Distance) Row() *Core { return &d.Core }

func (d *Distance) Update() {
	r := d.BodyB.Position.Sub(d.BodyA.Position)
	n := vec.Normalize(r, vec.UnitX)
	d.G = [6]float64{-n[0], -n[1], 0, n[0], n[1], 0}
	d.Gq = r.Len() - d.Distance
}

// Pivot constrains one world axis of the separation between two anchor
// points. A point-to-point joint uses one Pivot per axis.
type Pivot struct {
	Core

	Axis        mgl64.Vec2
	LocalPivotA mgl64.Vec2
	LocalPivotB mgl64.Vec2
}

func NewPivot(a, b *body.Body, axis, pivotA, pivotB mgl64.Vec2, maxForce float64) *Pivot {
	p := &Pivot{
		Core:        newCore(a, b, -maxForce, maxForce),
		Axis:        axis,
		LocalPivotA: pivotA,
		LocalPivotB: pivotB,
	}
	if maxForce <= 0 {
		p.MinForce, p.MaxForce = unbounded()
	}
	return p
}

func (p *Pivot) Kind() Kind { return KindPivot }
func (p *Pivot) Row() *Core { return &p.Core }

func (p *Pivot) Update() {
	a, b := p.BodyA, p.BodyB
	ri := vec.Rotate(p.LocalPivotA, a.Angle)
	rj := vec.Rotate(p.LocalPivotB, b.Angle)
	e := p.Axis
	p.G = [6]float64{
		-e[0], -e[1], -vec.Cross(ri, e),
		e[0], e[1], vec.Cross(rj, e),
	}
	p.Gq = b.Position.Add(rj).Sub(a.Position.Add(ri)).Dot(e)
}
