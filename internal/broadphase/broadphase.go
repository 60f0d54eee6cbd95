// Package broadphase proposes candidate colliding body pairs for the world
// step. Both implementations test bounding circles and never pair two
// static bodies.
package broadphase

import (
	"math"

	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/world"
)

// Naive checks every pair of bodies, in body order.
type Naive struct {
	pairs []*body.Body
}

func NewNaive() *Naive { return &Naive{} }

func (n *Naive) CollisionPairs(w *world.World) []*body.Body {
	bodies := w.Bodies()
	n.pairs = n.pairs[:0]
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if CanCollide(bodies[i], bodies[j]) {
				n.pairs = append(n.pairs, bodies[i], bodies[j])
			}
		}
	}
	return n.pairs
}

// CanCollide rejects static-static pairs and pairs whose bounding circles
// are apart. Bodies without shapes never collide.
func CanCollide(a, b *body.Body) bool {
	if a.Mass <= 0 && b.Mass <= 0 {
		return false
	}
	if len(a.Shapes) == 0 || len(b.Shapes) == 0 {
		return false
	}
	ra, rb := a.BoundingRadius(), b.BoundingRadius()
	if math.IsInf(ra, 1) || math.IsInf(rb, 1) {
		return true
	}
	r := ra + rb
	return b.Position.Sub(a.Position).LenSqr() <= r*r
}
