package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/world"
)

// Penetration is the deepest contact overlap seen after any step.
type Penetration struct {
	name  string
	depth float64
}

func NewPenetration() *Penetration {
	return &Penetration{name: "max_penetration"}
}

func (p *Penetration) Name() string { return p.name }

// Observe reads the contacts of the step that just ran; the nearphase keeps
// them until its next reset.
func (p *Penetration) Observe(w *world.World) {
	if w.Nearphase == nil {
		return
	}
	for _, c := range w.Nearphase.ContactEquations() {
		p.depth = math.Max(p.depth, c.Penetration())
	}
}

func (p *Penetration) Value() float64 { return p.depth }
func (p *Penetration) Reset()         { p.depth = 0 }

// ConstraintEffort is the mean over steps of the summed absolute constraint
// forces.
type ConstraintEffort struct {
	name    string
	sum     float64
	samples int
}

func NewConstraintEffort() *ConstraintEffort {
	return &ConstraintEffort{name: "constraint_effort"}
}

func (c *ConstraintEffort) Name() string { return c.name }

func (c *ConstraintEffort) Observe(w *world.World) {
	for _, con := range w.Constraints() {
		for _, eq := range con.Equations() {
			c.sum += math.Abs(eq.Row().Multiplier)
		}
	}
	c.samples++
}

func (c *ConstraintEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ConstraintEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
