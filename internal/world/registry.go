package world

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/constraint"
)

// AddBody appends b and publishes EventAddBody. Adding the same body twice
// is not detected.
func (w *World) AddBody(b *body.Body) {
	w.bodies = append(w.bodies, b)
	w.logger.V(1).Info("body added", "id", b.ID, "mass", b.Mass, "shapes", len(b.Shapes))
	w.emit(Event{Kind: EventAddBody, Body: b})
}

// RemoveBody removes the first occurrence of b. Absent bodies are ignored.
// The remaining bodies keep their relative order.
func (w *World) RemoveBody(b *body.Body) {
	idx := slices.Index(w.bodies, b)
	if idx == -1 {
		return
	}
	w.bodies = slices.Delete(w.bodies, idx, idx+1)
	w.logger.V(1).Info("body removed", "id", b.ID)
	w.emit(Event{Kind: EventRemoveBody, Body: b})
}

func (w *World) AddSpring(s *body.Spring) {
	w.springs = append(w.springs, s)
	w.logger.V(1).Info("spring added", "bodyA", s.BodyA.ID, "bodyB", s.BodyB.ID)
	w.emit(Event{Kind: EventAddSpring, Spring: s})
}

func (w *World) RemoveSpring(s *body.Spring) {
	idx := slices.Index(w.springs, s)
	if idx == -1 {
		return
	}
	w.springs = slices.Delete(w.springs, idx, idx+1)
	w.logger.V(1).Info("spring removed", "bodyA", s.BodyA.ID, "bodyB", s.BodyB.ID)
	w.emit(Event{Kind: EventRemoveSpring, Spring: s})
}

// AddConstraint appends c and assigns it the next constraint id.
func (w *World) AddConstraint(c constraint.Constraint) {
	c.SetID(w.nextConstraintID)
	w.nextConstraintID++
	w.constraints = append(w.constraints, c)
	w.logger.V(1).Info("constraint added", "id", c.ID(), "kind", c.Kind().String())
}

func (w *World) RemoveConstraint(c constraint.Constraint) {
	idx := slices.Index(w.constraints, c)
	if idx == -1 {
		return
	}
	w.constraints = slices.Delete(w.constraints, idx, idx+1)
	w.logger.V(1).Info("constraint removed", "id", c.ID())
}

// Clear removes every constraint, then every body, then every spring
// through the individual remove paths, and rewinds the step counters.
// Gravity, friction and collaborators are kept.
func (w *World) Clear() {
	for len(w.constraints) > 0 {
		w.RemoveConstraint(w.constraints[len(w.constraints)-1])
	}
	for len(w.bodies) > 0 {
		w.RemoveBody(w.bodies[len(w.bodies)-1])
	}
	for len(w.springs) > 0 {
		w.RemoveSpring(w.springs[len(w.springs)-1])
	}

	if w.Solver != nil {
		w.Solver.RemoveAllEquations()
	}
	if w.Nearphase != nil {
		w.Nearphase.Reset()
	}

	w.nextConstraintID = 0
	w.Time = 0
	w.StepNumber = 0
	w.LastTimeStep = 0
	w.LastStepTime = 0
}
