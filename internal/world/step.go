package world

import (
	"fmt"
	"math"
	"time"
)

// Step advances the world by dt seconds. The phases run in a fixed order;
// see the package documentation. A solver failure aborts the step before
// integration and is returned as a *StepError.
func (w *World) Step(dt float64) error {
	if w.stepping {
		return ErrReentrantStep
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeStep, dt)
	}
	if w.Solver == nil || w.Broadphase == nil || w.Nearphase == nil {
		return ErrMissingCollaborator
	}

	w.stepping = true
	defer func() { w.stepping = false }()

	w.LastTimeStep = dt

	var start time.Time
	if w.DoProfiling {
		start = time.Now()
	}

	for _, b := range w.bodies {
		b.Force = b.Force.Add(w.Gravity)
	}

	for _, s := range w.springs {
		s.ApplyForce()
	}

	pairs := w.Broadphase.CollisionPairs(w)

	np := w.Nearphase
	np.Reset()
	skipped := 0
	for k := 0; k+1 < len(pairs); k += 2 {
		skipped += w.narrowphasePair(pairs[k], pairs[k+1])
	}

	contacts := np.ContactEquations()
	friction := np.FrictionEquations()
	for _, eq := range contacts {
		w.Solver.AddEquation(eq)
	}
	for _, eq := range friction {
		w.Solver.AddEquation(eq)
	}
	for _, c := range w.constraints {
		c.Update()
		for _, eq := range c.Equations() {
			w.Solver.AddEquation(eq)
		}
	}

	if err := w.Solver.Solve(dt, w); err != nil {
		w.Solver.RemoveAllEquations()
		return &StepError{Step: w.StepNumber, Time: w.Time, Phase: "solve", Wrapped: err}
	}
	w.Solver.RemoveAllEquations()

	w.integrate(dt)
	w.Time += dt
	w.StepNumber++

	for _, b := range w.bodies {
		b.ResetForces()
	}

	if w.DoProfiling {
		w.LastStepTime = time.Since(start)
	}

	if log := w.logger.V(2); log.Enabled() {
		log.Info("step",
			"step", w.StepNumber,
			"pairs", len(pairs)/2,
			"contacts", len(contacts),
			"friction", len(friction),
			"constraints", len(w.constraints),
			"skippedShapePairs", skipped,
		)
	}

	w.emit(Event{Kind: EventPostStep})
	return nil
}
