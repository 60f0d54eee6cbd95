package sim

import "github.com/san-kum/rigidsim/internal/world"

// Energy is the mechanical energy of w: kinetic energy, spring energy and
// the potential of the gravity force. The world applies gravity as the same
// force to every dynamic body, so each contributes -g·x.
func Energy(w *world.World) float64 {
	var e float64
	for _, b := range w.Bodies() {
		if b.IsStatic() {
			continue
		}
		e += b.KineticEnergy()
		e -= w.Gravity.Dot(b.Position)
	}
	for _, s := range w.Springs() {
		e += s.PotentialEnergy()
	}
	return e
}
