// Package world owns the simulated bodies, springs and constraints and
// advances them through time.
//
// A [World] is driven by [World.Step], which runs one fixed-order pass:
//
//   - gravity and spring forces are accumulated on every body
//   - the [Broadphase] proposes candidate body pairs
//   - every shape pair of every candidate is dispatched to the [Nearphase],
//     which emits contact and friction equations
//   - contact, friction and constraint equations are handed to the [Solver]
//   - velocities and positions are advanced with semi-implicit Euler
//   - forces are cleared and an [EventPostStep] is published
//
// # Dispatch
//
// Contact generation is selected by the ordered pair of [shape.Kind] values
// through a fixed table. Routines that only exist for one operand order are
// called with the two sides swapped; pairs with no table entry are skipped.
//
// # Thread Safety
//
// A World is NOT safe for concurrent use. Step runs synchronously and must
// not be called from a listener of the step in progress; such a call returns
// [ErrReentrantStep]. Listeners may add or remove entities, since the post
// step event is published after all state for the step has been written.
package world
