package world

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/constraint"
)

// DefaultFriction is the friction coefficient of a new World.
const DefaultFriction = 0.1

// DefaultGravity is the gravity of a new World, added to every body's force
// each step.
var DefaultGravity = mgl64.Vec2{0, -9.78}

// World owns the bodies, springs and constraints of a scene and advances
// them with Step. It is not safe for concurrent use.
type World struct {
	Gravity  mgl64.Vec2
	Friction float64

	Solver     Solver
	Broadphase Broadphase
	Nearphase  Nearphase

	// DoProfiling makes Step record its wall-clock duration in LastStepTime.
	DoProfiling  bool
	LastStepTime time.Duration
	LastTimeStep float64

	// Time is the simulated time advanced by completed steps.
	Time       float64
	StepNumber int

	bodies      []*body.Body
	springs     []*body.Spring
	constraints []constraint.Constraint

	nextConstraintID int

	listeners      []listenerEntry
	nextListenerID int

	stepping bool
	scratch  dispatchScratch
	logger   logr.Logger
}

// Option configures a World in New.
type Option func(*World)

func WithGravity(g mgl64.Vec2) Option    { return func(w *World) { w.Gravity = g } }
func WithFriction(mu float64) Option     { return func(w *World) { w.Friction = mu } }
func WithSolver(s Solver) Option         { return func(w *World) { w.Solver = s } }
func WithBroadphase(b Broadphase) Option { return func(w *World) { w.Broadphase = b } }
func WithNearphase(n Nearphase) Option   { return func(w *World) { w.Nearphase = n } }
func WithProfiling(on bool) Option       { return func(w *World) { w.DoProfiling = on } }
func WithLogger(l logr.Logger) Option    { return func(w *World) { w.logger = l } }

// New returns an empty World with gravity (0, -9.78), friction 0.1 and a
// discard logger, then applies opts. Solver, Broadphase and Nearphase must be
// set before the first Step.
func New(opts ...Option) *World {
	w := &World{
		Gravity:  DefaultGravity,
		Friction: DefaultFriction,
		logger:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) SetLogger(l logr.Logger) { w.logger = l }
func (w *World) Logger() logr.Logger     { return w.logger }

// Bodies returns the registered bodies in registration order. The slice is
// owned by the World and must not be modified.
func (w *World) Bodies() []*body.Body { return w.bodies }

func (w *World) Springs() []*body.Spring { return w.springs }

func (w *World) Constraints() []constraint.Constraint { return w.constraints }

// IndexOfBody is the body's position in Bodies, or -1.
func (w *World) IndexOfBody(b *body.Body) int {
	for i, x := range w.bodies {
		if x == b {
			return i
		}
	}
	return -1
}

func (w *World) BodyByID(id int) *body.Body {
	for _, b := range w.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}
