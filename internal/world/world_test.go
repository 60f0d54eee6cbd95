package world_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/constraint"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/narrowphase"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/solver"
	"github.com/san-kum/rigidsim/internal/world"
)

const dt = 1.0 / 60

func newWorld(opts ...world.Option) *world.World {
	base := []world.Option{
		world.WithSolver(solver.NewGS()),
		world.WithBroadphase(broadphase.NewNaive()),
		world.WithNearphase(narrowphase.New()),
		world.WithLogger(GinkgoLogr),
	}
	return world.New(append(base, opts...)...)
}

func ball(x, y float64) *body.Body {
	b := body.New(body.Options{Mass: 1, Position: mgl64.Vec2{x, y}})
	b.AddShape(shape.NewCircle(0.5), mgl64.Vec2{}, 0)
	return b
}

func groundPlane() *body.Body {
	b := body.NewStatic(mgl64.Vec2{})
	b.AddShape(shape.NewPlane(), mgl64.Vec2{}, 0)
	return b
}

// recordingSolver notes whether equations from an earlier step were still
// queued when a new step started submitting.
type recordingSolver struct {
	*solver.GS
	submitting bool
	stale      bool
	batches    []int
}

func (r *recordingSolver) AddEquation(eq equation.Equation) {
	if !r.submitting {
		r.submitting = true
		if r.Len() != 0 {
			r.stale = true
		}
	}
	r.GS.AddEquation(eq)
}

func (r *recordingSolver) Solve(h float64, w *world.World) error {
	r.submitting = false
	r.batches = append(r.batches, r.Len())
	return r.GS.Solve(h, w)
}

type failingSolver struct {
	*solver.GS
}

var errRejected = errors.New("rejected")

func (f failingSolver) Solve(float64, *world.World) error { return errRejected }

// fixedPairs hands the same candidate pairs to every step.
type fixedPairs []*body.Body

func (p fixedPairs) CollisionPairs(*world.World) []*body.Body { return p }

func disc(mass, x float64) *body.Body {
	var b *body.Body
	if mass > 0 {
		b = body.New(body.Options{Mass: mass, Position: mgl64.Vec2{x, 0}})
	} else {
		b = body.NewStatic(mgl64.Vec2{x, 0})
	}
	b.AddShape(shape.NewCircle(0.5), mgl64.Vec2{}, 0)
	return b
}

var _ = Describe("World", func() {
	var w *world.World

	BeforeEach(func() {
		w = newWorld(world.WithGravity(mgl64.Vec2{0, -10}))
	})

	Describe("Step", func() {
		It("integrates a free body with semi-implicit Euler", func() {
			b := body.New(body.Options{Mass: 1})
			w.AddBody(b)

			var y float64
			for n := 1; n <= 30; n++ {
				Expect(w.Step(dt)).To(Succeed())
				y += -10 * float64(n) * dt * dt
				Expect(b.Velocity[1]).To(BeNumerically("~", -10*float64(n)*dt, 1e-9))
			}
			Expect(b.Position[1]).To(BeNumerically("~", y, 1e-9))
			Expect(w.StepNumber).To(Equal(30))
			Expect(w.Time).To(BeNumerically("~", 30*dt, 1e-12))
		})

		It("leaves static bodies untouched", func() {
			g := groundPlane()
			g.Position = mgl64.Vec2{0.5, -1}
			g.Angle = 0.1
			w.AddBody(g)
			w.AddBody(ball(0, 0))

			for range 60 {
				Expect(w.Step(dt)).To(Succeed())
			}
			Expect(g.Position).To(Equal(mgl64.Vec2{0.5, -1}))
			Expect(g.Angle).To(Equal(0.1))
			Expect(g.Velocity).To(Equal(mgl64.Vec2{}))
			Expect(g.AngularVelocity).To(BeZero())
		})

		It("resets forces after every step", func() {
			a, b := ball(0, 3), ball(2, 3)
			w.AddBody(a)
			w.AddBody(b)
			w.AddSpring(body.NewSpring(a, b, 50, 1))
			a.ApplyForce(mgl64.Vec2{5, 0}, mgl64.Vec2{0, 0.5})

			Expect(w.Step(dt)).To(Succeed())
			for _, x := range w.Bodies() {
				Expect(x.Force).To(Equal(mgl64.Vec2{}))
				Expect(x.AngularForce).To(BeZero())
			}
		})

		It("rejects invalid time steps", func() {
			for _, h := range []float64{0, -dt, math.NaN(), math.Inf(1)} {
				Expect(w.Step(h)).To(MatchError(world.ErrInvalidTimeStep))
			}
			Expect(w.StepNumber).To(BeZero())
		})

		It("requires collaborators", func() {
			Expect(world.New().Step(dt)).To(MatchError(world.ErrMissingCollaborator))
		})

		It("refuses to re-enter from a listener", func() {
			var inner error
			w.On(func(e world.Event) {
				if e.Kind == world.EventPostStep {
					inner = w.Step(dt)
				}
			})
			Expect(w.Step(dt)).To(Succeed())
			Expect(inner).To(MatchError(world.ErrReentrantStep))
			Expect(w.StepNumber).To(Equal(1))
		})

		It("aborts before integration when the solver fails", func() {
			gs := solver.NewGS()
			w.Solver = failingSolver{gs}
			b := ball(0, 0.4)
			w.AddBody(groundPlane())
			w.AddBody(b)

			err := w.Step(dt)
			var stepErr *world.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Phase).To(Equal("solve"))
			Expect(err).To(MatchError(errRejected))

			Expect(b.Position).To(Equal(mgl64.Vec2{0, 0.4}))
			Expect(b.Velocity).To(Equal(mgl64.Vec2{}))
			Expect(w.StepNumber).To(BeZero())
			Expect(gs.Len()).To(BeZero())
		})

		It("skips shape pairs without a contact routine", func() {
			a := body.New(body.Options{Mass: 1})
			a.AddShape(shape.NewLine(2), mgl64.Vec2{}, 0)
			b := body.New(body.Options{Mass: 1})
			b.AddShape(shape.NewLine(2), mgl64.Vec2{}, math.Pi/2)
			w.AddBody(a)
			w.AddBody(b)

			Expect(w.Step(dt)).To(Succeed())
			Expect(w.Nearphase.ContactEquations()).To(BeEmpty())
		})

		It("records the step duration when profiling", func() {
			w.DoProfiling = true
			w.AddBody(groundPlane())
			w.AddBody(ball(0, 0.45))
			Expect(w.Step(dt)).To(Succeed())
			Expect(w.LastTimeStep).To(Equal(dt))
			Expect(w.LastStepTime).To(BeNumerically(">", 0))
		})
	})

	Describe("pair dispatch", func() {
		contactFor := func(first, second *body.Body) *equation.Contact {
			ww := newWorld(world.WithGravity(mgl64.Vec2{}), world.WithFriction(0))
			ww.AddBody(first)
			ww.AddBody(second)
			Expect(ww.Step(dt)).To(Succeed())
			contacts := ww.Nearphase.ContactEquations()
			Expect(contacts).To(HaveLen(1))
			return contacts[0]
		}

		It("produces the same contact for circle/plane in either order", func() {
			c1 := ball(0.3, 0.4)
			g1 := groundPlane()
			forward := contactFor(c1, g1)

			c2 := ball(0.3, 0.4)
			g2 := groundPlane()
			reversed := contactFor(g2, c2)

			Expect(forward.BodyA).To(BeIdenticalTo(c1))
			Expect(reversed.BodyA).To(BeIdenticalTo(c2))
			Expect(reversed.Normal).To(Equal(forward.Normal))
			Expect(reversed.Ri).To(Equal(forward.Ri))
			Expect(reversed.Rj).To(Equal(forward.Rj))
			Expect(reversed.Gq).To(BeNumerically("~", forward.Gq, 1e-12))
		})
	})

	Describe("friction bound", func() {
		slipFor := func(massA, massB float64) float64 {
			a, b := disc(massA, 0), disc(massB, 0.9)
			ww := newWorld(
				world.WithGravity(mgl64.Vec2{0, -10}),
				world.WithFriction(0.3),
				world.WithBroadphase(fixedPairs{a, b}),
			)
			ww.AddBody(a)
			ww.AddBody(b)
			Expect(ww.Step(dt)).To(Succeed())

			friction := ww.Nearphase.FrictionEquations()
			Expect(friction).To(HaveLen(1))
			return friction[0].SlipForce()
		}

		DescribeTable("scales friction by the reduced mass of the pair",
			func(massA, massB, want float64) {
				Expect(slipFor(massA, massB)).To(BeNumerically("~", want, 1e-12))
			},
			// mu * |g| / (1/mA + 1/mB)
			Entry("equal masses", 1.0, 1.0, 1.5),
			Entry("unequal masses", 3.0, 1.0, 2.25),
			Entry("dynamic against static", 1.0, 0.0, 3.0),
		)

		It("uses zero slip force for a pair of static bodies", func() {
			slip := slipFor(0, 0)
			Expect(math.IsNaN(slip)).To(BeFalse())
			Expect(slip).To(BeZero())
		})
	})

	Describe("registry", func() {
		It("ignores removal of entities that were never added", func() {
			a, b := ball(0, 0), ball(1, 0)
			w.AddBody(a)
			s := body.NewSpring(a, b, 10, 0)
			w.AddSpring(s)
			c := constraint.NewDistance(a, b, 0)
			w.AddConstraint(c)

			w.RemoveBody(ball(5, 5))
			w.RemoveSpring(body.NewSpring(a, b, 1, 0))
			w.RemoveConstraint(constraint.NewDistance(b, a, 0))

			Expect(w.Bodies()).To(Equal([]*body.Body{a}))
			Expect(w.Springs()).To(Equal([]*body.Spring{s}))
			Expect(w.Constraints()).To(HaveLen(1))
			Expect(w.Constraints()[0]).To(BeIdenticalTo(c))
		})

		It("keeps order when removing from the middle", func() {
			bodies := []*body.Body{ball(0, 0), ball(1, 0), ball(2, 0)}
			for _, b := range bodies {
				w.AddBody(b)
			}
			w.RemoveBody(bodies[1])
			Expect(w.Bodies()).To(Equal([]*body.Body{bodies[0], bodies[2]}))
			Expect(w.IndexOfBody(bodies[2])).To(Equal(1))
			Expect(w.IndexOfBody(bodies[1])).To(Equal(-1))
			Expect(w.BodyByID(bodies[2].ID)).To(BeIdenticalTo(bodies[2]))
		})

		It("assigns increasing constraint ids", func() {
			a, b := ball(0, 0), ball(1, 0)
			c1 := constraint.NewDistance(a, b, 0)
			c2 := constraint.NewPointToPointAt(a, b, mgl64.Vec2{0.5, 0}, 0)
			w.AddConstraint(c1)
			w.AddConstraint(c2)
			Expect(c1.ID()).To(Equal(0))
			Expect(c2.ID()).To(Equal(1))
		})

		It("clears everything and keeps stepping", func() {
			a, b := ball(0, 0.4), ball(0.9, 0.4)
			w.AddBody(groundPlane())
			w.AddBody(a)
			w.AddBody(b)
			w.AddSpring(body.NewSpring(a, b, 10, 0))
			w.AddConstraint(constraint.NewDistance(a, b, 0))
			Expect(w.Step(dt)).To(Succeed())

			w.Clear()
			Expect(w.Bodies()).To(BeEmpty())
			Expect(w.Springs()).To(BeEmpty())
			Expect(w.Constraints()).To(BeEmpty())
			Expect(w.StepNumber).To(BeZero())
			Expect(w.Step(dt)).To(Succeed())
			Expect(w.Nearphase.ContactEquations()).To(BeEmpty())
		})
	})

	Describe("events", func() {
		It("publishes registry changes and post step in order", func() {
			var kinds []world.EventKind
			id := w.On(func(e world.Event) { kinds = append(kinds, e.Kind) })

			a, b := ball(0, 0), ball(1, 0)
			w.AddBody(a)
			w.AddBody(b)
			s := body.NewSpring(a, b, 10, 0)
			w.AddSpring(s)
			Expect(w.Step(dt)).To(Succeed())
			w.RemoveSpring(s)
			w.RemoveBody(b)

			Expect(kinds).To(Equal([]world.EventKind{
				world.EventAddBody,
				world.EventAddBody,
				world.EventAddSpring,
				world.EventPostStep,
				world.EventRemoveSpring,
				world.EventRemoveBody,
			}))

			w.Off(id)
			Expect(w.Step(dt)).To(Succeed())
			Expect(kinds).To(HaveLen(6))
		})

		It("publishes post step after the bodies have moved", func() {
			b := body.New(body.Options{Mass: 1})
			w.AddBody(b)
			var seen float64
			w.On(func(e world.Event) {
				if e.Kind == world.EventPostStep {
					seen = b.Velocity[1]
				}
			})
			Expect(w.Step(dt)).To(Succeed())
			Expect(seen).To(BeNumerically("~", -10*dt, 1e-12))
		})
	})

	Describe("equation lifecycle", func() {
		It("never carries equations into the next step", func() {
			rec := &recordingSolver{GS: solver.NewGS()}
			w.Solver = rec
			a, b := ball(-0.2, 0.45), ball(0.6, 0.45)
			w.AddBody(groundPlane())
			w.AddBody(a)
			w.AddBody(b)
			w.AddConstraint(constraint.NewDistance(a, b, 0))

			for range 10 {
				Expect(w.Step(dt)).To(Succeed())
				Expect(rec.Len()).To(BeZero())
			}
			Expect(rec.stale).To(BeFalse())
			Expect(rec.batches).To(HaveLen(10))
			for _, n := range rec.batches {
				Expect(n).To(BeNumerically(">=", 1))
			}
		})
	})

	Describe("constraints", func() {
		It("keeps a pendulum at its length", func() {
			anchor := body.NewStatic(mgl64.Vec2{0, 2})
			bob := body.New(body.Options{Mass: 1, Position: mgl64.Vec2{1, 2}})
			w.AddBody(anchor)
			w.AddBody(bob)
			w.AddConstraint(constraint.NewDistance(anchor, bob, 0))

			for range 30 {
				Expect(w.Step(dt)).To(Succeed())
			}
			Expect(bob.Position.Sub(anchor.Position).Len()).To(BeNumerically("~", 1, 0.05))
			Expect(bob.Position[1]).To(BeNumerically("<", 1.5))
		})
	})

	Describe("two circles on the ground", func() {
		run := func(friction float64) (*body.Body, *body.Body) {
			ww := newWorld(
				world.WithGravity(mgl64.Vec2{0, -10}),
				world.WithFriction(friction),
			)
			ww.AddBody(groundPlane())
			a, b := ball(0, 1), ball(1, 2)
			a.Velocity = mgl64.Vec2{3, 0}
			b.Velocity = mgl64.Vec2{3, 0}
			ww.AddBody(a)
			ww.AddBody(b)

			for range 120 {
				Expect(ww.Step(dt)).To(Succeed())
			}
			return a, b
		}

		It("come to rest on the plane and lose speed only to friction", func() {
			fa, fb := run(0.3)
			ca, cb := run(0)

			for _, b := range []*body.Body{fa, fb, ca, cb} {
				Expect(b.Position[1]).To(BeNumerically(">=", 0.5-0.02))
				Expect(b.Position[1]).To(BeNumerically("<", 0.55))
			}

			Expect(ca.Velocity[0]).To(BeNumerically("~", 3, 1e-6))
			Expect(cb.Velocity[0]).To(BeNumerically("~", 3, 1e-6))
			Expect(fa.Velocity[0]).To(BeNumerically("<", ca.Velocity[0]-0.5))
			Expect(fb.Velocity[0]).To(BeNumerically("<", cb.Velocity[0]-0.5))
			Expect(fa.Velocity[0]).To(BeNumerically(">", 0))
			Expect(fa.AngularVelocity).To(BeNumerically("<", 0))
		})
	})
})
