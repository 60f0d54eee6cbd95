package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/world"
)

const dt = 1.0 / 60

// restingContact puts a unit-mass ball on static ground with the given
// gap and approach velocity along +y.
func restingContact(gap, vy float64) (*world.World, *body.Body, *equation.Contact) {
	ground := body.NewStatic(mgl64.Vec2{})
	ball := body.New(body.Options{Mass: 1, Velocity: mgl64.Vec2{0, vy}})

	w := world.New()
	w.AddBody(ground)
	w.AddBody(ball)

	c := equation.NewContact(ground, ball)
	c.Normal = mgl64.Vec2{0, 1}
	c.Rj = mgl64.Vec2{0, gap}
	c.Update()
	return w, ball, c
}

func TestSolveEmpty(t *testing.T) {
	w, ball, _ := restingContact(0, -1)
	ball.VLambda = mgl64.Vec2{3, 3}

	s := NewGS()
	if err := s.Solve(dt, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ball.VLambda != (mgl64.Vec2{}) {
		t.Errorf("VLambda not cleared: %v", ball.VLambda)
	}
	if ball.Velocity != (mgl64.Vec2{0, -1}) {
		t.Errorf("velocity changed: %v", ball.Velocity)
	}
	if s.LastIterations != 0 {
		t.Errorf("LastIterations = %d", s.LastIterations)
	}
}

func TestSolveStopsApproach(t *testing.T) {
	w, ball, c := restingContact(0, -1)

	s := NewGS()
	s.AddEquation(c)
	if err := s.Solve(dt, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// relaxation 4 removes 16/17 of the approach speed in one step
	want := -1.0 / 17
	if math.Abs(ball.Velocity[1]-want) > 1e-3 {
		t.Errorf("vy = %v, want about %v", ball.Velocity[1], want)
	}
	if c.Multiplier <= 0 {
		t.Errorf("contact multiplier = %v, want positive", c.Multiplier)
	}
	if s.LastIterations >= DefaultIterations {
		t.Errorf("expected early exit, ran %d iterations", s.LastIterations)
	}
}

func TestSolveUnregisteredBody(t *testing.T) {
	_, ball, c := restingContact(0, -1)
	// the ball is referenced by the contact but not registered
	w := world.New()
	w.AddBody(c.BodyA)

	s := NewGS()
	for range 2 {
		ball.Velocity = mgl64.Vec2{0, -1}
		ball.VLambda = mgl64.Vec2{5, 5}
		ball.WLambda = 5

		s.RemoveAllEquations()
		s.AddEquation(c)
		if err := s.Solve(dt, w); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if math.Abs(ball.Velocity[1]+1.0/17) > 1e-3 || ball.Velocity[0] != 0 {
			t.Errorf("velocity = %v, want about (0, %v)", ball.Velocity, -1.0/17)
		}
		if ball.AngularVelocity != 0 {
			t.Errorf("stale angular impulse applied: %v", ball.AngularVelocity)
		}
	}
}

func TestSolveSeparatingContactIsIdle(t *testing.T) {
	w, ball, c := restingContact(0.1, 1)

	s := NewGS()
	s.AddEquation(c)
	if err := s.Solve(dt, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Multiplier != 0 {
		t.Errorf("multiplier = %v, want 0", c.Multiplier)
	}
	if ball.Velocity != (mgl64.Vec2{0, 1}) {
		t.Errorf("velocity = %v, want unchanged", ball.Velocity)
	}
}

func TestSolveFrictionBounded(t *testing.T) {
	ground := body.NewStatic(mgl64.Vec2{})
	ball := body.New(body.Options{Mass: 1, Velocity: mgl64.Vec2{5, 0}})
	w := world.New()
	w.AddBody(ground)
	w.AddBody(ball)

	f := equation.NewFriction(ground, ball, 1)
	f.Tangent = mgl64.Vec2{1, 0}
	f.Update()

	s := NewGS()
	s.AddEquation(f)
	if err := s.Solve(dt, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(f.Multiplier) > 1+1e-9 {
		t.Errorf("friction multiplier %v exceeds slip force", f.Multiplier)
	}
	if want := 5 - dt; math.Abs(ball.Velocity[0]-want) > 1e-9 {
		t.Errorf("vx = %v, want %v", ball.Velocity[0], want)
	}
}

func TestSolveNonFinite(t *testing.T) {
	w, _, c := restingContact(0, math.NaN())

	s := NewGS()
	s.AddEquation(c)
	err := s.Solve(dt, w)
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("got %v, want ErrNonFinite", err)
	}
}

func TestRemoveAllEquations(t *testing.T) {
	_, _, c := restingContact(0, -1)
	s := NewGS()
	s.AddEquation(c)
	s.AddEquation(c)
	s.RemoveAllEquations()
	if s.Len() != 0 {
		t.Errorf("Len = %d after RemoveAllEquations", s.Len())
	}
}

func TestGlobalParams(t *testing.T) {
	w, _, c := restingContact(0, -1)
	s := NewGS()
	s.UseGlobalParams = true
	s.Stiffness = 1e5
	s.Relaxation = 3
	s.AddEquation(c)
	if err := s.Solve(dt, w); err != nil {
		t.Fatal(err)
	}
	if c.Stiffness != 1e5 || c.Relaxation != 3 {
		t.Errorf("row params = %v/%v", c.Stiffness, c.Relaxation)
	}
}
