package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/constraint"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Gravity = config.Vec{0, -10}
	w, err := scene.NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestKineticEnergy(t *testing.T) {
	w := newWorld(t)
	w.AddBody(body.New(body.Options{Mass: 2, Velocity: mgl64.Vec2{3, 4}}))
	w.AddBody(body.NewStatic(mgl64.Vec2{}))

	m := NewKineticEnergy()
	m.Observe(w)
	if math.Abs(m.Value()-25) > 1e-9 {
		t.Errorf("expected 25, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftFreeFall(t *testing.T) {
	w := newWorld(t)
	w.AddBody(body.New(body.Options{Mass: 1, Position: mgl64.Vec2{0, 10}}))

	m := NewEnergyDrift()
	m.Observe(w)
	for range 100 {
		if err := w.Step(0.001); err != nil {
			t.Fatal(err)
		}
		m.Observe(w)
	}
	if m.Value() > 1e-3 {
		t.Errorf("free fall drift %v too large", m.Value())
	}
	if m.Value() == 0 {
		t.Error("semi-implicit Euler should show some drift")
	}
}

func TestPenetration(t *testing.T) {
	cfg := config.GetPreset("two_circles")
	cfg.Scene.Bodies[1].Position = config.Vec{0, 0.4}
	w, err := scene.Build(cfg)
	if err != nil {
		t.Fatal(err)
	}

	m := NewPenetration()
	if err := w.Step(cfg.Dt); err != nil {
		t.Fatal(err)
	}
	m.Observe(w)
	if math.Abs(m.Value()-0.1) > 1e-9 {
		t.Errorf("expected 0.1 penetration, got %f", m.Value())
	}
}

func TestConstraintEffort(t *testing.T) {
	w := newWorld(t)
	anchor := body.NewStatic(mgl64.Vec2{0, 1})
	bob := body.New(body.Options{Mass: 1})
	w.AddBody(anchor)
	w.AddBody(bob)
	w.AddConstraint(constraint.NewDistance(anchor, bob, 0))

	m := NewConstraintEffort()
	for range 10 {
		if err := w.Step(0.01); err != nil {
			t.Fatal(err)
		}
		m.Observe(w)
	}
	// a hanging bob needs about m*g of tension
	if math.Abs(m.Value()-10) > 1 {
		t.Errorf("expected tension near 10, got %f", m.Value())
	}
}

func TestStabilityAndMaxSpeed(t *testing.T) {
	w := newWorld(t)
	b := body.New(body.Options{Mass: 1, Velocity: mgl64.Vec2{0, 5}})
	w.AddBody(b)

	speed := NewMaxSpeed()
	stab := NewStability(6)
	speed.Observe(w)
	stab.Observe(w)
	b.Velocity = mgl64.Vec2{0, 8}
	speed.Observe(w)
	stab.Observe(w)

	if speed.Value() != 8 {
		t.Errorf("expected max speed 8, got %f", speed.Value())
	}
	if stab.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %f", stab.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
