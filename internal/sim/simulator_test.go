package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

func freeFall(t *testing.T) *world.World {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Gravity = config.Vec{0, -10}
	w, err := scene.NewWorld(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w.AddBody(body.New(body.Options{Mass: 1, Position: mgl64.Vec2{0, 10}}))
	return w
}

func TestSimulatorRun(t *testing.T) {
	sim := New(freeFall(t))

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	// semi-implicit Euler: y = 10 - g*dt^2*n(n+1)/2
	final := result.Frames[len(result.Frames)-1][0]
	expected := 10 - 10*0.01*55
	if math.Abs(final.Y-expected) > 1e-9 {
		t.Errorf("expected final y %.4f, got %.4f", expected, final.Y)
	}
}

func TestSimulatorSampling(t *testing.T) {
	sim := New(freeFall(t))

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, SampleEvery: 3})
	if err != nil {
		t.Fatal(err)
	}
	// initial, steps 3, 6, 9 and the final step
	if len(result.Frames) != 5 {
		t.Errorf("expected 5 frames, got %d", len(result.Frames))
	}
	if got := result.Times[len(result.Times)-1]; math.Abs(got-1.0) > 1e-9 {
		t.Errorf("last sample at %v, want 1.0", got)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(freeFall(t))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative sampling", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(w *world.World) {
	t.count++
	t.sum += w.Bodies()[0].Position[1]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type countingObserver struct{ steps []int }

func (c *countingObserver) OnStep(w *world.World, step int) { c.steps = append(c.steps, step) }

func TestSimulatorMetrics(t *testing.T) {
	sim := New(freeFall(t))

	metric := &testMetric{}
	obs := &countingObserver{}
	sim.AddMetric(metric)
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(obs.steps) != 10 || obs.steps[9] != 9 {
		t.Errorf("unexpected observer steps %v", obs.steps)
	}
}

func TestSimulatorEnergyConserved(t *testing.T) {
	sim := New(freeFall(t))
	result, err := sim.Run(context.Background(), Config{Dt: 0.001, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if result.EnergyDrift > 0.01 {
		t.Errorf("energy drift %v too large for free fall", result.EnergyDrift)
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := New(freeFall(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

func TestSimulatorValidateState(t *testing.T) {
	w := freeFall(t)
	w.Bodies()[0].Velocity = mgl64.Vec2{math.Inf(1), 0}

	result, err := New(w).Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	var simErr SimError
	if !errors.As(result.Errors[0], &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimError at step 0, got %v", result.Errors[0])
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(freeFall(t))
	calls := 0
	err := sim.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(w *world.World, f Frame) bool {
		calls++
		return calls < 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 4 {
		t.Errorf("expected 4 callbacks, got %d", calls)
	}

	calls = 0
	if err := New(freeFall(t)).RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(*world.World, Frame) bool {
		calls++
		return true
	}); err != nil {
		t.Fatal(err)
	}
	if calls != 10 {
		t.Errorf("expected 10 callbacks, got %d", calls)
	}
}

func TestFrameIsValid(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		valid bool
	}{
		{"empty", Frame{}, true},
		{"normal", Frame{{X: 1, Y: 2}}, true},
		{"with NaN", Frame{{X: 1}, {Omega: math.NaN()}}, false},
		{"with +Inf", Frame{{VY: math.Inf(1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
