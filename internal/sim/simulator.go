package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/rigidsim/internal/world"
)

type Simulator struct {
	world     *world.World
	metrics   []Metric
	observers []Observer
	log       logr.Logger
}

func New(w *world.World) *Simulator {
	return &Simulator{
		world:     w,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       w.Logger().WithName("sim"),
	}
}

func (s *Simulator) World() *world.World    { return s.world }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps the world for cfg.Duration. A step failure ends the run early
// and is returned together with the partial result.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	every := max(cfg.SampleEvery, 1)
	result := &Result{
		Frames:  make([]Frame, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	w := s.world
	start := time.Now()
	s.log.V(1).Info("run started", "steps", steps, "dt", cfg.Dt, "bodies", len(w.Bodies()))

	result.Frames = append(result.Frames, Snapshot(w, nil))
	result.Times = append(result.Times, w.Time)
	initialEnergy := Energy(w)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.WallTime = time.Since(start)
			return result, ctx.Err()
		default:
		}

		if err := w.Step(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, err)
			runErr = err
			break
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(w)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, i)
		}

		last := i == steps-1
		if (i+1)%every != 0 && !last && !cfg.ValidateState {
			continue
		}
		frame := Snapshot(w, nil)
		if cfg.ValidateState && !frame.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: w.Time, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}
		if (i+1)%every == 0 || last {
			result.Frames = append(result.Frames, frame)
			result.Times = append(result.Times, w.Time)
		}
	}

	finalEnergy := Energy(w)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.WallTime = time.Since(start)

	s.log.V(1).Info("run finished", "steps", result.StepsTaken, "wall", result.WallTime, "energyDrift", result.EnergyDrift)
	return result, runErr
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	return nil
}

// RunWithCallback steps the world until the duration elapses or callback
// returns false. The frame passed to callback is reused between calls.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(w *world.World, f Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	w := s.world
	pool := NewFramePool(len(w.Bodies()))
	end := w.Time + cfg.Duration - cfg.Dt/2

	for w.Time < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.Step(cfg.Dt); err != nil {
			return err
		}

		frame := Snapshot(w, pool.Get())
		if cfg.ValidateState && !frame.IsValid() {
			pool.Put(frame)
			return fmt.Errorf("invalid state at t=%.4f", w.Time)
		}
		keep := callback(w, frame)
		pool.Put(frame)
		if !keep {
			return nil
		}
	}

	return nil
}
