package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/rigidsim/internal/world"
)

// BodyState is one body's pose and velocity at a sample.
type BodyState struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Omega float64 `json:"omega"`
}

// Frame holds every body of a world, in body order.
type Frame []BodyState

func (f Frame) IsValid() bool {
	for _, b := range f {
		for _, v := range [...]float64{b.X, b.Y, b.Angle, b.VX, b.VY, b.Omega} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (f Frame) Clone() Frame {
	c := make(Frame, len(f))
	copy(c, f)
	return c
}

// Snapshot copies the state of every body of w into dst, growing it when
// needed.
func Snapshot(w *world.World, dst Frame) Frame {
	bodies := w.Bodies()
	if cap(dst) < len(bodies) {
		dst = make(Frame, len(bodies))
	}
	dst = dst[:len(bodies)]
	for i, b := range bodies {
		dst[i] = BodyState{
			ID:    b.ID,
			X:     b.Position[0],
			Y:     b.Position[1],
			Angle: b.Angle,
			VX:    b.Velocity[0],
			VY:    b.Velocity[1],
			Omega: b.AngularVelocity,
		}
	}
	return dst
}

type Metric interface {
	Name() string
	Observe(w *world.World)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *world.World, step int)
}

type Config struct {
	Dt       float64
	Duration float64
	// SampleEvery records a frame every n steps; the final step is always
	// recorded.
	SampleEvery   int
	ValidateState bool
}

type Result struct {
	Times       []float64
	Frames      []Frame
	Metrics     map[string]float64
	StepsTaken  int
	EnergyDrift float64
	WallTime    time.Duration
	Errors      []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("t=%.4f step=%d: %s", e.Time, e.Step, e.Message)
}
