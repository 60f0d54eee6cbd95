package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

// MaxSpeed is the highest linear body speed seen.
type MaxSpeed struct {
	name  string
	speed float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(w *world.World) {
	for _, b := range w.Bodies() {
		m.speed = math.Max(m.speed, b.Velocity.Len())
	}
}

func (m *MaxSpeed) Value() float64 { return m.speed }
func (m *MaxSpeed) Reset()         { m.speed = 0 }

// Stability is the fraction of steps in which every body stayed below the
// speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *world.World) {
	s.samples++
	for _, b := range w.Bodies() {
		v := b.Velocity.Len()
		if v > s.threshold || math.IsNaN(v) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default is the metric set reported by the CLI.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewPenetration(),
		NewMaxSpeed(),
		NewConstraintEffort(),
		NewStability(100),
	}
}
