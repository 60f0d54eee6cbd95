package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 5.0
	DefaultFriction    = 0.1
	DefaultIterations  = 10
	DefaultTolerance   = 1e-7
	DefaultStiffness   = 1e7
	DefaultRelaxation  = 4.0
	DefaultBroadphase  = "naive"
	DefaultSampleEvery = 1
)

var DefaultGravity = Vec{0, -9.78}

var ErrInvalid = errors.New("config: invalid")

// Vec is a 2D vector written as a two-element YAML sequence.
type Vec [2]float64

type Config struct {
	// Preset names a built-in scene used when Scene has no bodies.
	Preset      string       `yaml:"preset,omitempty"`
	Dt          float64      `yaml:"dt"`
	Duration    float64      `yaml:"duration"`
	SampleEvery int          `yaml:"sample_every"`
	Gravity     Vec          `yaml:"gravity,flow"`
	Friction    float64      `yaml:"friction"`
	Broadphase  string       `yaml:"broadphase"`
	Profiling   bool         `yaml:"profiling"`
	Solver      SolverConfig `yaml:"solver"`
	Scene       Scene        `yaml:"scene"`
}

type SolverConfig struct {
	Iterations int     `yaml:"iterations"`
	Tolerance  float64 `yaml:"tolerance"`
	Stiffness  float64 `yaml:"stiffness"`
	Relaxation float64 `yaml:"relaxation"`
}

// Scene lists the entities of a run. Springs and constraints refer to
// bodies by their index in Bodies.
type Scene struct {
	Bodies      []BodyConfig       `yaml:"bodies"`
	Springs     []SpringConfig     `yaml:"springs,omitempty"`
	Constraints []ConstraintConfig `yaml:"constraints,omitempty"`
}

type BodyConfig struct {
	Mass            float64       `yaml:"mass"`
	Position        Vec           `yaml:"position,flow"`
	Angle           float64       `yaml:"angle,omitempty"`
	Velocity        Vec           `yaml:"velocity,flow"`
	AngularVelocity float64       `yaml:"angular_velocity,omitempty"`
	Shapes          []ShapeConfig `yaml:"shapes,omitempty"`
}

type ShapeConfig struct {
	Kind     string  `yaml:"kind"`
	Radius   float64 `yaml:"radius,omitempty"`
	Width    float64 `yaml:"width,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
	Length   float64 `yaml:"length,omitempty"`
	Vertices []Vec   `yaml:"vertices,omitempty,flow"`
	Offset   Vec     `yaml:"offset,flow"`
	Angle    float64 `yaml:"angle,omitempty"`
}

type SpringConfig struct {
	BodyA     int     `yaml:"body_a"`
	BodyB     int     `yaml:"body_b"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
	// RestLength of zero takes the initial distance.
	RestLength float64 `yaml:"rest_length,omitempty"`
}

type ConstraintConfig struct {
	Kind  string `yaml:"kind"`
	BodyA int    `yaml:"body_a"`
	BodyB int    `yaml:"body_b"`
	// MaxForce of zero is unbounded.
	MaxForce float64 `yaml:"max_force,omitempty"`
	// Pivot is the shared world point of a point_to_point joint.
	Pivot Vec `yaml:"pivot,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Gravity:     DefaultGravity,
		Friction:    DefaultFriction,
		Broadphase:  DefaultBroadphase,
		Solver: SolverConfig{
			Iterations: DefaultIterations,
			Tolerance:  DefaultTolerance,
			Stiffness:  DefaultStiffness,
			Relaxation: DefaultRelaxation,
		},
	}
}

// Load reads a YAML run file on top of the defaults, resolves its preset
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Preset != "" && len(cfg.Scene.Bodies) == 0 {
		p := GetPreset(cfg.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalid, cfg.Preset)
		}
		cfg.Scene = p.Scene
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Steps is the number of whole time steps in Duration.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalid, c.Dt)
	}
	if !(c.Duration > 0) || c.Duration < c.Dt {
		return fmt.Errorf("%w: duration must cover at least one step, got %v", ErrInvalid, c.Duration)
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1", ErrInvalid)
	}
	if c.Friction < 0 {
		return fmt.Errorf("%w: friction must not be negative", ErrInvalid)
	}
	if c.Broadphase != "naive" && c.Broadphase != "sap" {
		return fmt.Errorf("%w: unknown broadphase %q", ErrInvalid, c.Broadphase)
	}
	if c.Solver.Iterations < 1 {
		return fmt.Errorf("%w: solver.iterations must be at least 1", ErrInvalid)
	}
	if c.Solver.Stiffness <= 0 || c.Solver.Relaxation < 0 {
		return fmt.Errorf("%w: solver stiffness must be positive and relaxation non-negative", ErrInvalid)
	}
	return c.Scene.Validate()
}

func (s *Scene) Validate() error {
	n := len(s.Bodies)
	for i, b := range s.Bodies {
		if b.Mass < 0 {
			return fmt.Errorf("%w: body %d has negative mass", ErrInvalid, i)
		}
		for j, sh := range b.Shapes {
			if err := sh.validate(); err != nil {
				return fmt.Errorf("%w: body %d shape %d: %v", ErrInvalid, i, j, err)
			}
		}
	}
	for i, sp := range s.Springs {
		if !pairInRange(sp.BodyA, sp.BodyB, n) {
			return fmt.Errorf("%w: spring %d refers to bodies %d and %d", ErrInvalid, i, sp.BodyA, sp.BodyB)
		}
	}
	for i, c := range s.Constraints {
		if c.Kind != "distance" && c.Kind != "point_to_point" {
			return fmt.Errorf("%w: constraint %d has unknown kind %q", ErrInvalid, i, c.Kind)
		}
		if !pairInRange(c.BodyA, c.BodyB, n) {
			return fmt.Errorf("%w: constraint %d refers to bodies %d and %d", ErrInvalid, i, c.BodyA, c.BodyB)
		}
	}
	return nil
}

func (s ShapeConfig) validate() error {
	switch s.Kind {
	case "circle":
		if s.Radius <= 0 {
			return errors.New("circle radius must be positive")
		}
	case "rectangle":
		if s.Width <= 0 || s.Height <= 0 {
			return errors.New("rectangle needs positive width and height")
		}
	case "convex":
		if len(s.Vertices) < 3 {
			return errors.New("convex needs at least 3 vertices")
		}
	case "line":
		if s.Length <= 0 {
			return errors.New("line length must be positive")
		}
	case "particle", "plane":
	default:
		return fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	return nil
}

func pairInRange(a, b, n int) bool {
	return a >= 0 && a < n && b >= 0 && b < n && a != b
}
