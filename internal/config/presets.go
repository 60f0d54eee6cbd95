package config

import "sort"

func ground() BodyConfig {
	return BodyConfig{Shapes: []ShapeConfig{{Kind: "plane"}}}
}

func circle(mass, r float64, pos, vel Vec) BodyConfig {
	return BodyConfig{Mass: mass, Position: pos, Velocity: vel, Shapes: []ShapeConfig{{Kind: "circle", Radius: r}}}
}

func box(mass, w, h float64, pos Vec, angle float64) BodyConfig {
	return BodyConfig{Mass: mass, Position: pos, Angle: angle, Shapes: []ShapeConfig{{Kind: "rectangle", Width: w, Height: h}}}
}

var presets = map[string]func() *Config{
	"two_circles": func() *Config {
		cfg := DefaultConfig()
		cfg.Gravity = Vec{0, -10}
		cfg.Friction = 0.3
		cfg.Duration = 2
		cfg.Scene.Bodies = []BodyConfig{
			ground(),
			circle(1, 0.5, Vec{0, 1}, Vec{3, 0}),
			circle(1, 0.5, Vec{1, 2}, Vec{3, 0}),
		}
		return cfg
	},
	"stack": func() *Config {
		cfg := DefaultConfig()
		cfg.Friction = 0.5
		cfg.Solver.Iterations = 20
		cfg.Broadphase = "sap"
		cfg.Scene.Bodies = []BodyConfig{ground()}
		for i := range 5 {
			cfg.Scene.Bodies = append(cfg.Scene.Bodies, box(1, 1, 1, Vec{0, 0.5 + 1.01*float64(i)}, 0))
		}
		return cfg
	},
	"pendulum": func() *Config {
		cfg := DefaultConfig()
		cfg.Duration = 10
		cfg.Friction = 0
		cfg.Scene.Bodies = []BodyConfig{
			{Position: Vec{0, 3}},
			circle(1, 0.2, Vec{2, 3}, Vec{}),
			circle(1, 0.2, Vec{3, 3}, Vec{}),
		}
		cfg.Scene.Constraints = []ConstraintConfig{
			{Kind: "distance", BodyA: 0, BodyB: 1},
			{Kind: "point_to_point", BodyA: 1, BodyB: 2, Pivot: Vec{2.5, 3}},
		}
		return cfg
	},
	"spring_chain": func() *Config {
		cfg := DefaultConfig()
		cfg.Duration = 8
		cfg.Scene.Bodies = []BodyConfig{ground(), {Position: Vec{0, 4}}}
		for i := 1; i <= 4; i++ {
			cfg.Scene.Bodies = append(cfg.Scene.Bodies, circle(1, 0.2, Vec{float64(i), 4}, Vec{}))
			cfg.Scene.Springs = append(cfg.Scene.Springs, SpringConfig{
				BodyA: i, BodyB: i + 1, Stiffness: 50, Damping: 0.5,
			})
		}
		return cfg
	},
	"boxes": func() *Config {
		cfg := DefaultConfig()
		cfg.Friction = 0.4
		cfg.Broadphase = "sap"
		cfg.Scene.Bodies = []BodyConfig{
			ground(),
			box(2, 2, 0.5, Vec{-1.5, 2}, 0.3),
			box(1, 1, 1, Vec{1, 3}, 0.8),
			{
				Mass: 1, Position: Vec{0, 5},
				Shapes: []ShapeConfig{{Kind: "convex", Vertices: []Vec{{-0.5, -0.4}, {0.5, -0.4}, {0, 0.6}}}},
			},
			{
				Mass: 0.5, Position: Vec{2.5, 1.5}, Angle: -0.4,
				Shapes: []ShapeConfig{{Kind: "line", Length: 1.5}},
			},
			{
				Mass: 0.1, Position: Vec{-1.5, 4},
				Shapes: []ShapeConfig{{Kind: "particle"}},
			},
			circle(1, 0.3, Vec{0.2, 7}, Vec{-0.5, 0}),
		}
		return cfg
	},
}

// GetPreset returns a fresh copy of the named scene, or nil.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := build()
	cfg.Preset = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
