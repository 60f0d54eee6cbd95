package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if cfg.Broadphase != "naive" {
		t.Errorf("expected naive broadphase, got %s", cfg.Broadphase)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("two_circles")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Scene.Bodies) != 3 {
		t.Errorf("expected 3 bodies, got %d", len(cfg.Scene.Bodies))
	}
	if cfg.Friction != 0.3 {
		t.Errorf("expected friction 0.3, got %f", cfg.Friction)
	}

	cfg.Scene.Bodies[1].Mass = 42
	if again := GetPreset("two_circles"); again.Scene.Bodies[1].Mass == 42 {
		t.Error("presets must not share state")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != 5 {
		t.Errorf("expected 5 presets, got %v", names)
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"short duration", func(c *Config) { c.Duration = c.Dt / 2 }},
		{"negative friction", func(c *Config) { c.Friction = -1 }},
		{"unknown broadphase", func(c *Config) { c.Broadphase = "grid" }},
		{"no iterations", func(c *Config) { c.Solver.Iterations = 0 }},
		{"bad sample", func(c *Config) { c.SampleEvery = 0 }},
		{"negative mass", func(c *Config) { c.Scene.Bodies[1].Mass = -1 }},
		{"bad shape", func(c *Config) { c.Scene.Bodies[1].Shapes[0].Radius = 0 }},
		{"unknown shape", func(c *Config) { c.Scene.Bodies[1].Shapes[0].Kind = "torus" }},
		{"spring out of range", func(c *Config) {
			c.Scene.Springs = []SpringConfig{{BodyA: 0, BodyB: 9}}
		}},
		{"self constraint", func(c *Config) {
			c.Scene.Constraints = []ConstraintConfig{{Kind: "distance", BodyA: 1, BodyB: 1}}
		}},
		{"unknown constraint", func(c *Config) {
			c.Scene.Constraints = []ConstraintConfig{{Kind: "weld", BodyA: 1, BodyB: 2}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetPreset("two_circles")
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSaveLoadResolvesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte("preset: stack\ndt: 0.01\nduration: 1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", cfg.Dt)
	}
	if len(cfg.Scene.Bodies) != 6 {
		t.Errorf("expected stack bodies, got %d", len(cfg.Scene.Bodies))
	}
	if cfg.Steps() != 100 {
		t.Errorf("expected 100 steps, got %d", cfg.Steps())
	}

	out := filepath.Join(t.TempDir(), "saved.yaml")
	if err := Save(out, cfg); err != nil {
		t.Fatal(err)
	}
	back, err := Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(back.Scene.Bodies) != len(cfg.Scene.Bodies) || back.Gravity != cfg.Gravity {
		t.Error("saved config did not round trip")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("preset: nope\n"), 0644)
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
