package scene

import (
	"testing"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/shape"
)

func TestBuildPresets(t *testing.T) {
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			w, err := Build(cfg)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got := len(w.Bodies()); got != len(cfg.Scene.Bodies) {
				t.Errorf("got %d bodies, want %d", got, len(cfg.Scene.Bodies))
			}
			if got := len(w.Springs()); got != len(cfg.Scene.Springs) {
				t.Errorf("got %d springs, want %d", got, len(cfg.Scene.Springs))
			}
			if got := len(w.Constraints()); got != len(cfg.Scene.Constraints) {
				t.Errorf("got %d constraints, want %d", got, len(cfg.Scene.Constraints))
			}
			for range 30 {
				if err := w.Step(cfg.Dt); err != nil {
					t.Fatalf("step: %v", err)
				}
			}
		})
	}
}

func TestBuildKeepsOrder(t *testing.T) {
	cfg := config.GetPreset("boxes")
	w, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	wantKinds := []shape.Kind{
		shape.KindPlane, shape.KindRectangle, shape.KindRectangle,
		shape.KindConvex, shape.KindLine, shape.KindParticle, shape.KindCircle,
	}
	for i, b := range w.Bodies() {
		if k := b.Shapes[0].Shape.Kind(); k != wantKinds[i] {
			t.Errorf("body %d: got %s, want %s", i, k, wantKinds[i])
		}
	}
	if w.Bodies()[1].Position != [2]float64(cfg.Scene.Bodies[1].Position) {
		t.Error("body position not copied")
	}
}

func TestNewWorldUnknownBroadphase(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Broadphase = "grid"
	if _, err := NewWorld(cfg); err == nil {
		t.Error("expected error for unknown broadphase")
	}
}

func TestBuildRejectsDegenerateConvex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene.Bodies = []config.BodyConfig{{
		Mass: 1,
		Shapes: []config.ShapeConfig{{
			Kind:     "convex",
			Vertices: []config.Vec{{0, 0}, {1, 0}, {2, 0}},
		}},
	}}
	if _, err := Build(cfg); err == nil {
		t.Error("expected degenerate polygon error")
	}
}
