// Package scene turns a run configuration into a ready-to-step world.
package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/broadphase"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/constraint"
	"github.com/san-kum/rigidsim/internal/narrowphase"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/solver"
	"github.com/san-kum/rigidsim/internal/world"
)

var broadphases = map[string]func() world.Broadphase{
	"naive": func() world.Broadphase { return broadphase.NewNaive() },
	"sap":   func() world.Broadphase { return broadphase.NewSweepAndPrune() },
}

func ListBroadphases() []string {
	names := make([]string, 0, len(broadphases))
	for name := range broadphases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewWorld creates an empty world with collaborators configured from cfg.
// Extra options are applied last.
func NewWorld(cfg *config.Config, opts ...world.Option) (*world.World, error) {
	newBroadphase, ok := broadphases[cfg.Broadphase]
	if !ok {
		return nil, fmt.Errorf("scene: unknown broadphase %q", cfg.Broadphase)
	}

	gs := solver.NewGS()
	gs.Iterations = cfg.Solver.Iterations
	gs.Tolerance = cfg.Solver.Tolerance

	np := narrowphase.New()
	np.Stiffness = cfg.Solver.Stiffness
	np.Relaxation = cfg.Solver.Relaxation

	base := []world.Option{
		world.WithGravity(mgl64.Vec2(cfg.Gravity)),
		world.WithFriction(cfg.Friction),
		world.WithSolver(gs),
		world.WithBroadphase(newBroadphase()),
		world.WithNearphase(np),
		world.WithProfiling(cfg.Profiling),
	}
	return world.New(append(base, opts...)...), nil
}

// Build creates the world and populates it with the configured scene.
func Build(cfg *config.Config, opts ...world.Option) (*world.World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, err := NewWorld(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := Populate(w, &cfg.Scene); err != nil {
		return nil, err
	}
	return w, nil
}

// Populate adds the scene's bodies, springs and constraints to w in
// configuration order.
func Populate(w *world.World, s *config.Scene) error {
	bodies := make([]*body.Body, 0, len(s.Bodies))
	for i, bc := range s.Bodies {
		b, err := newBody(bc)
		if err != nil {
			return fmt.Errorf("scene: body %d: %w", i, err)
		}
		bodies = append(bodies, b)
		w.AddBody(b)
	}

	for _, sc := range s.Springs {
		sp := body.NewSpring(bodies[sc.BodyA], bodies[sc.BodyB], sc.Stiffness, sc.Damping)
		if sc.RestLength > 0 {
			sp.RestLength = sc.RestLength
		}
		w.AddSpring(sp)
	}

	for i, cc := range s.Constraints {
		a, b := bodies[cc.BodyA], bodies[cc.BodyB]
		switch cc.Kind {
		case "distance":
			w.AddConstraint(constraint.NewDistance(a, b, cc.MaxForce))
		case "point_to_point":
			w.AddConstraint(constraint.NewPointToPointAt(a, b, mgl64.Vec2(cc.Pivot), cc.MaxForce))
		default:
			return fmt.Errorf("scene: constraint %d: unknown kind %q", i, cc.Kind)
		}
	}
	return nil
}

func newBody(bc config.BodyConfig) (*body.Body, error) {
	b := body.New(body.Options{
		Mass:            bc.Mass,
		Position:        mgl64.Vec2(bc.Position),
		Angle:           bc.Angle,
		Velocity:        mgl64.Vec2(bc.Velocity),
		AngularVelocity: bc.AngularVelocity,
	})
	for _, sc := range bc.Shapes {
		s, err := newShape(sc)
		if err != nil {
			return nil, err
		}
		b.AddShape(s, mgl64.Vec2(sc.Offset), sc.Angle)
	}
	return b, nil
}

func newShape(sc config.ShapeConfig) (shape.Shape, error) {
	kind, err := shape.ParseKind(sc.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case shape.KindCircle:
		return shape.NewCircle(sc.Radius), nil
	case shape.KindParticle:
		return shape.NewParticle(), nil
	case shape.KindPlane:
		return shape.NewPlane(), nil
	case shape.KindRectangle:
		return shape.NewRectangle(sc.Width, sc.Height), nil
	case shape.KindLine:
		return shape.NewLine(sc.Length), nil
	case shape.KindConvex:
		vs := make([]mgl64.Vec2, len(sc.Vertices))
		for i, v := range sc.Vertices {
			vs[i] = mgl64.Vec2(v)
		}
		return shape.NewConvex(vs)
	}
	return nil, fmt.Errorf("unsupported shape kind %s", kind)
}
