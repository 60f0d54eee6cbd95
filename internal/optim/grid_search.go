package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/world"
)

// Tunable names the config fields a search can vary.
var Tunable = []string{"dt", "friction", "iterations", "tolerance", "stiffness", "relaxation"}

type Param struct {
	Name   string
	Values []float64
}

// ParseParam reads "name=v1,v2,...".
func ParseParam(s string) (Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || list == "" {
		return Param{}, fmt.Errorf("optim: expected name=v1,v2,... got %q", s)
	}
	p := Param{Name: name}
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Param{}, fmt.Errorf("optim: %s: %w", name, err)
		}
		p.Values = append(p.Values, v)
	}
	if err := Apply(config.DefaultConfig(), name, p.Values[0]); err != nil {
		return Param{}, err
	}
	return p, nil
}

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		cfg.Dt = v
	case "friction":
		cfg.Friction = v
	case "iterations":
		cfg.Solver.Iterations = int(v)
	case "tolerance":
		cfg.Solver.Tolerance = v
	case "stiffness":
		cfg.Solver.Stiffness = v
	case "relaxation":
		cfg.Solver.Relaxation = v
	default:
		return fmt.Errorf("optim: unknown parameter %q (%s)", name, strings.Join(Tunable, ", "))
	}
	return nil
}

type Candidate struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	params []Param
	log    logr.Logger
}

func NewGridSearch(params ...Param) *GridSearch {
	return &GridSearch{params: params, log: logr.Discard()}
}

func (g *GridSearch) WithLogger(l logr.Logger) *GridSearch {
	g.log = l
	return g
}

// Search runs base once per point of the grid and returns the candidate
// with the lowest value of metric, plus every evaluated candidate in grid
// order. Candidates that fail to build or diverge are kept with Err set
// and never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) (Candidate, []Candidate, error) {
	if !knownMetric(metric) {
		return Candidate{}, nil, fmt.Errorf("optim: unknown metric %q", metric)
	}

	var all []Candidate
	g.searchRecursive(ctx, 0, make(map[string]float64), base, metric, &all)
	if err := ctx.Err(); err != nil {
		return Candidate{}, all, err
	}

	best := Candidate{Value: math.Inf(1)}
	for _, c := range all {
		if c.Err == nil && c.Value < best.Value {
			best = c
		}
	}
	if best.Params == nil {
		return best, all, fmt.Errorf("optim: no candidate completed")
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metric string,
	all *[]Candidate,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.params) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		val, err := g.evaluate(ctx, base, params, metric)
		g.log.V(1).Info("candidate", "params", params, metric, val, "error", err)
		*all = append(*all, Candidate{Params: params, Value: val, Err: err})
		return
	}

	p := g.params[depth]
	for _, val := range p.Values {
		current[p.Name] = val
		g.searchRecursive(ctx, depth+1, current, base, metric, all)
	}
	delete(current, p.Name)
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metric string) (float64, error) {
	cfg := *base
	for name, v := range params {
		if err := Apply(&cfg, name, v); err != nil {
			return math.NaN(), err
		}
	}

	w, err := scene.Build(&cfg, world.WithLogger(g.log))
	if err != nil {
		return math.NaN(), err
	}
	s := sim.New(w)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	result, err := s.Run(ctx, sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, SampleEvery: cfg.Steps() + 1, ValidateState: true})
	if err != nil {
		return math.NaN(), err
	}
	if len(result.Errors) > 0 {
		return math.NaN(), result.Errors[0]
	}
	return result.Metrics[metric], nil
}

func knownMetric(name string) bool {
	for _, m := range metrics.Default() {
		if m.Name() == name {
			return true
		}
	}
	return false
}
