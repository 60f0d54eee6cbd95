package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/rigidsim/internal/world"
	"golang.org/x/sync/errgroup"
)

// Builder creates a fresh world for one ensemble member.
type Builder func() (*world.World, error)

// Ensemble runs independent worlds in parallel, one goroutine per world.
type Ensemble struct {
	builders   []Builder
	newMetrics func() []Metric
	limit      int
}

func NewEnsemble(builders ...Builder) *Ensemble {
	return &Ensemble{builders: builders, limit: runtime.GOMAXPROCS(0)}
}

// WithMetrics sets a factory giving each member its own metric instances.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

// Run returns one result per builder, in builder order. The first failure
// cancels the remaining members.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.builders))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i, build := range e.builders {
		g.Go(func() error {
			w, err := build()
			if err != nil {
				return err
			}
			sim := New(w)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					sim.AddMetric(m)
				}
			}
			res, err := sim.Run(ctx, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
