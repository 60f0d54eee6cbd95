// Package solver provides the projected Gauss-Seidel velocity solver used by
// the world step.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/equation"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	DefaultIterations = 10
	DefaultTolerance  = 1e-7
)

var ErrNonFinite = errors.New("solver: non-finite multiplier")

// GS iterates over the equations, clamping each accumulated impulse to its
// force bounds. Iteration stops early once the squared sum of impulse
// corrections drops below Tolerance squared.
type GS struct {
	Iterations int
	Tolerance  float64

	// UseGlobalParams applies Stiffness and Relaxation to every equation
	// instead of each equation's own values.
	UseGlobalParams bool
	Stiffness       float64
	Relaxation      float64

	// LastIterations is the iteration count used by the previous Solve.
	LastIterations int

	equations []equation.Equation
	lambda    []float64
	bs        []float64
	invCs     []float64

	bodies []*body.Body
	seen   map[*body.Body]struct{}
}

func NewGS() *GS {
	return &GS{
		Iterations: DefaultIterations,
		Tolerance:  DefaultTolerance,
		Stiffness:  equation.DefaultStiffness,
		Relaxation: equation.DefaultRelaxation,
	}
}

func (s *GS) AddEquation(eq equation.Equation) {
	s.equations = append(s.equations, eq)
}

// RemoveAllEquations drops every equation while keeping the buffers.
func (s *GS) RemoveAllEquations() {
	clear(s.equations)
	s.equations = s.equations[:0]
}

func (s *GS) Len() int { return len(s.equations) }

func (s *GS) Equations() []equation.Equation { return s.equations }

// Solve applies impulses to the bodies of w and to any other body an
// equation references, registered or not.
func (s *GS) Solve(h float64, w *world.World) error {
	bodies := s.collectBodies(w)
	n := len(s.equations)

	for _, b := range bodies {
		b.VLambda[0], b.VLambda[1] = 0, 0
		b.WLambda = 0
	}

	s.LastIterations = 0
	if n == 0 {
		return nil
	}

	s.lambda = resize(s.lambda, n)
	s.bs = resize(s.bs, n)
	s.invCs = resize(s.invCs, n)

	for i, eq := range s.equations {
		row := eq.Row()
		if s.UseGlobalParams {
			row.Stiffness = s.Stiffness
			row.Relaxation = s.Relaxation
		}
		a, b, eps := row.SpookParams(h)
		s.lambda[i] = 0
		s.bs[i] = row.ComputeB(a, b, h)
		s.invCs[i] = 1 / row.ComputeC(eps)
	}

	tolSq := s.Tolerance * s.Tolerance
	for iter := 0; iter < s.Iterations; iter++ {
		s.LastIterations = iter + 1
		var deltaSq float64

		for i, eq := range s.equations {
			row := eq.Row()
			_, _, eps := row.SpookParams(h)

			lambdaj := s.lambda[i]
			gwlambda := row.ComputeGWlambda()
			deltalambda := s.invCs[i] * (s.bs[i] - gwlambda - eps*lambdaj)

			minImpulse, maxImpulse := row.MinForce*h, row.MaxForce*h
			if lambdaj+deltalambda < minImpulse {
				deltalambda = minImpulse - lambdaj
			} else if lambdaj+deltalambda > maxImpulse {
				deltalambda = maxImpulse - lambdaj
			}

			s.lambda[i] += deltalambda
			deltaSq += deltalambda * deltalambda
			row.AddToWlambda(deltalambda)
		}

		if deltaSq <= tolSq {
			break
		}
	}

	for i, eq := range s.equations {
		m := s.lambda[i] / h
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: %s equation %d", ErrNonFinite, eq.Kind(), i)
		}
		eq.Row().Multiplier = m
	}

	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(b.VLambda)
		b.AngularVelocity += b.WLambda
	}

	return nil
}

// collectBodies lists the world's bodies followed by equation bodies
// missing from it, each once.
func (s *GS) collectBodies(w *world.World) []*body.Body {
	if len(s.equations) == 0 {
		return w.Bodies()
	}
	if s.seen == nil {
		s.seen = make(map[*body.Body]struct{})
	}
	clear(s.seen)
	s.bodies = s.bodies[:0]

	add := func(b *body.Body) {
		if b == nil {
			return
		}
		if _, ok := s.seen[b]; ok {
			return
		}
		s.seen[b] = struct{}{}
		s.bodies = append(s.bodies, b)
	}
	for _, b := range w.Bodies() {
		add(b)
	}
	for _, eq := range s.equations {
		row := eq.Row()
		add(row.BodyA)
		add(row.BodyB)
	}
	return s.bodies
}

func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
