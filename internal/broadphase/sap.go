package broadphase

import (
	"math"
	"sort"

	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/world"
)

// SweepAndPrune sorts bounding intervals along X and only tests bodies whose
// intervals overlap. Unbounded bodies (planes) are tested against everything.
// Output order is deterministic for a given body order.
type SweepAndPrune struct {
	intervals []interval
	unbounded []int
	pairs     []*body.Body
	seen      map[[2]int]struct{}
}

type interval struct {
	min, max float64
	index    int
}

func NewSweepAndPrune() *SweepAndPrune {
	return &SweepAndPrune{seen: make(map[[2]int]struct{})}
}

func (s *SweepAndPrune) CollisionPairs(w *world.World) []*body.Body {
	bodies := w.Bodies()
	s.intervals = s.intervals[:0]
	s.unbounded = s.unbounded[:0]
	s.pairs = s.pairs[:0]
	clear(s.seen)

	for i, b := range bodies {
		if len(b.Shapes) == 0 {
			continue
		}
		r := b.BoundingRadius()
		if math.IsInf(r, 1) {
			s.unbounded = append(s.unbounded, i)
			continue
		}
		s.intervals = append(s.intervals, interval{min: b.Position[0] - r, max: b.Position[0] + r, index: i})
	}

	sort.SliceStable(s.intervals, func(a, b int) bool {
		if s.intervals[a].min != s.intervals[b].min {
			return s.intervals[a].min < s.intervals[b].min
		}
		return s.intervals[a].index < s.intervals[b].index
	})

	for a := 0; a < len(s.intervals); a++ {
		ia := s.intervals[a]
		for b := a + 1; b < len(s.intervals); b++ {
			ib := s.intervals[b]
			if ib.min > ia.max {
				break
			}
			s.add(bodies, ia.index, ib.index)
		}
	}

	for _, u := range s.unbounded {
		for i := range bodies {
			if i != u {
				s.add(bodies, u, i)
			}
		}
	}

	return s.pairs
}

func (s *SweepAndPrune) add(bodies []*body.Body, i, j int) {
	if i > j {
		i, j = j, i
	}
	key := [2]int{i, j}
	if _, dup := s.seen[key]; dup {
		return
	}
	if !CanCollide(bodies[i], bodies[j]) {
		return
	}
	s.seen[key] = struct{}{}
	s.pairs = append(s.pairs, bodies[i], bodies[j])
}
