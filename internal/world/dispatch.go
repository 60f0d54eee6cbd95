package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/shape"
)

// operand is one side of a shape pair, posed in world space.
type operand struct {
	body  *body.Body
	shape shape.Shape
	pos   mgl64.Vec2
	angle float64
}

// dispatchScratch is reused across pairs so dispatch does not allocate.
type dispatchScratch struct {
	i, j operand
}

type pairFunc func(np Nearphase, i, j *operand)

// dispatchEntry names the routine for an ordered kind pair. With swap set
// the routine is called with j first.
type dispatchEntry struct {
	fn   pairFunc
	swap bool
}

// dispatchTable is indexed by [kind on bi][kind on bj]. Zero entries are
// pairs with no contact routine and are skipped.
var dispatchTable = [shape.NumKinds][shape.NumKinds]dispatchEntry{
	shape.KindCircle: {
		shape.KindCircle:    {fn: circleCircle},
		shape.KindParticle:  {fn: circleParticle},
		shape.KindPlane:     {fn: circlePlane},
		shape.KindRectangle: {fn: circleConvex},
		shape.KindConvex:    {fn: circleConvex},
		shape.KindLine:      {fn: circleLine},
	},
	shape.KindParticle: {
		shape.KindCircle:    {fn: circleParticle, swap: true},
		shape.KindPlane:     {fn: particlePlane},
		shape.KindRectangle: {fn: particleConvex},
		shape.KindConvex:    {fn: particleConvex},
	},
	shape.KindPlane: {
		shape.KindCircle:    {fn: circlePlane, swap: true},
		shape.KindParticle:  {fn: particlePlane, swap: true},
		shape.KindRectangle: {fn: convexPlane, swap: true},
		shape.KindConvex:    {fn: convexPlane, swap: true},
		shape.KindLine:      {fn: planeLine},
	},
	shape.KindRectangle: {
		shape.KindCircle:    {fn: circleConvex, swap: true},
		shape.KindParticle:  {fn: particleConvex, swap: true},
		shape.KindPlane:     {fn: convexPlane},
		shape.KindRectangle: {fn: convexConvex},
		shape.KindConvex:    {fn: convexConvex},
	},
	shape.KindConvex: {
		shape.KindCircle:    {fn: circleConvex, swap: true},
		shape.KindParticle:  {fn: particleConvex, swap: true},
		shape.KindPlane:     {fn: convexPlane},
		shape.KindRectangle: {fn: convexConvex},
		shape.KindConvex:    {fn: convexConvex},
	},
	shape.KindLine: {
		shape.KindCircle: {fn: circleLine, swap: true},
		shape.KindPlane:  {fn: planeLine, swap: true},
	},
}

// lookupDispatch reports the table entry for an ordered kind pair.
func lookupDispatch(ki, kj shape.Kind) (dispatchEntry, bool) {
	if ki < 0 || ki >= shape.NumKinds || kj < 0 || kj >= shape.NumKinds {
		return dispatchEntry{}, false
	}
	e := dispatchTable[ki][kj]
	return e, e.fn != nil
}

// dispatchShapes runs the contact routine for one shape pair and reports
// whether one existed.
func dispatchShapes(np Nearphase, i, j *operand) bool {
	e, ok := lookupDispatch(i.shape.Kind(), j.shape.Kind())
	if !ok {
		return false
	}
	if e.swap {
		e.fn(np, j, i)
	} else {
		e.fn(np, i, j)
	}
	return true
}

// narrowphasePair generates equations for every shape pair of bi and bj.
// It returns how many shape pairs had no routine.
func (w *World) narrowphasePair(bi, bj *body.Body) (skipped int) {
	reducedMass := 0.0
	if inv := bi.InvMass + bj.InvMass; inv > 0 {
		reducedMass = 1 / inv
	}
	mug := w.Friction * w.Gravity.Len() * reducedMass
	doFriction := w.Friction > 0

	s := &w.scratch
	for k := range bi.Shapes {
		s.i.body = bi
		s.i.shape = bi.Shapes[k].Shape
		s.i.pos, s.i.angle = bi.ShapePose(k)

		for l := range bj.Shapes {
			s.j.body = bj
			s.j.shape = bj.Shapes[l].Shape
			s.j.pos, s.j.angle = bj.ShapePose(l)

			w.Nearphase.SetEnableFriction(doFriction)
			w.Nearphase.SetSlipForce(mug)

			if !dispatchShapes(w.Nearphase, &s.i, &s.j) {
				skipped++
			}
		}
	}
	s.i, s.j = operand{}, operand{}
	return skipped
}

func circleCircle(np Nearphase, i, j *operand) {
	np.CircleCircle(i.body, i.shape.(*shape.Circle), i.pos, i.angle, j.body, j.shape.(*shape.Circle), j.pos, j.angle)
}

func circleParticle(np Nearphase, i, j *operand) {
	np.CircleParticle(i.body, i.shape.(*shape.Circle), i.pos, i.angle, j.body, j.shape.(*shape.Particle), j.pos, j.angle)
}

func circlePlane(np Nearphase, i, j *operand) {
	np.CirclePlane(i.body, i.shape.(*shape.Circle), i.pos, i.angle, j.body, j.shape.(*shape.Plane), j.pos, j.angle)
}

func circleConvex(np Nearphase, i, j *operand) {
	np.CircleConvex(i.body, i.shape.(*shape.Circle), i.pos, i.angle, j.body, j.shape.(shape.Polygon), j.pos, j.angle)
}

func circleLine(np Nearphase, i, j *operand) {
	np.CircleLine(i.body, i.shape.(*shape.Circle), i.pos, i.angle, j.body, j.shape.(*shape.Line), j.pos, j.angle)
}

func particlePlane(np Nearphase, i, j *operand) {
	np.ParticlePlane(i.body, i.shape.(*shape.Particle), i.pos, i.angle, j.body, j.shape.(*shape.Plane), j.pos, j.angle)
}

func particleConvex(np Nearphase, i, j *operand) {
	np.ParticleConvex(i.body, i.shape.(*shape.Particle), i.pos, i.angle, j.body, j.shape.(shape.Polygon), j.pos, j.angle)
}

func convexPlane(np Nearphase, i, j *operand) {
	np.ConvexPlane(i.body, i.shape.(shape.Polygon), i.pos, i.angle, j.body, j.shape.(*shape.Plane), j.pos, j.angle)
}

func convexConvex(np Nearphase, i, j *operand) {
	np.ConvexConvex(i.body, i.shape.(shape.Polygon), i.pos, i.angle, j.body, j.shape.(shape.Polygon), j.pos, j.angle)
}

func planeLine(np Nearphase, i, j *operand) {
	np.PlaneLine(i.body, i.shape.(*shape.Plane), i.pos, i.angle, j.body, j.shape.(*shape.Line), j.pos, j.angle)
}
