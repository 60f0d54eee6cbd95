package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/vec"
	"github.com/san-kum/rigidsim/internal/world"
)

// DrawWorld renders every shape, spring and constraint of w.
func DrawWorld(c *Canvas, v Viewport, w *world.World) {
	for _, b := range w.Bodies() {
		for i := range b.Shapes {
			pos, angle := b.ShapePose(i)
			drawShape(c, v, b.Shapes[i].Shape, pos, angle)
		}
		if len(b.Shapes) == 0 {
			x, y := v.Project(c, b.Position[0], b.Position[1])
			c.DrawCircle(x, y, 1)
		}
	}

	for _, s := range w.Springs() {
		drawSegment(c, v, s.BodyA.ToWorldFrame(s.LocalAnchorA), s.BodyB.ToWorldFrame(s.LocalAnchorB))
	}
	for _, con := range w.Constraints() {
		a, b := con.Bodies()
		drawSegment(c, v, a.Position, b.Position)
	}
}

func drawSegment(c *Canvas, v Viewport, a, b mgl64.Vec2) {
	if !drawable(c, v, a) || !drawable(c, v, b) {
		return
	}
	x0, y0 := v.Project(c, a[0], a[1])
	x1, y1 := v.Project(c, b[0], b[1])
	c.DrawLine(x0, y0, x1, y1)
}

func drawShape(c *Canvas, v Viewport, s shape.Shape, pos mgl64.Vec2, angle float64) {
	switch s := s.(type) {
	case *shape.Circle:
		if !drawable(c, v, pos) {
			return
		}
		x, y := v.Project(c, pos[0], pos[1])
		r := int(math.Round(s.Radius * v.Scale))
		c.DrawCircle(x, y, r)
		// a spoke shows rotation
		drawSegment(c, v, pos, vec.ToGlobal(mgl64.Vec2{s.Radius, 0}, pos, angle))
	case *shape.Particle:
		x, y := v.Project(c, pos[0], pos[1])
		c.Set(x, y)
	case *shape.Plane:
		// long enough to cross any sensible viewport
		span := float64(c.PixelWidth()+c.PixelHeight()) / v.Scale
		tangent := vec.Rotate(vec.UnitX, angle).Mul(span)
		drawSegment(c, v, pos.Sub(tangent), pos.Add(tangent))
	case *shape.Line:
		a, b := s.Endpoints()
		drawSegment(c, v, vec.ToGlobal(a, pos, angle), vec.ToGlobal(b, pos, angle))
	case shape.Polygon:
		vs := s.Vertices()
		for i := range vs {
			a := vec.ToGlobal(vs[i], pos, angle)
			b := vec.ToGlobal(vs[(i+1)%len(vs)], pos, angle)
			drawSegment(c, v, a, b)
		}
	}
}

// drawable reports whether p is finite and within a few canvas spans of
// the view.
func drawable(c *Canvas, v Viewport, p mgl64.Vec2) bool {
	limit := float64(4*(c.PixelWidth()+c.PixelHeight())) / v.Scale
	return math.Abs(p[0]-v.CenterX) < limit && math.Abs(p[1]-v.CenterY) < limit
}

// FitViewport centres the bounded bodies of w and picks a scale that keeps
// them on the canvas.
func FitViewport(c *Canvas, w *world.World) Viewport {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range w.Bodies() {
		r := b.BoundingRadius()
		if math.IsInf(r, 1) {
			minY = math.Min(minY, b.Position[1])
			continue
		}
		minX = math.Min(minX, b.Position[0]-r)
		maxX = math.Max(maxX, b.Position[0]+r)
		minY = math.Min(minY, b.Position[1]-r)
		maxY = math.Max(maxY, b.Position[1]+r)
	}
	if math.IsInf(minX, 1) {
		return Viewport{Scale: 10}
	}
	if math.IsInf(maxY, -1) {
		maxY = minY + 1
	}

	// leave room for bodies to move
	spanX := (maxX - minX) * 2
	spanY := (maxY - minY) * 1.5
	scale := math.Min(float64(c.PixelWidth())/math.Max(spanX, 1), float64(c.PixelHeight())/math.Max(spanY, 1))
	return Viewport{
		CenterX: (minX + maxX) / 2,
		CenterY: (minY + maxY) / 2,
		Scale:   math.Max(1, scale),
	}
}
