package shape

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrDegeneratePolygon = errors.New("shape: polygon needs at least 3 non-collinear vertices")

// Convex is a convex polygon. Vertices are stored counter-clockwise and
// re-centred on the polygon centroid.
type Convex struct {
	vertices []mgl64.Vec2
	normals  []mgl64.Vec2
	radius   float64
	area     float64
	inertia  float64 // per unit mass, about the centroid
}

// NewConvex builds a polygon from a vertex loop in either winding.
func NewConvex(vertices []mgl64.Vec2) (*Convex, error) {
	if len(vertices) < 3 {
		return nil, ErrDegeneratePolygon
	}
	vs := make([]mgl64.Vec2, len(vertices))
	copy(vs, vertices)

	area := signedArea(vs)
	if math.Abs(area) < 1e-12 {
		return nil, ErrDegeneratePolygon
	}
	if area < 0 {
		for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
			vs[i], vs[j] = vs[j], vs[i]
		}
		area = -area
	}

	centroid := polygonCentroid(vs, area)
	for i := range vs {
		vs[i] = vs[i].Sub(centroid)
	}

	c := &Convex{vertices: vs, area: area}
	c.finish()
	return c, nil
}

func (c *Convex) finish() {
	n := len(c.vertices)
	c.normals = make([]mgl64.Vec2, n)
	c.radius = 0
	for i, v := range c.vertices {
		e := c.vertices[(i+1)%n].Sub(v)
		c.normals[i] = mgl64.Vec2{e[1], -e[0]}.Normalize()
		if l := v.Len(); l > c.radius {
			c.radius = l
		}
	}

	var num, den float64
	for i, a := range c.vertices {
		b := c.vertices[(i+1)%n]
		cr := math.Abs(a[0]*b[1] - a[1]*b[0])
		num += cr * (a.Dot(a) + a.Dot(b) + b.Dot(b))
		den += cr
	}
	if den > 0 {
		c.inertia = num / (6 * den)
	}
}

func (c *Convex) Kind() Kind                   { return KindConvex }
func (c *Convex) BoundingRadius() float64      { return c.radius }
func (c *Convex) Inertia(mass float64) float64 { return mass * c.inertia }
func (c *Convex) Area() float64                { return c.area }
func (c *Convex) Vertices() []mgl64.Vec2       { return c.vertices }
func (c *Convex) Normals() []mgl64.Vec2        { return c.normals }

// Rectangle is an axis-aligned box in its own frame. It collides through the
// convex routines.
type Rectangle struct {
	Convex
	Width, Height float64
}

func NewRectangle(width, height float64) *Rectangle {
	w, h := width/2, height/2
	r := &Rectangle{Width: width, Height: height}
	r.vertices = []mgl64.Vec2{{-w, -h}, {w, -h}, {w, h}, {-w, h}}
	r.area = width * height
	r.finish()
	return r
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Inertia(mass float64) float64 {
	return mass * (r.Width*r.Width + r.Height*r.Height) / 12
}

func signedArea(vs []mgl64.Vec2) float64 {
	var a float64
	for i, v := range vs {
		w := vs[(i+1)%len(vs)]
		a += v[0]*w[1] - w[0]*v[1]
	}
	return a / 2
}

func polygonCentroid(vs []mgl64.Vec2, area float64) mgl64.Vec2 {
	var cx, cy float64
	for i, v := range vs {
		w := vs[(i+1)%len(vs)]
		cr := v[0]*w[1] - w[0]*v[1]
		cx += (v[0] + w[0]) * cr
		cy += (v[1] + w[1]) * cr
	}
	return mgl64.Vec2{cx / (6 * area), cy / (6 * area)}
}
