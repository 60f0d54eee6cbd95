// Package shape defines the collision geometry that can be attached to a body.
//
// Shapes are immutable once built. The simulator only reads them to compute
// world-space poses and contacts; the [Kind] tag drives narrowphase dispatch.
package shape

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Kind int

const (
	KindCircle Kind = iota
	KindParticle
	KindPlane
	KindRectangle
	KindConvex
	KindLine

	NumKinds
)

var kindNames = [NumKinds]string{
	KindCircle:    "circle",
	KindParticle:  "particle",
	KindPlane:     "plane",
	KindRectangle: "rectangle",
	KindConvex:    "convex",
	KindLine:      "line",
}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a lower-case kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("shape: unknown kind %q", name)
}

type Shape interface {
	Kind() Kind
	// BoundingRadius is the radius of a circle around the shape origin that
	// contains the whole shape. Unbounded shapes report +Inf.
	BoundingRadius() float64
	// Inertia is the moment of inertia about the shape origin for the given mass.
	Inertia(mass float64) float64
	Area() float64
}

// Polygon is implemented by shapes that collide as convex polygons.
type Polygon interface {
	Shape
	// Vertices are counter-clockwise in the shape frame.
	Vertices() []mgl64.Vec2
	// Normals are the outward unit normals; Normals()[i] belongs to the edge
	// from vertex i to vertex i+1.
	Normals() []mgl64.Vec2
}

type Circle struct {
	Radius float64
}

func NewCircle(radius float64) *Circle { return &Circle{Radius: radius} }

func (c *Circle) Kind() Kind                   { return KindCircle }
func (c *Circle) BoundingRadius() float64      { return c.Radius }
func (c *Circle) Inertia(mass float64) float64 { return mass * c.Radius * c.Radius / 2 }
func (c *Circle) Area() float64                { return math.Pi * c.Radius * c.Radius }

// Particle is a zero-size point.
type Particle struct{}

func NewParticle() *Particle { return &Particle{} }

func (p *Particle) Kind() Kind                   { return KindParticle }
func (p *Particle) BoundingRadius() float64      { return 0 }
func (p *Particle) Inertia(mass float64) float64 { return 0 }
func (p *Particle) Area() float64                { return 0 }

// Plane is the half-space below a line through the shape origin. Its outward
// normal is +Y in the shape frame.
type Plane struct{}

func NewPlane() *Plane { return &Plane{} }

func (p *Plane) Kind() Kind                   { return KindPlane }
func (p *Plane) BoundingRadius() float64      { return math.Inf(1) }
func (p *Plane) Inertia(mass float64) float64 { return 0 }
func (p *Plane) Area() float64                { return 0 }

// Normal is the plane's outward normal in its own frame.
func (p *Plane) Normal() mgl64.Vec2 { return mgl64.Vec2{0, 1} }

// Line is a segment of the given length centred on the shape origin and
// lying along the local X axis.
type Line struct {
	Length float64
}

func NewLine(length float64) *Line { return &Line{Length: length} }

func (l *Line) Kind() Kind                   { return KindLine }
func (l *Line) BoundingRadius() float64      { return l.Length / 2 }
func (l *Line) Inertia(mass float64) float64 { return mass * l.Length * l.Length / 12 }
func (l *Line) Area() float64                { return 0 }

// Endpoints returns the two ends of the segment in the shape frame.
func (l *Line) Endpoints() (mgl64.Vec2, mgl64.Vec2) {
	h := l.Length / 2
	return mgl64.Vec2{-h, 0}, mgl64.Vec2{h, 0}
}
