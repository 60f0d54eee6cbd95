package analysis

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/viz"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisAngle
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisAngle:
		return "angle"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

func ParseAxis(s string) (Axis, error) {
	for _, a := range []Axis{AxisX, AxisY, AxisAngle} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q (x, y, angle)", s)
}

type Point struct{ X, Y float64 }

// Portrait pairs a coordinate with its rate of change.
type Portrait struct {
	Axis   Axis
	Points []Point
}

// Series returns the coordinate of body idx along axis, one value per frame.
func Series(frames []sim.Frame, idx int, axis Axis) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if idx >= len(f) {
			break
		}
		q, _ := coordinate(f[idx], axis)
		out = append(out, q)
	}
	return out
}

// BodyPortrait collects (coordinate, velocity) points of body idx.
func BodyPortrait(frames []sim.Frame, idx int, axis Axis) *Portrait {
	p := &Portrait{Axis: axis, Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		if idx >= len(f) {
			break
		}
		q, v := coordinate(f[idx], axis)
		p.Points = append(p.Points, Point{q, v})
	}
	return p
}

func coordinate(s sim.BodyState, axis Axis) (float64, float64) {
	switch axis {
	case AxisX:
		return s.X, s.VX
	case AxisAngle:
		return s.Angle, s.Omega
	default:
		return s.Y, s.VY
	}
}

// Bounds returns the padded extent of points. Degenerate spans are widened
// to one unit.
func Bounds(points []Point) (minX, maxX, minY, maxY float64) {
	if len(points) == 0 {
		return 0, 1, 0, 1
	}
	minX, maxX = points[0].X, points[0].X
	minY, maxY = points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, maxX + rangeX*0.1, minY - rangeY*0.1, maxY + rangeY*0.1
}

// ASCII plots the portrait into a braille canvas of width x height cells,
// with axes drawn where they cross the visible area.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 {
		return ""
	}

	c := viz.NewCanvas(width, height)
	minX, maxX, minY, maxY := Bounds(p.Points)
	pw, ph := float64(c.PixelWidth()-1), float64(c.PixelHeight()-1)
	col := func(x float64) int { return int((x - minX) / (maxX - minX) * pw) }
	row := func(y float64) int { return int(ph - (y-minY)/(maxY-minY)*ph) }

	if minX <= 0 && maxX >= 0 {
		c.DrawLine(col(0), 0, col(0), c.PixelHeight()-1)
	}
	if minY <= 0 && maxY >= 0 {
		c.DrawLine(0, row(0), c.PixelWidth()-1, row(0))
	}

	prevX, prevY := col(p.Points[0].X), row(p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		x, y := col(pt.X), row(pt.Y)
		c.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}
	c.Set(prevX, prevY)

	return c.String()
}
