package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/viz"
)

var palette = []string{"#00ff88", "#ffaa00", "#44aaff", "#ff5577", "#cc88ff", "#ffff66"}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.PixelWidth()) * scale
	height := float64(canvas.PixelHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectorySVG draws the path of every body that moves during the run,
// one colour per body, on shared axes.
func TrajectorySVG(w io.Writer, frames []sim.Frame, width, height int) error {
	if len(frames) < 2 {
		return fmt.Errorf("export: need at least 2 frames, got %d", len(frames))
	}

	var paths [][]analysis.Point
	var all []analysis.Point
	for idx := range frames[0] {
		path := make([]analysis.Point, 0, len(frames))
		for _, f := range frames {
			if idx < len(f) {
				path = append(path, analysis.Point{X: f[idx].X, Y: f[idx].Y})
			}
		}
		if !moves(path) {
			continue
		}
		paths = append(paths, path)
		all = append(all, path...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("export: no moving bodies")
	}

	minX, maxX, minY, maxY := analysis.Bounds(all)
	rangeX, rangeY := maxX-minX, maxY-minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, path := range paths {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, palette[i%len(palette)])
		for j, p := range path {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	_, err := io.WriteString(w, sb.String())
	return err
}

func moves(path []analysis.Point) bool {
	for _, p := range path[1:] {
		if p != path[0] {
			return true
		}
	}
	return false
}
