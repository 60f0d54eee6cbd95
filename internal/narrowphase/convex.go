package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/vec"
)

// referenceBias prefers the first polygon as reference face when both
// separations are nearly equal, which keeps contacts stable between steps.
const referenceBias = 1e-4

// ConvexConvex finds the axis of least penetration and clips the incident
// edge of one polygon against the reference face of the other, yielding up
// to two contacts.
func (n *Narrowphase) ConvexConvex(bi *body.Body, si shape.Polygon, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64) {
	vi, ni := n.posePolygon(0, si, xi, ai)
	vj, nj := n.posePolygon(1, sj, xj, aj)

	edgeI, sepI := maxSeparation(vi, ni, vj)
	if sepI > 0 {
		return
	}
	edgeJ, sepJ := maxSeparation(vj, nj, vi)
	if sepJ > 0 {
		return
	}

	refV, refN, incV, incN, edge := vi, ni, vj, nj, edgeI
	flip := false
	if sepJ > sepI+referenceBias {
		refV, refN, incV, incN, edge = vj, nj, vi, ni, edgeJ
		flip = true
	}

	normal := refN[edge]
	r1 := refV[edge]
	r2 := refV[(edge+1)%len(refV)]

	// incident edge: the one most anti-parallel to the reference normal
	inc, minDot := 0, 1e300
	for k, m := range incN {
		if d := m.Dot(normal); d < minDot {
			inc, minDot = k, d
		}
	}
	clip := [2]mgl64.Vec2{incV[inc], incV[(inc+1)%len(incV)]}

	tangent := vec.Normalize(r2.Sub(r1), vec.Perp(normal))
	var ok bool
	if clip, ok = clipSegment(clip, tangent.Mul(-1), -tangent.Dot(r1)); !ok {
		return
	}
	if clip, ok = clipSegment(clip, tangent, tangent.Dot(r2)); !ok {
		return
	}

	for _, p := range clip {
		sep := p.Sub(r1).Dot(normal)
		if sep > 0 {
			continue
		}
		onRef := p.Sub(normal.Mul(sep))
		if flip {
			n.addContact(bi, bj, p, onRef, normal.Mul(-1))
		} else {
			n.addContact(bi, bj, onRef, p, normal)
		}
	}
}

// maxSeparation returns the edge of a whose outward normal separates b the
// most, and that separation. Negative means overlap along every edge.
func maxSeparation(av, an, bv []mgl64.Vec2) (int, float64) {
	best, bestSep := 0, -1e300
	for k, normal := range an {
		sep := 1e300
		for _, v := range bv {
			if s := v.Sub(av[k]).Dot(normal); s < sep {
				sep = s
			}
		}
		if sep > bestSep {
			best, bestSep = k, sep
		}
	}
	return best, bestSep
}

// clipSegment keeps the part of seg with normal.p <= offset.
func clipSegment(seg [2]mgl64.Vec2, normal mgl64.Vec2, offset float64) ([2]mgl64.Vec2, bool) {
	d0 := normal.Dot(seg[0]) - offset
	d1 := normal.Dot(seg[1]) - offset

	var out [2]mgl64.Vec2
	count := 0
	if d0 <= 0 {
		out[count] = seg[0]
		count++
	}
	if d1 <= 0 {
		out[count] = seg[1]
		count++
	}
	if d0*d1 < 0 && count < 2 {
		t := d0 / (d0 - d1)
		out[count] = seg[0].Add(seg[1].Sub(seg[0]).Mul(t))
		count++
	}
	return out, count == 2
}
