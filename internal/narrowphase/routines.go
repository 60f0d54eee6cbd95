package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidsim/internal/body"
	"github.com/san-kum/rigidsim/internal/shape"
	"github.com/san-kum/rigidsim/internal/vec"
)

func (n *Narrowphase) CircleCircle(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Circle, xj mgl64.Vec2, aj float64) {
	n.circleRound(bi, si.Radius, xi, bj, sj.Radius, xj)
}

func (n *Narrowphase) CircleParticle(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Particle, xj mgl64.Vec2, aj float64) {
	n.circleRound(bi, si.Radius, xi, bj, 0, xj)
}

func (n *Narrowphase) circleRound(bi *body.Body, ri float64, xi mgl64.Vec2, bj *body.Body, rj float64, xj mgl64.Vec2) {
	d := xj.Sub(xi)
	dist := d.Len()
	if dist > ri+rj {
		return
	}
	normal := vec.Normalize(d, vec.UnitX)
	n.addContact(bi, bj, xi.Add(normal.Mul(ri)), xj.Sub(normal.Mul(rj)), normal)
}

func (n *Narrowphase) CirclePlane(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64) {
	planeNormal := vec.Rotate(sj.Normal(), aj)
	dist := xi.Sub(xj).Dot(planeNormal)
	if dist > si.Radius {
		return
	}
	pa := xi.Sub(planeNormal.Mul(si.Radius))
	pb := xi.Sub(planeNormal.Mul(dist))
	n.addContact(bi, bj, pa, pb, planeNormal.Mul(-1))
}

func (n *Narrowphase) CircleLine(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Line, xj mgl64.Vec2, aj float64) {
	l0, l1 := sj.Endpoints()
	p := vec.ClosestPointOnSegment(xi, vec.ToGlobal(l0, xj, aj), vec.ToGlobal(l1, xj, aj))

	d := xi.Sub(p)
	dist := d.Len()
	if dist > si.Radius {
		return
	}
	out := vec.Normalize(d, vec.Rotate(vec.UnitY, aj))
	n.addContact(bi, bj, xi.Sub(out.Mul(si.Radius)), p, out.Mul(-1))
}

func (n *Narrowphase) CircleConvex(bi *body.Body, si *shape.Circle, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64) {
	verts, normals := n.posePolygon(0, sj, xj, aj)

	// deepest separating edge
	edge, sep := -1, -1e300
	for k, v := range verts {
		s := xi.Sub(v).Dot(normals[k])
		if s > si.Radius {
			return
		}
		if s > sep {
			edge, sep = k, s
		}
	}

	var out, p mgl64.Vec2
	if sep <= 0 {
		// centre inside the polygon
		out = normals[edge]
		p = xi.Sub(out.Mul(sep))
	} else {
		best := 1e300
		for k, v := range verts {
			q := vec.ClosestPointOnSegment(xi, v, verts[(k+1)%len(verts)])
			if dq := xi.Sub(q).LenSqr(); dq < best {
				best, p = dq, q
			}
		}
		d := xi.Sub(p)
		if d.Len() > si.Radius {
			return
		}
		out = vec.Normalize(d, normals[edge])
	}
	n.addContact(bi, bj, xi.Sub(out.Mul(si.Radius)), p, out.Mul(-1))
}

func (n *Narrowphase) ParticlePlane(bi *body.Body, si *shape.Particle, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64) {
	planeNormal := vec.Rotate(sj.Normal(), aj)
	dist := xi.Sub(xj).Dot(planeNormal)
	if dist > 0 {
		return
	}
	n.addContact(bi, bj, xi, xi.Sub(planeNormal.Mul(dist)), planeNormal.Mul(-1))
}

func (n *Narrowphase) ParticleConvex(bi *body.Body, si *shape.Particle, xi mgl64.Vec2, ai float64, bj *body.Body, sj shape.Polygon, xj mgl64.Vec2, aj float64) {
	verts, normals := n.posePolygon(0, sj, xj, aj)

	edge, sep := -1, -1e300
	for k, v := range verts {
		s := xi.Sub(v).Dot(normals[k])
		if s > 0 {
			return
		}
		if s > sep {
			edge, sep = k, s
		}
	}
	out := normals[edge]
	n.addContact(bi, bj, xi, xi.Sub(out.Mul(sep)), out.Mul(-1))
}

func (n *Narrowphase) ConvexPlane(bi *body.Body, si shape.Polygon, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Plane, xj mgl64.Vec2, aj float64) {
	planeNormal := vec.Rotate(sj.Normal(), aj)
	for _, local := range si.Vertices() {
		v := vec.ToGlobal(local, xi, ai)
		dist := v.Sub(xj).Dot(planeNormal)
		if dist > 0 {
			continue
		}
		n.addContact(bi, bj, v, v.Sub(planeNormal.Mul(dist)), planeNormal.Mul(-1))
	}
}

func (n *Narrowphase) PlaneLine(bi *body.Body, si *shape.Plane, xi mgl64.Vec2, ai float64, bj *body.Body, sj *shape.Line, xj mgl64.Vec2, aj float64) {
	planeNormal := vec.Rotate(si.Normal(), ai)
	l0, l1 := sj.Endpoints()
	for _, local := range [2]mgl64.Vec2{l0, l1} {
		v := vec.ToGlobal(local, xj, aj)
		dist := v.Sub(xi).Dot(planeNormal)
		if dist > 0 {
			continue
		}
		n.addContact(bi, bj, v.Sub(planeNormal.Mul(dist)), v, planeNormal)
	}
}

// posePolygon writes a polygon's world vertices and normals into one of the
// two scratch slots and returns them. The slices are valid until the slot is
// reused.
func (n *Narrowphase) posePolygon(slot int, p shape.Polygon, pos mgl64.Vec2, angle float64) ([]mgl64.Vec2, []mgl64.Vec2) {
	lv, ln := p.Vertices(), p.Normals()
	buf := &n.scratch[slot]
	buf.verts = append(buf.verts[:0], lv...)
	buf.normals = append(buf.normals[:0], ln...)
	for k := range buf.verts {
		buf.verts[k] = vec.ToGlobal(lv[k], pos, angle)
		buf.normals[k] = vec.Rotate(ln[k], angle)
	}
	return buf.verts, buf.normals
}
