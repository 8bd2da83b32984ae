package subdivide

import (
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

func split(c Case, ts []tri, line geom.Segment) Result {
	return Result{Case: c, Faces: faces(ts), Line: line, HasLine: true}
}

// ByPlane splits f by an infinite plane. Crossing points are computed with
// geom.EdgePoint, so two faces sharing an edge receive the same point and
// the Line of the result matches geom.Plane.IntersectTriangle exactly.
func ByPlane(f mesh.Face, p geom.Plane) Result {
	t := fromFace(f)
	var d [3]float64
	var s [3]int
	var pos, neg, zero int
	for i := range t {
		d[i] = p.SignedDistance(t[i].p)
		s[i] = geom.Sign(d[i])
		switch s[i] {
		case 1:
			pos++
		case -1:
			neg++
		default:
			zero++
		}
	}

	switch {
	case zero == 3:
		return unchanged(Coplanar, f)

	case pos == 0 || neg == 0:
		if zero != 2 {
			return unchanged(NoIntersection, f)
		}
		i := 0
		for s[i] == 0 {
			i++
		}
		r := unchanged(AlongOneEdge, f)
		r.Line = geom.Segment{A: t.at(i + 1).p, B: t.at(i + 2).p}
		r.HasLine = true
		return r

	case zero == 1:
		k := 0
		for s[k] != 0 {
			k++
		}
		b, c := t.at(k+1), t.at(k+2)
		q := exactEdgeCorner(b, c, geom.EdgePoint(b.p, c.p, d[(k+1)%3], d[(k+2)%3]))
		return split(VertexPlusEdge, splitVertexEdge(t, k, q), geom.Segment{A: t[k].p, B: q.p})

	default:
		k := 0
		for s[k] == s[(k+1)%3] || s[k] == s[(k+2)%3] {
			k++
		}
		a, b, c := t.at(k), t.at(k+1), t.at(k+2)
		q1 := exactEdgeCorner(a, b, geom.EdgePoint(a.p, b.p, d[k], d[(k+1)%3]))
		q2 := exactEdgeCorner(c, a, geom.EdgePoint(c.p, a.p, d[(k+2)%3], d[k]))
		return split(TwoEdgesClean, splitTwoEdges(t, k, q1, q2), geom.Segment{A: q1.p, B: q2.p})
	}
}

// ByLine splits f along a segment lying in its plane. The segment is first
// clipped to the face; the parts outside are ignored. Endpoints within
// tolerance of a vertex or an edge are snapped onto it.
func ByLine(f mesh.Face, line geom.Segment) Result {
	t := fromFace(f)
	tr := t.triangle()
	if tr.IsDegenerate() || line.IsDegenerate() {
		return unchanged(NoIntersection, f)
	}
	n := tr.Normal()
	pl := geom.NewPlane(tr.P1, n)
	a, b := pl.Project(line.A), pl.Project(line.B)

	lo, hi := 0.0, 1.0
	v := tr.Vertices()
	for i := 0; i < 3; i++ {
		da := edgeDistance(v[i], v[(i+1)%3], n, a)
		db := edgeDistance(v[i], v[(i+1)%3], n, b)
		inA, inB := da >= -geom.Tolerance, db >= -geom.Tolerance
		switch {
		case inA && inB:
			continue
		case !inA && !inB:
			return unchanged(NoIntersection, f)
		}
		c := -da / (db - da)
		if inA {
			hi = min(hi, c)
		} else {
			lo = max(lo, c)
		}
	}
	if hi <= lo {
		return unchanged(NoIntersection, f)
	}
	e0, e1 := geom.Lerp(a, b, lo), geom.Lerp(a, b, hi)
	if geom.PointsEqual(e0, e1) {
		return unchanged(NoIntersection, f)
	}

	l0, c0 := resolve(t, locate(tr, e0), e0)
	l1, c1 := resolve(t, locate(tr, e1), e1)
	if geom.PointsEqual(c0.p, c1.p) {
		return unchanged(NoIntersection, f)
	}
	seg := geom.Segment{A: c0.p, B: c1.p}
	if l1.kind < l0.kind {
		l0, l1 = l1, l0
		c0, c1 = c1, c0
	}

	along := func() Result {
		r := unchanged(AlongOneEdge, f)
		r.Line, r.HasLine = seg, true
		return r
	}

	switch {
	case l0.kind == atVertex && l1.kind == atVertex:
		return along()

	case l0.kind == atVertex && l1.kind == onEdge:
		if l1.index != (l0.index+1)%3 {
			return along()
		}
		return split(VertexPlusEdge, splitVertexEdge(t, l0.index, c1), seg)

	case l0.kind == onEdge && l1.kind == onEdge:
		if l0.index == l1.index {
			return along()
		}
		if l1.index == (l0.index+2)%3 {
			return split(TwoEdgesClean, splitTwoEdges(t, l0.index, c0, c1), seg)
		}
		return split(TwoEdgesClean, splitTwoEdges(t, l1.index, c1, c0), seg)

	case l0.kind == atVertex:
		return split(VertexPlusInterior, fan(t, c1), seg)

	case l0.kind == onEdge:
		return split(EdgePlusInterior, edgeInterior(t, l0.index, c0, c1), seg)

	default:
		return split(BothInterior, bothInterior(t, c0, c1), seg)
	}
}

// splitVertexEdge cuts from vertex k to q on the opposite edge.
func splitVertexEdge(t tri, k int, q corner) []tri {
	a, b, c := t.at(k), t.at(k+1), t.at(k+2)
	return []tri{{a, b, q}, {a, q, c}}
}

// splitTwoEdges cuts off vertex k with q1 on edge (k, k+1) and q2 on edge
// (k+2, k). The remaining quad is split along its shorter diagonal.
func splitTwoEdges(t tri, k int, q1, q2 corner) []tri {
	a, b, c := t.at(k), t.at(k+1), t.at(k+2)
	out := []tri{{a, q1, q2}}
	if q1.p.Sub(c.p).Length() <= b.p.Sub(q2.p).Length() {
		return append(out, tri{q1, b, c}, tri{q1, c, q2})
	}
	return append(out, tri{q1, b, q2}, tri{b, c, q2})
}

// fan connects an interior point to all three vertices.
func fan(t tri, p corner) []tri {
	return []tri{
		{t[0], t[1], p},
		{t[1], t[2], p},
		{t[2], t[0], p},
	}
}

// edgeInterior fans p over the boundary with q inserted on edge e.
func edgeInterior(t tri, e int, q, p corner) []tri {
	a, b, c := t.at(e), t.at(e+1), t.at(e+2)
	return []tri{
		{a, q, p},
		{q, b, p},
		{b, c, p},
		{c, a, p},
	}
}

// bothInterior fans p1 to the vertices, then inserts p2 into whichever fan
// triangle holds it. When p2 lies on a fan spoke both triangles sharing the
// spoke are split, which also yields five faces.
func bothInterior(t tri, p1, p2 corner) []tri {
	ft := fan(t, p1)
	best, bestL := 0, location{dist: -1}
	for i := range ft {
		l := locate(ft[i].triangle(), p2.p)
		if i == 0 || l.kind > bestL.kind || (l.kind == bestL.kind && l.dist > bestL.dist) {
			best, bestL = i, l
		}
	}
	switch bestL.kind {
	case inside:
		out := make([]tri, 0, 5)
		for i := range ft {
			if i == best {
				out = append(out, fan(ft[i], p2)...)
			} else {
				out = append(out, ft[i])
			}
		}
		return out
	case onEdge:
		// spoke 1 of fan i is spoke 2 of fan i+1
		e := bestL.index
		if e == 0 {
			return ft
		}
		other, oe := (best+1)%3, 2
		if e == 2 {
			other, oe = (best+2)%3, 1
		}
		out := make([]tri, 0, 5)
		for i := range ft {
			switch i {
			case best:
				out = append(out, splitVertexEdge(ft[i], (e+2)%3, p2)...)
			case other:
				out = append(out, splitVertexEdge(ft[i], (oe+2)%3, p2)...)
			default:
				out = append(out, ft[i])
			}
		}
		return out
	default:
		return ft
	}
}

// SplitEdge inserts q into edge e, the edge from vertex e to vertex e+1,
// joining it to the opposite vertex. q keeps its coordinates; its normal
// is slerped along the edge. q equal to an edge endpoint leaves f as is.
func SplitEdge(f mesh.Face, e int, q geom.Vec) Result {
	t := fromFace(f)
	a, b := t.at(e), t.at(e+1)
	if geom.PointsEqual(q, a.p) || geom.PointsEqual(q, b.p) {
		return unchanged(AlongOneEdge, f)
	}
	k := (e + 2) % 3
	return split(VertexPlusEdge, splitVertexEdge(t, k, exactEdgeCorner(a, b, q)), geom.Segment{A: t[k].p, B: q})
}
