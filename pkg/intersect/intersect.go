// Package intersect computes the segment shared by two triangles in space.
package intersect

import "github.com/chazu/trimesh/pkg/geom"

// Triangles returns the segment along which a and b intersect. Triangles
// lying in the same or parallel planes never intersect here; coplanar
// overlap is left to the caller. The returned endpoints are taken verbatim
// from the plane crossings of a or b, so a face sharing the crossed edge
// sees the same coordinates.
func Triangles(a, b geom.Triangle) (geom.Segment, bool) {
	pa, ok := geom.PlaneFromTriangle(a)
	if !ok {
		return geom.Segment{}, false
	}
	pb, ok := geom.PlaneFromTriangle(b)
	if !ok {
		return geom.Segment{}, false
	}
	if geom.IsZero(pa.Normal.Cross(pb.Normal).Length()) {
		return geom.Segment{}, false
	}

	sa, ok := pb.IntersectTriangle(a)
	if !ok {
		return geom.Segment{}, false
	}
	sb, ok := pa.IntersectTriangle(b)
	if !ok {
		return geom.Segment{}, false
	}
	return overlap(sa, sb)
}

// overlap returns the common part of two collinear segments.
func overlap(sa, sb geom.Segment) (geom.Segment, bool) {
	u0, u1 := sa.Param(sb.A), sa.Param(sb.B)
	b0, b1 := sb.A, sb.B
	if u1 < u0 {
		u0, u1 = u1, u0
		b0, b1 = b1, b0
	}

	start, lo := sa.A, 0.0
	if u0 > 0 {
		start, lo = b0, u0
	}
	end, hi := sa.B, 1.0
	if u1 < 1 {
		end, hi = b1, u1
	}
	if hi <= lo || geom.PointsEqual(start, end) {
		return geom.Segment{}, false
	}
	return geom.Segment{A: start, B: end}, true
}
