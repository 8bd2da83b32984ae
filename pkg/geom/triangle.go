package geom

// Triangle is three ordered points. The winding P1→P2→P3 is significant:
// the normal follows the right-hand rule and every inside/outside decision
// in the kernel assumes windings are outward-consistent across a mesh.
type Triangle struct {
	P1, P2, P3 Vec
}

// Normals holds one shading normal per triangle vertex.
type Normals [3]Vec

// NewTriangle returns the triangle p1, p2, p3.
func NewTriangle(p1, p2, p3 Vec) Triangle {
	return Triangle{P1: p1, P2: p2, P3: p3}
}

// Vertex returns the i-th vertex, i in [0, 3).
func (t Triangle) Vertex(i int) Vec {
	switch i % 3 {
	case 0:
		return t.P1
	case 1:
		return t.P2
	default:
		return t.P3
	}
}

// Vertices returns the three vertices in winding order.
func (t Triangle) Vertices() [3]Vec {
	return [3]Vec{t.P1, t.P2, t.P3}
}

// Edge returns the i-th edge, from vertex i to vertex i+1.
func (t Triangle) Edge(i int) Segment {
	return Segment{A: t.Vertex(i), B: t.Vertex(i + 1)}
}

// cross returns the unnormalized normal, twice the area in length.
func (t Triangle) cross() Vec {
	return t.P2.Sub(t.P1).Cross(t.P3.Sub(t.P1))
}

// Normal returns normalize((P2-P1) × (P3-P1)), or the zero vector for a
// degenerate triangle.
func (t Triangle) Normal() Vec {
	return Normalize(t.cross())
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return t.cross().Length() / 2
}

// Center returns the centroid.
func (t Triangle) Center() Vec {
	return t.P1.Add(t.P2).Add(t.P3).MulScalar(1.0 / 3.0)
}

// Bounds returns the bounding box of the three vertices.
func (t Triangle) Bounds() AABB {
	return BoundsOf(t.P1, t.P2, t.P3)
}

// IsDegenerate reports whether the triangle has no usable area.
func (t Triangle) IsDegenerate() bool {
	return t.Area() <= Tolerance*Tolerance
}

// Flipped reverses the winding.
func (t Triangle) Flipped() Triangle {
	return Triangle{P1: t.P1, P2: t.P3, P3: t.P2}
}

// FlatNormals returns the face normal repeated for every vertex.
func (t Triangle) FlatNormals() Normals {
	n := t.Normal()
	return Normals{n, n, n}
}

// Barycentric returns the weights (u, v, w) of P1, P2, P3 for the
// projection of p onto the triangle's plane.
func (t Triangle) Barycentric(p Vec) (u, v, w float64) {
	e0 := t.P2.Sub(t.P1)
	e1 := t.P3.Sub(t.P1)
	e2 := p.Sub(t.P1)
	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

// IntersectRay intersects r with the triangle (Möller–Trumbore). Hits at
// or behind the ray origin are rejected. The returned t is the ray
// parameter of the hit point.
func (t Triangle) IntersectRay(r Ray) (Vec, float64, bool) {
	e1 := t.P2.Sub(t.P1)
	e2 := t.P3.Sub(t.P1)
	h := r.Direction.Cross(e2)
	a := e1.Dot(h)
	if IsZeroTol(a, Tolerance*Tolerance) {
		return Vec{}, 0, false // parallel
	}
	f := 1 / a
	s := r.Origin.Sub(t.P1)
	u := f * s.Dot(h)
	if u < -Tolerance || u > 1+Tolerance {
		return Vec{}, 0, false
	}
	q := s.Cross(e1)
	v := f * r.Direction.Dot(q)
	if v < -Tolerance || u+v > 1+Tolerance {
		return Vec{}, 0, false
	}
	d := f * e2.Dot(q)
	if d <= Tolerance {
		return Vec{}, 0, false
	}
	return r.At(d), d, true
}
