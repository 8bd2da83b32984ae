package geom

// Ray is a half-line from Origin along Direction.
type Ray struct {
	Origin    Vec
	Direction Vec
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// Segment is a closed line segment between A and B.
type Segment struct {
	A, B Vec
}

// Vector returns B - A.
func (s Segment) Vector() Vec {
	return s.B.Sub(s.A)
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.Vector().Length()
}

// IsDegenerate reports whether the endpoints coincide within Tolerance.
func (s Segment) IsDegenerate() bool {
	return PointsEqual(s.A, s.B)
}

// Midpoint returns the point halfway between A and B.
func (s Segment) Midpoint() Vec {
	return s.A.Add(s.B).MulScalar(0.5)
}

// At returns A + t(B-A).
func (s Segment) At(t float64) Vec {
	return Lerp(s.A, s.B, t)
}

// Reversed swaps the endpoints.
func (s Segment) Reversed() Segment {
	return Segment{A: s.B, B: s.A}
}

// Param projects p onto the segment's supporting line and returns its
// parameter, 0 at A and 1 at B.
func (s Segment) Param(p Vec) float64 {
	d := s.Vector()
	l2 := d.Dot(d)
	if l2 == 0 {
		return 0
	}
	return p.Sub(s.A).Dot(d) / l2
}

// Bounds returns the segment's bounding box.
func (s Segment) Bounds() AABB {
	return NullAABB().Include(s.A).Include(s.B)
}

// Ray returns the ray starting at A through B.
func (s Segment) Ray() Ray {
	return Ray{Origin: s.A, Direction: s.Vector()}
}
