package geom

// Plane is an oriented plane with a local 2D frame. Normal is unit length,
// XAxis is a unit vector in the plane, YAxis is Normal × XAxis.
type Plane struct {
	Normal   Vec
	XAxis    Vec
	Location Vec
}

// NewPlane returns the plane through location with the given normal and an
// arbitrary but fixed in-plane X axis.
func NewPlane(location, normal Vec) Plane {
	n := Normalize(normal)
	return Plane{Normal: n, XAxis: Perpendicular(n), Location: location}
}

// NewPlaneWithAxis returns a plane with an explicit X axis. The axis is
// made orthogonal to the normal.
func NewPlaneWithAxis(location, normal, xAxis Vec) Plane {
	n := Normalize(normal)
	x := Normalize(xAxis.Sub(n.MulScalar(xAxis.Dot(n))))
	if x == (Vec{}) {
		x = Perpendicular(n)
	}
	return Plane{Normal: n, XAxis: x, Location: location}
}

// PlaneFromTriangle returns the plane a triangle lies in, oriented by its
// winding. ok is false for a degenerate triangle.
func PlaneFromTriangle(t Triangle) (Plane, bool) {
	n := t.Normal()
	if n == (Vec{}) {
		return Plane{}, false
	}
	return NewPlaneWithAxis(t.P1, n, t.P2.Sub(t.P1)), true
}

// YAxis returns Normal × XAxis.
func (p Plane) YAxis() Vec {
	return p.Normal.Cross(p.XAxis)
}

// Flipped returns the same plane facing the other way.
func (p Plane) Flipped() Plane {
	return Plane{Normal: p.Normal.MulScalar(-1), XAxis: p.XAxis, Location: p.Location}
}

// SignedDistance is positive on the side the normal points toward.
func (p Plane) SignedDistance(pt Vec) float64 {
	return pt.Sub(p.Location).Dot(p.Normal)
}

// Side returns -1, 0 or 1 for pt below, on, or above the plane.
func (p Plane) Side(pt Vec) int {
	return Sign(p.SignedDistance(pt))
}

// Project drops pt onto the plane.
func (p Plane) Project(pt Vec) Vec {
	return pt.Sub(p.Normal.MulScalar(p.SignedDistance(pt)))
}

// ToLocal expresses pt in the plane's 2D frame, ignoring its offset along
// the normal.
func (p Plane) ToLocal(pt Vec) Vec2 {
	d := pt.Sub(p.Location)
	return Vec2{X: d.Dot(p.XAxis), Y: d.Dot(p.YAxis())}
}

// FromLocal maps a 2D frame point back onto the plane.
func (p Plane) FromLocal(q Vec2) Vec {
	return p.Location.Add(p.XAxis.MulScalar(q.X)).Add(p.YAxis().MulScalar(q.Y))
}

// IntersectRay returns where r crosses the plane. Rays parallel to the
// plane, or pointing away from it, do not intersect.
func (p Plane) IntersectRay(r Ray) (Vec, bool) {
	t, ok := p.lineParam(r.Origin, r.Direction)
	if !ok || t < -Tolerance {
		return Vec{}, false
	}
	return r.At(t), true
}

// IntersectLine returns where the infinite line through origin along dir
// crosses the plane.
func (p Plane) IntersectLine(origin, dir Vec) (Vec, bool) {
	t, ok := p.lineParam(origin, dir)
	if !ok {
		return Vec{}, false
	}
	return origin.Add(dir.MulScalar(t)), true
}

func (p Plane) lineParam(origin, dir Vec) (float64, bool) {
	denom := dir.Dot(p.Normal)
	if IsZeroTol(denom, Tolerance*Tolerance) {
		return 0, false
	}
	return -p.SignedDistance(origin) / denom, true
}

// IntersectSegment returns the point where s crosses the plane and its
// parameter along s. Segments lying in the plane do not intersect.
func (p Plane) IntersectSegment(s Segment) (Vec, float64, bool) {
	da := p.SignedDistance(s.A)
	db := p.SignedDistance(s.B)
	sa, sb := Sign(da), Sign(db)
	switch {
	case sa == 0 && sb == 0:
		return Vec{}, 0, false
	case sa == 0:
		return s.A, 0, true
	case sb == 0:
		return s.B, 1, true
	case sa == sb:
		return Vec{}, 0, false
	}
	t := da / (da - db)
	return s.At(t), t, true
}

// IntersectPlane returns the line shared by two planes as a ray through a
// point on both planes. Parallel planes do not intersect.
func (p Plane) IntersectPlane(o Plane) (Ray, bool) {
	dir := p.Normal.Cross(o.Normal)
	if IsZero(dir.Length()) {
		return Ray{}, false
	}
	// point on both planes closest to the origin of the frame
	d1 := p.Normal.Dot(p.Location)
	d2 := o.Normal.Dot(o.Location)
	n1n2 := p.Normal.Dot(o.Normal)
	det := 1 - n1n2*n1n2
	c1 := (d1 - d2*n1n2) / det
	c2 := (d2 - d1*n1n2) / det
	origin := p.Normal.MulScalar(c1).Add(o.Normal.MulScalar(c2))
	return Ray{Origin: origin, Direction: Normalize(dir)}, true
}

// IntersectTriangle returns the segment along which the plane crosses t,
// restricted to t's edges. A triangle touching the plane at a single point,
// or lying in it, has no intersection segment.
func (p Plane) IntersectTriangle(t Triangle) (Segment, bool) {
	v := t.Vertices()
	var d [3]float64
	var s [3]int
	for i := range v {
		d[i] = p.SignedDistance(v[i])
		s[i] = Sign(d[i])
	}
	if s[0] == 0 && s[1] == 0 && s[2] == 0 {
		return Segment{}, false
	}
	pts := make([]Vec, 0, 3)
	add := func(q Vec) {
		for _, e := range pts {
			if PointsEqual(e, q) {
				return
			}
		}
		pts = append(pts, q)
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if s[i] == 0 {
			add(v[i])
		}
		if s[i]*s[j] < 0 {
			add(EdgePoint(v[i], v[j], d[i], d[j]))
		}
	}
	if len(pts) != 2 {
		return Segment{}, false
	}
	return Segment{A: pts[0], B: pts[1]}, true
}

// EdgePoint returns the zero crossing of the signed distances da, db along
// the edge a→b. The endpoints are taken in lexicographic order so the edge
// b→a produces the bit-identical point, which keeps neighbouring faces
// free of cracks after they are split.
func EdgePoint(a, b Vec, da, db float64) Vec {
	if Less(b, a) {
		a, b = b, a
		da, db = db, da
	}
	t := da / (da - db)
	return Lerp(a, b, t)
}
