package geom

import (
	"math"
	"testing"
)

func TestTriangleNormalFollowsWinding(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle
		want Vec
	}{
		{"ccw in xy faces +z", NewTriangle(Vec{}, Vec{X: 1}, Vec{Y: 1}), Vec{Z: 1}},
		{"cw in xy faces -z", NewTriangle(Vec{}, Vec{Y: 1}, Vec{X: 1}), Vec{Z: -1}},
		{"ccw in yz faces +x", NewTriangle(Vec{}, Vec{Y: 2}, Vec{Z: 2}), Vec{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tri.Normal(); !PointsEqual(got, tt.want) {
				t.Errorf("Normal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangleDerived(t *testing.T) {
	tri := NewTriangle(Vec{}, Vec{X: 3}, Vec{Y: 3})
	if got := tri.Area(); !IsEqual(got, 4.5) {
		t.Errorf("Area() = %v, want 4.5", got)
	}
	if got := tri.Center(); !PointsEqual(got, Vec{X: 1, Y: 1}) {
		t.Errorf("Center() = %v, want (1,1,0)", got)
	}
	if got := tri.Flipped().Normal(); !PointsEqual(got, Vec{Z: -1}) {
		t.Errorf("Flipped().Normal() = %v, want (0,0,-1)", got)
	}
	u, v, w := tri.Barycentric(Vec{X: 1, Y: 1})
	if !IsEqual(u, 1.0/3) || !IsEqual(v, 1.0/3) || !IsEqual(w, 1.0/3) {
		t.Errorf("Barycentric(center) = %v %v %v", u, v, w)
	}
}

func TestTriangleIntersectRay(t *testing.T) {
	tri := NewTriangle(Vec{}, Vec{X: 2}, Vec{Y: 2})
	tests := []struct {
		name string
		ray  Ray
		hit  bool
	}{
		{"straight down", Ray{Origin: Vec{X: 0.5, Y: 0.5, Z: 1}, Direction: Vec{Z: -1}}, true},
		{"pointing away", Ray{Origin: Vec{X: 0.5, Y: 0.5, Z: 1}, Direction: Vec{Z: 1}}, false},
		{"misses", Ray{Origin: Vec{X: 1.5, Y: 1.5, Z: 1}, Direction: Vec{Z: -1}}, false},
		{"parallel", Ray{Origin: Vec{X: -1, Y: 0.5}, Direction: Vec{X: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, ok := tri.IntersectRay(tt.ray)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && !PointsEqual(p, Vec{X: 0.5, Y: 0.5}) {
				t.Errorf("hit point = %v", p)
			}
		})
	}
}

func TestPlaneSignedDistanceAndFrame(t *testing.T) {
	p := NewPlane(Vec{Z: 1}, Vec{Z: 2})
	if d := p.SignedDistance(Vec{X: 4, Z: 3}); !IsEqual(d, 2) {
		t.Errorf("SignedDistance above = %v, want 2", d)
	}
	if d := p.SignedDistance(Vec{Z: -1}); !IsEqual(d, -2) {
		t.Errorf("SignedDistance below = %v, want -2", d)
	}
	if !PointsEqual(p.XAxis.Cross(p.YAxis()), p.Normal) {
		t.Errorf("frame is not right-handed: x=%v y=%v n=%v", p.XAxis, p.YAxis(), p.Normal)
	}
	q := Vec{X: 0.3, Y: -2, Z: 1}
	if got := p.FromLocal(p.ToLocal(q)); !PointsEqual(got, q) {
		t.Errorf("FromLocal(ToLocal(q)) = %v, want %v", got, q)
	}
}

func TestPlaneIntersectTriangle(t *testing.T) {
	p := NewPlane(Vec{Z: 0.5}, Vec{Z: 1})
	tests := []struct {
		name string
		tri  Triangle
		ok   bool
	}{
		{"crossing", NewTriangle(Vec{}, Vec{X: 1}, Vec{Z: 1}), true},
		{"vertex on plane and opposite edge crossing", NewTriangle(Vec{Z: 0.5}, Vec{X: 1}, Vec{X: 1, Z: 1}), true},
		{"below", NewTriangle(Vec{}, Vec{X: 1}, Vec{Y: 1}), false},
		{"touching at a vertex", NewTriangle(Vec{}, Vec{X: 1}, Vec{Z: 0.5}), false},
		{"coplanar", NewTriangle(Vec{Z: 0.5}, Vec{X: 1, Z: 0.5}, Vec{Y: 1, Z: 0.5}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, ok := p.IntersectTriangle(tt.tri)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok {
				if !IsZero(p.SignedDistance(seg.A)) || !IsZero(p.SignedDistance(seg.B)) {
					t.Errorf("segment %v not on plane", seg)
				}
				if seg.IsDegenerate() {
					t.Errorf("segment %v is degenerate", seg)
				}
			}
		})
	}
}

func TestPlaneIntersectPlane(t *testing.T) {
	a := NewPlane(Vec{Z: 1}, Vec{Z: 1})
	b := NewPlane(Vec{X: 2}, Vec{X: 1})
	r, ok := a.IntersectPlane(b)
	if !ok {
		t.Fatal("expected intersection")
	}
	if !IsZero(a.SignedDistance(r.Origin)) || !IsZero(b.SignedDistance(r.Origin)) {
		t.Errorf("origin %v not on both planes", r.Origin)
	}
	if !IsEqual(math.Abs(r.Direction.Y), 1) {
		t.Errorf("direction = %v, want ±Y", r.Direction)
	}
	if _, ok := a.IntersectPlane(NewPlane(Vec{}, Vec{Z: -1})); ok {
		t.Error("parallel planes should not intersect")
	}
}

func TestEdgePointIsOrderIndependent(t *testing.T) {
	a := Vec{X: 0.1, Y: 0.7, Z: -0.3}
	b := Vec{X: 1.3, Y: -0.2, Z: 0.9}
	p := NewPlane(Vec{X: 0.37, Y: 0.11, Z: 0.05}, Vec{X: 0.3, Y: 0.2, Z: 1})
	da, db := p.SignedDistance(a), p.SignedDistance(b)
	if EdgePoint(a, b, da, db) != EdgePoint(b, a, db, da) {
		t.Error("EdgePoint differs by edge orientation")
	}
}

func TestAABB(t *testing.T) {
	null := NullAABB()
	box := BoundsOf(Vec{}, Vec{X: 1, Y: 1, Z: 1})
	if !null.IsNull() {
		t.Error("NullAABB should be null")
	}
	if got := null.Union(box); got != box {
		t.Errorf("null ∪ box = %v, want %v", got, box)
	}
	other := BoundsOf(Vec{X: 0.5, Y: 0.5, Z: 0.5}, Vec{X: 2, Y: 2, Z: 2})
	ix, ok := box.Intersection(other)
	if !ok {
		t.Fatal("expected overlap")
	}
	if !IsEqual(ix.Volume(), 0.125) {
		t.Errorf("overlap volume = %v, want 0.125", ix.Volume())
	}
	far := BoundsOf(Vec{X: 5, Y: 5, Z: 5}, Vec{X: 6, Y: 6, Z: 6})
	if _, ok := box.Intersection(far); ok {
		t.Error("disjoint boxes should not overlap")
	}
	if box.Intersects(null) {
		t.Error("nothing intersects the null box")
	}
	if !box.Enlarge(1).ContainsBox(other.Enlarge(-0.5)) {
		t.Error("enlarged box should contain shrunken other")
	}
	if !box.Contains(Vec{X: 1, Y: 0.5, Z: 0}) || box.Contains(Vec{X: 1.1}) {
		t.Error("Contains boundary handling wrong")
	}
}

func TestSlerp(t *testing.T) {
	a := Vec{X: 1}
	b := Vec{Y: 1}
	mid := Slerp(a, b, 0.5)
	want := Normalize(Vec{X: 1, Y: 1})
	if !PointsEqual(mid, want) {
		t.Errorf("Slerp midpoint = %v, want %v", mid, want)
	}
	if !IsEqual(Slerp(a, b, 0.3).Length(), 1) {
		t.Error("Slerp should stay on the unit sphere")
	}
	if got := Slerp(a, a, 0.7); !PointsEqual(got, a) {
		t.Errorf("Slerp of equal vectors = %v", got)
	}
}
