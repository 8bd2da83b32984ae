package geom

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec `json:"min"`
	Max Vec `json:"max"`
}

// NullAABB returns the empty box, the identity element of Union.
func NullAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec{X: inf, Y: inf, Z: inf},
		Max: Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points ...Vec) AABB {
	b := NullAABB()
	for _, p := range points {
		b = b.Include(p)
	}
	return b
}

// IsNull reports whether the box contains nothing.
func (b AABB) IsNull() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Include grows the box to contain p.
func (b AABB) Include(p Vec) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Enlarge grows the box by d on every side. A null box stays null.
func (b AABB) Enlarge(d float64) AABB {
	if b.IsNull() {
		return b
	}
	e := Vec{X: d, Y: d, Z: d}
	return AABB{Min: b.Min.Sub(e), Max: b.Max.Add(e)}
}

// Intersects reports whether the boxes overlap. Boxes that only touch
// within Tolerance count as overlapping.
func (b AABB) Intersects(o AABB) bool {
	if b.IsNull() || o.IsNull() {
		return false
	}
	return b.Min.X <= o.Max.X+Tolerance && b.Max.X >= o.Min.X-Tolerance &&
		b.Min.Y <= o.Max.Y+Tolerance && b.Max.Y >= o.Min.Y-Tolerance &&
		b.Min.Z <= o.Max.Z+Tolerance && b.Max.Z >= o.Min.Z-Tolerance
}

// Intersection returns the overlap of the two boxes. ok is false when they
// do not overlap.
func (b AABB) Intersection(o AABB) (AABB, bool) {
	if !b.Intersects(o) {
		return NullAABB(), false
	}
	r := AABB{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
	// touching boxes produce an inverted sliver; flatten it
	r.Max = r.Max.Max(r.Min)
	return r, true
}

// Contains reports whether p lies inside the box, boundary included.
func (b AABB) Contains(p Vec) bool {
	return p.X >= b.Min.X-Tolerance && p.X <= b.Max.X+Tolerance &&
		p.Y >= b.Min.Y-Tolerance && p.Y <= b.Max.Y+Tolerance &&
		p.Z >= b.Min.Z-Tolerance && p.Z <= b.Max.Z+Tolerance
}

// ContainsBox reports whether o lies entirely inside b.
func (b AABB) ContainsBox(o AABB) bool {
	if o.IsNull() {
		return true
	}
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Size returns the edge lengths of the box.
func (b AABB) Size() Vec {
	if b.IsNull() {
		return Vec{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Volume returns the box volume, 0 for the null box.
func (b AABB) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Diagonal returns the length of the box diagonal.
func (b AABB) Diagonal() float64 {
	return b.Size().Length()
}
