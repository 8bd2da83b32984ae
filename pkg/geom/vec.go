package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a point or a vector in 3D.
type Vec = v3.Vec

// Vec2 is a point in a plane's local 2D frame.
type Vec2 = v2.Vec

// Normalize returns v scaled to unit length, or the zero vector when v is
// too short to have a direction.
func Normalize(v Vec) Vec {
	l := v.Length()
	if l <= Tolerance*Tolerance {
		return Vec{}
	}
	return v.MulScalar(1 / l)
}

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Slerp interpolates between two unit vectors along the great arc joining
// them. Nearly parallel inputs fall back to a normalized lerp; opposite
// inputs have no defined arc and return a.
func Slerp(a, b Vec, t float64) Vec {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	theta := math.Acos(d)
	if IsZero(theta) {
		n := Normalize(Lerp(a, b, t))
		if n == (Vec{}) {
			return a
		}
		return n
	}
	s := math.Sin(theta)
	if IsZero(s) {
		return a
	}
	wa := math.Sin((1-t)*theta) / s
	wb := math.Sin(t*theta) / s
	return a.MulScalar(wa).Add(b.MulScalar(wb))
}

// Less orders points lexicographically by X, then Y, then Z.
func Less(a, b Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Perpendicular returns some unit vector orthogonal to n.
func Perpendicular(n Vec) Vec {
	// cross with the axis least aligned with n
	axis := Vec{X: 1}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	if ay < ax && ay <= az {
		axis = Vec{Y: 1}
	} else if az < ax && az < ay {
		axis = Vec{Z: 1}
	}
	return Normalize(n.Cross(axis))
}
