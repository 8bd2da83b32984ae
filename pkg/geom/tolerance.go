package geom

import "math"

// Tolerance is the shared epsilon for coordinate comparisons.
const Tolerance = 1e-6

// IsZero reports whether x is within Tolerance of zero.
func IsZero(x float64) bool {
	return math.Abs(x) <= Tolerance
}

// IsZeroTol reports whether x is within tol of zero.
func IsZeroTol(x, tol float64) bool {
	return math.Abs(x) <= tol
}

// IsEqual reports whether a and b differ by at most Tolerance.
func IsEqual(a, b float64) bool {
	return IsZero(a - b)
}

// IsEqualTol reports whether a and b differ by at most tol.
func IsEqualTol(a, b, tol float64) bool {
	return IsZeroTol(a-b, tol)
}

// PointsEqual compares two points component-wise with Tolerance.
func PointsEqual(a, b Vec) bool {
	return PointsEqualTol(a, b, Tolerance)
}

// PointsEqualTol compares two points component-wise with a custom epsilon.
func PointsEqualTol(a, b Vec, tol float64) bool {
	return IsZeroTol(a.X-b.X, tol) && IsZeroTol(a.Y-b.Y, tol) && IsZeroTol(a.Z-b.Z, tol)
}

// Sign returns -1, 0 or 1 with values inside Tolerance snapped to 0.
func Sign(x float64) int {
	switch {
	case IsZero(x):
		return 0
	case x < 0:
		return -1
	default:
		return 1
	}
}
