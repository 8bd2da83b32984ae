package triangulate

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/geom"
)

// EarClipper triangulates simple polygons by repeatedly cutting off convex
// ears. Collinear loop points are kept as triangle corners, so the fill
// shares every edge of the loop.
type EarClipper struct{}

func (EarClipper) Triangulate(loop []geom.Vec2) ([]Triangle, error) {
	n := len(loop)
	if n < 3 {
		return nil, fmt.Errorf("triangulate: %d points: %w", n, ErrDegenerate)
	}
	area := SignedArea(loop)
	if geom.IsZeroTol(area, geom.Tolerance*geom.Tolerance) {
		return nil, ErrDegenerate
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if area < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	out := make([]Triangle, 0, n-2)
	for len(idx) > 3 {
		i, ok := findEar(loop, idx)
		if !ok {
			return out, fmt.Errorf("triangulate: no ear among %d points: %w", len(idx), ErrDegenerate)
		}
		m := len(idx)
		out = append(out, Triangle{idx[(i+m-1)%m], idx[i], idx[(i+1)%m]})
		idx = append(idx[:i], idx[i+1:]...)
	}
	if cross(loop[idx[0]], loop[idx[1]], loop[idx[2]]) > geom.Tolerance*geom.Tolerance {
		out = append(out, Triangle{idx[0], idx[1], idx[2]})
	}
	return out, nil
}

func findEar(loop []geom.Vec2, idx []int) (int, bool) {
	m := len(idx)
	for i := range idx {
		a, b, c := loop[idx[(i+m-1)%m]], loop[idx[i]], loop[idx[(i+1)%m]]
		if cross(a, b, c) <= geom.Tolerance*geom.Tolerance {
			continue // reflex or collinear tip
		}
		blocked := false
		for _, j := range idx {
			p := loop[j]
			if same(p, a) || same(p, b) || same(p, c) {
				continue
			}
			if inTriangle(p, a, b, c) {
				blocked = true
				break
			}
		}
		if !blocked {
			return i, true
		}
	}
	return 0, false
}

func same(a, b geom.Vec2) bool {
	return geom.IsZero(a.X-b.X) && geom.IsZero(a.Y-b.Y)
}

// inTriangle includes the boundary of the counter-clockwise triangle abc.
func inTriangle(p, a, b, c geom.Vec2) bool {
	eps := -geom.Tolerance * geom.Tolerance
	return cross(a, b, p) >= eps && cross(b, c, p) >= eps && cross(c, a, p) >= eps
}
