package triangulate

import (
	"fmt"

	"github.com/fogleman/delaunay"

	"github.com/chazu/trimesh/pkg/geom"
)

// Delaunay triangulates the loop's points and keeps the triangles whose
// centroid falls inside the loop. Loop edges are not enforced, so concave
// loops may lose slivers along reflex corners; convex loops come out
// complete with well-shaped triangles.
type Delaunay struct{}

func (Delaunay) Triangulate(loop []geom.Vec2) ([]Triangle, error) {
	if len(loop) < 3 {
		return nil, fmt.Errorf("triangulate: %d points: %w", len(loop), ErrDegenerate)
	}
	pts := make([]delaunay.Point, len(loop))
	for i, p := range loop {
		pts[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("triangulate: delaunay: %w", err)
	}

	out := make([]Triangle, 0, len(tri.Triangles)/3)
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		t := Triangle{tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]}
		a, b, c := loop[t[0]], loop[t[1]], loop[t[2]]
		if geom.IsZeroTol(cross(a, b, c), geom.Tolerance*geom.Tolerance) {
			continue
		}
		centroid := geom.Vec2{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
		if !insidePolygon(loop, centroid) {
			continue
		}
		out = append(out, ccw(loop, t))
	}
	if len(out) == 0 {
		return nil, ErrDegenerate
	}
	return out, nil
}
