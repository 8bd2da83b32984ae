// Package triangulate fills planar polygon loops with triangles and chains
// loose cut segments into closed loops.
//
// Strategies are injected into their consumers (the plane cutter, the
// kernel facade) instead of being registered globally. The shipped ones
// keep no state and are safe for concurrent use.
package triangulate

import (
	"errors"

	"github.com/chazu/trimesh/pkg/geom"
)

// ErrDegenerate is returned for loops that enclose no area.
var ErrDegenerate = errors.New("triangulate: degenerate loop")

// Triangle holds three indices into the loop passed to Triangulate.
type Triangle [3]int

// Triangulator fills a closed, ordered, planar loop. The loop is given
// without repeating its first point.
type Triangulator interface {
	Triangulate(loop []geom.Vec2) ([]Triangle, error)
}

// TriangulatorFunc adapts a plain function to Triangulator.
type TriangulatorFunc func(loop []geom.Vec2) ([]Triangle, error)

func (f TriangulatorFunc) Triangulate(loop []geom.Vec2) ([]Triangle, error) {
	return f(loop)
}

// Default returns the triangulator used when none is configured.
func Default() Triangulator {
	return EarClipper{}
}

// SignedArea is the shoelace area of the loop, positive when
// counter-clockwise.
func SignedArea(loop []geom.Vec2) float64 {
	var a float64
	for i := range loop {
		p, q := loop[i], loop[(i+1)%len(loop)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func cross(o, a, b geom.Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ccw orders the triangle counter-clockwise in the loop's frame.
func ccw(loop []geom.Vec2, t Triangle) Triangle {
	if cross(loop[t[0]], loop[t[1]], loop[t[2]]) < 0 {
		t[1], t[2] = t[2], t[1]
	}
	return t
}

// insidePolygon is the even-odd test for p against the loop.
func insidePolygon(loop []geom.Vec2, p geom.Vec2) bool {
	in := false
	for i, j := 0, len(loop)-1; i < len(loop); j, i = i, i+1 {
		a, b := loop[i], loop[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}
