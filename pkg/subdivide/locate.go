package subdivide

import (
	"math"

	"github.com/chazu/trimesh/pkg/geom"
)

type kind int

const (
	atVertex kind = iota
	onEdge
	inside
)

// location places a point relative to a triangle. index is the vertex or
// the edge (i, i+1) the point sits on; dist is the smallest signed distance
// to an edge line, positive inside.
type location struct {
	kind  kind
	index int
	dist  float64
}

// edgeDistance is the in-plane signed distance of p from the line a→b,
// positive on the side the normal n winds toward.
func edgeDistance(a, b, n, p geom.Vec) float64 {
	e := b.Sub(a)
	l := e.Length()
	if l == 0 {
		return 0
	}
	return e.Cross(p.Sub(a)).Dot(n) / l
}

func locate(t geom.Triangle, p geom.Vec) location {
	v := t.Vertices()
	for i := range v {
		if geom.PointsEqual(v[i], p) {
			return location{kind: atVertex, index: i}
		}
	}
	n := t.Normal()
	best, bestD := 0, math.Inf(1)
	for i := 0; i < 3; i++ {
		d := edgeDistance(v[i], v[(i+1)%3], n, p)
		if d < bestD {
			best, bestD = i, d
		}
	}
	if bestD <= geom.Tolerance {
		return location{kind: onEdge, index: best, dist: bestD}
	}
	return location{kind: inside, dist: bestD}
}

// resolve turns a located point into a corner of t. Edge points are
// snapped onto their edge and collapse onto a vertex when they land
// within tolerance of one.
func resolve(t tri, l location, p geom.Vec) (location, corner) {
	switch l.kind {
	case atVertex:
		return l, t[l.index]
	case onEdge:
		a, b := t.at(l.index), t.at(l.index+1)
		c := edgeCorner(a, b, p)
		if geom.PointsEqual(c.p, a.p) {
			return location{kind: atVertex, index: l.index}, a
		}
		if geom.PointsEqual(c.p, b.p) {
			return location{kind: atVertex, index: (l.index + 1) % 3}, b
		}
		return l, c
	default:
		return l, interiorCorner(t, p)
	}
}
