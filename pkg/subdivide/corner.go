package subdivide

import (
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// corner is a triangle vertex with its shading normal.
type corner struct {
	p, n geom.Vec
}

// tri is a face in corner form, winding order preserved.
type tri [3]corner

func fromFace(f mesh.Face) tri {
	return tri{
		{f.Triangle.P1, f.Normals[0]},
		{f.Triangle.P2, f.Normals[1]},
		{f.Triangle.P3, f.Normals[2]},
	}
}

func (t tri) at(i int) corner {
	return t[((i%3)+3)%3]
}

func (t tri) triangle() geom.Triangle {
	return geom.Triangle{P1: t[0].p, P2: t[1].p, P3: t[2].p}
}

func (t tri) face() mesh.Face {
	return mesh.Face{
		Triangle: t.triangle(),
		Normals:  geom.Normals{t[0].n, t[1].n, t[2].n},
	}
}

func faces(ts []tri) []mesh.Face {
	out := make([]mesh.Face, len(ts))
	for i, t := range ts {
		out[i] = t.face()
	}
	return out
}

// edgeCorner builds the corner for q lying on the edge a–b. Position and
// normal are computed from the lexicographically ordered endpoints so that
// the neighbour sharing the edge gets identical bits.
func edgeCorner(a, b corner, q geom.Vec) corner {
	if geom.Less(b.p, a.p) {
		a, b = b, a
	}
	s := geom.Segment{A: a.p, B: b.p}
	t := s.Param(q)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return corner{p: s.At(t), n: geom.Slerp(a.n, b.n, t)}
}

// exactEdgeCorner is edgeCorner for a point already computed on the edge,
// keeping its coordinates untouched.
func exactEdgeCorner(a, b corner, q geom.Vec) corner {
	c := edgeCorner(a, b, q)
	c.p = q
	return c
}

// interiorCorner builds the corner for a point inside t. Its normal is
// slerped from t[0] toward the point where the ray t[0]→q leaves through
// the opposite edge, whose normal is itself slerped along that edge.
func interiorCorner(t tri, q geom.Vec) corner {
	w0, w1, w2 := t.triangle().Barycentric(q)
	rest := w1 + w2
	if geom.IsZero(rest) {
		return corner{p: q, n: t[0].n}
	}
	opp := geom.Slerp(t[1].n, t[2].n, w2/rest)
	return corner{p: q, n: geom.Slerp(t[0].n, opp, 1-w0)}
}
