package csg

import (
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// Simplify merges pairs of coplanar faces sharing an edge when together
// they form a single triangle, i.e. an endpoint of the shared edge lies on
// the segment joining the two opposite vertices. It repeats until nothing
// merges and returns the number of merges.
//
// The result is approximate: the removed vertex may still be used by faces
// across the outer edge, leaving a T-junction there.
func Simplify(m *mesh.Mesh) int {
	total := 0
	for {
		n := simplifyPass(m)
		if n == 0 {
			return total
		}
		total += n
	}
}

func simplifyPass(m *mesh.Mesh) int {
	edges := m.Edges(mesh.DefaultEdgePrecision)
	// a face takes part in at most one merge per pass; edges goes stale
	used := make([]bool, len(m.Faces))
	gone := make([]bool, len(m.Faces))
	merged := 0
	for i := range m.Faces {
		if used[i] {
			continue
		}
		for k := 0; k < 3; k++ {
			e := m.Faces[i].Triangle.Edge(k)
			edge := edges[mesh.NewEdgeKey(e.A, e.B, mesh.DefaultEdgePrecision)]
			if edge == nil || len(edge.Faces) != 2 {
				continue
			}
			j := edge.Faces[0]
			if j == i {
				j = edge.Faces[1]
			}
			if j == i || used[j] {
				continue
			}
			if f, ok := mergePair(m.Faces[i], m.Faces[j], e); ok {
				m.Faces[i] = f
				used[i], used[j] = true, true
				gone[j] = true
				merged++
				break
			}
		}
	}
	if merged == 0 {
		return 0
	}
	kept := m.Faces[:0]
	for i, f := range m.Faces {
		if !gone[i] {
			kept = append(kept, f)
		}
	}
	m.Faces = kept
	return merged
}

// mergePair merges f and g across their shared edge e.
func mergePair(f, g mesh.Face, e geom.Segment) (mesh.Face, bool) {
	if f.Triangle.Normal().Dot(g.Triangle.Normal()) < 1-geom.Tolerance {
		return mesh.Face{}, false
	}
	u, ok := opposite(f, e)
	if !ok {
		return mesh.Face{}, false
	}
	w, ok := opposite(g, e)
	if !ok {
		return mesh.Face{}, false
	}
	uw := geom.Segment{A: f.Triangle.Vertex(u), B: g.Triangle.Vertex(w)}
	for _, x := range []geom.Vec{e.A, e.B} {
		if !onSegment(uw, x) {
			continue
		}
		// replace x in f by g's opposite vertex
		out := f
		for k := 0; k < 3; k++ {
			if geom.PointsEqual(f.Triangle.Vertex(k), x) {
				out = withCorner(f, k, g.Triangle.Vertex(w), g.Normals[w])
			}
		}
		if out.Triangle.IsDegenerate() {
			return mesh.Face{}, false
		}
		return out, true
	}
	return mesh.Face{}, false
}

// opposite returns the index of the vertex of f not on e.
func opposite(f mesh.Face, e geom.Segment) (int, bool) {
	for k := 0; k < 3; k++ {
		p := f.Triangle.Vertex(k)
		if !geom.PointsEqual(p, e.A) && !geom.PointsEqual(p, e.B) {
			return k, true
		}
	}
	return 0, false
}

func onSegment(s geom.Segment, p geom.Vec) bool {
	t := s.Param(p)
	if t <= 0 || t >= 1 {
		return false
	}
	return geom.PointsEqual(s.At(t), p)
}

func withCorner(f mesh.Face, k int, p, n geom.Vec) mesh.Face {
	v := f.Triangle.Vertices()
	v[k] = p
	f.Normals[k] = n
	f.Triangle = geom.NewTriangle(v[0], v[1], v[2])
	return f
}
