package csg

import (
	"context"

	"github.com/samber/lo"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/subdivide"
)

// seamTolerance is how far a vertex may sit from an edge and still count
// as lying on it. Seam points are computed in each operand's own face
// plane and then snapped onto edges, so they drift by a few Tolerance.
const seamTolerance = 10 * geom.Tolerance

// edgeID is an undirected edge between welded corners.
type edgeID [2]geom.Vec

func newEdgeID(a, b geom.Vec) edgeID {
	if geom.Less(b, a) {
		a, b = b, a
	}
	return edgeID{a, b}
}

// stitch closes the T-junctions left along the seam. Refining a face by
// one segment after another adds a vertex wherever a later segment crosses
// a spoke of an earlier split, and the other operand's pieces never get
// that vertex. stitch welds all corners, then splits every edge at each
// vertex lying inside it until none is left. It returns the number of
// splits.
func stitch(ctx context.Context, m *mesh.Mesh) (int, error) {
	m.Weld(geom.Tolerance)

	seen := make(map[geom.Vec]bool)
	var verts []geom.Vec
	// third corners of the faces on each edge; a sliver's own apex near
	// its base is not a junction
	apex := make(map[edgeID][]geom.Vec)
	for _, f := range m.Faces {
		v := f.Triangle.Vertices()
		for i, p := range v {
			if !seen[p] {
				seen[p] = true
				verts = append(verts, p)
			}
			apex[newEdgeID(p, v[(i+1)%3])] = append(apex[newEdgeID(p, v[(i+1)%3])], v[(i+2)%3])
		}
	}
	idx, err := mesh.NewIndex(lo.Map(verts, func(p geom.Vec, _ int) geom.AABB {
		return geom.BoundsOf(p)
	}))
	if err != nil {
		return 0, err
	}

	stack := make([]mesh.Face, len(m.Faces))
	for i, f := range m.Faces {
		stack[len(stack)-1-i] = f
	}
	out := make([]mesh.Face, 0, len(m.Faces))
	splits := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return splits, err
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e, q, ok, err := junction(f, verts, idx, apex)
		if err != nil {
			return splits, err
		}
		if !ok {
			out = append(out, f)
			continue
		}
		r := subdivide.SplitEdge(f, e, q)
		if !r.Split() {
			out = append(out, f)
			continue
		}
		for i := len(r.Faces) - 1; i >= 0; i-- {
			stack = append(stack, r.Faces[i])
		}
		splits++
	}
	m.Faces = out
	return splits, nil
}

// junction finds a vertex lying strictly inside one of f's edges.
func junction(f mesh.Face, verts []geom.Vec, idx *mesh.Index, apex map[edgeID][]geom.Vec) (int, geom.Vec, bool, error) {
	for e := 0; e < 3; e++ {
		s := f.Triangle.Edge(e)
		near, err := idx.Near(s.Bounds().Enlarge(seamTolerance))
		if err != nil {
			return 0, geom.Vec{}, false, err
		}
		tips := apex[newEdgeID(s.A, s.B)]
	next:
		for _, i := range near {
			q := verts[i]
			if geom.PointsEqual(q, s.A) || geom.PointsEqual(q, s.B) {
				continue
			}
			t := s.Param(q)
			if t <= 0 || t >= 1 || s.At(t).Sub(q).Length() > seamTolerance {
				continue
			}
			for _, tip := range tips {
				if tip == q {
					continue next
				}
			}
			return e, q, true, nil
		}
	}
	return 0, geom.Vec{}, false, nil
}
