package mesh

import "github.com/chazu/trimesh/pkg/geom"

// DefaultTestDirection is +Z tilted slightly off-axis so rays from grid
// aligned points rarely graze edges of axis-aligned geometry.
var DefaultTestDirection = geom.Normalize(geom.Vec{X: 0.0013, Y: 0.00071, Z: 1})

// Contains reports whether p lies inside the closed mesh, by ray-cast
// parity along DefaultTestDirection. The mesh must be watertight and in
// the same space as p; for an open mesh the answer is undefined.
//
// Each call scans every face. Use a Locator for repeated queries.
func (m *Mesh) Contains(p geom.Vec) bool {
	return m.ContainsDir(p, DefaultTestDirection)
}

// ContainsDir is Contains with an explicit ray direction.
func (m *Mesh) ContainsDir(p, dir geom.Vec) bool {
	bounds := m.Bounds()
	if !bounds.Contains(p) {
		return false
	}
	ray, rayBox := containmentRay(bounds, p, dir)
	var cand []Face
	for _, f := range m.Faces {
		if f.Triangle.Bounds().Intersects(rayBox) {
			cand = append(cand, f)
		}
	}
	return parity(ray, cand)
}

// containmentRay returns the ray from p and the box it sweeps before
// leaving bounds.
func containmentRay(bounds geom.AABB, p, dir geom.Vec) (geom.Ray, geom.AABB) {
	ray := geom.Ray{Origin: p, Direction: geom.Normalize(dir)}
	// the ray leaves the mesh bounds within one diagonal of p
	reach := bounds.Diagonal() + p.Sub(bounds.Center()).Length() + 1
	return ray, geom.BoundsOf(p, ray.At(reach))
}

// parity counts distinct ray hits; coincident hits on a shared edge or
// vertex count once.
func parity(ray geom.Ray, faces []Face) bool {
	var hits []geom.Vec
	for _, f := range faces {
		q, _, ok := f.Triangle.IntersectRay(ray)
		if !ok {
			continue
		}
		dup := false
		for _, h := range hits {
			if geom.PointsEqual(h, q) {
				dup = true
				break
			}
		}
		if !dup {
			hits = append(hits, q)
		}
	}
	return len(hits)%2 == 1
}

// Locator answers repeated containment queries against one mesh. The ray
// is pruned with an R-tree over the face bounds and the mesh bounds are
// computed once. A Locator only reads its faces, so it can serve many
// goroutines; it does not follow later changes to the mesh.
type Locator struct {
	faces  []Face
	bounds geom.AABB
	index  *Index
}

// NewLocator indexes the faces of m. Local is ignored, as in Contains.
func NewLocator(m *Mesh) (*Locator, error) {
	idx, err := NewFaceIndex(m.Faces)
	if err != nil {
		return nil, err
	}
	return &Locator{faces: m.Faces, bounds: m.Bounds(), index: idx}, nil
}

// Contains is Mesh.Contains through the index.
func (l *Locator) Contains(p geom.Vec) bool {
	return l.ContainsDir(p, DefaultTestDirection)
}

// ContainsDir is Mesh.ContainsDir through the index.
func (l *Locator) ContainsDir(p, dir geom.Vec) bool {
	if !l.bounds.Contains(p) {
		return false
	}
	ray, rayBox := containmentRay(l.bounds, p, dir)
	near, err := l.index.Near(rayBox)
	if err != nil {
		return parity(ray, l.faces)
	}
	cand := make([]Face, len(near))
	for i, j := range near {
		cand[i] = l.faces[j]
	}
	return parity(ray, cand)
}
