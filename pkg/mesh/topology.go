package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/trimesh/pkg/geom"
)

// DefaultEdgePrecision is the grid step used to quantize edge endpoints.
const DefaultEdgePrecision = 1e-6

// EdgeKey identifies an undirected edge by its quantized endpoints, lower
// endpoint first, so A→B and B→A land in the same bucket.
//
// Rounding alone would split two points within precision of each other
// when they straddle a half step. Mesh.Edges therefore snaps every vertex
// to a shared representative before building keys; callers building keys
// themselves from raw points should Weld the mesh first.
type EdgeKey struct {
	Lo, Hi [3]int64
}

// Edge is an undirected mesh edge and the faces that use it.
type Edge struct {
	A, B geom.Vec
	// Faces holds indices into Mesh.Faces.
	Faces []int
}

func quantize(p geom.Vec, precision float64) [3]int64 {
	return [3]int64{
		int64(math.Round(p.X / precision)),
		int64(math.Round(p.Y / precision)),
		int64(math.Round(p.Z / precision)),
	}
}

func lessKey(a, b [3]int64) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// NewEdgeKey returns the orientation-independent key of the edge a–b.
func NewEdgeKey(a, b geom.Vec, precision float64) EdgeKey {
	qa, qb := quantize(a, precision), quantize(b, precision)
	if lessKey(qb, qa) {
		qa, qb = qb, qa
	}
	return EdgeKey{Lo: qa, Hi: qb}
}

// Edges maps every edge of the mesh to the faces that share it. Vertices
// within precision of each other are treated as one. Edges whose
// endpoints collapse into one point are skipped.
func (m *Mesh) Edges(precision float64) map[EdgeKey]*Edge {
	if precision <= 0 {
		precision = DefaultEdgePrecision
	}
	w := newWelder(precision)
	edges := make(map[EdgeKey]*Edge, len(m.Faces)*3/2)
	for i, f := range m.Faces {
		for j := 0; j < 3; j++ {
			s := f.Triangle.Edge(j)
			s.A, s.B = w.snap(s.A), w.snap(s.B)
			k := NewEdgeKey(s.A, s.B, precision)
			if k.Lo == k.Hi {
				continue
			}
			e, ok := edges[k]
			if !ok {
				e = &Edge{A: s.A, B: s.B}
				edges[k] = e
			}
			e.Faces = append(e.Faces, i)
		}
	}
	return edges
}

// Report partitions a mesh's edges by how many faces share them.
type Report struct {
	Boundary  []*Edge // exactly one face
	Manifold  []*Edge // exactly two faces
	Corrupted []*Edge // more than two faces
}

// IsCorrect reports whether the mesh is closed and manifold.
func (r Report) IsCorrect() bool {
	return len(r.Boundary) == 0 && len(r.Corrupted) == 0
}

// String summarizes the edge counts.
func (r Report) String() string {
	state := "ok"
	if !r.IsCorrect() {
		state = "broken"
	}
	return fmt.Sprintf("%s: %d boundary, %d manifold, %d corrupted edges",
		state, len(r.Boundary), len(r.Manifold), len(r.Corrupted))
}

// CheckCorrectness classifies the mesh edges at DefaultEdgePrecision.
func (m *Mesh) CheckCorrectness() Report {
	return m.CheckCorrectnessPrecision(DefaultEdgePrecision)
}

// CheckCorrectnessPrecision classifies the mesh edges at the given
// quantization precision.
func (m *Mesh) CheckCorrectnessPrecision(precision float64) Report {
	var r Report
	for _, e := range m.Edges(precision) {
		switch n := len(e.Faces); {
		case n == 1:
			r.Boundary = append(r.Boundary, e)
		case n == 2:
			r.Manifold = append(r.Manifold, e)
		default:
			r.Corrupted = append(r.Corrupted, e)
		}
	}
	return r
}
