// Package subdivide splits a single mesh face against a cutting plane or
// against a trim line lying in the face's own plane.
//
// The topological case is classified first into a Case value and the split
// is then produced by a switch over every case. Points closer than
// geom.Tolerance to an existing vertex collapse onto it, so no case ever
// emits a zero-area face. Total area is preserved by every case and every
// output face keeps the input winding.
package subdivide

import (
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// Case is the topological relation between a face and a cut.
type Case int

const (
	// NoIntersection: the cut misses the face or touches a single point.
	NoIntersection Case = iota
	// Coplanar: the cutting plane contains the face.
	Coplanar
	// AlongOneEdge: the cut runs along an existing edge.
	AlongOneEdge
	// VertexPlusEdge: from a vertex to a point on the opposite edge.
	VertexPlusEdge
	// TwoEdgesClean: across two edges.
	TwoEdgesClean
	// VertexPlusInterior: from a vertex to a point inside the face.
	VertexPlusInterior
	// EdgePlusInterior: from a point on an edge to a point inside the face.
	EdgePlusInterior
	// BothInterior: both endpoints strictly inside the face.
	BothInterior
)

func (c Case) String() string {
	switch c {
	case NoIntersection:
		return "no-intersection"
	case Coplanar:
		return "coplanar"
	case AlongOneEdge:
		return "along-one-edge"
	case VertexPlusEdge:
		return "vertex-plus-edge"
	case TwoEdgesClean:
		return "two-edges-clean"
	case VertexPlusInterior:
		return "vertex-plus-interior"
	case EdgePlusInterior:
		return "edge-plus-interior"
	case BothInterior:
		return "both-interior"
	default:
		return "unknown"
	}
}

// FaceCount returns how many faces the case produces.
func (c Case) FaceCount() int {
	switch c {
	case VertexPlusEdge:
		return 2
	case TwoEdgesClean, VertexPlusInterior:
		return 3
	case EdgePlusInterior:
		return 4
	case BothInterior:
		return 5
	default:
		return 1
	}
}

// Result is the outcome of one subdivision.
type Result struct {
	Case  Case
	Faces []mesh.Face
	// Line is the trim line inside the face. It is set for every case
	// except NoIntersection and Coplanar.
	Line    geom.Segment
	HasLine bool
}

// Split reports whether the face was divided.
func (r Result) Split() bool {
	return len(r.Faces) > 1
}

func unchanged(c Case, f mesh.Face) Result {
	return Result{Case: c, Faces: []mesh.Face{f}}
}
