package kernel

import (
	"github.com/google/uuid"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Buffers is a triangle mesh flattened for display.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Buffers struct {
	ID       string    `json:"id"`
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`
}

// NewBuffers flattens m into world space and writes three unshared
// vertices per face, each with its own shading normal.
func NewBuffers(m *mesh.Mesh) *Buffers {
	w := m.Flattened()
	n := len(w.Faces) * 3
	b := &Buffers{
		ID:       uuid.NewString(),
		Vertices: make([]float32, 0, n*3),
		Normals:  make([]float32, 0, n*3),
		Indices:  make([]uint32, 0, n),
		PartName: w.Name,
	}
	for i, f := range w.Faces {
		for j := 0; j < 3; j++ {
			v := f.Triangle.Vertex(j)
			nv := f.Normals[j]
			b.Vertices = append(b.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			b.Normals = append(b.Normals, float32(nv.X), float32(nv.Y), float32(nv.Z))
			b.Indices = append(b.Indices, uint32(i*3+j))
		}
	}
	return b
}

// Buffers converts m for display.
func (k *Kernel) Buffers(m *mesh.Mesh) *Buffers {
	return NewBuffers(m)
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// IsEmpty returns true if the buffers hold no geometry.
func (b *Buffers) IsEmpty() bool {
	return len(b.Vertices) == 0
}
