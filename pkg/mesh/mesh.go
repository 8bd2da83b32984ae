// Package mesh defines the triangle mesh the kernel operates on, together
// with its transform, topology analysis and containment test.
//
// A Mesh stores one Face record per triangle. The record pairs the
// triangle with its three vertex normals, so triangles and normals can never
// drift out of step.
package mesh

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle with its per-vertex shading normals.
type Face struct {
	Triangle geom.Triangle `json:"triangle"`
	Normals  geom.Normals  `json:"normals"`
}

// FlatFace returns a face whose vertex normals all equal the face normal.
func FlatFace(t geom.Triangle) Face {
	return Face{Triangle: t, Normals: t.FlatNormals()}
}

// Flipped reverses the winding and the normals.
func (f Face) Flipped() Face {
	n := f.Normals
	return Face{
		Triangle: f.Triangle.Flipped(),
		Normals:  geom.Normals{n[0].MulScalar(-1), n[2].MulScalar(-1), n[1].MulScalar(-1)},
	}
}

// Mesh is a triangle soup with an optional display outline and a local
// transform. Meshes never share face storage with each other.
type Mesh struct {
	Name  string
	Faces []Face
	// Outline is a wireframe of open segments, used for display only.
	Outline []geom.Segment
	// Local is composed with a parent transform by ApplyMatrix.
	Local mgl64.Mat4
}

// New returns an empty mesh with an identity local transform.
func New(name string) *Mesh {
	return &Mesh{Name: name, Local: mgl64.Ident4()}
}

// FromTriangles builds a mesh with flat normals.
func FromTriangles(name string, tris []geom.Triangle) *Mesh {
	m := New(name)
	m.Faces = make([]Face, 0, len(tris))
	for _, t := range tris {
		m.Faces = append(m.Faces, FlatFace(t))
	}
	return m
}

// FromTrianglesWithNormals pairs triangles with authored normals. The two
// slices must have the same length; anything else is a programming error.
func FromTrianglesWithNormals(name string, tris []geom.Triangle, normals []geom.Normals) *Mesh {
	if len(tris) != len(normals) {
		panic(fmt.Sprintf("mesh: %d triangles paired with %d normals", len(tris), len(normals)))
	}
	m := New(name)
	m.Faces = make([]Face, len(tris))
	for i := range tris {
		m.Faces[i] = Face{Triangle: tris[i], Normals: normals[i]}
	}
	return m
}

// Len returns the number of faces.
func (m *Mesh) Len() int {
	return len(m.Faces)
}

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// Add appends a face.
func (m *Mesh) Add(f Face) {
	m.Faces = append(m.Faces, f)
}

// AddTriangle appends a triangle with flat normals.
func (m *Mesh) AddTriangle(t geom.Triangle) {
	m.Faces = append(m.Faces, FlatFace(t))
}

// Triangles returns a copy of the face triangles.
func (m *Mesh) Triangles() []geom.Triangle {
	out := make([]geom.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		out[i] = f.Triangle
	}
	return out
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Name: m.Name, Local: m.Local}
	c.Faces = append([]Face(nil), m.Faces...)
	c.Outline = append([]geom.Segment(nil), m.Outline...)
	return c
}

// Bounds returns the bounding box of the face vertices in local space.
func (m *Mesh) Bounds() geom.AABB {
	b := geom.NullAABB()
	for _, f := range m.Faces {
		b = b.Union(f.Triangle.Bounds())
	}
	return b
}

// Flip reverses every face in place, turning the mesh inside out.
func (m *Mesh) Flip() {
	for i, f := range m.Faces {
		m.Faces[i] = f.Flipped()
	}
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var a float64
	for _, f := range m.Faces {
		a += f.Triangle.Area()
	}
	return a
}

// Volume returns the signed enclosed volume by the divergence theorem. It
// is positive for a closed mesh with outward windings and meaningless for
// an open one.
func (m *Mesh) Volume() float64 {
	var v float64
	for _, f := range m.Faces {
		t := f.Triangle
		v += t.P1.Dot(t.P2.Cross(t.P3))
	}
	return v / 6
}

// Append copies the faces and outline of o into m.
func (m *Mesh) Append(o *Mesh) {
	m.Faces = append(m.Faces, o.Faces...)
	m.Outline = append(m.Outline, o.Outline...)
}
