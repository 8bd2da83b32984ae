package mesh

import (
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func toMgl(v geom.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) geom.Vec {
	return geom.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// TransformPoint applies m to a point.
func TransformPoint(m mgl64.Mat4, p geom.Vec) geom.Vec {
	return fromMgl(mgl64.TransformCoordinate(toMgl(p), m))
}

// TransformDirection applies m to a direction, ignoring translation.
func TransformDirection(m mgl64.Mat4, d geom.Vec) geom.Vec {
	return fromMgl(mgl64.TransformNormal(toMgl(d), m))
}

// SetLocal replaces the local transform.
func (m *Mesh) SetLocal(local mgl64.Mat4) {
	m.Local = local
}

// Transform pre-multiplies t onto the local transform, so t applies after
// whatever the mesh already carries.
func (m *Mesh) Transform(t mgl64.Mat4) {
	m.Local = t.Mul4(m.local())
}

// local treats the zero matrix of a literal Mesh{} as identity.
func (m *Mesh) local() mgl64.Mat4 {
	if m.Local == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return m.Local
}

// WorldMatrix composes the parent transform with the local one.
func (m *Mesh) WorldMatrix(parent mgl64.Mat4) mgl64.Mat4 {
	return parent.Mul4(m.local())
}

// ApplyMatrix flattens parent × Local into the faces, normals and outline
// and resets Local to identity. Normals go through the inverse transpose;
// a mirroring transform also flips the windings so faces stay outward.
func (m *Mesh) ApplyMatrix(parent mgl64.Mat4) {
	w := m.WorldMatrix(parent)
	if w.ApproxEqual(mgl64.Ident4()) {
		m.Local = mgl64.Ident4()
		return
	}
	nm := w.Inv().Transpose()
	mirror := w.Det() < 0
	for i, f := range m.Faces {
		t := geom.Triangle{
			P1: TransformPoint(w, f.Triangle.P1),
			P2: TransformPoint(w, f.Triangle.P2),
			P3: TransformPoint(w, f.Triangle.P3),
		}
		var n geom.Normals
		for j := range f.Normals {
			n[j] = geom.Normalize(TransformDirection(nm, f.Normals[j]))
		}
		nf := Face{Triangle: t, Normals: n}
		if mirror {
			nf = Face{Triangle: t.Flipped(), Normals: geom.Normals{n[0], n[2], n[1]}}
		}
		m.Faces[i] = nf
	}
	for i, s := range m.Outline {
		m.Outline[i] = geom.Segment{A: TransformPoint(w, s.A), B: TransformPoint(w, s.B)}
	}
	m.Local = mgl64.Ident4()
}

// World returns an independent copy of m flattened into the parent's space.
func (m *Mesh) World(parent mgl64.Mat4) *Mesh {
	c := m.Clone()
	c.ApplyMatrix(parent)
	return c
}

// Flattened returns an independent copy with its own local transform
// applied.
func (m *Mesh) Flattened() *Mesh {
	return m.World(mgl64.Ident4())
}
