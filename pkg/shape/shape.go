// Package shape produces meshes for the primitive solids. Boxes are built
// exactly; curved solids are modelled as signed distance fields with
// github.com/deadsy/sdfx and tessellated by marching cubes.
package shape

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// DefaultMeshCells is the marching cubes resolution along the longest
// bounding box side.
const DefaultMeshCells = 64

// Box returns a closed 12-face box with its minimum corner at the origin,
// so a translation places the corner directly.
func Box(x, y, z float64) *mesh.Mesh {
	c := func(i, j, k float64) geom.Vec { return geom.Vec{X: i * x, Y: j * y, Z: k * z} }
	quads := [6][4]geom.Vec{
		{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}, // -z
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // +z
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // -y
		{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}, // +y
		{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}, // -x
		{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}, // +x
	}
	m := mesh.New("box")
	for _, q := range quads {
		m.AddTriangle(geom.NewTriangle(q[0], q[1], q[2]))
		m.AddTriangle(geom.NewTriangle(q[0], q[2], q[3]))
	}
	return m
}

// Sphere returns a sphere centred on the origin.
func Sphere(radius float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("shape: sphere: %w", err)
	}
	return FromSDF("sphere", s, cells)
}

// Cylinder returns a cylinder along Z centred on the origin.
func Cylinder(height, radius float64, cells int) (*mesh.Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("shape: cylinder: %w", err)
	}
	return FromSDF("cylinder", s, cells)
}

// FromSDF tessellates any sdfx solid. Corners closer than geom.Tolerance
// are welded and zero-area triangles produced by the marching cubes are
// dropped. cells <= 0 uses DefaultMeshCells.
func FromSDF(name string, s sdf.SDF3, cells int) (*mesh.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("shape: %s: nil solid", name)
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(tris) == 0 {
		return nil, fmt.Errorf("shape: %s: marching cubes produced no triangles", name)
	}

	m := mesh.New(name)
	m.Faces = make([]mesh.Face, 0, len(tris))
	for _, tri := range tris {
		t := geom.NewTriangle(tri[0], tri[1], tri[2])
		if t.IsDegenerate() {
			continue
		}
		m.Add(mesh.FlatFace(t))
	}
	m.Weld(geom.Tolerance)
	return m, nil
}
