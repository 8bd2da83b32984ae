// Package kernel bundles the boolean engine, the plane cutter and the mesh
// sources behind one value. Scripts and the command line talk to the
// geometry through it.
//
// Every operation returns a new mesh; inputs are never modified.
package kernel

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/trimesh/pkg/csg"
	"github.com/chazu/trimesh/pkg/cut"
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/section"
	"github.com/chazu/trimesh/pkg/shape"
	"github.com/chazu/trimesh/pkg/triangulate"
)

// Kernel is safe for concurrent use as long as the injected triangulator
// is.
type Kernel struct {
	engine   *csg.Engine
	cutter   *cut.Cutter
	cells    int
	workers  int
	simplify bool
	tri      triangulate.Triangulator
	orderer  triangulate.LoopOrderer
	logger   *log.Logger
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithTriangulator sets the strategy used to cap cut openings.
func WithTriangulator(t triangulate.Triangulator) Option {
	return func(k *Kernel) { k.tri = t }
}

// WithOrderer sets the loop orderer used for caps and sections.
func WithOrderer(o triangulate.LoopOrderer) Option {
	return func(k *Kernel) { k.orderer = o }
}

// WithMeshCells sets the marching cubes resolution of curved primitives.
func WithMeshCells(n int) Option {
	return func(k *Kernel) { k.cells = n }
}

// WithWorkers bounds the goroutines of each boolean operation.
func WithWorkers(n int) Option {
	return func(k *Kernel) { k.workers = n }
}

// WithSimplify merges coplanar faces after every boolean operation.
func WithSimplify(on bool) Option {
	return func(k *Kernel) { k.simplify = on }
}

// WithLogger routes engine and cutter statistics to l.
func WithLogger(l *log.Logger) Option {
	return func(k *Kernel) { k.logger = l }
}

// New returns a Kernel using the ear clipper and shape.DefaultMeshCells.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		cells:   shape.DefaultMeshCells,
		tri:     triangulate.Default(),
		orderer: triangulate.NearestEndpoint{},
		logger:  log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(k)
	}
	if k.logger == nil {
		k.logger = log.New(io.Discard, "", 0)
	}
	k.engine = csg.New(
		csg.WithWorkers(k.workers),
		csg.WithSimplify(k.simplify),
		csg.WithLogger(k.logger),
	)
	k.cutter = cut.New(k.tri, cut.WithOrderer(k.orderer), cut.WithLogger(k.logger))
	return k
}

// Box creates an exact box with its minimum corner at the origin, so that
// a translation by (10, 0, 0) puts the corner at x=10.
func (k *Kernel) Box(x, y, z float64) (*mesh.Mesh, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("kernel: box dimensions must be positive, got %g×%g×%g", x, y, z)
	}
	return shape.Box(x, y, z), nil
}

// Sphere tessellates a sphere centred on the origin.
func (k *Kernel) Sphere(radius float64) (*mesh.Mesh, error) {
	return shape.Sphere(radius, k.cells)
}

// Cylinder tessellates a cylinder along Z centred on the origin.
func (k *Kernel) Cylinder(height, radius float64) (*mesh.Mesh, error) {
	return shape.Cylinder(height, radius, k.cells)
}

// Union returns a ∪ b.
func (k *Kernel) Union(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return k.engine.Union(ctx, a, b)
}

// Difference returns a − b.
func (k *Kernel) Difference(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return k.engine.Difference(ctx, a, b)
}

// Intersection returns a ∩ b.
func (k *Kernel) Intersection(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return k.engine.Intersection(ctx, a, b)
}

// Translate moves a copy of m by (x, y, z).
func (k *Kernel) Translate(m *mesh.Mesh, x, y, z float64) *mesh.Mesh {
	return transformed(m, mgl64.Translate3D(x, y, z))
}

// Rotate turns a copy of m by Euler angles in degrees, applied X first,
// then Y, then Z.
func (k *Kernel) Rotate(m *mesh.Mesh, x, y, z float64) *mesh.Mesh {
	r := mgl64.HomogRotate3DZ(mgl64.DegToRad(z)).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(y))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(x)))
	return transformed(m, r)
}

// Scale stretches a copy of m about the origin. Negative factors mirror
// it; the windings are fixed up when the copy is flattened.
func (k *Kernel) Scale(m *mesh.Mesh, x, y, z float64) (*mesh.Mesh, error) {
	if geom.IsZero(x) || geom.IsZero(y) || geom.IsZero(z) {
		return nil, fmt.Errorf("kernel: scale factors must be non-zero, got %g, %g, %g", x, y, z)
	}
	return transformed(m, mgl64.Scale3D(x, y, z)), nil
}

func transformed(m *mesh.Mesh, t mgl64.Mat4) *mesh.Mesh {
	c := m.Clone()
	c.Transform(t)
	return c.Flattened()
}

// Cut returns the part of m behind plane. With closeHole the opening is
// capped.
func (k *Kernel) Cut(ctx context.Context, m *mesh.Mesh, plane geom.Plane, closeHole bool) (*mesh.Mesh, error) {
	c := m.Clone()
	if err := k.cutter.CutByPlane(ctx, c, plane, closeHole); err != nil {
		return nil, err
	}
	return c, nil
}

// Section slices m with plane.
func (k *Kernel) Section(m *mesh.Mesh, plane geom.Plane) *section.Section {
	return section.Slice(m, plane)
}

// Simplify returns a copy of m with coplanar neighbours merged, and the
// number of merges.
func (k *Kernel) Simplify(m *mesh.Mesh) (*mesh.Mesh, int) {
	c := m.Flattened()
	n := csg.Simplify(c)
	return c, n
}
