// Package cut slices meshes with a plane, keeping the part behind it and
// optionally closing the opening with a triangulated cap.
package cut

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/subdivide"
	"github.com/chazu/trimesh/pkg/triangulate"
)

// ErrNoLoop is returned when a cut produced trim lines but none of them
// chain into a closed loop, so the hole cannot be capped.
var ErrNoLoop = errors.New("cut: no closed loop")

// Cutter cuts meshes by planes. The zero value is not usable; use New.
type Cutter struct {
	triangulator triangulate.Triangulator
	orderer      triangulate.LoopOrderer
	logger       *log.Logger
}

// Option configures a Cutter.
type Option func(*Cutter)

// WithOrderer replaces the loop orderer (triangulate.NearestEndpoint by
// default).
func WithOrderer(o triangulate.LoopOrderer) Option {
	return func(c *Cutter) {
		if o != nil {
			c.orderer = o
		}
	}
}

// WithLogger sets the logger for per-cut statistics.
func WithLogger(l *log.Logger) Option {
	return func(c *Cutter) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Cutter capping holes with t. A nil triangulator leaves
// holes open even when closing is requested.
func New(t triangulate.Triangulator, opts ...Option) *Cutter {
	c := &Cutter{
		triangulator: t,
		orderer:      triangulate.NearestEndpoint{},
		logger:       log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CutByPlane removes everything in front of the plane (the side its normal
// points to) from m, in place. The mesh is flattened first. With closeHole
// the opening is capped with faces looking along the plane normal.
func (c *Cutter) CutByPlane(ctx context.Context, m *mesh.Mesh, plane geom.Plane, closeHole bool) error {
	m.ApplyMatrix(mgl64.Ident4())

	kept := make([]mesh.Face, 0, len(m.Faces))
	var lines []geom.Segment
	for _, f := range m.Faces {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cut: %w", err)
		}
		r := subdivide.ByPlane(f, plane)
		switch r.Case {
		case subdivide.VertexPlusEdge, subdivide.TwoEdgesClean:
			lines = append(lines, r.Line)
		case subdivide.AlongOneEdge:
			if keepsEdge(f, plane) {
				lines = append(lines, r.Line)
			}
		}
		for _, sf := range r.Faces {
			if plane.SignedDistance(sf.Triangle.Center()) > -geom.Tolerance {
				continue
			}
			kept = append(kept, sf)
		}
	}
	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	m.Outline = clipOutline(m.Outline, plane)

	c.logger.Printf("cut %q: %d faces kept, %d dropped, %d trim lines", m.Name, len(kept), removed, len(lines))

	if !closeHole || c.triangulator == nil || len(lines) == 0 {
		return nil
	}
	return c.closeHole(m, plane, lines)
}

// keepsEdge reports whether a face lying with one edge in the plane has
// its third vertex on the kept side. Only those edges bound the hole.
func keepsEdge(f mesh.Face, plane geom.Plane) bool {
	for _, p := range f.Triangle.Vertices() {
		if plane.Side(p) < 0 {
			return true
		}
	}
	return false
}

// closeHole caps every region of the cut. Loops nested inside another
// loop are holes, such as the wall of a cavity; they are bridged into
// their enclosing loop so the cap leaves them open.
func (c *Cutter) closeHole(m *mesh.Mesh, plane geom.Plane, lines []geom.Segment) error {
	loops := c.orderer.Order(lines)
	if len(loops) == 0 {
		return fmt.Errorf("cut: %d trim lines: %w", len(lines), ErrNoLoop)
	}
	flat := make([][]geom.Vec2, len(loops))
	for i, loop := range loops {
		flat[i] = make([]geom.Vec2, len(loop))
		for j, p := range loop {
			flat[i][j] = plane.ToLocal(p)
		}
	}

	regions := triangulate.Regions(flat)
	added := 0
	for _, r := range regions {
		holes := make([][]geom.Vec2, len(r.Holes))
		for k, h := range r.Holes {
			holes[k] = flat[h]
		}
		pts, refs, err := triangulate.Bridge(flat[r.Outer], holes)
		if err != nil {
			return fmt.Errorf("cut: region with %d holes: %w", len(holes), err)
		}
		// map back onto the original points, not the 2D round trip
		src := make([]geom.Vec, len(refs))
		for i, ref := range refs {
			l := r.Outer
			if ref.Loop > 0 {
				l = r.Holes[ref.Loop-1]
			}
			src[i] = loops[l][ref.Index]
		}

		tris, err := c.triangulator.Triangulate(pts)
		if err != nil {
			return fmt.Errorf("cut: triangulate loop of %d points: %w", len(pts), err)
		}
		for _, t := range tris {
			for _, i := range t {
				if i < 0 || i >= len(src) {
					return fmt.Errorf("cut: triangulator index %d outside loop of %d points", i, len(src))
				}
			}
			tr := geom.NewTriangle(src[t[0]], src[t[1]], src[t[2]])
			if tr.IsDegenerate() {
				continue
			}
			if tr.Normal().Dot(plane.Normal) < 0 {
				tr = tr.Flipped()
			}
			m.Add(mesh.FlatFace(tr))
			added++
		}
	}
	c.logger.Printf("cut %q: capped %d loops in %d regions with %d faces", m.Name, len(loops), len(regions), added)
	return nil
}

// clipOutline keeps the segments behind the plane and trims the ones
// crossing it.
func clipOutline(segs []geom.Segment, plane geom.Plane) []geom.Segment {
	if len(segs) == 0 {
		return segs
	}
	out := segs[:0]
	for _, s := range segs {
		sa, sb := plane.Side(s.A), plane.Side(s.B)
		switch {
		case sa <= 0 && sb <= 0:
			out = append(out, s)
		case sa >= 0 && sb >= 0:
			continue
		default:
			p, _, ok := plane.IntersectSegment(s)
			if !ok {
				continue
			}
			if sa < 0 {
				out = append(out, geom.Segment{A: s.A, B: p})
			} else {
				out = append(out, geom.Segment{A: p, B: s.B})
			}
		}
	}
	return out
}
