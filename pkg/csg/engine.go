// Package csg implements boolean operations on closed triangle meshes by
// mutual subdivision along the intersection curve followed by inside/outside
// classification of the pieces. The seam is stitched closed afterwards.
//
// Both operands must be watertight and consistently wound outward. Faces
// of one operand lying in a face plane of the other are not handled.
package csg

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/intersect"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/subdivide"
)

// Op selects a boolean operation.
type Op int

const (
	OpDifference Op = iota
	OpUnion
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpDifference:
		return "difference"
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// rule is the keep table of an operation.
type rule struct {
	keepAInside bool // keep A pieces inside B (else outside)
	keepBInside bool // keep B pieces inside A (else outside)
	flipB       bool
	untouchedA  bool
	untouchedB  bool
}

var rules = map[Op]rule{
	OpDifference:   {keepAInside: false, keepBInside: true, flipB: true, untouchedA: true},
	OpUnion:        {untouchedA: true, untouchedB: true},
	OpIntersection: {keepAInside: true, keepBInside: true},
}

// Engine runs boolean operations. It is safe for concurrent use.
type Engine struct {
	workers  int
	simplify bool
	logger   *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of goroutines used per operation.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSimplify runs Simplify on every result.
func WithSimplify(on bool) Option {
	return func(e *Engine) {
		e.simplify = on
	}
}

// WithLogger sets the logger for per-operation statistics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine using all CPUs.
func New(opts ...Option) *Engine {
	e := &Engine{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Difference returns a − b.
func (e *Engine) Difference(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return e.Apply(ctx, OpDifference, a, b)
}

// Union returns a ∪ b.
func (e *Engine) Union(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return e.Apply(ctx, OpUnion, a, b)
}

// Intersection returns a ∩ b.
func (e *Engine) Intersection(ctx context.Context, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return e.Apply(ctx, OpIntersection, a, b)
}

// Apply runs op on world-space copies of a and b; the inputs are not
// modified. The result is named after a and has an identity transform.
func (e *Engine) Apply(ctx context.Context, op Op, a, b *mesh.Mesh) (*mesh.Mesh, error) {
	r, ok := rules[op]
	if !ok {
		return nil, fmt.Errorf("csg: unknown operation %v", op)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("csg: %v: %w", op, err)
	}
	wa, wb := a.Flattened(), b.Flattened()
	out := mesh.New(a.Name)

	box, ok := wa.Bounds().Intersection(wb.Bounds())
	if !ok {
		if r.untouchedA {
			out.Faces = append(out.Faces, wa.Faces...)
		}
		if r.untouchedB {
			out.Faces = append(out.Faces, wb.Faces...)
		}
		e.logger.Printf("csg %v: operands do not overlap", op)
		return out, nil
	}

	candA, restA := partition(wa.Faces, box)
	candB, restB := partition(wb.Faces, box)
	segsA, segsB, err := e.collide(ctx, candA, candB)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: %w", op, err)
	}

	inA, err := mesh.NewLocator(wa)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: index: %w", op, err)
	}
	inB, err := mesh.NewLocator(wb)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: index: %w", op, err)
	}
	piecesA, err := e.refine(ctx, candA, segsA, inB, r.keepAInside, false)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: %w", op, err)
	}
	piecesB, err := e.refine(ctx, candB, segsB, inA, r.keepBInside, r.flipB)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: %w", op, err)
	}

	if r.untouchedA {
		out.Faces = append(out.Faces, restA...)
	}
	out.Faces = append(out.Faces, piecesA...)
	if r.untouchedB {
		out.Faces = append(out.Faces, restB...)
	}
	out.Faces = append(out.Faces, piecesB...)

	merged := 0
	if e.simplify {
		merged = Simplify(out)
	}
	stitched, err := stitch(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("csg: %v: stitch: %w", op, err)
	}
	e.logger.Printf("csg %v: %d+%d candidate faces, %d faces out, %d merged, %d seam splits",
		op, len(candA), len(candB), out.Len(), merged, stitched)
	return out, nil
}

// partition splits faces into those whose bounds meet box and the rest.
func partition(faces []mesh.Face, box geom.AABB) (cand, rest []mesh.Face) {
	for _, f := range faces {
		if f.Triangle.Bounds().Intersects(box) {
			cand = append(cand, f)
		} else {
			rest = append(rest, f)
		}
	}
	return cand, rest
}

// collide computes the intersection segment of every candidate pair. Each
// segment is recorded for both faces so the two sides of the seam are split
// along identical lines.
func (e *Engine) collide(ctx context.Context, candA, candB []mesh.Face) ([][]geom.Segment, [][]geom.Segment, error) {
	type hit struct {
		j   int
		seg geom.Segment
	}
	index, err := mesh.NewFaceIndex(candB)
	if err != nil {
		return nil, nil, fmt.Errorf("index: %w", err)
	}

	hits := make([][]hit, len(candA))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range candA {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fa := candA[i].Triangle
			near, err := index.Near(fa.Bounds())
			if err != nil {
				return err
			}
			for _, j := range near {
				if s, ok := intersect.Triangles(fa, candB[j].Triangle); ok {
					hits[i] = append(hits[i], hit{j: j, seg: s})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	segsA := make([][]geom.Segment, len(candA))
	segsB := make([][]geom.Segment, len(candB))
	for i, hs := range hits {
		for _, h := range hs {
			segsA[i] = append(segsA[i], h.seg)
			segsB[h.j] = append(segsB[h.j], h.seg)
		}
	}
	return segsA, segsB, nil
}

// refine splits every candidate along its segments and keeps the pieces
// whose centroid is inside (or outside) other.
func (e *Engine) refine(ctx context.Context, cand []mesh.Face, segs [][]geom.Segment,
	other *mesh.Locator, keepInside, flip bool) ([]mesh.Face, error) {
	slots := make([][]mesh.Face, len(cand))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range cand {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, p := range split(cand[i], segs[i]) {
				if other.Contains(p.Triangle.Center()) != keepInside {
					continue
				}
				if flip {
					p = p.Flipped()
				}
				slots[i] = append(slots[i], p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(slots), nil
}

// split applies every segment to every current piece of f, so no piece
// straddles a segment once all are applied. Crossings between segments
// become vertices of this face only; stitch hands them to the other side.
func split(f mesh.Face, segs []geom.Segment) []mesh.Face {
	pieces := []mesh.Face{f}
	for _, s := range segs {
		next := make([]mesh.Face, 0, len(pieces)+4)
		for _, p := range pieces {
			next = append(next, subdivide.ByLine(p, s).Faces...)
		}
		pieces = next
	}
	return pieces
}
