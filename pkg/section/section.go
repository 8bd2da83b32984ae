// Package section computes planar cross-sections of meshes and exports
// them as 2D drawings (SVG, DXF or PNG).
package section

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/triangulate"
)

// Line is a section segment in the plane's 2D frame.
type Line struct {
	A, B geom.Vec2
}

// Section is the cross-section of a mesh by a plane.
type Section struct {
	Plane geom.Plane
	// Segments are in world space, in face order.
	Segments []geom.Segment
}

// Slice cuts m (in world space) with plane. A face with an edge lying in the
// plane contributes that edge only when its third vertex is behind the
// plane, so shared edges are reported once. Faces in the plane contribute
// nothing.
func Slice(m *mesh.Mesh, plane geom.Plane) *Section {
	w := m.Flattened()
	s := &Section{Plane: plane}
	for _, f := range w.Faces {
		seg, ok := plane.IntersectTriangle(f.Triangle)
		if !ok {
			continue
		}
		var on, behind int
		for _, p := range f.Triangle.Vertices() {
			switch plane.Side(p) {
			case 0:
				on++
			case -1:
				behind++
			}
		}
		if on == 2 && behind == 0 {
			continue
		}
		s.Segments = append(s.Segments, seg)
	}
	return s
}

// Loops chains the segments into closed loops.
func (s *Section) Loops(o triangulate.LoopOrderer) [][]geom.Vec {
	if o == nil {
		o = triangulate.NearestEndpoint{}
	}
	return o.Order(s.Segments)
}

// Lines returns the segments in the plane's 2D frame.
func (s *Section) Lines() []Line {
	out := make([]Line, len(s.Segments))
	for i, seg := range s.Segments {
		out[i] = Line{A: s.Plane.ToLocal(seg.A), B: s.Plane.ToLocal(seg.B)}
	}
	return out
}

// Length is the total length of the section outline.
func (s *Section) Length() float64 {
	var l float64
	for _, seg := range s.Segments {
		l += seg.Length()
	}
	return l
}

// bounds2 returns the 2D extent of the lines.
func bounds2(lines []Line) (lo, hi geom.Vec2) {
	lo = geom.Vec2{X: math.Inf(1), Y: math.Inf(1)}
	hi = geom.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, l := range lines {
		for _, p := range []geom.Vec2{l.A, l.B} {
			lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
			hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
		}
	}
	return lo, hi
}

// canvas maps plane coordinates to image pixels with the Y axis pointing
// down and a margin on every side.
type canvas struct {
	lo            geom.Vec2
	scale, margin float64
	width, height int
}

func newCanvas(lines []Line, scale, margin float64) canvas {
	lo, hi := bounds2(lines)
	if len(lines) == 0 {
		lo, hi = geom.Vec2{}, geom.Vec2{}
	}
	return canvas{
		lo:     lo,
		scale:  scale,
		margin: margin,
		width:  int(math.Ceil((hi.X-lo.X)*scale + 2*margin)),
		height: int(math.Ceil((hi.Y-lo.Y)*scale + 2*margin)),
	}
}

func (c canvas) point(p geom.Vec2) (float64, float64) {
	x := (p.X-c.lo.X)*c.scale + c.margin
	y := float64(c.height) - ((p.Y-c.lo.Y)*c.scale + c.margin)
	return x, y
}

// Options control drawing output.
type Options struct {
	// Scale is pixels (or drawing units for DXF) per model unit.
	Scale float64
	// Margin is the blank border in pixels.
	Margin float64
}

// DefaultOptions draws one model unit as 10 pixels with a 10 pixel border.
var DefaultOptions = Options{Scale: 10, Margin: 10}

func (o Options) normalized() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultOptions.Scale
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

// Save writes the section to path, picking the format from the extension.
func (s *Section) Save(path string, o Options) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return s.saveSVG(path, o)
	case ".dxf":
		return s.SaveDXF(path, o)
	case ".png":
		return s.SavePNG(path, o)
	default:
		return fmt.Errorf("section: unsupported format %q", ext)
	}
}
