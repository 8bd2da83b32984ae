package section_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/section"
	"github.com/chazu/trimesh/pkg/shape"
)

func zPlane(z float64) geom.Plane {
	return geom.NewPlane(geom.Vec{Z: z}, geom.Vec{Z: 1})
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name   string
		z      float64
		segs   int
		length float64
	}{
		{"middle", 0.5, 8, 4},
		{"top face", 1, 4, 4},
		{"above", 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := section.Slice(shape.Box(1, 1, 1), zPlane(tt.z))
			if len(s.Segments) != tt.segs {
				t.Errorf("got %d segments, want %d", len(s.Segments), tt.segs)
			}
			if !geom.IsEqual(s.Length(), tt.length) {
				t.Errorf("length = %v, want %v", s.Length(), tt.length)
			}
		})
	}
}

func TestSliceLoops(t *testing.T) {
	s := section.Slice(shape.Box(2, 1, 1), zPlane(0.25))
	loops := s.Loops(nil)
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	for _, p := range loops[0] {
		if !geom.IsEqual(p.Z, 0.25) {
			t.Errorf("loop point %v off the plane", p)
		}
	}
}

func TestWriteSVG(t *testing.T) {
	s := section.Slice(shape.Box(1, 1, 1), zPlane(0.5))
	var buf bytes.Buffer
	if err := s.WriteSVG(&buf, section.DefaultOptions); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("no svg element in %q", out)
	}
	if n := strings.Count(out, "<line"); n != 8 {
		t.Errorf("got %d lines, want 8", n)
	}
}

func TestRender(t *testing.T) {
	s := section.Slice(shape.Box(1, 1, 1), zPlane(0.5))
	img := s.Render(section.Options{Scale: 20, Margin: 5})
	b := img.Bounds()
	if b.Dx() != 30 || b.Dy() != 30 {
		t.Fatalf("image is %dx%d, want 30x30", b.Dx(), b.Dy())
	}
	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("nothing was drawn")
	}
}

func TestSave(t *testing.T) {
	s := section.Slice(shape.Box(1, 1, 1), zPlane(0.5))
	dir := t.TempDir()
	for _, name := range []string{"cut.svg", "cut.dxf", "cut.png"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := s.Save(path, section.DefaultOptions); err != nil {
				t.Fatalf("Save: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size() == 0 {
				t.Error("empty file")
			}
		})
	}
	if err := s.Save(filepath.Join(dir, "cut.bmp"), section.DefaultOptions); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
