package stl_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/shape"
	"github.com/chazu/trimesh/pkg/stl"
)

func sameFaces(t *testing.T, got, want *mesh.Mesh) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("got %d faces, want %d", got.Len(), want.Len())
	}
	for i := range want.Faces {
		g, w := got.Faces[i].Triangle.Vertices(), want.Faces[i].Triangle.Vertices()
		for j := range w {
			if !geom.PointsEqual(g[j], w[j]) {
				t.Fatalf("face %d vertex %d = %v, want %v", i, j, g[j], w[j])
			}
		}
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	m := shape.Box(1.5, 2, 0.125)
	m.Name = "part"
	var buf bytes.Buffer
	if err := stl.WriteASCII(&buf, m); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "solid part\n") {
		t.Errorf("unexpected header: %q", buf.String()[:20])
	}
	got, err := stl.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Name != "part" {
		t.Errorf("name = %q", got.Name)
	}
	sameFaces(t, got, m)
}

func TestBinaryRoundTrip(t *testing.T) {
	m := shape.Box(1, 2, 3)
	m.Name = "solid header"
	var buf bytes.Buffer
	if err := stl.WriteBinary(&buf, m); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 84+50*12 {
		t.Fatalf("binary size = %d", buf.Len())
	}
	got, err := stl.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	sameFaces(t, got, m)
}

func TestWriteUsesWorldSpace(t *testing.T) {
	m := shape.Box(1, 1, 1)
	m.SetLocal(mgl64.Translate3D(0, 0, 10))
	var buf bytes.Buffer
	if err := stl.WriteASCII(&buf, m); err != nil {
		t.Fatal(err)
	}
	got, err := stl.Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := got.Bounds(); !geom.IsEqual(b.Min.Z, 10) {
		t.Errorf("bounds = %+v", b)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := stl.Save(path, shape.Box(2, 2, 2)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := stl.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "cube" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Len() != 12 || !geom.IsEqualTol(got.Volume(), 8, 1e-4) {
		t.Errorf("loaded %d faces, volume %v", got.Len(), got.Volume())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := stl.Load(filepath.Join(t.TempDir(), "nope.stl")); err == nil {
		t.Error("expected an error")
	}
}

func TestMalformed(t *testing.T) {
	truncated := make([]byte, 84+10)
	binary.LittleEndian.PutUint32(truncated[80:], 3)
	tests := map[string]string{
		"bad number":       "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 zero\n",
		"short facet":      "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n",
		"unknown keyword":  "solid x\nfacet normal 0 0 1\nwibble\n",
		"unterminated":     "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\n",
		"truncated binary": string(truncated),
		"empty":            "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := stl.Read(strings.NewReader(in))
			if !errors.Is(err, stl.ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}
