// Package stl reads and writes meshes as STL, in both the ASCII and the
// binary flavour.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// ErrMalformed is returned for input that is neither valid ASCII nor valid
// binary STL.
var ErrMalformed = errors.New("stl: malformed input")

const (
	headerSize   = 80
	triangleSize = 50
)

var le = binary.LittleEndian

// facet is the on-disk layout of one binary STL triangle.
type facet struct {
	Normal [3]float32
	V      [3][3]float32
	Attr   uint16
}

// Read decodes an ASCII or binary STL stream. Facet normals in the file
// are ignored; face normals are recomputed from the vertex winding.
func Read(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stl: read: %w", err)
	}
	if isBinary(data) {
		return readBinary(data)
	}
	return readASCII(data)
}

// isBinary trusts the triangle count in the header when it matches the
// data length, because binary headers may themselves start with "solid".
func isBinary(data []byte) bool {
	if len(data) >= headerSize+4 {
		n := le.Uint32(data[headerSize:])
		if uint64(len(data)) == headerSize+4+uint64(n)*triangleSize {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func readBinary(data []byte) (*mesh.Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("stl: %d bytes is shorter than a binary header: %w", len(data), ErrMalformed)
	}
	r := bytes.NewReader(data[headerSize:])
	var n uint32
	if err := binary.Read(r, le, &n); err != nil {
		return nil, fmt.Errorf("stl: triangle count: %w", ErrMalformed)
	}
	if want := uint64(n) * triangleSize; uint64(r.Len()) < want {
		return nil, fmt.Errorf("stl: %d triangles need %d bytes, have %d: %w", n, want, r.Len(), ErrMalformed)
	}

	name := strings.TrimRight(string(bytes.TrimRight(data[:headerSize], "\x00")), " ")
	m := mesh.New(name)
	m.Faces = make([]mesh.Face, 0, n)
	var f facet
	for i := uint32(0); i < n; i++ {
		if err := binary.Read(r, le, &f); err != nil {
			return nil, fmt.Errorf("stl: triangle %d: %w", i, ErrMalformed)
		}
		var p [3]geom.Vec
		for j, v := range f.V {
			p[j] = geom.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		m.AddTriangle(geom.NewTriangle(p[0], p[1], p[2]))
	}
	return m, nil
}

func readASCII(data []byte) (*mesh.Mesh, error) {
	m := mesh.New("")
	sc := bufio.NewScanner(bytes.NewReader(data))
	var (
		line int
		pts  []geom.Vec
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			m.Name = strings.Join(fields[1:], " ")
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("stl: line %d: vertex needs 3 coordinates: %w", line, ErrMalformed)
			}
			var c [3]float64
			for i := range c {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("stl: line %d: %v: %w", line, err, ErrMalformed)
				}
				c[i] = v
			}
			pts = append(pts, geom.Vec{X: c[0], Y: c[1], Z: c[2]})
		case "endloop":
			if len(pts) != 3 {
				return nil, fmt.Errorf("stl: line %d: facet with %d vertices: %w", line, len(pts), ErrMalformed)
			}
			m.AddTriangle(geom.NewTriangle(pts[0], pts[1], pts[2]))
			pts = pts[:0]
		case "facet", "outer", "endfacet", "endsolid":
		default:
			return nil, fmt.Errorf("stl: line %d: unexpected %q: %w", line, fields[0], ErrMalformed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("stl: scan: %w", err)
	}
	if len(pts) != 0 {
		return nil, fmt.Errorf("stl: unterminated facet: %w", ErrMalformed)
	}
	return m, nil
}

// Load reads an STL file and names the mesh after the file.
func Load(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// Save writes m in world space as a binary STL file.
func Save(path string, m *mesh.Mesh) error {
	w := m.Flattened()
	tris := make([]*sdf.Triangle3, 0, w.Len())
	for _, f := range w.Faces {
		t := sdf.Triangle3{f.Triangle.P1, f.Triangle.P2, f.Triangle.P3}
		tris = append(tris, &t)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("stl: save %s: %w", path, err)
	}
	return nil
}

// WriteBinary writes m in world space as binary STL.
func WriteBinary(w io.Writer, m *mesh.Mesh) error {
	wm := m.Flattened()
	var header [headerSize]byte
	copy(header[:], m.Name)
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stl: write header: %w", err)
	}
	if err := binary.Write(bw, le, uint32(wm.Len())); err != nil {
		return fmt.Errorf("stl: write count: %w", err)
	}
	for _, f := range wm.Faces {
		var out facet
		n := f.Triangle.Normal()
		out.Normal = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		for j, p := range f.Triangle.Vertices() {
			out.V[j] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		}
		if err := binary.Write(bw, le, &out); err != nil {
			return fmt.Errorf("stl: write triangle: %w", err)
		}
	}
	return bw.Flush()
}

// WriteASCII writes m in world space as ASCII STL with full float64
// precision.
func WriteASCII(w io.Writer, m *mesh.Mesh) error {
	wm := m.Flattened()
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", m.Name)
	for _, f := range wm.Faces {
		n := f.Triangle.Normal()
		fmt.Fprintf(bw, "  facet normal %v %v %v\n    outer loop\n", n.X, n.Y, n.Z)
		for _, p := range f.Triangle.Vertices() {
			fmt.Fprintf(bw, "      vertex %v %v %v\n", p.X, p.Y, p.Z)
		}
		fmt.Fprintf(bw, "    endloop\n  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", m.Name)
	return bw.Flush()
}
