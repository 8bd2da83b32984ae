// Command trimesh evaluates mesh scripts, writes the emitted solids as STL
// files and inspects existing STL files.
//
// Usage:
//
//	trimesh -script part.trimesh -out build/
//	trimesh -script part.trimesh -out - > part.stl
//	trimesh -script part.trimesh -json > buffers.json
//	trimesh -script part.trimesh -section cut.svg -plane 0,0,5,0,0,1
//	trimesh -check part.stl
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/scene"
	"github.com/chazu/trimesh/pkg/section"
	"github.com/chazu/trimesh/pkg/stl"
	"github.com/chazu/trimesh/pkg/triangulate"
)

// errUsage is returned when neither -script nor -check is given.
var errUsage = errors.New("one of -script or -check is required")

type config struct {
	script   string
	check    string
	out      string
	ascii    bool
	jsonOut  bool
	section  string
	plane    string
	scale    float64
	timeout  time.Duration
	workers  int
	cells    int
	simplify bool
	delaunay bool
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	c := &config{}
	fs := flag.NewFlagSet("trimesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.script, "script", "", "script `file` to evaluate")
	fs.StringVar(&c.check, "check", "", "STL `file` to inspect")
	fs.StringVar(&c.out, "out", ".", "output `directory` for STL files, or - to write one STL of all solids to stdout")
	fs.BoolVar(&c.ascii, "ascii", false, "write ASCII instead of binary STL")
	fs.BoolVar(&c.jsonOut, "json", false, "print display buffers as JSON instead of writing STL")
	fs.StringVar(&c.section, "section", "", "write a planar section to `file` (.svg, .dxf or .png)")
	fs.StringVar(&c.plane, "plane", "0,0,0,0,0,1", "section plane as `px,py,pz,nx,ny,nz`")
	fs.Float64Var(&c.scale, "scale", section.DefaultOptions.Scale, "section drawing units per model unit")
	fs.DurationVar(&c.timeout, "timeout", engine.EvalTimeout, "script evaluation limit")
	fs.IntVar(&c.workers, "workers", 0, "goroutines per boolean operation (0 = all CPUs)")
	fs.IntVar(&c.cells, "cells", 0, "marching cubes resolution of curved primitives (0 = default)")
	fs.BoolVar(&c.simplify, "simplify", false, "merge coplanar faces after every boolean operation")
	fs.BoolVar(&c.delaunay, "delaunay", false, "cap cut openings with the Delaunay triangulator")
	fs.BoolVar(&c.verbose, "v", false, "log kernel statistics to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.script == "" && c.check == "" {
		fs.Usage()
		return nil, errUsage
	}
	return c, nil
}

// parsePlane reads "px,py,pz,nx,ny,nz".
func parsePlane(s string) (geom.Plane, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return geom.Plane{}, fmt.Errorf("plane %q: want 6 comma-separated numbers", s)
	}
	var v [6]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("plane %q: %w", s, err)
		}
		v[i] = f
	}
	n := geom.Vec{X: v[3], Y: v[4], Z: v[5]}
	if geom.IsZero(n.Length()) {
		return geom.Plane{}, fmt.Errorf("plane %q: zero normal", s)
	}
	return geom.NewPlane(geom.Vec{X: v[0], Y: v[1], Z: v[2]}, n), nil
}

func (c *config) kernel(stderr io.Writer) *kernel.Kernel {
	opts := []kernel.Option{
		kernel.WithWorkers(c.workers),
		kernel.WithSimplify(c.simplify),
	}
	if c.cells > 0 {
		opts = append(opts, kernel.WithMeshCells(c.cells))
	}
	if c.delaunay {
		opts = append(opts, kernel.WithTriangulator(triangulate.Delaunay{}))
	}
	if c.verbose {
		opts = append(opts, kernel.WithLogger(log.New(stderr, "trimesh: ", 0)))
	}
	return kernel.New(opts...)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	// progress lines stay off stdout while it carries the STL stream
	report := stdout
	if c.out == "-" && !c.jsonOut {
		report = stderr
	}

	var solids []*mesh.Mesh
	if c.check != "" {
		m, err := stl.Load(c.check)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d faces, volume %g, area %g\n", m.Name, m.Len(), m.Volume(), m.Area())
		fmt.Fprintf(stdout, "%s: %s\n", m.Name, m.CheckCorrectness())
		solids = append(solids, m)
	}

	if c.script != "" {
		src, err := os.ReadFile(c.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		k := c.kernel(stderr)
		var engOpts []engine.Option
		if c.verbose {
			engOpts = append(engOpts, engine.WithLogger(log.New(stderr, "trimesh: ", 0)))
		}
		app := NewApp(k, append(engOpts, engine.WithTimeout(c.timeout))...)

		result := app.Evaluate(ctx, string(src))
		if len(result.Errors) > 0 {
			for _, e := range result.Errors {
				fmt.Fprintf(stderr, "%s: %s\n", c.script, engine.EvalError{Line: e.Line, Col: e.Col, Message: e.Message})
			}
			return fmt.Errorf("%s: %d errors", c.script, len(result.Errors))
		}

		for _, f := range scene.Validate(scene.Group(c.script, result.solids...)) {
			fmt.Fprintf(stderr, "%s: %s\n", c.script, f)
		}

		if c.jsonOut {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
		} else if c.out == "-" {
			name := fileName(strings.TrimSuffix(filepath.Base(c.script), filepath.Ext(c.script)), 0)
			if err := writeStream(stdout, name, result.solids, c.ascii); err != nil {
				return err
			}
		} else if err := writeSTL(c.out, result.solids, c.ascii, report); err != nil {
			return err
		}
		solids = append(solids, result.solids...)
	}

	if c.section != "" {
		return writeSection(c, solids, report)
	}
	return nil
}

// writeSTL writes one file per mesh into dir, named after the mesh.
func writeSTL(dir string, meshes []*mesh.Mesh, ascii bool, stdout io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	seen := map[string]int{}
	for i, m := range meshes {
		name := fileName(m.Name, i)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		seen[name]++
		path := filepath.Join(dir, name+".stl")

		var err error
		if ascii {
			err = saveASCII(path, m)
		} else {
			err = stl.Save(path, m)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%d faces)\n", path, m.Len())
	}
	return nil
}

// writeStream writes all meshes as a single STL named name.
func writeStream(w io.Writer, name string, meshes []*mesh.Mesh, ascii bool) error {
	all := mesh.New(name)
	for _, m := range meshes {
		all.Append(m.Flattened())
	}
	if ascii {
		return stl.WriteASCII(w, all)
	}
	return stl.WriteBinary(w, all)
}

func saveASCII(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	if err := stl.WriteASCII(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fileName keeps letters, digits, '-' and '_' of name, falling back to
// mesh-<i>.
func fileName(name string, i int) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		}
		return -1
	}, name)
	if clean == "" {
		return fmt.Sprintf("mesh-%d", i)
	}
	return clean
}

func writeSection(c *config, solids []*mesh.Mesh, stdout io.Writer) error {
	plane, err := parsePlane(c.plane)
	if err != nil {
		return err
	}
	all := mesh.New("section")
	for _, m := range solids {
		all.Append(m.Flattened())
	}
	s := section.Slice(all, plane)
	if len(s.Segments) == 0 {
		return fmt.Errorf("section: plane %s misses every solid", c.plane)
	}
	if err := s.Save(c.section, section.Options{Scale: c.scale, Margin: section.DefaultOptions.Margin}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d segments, length %g)\n", c.section, len(s.Segments), s.Length())
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("trimesh: ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}
