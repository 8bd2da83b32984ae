package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/trimesh/pkg/stl"
)

const hollowBox = "../../examples/hollow_box.trimesh"

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunWritesSTL(t *testing.T) {
	dir := t.TempDir()
	out, err := runArgs(t, "-script", hollowBox, "-out", dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	path := filepath.Join(dir, "hollow-box.stl")
	if !strings.Contains(out, path) {
		t.Errorf("stdout %q does not name %s", out, path)
	}
	m, err := stl.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := 40.0*40*40 - 30*30*30 - 6*6*5
	if v := m.Volume(); math.Abs(v-want) > 1e-3*want {
		t.Errorf("volume = %v, want %v", v, want)
	}

	report, err := runArgs(t, "-check", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(report, "hollow-box: ok:") {
		t.Errorf("check report = %q", report)
	}
}

func TestRunASCII(t *testing.T) {
	dir := t.TempDir()
	if _, err := runArgs(t, "-script", hollowBox, "-out", dir, "-ascii"); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "hollow-box.stl"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("solid hollow-box")) {
		t.Errorf("not an ASCII STL: %q", data[:min(len(data), 40)])
	}
}

func TestRunStreamsSTL(t *testing.T) {
	want := 40.0*40*40 - 30*30*30 - 6*6*5
	for _, ascii := range []bool{false, true} {
		name := "binary"
		args := []string{"-script", hollowBox, "-out", "-"}
		if ascii {
			name = "ascii"
			args = append(args, "-ascii")
		}
		t.Run(name, func(t *testing.T) {
			out, err := runArgs(t, args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if ascii != strings.HasPrefix(out, "solid hollow_box") {
				t.Errorf("stream starts with %q", out[:min(len(out), 20)])
			}
			m, err := stl.Read(strings.NewReader(out))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if v := m.Volume(); math.Abs(v-want) > 1e-3*want {
				t.Errorf("volume = %v, want %v", v, want)
			}
			if r := m.CheckCorrectness(); !r.IsCorrect() {
				t.Errorf("streamed mesh: %v", r)
			}
		})
	}
}

func TestRunJSON(t *testing.T) {
	out, err := runArgs(t, "-script", hollowBox, "-json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got struct {
		Meshes []struct {
			ID       string    `json:"id"`
			PartName string    `json:"partName"`
			Color    string    `json:"color"`
			Vertices []float32 `json:"vertices"`
		} `json:"meshes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(got.Meshes))
	}
	m := got.Meshes[0]
	if m.PartName != "hollow-box" || m.Color == "" || m.ID == "" || len(m.Vertices) == 0 {
		t.Errorf("unexpected mesh data: %+v", m.PartName)
	}
}

func TestRunSection(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		prefix []byte
	}{
		{"svg", "cut.svg", []byte("<?xml")},
		{"png", "cut.png", []byte("\x89PNG")},
		{"dxf", "cut.dxf", []byte("0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			out, err := runArgs(t, "-script", hollowBox, "-out", dir,
				"-section", path, "-plane", "0,0,20,0,0,1")
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.Contains(out, "segments") {
				t.Errorf("stdout = %q", out)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.HasPrefix(bytes.TrimSpace(data), tt.prefix) {
				t.Errorf("unexpected header %q", data[:min(len(data), 16)])
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.trimesh")
	if err := os.WriteFile(bad, []byte("(emit (box 1 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"no input", nil, errUsage},
		{"missing script", []string{"-script", filepath.Join(dir, "nope.trimesh")}, nil},
		{"script error", []string{"-script", bad, "-out", dir}, nil},
		{"missing stl", []string{"-check", filepath.Join(dir, "nope.stl")}, nil},
		{"bad plane", []string{"-script", hollowBox, "-out", dir, "-section", filepath.Join(dir, "x.svg"), "-plane", "1,2,3"}, nil},
		{"plane misses", []string{"-script", hollowBox, "-out", dir, "-section", filepath.Join(dir, "x.svg"), "-plane", "0,0,100,0,0,1"}, nil},
		{"bad format", []string{"-script", hollowBox, "-out", dir, "-section", filepath.Join(dir, "x.bmp"), "-plane", "0,0,20,0,0,1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runArgs(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		in   string
		i    int
		want string
	}{
		{"hollow-box", 0, "hollow-box"},
		{"my part.v2", 0, "my_part_v2"},
		{"../etc", 3, "__etc"},
		{"", 4, "mesh-4"},
		{"///", 1, "mesh-1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := fileName(tt.in, tt.i); got != tt.want {
				t.Errorf("fileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunReportsFindings(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "overlap.trimesh")
	src := `(emit (box 1 1 1) "a") (emit (translate (box 1 1 1) (vec3 0.5 0 0)) "b")`
	if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-script", script, "-out", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "overlap") {
		t.Errorf("stderr = %q, want an overlap warning", stderr.String())
	}
}
