package scene_test

import (
	"strings"
	"testing"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/scene"
	"github.com/chazu/trimesh/pkg/shape"
)

func namedBox(name string, at geom.Vec) *mesh.Mesh {
	m := shape.Box(1, 1, 1)
	m.Name = name
	for i, f := range m.Faces {
		t := f.Triangle
		m.Faces[i] = mesh.FlatFace(geom.NewTriangle(t.P1.Add(at), t.P2.Add(at), t.P3.Add(at)))
	}
	return m
}

func TestValidate(t *testing.T) {
	open := namedBox("open", geom.Vec{X: 10})
	open.Faces = open.Faces[1:]
	inverted := namedBox("inverted", geom.Vec{X: 20})
	inverted.Flip()

	tests := []struct {
		name     string
		root     *scene.Node
		errors   int
		warnings int
		contains string
	}{
		{
			name: "valid",
			root: scene.Group("ok", namedBox("a", geom.Vec{}), namedBox("b", geom.Vec{X: 2})),
		},
		{
			name:     "overlap",
			root:     scene.Group("g", namedBox("a", geom.Vec{}), namedBox("b", geom.Vec{X: 0.5})),
			warnings: 1,
			contains: "overlap",
		},
		{
			name:     "touching is fine",
			root:     scene.Group("g", namedBox("a", geom.Vec{}), namedBox("b", geom.Vec{X: 1})),
			warnings: 0,
		},
		{
			name:     "duplicate name",
			root:     scene.Group("g", namedBox("a", geom.Vec{}), namedBox("a", geom.Vec{X: 5})),
			warnings: 1,
			contains: "duplicate",
		},
		{
			name:     "open mesh",
			root:     scene.Group("g", open),
			errors:   1,
			contains: "not closed",
		},
		{
			name:     "inside out",
			root:     scene.Group("g", inverted),
			errors:   1,
			contains: "inside out",
		},
		{
			name:     "empty mesh",
			root:     scene.Group("g", mesh.New("nothing")),
			warnings: 1,
			contains: "no faces",
		},
		{
			name:     "nil child",
			root:     scene.NewNode("g", nil, nil),
			errors:   1,
			contains: "nil",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := scene.Validate(tt.root)
			errs := scene.Errors(findings)
			if len(errs) != tt.errors {
				t.Errorf("errors = %v, want %d", errs, tt.errors)
			}
			if w := len(findings) - len(errs); w != tt.warnings {
				t.Errorf("warnings = %d, want %d (%v)", w, tt.warnings, findings)
			}
			if tt.contains != "" {
				found := false
				for _, f := range findings {
					found = found || strings.Contains(f.Error(), tt.contains)
				}
				if !found {
					t.Errorf("no finding mentions %q: %v", tt.contains, findings)
				}
			}
		})
	}
}

func TestValidateCycle(t *testing.T) {
	a := scene.NewNode("a", nil)
	b := scene.NewNode("b", nil, a)
	a.Add(b)
	errs := scene.Errors(scene.Validate(a))
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "cycle") {
		t.Errorf("expected one cycle error, got %v", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	tests := []struct {
		e    scene.ValidationError
		want string
	}{
		{scene.ValidationError{Message: "m", Severity: scene.SeverityError}, "[error] m"},
		{scene.ValidationError{Node: "n", Message: "m", Severity: scene.SeverityWarning}, `[warning] node "n": m`},
	}
	for _, tt := range tests {
		if got := tt.e.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
