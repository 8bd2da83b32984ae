package scene_test

import (
	"math"
	"testing"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/scene"
	"github.com/chazu/trimesh/pkg/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// makePart creates a unit box leaf with the given name.
func makePart(name string) *scene.Node {
	m := shape.Box(1, 1, 1)
	m.Name = ""
	return scene.NewNode(name, m)
}

// makePlace creates a translation node wrapping children.
func makePlace(name string, tx, ty, tz float64, children ...*scene.Node) *scene.Node {
	n := scene.NewNode(name, nil, children...)
	n.Local = mgl64.Translate3D(tx, ty, tz)
	return n
}

func TestFlattenNil(t *testing.T) {
	meshes, err := scene.Flatten(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes, got %d", len(meshes))
	}
}

func TestFlattenComposesTransforms(t *testing.T) {
	root := makePlace("root", 10, 0, 0,
		makePart("a"),
		makePlace("inner", 0, 5, 0, makePart("b")),
	)

	meshes, err := scene.Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}

	tests := []struct {
		name string
		min  geom.Vec
	}{
		{"a", geom.Vec{X: 10, Y: 0, Z: 0}},
		{"b", geom.Vec{X: 10, Y: 5, Z: 0}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meshes[i]
			if m.Name != tt.name {
				t.Errorf("name = %q, want %q", m.Name, tt.name)
			}
			if !geom.PointsEqual(m.Bounds().Min, tt.min) {
				t.Errorf("min = %v, want %v", m.Bounds().Min, tt.min)
			}
			if !m.Local.ApproxEqual(mgl64.Ident4()) {
				t.Errorf("local transform not flattened: %v", m.Local)
			}
			if v := m.Volume(); math.Abs(v-1) > 1e-9 {
				t.Errorf("volume = %v, want 1", v)
			}
		})
	}
}

func TestFlattenSiblingTransformsDoNotLeak(t *testing.T) {
	root := scene.NewNode("root", nil,
		makePlace("left", -3, 0, 0, makePart("l")),
		makePart("c"),
	)
	meshes, err := scene.Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if !geom.PointsEqual(meshes[1].Bounds().Min, geom.Vec{}) {
		t.Errorf("sibling picked up left's translation: %v", meshes[1].Bounds().Min)
	}
}

func TestFlattenRotationThenTranslation(t *testing.T) {
	part := makePart("p")
	part.Local = mgl64.HomogRotate3DZ(math.Pi / 2)
	root := makePlace("root", 5, 0, 0, part)

	meshes, err := scene.Flatten(root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	b := meshes[0].Bounds()
	want := geom.AABB{Min: geom.Vec{X: 4, Y: 0, Z: 0}, Max: geom.Vec{X: 5, Y: 1, Z: 1}}
	if !geom.PointsEqual(b.Min, want.Min) || !geom.PointsEqual(b.Max, want.Max) {
		t.Errorf("bounds = %v, want %v", b, want)
	}
	if !meshes[0].CheckCorrectness().IsCorrect() {
		t.Errorf("rotated part is not closed: %s", meshes[0].CheckCorrectness())
	}
}

func TestFlattenDoesNotMutateTree(t *testing.T) {
	part := makePart("p")
	before := part.Mesh.Clone()
	root := makePlace("root", 1, 2, 3, part)

	if _, err := scene.Flatten(root); err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	for i := range before.Faces {
		if before.Faces[i] != part.Mesh.Faces[i] {
			t.Fatalf("face %d changed", i)
		}
	}
}

func TestFlattenKeepsMeshName(t *testing.T) {
	n := scene.NewNode("node", mesh.New("own"))
	meshes, err := scene.Flatten(n)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if meshes[0].Name != "own" {
		t.Errorf("name = %q, want own", meshes[0].Name)
	}
}

func TestFlattenErrors(t *testing.T) {
	t.Run("nil child", func(t *testing.T) {
		root := scene.NewNode("root", nil, nil)
		if _, err := scene.Flatten(root); err == nil {
			t.Fatal("expected error for nil child")
		}
	})
	t.Run("cycle", func(t *testing.T) {
		a := scene.NewNode("a", nil)
		b := scene.NewNode("b", nil, a)
		a.Add(b)
		if _, err := scene.Flatten(a); err == nil {
			t.Fatal("expected error for cycle")
		}
	})
}

func TestLookup(t *testing.T) {
	target := makePart("target")
	root := scene.NewNode("root", nil, makePlace("x", 1, 0, 0, target))
	if got := root.Lookup("target"); got != target {
		t.Errorf("Lookup returned %v", got)
	}
	if got := root.Lookup("missing"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
