package scene

import (
	"fmt"
	"slices"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/mesh"
)

// ValidationSeverity indicates whether a finding makes the scene unusable
// for booleans and export or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // unusable
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     string // node name, empty for scene-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %q: %s", e.Severity, e.Node, e.Message)
}

// Group wraps meshes in leaf nodes under one parent named name.
func Group(name string, meshes ...*mesh.Mesh) *Node {
	g := NewNode(name, nil)
	for _, m := range meshes {
		g.Add(NewNode(m.Name, m))
	}
	return g
}

// Validate runs the structural checks and, when they pass, the geometric
// checks on the flattened meshes. An empty slice means the scene is valid.
// It never mutates the tree.
func Validate(root *Node) []ValidationError {
	if root == nil {
		return nil
	}
	if errs := validateDAG(root); len(errs) > 0 {
		return errs
	}
	errs := validateNames(root)
	meshes, err := Flatten(root)
	if err != nil {
		return append(errs, ValidationError{Node: root.Name, Message: err.Error(), Severity: SeverityError})
	}
	return append(errs, validateGeometry(meshes)...)
}

// Errors filters the blocking findings.
func Errors(findings []ValidationError) []ValidationError {
	return slices.DeleteFunc(slices.Clone(findings), func(e ValidationError) bool {
		return e.Severity != SeverityError
	})
}

// validateDAG checks for cycles and nil children using DFS with 3-color
// marking. Reaching a gray node means the current path loops.
func validateDAG(root *Node) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Node]int)
	var errs []ValidationError

	var visit func(n *Node) bool // true if a cycle was found
	visit = func(n *Node) bool {
		switch color[n] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Node:     n.Name,
				Message:  "cycle detected: node is its own ancestor",
				Severity: SeverityError,
			})
			return true
		}
		color[n] = gray
		for i, c := range n.Children {
			if c == nil {
				errs = append(errs, ValidationError{
					Node:     n.Name,
					Message:  fmt.Sprintf("child %d is nil", i),
					Severity: SeverityError,
				})
				continue
			}
			if visit(c) {
				return true
			}
		}
		color[n] = black
		return false
	}
	visit(root)
	return errs
}

// validateNames reports names used by more than one geometry node. Exported
// files are named after their mesh, so duplicates would overwrite each other.
func validateNames(root *Node) []ValidationError {
	seen := make(map[string]bool)
	var errs []ValidationError
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Mesh != nil && n.Name != "" {
			if seen[n.Name] {
				errs = append(errs, ValidationError{
					Node:     n.Name,
					Message:  "duplicate name",
					Severity: SeverityWarning,
				})
			}
			seen[n.Name] = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return errs
}

// validateGeometry checks every mesh for emptiness, closure and winding,
// and every pair for overlapping bounds.
func validateGeometry(meshes []*mesh.Mesh) []ValidationError {
	var errs []ValidationError
	for _, m := range meshes {
		if m.IsEmpty() {
			errs = append(errs, ValidationError{Node: m.Name, Message: "mesh has no faces", Severity: SeverityWarning})
			continue
		}
		if r := m.CheckCorrectness(); !r.IsCorrect() {
			errs = append(errs, ValidationError{
				Node:     m.Name,
				Message:  fmt.Sprintf("mesh is not closed (%s)", r),
				Severity: SeverityError,
			})
			continue
		}
		if v := m.Volume(); v < -geom.Tolerance {
			errs = append(errs, ValidationError{
				Node:     m.Name,
				Message:  fmt.Sprintf("mesh is inside out (volume %.4g)", v),
				Severity: SeverityError,
			})
		}
	}

	for i := range meshes {
		for j := i + 1; j < len(meshes); j++ {
			a, b := meshes[i], meshes[j]
			if a.IsEmpty() || b.IsEmpty() {
				continue
			}
			overlap, ok := a.Bounds().Intersection(b.Bounds())
			if !ok {
				continue
			}
			if v := overlap.Volume(); v > geom.Tolerance {
				errs = append(errs, ValidationError{
					Node:     a.Name,
					Message:  fmt.Sprintf("bounds overlap %q by %.4g", b.Name, v),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
