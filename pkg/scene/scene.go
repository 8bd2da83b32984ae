// Package scene walks a transform hierarchy and produces independent
// world-space meshes, one per node that carries geometry.
package scene

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is one element of the hierarchy. A node without a mesh only groups
// and places its children.
type Node struct {
	Name     string
	Local    mgl64.Mat4
	Mesh     *mesh.Mesh
	Children []*Node
}

// NewNode returns a node with an identity local transform.
func NewNode(name string, m *mesh.Mesh, children ...*Node) *Node {
	return &Node{Name: name, Local: mgl64.Ident4(), Mesh: m, Children: children}
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Transform pre-multiplies t onto the node's local transform.
func (n *Node) Transform(t mgl64.Mat4) *Node {
	n.Local = t.Mul4(n.local())
	return n
}

func (n *Node) local() mgl64.Mat4 {
	if n.Local == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return n.Local
}

// Lookup returns the first node named name in depth-first order, or nil.
func (n *Node) Lookup(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Lookup(name); found != nil {
			return found
		}
	}
	return nil
}

// transformStack holds the composed world matrix at every depth of the walk.
type transformStack struct {
	mats []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{mats: []mgl64.Mat4{mgl64.Ident4()}}
}

func (ts *transformStack) top() mgl64.Mat4 {
	return ts.mats[len(ts.mats)-1]
}

func (ts *transformStack) push(local mgl64.Mat4) {
	ts.mats = append(ts.mats, ts.top().Mul4(local))
}

func (ts *transformStack) pop() {
	if len(ts.mats) > 1 {
		ts.mats = ts.mats[:len(ts.mats)-1]
	}
}

// Flatten walks the tree rooted at root and returns one world-space mesh
// per node that carries geometry. The tree and its meshes are not
// modified.
func Flatten(root *Node) ([]*mesh.Mesh, error) {
	if root == nil {
		return nil, nil
	}
	return walkNode(root, newTransformStack(), map[*Node]bool{})
}

// walkNode pushes the node's transform, emits its mesh, recurses into the
// children, then pops.
func walkNode(n *Node, ts *transformStack, visiting map[*Node]bool) ([]*mesh.Mesh, error) {
	if visiting[n] {
		return nil, fmt.Errorf("scene: cycle through node %q", n.Name)
	}
	visiting[n] = true
	defer delete(visiting, n)

	ts.push(n.local())
	defer ts.pop()

	var meshes []*mesh.Mesh
	if n.Mesh != nil {
		w := n.Mesh.World(ts.top())
		if w.Name == "" {
			w.Name = n.Name
		}
		meshes = append(meshes, w)
	}
	for i, child := range n.Children {
		if child == nil {
			return nil, fmt.Errorf("scene: node %q has nil child %d", n.Name, i)
		}
		collected, err := walkNode(child, ts, visiting)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}
