package scene

import (
	"errors"

	"github.com/Faultbox/meshkit/internal/engine/picking"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Scene graph errors.
var (
	ErrNilNode = errors.New("nil node")
	ErrCycle   = errors.New("node cannot become a descendant of itself")
)

// Node is an element of the scene graph. A node with a Mesh is an entity.
// Mesh and Material are shared references; the graph never mutates them.
type Node struct {
	Name      string
	Transform Transform
	Visible   bool
	Mesh      *mesh.Mesh
	Material  *Material

	world    math.Mat4
	parent   *Node
	children []*Node
}

// NewNode creates a visible node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: NewTransform(),
		Visible:   true,
		world:     math.Identity(),
	}
}

// NewEntity creates a node that carries a mesh and material.
func NewEntity(name string, m *mesh.Mesh, mat *Material) *Node {
	n := NewNode(name)
	n.Mesh = m
	n.Material = mat
	return n
}

// AddChild attaches child to n, detaching it from its former parent first.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	n.children = append(n.children, child)
	child.parent = n
	return nil
}

// RemoveChild detaches child and reports whether it was a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Parent returns the owning node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// UpdateWorldMatrix recomputes the world matrix of n and its whole subtree.
// parent is the parent's world matrix, or nil for a root.
func (n *Node) UpdateWorldMatrix(parent *math.Mat4) {
	local := n.Transform.Matrix()
	if parent != nil {
		n.world = parent.Mul(local)
	} else {
		n.world = local
	}
	for _, c := range n.children {
		c.UpdateWorldMatrix(&n.world)
	}
}

// WorldMatrix returns the matrix computed by the last UpdateWorldMatrix.
func (n *Node) WorldMatrix() math.Mat4 {
	return n.world
}

// WorldPosition returns where the node's local origin lands in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.world.Translation()
}

// WorldBounds returns the mesh bounds transformed by the world matrix.
// ok is false for nodes without a non-empty mesh.
func (n *Node) WorldBounds() (box picking.AABB, ok bool) {
	if n.Mesh == nil || len(n.Mesh.Positions) == 0 {
		return picking.AABB{}, false
	}
	b := n.Mesh.Bounds()
	return picking.TransformAABB(picking.AABB{Min: b.Min, Max: b.Max}, n.world), true
}

// Traverse visits n and its descendants in pre-order.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Clone copies the node and its subtree. Transforms are copied; Mesh and
// Material are shared with the original. The clone has no parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Name:      n.Name,
		Transform: n.Transform,
		Visible:   n.Visible,
		Mesh:      n.Mesh,
		Material:  n.Material,
		world:     n.world,
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
