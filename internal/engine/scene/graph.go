// Package scene provides the scene graph: nodes with local transforms
// composed into world matrices, entities that reference meshes and
// materials, and the lights of a scene.
package scene

import (
	"github.com/Faultbox/meshkit/internal/engine/picking"
)

// DefaultBackground is the clear colour of a new graph.
var DefaultBackground = [4]float32{0.08, 0.08, 0.1, 1}

// Graph owns a root node, the entities registered at top level and the lights.
type Graph struct {
	root       *Node
	entities   []*Node
	lights     []Light
	background [4]float32
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		root:       NewNode("Root"),
		background: DefaultBackground,
	}
}

// Root returns the root node.
func (g *Graph) Root() *Node {
	return g.root
}

// AddEntity registers n and attaches it under the root.
func (g *Graph) AddEntity(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if err := g.root.AddChild(n); err != nil {
		return err
	}
	for _, e := range g.entities {
		if e == n {
			return nil
		}
	}
	g.entities = append(g.entities, n)
	return nil
}

// RemoveEntity unregisters n and detaches it from wherever it sits in the
// tree. The subtree under n goes with it.
func (g *Graph) RemoveEntity(n *Node) bool {
	found := false
	for i, e := range g.entities {
		if e == n {
			g.entities = append(g.entities[:i], g.entities[i+1:]...)
			found = true
			break
		}
	}
	if n == nil || !g.contains(n) {
		return found
	}
	n.Detach()
	return true
}

// contains reports whether n is a descendant of the root.
func (g *Graph) contains(n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == g.root {
			return true
		}
	}
	return false
}

// Entities returns a copy of the registered entity list.
func (g *Graph) Entities() []*Node {
	out := make([]*Node, len(g.entities))
	copy(out, g.entities)
	return out
}

// UpdateWorldMatrices recomputes every world matrix from the root down.
func (g *Graph) UpdateWorldMatrices() {
	g.root.UpdateWorldMatrix(nil)
}

// Traverse visits every node, root first, in pre-order.
func (g *Graph) Traverse(fn func(*Node)) {
	g.root.Traverse(fn)
}

// AddLight appends a light. Nil lights are ignored.
func (g *Graph) AddLight(l Light) {
	switch v := l.(type) {
	case nil:
		return
	case *DirectionalLight:
		if v == nil {
			return
		}
	case *PointLight:
		if v == nil {
			return
		}
	}
	g.lights = append(g.lights, l)
}

// Lights returns all lights in insertion order.
func (g *Graph) Lights() []Light {
	out := make([]Light, len(g.lights))
	copy(out, g.lights)
	return out
}

// DirectionalLights returns the directional lights in insertion order.
func (g *Graph) DirectionalLights() []*DirectionalLight {
	var out []*DirectionalLight
	for _, l := range g.lights {
		if d, ok := l.(*DirectionalLight); ok {
			out = append(out, d)
		}
	}
	return out
}

// PointLights returns the point lights in insertion order.
func (g *Graph) PointLights() []*PointLight {
	var out []*PointLight
	for _, l := range g.lights {
		if p, ok := l.(*PointLight); ok {
			out = append(out, p)
		}
	}
	return out
}

// Background returns the clear colour as RGBA.
func (g *Graph) Background() [4]float32 {
	return g.background
}

// SetBackground sets the clear colour.
func (g *Graph) SetBackground(rgba [4]float32) {
	g.background = rgba
}

// Pick returns the nearest visible node whose world-space mesh bounds the
// ray hits, with the hit distance. Hidden nodes hide their subtree.
func (g *Graph) Pick(ray picking.Ray) (*Node, float32, bool) {
	g.UpdateWorldMatrices()

	var (
		best  *Node
		bestT float32
	)
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if box, ok := n.WorldBounds(); ok {
			if t, hit := ray.IntersectAABB(box); hit && (best == nil || t < bestT) {
				best, bestT = n, t
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(g.root)

	return best, bestT, best != nil
}
