// Package mesh provides the unified vertex/index record shared by every mesh
// producer, plus the builders used to assemble it.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshkit/pkg/math"
)

// ErrInvalidMesh is wrapped by every Validate failure.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an indexed triangle list with optional normals and texture coordinates.
// Producers return a finished Mesh; it is not mutated afterwards.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32 // nil when absent
	UVs       [][2]float32 // nil when absent
	Indices   []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the extent of the box on each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// VertexCount returns the number of unified vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// HasNormals reports whether per-vertex normals are present.
func (m *Mesh) HasNormals() bool {
	return m.Normals != nil
}

// HasUVs reports whether per-vertex texture coordinates are present.
func (m *Mesh) HasUVs() bool {
	return m.UVs != nil
}

// Triangle returns the three vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// IndexWidth returns the element width a renderer needs for this index list.
func (m *Mesh) IndexWidth() IndexWidth {
	return SelectIndexWidth(m.Indices)
}

// Bounds returns the bounding box of all positions.
// An empty mesh yields a zero box.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	lo := math.V3(m.Positions[0])
	hi := lo
	for _, p := range m.Positions[1:] {
		v := math.V3(p)
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return Bounds{Min: lo.Array(), Max: hi.Array()}
}

// Validate checks the record invariants: attribute lengths match the
// position count, the index list is a whole number of triangles, and
// every index addresses an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), n)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("%w: %d uvs for %d positions", ErrInvalidMesh, len(m.UVs), n)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d exceeds vertex count %d", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}
