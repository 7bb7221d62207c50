// Package model builds render-ready vertex and index data from mesh records.
package model

import "github.com/Faultbox/meshkit/pkg/mesh"

// Vertex is one interleaved vertex: position, normal, texture coordinate.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// VertexStride is the size of a packed Vertex in bytes.
const VertexStride = 8 * 4

// Model holds interleaved vertices and indices ready for GPU upload.
type Model struct {
	Vertices   []Vertex
	Indices    []uint32
	IndexWidth mesh.IndexWidth
	Bounds     mesh.Bounds

	// NormalsSynthesized is set when the source mesh had no normals.
	NormalsSynthesized bool
}
