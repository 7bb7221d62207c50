package model

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// FromMesh interleaves a validated mesh record. Missing normals are
// synthesized and missing texture coordinates are zero.
func FromMesh(m *mesh.Mesh) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	normals := m.Normals
	synthesized := false
	if normals == nil {
		normals = mesh.SynthesizeNormals(m.Positions, m.Indices)
		synthesized = true
	}

	vertices := make([]Vertex, len(m.Positions))
	for i, p := range m.Positions {
		vertices[i].Position = p
		vertices[i].Normal = normals[i]
		if m.UVs != nil {
			vertices[i].TexCoord = m.UVs[i]
		}
	}

	indices := make([]uint32, len(m.Indices))
	copy(indices, m.Indices)

	return &Model{
		Vertices:           vertices,
		Indices:            indices,
		IndexWidth:         mesh.SelectIndexWidth(indices),
		Bounds:             m.Bounds(),
		NormalsSynthesized: synthesized,
	}, nil
}

// VertexBytes packs the vertices little-endian at VertexStride.
func (md *Model) VertexBytes() []byte {
	out := make([]byte, 0, len(md.Vertices)*VertexStride)
	put := func(vs ...float32) {
		for _, v := range vs {
			out = binary.LittleEndian.AppendUint32(out, gomath.Float32bits(v))
		}
	}
	for _, v := range md.Vertices {
		put(v.Position[0], v.Position[1], v.Position[2])
		put(v.Normal[0], v.Normal[1], v.Normal[2])
		put(v.TexCoord[0], v.TexCoord[1])
	}
	return out
}

// IndexBytes packs the indices at the model's index width.
func (md *Model) IndexBytes() []byte {
	return mesh.PackIndices(md.Indices, md.IndexWidth)
}

// CenterXZ moves the model so its bounds are centered on the Y axis and
// returns the applied offset.
func (md *Model) CenterXZ() (centerX, centerZ float32) {
	c := md.Bounds.Center()
	centerX, centerZ = c[0], c[2]

	for i := range md.Vertices {
		md.Vertices[i].Position[0] -= centerX
		md.Vertices[i].Position[2] -= centerZ
	}
	md.Bounds.Min[0] -= centerX
	md.Bounds.Max[0] -= centerX
	md.Bounds.Min[2] -= centerZ
	md.Bounds.Max[2] -= centerZ

	return centerX, centerZ
}

// Bake returns a copy with positions transformed by world and normals by
// its rotation and scale part, renormalized. Bounds are recomputed.
// A transform with an odd number of negative scales reverses winding,
// so triangle order is flipped to stay front-facing.
func (md *Model) Bake(world math.Mat4) *Model {
	out := &Model{
		Vertices:           make([]Vertex, len(md.Vertices)),
		Indices:            make([]uint32, len(md.Indices)),
		IndexWidth:         md.IndexWidth,
		NormalsSynthesized: md.NormalsSynthesized,
	}

	inv := world.Inverse()
	for i, v := range md.Vertices {
		n := inverseTranspose(inv, v.Normal)
		out.Vertices[i] = Vertex{
			Position: world.TransformPoint(v.Position),
			Normal:   math.V3(n).NormalizeOr(math.V3(v.Normal)).Array(),
			TexCoord: v.TexCoord,
		}
	}

	copy(out.Indices, md.Indices)
	if determinant3(world) < 0 {
		for t := 0; t+2 < len(out.Indices); t += 3 {
			out.Indices[t+1], out.Indices[t+2] = out.Indices[t+2], out.Indices[t+1]
		}
	}

	positions := make([][3]float32, len(out.Vertices))
	for i, v := range out.Vertices {
		positions[i] = v.Position
	}
	out.Bounds = (&mesh.Mesh{Positions: positions}).Bounds()
	return out
}

// inverseTranspose multiplies n by the transpose of inv's upper 3x3.
func inverseTranspose(inv math.Mat4, n [3]float32) [3]float32 {
	return [3]float32{
		inv[0]*n[0] + inv[1]*n[1] + inv[2]*n[2],
		inv[4]*n[0] + inv[5]*n[1] + inv[6]*n[2],
		inv[8]*n[0] + inv[9]*n[1] + inv[10]*n[2],
	}
}

func determinant3(m math.Mat4) float32 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}
