package mesh

import "github.com/Faultbox/meshkit/pkg/math"

// FallbackNormal is used for vertices that receive no usable face contribution.
var FallbackNormal = [3]float32{0, 0, 1}

// SynthesizeNormals computes smooth per-vertex normals from triangle topology.
//
// Each triangle adds its unnormalized edge cross product (p1-p0)x(p2-p0) to
// all three of its vertices, so larger faces weigh more. Every accumulator
// is then normalized on its own. Vertices touched by no triangle, or whose
// contributions cancel out, get FallbackNormal. Triangles that reference
// missing vertices are skipped.
func SynthesizeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	n := uint32(len(positions))
	accum := make([]math.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		face := FaceNormal(positions[i0], positions[i1], positions[i2])
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	fallback := math.V3(FallbackNormal)
	normals := make([][3]float32, n)
	for i, a := range accum {
		normals[i] = a.NormalizeOr(fallback).Array()
	}
	return normals
}

// FaceNormal returns the unnormalized cross product of the triangle's edges.
// Its length is twice the triangle area.
func FaceNormal(p0, p1, p2 [3]float32) math.Vec3 {
	a := math.V3(p0)
	return math.V3(p1).Sub(a).Cross(math.V3(p2).Sub(a))
}

// UnitFaceNormal returns the normalized face normal, or fallback for a
// degenerate triangle.
func UnitFaceNormal(p0, p1, p2 [3]float32, fallback [3]float32) [3]float32 {
	return FaceNormal(p0, p1, p2).NormalizeOr(math.V3(fallback)).Array()
}
