package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeNormalsSingleTriangle(t *testing.T) {
	m := triangle()
	normals := SynthesizeNormals(m.Positions, m.Indices)

	require.Len(t, normals, 3)
	for _, n := range normals {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, n[:], 1e-6)
	}
}

func TestSynthesizeNormalsReversedWinding(t *testing.T) {
	m := triangle()
	normals := SynthesizeNormals(m.Positions, []uint32{0, 2, 1})

	for _, n := range normals {
		assert.InDeltaSlice(t, []float32{0, 0, -1}, n[:], 1e-6)
	}
}

func TestSynthesizeNormalsAreaWeighted(t *testing.T) {
	// Vertex 0 is shared by a large +Z face and a small +X face.
	positions := [][3]float32{
		{0, 0, 0}, {4, 0, 0}, {0, 4, 0},
		{0, 1, 0}, {0, 0, 1},
	}
	indices := []uint32{0, 1, 2, 0, 3, 4}
	normals := SynthesizeNormals(positions, indices)

	n := normals[0]
	assert.Greater(t, n[2], n[0], "larger face should dominate")
	assert.InDelta(t, 1.0, float64(n[0]*n[0]+n[1]*n[1]+n[2]*n[2]), 1e-5)
}

func TestSynthesizeNormalsFallback(t *testing.T) {
	tests := []struct {
		name      string
		positions [][3]float32
		indices   []uint32
	}{
		{"unreferenced vertex", [][3]float32{{0, 0, 0}}, nil},
		{"degenerate triangle", [][3]float32{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}, []uint32{0, 1, 2}},
		{"out of range triangle", [][3]float32{{0, 0, 0}, {1, 0, 0}}, []uint32{0, 1, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, n := range SynthesizeNormals(tt.positions, tt.indices) {
				assert.Equal(t, FallbackNormal, n)
			}
		})
	}
}

func TestSynthesizeNormalsCancelling(t *testing.T) {
	// Same triangle listed with both windings: contributions sum to zero.
	m := triangle()
	normals := SynthesizeNormals(m.Positions, []uint32{0, 1, 2, 0, 2, 1})
	for _, n := range normals {
		assert.Equal(t, FallbackNormal, n)
	}
}

func TestUnitFaceNormal(t *testing.T) {
	got := UnitFaceNormal([3]float32{0, 0, 0}, [3]float32{0, 0, 2}, [3]float32{2, 0, 0}, FallbackNormal)
	assert.InDeltaSlice(t, []float32{0, 1, 0}, got[:], 1e-6)

	got = UnitFaceNormal([3]float32{}, [3]float32{}, [3]float32{}, [3]float32{1, 0, 0})
	assert.Equal(t, [3]float32{1, 0, 0}, got)
}
