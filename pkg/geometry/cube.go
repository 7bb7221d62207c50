package geometry

import "github.com/Faultbox/meshkit/pkg/mesh"

// cubeFaces lists the four corners of each face of a unit cube, ordered
// counter-clockwise when seen from outside, with the face normal.
var cubeFaces = [6]struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{0, 0, 1}, [4][3]float32{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}},
	{[3]float32{1, 0, 0}, [4][3]float32{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}},
}

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Cube generates an axis-aligned cube with 24 vertices, so that every face
// carries its own constant normal and a unit-square UV layout.
func Cube(cfg CubeConfig) (*mesh.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	half := cfg.Size / 2
	m := &mesh.Mesh{
		Positions: make([][3]float32, 0, 24),
		Normals:   make([][3]float32, 0, 24),
		UVs:       make([][2]float32, 0, 24),
		Indices:   make([]uint32, 0, 36),
	}

	for _, face := range cubeFaces {
		base := uint32(len(m.Positions))
		for i, c := range face.corners {
			m.Positions = append(m.Positions, [3]float32{c[0] * half, c[1] * half, c[2] * half})
			m.Normals = append(m.Normals, face.normal)
			m.UVs = append(m.UVs, quadUVs[i])
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m, nil
}
