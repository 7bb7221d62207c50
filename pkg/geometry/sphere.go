package geometry

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Sphere generates a UV sphere on a (LatitudeBands+1) x (LongitudeBands+1)
// vertex grid. Theta runs from the +Y pole (0) to the -Y pole (pi); phi wraps
// once around the Y axis. The first and last grid columns coincide so the
// texture seam has its own vertices.
func Sphere(cfg SphereConfig) (*mesh.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lat, lon := cfg.LatitudeBands, cfg.LongitudeBands
	count := (lat + 1) * (lon + 1)
	m := &mesh.Mesh{
		Positions: make([][3]float32, 0, count),
		Normals:   make([][3]float32, 0, count),
		UVs:       make([][2]float32, 0, count),
		Indices:   make([]uint32, 0, lat*lon*6),
	}

	for y := 0; y <= lat; y++ {
		v := float32(y) / float32(lat)
		sinTheta, cosTheta := math32.Sincos(v * math.Pi)
		if y == lat {
			sinTheta, cosTheta = 0, -1
		}

		for x := 0; x <= lon; x++ {
			u := float32(x) / float32(lon)
			sinPhi, cosPhi := math32.Sincos(float32(x%lon) / float32(lon) * twoPi)

			n := [3]float32{-cosPhi * sinTheta, cosTheta, sinPhi * sinTheta}
			m.Positions = append(m.Positions, [3]float32{n[0] * cfg.Radius, n[1] * cfg.Radius, n[2] * cfg.Radius})
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, [2]float32{u, 1 - v})
		}
	}

	stride := uint32(lon + 1)
	for y := 0; y < lat; y++ {
		for x := 0; x < lon; x++ {
			i0 := uint32(y)*stride + uint32(x)
			i1 := i0 + 1
			i2 := i0 + stride
			i3 := i2 + 1
			m.Indices = append(m.Indices, i0, i2, i1, i1, i2, i3)
		}
	}
	return m, nil
}
