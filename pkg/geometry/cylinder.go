package geometry

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Cylinder generates a capped cylinder along the Y axis. The side wall is a
// ring of RadialSegments+1 vertex pairs (bottom, top) with radial normals;
// each cap is a separate fan around its own centre with an axis normal.
func Cylinder(cfg CylinderConfig) (*mesh.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	segs := cfg.RadialSegments
	half := cfg.Height / 2
	count := (segs+1)*2 + 2*(segs+2)
	m := &mesh.Mesh{
		Positions: make([][3]float32, 0, count),
		Normals:   make([][3]float32, 0, count),
		UVs:       make([][2]float32, 0, count),
		Indices:   make([]uint32, 0, segs*12),
	}

	push := func(p, n [3]float32, uv [2]float32) uint32 {
		m.Positions = append(m.Positions, p)
		m.Normals = append(m.Normals, n)
		m.UVs = append(m.UVs, uv)
		return uint32(len(m.Positions) - 1)
	}

	// Side wall.
	side := uint32(len(m.Positions))
	for i := 0; i <= segs; i++ {
		u := float32(i) / float32(segs)
		x, z := ringPoint(i, segs, cfg.Radius)
		n := radialNormal(x, z)
		push([3]float32{x, -half, z}, n, [2]float32{u, 1})
		push([3]float32{x, half, z}, n, [2]float32{u, 0})
	}
	for i := 0; i < segs; i++ {
		a := side + uint32(i)*2 // bottom i
		b := a + 1              // top i
		c := a + 2              // bottom i+1
		d := a + 3              // top i+1
		m.Indices = append(m.Indices, a, c, b, b, c, d)
	}

	addCap := func(y, ny float32) {
		center := push([3]float32{0, y, 0}, [3]float32{0, ny, 0}, [2]float32{0.5, 0.5})
		ring := uint32(len(m.Positions))
		for i := 0; i <= segs; i++ {
			x, z := ringPoint(i, segs, cfg.Radius)
			uv := [2]float32{0.5 + x/(2*cfg.Radius), 0.5 - ny*z/(2*cfg.Radius)}
			push([3]float32{x, y, z}, [3]float32{0, ny, 0}, uv)
		}
		for i := uint32(0); i < uint32(segs); i++ {
			v0, v1 := ring+i, ring+i+1
			if ny > 0 {
				m.Indices = append(m.Indices, center, v0, v1)
			} else {
				m.Indices = append(m.Indices, center, v1, v0)
			}
		}
	}
	addCap(half, 1)
	addCap(-half, -1)

	return m, nil
}

// radialNormal returns the outward unit normal of a point on the Y axis ring.
func radialNormal(x, z float32) [3]float32 {
	l := math32.Hypot(x, z)
	if l == 0 {
		return [3]float32{1, 0, 0}
	}
	return [3]float32{x / l, 0, z / l}
}
