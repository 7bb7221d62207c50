package geometry

import "github.com/Faultbox/meshkit/pkg/mesh"

// Prism generates a regular N-gon prism along the Y axis. Side faces are
// flat-shaded quads with unshared vertices; caps are fans anchored at the
// first polygon corner.
func Prism(cfg PrismConfig) (*mesh.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.Segments
	half := cfg.Height / 2
	count := n*4 + n*2
	m := &mesh.Mesh{
		Positions: make([][3]float32, 0, count),
		Normals:   make([][3]float32, 0, count),
		UVs:       make([][2]float32, 0, count),
		Indices:   make([]uint32, 0, n*6+(n-2)*6),
	}

	push := func(p, nrm [3]float32, uv [2]float32) {
		m.Positions = append(m.Positions, p)
		m.Normals = append(m.Normals, nrm)
		m.UVs = append(m.UVs, uv)
	}

	for i := 0; i < n; i++ {
		ax, az := ringPoint(i, n, cfg.Radius)
		bx, bz := ringPoint(i+1, n, cfg.Radius)

		aB := [3]float32{ax, -half, az}
		bB := [3]float32{bx, -half, bz}
		bT := [3]float32{bx, half, bz}
		aT := [3]float32{ax, half, az}

		nrm := mesh.UnitFaceNormal(aB, bB, bT, radialNormal(ax+bx, az+bz))

		start := uint32(len(m.Positions))
		push(aB, nrm, [2]float32{0, 1})
		push(bB, nrm, [2]float32{1, 1})
		push(bT, nrm, [2]float32{1, 0})
		push(aT, nrm, [2]float32{0, 0})
		m.Indices = append(m.Indices, start, start+1, start+2, start, start+2, start+3)
	}

	addCap := func(y, ny float32) {
		start := uint32(len(m.Positions))
		for i := 0; i < n; i++ {
			x, z := ringPoint(i, n, cfg.Radius)
			uv := [2]float32{0.5 + x/(2*cfg.Radius), 0.5 - ny*z/(2*cfg.Radius)}
			push([3]float32{x, y, z}, [3]float32{0, ny, 0}, uv)
		}
		for i := uint32(1); i+1 < uint32(n); i++ {
			if ny > 0 {
				m.Indices = append(m.Indices, start, start+i, start+i+1)
			} else {
				m.Indices = append(m.Indices, start, start+i+1, start+i)
			}
		}
	}
	addCap(half, 1)
	addCap(-half, -1)

	return m, nil
}
