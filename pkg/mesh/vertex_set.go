package mesh

// VertexSet builds unified vertex buffers from source attribute combinations.
// Each distinct key is stored once; insertion order defines output indices.
type VertexSet struct {
	index     map[string]uint32
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32
}

// NewVertexSet creates an empty vertex set.
func NewVertexSet() *VertexSet {
	return &VertexSet{index: make(map[string]uint32)}
}

// GetOrInsert returns the index assigned to key, appending the attributes
// only the first time the key is seen.
func (s *VertexSet) GetOrInsert(key string, position, normal [3]float32, uv [2]float32) uint32 {
	if idx, ok := s.index[key]; ok {
		return idx
	}
	idx := uint32(len(s.positions))
	s.index[key] = idx
	s.positions = append(s.positions, position)
	s.normals = append(s.normals, normal)
	s.uvs = append(s.uvs, uv)
	return idx
}

// Lookup returns the index assigned to key, if any.
func (s *VertexSet) Lookup(key string) (uint32, bool) {
	idx, ok := s.index[key]
	return idx, ok
}

// Len returns the number of unique vertices.
func (s *VertexSet) Len() int {
	return len(s.positions)
}

// Positions returns the unified position buffer.
func (s *VertexSet) Positions() [][3]float32 { return s.positions }

// Normals returns the unified normal buffer.
func (s *VertexSet) Normals() [][3]float32 { return s.normals }

// UVs returns the unified texture coordinate buffer.
func (s *VertexSet) UVs() [][2]float32 { return s.uvs }
