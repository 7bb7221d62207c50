package formats

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

func intPtr(v int) *int { return &v }

func float32Bytes(vs ...float32) []byte {
	out := make([]byte, 0, len(vs)*4)
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

// triangleDoc builds a document with one triangle: positions in buffer view 0
// and uint16 indices in buffer view 1.
func triangleDoc() (*GLTF, [][]byte) {
	pos := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	idx := []byte{0, 0, 1, 0, 2, 0, 0, 0} // padded to 4
	buf := append(pos, idx...)

	doc := &GLTF{
		Asset:   Asset{Version: "2.0"},
		Buffers: []Buffer{{ByteLength: len(buf)}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: len(pos)},
			{Buffer: 0, ByteOffset: len(pos), ByteLength: 6},
		},
		Accessors: []Accessor{
			{BufferView: intPtr(0), ComponentType: ComponentFloat, Count: 3, Type: TypeVec3},
			{BufferView: intPtr(1), ComponentType: ComponentUnsignedShort, Count: 3, Type: TypeScalar},
		},
		Meshes: []GLTFMesh{{Primitives: []GLTFPrimitive{{
			Attributes: map[string]int{AttrPosition: 0},
			Indices:    intPtr(1),
		}}}},
	}
	return doc, [][]byte{buf}
}

func TestParseGLTF_Triangle(t *testing.T) {
	doc, buffers := triangleDoc()
	m, err := ParseGLTF(doc, buffers)
	if err != nil {
		t.Fatalf("ParseGLTF failed: %v", err)
	}

	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
	if m.Positions[1] != [3]float32{1, 0, 0} {
		t.Errorf("position 1 = %v", m.Positions[1])
	}
	// normals synthesized unconditionally when absent
	for i, n := range m.Normals {
		if n != [3]float32{0, 0, 1} {
			t.Errorf("normal %d = %v, want (0, 0, 1)", i, n)
		}
	}
	if m.UVs != nil {
		t.Error("UVs should be nil when TEXCOORD_0 is absent")
	}
}

func TestParseGLTF_SequentialIndices(t *testing.T) {
	doc, buffers := triangleDoc()
	doc.Meshes[0].Primitives[0].Indices = nil

	m, err := ParseGLTF(doc, buffers)
	if err != nil {
		t.Fatalf("ParseGLTF failed: %v", err)
	}
	for i, idx := range m.Indices {
		if idx != uint32(i) {
			t.Errorf("indices = %v, want [0 1 2]", m.Indices)
			break
		}
	}
}

func TestParseGLTF_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(doc *GLTF, buffers [][]byte) [][]byte
		wantErr error
	}{
		{
			name: "no meshes",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Meshes = nil
				return b
			},
			wantErr: ErrMissingPrimitive,
		},
		{
			name: "no primitives",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Meshes[0].Primitives = nil
				return b
			},
			wantErr: ErrMissingPrimitive,
		},
		{
			name: "no position",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Meshes[0].Primitives[0].Attributes = map[string]int{}
				return b
			},
			wantErr: ErrMissingAttribute,
		},
		{
			name: "unsupported component type",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].ComponentType = 5130
				return b
			},
			wantErr: ErrUnsupportedComponentType,
		},
		{
			name: "position not vec3",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].Type = TypeVec4
				return b
			},
			wantErr: ErrUnsupportedAccessorType,
		},
		{
			name: "span beyond view",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].Count = 4
				return b
			},
			wantErr: ErrAccessorOutOfBounds,
		},
		{
			name: "count overflows span",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].Count = 1 << 61
				return b
			},
			wantErr: ErrAccessorOutOfBounds,
		},
		{
			name: "offset past view",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].ByteOffset = 1 << 62
				return b
			},
			wantErr: ErrAccessorOutOfBounds,
		},
		{
			name: "huge count without buffer view",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].BufferView = nil
				doc.Accessors[0].Count = 1 << 61
				return b
			},
			wantErr: ErrInvalidGLTF,
		},
		{
			name: "view beyond buffer",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				return [][]byte{b[0][:20]}
			},
			wantErr: ErrAccessorOutOfBounds,
		},
		{
			name: "index past vertex count",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				b[0][36+4] = 7
				return b
			},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name: "points mode",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Meshes[0].Primitives[0].Mode = intPtr(ModePoints)
				return b
			},
			wantErr: ErrUnsupportedMode,
		},
		{
			name: "signed indices",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[1].ComponentType = ComponentShort
				return b
			},
			wantErr: ErrUnsupportedComponentType,
		},
		{
			name: "dangling buffer view",
			mutate: func(doc *GLTF, b [][]byte) [][]byte {
				doc.Accessors[0].BufferView = intPtr(9)
				return b
			},
			wantErr: ErrInvalidReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, buffers := triangleDoc()
			buffers = tt.mutate(doc, buffers)
			_, err := ParseGLTF(doc, buffers)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadAccessorFloats_Stride(t *testing.T) {
	// Interleaved position (vec3) + uv (vec2), 20-byte stride.
	buf := float32Bytes(
		1, 2, 3, 0.1, 0.2,
		4, 5, 6, 0.3, 0.4,
	)
	doc := &GLTF{
		BufferViews: []BufferView{{Buffer: 0, ByteLength: len(buf), ByteStride: 20}},
		Accessors: []Accessor{
			{BufferView: intPtr(0), ComponentType: ComponentFloat, Count: 2, Type: TypeVec3},
			{BufferView: intPtr(0), ByteOffset: 12, ComponentType: ComponentFloat, Count: 2, Type: TypeVec2},
		},
	}

	pos, err := ReadAccessorFloats(doc, [][]byte{buf}, 0)
	if err != nil {
		t.Fatalf("positions: %v", err)
	}
	want := []float32{1, 2, 3, 4, 5, 6}
	for i := range want {
		if pos[i] != want[i] {
			t.Fatalf("positions = %v, want %v", pos, want)
		}
	}

	uv, err := ReadAccessorFloats(doc, [][]byte{buf}, 1)
	if err != nil {
		t.Fatalf("uvs: %v", err)
	}
	wantUV := []float32{0.1, 0.2, 0.3, 0.4}
	for i := range wantUV {
		if uv[i] != wantUV[i] {
			t.Fatalf("uvs = %v, want %v", uv, wantUV)
		}
	}
}

func TestReadAccessorFloats_Normalized(t *testing.T) {
	tests := []struct {
		name string
		ct   ComponentType
		data []byte
		want []float32
	}{
		{"unsigned byte", ComponentUnsignedByte, []byte{0, 255, 51, 0}, []float32{0, 1, 0.2, 0}},
		{"byte", ComponentByte, []byte{0x81, 0x80, 127, 0}, []float32{-1, -1, 1, 0}},
		{"unsigned short", ComponentUnsignedShort, []byte{0, 0, 0xff, 0xff}, []float32{0, 1}},
		{"short", ComponentShort, []byte{0x01, 0x80, 0xff, 0x7f}, []float32{-1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &GLTF{
				BufferViews: []BufferView{{Buffer: 0, ByteLength: len(tt.data)}},
				Accessors: []Accessor{{
					BufferView:    intPtr(0),
					ComponentType: tt.ct,
					Normalized:    true,
					Count:         len(tt.want),
					Type:          TypeScalar,
				}},
			}
			got, err := ReadAccessorFloats(doc, [][]byte{tt.data}, 0)
			if err != nil {
				t.Fatalf("ReadAccessorFloats: %v", err)
			}
			for i := range tt.want {
				if d := got[i] - tt.want[i]; d > 1e-6 || d < -1e-6 {
					t.Errorf("value %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadAccessorFloats_NoBufferView(t *testing.T) {
	doc := &GLTF{Accessors: []Accessor{{ComponentType: ComponentFloat, Count: 2, Type: TypeVec3}}}
	got, err := ReadAccessorFloats(doc, nil, 0)
	if err != nil {
		t.Fatalf("ReadAccessorFloats: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	for _, v := range got {
		if v != 0 {
			t.Fatalf("values = %v, want zeros", got)
		}
	}
}

func TestParseGLTF_ViewWithoutByteLength(t *testing.T) {
	const src = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 40}],
  "bufferViews": [{"buffer": 0, "byteOffset": 4}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}]
}`
	doc, err := DecodeGLTF(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeGLTF: %v", err)
	}
	buf := append([]byte{0, 0, 0, 0}, float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0)...)

	m, err := ParseGLTF(doc, [][]byte{buf})
	if err != nil {
		t.Fatalf("ParseGLTF: %v", err)
	}
	if m.VertexCount() != 3 || m.Positions[2] != [3]float32{0, 1, 0} {
		t.Errorf("positions = %v", m.Positions)
	}

	// The implicit view length still ends at the buffer.
	doc.Accessors[0].Count = 4
	if _, err := ParseGLTF(doc, [][]byte{buf}); !errors.Is(err, ErrAccessorOutOfBounds) {
		t.Errorf("error = %v, want %v", err, ErrAccessorOutOfBounds)
	}
}

func TestReadAccessorIndices_Widths(t *testing.T) {
	tests := []struct {
		name string
		ct   ComponentType
		data []byte
	}{
		{"uint8", ComponentUnsignedByte, []byte{0, 1, 2}},
		{"uint16", ComponentUnsignedShort, []byte{0, 0, 1, 0, 2, 0}},
		{"uint32", ComponentUnsignedInt, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &GLTF{
				BufferViews: []BufferView{{Buffer: 0, ByteLength: len(tt.data)}},
				Accessors:   []Accessor{{BufferView: intPtr(0), ComponentType: tt.ct, Count: 3, Type: TypeScalar}},
			}
			got, err := ReadAccessorIndices(doc, [][]byte{tt.data}, 0)
			if err != nil {
				t.Fatalf("ReadAccessorIndices: %v", err)
			}
			for i, v := range got {
				if v != uint32(i) {
					t.Fatalf("indices = %v, want [0 1 2]", got)
				}
			}
		})
	}
}

func TestReadAccessorIndices_RejectsVectors(t *testing.T) {
	doc := &GLTF{
		BufferViews: []BufferView{{Buffer: 0, ByteLength: 6}},
		Accessors:   []Accessor{{BufferView: intPtr(0), ComponentType: ComponentUnsignedShort, Count: 1, Type: TypeVec3}},
	}
	_, err := ReadAccessorIndices(doc, [][]byte{make([]byte, 6)}, 0)
	if !errors.Is(err, ErrUnsupportedAccessorType) {
		t.Errorf("error = %v, want %v", err, ErrUnsupportedAccessorType)
	}
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		mode    int
		want    []uint32
	}{
		{"triangles", []uint32{0, 1, 2, 2, 1, 3}, ModeTriangles, []uint32{0, 1, 2, 2, 1, 3}},
		{"partial triangle dropped", []uint32{0, 1, 2, 3}, ModeTriangles, []uint32{0, 1, 2}},
		{"strip", []uint32{0, 1, 2, 3}, ModeTriangleStrip, []uint32{0, 1, 2, 1, 3, 2}},
		{"strip degenerate", []uint32{0, 1, 1, 2}, ModeTriangleStrip, []uint32{}},
		{"fan", []uint32{0, 1, 2, 3}, ModeTriangleFan, []uint32{1, 2, 0, 2, 3, 0}},
		{"short fan", []uint32{0, 1}, ModeTriangleFan, []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Triangulate(tt.indices, tt.mode)
			if err != nil {
				t.Fatalf("Triangulate: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	if _, err := Triangulate([]uint32{0, 1}, ModeLines); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("lines: error = %v, want %v", err, ErrUnsupportedMode)
	}
}

// Strip winding alternates so every triangle keeps the orientation of the first.
func TestParseGLTF_StripKeepsWinding(t *testing.T) {
	// Quad in the XY plane as a strip: 0 (0,0) 1 (1,0) 2 (0,1) 3 (1,1).
	pos := float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0)
	doc := &GLTF{
		BufferViews: []BufferView{{Buffer: 0, ByteLength: len(pos)}},
		Accessors:   []Accessor{{BufferView: intPtr(0), ComponentType: ComponentFloat, Count: 4, Type: TypeVec3}},
		Meshes: []GLTFMesh{{Primitives: []GLTFPrimitive{{
			Attributes: map[string]int{AttrPosition: 0},
			Mode:       intPtr(ModeTriangleStrip),
		}}}},
	}

	m, err := ParseGLTF(doc, [][]byte{pos})
	if err != nil {
		t.Fatalf("ParseGLTF: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Fatalf("triangles = %d, want 2", m.TriangleCount())
	}
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		n := mesh.FaceNormal(m.Positions[tri[0]], m.Positions[tri[1]], m.Positions[tri[2]])
		if n.Z <= 0 {
			t.Errorf("triangle %d normal %v, want +Z", i, n)
		}
	}
}

func TestResolveBuffers(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	doc := &GLTF{Buffers: []Buffer{
		{URI: "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(payload), ByteLength: 4},
		{ByteLength: 2},
		{URI: "mesh%20data.bin", ByteLength: 3},
	}}

	var fetched string
	fetch := func(uri string) ([]byte, error) {
		fetched = uri
		return []byte{9, 9, 9, 9}, nil
	}

	got, err := ResolveBuffers(doc, []byte{7, 7, 0, 0}, fetch)
	if err != nil {
		t.Fatalf("ResolveBuffers: %v", err)
	}
	if string(got[0]) != string(payload) {
		t.Errorf("data URI = %v", got[0])
	}
	if len(got[1]) != 2 || got[1][0] != 7 {
		t.Errorf("bin chunk = %v", got[1])
	}
	if fetched != "mesh data.bin" || len(got[2]) != 3 {
		t.Errorf("fetched %q, got %v", fetched, got[2])
	}
}

func TestResolveBuffers_Errors(t *testing.T) {
	tests := []struct {
		name    string
		buf     Buffer
		wantErr error
	}{
		{"no bin chunk", Buffer{ByteLength: 4}, ErrMissingBuffer},
		{"no fetcher", Buffer{URI: "a.bin", ByteLength: 4}, ErrMissingBuffer},
		{"non-base64 data", Buffer{URI: "data:text/plain,hello", ByteLength: 5}, ErrUnsupportedURI},
		{"short data", Buffer{URI: "data:;base64,AAAA", ByteLength: 8}, ErrMissingBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveBuffers(&GLTF{Buffers: []Buffer{tt.buf}}, nil, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeGLTF(t *testing.T) {
	src := `{
  "asset": {"version": "2.0"},
  "buffers": [{"uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA", "byteLength": 36}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}]
}`
	doc, err := DecodeGLTF(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeGLTF: %v", err)
	}
	buffers, err := ResolveBuffers(doc, nil, nil)
	if err != nil {
		t.Fatalf("ResolveBuffers: %v", err)
	}
	m, err := ParseGLTF(doc, buffers)
	if err != nil {
		t.Fatalf("ParseGLTF: %v", err)
	}
	if m.Positions[1] != [3]float32{1, 0, 0} || m.Positions[2] != [3]float32{0, 1, 0} {
		t.Errorf("positions = %v", m.Positions)
	}

	if _, err := DecodeGLTF(strings.NewReader(`{"asset":{"version":"1.0"}}`)); !errors.Is(err, ErrInvalidGLTF) {
		t.Errorf("version 1.0: error = %v, want %v", err, ErrInvalidGLTF)
	}
	if _, err := DecodeGLTF(strings.NewReader(`{`)); !errors.Is(err, ErrInvalidGLTF) {
		t.Errorf("bad json: error = %v, want %v", err, ErrInvalidGLTF)
	}
}

func TestComponentTypeSize(t *testing.T) {
	tests := []struct {
		ct   ComponentType
		want int
	}{
		{ComponentByte, 1},
		{ComponentUnsignedByte, 1},
		{ComponentShort, 2},
		{ComponentUnsignedShort, 2},
		{ComponentUnsignedInt, 4},
		{ComponentFloat, 4},
	}
	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			got, err := tt.ct.Size()
			if err != nil || got != tt.want {
				t.Errorf("Size() = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
	if _, err := ComponentType(5124).Size(); !errors.Is(err, ErrUnsupportedComponentType) {
		t.Errorf("5124: error = %v", err)
	}
}
