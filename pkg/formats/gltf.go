// glTF 2.0 document model and accessor decoding.

package formats

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// glTF format errors.
var (
	ErrInvalidGLTF              = errors.New("invalid glTF document")
	ErrInvalidReference         = errors.New("glTF reference out of range")
	ErrAccessorOutOfBounds      = errors.New("glTF accessor exceeds buffer bounds")
	ErrUnsupportedComponentType = errors.New("unsupported glTF component type")
	ErrUnsupportedAccessorType  = errors.New("unsupported glTF accessor type")
	ErrMissingPrimitive         = errors.New("glTF document has no mesh primitive")
	ErrMissingAttribute         = errors.New("glTF primitive is missing a required attribute")
	ErrAttributeMismatch        = errors.New("glTF attribute counts differ")
	ErrUnsupportedMode          = errors.New("unsupported glTF primitive mode")
	ErrIndexOutOfRange          = errors.New("glTF index exceeds vertex count")
	ErrMissingBuffer            = errors.New("glTF buffer data unavailable")
	ErrUnsupportedURI           = errors.New("unsupported glTF buffer URI")
)

// ComponentType is the numeric type of accessor components.
type ComponentType int

const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// Size returns the byte width of one component.
func (c ComponentType) Size() (int, error) {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1, nil
	case ComponentShort, ComponentUnsignedShort:
		return 2, nil
	case ComponentUnsignedInt, ComponentFloat:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedComponentType, int(c))
	}
}

// String returns a human-readable component type name.
func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// AccessorType is the structural type of an accessor element.
type AccessorType string

const (
	TypeScalar AccessorType = "SCALAR"
	TypeVec2   AccessorType = "VEC2"
	TypeVec3   AccessorType = "VEC3"
	TypeVec4   AccessorType = "VEC4"
	TypeMat4   AccessorType = "MAT4"
)

// Components returns the number of components per element.
func (t AccessorType) Components() (int, error) {
	switch t {
	case TypeScalar:
		return 1, nil
	case TypeVec2:
		return 2, nil
	case TypeVec3:
		return 3, nil
	case TypeVec4:
		return 4, nil
	case TypeMat4:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAccessorType, string(t))
	}
}

// Primitive topology modes.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// Standard attribute semantics read by ParseGLTF.
const (
	AttrPosition  = "POSITION"
	AttrNormal    = "NORMAL"
	AttrTexCoord0 = "TEXCOORD_0"
)

// GLTF is the subset of a glTF 2.0 document needed to extract mesh data.
type GLTF struct {
	Asset       Asset        `json:"asset"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	Meshes      []GLTFMesh   `json:"meshes,omitempty"`
}

// Asset carries document metadata.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Buffer is a block of binary data, inline, external or in the GLB BIN chunk.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// BufferView is a byte range within a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"` // 0 means tightly packed
	Target     int `json:"target,omitempty"`
}

// Accessor is a typed view into a buffer view.
type Accessor struct {
	BufferView    *int          `json:"bufferView,omitempty"` // nil means all zeros
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
	Min           []float32     `json:"min,omitempty"`
	Max           []float32     `json:"max,omitempty"`
}

// GLTFMesh is a named set of primitives.
type GLTFMesh struct {
	Name       string          `json:"name,omitempty"`
	Primitives []GLTFPrimitive `json:"primitives"`
}

// GLTFPrimitive is one drawable part of a mesh.
type GLTFPrimitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Mode       *int           `json:"mode,omitempty"` // nil means triangles
	Material   *int           `json:"material,omitempty"`
}

// DecodeGLTF decodes a glTF JSON document.
func DecodeGLTF(r io.Reader) (*GLTF, error) {
	var doc GLTF
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGLTF, err)
	}
	if doc.Asset.Version != "" && !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, fmt.Errorf("%w: asset version %q", ErrInvalidGLTF, doc.Asset.Version)
	}
	return &doc, nil
}

// ResolveBuffers returns the bytes of every buffer in doc, in order.
// Base64 data URIs are decoded in place, a buffer without a URI refers to
// the GLB binary chunk bin, and any other URI is passed, unescaped, to fetch.
func ResolveBuffers(doc *GLTF, bin []byte, fetch func(uri string) ([]byte, error)) ([][]byte, error) {
	out := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		var data []byte
		var err error

		switch {
		case b.URI == "":
			if bin == nil {
				return nil, fmt.Errorf("%w: buffer %d has no URI and no binary chunk", ErrMissingBuffer, i)
			}
			data = bin
		case strings.HasPrefix(b.URI, "data:"):
			data, err = decodeDataURI(b.URI)
		default:
			if fetch == nil {
				return nil, fmt.Errorf("%w: buffer %d refers to %q", ErrMissingBuffer, i, b.URI)
			}
			uri, uerr := url.PathUnescape(b.URI)
			if uerr != nil {
				uri = b.URI
			}
			data, err = fetch(uri)
		}
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		if len(data) < b.ByteLength {
			return nil, fmt.Errorf("%w: buffer %d has %d bytes, declares %d", ErrMissingBuffer, i, len(data), b.ByteLength)
		}
		if b.ByteLength > 0 {
			data = data[:b.ByteLength]
		}
		out[i] = data
	}
	return out, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrUnsupportedURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
	}
	return data, nil
}

// accessorLayout is an accessor resolved against its buffer.
type accessorLayout struct {
	acc      *Accessor
	data     []byte // nil when the accessor has no buffer view
	start    int
	stride   int
	compSize int
	comps    int
}

// maxZeroElements caps the components decoded for an accessor without a
// buffer view, whose size is otherwise unbounded by any data.
const maxZeroElements = 1 << 26

func (l accessorLayout) elements() int { return l.acc.Count * l.comps }

func resolveAccessor(doc *GLTF, buffers [][]byte, index int) (accessorLayout, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return accessorLayout{}, fmt.Errorf("%w: accessor %d", ErrInvalidReference, index)
	}
	acc := &doc.Accessors[index]

	compSize, err := acc.ComponentType.Size()
	if err != nil {
		return accessorLayout{}, fmt.Errorf("accessor %d: %w", index, err)
	}
	comps, err := acc.Type.Components()
	if err != nil {
		return accessorLayout{}, fmt.Errorf("accessor %d: %w", index, err)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return accessorLayout{}, fmt.Errorf("%w: accessor %d has negative count or offset", ErrInvalidGLTF, index)
	}

	l := accessorLayout{acc: acc, compSize: compSize, comps: comps}
	if acc.BufferView == nil {
		if acc.Count > maxZeroElements/comps {
			return accessorLayout{}, fmt.Errorf("%w: accessor %d has %d elements and no buffer view", ErrInvalidGLTF, index, acc.Count)
		}
		return l, nil
	}

	vi := *acc.BufferView
	if vi < 0 || vi >= len(doc.BufferViews) {
		return accessorLayout{}, fmt.Errorf("%w: accessor %d: buffer view %d", ErrInvalidReference, index, vi)
	}
	view := doc.BufferViews[vi]
	if view.Buffer < 0 || view.Buffer >= len(buffers) {
		return accessorLayout{}, fmt.Errorf("%w: buffer view %d: buffer %d", ErrInvalidReference, vi, view.Buffer)
	}
	buf := buffers[view.Buffer]

	elemSize := compSize * comps
	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if stride < elemSize {
		return accessorLayout{}, fmt.Errorf("%w: accessor %d: stride %d smaller than element %d", ErrInvalidGLTF, index, stride, elemSize)
	}

	// The view must lie inside its buffer. A view without byteLength
	// extends to the end of the buffer.
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset > len(buf) || view.ByteLength > len(buf)-view.ByteOffset {
		return accessorLayout{}, fmt.Errorf("%w: buffer view %d spans [%d,%d) of %d bytes",
			ErrAccessorOutOfBounds, vi, view.ByteOffset, view.ByteOffset+view.ByteLength, len(buf))
	}
	limit := view.ByteLength
	if limit == 0 {
		limit = len(buf) - view.ByteOffset
	}

	// The accessor must lie inside its view. The element count is bounded
	// by division so huge counts cannot overflow the span.
	if acc.Count > 0 {
		if acc.ByteOffset > limit-elemSize || acc.Count-1 > (limit-acc.ByteOffset-elemSize)/stride {
			return accessorLayout{}, fmt.Errorf("%w: accessor %d has %d elements of stride %d at offset %d, view %d has %d bytes",
				ErrAccessorOutOfBounds, index, acc.Count, stride, acc.ByteOffset, vi, limit)
		}
	}

	l.data = buf
	l.start = view.ByteOffset + acc.ByteOffset
	l.stride = stride
	return l, nil
}

// component decodes component c of element e as a float.
func (l accessorLayout) component(e, c int) float32 {
	off := l.start + e*l.stride + c*l.compSize
	b := l.data[off:]
	norm := l.acc.Normalized

	switch l.acc.ComponentType {
	case ComponentByte:
		v := float32(int8(b[0]))
		if norm {
			return max(v/127, -1)
		}
		return v
	case ComponentUnsignedByte:
		v := float32(b[0])
		if norm {
			return v / 255
		}
		return v
	case ComponentShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if norm {
			return max(v/32767, -1)
		}
		return v
	case ComponentUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if norm {
			return v / 65535
		}
		return v
	case ComponentUnsignedInt:
		u := binary.LittleEndian.Uint32(b)
		if norm {
			return float32(float64(u) / math.MaxUint32)
		}
		return float32(u)
	default: // ComponentFloat
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	}
}

// ReadAccessorFloats decodes accessor index into a flat float slice of
// Count x components values. Integer components convert to float, mapped to
// [0,1] or [-1,1] when the accessor is normalized.
func ReadAccessorFloats(doc *GLTF, buffers [][]byte, index int) ([]float32, error) {
	l, err := resolveAccessor(doc, buffers, index)
	if err != nil {
		return nil, err
	}

	out := make([]float32, l.elements())
	if l.data == nil {
		return out, nil
	}
	for e := 0; e < l.acc.Count; e++ {
		for c := 0; c < l.comps; c++ {
			out[e*l.comps+c] = l.component(e, c)
		}
	}
	return out, nil
}

// ReadAccessorIndices decodes a SCALAR unsigned-integer accessor.
func ReadAccessorIndices(doc *GLTF, buffers [][]byte, index int) ([]uint32, error) {
	l, err := resolveAccessor(doc, buffers, index)
	if err != nil {
		return nil, err
	}
	if l.acc.Type != TypeScalar {
		return nil, fmt.Errorf("%w: index accessor %d is %s", ErrUnsupportedAccessorType, index, l.acc.Type)
	}

	out := make([]uint32, l.acc.Count)
	if l.data == nil {
		return out, nil
	}
	for e := range out {
		b := l.data[l.start+e*l.stride:]
		switch l.acc.ComponentType {
		case ComponentUnsignedByte:
			out[e] = uint32(b[0])
		case ComponentUnsignedShort:
			out[e] = uint32(binary.LittleEndian.Uint16(b))
		case ComponentUnsignedInt:
			out[e] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("%w: index accessor %d uses %s", ErrUnsupportedComponentType, index, l.acc.ComponentType)
		}
	}
	return out, nil
}

// readAttribute reads an attribute accessor and checks its structural type.
func readAttribute(doc *GLTF, buffers [][]byte, name string, index int, want AccessorType) ([]float32, int, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("%s: %w: accessor %d", name, ErrInvalidReference, index)
	}
	if got := doc.Accessors[index].Type; got != want {
		return nil, 0, fmt.Errorf("%w: %s is %s, want %s", ErrUnsupportedAccessorType, name, got, want)
	}
	data, err := ReadAccessorFloats(doc, buffers, index)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	return data, doc.Accessors[index].Count, nil
}

// ParseGLTF extracts the first primitive of the first mesh as a mesh record.
//
// POSITION is required; NORMAL and TEXCOORD_0 are optional. Without an index
// accessor the vertices are drawn in order. Strips and fans are converted to
// a triangle list. Missing normals are synthesized from the triangles.
func ParseGLTF(doc *GLTF, buffers [][]byte) (*mesh.Mesh, error) {
	if len(doc.Meshes) == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return nil, ErrMissingPrimitive
	}
	prim := doc.Meshes[0].Primitives[0]

	posIdx, ok := prim.Attributes[AttrPosition]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, AttrPosition)
	}
	pos, count, err := readAttribute(doc, buffers, AttrPosition, posIdx, TypeVec3)
	if err != nil {
		return nil, err
	}

	m := &mesh.Mesh{Positions: make([][3]float32, count)}
	for i := range m.Positions {
		m.Positions[i] = [3]float32{pos[i*3], pos[i*3+1], pos[i*3+2]}
	}

	if idx, ok := prim.Attributes[AttrNormal]; ok {
		nrm, n, err := readAttribute(doc, buffers, AttrNormal, idx, TypeVec3)
		if err != nil {
			return nil, err
		}
		if n != count {
			return nil, fmt.Errorf("%w: %s has %d, %s has %d", ErrAttributeMismatch, AttrNormal, n, AttrPosition, count)
		}
		m.Normals = make([][3]float32, count)
		for i := range m.Normals {
			m.Normals[i] = [3]float32{nrm[i*3], nrm[i*3+1], nrm[i*3+2]}
		}
	}

	if idx, ok := prim.Attributes[AttrTexCoord0]; ok {
		uv, n, err := readAttribute(doc, buffers, AttrTexCoord0, idx, TypeVec2)
		if err != nil {
			return nil, err
		}
		if n != count {
			return nil, fmt.Errorf("%w: %s has %d, %s has %d", ErrAttributeMismatch, AttrTexCoord0, n, AttrPosition, count)
		}
		m.UVs = make([][2]float32, count)
		for i := range m.UVs {
			m.UVs[i] = [2]float32{uv[i*2], uv[i*2+1]}
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = ReadAccessorIndices(doc, buffers, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i, idx := range indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, count)
		}
	}

	mode := ModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	m.Indices, err = Triangulate(indices, mode)
	if err != nil {
		return nil, err
	}

	if m.Normals == nil {
		m.Normals = mesh.SynthesizeNormals(m.Positions, m.Indices)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Triangulate converts an index sequence in the given primitive mode into a
// triangle list. A trailing partial triangle is dropped. Strip and fan
// triangles that repeat a vertex carry no area and are dropped as well.
func Triangulate(indices []uint32, mode int) ([]uint32, error) {
	switch mode {
	case ModeTriangles:
		n := len(indices) - len(indices)%3
		return indices[:n:n], nil

	case ModeTriangleStrip:
		out := make([]uint32, 0, max(len(indices)-2, 0)*3)
		for i := 0; i+2 < len(indices); i++ {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if i%2 == 1 {
				b, c = c, b
			}
			out = appendTriangle(out, a, b, c)
		}
		return out, nil

	case ModeTriangleFan:
		out := make([]uint32, 0, max(len(indices)-2, 0)*3)
		for i := 1; i+1 < len(indices); i++ {
			out = appendTriangle(out, indices[i], indices[i+1], indices[0])
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, mode)
	}
}

func appendTriangle(out []uint32, a, b, c uint32) []uint32 {
	if a == b || b == c || a == c {
		return out
	}
	return append(out, a, b, c)
}
