// GLB binary container and mesh-to-glTF encoding.

package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic       = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedGLBVersion = errors.New("unsupported GLB version")
	ErrTruncatedGLBData      = errors.New("truncated GLB data")
	ErrMissingJSONChunk      = errors.New("GLB has no JSON chunk")
)

const (
	glbMagic      = 0x46546C67 // "glTF"
	glbVersion    = 2
	glbHeaderSize = 12
	chunkJSON     = 0x4E4F534A // "JSON"
	chunkBIN      = 0x004E4942 // "BIN\0"
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	Length uint32
	Type   uint32
}

// ParseGLB splits a GLB container into its decoded JSON document and the
// optional BIN chunk payload. Unknown chunk types are skipped.
func ParseGLB(data []byte) (*GLTF, []byte, error) {
	if len(data) < glbHeaderSize {
		return nil, nil, ErrTruncatedGLBData
	}

	r := bytes.NewReader(data)

	var hdr glbHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, ErrTruncatedGLBData
	}
	if hdr.Magic != glbMagic {
		return nil, nil, ErrInvalidGLBMagic
	}
	if hdr.Version != glbVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedGLBVersion, hdr.Version)
	}
	if hdr.Length < glbHeaderSize || int(hdr.Length) > len(data) {
		return nil, nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedGLBData, hdr.Length, len(data))
	}
	body := data[glbHeaderSize:hdr.Length]

	var jsonChunk, binChunk []byte
	for first := true; len(body) > 0; first = false {
		if len(body) < 8 {
			return nil, nil, fmt.Errorf("%w: partial chunk header", ErrTruncatedGLBData)
		}
		ch := glbChunkHeader{
			Length: binary.LittleEndian.Uint32(body[0:4]),
			Type:   binary.LittleEndian.Uint32(body[4:8]),
		}
		body = body[8:]
		if int(ch.Length) > len(body) {
			return nil, nil, fmt.Errorf("%w: chunk needs %d bytes, have %d", ErrTruncatedGLBData, ch.Length, len(body))
		}
		payload := body[:ch.Length]
		body = body[ch.Length:]

		switch {
		case first && ch.Type != chunkJSON:
			return nil, nil, ErrMissingJSONChunk
		case ch.Type == chunkJSON && jsonChunk == nil:
			jsonChunk = encoding.TrimPadding(payload)
		case ch.Type == chunkBIN && binChunk == nil:
			binChunk = payload
		}
	}
	if jsonChunk == nil {
		return nil, nil, ErrMissingJSONChunk
	}

	doc, err := DecodeGLTF(bytes.NewReader(jsonChunk))
	if err != nil {
		return nil, nil, err
	}
	return doc, binChunk, nil
}

// EncodeGLB packs a document and binary payload into a GLB container.
func EncodeGLB(doc *GLTF, bin []byte) ([]byte, error) {
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding glTF JSON: %w", err)
	}
	js = pad4(js, ' ')

	total := glbHeaderSize + 8 + len(js)
	if bin != nil {
		bin = pad4(bin, 0)
		total += 8 + len(bin)
	}

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, chunkJSON)
	out = append(out, js...)
	if bin != nil {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
		out = binary.LittleEndian.AppendUint32(out, chunkBIN)
		out = append(out, bin...)
	}
	return out, nil
}

func pad4(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

// EncodeGLTF converts a mesh record into a single-primitive glTF document
// whose only buffer has no URI, ready for EncodeGLB. Indices use the
// narrowest width that fits.
func EncodeGLTF(m *mesh.Mesh, name string) (*GLTF, []byte, error) {
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	doc := &GLTF{
		Asset:  Asset{Version: "2.0", Generator: "meshkit"},
		Meshes: []GLTFMesh{{Name: name, Primitives: []GLTFPrimitive{{Attributes: map[string]int{}}}}},
	}
	prim := &doc.Meshes[0].Primitives[0]
	var bin []byte

	addView := func(data []byte, target int) int {
		bin = pad4(bin, 0)
		doc.BufferViews = append(doc.BufferViews, BufferView{
			Buffer:     0,
			ByteOffset: len(bin),
			ByteLength: len(data),
			Target:     target,
		})
		bin = append(bin, data...)
		return len(doc.BufferViews) - 1
	}
	addAccessor := func(view int, ct ComponentType, typ AccessorType, count int) int {
		doc.Accessors = append(doc.Accessors, Accessor{
			BufferView:    &view,
			ComponentType: ct,
			Count:         count,
			Type:          typ,
		})
		return len(doc.Accessors) - 1
	}

	count := len(m.Positions)
	const arrayBuffer, elementArrayBuffer = 34962, 34963

	posView := addView(packVec3(m.Positions), arrayBuffer)
	posAcc := addAccessor(posView, ComponentFloat, TypeVec3, count)
	if count > 0 {
		b := m.Bounds()
		doc.Accessors[posAcc].Min = b.Min[:]
		doc.Accessors[posAcc].Max = b.Max[:]
	}
	prim.Attributes[AttrPosition] = posAcc

	if m.Normals != nil {
		view := addView(packVec3(m.Normals), arrayBuffer)
		prim.Attributes[AttrNormal] = addAccessor(view, ComponentFloat, TypeVec3, count)
	}
	if m.UVs != nil {
		raw := make([]byte, 0, len(m.UVs)*8)
		for _, uv := range m.UVs {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(uv[0]))
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(uv[1]))
		}
		view := addView(raw, arrayBuffer)
		prim.Attributes[AttrTexCoord0] = addAccessor(view, ComponentFloat, TypeVec2, count)
	}

	width := m.IndexWidth()
	ct := ComponentUnsignedShort
	if width == mesh.IndexWidth32 {
		ct = ComponentUnsignedInt
	}
	idxView := addView(mesh.PackIndices(m.Indices, width), elementArrayBuffer)
	idxAcc := addAccessor(idxView, ct, TypeScalar, len(m.Indices))
	prim.Indices = &idxAcc

	bin = pad4(bin, 0)
	doc.Buffers = []Buffer{{ByteLength: len(bin)}}
	return doc, bin, nil
}

func packVec3(vs [][3]float32) []byte {
	raw := make([]byte, 0, len(vs)*12)
	for _, v := range vs {
		for _, c := range v {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(c))
		}
	}
	return raw
}
