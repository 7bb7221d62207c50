package mesh

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxNarrowIndex is the largest index a 16-bit index buffer can hold.
const MaxNarrowIndex = 65535

// ErrWideIndices is returned when narrow storage is requested for wide data.
var ErrWideIndices = errors.New("indices exceed 16-bit range")

// IndexWidth is the element size of an index buffer.
type IndexWidth int

const (
	IndexWidth16 IndexWidth = 16
	IndexWidth32 IndexWidth = 32
)

// String returns a human-readable width name.
func (w IndexWidth) String() string {
	switch w {
	case IndexWidth16:
		return "uint16"
	case IndexWidth32:
		return "uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", int(w))
	}
}

// Bytes returns the size of one index in bytes.
func (w IndexWidth) Bytes() int {
	return int(w) / 8
}

// SelectIndexWidth returns the narrowest width that can hold every index.
func SelectIndexWidth(indices []uint32) IndexWidth {
	for _, idx := range indices {
		if idx > MaxNarrowIndex {
			return IndexWidth32
		}
	}
	return IndexWidth16
}

// IndexBuffer accumulates triangle indices and tracks the element width they need.
type IndexBuffer struct {
	indices []uint32
	width   IndexWidth
	dirty   bool
}

// NewIndexBuffer creates an index buffer with room for capacity indices.
func NewIndexBuffer(capacity int) *IndexBuffer {
	return &IndexBuffer{
		indices: make([]uint32, 0, capacity),
		width:   IndexWidth16,
	}
}

// Append adds indices to the buffer.
func (b *IndexBuffer) Append(indices ...uint32) {
	if len(indices) == 0 {
		return
	}
	b.indices = append(b.indices, indices...)
	b.dirty = true
}

// Finalize scans the indices once and records the width they require.
func (b *IndexBuffer) Finalize() IndexWidth {
	b.width = SelectIndexWidth(b.indices)
	b.dirty = false
	return b.width
}

// Width returns the element width, rescanning if indices changed since the last scan.
func (b *IndexBuffer) Width() IndexWidth {
	if b.dirty || b.width == 0 {
		return b.Finalize()
	}
	return b.width
}

// Wide reports whether the buffer needs 32-bit storage.
func (b *IndexBuffer) Wide() bool {
	return b.Width() == IndexWidth32
}

// Len returns the number of indices.
func (b *IndexBuffer) Len() int {
	return len(b.indices)
}

// Indices returns the accumulated indices.
func (b *IndexBuffer) Indices() []uint32 {
	return b.indices
}

// Uint16 returns the indices narrowed to 16 bits.
func (b *IndexBuffer) Uint16() ([]uint16, error) {
	if b.Wide() {
		return nil, ErrWideIndices
	}
	out := make([]uint16, len(b.indices))
	for i, idx := range b.indices {
		out[i] = uint16(idx)
	}
	return out, nil
}

// Bytes packs the indices little-endian at the selected width.
func (b *IndexBuffer) Bytes() []byte {
	return PackIndices(b.indices, b.Width())
}

// PackIndices packs indices little-endian at the given width.
// Values are truncated if they do not fit; callers select the width first.
func PackIndices(indices []uint32, width IndexWidth) []byte {
	size := width.Bytes()
	out := make([]byte, len(indices)*size)
	for i, idx := range indices {
		if width == IndexWidth32 {
			binary.LittleEndian.PutUint32(out[i*size:], idx)
		} else {
			binary.LittleEndian.PutUint16(out[i*size:], uint16(idx))
		}
	}
	return out
}
