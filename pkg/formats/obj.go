// Wavefront OBJ text format parser.

package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// OBJ format errors.
var (
	ErrInvalidVertexRef = errors.New("invalid OBJ vertex reference")
	ErrMalformedLine    = errors.New("malformed OBJ line")
)

// maxOBJLineSize bounds a single line; long n-gon faces can exceed bufio's default.
const maxOBJLineSize = 1 << 20

// Placeholders for face references without texture or normal data.
var (
	PlaceholderUV     = [2]float32{0, 0}
	PlaceholderNormal = [3]float32{0, 0, 1}
)

// OBJStats describes what a parse consumed and produced.
type OBJStats struct {
	Lines              int // total lines read
	RawPositions       int // v lines
	RawNormals         int // vn lines
	RawUVs             int // vt lines
	Faces              int // f lines triangulated
	SkippedFaces       int // f lines with fewer than 3 references
	Triangles          int
	NormalsSynthesized bool
}

// OBJ is the result of parsing a text mesh document.
type OBJ struct {
	Mesh     *mesh.Mesh
	Stats    OBJStats
	Warnings []string // non-fatal issues, one per affected line
}

// objRef is a face reference resolved to 0-based raw indices; -1 marks absence.
type objRef struct {
	v, vt, vn int
}

func (r objRef) key() string {
	return strconv.Itoa(r.v) + "/" + strconv.Itoa(r.vt) + "/" + strconv.Itoa(r.vn)
}

type objParser struct {
	positions [][3]float32
	normals   [][3]float32
	uvs       [][2]float32

	verts   *mesh.VertexSet
	indices *mesh.IndexBuffer

	stats    OBJStats
	warnings []string
}

// ParseOBJ parses an OBJ document from r. A leading byte order mark is
// honoured; otherwise the input is read as UTF-8.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	return ParseOBJCharset(r, "")
}

// ParseOBJCharset parses an OBJ document encoded in the named charset.
//
// Faces are fan-triangulated around their first reference and each distinct
// resolved v/vt/vn combination becomes one output vertex. Texture V is
// flipped to a top-left origin. When the document has no vn lines at all,
// smooth normals are synthesized from the triangles; otherwise references
// without a normal keep PlaceholderNormal.
func ParseOBJCharset(r io.Reader, charset string) (*OBJ, error) {
	dec, err := encoding.NewReader(r, charset)
	if err != nil {
		return nil, err
	}

	p := &objParser{
		verts:   mesh.NewVertexSet(),
		indices: mesh.NewIndexBuffer(0),
	}

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLineSize)

	for scanner.Scan() {
		p.stats.Lines++
		if err := p.parseLine(scanner.Text(), p.stats.Lines); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return p.finish(), nil
}

func (p *objParser) parseLine(line string, lineNo int) error {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3, 3)
		if err != nil {
			return fmt.Errorf("%w: line %d: v: %v", ErrMalformedLine, lineNo, err)
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
		p.stats.RawPositions++
	case "vn":
		v, err := parseFloats(fields[1:], 3, 3)
		if err != nil {
			return fmt.Errorf("%w: line %d: vn: %v", ErrMalformedLine, lineNo, err)
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
		p.stats.RawNormals++
	case "vt":
		v, err := parseFloats(fields[1:], 1, 2)
		if err != nil {
			return fmt.Errorf("%w: line %d: vt: %v", ErrMalformedLine, lineNo, err)
		}
		p.uvs = append(p.uvs, [2]float32{v[0], v[1]})
		p.stats.RawUVs++
	case "f":
		return p.parseFace(fields[1:], lineNo)
	}
	// o, g, s, usemtl, mtllib and anything else carry no geometry.
	return nil
}

// parseFloats reads at least required and at most keep values from fields.
// Missing optional values stay zero; extra fields are ignored.
func parseFloats(fields []string, required, keep int) ([3]float32, error) {
	var out [3]float32
	if len(fields) < required {
		return out, fmt.Errorf("want %d values, got %d", required, len(fields))
	}
	for i := 0; i < keep && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) parseFace(tokens []string, lineNo int) error {
	if len(tokens) < 3 {
		p.stats.SkippedFaces++
		p.warnings = append(p.warnings, fmt.Sprintf("line %d: face with %d references skipped", lineNo, len(tokens)))
		return nil
	}

	refs := make([]uint32, len(tokens))
	for i, tok := range tokens {
		ref, err := p.resolve(tok)
		if err != nil {
			return fmt.Errorf("%w: line %d: %q: %v", ErrInvalidVertexRef, lineNo, tok, err)
		}
		refs[i] = p.vertex(ref)
	}

	for i := 1; i+1 < len(refs); i++ {
		p.indices.Append(refs[0], refs[i], refs[i+1])
		p.stats.Triangles++
	}
	p.stats.Faces++
	return nil
}

// resolve turns a v, v/vt, v//vn or v/vt/vn token into raw indices.
// Only the position reference is mandatory.
func (p *objParser) resolve(tok string) (objRef, error) {
	parts := strings.SplitN(tok, "/", 3)

	v, ok := resolveIndex(parts[0], len(p.positions))
	if !ok {
		return objRef{}, fmt.Errorf("position index out of range (have %d)", len(p.positions))
	}

	ref := objRef{v: v, vt: -1, vn: -1}
	if len(parts) > 1 {
		if vt, ok := resolveIndex(parts[1], len(p.uvs)); ok {
			ref.vt = vt
		}
	}
	if len(parts) > 2 {
		if vn, ok := resolveIndex(parts[2], len(p.normals)); ok {
			ref.vn = vn
		}
	}
	return ref, nil
}

// resolveIndex converts a 1-based or negative relative index into a 0-based
// one, reporting false when it is empty, malformed or out of range.
func resolveIndex(s string, length int) (int, bool) {
	if s == "" {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	if err != nil || i == 0 {
		return 0, false
	}
	if i > 0 {
		i--
	} else {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// vertex returns the unified index for ref, emitting it on first use.
func (p *objParser) vertex(ref objRef) uint32 {
	key := ref.key()
	if idx, ok := p.verts.Lookup(key); ok {
		return idx
	}

	uv := PlaceholderUV
	if ref.vt >= 0 {
		t := p.uvs[ref.vt]
		uv = [2]float32{t[0], 1 - t[1]}
	}
	n := PlaceholderNormal
	if ref.vn >= 0 {
		n = p.normals[ref.vn]
	}
	return p.verts.GetOrInsert(key, p.positions[ref.v], n, uv)
}

func (p *objParser) finish() *OBJ {
	m := &mesh.Mesh{
		Positions: p.verts.Positions(),
		Normals:   p.verts.Normals(),
		UVs:       p.verts.UVs(),
		Indices:   p.indices.Indices(),
	}

	if p.stats.RawNormals == 0 {
		m.Normals = mesh.SynthesizeNormals(m.Positions, m.Indices)
		p.stats.NormalsSynthesized = true
	}

	return &OBJ{Mesh: m, Stats: p.stats, Warnings: p.warnings}
}
