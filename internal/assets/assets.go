// Package assets loads mesh files from one or more file systems, caching
// the parsed records and substituting a primitive when a file is unusable.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/encoding"
	"github.com/Faultbox/meshkit/pkg/formats"
	"github.com/Faultbox/meshkit/pkg/geometry"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Asset loading errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrNotFound          = errors.New("asset not found")
	ErrNoFallback        = errors.New("no fallback primitive configured")
)

// Format identifies the file format an asset was read from.
type Format string

const (
	FormatOBJ       Format = "obj"
	FormatGLTF      Format = "gltf"
	FormatGLB       Format = "glb"
	FormatPrimitive Format = "primitive"
)

// FormatOf picks the format from a file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".obj":
		return FormatOBJ, nil
	case ".gltf":
		return FormatGLTF, nil
	case ".glb":
		return FormatGLB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Asset is a parsed mesh with what was learned while reading it.
// The mesh is shared between callers and must not be modified.
type Asset struct {
	Name               string
	Format             Format
	Mesh               *mesh.Mesh
	NormalsSynthesized bool
	Warnings           []string
}

// Manager loads meshes from file systems.
// Sources are searched in reverse order (last added = highest priority).
type Manager struct {
	sources []fs.FS
	cache   *Cache
	mu      sync.RWMutex

	params       geometry.Params
	charset      string
	fallback     geometry.Kind
	haveFallback bool

	log *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithParams sets the primitive generator configs.
func WithParams(p geometry.Params) Option {
	return func(m *Manager) { m.params = p }
}

// WithCharset sets the text encoding of OBJ documents.
func WithCharset(charset string) Option {
	return func(m *Manager) { m.charset = charset }
}

// WithFallback sets the primitive returned by LoadOrFallback.
func WithFallback(kind geometry.Kind) Option {
	return func(m *Manager) { m.fallback, m.haveFallback = kind, true }
}

// WithoutFallback makes LoadOrFallback return the load error.
func WithoutFallback() Option {
	return func(m *Manager) { m.haveFallback = false }
}

// WithLogger replaces the component logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager over the given sources. The fallback
// defaults to a cube.
func NewManager(sources []fs.FS, opts ...Option) *Manager {
	m := &Manager{
		sources:      append([]fs.FS(nil), sources...),
		cache:        NewCache(),
		params:       geometry.DefaultParams(),
		fallback:     geometry.KindCube,
		haveFallback: true,
		log:          logger.Named("assets"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig creates a manager with the import and primitive settings of cfg.
func NewFromConfig(cfg *config.Config, sources ...fs.FS) (*Manager, error) {
	opts := []Option{WithParams(cfg.Primitives), WithCharset(cfg.Import.TextEncoding)}

	kind, ok, err := cfg.FallbackKind()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, WithFallback(kind))
	} else {
		opts = append(opts, WithoutFallback())
	}
	return NewManager(sources, opts...), nil
}

// AddSource adds a file system with the highest priority.
func (m *Manager) AddSource(fsys fs.FS) {
	m.mu.Lock()
	m.sources = append(m.sources, fsys)
	m.mu.Unlock()
}

// Load returns the mesh stored at name.
func (m *Manager) Load(name string) (*mesh.Mesh, error) {
	a, err := m.LoadAsset(name)
	if err != nil {
		return nil, err
	}
	return a.Mesh, nil
}

// LoadAsset returns the parsed asset at name, reading it on first use.
func (m *Manager) LoadAsset(name string) (*Asset, error) {
	key := encoding.NormalizePath(name)
	if a, ok := m.cache.Get(key); ok {
		return a, nil
	}

	format, err := FormatOf(key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var lastErr error
	for i := len(m.sources) - 1; i >= 0; i-- {
		fsys := m.sources[i]
		data, err := fs.ReadFile(fsys, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			lastErr = err
			continue
		}

		a, err := m.parse(fsys, key, format, data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", key, err)
		}
		m.cache.Set(key, a)
		m.log.Debug("loaded mesh",
			zap.String("path", key),
			zap.String("format", string(format)),
			zap.Int("vertices", a.Mesh.VertexCount()),
			zap.Int("triangles", a.Mesh.TriangleCount()),
			zap.Bool("normals_synthesized", a.NormalsSynthesized),
		)
		for _, w := range a.Warnings {
			m.log.Warn("mesh warning", zap.String("path", key), zap.String("warning", w))
		}
		return a, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("reading %s: %w", key, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (m *Manager) parse(fsys fs.FS, name string, format Format, data []byte) (*Asset, error) {
	a := &Asset{Name: name, Format: format}

	switch format {
	case FormatOBJ:
		obj, err := formats.ParseOBJCharset(bytes.NewReader(data), m.charset)
		if err != nil {
			return nil, err
		}
		a.Mesh = obj.Mesh
		a.NormalsSynthesized = obj.Stats.NormalsSynthesized
		a.Warnings = obj.Warnings
		return a, nil

	case FormatGLTF, FormatGLB:
		var (
			doc *formats.GLTF
			bin []byte
			err error
		)
		if format == FormatGLB {
			doc, bin, err = formats.ParseGLB(data)
		} else {
			doc, err = formats.DecodeGLTF(bytes.NewReader(data))
		}
		if err != nil {
			return nil, err
		}

		fetch := func(uri string) ([]byte, error) {
			if strings.Contains(uri, "://") {
				return nil, fmt.Errorf("%w: %s", formats.ErrUnsupportedURI, uri)
			}
			return fs.ReadFile(fsys, encoding.ResolveRelative(name, uri))
		}
		buffers, err := formats.ResolveBuffers(doc, bin, fetch)
		if err != nil {
			return nil, err
		}
		msh, err := formats.ParseGLTF(doc, buffers)
		if err != nil {
			return nil, err
		}
		a.Mesh = msh
		_, hasNormals := doc.Meshes[0].Primitives[0].Attributes[formats.AttrNormal]
		a.NormalsSynthesized = !hasNormals
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// LoadOrFallback returns the mesh at name, or the fallback primitive with
// a logged warning when the file cannot be read or parsed.
func (m *Manager) LoadOrFallback(name string) (*mesh.Mesh, error) {
	msh, err := m.Load(name)
	if err == nil {
		return msh, nil
	}
	if !m.haveFallback {
		return nil, err
	}

	m.log.Warn("using fallback primitive",
		zap.String("path", name),
		zap.Stringer("primitive", m.fallback),
		zap.Error(err),
	)
	return m.Primitive(m.fallback)
}

// Fallback returns the configured fallback kind.
func (m *Manager) Fallback() (geometry.Kind, error) {
	if !m.haveFallback {
		return 0, ErrNoFallback
	}
	return m.fallback, nil
}

// Primitive generates the primitive of the given kind from the manager's
// params. Results are cached like files.
func (m *Manager) Primitive(kind geometry.Kind) (*mesh.Mesh, error) {
	key := "primitive:" + kind.String()
	if a, ok := m.cache.Get(key); ok {
		return a.Mesh, nil
	}

	msh, err := geometry.Generate(kind, m.params)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, &Asset{Name: key, Format: FormatPrimitive, Mesh: msh})
	return msh, nil
}

// Invalidate drops a cached file so the next load reads it again.
func (m *Manager) Invalidate(name string) bool {
	return m.cache.Delete(encoding.NormalizePath(name))
}

// Stats returns cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Clear empties the cache.
func (m *Manager) Clear() {
	m.cache.Clear()
}
