// Package geometry generates canonical primitive meshes: cube, UV sphere,
// capped cylinder and regular N-gon prism.
//
// All generators produce outward-facing triangles (counter-clockwise when
// seen from outside) with unit normals and texture coordinates populated.
// Meshes are centred on the origin with Y up.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// ErrInvalidConfig is wrapped by every config validation failure.
var ErrInvalidConfig = errors.New("invalid primitive config")

const twoPi = float32(2 * math.Pi)

// CubeConfig controls cube generation.
type CubeConfig struct {
	Size float32 `yaml:"size"` // edge length
}

// DefaultCubeConfig returns a unit cube.
func DefaultCubeConfig() CubeConfig {
	return CubeConfig{Size: 1}
}

// Validate checks the cube parameters.
func (c CubeConfig) Validate() error {
	if !(c.Size > 0) {
		return fmt.Errorf("%w: cube size must be positive, got %v", ErrInvalidConfig, c.Size)
	}
	return nil
}

// SphereConfig controls UV sphere generation.
type SphereConfig struct {
	Radius         float32 `yaml:"radius"`
	LatitudeBands  int     `yaml:"latitude_bands"`
	LongitudeBands int     `yaml:"longitude_bands"`
}

// DefaultSphereConfig returns the default sphere parameters.
func DefaultSphereConfig() SphereConfig {
	return SphereConfig{Radius: 0.5, LatitudeBands: 24, LongitudeBands: 32}
}

// Validate checks the sphere parameters.
func (c SphereConfig) Validate() error {
	if !(c.Radius > 0) {
		return fmt.Errorf("%w: sphere radius must be positive, got %v", ErrInvalidConfig, c.Radius)
	}
	if c.LatitudeBands < 1 {
		return fmt.Errorf("%w: sphere latitude bands must be >= 1, got %d", ErrInvalidConfig, c.LatitudeBands)
	}
	if c.LongitudeBands < 1 {
		return fmt.Errorf("%w: sphere longitude bands must be >= 1, got %d", ErrInvalidConfig, c.LongitudeBands)
	}
	return nil
}

// CylinderConfig controls capped cylinder generation.
type CylinderConfig struct {
	Radius         float32 `yaml:"radius"`
	Height         float32 `yaml:"height"`
	RadialSegments int     `yaml:"radial_segments"`
}

// DefaultCylinderConfig returns the default cylinder parameters.
func DefaultCylinderConfig() CylinderConfig {
	return CylinderConfig{Radius: 0.5, Height: 1, RadialSegments: 32}
}

// Validate checks the cylinder parameters.
func (c CylinderConfig) Validate() error {
	if !(c.Radius > 0) {
		return fmt.Errorf("%w: cylinder radius must be positive, got %v", ErrInvalidConfig, c.Radius)
	}
	if !(c.Height > 0) {
		return fmt.Errorf("%w: cylinder height must be positive, got %v", ErrInvalidConfig, c.Height)
	}
	if c.RadialSegments < 1 {
		return fmt.Errorf("%w: cylinder radial segments must be >= 1, got %d", ErrInvalidConfig, c.RadialSegments)
	}
	return nil
}

// PrismConfig controls regular N-gon prism generation.
type PrismConfig struct {
	Radius   float32 `yaml:"radius"` // circumradius of the base polygon
	Height   float32 `yaml:"height"`
	Segments int     `yaml:"segments"` // number of sides
}

// DefaultPrismConfig returns a triangular prism.
func DefaultPrismConfig() PrismConfig {
	return PrismConfig{Radius: 0.5, Height: 1, Segments: 3}
}

// Validate checks the prism parameters.
func (c PrismConfig) Validate() error {
	if !(c.Radius > 0) {
		return fmt.Errorf("%w: prism radius must be positive, got %v", ErrInvalidConfig, c.Radius)
	}
	if !(c.Height > 0) {
		return fmt.Errorf("%w: prism height must be positive, got %v", ErrInvalidConfig, c.Height)
	}
	if c.Segments < 3 {
		return fmt.Errorf("%w: prism segments must be >= 3, got %d", ErrInvalidConfig, c.Segments)
	}
	return nil
}

// ringPoint returns the point at step i of n around a circle of radius r in
// the XZ plane, counter-clockwise when seen from +Y. Step n wraps to step 0
// so closing vertices land exactly on the opening ones.
func ringPoint(i, n int, r float32) (x, z float32) {
	ang := float32(i%n) / float32(n) * twoPi
	s, c := math32.Sincos(ang)
	return r * c, -r * s
}
