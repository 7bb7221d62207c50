package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
)

// Light is a scene light. The set of implementations is closed:
// DirectionalLight and PointLight. Consumers type-switch on the value.
type Light interface {
	isLight()
}

// DirectionalLight shines uniformly along Direction.
type DirectionalLight struct {
	Direction math.Vec3
	Color     math.Vec3
	Intensity float32
}

// Attenuation holds the point light falloff coefficients.
type Attenuation struct {
	Constant  float32 `yaml:"constant"`
	Linear    float32 `yaml:"linear"`
	Quadratic float32 `yaml:"quadratic"`
}

// PointLight radiates from Position with distance attenuation.
type PointLight struct {
	Position    math.Vec3
	Color       math.Vec3
	Intensity   float32
	Attenuation Attenuation
}

func (*DirectionalLight) isLight() {}
func (*PointLight) isLight()       {}

var white = math.Vec3{X: 1, Y: 1, Z: 1}

// DefaultAttenuation covers roughly 50 units.
func DefaultAttenuation() Attenuation {
	return Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}
}

// NewDirectionalLight returns a white light pointing straight down.
func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{
		Direction: math.Vec3{X: 0, Y: -1, Z: 0},
		Color:     white,
		Intensity: 1,
	}
}

// NewPointLight returns a white light at position.
func NewPointLight(position math.Vec3) *PointLight {
	return &PointLight{
		Position:    position,
		Color:       white,
		Intensity:   1,
		Attenuation: DefaultAttenuation(),
	}
}

// SunLight builds a directional light from a sun position given in degrees:
// azimuth around the Y axis and elevation above the horizon. The light
// travels from the sun toward the origin.
func SunLight(azimuth, elevation float32) *DirectionalLight {
	az := azimuth * math32.Pi / 180
	el := elevation * math32.Pi / 180

	toSun := math.Vec3{
		X: math32.Cos(el) * math32.Sin(az),
		Y: math32.Sin(el),
		Z: math32.Cos(el) * math32.Cos(az),
	}
	l := NewDirectionalLight()
	l.Direction = toSun.Scale(-1)
	return l
}

// Factor returns the attenuation multiplier at distance d.
func (a Attenuation) Factor(d float32) float32 {
	den := a.Constant + a.Linear*d + a.Quadratic*d*d
	if den <= 0 {
		return 1
	}
	return 1 / den
}
