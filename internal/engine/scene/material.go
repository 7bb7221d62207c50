package scene

import "github.com/Faultbox/meshkit/pkg/math"

// Material holds Phong shading coefficients. Texture is an asset path,
// resolved by whatever renders the scene.
type Material struct {
	Ambient       math.Vec3
	Diffuse       math.Vec3
	Specular      math.Vec3
	Shininess     float32
	UseTexture    bool
	UseBlinnPhong bool
	Texture       string
}

// DefaultMaterial returns a dim-ambient white material with Blinn-Phong highlights.
func DefaultMaterial() *Material {
	return &Material{
		Ambient:       math.Vec3{X: 0.08, Y: 0.08, Z: 0.08},
		Diffuse:       math.Vec3{X: 1, Y: 1, Z: 1},
		Specular:      math.Vec3{X: 0.6, Y: 0.6, Z: 0.6},
		Shininess:     64,
		UseBlinnPhong: true,
	}
}

// WithTexture returns a copy of m sampling the given texture.
func (m Material) WithTexture(path string) *Material {
	m.Texture = path
	m.UseTexture = path != ""
	return &m
}
