package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrUnknownKind is returned for primitive names the registry does not know.
var ErrUnknownKind = errors.New("unknown primitive kind")

// Kind identifies a primitive generator.
type Kind int

const (
	KindCube Kind = iota
	KindSphere
	KindCylinder
	KindPrism
)

var kindNames = map[Kind]string{
	KindCube:     "cube",
	KindSphere:   "sphere",
	KindCylinder: "cylinder",
	KindPrism:    "prism",
}

// String returns the primitive name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every registered kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindCube, KindSphere, KindCylinder, KindPrism}
}

// ParseKind resolves a primitive name, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Params bundles the per-kind generator configs.
type Params struct {
	Cube     CubeConfig     `yaml:"cube"`
	Sphere   SphereConfig   `yaml:"sphere"`
	Cylinder CylinderConfig `yaml:"cylinder"`
	Prism    PrismConfig    `yaml:"prism"`
}

// DefaultParams returns the default config for every kind.
func DefaultParams() Params {
	return Params{
		Cube:     DefaultCubeConfig(),
		Sphere:   DefaultSphereConfig(),
		Cylinder: DefaultCylinderConfig(),
		Prism:    DefaultPrismConfig(),
	}
}

// Validate checks every config in the bundle.
func (p Params) Validate() error {
	return errors.Join(
		p.Cube.Validate(),
		p.Sphere.Validate(),
		p.Cylinder.Validate(),
		p.Prism.Validate(),
	)
}

// Generate builds the primitive of the given kind from its config in p.
func Generate(kind Kind, p Params) (*mesh.Mesh, error) {
	switch kind {
	case KindCube:
		return Cube(p.Cube)
	case KindSphere:
		return Sphere(p.Sphere)
	case KindCylinder:
		return Cylinder(p.Cylinder)
	case KindPrism:
		return Prism(p.Prism)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}
