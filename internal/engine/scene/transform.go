package scene

import "github.com/Faultbox/meshkit/pkg/math"

// Transform is a node's local placement. Rotation holds Euler angles in
// radians applied X, then Y, then Z. Copying a Transform copies all of it.
type Transform struct {
	Position math.Vec3
	Rotation math.Vec3
	Scale    math.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// Matrix composes translate · rotateX · rotateY · rotateZ · scale.
func (t Transform) Matrix() math.Mat4 {
	return math.Translate(t.Position.X, t.Position.Y, t.Position.Z).
		Mul(math.RotateX(t.Rotation.X)).
		Mul(math.RotateY(t.Rotation.Y)).
		Mul(math.RotateZ(t.Rotation.Z)).
		Mul(math.Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// Forward returns the local -Z axis after rotation and scale.
func (t Transform) Forward() math.Vec3 {
	m := t.Matrix()
	return math.Vec3{X: -m[8], Y: -m[9], Z: -m[10]}
}
