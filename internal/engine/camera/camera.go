// Package camera provides view and projection matrices for looking at a scene.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
)

// Camera is a perspective look-at camera. FovY is in radians.
type Camera struct {
	Position math.Vec3
	Target   math.Vec3
	Up       math.Vec3

	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultCamera returns a 60° camera three units back on +Z looking at the origin.
func DefaultCamera() *Camera {
	return &Camera{
		Position: math.Vec3{X: 0, Y: 0, Z: 3},
		Up:       math.Vec3{X: 0, Y: 1, Z: 0},
		FovY:     60 * math32.Pi / 180,
		Aspect:   1,
		Near:     0.1,
		Far:      100,
	}
}

// View returns the world-to-view matrix.
func (c *Camera) View() math.Mat4 {
	return math.LookAt(c.Position, c.Target, c.Up)
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() math.Mat4 {
	return math.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection · View.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.Projection().Mul(c.View())
}

// Resize updates the aspect ratio. Non-positive values are ignored.
func (c *Camera) Resize(aspect float32) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

// ResizeViewport sets the aspect ratio from pixel dimensions.
func (c *Camera) ResizeViewport(width, height int) {
	if height > 0 {
		c.Resize(float32(width) / float32(height))
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}
