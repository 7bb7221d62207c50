package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Orbit positions a Camera on a sphere around a center point.
type Orbit struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizontal plane
	Yaw      float32 // radians around Y, 0 looks down -Z

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbit creates an orbit with defaults suited to unit-sized meshes.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        5,
		Pitch:           0.35,
		MinDistance:     0.8,
		MaxDistance:     50,
		MinPitch:        -(math32.Pi/2 - 0.01),
		MaxPitch:        math32.Pi/2 - 0.01,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the eye position in world space.
func (o *Orbit) Position() math.Vec3 {
	cp := math32.Cos(o.Pitch)
	return math.Vec3{
		X: o.Center.X + o.Distance*cp*math32.Sin(o.Yaw),
		Y: o.Center.Y + o.Distance*math32.Sin(o.Pitch),
		Z: o.Center.Z + o.Distance*cp*math32.Cos(o.Yaw),
	}
}

// Apply moves cam onto the orbit, looking at the center.
func (o *Orbit) Apply(cam *Camera) {
	cam.Position = o.Position()
	cam.Target = o.Center
	cam.Up = math.Vec3{X: 0, Y: 1, Z: 0}
}

// HandleDrag updates rotation based on a pointer drag delta in pixels.
func (o *Orbit) HandleDrag(deltaX, deltaY float32) {
	o.Yaw -= deltaX * o.DragSensitivity
	o.Pitch = clamp(o.Pitch+deltaY*o.DragSensitivity, o.MinPitch, o.MaxPitch)
}

// HandleZoom scales the distance; positive delta moves closer.
func (o *Orbit) HandleZoom(delta float32) {
	o.Distance = clamp(o.Distance-delta*o.Distance*o.ZoomSensitivity, o.MinDistance, o.MaxDistance)
}

// FitToBounds centers the orbit on b and backs off far enough that a
// camera with the given vertical field of view sees the whole box.
func (o *Orbit) FitToBounds(b mesh.Bounds, fovY float32) {
	c := b.Center()
	o.Center = math.V3(c)

	size := math.V3(b.Size())
	radius := size.Length() / 2
	if radius == 0 {
		radius = 0.5
	}
	o.Distance = clamp(radius/math32.Sin(fovY/2), o.MinDistance, o.MaxDistance)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
