// Package picking provides ray casting against axis-aligned boxes.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    [3]float32
	Direction [3]float32 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// NewRay returns a ray with a normalized direction.
func NewRay(origin, direction [3]float32) Ray {
	d := math.V3(direction).Normalize()
	return Ray{Origin: origin, Direction: d.Array()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) [3]float32 {
	return [3]float32{
		r.Origin[0] + t*r.Direction[0],
		r.Origin[1] + t*r.Direction[1],
		r.Origin[2] + t*r.Direction[2],
	}
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	return NewRay(nearWorld.Array(), farWorld.Sub(nearWorld).Array())
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	p := inv.MulVec4(ndc)
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if math32.Abs(r.Direction[1]) < 0.001 {
		return 0, 0, false // parallel
	}

	t := (planeY - r.Origin[1]) / r.Direction[1]
	if t < 0 {
		return 0, 0, false // behind origin
	}

	p := r.At(t)
	return p[0], p[2], true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	var tmin, tmax float32 = -math32.MaxFloat32, math32.MaxFloat32

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from two opposite corners in any order.
func NewAABB(a, b [3]float32) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		box.Min[i] = math32.Min(a[i], b[i])
		box.Max[i] = math32.Max(a[i], b[i])
	}
	return box
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p [3]float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// TransformAABB returns the world-space box enclosing all eight corners of
// a local box transformed by world. Rotations grow the box; they never clip it.
func TransformAABB(local AABB, world math.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		corner := [3]float32{local.Min[0], local.Min[1], local.Min[2]}
		if i&1 != 0 {
			corner[0] = local.Max[0]
		}
		if i&2 != 0 {
			corner[1] = local.Max[1]
		}
		if i&4 != 0 {
			corner[2] = local.Max[2]
		}
		p := world.TransformPoint(corner)
		if i == 0 {
			out.Min, out.Max = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			out.Min[k] = math32.Min(out.Min[k], p[k])
			out.Max[k] = math32.Max(out.Max[k], p[k])
		}
	}
	return out
}
