package geometry

import (
	"github.com/df07/go-blastracer/pkg/core"
)

// Primitive is a surface that can be hit by rays and lit by the shader.
// Sphere and Plane are the only implementations.
type Primitive interface {
	// Intersect returns the distance along the ray to the nearest
	// non-negative hit, or false on a miss
	Intersect(ray core.Ray) (float64, bool)
	// SurfaceNormal returns the unit normal at a point on the surface
	SurfaceNormal(point core.Vec3) core.Vec3
	Albedo() float64
	Color() core.Color
}
