package geometry

import (
	"github.com/df07/go-blastracer/pkg/core"
)

// planeEpsilon is the minimum approach rate along the plane normal
// for a ray to count as hitting it
const planeEpsilon = 1e-6

// Plane represents an infinite one-sided plane defined by a point and normal
type Plane struct {
	Point    core.Vec3 // A point on the plane
	Normal   core.Vec3 // Unit normal of the visible face
	Material Material
}

// NewPlane creates a new plane. normal must be non-zero.
func NewPlane(point, normal core.Vec3, material Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: material,
	}
}

// Intersect tests the ray against the plane. Only rays travelling against
// Normal register a hit; rays coming from behind the visible face, rays
// parallel to the plane and hits behind the origin all miss.
func (p *Plane) Intersect(ray core.Ray) (float64, bool) {
	// Intersection is solved against the inward normal
	inward := p.Normal.Negate()
	denom := inward.Dot(ray.Direction)
	if denom <= planeEpsilon {
		return 0, false
	}

	distance := p.Point.Subtract(ray.Origin).Dot(inward) / denom
	if distance < 0 {
		return 0, false
	}
	return distance, true
}

// SurfaceNormal returns the visible face normal, which is the same at every point
func (p *Plane) SurfaceNormal(_ core.Vec3) core.Vec3 {
	return p.Normal
}

// Albedo returns the plane's diffuse reflectance
func (p *Plane) Albedo() float64 {
	return p.Material.Albedo
}

// Color returns the plane's diffuse color
func (p *Plane) Color() core.Color {
	return p.Material.Color
}
