package geometry

import (
	"math"

	"github.com/df07/go-blastracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Intersect projects the origin-to-center offset onto the ray direction and
// solves for the two roots around the closest approach. The nearest
// non-negative root is returned; a sphere entirely behind the origin misses.
func (s *Sphere) Intersect(ray core.Ray) (float64, bool) {
	l := ray.Origin.Subtract(s.Center)
	adj := l.Dot(ray.Direction)
	d2 := l.Dot(l) - adj*adj
	radius2 := s.Radius * s.Radius

	if d2 > radius2 {
		return 0, false
	}

	thc := math.Sqrt(radius2 - d2)
	t0 := adj - thc
	t1 := adj + thc

	if t0 < 0 && t1 < 0 {
		return 0, false
	}

	// t0 <= t1 always holds, so a negative t0 means the origin is inside
	if t0 >= 0 {
		return t0, true
	}
	return t1, true
}

// SurfaceNormal returns the outward normal at point
func (s *Sphere) SurfaceNormal(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}

// Albedo returns the sphere's diffuse reflectance
func (s *Sphere) Albedo() float64 {
	return s.Material.Albedo
}

// Color returns the sphere's diffuse color
func (s *Sphere) Color() core.Color {
	return s.Material.Color
}
