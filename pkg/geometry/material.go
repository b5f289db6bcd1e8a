package geometry

import "github.com/df07/go-blastracer/pkg/core"

// Material describes how a primitive reflects light
type Material struct {
	Color  core.Color // Diffuse color
	Albedo float64    // Fraction of incident light re-emitted, in [0,1]
}

// NewMaterial creates a material, clamping albedo to [0,1]
func NewMaterial(color core.Color, albedo float64) Material {
	return Material{
		Color:  color,
		Albedo: max(0, min(1, albedo)),
	}
}
