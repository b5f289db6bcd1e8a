package lights

import "github.com/df07/go-blastracer/pkg/core"

type LightType string

const (
	LightTypeDirectional LightType = "directional"
)

// LightSample describes the light arriving at a shading point
type LightSample struct {
	Direction core.Vec3  // Unit direction from the shading point to the light
	Color     core.Color // Light color
	Intensity float64    // Unitless multiplier, may exceed 1
}
