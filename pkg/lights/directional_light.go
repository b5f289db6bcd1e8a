package lights

import (
	"errors"

	"github.com/df07/go-blastracer/pkg/core"
)

// ErrZeroDirection is returned for a light without a direction
var ErrZeroDirection = errors.New("directional light direction must have a non-zero length")

// DirectionalLight is a light infinitely far away. Every point in the scene
// receives it from the same direction with the same intensity.
type DirectionalLight struct {
	Direction core.Vec3  // Travel direction of the light, from the light toward the scene
	Color     core.Color // Light color
	Intensity float64    // Unitless multiplier, may exceed 1
}

// NewDirectionalLight creates a directional light. The direction must be
// long enough to normalize.
func NewDirectionalLight(direction core.Vec3, color core.Color, intensity float64) (DirectionalLight, error) {
	if !(direction.Length() > 0) {
		return DirectionalLight{}, ErrZeroDirection
	}
	return DirectionalLight{
		Direction: direction,
		Color:     color,
		Intensity: max(0, intensity),
	}, nil
}

// Type returns the light type
func (l DirectionalLight) Type() LightType {
	return LightTypeDirectional
}

// ToLight returns the unit vector pointing from the scene toward the light
func (l DirectionalLight) ToLight() core.Vec3 {
	return l.Direction.Negate().Normalize()
}

// Sample returns the light arriving at point. A directional light
// is the same everywhere so point is unused.
func (l DirectionalLight) Sample(_ core.Vec3) LightSample {
	return LightSample{
		Direction: l.ToLight(),
		Color:     l.Color,
		Intensity: l.Intensity,
	}
}
