package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/lights"
)

// Settings are the image parameters a scene was authored for
type Settings struct {
	Width  int     // Image width in pixels
	Height int     // Image height in pixels
	FOV    float64 // Vertical field of view in degrees
}

// DefaultSettings matches the original demo window
func DefaultSettings() Settings {
	return Settings{
		Width:  1080,
		Height: 720,
		FOV:    70,
	}
}

// Scene holds the primitives and the single light of a render. It is
// immutable after New and safe for concurrent reads.
type Scene struct {
	name       string
	primitives []geometry.Primitive
	light      lights.DirectionalLight
	settings   Settings
}

// Intersection is the nearest hit of a ray against a scene
type Intersection struct {
	Distance float64 // Distance along the ray
	Index    int     // Index of the hit primitive, see Scene.Primitive
}

// New creates a scene. The primitive slice is copied; its order is the
// order Trace tests primitives in.
func New(name string, light lights.DirectionalLight, settings Settings, primitives ...geometry.Primitive) *Scene {
	return &Scene{
		name:       name,
		primitives: append([]geometry.Primitive(nil), primitives...),
		light:      light,
		settings:   settings,
	}
}

// Name returns the scene name
func (s *Scene) Name() string {
	return s.name
}

// Light returns the scene's directional light
func (s *Scene) Light() lights.DirectionalLight {
	return s.light
}

// Settings returns the image parameters the scene was authored for
func (s *Scene) Settings() Settings {
	return s.settings
}

// Len returns the number of primitives
func (s *Scene) Len() int {
	return len(s.primitives)
}

// Primitive returns the primitive at index i
func (s *Scene) Primitive(i int) geometry.Primitive {
	return s.primitives[i]
}

// Trace returns the nearest primitive hit by ray. Primitives are tested in
// insertion order and a later hit only replaces the current one when it is
// strictly closer, so exact ties currently go to the earlier primitive;
// callers must not depend on that. A NaN distance panics.
func (s *Scene) Trace(ray core.Ray) (Intersection, bool) {
	closest := Intersection{Index: -1}
	closestSoFar := math.Inf(1)

	for i, primitive := range s.primitives {
		distance, isHit := primitive.Intersect(ray)
		if !isHit {
			continue
		}
		if math.IsNaN(distance) {
			panic(fmt.Sprintf("scene: primitive %d (%T) returned NaN distance for ray %v -> %v",
				i, primitive, ray.Origin, ray.Direction))
		}
		if distance < closestSoFar {
			closestSoFar = distance
			closest = Intersection{Distance: distance, Index: i}
		}
	}

	return closest, closest.Index >= 0
}
