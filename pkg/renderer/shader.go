package renderer

import (
	"math"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/scene"
)

// Shade computes the Lambertian color of a hit lit by the scene's
// directional light. There is no shadow test; the light reaches every
// surface facing it.
func Shade(s *scene.Scene, ray core.Ray, hit scene.Intersection) core.Color {
	primitive := s.Primitive(hit.Index)
	hitPoint := ray.At(hit.Distance)
	normal := primitive.SurfaceNormal(hitPoint)

	light := s.Light().Sample(hitPoint)
	lightPower := max(0, normal.Dot(light.Direction)) * light.Intensity
	lightReflected := primitive.Albedo() / math.Pi

	// Channels are multiplied as linear [0,1] intensities and saturate on encode
	scale := lightPower * lightReflected
	pr, pg, pb := primitive.Color().Normalized()
	lr, lg, lb := light.Color.Normalized()

	return core.FromNormalized(pr*lr*scale, pg*lg*scale, pb*lb*scale, 1)
}
