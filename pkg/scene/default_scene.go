package scene

import (
	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/lights"
)

// NewDefaultScene creates the demo scene: a large red sphere, a small green
// sphere and a grey floor lit from above
func NewDefaultScene() *Scene {
	light := lights.DirectionalLight{
		Direction: core.NewVec3(0, -3, 2),
		Color:     core.Opaque(255, 255, 255),
		Intensity: 9,
	}

	red := geometry.NewMaterial(core.Opaque(255, 0, 0), 1.0)
	green := geometry.NewMaterial(core.Opaque(0, 255, 0), 1.0)
	grey := geometry.NewMaterial(core.Opaque(50, 50, 50), 1.0)

	return New("default", light, DefaultSettings(),
		geometry.NewSphere(core.NewVec3(0, 0, 10), 3, red),
		geometry.NewSphere(core.NewVec3(1, 0.25, 5), 0.5, green),
		geometry.NewPlane(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 1, 0), grey),
	)
}
