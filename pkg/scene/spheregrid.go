package scene

import (
	"math"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/lights"
)

// oklchToColor converts OKLCH color values to an opaque color
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToColor(l, c, h float64) core.Color {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB, saturated by FromNormalized
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.FromNormalized(r, g, blue, 1)
}

const (
	gridSize    = 5
	gridSpacing = 1.5
	gridRadius  = 0.5
	gridDepth   = 8.0
)

// NewSphereGridScene creates a scene with a grid of spheres in a rainbow of
// hues above a floor
func NewSphereGridScene() *Scene {
	light := lights.DirectionalLight{
		Direction: core.NewVec3(-1, -2, 3),
		Color:     core.Opaque(255, 250, 240),
		Intensity: 6,
	}

	primitives := make([]geometry.Primitive, 0, gridSize*gridSize+1)
	offset := float64(gridSize-1) * gridSpacing / 2

	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			hue := float64(row*gridSize+col) * 360.0 / float64(gridSize*gridSize)
			albedo := 0.5 + 0.5*float64(row)/float64(gridSize-1)

			center := core.NewVec3(
				float64(col)*gridSpacing-offset,
				float64(row)*gridSpacing-offset,
				gridDepth,
			)
			material := geometry.NewMaterial(oklchToColor(0.7, 0.15, hue), albedo)
			primitives = append(primitives, geometry.NewSphere(center, gridRadius, material))
		}
	}

	floor := geometry.NewMaterial(core.Opaque(90, 90, 100), 0.8)
	primitives = append(primitives,
		geometry.NewPlane(core.NewVec3(0, -offset-gridSpacing, 0), core.NewVec3(0, 1, 0), floor))

	return New("spheregrid", light, Settings{Width: 800, Height: 600, FOV: 60}, primitives...)
}
