package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-blastracer/pkg/core"
)

var (
	ErrInvalidDimensions = errors.New("image width and height must be positive")
	ErrInvalidFOV        = errors.New("field of view must be between 0 and 180 degrees")
)

// PrimaryRay returns the camera ray through the center of pixel (x, y). The
// camera sits at the origin looking down -Z with +Y up; pixel rows grow
// downward. width and height must be positive.
func PrimaryRay(x, y, width, height int, fovDegrees float64) core.Ray {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("renderer: primary ray for %dx%d image", width, height))
	}

	return sensorRay(x, y, width, height, float64(width)/float64(height), fovScale(fovDegrees))
}

func fovScale(fovDegrees float64) float64 {
	return math.Tan(fovDegrees * math.Pi / 180 / 2)
}

// sensorRay maps the pixel center into [-1,1] device coordinates, scales
// them onto the sensor plane at z=-1 and points a ray at it
func sensorRay(x, y, width, height int, aspectRatio, fovAdjust float64) core.Ray {
	sensorX := ((float64(x)+0.5)/float64(width)*2 - 1) * aspectRatio * fovAdjust
	sensorY := (1 - (float64(y)+0.5)/float64(height)*2) * fovAdjust

	return core.NewRay(core.Zero(), core.NewVec3(sensorX, sensorY, -1).Normalize())
}

// Camera generates primary rays for a fixed image size and field of view
type Camera struct {
	width, height int
	fov           float64
	aspectRatio   float64
	fovAdjust     float64 // tan(fov/2), the sensor half-height at z=-1
}

// NewCamera creates a camera for a width x height image with the given
// vertical field of view in degrees
func NewCamera(width, height int, fovDegrees float64) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if !(fovDegrees > 0 && fovDegrees < 180) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidFOV, fovDegrees)
	}

	return &Camera{
		width:       width,
		height:      height,
		fov:         fovDegrees,
		aspectRatio: float64(width) / float64(height),
		fovAdjust:   fovScale(fovDegrees),
	}, nil
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.width }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.height }

// FOV returns the vertical field of view in degrees
func (c *Camera) FOV() float64 { return c.fov }

// Ray returns the primary ray through the center of pixel (x, y)
func (c *Camera) Ray(x, y int) core.Ray {
	return sensorRay(x, y, c.width, c.height, c.aspectRatio, c.fovAdjust)
}
