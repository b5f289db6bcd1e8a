package scene

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/lights"
)

// Primitive kinds accepted in scene files
const (
	KindSphere = "sphere"
	KindPlane  = "plane"
)

// maxMagnitude bounds every coordinate and radius so that squared
// distances in the intersection tests stay finite
const maxMagnitude = 1e100

var (
	ErrUnknownKind          = errors.New("unknown primitive kind")
	ErrInvalidVector        = errors.New("vector must have exactly 3 components")
	ErrInvalidColor         = errors.New("color must have 3 or 4 channels in [0,255]")
	ErrOutOfRange           = errors.New("value must be finite and at most 1e100 in magnitude")
	ErrZeroVector           = errors.New("vector must have a non-zero length")
	ErrInvalidRadius        = errors.New("sphere radius must be positive")
	ErrInvalidAlbedo        = errors.New("albedo must be in [0,1]")
	ErrInvalidIntensity     = errors.New("light intensity must be finite")
	ErrInvalidImage         = errors.New("width, height and fov must be positive, fov below 180")
	ErrNoPrimitives         = errors.New("scene has no primitives")
	ErrUnsupportedPrimitive = errors.New("primitive type cannot be described")
)

// Vector is a YAML [x, y, z] triple
type Vector []float64

// Vec3 converts to a core vector. The vector must have 3 components.
func (v Vector) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func (v Vector) validate() error {
	if len(v) != 3 {
		return fmt.Errorf("%w, got %d", ErrInvalidVector, len(v))
	}
	for _, c := range v {
		if err := checkMagnitude(c); err != nil {
			return err
		}
	}
	return nil
}

// validateDirection also rejects vectors too short to normalize, which
// includes sub-normal components whose squared length underflows to zero
func (v Vector) validateDirection() error {
	if err := v.validate(); err != nil {
		return err
	}
	if !(v.Vec3().Length() > 0) {
		return fmt.Errorf("%w, got %v", ErrZeroVector, v.Vec3())
	}
	return nil
}

func checkMagnitude(f float64) error {
	if math.IsNaN(f) || math.Abs(f) > maxMagnitude {
		return fmt.Errorf("%w, got %g", ErrOutOfRange, f)
	}
	return nil
}

func vectorOf(v core.Vec3) Vector {
	return Vector{v.X, v.Y, v.Z}
}

// RGBA is a YAML [r, g, b] or [r, g, b, a] color with byte channels.
// Alpha defaults to 255.
type RGBA []int

// Color converts to a core color. The color must have 3 or 4 channels.
func (c RGBA) Color() core.Color {
	a := 255
	if len(c) == 4 {
		a = c[3]
	}
	return core.NewColor(uint8(c[0]), uint8(c[1]), uint8(c[2]), uint8(a))
}

func (c RGBA) validate() error {
	if len(c) != 3 && len(c) != 4 {
		return fmt.Errorf("%w, got %d channels", ErrInvalidColor, len(c))
	}
	for _, ch := range c {
		if ch < 0 || ch > 255 {
			return fmt.Errorf("%w, got %d", ErrInvalidColor, ch)
		}
	}
	return nil
}

func rgbaOf(c core.Color) RGBA {
	return RGBA{int(c.R), int(c.G), int(c.B), int(c.A)}
}

// LightDescription describes the scene's directional light
type LightDescription struct {
	Direction Vector  `yaml:"direction"`
	Color     RGBA    `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
}

// PrimitiveDescription describes one primitive. Center and Radius apply to
// spheres; Point and Normal apply to planes.
type PrimitiveDescription struct {
	Kind   string  `yaml:"kind"`
	Center Vector  `yaml:"center,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	Point  Vector  `yaml:"point,omitempty"`
	Normal Vector  `yaml:"normal,omitempty"`
	Color  RGBA    `yaml:"color"`
	Albedo float64 `yaml:"albedo"`
}

// Description is the file form of a scene
type Description struct {
	Name       string                 `yaml:"name"`
	Width      int                    `yaml:"width"`
	Height     int                    `yaml:"height"`
	FOV        float64                `yaml:"fov"`
	Light      LightDescription       `yaml:"light"`
	Primitives []PrimitiveDescription `yaml:"primitives"`
}

// LoadDescription reads and validates a YAML scene file
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	desc, err := ParseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", path, err)
	}
	return desc, nil
}

// ParseDescription decodes and validates a YAML scene document. Missing
// image settings fall back to DefaultSettings.
func ParseDescription(data []byte) (*Description, error) {
	defaults := DefaultSettings()
	desc := &Description{
		Width:  defaults.Width,
		Height: defaults.Height,
		FOV:    defaults.FOV,
	}
	if err := yaml.Unmarshal(data, desc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Validate checks everything Build relies on
func (d *Description) Validate() error {
	if d.Width <= 0 || d.Height <= 0 || !(d.FOV > 0 && d.FOV < 180) {
		return fmt.Errorf("%w: %dx%d at %g degrees", ErrInvalidImage, d.Width, d.Height, d.FOV)
	}

	if err := d.Light.Direction.validateDirection(); err != nil {
		return fmt.Errorf("light direction: %w", err)
	}
	if math.IsNaN(d.Light.Intensity) || math.IsInf(d.Light.Intensity, 0) {
		return fmt.Errorf("%w, got %g", ErrInvalidIntensity, d.Light.Intensity)
	}
	if err := d.Light.Color.validate(); err != nil {
		return fmt.Errorf("light color: %w", err)
	}

	if len(d.Primitives) == 0 {
		return ErrNoPrimitives
	}
	for i, p := range d.Primitives {
		if err := p.validate(); err != nil {
			return fmt.Errorf("primitive %d (%s): %w", i, p.Kind, err)
		}
	}
	return nil
}

func (p PrimitiveDescription) validate() error {
	if err := p.Color.validate(); err != nil {
		return err
	}
	if !(p.Albedo >= 0 && p.Albedo <= 1) {
		return fmt.Errorf("%w, got %g", ErrInvalidAlbedo, p.Albedo)
	}

	switch p.Kind {
	case KindSphere:
		if err := p.Center.validate(); err != nil {
			return fmt.Errorf("center: %w", err)
		}
		if !(p.Radius > 0) {
			return fmt.Errorf("%w, got %g", ErrInvalidRadius, p.Radius)
		}
		if err := checkMagnitude(p.Radius); err != nil {
			return fmt.Errorf("radius: %w", err)
		}
	case KindPlane:
		if err := p.Point.validate(); err != nil {
			return fmt.Errorf("point: %w", err)
		}
		if err := p.Normal.validateDirection(); err != nil {
			return fmt.Errorf("normal: %w", err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, p.Kind)
	}
	return nil
}

// Build validates the description and constructs the scene
func (d *Description) Build() (*Scene, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	light, err := lights.NewDirectionalLight(d.Light.Direction.Vec3(), d.Light.Color.Color(), d.Light.Intensity)
	if err != nil {
		return nil, err
	}

	primitives := make([]geometry.Primitive, 0, len(d.Primitives))
	for _, p := range d.Primitives {
		material := geometry.NewMaterial(p.Color.Color(), p.Albedo)
		switch p.Kind {
		case KindSphere:
			primitives = append(primitives, geometry.NewSphere(p.Center.Vec3(), p.Radius, material))
		case KindPlane:
			primitives = append(primitives, geometry.NewPlane(p.Point.Vec3(), p.Normal.Vec3(), material))
		}
	}

	settings := Settings{Width: d.Width, Height: d.Height, FOV: d.FOV}
	return New(d.Name, light, settings, primitives...), nil
}

// Describe converts a scene back into its file form
func Describe(s *Scene) (*Description, error) {
	settings := s.Settings()
	light := s.Light()

	desc := &Description{
		Name:   s.Name(),
		Width:  settings.Width,
		Height: settings.Height,
		FOV:    settings.FOV,
		Light: LightDescription{
			Direction: vectorOf(light.Direction),
			Color:     rgbaOf(light.Color),
			Intensity: light.Intensity,
		},
		Primitives: make([]PrimitiveDescription, 0, s.Len()),
	}

	for i := 0; i < s.Len(); i++ {
		switch obj := s.Primitive(i).(type) {
		case *geometry.Sphere:
			desc.Primitives = append(desc.Primitives, PrimitiveDescription{
				Kind:   KindSphere,
				Center: vectorOf(obj.Center),
				Radius: obj.Radius,
				Color:  rgbaOf(obj.Material.Color),
				Albedo: obj.Material.Albedo,
			})
		case *geometry.Plane:
			desc.Primitives = append(desc.Primitives, PrimitiveDescription{
				Kind:   KindPlane,
				Point:  vectorOf(obj.Point),
				Normal: vectorOf(obj.Normal),
				Color:  rgbaOf(obj.Material.Color),
				Albedo: obj.Material.Albedo,
			})
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedPrimitive, obj)
		}
	}

	return desc, nil
}

// Marshal encodes the description as YAML
func (d *Description) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// SaveTo writes the description to path
func (d *Description) SaveTo(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
