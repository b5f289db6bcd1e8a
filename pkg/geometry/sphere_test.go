package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-blastracer/pkg/core"
)

func testMaterial() Material {
	return NewMaterial(core.Opaque(255, 255, 255), 1.0)
}

func TestSphere_Intersect(t *testing.T) {
	tests := []struct {
		name         string
		center       core.Vec3
		radius       float64
		rayOrigin    core.Vec3
		rayDirection core.Vec3
		expectHit    bool
		expectedT    float64
	}{
		{
			name:         "axis aligned from outside",
			center:       core.NewVec3(0, 0, 10),
			radius:       3,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    true,
			expectedT:    7.0,
		},
		{
			name:         "offset origin",
			center:       core.NewVec3(1, 2, 8),
			radius:       2,
			rayOrigin:    core.NewVec3(1, 2, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    true,
			expectedT:    6.0,
		},
		{
			name:         "origin inside returns far root",
			center:       core.NewVec3(0, 0, 0),
			radius:       1,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, 1),
			expectHit:    true,
			expectedT:    1.0,
		},
		{
			name:         "origin on surface",
			center:       core.NewVec3(0, 0, 2),
			radius:       2,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    true,
			expectedT:    0.0,
		},
		{
			name:         "both roots negative",
			center:       core.NewVec3(0, 0, -10),
			radius:       3,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    false,
		},
		{
			name:         "closest approach outside radius",
			center:       core.NewVec3(5, 0, 10),
			radius:       3,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    false,
		},
		{
			name:         "grazing tangent",
			center:       core.NewVec3(3, 0, 10),
			radius:       3,
			rayOrigin:    core.NewVec3(0, 0, 0),
			rayDirection: core.NewVec3(0, 0, -1),
			expectHit:    true,
			expectedT:    10.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(tt.center, tt.radius, testMaterial())
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)

			distance, isHit := sphere.Intersect(ray)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got hit=%t (distance %f)", tt.expectHit, isHit, distance)
			}
			if !isHit {
				return
			}
			if distance < 0 {
				t.Errorf("Expected non-negative distance, got %f", distance)
			}
			if math.Abs(distance-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, distance)
			}
		})
	}
}

func TestSphere_SurfaceNormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 1, 1), 2, testMaterial())

	tests := []struct {
		name     string
		point    core.Vec3
		expected core.Vec3
	}{
		{"top", core.NewVec3(1, 3, 1), core.NewVec3(0, 1, 0)},
		{"side", core.NewVec3(-1, 1, 1), core.NewVec3(-1, 0, 0)},
		{"front", core.NewVec3(1, 1, 3), core.NewVec3(0, 0, 1)},
		{"off surface still unit", core.NewVec3(4, 5, 1), core.NewVec3(0.6, 0.8, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sphere.SurfaceNormal(tt.point)
			if got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSphere_MaterialAccessors(t *testing.T) {
	red := core.Opaque(255, 0, 0)
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1, NewMaterial(red, 0.4))

	if sphere.Color() != red {
		t.Errorf("Expected color %v, got %v", red, sphere.Color())
	}
	if sphere.Albedo() != 0.4 {
		t.Errorf("Expected albedo 0.4, got %f", sphere.Albedo())
	}
}

func TestNewMaterial_ClampsAlbedo(t *testing.T) {
	tests := []struct {
		albedo   float64
		expected float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.75, 0.75},
		{1, 1},
		{3, 1},
	}

	for _, tt := range tests {
		if got := NewMaterial(core.Color{}, tt.albedo).Albedo; got != tt.expected {
			t.Errorf("NewMaterial albedo %f: expected %f, got %f", tt.albedo, tt.expected, got)
		}
	}
}
