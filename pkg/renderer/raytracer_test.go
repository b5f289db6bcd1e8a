package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/geometry"
	"github.com/df07/go-blastracer/pkg/lights"
	"github.com/df07/go-blastracer/pkg/scene"
)

func createTestScene() *scene.Scene {
	light := lights.DirectionalLight{
		Direction: core.NewVec3(0, -1, -1),
		Color:     core.Opaque(255, 255, 255),
		Intensity: 4,
	}
	return scene.New("test", light, scene.Settings{Width: 32, Height: 24, FOV: 70},
		geometry.NewSphere(core.NewVec3(0, 0, 10), 3, geometry.NewMaterial(core.Opaque(255, 0, 0), 1)),
		geometry.NewSphere(core.NewVec3(2, 1, 6), 1, geometry.NewMaterial(core.Opaque(0, 255, 0), 0.8)),
	)
}

func TestRender_BufferLayout(t *testing.T) {
	s := createTestScene()
	pixels, err := Render(32, 24, 70, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(pixels) != 32*24 {
		t.Fatalf("Expected %d pixels, got %d", 32*24, len(pixels))
	}

	// Each entry is the pixel the camera ray at that position produces
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			ray := PrimaryRay(x, y, 32, 24, 70)
			var expected uint32
			if hit, isHit := s.Trace(ray); isHit {
				expected = Shade(s, ray, hit).Pixel()
			}
			if got := pixels[y*32+x]; got != expected {
				t.Fatalf("Pixel (%d,%d): expected %#08x, got %#08x", x, y, expected, got)
			}
		}
	}
}

func TestRender_EmptySceneIsBlack(t *testing.T) {
	light, _ := lights.NewDirectionalLight(core.NewVec3(0, -1, 0), core.Opaque(255, 255, 255), 1)
	s := scene.New("empty", light, scene.DefaultSettings())

	pixels, err := Render(8, 6, 70, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(make([]uint32, 8*6), pixels); diff != "" {
		t.Errorf("Expected all misses to be zero (-want +got):\n%s", diff)
	}
}

func TestRender_DefaultSceneCenterIsRed(t *testing.T) {
	s := scene.NewDefaultScene()
	pixels, err := Render(21, 21, 70, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	center := core.ColorFromPixel(pixels[10*21+10])
	if center.R == 0 || center.G != 0 || center.B != 0 {
		t.Errorf("Expected a red center pixel, got %v", center)
	}
}

func TestRender_InvalidArguments(t *testing.T) {
	s := createTestScene()
	tests := []struct {
		name          string
		width, height int
		fov           float64
		scene         *scene.Scene
		expectErr     error
	}{
		{"zero width", 0, 10, 70, s, ErrInvalidDimensions},
		{"negative height", 10, -2, 70, s, ErrInvalidDimensions},
		{"zero fov", 10, 10, 0, s, ErrInvalidFOV},
		{"nil scene", 10, 10, 70, nil, ErrNilScene},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.width, tt.height, tt.fov, tt.scene)
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestRaytracer_ParallelMatchesSerial(t *testing.T) {
	s := createTestScene()
	serial, err := NewRaytracer(s, Config{Width: 45, Height: 31, FOV: 70, TileSize: 0, NumWorkers: 1}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected, _, err := serial.Render(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	configs := []struct {
		tileSize, workers int
	}{
		{1, 8},
		{7, 3},
		{16, 0},
		{64, 2},
	}
	for _, c := range configs {
		rt, err := NewRaytracer(s, Config{Width: 45, Height: 31, FOV: 70, TileSize: c.tileSize, NumWorkers: c.workers}, nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got, _, err := rt.Render(context.Background())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("tile size %d, %d workers differs from serial render (-want +got):\n%s", c.tileSize, c.workers, diff)
		}
	}
}

func TestRaytracer_Stats(t *testing.T) {
	rt, err := NewRaytracer(createTestScene(), Config{Width: 32, Height: 24, FOV: 70, TileSize: 8, NumWorkers: 2}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	pixels, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if stats.TotalPixels != 32*24 || stats.Hits+stats.Misses != stats.TotalPixels {
		t.Errorf("Inconsistent pixel counts: %+v", stats)
	}
	if stats.Tiles != 12 || stats.Workers != 2 {
		t.Errorf("Expected 12 tiles on 2 workers, got %+v", stats)
	}

	nonZero := 0
	for _, p := range pixels {
		if p != 0 {
			nonZero++
		}
	}
	if nonZero > stats.Hits {
		t.Errorf("Found %d non-zero pixels but only %d hits", nonZero, stats.Hits)
	}
}

func TestRaytracer_RenderIntoKeepsMisses(t *testing.T) {
	s := createTestScene()
	rt, err := NewRaytracer(s, Config{Width: 16, Height: 12, FOV: 70, TileSize: 4}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	const background = 0x00ABCDEF
	pixels := make([]uint32, 16*12)
	for i := range pixels {
		pixels[i] = background
	}
	if _, err := rt.RenderInto(context.Background(), pixels); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			_, isHit := s.Trace(PrimaryRay(x, y, 16, 12, 70))
			if !isHit && pixels[y*16+x] != background {
				t.Fatalf("Miss at (%d,%d) overwrote the buffer with %#08x", x, y, pixels[y*16+x])
			}
		}
	}
}

func TestRaytracer_RenderIntoWrongSize(t *testing.T) {
	rt, err := NewRaytracer(createTestScene(), Config{Width: 4, Height: 4, FOV: 70}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := rt.RenderInto(context.Background(), make([]uint32, 15)); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Expected ErrBufferSize, got %v", err)
	}
}

func TestRaytracer_CancelledContext(t *testing.T) {
	rt, err := NewRaytracer(createTestScene(), Config{Width: 32, Height: 24, FOV: 70, TileSize: 4}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := rt.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRaytracer_RenderImage(t *testing.T) {
	s := createTestScene()
	rt, err := NewRaytracer(s, DefaultConfig(s), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	img, _, err := rt.RenderImage(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	settings := s.Settings()
	if img.Bounds().Dx() != settings.Width || img.Bounds().Dy() != settings.Height {
		t.Errorf("Expected %dx%d image, got %v", settings.Width, settings.Height, img.Bounds())
	}
	if rt.Config().TileSize != 64 {
		t.Errorf("Expected default tile size 64, got %d", rt.Config().TileSize)
	}
}

func TestRaytracer_RenderTilesCallback(t *testing.T) {
	s := createTestScene()
	rt, err := NewRaytracer(s, Config{Width: 20, Height: 12, FOV: 70, TileSize: 8, NumWorkers: 3}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rt.TileCount() != 6 {
		t.Fatalf("Expected 6 tiles, got %d", rt.TileCount())
	}

	pixels := make([]uint32, 20*12)
	var mu sync.Mutex
	seen := map[int]int{}
	hits := 0
	stats, err := rt.RenderTiles(context.Background(), pixels, func(tile Tile, ts RenderStats) error {
		// The tile is already in the buffer when the callback runs
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				ray := PrimaryRay(x, y, 20, 12, 70)
				if hit, ok := s.Trace(ray); ok && pixels[y*20+x] != Shade(s, ray, hit).Pixel() {
					return fmt.Errorf("pixel %d,%d not rendered before callback", x, y)
				}
			}
		}
		mu.Lock()
		defer mu.Unlock()
		seen[tile.ID]++
		hits += ts.Hits
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(seen) != 6 {
		t.Errorf("Expected a callback per tile, got %v", seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Tile %d reported %d times", id, n)
		}
	}
	if hits != stats.Hits {
		t.Errorf("Expected callback hits to sum to %d, got %d", stats.Hits, hits)
	}
}

func TestRaytracer_RenderTilesCallbackErrorAborts(t *testing.T) {
	rt, err := NewRaytracer(createTestScene(), Config{Width: 20, Height: 12, FOV: 70, TileSize: 8, NumWorkers: 1}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stop := errors.New("client gone")
	_, err = rt.RenderTiles(context.Background(), make([]uint32, 20*12), func(Tile, RenderStats) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Expected callback error, got %v", err)
	}
}
