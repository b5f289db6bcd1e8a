package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-blastracer/pkg/scene"
)

var (
	ErrBufferSize = errors.New("frame buffer length does not match image size")
	ErrNilScene   = errors.New("scene is nil")
)

// Config contains rendering configuration
type Config struct {
	Width      int     // Image width in pixels
	Height     int     // Image height in pixels
	FOV        float64 // Vertical field of view in degrees
	TileSize   int     // Size of each square tile (0 = one tile)
	NumWorkers int     // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values for a scene
func DefaultConfig(s *scene.Scene) Config {
	settings := s.Settings()
	return Config{
		Width:      settings.Width,
		Height:     settings.Height,
		FOV:        settings.FOV,
		TileSize:   64,
		NumWorkers: 0,
	}
}

// Raytracer renders frames of a scene. The scene is only read, so one
// Raytracer may render concurrently with others sharing the same scene.
type Raytracer struct {
	scene      *scene.Scene
	camera     *Camera
	config     Config
	tiles      []Tile
	workerPool *WorkerPool
	logger     *zap.Logger
}

// NewRaytracer creates a raytracer. A nil logger disables logging.
func NewRaytracer(s *scene.Scene, config Config, logger *zap.Logger) (*Raytracer, error) {
	if s == nil {
		return nil, ErrNilScene
	}
	camera, err := NewCamera(config.Width, config.Height, config.FOV)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Raytracer{
		scene:      s,
		camera:     camera,
		config:     config,
		tiles:      NewTileGrid(config.Width, config.Height, config.TileSize),
		workerPool: NewWorkerPool(config.NumWorkers),
		logger:     logger,
	}, nil
}

// Render renders a width x height frame of s and returns row-major pixels in
// the presentation format of core.Color.Pixel. Pixels whose ray misses every
// primitive are zero.
func Render(width, height int, fovDegrees float64, s *scene.Scene) ([]uint32, error) {
	rt, err := NewRaytracer(s, Config{
		Width:  width,
		Height: height,
		FOV:    fovDegrees,
	}, nil)
	if err != nil {
		return nil, err
	}
	pixels, _, err := rt.Render(context.Background())
	return pixels, err
}

// Render renders a frame into a new zeroed buffer
func (rt *Raytracer) Render(ctx context.Context) ([]uint32, RenderStats, error) {
	pixels := make([]uint32, rt.config.Width*rt.config.Height)
	stats, err := rt.RenderInto(ctx, pixels)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return pixels, stats, nil
}

// TileCallback is called from a worker goroutine once a tile's pixels are
// in the buffer. It must be safe for concurrent use; an error aborts the
// render.
type TileCallback func(tile Tile, stats RenderStats) error

// RenderInto renders a frame into pixels, which must hold Width*Height
// entries. Entries for pixels that miss every primitive are left unchanged.
func (rt *Raytracer) RenderInto(ctx context.Context, pixels []uint32) (RenderStats, error) {
	return rt.RenderTiles(ctx, pixels, nil)
}

// RenderTiles is RenderInto with a callback after each finished tile.
// A nil callback is ignored.
func (rt *Raytracer) RenderTiles(ctx context.Context, pixels []uint32, onTile TileCallback) (RenderStats, error) {
	if want := rt.config.Width * rt.config.Height; len(pixels) != want {
		return RenderStats{}, fmt.Errorf("%w: got %d, want %d", ErrBufferSize, len(pixels), want)
	}

	rt.logger.Info("Rendering frame",
		zap.String("scene", rt.scene.Name()),
		zap.Int("width", rt.config.Width),
		zap.Int("height", rt.config.Height),
		zap.Float64("fov", rt.config.FOV),
		zap.Int("primitives", rt.scene.Len()),
		zap.Int("tiles", len(rt.tiles)),
		zap.Int("workers", rt.workerPool.GetNumWorkers()))

	startTime := time.Now()
	tileStats, err := rt.workerPool.Run(ctx, rt.tiles, func(ctx context.Context, tile Tile) (RenderStats, error) {
		stats := rt.RenderBounds(tile.Bounds, pixels)
		rt.logger.Debug("Tile completed",
			zap.Int("tile", tile.ID),
			zap.Stringer("bounds", tile.Bounds),
			zap.Int("hits", stats.Hits))
		if onTile != nil {
			if err := onTile(tile, stats); err != nil {
				return stats, err
			}
		}
		return stats, nil
	})
	if err != nil {
		rt.logger.Warn("Render aborted", zap.Error(err))
		return RenderStats{}, err
	}

	var stats RenderStats
	for _, ts := range tileStats {
		stats.Add(ts)
	}
	stats.Workers = rt.workerPool.GetNumWorkers()
	stats.Duration = time.Since(startTime)

	rt.logger.Info("Render completed",
		zap.Duration("duration", stats.Duration),
		zap.Int("hits", stats.Hits),
		zap.Int("misses", stats.Misses),
		zap.Float64("hitRatio", stats.HitRatio()))

	return stats, nil
}

// RenderBounds renders the pixels within bounds into the row-major buffer.
// Concurrent calls are safe as long as their bounds do not overlap.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixels []uint32) RenderStats {
	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy(), Tiles: 1}
	width := rt.config.Width

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := rt.camera.Ray(x, y)
			hit, isHit := rt.scene.Trace(ray)
			if !isHit {
				stats.Misses++
				continue
			}
			pixels[y*width+x] = Shade(rt.scene, ray, hit).Pixel()
			stats.Hits++
		}
	}

	return stats
}

// RenderImage renders a frame and converts it to an RGBA image
func (rt *Raytracer) RenderImage(ctx context.Context) (*image.RGBA, RenderStats, error) {
	pixels, stats, err := rt.Render(ctx)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return PixelsToImage(pixels, rt.config.Width, rt.config.Height), stats, nil
}

// TileCount returns the number of tiles a frame is split into
func (rt *Raytracer) TileCount() int {
	return len(rt.tiles)
}

// Config returns the raytracer's configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}
