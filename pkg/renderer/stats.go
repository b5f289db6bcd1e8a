package renderer

import (
	"time"

	"github.com/df07/go-blastracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels int           // Total number of pixels rendered
	Hits        int           // Pixels whose primary ray hit a primitive
	Misses      int           // Pixels left at the background value
	Tiles       int           // Number of tiles rendered
	Workers     int           // Number of parallel workers
	Duration    time.Duration // Wall time of the whole frame
}

// Add accumulates pixel counts from a tile
func (s *RenderStats) Add(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.Tiles += other.Tiles
}

// HitRatio returns the fraction of pixels that hit a primitive
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalPixels)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of a buffer
// of presentation words, in [0,1]
func CalculateAverageLuminance(pixels []uint32) float64 {
	if len(pixels) == 0 {
		return 0
	}

	var total float64
	for _, p := range pixels {
		r, g, b := core.ColorFromPixel(p).Normalized()
		total += 0.2126*r + 0.7152*g + 0.0722*b
	}
	return total / float64(len(pixels))
}
