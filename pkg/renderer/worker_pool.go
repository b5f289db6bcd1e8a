package renderer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileFunc renders one tile. Tiles passed to concurrent calls never overlap.
type TileFunc func(ctx context.Context, tile Tile) (RenderStats, error)

// WorkerPool renders tiles on a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool with the specified number of workers.
// Zero or negative uses the CPU count.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run calls render for every tile and returns the per-tile stats indexed by
// tile position. The first error cancels the remaining tiles.
func (wp *WorkerPool) Run(ctx context.Context, tiles []Tile, render TileFunc) ([]RenderStats, error) {
	results := make([]RenderStats, len(tiles))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(wp.numWorkers)

	for i, tile := range tiles {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			stats, err := render(egCtx, tile)
			if err != nil {
				return fmt.Errorf("tile %d: %w", tile.ID, err)
			}
			// Each goroutine owns its own slot
			results[i] = stats
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// No tile reports the error if ctx was cancelled before any started
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
