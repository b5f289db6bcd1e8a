package renderer

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	if got := NewWorkerPool(3).GetNumWorkers(); got != 3 {
		t.Errorf("Expected 3 workers, got %d", got)
	}
	if got := NewWorkerPool(0).GetNumWorkers(); got != runtime.NumCPU() {
		t.Errorf("Expected %d workers for zero, got %d", runtime.NumCPU(), got)
	}
}

func TestWorkerPool_RunCollectsStatsInTileOrder(t *testing.T) {
	tiles := NewTileGrid(40, 30, 10)
	pool := NewWorkerPool(4)

	results, err := pool.Run(context.Background(), tiles, func(_ context.Context, tile Tile) (RenderStats, error) {
		return RenderStats{TotalPixels: tile.ID, Tiles: 1}, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(results) != len(tiles) {
		t.Fatalf("Expected %d results, got %d", len(tiles), len(results))
	}
	for i, r := range results {
		if r.TotalPixels != i {
			t.Errorf("Result %d belongs to tile %d", i, r.TotalPixels)
		}
	}
}

func TestWorkerPool_LimitsConcurrency(t *testing.T) {
	const workers = 2
	var active, peak atomic.Int32

	tiles := NewTileGrid(64, 64, 4)
	_, err := NewWorkerPool(workers).Run(context.Background(), tiles, func(_ context.Context, _ Tile) (RenderStats, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		runtime.Gosched()
		active.Add(-1)
		return RenderStats{}, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if peak.Load() > workers {
		t.Errorf("Expected at most %d concurrent tiles, saw %d", workers, peak.Load())
	}
}

func TestWorkerPool_FirstErrorStopsRun(t *testing.T) {
	errBoom := errors.New("boom")
	var calls atomic.Int32

	tiles := NewTileGrid(100, 100, 1)
	_, err := NewWorkerPool(1).Run(context.Background(), tiles, func(_ context.Context, tile Tile) (RenderStats, error) {
		calls.Add(1)
		if tile.ID == 0 {
			return RenderStats{}, errBoom
		}
		return RenderStats{}, nil
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("Expected wrapped tile error, got %v", err)
	}
	if int(calls.Load()) == len(tiles) {
		t.Errorf("Expected remaining tiles to be skipped after the error")
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkerPool(2).Run(ctx, NewTileGrid(10, 10, 5), func(_ context.Context, _ Tile) (RenderStats, error) {
		return RenderStats{}, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
