package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/df07/go-blastracer/pkg/core"
	"github.com/df07/go-blastracer/pkg/renderer"
	"github.com/df07/go-blastracer/pkg/scene"
)

// TileUpdate is one finished tile sent via SSE
type TileUpdate struct {
	TileID     int    `json:"tileId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG of just this tile
	TileNumber int    `json:"tileNumber"` // Tiles finished so far, including this one
	TotalTiles int    `json:"totalTiles"`
}

// CompleteUpdate summarizes a finished render
type CompleteUpdate struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalPixels int     `json:"totalPixels"`
	Hits        int     `json:"hits"`
	HitRatio    float64 `json:"hitRatio"`
	Workers     int     `json:"workers"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// SSEEvent is a single event written by the SSE writer goroutine
type SSEEvent struct {
	Type string // "console", "tile", "complete", "error"
	Data string // JSON-encoded data
}

// handleRender renders a frame and streams each tile as it finishes via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if !s.limiter.Allow() {
		writeJSONError(w, http.StatusTooManyRequests, "Too many renders, try again shortly")
		return
	}

	ctx := r.Context()
	setSSEHeaders(w)

	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, w, events)
	}()

	consoleChan := make(chan ConsoleMessage, 50)
	renderLogger := NewConsoleLogger(s.logger, zapcore.InfoLevel, consoleChan)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		for msg := range consoleChan {
			sendEvent(ctx, events, "console", msg)
		}
	}()

	err = s.streamRender(ctx, req, sceneObj, renderLogger, events)

	close(consoleChan)
	<-consoleDone
	if err != nil {
		sendEvent(ctx, events, "error", map[string]string{"error": err.Error()})
	}
	close(events)
	<-writerDone
}

// streamRender renders all tiles, sending a tile event as each one finishes,
// followed by a complete event
func (s *Server) streamRender(ctx context.Context, req *RenderRequest, sceneObj *scene.Scene, logger *zap.Logger, events chan<- SSEEvent) error {
	rt, err := s.newRaytracer(sceneObj, req, logger)
	if err != nil {
		return err
	}

	pixels := make([]uint32, req.Width*req.Height)
	totalTiles := rt.TileCount()
	var finished atomic.Int64

	stats, err := rt.RenderTiles(ctx, pixels, func(tile renderer.Tile, _ renderer.RenderStats) error {
		data, err := encodeTile(pixels, req.Width, tile.Bounds)
		if err != nil {
			return fmt.Errorf("failed to encode tile: %w", err)
		}

		sendEvent(ctx, events, "tile", TileUpdate{
			TileID:     tile.ID,
			X:          tile.Bounds.Min.X,
			Y:          tile.Bounds.Min.Y,
			Width:      tile.Bounds.Dx(),
			Height:     tile.Bounds.Dy(),
			ImageData:  data,
			TileNumber: int(finished.Add(1)),
			TotalTiles: totalTiles,
		})
		return nil
	})
	if err != nil {
		return err
	}

	sendEvent(ctx, events, "complete", CompleteUpdate{
		Width:       req.Width,
		Height:      req.Height,
		TotalPixels: stats.TotalPixels,
		Hits:        stats.Hits,
		HitRatio:    stats.HitRatio(),
		Workers:     stats.Workers,
		ElapsedMs:   stats.Duration.Milliseconds(),
	})
	return nil
}

// encodeTile encodes the pixels within bounds as a base64 PNG
func encodeTile(pixels []uint32, width int, bounds image.Rectangle) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := core.ColorFromPixel(pixels[y*width+x])
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, c.ToRGBA())
		}
	}

	var buf bytes.Buffer
	if err := renderer.EncodeImage(&buf, img, "png"); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// sendEvent queues an event unless the client has gone away
func sendEvent(ctx context.Context, events chan<- SSEEvent, eventType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(map[string]string{"error": err.Error()})
		eventType = "error"
	}
	select {
	case events <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// writeSSEEvents is the only writer of w. It drains events until the
// channel is closed, discarding them once the client disconnects.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for event := range events {
		if ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
