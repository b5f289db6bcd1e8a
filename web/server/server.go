package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/df07/go-blastracer/pkg/renderer"
	"github.com/df07/go-blastracer/pkg/scene"
)

// Image size limits accepted from clients
const (
	minImageSize = 1
	maxImageSize = 4096
)

// Options configures the preview server
type Options struct {
	Port       int     // Port to listen on
	SceneDir   string  // Directory searched for scene files
	TileSize   int     // Tile size for streamed renders
	Workers    int     // Render workers per request (0 = CPU count)
	RenderRate float64 // Renders started per second across all clients (0 = unlimited)
	CacheSize  int     // Number of encoded images kept in memory
}

// DefaultOptions returns options suitable for local previewing
func DefaultOptions() Options {
	return Options{
		Port:       8080,
		SceneDir:   "scenes",
		TileSize:   32,
		RenderRate: 4,
		CacheSize:  32,
	}
}

// Server serves rendered previews of scenes over HTTP
type Server struct {
	opts    Options
	logger  *zap.Logger
	limiter *rate.Limiter
	images  *lru.Cache // cache key -> encoded PNG bytes
	mux     *http.ServeMux
}

// NewServer creates a preview server. A nil logger disables logging.
func NewServer(opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	images, err := lru.New(max(1, opts.CacheSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	// Zero or negative rate disables limiting
	limit := rate.Limit(opts.RenderRate)
	if opts.RenderRate <= 0 {
		limit = rate.Inf
	}

	s := &Server{
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(limit, max(1, int(opts.RenderRate))),
		images:  images,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/image", s.handleImage)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s, nil
}

// Handler returns the HTTP handler with all endpoints registered
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting web server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RenderRequest is a parsed render, image or inspect request
type RenderRequest struct {
	Scene  string  `json:"scene"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FOV    float64 `json:"fov"`
}

// parseRenderRequest resolves the scene and reads the image parameters,
// which default to the scene's own settings
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, *scene.Scene, error) {
	values := r.URL.Query()

	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	// Clients may only name scenes, never paths
	sceneObj, err := scene.LoadNamed(req.Scene, s.opts.SceneDir)
	if err != nil {
		return nil, nil, err
	}
	settings := sceneObj.Settings()

	if req.Width, err = parseIntParam(values, "width", settings.Width, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.Height, err = parseIntParam(values, "height", settings.Height, minImageSize, maxImageSize); err != nil {
		return nil, nil, err
	}
	if req.FOV, err = parseFloatParam(values, "fov", settings.FOV, 1, 179); err != nil {
		return nil, nil, err
	}

	return req, sceneObj, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
	}
	return parsed, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
	}
	return parsed, nil
}

// cacheKey identifies a render by scene content, so edits to a scene file
// are not served from the cache
func cacheKey(sceneObj *scene.Scene, req *RenderRequest) (string, error) {
	desc, err := scene.Describe(sceneObj)
	if err != nil {
		return "", err
	}
	data, err := desc.Marshal()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x/%dx%d/%g", xxhash.Sum64(data), req.Width, req.Height, req.FOV), nil
}

// newRaytracer creates a raytracer for a request
func (s *Server) newRaytracer(sceneObj *scene.Scene, req *RenderRequest, logger *zap.Logger) (*renderer.Raytracer, error) {
	return renderer.NewRaytracer(sceneObj, renderer.Config{
		Width:      req.Width,
		Height:     req.Height,
		FOV:        req.FOV,
		TileSize:   s.opts.TileSize,
		NumWorkers: s.opts.Workers,
	}, logger)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListScenes(s.opts.SceneDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleImage renders a whole frame and returns it as a PNG
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, sceneObj, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	key, err := cacheKey(sceneObj, req)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cached, ok := s.images.Get(key); ok {
		w.Header().Set("X-Cache", "hit")
		writePNG(w, cached.([]byte))
		return
	}

	if !s.limiter.Allow() {
		writeJSONError(w, http.StatusTooManyRequests, "Too many renders, try again shortly")
		return
	}

	rt, err := s.newRaytracer(sceneObj, req, s.logger)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	img, _, err := rt.RenderImage(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Render error: "+err.Error())
		return
	}

	var buf bytes.Buffer
	if err := renderer.EncodeImage(&buf, img, "png"); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to encode image: "+err.Error())
		return
	}
	s.images.Add(key, buf.Bytes())

	w.Header().Set("X-Cache", "miss")
	writePNG(w, buf.Bytes())
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
