package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/df07/go-blastracer/internal/config"
	"github.com/df07/go-blastracer/internal/logger"
	"github.com/df07/go-blastracer/pkg/renderer"
	"github.com/df07/go-blastracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("blastracer", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	list := fs.Bool("list", false, "List available scenes and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Blastracer")
		fmt.Fprintln(fs.Output(), "Usage: blastracer [options]")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Output will be saved to <output>/<scene>/render_<timestamp>.<format>")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags.Config, flags)
	if err != nil {
		return err
	}

	if *list {
		return listScenes(stdout, cfg.Scene.Dir)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	selectedScene, err := createScene(cfg.Scene.Name, cfg.Scene.Dir)
	if err != nil {
		return err
	}

	filename, stats, err := renderScene(ctx, cfg, selectedScene, logger.Named("renderer"))
	if err != nil {
		return err
	}
	printSummary(stdout, filename, stats)
	return nil
}

// printSummary reports the render in human-readable units
func printSummary(w io.Writer, filename string, stats renderer.RenderStats) {
	fmt.Fprintf(w, "Rendered %s pixels (%.1f%% hit) on %d workers in %v\n",
		humanize.Comma(int64(stats.TotalPixels)), stats.HitRatio()*100, stats.Workers, stats.Duration.Round(time.Millisecond))
	if info, err := os.Stat(filename); err == nil {
		fmt.Fprintf(w, "Render saved as %s (%s)\n", filename, humanize.Bytes(uint64(info.Size())))
	} else {
		fmt.Fprintf(w, "Render saved as %s\n", filename)
	}
}

// createScene resolves a scene by built-in name or scene file
func createScene(name, dir string) (*scene.Scene, error) {
	s, err := scene.Load(name, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %q: %w", name, err)
	}
	return s, nil
}

// renderConfig applies the run configuration over the scene's own settings
func renderConfig(cfg *config.Config, s *scene.Scene) renderer.Config {
	rc := renderer.DefaultConfig(s)
	if cfg.Render.Width > 0 {
		rc.Width = cfg.Render.Width
	}
	if cfg.Render.Height > 0 {
		rc.Height = cfg.Render.Height
	}
	if cfg.Render.FOV > 0 {
		rc.FOV = cfg.Render.FOV
	}
	rc.NumWorkers = cfg.Render.Workers
	rc.TileSize = cfg.Render.TileSize
	return rc
}

// renderScene renders one frame and writes it to a timestamped file under the
// scene's output directory. With SaveScene the scene description and a config
// that reproduces the render are written next to it.
func renderScene(ctx context.Context, cfg *config.Config, s *scene.Scene, log *zap.Logger) (string, renderer.RenderStats, error) {
	rt, err := renderer.NewRaytracer(s, renderConfig(cfg, s), log)
	if err != nil {
		return "", renderer.RenderStats{}, err
	}

	pixels, stats, err := rt.Render(ctx)
	if err != nil {
		return "", renderer.RenderStats{}, err
	}
	log.Info("Frame statistics",
		zap.Int("pixels", stats.TotalPixels),
		zap.Int("tiles", stats.Tiles),
		zap.Int("workers", stats.Workers),
		zap.Float64("averageLuminance", renderer.CalculateAverageLuminance(pixels)))

	rc := rt.Config()
	img := renderer.PixelsToImage(pixels, rc.Width, rc.Height)

	sceneName := s.Name()
	if sceneName == "" {
		sceneName = "unnamed"
	}
	outputDir := filepath.Join(cfg.Output.Dir, sceneName)
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, cfg.Output.Format))

	if err := renderer.WriteImage(filename, img); err != nil {
		return "", renderer.RenderStats{}, err
	}

	if cfg.Output.SaveScene {
		desc, err := scene.Describe(s)
		if err != nil {
			return "", renderer.RenderStats{}, err
		}
		scenePath := filepath.Join(outputDir, fmt.Sprintf("scene_%s.yaml", timestamp))
		if err := desc.SaveTo(scenePath); err != nil {
			return "", renderer.RenderStats{}, fmt.Errorf("failed to save scene: %w", err)
		}
		log.Info("Scene saved", zap.String("path", scenePath))

		configPath := filepath.Join(outputDir, fmt.Sprintf("config_%s.yaml", timestamp))
		snapshot, err := runSnapshot(cfg, rc, scenePath)
		if err != nil {
			return "", renderer.RenderStats{}, err
		}
		if err := snapshot.SaveTo(configPath); err != nil {
			return "", renderer.RenderStats{}, fmt.Errorf("failed to save config: %w", err)
		}
		log.Info("Config saved", zap.String("path", configPath))
	}

	return filename, stats, nil
}

// runSnapshot returns a config that reproduces this render: the saved scene
// file and the resolved image settings replace whatever was selected
func runSnapshot(cfg *config.Config, rc renderer.Config, scenePath string) (*config.Config, error) {
	absPath, err := filepath.Abs(scenePath)
	if err != nil {
		return nil, err
	}
	snapshot := *cfg
	snapshot.Scene.Name = absPath
	snapshot.Render.Width = rc.Width
	snapshot.Render.Height = rc.Height
	snapshot.Render.FOV = rc.FOV
	return &snapshot, nil
}

func listScenes(w io.Writer, dir string) error {
	scenes, err := scene.ListScenes(dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scenes {
		if info.FilePath != "" {
			fmt.Fprintf(w, "  %-16s %s (%s)\n", info.Name, info.Type, info.FilePath)
		} else {
			fmt.Fprintf(w, "  %-16s %s\n", info.Name, info.Type)
		}
	}
	return nil
}
