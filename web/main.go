package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/df07/go-blastracer/internal/logger"
	"github.com/df07/go-blastracer/web/server"
)

func main() {
	opts := server.DefaultOptions()
	flag.IntVar(&opts.Port, "port", opts.Port, "Port to serve on")
	flag.StringVar(&opts.SceneDir, "scene-dir", opts.SceneDir, "Directory searched for scene files")
	flag.IntVar(&opts.TileSize, "tile-size", opts.TileSize, "Tile size for streamed renders")
	flag.IntVar(&opts.Workers, "workers", opts.Workers, "Render workers per request (0 = CPU count)")
	flag.Float64Var(&opts.RenderRate, "render-rate", opts.RenderRate, "Renders started per second (0 = unlimited)")
	flag.IntVar(&opts.CacheSize, "cache-size", opts.CacheSize, "Number of rendered images kept in memory")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "Also log to this file, with rotation")
	flag.Parse()

	if err := logger.Init(*logLevel, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	webServer, err := server.NewServer(opts, logger.Named("web"))
	if err != nil {
		logger.Log.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Sugar.Infof("Blastracer preview server, visit http://localhost:%d/api/image?scene=default", opts.Port)
	if err := webServer.Start(ctx); err != nil {
		logger.Log.Error("Server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
