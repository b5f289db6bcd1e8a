package config

import "flag"

// Flags holds command-line overrides. Unset flags keep their zero value and
// leave the configuration untouched.
type Flags struct {
	Config    string
	Scene     string
	SceneDir  string
	OutputDir string
	Format    string
	Width     int
	Height    int
	FOV       float64
	Workers   int
	TileSize  int
	SaveScene bool
	Debug     bool
	LogLevel  string
	LogFile   string
}

// RegisterFlags defines the render flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Scene, "scene", "", "Scene to render: built-in name, YAML path, or file name in the scene directory")
	fs.StringVar(&f.SceneDir, "scene-dir", "", "Directory searched for scene files")
	fs.StringVar(&f.OutputDir, "output", "", "Output directory")
	fs.StringVar(&f.Format, "format", "", "Image format: png, bmp or tiff")
	fs.IntVar(&f.Width, "width", 0, "Image width (default: scene setting)")
	fs.IntVar(&f.Height, "height", 0, "Image height (default: scene setting)")
	fs.Float64Var(&f.FOV, "fov", 0, "Vertical field of view in degrees (default: scene setting)")
	fs.IntVar(&f.Workers, "workers", 0, "Number of parallel workers (default: CPU count)")
	fs.IntVar(&f.TileSize, "tile-size", 0, "Tile size in pixels")
	fs.BoolVar(&f.SaveScene, "save-scene", false, "Write the rendered scene as YAML next to the image")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this file, with rotation")
	return f
}

// apply copies the set overrides into cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Scene != "" {
		cfg.Scene.Name = f.Scene
	}
	if f.SceneDir != "" {
		cfg.Scene.Dir = f.SceneDir
	}
	if f.OutputDir != "" {
		cfg.Output.Dir = f.OutputDir
	}
	if f.Format != "" {
		cfg.Output.Format = f.Format
	}
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.FOV > 0 {
		cfg.Render.FOV = f.FOV
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.TileSize > 0 {
		cfg.Render.TileSize = f.TileSize
	}
	if f.SaveScene {
		cfg.Output.SaveScene = true
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
