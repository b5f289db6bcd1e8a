// Package config handles render configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/df07/go-blastracer/internal/logger"
	"github.com/df07/go-blastracer/pkg/renderer"
)

// Config holds all settings of a render run.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds image and parallelism settings. Zero image settings
// defer to the scene's own settings.
type RenderConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FOV      float64 `yaml:"fov"`
	Workers  int     `yaml:"workers"`   // 0 = CPU count
	TileSize int     `yaml:"tile_size"` // 0 = one tile
}

// SceneConfig selects the scene to render.
type SceneConfig struct {
	Name string `yaml:"name"` // Built-in name, scene file path, or file name in Dir
	Dir  string `yaml:"dir"`  // Directory searched for scene files
}

// OutputConfig holds where results are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Format    string `yaml:"format"`     // png, bmp or tiff
	SaveScene bool   `yaml:"save_scene"` // Also write the rendered scene as YAML
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Default returns a Config that renders the default scene at its own size.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			TileSize: 64,
		},
		Scene: SceneConfig{
			Name: "default",
			Dir:  "scenes",
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges and reports every problem found. Zero width,
// height and fov are allowed and mean "use the scene's settings".
func (c *Config) Validate() error {
	var err error
	invalid := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	r := c.Render
	if r.Width < 0 || r.Height < 0 {
		invalid("negative image size %dx%d", r.Width, r.Height)
	}
	if !(r.FOV >= 0 && r.FOV < 180) {
		invalid("fov %g outside [0,180)", r.FOV)
	}
	if r.Workers < 0 {
		invalid("negative worker count %d", r.Workers)
	}
	if r.TileSize < 0 {
		invalid("negative tile size %d", r.TileSize)
	}
	if c.Scene.Name == "" {
		invalid("no scene selected")
	}
	if c.Output.Dir == "" {
		invalid("empty output directory")
	}
	if formatErr := renderer.ValidateFormat(c.Output.Format); formatErr != nil {
		invalid("%v", formatErr)
	}
	if _, levelErr := logger.ParseLevel(c.Logging.Level); levelErr != nil {
		invalid("%v", levelErr)
	}
	return err
}
