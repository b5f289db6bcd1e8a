package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// snapshotHeader opens every saved config so it can be told apart from a
// hand-written one
const snapshotHeader = "# blastracer run config, load with -config\n"

// SaveTo writes the config as YAML to path, creating parent directories.
// The result loads back through Load unchanged.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	buf.WriteString(snapshotHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
