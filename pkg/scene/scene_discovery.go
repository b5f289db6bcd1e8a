package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a name is neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	Name     string // Scene name, used to select it
	Type     string // "builtin" or "yaml"
	FilePath string // Path to the scene file (yaml type only)
}

var builtinScenes = map[string]func() *Scene{
	"default":    NewDefaultScene,
	"spheregrid": NewSphereGridScene,
}

// Names returns the built-in scene names, sorted
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isSceneFile reports whether path looks like a YAML scene file
func isSceneFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ListSceneFiles returns the YAML scenes in dir sorted by name. A missing
// directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []SceneInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !isSceneFile(entry.Name()) {
			continue
		}
		scenes = append(scenes, SceneInfo{
			Name:     strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Type:     "yaml",
			FilePath: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ListScenes returns built-in scenes followed by the YAML scenes in dir
func ListScenes(dir string) ([]SceneInfo, error) {
	var scenes []SceneInfo
	for _, name := range Names() {
		scenes = append(scenes, SceneInfo{Name: name, Type: "builtin"})
	}

	files, err := ListSceneFiles(dir)
	if err != nil {
		return nil, err
	}
	return append(scenes, files...), nil
}

// Load resolves a scene by built-in name, by YAML file path, or by the name
// of a YAML file in dir
func Load(nameOrPath, dir string) (*Scene, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownScene)
	}

	if create, ok := builtinScenes[nameOrPath]; ok {
		return create(), nil
	}

	if isSceneFile(nameOrPath) {
		return loadFile(nameOrPath)
	}

	if dir != "" {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, nameOrPath+ext)
			if _, err := os.Stat(path); err == nil {
				return loadFile(path)
			}
		}
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownScene, nameOrPath)
}

// LoadNamed resolves a scene by built-in name or by the name of a scene
// file listed in dir. Paths are never opened, so it is safe for names
// supplied by remote clients.
func LoadNamed(name, dir string) (*Scene, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w %q", ErrUnknownScene, name)
	}

	if create, ok := builtinScenes[name]; ok {
		return create(), nil
	}

	if dir != "" {
		files, err := ListSceneFiles(dir)
		if err != nil {
			return nil, err
		}
		for _, info := range files {
			if info.Name == name {
				return loadFile(info.FilePath)
			}
		}
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownScene, name)
}

func loadFile(path string) (*Scene, error) {
	desc, err := LoadDescription(path)
	if err != nil {
		return nil, err
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return desc.Build()
}
