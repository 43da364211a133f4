package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is looked up in the working directory and its parents.
	ProjectConfigFile = "viddefe.yaml"
	// UserConfigDir is relative to the user's home directory.
	UserConfigDir  = ".config/viddefe"
	UserConfigFile = "config.yaml"
)

// Loader resolves configuration with layered precedence:
// defaults, then the user file, then the project file, then an explicit path.
type Loader struct {
	HomeDir string
	WorkDir string
}

// NewLoader returns a loader rooted at the process home and working directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return &Loader{HomeDir: home, WorkDir: wd}
}

// Load applies every layer found and validates the result. A missing explicit
// path is an error; missing user or project files are skipped.
func (l *Loader) Load(explicit string) (Config, []string, error) {
	cfg := DefaultConfig()
	var applied []string

	for _, path := range []string{l.userConfigPath(), l.findProjectConfig()} {
		if path == "" {
			continue
		}
		err := mergeFile(&cfg, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, applied, err
		}
		applied = append(applied, path)
	}

	if explicit != "" {
		if err := mergeFile(&cfg, explicit); err != nil {
			return Config{}, applied, err
		}
		applied = append(applied, explicit)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, applied, err
	}
	return cfg, applied, nil
}

// Parse overlays a YAML document on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("runtimeconfig: decode yaml: %w", err)
	}
	return cfg, nil
}

// mergeFile decodes path over cfg. Keys absent from the file keep their value.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("runtimeconfig: decode %s: %w", path, err)
	}
	return nil
}

func (l *Loader) userConfigPath() string {
	if l.HomeDir == "" {
		return ""
	}
	return filepath.Join(l.HomeDir, UserConfigDir, UserConfigFile)
}

func (l *Loader) findProjectConfig() string {
	if l.WorkDir == "" {
		return ""
	}
	dir := l.WorkDir
	for {
		candidate := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
