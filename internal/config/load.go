package config

import (
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file name.
const FileName = "meshbake.yaml"

// Load loads configuration with priority: defaults < file < flags.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	configPath, projectDir := "", ""
	if f != nil {
		configPath, projectDir = f.Config, f.Project
	}
	if configPath == "" {
		configPath = findConfigFile(projectDir)
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config next to the project first, then in the
// working directory, then in the user config directory.
func findConfigFile(projectDir string) string {
	var candidates []string
	if projectDir != "" {
		candidates = append(candidates, filepath.Join(projectDir, FileName))
	}
	candidates = append(candidates,
		"./"+FileName,
		filepath.Join(ConfigDir(), "config.yaml"),
	)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "MeshBake")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "MeshBake")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "meshbake")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "meshbake")
	}
}

// loadFromFile merges a YAML file into cfg. Relative project paths set by
// the file are taken relative to the file's directory, so a project
// config works from any working directory.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	before := *cfg
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	base := filepath.Dir(path)
	if cfg.Project.Dir != before.Project.Dir {
		cfg.Project.Dir = resolve(base, cfg.Project.Dir)
	}
	if cfg.Project.Output != before.Project.Output {
		cfg.Project.Output = resolve(base, cfg.Project.Output)
	}
	if cfg.Logging.LogFile != before.Logging.LogFile {
		cfg.Logging.LogFile = resolve(base, cfg.Logging.LogFile)
	}
	return nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Validate reports every setting that cannot be used for a bake.
func (c *Config) Validate() error {
	var err error
	if c.Project.Dir == "" {
		err = multierr.Append(err, fmt.Errorf("project.dir is empty"))
	}
	if c.Project.Output == "" {
		err = multierr.Append(err, fmt.Errorf("project.output is empty"))
	}
	if l := c.Bake.CompressionLevel; l < zlib.HuffmanOnly || l > zlib.BestCompression {
		err = multierr.Append(err, fmt.Errorf("bake.compression_level %d out of range", l))
	}
	if c.Watch.Debounce <= 0 {
		err = multierr.Append(err, fmt.Errorf("watch.debounce must be positive, got %v", c.Watch.Debounce))
	}
	if _, perr := zapcore.ParseLevel(c.Logging.Level); perr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", perr))
	}
	return err
}
