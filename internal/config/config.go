// Package config handles bake configuration loading and management.
package config

import (
	"compress/zlib"
	"time"
)

// Config holds all bake settings.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Bake    BakeConfig    `yaml:"bake"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ProjectConfig holds asset project paths.
type ProjectConfig struct {
	Dir    string `yaml:"dir"`    // Project root; content keys are relative to it
	Output string `yaml:"output"` // Pak file to write
}

// BakeConfig holds model compiler settings.
type BakeConfig struct {
	CompressionLevel int  `yaml:"compression_level"` // zlib level for pak entries
	Validate         bool `yaml:"validate"`          // Re-check model invariants before packing
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Dir:    ".",
			Output: "build/assets.pak",
		},
		Bake: BakeConfig{
			CompressionLevel: zlib.BestCompression,
			Validate:         true,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
