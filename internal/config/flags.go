package config

import (
	"compress/zlib"
	"flag"
	"fmt"
	"strconv"
)

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config  string
	Debug   bool
	Project string
	Output  string
	Level   *int
}

// RegisterFlags binds the shared bake flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Project, "project", "", "Project root directory")
	fs.StringVar(&f.Output, "o", "", "Output pak file")
	fs.Func("z", "zlib compression level (-2..9)", func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		if v < zlib.HuffmanOnly || v > zlib.BestCompression {
			return fmt.Errorf("compression level %d out of range", v)
		}
		f.Level = &v
		return nil
	})
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Project != "" {
		cfg.Project.Dir = f.Project
	}
	if f.Output != "" {
		cfg.Project.Output = f.Output
	}
	if f.Level != nil {
		cfg.Bake.CompressionLevel = *f.Level
	}
}
