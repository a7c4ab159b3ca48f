// meshbake compiles glTF scenes into GPU-ready model paks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbake/internal/asset"
	"github.com/Faultbox/meshbake/internal/bake"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/watch"
	"github.com/Faultbox/meshbake/pkg/pak"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bake", "b":
		cmdBake(args)
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "verify":
		cmdVerify(args)
	case "watch", "w":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshbake - glTF model compiler

Usage:
  meshbake <command> [options]

Commands:
  bake [flags] [asset.toml...]   Bake descriptors (all under -project if none given)
  info <file.pak>                Show archive information
  list <file.pak> [pattern]      List model keys (optional glob pattern)
  verify <file.pak>              Re-validate every model in an archive
  watch [flags]                  Rebake the project whenever a source changes
  config [flags] [-save]         Print the effective configuration

Flags shared by bake, watch and config:
  -config <file>   Config file (default ./meshbake.yaml)
  -project <dir>   Project root; content keys are relative to it
  -o <file.pak>    Output pak
  -z <level>       zlib level, -2..9
  -debug           Debug logging

Examples:
  meshbake bake -project assets -o build/assets.pak
  meshbake bake assets/characters/hero.toml
  meshbake list build/assets.pak "characters/*"
  meshbake watch -project assets`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

// setup parses the shared flags and initializes logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatalf("Error: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatalf("Error initializing logger: %v", err)
	}
	return cfg, fs
}

func cmdBake(args []string) {
	cfg, fs := setup("bake", args)
	defer logger.Sync()

	files := fs.Args()
	if len(files) == 0 {
		var err error
		if files, err = asset.Find(cfg.Project.Dir); err != nil {
			fatalf("Error scanning %s: %v", cfg.Project.Dir, err)
		}
	}
	if len(files) == 0 {
		fatalf("No %s descriptors found under %s", asset.Ext, cfg.Project.Dir)
	}

	store, err := bakeProject(cfg, files)
	if err != nil {
		fatalf("Error: %v", err)
	}
	fmt.Printf("Baked %d models into %s\n", store.Len(), cfg.Project.Output)
}

// bakeProject bakes files into a fresh store and writes the output pak.
func bakeProject(cfg *config.Config, files []string) (*pak.Store, error) {
	store := pak.NewStore()
	baker := bake.NewBaker(store,
		bake.WithLogger(logger.Named("bake")),
		bake.WithValidation(cfg.Bake.Validate),
	)

	for _, file := range files {
		if _, err := baker.BakeFile(cfg.Project.Dir, file); err != nil {
			return nil, err
		}
	}

	if err := store.WriteFile(cfg.Project.Output, cfg.Bake.CompressionLevel); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cfg.Project.Output, err)
	}
	logger.Info("Wrote pak",
		zap.String("path", cfg.Project.Output),
		zap.Int("models", store.Len()))
	return store, nil
}

func openArchive(usage string, args []string) *pak.Archive {
	if len(args) < 1 {
		fatalf("Usage: meshbake %s", usage)
	}
	archive, err := pak.Open(args[0])
	if err != nil {
		fatalf("Error: %v", err)
	}
	return archive
}

func cmdInfo(args []string) {
	archive := openArchive("info <file.pak>", args)
	defer archive.Close()

	entries := archive.Entries()
	var packed, raw uint64
	for _, e := range entries {
		packed += uint64(e.CompressedSize)
		raw += uint64(e.UncompressedSize)
	}

	h := archive.Header()
	fmt.Printf("Archive: %s\n", args[0])
	fmt.Printf("Version: %d\n", h.Version)
	fmt.Printf("Models:  %d\n", len(entries))
	fmt.Printf("Size:    %.2f MB (%.2f MB unpacked)\n",
		float64(packed)/(1024*1024), float64(raw)/(1024*1024))
	if raw > 0 {
		fmt.Printf("Ratio:   %.1f%%\n", float64(packed)*100/float64(raw))
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	long := fs.Bool("l", false, "Show mesh and buffer details")
	fs.Parse(args)

	archive := openArchive("list [-l] <file.pak> [pattern]", fs.Args())
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, key := range archive.List() {
		if !matchKey(pattern, key) {
			continue
		}
		count++
		if !*long {
			fmt.Println(key)
			continue
		}

		id, _ := archive.ID(key)
		model, err := archive.Model(id)
		if err != nil {
			fmt.Printf("%-5d %s  (error: %v)\n", id, key, err)
			continue
		}
		fmt.Printf("%-5d %s  meshes=%d %s indices=%d vertices=%d\n",
			id, key, len(model.Meshes), model.IndexType, model.IndexCount(), model.VertexCount())
		for i := range model.Meshes {
			mesh := &model.Meshes[i]
			name := mesh.DisplayName()
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("      %-20s indices=[%d,%d) vertices=%d stride=%d joints=%d\n",
				name, mesh.Indices.Start, mesh.Indices.End, mesh.VertexCount, mesh.Stride(), mesh.Skin.Len())
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d models matched)\n", count)
	}
}

// matchKey matches pattern against the key's base name as a glob, or
// against the whole key as a substring.
func matchKey(pattern, key string) bool {
	if pattern == "" {
		return true
	}
	if matched, _ := filepath.Match(pattern, key); matched {
		return true
	}
	if matched, _ := filepath.Match(pattern, filepath.Base(key)); matched {
		return true
	}
	return strings.Contains(key, pattern)
}

func cmdVerify(args []string) {
	archive := openArchive("verify <file.pak>", args)
	defer archive.Close()

	failed := 0
	for _, e := range archive.Entries() {
		if err := verifyModel(archive, e.ID); err != nil {
			fmt.Printf("FAIL %s: %v\n", e.Key, err)
			failed++
			continue
		}
		fmt.Printf("ok   %s\n", e.Key)
	}

	if failed > 0 {
		fatalf("%d of %d models failed verification", failed, len(archive.Entries()))
	}
}

// verifyModel decodes a model, checks its invariants and runs the vertex
// attribute pass over every mesh.
func verifyModel(archive *pak.Archive, id pak.ModelID) error {
	model, err := archive.Model(id)
	if err != nil {
		return err
	}
	if err := model.Validate(); err != nil {
		return err
	}
	for i := range model.Meshes {
		if _, err := pak.CalcVertexAttrs(model, i, 0); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
	}
	return nil
}

func cmdWatch(args []string) {
	cfg, _ := setup("watch", args)
	defer logger.Sync()

	rebuild := func() error {
		files, err := asset.Find(cfg.Project.Dir)
		if err != nil {
			return err
		}
		_, err = bakeProject(cfg, files)
		return err
	}
	if err := rebuild(); err != nil {
		logger.Error("Initial bake failed", zap.Error(err))
	}

	w, err := watch.New(cfg.Project.Dir, cfg.Watch.Debounce, rebuild, logger.Named("watch"))
	if err != nil {
		fatalf("Error: %v", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Watching", zap.String("dir", cfg.Project.Dir))
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		fatalf("Error: %v", err)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	save := fs.Bool("save", false, "Write the effective config to the user config directory")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatalf("Error: %v", err)
	}

	if *save {
		if err := cfg.Save(); err != nil {
			fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Saved %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fatalf("Error: %v", err)
	}
	os.Stdout.Write(data)
}
