// Package watch rebakes a project whenever its descriptors or scenes change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches a directory tree and calls a rebuild function once the
// tree has been quiet for the debounce interval.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	rebuild  func() error
	log      *zap.Logger
}

// New watches root and everything below it.
func New(root string, debounce time.Duration, rebuild func() error, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		debounce: debounce,
		rebuild:  rebuild,
		log:      log,
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run handles events until ctx is done. Rebuild failures are logged and
// do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.handle(e) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			start := time.Now()
			if err := w.rebuild(); err != nil {
				w.log.Error("Rebake failed", zap.Error(err))
				continue
			}
			w.log.Info("Rebaked", zap.Duration("took", time.Since(start)))

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handle updates the watch list and reports whether e should trigger a
// rebuild.
func (w *Watcher) handle(e fsnotify.Event) bool {
	if e.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
			if err := w.addRecursive(e.Name); err != nil {
				w.log.Warn("Cannot watch directory", zap.String("path", e.Name), zap.Error(err))
			}
			return true
		}
	}
	// A removed path cannot be stat'ed, so try to unwatch it either way.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		_ = w.fs.Remove(e.Name)
	}

	if !Relevant(e.Name) {
		return false
	}
	w.log.Debug("Source changed", zap.String("path", e.Name), zap.String("op", e.Op.String()))
	return e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Relevant reports whether path is a descriptor or scene file.
func Relevant(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".gltf", ".glb", ".bin":
		return true
	}
	return false
}
