package asset

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension of model descriptors.
const Ext = ".toml"

// Find returns every descriptor below dir, sorted by path. Hidden
// directories are skipped.
func Find(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), Ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
