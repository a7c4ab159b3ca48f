package asset

import (
	"path/filepath"
	"strings"
)

// FilenameKey returns the content key of an asset file: its path relative
// to the project directory, with forward slashes and lowercased. Files
// outside the project keep their cleaned path.
func FilenameKey(projectDir, assetFile string) string {
	path := filepath.Clean(assetFile)

	if absProject, err := filepath.Abs(projectDir); err == nil {
		if absFile, err := filepath.Abs(assetFile); err == nil {
			if rel, err := filepath.Rel(absProject, absFile); err == nil && !escapes(rel) {
				path = rel
			}
		}
	}

	return normalizeKey(path)
}

// SourcePath resolves a descriptor's src. A leading slash is relative to
// the project directory; anything else is relative to the descriptor.
func SourcePath(projectDir, assetFile, src string) string {
	if strings.HasPrefix(src, "/") || strings.HasPrefix(src, "\\") {
		return filepath.Join(projectDir, filepath.FromSlash(strings.TrimLeft(src, "/\\")))
	}
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(filepath.Dir(assetFile), filepath.FromSlash(src))
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func normalizeKey(path string) string {
	path = strings.ReplaceAll(filepath.ToSlash(path), "\\", "/")
	return strings.ToLower(path)
}
