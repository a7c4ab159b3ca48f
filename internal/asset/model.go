// Package asset reads model asset descriptors and derives their pak keys.
package asset

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Descriptor errors.
var (
	ErrMissingSource = errors.New("model asset has no src")
	ErrInvalidMesh   = errors.New("mesh entry has no src name")
)

// MeshEntry selects one source mesh and optionally renames it.
type MeshEntry struct {
	Src string  `toml:"src"`
	Dst *string `toml:"dst,omitempty"`
}

// Model is a model asset descriptor:
//
//	src = "character.glb"
//
//	[[mesh]]
//	src = "Body"
//	dst = "body"
type Model struct {
	Src    string      `toml:"src"`
	Meshes []MeshEntry `toml:"mesh,omitempty"`
}

// Parse decodes and checks a TOML model descriptor.
func Parse(data []byte) (*Model, error) {
	m := &Model{}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing model asset: %w", err)
	}
	if m.Src == "" {
		return nil, ErrMissingSource
	}
	for i, mesh := range m.Meshes {
		if mesh.Src == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrInvalidMesh, i)
		}
	}
	return m, nil
}

// Load reads a model descriptor from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Filter returns the mesh filter described by the [[mesh]] entries.
func (m *Model) Filter() MeshFilter {
	return NewMeshFilter(m.Meshes)
}

// MeshFilter maps source mesh names to optional new names. It is built once
// per bake and only read afterwards.
type MeshFilter struct {
	names map[string]*string
}

// NewMeshFilter builds a filter; when a name repeats the first entry wins.
func NewMeshFilter(entries []MeshEntry) MeshFilter {
	f := MeshFilter{names: make(map[string]*string, len(entries))}
	for _, e := range entries {
		if _, ok := f.names[e.Src]; !ok {
			f.names[e.Src] = e.Dst
		}
	}
	return f
}

// Empty reports whether the filter passes every mesh.
func (f MeshFilter) Empty() bool {
	return len(f.names) == 0
}

// Lookup reports whether the named mesh is selected and its rename, if any.
func (f MeshFilter) Lookup(name string) (dst *string, ok bool) {
	dst, ok = f.names[name]
	return dst, ok
}

// Includes reports whether a mesh with the given name (empty for unnamed)
// passes the filter.
func (f MeshFilter) Includes(name string) bool {
	if f.Empty() {
		return true
	}
	if name == "" {
		return false
	}
	_, ok := f.names[name]
	return ok
}
