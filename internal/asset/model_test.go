package asset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`
src = "../models/shapes.glb"

[[mesh]]
src = "Cube"
dst = "Box"

[[mesh]]
src = "Sphere"

[[mesh]]
src = "Cube"
dst = "Ignored"
`)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Src != "../models/shapes.glb" {
		t.Errorf("src = %q", m.Src)
	}
	if len(m.Meshes) != 3 {
		t.Fatalf("got %d mesh entries, want 3", len(m.Meshes))
	}
	if m.Meshes[0].Dst == nil || *m.Meshes[0].Dst != "Box" {
		t.Errorf("mesh 0 dst = %v, want Box", m.Meshes[0].Dst)
	}
	if m.Meshes[1].Dst != nil {
		t.Errorf("mesh 1 dst = %q, want none", *m.Meshes[1].Dst)
	}

	f := m.Filter()
	if dst, ok := f.Lookup("Cube"); !ok || dst == nil || *dst != "Box" {
		t.Errorf("Lookup(Cube) = %v, %v; first entry should win", dst, ok)
	}
	if dst, ok := f.Lookup("Sphere"); !ok || dst != nil {
		t.Errorf("Lookup(Sphere) = %v, %v", dst, ok)
	}
	if _, ok := f.Lookup("Cone"); ok {
		t.Error("Lookup(Cone) should miss")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"missing src", `[[mesh]]
src = "Cube"`, ErrMissingSource},
		{"mesh without name", `src = "a.glb"
[[mesh]]
dst = "Box"`, ErrInvalidMesh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("src = ")); err == nil {
		t.Error("expected syntax error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.toml")
	if err := os.WriteFile(path, []byte(`src = "crate.gltf"`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Src != "crate.gltf" || !m.Filter().Empty() {
		t.Errorf("Load() = %+v", m)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMeshFilterIncludes(t *testing.T) {
	empty := NewMeshFilter(nil)
	if !empty.Includes("") || !empty.Includes("Anything") {
		t.Error("empty filter should include every mesh")
	}

	f := NewMeshFilter([]MeshEntry{{Src: "Cube"}})
	tests := map[string]bool{
		"Cube":   true,
		"Sphere": false,
		"":       false,
	}
	for name, want := range tests {
		if got := f.Includes(name); got != want {
			t.Errorf("Includes(%q) = %v, want %v", name, got, want)
		}
	}
}
