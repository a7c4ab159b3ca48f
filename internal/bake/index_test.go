package bake

import (
	"testing"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/meshbake/internal/asset"
	"github.com/Faultbox/meshbake/pkg/pak"
)

// gridPrim returns a primitive with n vertices and a single triangle
// touching the last one.
func gridPrim(n int) prim {
	p := prim{
		positions: make([][3]float32, n),
		uvs:       make([][2]float32, n),
	}
	for i := range p.positions {
		p.positions[i] = [3]float32{float32(i), 0, 0}
	}
	return p
}

func TestSelectIndexType(t *testing.T) {
	tests := []struct {
		name   string
		meshes [][]int // vertex counts per primitive, per mesh
		want   pak.IndexType
	}{
		{"small", [][]int{{4}}, pak.IndexU16},
		{"exactly 65535", [][]int{{65535}}, pak.IndexU16},
		{"65536", [][]int{{65536}}, pak.IndexU32},
		{"primitives add up", [][]int{{40000, 30000}}, pak.IndexU32},
		{"two primitives of 40000", [][]int{{40000, 40000}}, pak.IndexU32},
		{"separate meshes stay small", [][]int{{40000}, {40000}}, pak.IndexU16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := gltf.NewDocument()
			for _, counts := range tt.meshes {
				var prims []prim
				for _, n := range counts {
					prims = append(prims, gridPrim(n))
				}
				addMeshNode(doc, "", prims...)
			}

			nodes, err := selectNodes(doc, asset.MeshFilter{}, pak.MaxMeshes, zap.NewNop())
			if err != nil {
				t.Fatal(err)
			}
			got, err := SelectIndexType(doc, nodes)
			if err != nil {
				t.Fatalf("SelectIndexType() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SelectIndexType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompileWideIndices(t *testing.T) {
	doc := gltf.NewDocument()
	big := gridPrim(70000)
	addMeshNode(doc, "Big", big)
	// Indices above 65535 only fit the wide buffer.
	doc.Meshes[0].Primitives[0].Indices = gltf.Index(addIndices(doc, []uint32{0, 1, 69999}))

	model := compile(t, doc)
	if model.IndexType != pak.IndexU32 {
		t.Fatalf("index type = %s, want U32", model.IndexType)
	}
	if got := model.Index(2); got != 69999 {
		t.Errorf("index 2 = %d, want 69999", got)
	}
}

func TestSelectNodesLimit(t *testing.T) {
	doc := gltf.NewDocument()
	for _, name := range []string{"a", "b", "c", "d"} {
		addMeshNode(doc, name, trianglePrim(0))
	}

	core, logs := observer.New(zap.WarnLevel)
	nodes, err := selectNodes(doc, asset.MeshFilter{}, 2, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}

	if len(nodes) != 2 || nodes[0].source != "a" || nodes[1].source != "b" {
		t.Errorf("kept %d nodes, want a and b", len(nodes))
	}
	warnings := logs.All()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if dropped := warnings[0].ContextMap()["dropped"]; dropped != int64(2) {
		t.Errorf("dropped = %v, want 2", dropped)
	}
}

func TestCompileSecondPrimitiveIndicesExact(t *testing.T) {
	doc := gltf.NewDocument()
	addMeshNode(doc, "Split", gridPrim(40000), gridPrim(40000))
	prims := doc.Meshes[0].Primitives
	prims[0].Indices = gltf.Index(addIndices(doc, []uint32{0, 1, 2}))
	prims[1].Indices = gltf.Index(addIndices(doc, []uint32{0, 1, 39999}))

	model := compile(t, doc)
	if model.IndexType != pak.IndexU32 {
		t.Fatalf("index type = %s, want U32", model.IndexType)
	}
	// The second primitive is offset past the first one's 40000 vertices.
	for i, w := range []uint32{0, 1, 2, 40000, 40001, 79999} {
		if got := model.Index(i); got != w {
			t.Errorf("index %d = %d, want %d", i, got, w)
		}
	}
}
