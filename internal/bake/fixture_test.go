package bake

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// prim describes one primitive written into a test document. Nil streams
// are left out of the attribute map.
type prim struct {
	mode      gltf.PrimitiveMode
	positions [][3]float32
	uvs       [][2]float32
	indices   []uint16
	joints    [][4]uint16
	weights   [][4]float32
}

func quadPrim() prim {
	return prim{
		positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		uvs:       [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		indices:   []uint16{0, 1, 2, 1, 2, 3},
	}
}

func trianglePrim(offset float32) prim {
	return prim{
		positions: [][3]float32{{offset, 0, 0}, {offset + 1, 0, 0}, {offset, 1, 0}},
		uvs:       [][2]float32{{0, 0}, {1, 0}, {0, 1}},
		indices:   []uint16{0, 1, 2},
	}
}

func addPrimitive(doc *gltf.Document, p prim) *gltf.Primitive {
	out := &gltf.Primitive{
		Mode:       p.mode,
		Attributes: map[string]int{},
	}
	if p.positions != nil {
		out.Attributes[gltf.POSITION] = modeler.WritePosition(doc, p.positions)
	}
	if p.uvs != nil {
		out.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, p.uvs)
	}
	if p.joints != nil {
		out.Attributes[attrJoints] = modeler.WriteJoints(doc, p.joints)
	}
	if p.weights != nil {
		out.Attributes[attrWeights] = modeler.WriteWeights(doc, p.weights)
	}
	if p.indices != nil {
		out.Indices = gltf.Index(modeler.WriteIndices(doc, p.indices))
	}
	return out
}

// addMeshNode appends a mesh and a node instantiating it.
func addMeshNode(doc *gltf.Document, name string, prims ...prim) *gltf.Node {
	mesh := &gltf.Mesh{Name: name}
	for _, p := range prims {
		mesh.Primitives = append(mesh.Primitives, addPrimitive(doc, p))
	}
	doc.Meshes = append(doc.Meshes, mesh)

	node := &gltf.Node{Mesh: gltf.Index(len(doc.Meshes) - 1)}
	doc.Nodes = append(doc.Nodes, node)
	return node
}

// addSkin appends joint nodes and a skin over them. A nil inverseBinds
// leaves the skin without an accessor.
func addSkin(doc *gltf.Document, names []string, inverseBinds [][4][4]float32) int {
	skin := &gltf.Skin{}
	for _, name := range names {
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name})
		skin.Joints = append(skin.Joints, len(doc.Nodes)-1)
	}
	if inverseBinds != nil {
		skin.InverseBindMatrices = gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, inverseBinds))
	}
	doc.Skins = append(doc.Skins, skin)
	return len(doc.Skins) - 1
}

func translation(x, y, z float32) [4][4]float32 {
	return [4][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {x, y, z, 1}}
}

func skinnedQuadPrim() prim {
	p := quadPrim()
	p.joints = [][4]uint16{{0, 0, 0, 0}, {1, 0, 0, 0}, {2, 0, 0, 0}, {1, 2, 0, 0}}
	p.weights = [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0.5, 0, 0}}
	return p
}

func addIndices(doc *gltf.Document, indices []uint32) int {
	return modeler.WriteIndices(doc, indices)
}
