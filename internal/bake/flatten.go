package bake

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/asset"
	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/pak"
)

// Attribute names missing from the gltf package constants.
const (
	attrJoints  = "JOINTS_0"
	attrWeights = "WEIGHTS_0"
)

// meshNode is a scene node that instantiates a mesh and passed the filter.
type meshNode struct {
	node   *gltf.Node
	mesh   *gltf.Mesh
	source string  // mesh name in the scene
	name   *string // name stored in the model
}

// selectNodes returns the mesh nodes in document order that pass filter,
// keeping at most limit of them.
func selectNodes(doc *gltf.Document, filter asset.MeshFilter, limit int, log *zap.Logger) ([]meshNode, error) {
	var nodes []meshNode
	dropped := 0

	for ni, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %d: %w: mesh %d", ni, ErrInvalidReference, *node.Mesh)
		}
		mesh := doc.Meshes[*node.Mesh]
		if !filter.Includes(mesh.Name) {
			continue
		}
		if len(nodes) == limit {
			dropped++
			continue
		}

		n := meshNode{node: node, mesh: mesh, source: mesh.Name}
		if dst, ok := filter.Lookup(mesh.Name); ok && dst != nil {
			n.name = dst
		} else if mesh.Name != "" {
			name := mesh.Name
			n.name = &name
		}
		nodes = append(nodes, n)
	}

	if dropped > 0 {
		log.Warn("Mesh limit reached, dropping meshes",
			zap.Int("limit", limit),
			zap.Int("dropped", dropped))
	}
	return nodes, nil
}

// flattener fills the arenas of one model.
type flattener struct {
	doc      *gltf.Document
	log      *zap.Logger
	indices  *IndexArena
	vertices VertexArena

	// stream holds model-absolute indices for the write mask.
	stream []uint32
	// base is the number of vertices written so far.
	base uint32
}

func newFlattener(doc *gltf.Document, indexType pak.IndexType, log *zap.Logger) *flattener {
	return &flattener{
		doc:     doc,
		log:     log,
		indices: NewIndexArena(indexType),
	}
}

// flatten concatenates the primitives of every node into the arenas.
func (f *flattener) flatten(nodes []meshNode) ([]pak.Mesh, error) {
	meshes := make([]pak.Mesh, 0, len(nodes))
	for _, n := range nodes {
		mesh, err := f.mesh(n)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func (f *flattener) mesh(n meshNode) (pak.Mesh, error) {
	mesh := pak.Mesh{
		Name:         n.name,
		VertexOffset: f.base,
		Transform:    nodeTransform(n.node),
	}
	if n.node.Skin != nil {
		skin, err := bakeSkin(f.doc, *n.node.Skin)
		if err != nil {
			return mesh, fmt.Errorf("mesh %q: %w", n.source, err)
		}
		mesh.Skin = skin
	}

	start := uint32(f.indices.Len())
	var points []math.Vec3

	for pi, prim := range n.mesh.Primitives {
		switch prim.Mode {
		case gltf.PrimitiveTriangles:
		case gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
			return mesh, fmt.Errorf("mesh %q primitive %d: %w", n.source, pi, ErrUnsupportedTopology)
		default:
			f.log.Debug("Skipping non-triangle primitive",
				zap.String("mesh", n.source),
				zap.Int("primitive", pi))
			continue
		}

		p, err := readPrimitive(f.doc, prim, mesh.Skin != nil)
		if err != nil {
			return mesh, fmt.Errorf("mesh %q primitive %d: %w", n.source, pi, err)
		}

		for _, idx := range p.indices {
			local := idx + mesh.VertexCount
			if err := f.indices.Append(local); err != nil {
				return mesh, fmt.Errorf("mesh %q primitive %d: %w", n.source, pi, err)
			}
			f.stream = append(f.stream, f.base+local)
		}
		for i, pos := range p.positions {
			if mesh.Skin != nil {
				f.vertices.AppendSkinned(pos, p.texCoords[i], p.joints[i], p.weights[i])
			} else {
				f.vertices.AppendStatic(pos, p.texCoords[i])
			}
			points = append(points, math.Vec3From(pos))
		}
		mesh.VertexCount += uint32(len(p.positions))
	}

	mesh.Indices = pak.Range{Start: start, End: uint32(f.indices.Len())}
	mesh.Bounds = math.SphereFromPoints(points)
	f.base += mesh.VertexCount
	return mesh, nil
}

// primitive holds the streams of one triangle-list primitive.
type primitive struct {
	positions [][3]float32
	texCoords [][2]float32
	joints    [][4]uint16
	weights   [][4]float32
	indices   []uint32
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, skinned bool) (*primitive, error) {
	p := &primitive{}

	acr, err := attributeAccessor(doc, prim, gltf.POSITION)
	if err != nil {
		return nil, err
	}
	if p.positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPrimitive, gltf.POSITION, err)
	}
	count := len(p.positions)

	if acr, err = attributeAccessor(doc, prim, gltf.TEXCOORD_0); err != nil {
		return nil, err
	}
	if p.texCoords, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPrimitive, gltf.TEXCOORD_0, err)
	}
	if len(p.texCoords) < count {
		return nil, fmt.Errorf("%w: %s has %d of %d entries",
			ErrMalformedPrimitive, gltf.TEXCOORD_0, len(p.texCoords), count)
	}

	if skinned {
		if acr, err = attributeAccessor(doc, prim, attrJoints); err != nil {
			return nil, err
		}
		if p.joints, err = modeler.ReadJoints(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPrimitive, attrJoints, err)
		}
		if acr, err = attributeAccessor(doc, prim, attrWeights); err != nil {
			return nil, err
		}
		if p.weights, err = modeler.ReadWeights(doc, acr, nil); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPrimitive, attrWeights, err)
		}
		if len(p.joints) < count || len(p.weights) < count {
			return nil, fmt.Errorf("%w: skin streams shorter than %d vertices", ErrMalformedPrimitive, count)
		}
	}

	if prim.Indices == nil {
		return nil, fmt.Errorf("%w: indices", ErrMissingAttribute)
	}
	if acr, err = accessor(doc, *prim.Indices); err != nil {
		return nil, err
	}
	if p.indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
		return nil, fmt.Errorf("%w: indices: %v", ErrMalformedPrimitive, err)
	}
	if len(p.indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrMalformedPrimitive, len(p.indices))
	}
	for i, idx := range p.indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("%w: index %d is %d, primitive has %d vertices",
				ErrIndexOutOfRange, i, idx, count)
		}
	}

	return p, nil
}
