package bake

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/meshbake/pkg/pak"
)

// SelectIndexType picks one index width for the whole model. It only reads
// accessor counts, so it runs before any buffer is filled. A mesh whose
// triangle-list primitives hold more than 65535 vertices in total forces
// 32-bit indices, since its mesh-relative indices would not fit 16 bits.
func SelectIndexType(doc *gltf.Document, nodes []meshNode) (pak.IndexType, error) {
	for _, n := range nodes {
		var total int
		for pi, prim := range n.mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			pos, err := attributeAccessor(doc, prim, gltf.POSITION)
			if err != nil {
				return 0, fmt.Errorf("mesh %q primitive %d: %w", n.source, pi, err)
			}
			total += pos.Count
		}
		if total > math.MaxUint16 {
			return pak.IndexU32, nil
		}
	}
	return pak.IndexU16, nil
}

func attributeAccessor(doc *gltf.Document, prim *gltf.Primitive, name string) (*gltf.Accessor, error) {
	idx, ok := prim.Attributes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	return accessor(doc, idx)
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrInvalidReference, idx)
	}
	return doc.Accessors[idx], nil
}
