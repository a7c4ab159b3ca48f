package bake

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/pak"
)

// bakeSkin pairs every joint of skin idx with its inverse-bind matrix, in
// joint order.
func bakeSkin(doc *gltf.Document, idx int) (*pak.Skin, error) {
	if idx < 0 || idx >= len(doc.Skins) {
		return nil, fmt.Errorf("%w: skin %d", ErrInvalidReference, idx)
	}
	skin := doc.Skins[idx]
	if skin.InverseBindMatrices == nil {
		return nil, fmt.Errorf("skin %d: %w", idx, ErrMissingInverseBinds)
	}

	acr, err := accessor(doc, *skin.InverseBindMatrices)
	if err != nil {
		return nil, fmt.Errorf("skin %d: %w", idx, err)
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("skin %d: %w: %v", idx, ErrMalformedPrimitive, err)
	}
	mats, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("skin %d: %w: accessor is not a float MAT4", idx, ErrMissingInverseBinds)
	}
	if len(mats) < len(skin.Joints) {
		return nil, fmt.Errorf("skin %d: %w: %d matrices for %d joints",
			idx, ErrMissingInverseBinds, len(mats), len(skin.Joints))
	}

	out := &pak.Skin{Joints: make([]pak.Joint, len(skin.Joints))}
	for i, node := range skin.Joints {
		if node < 0 || node >= len(doc.Nodes) {
			return nil, fmt.Errorf("skin %d joint %d: %w: node %d", idx, i, ErrInvalidReference, node)
		}
		name := doc.Nodes[node].Name
		if name == "" {
			name = fmt.Sprintf("joint%d", i)
		}
		out.Joints[i] = pak.Joint{
			Name:        name,
			InverseBind: math.FromColumns(mats[i]),
		}
	}
	return out, nil
}

var identity64 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeTransform returns the local transform of node, or nil for identity.
// An explicit matrix wins over translation, rotation and scale.
func nodeTransform(node *gltf.Node) *math.Mat4 {
	var m math.Mat4
	if matrix := node.MatrixOrDefault(); matrix != identity64 {
		m = math.FromFloat64(matrix)
	} else {
		t := node.TranslationOrDefault()
		r := node.RotationOrDefault()
		s := node.ScaleOrDefault()
		m = math.FromScaleRotationTranslation(
			math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
			math.QuatFromArray(r),
			math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		)
	}
	if m.IsIdentity() {
		return nil
	}
	return &m
}
