// Package pak defines the baked model record and the pak store that owns it.
package pak

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/meshbake/pkg/math"
)

// ErrInvalidModel is wrapped by every Model.Validate failure.
var ErrInvalidModel = errors.New("invalid model")

// MaxMeshes is the most meshes a single model can hold.
const MaxMeshes = 65535

// Vertex record strides in bytes.
const (
	// StaticStride is position (3×f32) + texcoord (2×f32).
	StaticStride = 20
	// SkinnedStride adds joints (4×u16), weights (4×f32) and 8 reserved
	// zero bytes.
	SkinnedStride = 52
)

// IndexType is the width of every index in a model's index buffer.
type IndexType uint8

const (
	IndexU16 IndexType = 0 // 16-bit indices
	IndexU32 IndexType = 1 // 32-bit indices
)

// Size returns the width of one index in bytes.
func (t IndexType) Size() int {
	if t == IndexU16 {
		return 2
	}
	return 4
}

// String returns a human-readable index type name.
func (t IndexType) String() string {
	switch t {
	case IndexU16:
		return "U16"
	case IndexU32:
		return "U32"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Range is a half-open range [Start, End) into the index buffer, in indices.
type Range struct {
	Start, End uint32
}

// Len returns the number of indices in the range.
func (r Range) Len() uint32 {
	return r.End - r.Start
}

// Joint pairs a joint name with its inverse-bind matrix.
type Joint struct {
	Name        string
	InverseBind math.Mat4
}

// Skin is an ordered joint list; position in the slice is the joint index
// referenced by vertex joint attributes.
type Skin struct {
	Joints []Joint
}

// Len returns the number of joints.
func (s *Skin) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Joints)
}

// InverseBind returns the matrix for the named joint.
func (s *Skin) InverseBind(name string) (math.Mat4, bool) {
	if s == nil {
		return math.Mat4{}, false
	}
	for _, j := range s.Joints {
		if j.Name == name {
			return j.InverseBind, true
		}
	}
	return math.Mat4{}, false
}

// Mesh is one drawable piece of a model.
type Mesh struct {
	Name         *string     // Optional display name
	Indices      Range       // Range in the model index buffer
	VertexCount  uint32      // Vertices owned by this mesh
	VertexOffset uint32      // First vertex of this mesh, in vertices
	Bounds       math.Sphere // Bounds of the untransformed vertices
	Transform    *math.Mat4  // Local transform, nil means identity
	Skin         *Skin       // Joint bindings, nil for static meshes
}

// Stride returns the byte size of one vertex record of this mesh.
func (m *Mesh) Stride() int {
	if m.Skin != nil {
		return SkinnedStride
	}
	return StaticStride
}

// DisplayName returns the mesh name or an empty string.
func (m *Mesh) DisplayName() string {
	if m.Name == nil {
		return ""
	}
	return *m.Name
}

// Model is a baked, render-ready model.
type Model struct {
	Meshes       []Mesh
	IndexType    IndexType
	IndexBuffer  []byte
	VertexBuffer []byte
	WriteMask    []byte
}

// NewModel takes ownership of the given buffers.
func NewModel(meshes []Mesh, indexType IndexType, indexBuf, vertexBuf, writeMask []byte) *Model {
	return &Model{
		Meshes:       meshes,
		IndexType:    indexType,
		IndexBuffer:  indexBuf,
		VertexBuffer: vertexBuf,
		WriteMask:    writeMask,
	}
}

// IndexCount returns the number of indices in the index buffer.
func (m *Model) IndexCount() int {
	return len(m.IndexBuffer) / m.IndexType.Size()
}

// VertexCount returns the total number of vertices across all meshes.
func (m *Model) VertexCount() uint32 {
	var n uint32
	for i := range m.Meshes {
		n += m.Meshes[i].VertexCount
	}
	return n
}

// Index decodes the i-th entry of the index buffer.
func (m *Model) Index(i int) uint32 {
	if m.IndexType == IndexU16 {
		return uint32(binary.LittleEndian.Uint16(m.IndexBuffer[i*2:]))
	}
	return binary.LittleEndian.Uint32(m.IndexBuffer[i*4:])
}

// VertexByteOffset returns where mesh i's vertex records start in the
// vertex buffer. Meshes are packed back to back with their own strides.
func (m *Model) VertexByteOffset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += int(m.Meshes[j].VertexCount) * m.Meshes[j].Stride()
	}
	return off
}

// Validate checks the model invariants and reports every violation found.
func (m *Model) Validate() error {
	var err error

	if m.IndexType != IndexU16 && m.IndexType != IndexU32 {
		err = multierr.Append(err, fmt.Errorf("%w: index type %s", ErrInvalidModel, m.IndexType))
		return err
	}
	if len(m.Meshes) > MaxMeshes {
		err = multierr.Append(err, fmt.Errorf("%w: %d meshes exceeds %d", ErrInvalidModel, len(m.Meshes), MaxMeshes))
	}
	if len(m.IndexBuffer)%m.IndexType.Size() != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: index buffer length %d not a multiple of %d",
			ErrInvalidModel, len(m.IndexBuffer), m.IndexType.Size()))
		return err
	}

	indexCount := m.IndexCount()
	if want := WriteMaskLen(indexCount); len(m.WriteMask) != want {
		err = multierr.Append(err, fmt.Errorf("%w: write mask is %d bytes, want %d",
			ErrInvalidModel, len(m.WriteMask), want))
	}

	total := m.VertexCount()
	vertexBytes := 0
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		vertexBytes += int(mesh.VertexCount) * mesh.Stride()

		if mesh.Indices.Start > mesh.Indices.End || int(mesh.Indices.End) > indexCount {
			err = multierr.Append(err, fmt.Errorf("%w: mesh %d index range [%d, %d) outside %d indices",
				ErrInvalidModel, i, mesh.Indices.Start, mesh.Indices.End, indexCount))
			continue
		}
		if mesh.Indices.Len()%3 != 0 {
			err = multierr.Append(err, fmt.Errorf("%w: mesh %d has %d indices, not a triangle list",
				ErrInvalidModel, i, mesh.Indices.Len()))
		}
		if uint64(mesh.VertexOffset)+uint64(mesh.VertexCount) > uint64(total) {
			err = multierr.Append(err, fmt.Errorf("%w: mesh %d vertices [%d, +%d) exceed %d",
				ErrInvalidModel, i, mesh.VertexOffset, mesh.VertexCount, total))
		}
		for j := mesh.Indices.Start; j < mesh.Indices.End; j++ {
			if idx := m.Index(int(j)); idx >= mesh.VertexCount {
				err = multierr.Append(err, fmt.Errorf("%w: mesh %d index %d = %d, mesh has %d vertices",
					ErrInvalidModel, i, j, idx, mesh.VertexCount))
				break
			}
		}
	}

	if vertexBytes != len(m.VertexBuffer) {
		err = multierr.Append(err, fmt.Errorf("%w: vertex buffer is %d bytes, meshes describe %d",
			ErrInvalidModel, len(m.VertexBuffer), vertexBytes))
	}

	return err
}
