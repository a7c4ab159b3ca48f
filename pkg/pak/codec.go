package pak

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"

	"github.com/Faultbox/meshbake/pkg/math"
)

// Decoding errors.
var (
	ErrTruncated = errors.New("truncated pak data")
)

const (
	meshHasName      = 1 << 0
	meshHasTransform = 1 << 1
	meshHasSkin      = 1 << 2
)

// MarshalBinary encodes the model in the little-endian pak blob layout.
func (m *Model) MarshalBinary() ([]byte, error) {
	if len(m.Meshes) > MaxMeshes {
		return nil, fmt.Errorf("%w: %d meshes", ErrInvalidModel, len(m.Meshes))
	}

	le := binary.LittleEndian
	b := make([]byte, 0, 3+len(m.IndexBuffer)+len(m.VertexBuffer)+len(m.WriteMask)+len(m.Meshes)*48)
	b = append(b, uint8(m.IndexType))
	b = le.AppendUint16(b, uint16(len(m.Meshes)))

	var err error
	for i := range m.Meshes {
		mesh := &m.Meshes[i]

		var flags uint8
		if mesh.Name != nil {
			flags |= meshHasName
		}
		if mesh.Transform != nil {
			flags |= meshHasTransform
		}
		if mesh.Skin != nil {
			flags |= meshHasSkin
		}
		b = append(b, flags)

		if mesh.Name != nil {
			if b, err = appendString(b, *mesh.Name); err != nil {
				return nil, fmt.Errorf("mesh %d: %w", i, err)
			}
		}
		b = le.AppendUint32(b, mesh.Indices.Start)
		b = le.AppendUint32(b, mesh.Indices.End)
		b = le.AppendUint32(b, mesh.VertexCount)
		b = le.AppendUint32(b, mesh.VertexOffset)
		b = appendFloats(b, mesh.Bounds.Center.X, mesh.Bounds.Center.Y, mesh.Bounds.Center.Z, mesh.Bounds.Radius)

		if mesh.Transform != nil {
			b = appendFloats(b, mesh.Transform[:]...)
		}
		if mesh.Skin != nil {
			if len(mesh.Skin.Joints) > 0xFFFF {
				return nil, fmt.Errorf("mesh %d: %d joints", i, len(mesh.Skin.Joints))
			}
			b = le.AppendUint16(b, uint16(len(mesh.Skin.Joints)))
			for _, j := range mesh.Skin.Joints {
				if b, err = appendString(b, j.Name); err != nil {
					return nil, fmt.Errorf("mesh %d joint: %w", i, err)
				}
				b = appendFloats(b, j.InverseBind[:]...)
			}
		}
	}

	for _, buf := range [][]byte{m.IndexBuffer, m.VertexBuffer, m.WriteMask} {
		b = le.AppendUint32(b, uint32(len(buf)))
		b = append(b, buf...)
	}

	return b, nil
}

func appendFloats(b []byte, fs ...float32) []byte {
	for _, f := range fs {
		b = binary.LittleEndian.AppendUint32(b, gomath.Float32bits(f))
	}
	return b
}

// UnmarshalBinary decodes a blob produced by MarshalBinary.
func (m *Model) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var indexType uint8
	var meshCount uint16
	if err := readAll(r, &indexType, &meshCount); err != nil {
		return err
	}

	*m = Model{
		IndexType: IndexType(indexType),
		Meshes:    make([]Mesh, meshCount),
	}

	for i := range m.Meshes {
		mesh := &m.Meshes[i]

		var flags uint8
		if err := readAll(r, &flags); err != nil {
			return err
		}
		if flags&meshHasName != 0 {
			name, err := readString(r)
			if err != nil {
				return fmt.Errorf("mesh %d name: %w", i, err)
			}
			mesh.Name = &name
		}

		var center [3]float32
		if err := readAll(r,
			&mesh.Indices.Start, &mesh.Indices.End,
			&mesh.VertexCount, &mesh.VertexOffset,
			&center, &mesh.Bounds.Radius,
		); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
		mesh.Bounds.Center = math.Vec3From(center)

		if flags&meshHasTransform != 0 {
			var t math.Mat4
			if err := readAll(r, &t); err != nil {
				return fmt.Errorf("mesh %d transform: %w", i, err)
			}
			mesh.Transform = &t
		}
		if flags&meshHasSkin != 0 {
			var n uint16
			if err := readAll(r, &n); err != nil {
				return fmt.Errorf("mesh %d skin: %w", i, err)
			}
			skin := &Skin{Joints: make([]Joint, n)}
			for j := range skin.Joints {
				name, err := readString(r)
				if err != nil {
					return fmt.Errorf("mesh %d joint %d: %w", i, j, err)
				}
				skin.Joints[j].Name = name
				if err := readAll(r, &skin.Joints[j].InverseBind); err != nil {
					return fmt.Errorf("mesh %d joint %d: %w", i, j, err)
				}
			}
			mesh.Skin = skin
		}
	}

	for _, dst := range []*[]byte{&m.IndexBuffer, &m.VertexBuffer, &m.WriteMask} {
		var n uint32
		if err := readAll(r, &n); err != nil {
			return err
		}
		if int64(n) > int64(r.Len()) {
			return ErrTruncated
		}
		*dst = make([]byte, n)
		if _, err := io.ReadFull(r, *dst); err != nil {
			return ErrTruncated
		}
	}

	return nil
}

func readAll(r io.Reader, fields ...any) error {
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return ErrTruncated
		}
	}
	return nil
}

func appendString(b []byte, s string) ([]byte, error) {
	if len(s) > 0xFFFF {
		return b, fmt.Errorf("string of %d bytes too long", len(s))
	}
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...), nil
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := readAll(r, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", ErrTruncated
	}
	return string(b), nil
}
