package bake

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/meshbake/pkg/pak"
)

// IndexArena accumulates indices at a fixed width.
type IndexArena struct {
	typ pak.IndexType
	buf []byte
}

// NewIndexArena creates an arena for indices of type t.
func NewIndexArena(t pak.IndexType) *IndexArena {
	return &IndexArena{typ: t}
}

// Append narrows v to the arena width and appends it.
func (a *IndexArena) Append(v uint32) error {
	if a.typ == pak.IndexU16 {
		if v > math.MaxUint16 {
			return fmt.Errorf("%w: %d does not fit %s", ErrIndexOutOfRange, v, a.typ)
		}
		a.buf = binary.LittleEndian.AppendUint16(a.buf, uint16(v))
		return nil
	}
	a.buf = binary.LittleEndian.AppendUint32(a.buf, v)
	return nil
}

// Len returns the number of indices appended.
func (a *IndexArena) Len() int {
	return len(a.buf) / a.typ.Size()
}

// Take hands the bytes over and leaves the arena empty.
func (a *IndexArena) Take() []byte {
	b := a.buf
	a.buf = nil
	return b
}

// VertexArena accumulates interleaved vertex records.
type VertexArena struct {
	buf []byte
}

// AppendStatic appends a 20-byte record: position, texcoord.
func (a *VertexArena) AppendStatic(pos [3]float32, uv [2]float32) {
	a.putFloats(pos[:]...)
	a.putFloats(uv[:]...)
}

// AppendSkinned appends a 52-byte record: position, texcoord, joints,
// weights and zeroed reserved bytes up to pak.SkinnedStride.
func (a *VertexArena) AppendSkinned(pos [3]float32, uv [2]float32, joints [4]uint16, weights [4]float32) {
	start := len(a.buf)
	a.AppendStatic(pos, uv)
	for _, j := range joints {
		a.buf = binary.LittleEndian.AppendUint16(a.buf, j)
	}
	a.putFloats(weights[:]...)
	for len(a.buf)-start < pak.SkinnedStride {
		a.buf = append(a.buf, 0)
	}
}

func (a *VertexArena) putFloats(fs ...float32) {
	for _, f := range fs {
		a.buf = binary.LittleEndian.AppendUint32(a.buf, math.Float32bits(f))
	}
}

// Len returns the arena size in bytes.
func (a *VertexArena) Len() int {
	return len(a.buf)
}

// Take hands the bytes over and leaves the arena empty.
func (a *VertexArena) Take() []byte {
	b := a.buf
	a.buf = nil
	return b
}
