package pak

import "encoding/binary"

// WriteMaskLen returns the write mask size in bytes for n indices.
func WriteMaskLen(n int) int {
	return (n + 31) >> 5 << 2
}

// CompileWriteMask marks, for every distinct value in indices, the first
// entry holding that value. The compute pass that rebuilds vertex
// attributes lets only marked entries store to the destination vertex, so
// no two invocations ever write the same slot.
//
// Values are vertex slots of the whole model, not raw index buffer entries:
// callers add each mesh's VertexOffset to its mesh-relative indices, so
// meshes that reuse local index 0 still get one writer each.
//
// Entry i maps to bit i%32 of little-endian word i/32. Padding bits past
// the last index are zero.
func CompileWriteMask(indices []uint32) []byte {
	words := (len(indices) + 31) >> 5
	mask := make([]byte, words*4)
	seen := make(map[uint32]struct{}, len(indices))

	var word uint32
	for i, idx := range indices {
		if _, ok := seen[idx]; !ok {
			seen[idx] = struct{}{}
			word |= 1 << uint(i&31)
		}
		if i&31 == 31 {
			binary.LittleEndian.PutUint32(mask[i>>5<<2:], word)
			word = 0
		}
	}
	if len(indices)&31 != 0 {
		binary.LittleEndian.PutUint32(mask[(words-1)<<2:], word)
	}

	return mask
}

// IsWriter reports whether index entry i is its vertex's designated writer.
func IsWriter(mask []byte, i int) bool {
	word := binary.LittleEndian.Uint32(mask[i>>5<<2:])
	return word&(1<<uint(i&31)) != 0
}

// DecodeWriteMask unpacks the first n entries of a write mask.
func DecodeWriteMask(mask []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = IsWriter(mask, i)
	}
	return out
}
