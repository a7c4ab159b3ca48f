package pak

import (
	"encoding/binary"
	"fmt"
	gomath "math"
	"runtime"
	"sync"

	"github.com/Faultbox/meshbake/pkg/math"
)

// DescriptorType is the access mode of a compute binding.
type DescriptorType uint8

const (
	ReadOnlyBuffer  DescriptorType = 0
	ReadWriteBuffer DescriptorType = 1
)

// Binding is one entry of a compute descriptor set layout.
type Binding struct {
	Binding uint32
	Type    DescriptorType
	Name    string
}

// CalcVertexAttrsLayout is the descriptor set layout of the vertex attribute
// compute pass. Model buffers bind to it unchanged.
var CalcVertexAttrsLayout = [4]Binding{
	{Binding: 0, Type: ReadOnlyBuffer, Name: "idx_buf"},
	{Binding: 1, Type: ReadOnlyBuffer, Name: "src_buf"},
	{Binding: 2, Type: ReadWriteBuffer, Name: "dst_buf"},
	{Binding: 3, Type: ReadOnlyBuffer, Name: "write_mask"},
}

// NormalStride is the destination record size of CalcVertexAttrs (3×f32).
const NormalStride = 12

// CalcVertexAttrsPushConsts is the push constant block of the pass (16 bytes).
type CalcVertexAttrsPushConsts struct {
	IndexCount  uint32
	VertexCount uint32
	SrcStride   uint32
	DstStride   uint32
}

// PushConsts returns the push constants for dispatching mesh i.
func (m *Model) PushConsts(i int) CalcVertexAttrsPushConsts {
	mesh := &m.Meshes[i]
	return CalcVertexAttrsPushConsts{
		IndexCount:  mesh.Indices.Len(),
		VertexCount: mesh.VertexCount,
		SrcStride:   uint32(mesh.Stride()),
		DstStride:   NormalStride,
	}
}

// CalcVertexAttrs is a CPU rendition of the vertex normal compute pass for
// mesh i. It returns the destination buffer: one smooth normal per vertex,
// NormalStride bytes each.
//
// Like the GPU pass it runs without locks on the destination. Face normals
// go to a separate accumulation buffer first; then every index entry runs
// as an independent invocation and only designated writers store. A writer
// is the first occurrence of its vertex, so every other occurrence lies
// after it in the stream.
func CalcVertexAttrs(m *Model, i int, workers int) ([]byte, error) {
	if i < 0 || i >= len(m.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", i)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	mesh := &m.Meshes[i]
	pc := m.PushConsts(i)
	base := int(mesh.Indices.Start)
	count := int(pc.IndexCount)
	src := m.VertexBuffer[m.VertexByteOffset(i):]

	if need := int(pc.VertexCount) * int(pc.SrcStride); len(src) < need {
		return nil, fmt.Errorf("%w: mesh %d vertex data truncated", ErrInvalidModel, i)
	}
	if WriteMaskLen(base+count) > len(m.WriteMask) {
		return nil, fmt.Errorf("%w: write mask shorter than mesh %d", ErrInvalidModel, i)
	}

	position := func(v uint32) math.Vec3 {
		off := int(v) * int(pc.SrcStride)
		return math.Vec3{
			X: gomath.Float32frombits(binary.LittleEndian.Uint32(src[off:])),
			Y: gomath.Float32frombits(binary.LittleEndian.Uint32(src[off+4:])),
			Z: gomath.Float32frombits(binary.LittleEndian.Uint32(src[off+8:])),
		}
	}

	indices := make([]uint32, count)
	for j := range indices {
		indices[j] = m.Index(base + j)
		if indices[j] >= pc.VertexCount {
			return nil, fmt.Errorf("%w: mesh %d index %d out of range", ErrInvalidModel, i, j)
		}
	}

	faces := make([]math.Vec3, count/3)
	parallelFor(len(faces), workers, func(t int) {
		a := position(indices[t*3])
		b := position(indices[t*3+1])
		c := position(indices[t*3+2])
		faces[t] = b.Sub(a).Cross(c.Sub(a))
	})

	dst := make([]byte, int(pc.VertexCount)*NormalStride)
	parallelFor(count, workers, func(j int) {
		if !IsWriter(m.WriteMask, base+j) {
			return
		}
		v := indices[j]

		var sum math.Vec3
		for k := j; k < count; k++ {
			if indices[k] == v {
				sum = sum.Add(faces[k/3])
			}
		}

		n := sum.Normalize()
		off := int(v) * NormalStride
		binary.LittleEndian.PutUint32(dst[off:], gomath.Float32bits(n.X))
		binary.LittleEndian.PutUint32(dst[off+4:], gomath.Float32bits(n.Y))
		binary.LittleEndian.PutUint32(dst[off+8:], gomath.Float32bits(n.Z))
	})

	return dst, nil
}

func parallelFor(n, workers int, fn func(i int)) {
	if n == 0 {
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
