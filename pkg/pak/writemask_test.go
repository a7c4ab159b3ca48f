package pak

import (
	"math/rand"
	"testing"
)

func TestCompileWriteMaskSharedEdge(t *testing.T) {
	mask := CompileWriteMask([]uint32{0, 1, 2, 1, 2, 3})

	if len(mask) != 4 {
		t.Fatalf("mask length = %d bytes, want one 32-bit word", len(mask))
	}

	want := []bool{true, true, true, false, false, true}
	got := DecodeWriteMask(mask, 32)
	for i := 0; i < 32; i++ {
		exp := i < len(want) && want[i]
		if got[i] != exp {
			t.Errorf("bit %d = %v, want %v", i, got[i], exp)
		}
	}

	// bits 0, 1, 2 and 5
	if mask[0] != 0x27 || mask[1] != 0 || mask[2] != 0 || mask[3] != 0 {
		t.Errorf("mask bytes = % x, want 27 00 00 00", mask)
	}
}

func TestWriteMaskLen(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 4},
		{31, 4},
		{32, 4},
		{33, 8},
		{64, 8},
		{65, 12},
	}

	for _, tt := range tests {
		if got := WriteMaskLen(tt.n); got != tt.want {
			t.Errorf("WriteMaskLen(%d) = %d, want %d", tt.n, got, tt.want)
		}
		if got := len(CompileWriteMask(make([]uint32, tt.n))); got != tt.want {
			t.Errorf("len(CompileWriteMask(%d)) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCompileWriteMaskOneWriterPerVertex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{3, 31, 32, 33, 96, 1000, 4099} {
		indices := make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(rng.Intn(n/3 + 1))
		}

		mask := CompileWriteMask(indices)
		bits := DecodeWriteMask(mask, n)

		first := make(map[uint32]int)
		writers := make(map[uint32]int)
		for i, v := range indices {
			if _, ok := first[v]; !ok {
				first[v] = i
			}
			if bits[i] {
				writers[v]++
				if first[v] != i {
					t.Errorf("n=%d: writer for %d at %d, first occurrence at %d", n, v, i, first[v])
				}
			}
		}
		for v := range first {
			if writers[v] != 1 {
				t.Errorf("n=%d: vertex %d has %d writers, want 1", n, v, writers[v])
			}
		}

		// padding stays clear
		for i := n; i < len(mask)*8; i++ {
			if IsWriter(mask, i) {
				t.Errorf("n=%d: padding bit %d set", n, i)
			}
		}
	}
}

func TestCompileWriteMaskWordBoundary(t *testing.T) {
	// 0..31 fill the first word, then 32 and repeats of 0 spill into the second.
	indices := make([]uint32, 0, 40)
	for i := uint32(0); i < 32; i++ {
		indices = append(indices, i)
	}
	indices = append(indices, 0, 32, 1)

	mask := CompileWriteMask(indices)
	if len(mask) != 8 {
		t.Fatalf("mask length = %d, want 8", len(mask))
	}
	if mask[0] != 0xFF || mask[1] != 0xFF || mask[2] != 0xFF || mask[3] != 0xFF {
		t.Errorf("first word = % x, want all set", mask[:4])
	}
	// entry 32 (repeat of 0) clear, entry 33 (new 32) set, entry 34 (repeat of 1) clear
	if mask[4] != 0x02 {
		t.Errorf("second word low byte = %#x, want 0x02", mask[4])
	}
}
