package pak

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faultbox/meshbake/pkg/math"
)

func TestModelBinaryRoundTrip(t *testing.T) {
	m := quadModel()
	transform := math.Translate(1, 2, 3)
	m.Meshes[0].Transform = &transform
	m.Meshes = append(m.Meshes, Mesh{
		Indices: Range{6, 6},
		Skin: &Skin{Joints: []Joint{
			{Name: "root", InverseBind: math.Identity()},
			{Name: "arm", InverseBind: math.Scale(2, 2, 2)},
		}},
	})

	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var got Model
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	again, err := got.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary (decoded): %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-encoded model differs from original encoding")
	}

	if got.Meshes[0].DisplayName() != "quad" {
		t.Errorf("name = %q, want quad", got.Meshes[0].DisplayName())
	}
	if got.Meshes[0].Transform == nil || *got.Meshes[0].Transform != transform {
		t.Errorf("transform = %v, want %v", got.Meshes[0].Transform, transform)
	}
	if got.Meshes[1].Name != nil {
		t.Errorf("unnamed mesh decoded with name %q", *got.Meshes[1].Name)
	}
	if got.Meshes[1].Skin.Len() != 2 || got.Meshes[1].Skin.Joints[1].Name != "arm" {
		t.Errorf("skin = %+v", got.Meshes[1].Skin)
	}
	if got.Meshes[0].Bounds != m.Meshes[0].Bounds {
		t.Errorf("bounds = %v, want %v", got.Meshes[0].Bounds, m.Meshes[0].Bounds)
	}
	if !bytes.Equal(got.IndexBuffer, m.IndexBuffer) ||
		!bytes.Equal(got.VertexBuffer, m.VertexBuffer) ||
		!bytes.Equal(got.WriteMask, m.WriteMask) {
		t.Error("buffers differ after round trip")
	}
}

func TestModelUnmarshalTruncated(t *testing.T) {
	data, err := quadModel().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	for _, n := range []int{0, 1, 5, len(data) / 2, len(data) - 1} {
		var m Model
		if err := m.UnmarshalBinary(data[:n]); !errors.Is(err, ErrTruncated) {
			t.Errorf("UnmarshalBinary(%d bytes) = %v, want ErrTruncated", n, err)
		}
	}
}

func TestMarshalBinaryLayout(t *testing.T) {
	name := "a"
	m := &Model{
		IndexType: IndexU16,
		Meshes: []Mesh{{
			Name:        &name,
			Indices:     Range{0, 3},
			VertexCount: 3,
			Bounds:      math.Sphere{Radius: 1},
		}},
		IndexBuffer: []byte{0, 0, 1, 0, 2, 0},
		WriteMask:   []byte{0x07, 0, 0, 0},
	}

	got, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	want := []byte{
		0x00,       // index type
		0x01, 0x00, // mesh count
		0x01,             // flags: name
		0x01, 0x00, 'a', // name
		0, 0, 0, 0, 3, 0, 0, 0, // index range
		3, 0, 0, 0, 0, 0, 0, 0, // vertex count, offset
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // center
		0x00, 0x00, 0x80, 0x3f, // radius 1.0
		6, 0, 0, 0, 0, 0, 1, 0, 2, 0, // index buffer
		0, 0, 0, 0, // vertex buffer
		4, 0, 0, 0, 0x07, 0, 0, 0, // write mask
	}
	if !bytes.Equal(got, want) {
		t.Errorf("MarshalBinary() =\n% x\nwant\n% x", got, want)
	}
}
