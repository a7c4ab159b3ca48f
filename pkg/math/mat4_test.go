package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity() {
		t.Error("IsIdentity() = false for Identity()")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformVec3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"identity", Identity(), Vec3{-1, 0, 4}, Vec3{-1, 0, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformVec3(tt.in); got != tt.want {
				t.Errorf("TransformVec3(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromScaleRotationTranslation(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	rot := Quat{X: 0, Y: half, Z: 0, W: half} // 90 degrees around Y
	m := FromScaleRotationTranslation(Vec3{2, 2, 2}, rot, Vec3{0, 5, 0})

	// Scale first, then rotate (1,0,0) onto -Z, then translate.
	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{0, 5, -2}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("TRS * (1,0,0) = %v, want %v", got, want)
	}

	if !FromScaleRotationTranslation(Vec3{1, 1, 1}, QuatIdentity(), Vec3{}).IsIdentity() {
		t.Error("unit TRS should be identity")
	}
}

func TestFromColumns(t *testing.T) {
	m := FromColumns([4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{7, 8, 9, 1},
	})
	if m != Translate(7, 8, 9) {
		t.Errorf("FromColumns = %v, want translation (7, 8, 9)", m)
	}
}

func TestFromFloat64(t *testing.T) {
	src := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0.5, 0, 0, 1}
	m := FromFloat64(src)
	if m[12] != 0.5 || m[0] != 1 {
		t.Errorf("FromFloat64 lost values: %v", m)
	}
}
