package math

import "testing"

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("x.Cross(y) = %v, want (0,0,1)", got)
	}
	if got := y.Cross(x); got != (Vec3{0, 0, -1}) {
		t.Errorf("y.Cross(x) = %v, want (0,0,-1)", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		in   Vec3
		want Vec3
	}{
		{Vec3{3, 0, 4}, Vec3{0.6, 0, 0.8}},
		{Vec3{0, -2, 0}, Vec3{0, -1, 0}},
		{Vec3{}, Vec3{}},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); !got.ApproxEqual(tt.want, 1e-6) {
			t.Errorf("%v.Normalize() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 3}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
	if got := Vec3From(a.Array()); got != a {
		t.Errorf("Vec3From(Array()) = %v, want %v", got, a)
	}
}
