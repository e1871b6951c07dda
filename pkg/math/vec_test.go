package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	got := Vec3{1, 2, 3}.Add(Vec3{4, 5, 6})
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	got := Vec3{2, 3, 6}.Length()
	want := float32(7)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	l := Vec3{3, 4, 12}.Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 20, 30}

	got := a.Lerp(b, 0.5)
	want := Vec3{5, 10, 15}
	if got.Distance(want) > 0.001 {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
}

func TestVec3MulAdd(t *testing.T) {
	got := Vec3{1, 1, 1}.MulAdd(Vec3{1, 2, 3}, 2)
	want := Vec3{3, 5, 7}
	if got != want {
		t.Errorf("Vec3.MulAdd() = %v, want %v", got, want)
	}
}

func TestLerpWeights(t *testing.T) {
	buf := make([]float32, 0, 4)
	got := LerpWeights(buf, []float32{0, 1, 2}, []float32{1, 1, 0}, 0.5)
	want := []float32{0.5, 1, 1}

	if len(got) != len(want) {
		t.Fatalf("LerpWeights length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LerpWeights[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if &got[0] != &buf[:1][0] {
		t.Error("LerpWeights should reuse the output buffer")
	}

	if n := len(LerpWeights(nil, []float32{1, 2}, []float32{3}, 1)); n != 1 {
		t.Errorf("LerpWeights should truncate to the shorter input, got length %d", n)
	}
}
