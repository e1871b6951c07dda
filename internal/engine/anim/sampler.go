package anim

import (
	"sort"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// BracketIndex returns the index i of the keyframe that starts the interval containing t,
// so that keys[i].Time <= t < keys[i+1].Time. Times before the first keyframe clamp to 0
// and times at or after the last keyframe clamp to the last index.
func BracketIndex[K Keyframe](keys []K, t float32) int {
	last := len(keys) - 1
	if last <= 0 || t < keys[0].KeyTime() {
		return 0
	}
	if t >= keys[last].KeyTime() {
		return last
	}
	return sort.Search(len(keys), func(i int) bool { return keys[i].KeyTime() > t }) - 1
}

// bracket locates the interval for t. It reports ok=false when the left keyframe must be
// returned as is: at or past the last keyframe, or on a zero-length interval.
func bracket[K Keyframe](keys []K, t float32) (i int, alpha, dt float32, ok bool) {
	i = BracketIndex(keys, t)
	if i+1 >= len(keys) {
		return i, 0, 0, false
	}
	t0, t1 := keys[i].KeyTime(), keys[i+1].KeyTime()
	dt = t1 - t0
	if dt <= 0 {
		return i, 0, 0, false
	}
	alpha = (t - t0) / dt
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	return i, alpha, dt, true
}

// hermite returns the cubic Hermite basis weights for p0, m0, p1 and m1 at t.
func hermite(t float32) (h00, h10, h01, h11 float32) {
	t2 := t * t
	t3 := t2 * t
	return 2*t3 - 3*t2 + 1, t3 - 2*t2 + t, -2*t3 + 3*t2, t3 - t2
}

// SampleVec3 evaluates a translation or scale channel at t. An empty channel yields rest.
func SampleVec3(ch *Vec3Channel, t float32, rest math.Vec3) math.Vec3 {
	switch len(ch.Keys) {
	case 0:
		return rest
	case 1:
		return ch.Keys[0].Value
	}
	i, alpha, dt, ok := bracket(ch.Keys, t)
	k0 := &ch.Keys[i]
	if !ok || ch.Mode == Step {
		return k0.Value
	}
	k1 := &ch.Keys[i+1]
	if ch.Mode == CubicSpline {
		h00, h10, h01, h11 := hermite(alpha)
		return k0.Value.Scale(h00).
			MulAdd(k0.OutTangent, h10*dt).
			MulAdd(k1.Value, h01).
			MulAdd(k1.InTangent, h11*dt)
	}
	return k0.Value.Lerp(k1.Value, alpha)
}

// SampleQuat evaluates a rotation channel at t. The result is always unit length.
func SampleQuat(ch *QuatChannel, t float32, rest math.Quat) math.Quat {
	switch len(ch.Keys) {
	case 0:
		return rest
	case 1:
		return ch.Keys[0].Value
	}
	i, alpha, dt, ok := bracket(ch.Keys, t)
	k0 := &ch.Keys[i]
	if !ok || ch.Mode == Step {
		return k0.Value
	}
	k1 := &ch.Keys[i+1]
	if ch.Mode == CubicSpline {
		h00, h10, h01, h11 := hermite(alpha)
		return k0.Value.Scale(h00).
			Add(k0.OutTangent.Scale(h10 * dt)).
			Add(k1.Value.Scale(h01)).
			Add(k1.InTangent.Scale(h11 * dt)).
			Normalize()
	}
	return k0.Value.Slerp(k1.Value, alpha)
}

// SampleWeights evaluates a morph weights channel at t and writes the result into out,
// reusing its backing array. An empty channel yields a copy of rest.
func SampleWeights(ch *WeightsChannel, t float32, rest, out []float32) []float32 {
	switch len(ch.Keys) {
	case 0:
		return append(out[:0], rest...)
	case 1:
		return append(out[:0], ch.Keys[0].Value...)
	}
	i, alpha, dt, ok := bracket(ch.Keys, t)
	k0 := &ch.Keys[i]
	if !ok || ch.Mode == Step {
		return append(out[:0], k0.Value...)
	}
	k1 := &ch.Keys[i+1]
	if ch.Mode != CubicSpline {
		return math.LerpWeights(out, k0.Value, k1.Value, alpha)
	}

	h00, h10, h01, h11 := hermite(alpha)
	n := min(len(k0.Value), len(k1.Value))
	out = append(out[:0], k0.Value[:n]...)
	for j := 0; j < n; j++ {
		out[j] = h00*k0.Value[j] + h10*dt*at(k0.OutTangent, j) + h01*k1.Value[j] + h11*dt*at(k1.InTangent, j)
	}
	return out
}

func at(s []float32, i int) float32 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
