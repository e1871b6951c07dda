package anim

import (
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Transform is a pose accumulator entry: one node's TRS and morph weights.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
	Weights     []float32
}

// Reset returns t to the identity pose, keeping the weights buffer.
func (t *Transform) Reset() {
	t.Translation = math.Vec3{}
	t.Rotation = math.QuatIdentity()
	t.Scale = math.Vec3One()
	t.Weights = t.Weights[:0]
}

// Set copies the given pose into t.
func (t *Transform) Set(translation math.Vec3, rotation math.Quat, scale math.Vec3, weights []float32) *Transform {
	t.Translation = translation
	t.Rotation = rotation
	t.Scale = scale
	t.Weights = append(t.Weights[:0], weights...)
	return t
}

// SetFrom copies other into t.
func (t *Transform) SetFrom(other *Transform) *Transform {
	return t.Set(other.Translation, other.Rotation, other.Scale, other.Weights)
}

// Lerp blends t towards target by alpha.
func (t *Transform) Lerp(target *Transform, alpha float32) *Transform {
	return t.LerpTo(target.Translation, target.Rotation, target.Scale, target.Weights, alpha)
}

// LerpTo blends t towards the given pose by alpha: linear for vectors and weights,
// shortest-path slerp for rotation.
func (t *Transform) LerpTo(translation math.Vec3, rotation math.Quat, scale math.Vec3, weights []float32, alpha float32) *Transform {
	t.Translation = t.Translation.Lerp(translation, alpha)
	t.Rotation = t.Rotation.Slerp(rotation, alpha)
	t.Scale = t.Scale.Lerp(scale, alpha)
	if len(weights) > 0 {
		if len(t.Weights) == 0 {
			t.Weights = append(t.Weights, weights...)
		} else {
			t.Weights = math.LerpWeights(t.Weights, t.Weights, weights, alpha)
		}
	}
	return t
}

// Matrix composes the transform as translation * rotation * scale.
func (t *Transform) Matrix() math.Mat4 {
	return math.FromTRS(t.Translation, t.Rotation, t.Scale)
}
