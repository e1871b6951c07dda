package anim

import (
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary(t *testing.T) {
	lib := testLibrary(t)
	assert.Equal(t, 3, lib.Len())
	assert.Equal(t, []string{"walk", "wave", "ghost"}, lib.IDs())

	a, ok := lib.Get("wave")
	require.True(t, ok)
	assert.Equal(t, "wave", a.ID)
	_, ok = lib.Get("WAVE")
	assert.False(t, ok)

	assert.ErrorIs(t, lib.Add(walk()), ErrDuplicateID)
	_, err := NewLibrary(wave(), wave())
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestParseInterpolation(t *testing.T) {
	tests := []struct {
		in   string
		want Interpolation
	}{
		{"", Linear},
		{"linear", Linear},
		{"STEP", Step},
		{" CubicSpline ", CubicSpline},
		{"cubic", CubicSpline},
	}
	for _, tt := range tests {
		got, err := ParseInterpolation(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}
	_, err := ParseInterpolation("bezier")
	assert.Error(t, err)
	assert.Equal(t, "Interpolation(9)", Interpolation(9).String())
}

func mustParse(t *testing.T, s string) Interpolation {
	t.Helper()
	i, err := ParseInterpolation(s)
	require.NoError(t, err)
	return i
}

func TestAnimationValidate(t *testing.T) {
	assert.NoError(t, walk().Validate())
	assert.InDelta(t, 2, walk().EndTime(), eps)

	unsorted := walk()
	unsorted.Tracks[0].Rotation.Keys[0].Time = 3
	assert.ErrorIs(t, unsorted.Validate(), ErrUnsortedKeys)

	arity := &Animation{ID: "blink", Tracks: []Track{{
		NodeID: "hip",
		Weights: WeightsChannel{Keys: []WeightsKey{
			{Time: 0, Value: []float32{0, 1}},
			{Time: 1, Value: []float32{1}},
		}},
	}}}
	assert.ErrorIs(t, arity.Validate(), ErrWeightArity)

	tangents := &Animation{ID: "blink", Tracks: []Track{{
		NodeID: "hip",
		Weights: WeightsChannel{Mode: CubicSpline, Keys: []WeightsKey{
			{Time: 0, Value: []float32{0, 1}, OutTangent: []float32{1}},
		}},
	}}}
	assert.ErrorIs(t, tangents.Validate(), ErrWeightArity)
}

func TestTransformLerp(t *testing.T) {
	var tr Transform
	tr.Reset()
	target := Transform{
		Translation: math.Vec3{X: 2},
		Rotation:    math.QuatFromAxisAngle(axisY, 1),
		Scale:       math.Vec3{X: 3, Y: 3, Z: 3},
		Weights:     []float32{1, 1},
	}
	tr.Lerp(&target, 0.5)

	assertVec3(t, math.Vec3{X: 1}, tr.Translation)
	assertVec3(t, math.Vec3{X: 2, Y: 2, Z: 2}, tr.Scale)
	assertQuat(t, math.QuatFromAxisAngle(axisY, 0.5), tr.Rotation)
	assert.Equal(t, []float32{1, 1}, tr.Weights, "weights without a source are copied")

	tr.Lerp(&Transform{Rotation: tr.Rotation, Scale: tr.Scale, Weights: []float32{0, 0}}, 0.5)
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, tr.Weights, eps)
}

func TestLibrarySuggest(t *testing.T) {
	lib := testLibrary(t)
	tests := []struct {
		in, want string
	}{
		{"wlak", "walk"},
		{"Wave", "wave"},
		{"ghosts", "ghost"},
		{"jump", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lib.Suggest(tt.in), tt.in)
	}
}
