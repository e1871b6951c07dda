package anim

import (
	"testing"

	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassBracket(t *testing.T) {
	g, _, _ := testRig(t)
	a := NewApplier(g)

	pass, err := a.Begin()
	require.NoError(t, err)
	assert.True(t, a.Active())

	_, err = a.Begin()
	assert.ErrorIs(t, err, ErrPassActive)
	assert.ErrorIs(t, a.ApplyDirect(walk(), 0), ErrPassActive)

	require.NoError(t, pass.End())
	assert.False(t, a.Active())
	assert.ErrorIs(t, pass.End(), ErrNoPass)
	assert.ErrorIs(t, pass.Apply(walk(), 0, 1), ErrNoPass)

	var none *Pass
	assert.ErrorIs(t, none.Apply(walk(), 0, 1), ErrNoPass)

	_, err = a.Begin()
	assert.NoError(t, err, "a new pass can start after End")
}

func TestApplyDirect(t *testing.T) {
	g, hip, arm := testRig(t)
	a := NewApplier(g)
	w := walk()

	require.NoError(t, a.ApplyDirect(w, 0.5))

	h := g.Node(hip)
	assert.True(t, h.IsAnimated)
	assert.False(t, g.Node(arm).IsAnimated)

	p := pose(w, 0, h, 0.5)
	want := math.FromTRS(p.Translation, p.Rotation, p.Scale)
	requireMatrix(t, want, h.LocalTransform)
	requireMatrix(t, h.GlobalTransform.Mul(g.Node(arm).LocalTransform), g.Node(arm).GlobalTransform)

	a.Release(w)
	assert.False(t, h.IsAnimated)
	g.CalculateAll()
	requireMatrix(t, math.Translate(0, 1, 0), h.LocalTransform)
}

func TestApplyDirectSkipsMissingNodes(t *testing.T) {
	g, hip, arm := testRig(t)
	a := NewApplier(g)

	require.NoError(t, a.ApplyDirect(ghost(), 0))
	assert.False(t, g.Node(hip).IsAnimated)
	assert.False(t, g.Node(arm).IsAnimated)
	require.NoError(t, a.ApplyDirect(nil, 0))
}

func TestPassBlendsTowardsSecondAnimation(t *testing.T) {
	g, hip, _ := testRig(t)
	a := NewApplier(g)
	w, v := walk(), wave()

	pass, err := a.Begin()
	require.NoError(t, err)
	require.NoError(t, pass.Apply(w, 1, 1))
	require.NoError(t, pass.Apply(v, 0.5, 0.25))
	require.NoError(t, pass.End())

	h := g.Node(hip)
	pw := pose(w, 0, h, 1)
	pv := pose(v, 0, h, 0.5)
	want := math.FromTRS(
		pw.Translation.Lerp(pv.Translation, 0.25),
		pw.Rotation.Slerp(pv.Rotation, 0.25),
		math.Vec3One(),
	)
	requireMatrix(t, want, h.LocalTransform)
}

func TestPassNeutralBlend(t *testing.T) {
	g, hip, arm := testRig(t)
	a := NewApplier(g)

	pass, err := a.Begin()
	require.NoError(t, err)
	// wave scales the arm to 1.5; walk leaves it alone, so it drifts back to rest.
	require.NoError(t, pass.Apply(wave(), 0.5, 1))
	require.NoError(t, pass.Apply(walk(), 1, 0.5))
	require.NoError(t, pass.End())

	s := float32(1.25)
	requireMatrix(t, math.Scale(s, s, s), g.Node(arm).LocalTransform)
	assert.True(t, g.Node(arm).IsAnimated)
	assert.True(t, g.Node(hip).IsAnimated)
}

func TestPassSeedsNewEntriesFromRest(t *testing.T) {
	g, hip, _ := testRig(t)
	a := NewApplier(g)
	w := walk()

	pass, err := a.Begin()
	require.NoError(t, err)
	require.NoError(t, pass.Apply(w, 2, 0.5))
	require.NoError(t, pass.End())

	h := g.Node(hip)
	p := pose(w, 0, h, 2)
	want := math.FromTRS(
		h.Translation.Lerp(p.Translation, 0.5),
		h.Rotation.Slerp(p.Rotation, 0.5),
		math.Vec3One(),
	)
	requireMatrix(t, want, h.LocalTransform)
}

func TestPassReturnsEntriesToPool(t *testing.T) {
	g, _, _ := testRig(t)
	a := NewApplier(g)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.ApplyBlend(walk(), 0.3, wave(), 0.6, 0.4))
		assert.Zero(t, a.Pool().Outstanding())
	}
	assert.Equal(t, 2, a.Pool().Created(), "entries are reused across passes")
	assert.Len(t, a.bindings, 2, "bindings are kept per animation id")
}

func TestPassApplyNil(t *testing.T) {
	g, hip, _ := testRig(t)
	a := NewApplier(g)
	w := walk()

	pass, err := a.Begin()
	require.NoError(t, err)
	require.NoError(t, pass.Apply(w, 1, 1))
	require.NoError(t, pass.Apply(nil, 0, 0.5))
	require.NoError(t, pass.End())

	p := pose(w, 0, g.Node(hip), 1)
	requireMatrix(t, math.FromTRS(p.Translation, p.Rotation, p.Scale), g.Node(hip).LocalTransform)
}

func TestApplyRebindsAfterGraphChange(t *testing.T) {
	g, _, _ := testRig(t)
	a := NewApplier(g)
	gh := ghost()

	require.NoError(t, a.ApplyDirect(gh, 0))

	tail := g.Add(scene.NewNode("tail"))
	_, err := g.AddChild(g.Roots()[0], tail)
	require.NoError(t, err)

	require.NoError(t, a.ApplyDirect(gh, 0))
	assert.True(t, g.Node(tail).IsAnimated)
	requireMatrix(t, math.Translate(1, 0, 0), g.Node(tail).LocalTransform)
}

func TestApplyBlendEndpoints(t *testing.T) {
	g, hip, _ := testRig(t)
	a := NewApplier(g)
	w, v := walk(), wave()

	require.NoError(t, a.ApplyBlend(w, 1, v, 0.5, 0))
	h := g.Node(hip)
	p := pose(w, 0, h, 1)
	requireMatrix(t, math.FromTRS(p.Translation, p.Rotation, p.Scale), h.LocalTransform)

	require.NoError(t, a.ApplyBlend(w, 1, v, 0.5, 1))
	p = pose(v, 0, h, 0.5)
	requireMatrix(t, math.FromTRS(p.Translation, p.Rotation, p.Scale), h.LocalTransform)
	assert.Zero(t, a.Pool().Created())
}

func TestApplyMorphWeights(t *testing.T) {
	g, hip, _ := testRig(t)
	g.Node(hip).Weights = []float32{0, 0}
	a := NewApplier(g)
	blink := &Animation{ID: "blink", Duration: 1, Tracks: []Track{{
		NodeID: "hip",
		Weights: WeightsChannel{Keys: []WeightsKey{
			{Time: 0, Value: []float32{0, 1}},
			{Time: 1, Value: []float32{1, 0}},
		}},
	}}}

	require.NoError(t, a.ApplyDirect(blink, 0.5))
	assert.InDeltaSlice(t, []float32{0.5, 0.5}, g.Node(hip).MorphWeights, eps)

	pass, err := a.Begin()
	require.NoError(t, err)
	require.NoError(t, pass.Apply(blink, 1, 0.5))
	require.NoError(t, pass.End())
	assert.InDeltaSlice(t, []float32{0.5, 0}, g.Node(hip).MorphWeights, eps)
}
