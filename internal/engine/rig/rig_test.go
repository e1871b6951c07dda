package rig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faultbox/midgard-anim/internal/engine/anim"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadHero(t *testing.T) *Model {
	t.Helper()
	doc, err := Load("testdata/hero.yaml")
	require.NoError(t, err)
	m, err := doc.Build()
	require.NoError(t, err)
	return m
}

func TestLoadHero(t *testing.T) {
	doc, err := Load("testdata/hero.yaml")
	require.NoError(t, err)
	assert.Equal(t, "hero", doc.Name)
	assert.Equal(t, 6, doc.NodeCount())
	assert.Len(t, doc.Animations, 3)
}

func TestBuildGraph(t *testing.T) {
	m := loadHero(t)
	g := m.Graph

	assert.Equal(t, 6, g.Len())
	assert.Len(t, g.Roots(), 2)

	head := g.Find("head", true, false)
	require.True(t, head.Valid())
	assert.Equal(t, g.Find("spine", true, false), g.Parent(head))
	assert.Equal(t, []float32{0, 0}, g.Node(head).Weights)

	want := math.Translate(0, 2, 0)
	assert.True(t, want.ApproxEqual(g.Node(head).GlobalTransform, 1e-6))

	body := g.Node(g.Find("body", false, false))
	assert.False(t, body.InheritTransform)
}

func TestBuildComputesInverseBind(t *testing.T) {
	m := loadHero(t)
	g := m.Graph
	body := g.Node(g.Find("body", false, false))
	require.Len(t, body.Parts, 1)

	part := body.Parts[0]
	assert.Equal(t, "skin", part.ID)
	require.Len(t, part.Bones, 3)
	for i, bone := range part.Bones {
		assert.True(t, math.Identity().ApproxEqual(bone, 1e-5), "bone %d at bind pose", i)
	}
}

func TestBuildAnimations(t *testing.T) {
	m := loadHero(t)
	lib := m.Animations
	assert.Equal(t, []string{"idle", "walk", "blink"}, lib.IDs())

	idle, _ := lib.Get("idle")
	assert.InDelta(t, 2, idle.Duration, 1e-6)

	walk, _ := lib.Get("walk")
	assert.InDelta(t, 1, walk.Duration, 1e-6, "duration defaults to the last keyframe")
	assert.Equal(t, anim.CubicSpline, walk.Tracks[1].Rotation.Mode)
	assert.InDelta(t, 1, walk.Tracks[1].Rotation.Keys[0].Value.Length(), 1e-6)

	blink, _ := lib.Get("blink")
	assert.Equal(t, anim.Step, blink.Tracks[0].Weights.Mode)
}

func TestInstanceSharesAnimations(t *testing.T) {
	m := loadHero(t)
	inst := m.Instance()

	assert.Same(t, m.Animations, inst.Animations)
	assert.NotSame(t, m.Graph, inst.Graph)

	c := inst.Controller(anim.Config{})
	_, err := c.SetAnimation("walk", anim.Loop())
	require.NoError(t, err)
	require.NoError(t, c.Update(0.5))

	hips := m.Graph.Find("hips", true, false)
	assert.False(t, m.Graph.Node(hips).IsAnimated, "prototype untouched")
	assert.True(t, inst.Graph.Node(hips).IsAnimated)
	assert.InDelta(t, 1.1, inst.Graph.Node(hips).LocalTransform.Translation().Y, 1e-5)
}

func TestBlinkSkipsMissingNode(t *testing.T) {
	m := loadHero(t)
	c := m.Controller(anim.Config{})
	_, err := c.SetAnimation("blink", anim.Once())
	require.NoError(t, err)
	require.NoError(t, c.Update(0.2))

	head := m.Graph.Node(m.Graph.Find("head", true, false))
	assert.Equal(t, []float32{0, 1}, head.MorphWeights)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "duplicate node",
			yaml: "nodes:\n  - id: a\n    children:\n      - id: a\n",
			want: ErrDuplicateNode,
		},
		{
			name: "unknown bone",
			yaml: "nodes:\n  - id: a\n    parts:\n      - id: p\n        bones:\n          - node: b\n",
			want: ErrUnknownNode,
		},
		{
			name: "bad translation",
			yaml: "nodes:\n  - id: a\n    translation: [1, 2]\n",
			want: ErrValueArity,
		},
		{
			name: "bad inverse bind",
			yaml: "nodes:\n  - id: a\n    parts:\n      - id: p\n        bones:\n          - node: a\n            inverse_bind: [1, 0, 0]\n",
			want: ErrValueArity,
		},
		{
			name: "bad key value",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        rotation:\n          keys:\n            - {time: 0, value: [0, 0, 1]}\n",
			want: ErrValueArity,
		},
		{
			name: "missing key value",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        scale:\n          keys:\n            - {time: 0}\n",
			want: ErrValueArity,
		},
		{
			name: "unsorted keys",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        translation:\n          keys:\n            - {time: 1, value: [0, 0, 0]}\n            - {time: 0, value: [0, 0, 0]}\n",
			want: anim.ErrUnsortedKeys,
		},
		{
			name: "cubic spline without tangents",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        translation:\n          interpolation: CUBICSPLINE\n          keys:\n            - {time: 0, value: [0, 0, 0]}\n            - {time: 1, value: [1, 0, 0]}\n",
			want: ErrMissingTangent,
		},
		{
			name: "cubic spline missing out tangent",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        rotation:\n          interpolation: cubicspline\n          keys:\n            - {time: 0, value: [0, 0, 0, 1], in: [0, 0, 0, 0]}\n",
			want: ErrMissingTangent,
		},
		{
			name: "duplicate animation",
			yaml: "nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks: []\n  - id: x\n    tracks: []\n",
			want: anim.ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = doc.Build()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildErrorNamesTrack(t *testing.T) {
	doc, err := Parse([]byte("nodes:\n  - id: hip\nanimations:\n  - id: x\n    tracks:\n      - node: hip\n        translation:\n          keys:\n            - {time: 0, value: [1, 2]}\n"))
	require.NoError(t, err)
	_, err = doc.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `animation "x" node "hip": translation: key 0`)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("name: empty\n"))
	assert.ErrorIs(t, err, ErrNoNodes)

	_, err = Parse([]byte("nodes:\n  - id: a\n    colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestUnknownInterpolation(t *testing.T) {
	doc, err := Parse([]byte("nodes:\n  - id: a\nanimations:\n  - id: x\n    tracks:\n      - node: a\n        scale:\n          interpolation: bezier\n          keys: []\n"))
	require.NoError(t, err)
	_, err = doc.Build()
	assert.ErrorContains(t, err, "bezier")
}

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := Load("testdata/hero.yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	assert.True(t, strings.Contains(buf.String(), "cubicspline"))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}
