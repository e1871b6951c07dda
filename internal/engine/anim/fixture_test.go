package anim

import (
	"testing"

	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"github.com/stretchr/testify/require"
)

var (
	axisX = math.Vec3{X: 1}
	axisY = math.Vec3{Y: 1}
)

// testRig builds root -> hip -> arm. The hip rests one unit above the root.
func testRig(t *testing.T) (g *scene.Graph, hip, arm scene.NodeID) {
	t.Helper()
	g = scene.NewGraph()
	root := g.Add(scene.NewNode("root"))
	hipNode := scene.NewNode("hip")
	hipNode.Translation = math.Vec3{Y: 1}
	hip = g.Add(hipNode)
	arm = g.Add(scene.NewNode("arm"))
	_, err := g.AddChild(root, hip)
	require.NoError(t, err)
	_, err = g.AddChild(hip, arm)
	require.NoError(t, err)
	g.CalculateAll()
	return g, hip, arm
}

// walk moves and turns the hip over two seconds.
func walk() *Animation {
	return &Animation{ID: "walk", Duration: 2, Tracks: []Track{{
		NodeID: "hip",
		Translation: Vec3Channel{Keys: []Vec3Key{
			{Time: 0, Value: math.Vec3{}},
			{Time: 2, Value: math.Vec3{X: 2}},
		}},
		Rotation: QuatChannel{Keys: []QuatKey{
			{Time: 0, Value: math.QuatIdentity()},
			{Time: 2, Value: math.QuatFromAxisAngle(axisY, 1)},
		}},
	}}}
}

// wave drives the hip and scales the arm over one second.
func wave() *Animation {
	return &Animation{ID: "wave", Duration: 1, Tracks: []Track{
		{
			NodeID: "hip",
			Translation: Vec3Channel{Keys: []Vec3Key{
				{Time: 0, Value: math.Vec3{Y: 4}},
				{Time: 1, Value: math.Vec3{Z: 4}},
			}},
			Rotation: QuatChannel{Keys: []QuatKey{
				{Time: 0, Value: math.QuatFromAxisAngle(axisX, 0.5)},
				{Time: 1, Value: math.QuatFromAxisAngle(axisX, 1.5)},
			}},
		},
		{
			NodeID: "arm",
			Scale: Vec3Channel{Keys: []Vec3Key{
				{Time: 0, Value: math.Vec3One()},
				{Time: 1, Value: math.Vec3{X: 2, Y: 2, Z: 2}},
			}},
		},
	}}
}

// ghost only animates a node that no test rig has.
func ghost() *Animation {
	return &Animation{ID: "ghost", Duration: 1, Tracks: []Track{{
		NodeID: "tail",
		Translation: Vec3Channel{Keys: []Vec3Key{
			{Time: 0, Value: math.Vec3{X: 1}},
		}},
	}}}
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary(walk(), wave(), ghost())
	require.NoError(t, err)
	return lib
}

// pose samples one track the way the applier does.
func pose(a *Animation, track int, n *scene.Node, time float32) Transform {
	tr := &a.Tracks[track]
	return Transform{
		Translation: SampleVec3(&tr.Translation, time, n.Translation),
		Rotation:    SampleQuat(&tr.Rotation, time, n.Rotation),
		Scale:       SampleVec3(&tr.Scale, time, n.Scale),
	}
}

func requireMatrix(t *testing.T, want, got math.Mat4) {
	t.Helper()
	require.True(t, want.ApproxEqual(got, 1e-5), "want %v\ngot  %v", want, got)
}
