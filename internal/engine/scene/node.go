// Package scene provides the hierarchical transform graph that animations drive.
//
// Nodes live in a Graph arena and are addressed by NodeID handles. A node owns the
// ordered list of its children; the parent link is a plain handle and never owns.
package scene

import (
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// NodeID is a stable handle to a node inside a Graph.
type NodeID int32

// NoNode is the handle used for "no parent" and failed lookups.
const NoNode NodeID = -1

// Valid reports whether id can refer to a node.
func (id NodeID) Valid() bool {
	return id >= 0
}

// Node is one element of the transform hierarchy.
type Node struct {
	ID string

	// Rest pose.
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3

	// Weights holds the rest morph target weights. MorphWeights is the value for the
	// current frame and has the same length.
	Weights      []float32
	MorphWeights []float32

	LocalTransform  math.Mat4
	GlobalTransform math.Mat4

	// InheritTransform makes the global transform relative to the parent.
	InheritTransform bool

	// IsAnimated is set while an animation owns LocalTransform for this frame.
	IsAnimated bool

	Parts []Part

	parent   NodeID
	children []NodeID
}

// NewNode returns a node at the identity rest pose.
func NewNode(id string) Node {
	return Node{
		ID:               id,
		Rotation:         math.QuatIdentity(),
		Scale:            math.Vec3One(),
		LocalTransform:   math.Identity(),
		GlobalTransform:  math.Identity(),
		InheritTransform: true,
		parent:           NoNode,
	}
}

// BoneBinding ties one bone node to its inverse bind transform.
type BoneBinding struct {
	Node        NodeID
	InverseBind math.Mat4
}

// Part is a skinned mesh part. Bones receives one matrix per binding.
type Part struct {
	ID       string
	Bindings []BoneBinding
	Bones    []math.Mat4
}

// NewPart returns a part with a bone output slot for every binding.
func NewPart(id string, bindings []BoneBinding) Part {
	return Part{
		ID:       id,
		Bindings: bindings,
		Bones:    make([]math.Mat4, len(bindings)),
	}
}
