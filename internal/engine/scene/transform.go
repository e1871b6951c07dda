package scene

import (
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// CalculateLocalTransform rebuilds the local matrix from the rest pose unless an
// animation already wrote it this frame.
func (g *Graph) CalculateLocalTransform(id NodeID) math.Mat4 {
	n := &g.nodes[id]
	if !n.IsAnimated {
		n.LocalTransform = math.FromTRS(n.Translation, n.Rotation, n.Scale)
		if len(n.MorphWeights) == len(n.Weights) {
			copy(n.MorphWeights, n.Weights)
		}
	}
	return n.LocalTransform
}

// CalculateWorldTransform updates the global matrix from the parent's global matrix.
// The parent must already be up to date.
func (g *Graph) CalculateWorldTransform(id NodeID) math.Mat4 {
	n := &g.nodes[id]
	if n.InheritTransform && n.parent != NoNode {
		n.GlobalTransform = g.nodes[n.parent].GlobalTransform.Mul(n.LocalTransform)
	} else {
		n.GlobalTransform = n.LocalTransform
	}
	return n.GlobalTransform
}

// CalculateTransforms updates the local and global matrices of id and, when recursive,
// of every descendant.
func (g *Graph) CalculateTransforms(id NodeID, recursive bool) {
	g.CalculateLocalTransform(id)
	g.CalculateWorldTransform(id)
	if recursive {
		for _, c := range g.nodes[id].children {
			g.CalculateTransforms(c, true)
		}
	}
}

// CalculateBoneTransforms fills the bone matrices of every part of id.
// Parts whose bone slice does not match their bindings are left untouched.
func (g *Graph) CalculateBoneTransforms(id NodeID, recursive bool) {
	n := &g.nodes[id]
	for i := range n.Parts {
		part := &n.Parts[i]
		if len(part.Bones) != len(part.Bindings) {
			continue
		}
		for b, binding := range part.Bindings {
			if g.valid(binding.Node) {
				part.Bones[b] = g.nodes[binding.Node].GlobalTransform.Mul(binding.InverseBind)
			}
		}
	}
	if recursive {
		for _, c := range n.children {
			g.CalculateBoneTransforms(c, true)
		}
	}
}

// CalculateAll runs one full transform pass over every root, then one bone pass.
func (g *Graph) CalculateAll() {
	for _, r := range g.roots {
		g.CalculateTransforms(r, true)
	}
	for _, r := range g.roots {
		g.CalculateBoneTransforms(r, true)
	}
}
