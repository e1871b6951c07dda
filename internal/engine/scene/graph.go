package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Graph errors.
var (
	ErrCycle       = errors.New("cannot insert a node as a descendant of itself")
	ErrInvalidNode = errors.New("invalid node handle")
)

// Graph is an arena of nodes forming a forest. Handles stay valid for the life of the graph.
// A Graph is not safe for concurrent use.
type Graph struct {
	nodes []Node
	roots []NodeID

	version uint64
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add stores n as a new root node and returns its handle.
// Any parent or children recorded in n are ignored.
func (g *Graph) Add(n Node) NodeID {
	n.parent = NoNode
	n.children = nil
	if len(n.MorphWeights) != len(n.Weights) {
		n.MorphWeights = append([]float32(nil), n.Weights...)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.roots = append(g.roots, id)
	g.version++
	return id
}

// Version changes whenever a node is added or moved. Caches of handles resolved by
// Find compare it to detect a restructured graph. Renaming a node's ID does not
// change it.
func (g *Graph) Version() uint64 {
	return g.version
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node for id, or nil if id is not part of the graph.
func (g *Graph) Node(id NodeID) *Node {
	if !g.valid(id) {
		return nil
	}
	return &g.nodes[id]
}

// Parent returns the parent of id, or NoNode.
func (g *Graph) Parent(id NodeID) NodeID {
	if !g.valid(id) {
		return NoNode
	}
	return g.nodes[id].parent
}

// Children returns the ordered children of id. The slice must not be modified.
func (g *Graph) Children(id NodeID) []NodeID {
	if !g.valid(id) {
		return nil
	}
	return g.nodes[id].children
}

// Roots returns the nodes without a parent. The slice must not be modified.
func (g *Graph) Roots() []NodeID {
	return g.roots
}

// IsAncestor reports whether ancestor is id itself or one of its parents.
func (g *Graph) IsAncestor(ancestor, id NodeID) bool {
	for p := id; g.valid(p); p = g.nodes[p].parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// InsertChild makes child a child of parent at index and returns the index used.
// An index outside [0, len(children)) appends. The child is first detached from its
// current parent. ErrCycle is returned, and the graph left untouched, when child is
// parent or one of its ancestors.
func (g *Graph) InsertChild(parent NodeID, index int, child NodeID) (int, error) {
	if !g.valid(parent) || !g.valid(child) {
		return -1, fmt.Errorf("insert %d under %d: %w", child, parent, ErrInvalidNode)
	}
	if g.IsAncestor(child, parent) {
		return -1, fmt.Errorf("insert %q under %q: %w", g.nodes[child].ID, g.nodes[parent].ID, ErrCycle)
	}

	g.Detach(child)
	g.removeRoot(child)

	p := &g.nodes[parent]
	if index < 0 || index >= len(p.children) {
		index = len(p.children)
		p.children = append(p.children, child)
	} else {
		p.children = append(p.children, NoNode)
		copy(p.children[index+1:], p.children[index:])
		p.children[index] = child
	}
	g.nodes[child].parent = parent
	g.version++
	return index, nil
}

// AddChild appends child to the children of parent.
func (g *Graph) AddChild(parent, child NodeID) (int, error) {
	return g.InsertChild(parent, -1, child)
}

// RemoveChild detaches child from parent, making it a root.
// It returns false when child is not a direct child of parent.
func (g *Graph) RemoveChild(parent, child NodeID) bool {
	if !g.valid(parent) || !g.valid(child) || g.nodes[child].parent != parent {
		return false
	}
	p := &g.nodes[parent]
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	g.nodes[child].parent = NoNode
	g.roots = append(g.roots, child)
	g.version++
	return true
}

// Detach removes id from its parent, if any.
func (g *Graph) Detach(id NodeID) {
	if p := g.Parent(id); p != NoNode {
		g.RemoveChild(p, id)
	}
}

// Find searches the roots for a node named id, descending into children when recursive.
func (g *Graph) Find(id string, recursive, ignoreCase bool) NodeID {
	return g.find(g.roots, id, recursive, ignoreCase)
}

// FindIn searches the children of parent like Find.
func (g *Graph) FindIn(parent NodeID, id string, recursive, ignoreCase bool) NodeID {
	return g.find(g.Children(parent), id, recursive, ignoreCase)
}

func (g *Graph) find(ids []NodeID, id string, recursive, ignoreCase bool) NodeID {
	for _, n := range ids {
		if matchID(g.nodes[n].ID, id, ignoreCase) {
			return n
		}
	}
	if recursive {
		for _, n := range ids {
			if found := g.find(g.nodes[n].children, id, true, ignoreCase); found != NoNode {
				return found
			}
		}
	}
	return NoNode
}

func matchID(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Clone returns a deep copy of the graph. Handles are preserved, so a handle
// resolved on the original addresses the same node in the clone.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:   make([]Node, len(g.nodes)),
		roots:   append([]NodeID(nil), g.roots...),
		version: g.version,
	}
	for i := range g.nodes {
		n := g.nodes[i]
		n.children = append([]NodeID(nil), n.children...)
		n.Weights = append([]float32(nil), n.Weights...)
		n.MorphWeights = append([]float32(nil), n.MorphWeights...)
		if n.Parts != nil {
			parts := make([]Part, len(n.Parts))
			for j, p := range n.Parts {
				parts[j] = Part{
					ID:       p.ID,
					Bindings: append([]BoneBinding(nil), p.Bindings...),
					Bones:    append([]math.Mat4(nil), p.Bones...),
				}
			}
			n.Parts = parts
		}
		c.nodes[i] = n
	}
	return c
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

func (g *Graph) removeRoot(id NodeID) {
	for i, r := range g.roots {
		if r == id {
			g.roots = append(g.roots[:i], g.roots[i+1:]...)
			return
		}
	}
}
