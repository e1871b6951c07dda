package anim

import (
	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"go.uber.org/zap"
)

// fullWeight is the weight above which a blend overwrites instead of interpolating.
const fullWeight = 0.999999

// Applier writes sampled animation poses into a scene graph.
//
// Direct mode writes a single animation straight into node local transforms.
// Blend mode accumulates several weighted animations inside a Pass and commits them
// together when the pass ends.
type Applier struct {
	graph   *scene.Graph
	pool    *Pool[Transform]
	pending map[scene.NodeID]*Transform
	active  bool

	// bindings caches the node handle of every track per animation id. Entries are
	// resolved again when the animation value or the graph structure changes.
	bindings map[string]binding
	sample   Transform
}

type binding struct {
	anim    *Animation
	version uint64
	ids     []scene.NodeID
}

// NewApplier creates an applier for graph.
func NewApplier(graph *scene.Graph) *Applier {
	return &Applier{
		graph:    graph,
		pool:     NewPool((*Transform).Reset),
		pending:  make(map[scene.NodeID]*Transform),
		bindings: make(map[string]binding),
	}
}

// Pool exposes the accumulator pool, mainly for warmup and leak checks.
func (a *Applier) Pool() *Pool[Transform] {
	return a.pool
}

// Active reports whether a pass is open.
func (a *Applier) Active() bool {
	return a.active
}

// nodes resolves the node of every track of anim. Tracks for nodes missing from this
// graph resolve to scene.NoNode and are skipped. Animations are treated as immutable:
// changing the tracks of an animation already applied needs a new *Animation.
func (a *Applier) nodes(anim *Animation) []scene.NodeID {
	b, ok := a.bindings[anim.ID]
	if ok && b.anim == anim && b.version == a.graph.Version() {
		return b.ids
	}
	ids := b.ids[:0]
	if cap(ids) < len(anim.Tracks) {
		ids = make([]scene.NodeID, len(anim.Tracks))
	}
	ids = ids[:len(anim.Tracks)]
	missing := 0
	for i := range anim.Tracks {
		ids[i] = a.graph.Find(anim.Tracks[i].NodeID, true, false)
		if ids[i] == scene.NoNode {
			missing++
		}
	}
	if missing > 0 {
		logger.Debug("animation tracks without a node",
			zap.String("animation", anim.ID),
			zap.Int("missing", missing),
			zap.Int("tracks", len(anim.Tracks)),
		)
	}
	a.bindings[anim.ID] = binding{anim: anim, version: a.graph.Version(), ids: ids}
	return ids
}

// sampleTrack evaluates all channels of a track at t into a.sample.
func (a *Applier) sampleTrack(tr *Track, n *scene.Node, t float32) *Transform {
	s := &a.sample
	s.Translation = SampleVec3(&tr.Translation, t, n.Translation)
	s.Rotation = SampleQuat(&tr.Rotation, t, n.Rotation)
	s.Scale = SampleVec3(&tr.Scale, t, n.Scale)
	s.Weights = SampleWeights(&tr.Weights, t, n.Weights, s.Weights)
	return s
}

// ApplyDirect samples anim at time, writes every track straight into its node and
// recomputes the graph's transforms.
func (a *Applier) ApplyDirect(anim *Animation, time float32) error {
	if a.active {
		return ErrPassActive
	}
	if anim == nil {
		return nil
	}
	for i, id := range a.nodes(anim) {
		if id == scene.NoNode {
			continue
		}
		n := a.graph.Node(id)
		n.IsAnimated = true
		s := a.sampleTrack(&anim.Tracks[i], n, time)
		n.LocalTransform = s.Matrix()
		commitWeights(n, s.Weights)
	}
	a.graph.CalculateAll()
	return nil
}

// ApplyBlend poses the graph with anim1 at time1 blended towards anim2 at time2 by weight.
// A nil animation or a weight at either end reduces to direct mode.
func (a *Applier) ApplyBlend(anim1 *Animation, time1 float32, anim2 *Animation, time2, weight float32) error {
	switch {
	case anim2 == nil || weight == 0:
		return a.ApplyDirect(anim1, time1)
	case anim1 == nil || weight == 1:
		return a.ApplyDirect(anim2, time2)
	}
	pass, err := a.Begin()
	if err != nil {
		return err
	}
	if err := pass.Apply(anim1, time1, 1); err != nil {
		pass.End()
		return err
	}
	if err := pass.Apply(anim2, time2, weight); err != nil {
		pass.End()
		return err
	}
	return pass.End()
}

// Release clears the animated flag of every node driven by anim, handing the nodes
// back to their rest pose on the next transform pass.
func (a *Applier) Release(anim *Animation) {
	if anim == nil {
		return
	}
	for _, id := range a.nodes(anim) {
		if n := a.graph.Node(id); n != nil {
			n.IsAnimated = false
		}
	}
}

// Begin opens a blend pass. The returned Pass must be ended; it is the only way to
// apply weighted animations.
func (a *Applier) Begin() (*Pass, error) {
	if a.active {
		return nil, ErrPassActive
	}
	a.active = true
	return &Pass{applier: a}, nil
}

// Pass is an open blend bracket returned by Applier.Begin.
type Pass struct {
	applier *Applier
	done    bool
}

// Apply accumulates anim sampled at time with the given weight.
//
// Nodes already in the accumulator are overwritten (weight ~1) or blended towards the
// sample; new nodes start from their rest pose. Accumulated nodes that anim does not
// touch are blended towards their rest pose by weight.
func (p *Pass) Apply(anim *Animation, time, weight float32) error {
	if p == nil || p.done {
		return ErrNoPass
	}
	if anim == nil {
		return nil
	}
	a := p.applier
	for id := range a.pending {
		a.graph.Node(id).IsAnimated = false
	}

	for i, id := range a.nodes(anim) {
		if id == scene.NoNode {
			continue
		}
		n := a.graph.Node(id)
		n.IsAnimated = true
		s := a.sampleTrack(&anim.Tracks[i], n, time)

		if t, ok := a.pending[id]; ok {
			if weight > fullWeight {
				t.SetFrom(s)
			} else {
				t.Lerp(s, weight)
			}
			continue
		}
		t := a.pool.Get()
		if weight > fullWeight {
			t.SetFrom(s)
		} else {
			t.Set(n.Translation, n.Rotation, n.Scale, n.Weights).Lerp(s, weight)
		}
		a.pending[id] = t
	}

	for id, t := range a.pending {
		n := a.graph.Node(id)
		if !n.IsAnimated {
			n.IsAnimated = true
			t.LerpTo(n.Translation, n.Rotation, n.Scale, n.Weights, weight)
		}
	}
	return nil
}

// End commits the accumulated pose into the graph, returns every entry to the pool
// and recomputes transforms once. Calling End twice returns ErrNoPass.
func (p *Pass) End() error {
	if p == nil || p.done {
		return ErrNoPass
	}
	p.done = true
	a := p.applier
	for id, t := range a.pending {
		n := a.graph.Node(id)
		n.LocalTransform = t.Matrix()
		commitWeights(n, t.Weights)
		a.pool.Put(t)
	}
	clear(a.pending)
	a.active = false
	a.graph.CalculateAll()
	return nil
}

func commitWeights(n *scene.Node, weights []float32) {
	if len(weights) == 0 {
		return
	}
	if len(n.MorphWeights) != len(weights) {
		n.MorphWeights = make([]float32, len(weights))
	}
	copy(n.MorphWeights, weights)
}
