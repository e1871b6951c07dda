package rig

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/internal/engine/anim"
	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/math"
	"go.uber.org/zap"
)

// Model is a built rig: the graph prototype and its animation library.
type Model struct {
	Name       string
	Graph      *scene.Graph
	Animations *anim.Library
}

// Instance returns a copy of the model with its own graph. The animation library is
// shared, so instances are cheap and may be driven by separate controllers.
func (m *Model) Instance() *Model {
	return &Model{
		Name:       m.Name,
		Graph:      m.Graph.Clone(),
		Animations: m.Animations,
	}
}

// Controller creates an animation controller for this model's graph.
func (m *Model) Controller(cfg anim.Config) *anim.Controller {
	return anim.NewController(m.Graph, m.Animations, cfg)
}

// Build converts the document into a graph at its bind pose and an animation library.
func (d *Document) Build() (*Model, error) {
	if len(d.Nodes) == 0 {
		return nil, ErrNoNodes
	}
	b := builder{
		graph: scene.NewGraph(),
		ids:   make(map[string]scene.NodeID),
	}
	for i := range d.Nodes {
		if _, err := b.addNode(&d.Nodes[i], scene.NoNode); err != nil {
			return nil, err
		}
	}

	// Inverse binds default to the bind pose, so transforms must be current first.
	b.graph.CalculateAll()
	for _, p := range b.parts {
		if err := b.bindPart(p); err != nil {
			return nil, err
		}
	}
	b.graph.CalculateAll()

	lib, err := anim.NewLibrary()
	if err != nil {
		return nil, err
	}
	for i := range d.Animations {
		a, err := b.buildAnimation(&d.Animations[i])
		if err != nil {
			return nil, err
		}
		if err := lib.Add(a); err != nil {
			return nil, err
		}
	}

	logger.Debug("rig built",
		zap.String("rig", d.Name),
		zap.Int("nodes", b.graph.Len()),
		zap.Int("animations", lib.Len()),
	)
	return &Model{Name: d.Name, Graph: b.graph, Animations: lib}, nil
}

type pendingPart struct {
	node scene.NodeID
	doc  *PartDoc
}

type builder struct {
	graph *scene.Graph
	ids   map[string]scene.NodeID
	parts []pendingPart
}

func (b *builder) addNode(doc *NodeDoc, parent scene.NodeID) (scene.NodeID, error) {
	if _, ok := b.ids[doc.ID]; ok {
		return scene.NoNode, fmt.Errorf("node %q: %w", doc.ID, ErrDuplicateNode)
	}
	n := scene.NewNode(doc.ID)
	var err error
	if n.Translation, err = vec3(doc.Translation, n.Translation); err != nil {
		return scene.NoNode, fmt.Errorf("node %q translation: %w", doc.ID, err)
	}
	if n.Rotation, err = quat(doc.Rotation, n.Rotation); err != nil {
		return scene.NoNode, fmt.Errorf("node %q rotation: %w", doc.ID, err)
	}
	if n.Scale, err = vec3(doc.Scale, n.Scale); err != nil {
		return scene.NoNode, fmt.Errorf("node %q scale: %w", doc.ID, err)
	}
	n.Weights = append([]float32(nil), doc.Weights...)
	if doc.Inherit != nil {
		n.InheritTransform = *doc.Inherit
	}

	id := b.graph.Add(n)
	b.ids[doc.ID] = id
	if parent != scene.NoNode {
		if _, err := b.graph.AddChild(parent, id); err != nil {
			return scene.NoNode, fmt.Errorf("node %q: %w", doc.ID, err)
		}
	}
	for i := range doc.Parts {
		b.parts = append(b.parts, pendingPart{node: id, doc: &doc.Parts[i]})
	}
	for i := range doc.Children {
		if _, err := b.addNode(&doc.Children[i], id); err != nil {
			return scene.NoNode, err
		}
	}
	return id, nil
}

func (b *builder) bindPart(p pendingPart) error {
	bindings := make([]scene.BoneBinding, 0, len(p.doc.Bones))
	for _, bone := range p.doc.Bones {
		id, ok := b.ids[bone.Node]
		if !ok {
			return fmt.Errorf("part %q bone %q: %w", p.doc.ID, bone.Node, ErrUnknownNode)
		}
		inv := b.graph.Node(id).GlobalTransform.Inverse()
		if bone.InverseBind != nil {
			if len(bone.InverseBind) != 16 {
				return fmt.Errorf("part %q bone %q inverse_bind has %d values: %w",
					p.doc.ID, bone.Node, len(bone.InverseBind), ErrValueArity)
			}
			copy(inv[:], bone.InverseBind)
		}
		bindings = append(bindings, scene.BoneBinding{Node: id, InverseBind: inv})
	}
	n := b.graph.Node(p.node)
	n.Parts = append(n.Parts, scene.NewPart(p.doc.ID, bindings))
	return nil
}

func (b *builder) buildAnimation(doc *AnimationDoc) (*anim.Animation, error) {
	a := &anim.Animation{ID: doc.ID, Duration: doc.Duration}
	missing := 0
	for i := range doc.Tracks {
		td := &doc.Tracks[i]
		if _, ok := b.ids[td.Node]; !ok {
			missing++
		}
		tr, err := buildTrack(td)
		if err != nil {
			return nil, fmt.Errorf("animation %q node %q: %w", doc.ID, td.Node, err)
		}
		a.Tracks = append(a.Tracks, tr)
	}
	if missing > 0 {
		logger.Warn("animation references nodes missing from rig",
			zap.String("animation", doc.ID),
			zap.Int("tracks", missing),
		)
	}
	if a.Duration <= 0 {
		a.Duration = a.EndTime()
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func buildTrack(doc *TrackDoc) (anim.Track, error) {
	tr := anim.Track{NodeID: doc.Node}
	var err error
	if tr.Translation, err = vec3Channel(doc.Translation); err != nil {
		return tr, fmt.Errorf("translation: %w", err)
	}
	if tr.Rotation, err = quatChannel(doc.Rotation); err != nil {
		return tr, fmt.Errorf("rotation: %w", err)
	}
	if tr.Scale, err = vec3Channel(doc.Scale); err != nil {
		return tr, fmt.Errorf("scale: %w", err)
	}
	if tr.Weights, err = weightsChannel(doc.Weights); err != nil {
		return tr, fmt.Errorf("weights: %w", err)
	}
	return tr, nil
}

func vec3Channel(doc *ChannelDoc) (anim.Vec3Channel, error) {
	var ch anim.Vec3Channel
	if doc == nil {
		return ch, nil
	}
	mode, err := anim.ParseInterpolation(doc.Interpolation)
	if err != nil {
		return ch, err
	}
	ch.Mode = mode
	if err := checkTangents(mode, doc.Keys); err != nil {
		return ch, err
	}
	ch.Keys = make([]anim.Vec3Key, len(doc.Keys))
	for i, k := range doc.Keys {
		key := &ch.Keys[i]
		key.Time = k.Time
		if key.Value, err = vec3(k.Value, math.Vec3{}); err != nil || k.Value == nil {
			return ch, keyError(i, "value", len(k.Value), 3)
		}
		if key.InTangent, err = vec3(k.In, math.Vec3{}); err != nil {
			return ch, keyError(i, "in", len(k.In), 3)
		}
		if key.OutTangent, err = vec3(k.Out, math.Vec3{}); err != nil {
			return ch, keyError(i, "out", len(k.Out), 3)
		}
	}
	return ch, nil
}

func quatChannel(doc *ChannelDoc) (anim.QuatChannel, error) {
	var ch anim.QuatChannel
	if doc == nil {
		return ch, nil
	}
	mode, err := anim.ParseInterpolation(doc.Interpolation)
	if err != nil {
		return ch, err
	}
	ch.Mode = mode
	if err := checkTangents(mode, doc.Keys); err != nil {
		return ch, err
	}
	ch.Keys = make([]anim.QuatKey, len(doc.Keys))
	for i, k := range doc.Keys {
		key := &ch.Keys[i]
		key.Time = k.Time
		if key.Value, err = quat(k.Value, math.Quat{}); err != nil || k.Value == nil {
			return ch, keyError(i, "value", len(k.Value), 4)
		}
		if key.InTangent, err = tangent(k.In); err != nil {
			return ch, keyError(i, "in", len(k.In), 4)
		}
		if key.OutTangent, err = tangent(k.Out); err != nil {
			return ch, keyError(i, "out", len(k.Out), 4)
		}
	}
	return ch, nil
}

func weightsChannel(doc *ChannelDoc) (anim.WeightsChannel, error) {
	var ch anim.WeightsChannel
	if doc == nil {
		return ch, nil
	}
	mode, err := anim.ParseInterpolation(doc.Interpolation)
	if err != nil {
		return ch, err
	}
	ch.Mode = mode
	if err := checkTangents(mode, doc.Keys); err != nil {
		return ch, err
	}
	ch.Keys = make([]anim.WeightsKey, len(doc.Keys))
	for i, k := range doc.Keys {
		ch.Keys[i] = anim.WeightsKey{Time: k.Time, Value: k.Value, InTangent: k.In, OutTangent: k.Out}
	}
	return ch, nil
}

// checkTangents requires both tangents on every key of a cubic spline channel.
func checkTangents(mode anim.Interpolation, keys []KeyDoc) error {
	if mode != anim.CubicSpline {
		return nil
	}
	for i, k := range keys {
		if len(k.In) == 0 || len(k.Out) == 0 {
			return fmt.Errorf("key %d: %w", i, ErrMissingTangent)
		}
	}
	return nil
}

func keyError(i int, field string, got, want int) error {
	return fmt.Errorf("key %d %s has %d values, want %d: %w", i, field, got, want, ErrValueArity)
}

// vec3 converts a component list, returning def when it is empty.
func vec3(v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return def, fmt.Errorf("%d values, want 3: %w", len(v), ErrValueArity)
	}
}

// quat converts a rotation value and normalizes it.
func quat(v []float32, def math.Quat) (math.Quat, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 4:
		return math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize(), nil
	default:
		return def, fmt.Errorf("%d values, want 4: %w", len(v), ErrValueArity)
	}
}

// tangent converts a quaternion tangent, which is not normalized.
func tangent(v []float32) (math.Quat, error) {
	switch len(v) {
	case 0:
		return math.Quat{}, nil
	case 4:
		return math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
	default:
		return math.Quat{}, fmt.Errorf("%d values, want 4: %w", len(v), ErrValueArity)
	}
}
