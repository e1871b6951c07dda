// Package rig loads YAML rig documents: a node hierarchy with rest pose and skinned
// parts, plus the animations authored for it.
package rig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Rig document errors.
var (
	ErrNoNodes        = errors.New("rig has no nodes")
	ErrDuplicateNode  = errors.New("duplicate node id")
	ErrUnknownNode    = errors.New("unknown node")
	ErrValueArity     = errors.New("wrong number of components")
	ErrMissingTangent = errors.New("cubic spline key without in/out tangents")
)

// Document is the YAML form of a rig.
type Document struct {
	Name       string         `yaml:"name"`
	Nodes      []NodeDoc      `yaml:"nodes"`
	Animations []AnimationDoc `yaml:"animations,omitempty"`
}

// NodeDoc describes one node and its subtree.
type NodeDoc struct {
	ID          string    `yaml:"id"`
	Translation []float32 `yaml:"translation,omitempty"` // x, y, z
	Rotation    []float32 `yaml:"rotation,omitempty"`    // x, y, z, w
	Scale       []float32 `yaml:"scale,omitempty"`
	Weights     []float32 `yaml:"weights,omitempty"`
	Inherit     *bool     `yaml:"inherit,omitempty"` // Defaults to true
	Parts       []PartDoc `yaml:"parts,omitempty"`
	Children    []NodeDoc `yaml:"children,omitempty"`
}

// PartDoc describes a skinned mesh part.
type PartDoc struct {
	ID    string    `yaml:"id"`
	Bones []BoneDoc `yaml:"bones"`
}

// BoneDoc binds a node to a part. InverseBind is column-major; when omitted it is
// computed from the node's bind pose.
type BoneDoc struct {
	Node        string    `yaml:"node"`
	InverseBind []float32 `yaml:"inverse_bind,omitempty"`
}

// AnimationDoc describes one clip. A zero duration means "until the last keyframe".
type AnimationDoc struct {
	ID       string     `yaml:"id"`
	Duration float32    `yaml:"duration,omitempty"`
	Tracks   []TrackDoc `yaml:"tracks"`
}

// TrackDoc holds the channels for one node.
type TrackDoc struct {
	Node        string      `yaml:"node"`
	Translation *ChannelDoc `yaml:"translation,omitempty"`
	Rotation    *ChannelDoc `yaml:"rotation,omitempty"`
	Scale       *ChannelDoc `yaml:"scale,omitempty"`
	Weights     *ChannelDoc `yaml:"weights,omitempty"`
}

// ChannelDoc is a keyframe sequence with its interpolation mode.
type ChannelDoc struct {
	Interpolation string   `yaml:"interpolation,omitempty"`
	Keys          []KeyDoc `yaml:"keys"`
}

// KeyDoc is one keyframe. In and Out are tangents, only used by cubic channels.
type KeyDoc struct {
	Time  float32   `yaml:"time"`
	Value []float32 `yaml:"value"`
	In    []float32 `yaml:"in,omitempty"`
	Out   []float32 `yaml:"out,omitempty"`
}

// Parse decodes a rig document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a rig document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rig: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoNodes
	}
	return &doc, nil
}

// Load parses the rig document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode writes doc as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// NodeCount returns the number of nodes in the hierarchy.
func (d *Document) NodeCount() int {
	var count func(nodes []NodeDoc) int
	count = func(nodes []NodeDoc) int {
		n := len(nodes)
		for i := range nodes {
			n += count(nodes[i].Children)
		}
		return n
	}
	return count(d.Nodes)
}
