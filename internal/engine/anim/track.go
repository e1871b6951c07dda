package anim

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Keyframe is implemented by every keyframe type.
type Keyframe interface {
	KeyTime() float32
}

// Vec3Key is a translation or scale keyframe. Tangents are only read by CubicSpline channels.
type Vec3Key struct {
	Time       float32
	Value      math.Vec3
	InTangent  math.Vec3
	OutTangent math.Vec3
}

// KeyTime implements Keyframe.
func (k Vec3Key) KeyTime() float32 { return k.Time }

// QuatKey is a rotation keyframe.
type QuatKey struct {
	Time       float32
	Value      math.Quat
	InTangent  math.Quat
	OutTangent math.Quat
}

// KeyTime implements Keyframe.
func (k QuatKey) KeyTime() float32 { return k.Time }

// WeightsKey is a morph target weights keyframe. Nil tangents read as zero.
type WeightsKey struct {
	Time       float32
	Value      []float32
	InTangent  []float32
	OutTangent []float32
}

// KeyTime implements Keyframe.
func (k WeightsKey) KeyTime() float32 { return k.Time }

// Vec3Channel is a keyframe sequence for translation or scale.
type Vec3Channel struct {
	Mode Interpolation
	Keys []Vec3Key
}

// QuatChannel is a keyframe sequence for rotation.
type QuatChannel struct {
	Mode Interpolation
	Keys []QuatKey
}

// WeightsChannel is a keyframe sequence for morph target weights.
type WeightsChannel struct {
	Mode Interpolation
	Keys []WeightsKey
}

// Track animates one node. An empty channel leaves that component at the rest pose.
type Track struct {
	NodeID      string
	Translation Vec3Channel
	Rotation    QuatChannel
	Scale       Vec3Channel
	Weights     WeightsChannel
}

// Animation is a named set of tracks. It must not be modified once playback starts.
type Animation struct {
	ID       string
	Duration float32
	Tracks   []Track
}

// EndTime returns the time of the last keyframe across all tracks.
func (a *Animation) EndTime() float32 {
	var end float32
	for i := range a.Tracks {
		tr := &a.Tracks[i]
		end = max(end, lastTime(tr.Translation.Keys), lastTime(tr.Rotation.Keys),
			lastTime(tr.Scale.Keys), lastTime(tr.Weights.Keys))
	}
	return end
}

// Validate checks keyframe ordering and weight arity.
func (a *Animation) Validate() error {
	for i := range a.Tracks {
		tr := &a.Tracks[i]
		checks := [...]struct {
			name string
			err  error
		}{
			{"translation", checkSorted(tr.Translation.Keys)},
			{"rotation", checkSorted(tr.Rotation.Keys)},
			{"scale", checkSorted(tr.Scale.Keys)},
			{"weights", checkSorted(tr.Weights.Keys)},
		}
		for _, c := range checks {
			if c.err != nil {
				return fmt.Errorf("animation %q node %q %s: %w", a.ID, tr.NodeID, c.name, c.err)
			}
		}
		if err := checkWeights(tr.Weights.Keys); err != nil {
			return fmt.Errorf("animation %q node %q weights: %w", a.ID, tr.NodeID, err)
		}
	}
	return nil
}

func lastTime[K Keyframe](keys []K) float32 {
	if len(keys) == 0 {
		return 0
	}
	return keys[len(keys)-1].KeyTime()
}

func checkSorted[K Keyframe](keys []K) error {
	for i := 1; i < len(keys); i++ {
		if keys[i].KeyTime() < keys[i-1].KeyTime() {
			return fmt.Errorf("key %d at %v after %v: %w", i, keys[i].KeyTime(), keys[i-1].KeyTime(), ErrUnsortedKeys)
		}
	}
	return nil
}

func checkWeights(keys []WeightsKey) error {
	if len(keys) == 0 {
		return nil
	}
	n := len(keys[0].Value)
	for i, k := range keys {
		if len(k.Value) != n {
			return fmt.Errorf("key %d has %d weights, want %d: %w", i, len(k.Value), n, ErrWeightArity)
		}
		if (k.InTangent != nil && len(k.InTangent) != n) || (k.OutTangent != nil && len(k.OutTangent) != n) {
			return fmt.Errorf("key %d tangents do not match %d weights: %w", i, n, ErrWeightArity)
		}
	}
	return nil
}
