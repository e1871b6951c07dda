package game

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/internal/engine/anim"
)

// Script errors.
var (
	ErrUnknownOp       = errors.New("unknown cue op")
	ErrMissingAnim     = errors.New("cue needs an animation")
	ErrNegativeCueTime = errors.New("cue time is negative")
)

// Cue operations.
const (
	OpSet     = "set"
	OpAnimate = "animate"
	OpQueue   = "queue"
	OpAction  = "action"
	OpPause   = "pause"
	OpResume  = "resume"
	OpStop    = "stop"
)

// Script is a timed list of playback cues.
type Script struct {
	Cues []Cue `yaml:"cues"`
}

// Cue is one playback command fired at a simulated time.
type Cue struct {
	At        float64 `yaml:"at"` // Seconds from the start
	Op        string  `yaml:"op"`
	Animation string  `yaml:"animation,omitempty"`

	// Playback options. Unset values use the op's defaults: set and animate loop
	// forever, queue and action play once.
	Loops      *int     `yaml:"loops,omitempty"`
	Speed      *float32 `yaml:"speed,omitempty"`
	Offset     float32  `yaml:"offset,omitempty"`
	Duration   *float32 `yaml:"duration,omitempty"`
	Transition *float32 `yaml:"transition,omitempty"`
}

// ParseScript decodes and validates a cue script. Cues are ordered by time;
// cues sharing a time keep their file order.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Cues, func(i, j int) bool { return s.Cues[i].At < s.Cues[j].At })
	return &s, nil
}

// LoadScript reads a cue script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks every cue.
func (s *Script) Validate() error {
	for i, c := range s.Cues {
		if c.At < 0 {
			return fmt.Errorf("cue %d: %w", i, ErrNegativeCueTime)
		}
		switch c.Op {
		case OpSet, OpAnimate, OpQueue, OpAction:
			if c.Animation == "" {
				return fmt.Errorf("cue %d (%s): %w", i, c.Op, ErrMissingAnim)
			}
		case OpPause, OpResume, OpStop:
		default:
			return fmt.Errorf("cue %d: %q: %w", i, c.Op, ErrUnknownOp)
		}
	}
	return nil
}

// Play converts the cue's options into playback parameters.
func (c *Cue) Play() anim.Play {
	p := anim.Loop()
	if c.Op == OpQueue || c.Op == OpAction {
		p = anim.Once()
	}
	if c.Loops != nil {
		p.LoopCount = *c.Loops
	}
	if c.Speed != nil {
		p.Speed = *c.Speed
	}
	if c.Duration != nil {
		p.Duration = *c.Duration
	}
	p.Offset = c.Offset
	return p
}

// TransitionOr returns the cue's crossfade time, or def when it has none.
func (c *Cue) TransitionOr(def float32) float32 {
	if c.Transition != nil {
		return *c.Transition
	}
	return def
}
