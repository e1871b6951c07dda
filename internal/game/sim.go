// Package game implements the headless frame loop that drives animation playback.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/engine/anim"
	"github.com/Faultbox/midgard-anim/internal/engine/rig"
	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Options holds simulation settings.
type Options struct {
	FPS               int
	Duration          time.Duration
	Realtime          bool
	DefaultTransition float32
	Animation         anim.Config
}

// Summary describes a finished run.
type Summary struct {
	Frames    int
	Simulated time.Duration
	CuesFired int
	Loops     int
	Ends      int
	Current   string // Animation playing at the end, if any
	Pose      []NodePose
}

// NodePose is the world position of one node.
type NodePose struct {
	ID       string
	Position math.Vec3
}

// Sim steps one model instance with a fixed time step and fires script cues.
type Sim struct {
	opts   Options
	model  *rig.Model
	ctrl   *anim.Controller
	script *Script
	log    *zap.Logger

	dt        float32
	frame     int
	next      int
	cuesFired int
	loops     int
	ends      int
}

// New creates a simulation for model. A nil script plays nothing.
func New(model *rig.Model, script *Script, opts Options) *Sim {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if script == nil {
		script = &Script{}
	}
	return &Sim{
		opts:   opts,
		model:  model,
		ctrl:   model.Controller(opts.Animation),
		script: script,
		log:    logger.Named("sim"),
		dt:     1 / float32(opts.FPS),
	}
}

// Controller returns the controller driving the model.
func (s *Sim) Controller() *anim.Controller {
	return s.ctrl
}

// Elapsed returns the simulated time.
func (s *Sim) Elapsed() float64 {
	return float64(s.frame) / float64(s.opts.FPS)
}

// Step fires due cues and advances the model by one frame.
func (s *Sim) Step() error {
	now := s.Elapsed()
	for s.next < len(s.script.Cues) && s.script.Cues[s.next].At <= now+1e-9 {
		c := &s.script.Cues[s.next]
		s.next++
		if err := s.fire(c); err != nil {
			return fmt.Errorf("cue at %.3fs: %w", c.At, err)
		}
	}
	if err := s.ctrl.Update(s.dt); err != nil {
		return fmt.Errorf("frame %d: %w", s.frame, err)
	}
	s.frame++
	return nil
}

// Run steps until the configured duration has been simulated or ctx is done.
// With Realtime set, frames are paced by the wall clock.
func (s *Sim) Run(ctx context.Context) (Summary, error) {
	frames := int(s.opts.Duration.Seconds() * float64(s.opts.FPS))
	s.log.Info("simulation started",
		zap.String("rig", s.model.Name),
		zap.Int("fps", s.opts.FPS),
		zap.Int("frames", frames),
		zap.Int("cues", len(s.script.Cues)),
	)

	var tick <-chan time.Time
	if s.opts.Realtime {
		ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for s.frame < frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return s.Summary(), ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return s.Summary(), err
		}

		if err := s.Step(); err != nil {
			return s.Summary(), err
		}
		if s.frame%s.opts.FPS == 0 {
			s.progress()
		}
	}

	sum := s.Summary()
	s.log.Info("simulation finished",
		zap.Int("frames", sum.Frames),
		zap.Duration("simulated", sum.Simulated),
		zap.Int("loops", sum.Loops),
		zap.Int("ends", sum.Ends),
	)
	return sum, nil
}

// Summary reports the current state of the run.
func (s *Sim) Summary() Summary {
	sum := Summary{
		Frames:    s.frame,
		Simulated: time.Duration(s.Elapsed() * float64(time.Second)),
		CuesFired: s.cuesFired,
		Loops:     s.loops,
		Ends:      s.ends,
		Pose:      s.Pose(),
	}
	if d := s.ctrl.Current(); d != nil && !d.Stopped() {
		sum.Current = d.Animation.ID
	}
	return sum
}

// Pose returns the world position of every node in graph order.
func (s *Sim) Pose() []NodePose {
	g := s.model.Graph
	pose := make([]NodePose, 0, g.Len())
	var walk func(ids []scene.NodeID)
	walk = func(ids []scene.NodeID) {
		for _, id := range ids {
			n := g.Node(id)
			pose = append(pose, NodePose{ID: n.ID, Position: n.GlobalTransform.Translation()})
			walk(g.Children(id))
		}
	}
	walk(g.Roots())
	return pose
}

func (s *Sim) progress() {
	fields := []zap.Field{
		zap.Int("frame", s.frame),
		zap.Float64("t", s.Elapsed()),
	}
	if d := s.ctrl.Current(); d != nil {
		fields = append(fields,
			zap.String("animation", d.Animation.ID),
			zap.Float32("time", d.AnimationTime()),
			zap.Bool("fading", s.ctrl.Transitioning()),
		)
	}
	s.log.Info("progress", fields...)
}

func (s *Sim) fire(c *Cue) error {
	s.cuesFired++
	s.log.Debug("cue",
		zap.Float64("at", c.At),
		zap.String("op", c.Op),
		zap.String("animation", c.Animation),
	)

	p := c.Play()
	p.Listener = anim.ListenerFuncs{End: s.onEnd, Loop: s.onLoop}
	transition := c.TransitionOr(s.opts.DefaultTransition)

	var err error
	switch c.Op {
	case OpSet:
		_, err = s.ctrl.SetAnimation(c.Animation, p)
	case OpAnimate:
		_, err = s.ctrl.Animate(c.Animation, p, transition)
	case OpQueue:
		_, err = s.ctrl.Queue(c.Animation, p, transition)
	case OpAction:
		_, err = s.ctrl.Action(c.Animation, p, transition)
	case OpPause:
		s.ctrl.Paused = true
	case OpResume:
		s.ctrl.Paused = false
	case OpStop:
		s.ctrl.Stop()
	default:
		err = fmt.Errorf("%q: %w", c.Op, ErrUnknownOp)
	}
	return err
}

func (s *Sim) onEnd(d *anim.Desc) {
	s.ends++
	s.log.Debug("animation ended", zap.String("animation", d.Animation.ID), zap.Int("frame", s.frame))
}

func (s *Sim) onLoop(d *anim.Desc) {
	s.loops++
	s.log.Debug("animation looped", zap.String("animation", d.Animation.ID), zap.Int("frame", s.frame))
}
