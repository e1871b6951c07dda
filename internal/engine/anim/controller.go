package anim

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/internal/engine/scene"
	"github.com/Faultbox/midgard-anim/internal/logger"
	"go.uber.org/zap"
)

// Play describes how an animation should be played.
type Play struct {
	// Offset is the start position within the animation, in seconds.
	Offset float32
	// Duration is the played length; negative plays from Offset to the end of the clip.
	Duration float32
	// LoopCount is the number of loops, or LoopForever.
	LoopCount int
	// Speed multiplies the frame delta; negative plays in reverse.
	Speed    float32
	Listener Listener
}

// Once plays a whole animation one time at normal speed.
func Once() Play {
	return Play{Duration: -1, LoopCount: 1, Speed: 1}
}

// Loop plays a whole animation forever at normal speed.
func Loop() Play {
	return Play{Duration: -1, LoopCount: LoopForever, Speed: 1}
}

// Times plays a whole animation n times at normal speed.
func Times(n int) Play {
	return Play{Duration: -1, LoopCount: n, Speed: 1}
}

// Config holds controller options.
type Config struct {
	// AllowSameAnimation restarts an animation that is requested while already current.
	// When false the elapsed time is carried over instead.
	AllowSameAnimation bool
	// PoolWarmup pre-allocates pose accumulator entries.
	PoolWarmup int
}

// Controller plays animations on one scene graph: a current animation, the previous one
// while a crossfade is running, one queued animation and one-shot actions.
type Controller struct {
	// Paused stops Update from advancing or applying anything.
	Paused bool
	// AllowSameAnimation restarts an animation requested while already current.
	AllowSameAnimation bool

	graph   *scene.Graph
	library *Library
	applier *Applier
	descs   *Pool[Desc]
	log     *zap.Logger

	current  *Desc
	previous *Desc
	queued   *Desc

	queuedTransition float32
	transitionTime   float32
	transitionTarget float32
	inAction         bool
	justChanged      bool
}

// NewController creates a controller that poses graph with animations from library.
func NewController(graph *scene.Graph, library *Library, cfg Config) *Controller {
	c := &Controller{
		AllowSameAnimation: cfg.AllowSameAnimation,
		graph:              graph,
		library:            library,
		applier:            NewApplier(graph),
		descs:              NewPool((*Desc).reset),
		log:                logger.Named("anim"),
	}
	if cfg.PoolWarmup > 0 {
		c.applier.Pool().Warmup(cfg.PoolWarmup)
		c.descs.Warmup(4)
	}
	return c
}

// Current returns the descriptor being played, or nil.
func (c *Controller) Current() *Desc { return c.current }

// Previous returns the descriptor being faded out, or nil.
func (c *Controller) Previous() *Desc { return c.previous }

// Queued returns the descriptor waiting for the current one to end, or nil.
func (c *Controller) Queued() *Desc { return c.queued }

// InAction reports whether an action is playing.
func (c *Controller) InAction() bool { return c.inAction }

// Applier returns the applier used to pose the graph.
func (c *Controller) Applier() *Applier { return c.applier }

// Transitioning reports whether a crossfade is in progress.
func (c *Controller) Transitioning() bool { return c.previous != nil }

// TransitionProgress returns the crossfade progress in [0, 1], or 1 when not fading.
func (c *Controller) TransitionProgress() float32 {
	if c.previous == nil || c.transitionTarget <= 0 {
		return 1
	}
	return min(c.transitionTime/c.transitionTarget, 1)
}

// obtain builds a pooled descriptor for the animation named id.
func (c *Controller) obtain(id string, p Play) (*Desc, error) {
	a, ok := c.library.Get(id)
	if !ok {
		if s := c.library.Suggest(id); s != "" {
			return nil, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownAnimation, id, s)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnimation, id)
	}
	return c.obtainFor(a, p), nil
}

func (c *Controller) obtainFor(a *Animation, p Play) *Desc {
	d := c.descs.Get()
	d.Animation = a
	d.Listener = p.Listener
	d.LoopCount = p.LoopCount
	d.Speed = p.Speed
	d.Offset = p.Offset
	d.Duration = p.Duration
	if d.Duration < 0 {
		d.Duration = a.Duration - p.Offset
	}
	if d.Speed < 0 {
		d.Time = d.Duration
	}
	return d
}

// restart returns a fresh descriptor replaying d from its start.
func (c *Controller) restart(d *Desc) *Desc {
	return c.obtainFor(d.Animation, Play{
		Offset:    d.Offset,
		Duration:  d.Duration,
		LoopCount: d.LoopCount,
		Speed:     d.Speed,
		Listener:  d.Listener,
	})
}

func (c *Controller) free(d *Desc) {
	c.descs.Put(d)
}

// SetAnimation switches to the animation immediately, dropping any crossfade.
func (c *Controller) SetAnimation(id string, p Play) (*Desc, error) {
	d, err := c.obtain(id, p)
	if err != nil {
		return nil, err
	}
	return c.setAnimation(d), nil
}

// Animate crossfades from the current animation to the new one over transition seconds.
// While an action is playing the request is queued instead.
func (c *Controller) Animate(id string, p Play, transition float32) (*Desc, error) {
	d, err := c.obtain(id, p)
	if err != nil {
		return nil, err
	}
	return c.animate(d, transition), nil
}

// Queue plays the animation once the current one ends. A looping current animation is
// limited to its current loop so the queue is reached.
func (c *Controller) Queue(id string, p Play, transition float32) (*Desc, error) {
	d, err := c.obtain(id, p)
	if err != nil {
		return nil, err
	}
	return c.queue(d, transition), nil
}

// Action plays a finite animation on top of the current one, then resumes what was
// playing before.
func (c *Controller) Action(id string, p Play, transition float32) (*Desc, error) {
	switch {
	case p.LoopCount < 0:
		return nil, fmt.Errorf("%q: %w", id, ErrContinuousAction)
	case p.LoopCount == 0:
		return nil, fmt.Errorf("%q: %w", id, ErrEmptyAction)
	}
	d, err := c.obtain(id, p)
	if err != nil {
		return nil, err
	}
	return c.action(d, transition), nil
}

// Stop clears all playback and returns the graph to its rest pose.
func (c *Controller) Stop() {
	for _, d := range []*Desc{c.previous, c.current, c.queued} {
		if d != nil {
			c.applier.Release(d.Animation)
			c.free(d)
		}
	}
	c.current, c.previous, c.queued = nil, nil, nil
	c.inAction = false
	c.graph.CalculateAll()
}

func (c *Controller) setAnimation(d *Desc) *Desc {
	if c.previous != nil {
		c.applier.Release(c.previous.Animation)
		c.free(c.previous)
		c.previous = nil
	}
	if c.current == nil {
		c.current = d
	} else {
		if !c.AllowSameAnimation && c.current.Animation == d.Animation {
			d.Time = c.current.Time
		} else {
			c.applier.Release(c.current.Animation)
		}
		c.free(c.current)
		c.current = d
	}
	c.justChanged = true
	c.log.Debug("set animation", zap.String("animation", d.Animation.ID))
	return d
}

func (c *Controller) animate(d *Desc, transition float32) *Desc {
	switch {
	case c.current == nil || c.current.LoopCount == 0:
		if c.current != nil {
			c.applier.Release(c.current.Animation)
			c.free(c.current)
		}
		c.current = d
	case c.inAction:
		c.queue(d, transition)
	case !c.AllowSameAnimation && c.current.Animation == d.Animation:
		d.Time = c.current.Time
		c.free(c.current)
		c.current = d
	default:
		if c.previous != nil {
			c.applier.Release(c.previous.Animation)
			c.free(c.previous)
		}
		c.previous = c.current
		c.current = d
		c.transitionTime = 0
		c.transitionTarget = transition
		c.log.Debug("crossfade",
			zap.String("from", c.previous.Animation.ID),
			zap.String("to", d.Animation.ID),
			zap.Float32("transition", transition),
		)
	}
	return d
}

func (c *Controller) queue(d *Desc, transition float32) *Desc {
	if c.current == nil || c.current.LoopCount == 0 {
		// nothing left to wait for, including a finished action
		c.inAction = false
		return c.animate(d, transition)
	}
	if c.queued != nil {
		c.free(c.queued)
	}
	c.queued = d
	c.queuedTransition = transition
	if c.current.LoopCount < 0 {
		c.current.LoopCount = 1
	}
	c.log.Debug("queued animation", zap.String("animation", d.Animation.ID))
	return d
}

func (c *Controller) action(d *Desc, transition float32) *Desc {
	if c.current == nil || c.current.LoopCount == 0 {
		return c.animate(d, transition)
	}
	var resume *Desc
	if !c.inAction {
		resume = c.restart(c.current)
	}
	c.inAction = false
	c.animate(d, transition)
	c.inAction = true
	if resume != nil {
		c.queue(resume, transition)
	}
	c.log.Debug("action", zap.String("animation", d.Animation.ID))
	return d
}

// Update advances playback by delta seconds and poses the graph. After it returns every
// node's global transform and bone matrices are up to date.
func (c *Controller) Update(delta float32) error {
	if c.Paused {
		return nil
	}
	if c.previous != nil {
		c.transitionTime += delta
		if c.transitionTime >= c.transitionTarget {
			c.applier.Release(c.previous.Animation)
			c.free(c.previous)
			c.previous = nil
			c.justChanged = true
		}
	}
	if c.justChanged {
		c.graph.CalculateAll()
		c.justChanged = false
	}
	if c.current == nil || c.current.Stopped() {
		return nil
	}

	remain, ended := c.current.Update(delta)
	if ended && c.queued != nil {
		c.inAction = false
		next := c.queued
		c.queued = nil
		c.animate(next, c.queuedTransition)
		return c.Update(remain)
	}

	if c.previous != nil {
		return c.applier.ApplyBlend(
			c.previous.Animation, c.previous.AnimationTime(),
			c.current.Animation, c.current.AnimationTime(),
			c.transitionTime/c.transitionTarget,
		)
	}
	return c.applier.ApplyDirect(c.current.Animation, c.current.AnimationTime())
}
