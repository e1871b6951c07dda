package anim

import "github.com/chewxy/math32"

// LoopForever is the loop count of a descriptor that never ends.
const LoopForever = -1

// zeroDuration is the tolerance under which a clip is treated as instantaneous.
const zeroDuration = 0.000001

// Listener receives playback events. Callbacks run synchronously inside Controller.Update.
type Listener interface {
	// OnEnd is called when the descriptor reaches its final loop.
	OnEnd(d *Desc)
	// OnLoop is called at every loop boundary except the final one.
	OnLoop(d *Desc)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	End  func(d *Desc)
	Loop func(d *Desc)
}

// OnEnd implements Listener.
func (l ListenerFuncs) OnEnd(d *Desc) {
	if l.End != nil {
		l.End(d)
	}
}

// OnLoop implements Listener.
func (l ListenerFuncs) OnLoop(d *Desc) {
	if l.Loop != nil {
		l.Loop(d)
	}
}

// Desc is the playback state of one animation instance.
//
// Descriptors are pooled by their Controller: a handle returned by the controller is
// only meaningful until the controller replaces or finishes it.
type Desc struct {
	Animation *Animation
	Listener  Listener

	// Speed scales the delta passed to Update; negative values play in reverse.
	Speed float32
	// Time is the playback position relative to Offset, in [0, Duration].
	Time float32
	// Offset is where playback starts within the animation.
	Offset float32
	// Duration is the played length starting at Offset.
	Duration float32
	// LoopCount is 0 when stopped, the remaining loops when positive, LoopForever when negative.
	LoopCount int
}

func (d *Desc) reset() {
	*d = Desc{}
}

// Stopped reports whether the descriptor has no loops left.
func (d *Desc) Stopped() bool {
	return d.LoopCount == 0 || d.Animation == nil
}

// AnimationTime returns the position in the animation's own timeline.
func (d *Desc) AnimationTime() float32 {
	return d.Offset + d.Time
}

// Update advances the descriptor by delta.
//
// When the final loop completes during this tick it returns the part of the tick that
// was not consumed and ended=true, so the caller can feed the remainder to the next
// animation. A tick that crosses at least one boundary and ends partway into the last
// remaining loop completes that loop with no remainder. A stopped descriptor consumes
// nothing and returns delta.
func (d *Desc) Update(delta float32) (overflow float32, ended bool) {
	if d.Stopped() {
		return delta, true
	}

	// loops counts whole boundaries crossed. partial is true when the tick also ran
	// past the last of them; with one loop left that partial loop is the final one.
	loops, partial := 1, false
	if math32.Abs(d.Duration) > zeroDuration {
		d.Time += d.Speed * delta
		var progress float32
		if d.Speed < 0 {
			inv := d.Duration - d.Time
			progress = math32.Abs(inv / d.Duration)
			inv = math32.Abs(math32.Mod(inv, d.Duration))
			d.Time = d.Duration - inv
		} else {
			progress = math32.Abs(d.Time / d.Duration)
			d.Time = math32.Abs(math32.Mod(d.Time, d.Duration))
		}
		loops = int(progress)
		partial = loops > 0 && progress > float32(loops)
	}

	for i := 0; i < loops || (partial && i == loops && d.LoopCount == 1); i++ {
		if d.LoopCount > 0 {
			d.LoopCount--
		}
		if d.LoopCount != 0 && d.Listener != nil {
			d.Listener.OnLoop(d)
		}
		if d.LoopCount == 0 {
			var remain float32
			if i < loops {
				remain = float32(loops-1-i) * d.Duration
				if d.Speed < 0 {
					remain += d.Duration - d.Time
				} else {
					remain += d.Time
				}
			}
			if d.Speed < 0 {
				d.Time = 0
			} else {
				d.Time = d.Duration
			}
			if d.Listener != nil {
				d.Listener.OnEnd(d)
			}
			return remain, true
		}
	}
	return 0, false
}
