package animlist

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Curve determines how an animation's value progresses from its starting
// point to its target.
type Curve int

const (
	// CurveLinear advances the value at a constant rate.
	CurveLinear Curve = iota

	// CurveEaseInOut accelerates during the first half and decelerates
	// during the second half (cubic).
	CurveEaseInOut

	// CurveSpring advances the value with a damped spring simulation. The
	// animation's duration is ignored; the spring settles on its own.
	CurveSpring
)

// Default animation timings. They can be overridden per animator with
// SetDurations.
const (
	DefaultRemoveDuration  = 250 * time.Millisecond
	DefaultResizeDuration  = 250 * time.Millisecond
	DefaultInsertDuration  = 250 * time.Millisecond
	DefaultChangeDuration  = 150 * time.Millisecond
	DefaultReorderDuration = 150 * time.Millisecond
)

// Spring parameters used by CurveSpring. The simulation is stepped once per
// animator tick.
const (
	springFPS     = 60
	springFreq    = 7.0
	springDamping = 0.9
	springRest    = 0.001
)

// Animation is a shared, attach-counted handle on a value moving through
// [0, 1]. Several intervals may hold the same handle; a split keeps both
// remainders on the handle that was animating the original interval. Once the
// last interval detaches, the handle removes itself from its animator's
// ticking set.
type Animation struct {
	animator *Animator

	value    float64
	from     float64
	target   float64
	start    time.Time // zero until the first tick after starting
	duration time.Duration
	curve    Curve
	running  bool

	velocity float64
	spring   harmonica.Spring

	attached int
}

func newAnimation(a *Animator, initial float64) *Animation {
	an := &Animation{
		animator: a,
		value:    initial,
		from:     initial,
		target:   initial,
		curve:    a.curve,
	}
	a.animations[an] = struct{}{}
	return an
}

// Value returns the animation's current value.
func (an *Animation) Value() float64 {
	return an.value
}

// Running reports whether the animation is still advancing.
func (an *Animation) Running() bool {
	return an.running
}

// startTo begins moving the value from its current position to target over
// the given duration. The clock starts on the next tick so callers don't
// need access to the current time.
func (an *Animation) startTo(target float64, duration time.Duration) {
	an.from = an.value
	an.target = target
	an.duration = duration
	an.start = time.Time{}
	an.velocity = 0
	if an.curve == CurveSpring {
		an.spring = harmonica.NewSpring(harmonica.FPS(springFPS), springFreq, springDamping)
	}
	an.running = an.value != target
}

// stop freezes the animation at its current value. The value becomes the
// starting point of whatever interval replaces the stopped one, so there is
// no visual snap.
func (an *Animation) stop() {
	an.running = false
}

// complete jumps the value to its target and stops.
func (an *Animation) complete() {
	an.value = an.target
	an.running = false
}

// reset rewinds the animation to the given value without starting it.
func (an *Animation) reset(v float64) {
	an.value = v
	an.from = v
	an.target = v
	an.running = false
}

// tick advances the animation to the given time and reports whether it
// completed on this step.
func (an *Animation) tick(now time.Time) bool {
	if !an.running {
		return false
	}

	if an.curve == CurveSpring {
		an.value, an.velocity = an.spring.Update(an.value, an.velocity, an.target)
		if math.Abs(an.value-an.target) < springRest && math.Abs(an.velocity) < springRest {
			an.value = an.target
			an.running = false
			return true
		}
		return false
	}

	if an.start.IsZero() {
		an.start = now
		return false
	}
	if an.duration <= 0 {
		an.complete()
		return true
	}

	t := float64(now.Sub(an.start)) / float64(an.duration)
	if t >= 1 {
		an.complete()
		return true
	}
	if t < 0 {
		t = 0
	}
	an.value = an.from + (an.target-an.from)*ease(an.curve, t)
	return false
}

func ease(curve Curve, t float64) float64 {
	switch curve {
	case CurveEaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := 2*t - 2
		return 1 + u*u*u/2
	default:
		return t
	}
}

// attach registers one more interval holding this handle.
func (an *Animation) attach() *Animation {
	if an == nil {
		return nil
	}
	an.attached++
	return an
}

// detach releases one interval's hold. When the last one goes, the handle
// removes itself from the animator's ticking set.
func (an *Animation) detach() {
	if an == nil {
		return
	}
	an.attached--
	if an.attached <= 0 {
		an.running = false
		delete(an.animator.animations, an)
	}
}
