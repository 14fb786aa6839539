package nodes

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"github.com/tanema/gween/ease"
)

// MixMode selects how a OneShot combines its shot with the main input.
type MixMode uint8

const (
	// MixBlend fades the main input out while the shot plays.
	MixBlend MixMode = iota

	// MixAdd layers the shot on top of the main input.
	MixAdd
)

// OneShot plays input "shot" once on top of input "in" whenever its active parameter is raised,
// fading it in and out, optionally restarting on its own.
type OneShot struct {
	animation.Base
	syncable

	fadeIn, fadeOut       float64
	fadeInCurve           curve
	fadeOutCurve          curve
	mix                   MixMode
	autorestart           bool
	autorestartDelay      float64
	autorestartRandomness float64
}

var _ animation.Node = &OneShot{}

// OneShotBuilderOption is a functional option for configuring a OneShot.
type OneShotBuilderOption func(o *OneShot)

// WithFadeIn sets the fade-in time and curve. A nil curve is linear.
//
// Parameters:
//   - seconds: the fade-in time
//   - fn: the easing curve
//
// Returns:
//   - OneShotBuilderOption: option function to apply
func WithFadeIn(seconds float64, fn ease.TweenFunc) OneShotBuilderOption {
	return func(o *OneShot) {
		o.fadeIn = seconds
		o.fadeInCurve = newCurve(fn)
	}
}

// WithFadeOut sets the fade-out time and curve. A nil curve is linear.
//
// Parameters:
//   - seconds: the fade-out time
//   - fn: the easing curve
//
// Returns:
//   - OneShotBuilderOption: option function to apply
func WithFadeOut(seconds float64, fn ease.TweenFunc) OneShotBuilderOption {
	return func(o *OneShot) {
		o.fadeOut = seconds
		o.fadeOutCurve = newCurve(fn)
	}
}

// WithMixMode selects blend or add mixing. Defaults to MixBlend.
func WithMixMode(mode MixMode) OneShotBuilderOption {
	return func(o *OneShot) {
		o.mix = mode
	}
}

// WithAutorestart makes the shot fire again after delay plus up to randomness extra seconds.
//
// Parameters:
//   - delay: the fixed delay
//   - randomness: the upper bound of the random extra delay
//
// Returns:
//   - OneShotBuilderOption: option function to apply
func WithAutorestart(delay, randomness float64) OneShotBuilderOption {
	return func(o *OneShot) {
		o.autorestart = true
		o.autorestartDelay = delay
		o.autorestartRandomness = randomness
	}
}

// NewOneShot creates a one-shot node with inputs "in" and "shot". Fades default to 0.1 seconds.
func NewOneShot(options ...OneShotBuilderOption) *OneShot {
	o := &OneShot{
		fadeIn:       0.1,
		fadeOut:      0.1,
		fadeInCurve:  newCurve(nil),
		fadeOutCurve: newCurve(nil),
	}
	o.Init(o, "in", "shot")
	for _, opt := range options {
		opt(o)
	}
	return o
}

func (o *OneShot) Caption() string { return "OneShot" }

func (o *OneShot) HasFilter() bool { return true }

func (o *OneShot) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{
		{Name: "active", Default: variant.Bool(false)},
		{Name: "prev_active", Default: variant.Bool(false)},
		{Name: "time", Default: variant.Float(0)},
		{Name: "remaining", Default: variant.Float(0)},
		{Name: "time_to_restart", Default: variant.Float(-1)},
	}
}

func (o *OneShot) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	active := ctx.Parameter("active").AsBool()
	prevActive := ctx.Parameter("prev_active").AsBool()
	cur := ctx.Parameter("time").AsFloat()
	remaining := ctx.Parameter("remaining").AsFloat()
	toRestart := ctx.Parameter("time_to_restart").AsFloat()

	if !active {
		if prevActive {
			ctx.SetParameter("prev_active", variant.Bool(false))
		}
		if toRestart >= 0 && !seek {
			toRestart -= time
			if toRestart < 0 {
				ctx.SetParameter("active", variant.Bool(true))
				active = true
			}
			ctx.SetParameter("time_to_restart", variant.Float(toRestart))
		}
		if !active {
			return ctx.BlendInput(0, time, seek, seekRoot, 1, animation.FilterIgnore, o.optimize())
		}
	}

	shotSeek := seek
	if seek {
		cur = time
	}
	start := !prevActive
	if start {
		cur = 0
		shotSeek = true
		ctx.SetParameter("prev_active", variant.Bool(true))
	}

	var blend float64
	switch {
	case cur < o.fadeIn:
		if o.fadeIn > 0 {
			blend = o.fadeInCurve.at(cur / o.fadeIn)
		}
	case !start && remaining <= o.fadeOut:
		if o.fadeOut > 0 {
			blend = o.fadeOutCurve.at(remaining / o.fadeOut)
		}
	default:
		blend = 1
	}

	var mainRem float64
	if o.mix == MixAdd {
		mainRem = ctx.BlendInput(0, time, seek, seekRoot, 1, animation.FilterIgnore, o.optimize())
	} else {
		mainRem = ctx.BlendInput(0, time, seek, seekRoot, 1-blend, animation.FilterBlend, o.optimize())
	}

	shotTime := time
	if shotSeek {
		shotTime = cur
	}
	shotRem := ctx.BlendInput(1, shotTime, shotSeek, seekRoot, blend, animation.FilterPass, true)

	if start {
		remaining = shotRem
	}
	if !seek {
		cur += time
		remaining = shotRem
		if remaining <= 0 {
			ctx.SetParameter("active", variant.Bool(false))
			ctx.SetParameter("prev_active", variant.Bool(false))
			if o.autorestart {
				restart := o.autorestartDelay + rand.Float64()*o.autorestartRandomness
				ctx.SetParameter("time_to_restart", variant.Float(restart))
			}
		}
	}

	ctx.SetParameter("time", variant.Float(cur))
	ctx.SetParameter("remaining", variant.Float(remaining))
	return max(mainRem, remaining)
}
