package nodes

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"github.com/tanema/gween/ease"
)

type transitionInput struct {
	autoAdvance bool
	reset       bool
}

// Transition switches between its inputs by name, cross-fading from the previous one. Writing an
// input name to "transition_request" starts the switch.
type Transition struct {
	animation.Base

	inputData  []transitionInput
	xfade      float64
	xfadeCurve curve
	sync       bool
	logger     *log.Logger
}

var _ animation.Node = &Transition{}

// TransitionBuilderOption is a functional option for configuring a Transition.
type TransitionBuilderOption func(t *Transition)

// WithInputs adds named inputs, each resetting its clip on enter.
//
// Parameters:
//   - names: the input names
//
// Returns:
//   - TransitionBuilderOption: option function to apply
func WithInputs(names ...string) TransitionBuilderOption {
	return func(t *Transition) {
		for _, n := range names {
			if err := t.AddInput(n); err != nil {
				t.logger.Printf("[Transition] %v", err)
			}
		}
	}
}

// WithXFade sets the cross-fade time and curve. A nil curve is linear.
//
// Parameters:
//   - seconds: the cross-fade time
//   - fn: the easing curve
//
// Returns:
//   - TransitionBuilderOption: option function to apply
func WithXFade(seconds float64, fn ease.TweenFunc) TransitionBuilderOption {
	return func(t *Transition) {
		t.xfade = seconds
		t.xfadeCurve = newCurve(fn)
	}
}

// WithTransitionLogger sets the logger for unknown transition requests.
func WithTransitionLogger(logger *log.Logger) TransitionBuilderOption {
	return func(t *Transition) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransition creates a transition node.
func NewTransition(options ...TransitionBuilderOption) *Transition {
	t := &Transition{xfadeCurve: newCurve(nil), logger: log.Default()}
	t.Init(t)
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *Transition) Caption() string { return "Transition" }

func (t *Transition) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{
		{Name: "current_state", Default: variant.String(t.InputName(0))},
		{Name: "transition_request", Default: variant.String("")},
		{Name: "current_index", Default: variant.Int(0)},
		{Name: "prev_index", Default: variant.Int(-1)},
		{Name: "time", Default: variant.Float(0)},
		{Name: "prev_xfading", Default: variant.Float(0)},
	}
}

// AddInput appends a named input that resets on enter.
func (t *Transition) AddInput(name string) error {
	if err := t.Base.AddInput(name); err != nil {
		return err
	}
	t.inputData = append(t.inputData, transitionInput{reset: true})
	return nil
}

// RemoveInput drops input i.
func (t *Transition) RemoveInput(i int) {
	if i < 0 || i >= len(t.inputData) {
		return
	}
	t.inputData = append(t.inputData[:i], t.inputData[i+1:]...)
	t.Base.RemoveInput(i)
}

// SetAutoAdvance makes input i request the next input once it is about to end.
func (t *Transition) SetAutoAdvance(i int, enabled bool) {
	if i >= 0 && i < len(t.inputData) {
		t.inputData[i].autoAdvance = enabled
	}
}

// SetInputReset controls whether entering input i seeks it to the start.
func (t *Transition) SetInputReset(i int, reset bool) {
	if i >= 0 && i < len(t.inputData) {
		t.inputData[i].reset = reset
	}
}

// SetSync keeps inactive inputs advancing at zero weight.
func (t *Transition) SetSync(sync bool) { t.sync = sync }

// XFade returns the cross-fade time.
func (t *Transition) XFade() float64 { return t.xfade }

func (t *Transition) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	request := ctx.Parameter("transition_request").AsString()
	current := int(ctx.Parameter("current_index").AsInt())
	prev := int(ctx.Parameter("prev_index").AsInt())
	cur := ctx.Parameter("time").AsFloat()
	prevXFading := ctx.Parameter("prev_xfading").AsFloat()

	switched, restart := false, false
	if request != "" {
		if next := t.FindInput(request); next >= 0 {
			if next == current {
				restart = t.inputData[current].reset
				prevXFading = 0
				ctx.SetParameter("prev_xfading", variant.Float(0))
				prev = -1
				ctx.SetParameter("prev_index", variant.Int(-1))
			} else {
				switched = true
				prev = current
				ctx.SetParameter("prev_index", variant.Int(int64(current)))
			}
			current = next
			ctx.SetParameter("current_index", variant.Int(int64(current)))
			ctx.SetParameter("current_state", variant.String(request))
		} else {
			t.logger.Printf("[Transition] no such input: %q", request)
		}
		ctx.SetParameter("transition_request", variant.String(""))
	}

	if restart {
		ctx.SetParameter("time", variant.Float(0))
		return ctx.BlendInput(current, 0, true, seekRoot, 1, animation.FilterIgnore, true)
	}
	if switched {
		prevXFading = t.xfade
		cur = 0
	}
	if current < 0 || current >= t.InputCount() || prev >= t.InputCount() {
		return 0
	}

	if t.sync {
		for i := 0; i < t.InputCount(); i++ {
			if i != current && i != prev {
				ctx.BlendInput(i, time, seek, seekRoot, 0, animation.FilterIgnore, true)
			}
		}
	}

	var rem float64
	if prev < 0 {
		rem = ctx.BlendInput(current, time, seek, seekRoot, 1, animation.FilterIgnore, true)
		if seek {
			cur = time
		} else {
			cur += time
		}
		if t.inputData[current].autoAdvance && rem <= t.xfade {
			next := t.InputName((current + 1) % t.InputCount())
			ctx.SetParameter("transition_request", variant.String(next))
		}
	} else {
		blend := 0.0
		if t.xfade != 0 {
			// blend is the weight of the previous input, falling from 1 to 0.
			blend = 1 - t.xfadeCurve.at(1-prevXFading/t.xfade)
		}
		inv := 1 - blend
		if common.IsZeroApprox(inv) {
			inv = common.CmpEpsilon
		}
		if t.inputData[current].reset && !seek && switched {
			rem = ctx.BlendInput(current, 0, true, seekRoot, inv, animation.FilterIgnore, true)
		} else {
			rem = ctx.BlendInput(current, time, seek, seekRoot, inv, animation.FilterIgnore, true)
		}

		prevBlend := blend
		if common.IsZeroApprox(prevBlend) {
			prevBlend = common.CmpEpsilon
		}
		ctx.BlendInput(prev, time, seek, seekRoot, prevBlend, animation.FilterIgnore, true)
		if seek {
			cur = time
		} else {
			cur += time
			prevXFading -= time
			if prevXFading < 0 {
				ctx.SetParameter("prev_index", variant.Int(-1))
			}
		}
	}

	ctx.SetParameter("time", variant.Float(cur))
	ctx.SetParameter("prev_xfading", variant.Float(prevXFading))
	return rem
}
