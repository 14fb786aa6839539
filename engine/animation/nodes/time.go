package nodes

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// TimeScale multiplies the step handed to its input by the "scale" parameter. Seeks pass through
// unscaled.
type TimeScale struct {
	animation.Base
}

var _ animation.Node = &TimeScale{}

// NewTimeScale creates a time scale node.
func NewTimeScale() *TimeScale {
	t := &TimeScale{}
	t.Init(t, "in")
	return t
}

func (t *TimeScale) Caption() string { return "TimeScale" }

func (t *TimeScale) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{{Name: "scale", Default: variant.Float(1)}}
}

func (t *TimeScale) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	if seek {
		return ctx.BlendInput(0, time, true, seekRoot, 1, animation.FilterIgnore, true)
	}
	scale := ctx.Parameter("scale").AsFloat()
	return ctx.BlendInput(0, time*scale, false, seekRoot, 1, animation.FilterIgnore, true)
}

// TimeSeek jumps its input to the "seek_request" parameter once, then resets the request to -1.
type TimeSeek struct {
	animation.Base
}

var _ animation.Node = &TimeSeek{}

// NewTimeSeek creates a time seek node.
func NewTimeSeek() *TimeSeek {
	t := &TimeSeek{}
	t.Init(t, "in")
	return t
}

func (t *TimeSeek) Caption() string { return "TimeSeek" }

func (t *TimeSeek) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{{Name: "seek_request", Default: variant.Float(-1)}}
}

func (t *TimeSeek) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	request := ctx.Parameter("seek_request").AsFloat()
	switch {
	case seek:
		return ctx.BlendInput(0, time, true, seekRoot, 1, animation.FilterIgnore, true)
	case request >= 0:
		rem := ctx.BlendInput(0, request, true, true, 1, animation.FilterIgnore, true)
		ctx.SetParameter("seek_request", variant.Float(-1))
		return rem
	}
	return ctx.BlendInput(0, time, false, seekRoot, 1, animation.FilterIgnore, true)
}
