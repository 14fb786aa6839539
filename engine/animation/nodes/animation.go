// Package nodes holds the concrete blend graph nodes: clip leaves, the blend tree, mixers,
// one-shots, time controls, transitions and blend spaces.
package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// PlayMode selects the direction an Animation node plays its clip in.
type PlayMode uint8

const (
	PlayForward PlayMode = iota
	PlayBackward
)

// Animation plays one clip from the library. It owns the "time" parameter.
type Animation struct {
	animation.Base

	name     string
	playMode PlayMode
	backward bool
}

var _ animation.Node = &Animation{}

// NewAnimation creates a leaf playing the named clip.
//
// Parameters:
//   - name: the clip name in the library
//
// Returns:
//   - *Animation: the leaf
func NewAnimation(name string) *Animation {
	a := &Animation{name: name}
	a.Init(a)
	return a
}

func (a *Animation) Caption() string { return "Animation" }

func (a *Animation) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{{Name: "time", Default: variant.Float(0)}}
}

// AnimationName returns the clip name.
func (a *Animation) AnimationName() string { return a.name }

// SetAnimationName selects another clip.
func (a *Animation) SetAnimationName(name string) { a.name = name }

// PlayMode returns the playback direction.
func (a *Animation) PlayMode() PlayMode { return a.playMode }

// SetPlayMode changes the playback direction.
func (a *Animation) SetPlayMode(mode PlayMode) { a.playMode = mode }

func (a *Animation) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	anim, ok := ctx.Clips().Animation(a.name)
	if !ok {
		if tree, isComposite := ctx.Parent().(animation.Composite); isComposite {
			ctx.Invalidate(fmt.Sprintf("On BlendTree node '%s', animation not found: '%s'", tree.NodeName(a), a.name))
		} else {
			ctx.Invalidate(fmt.Sprintf("Animation not found: '%s'", a.name))
		}
		return 0
	}

	length := anim.Length()
	cur := ctx.Parameter("time").AsFloat()
	prev := cur
	step := 0.0
	pingponged := 0

	if seek {
		step = time - cur
		cur = time
	} else {
		if a.backward {
			time = -time
		}
		cur += time
		step = time
	}

	switch anim.LoopMode() {
	case clip.LoopPingPong:
		if !common.IsZeroApprox(length) {
			if prev >= 0 && cur < 0 {
				a.backward = !a.backward
				pingponged = -1
			}
			if prev <= length && cur > length {
				a.backward = !a.backward
				pingponged = 1
			}
			cur = common.Pingpong(cur, length)
		}
	case clip.LoopLinear:
		if !common.IsZeroApprox(length) {
			cur = common.Fposmod(cur, length)
		}
		a.backward = false
	default:
		if cur < 0 {
			step += cur
			cur = 0
		} else if cur > length {
			step += length - cur
			cur = length
		}
		a.backward = false
	}

	if a.playMode == PlayForward {
		ctx.BlendAnimation(a.name, cur, step, seek, seekRoot, 1, pingponged)
	} else {
		ctx.BlendAnimation(a.name, length-cur, -step, seek, seekRoot, 1, pingponged)
	}
	ctx.SetParameter("time", variant.Float(cur))
	return length - cur
}

// Output is the sink of a BlendTree. It passes its only input through.
type Output struct {
	animation.Base
}

var _ animation.Node = &Output{}

// NewOutput creates an output node with a single input.
func NewOutput() *Output {
	o := &Output{}
	o.Init(o, "output")
	return o
}

func (o *Output) Caption() string { return "Output" }

func (o *Output) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	return ctx.BlendInput(0, time, seek, seekRoot, 1, animation.FilterIgnore, true)
}
