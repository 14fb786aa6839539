package nodes

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// syncable is shared by mixers: with sync off, inputs at zero weight are processed with a zero
// step so they hold their position.
type syncable struct {
	sync bool
}

// Sync reports whether zero-weight inputs keep advancing.
func (s *syncable) Sync() bool { return s.sync }

// SetSync changes whether zero-weight inputs keep advancing.
func (s *syncable) SetSync(sync bool) { s.sync = sync }

func (s *syncable) optimize() bool { return !s.sync }

func amountParameter(name string) []animation.ParameterInfo {
	return []animation.ParameterInfo{{Name: name, Default: variant.Float(0)}}
}

// Blend2 crossfades input "in" into input "blend" by blend_amount. Filtered targets take the
// second input; the rest keep the first.
type Blend2 struct {
	animation.Base
	syncable
}

var _ animation.Node = &Blend2{}

// NewBlend2 creates a two way blend.
func NewBlend2() *Blend2 {
	b := &Blend2{}
	b.Init(b, "in", "blend")
	return b
}

func (b *Blend2) Caption() string { return "Blend2" }

func (b *Blend2) HasFilter() bool { return true }

func (b *Blend2) Parameters() []animation.ParameterInfo { return amountParameter("blend_amount") }

func (b *Blend2) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	amount := ctx.Parameter("blend_amount").AsFloat()
	rem0 := ctx.BlendInput(0, time, seek, seekRoot, 1-amount, animation.FilterBlend, b.optimize())
	rem1 := ctx.BlendInput(1, time, seek, seekRoot, amount, animation.FilterPass, b.optimize())
	if amount > 0.5 {
		return rem1
	}
	return rem0
}

// Blend3 blends "-blend" (amount -1), "in" (amount 0) and "+blend" (amount 1).
type Blend3 struct {
	animation.Base
	syncable
}

var _ animation.Node = &Blend3{}

// NewBlend3 creates a three way blend.
func NewBlend3() *Blend3 {
	b := &Blend3{}
	b.Init(b, "-blend", "in", "+blend")
	return b
}

func (b *Blend3) Caption() string { return "Blend3" }

func (b *Blend3) Parameters() []animation.ParameterInfo { return amountParameter("blend_amount") }

func (b *Blend3) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	amount := ctx.Parameter("blend_amount").AsFloat()
	rem0 := ctx.BlendInput(0, time, seek, seekRoot, max(0, -amount), animation.FilterIgnore, b.optimize())
	rem1 := ctx.BlendInput(1, time, seek, seekRoot, 1-math.Abs(amount), animation.FilterIgnore, b.optimize())
	rem2 := ctx.BlendInput(2, time, seek, seekRoot, max(0, amount), animation.FilterIgnore, b.optimize())
	switch {
	case amount > 0.5:
		return rem2
	case amount < -0.5:
		return rem0
	}
	return rem1
}

// Add2 layers input "add" on top of "in", scaled by add_amount.
type Add2 struct {
	animation.Base
	syncable
}

var _ animation.Node = &Add2{}

// NewAdd2 creates an additive layer node.
func NewAdd2() *Add2 {
	a := &Add2{}
	a.Init(a, "in", "add")
	return a
}

func (a *Add2) Caption() string { return "Add2" }

func (a *Add2) HasFilter() bool { return true }

func (a *Add2) Parameters() []animation.ParameterInfo { return amountParameter("add_amount") }

func (a *Add2) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	amount := ctx.Parameter("add_amount").AsFloat()
	rem := ctx.BlendInput(0, time, seek, seekRoot, 1, animation.FilterIgnore, a.optimize())
	ctx.BlendInput(1, time, seek, seekRoot, amount, animation.FilterPass, a.optimize())
	return rem
}

// Add3 layers "-add" for negative amounts or "+add" for positive ones on top of "in".
type Add3 struct {
	animation.Base
	syncable
}

var _ animation.Node = &Add3{}

// NewAdd3 creates a two sided additive layer node.
func NewAdd3() *Add3 {
	a := &Add3{}
	a.Init(a, "-add", "in", "+add")
	return a
}

func (a *Add3) Caption() string { return "Add3" }

func (a *Add3) HasFilter() bool { return true }

func (a *Add3) Parameters() []animation.ParameterInfo { return amountParameter("add_amount") }

func (a *Add3) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	amount := ctx.Parameter("add_amount").AsFloat()
	ctx.BlendInput(0, time, seek, seekRoot, max(0, -amount), animation.FilterPass, a.optimize())
	rem := ctx.BlendInput(1, time, seek, seekRoot, 1, animation.FilterIgnore, a.optimize())
	ctx.BlendInput(2, time, seek, seekRoot, max(0, amount), animation.FilterPass, a.optimize())
	return rem
}

// Sub2 removes input "sub" from "in", scaled by sub_amount.
type Sub2 struct {
	animation.Base
	syncable
}

var _ animation.Node = &Sub2{}

// NewSub2 creates a subtractive layer node.
func NewSub2() *Sub2 {
	s := &Sub2{}
	s.Init(s, "in", "sub")
	return s
}

func (s *Sub2) Caption() string { return "Sub2" }

func (s *Sub2) HasFilter() bool { return true }

func (s *Sub2) Parameters() []animation.ParameterInfo { return amountParameter("sub_amount") }

func (s *Sub2) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	amount := ctx.Parameter("sub_amount").AsFloat()
	ctx.BlendInput(1, time, seek, seekRoot, -amount, animation.FilterPass, s.optimize())
	return ctx.BlendInput(0, time, seek, seekRoot, 1, animation.FilterIgnore, s.optimize())
}
