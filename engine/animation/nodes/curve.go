package nodes

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// curve remaps a linear 0..1 progress through an easing function.
type curve struct {
	fn    ease.TweenFunc
	tween *gween.Tween
}

func newCurve(fn ease.TweenFunc) curve {
	if fn == nil {
		fn = ease.Linear
	}
	return curve{fn: fn, tween: gween.New(0, 1, 1, fn)}
}

// at returns the eased value at progress p, clamped to [0, 1].
func (c curve) at(p float64) float64 {
	if c.tween == nil {
		return min(max(p, 0), 1)
	}
	v, _ := c.tween.Set(float32(p))
	return float64(v)
}
