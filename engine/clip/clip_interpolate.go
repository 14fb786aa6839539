package clip

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

const bezierIterations = 20

// span locates the pair of keys surrounding at and the fraction between them.
// For a linear looping clip with loop wrap enabled the pair may straddle the loop point.
func (c *clip) span(t *track, at float64) (from, to int, frac float64) {
	n := len(t.keys)
	if n == 1 {
		return 0, 0, 0
	}
	wrap := c.loopMode == LoopLinear && t.loopWrap && c.length > 0

	idx := t.find(at)
	switch {
	case idx < 0:
		if !wrap {
			return 0, 0, 0
		}
		prev := t.keys[n-1].keyTime() - c.length
		width := t.keys[0].keyTime() - prev
		if width <= 0 {
			return 0, 0, 0
		}
		return n - 1, 0, (at - prev) / width
	case idx == n-1:
		if !wrap {
			return idx, idx, 0
		}
		last := t.keys[idx].keyTime()
		width := t.keys[0].keyTime() + c.length - last
		if width <= 0 {
			return idx, idx, 0
		}
		return idx, 0, (at - last) / width
	default:
		t0, t1 := t.keys[idx].keyTime(), t.keys[idx+1].keyTime()
		if t1 <= t0 {
			return idx, idx, 0
		}
		return idx, idx + 1, (at - t0) / (t1 - t0)
	}
}

// neighbours returns the indices before from and after to used by cubic interpolation.
func neighbours(n, from, to int) (pre, post int) {
	pre, post = from-1, to+1
	if pre < 0 {
		pre = from
	}
	if post >= n {
		post = to
	}
	return pre, post
}

func cubic(from, to, pre, post, w float64) float64 {
	return 0.5 * ((from * 2.0) +
		(-pre+to)*w +
		(2.0*pre-5.0*from+4.0*to-post)*(w*w) +
		(-pre+3.0*from-3.0*to+post)*(w*w*w))
}

func (c *clip) sampleVector(t *track, at float64) r3.Vec {
	from, to, w := c.span(t, at)
	a := t.keys[from].(VectorKey).Value
	if from == to {
		return a
	}
	b := t.keys[to].(VectorKey).Value
	switch t.interpolation {
	case InterpolationNearest:
		return a
	case InterpolationCubic:
		pi, qi := neighbours(len(t.keys), from, to)
		p := t.keys[pi].(VectorKey).Value
		q := t.keys[qi].(VectorKey).Value
		return r3.Vec{
			X: cubic(a.X, b.X, p.X, q.X, w),
			Y: cubic(a.Y, b.Y, p.Y, q.Y, w),
			Z: cubic(a.Z, b.Z, p.Z, q.Z, w),
		}
	}
	return common.Vec3Lerp(a, b, w)
}

func (c *clip) sampleRotation(t *track, at float64) quat.Number {
	from, to, w := c.span(t, at)
	a := common.QuatNormalize(t.keys[from].(RotationKey).Value)
	if from == to || t.interpolation == InterpolationNearest {
		return a
	}
	b := common.QuatNormalize(t.keys[to].(RotationKey).Value)
	return common.QuatSlerp(a, b, w)
}

func (c *clip) sampleScalar(t *track, at float64) float64 {
	from, to, w := c.span(t, at)
	a := t.keys[from].(ScalarKey).Value
	if from == to {
		return a
	}
	b := t.keys[to].(ScalarKey).Value
	switch t.interpolation {
	case InterpolationNearest:
		return a
	case InterpolationCubic:
		pi, qi := neighbours(len(t.keys), from, to)
		return cubic(a, b, t.keys[pi].(ScalarKey).Value, t.keys[qi].(ScalarKey).Value, w)
	}
	return common.Lerp(a, b, w)
}

func (c *clip) sampleValue(t *track, at float64) variant.Variant {
	from, to, w := c.span(t, at)
	a := t.keys[from].(ValueKey).Value
	if from == to || t.interpolation == InterpolationNearest {
		return a
	}
	b := t.keys[to].(ValueKey).Value
	if t.interpolation == InterpolationCubic && a.Kind() == variant.KindFloat && b.Kind() == variant.KindFloat {
		pi, qi := neighbours(len(t.keys), from, to)
		p := t.keys[pi].(ValueKey).Value
		q := t.keys[qi].(ValueKey).Value
		if p.Kind() == variant.KindFloat && q.Kind() == variant.KindFloat {
			return variant.Float(cubic(a.AsFloat(), b.AsFloat(), p.AsFloat(), q.AsFloat(), w))
		}
	}
	return variant.Interpolate(a, b, w)
}

// sampleBezier evaluates the curve between the surrounding keys. The curve is parametric in
// (time, value); the parameter matching the requested time is found by bisection.
func sampleBezier(t *track, at float64) float64 {
	idx := t.find(at)
	n := len(t.keys)
	if idx < 0 {
		return t.keys[0].(BezierKey).Value
	}
	if idx >= n-1 {
		return t.keys[n-1].(BezierKey).Value
	}

	k0 := t.keys[idx].(BezierKey)
	k1 := t.keys[idx+1].(BezierKey)
	duration := k1.Time - k0.Time
	if at == k0.Time || duration <= 0 {
		return k0.Value
	}

	start := vec.Vec2{X: 0, Y: k0.Value}
	startOut := start.Add(k0.OutHandle)
	end := vec.Vec2{X: duration, Y: k1.Value}
	endIn := end.Add(k1.InHandle)
	local := at - k0.Time

	low, high := 0.0, 1.0
	for range bezierIterations {
		middle := (low + high) / 2
		if bezierPoint(start, startOut, endIn, end, middle).X < local {
			low = middle
		} else {
			high = middle
		}
	}
	return bezierPoint(start, startOut, endIn, end, (low+high)/2).Y
}

func bezierPoint(p0, p1, p2, p3 vec.Vec2, s float64) vec.Vec2 {
	omt := 1 - s
	omt2 := omt * omt
	omt3 := omt2 * omt
	s2 := s * s
	s3 := s2 * s
	return p0.Mul(omt3).Add(p1.Mul(3 * omt2 * s)).Add(p2.Mul(3 * omt * s2)).Add(p3.Mul(s3))
}
