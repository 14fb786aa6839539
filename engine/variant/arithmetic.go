package variant

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

// Zero returns the additive identity for the kind of v. Rotations use identity, transforms use
// a zero origin, identity rotation and zero scale so that Sub(x, Zero(x)) == x for every kind.
func Zero(v Variant) Variant {
	switch v.kind {
	case KindBool:
		return Bool(false)
	case KindInt:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindString:
		return String("")
	case KindVector2:
		return Vector2(vec.Vec2{})
	case KindVector3:
		return Vector3(r3.Vec{})
	case KindQuaternion:
		return Quaternion(common.QuatIdentity())
	case KindColor:
		return Color(common.Color{})
	case KindTransform:
		return Transform(common.Transform{Rotation: common.QuatIdentity()})
	}
	return Nil()
}

// Sub returns a - b. Rotations return the relative rotation b⁻¹·a. Non-blendable kinds and
// mismatched kinds return a unchanged, which makes a later Blend snap to it.
//
// Parameters:
//   - a: the minuend
//   - b: the subtrahend
//
// Returns:
//   - Variant: the difference, of the same kind as a
func Sub(a, b Variant) Variant {
	if a.kind != b.kind || !a.kind.Blendable() {
		return a
	}
	switch a.kind {
	case KindInt:
		return Int(a.AsInt() - b.AsInt())
	case KindFloat:
		return Float(a.AsFloat() - b.AsFloat())
	case KindVector2:
		return Vector2(a.AsVector2().Sub(b.AsVector2()))
	case KindVector3:
		return Vector3(r3.Sub(a.AsVector3(), b.AsVector3()))
	case KindQuaternion:
		return Quaternion(subRotation(a.AsQuaternion(), b.AsQuaternion()))
	case KindColor:
		p, q := a.AsColor(), b.AsColor()
		return Color(common.Color{R: p.R - q.R, G: p.G - q.G, B: p.B - q.B, A: p.A - q.A})
	case KindTransform:
		p, q := a.AsTransform(), b.AsTransform()
		return Transform(common.Transform{
			Origin:   r3.Sub(p.Origin, q.Origin),
			Rotation: subRotation(p.Rotation, q.Rotation),
			Scale:    r3.Sub(p.Scale, q.Scale),
		})
	}
	return a
}

// Blend returns a + b·c. Rotations compose a·slerp(identity, b, c). Non-blendable or
// mismatched kinds snap: b when c ≥ 0.5, otherwise a (b when a is nil).
//
// Parameters:
//   - a: the accumulated value
//   - b: the weighted contribution
//   - c: the weight
//
// Returns:
//   - Variant: the blended value
func Blend(a, b Variant, c float64) Variant {
	if a.kind != b.kind || !a.kind.Blendable() {
		if a.IsNil() || c >= 0.5 {
			return b
		}
		return a
	}
	switch a.kind {
	case KindInt:
		return Int(roundInt(a.AsFloat() + b.AsFloat()*c))
	case KindFloat:
		return Float(a.AsFloat() + b.AsFloat()*c)
	case KindVector2:
		return Vector2(a.AsVector2().Add(b.AsVector2().Mul(c)))
	case KindVector3:
		return Vector3(r3.Add(a.AsVector3(), r3.Scale(c, b.AsVector3())))
	case KindQuaternion:
		return Quaternion(blendRotation(a.AsQuaternion(), b.AsQuaternion(), c))
	case KindColor:
		p, q := a.AsColor(), b.AsColor()
		return Color(common.Color{R: p.R + q.R*c, G: p.G + q.G*c, B: p.B + q.B*c, A: p.A + q.A*c})
	case KindTransform:
		p, q := a.AsTransform(), b.AsTransform()
		return Transform(common.Transform{
			Origin:   r3.Add(p.Origin, r3.Scale(c, q.Origin)),
			Rotation: blendRotation(p.Rotation, q.Rotation, c),
			Scale:    r3.Add(p.Scale, r3.Scale(c, q.Scale)),
		})
	}
	return a
}

// Interpolate returns the value a fraction t of the way from a to b. Rotations slerp.
// Non-blendable or mismatched kinds return the nearer endpoint.
func Interpolate(a, b Variant, t float64) Variant {
	if a.kind != b.kind || !a.kind.Blendable() {
		if t < 0.5 {
			return a
		}
		return b
	}
	switch a.kind {
	case KindInt:
		return Int(roundInt(common.Lerp(a.AsFloat(), b.AsFloat(), t)))
	case KindFloat:
		return Float(common.Lerp(a.AsFloat(), b.AsFloat(), t))
	case KindVector2:
		p, q := a.AsVector2(), b.AsVector2()
		return Vector2(p.Add(q.Sub(p).Mul(t)))
	case KindVector3:
		return Vector3(common.Vec3Lerp(a.AsVector3(), b.AsVector3(), t))
	case KindQuaternion:
		return Quaternion(common.QuatSlerp(common.QuatNormalize(a.AsQuaternion()), common.QuatNormalize(b.AsQuaternion()), t))
	case KindColor:
		p, q := a.AsColor(), b.AsColor()
		return Color(common.Color{
			R: common.Lerp(p.R, q.R, t),
			G: common.Lerp(p.G, q.G, t),
			B: common.Lerp(p.B, q.B, t),
			A: common.Lerp(p.A, q.A, t),
		})
	case KindTransform:
		p, q := a.AsTransform(), b.AsTransform()
		return Transform(common.Transform{
			Origin:   common.Vec3Lerp(p.Origin, q.Origin, t),
			Rotation: common.QuatSlerp(common.QuatNormalize(p.Rotation), common.QuatNormalize(q.Rotation), t),
			Scale:    common.Vec3Lerp(p.Scale, q.Scale, t),
		})
	}
	return a
}

func subRotation(a, b quat.Number) quat.Number {
	return common.QuatNormalize(quat.Mul(common.QuatInverse(b), a))
}

func blendRotation(a, b quat.Number, c float64) quat.Number {
	return common.QuatNormalize(quat.Mul(a, common.QuatSlerp(common.QuatIdentity(), common.QuatNormalize(b), c)))
}
