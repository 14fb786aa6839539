// Package variant holds the dynamically typed values that value tracks, method arguments and graph
// parameters carry, together with the arithmetic the blend evaluator needs on them.
package variant

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

// Kind tags the dynamic type held by a Variant.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVector2
	KindVector3
	KindQuaternion
	KindColor
	KindTransform
)

var kindNames = [...]string{
	KindNil:        "nil",
	KindBool:       "bool",
	KindInt:        "int",
	KindFloat:      "float",
	KindString:     "string",
	KindVector2:    "vector2",
	KindVector3:    "vector3",
	KindQuaternion: "quaternion",
	KindColor:      "color",
	KindTransform:  "transform",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the kind named name, as printed by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindNil, false
}

// Blendable reports whether values of kind k support weighted arithmetic.
// Other kinds snap to the nearest contributing value instead.
func (k Kind) Blendable() bool {
	switch k {
	case KindInt, KindFloat, KindVector2, KindVector3, KindQuaternion, KindColor, KindTransform:
		return true
	}
	return false
}

// Variant is an immutable tagged value. The zero Variant is nil.
type Variant struct {
	kind Kind
	val  any
}

// Nil returns the nil variant.
func Nil() Variant { return Variant{} }

// Bool wraps a boolean.
func Bool(b bool) Variant { return Variant{kind: KindBool, val: b} }

// Int wraps an integer.
func Int(i int64) Variant { return Variant{kind: KindInt, val: i} }

// Float wraps a float.
func Float(f float64) Variant { return Variant{kind: KindFloat, val: f} }

// String wraps a string.
func String(s string) Variant { return Variant{kind: KindString, val: s} }

// Vector2 wraps a 2D vector.
func Vector2(v vec.Vec2) Variant { return Variant{kind: KindVector2, val: v} }

// Vector3 wraps a 3D vector.
func Vector3(v r3.Vec) Variant { return Variant{kind: KindVector3, val: v} }

// Quaternion wraps a rotation.
func Quaternion(q quat.Number) Variant { return Variant{kind: KindQuaternion, val: q} }

// Color wraps a color.
func Color(c common.Color) Variant { return Variant{kind: KindColor, val: c} }

// Transform wraps a decomposed transform.
func Transform(t common.Transform) Variant { return Variant{kind: KindTransform, val: t} }

// Kind returns the tag of the held value.
func (v Variant) Kind() Kind { return v.kind }

// IsNil reports whether v holds no value.
func (v Variant) IsNil() bool { return v.kind == KindNil }

// AsBool returns the boolean value, converting numbers by non-zero test.
func (v Variant) AsBool() bool {
	switch v.kind {
	case KindBool:
		return v.val.(bool)
	case KindInt:
		return v.val.(int64) != 0
	case KindFloat:
		return v.val.(float64) != 0
	case KindString:
		return v.val.(string) != ""
	}
	return false
}

// AsInt returns the integer value, truncating floats.
func (v Variant) AsInt() int64 {
	switch v.kind {
	case KindInt:
		return v.val.(int64)
	case KindFloat:
		return int64(v.val.(float64))
	case KindBool:
		if v.val.(bool) {
			return 1
		}
	}
	return 0
}

// AsFloat returns the float value, widening integers and booleans.
func (v Variant) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.val.(float64)
	case KindInt:
		return float64(v.val.(int64))
	case KindBool:
		if v.val.(bool) {
			return 1
		}
	}
	return 0
}

// AsString returns the string value, or the formatted value for other kinds.
func (v Variant) AsString() string {
	if v.kind == KindString {
		return v.val.(string)
	}
	return v.String()
}

// AsVector2 returns the 2D vector value or the zero vector.
func (v Variant) AsVector2() vec.Vec2 {
	if v.kind == KindVector2 {
		return v.val.(vec.Vec2)
	}
	return vec.Vec2{}
}

// AsVector3 returns the 3D vector value or the zero vector.
func (v Variant) AsVector3() r3.Vec {
	if v.kind == KindVector3 {
		return v.val.(r3.Vec)
	}
	return r3.Vec{}
}

// AsQuaternion returns the rotation value or identity.
func (v Variant) AsQuaternion() quat.Number {
	if v.kind == KindQuaternion {
		return v.val.(quat.Number)
	}
	return common.QuatIdentity()
}

// AsColor returns the color value or transparent black.
func (v Variant) AsColor() common.Color {
	if v.kind == KindColor {
		return v.val.(common.Color)
	}
	return common.Color{}
}

// AsTransform returns the transform value or identity.
func (v Variant) AsTransform() common.Transform {
	if v.kind == KindTransform {
		return v.val.(common.Transform)
	}
	return common.IdentityTransform()
}

// Interface returns the underlying Go value (nil for the nil variant).
func (v Variant) Interface() any { return v.val }

func (v Variant) String() string {
	switch v.kind {
	case KindNil:
		return "<nil>"
	case KindBool:
		return strconv.FormatBool(v.val.(bool))
	case KindInt:
		return strconv.FormatInt(v.val.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.val.(float64), 'g', -1, 64)
	case KindString:
		return v.val.(string)
	case KindVector2:
		p := v.val.(vec.Vec2)
		return fmt.Sprintf("(%g, %g)", p.X, p.Y)
	case KindVector3:
		p := v.val.(r3.Vec)
		return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
	case KindQuaternion:
		q := v.val.(quat.Number)
		return fmt.Sprintf("(%g, %g, %g, %g)", q.Imag, q.Jmag, q.Kmag, q.Real)
	case KindColor:
		c := v.val.(common.Color)
		return fmt.Sprintf("(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
	case KindTransform:
		t := v.val.(common.Transform)
		return fmt.Sprintf("[origin: (%g, %g, %g)]", t.Origin.X, t.Origin.Y, t.Origin.Z)
	}
	return fmt.Sprintf("%v", v.val)
}

// Equal reports whether a and b hold the same kind and value.
func Equal(a, b Variant) bool {
	if a.kind != b.kind {
		return false
	}
	return a.val == b.val
}

// IsEqualApprox compares a and b with float tolerance for numeric kinds.
func IsEqualApprox(a, b Variant) bool {
	if a.kind != b.kind {
		if a.kind.Blendable() && b.kind.Blendable() && isScalar(a.kind) && isScalar(b.kind) {
			return common.IsEqualApprox(a.AsFloat(), b.AsFloat())
		}
		return false
	}
	switch a.kind {
	case KindFloat:
		return common.IsEqualApprox(a.AsFloat(), b.AsFloat())
	case KindVector2:
		p, q := a.AsVector2(), b.AsVector2()
		return common.IsEqualApprox(p.X, q.X) && common.IsEqualApprox(p.Y, q.Y)
	case KindVector3:
		return common.Vec3IsEqualApprox(a.AsVector3(), b.AsVector3())
	case KindQuaternion:
		return common.QuatIsEqualApprox(a.AsQuaternion(), b.AsQuaternion())
	case KindColor:
		p, q := a.AsColor(), b.AsColor()
		return common.IsEqualApprox(p.R, q.R) && common.IsEqualApprox(p.G, q.G) &&
			common.IsEqualApprox(p.B, q.B) && common.IsEqualApprox(p.A, q.A)
	case KindTransform:
		p, q := a.AsTransform(), b.AsTransform()
		return common.Vec3IsEqualApprox(p.Origin, q.Origin) &&
			common.QuatIsEqualApprox(p.Rotation, q.Rotation) &&
			common.Vec3IsEqualApprox(p.Scale, q.Scale)
	}
	return Equal(a, b)
}

func isScalar(k Kind) bool {
	return k == KindInt || k == KindFloat
}

func roundInt(f float64) int64 {
	return int64(math.Round(f))
}
