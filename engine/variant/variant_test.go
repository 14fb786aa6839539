package variant

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

func TestSubZeroIsIdentity(t *testing.T) {
	values := []Variant{
		Int(7),
		Float(2.5),
		Vector2(vec.Vec2{X: 1, Y: -2}),
		Vector3(r3.Vec{X: 1, Y: 2, Z: 3}),
		Quaternion(common.QuatFromAxisAngle(r3.Vec{Z: 1}, 0.4)),
		Color(common.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}),
		Transform(common.Transform{
			Origin:   r3.Vec{X: 4},
			Rotation: common.QuatFromAxisAngle(r3.Vec{X: 1}, 1),
			Scale:    common.Vec3One(),
		}),
	}
	for _, v := range values {
		if got := Sub(v, Zero(v)); !IsEqualApprox(got, v) {
			t.Errorf("%s: Sub(v, Zero(v)) = %v, want %v", v.Kind(), got, v)
		}
		if got := Blend(Zero(v), v, 1); !IsEqualApprox(got, v) {
			t.Errorf("%s: Blend(Zero(v), v, 1) = %v, want %v", v.Kind(), got, v)
		}
	}
}

func TestBlendWeighted(t *testing.T) {
	acc := Zero(Vector3(r3.Vec{}))
	acc = Blend(acc, Vector3(r3.Vec{X: 10}), 0.75)
	acc = Blend(acc, Vector3(r3.Vec{Y: 10}), 0.25)
	if want := Vector3(r3.Vec{X: 7.5, Y: 2.5}); !IsEqualApprox(acc, want) {
		t.Errorf("accumulated = %v, want %v", acc, want)
	}

	f := Blend(Float(1), Float(4), 0.5)
	if got := f.AsFloat(); got != 3 {
		t.Errorf("float blend = %v, want 3", got)
	}

	i := Blend(Int(1), Int(3), 0.5)
	if got := i.AsInt(); got != 3 {
		t.Errorf("int blend = %v, want 3 (rounded from 2.5)", got)
	}
}

func TestNonBlendableSnaps(t *testing.T) {
	acc := Zero(String("x"))
	acc = Blend(acc, Sub(String("walk"), Zero(String(""))), 0.25)
	acc = Blend(acc, Sub(String("run"), Zero(String(""))), 0.75)
	if got := acc.AsString(); got != "run" {
		t.Errorf("snap = %q, want %q", got, "run")
	}

	if got := Interpolate(Bool(false), Bool(true), 0.4); got.AsBool() {
		t.Errorf("Interpolate(false, true, 0.4) = true, want false")
	}
	if got := Blend(Nil(), String("a"), 0.1); got.AsString() != "a" {
		t.Errorf("Blend(nil, a, 0.1) = %v, want a", got)
	}
}

func TestRotationArithmetic(t *testing.T) {
	a := common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)
	b := common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/6)

	diff := Sub(Quaternion(a), Quaternion(b))
	want := common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/3)
	if !common.QuatIsEqualApprox(diff.AsQuaternion(), want) {
		t.Errorf("Sub = %v, want %v", diff, want)
	}

	half := Blend(Quaternion(b), diff, 0.5)
	wantHalf := common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/3)
	if !common.QuatIsEqualApprox(half.AsQuaternion(), wantHalf) {
		t.Errorf("Blend = %v, want %v", half, wantHalf)
	}

	mid := Interpolate(Quaternion(common.QuatIdentity()), Quaternion(a), 0.5)
	if !common.QuatIsEqualApprox(mid.AsQuaternion(), common.QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/4)) {
		t.Errorf("Interpolate = %v", mid)
	}
}

func TestConversions(t *testing.T) {
	if Int(3).AsFloat() != 3 {
		t.Error("Int(3).AsFloat() != 3")
	}
	if !Float(0.5).AsBool() {
		t.Error("Float(0.5).AsBool() = false")
	}
	if Float(2.9).AsInt() != 2 {
		t.Error("Float(2.9).AsInt() != 2")
	}
	if Nil().String() != "<nil>" {
		t.Errorf("Nil().String() = %q", Nil().String())
	}
	if !Equal(String("a"), String("a")) || Equal(String("a"), Int(1)) {
		t.Error("Equal mismatch")
	}
}
