package common

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func negate(q quat.Number) quat.Number {
	return quat.Scale(-1, q)
}

func TestFposmod(t *testing.T) {
	cases := []struct {
		x, y, want float64
	}{
		{1.5, 1, 0.5},
		{-0.25, 1, 0.75},
		{-1, 1, 0},
		{3, 1.5, 0},
		{0.4, 1, 0.4},
	}
	for _, c := range cases {
		if got := Fposmod(c.x, c.y); !approx(got, c.want) {
			t.Errorf("Fposmod(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
	if got := Fposmod(-1, 1); math.Signbit(got) {
		t.Errorf("Fposmod(-1, 1) returned negative zero")
	}
}

func TestPingpong(t *testing.T) {
	cases := []struct {
		v, l, want float64
	}{
		{0.5, 1, 0.5},
		{1.5, 1, 0.5},
		{2, 1, 0},
		{-0.25, 1, 0.25},
		{2.75, 1, 0.75},
		{3, 0, 0},
	}
	for _, c := range cases {
		if got := Pingpong(c.v, c.l); !approx(got, c.want) {
			t.Errorf("Pingpong(%v, %v) = %v, want %v", c.v, c.l, got, c.want)
		}
	}
}

func TestLinearDBRoundTrip(t *testing.T) {
	if got := LinearToDB(1); !approx(got, 0) {
		t.Errorf("LinearToDB(1) = %v, want 0", got)
	}
	if got := DBToLinear(LinearToDB(0.25)); !approx(got, 0.25) {
		t.Errorf("round trip = %v, want 0.25", got)
	}
	// 1e-5 is the floor used for silent audio tracks.
	if got := LinearToDB(1e-5); !approx(math.Round(got), -100) {
		t.Errorf("LinearToDB(1e-5) = %v, want about -100", got)
	}
}

func TestQuatSlerp(t *testing.T) {
	to := QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)

	if got := QuatSlerp(QuatIdentity(), to, 0); !QuatIsEqualApprox(got, QuatIdentity()) {
		t.Errorf("weight 0 = %v, want identity", got)
	}
	if got := QuatSlerp(QuatIdentity(), to, 1); !QuatIsEqualApprox(got, to) {
		t.Errorf("weight 1 = %v, want %v", got, to)
	}

	half := QuatSlerp(QuatIdentity(), to, 0.5)
	want := QuatFromAxisAngle(r3.Vec{Y: 1}, math.Pi/4)
	if !QuatIsEqualApprox(half, want) {
		t.Errorf("weight 0.5 = %v, want %v", half, want)
	}

	// The negated target is the same rotation; slerp must take the short arc.
	neg := QuatSlerp(QuatIdentity(), QuatNormalize(negate(to)), 0.5)
	if !QuatIsEqualApprox(neg, want) {
		t.Errorf("negated target = %v, want %v", neg, want)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	in := r3.Vec{X: 0.3, Y: -0.7, Z: 1.1}
	out := QuatToEuler(QuatFromEuler(in))
	if !Vec3IsEqualApprox(in, out) {
		t.Errorf("euler round trip = %v, want %v", out, in)
	}
}

func TestTransformCompose(t *testing.T) {
	parent := Transform{
		Origin:   r3.Vec{X: 1},
		Rotation: QuatFromAxisAngle(r3.Vec{Z: 1}, math.Pi/2),
		Scale:    r3.Vec{X: 2, Y: 2, Z: 2},
	}
	child := IdentityTransform()
	child.Origin = r3.Vec{X: 1}

	got := parent.Compose(child)
	// (1,0,0) scaled by 2 and rotated 90 degrees around Z lands on (0,2,0), then shifted by (1,0,0).
	if !Vec3IsEqualApprox(got.Origin, r3.Vec{X: 1, Y: 2}) {
		t.Errorf("origin = %v, want (1, 2, 0)", got.Origin)
	}

	m := parent.Matrix()
	if !approx(m[12], 1) || !approx(m[15], 1) {
		t.Errorf("matrix translation column = %v", m[12:])
	}
	if !approx(m[1], 2) {
		t.Errorf("rotated x axis y component = %v, want 2", m[1])
	}
}

func TestResize(t *testing.T) {
	s := []float64{1, 2, 3}
	s = Resize(s, 2)
	s = Resize(s, 3)
	if s[2] != 0 {
		t.Errorf("regrown element = %v, want 0", s[2])
	}
	s = Resize(s, 5)
	if len(s) != 5 || s[0] != 1 {
		t.Errorf("grown slice = %v", s)
	}
}
