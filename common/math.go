package common

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CmpEpsilon is the tolerance used when deciding whether a weight or length is effectively zero.
const CmpEpsilon = 0.00001

const (
	linearToDBFactor = 8.6858896380650365530225783783321
	dbToLinearFactor = 0.11512925464970228420089957273422
)

// IsZeroApprox reports whether v is within CmpEpsilon of zero.
func IsZeroApprox(v float64) bool {
	return math.Abs(v) < CmpEpsilon
}

// IsEqualApprox reports whether a and b are equal within a tolerance scaled to their magnitude.
func IsEqualApprox(a, b float64) bool {
	if a == b {
		return true
	}
	tolerance := CmpEpsilon * math.Abs(a)
	if tolerance < CmpEpsilon {
		tolerance = CmpEpsilon
	}
	return math.Abs(a-b) < tolerance
}

// Fposmod returns the floating point remainder of x/y that keeps the sign of y.
// Unlike math.Mod, negative inputs wrap into [0, y) for a positive y.
//
// Parameters:
//   - x: the dividend
//   - y: the divisor
//
// Returns:
//   - float64: x wrapped into the half-open range spanned by y
func Fposmod(x, y float64) float64 {
	v := math.Mod(x, y)
	if (v < 0 && y > 0) || (v > 0 && y < 0) {
		v += y
	}
	return v + 0.0
}

// Fract returns the fractional part of v, always in [0, 1).
func Fract(v float64) float64 {
	return v - math.Floor(v)
}

// Pingpong reflects value back and forth inside [0, length] as a triangle wave.
// A zero length yields zero.
//
// Parameters:
//   - value: the unwrapped input value
//   - length: the half period of the triangle wave
//
// Returns:
//   - float64: the reflected value in [0, length]
func Pingpong(value, length float64) float64 {
	if length == 0 {
		return 0
	}
	return math.Abs(Fract((value-length)/(length*2.0))*length*2.0 - length)
}

// LinearToDB converts a linear amplitude factor into decibels.
func LinearToDB(linear float64) float64 {
	return math.Log(linear) * linearToDBFactor
}

// DBToLinear converts decibels into a linear amplitude factor.
func DBToLinear(db float64) float64 {
	return math.Exp(db * dbToLinearFactor)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// --- Vectors ---

// Vec3Lerp linearly interpolates each component of a toward b by t.
func Vec3Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Vec3One returns the unit scale vector (1, 1, 1).
func Vec3One() r3.Vec {
	return r3.Vec{X: 1, Y: 1, Z: 1}
}

// Vec3MulComponents multiplies a and b component-wise.
func Vec3MulComponents(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

// Vec3IsEqualApprox compares two vectors component-wise within CmpEpsilon.
func Vec3IsEqualApprox(a, b r3.Vec) bool {
	return IsEqualApprox(a.X, b.X) && IsEqualApprox(a.Y, b.Y) && IsEqualApprox(a.Z, b.Z)
}

// --- Quaternions ---
//
// Quaternions use gonum's quat.Number where Real is the scalar part and Imag, Jmag, Kmag
// hold the x, y and z components.

// QuatIdentity returns the identity rotation.
func QuatIdentity() quat.Number {
	return quat.Number{Real: 1}
}

// QuatFromXYZW builds a rotation from components in x, y, z, w order.
func QuatFromXYZW(x, y, z, w float64) quat.Number {
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// QuatDot returns the four-dimensional dot product of a and b.
func QuatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// QuatNormalize scales q to unit length. A zero quaternion normalizes to identity.
func QuatNormalize(q quat.Number) quat.Number {
	l := quat.Abs(q)
	if l == 0 {
		return QuatIdentity()
	}
	return quat.Scale(1/l, q)
}

// QuatInverse returns the inverse rotation of q.
func QuatInverse(q quat.Number) quat.Number {
	return quat.Inv(q)
}

// QuatSlerp spherically interpolates from -> to by weight, always travelling the shorter arc.
// Nearly parallel inputs fall back to a linear blend to avoid dividing by a vanishing sine.
//
// Parameters:
//   - from: the starting rotation (unit length)
//   - to: the target rotation (unit length)
//   - weight: interpolation factor, 0 returns from and 1 returns to
//
// Returns:
//   - quat.Number: the interpolated rotation
func QuatSlerp(from, to quat.Number, weight float64) quat.Number {
	cosom := QuatDot(from, to)
	if cosom < 0 {
		cosom = -cosom
		to = quat.Scale(-1, to)
	}

	var scale0, scale1 float64
	if 1.0-cosom > CmpEpsilon {
		omega := math.Acos(cosom)
		sinom := math.Sin(omega)
		scale0 = math.Sin((1.0-weight)*omega) / sinom
		scale1 = math.Sin(weight*omega) / sinom
	} else {
		scale0 = 1.0 - weight
		scale1 = weight
	}
	return quat.Add(quat.Scale(scale0, from), quat.Scale(scale1, to))
}

// QuatIsEqualApprox compares two rotations component-wise, treating q and -q as equal.
func QuatIsEqualApprox(a, b quat.Number) bool {
	if QuatDot(a, b) < 0 {
		b = quat.Scale(-1, b)
	}
	return IsEqualApprox(a.Real, b.Real) && IsEqualApprox(a.Imag, b.Imag) &&
		IsEqualApprox(a.Jmag, b.Jmag) && IsEqualApprox(a.Kmag, b.Kmag)
}

// QuatFromAxisAngle builds a rotation of angle radians around axis.
func QuatFromAxisAngle(axis r3.Vec, angle float64) quat.Number {
	return quat.Number(r3.NewRotation(angle, axis))
}

// QuatRotate rotates v by the unit rotation q.
func QuatRotate(q quat.Number, v r3.Vec) r3.Vec {
	return r3.Rotation(q).Rotate(v)
}

// QuatFromEuler converts YXZ euler angles (radians) into a rotation, matching the
// convention used for node rotations: yaw, then pitch, then roll.
//
// Parameters:
//   - euler: rotation around X, Y and Z in radians
//
// Returns:
//   - quat.Number: the equivalent unit rotation
func QuatFromEuler(euler r3.Vec) quat.Number {
	hx, hy, hz := euler.X*0.5, euler.Y*0.5, euler.Z*0.5
	sx, cx := math.Sin(hx), math.Cos(hx)
	sy, cy := math.Sin(hy), math.Cos(hy)
	sz, cz := math.Sin(hz), math.Cos(hz)

	qy := quat.Number{Real: cy, Jmag: sy}
	qx := quat.Number{Real: cx, Imag: sx}
	qz := quat.Number{Real: cz, Kmag: sz}
	return quat.Mul(quat.Mul(qy, qx), qz)
}

// QuatToEuler converts a unit rotation into YXZ euler angles (radians).
func QuatToEuler(q quat.Number) r3.Vec {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real

	m00 := 1 - 2*(y*y+z*z)
	m01 := 2 * (x*y - w*z)
	m02 := 2 * (x*z + w*y)
	m10 := 2 * (x*y + w*z)
	m11 := 1 - 2*(x*x+z*z)
	m12 := 2 * (y*z - w*x)
	m22 := 1 - 2*(x*x+y*y)

	switch {
	case m12 >= 1-CmpEpsilon:
		return r3.Vec{X: -math.Pi / 2, Y: -math.Atan2(m01, m00)}
	case m12 <= -(1 - CmpEpsilon):
		return r3.Vec{X: math.Pi / 2, Y: math.Atan2(m01, m00)}
	default:
		return r3.Vec{
			X: math.Asin(-m12),
			Y: math.Atan2(m02, m22),
			Z: math.Atan2(m10, m11),
		}
	}
}
