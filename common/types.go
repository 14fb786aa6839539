// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform represents a decomposed transform: translation, rotation and per-axis scale.
type Transform struct {
	// Origin is the translation.
	Origin r3.Vec

	// Rotation is the orientation as a unit quaternion.
	Rotation quat.Number

	// Scale is the scale factor along each axis.
	Scale r3.Vec
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3One()}
}

// Xform applies the transform to a point: scale, then rotate, then translate.
func (t Transform) Xform(v r3.Vec) r3.Vec {
	return r3.Add(t.Origin, QuatRotate(t.Rotation, Vec3MulComponents(t.Scale, v)))
}

// Compose returns parent * child, i.e. child expressed in the parent's space.
// Non-uniform scale combined with rotation is approximated component-wise, which is exact
// for uniform scale and for the axis-aligned scales skeleton rests normally carry.
//
// Parameters:
//   - child: the transform relative to t
//
// Returns:
//   - Transform: the combined transform
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Origin:   t.Xform(child.Origin),
		Rotation: QuatNormalize(quat.Mul(t.Rotation, child.Rotation)),
		Scale:    Vec3MulComponents(t.Scale, child.Scale),
	}
}

// Matrix builds the column-major 4x4 matrix for the transform. Columns are the scaled basis
// axes followed by the origin.
//
// Returns:
//   - [16]float64: the column-major matrix
func (t Transform) Matrix() [16]float64 {
	q := QuatNormalize(t.Rotation)
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real

	var out [16]float64
	out[0] = (1 - 2*(y*y+z*z)) * t.Scale.X
	out[1] = (2 * (x*y + w*z)) * t.Scale.X
	out[2] = (2 * (x*z - w*y)) * t.Scale.X

	out[4] = (2 * (x*y - w*z)) * t.Scale.Y
	out[5] = (1 - 2*(x*x+z*z)) * t.Scale.Y
	out[6] = (2 * (y*z + w*x)) * t.Scale.Y

	out[8] = (2 * (x*z + w*y)) * t.Scale.Z
	out[9] = (2 * (y*z - w*x)) * t.Scale.Z
	out[10] = (1 - 2*(x*x+y*y)) * t.Scale.Z

	out[12] = t.Origin.X
	out[13] = t.Origin.Y
	out[14] = t.Origin.Z
	out[15] = 1
	return out
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float64
}

// AudioStream is a playable sound resource as seen by audio tracks.
type AudioStream interface {
	// Length returns the stream length in seconds, or 0 when it is unknown.
	Length() float64
}
