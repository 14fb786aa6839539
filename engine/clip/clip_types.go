package clip

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

var (
	// ErrNotFound is returned by the typed samplers when a track has no keys at all.
	ErrNotFound = errors.New("clip: track has no keys")

	// ErrTrackIndex is returned when a track index is out of range.
	ErrTrackIndex = errors.New("clip: track index out of range")

	// ErrTrackType is returned when a sampler is used on a track of another kind.
	ErrTrackType = errors.New("clip: wrong track type")
)

// TrackType is the kind of property a track drives.
type TrackType uint8

const (
	TrackTypeValue TrackType = iota
	TrackTypePosition3D
	TrackTypeRotation3D
	TrackTypeScale3D
	TrackTypeBlendShape
	TrackTypeMethod
	TrackTypeBezier
	TrackTypeAudio
	TrackTypeAnimation
)

func (t TrackType) String() string {
	switch t {
	case TrackTypeValue:
		return "value"
	case TrackTypePosition3D:
		return "position_3d"
	case TrackTypeRotation3D:
		return "rotation_3d"
	case TrackTypeScale3D:
		return "scale_3d"
	case TrackTypeBlendShape:
		return "blend_shape"
	case TrackTypeMethod:
		return "method"
	case TrackTypeBezier:
		return "bezier"
	case TrackTypeAudio:
		return "audio"
	case TrackTypeAnimation:
		return "animation"
	}
	return "unknown"
}

// IsTransform reports whether t is one of the three transform component kinds.
func (t TrackType) IsTransform() bool {
	return t == TrackTypePosition3D || t == TrackTypeRotation3D || t == TrackTypeScale3D
}

// LoopMode controls how time outside [0, length] maps back into the clip.
type LoopMode uint8

const (
	LoopNone LoopMode = iota
	LoopLinear
	LoopPingPong
)

// UpdateMode controls how value tracks are applied.
type UpdateMode uint8

const (
	// UpdateContinuous blends interpolated values every frame.
	UpdateContinuous UpdateMode = iota
	// UpdateDiscrete writes key values only when the play head crosses them.
	UpdateDiscrete
	// UpdateCapture is evaluated like UpdateContinuous by the blend evaluator.
	UpdateCapture
)

// InterpolationType selects how values between keys are computed.
type InterpolationType uint8

const (
	InterpolationNearest InterpolationType = iota
	InterpolationLinear
	InterpolationCubic
)

// VectorKey is a position or scale keyframe.
type VectorKey struct {
	Time  float64
	Value r3.Vec
}

// RotationKey is a rotation keyframe.
type RotationKey struct {
	Time  float64
	Value quat.Number
}

// ScalarKey is a blend shape keyframe.
type ScalarKey struct {
	Time  float64
	Value float64
}

// ValueKey is a keyframe on a generic property.
type ValueKey struct {
	Time  float64
	Value variant.Variant
}

// BezierKey is a scalar keyframe with tangent handles. Handles are offsets in
// (time, value) space relative to the key.
type BezierKey struct {
	Time      float64
	Value     float64
	InHandle  vec.Vec2
	OutHandle vec.Vec2
}

// MethodKey fires Method with Args when crossed.
type MethodKey struct {
	Time   float64
	Method string
	Args   []variant.Variant
}

// AudioKey starts Stream when crossed. StartOffset skips into the stream, EndOffset trims
// its tail.
type AudioKey struct {
	Time        float64
	Stream      common.AudioStream
	StartOffset float64
	EndOffset   float64
}

// AnimationKey starts Animation on a nested player when crossed. The name "[stop]" stops it.
type AnimationKey struct {
	Time      float64
	Animation string
}

// StopAnimation is the animation key name that stops a nested player instead of starting one.
const StopAnimation = "[stop]"

type timed interface {
	keyTime() float64
}

func (k VectorKey) keyTime() float64    { return k.Time }
func (k RotationKey) keyTime() float64  { return k.Time }
func (k ScalarKey) keyTime() float64    { return k.Time }
func (k ValueKey) keyTime() float64     { return k.Time }
func (k BezierKey) keyTime() float64    { return k.Time }
func (k MethodKey) keyTime() float64    { return k.Time }
func (k AudioKey) keyTime() float64     { return k.Time }
func (k AnimationKey) keyTime() float64 { return k.Time }
