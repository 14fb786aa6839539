package clip

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// track is one typed key list addressed by a scene path.
type track struct {
	kind          TrackType
	path          common.NodePath
	enabled       bool
	interpolation InterpolationType
	updateMode    UpdateMode
	loopWrap      bool
	keys          []timed
}

// clip implements the Clip interface.
type clip struct {
	name     string
	length   float64
	loopMode LoopMode
	tracks   []*track
}

// Clip is a keyframed animation: a set of typed tracks, each addressing a scene path, sharing a
// length and a loop mode. Sampling is pure: identical (track, time) inputs give identical outputs.
type Clip interface {
	// Name returns the clip identifier.
	Name() string

	// Length returns the clip length in seconds.
	Length() float64

	// SetLength changes the clip length.
	//
	// Parameters:
	//   - length: the new length in seconds
	SetLength(length float64)

	// LoopMode returns how time wraps past the clip ends.
	LoopMode() LoopMode

	// SetLoopMode changes how time wraps past the clip ends.
	//
	// Parameters:
	//   - mode: the new loop mode
	SetLoopMode(mode LoopMode)

	// TrackCount returns the number of tracks.
	TrackCount() int

	// TrackType returns the kind of track i.
	TrackType(i int) TrackType

	// TrackPath returns the scene path track i writes to.
	TrackPath(i int) common.NodePath

	// TrackEnabled reports whether track i takes part in evaluation.
	TrackEnabled(i int) bool

	// SetTrackEnabled enables or disables track i.
	//
	// Parameters:
	//   - i: the track index
	//   - enabled: whether the track is evaluated
	SetTrackEnabled(i int, enabled bool)

	// TrackInterpolation returns how values between keys of track i are computed.
	TrackInterpolation(i int) InterpolationType

	// SetTrackInterpolation changes how values between keys of track i are computed.
	//
	// Parameters:
	//   - i: the track index
	//   - interpolation: the interpolation type
	SetTrackInterpolation(i int, interpolation InterpolationType)

	// SetTrackLoopWrap controls whether a linear looping clip interpolates from the last key
	// back into the first one across the loop point.
	//
	// Parameters:
	//   - i: the track index
	//   - wrap: true to interpolate across the loop point
	SetTrackLoopWrap(i int, wrap bool)

	// FindTrack returns the index of the first track of kind with the given path, or -1.
	//
	// Parameters:
	//   - path: the textual scene path
	//   - kind: the track kind
	//
	// Returns:
	//   - int: the track index, or -1 when absent
	FindTrack(path string, kind TrackType) int

	// ValueUpdateMode returns the update mode of value track i.
	ValueUpdateMode(i int) UpdateMode

	// PositionAt samples position track i at time t.
	PositionAt(i int, t float64) (r3.Vec, error)

	// RotationAt samples rotation track i at time t.
	RotationAt(i int, t float64) (quat.Number, error)

	// ScaleAt samples scale track i at time t.
	ScaleAt(i int, t float64) (r3.Vec, error)

	// BlendShapeAt samples blend shape track i at time t.
	BlendShapeAt(i int, t float64) (float64, error)

	// BezierAt samples bezier track i at time t. A key-less track yields 0.
	BezierAt(i int, t float64) float64

	// ValueAt samples value track i at time t. A key-less track yields the nil variant.
	ValueAt(i int, t float64) variant.Variant

	// KeyCount returns the number of keys on track i.
	KeyCount(i int) int

	// FindKey returns the index of the last key at or before t on track i, or -1.
	FindKey(i int, t float64) int

	// KeyTime returns the time of key k on track i.
	KeyTime(i, k int) float64

	// KeyValue returns key k on track i as a variant.
	KeyValue(i, k int) variant.Variant

	// KeysInRange lists the keys crossed when the play head moved by delta to arrive at time.
	// Forward motion covers (time-delta, time], backward motion [time, time-delta) in reverse
	// order. Loop points split the interval; pingponged (+1 reflected at the end, -1 reflected
	// at the start, 0 none) selects how a ping-pong interval is split. A zero delta yields no keys.
	//
	// Parameters:
	//   - i: the track index
	//   - time: the current play head
	//   - delta: the signed distance travelled to reach time
	//   - pingponged: the reflection that happened during the step
	//
	// Returns:
	//   - []int: key indices in the order they were crossed
	KeysInRange(i int, time, delta float64, pingponged int) []int

	// MethodName returns the method of key k on method track i.
	MethodName(i, k int) string

	// MethodParams returns the arguments of key k on method track i.
	MethodParams(i, k int) []variant.Variant

	// AudioStream returns the stream of key k on audio track i.
	AudioStream(i, k int) common.AudioStream

	// AudioStartOffset returns the start offset of key k on audio track i.
	AudioStartOffset(i, k int) float64

	// AudioEndOffset returns the end offset of key k on audio track i.
	AudioEndOffset(i, k int) float64

	// AnimationName returns the animation of key k on animation track i.
	AnimationName(i, k int) string
}

var _ Clip = &clip{}

// NewClip creates a clip with the given name and length. Tracks are added through options.
//
// Parameters:
//   - name: the clip identifier
//   - length: the clip length in seconds
//   - options: functional options adding tracks and configuring looping
//
// Returns:
//   - Clip: the newly created clip
func NewClip(name string, length float64, options ...ClipBuilderOption) Clip {
	c := &clip{
		name:   name,
		length: length,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *clip) addTrack(kind TrackType, path string, keys []timed) *track {
	sort.SliceStable(keys, func(a, b int) bool {
		return keys[a].keyTime() < keys[b].keyTime()
	})
	t := &track{
		kind:          kind,
		path:          common.ParseNodePath(path),
		enabled:       true,
		interpolation: InterpolationLinear,
		loopWrap:      true,
		keys:          keys,
	}
	c.tracks = append(c.tracks, t)
	return t
}

func (c *clip) track(i int) *track {
	if i < 0 || i >= len(c.tracks) {
		return nil
	}
	return c.tracks[i]
}

func (c *clip) typedTrack(i int, kind TrackType) (*track, error) {
	t := c.track(i)
	if t == nil {
		return nil, fmt.Errorf("%w: %d on %q", ErrTrackIndex, i, c.name)
	}
	if t.kind != kind {
		return nil, fmt.Errorf("%w: track %d on %q is %s, not %s", ErrTrackType, i, c.name, t.kind, kind)
	}
	if len(t.keys) == 0 {
		return nil, ErrNotFound
	}
	return t, nil
}

func (c *clip) key(i, k int) timed {
	t := c.track(i)
	if t == nil || k < 0 || k >= len(t.keys) {
		return nil
	}
	return t.keys[k]
}

func (c *clip) Name() string {
	return c.name
}

func (c *clip) Length() float64 {
	return c.length
}

func (c *clip) SetLength(length float64) {
	c.length = length
}

func (c *clip) LoopMode() LoopMode {
	return c.loopMode
}

func (c *clip) SetLoopMode(mode LoopMode) {
	c.loopMode = mode
}

func (c *clip) TrackCount() int {
	return len(c.tracks)
}

func (c *clip) TrackType(i int) TrackType {
	if t := c.track(i); t != nil {
		return t.kind
	}
	return TrackTypeValue
}

func (c *clip) TrackPath(i int) common.NodePath {
	if t := c.track(i); t != nil {
		return t.path
	}
	return common.NodePath{}
}

func (c *clip) TrackEnabled(i int) bool {
	if t := c.track(i); t != nil {
		return t.enabled
	}
	return false
}

func (c *clip) SetTrackEnabled(i int, enabled bool) {
	if t := c.track(i); t != nil {
		t.enabled = enabled
	}
}

func (c *clip) TrackInterpolation(i int) InterpolationType {
	if t := c.track(i); t != nil {
		return t.interpolation
	}
	return InterpolationLinear
}

func (c *clip) SetTrackInterpolation(i int, interpolation InterpolationType) {
	if t := c.track(i); t != nil {
		t.interpolation = interpolation
	}
}

func (c *clip) SetTrackLoopWrap(i int, wrap bool) {
	if t := c.track(i); t != nil {
		t.loopWrap = wrap
	}
}

func (c *clip) FindTrack(path string, kind TrackType) int {
	want := common.ParseNodePath(path)
	for i, t := range c.tracks {
		if t.kind == kind && t.path.Equal(want) {
			return i
		}
	}
	return -1
}

func (c *clip) ValueUpdateMode(i int) UpdateMode {
	if t := c.track(i); t != nil {
		return t.updateMode
	}
	return UpdateContinuous
}

func (c *clip) PositionAt(i int, t float64) (r3.Vec, error) {
	tr, err := c.typedTrack(i, TrackTypePosition3D)
	if err != nil {
		return r3.Vec{}, err
	}
	return c.sampleVector(tr, t), nil
}

func (c *clip) RotationAt(i int, t float64) (quat.Number, error) {
	tr, err := c.typedTrack(i, TrackTypeRotation3D)
	if err != nil {
		return common.QuatIdentity(), err
	}
	return c.sampleRotation(tr, t), nil
}

func (c *clip) ScaleAt(i int, t float64) (r3.Vec, error) {
	tr, err := c.typedTrack(i, TrackTypeScale3D)
	if err != nil {
		return common.Vec3One(), err
	}
	return c.sampleVector(tr, t), nil
}

func (c *clip) BlendShapeAt(i int, t float64) (float64, error) {
	tr, err := c.typedTrack(i, TrackTypeBlendShape)
	if err != nil {
		return 0, err
	}
	return c.sampleScalar(tr, t), nil
}

func (c *clip) BezierAt(i int, t float64) float64 {
	tr, err := c.typedTrack(i, TrackTypeBezier)
	if err != nil {
		return 0
	}
	return sampleBezier(tr, t)
}

func (c *clip) ValueAt(i int, t float64) variant.Variant {
	tr, err := c.typedTrack(i, TrackTypeValue)
	if err != nil {
		return variant.Nil()
	}
	if tr.updateMode == UpdateDiscrete {
		k := tr.find(t)
		if k < 0 {
			k = 0
		}
		return tr.keys[k].(ValueKey).Value
	}
	return c.sampleValue(tr, t)
}

func (c *clip) KeyCount(i int) int {
	if t := c.track(i); t != nil {
		return len(t.keys)
	}
	return 0
}

func (c *clip) FindKey(i int, t float64) int {
	if tr := c.track(i); tr != nil {
		return tr.find(t)
	}
	return -1
}

func (c *clip) KeyTime(i, k int) float64 {
	if key := c.key(i, k); key != nil {
		return key.keyTime()
	}
	return 0
}

func (c *clip) KeyValue(i, k int) variant.Variant {
	switch key := c.key(i, k).(type) {
	case ValueKey:
		return key.Value
	case VectorKey:
		return variant.Vector3(key.Value)
	case RotationKey:
		return variant.Quaternion(key.Value)
	case ScalarKey:
		return variant.Float(key.Value)
	case BezierKey:
		return variant.Float(key.Value)
	case MethodKey:
		return variant.String(key.Method)
	case AnimationKey:
		return variant.String(key.Animation)
	}
	return variant.Nil()
}

func (c *clip) MethodName(i, k int) string {
	if key, ok := c.key(i, k).(MethodKey); ok {
		return key.Method
	}
	return ""
}

func (c *clip) MethodParams(i, k int) []variant.Variant {
	if key, ok := c.key(i, k).(MethodKey); ok {
		return key.Args
	}
	return nil
}

func (c *clip) AudioStream(i, k int) common.AudioStream {
	if key, ok := c.key(i, k).(AudioKey); ok {
		return key.Stream
	}
	return nil
}

func (c *clip) AudioStartOffset(i, k int) float64 {
	if key, ok := c.key(i, k).(AudioKey); ok {
		return key.StartOffset
	}
	return 0
}

func (c *clip) AudioEndOffset(i, k int) float64 {
	if key, ok := c.key(i, k).(AudioKey); ok {
		return key.EndOffset
	}
	return 0
}

func (c *clip) AnimationName(i, k int) string {
	if key, ok := c.key(i, k).(AnimationKey); ok {
		return key.Animation
	}
	return ""
}

// find returns the index of the last key with time <= t, or -1 when t precedes every key.
func (t *track) find(at float64) int {
	return sort.Search(len(t.keys), func(k int) bool {
		return t.keys[k].keyTime() > at
	}) - 1
}
