package clip

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/spatial/r3"
	"seehuhn.de/go/geom/vec"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPositionSampling(t *testing.T) {
	c := NewClip("walk", 1,
		WithPositionTrack("Body",
			VectorKey{Time: 1, Value: r3.Vec{X: 1}},
			VectorKey{Time: 0, Value: r3.Vec{}},
		),
	)

	cases := []struct {
		at   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{2, 1},
	}
	for _, tc := range cases {
		got, err := c.PositionAt(0, tc.at)
		if err != nil {
			t.Fatalf("PositionAt(%v): %v", tc.at, err)
		}
		if !approx(got.X, tc.want) {
			t.Errorf("PositionAt(%v).X = %v, want %v", tc.at, got.X, tc.want)
		}
	}

	c.SetTrackInterpolation(0, InterpolationNearest)
	if got, _ := c.PositionAt(0, 0.9); got.X != 0 {
		t.Errorf("nearest sample = %v, want 0", got.X)
	}
}

func TestLoopWrapInterpolation(t *testing.T) {
	c := NewClip("spin", 2,
		WithLoopMode(LoopLinear),
		WithBlendShapeTrack("Face:smile",
			ScalarKey{Time: 0.5, Value: 0},
			ScalarKey{Time: 1.5, Value: 1},
		),
	)
	// Between the last key (1.5) and the first key shifted by the length (2.5).
	got, err := c.BlendShapeAt(0, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 0.5) {
		t.Errorf("wrapped sample = %v, want 0.5", got)
	}
	// Before the first key wraps from the last one.
	if got, _ := c.BlendShapeAt(0, 0); !approx(got, 0.5) {
		t.Errorf("pre-first sample = %v, want 0.5", got)
	}

	c.SetTrackLoopWrap(0, false)
	if got, _ := c.BlendShapeAt(0, 0); got != 0 {
		t.Errorf("clamped sample = %v, want 0", got)
	}
}

func TestSamplerErrors(t *testing.T) {
	c := NewClip("empty", 1,
		WithPositionTrack("Body"),
		WithScaleTrack("Body", VectorKey{Value: common.Vec3One()}),
	)
	if _, err := c.PositionAt(0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty track error = %v, want ErrNotFound", err)
	}
	if _, err := c.RotationAt(1, 0); !errors.Is(err, ErrTrackType) {
		t.Errorf("wrong type error = %v, want ErrTrackType", err)
	}
	if _, err := c.ScaleAt(7, 0); !errors.Is(err, ErrTrackIndex) {
		t.Errorf("bad index error = %v, want ErrTrackIndex", err)
	}
	if v := c.ValueAt(0, 0); !v.IsNil() {
		t.Errorf("ValueAt on position track = %v, want nil", v)
	}
}

func TestDiscreteValue(t *testing.T) {
	c := NewClip("flags", 2,
		WithValueTrack("Sign:text", UpdateDiscrete,
			ValueKey{Time: 0, Value: variant.String("a")},
			ValueKey{Time: 1, Value: variant.String("b")},
		),
	)
	if got := c.ValueAt(0, 0.5).AsString(); got != "a" {
		t.Errorf("ValueAt(0.5) = %q, want a", got)
	}
	if got := c.ValueAt(0, 1).AsString(); got != "b" {
		t.Errorf("ValueAt(1) = %q, want b", got)
	}
	if k := c.FindKey(0, 0.999); k != 0 {
		t.Errorf("FindKey(0.999) = %d, want 0", k)
	}
	if k := c.FindKey(0, -0.1); k != -1 {
		t.Errorf("FindKey(-0.1) = %d, want -1", k)
	}
	if c.ValueUpdateMode(0) != UpdateDiscrete {
		t.Errorf("update mode = %v", c.ValueUpdateMode(0))
	}
}

func TestKeysInRange(t *testing.T) {
	keys := []MethodKey{
		{Time: 0, Method: "a"},
		{Time: 0.5, Method: "b"},
		{Time: 1, Method: "c"},
	}
	cases := []struct {
		name       string
		loop       LoopMode
		time       float64
		delta      float64
		pingponged int
		want       []int
	}{
		{"zero delta", LoopNone, 0.5, 0, 0, nil},
		{"forward excludes start", LoopNone, 0.5, 0.5, 0, []int{1}},
		{"forward to end", LoopNone, 1, 0.6, 0, []int{1, 2}},
		{"backward reversed", LoopNone, 0, -1, 0, []int{1, 0}},
		{"clamped past end", LoopNone, 1, 5, 0, []int{1, 2}},
		{"linear wrap", LoopLinear, 0.2, 0.4, 0, []int{2, 0}},
		{"pingpong end reflection", LoopPingPong, 0.9, 0.3, 1, []int{2}},
		{"pingpong start reflection", LoopPingPong, 0.1, -0.2, -1, []int{0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClip("events", 1, WithLoopMode(tc.loop), WithMethodTrack("Node", keys...))
			got := c.KeysInRange(0, tc.time, tc.delta, tc.pingponged)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("KeysInRange = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBezier(t *testing.T) {
	c := NewClip("curve", 1,
		WithBezierTrack("Light:energy",
			BezierKey{Time: 0, Value: 0, OutHandle: vec.Vec2{X: 1.0 / 3}},
			BezierKey{Time: 1, Value: 1, InHandle: vec.Vec2{X: -1.0 / 3}},
		),
	)
	// Handles at a third of the span in time only keep the curve symmetric around the middle.
	if got := c.BezierAt(0, 0.5); !approx(got, 0.5) {
		t.Errorf("BezierAt(0.5) = %v, want 0.5", got)
	}
	if got := c.BezierAt(0, 1.5); got != 1 {
		t.Errorf("BezierAt past end = %v, want 1", got)
	}
	if got := c.BezierAt(0, 0.25); got >= 0.25 || got <= 0 {
		t.Errorf("BezierAt(0.25) = %v, want an eased value below 0.25", got)
	}
}

func TestTrackMetadata(t *testing.T) {
	stream := fakeStream(2)
	c := NewClip("meta", 3,
		WithAudioTrack("Speaker", AudioKey{Time: 0, Stream: stream, StartOffset: 0.1, EndOffset: 0.2}),
		WithAnimationTrack("Nested", AnimationKey{Time: 1, Animation: "idle"}),
		WithTrackDisabled(),
	)
	if c.TrackCount() != 2 {
		t.Fatalf("TrackCount = %d", c.TrackCount())
	}
	if c.TrackType(0) != TrackTypeAudio || c.TrackPath(0).String() != "Speaker" {
		t.Errorf("track 0 = %s %s", c.TrackType(0), c.TrackPath(0))
	}
	if c.AudioStream(0, 0) != stream || c.AudioStartOffset(0, 0) != 0.1 || c.AudioEndOffset(0, 0) != 0.2 {
		t.Errorf("audio key mismatch")
	}
	if c.TrackEnabled(1) {
		t.Errorf("track 1 should be disabled")
	}
	if c.AnimationName(1, 0) != "idle" || c.KeyTime(1, 0) != 1 {
		t.Errorf("animation key mismatch")
	}
	if c.FindTrack("Nested", TrackTypeAnimation) != 1 || c.FindTrack("Nested", TrackTypeAudio) != -1 {
		t.Errorf("FindTrack mismatch")
	}
}

type fakeStream float64

func (f fakeStream) Length() float64 { return float64(f) }
