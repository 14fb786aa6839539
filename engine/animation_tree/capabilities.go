package animation_tree

import (
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// The evaluator only talks to scene objects through the small interfaces below, so any node type
// offering the capability can be animated.

type transformTarget interface {
	SetPosition(p r3.Vec)
	SetQuaternion(q quat.Number)
	SetScale(s r3.Vec)
}

type boneTarget interface {
	FindBone(name string) int
	BoneRest(bone int) common.Transform
	SetBonePosePosition(bone int, p r3.Vec)
	SetBonePoseRotation(bone int, q quat.Number)
	SetBonePoseScale(bone int, s r3.Vec)
}

type blendShapeTarget interface {
	FindBlendShapeByName(name string) int
	SetBlendShapeValue(idx int, v float64)
}

type indexedTarget interface {
	SetIndexed(path string, v variant.Variant) bool
}

type audioTarget interface {
	SetStream(s common.AudioStream)
	Play(from float64)
	Stop()
}

type unitDBTarget interface {
	SetUnitDB(db float64)
}

type volumeDBTarget interface {
	SetVolumeDB(db float64)
}

type subPlayer interface {
	Animation(name string) (clip.Clip, bool)
	HasAnimation(name string) bool
	Play(name string) error
	Seek(t float64, update bool)
	Stop()
	IsPlaying() bool
	SetAssignedAnimation(name string)
}

// Caller is an object method tracks can invoke by name.
type Caller interface {
	Call(method string, args []variant.Variant) error
}

// MethodSink receives the method calls crossed during playback. Calls must not run until the
// frame that produced them is over.
type MethodSink interface {
	// Push queues one call.
	//
	// Parameters:
	//   - target: the object to call
	//   - method: the method name
	//   - args: the call arguments
	Push(target Caller, method string, args []variant.Variant)
}

// FrameObserver is told about every processed frame. The profiler implements it.
type FrameObserver interface {
	// ObserveFrame reports one frame.
	//
	// Parameters:
	//   - elapsed: wall time spent in the frame
	//   - tracks: the number of cached tracks
	//   - valid: false when the graph was invalid
	ObserveFrame(elapsed time.Duration, tracks int, valid bool)
}

// Ticker drives trees that process on the physics or idle callback. The engine implements it.
type Ticker interface {
	// Subscribe registers fn for the callback of kind and returns its id.
	Subscribe(kind engine.TickKind, fn func(delta float64)) int

	// Unsubscribe removes a registration.
	Unsubscribe(id int)
}
