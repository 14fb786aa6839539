package animation_tree

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// AnimationTreeBuilderOption is a functional option for configuring an AnimationTree.
// Use the With* functions to create options.
type AnimationTreeBuilderOption func(t *animationTree)

// WithTreeRoot sets the graph root.
//
// Parameters:
//   - root: the root node of the blend graph
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithTreeRoot(root animation.Node) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.SetTreeRoot(root)
	}
}

// WithPlayerPath sets the path from the tree to the AnimationPlayer owning the clips.
//
// Parameters:
//   - path: the textual node path, e.g. "../AnimationPlayer"
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithPlayerPath(path string) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.playerPath = common.ParseNodePath(path)
	}
}

// WithProcessCallback sets what drives the tree. Defaults to ProcessIdle.
//
// Parameters:
//   - cb: the process callback
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithProcessCallback(cb ProcessCallback) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.callback = cb
	}
}

// WithRootMotionTrack designates the track whose motion is extracted into RootMotionTransform.
//
// Parameters:
//   - path: the textual track path, e.g. "Skeleton3D:hips"
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithRootMotionTrack(path string) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.rootMotionTrack = common.ParseNodePath(path).String()
	}
}

// WithActive activates the tree once every other option is applied.
//
// Parameters:
//   - active: whether the tree starts active
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithActive(active bool) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.active = active
	}
}

// WithLogger sets the logger for resolution warnings. Defaults to log.Default().
//
// Parameters:
//   - logger: the logger to write to
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithLogger(logger *log.Logger) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMethodSink routes method track calls crossed during playback to sink instead of the tree's
// own MethodQueue.
//
// Parameters:
//   - sink: the deferred call sink
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithMethodSink(sink MethodSink) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		if sink != nil {
			t.sink = sink
		}
	}
}

// WithFrameObserver reports every processed frame to obs, typically a profiler.
//
// Parameters:
//   - obs: the frame observer
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithFrameObserver(obs FrameObserver) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.observer = obs
	}
}

// WithTicker sets the source of physics and idle callbacks, usually the engine.
//
// Parameters:
//   - ticker: the callback source
//
// Returns:
//   - AnimationTreeBuilderOption: option function to apply
func WithTicker(ticker Ticker) AnimationTreeBuilderOption {
	return func(t *animationTree) {
		t.ticker = ticker
	}
}
