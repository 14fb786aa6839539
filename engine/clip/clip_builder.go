package clip

// ClipBuilderOption is a functional option for configuring a Clip.
// Use the With* functions to create options that are applied directly to the clip instance.
type ClipBuilderOption func(*clip)

// WithLoopMode sets how time wraps past the clip ends.
//
// Parameters:
//   - mode: LoopNone, LoopLinear or LoopPingPong
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithLoopMode(mode LoopMode) ClipBuilderOption {
	return func(c *clip) {
		c.loopMode = mode
	}
}

// WithPositionTrack adds a position track targeting path, e.g. "Skeleton3D:hips" or "Body".
//
// Parameters:
//   - path: the scene path of the node or bone
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithPositionTrack(path string, keys ...VectorKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypePosition3D, path, toTimed(keys))
	}
}

// WithRotationTrack adds a rotation track targeting path.
//
// Parameters:
//   - path: the scene path of the node or bone
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithRotationTrack(path string, keys ...RotationKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeRotation3D, path, toTimed(keys))
	}
}

// WithScaleTrack adds a scale track targeting path.
//
// Parameters:
//   - path: the scene path of the node or bone
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithScaleTrack(path string, keys ...VectorKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeScale3D, path, toTimed(keys))
	}
}

// WithBlendShapeTrack adds a blend shape track. The path must carry exactly one sub-name,
// the blend shape name, e.g. "Face:smile".
//
// Parameters:
//   - path: the mesh path with the shape name as sub-name
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithBlendShapeTrack(path string, keys ...ScalarKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeBlendShape, path, toTimed(keys))
	}
}

// WithValueTrack adds a generic property track, e.g. "Light:energy".
//
// Parameters:
//   - path: the node path with the property as sub-names
//   - mode: continuous, discrete or capture
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithValueTrack(path string, mode UpdateMode, keys ...ValueKey) ClipBuilderOption {
	return func(c *clip) {
		t := c.addTrack(TrackTypeValue, path, toTimed(keys))
		t.updateMode = mode
	}
}

// WithBezierTrack adds a scalar bezier curve track.
//
// Parameters:
//   - path: the node path with the property as sub-names
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithBezierTrack(path string, keys ...BezierKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeBezier, path, toTimed(keys))
	}
}

// WithMethodTrack adds a track that calls methods on the node at path.
//
// Parameters:
//   - path: the node path
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithMethodTrack(path string, keys ...MethodKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeMethod, path, toTimed(keys))
	}
}

// WithAudioTrack adds a track that starts streams on the audio player at path.
//
// Parameters:
//   - path: the audio player node path
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithAudioTrack(path string, keys ...AudioKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeAudio, path, toTimed(keys))
	}
}

// WithAnimationTrack adds a track that drives a nested animation player at path.
//
// Parameters:
//   - path: the nested player node path
//   - keys: the keyframes, in any order
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithAnimationTrack(path string, keys ...AnimationKey) ClipBuilderOption {
	return func(c *clip) {
		c.addTrack(TrackTypeAnimation, path, toTimed(keys))
	}
}

// WithTrackInterpolation sets the interpolation of the most recently added track.
//
// Parameters:
//   - interpolation: the interpolation type
//
// Returns:
//   - ClipBuilderOption: option function to apply
func WithTrackInterpolation(interpolation InterpolationType) ClipBuilderOption {
	return func(c *clip) {
		if n := len(c.tracks); n > 0 {
			c.tracks[n-1].interpolation = interpolation
		}
	}
}

// WithTrackDisabled disables the most recently added track.
func WithTrackDisabled() ClipBuilderOption {
	return func(c *clip) {
		if n := len(c.tracks); n > 0 {
			c.tracks[n-1].enabled = false
		}
	}
}

func toTimed[K timed](keys []K) []timed {
	out := make([]timed, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
