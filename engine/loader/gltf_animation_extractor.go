package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"gonum.org/v1/gonum/spatial/r3"
)

// gltfTargets resolves glTF nodes to the track paths of an instantiated asset.
type gltfTargets struct {
	// bones maps a joint node index to "<skeleton>:<bone>".
	bones map[int]string

	// meshes maps a mesh node index to its instantiated mesh.
	meshes map[int]*MeshData
}

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser   gltfParser
	loopMode clip.LoopMode
}

// gltfAnimationExtractor converts glTF animations into clips. Transform channels become
// position, rotation and scale tracks on bone paths. Morph weight channels become one blend
// shape track per target.
type gltfAnimationExtractor interface {
	// ExtractAnimation converts one animation.
	//
	// Parameters:
	//   - animIndex: the index of the animation
	//   - targets: the node to path mapping
	//
	// Returns:
	//   - clip.Clip: the clip, named after the animation
	//   - int: the number of channels skipped because their node has no path
	//   - error: error if a sampler cannot be read
	ExtractAnimation(animIndex int, targets gltfTargets) (clip.Clip, int, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser, loopMode clip.LoopMode) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser, loopMode: loopMode}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int, targets gltfTargets) (clip.Clip, int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, 0, errNoDocument
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, 0, fmt.Errorf("animation index %d out of range", animIndex)
	}
	anim := &doc.Animations[animIndex]

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	var (
		options []clip.ClipBuilderOption
		length  float64
		skipped int
	)
	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			skipped++
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, 0, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		interp, cubic, err := gltfInterpolation(sampler.Interpolation)
		if err != nil {
			return nil, 0, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}

		times, err := e.parser.ReadScalars(sampler.Input)
		if err != nil {
			return nil, 0, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}
		if n := len(times); n > 0 {
			length = max(length, times[n-1])
		}

		node := *ch.Target.Node
		var opts []clip.ClipBuilderOption
		if ch.Target.Path == gltfAnimPathWeights {
			mesh, ok := targets.meshes[node]
			if !ok {
				skipped++
				continue
			}
			opts, err = e.weightTracks(mesh, sampler.Output, times, cubic)
		} else {
			path, ok := targets.bones[node]
			if !ok {
				skipped++
				continue
			}
			opts, err = e.transformTrack(path, ch.Target.Path, sampler.Output, times, cubic)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}

		for _, opt := range opts {
			options = append(options, opt, clip.WithTrackInterpolation(interp))
		}
	}

	options = append(options, clip.WithLoopMode(e.loopMode))
	return clip.NewClip(name, length, options...), skipped, nil
}

// transformTrack reads a translation, rotation or scale channel into one track option.
func (e *gltfAnimationExtractorImpl) transformTrack(path, property string, output int, times []float64, cubic bool) ([]clip.ClipBuilderOption, error) {
	switch property {
	case gltfAnimPathTranslation, gltfAnimPathScale:
		values, err := e.parser.ReadVec3s(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s values: %w", property, err)
		}
		keys := make([]clip.VectorKey, 0, len(times))
		for k, t := range times {
			v, ok := splineValue(values, k, cubic)
			if !ok {
				break
			}
			keys = append(keys, clip.VectorKey{Time: t, Value: r3.Vec{X: v[0], Y: v[1], Z: v[2]}})
		}
		if property == gltfAnimPathScale {
			return []clip.ClipBuilderOption{clip.WithScaleTrack(path, keys...)}, nil
		}
		return []clip.ClipBuilderOption{clip.WithPositionTrack(path, keys...)}, nil

	case gltfAnimPathRotation:
		values, err := e.parser.ReadVec4s(output)
		if err != nil {
			return nil, fmt.Errorf("failed to read rotation values: %w", err)
		}
		keys := make([]clip.RotationKey, 0, len(times))
		for k, t := range times {
			v, ok := splineValue(values, k, cubic)
			if !ok {
				break
			}
			q := common.QuatNormalize(common.QuatFromXYZW(v[0], v[1], v[2], v[3]))
			keys = append(keys, clip.RotationKey{Time: t, Value: q})
		}
		return []clip.ClipBuilderOption{clip.WithRotationTrack(path, keys...)}, nil
	}
	return nil, fmt.Errorf("unknown target path %q", property)
}

// weightTracks splits a morph weight channel into one blend shape track per target. The output
// holds len(mesh.Shapes) weights per key.
func (e *gltfAnimationExtractorImpl) weightTracks(mesh *MeshData, output int, times []float64, cubic bool) ([]clip.ClipBuilderOption, error) {
	values, err := e.parser.ReadScalars(output)
	if err != nil {
		return nil, fmt.Errorf("failed to read weight values: %w", err)
	}

	targets := len(mesh.Shapes)
	perKey := targets
	offset := 0
	if cubic {
		perKey, offset = 3*targets, targets
	}

	opts := make([]clip.ClipBuilderOption, 0, targets)
	for s, shape := range mesh.Shapes {
		keys := make([]clip.ScalarKey, 0, len(times))
		for k, t := range times {
			idx := k*perKey + offset + s
			if idx >= len(values) {
				break
			}
			keys = append(keys, clip.ScalarKey{Time: t, Value: values[idx]})
		}
		opts = append(opts, clip.WithBlendShapeTrack(mesh.Name+":"+shape, keys...))
	}
	return opts, nil
}

// splineValue returns the value of key k. Cubic spline outputs store an in-tangent, the value
// and an out-tangent per key.
func splineValue[V any](values []V, k int, cubic bool) (V, bool) {
	idx := k
	if cubic {
		idx = 3*k + 1
	}
	if idx >= len(values) {
		var zero V
		return zero, false
	}
	return values[idx], true
}

// gltfInterpolation maps a sampler mode to a track interpolation. Cubic splines keep their key
// values and are resampled with the cubic interpolator, so authored tangents are dropped.
func gltfInterpolation(mode string) (clip.InterpolationType, bool, error) {
	switch mode {
	case "", gltfInterpolationLinear:
		return clip.InterpolationLinear, false, nil
	case gltfInterpolationStep:
		return clip.InterpolationNearest, false, nil
	case gltfInterpolationCubicSpline:
		return clip.InterpolationCubic, true, nil
	}
	return 0, false, fmt.Errorf("unknown sampler interpolation %q", mode)
}
