package animation_tree

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// applyRecords accumulates every record of the last descent into the track cache. Continuous
// kinds build up values for commit, event kinds (discrete values, methods, audio, nested players)
// act right away.
func (t *animationTree) applyRecords() {
	pass := t.state.Pass
	for ri := range t.state.Records {
		r := &t.state.Records[ri]
		c := r.Clip
		calcRoot := !r.Seeked || r.SeekRoot

		for i := 0; i < c.TrackCount(); i++ {
			if !c.TrackEnabled(i) {
				continue
			}
			key := c.TrackPath(i).String()
			entry, ok := t.tracks[key]
			if !ok {
				continue
			}
			kind := c.TrackType(i)
			if entry.core().kind != cacheKind(kind) {
				continue
			}
			idx, ok := t.state.TrackMap[key]
			if !ok || idx >= len(r.TrackBlends) {
				continue
			}
			entry.core().rootMotion = t.rootMotionTrack != "" && key == t.rootMotionTrack
			blend := r.TrackBlends[idx] * r.Blend

			switch e := entry.(type) {
			case *transformTrack:
				if e.rootMotion {
					// A plain seek moves the play head without moving the root, so it adds
					// nothing here rather than being applied like an ordinary track.
					if calcRoot {
						t.applyRootMotion(e, r, i, kind, blend, pass)
					}
					continue
				}
				e.apply(r, i, kind, blend, pass)
			case *blendShapeTrack:
				v, err := c.BlendShapeAt(i, r.Time)
				if err != nil {
					continue
				}
				if e.processPass != pass {
					e.processPass = pass
					e.value = e.init
				}
				e.value += (v - e.init) * blend
			case *valueTrack:
				t.applyValue(e, r, i, blend, pass)
			case *methodTrack:
				t.applyMethod(e, r, i, blend)
			case *bezierTrack:
				v := c.BezierAt(i, r.Time)
				if e.processPass != pass {
					e.processPass = pass
					e.value = e.init
				}
				e.value += (v - e.init) * blend
			case *audioTrack:
				t.applyAudio(e, r, i, blend)
			case *animationTrack:
				t.applySubAnimation(e, r, i, blend)
			}
		}
	}
}

// apply blends a non root-motion transform component toward the sampled value, relative to the
// rest value of the target.
func (e *transformTrack) apply(r *animation.Record, i int, kind clip.TrackType, blend float64, pass uint64) {
	if e.processPass != pass {
		e.processPass = pass
		e.loc = e.initLoc
		e.rot = e.initRot
		e.scale = e.initScale
	}
	c := r.Clip
	switch kind {
	case clip.TrackTypePosition3D:
		p, err := c.PositionAt(i, r.Time)
		if err != nil {
			return
		}
		e.loc = r3.Add(e.loc, r3.Scale(blend, r3.Sub(p, e.initLoc)))
	case clip.TrackTypeRotation3D:
		q, err := c.RotationAt(i, r.Time)
		if err != nil {
			return
		}
		rel := quat.Mul(common.QuatInverse(e.initRot), q)
		e.rot = common.QuatNormalize(quat.Mul(e.rot, common.QuatSlerp(common.QuatIdentity(), rel, blend)))
	case clip.TrackTypeScale3D:
		s, err := c.ScaleAt(i, r.Time)
		if err != nil {
			return
		}
		e.scale = r3.Add(e.scale, r3.Scale(blend, r3.Sub(s, e.initScale)))
	}
}

// applyRootMotion accumulates the change of a transform component over the step that led to the
// record's time. The step is split into segments that never cross a loop point, so motion keeps
// adding up across wraps and reflections. The committed scale is 1 + the accumulated delta.
func (t *animationTree) applyRootMotion(e *transformTrack, r *animation.Record, i int, kind clip.TrackType, blend float64, pass uint64) {
	if e.processPass != pass {
		e.processPass = pass
		e.loc = r3.Vec{}
		e.rot = common.QuatIdentity()
		e.scale = r3.Vec{}
	}
	c := r.Clip
	for _, seg := range rootSegments(c.Length(), c.LoopMode(), r.Time, r.Delta, r.Pingponged) {
		from, to := seg[0], seg[1]
		switch kind {
		case clip.TrackTypePosition3D:
			a, err := c.PositionAt(i, from)
			if err != nil {
				return
			}
			b, _ := c.PositionAt(i, to)
			e.loc = r3.Add(e.loc, r3.Scale(blend, r3.Sub(b, a)))
		case clip.TrackTypeRotation3D:
			a, err := c.RotationAt(i, from)
			if err != nil {
				return
			}
			b, _ := c.RotationAt(i, to)
			rel := quat.Mul(common.QuatInverse(a), b)
			e.rot = common.QuatNormalize(quat.Mul(e.rot, common.QuatSlerp(common.QuatIdentity(), rel, blend)))
		case clip.TrackTypeScale3D:
			a, err := c.ScaleAt(i, from)
			if err != nil {
				return
			}
			b, _ := c.ScaleAt(i, to)
			e.scale = r3.Add(e.scale, r3.Scale(blend, r3.Sub(b, a)))
		}
	}
}

// rootSegments splits the step that ended at time into (from, to) pairs of clip-local times, in
// play order, none of which crosses a loop point.
//
// Parameters:
//   - length: the clip length
//   - mode: the clip loop mode
//   - time: the play head after the step
//   - delta: the signed step
//   - pingponged: the reflection reported for the step
//
// Returns:
//   - [][2]float64: the segments to sample
func rootSegments(length float64, mode clip.LoopMode, time, delta float64, pingponged int) [][2]float64 {
	if length <= 0 || delta == 0 {
		return nil
	}
	switch mode {
	case clip.LoopLinear:
		from := time - delta
		var segs [][2]float64
		if delta > 0 {
			k := math.Floor(from / length)
			local := from - k*length
			for ; k < 0; k++ {
				segs = append(segs, [2]float64{local, length})
				local = 0
			}
			return append(segs, [2]float64{local, time})
		}
		k := math.Floor(from / length)
		local := from - k*length
		for ; k > 0; k-- {
			segs = append(segs, [2]float64{local, 0})
			local = length
		}
		return append(segs, [2]float64{local, time})

	case clip.LoopPingPong:
		switch pingponged {
		case 1:
			return [][2]float64{{common.Pingpong(2*length-time-delta, length), length}, {length, time}}
		case -1:
			return [][2]float64{{common.Pingpong(-time-delta, length), 0}, {0, time}}
		}
		return [][2]float64{{common.Pingpong(time-delta, length), time}}
	}
	return [][2]float64{{common.Clamp(time-delta, 0, length), time}}
}

func (t *animationTree) applyValue(e *valueTrack, r *animation.Record, i int, blend float64, pass uint64) {
	c := r.Clip
	switch c.ValueUpdateMode(i) {
	case clip.UpdateContinuous, clip.UpdateCapture:
		v := c.ValueAt(i, r.Time)
		if v.IsNil() {
			return
		}
		if e.processPass != pass {
			e.processPass = pass
			if e.init.IsNil() {
				e.init = variant.Zero(v)
			}
			e.value = e.init
		}
		e.value = variant.Blend(e.value, variant.Sub(v, e.init), blend)
	default:
		if blend < common.CmpEpsilon {
			return
		}
		if r.Seeked {
			k := c.FindKey(i, r.Time)
			if k < 0 {
				return
			}
			e.object.SetIndexed(e.subpath, c.KeyValue(i, k))
			return
		}
		for _, k := range c.KeysInRange(i, r.Time, r.Delta, r.Pingponged) {
			e.object.SetIndexed(e.subpath, c.KeyValue(i, k))
		}
	}
}

// applyMethod calls the key at a seek target right away and queues keys crossed during playback.
func (t *animationTree) applyMethod(e *methodTrack, r *animation.Record, i int, blend float64) {
	if blend < common.CmpEpsilon {
		return
	}
	c := r.Clip
	if r.Seeked {
		k := c.FindKey(i, r.Time)
		if k < 0 {
			return
		}
		if err := e.object.Call(c.MethodName(i, k), c.MethodParams(i, k)); err != nil {
			t.logger.Printf("[AnimationTree] method track '%s': %v", e.path, err)
		}
		return
	}
	for _, k := range c.KeysInRange(i, r.Time, r.Delta, r.Pingponged) {
		t.sink.Push(e.object, c.MethodName(i, k), c.MethodParams(i, k))
	}
}

func (t *animationTree) applySubAnimation(e *animationTrack, r *animation.Record, i int, blend float64) {
	if blend < common.CmpEpsilon {
		return
	}
	c := r.Clip
	p := e.player

	if r.Seeked {
		k := c.FindKey(i, r.Time)
		if k < 0 {
			return
		}
		name := c.AnimationName(i, k)
		if name == clip.StopAnimation || !p.HasAnimation(name) {
			return
		}
		sub, _ := p.Animation(name)
		at := subAnimationPosition(sub, r.Time-c.KeyTime(i, k))
		if err := p.Play(name); err != nil {
			t.logger.Printf("[AnimationTree] animation track '%s': %v", e.path, err)
			return
		}
		p.Seek(at, true)
		e.playing = true
		t.playing[e.path] = e
		return
	}

	keys := c.KeysInRange(i, r.Time, r.Delta, r.Pingponged)
	if len(keys) == 0 {
		return
	}
	name := c.AnimationName(i, keys[len(keys)-1])
	if name == clip.StopAnimation || !p.HasAnimation(name) {
		if _, ok := t.playing[e.path]; ok {
			delete(t.playing, e.path)
			p.Stop()
			e.playing = false
		}
		return
	}
	if err := p.Play(name); err != nil {
		t.logger.Printf("[AnimationTree] animation track '%s': %v", e.path, err)
		return
	}
	e.playing = true
	t.playing[e.path] = e
}

// subAnimationPosition maps the time since a key started a nested clip into that clip.
func subAnimationPosition(sub clip.Clip, elapsed float64) float64 {
	length := sub.Length()
	switch sub.LoopMode() {
	case clip.LoopLinear:
		return common.Fposmod(elapsed, length)
	case clip.LoopPingPong:
		return common.Pingpong(elapsed, length)
	}
	return common.Clamp(elapsed, 0, length)
}
