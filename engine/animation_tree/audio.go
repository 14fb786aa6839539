package animation_tree

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
)

// minAudioBlend keeps the volume finite when a track fades out completely.
const minAudioBlend = 0.00001

// applyAudio starts, restarts or stops the stream of an audio track and sets its volume from the
// blend weight.
func (t *animationTree) applyAudio(e *audioTrack, r *animation.Record, i int, blend float64) {
	if blend < common.CmpEpsilon {
		return
	}
	c := r.Clip

	if r.Seeked {
		k := c.FindKey(i, r.Time)
		if k < 0 {
			return
		}
		if !t.startAudio(e, c, i, k, r.Time-c.KeyTime(i, k), r.Time) {
			return
		}
	} else if keys := c.KeysInRange(i, r.Time, r.Delta, r.Pingponged); len(keys) > 0 {
		if !t.startAudio(e, c, i, keys[len(keys)-1], 0, r.Time) {
			return
		}
	} else if e.playing && audioExpired(e, c, r.Time, r.Delta) {
		t.stopAudio(e)
	}

	db := common.LinearToDB(max(blend, minAudioBlend))
	switch obj := e.object.(type) {
	case unitDBTarget:
		obj.SetUnitDB(db)
	case volumeDBTarget:
		obj.SetVolumeDB(db)
	}
}

// startAudio plays key k of track i, skipping into the stream by the offset of the key plus into.
// It returns false when the key starts nothing playable and the volume should be left alone.
func (t *animationTree) startAudio(e *audioTrack, c clip.Clip, i, k int, into, now float64) bool {
	stream := c.AudioStream(i, k)
	if stream == nil {
		t.stopAudio(e)
		return true
	}
	startOfs := c.AudioStartOffset(i, k) + into
	endOfs := c.AudioEndOffset(i, k)
	length := stream.Length()
	if length > 0 && startOfs > length-endOfs {
		t.stopAudio(e)
		return false
	}

	e.object.SetStream(stream)
	e.object.Play(startOfs)
	e.playing = true
	t.playing[e.path] = e
	e.length = 0
	if length > 0 {
		e.length = length - startOfs - endOfs
	}
	e.start = now
	return true
}

func (t *animationTree) stopAudio(e *audioTrack) {
	e.object.Stop()
	e.playing = false
	delete(t.playing, e.path)
}

// audioExpired reports whether a playing stream should stop: the play head went back past its
// start on a non-looping clip, or it has played longer than its bounded length.
func audioExpired(e *audioTrack, c clip.Clip, time, delta float64) bool {
	loop := c.LoopMode() != clip.LoopNone
	if !loop {
		if delta > 0 && time < e.start {
			return true
		}
		if delta < 0 && time > e.start {
			return true
		}
	}
	if e.length <= 0 {
		return false
	}
	elapsed := time - e.start
	if e.start > time {
		if loop {
			elapsed = c.Length() - e.start + time
		} else {
			elapsed = e.start - time
		}
	}
	return elapsed > e.length
}
