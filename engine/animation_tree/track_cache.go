package animation_tree

import (
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/player"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ResetAnimation is the clip whose first keys give the rest values of non-bone targets.
const ResetAnimation = "RESET"

// trackBase is the part every cache entry shares.
type trackBase struct {
	kind        clip.TrackType
	path        string
	objectID    uint64
	setupPass   uint64
	processPass uint64
	rootMotion  bool
}

func (b *trackBase) core() *trackBase { return b }

// trackEntry is a resolved target path.
type trackEntry interface {
	core() *trackBase
}

type transformTrack struct {
	trackBase
	node     transformTarget
	skeleton boneTarget
	bone     int

	locUsed, rotUsed, scaleUsed bool

	initLoc   r3.Vec
	initRot   quat.Number
	initScale r3.Vec

	loc   r3.Vec
	rot   quat.Number
	scale r3.Vec
}

type blendShapeTrack struct {
	trackBase
	mesh  blendShapeTarget
	shape int
	init  float64
	value float64
}

type valueTrack struct {
	trackBase
	object  indexedTarget
	subpath string
	init    variant.Variant
	value   variant.Variant
}

type methodTrack struct {
	trackBase
	object Caller
}

type bezierTrack struct {
	trackBase
	object  indexedTarget
	subpath string
	init    float64
	value   float64
}

type audioTrack struct {
	trackBase
	object  audioTarget
	playing bool
	start   float64
	length  float64
}

type animationTrack struct {
	trackBase
	player  subPlayer
	playing bool
}

// cacheKind folds the three transform components into one entry per path.
func cacheKind(kind clip.TrackType) clip.TrackType {
	if kind.IsTransform() {
		return clip.TrackTypePosition3D
	}
	return kind
}

// updateCaches resolves every track path of every clip the player owns against the player's root
// node. Entries whose target vanished or whose kind changed are rebuilt, entries no clip references
// any more are dropped, and the track map is rebuilt from the surviving paths.
//
// Parameters:
//   - sc: the scene to resolve in
//   - lib: the player owning the clips
//
// Returns:
//   - error: ErrNoPlayer when the player's root node does not resolve
func (t *animationTree) updateCaches(sc scene.Scene, lib player.AnimationPlayer) error {
	parent, err := sc.GetNode(lib, lib.RootNode())
	if err != nil {
		t.logger.Printf("[AnimationTree] AnimationPlayer root is invalid: %v", err)
		t.SetActive(false)
		return errPlayerRoot(lib.RootNode(), err)
	}

	t.setupPass++
	reset, _ := lib.Animation(ResetAnimation)

	for _, name := range lib.AnimationList() {
		c, ok := lib.Animation(name)
		if !ok {
			continue
		}
		for i := 0; i < c.TrackCount(); i++ {
			t.cacheTrack(sc, parent, c, i, reset)
		}
	}

	for key, entry := range t.tracks {
		if entry.core().setupPass != t.setupPass {
			delete(t.tracks, key)
			delete(t.playing, key)
		}
	}

	paths := make([]string, 0, len(t.tracks))
	for key := range t.tracks {
		paths = append(paths, key)
	}
	sort.Strings(paths)
	trackMap := make(map[string]int, len(paths))
	for i, p := range paths {
		trackMap[p] = i
	}
	t.state.TrackMap = trackMap
	t.state.TrackCount = len(paths)

	t.cacheValid = true
	return nil
}

func (t *animationTree) cacheTrack(sc scene.Scene, parent scene.Node, c clip.Clip, i int, reset clip.Clip) {
	np := c.TrackPath(i)
	key := np.String()
	kind := c.TrackType(i)
	ck := cacheKind(kind)

	entry := t.tracks[key]
	if entry != nil {
		b := entry.core()
		if b.kind != ck || sc.Instance(b.objectID) == nil {
			delete(t.tracks, key)
			delete(t.playing, key)
			entry = nil
		}
	}

	if entry == nil {
		entry = t.resolveTrack(sc, parent, np, kind, reset)
		if entry == nil {
			return
		}
		t.tracks[key] = entry
	} else {
		// The target may have left and come back since it was resolved.
		t.watch(sc.Instance(entry.core().objectID))
		if tt, ok := entry.(*transformTrack); ok {
			if tt.setupPass != t.setupPass {
				tt.locUsed, tt.rotUsed, tt.scaleUsed = false, false, false
			}
			tt.markUsed(kind)
		}
	}
	entry.core().setupPass = t.setupPass
}

// resolveTrack builds a fresh entry for path, or logs why it cannot and returns nil.
func (t *animationTree) resolveTrack(sc scene.Scene, parent scene.Node, np common.NodePath, kind clip.TrackType, reset clip.Clip) trackEntry {
	key := np.String()
	node, res, leftover, err := sc.ResolveProperty(parent, np)
	if err != nil {
		t.warnf("couldn't resolve track: '%s'", key)
		return nil
	}
	t.watch(node)
	base := trackBase{kind: cacheKind(kind), path: key, objectID: node.InstanceID()}

	switch kind {
	case clip.TrackTypePosition3D, clip.TrackTypeRotation3D, clip.TrackTypeScale3D:
		target, ok := node.(transformTarget)
		if !ok {
			t.warnf("transform track not of type Node3D: '%s'", key)
			return nil
		}
		tt := &transformTrack{
			trackBase: base,
			node:      target,
			bone:      -1,
			initRot:   common.QuatIdentity(),
			initScale: common.Vec3One(),
		}
		if sk, ok := node.(boneTarget); ok && len(np.SubNames) == 1 {
			bone := sk.FindBone(np.SubNames[0])
			if bone < 0 {
				t.warnf("couldn't find bone '%s' for track: '%s'", np.SubNames[0], key)
				return nil
			}
			tt.skeleton = sk
			tt.bone = bone
			rest := sk.BoneRest(bone)
			tt.initLoc, tt.initRot, tt.initScale = rest.Origin, rest.Rotation, rest.Scale
		} else if reset != nil {
			tt.initFromReset(reset, key)
		}
		tt.markUsed(kind)
		return tt

	case clip.TrackTypeBlendShape:
		if len(np.SubNames) != 1 {
			t.warnf("blend shape track does not contain a blend shape subname: '%s'", key)
			return nil
		}
		mesh, ok := node.(blendShapeTarget)
		if !ok {
			t.warnf("node is not a MeshInstance3D: '%s'", key)
			return nil
		}
		shape := mesh.FindBlendShapeByName(np.SubNames[0])
		if shape < 0 {
			t.warnf("blend shape not found: '%s'", key)
			return nil
		}
		bt := &blendShapeTrack{trackBase: base, mesh: mesh, shape: shape}
		if reset != nil {
			if ri := reset.FindTrack(key, clip.TrackTypeBlendShape); ri >= 0 && reset.KeyCount(ri) > 0 {
				bt.init = reset.KeyValue(ri, 0).AsFloat()
			}
		}
		return bt

	case clip.TrackTypeValue, clip.TrackTypeBezier:
		object, ok := res.(indexedTarget)
		if res == nil {
			object = node
			ok = true
		}
		if !ok {
			t.warnf("resource is not animatable: '%s'", key)
			return nil
		}
		subpath := strings.Join(leftover, ":")
		if kind == clip.TrackTypeBezier {
			bt := &bezierTrack{trackBase: base, object: object, subpath: subpath}
			if reset != nil {
				if ri := reset.FindTrack(key, clip.TrackTypeBezier); ri >= 0 && reset.KeyCount(ri) > 0 {
					bt.init = reset.KeyValue(ri, 0).AsFloat()
				}
			}
			return bt
		}
		vt := &valueTrack{trackBase: base, object: object, subpath: subpath}
		if reset != nil {
			if ri := reset.FindTrack(key, clip.TrackTypeValue); ri >= 0 && reset.KeyCount(ri) > 0 {
				vt.init = reset.KeyValue(ri, 0)
			}
		}
		return vt

	case clip.TrackTypeMethod:
		object, ok := res.(Caller)
		if res == nil {
			object = node
			ok = true
		}
		if !ok {
			t.warnf("method track target cannot be called: '%s'", key)
			return nil
		}
		return &methodTrack{trackBase: base, object: object}

	case clip.TrackTypeAudio:
		target, ok := node.(audioTarget)
		if !ok {
			t.warnf("audio track target is not an audio player: '%s'", key)
			return nil
		}
		return &audioTrack{trackBase: base, object: target}

	case clip.TrackTypeAnimation:
		p, ok := node.(subPlayer)
		if !ok {
			t.warnf("animation track target is not an AnimationPlayer: '%s'", key)
			return nil
		}
		return &animationTrack{trackBase: base, player: p}
	}
	return nil
}

func (tt *transformTrack) markUsed(kind clip.TrackType) {
	switch kind {
	case clip.TrackTypePosition3D:
		tt.locUsed = true
	case clip.TrackTypeRotation3D:
		tt.rotUsed = true
	case clip.TrackTypeScale3D:
		tt.scaleUsed = true
	}
}

func (tt *transformTrack) initFromReset(reset clip.Clip, key string) {
	if ri := reset.FindTrack(key, clip.TrackTypePosition3D); ri >= 0 && reset.KeyCount(ri) > 0 {
		tt.initLoc = reset.KeyValue(ri, 0).AsVector3()
	}
	if ri := reset.FindTrack(key, clip.TrackTypeRotation3D); ri >= 0 && reset.KeyCount(ri) > 0 {
		tt.initRot = reset.KeyValue(ri, 0).AsQuaternion()
	}
	if ri := reset.FindTrack(key, clip.TrackTypeScale3D); ri >= 0 && reset.KeyCount(ri) > 0 {
		tt.initScale = reset.KeyValue(ri, 0).AsVector3()
	}
}

// watch invalidates the cache once node leaves the scene. Each node is watched once.
func (t *animationTree) watch(node scene.Node) {
	id := node.InstanceID()
	if _, ok := t.watched[id]; ok {
		return
	}
	t.watched[id] = node.Exited().Connect(func(n scene.Node) {
		delete(t.watched, n.InstanceID())
		t.cacheValid = false
	})
}

// unwatchAll drops every exit listener still connected.
func (t *animationTree) unwatchAll(sc scene.Scene) {
	for id, conn := range t.watched {
		if sc != nil {
			if n := sc.Instance(id); n != nil {
				n.Exited().Disconnect(conn)
			}
		}
		delete(t.watched, id)
	}
}

// clearCaches forgets every entry. Playing audio and sub-animations are not stopped.
func (t *animationTree) clearCaches() {
	t.tracks = make(map[string]trackEntry)
	t.playing = make(map[string]trackEntry)
	t.cacheValid = false
}

// stopPlaying stops every audio stream and nested player the tree started.
func (t *animationTree) stopPlaying() {
	for key, entry := range t.playing {
		switch e := entry.(type) {
		case *audioTrack:
			e.object.Stop()
			e.playing = false
		case *animationTrack:
			e.player.Stop()
			e.playing = false
		}
		delete(t.playing, key)
	}
}
