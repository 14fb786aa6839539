package animation_tree

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/spatial/r3"
)

// commit writes every value accumulated in the current pass to its target. Entries the pass did
// not touch keep whatever their target holds.
func (t *animationTree) commit() {
	pass := t.state.Pass
	for _, entry := range t.tracks {
		if entry.core().processPass != pass {
			continue
		}
		switch e := entry.(type) {
		case *transformTrack:
			if e.rootMotion {
				t.rootMotion = common.Transform{
					Origin:   e.loc,
					Rotation: e.rot,
					Scale:    r3.Add(common.Vec3One(), e.scale),
				}
				continue
			}
			if e.skeleton != nil {
				if e.locUsed {
					e.skeleton.SetBonePosePosition(e.bone, e.loc)
				}
				if e.rotUsed {
					e.skeleton.SetBonePoseRotation(e.bone, e.rot)
				}
				if e.scaleUsed {
					e.skeleton.SetBonePoseScale(e.bone, e.scale)
				}
				continue
			}
			if e.locUsed {
				e.node.SetPosition(e.loc)
			}
			if e.rotUsed {
				e.node.SetQuaternion(e.rot)
			}
			if e.scaleUsed {
				e.node.SetScale(e.scale)
			}
		case *blendShapeTrack:
			e.mesh.SetBlendShapeValue(e.shape, e.value)
		case *valueTrack:
			e.object.SetIndexed(e.subpath, e.value)
		case *bezierTrack:
			e.object.SetIndexed(e.subpath, variant.Float(e.value))
		}
	}
}
