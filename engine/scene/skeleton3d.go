package scene

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Bone is a single bone in a skeleton hierarchy.
type Bone struct {
	// Name is the bone's identifier, used by tracks as the sub-name of the skeleton path.
	Name string

	// Parent is the index of the parent bone, -1 for root bones.
	Parent int

	// Rest is the bone's bind transform relative to its parent.
	Rest common.Transform

	// InverseBind transforms from model space to bone space at bind pose.
	InverseBind [16]float64

	// Pose is the animated transform relative to the parent, updated by tracks.
	Pose common.Transform
}

// Skeleton3D is a Node3D holding a bone hierarchy whose poses are driven by animation tracks.
type Skeleton3D interface {
	Node3D

	// AddBone appends a bone. Parents must be added before their children.
	//
	// Parameters:
	//   - name: the bone name
	//   - parent: the parent bone index, or -1 for a root bone
	//   - rest: the rest transform relative to the parent
	//
	// Returns:
	//   - int: the new bone's index
	AddBone(name string, parent int, rest common.Transform) int

	// SetBoneInverseBind sets the model space inverse bind matrix of a bone.
	SetBoneInverseBind(bone int, m [16]float64)

	// BoneCount returns the number of bones.
	BoneCount() int

	// FindBone returns the index of the named bone, or -1.
	FindBone(name string) int

	// Bone returns a copy of the bone at index.
	Bone(bone int) Bone

	// BoneRest returns the rest transform of a bone, or identity for a bad index.
	BoneRest(bone int) common.Transform

	// BonePose returns the current pose of a bone, or identity for a bad index.
	BonePose(bone int) common.Transform

	// SetBonePosePosition sets the translation of a bone pose.
	SetBonePosePosition(bone int, p r3.Vec)

	// SetBonePoseRotation sets the rotation of a bone pose.
	SetBonePoseRotation(bone int, q quat.Number)

	// SetBonePoseScale sets the scale of a bone pose.
	SetBonePoseScale(bone int, s r3.Vec)

	// ResetBonePoses copies every rest transform into the pose.
	ResetBonePoses()

	// BoneGlobalPose composes the poses from the root down to bone, in skeleton space.
	BoneGlobalPose(bone int) common.Transform

	// SkinMatrices returns global pose times inverse bind for every bone, column-major.
	SkinMatrices() [][16]float64
}

type skeleton3D struct {
	Base
	spatial

	bones       []Bone
	nameToIndex map[string]int
}

// Ensure skeleton3D implements Skeleton3D interface.
var _ Skeleton3D = &skeleton3D{}

// NewSkeleton3D creates an empty skeleton.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - Skeleton3D: the new detached skeleton
func NewSkeleton3D(name string) Skeleton3D {
	s := &skeleton3D{spatial: newSpatial(), nameToIndex: make(map[string]int)}
	s.Init(s, name)
	return s
}

func (s *skeleton3D) AddBone(name string, parent int, rest common.Transform) int {
	if parent >= len(s.bones) {
		parent = -1
	}
	s.bones = append(s.bones, Bone{
		Name:        name,
		Parent:      parent,
		Rest:        rest,
		InverseBind: identityMatrix(),
		Pose:        rest,
	})
	idx := len(s.bones) - 1
	s.nameToIndex[name] = idx
	return idx
}

func (s *skeleton3D) SetBoneInverseBind(bone int, m [16]float64) {
	if s.valid(bone) {
		s.bones[bone].InverseBind = m
	}
}

func (s *skeleton3D) BoneCount() int { return len(s.bones) }

func (s *skeleton3D) FindBone(name string) int {
	if idx, ok := s.nameToIndex[name]; ok {
		return idx
	}
	return -1
}

func (s *skeleton3D) Bone(bone int) Bone {
	if !s.valid(bone) {
		return Bone{Parent: -1, Rest: common.IdentityTransform(), Pose: common.IdentityTransform()}
	}
	return s.bones[bone]
}

func (s *skeleton3D) BoneRest(bone int) common.Transform {
	if !s.valid(bone) {
		return common.IdentityTransform()
	}
	return s.bones[bone].Rest
}

func (s *skeleton3D) BonePose(bone int) common.Transform {
	if !s.valid(bone) {
		return common.IdentityTransform()
	}
	return s.bones[bone].Pose
}

func (s *skeleton3D) SetBonePosePosition(bone int, p r3.Vec) {
	if s.valid(bone) {
		s.bones[bone].Pose.Origin = p
	}
}

func (s *skeleton3D) SetBonePoseRotation(bone int, q quat.Number) {
	if s.valid(bone) {
		s.bones[bone].Pose.Rotation = common.QuatNormalize(q)
	}
}

func (s *skeleton3D) SetBonePoseScale(bone int, v r3.Vec) {
	if s.valid(bone) {
		s.bones[bone].Pose.Scale = v
	}
}

func (s *skeleton3D) ResetBonePoses() {
	for i := range s.bones {
		s.bones[i].Pose = s.bones[i].Rest
	}
}

func (s *skeleton3D) BoneGlobalPose(bone int) common.Transform {
	if !s.valid(bone) {
		return common.IdentityTransform()
	}
	t := s.bones[bone].Pose
	for p := s.bones[bone].Parent; p >= 0; p = s.bones[p].Parent {
		t = s.bones[p].Pose.Compose(t)
	}
	return t
}

func (s *skeleton3D) SkinMatrices() [][16]float64 {
	out := make([][16]float64, len(s.bones))
	globals := make([]common.Transform, len(s.bones))
	for i, b := range s.bones {
		// Parents precede children, so their global pose is already known.
		if b.Parent >= 0 {
			globals[i] = globals[b.Parent].Compose(b.Pose)
		} else {
			globals[i] = b.Pose
		}
		out[i] = mulMatrix(globals[i].Matrix(), b.InverseBind)
	}
	return out
}

func (s *skeleton3D) SetIndexed(path string, v variant.Variant) bool {
	if handled, ok := s.setIndexed(path, v); handled {
		return ok
	}
	return s.Base.SetIndexed(path, v)
}

func (s *skeleton3D) GetIndexed(path string) (variant.Variant, bool) {
	if v, handled := s.getIndexed(path); handled {
		return v, !v.IsNil()
	}
	return s.Base.GetIndexed(path)
}

func (s *skeleton3D) GlobalTransform() common.Transform {
	return globalTransform(s)
}

func (s *skeleton3D) valid(bone int) bool {
	return bone >= 0 && bone < len(s.bones)
}

func identityMatrix() [16]float64 {
	return [16]float64{0: 1, 5: 1, 10: 1, 15: 1}
}

// mulMatrix multiplies two column-major 4x4 matrices.
func mulMatrix(a, b [16]float64) [16]float64 {
	var out [16]float64
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}
