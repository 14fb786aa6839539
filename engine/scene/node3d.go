package scene

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Node3D is a node with a local transform.
type Node3D interface {
	Node

	// Position returns the local translation.
	Position() r3.Vec

	// SetPosition sets the local translation.
	SetPosition(p r3.Vec)

	// Quaternion returns the local rotation.
	Quaternion() quat.Number

	// SetQuaternion sets the local rotation. The value is normalized.
	SetQuaternion(q quat.Number)

	// Scale returns the local scale.
	Scale() r3.Vec

	// SetScale sets the local scale.
	SetScale(s r3.Vec)

	// Transform returns the local transform.
	Transform() common.Transform

	// GlobalTransform composes the local transforms of every Node3D ancestor.
	GlobalTransform() common.Transform
}

type node3D struct {
	Base
	spatial
}

// spatial holds the transform state and the indexed property handling shared by the 3D node
// types.
type spatial struct {
	position r3.Vec
	rotation quat.Number
	scale    r3.Vec
}

// Ensure node3D implements Node3D interface.
var _ Node3D = &node3D{}

// NewNode3D creates a Node3D with an identity transform.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - Node3D: the new detached node
func NewNode3D(name string) Node3D {
	n := &node3D{spatial: newSpatial()}
	n.Init(n, name)
	return n
}

func newSpatial() spatial {
	return spatial{rotation: common.QuatIdentity(), scale: common.Vec3One()}
}

func (s *spatial) Position() r3.Vec { return s.position }

func (s *spatial) SetPosition(p r3.Vec) { s.position = p }

func (s *spatial) Quaternion() quat.Number { return s.rotation }

func (s *spatial) SetQuaternion(q quat.Number) { s.rotation = common.QuatNormalize(q) }

func (s *spatial) Scale() r3.Vec { return s.scale }

func (s *spatial) SetScale(v r3.Vec) { s.scale = v }

func (s *spatial) Transform() common.Transform {
	return common.Transform{Origin: s.position, Rotation: s.rotation, Scale: s.scale}
}

// setIndexed handles the transform properties; ok is false for anything else.
func (s *spatial) setIndexed(path string, v variant.Variant) (handled, ok bool) {
	prop, comp, _ := strings.Cut(path, ":")
	switch prop {
	case "position":
		return true, setVectorComponent(&s.position, comp, v)
	case "scale":
		return true, setVectorComponent(&s.scale, comp, v)
	case "rotation":
		euler := common.QuatToEuler(s.rotation)
		if !setVectorComponent(&euler, comp, v) {
			return true, false
		}
		s.rotation = common.QuatFromEuler(euler)
		return true, true
	case "quaternion":
		if comp != "" || v.Kind() != variant.KindQuaternion {
			return true, false
		}
		s.SetQuaternion(v.AsQuaternion())
		return true, true
	case "transform":
		if comp != "" || v.Kind() != variant.KindTransform {
			return true, false
		}
		t := v.AsTransform()
		s.position, s.scale = t.Origin, t.Scale
		s.SetQuaternion(t.Rotation)
		return true, true
	}
	return false, false
}

func (s *spatial) getIndexed(path string) (v variant.Variant, handled bool) {
	prop, comp, _ := strings.Cut(path, ":")
	switch prop {
	case "position":
		return vectorComponent(s.position, comp), true
	case "scale":
		return vectorComponent(s.scale, comp), true
	case "rotation":
		return vectorComponent(common.QuatToEuler(s.rotation), comp), true
	case "quaternion":
		return variant.Quaternion(s.rotation), true
	case "transform":
		return variant.Transform(s.Transform()), true
	}
	return variant.Nil(), false
}

func setVectorComponent(dst *r3.Vec, comp string, v variant.Variant) bool {
	if comp == "" {
		if v.Kind() != variant.KindVector3 {
			return false
		}
		*dst = v.AsVector3()
		return true
	}
	switch v.Kind() {
	case variant.KindFloat, variant.KindInt:
	default:
		return false
	}
	switch comp {
	case "x":
		dst.X = v.AsFloat()
	case "y":
		dst.Y = v.AsFloat()
	case "z":
		dst.Z = v.AsFloat()
	default:
		return false
	}
	return true
}

func vectorComponent(v r3.Vec, comp string) variant.Variant {
	switch comp {
	case "":
		return variant.Vector3(v)
	case "x":
		return variant.Float(v.X)
	case "y":
		return variant.Float(v.Y)
	case "z":
		return variant.Float(v.Z)
	}
	return variant.Nil()
}

func (n *node3D) SetIndexed(path string, v variant.Variant) bool {
	if handled, ok := n.setIndexed(path, v); handled {
		return ok
	}
	return n.Base.SetIndexed(path, v)
}

func (n *node3D) GetIndexed(path string) (variant.Variant, bool) {
	if v, handled := n.getIndexed(path); handled {
		return v, !v.IsNil()
	}
	return n.Base.GetIndexed(path)
}

func (n *node3D) GlobalTransform() common.Transform {
	return globalTransform(n)
}

// globalTransform walks up through every ancestor that carries a transform.
func globalTransform(n Node3D) common.Transform {
	t := n.Transform()
	for p := n.Parent(); p != nil; p = p.Parent() {
		if pn, ok := p.(Node3D); ok {
			t = pn.Transform().Compose(t)
		}
	}
	return t
}
