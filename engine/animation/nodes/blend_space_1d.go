package nodes

import (
	"strconv"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// MaxBlendPoints bounds the points of a blend space.
const MaxBlendPoints = 64

type blendPoint1D struct {
	node     animation.Node
	position float64
	listener int
}

// BlendSpace1D places child nodes on a line and blends the two nearest the "blend_position"
// parameter. Children are named by their index.
type BlendSpace1D struct {
	animation.Base
	syncable

	points   []blendPoint1D
	min, max float64
}

var _ animation.Node = &BlendSpace1D{}

// NewBlendSpace1D creates an empty blend space spanning [-1, 1].
func NewBlendSpace1D() *BlendSpace1D {
	b := &BlendSpace1D{min: -1, max: 1}
	b.Init(b)
	return b
}

func (b *BlendSpace1D) Caption() string { return "BlendSpace1D" }

func (b *BlendSpace1D) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{{Name: "blend_position", Default: variant.Float(0)}}
}

func (b *BlendSpace1D) Children() []animation.ChildNode {
	out := make([]animation.ChildNode, len(b.points))
	for i, p := range b.points {
		out[i] = animation.ChildNode{Name: strconv.Itoa(i), Node: p.node}
	}
	return out
}

// SetRange changes the span shown to editors. Positions outside it are still valid.
func (b *BlendSpace1D) SetRange(lo, hi float64) { b.min, b.max = lo, hi }

// Range returns the span shown to editors.
func (b *BlendSpace1D) Range() (float64, float64) { return b.min, b.max }

// AddBlendPoint places n at pos. Points beyond MaxBlendPoints are ignored.
//
// Parameters:
//   - n: the child node
//   - pos: the position on the line
//
// Returns:
//   - int: the point index, or -1 when full
func (b *BlendSpace1D) AddBlendPoint(n animation.Node, pos float64) int {
	if len(b.points) >= MaxBlendPoints {
		return -1
	}
	id := n.TreeChanged().Connect(func(animation.Node) { b.EmitChanged() })
	b.points = append(b.points, blendPoint1D{node: n, position: pos, listener: id})
	b.EmitChanged()
	return len(b.points) - 1
}

// RemoveBlendPoint drops point i; later points shift down one index.
func (b *BlendSpace1D) RemoveBlendPoint(i int) {
	if i < 0 || i >= len(b.points) {
		return
	}
	b.points[i].node.TreeChanged().Disconnect(b.points[i].listener)
	b.points = append(b.points[:i], b.points[i+1:]...)
	b.EmitChanged()
}

// BlendPointCount returns the number of points.
func (b *BlendSpace1D) BlendPointCount() int { return len(b.points) }

// BlendPointPosition returns the position of point i.
func (b *BlendSpace1D) BlendPointPosition(i int) float64 {
	if i < 0 || i >= len(b.points) {
		return 0
	}
	return b.points[i].position
}

// SetBlendPointPosition moves point i.
func (b *BlendSpace1D) SetBlendPointPosition(i int, pos float64) {
	if i >= 0 && i < len(b.points) {
		b.points[i].position = pos
	}
}

// BlendPointNode returns the node of point i.
func (b *BlendSpace1D) BlendPointNode(i int) animation.Node {
	if i < 0 || i >= len(b.points) {
		return nil
	}
	return b.points[i].node
}

// weights splits the blend between the nearest points on either side of pos.
func (b *BlendSpace1D) weights(pos float64) []float64 {
	w := make([]float64, len(b.points))
	lower, higher := -1, -1
	for i, p := range b.points {
		if p.position <= pos {
			if lower == -1 || pos-p.position < pos-b.points[lower].position {
				lower = i
			}
		} else if higher == -1 || p.position-pos < b.points[higher].position-pos {
			higher = i
		}
	}
	switch {
	case lower == -1 && higher != -1:
		w[higher] = 1
	case higher == -1:
		w[lower] = 1
	default:
		lo, hi := b.points[lower].position, b.points[higher].position
		t := (pos - lo) / (hi - lo)
		w[lower] = 1 - t
		w[higher] = t
	}
	return w
}

func (b *BlendSpace1D) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	switch len(b.points) {
	case 0:
		return 0
	case 1:
		return ctx.BlendNode("0", b.points[0].node, time, seek, seekRoot, 1, animation.FilterIgnore, true)
	}

	w := b.weights(ctx.Parameter("blend_position").AsFloat())
	remaining := 0.0
	for i, p := range b.points {
		r := ctx.BlendNode(strconv.Itoa(i), p.node, time, seek, seekRoot, w[i], animation.FilterIgnore, b.optimize())
		remaining = max(remaining, r)
	}
	return remaining
}
