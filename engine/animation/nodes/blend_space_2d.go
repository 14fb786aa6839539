package nodes

import (
	"strconv"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"seehuhn.de/go/geom/vec"
)

// BlendMode selects how a BlendSpace2D turns its position into weights.
type BlendMode uint8

const (
	// BlendInterpolated blends the corners of the triangle holding the position.
	BlendInterpolated BlendMode = iota

	// BlendDiscrete plays only the closest point.
	BlendDiscrete

	// BlendDiscreteCarry plays only the closest point, starting it where the previous one was.
	BlendDiscreteCarry
)

type blendPoint2D struct {
	node     animation.Node
	position vec.Vec2
	listener int
}

// BlendSpace2D places child nodes on a plane and blends them by the "blend_position" parameter.
// Children are named by their index.
type BlendSpace2D struct {
	animation.Base
	syncable

	points        []blendPoint2D
	triangles     [][3]int
	autoTriangles bool
	dirty         bool
	mode          BlendMode
}

var _ animation.Node = &BlendSpace2D{}

// NewBlendSpace2D creates an empty blend space that triangulates its points automatically.
func NewBlendSpace2D() *BlendSpace2D {
	b := &BlendSpace2D{autoTriangles: true}
	b.Init(b)
	return b
}

func (b *BlendSpace2D) Caption() string { return "BlendSpace2D" }

func (b *BlendSpace2D) Parameters() []animation.ParameterInfo {
	return []animation.ParameterInfo{
		{Name: "blend_position", Default: variant.Vector2(vec.Vec2{})},
		{Name: "closest", Default: variant.Int(-1)},
		{Name: "length_internal", Default: variant.Float(0)},
	}
}

func (b *BlendSpace2D) Children() []animation.ChildNode {
	out := make([]animation.ChildNode, len(b.points))
	for i, p := range b.points {
		out[i] = animation.ChildNode{Name: strconv.Itoa(i), Node: p.node}
	}
	return out
}

// SetBlendMode changes how weights are derived.
func (b *BlendSpace2D) SetBlendMode(mode BlendMode) { b.mode = mode }

// SetAutoTriangles turns automatic triangulation on or off. Off keeps the triangles added with
// AddTriangle.
func (b *BlendSpace2D) SetAutoTriangles(enabled bool) {
	b.autoTriangles = enabled
	b.dirty = enabled
}

// AddBlendPoint places n at pos.
//
// Parameters:
//   - n: the child node
//   - pos: the position on the plane
//
// Returns:
//   - int: the point index, or -1 when full
func (b *BlendSpace2D) AddBlendPoint(n animation.Node, pos vec.Vec2) int {
	if len(b.points) >= MaxBlendPoints {
		return -1
	}
	id := n.TreeChanged().Connect(func(animation.Node) { b.EmitChanged() })
	b.points = append(b.points, blendPoint2D{node: n, position: pos, listener: id})
	b.dirty = b.autoTriangles
	b.EmitChanged()
	return len(b.points) - 1
}

// RemoveBlendPoint drops point i together with every triangle using it.
func (b *BlendSpace2D) RemoveBlendPoint(i int) {
	if i < 0 || i >= len(b.points) {
		return
	}
	b.points[i].node.TreeChanged().Disconnect(b.points[i].listener)
	b.points = append(b.points[:i], b.points[i+1:]...)

	kept := b.triangles[:0]
	for _, t := range b.triangles {
		if t[0] == i || t[1] == i || t[2] == i {
			continue
		}
		for k := range t {
			if t[k] > i {
				t[k]--
			}
		}
		kept = append(kept, t)
	}
	b.triangles = kept
	b.dirty = b.autoTriangles
	b.EmitChanged()
}

// SetBlendPointPosition moves point i.
func (b *BlendSpace2D) SetBlendPointPosition(i int, pos vec.Vec2) {
	if i >= 0 && i < len(b.points) {
		b.points[i].position = pos
		b.dirty = b.autoTriangles
	}
}

// BlendPointCount returns the number of points.
func (b *BlendSpace2D) BlendPointCount() int { return len(b.points) }

// AddTriangle adds a triangle by point indices. Ignored with automatic triangulation on.
//
// Parameters:
//   - x, y, z: the point indices
func (b *BlendSpace2D) AddTriangle(x, y, z int) {
	if b.autoTriangles {
		return
	}
	for _, i := range []int{x, y, z} {
		if i < 0 || i >= len(b.points) {
			return
		}
	}
	b.triangles = append(b.triangles, [3]int{x, y, z})
}

// Triangles returns the current triangles, rebuilding them first if needed.
func (b *BlendSpace2D) Triangles() [][3]int {
	if b.dirty {
		pos := make([]vec.Vec2, len(b.points))
		for i, p := range b.points {
			pos[i] = p.position
		}
		b.triangles = triangulate(pos)
		b.dirty = false
	}
	return b.triangles
}

// weights returns the interpolated point weights for pos and the triangle they come from, or nil
// without triangles.
func (b *BlendSpace2D) weights(pos vec.Vec2) ([]float64, [3]int) {
	tris := b.Triangles()
	if len(tris) == 0 {
		return nil, [3]int{}
	}

	best := -1
	var bestWeights [3]float64
	var bestPoint vec.Vec2
	for ti, t := range tris {
		a, c1, c2 := b.points[t[0]].position, b.points[t[1]].position, b.points[t[2]].position
		if inTriangle(pos, a, c1, c2) {
			best = ti
			bestWeights = barycentric(pos, a, c1, c2)
			break
		}
		corners := [3]vec.Vec2{a, c1, c2}
		for j := 0; j < 3; j++ {
			s0, s1 := corners[j], corners[(j+1)%3]
			closest := closestOnSegment(pos, s0, s1)
			if best == -1 || closest.Sub(pos).Length() < bestPoint.Sub(pos).Length() {
				best = ti
				bestPoint = closest
				bestWeights = [3]float64{}
				if d := s1.Sub(s0).Length(); d == 0 {
					bestWeights[j] = 1
				} else {
					f := closest.Sub(s0).Length() / d
					bestWeights[j] = 1 - f
					bestWeights[(j+1)%3] = f
				}
			}
		}
	}

	w := make([]float64, len(b.points))
	for j, pi := range tris[best] {
		w[pi] = bestWeights[j]
	}
	return w, tris[best]
}

func (b *BlendSpace2D) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	if len(b.points) == 0 {
		return 0
	}
	pos := ctx.Parameter("blend_position").AsVector2()

	if b.mode == BlendInterpolated {
		w, tri := b.weights(pos)
		if w == nil {
			return 0
		}
		first := true
		minRem := 0.0
		for i, p := range b.points {
			if i != tri[0] && i != tri[1] && i != tri[2] {
				if b.sync {
					ctx.BlendNode(strconv.Itoa(i), p.node, time, seek, seekRoot, 0, animation.FilterIgnore, true)
				}
				continue
			}
			r := ctx.BlendNode(strconv.Itoa(i), p.node, time, seek, seekRoot, w[i], animation.FilterIgnore, true)
			if first || r < minRem {
				minRem = r
				first = false
			}
		}
		return minRem
	}

	closest := int(ctx.Parameter("closest").AsInt())
	if closest >= len(b.points) {
		closest = -1
	}
	length := ctx.Parameter("length_internal").AsFloat()

	next, bestDist := -1, 0.0
	for i, p := range b.points {
		d := p.position.Sub(pos)
		if dist := d.Dot(d); next == -1 || dist < bestDist {
			next, bestDist = i, dist
		}
	}

	var rem float64
	if next != closest {
		from := 0.0
		if b.mode == BlendDiscreteCarry && closest >= 0 {
			from = length - ctx.BlendNode(strconv.Itoa(closest), b.points[closest].node, time, false, seekRoot, 0, animation.FilterIgnore, true)
		}
		rem = ctx.BlendNode(strconv.Itoa(next), b.points[next].node, from, true, seekRoot, 1, animation.FilterIgnore, true)
		length = from + rem
		closest = next
	} else {
		rem = ctx.BlendNode(strconv.Itoa(closest), b.points[closest].node, time, seek, seekRoot, 1, animation.FilterIgnore, true)
	}

	ctx.SetParameter("closest", variant.Int(int64(closest)))
	ctx.SetParameter("length_internal", variant.Float(length))
	return rem
}
