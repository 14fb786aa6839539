package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor converts glTF skins into bone lists ordered parents first.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts one skin.
	//
	// Parameters:
	//   - skinIndex: the index of the skin
	//   - name: the node name the skeleton will be instantiated under
	//
	// Returns:
	//   - *SkeletonData: the bones, parents before children
	//   - map[int]string: glTF joint node index to bone name
	//   - error: error if extraction fails
	ExtractSkeleton(skinIndex int, name string) (*SkeletonData, map[int]string, error)
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int, name string) (*SkeletonData, map[int]string, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	var inverseBinds [][16]float64
	if skin.InverseBindMatrices != nil {
		var err error
		if inverseBinds, err = e.parser.ReadMat4s(*skin.InverseBindMatrices); err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	parentOf := gltfParentIndices(doc)
	jointToBone := make(map[int]int, len(skin.Joints))
	for i, node := range skin.Joints {
		if node < 0 || node >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, node)
		}
		jointToBone[node] = i
	}

	bones := make([]scene.Bone, len(skin.Joints))
	used := make(map[string]int)
	for i, node := range skin.Joints {
		n := &doc.Nodes[node]
		bones[i] = scene.Bone{
			Name:        uniqueName(n.Name, fmt.Sprintf("bone_%d", i), used),
			Parent:      -1,
			Rest:        gltfNodeTransform(n),
			InverseBind: identityMatrix(),
		}
		if i < len(inverseBinds) {
			bones[i].InverseBind = inverseBinds[i]
		}
		// Only a direct parent that is itself a joint of this skin links bones.
		if parent, ok := parentOf[node]; ok {
			if pb, ok := jointToBone[parent]; ok {
				bones[i].Parent = pb
			}
		}
	}

	sorted := sortBonesParentFirst(bones)
	names := make(map[int]string, len(skin.Joints))
	for i, node := range skin.Joints {
		names[node] = bones[i].Name
	}

	return &SkeletonData{Name: name, Bones: sorted}, names, nil
}

// gltfParentIndices maps each child node index to its parent node index.
func gltfParentIndices(doc *gltfDocument) map[int]int {
	parents := make(map[int]int)
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			parents[c] = i
		}
	}
	return parents
}

// sortBonesParentFirst orders bones breadth first from the roots and rewrites parent indices
// for the new order. Bones caught in a parent cycle are appended as roots.
func sortBonesParentFirst(bones []scene.Bone) []scene.Bone {
	children := make(map[int][]int)
	var queue []int
	for i, b := range bones {
		if b.Parent < 0 {
			queue = append(queue, i)
		} else {
			children[b.Parent] = append(children[b.Parent], i)
		}
	}

	order := make([]int, 0, len(bones))
	visited := make([]bool, len(bones))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited[i] = true
		order = append(order, i)
		queue = append(queue, children[i]...)
	}
	for i := range bones {
		if !visited[i] {
			bones[i].Parent = -1
			order = append(order, i)
		}
	}

	oldToNew := make([]int, len(bones))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = newIdx
	}

	out := make([]scene.Bone, len(bones))
	for newIdx, oldIdx := range order {
		b := bones[oldIdx]
		if b.Parent >= 0 {
			b.Parent = oldToNew[b.Parent]
		}
		out[newIdx] = b
	}
	return out
}

// gltfNodeTransform reads a node's local transform from its matrix or TRS properties.
func gltfNodeTransform(n *gltfNode) common.Transform {
	if n.Matrix != nil {
		return decomposeMatrix(*n.Matrix)
	}

	t := common.IdentityTransform()
	if n.Translation != nil {
		t.Origin = r3.Vec{X: n.Translation[0], Y: n.Translation[1], Z: n.Translation[2]}
	}
	if n.Rotation != nil {
		t.Rotation = common.QuatNormalize(common.QuatFromXYZW(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3]))
	}
	if n.Scale != nil {
		t.Scale = r3.Vec{X: n.Scale[0], Y: n.Scale[1], Z: n.Scale[2]}
	}
	return t
}

// decomposeMatrix splits a column-major affine matrix without shear into translation, rotation
// and scale.
func decomposeMatrix(m [16]float64) common.Transform {
	t := common.Transform{Origin: r3.Vec{X: m[12], Y: m[13], Z: m[14]}}

	sx := math.Hypot(math.Hypot(m[0], m[1]), m[2])
	sy := math.Hypot(math.Hypot(m[4], m[5]), m[6])
	sz := math.Hypot(math.Hypot(m[8], m[9]), m[10])
	t.Scale = r3.Vec{X: sx, Y: sy, Z: sz}

	if sx < 1e-4 {
		sx = 1
	}
	if sy < 1e-4 {
		sy = 1
	}
	if sz < 1e-4 {
		sz = 1
	}

	// Row-major rotation: r[row][col], columns normalised by their scale.
	r := [3][3]float64{
		{m[0] / sx, m[4] / sy, m[8] / sz},
		{m[1] / sx, m[5] / sy, m[9] / sz},
		{m[2] / sx, m[6] / sy, m[10] / sz},
	}

	var x, y, z, w float64
	switch trace := r[0][0] + r[1][1] + r[2][2]; {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		w = 0.25 * s
		x = (r[2][1] - r[1][2]) / s
		y = (r[0][2] - r[2][0]) / s
		z = (r[1][0] - r[0][1]) / s
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := math.Sqrt(1+r[0][0]-r[1][1]-r[2][2]) * 2
		w = (r[2][1] - r[1][2]) / s
		x = 0.25 * s
		y = (r[0][1] + r[1][0]) / s
		z = (r[0][2] + r[2][0]) / s
	case r[1][1] > r[2][2]:
		s := math.Sqrt(1+r[1][1]-r[0][0]-r[2][2]) * 2
		w = (r[0][2] - r[2][0]) / s
		x = (r[0][1] + r[1][0]) / s
		y = 0.25 * s
		z = (r[1][2] + r[2][1]) / s
	default:
		s := math.Sqrt(1+r[2][2]-r[0][0]-r[1][1]) * 2
		w = (r[1][0] - r[0][1]) / s
		x = (r[0][2] + r[2][0]) / s
		y = (r[1][2] + r[2][1]) / s
		z = 0.25 * s
	}
	t.Rotation = common.QuatNormalize(common.QuatFromXYZW(x, y, z, w))
	return t
}

func identityMatrix() [16]float64 {
	return [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// uniqueName returns name, or fallback when name is empty, suffixed when already taken.
func uniqueName(name, fallback string, used map[string]int) string {
	name = common.Coalesce(name, fallback)
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return name
}
