package scene

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// Resource is a shared property container attached to nodes, such as a material.
// Tracks reach it with a sub-name naming the resource, e.g. "Body:material:albedo".
type Resource struct {
	name  string
	props map[string]variant.Variant
}

// NewResource creates an empty resource.
func NewResource(name string) *Resource {
	return &Resource{name: name, props: make(map[string]variant.Variant)}
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// SetIndexed stores a property value.
func (r *Resource) SetIndexed(path string, v variant.Variant) bool {
	if path == "" {
		return false
	}
	r.props[path] = v
	return true
}

// GetIndexed reads a property value.
func (r *Resource) GetIndexed(path string) (variant.Variant, bool) {
	v, ok := r.props[path]
	return v, ok
}

// MeshInstance3D is a Node3D carrying named blend shapes and named resources.
type MeshInstance3D interface {
	Node3D
	ResourceProvider

	// AddBlendShape appends a blend shape and returns its index.
	AddBlendShape(name string) int

	// BlendShapeCount returns the number of blend shapes.
	BlendShapeCount() int

	// FindBlendShapeByName returns the index of the named shape, or -1.
	FindBlendShapeByName(name string) int

	// BlendShapeValue returns the weight of a shape, 0 for a bad index.
	BlendShapeValue(idx int) float64

	// SetBlendShapeValue sets the weight of a shape.
	SetBlendShapeValue(idx int, v float64)

	// SetResource attaches a named resource reachable through ResolveProperty.
	SetResource(name string, r *Resource)
}

type meshInstance3D struct {
	Base
	spatial

	shapeNames  []string
	shapeValues []float64
	resources   map[string]*Resource
}

// Ensure meshInstance3D implements MeshInstance3D interface.
var _ MeshInstance3D = &meshInstance3D{}

// NewMeshInstance3D creates a mesh node with the given blend shapes, all at weight 0.
//
// Parameters:
//   - name: the node name
//   - shapes: blend shape names in index order
//
// Returns:
//   - MeshInstance3D: the new detached mesh node
func NewMeshInstance3D(name string, shapes ...string) MeshInstance3D {
	m := &meshInstance3D{spatial: newSpatial(), resources: make(map[string]*Resource)}
	m.Init(m, name)
	for _, s := range shapes {
		m.AddBlendShape(s)
	}
	return m
}

func (m *meshInstance3D) AddBlendShape(name string) int {
	m.shapeNames = append(m.shapeNames, name)
	m.shapeValues = append(m.shapeValues, 0)
	return len(m.shapeNames) - 1
}

func (m *meshInstance3D) BlendShapeCount() int { return len(m.shapeNames) }

func (m *meshInstance3D) FindBlendShapeByName(name string) int {
	for i, n := range m.shapeNames {
		if n == name {
			return i
		}
	}
	return -1
}

func (m *meshInstance3D) BlendShapeValue(idx int) float64 {
	if idx < 0 || idx >= len(m.shapeValues) {
		return 0
	}
	return m.shapeValues[idx]
}

func (m *meshInstance3D) SetBlendShapeValue(idx int, v float64) {
	if idx >= 0 && idx < len(m.shapeValues) {
		m.shapeValues[idx] = v
	}
}

func (m *meshInstance3D) SetResource(name string, r *Resource) {
	m.resources[name] = r
}

func (m *meshInstance3D) Resource(name string) (any, bool) {
	r, ok := m.resources[name]
	return r, ok
}

func (m *meshInstance3D) SetIndexed(path string, v variant.Variant) bool {
	if handled, ok := m.setIndexed(path, v); handled {
		return ok
	}
	return m.Base.SetIndexed(path, v)
}

func (m *meshInstance3D) GetIndexed(path string) (variant.Variant, bool) {
	if v, handled := m.getIndexed(path); handled {
		return v, !v.IsNil()
	}
	return m.Base.GetIndexed(path)
}

func (m *meshInstance3D) GlobalTransform() common.Transform {
	return globalTransform(m)
}
