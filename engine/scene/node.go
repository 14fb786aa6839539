package scene

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

var (
	// ErrNodeNotFound is returned when a node path does not resolve.
	ErrNodeNotFound = errors.New("scene: node not found")

	// ErrAlreadyParented is returned when adding a child that already has a parent.
	ErrAlreadyParented = errors.New("scene: node already has a parent")

	// ErrNotChild is returned when removing a node that is not a direct child.
	ErrNotChild = errors.New("scene: node is not a child")

	// ErrMethodNotFound is returned by Call for an unregistered method.
	ErrMethodNotFound = errors.New("scene: method not found")
)

// nextInstanceID is shared by every scene so ids stay unique for the process lifetime.
var nextInstanceID atomic.Uint64

// Node is an element of the scene tree. Concrete node types embed Base, which implements the
// whole interface and seals it.
type Node interface {
	// Name returns the node's name, unique among its siblings.
	Name() string

	// SetName renames the node. Renaming does not re-check sibling uniqueness.
	SetName(name string)

	// InstanceID returns the process-unique id of the node, stable for its lifetime.
	InstanceID() uint64

	// Parent returns the parent node, or nil for a detached node or the scene root.
	Parent() Node

	// Children returns the direct children in insertion order.
	Children() []Node

	// Child returns the direct child called name, or nil.
	Child(name string) Node

	// AddChild appends child to this node. When this node is inside a scene the whole child
	// subtree enters the scene.
	//
	// Parameters:
	//   - child: a detached node
	//
	// Returns:
	//   - error: ErrAlreadyParented if child already has a parent
	AddChild(child Node) error

	// RemoveChild detaches child. When this node is inside a scene the child subtree exits the
	// scene, firing Exited on every node in post order.
	//
	// Parameters:
	//   - child: a direct child
	//
	// Returns:
	//   - error: ErrNotChild if child is not a direct child
	RemoveChild(child Node) error

	// Scene returns the scene the node is inside of, or nil.
	Scene() Scene

	// IsInsideTree reports whether the node is attached to a scene.
	IsInsideTree() bool

	// Exited is emitted with the node itself when it leaves the scene.
	Exited() *common.Signal[Node]

	// SetIndexed writes a property addressed by a colon separated path.
	//
	// Parameters:
	//   - path: the property path, e.g. "energy" or "position:x"
	//   - v: the value to write
	//
	// Returns:
	//   - bool: false if the property cannot take the value
	SetIndexed(path string, v variant.Variant) bool

	// GetIndexed reads a property addressed by a colon separated path.
	GetIndexed(path string) (variant.Variant, bool)

	// Call invokes a method registered with RegisterMethod.
	//
	// Parameters:
	//   - method: the method name
	//   - args: the call arguments
	//
	// Returns:
	//   - error: ErrMethodNotFound if no method of that name is registered
	Call(method string, args []variant.Variant) error

	// RegisterMethod makes fn callable by name through Call.
	RegisterMethod(method string, fn func(args []variant.Variant))

	base() *Base
}

// TreeEnterer is implemented by nodes that need to react when they enter a scene.
type TreeEnterer interface {
	EnterTree()
}

// TreeExiter is implemented by nodes that need to react when they leave a scene.
// ExitTree runs before the Exited signal fires.
type TreeExiter interface {
	ExitTree()
}

// Base carries the tree links, the property bag and the method table shared by every node type.
// Embed it and call Init from the constructor of the embedding type.
type Base struct {
	self     Node
	id       uint64
	name     string
	parent   Node
	children []Node
	scene    *scene

	props   map[string]variant.Variant
	methods map[string]func(args []variant.Variant)
	exited  common.Signal[Node]
}

// Init binds the embedded Base to the node that owns it.
//
// Parameters:
//   - self: the embedding node
//   - name: the node name
func (b *Base) Init(self Node, name string) {
	b.self = self
	b.name = name
	b.id = nextInstanceID.Add(1)
	b.props = make(map[string]variant.Variant)
	b.methods = make(map[string]func(args []variant.Variant))
}

func (b *Base) base() *Base { return b }

func (b *Base) Name() string { return b.name }

func (b *Base) SetName(name string) { b.name = name }

func (b *Base) InstanceID() uint64 { return b.id }

func (b *Base) Parent() Node { return b.parent }

func (b *Base) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

func (b *Base) Child(name string) Node {
	for _, c := range b.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func (b *Base) AddChild(child Node) error {
	cb := child.base()
	if cb.parent != nil || cb.scene != nil && cb.scene.root == child {
		return fmt.Errorf("%w: %s", ErrAlreadyParented, child.Name())
	}
	cb.parent = b.self
	b.children = append(b.children, child)
	if b.scene != nil {
		b.scene.enter(child)
	}
	return nil
}

func (b *Base) RemoveChild(child Node) error {
	for i, c := range b.children {
		if c != child {
			continue
		}
		if b.scene != nil {
			b.scene.exit(child)
		}
		b.children = append(b.children[:i], b.children[i+1:]...)
		child.base().parent = nil
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotChild, child.Name())
}

func (b *Base) Scene() Scene {
	if b.scene == nil {
		return nil
	}
	return b.scene
}

func (b *Base) IsInsideTree() bool { return b.scene != nil }

func (b *Base) Exited() *common.Signal[Node] { return &b.exited }

func (b *Base) SetIndexed(path string, v variant.Variant) bool {
	if path == "" {
		return false
	}
	b.props[path] = v
	return true
}

func (b *Base) GetIndexed(path string) (variant.Variant, bool) {
	v, ok := b.props[path]
	return v, ok
}

func (b *Base) Call(method string, args []variant.Variant) error {
	fn, ok := b.methods[method]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrMethodNotFound, method, b.name)
	}
	fn(args)
	return nil
}

func (b *Base) RegisterMethod(method string, fn func(args []variant.Variant)) {
	b.methods[method] = fn
}

// Path returns the absolute path of n inside its scene, e.g. "/root/Player/Skeleton".
// A detached node yields its own name.
func Path(n Node) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent() {
		parts = append(parts, cur.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	if n.IsInsideTree() {
		return "/" + strings.Join(parts, "/")
	}
	return strings.Join(parts, "/")
}

// plain is the concrete type behind NewNode.
type plain struct {
	Base
}

// NewNode creates a generic node with only the shared behavior: children, properties and
// registered methods.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - Node: the new detached node
func NewNode(name string) Node {
	n := &plain{}
	n.Init(n, name)
	return n
}
