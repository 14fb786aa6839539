package nodes

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"seehuhn.de/go/geom/vec"
)

// OutputName is the reserved name of a blend tree's output node.
const OutputName = "output"

var (
	// ErrNodeExists is returned when adding or renaming onto a taken name.
	ErrNodeExists = errors.New("nodes: node already exists")

	// ErrNodeNotFound is returned for unknown node names.
	ErrNodeNotFound = errors.New("nodes: node not found")

	// ErrNodeName is returned for empty names or names containing '.' or '/'.
	ErrNodeName = errors.New("nodes: invalid node name")

	// ErrOutputNode is returned when removing or renaming the output node.
	ErrOutputNode = errors.New("nodes: the output node cannot be removed or renamed")

	// ErrNoInputIndex is returned when connecting to an input a node does not have.
	ErrNoInputIndex = errors.New("nodes: no such input")

	// ErrNoOutput is returned when the source of a connection is missing or is the output node.
	ErrNoOutput = errors.New("nodes: connection source has no output")

	// ErrSameNode is returned when connecting a node to itself.
	ErrSameNode = errors.New("nodes: cannot connect a node to itself")

	// ErrConnectionExists is returned when the input is taken or the source is already wired.
	ErrConnectionExists = errors.New("nodes: connection exists")
)

type treeEntry struct {
	node        animation.Node
	position    vec.Vec2
	connections []string
	listener    int
}

// BlendTree owns named nodes and wires them by connections. Processing starts at the output node.
type BlendTree struct {
	animation.Base

	entries map[string]*treeEntry
}

var _ animation.Composite = &BlendTree{}

// NewBlendTree creates a tree holding only its output node.
func NewBlendTree() *BlendTree {
	bt := &BlendTree{entries: make(map[string]*treeEntry)}
	bt.Init(bt)
	bt.attach(OutputName, NewOutput(), vec.Vec2{})
	return bt
}

func (bt *BlendTree) Caption() string { return "BlendTree" }

func (bt *BlendTree) HasFilter() bool { return false }

// Children lists every owned node, sorted by name.
func (bt *BlendTree) Children() []animation.ChildNode {
	names := bt.NodeList()
	out := make([]animation.ChildNode, 0, len(names))
	for _, name := range names {
		out = append(out, animation.ChildNode{Name: name, Node: bt.entries[name].node})
	}
	return out
}

func (bt *BlendTree) Process(ctx *animation.Context, time float64, seek, seekRoot bool) float64 {
	return ctx.BlendNode(OutputName, bt.entries[OutputName].node, time, seek, seekRoot, 1, animation.FilterIgnore, true)
}

func (bt *BlendTree) attach(name string, n animation.Node, pos vec.Vec2) {
	e := &treeEntry{node: n, position: pos, connections: make([]string, n.InputCount())}
	e.listener = n.TreeChanged().Connect(func(animation.Node) {
		e.connections = resizeConnections(e.connections, e.node.InputCount())
		bt.EmitChanged()
	})
	bt.entries[name] = e
}

// AddNode adds n under name.
//
// Parameters:
//   - name: the node name, unique within the tree
//   - n: the node
//   - pos: the editor position
//
// Returns:
//   - error: ErrNodeName or ErrNodeExists
func (bt *BlendTree) AddNode(name string, n animation.Node, pos vec.Vec2) error {
	if name == "" || strings.ContainsAny(name, "./") {
		return fmt.Errorf("%w: %q", ErrNodeName, name)
	}
	if _, ok := bt.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrNodeExists, name)
	}
	bt.attach(name, n, pos)
	bt.EmitChanged()
	return nil
}

// Node returns the node called name, or nil.
func (bt *BlendTree) Node(name string) animation.Node {
	if e, ok := bt.entries[name]; ok {
		return e.node
	}
	return nil
}

// HasNode reports whether name exists.
func (bt *BlendTree) HasNode(name string) bool {
	_, ok := bt.entries[name]
	return ok
}

// NodeName returns the name n is stored under, or "".
func (bt *BlendTree) NodeName(n animation.Node) string {
	for name, e := range bt.entries {
		if e.node == n {
			return name
		}
	}
	return ""
}

// NodeList returns all node names, sorted.
func (bt *BlendTree) NodeList() []string {
	names := make([]string, 0, len(bt.entries))
	for name := range bt.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodePosition returns the editor position of name.
func (bt *BlendTree) NodePosition(name string) vec.Vec2 {
	if e, ok := bt.entries[name]; ok {
		return e.position
	}
	return vec.Vec2{}
}

// SetNodePosition moves name in the editor.
func (bt *BlendTree) SetNodePosition(name string, pos vec.Vec2) {
	if e, ok := bt.entries[name]; ok {
		e.position = pos
	}
}

// NodeConnections returns the sources wired into each input of name. Unwired inputs are "".
func (bt *BlendTree) NodeConnections(name string) []string {
	e, ok := bt.entries[name]
	if !ok {
		return nil
	}
	e.connections = resizeConnections(e.connections, e.node.InputCount())
	return e.connections
}

// RemoveNode deletes name and every connection it takes part in.
//
// Parameters:
//   - name: the node to remove
//
// Returns:
//   - error: ErrOutputNode or ErrNodeNotFound
func (bt *BlendTree) RemoveNode(name string) error {
	if name == OutputName {
		return ErrOutputNode
	}
	e, ok := bt.entries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	e.node.TreeChanged().Disconnect(e.listener)
	delete(bt.entries, name)
	for _, other := range bt.entries {
		for i, src := range other.connections {
			if src == name {
				other.connections[i] = ""
			}
		}
	}
	bt.EmitChanged()
	return nil
}

// RenameNode moves a node to a new name, rewiring connections that referenced it. Parameter
// values of the old name are left to the owner of the parameter plane to carry over.
//
// Parameters:
//   - from: the current name
//   - to: the new name
//
// Returns:
//   - error: ErrOutputNode, ErrNodeNotFound, ErrNodeName or ErrNodeExists
func (bt *BlendTree) RenameNode(from, to string) error {
	if from == OutputName || to == OutputName {
		return ErrOutputNode
	}
	e, ok := bt.entries[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, from)
	}
	if to == "" || strings.ContainsAny(to, "./") {
		return fmt.Errorf("%w: %q", ErrNodeName, to)
	}
	if _, taken := bt.entries[to]; taken {
		return fmt.Errorf("%w: %q", ErrNodeExists, to)
	}
	delete(bt.entries, from)
	bt.entries[to] = e
	for _, other := range bt.entries {
		for i, src := range other.connections {
			if src == from {
				other.connections[i] = to
			}
		}
	}
	bt.EmitChanged()
	return nil
}

// CanConnect reports why src cannot be wired into input of dst, or nil.
//
// Parameters:
//   - dst: the node receiving the connection
//   - input: the input index on dst
//   - src: the node whose output is wired
//
// Returns:
//   - error: ErrNoOutput, ErrNodeNotFound, ErrSameNode, ErrNoInputIndex or ErrConnectionExists
func (bt *BlendTree) CanConnect(dst string, input int, src string) error {
	if _, ok := bt.entries[src]; !ok || src == OutputName {
		return fmt.Errorf("%w: %q", ErrNoOutput, src)
	}
	if _, ok := bt.entries[dst]; !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, dst)
	}
	if src == dst {
		return ErrSameNode
	}
	conns := bt.NodeConnections(dst)
	if input < 0 || input >= len(conns) {
		return fmt.Errorf("%w: %d on %q", ErrNoInputIndex, input, dst)
	}
	if conns[input] != "" {
		return fmt.Errorf("%w: input %d of %q", ErrConnectionExists, input, dst)
	}
	for _, other := range bt.entries {
		for _, s := range other.connections {
			if s == src {
				return fmt.Errorf("%w: %q is already wired", ErrConnectionExists, src)
			}
		}
	}
	return nil
}

// ConnectNode wires src into input of dst.
//
// Parameters:
//   - dst: the node receiving the connection
//   - input: the input index on dst
//   - src: the node whose output is wired
//
// Returns:
//   - error: the reason from CanConnect
func (bt *BlendTree) ConnectNode(dst string, input int, src string) error {
	if err := bt.CanConnect(dst, input, src); err != nil {
		return err
	}
	bt.entries[dst].connections[input] = src
	bt.EmitChanged()
	return nil
}

// DisconnectNode clears input of dst.
func (bt *BlendTree) DisconnectNode(dst string, input int) {
	conns := bt.NodeConnections(dst)
	if input < 0 || input >= len(conns) {
		return
	}
	conns[input] = ""
	bt.EmitChanged()
}

func resizeConnections(c []string, n int) []string {
	if len(c) == n {
		return c
	}
	out := make([]string, n)
	copy(out, c)
	return out
}
