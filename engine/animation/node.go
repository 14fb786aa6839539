// Package animation defines the protocol of blend graph nodes: what a node declares, how it
// descends into its inputs, and the frame state shared down the graph while it is processed.
package animation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// ErrInputName is returned for input names containing '.' or '/'.
var ErrInputName = errors.New("animation: input names may not contain '.' or '/'")

// FilterAction selects how a node's filter shapes the weights handed to a child.
type FilterAction uint8

const (
	// FilterIgnore disregards the filter: child weight = parent weight * blend.
	FilterIgnore FilterAction = iota

	// FilterPass lets only filtered targets through, scaled by blend.
	FilterPass

	// FilterStop blocks filtered targets and passes the rest, scaled by blend.
	FilterStop

	// FilterBlend scales filtered targets by blend and passes the rest unchanged.
	FilterBlend
)

func (f FilterAction) String() string {
	switch f {
	case FilterIgnore:
		return "ignore"
	case FilterPass:
		return "pass"
	case FilterStop:
		return "stop"
	case FilterBlend:
		return "blend"
	}
	return "unknown"
}

// ParameterInfo declares a runtime parameter of a node.
type ParameterInfo struct {
	// Name is the local name, prefixed with the node's base path in the parameter plane.
	Name string

	// Default is the value the plane starts with.
	Default variant.Variant
}

// ChildNode is an owned child exposed to the parameter plane.
type ChildNode struct {
	Name string
	Node Node
}

// Node is a blend graph node. Concrete nodes embed Base, which provides the declarations every
// node shares and seals the interface.
type Node interface {
	// Process evaluates the node for one descent and returns the time remaining in whatever the
	// node is playing, as far as it can tell.
	//
	// Parameters:
	//   - ctx: the descent context; valid only for the duration of the call
	//   - time: the step to advance by, or the absolute time to seek to when seek is set
	//   - seek: true when time is absolute
	//   - seekRoot: true when a seek should also produce root motion
	//
	// Returns:
	//   - float64: the remaining time
	Process(ctx *Context, time float64, seek, seekRoot bool) float64

	// Caption is the display name of the node type.
	Caption() string

	// Parameters lists the parameters the node reads and writes through its context.
	Parameters() []ParameterInfo

	// Children lists owned child nodes whose parameters live below this node's base path.
	Children() []ChildNode

	// HasFilter reports whether the node type uses a filter at all.
	HasFilter() bool

	// InputCount returns the number of declared inputs.
	InputCount() int

	// InputName returns the name of input i, or "".
	InputName(i int) string

	// FilterEnabled reports whether the filter is applied.
	FilterEnabled() bool

	// IsPathFiltered reports whether path is in the filter set.
	IsPathFiltered(path string) bool

	// Weights returns the per-target weights of the node's last descent.
	Weights() []float64

	// TreeChanged is emitted when the node's declarations or children change.
	TreeChanged() *common.Signal[Node]

	core() *Base
}

// Composite is a node that owns named nodes wired by connections, such as a blend tree. Nodes
// processed by a composite resolve their inputs against it.
type Composite interface {
	Node

	// Node returns the owned node called name, or nil.
	Node(name string) Node

	// NodeConnections returns the source node names wired into the inputs of name.
	NodeConnections(name string) []string

	// NodeName returns the name n is owned under, or "".
	NodeName(n Node) string
}

// ClipSource is the clip library nodes pull clips from.
type ClipSource interface {
	HasAnimation(name string) bool
	Animation(name string) (clip.Clip, bool)
}

// Base implements the declarations shared by all nodes: inputs, filter set, weight vector and
// change notification. Embed it and call Init from the constructor.
type Base struct {
	self Node

	inputs        []string
	filter        map[string]bool
	filterEnabled bool
	blends        []float64
	changed       common.Signal[Node]
}

// Init binds the embedded Base to the node that owns it.
//
// Parameters:
//   - self: the embedding node
//   - inputs: the initial input names
func (b *Base) Init(self Node, inputs ...string) {
	b.self = self
	b.inputs = append([]string(nil), inputs...)
	b.filter = make(map[string]bool)
}

func (b *Base) core() *Base { return b }

// Caption defaults to "Node".
func (b *Base) Caption() string { return "Node" }

// Parameters defaults to none.
func (b *Base) Parameters() []ParameterInfo { return nil }

// Children defaults to none.
func (b *Base) Children() []ChildNode { return nil }

// HasFilter defaults to false.
func (b *Base) HasFilter() bool { return false }

func (b *Base) InputCount() int { return len(b.inputs) }

func (b *Base) InputName(i int) string {
	if i < 0 || i >= len(b.inputs) {
		return ""
	}
	return b.inputs[i]
}

// FindInput returns the index of the input called name, or -1.
func (b *Base) FindInput(name string) int {
	for i, n := range b.inputs {
		if n == name {
			return i
		}
	}
	return -1
}

// AddInput appends an input.
//
// Parameters:
//   - name: the input name
//
// Returns:
//   - error: ErrInputName for names containing '.' or '/'
func (b *Base) AddInput(name string) error {
	if strings.ContainsAny(name, "./") {
		return fmt.Errorf("%w: %q", ErrInputName, name)
	}
	b.inputs = append(b.inputs, name)
	b.EmitChanged()
	return nil
}

// SetInputName renames input i.
//
// Parameters:
//   - i: the input index
//   - name: the new name
//
// Returns:
//   - error: ErrInputName for names containing '.' or '/'
func (b *Base) SetInputName(i int, name string) error {
	if strings.ContainsAny(name, "./") {
		return fmt.Errorf("%w: %q", ErrInputName, name)
	}
	if i >= 0 && i < len(b.inputs) {
		b.inputs[i] = name
		b.EmitChanged()
	}
	return nil
}

// RemoveInput drops input i.
func (b *Base) RemoveInput(i int) {
	if i < 0 || i >= len(b.inputs) {
		return
	}
	b.inputs = append(b.inputs[:i], b.inputs[i+1:]...)
	b.EmitChanged()
}

// SetFilterPath adds or removes a target path from the filter set.
//
// Parameters:
//   - path: the track path, e.g. "Skeleton:leg"
//   - enable: true to add, false to remove
func (b *Base) SetFilterPath(path string, enable bool) {
	if enable {
		b.filter[path] = true
	} else {
		delete(b.filter, path)
	}
}

// SetFilterEnabled turns the filter on or off.
func (b *Base) SetFilterEnabled(enabled bool) { b.filterEnabled = enabled }

func (b *Base) FilterEnabled() bool { return b.filterEnabled }

func (b *Base) IsPathFiltered(path string) bool { return b.filter[path] }

// Filters returns the filter set, sorted.
func (b *Base) Filters() []string {
	out := make([]string, 0, len(b.filter))
	for p := range b.filter {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (b *Base) Weights() []float64 { return b.blends }

func (b *Base) TreeChanged() *common.Signal[Node] { return &b.changed }

// EmitChanged notifies listeners that declarations changed and parameters must be rebuilt.
func (b *Base) EmitChanged() { b.changed.Emit(b.self) }

// ResetWeights sizes the weight vector to n and fills it with w. The evaluator uses it to seed
// the root before a descent.
func ResetWeights(n Node, count int, w float64) {
	b := n.core()
	b.blends = common.Resize(b.blends, count)
	for i := range b.blends {
		b.blends[i] = w
	}
}
