package animation

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
)

// Context is what a node sees while it is processed: the shared state, its own base path in the
// parameter plane, the node that owns it and the connections wired into its inputs.
type Context struct {
	state       *State
	node        Node
	basePath    string
	parent      *Context
	connections []string
}

// Run processes root as the top of a descent.
//
// Parameters:
//   - s: the frame state; its weight width must already be set
//   - root: the root node, seeded with ResetWeights
//   - basePath: the root's base path, "parameters/" for a tree
//   - time: the step or the seek target
//   - seek: true when time is absolute
//   - seekRoot: true when a seek should produce root motion
//
// Returns:
//   - float64: the remaining time reported by root
func Run(s *State, root Node, basePath string, time float64, seek, seekRoot bool) float64 {
	ctx := &Context{state: s, node: root, basePath: basePath}
	return root.Process(ctx, time, seek, seekRoot)
}

// State returns the frame state.
func (c *Context) State() *State { return c.state }

// Node returns the node being processed.
func (c *Context) Node() Node { return c.node }

// BasePath returns the node's prefix in the parameter plane, ending in '/'.
func (c *Context) BasePath() string { return c.basePath }

// Parent returns the node that descended into this one, or nil at the root.
func (c *Context) Parent() Node {
	if c.parent == nil {
		return nil
	}
	return c.parent.node
}

// Connections returns the source names wired into the node's inputs by its parent.
func (c *Context) Connections() []string { return c.connections }

// Clips returns the clip library.
func (c *Context) Clips() ClipSource { return c.state.Clips }

// Parameter reads a parameter of the node being processed.
func (c *Context) Parameter(name string) variant.Variant {
	if c.state.Params == nil {
		return variant.Nil()
	}
	return c.state.Params.Parameter(c.basePath, name)
}

// SetParameter writes a parameter of the node being processed.
func (c *Context) SetParameter(name string, v variant.Variant) {
	if c.state.Params != nil {
		c.state.Params.SetParameter(c.basePath, name, v)
	}
}

// Invalidate marks the graph invalid for this frame.
func (c *Context) Invalidate(reason string) {
	c.state.Invalidate(reason)
}

// BlendAnimation queues a clip contribution weighted by the node's current per-target weights.
//
// Parameters:
//   - name: the clip name in the library
//   - time: the play head after the step
//   - delta: the signed distance travelled
//   - seeked: true when time was reached by a jump
//   - seekRoot: true when a seek should produce root motion
//   - blend: the scalar weight
//   - pingponged: +1 or -1 when a ping-pong clip reflected during the step
func (c *Context) BlendAnimation(name string, time, delta float64, seeked, seekRoot bool, blend float64, pingponged int) {
	anim, ok := c.state.Clips.Animation(name)
	if !ok {
		if parent, isComposite := c.Parent().(Composite); isComposite {
			c.Invalidate(fmt.Sprintf("In node '%s', invalid animation: '%s'.", parent.NodeName(c.node), name))
		} else {
			c.Invalidate(fmt.Sprintf("Invalid animation: '%s'.", name))
		}
		return
	}
	c.state.Records = append(c.state.Records, Record{
		Clip:        anim,
		Time:        time,
		Delta:       delta,
		Seeked:      seeked,
		SeekRoot:    seekRoot,
		Pingponged:  pingponged,
		Blend:       blend,
		TrackBlends: c.node.Weights(),
		Path:        c.basePath,
	})
}

// BlendInput processes whatever the parent composite wired into input i.
//
// Parameters:
//   - input: the input index
//   - time: the step or seek target
//   - seek: true when time is absolute
//   - seekRoot: true when a seek should produce root motion
//   - blend: the scalar weight handed to the input
//   - filter: how the node's filter shapes the weights
//   - optimize: skip real evaluation when every weight is negligible
//
// Returns:
//   - float64: the remaining time reported by the input, 0 when it is not connected
func (c *Context) BlendInput(input int, time float64, seek, seekRoot bool, blend float64, filter FilterAction, optimize bool) float64 {
	if input < 0 || input >= len(c.connections) {
		return 0
	}
	tree, ok := c.Parent().(Composite)
	if !ok {
		return 0
	}
	name := c.connections[input]
	child := tree.Node(name)
	if child == nil {
		c.Invalidate(fmt.Sprintf("Nothing connected to input '%s' of node '%s'.", c.node.InputName(input), tree.NodeName(c.node)))
		return 0
	}

	remaining, activity := c.descend(name, tree.NodeConnections(name), c.parent, child, time, seek, seekRoot, blend, filter, optimize)
	if c.state.Params != nil {
		c.state.Params.RecordActivity(c.basePath, input, activity, c.state.Pass)
	}
	return remaining
}

// BlendNode processes a node owned directly by this one, with parameters under
// base path + subPath + "/". When this node is a composite, the child's connections are the ones
// wired to subPath.
//
// Parameters:
//   - subPath: the child's name below this node
//   - child: the child node
//   - time: the step or seek target
//   - seek: true when time is absolute
//   - seekRoot: true when a seek should produce root motion
//   - blend: the scalar weight
//   - filter: how the node's filter shapes the weights
//   - optimize: skip real evaluation when every weight is negligible
//
// Returns:
//   - float64: the remaining time reported by child
func (c *Context) BlendNode(subPath string, child Node, time float64, seek, seekRoot bool, blend float64, filter FilterAction, optimize bool) float64 {
	var connections []string
	if tree, ok := c.node.(Composite); ok {
		connections = tree.NodeConnections(subPath)
	}
	remaining, _ := c.descend(subPath, connections, c, child, time, seek, seekRoot, blend, filter, optimize)
	return remaining
}

func (c *Context) descend(subPath string, connections []string, owner *Context, child Node, time float64, seek, seekRoot bool, blend float64, filter FilterAction, optimize bool) (float64, float64) {
	parentWeights := c.node.Weights()
	cb := child.core()
	cb.blends = resizeWeights(cb.blends, len(parentWeights))

	var marked []bool
	if c.node.HasFilter() && c.node.FilterEnabled() && filter != FilterIgnore {
		marked = markFiltered(c.node, c.state.TrackMap, len(parentWeights))
	}
	anyValid, maxWeight := mixWeights(cb.blends, parentWeights, marked, blend, filter)

	// Inputs live beside this node under the composite owning both, owned nodes below it.
	sub := &Context{
		state:       c.state,
		node:        child,
		basePath:    owner.basePath + subPath + "/",
		parent:      owner,
		connections: connections,
	}

	if !seek && optimize && !anyValid {
		return child.Process(sub, 0, seek, seekRoot), maxWeight
	}
	return child.Process(sub, time, seek, seekRoot), maxWeight
}

func resizeWeights(w []float64, n int) []float64 {
	if cap(w) >= n {
		return w[:n]
	}
	out := make([]float64, n)
	copy(out, w)
	return out
}
