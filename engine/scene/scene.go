package scene

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Scene owns a tree of nodes under a single root and indexes every node inside it by instance
// id, so holders of an id can check whether the node is still alive.
// The registry is safe for concurrent lookups; tree mutation is expected on one goroutine.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Root returns the root node. It is inside the scene from construction.
	Root() Node

	// Count returns the number of nodes currently inside the scene, root included.
	//
	// Returns:
	//   - int: count of registered nodes
	Count() int

	// Instance looks a node up by instance id. Nodes that left the scene are not found.
	//
	// Parameters:
	//   - id: the node's instance id
	//
	// Returns:
	//   - Node: the node or nil
	Instance(id uint64) Node

	// GetNode resolves the node hops of path relative to from. Absolute paths start at the root
	// and may name the root as their first hop. ".." walks to the parent, "." stays in place.
	//
	// Parameters:
	//   - from: the node relative paths start at; ignored for absolute paths
	//   - path: the path to resolve, sub-names are ignored
	//
	// Returns:
	//   - Node: the resolved node
	//   - error: ErrNodeNotFound if a hop does not exist
	GetNode(from Node, path common.NodePath) (Node, error)

	// ResolveProperty resolves the node hops of path, then consumes leading sub-names for as
	// long as they name resources of the current object.
	//
	// Parameters:
	//   - from: the node relative paths start at
	//   - path: the path to resolve
	//
	// Returns:
	//   - Node: the resolved node
	//   - any: the innermost resource reached, or nil when no sub-name named a resource
	//   - []string: the sub-names left over after the resources
	//   - error: ErrNodeNotFound if a node hop does not exist
	ResolveProperty(from Node, path common.NodePath) (Node, any, []string, error)
}

// ResourceProvider is implemented by nodes and resources that expose named sub-resources to
// ResolveProperty.
type ResourceProvider interface {
	Resource(name string) (any, bool)
}

type scene struct {
	mu *sync.RWMutex

	name     string
	root     Node
	registry map[uint64]Node
	logger   *log.Logger
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a scene with a plain root node called "root".
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		registry: make(map[uint64]Node),
		logger:   log.Default(),
	}
	for _, option := range options {
		option(s)
	}
	if s.root == nil {
		s.root = NewNode("root")
	}
	s.enter(s.root)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Root() Node {
	return s.root
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Instance(id uint64) Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) GetNode(from Node, path common.NodePath) (Node, error) {
	cur := from
	names := path.Names
	if path.Absolute || cur == nil {
		cur = s.root
		if path.Absolute && len(names) > 0 && names[0] == s.root.Name() {
			names = names[1:]
		}
	}
	for _, name := range names {
		switch name {
		case ".":
			continue
		case "..":
			cur = cur.Parent()
		default:
			cur = cur.Child(name)
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path.String())
		}
	}
	return cur, nil
}

func (s *scene) ResolveProperty(from Node, path common.NodePath) (Node, any, []string, error) {
	n, err := s.GetNode(from, path)
	if err != nil {
		return nil, nil, nil, err
	}
	var (
		res     any
		current any = n
	)
	subs := path.SubNames
	for len(subs) > 0 {
		p, ok := current.(ResourceProvider)
		if !ok {
			break
		}
		r, ok := p.Resource(subs[0])
		if !ok {
			break
		}
		res, current = r, r
		subs = subs[1:]
	}
	return n, res, subs, nil
}

// enter registers the subtree rooted at n, parents before children.
func (s *scene) enter(n Node) {
	b := n.base()
	b.scene = s
	s.mu.Lock()
	s.registry[b.id] = n
	s.mu.Unlock()
	if e, ok := n.(TreeEnterer); ok {
		e.EnterTree()
	}
	for _, c := range b.children {
		s.enter(c)
	}
}

// exit unregisters the subtree rooted at n, children before parents, and fires Exited.
func (s *scene) exit(n Node) {
	b := n.base()
	for _, c := range b.Children() {
		s.exit(c)
	}
	if e, ok := n.(TreeExiter); ok {
		e.ExitTree()
	}
	s.mu.Lock()
	delete(s.registry, b.id)
	s.mu.Unlock()
	b.scene = nil
	b.exited.Emit(n)
}
