package scene

import "log"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithRoot replaces the default plain root node. The node must be detached.
//
// Parameters:
//   - root: the node to use as the scene root
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRoot(root Node) SceneBuilderOption {
	return func(s *scene) {
		s.root = root
	}
}

// WithChildren attaches initial nodes under the root once the scene is built.
// Nodes that fail to attach are logged and skipped.
//
// Parameters:
//   - nodes: detached nodes to add under the root
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithChildren(nodes ...Node) SceneBuilderOption {
	return func(s *scene) {
		if s.root == nil {
			s.root = NewNode("root")
		}
		for _, n := range nodes {
			if err := s.root.AddChild(n); err != nil {
				s.logger.Printf("[Scene] skipping initial node %s: %v", n.Name(), err)
			}
		}
	}
}

// WithLogger sets the logger used for scene diagnostics. Defaults to log.Default().
//
// Parameters:
//   - logger: the logger to write to
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *log.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
