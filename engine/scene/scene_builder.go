package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithBackground sets the clear colour.
//
// Parameters:
//   - c: the background colour
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(c common.Color) SceneBuilderOption {
	return func(s *scene) {
		s.background = c
	}
}

// WithBackgroundTexture sets a texture drawn behind the scene.
//
// Parameters:
//   - src: the texture source, typically a loader handle
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackgroundTexture(src TextureSource) SceneBuilderOption {
	return func(s *scene) {
		s.backgroundTexture = src
	}
}

// WithFog enables exponential-squared fog.
//
// Parameters:
//   - c: the fog colour
//   - density: the fog density
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFog(c common.Color, density float32) SceneBuilderOption {
	return func(s *scene) {
		s.fog = &Fog{Color: c, Density: density}
	}
}

// WithNodes adds initial top-level nodes. Nodes that cannot be attached are skipped.
//
// Parameters:
//   - nodes: the nodes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...node.Node) SceneBuilderOption {
	return func(s *scene) {
		for _, n := range nodes {
			_ = s.root.AddChild(n)
		}
	}
}
