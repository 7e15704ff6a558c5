package model

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithRoot is an option builder that sets the node owning the imported hierarchy.
//
// Parameters:
//   - root: the root group node
//
// Returns:
//   - ModelBuilderOption: a function that applies the root option to a model
func WithRoot(root node.Node) ModelBuilderOption {
	return func(m *model) {
		m.root = root
	}
}

// WithClips is an option builder that sets the animation clips of the Model.
// Nil clips are skipped.
//
// Parameters:
//   - clips: the animation clips to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the clips option to a model
func WithClips(clips []*animation.Clip) ModelBuilderOption {
	return func(m *model) {
		for _, c := range clips {
			if c != nil {
				m.clips = append(m.clips, c)
			}
		}
	}
}
