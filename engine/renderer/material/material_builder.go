package material

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor sets the flat colour. Its alpha channel is ignored in favour of the opacity.
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}

// WithOpacity sets the opacity, clamped to [0, 1].
//
// Parameters:
//   - opacity: the opacity
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}

// WithPointSize sets the world-space point size. Non-positive sizes are ignored.
func WithPointSize(size float32) MaterialBuilderOption {
	return func(m *material) {
		if size > 0 {
			m.pointSize = size
		}
	}
}

// WithBlend sets the blend mode.
func WithBlend(blend particles.BlendMode) MaterialBuilderOption {
	return func(m *material) {
		m.blend = blend
	}
}
