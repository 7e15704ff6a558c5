package engine

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/loop"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
// Use the With* functions to create options that are applied directly to the manager instance.
type ManagerBuilderOption func(*manager)

// WithLogger sets the logger shared by the manager, its loaders and the clip drivers it creates.
//
// Parameters:
//   - logger: the logger; nil keeps log.Default()
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(logger *log.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRendererFactory replaces the renderer construction, for example with
// HeadlessRendererFactory.
//
// Parameters:
//   - factory: the renderer factory
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithRendererFactory(factory RendererFactory) ManagerBuilderOption {
	return func(m *manager) {
		m.rendererFactory = factory
	}
}

// WithTickRate sets the frame rate of the default ticker frame source.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithTickRate(fps float64) ManagerBuilderOption {
	return func(m *manager) {
		if fps <= 0 {
			fps = 60.0
		}
		m.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithFrameSource replaces the ticker with a custom frame source, created once per Start.
//
// Parameters:
//   - fn: returns a fresh frame source for each lifecycle
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithFrameSource(fn func() loop.FrameSource) ManagerBuilderOption {
	return func(m *manager) {
		m.frameSource = fn
	}
}

// WithClock sets the clock the frame loop measures its first delta with.
func WithClock(clock func() time.Time) ManagerBuilderOption {
	return func(m *manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLoaderOptions adds options to every loader the manager creates.
func WithLoaderOptions(options ...loader.LoaderBuilderOption) ManagerBuilderOption {
	return func(m *manager) {
		m.loaderOptions = append(m.loaderOptions, options...)
	}
}
