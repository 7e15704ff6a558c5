package engine

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// MountTarget is the surface a scene is drawn into. window.Window implements it.
type MountTarget interface {
	// Valid reports whether the target can currently be drawn into.
	Valid() bool

	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Attach claims the target for owner; it fails while another owner holds it.
	Attach(owner any) error

	// Detach releases the claim of owner.
	Detach(owner any)

	// OnResize subscribes fn to size changes.
	OnResize(fn func(width, height int)) (unsubscribe func())
}

// InputSource is implemented by mount targets that deliver pointer and keyboard events. When the
// mount provides it, the orbit controls follow the pointer.
type InputSource interface {
	OnInput(fn func(common.InputEvent)) (unsubscribe func())
}

// surfaceProvider is implemented by mount targets backed by a native window.
type surfaceProvider interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// RendererFactory creates the renderer of a lifecycle for a mount of the given size.
type RendererFactory func(mount MountTarget, width, height int) (renderer.Renderer, error)

// WGPURendererFactory returns a factory creating WebGPU renderers for mounts that expose a
// native surface.
//
// Parameters:
//   - options: options passed to every renderer
//
// Returns:
//   - RendererFactory: the factory
func WGPURendererFactory(options ...renderer.RendererBuilderOption) RendererFactory {
	return func(mount MountTarget, width, height int) (renderer.Renderer, error) {
		sp, ok := mount.(surfaceProvider)
		if !ok {
			return nil, errors.New("mount target has no native surface")
		}
		desc := sp.SurfaceDescriptor()
		if desc == nil {
			return nil, errors.New("mount target surface is not initialized")
		}
		return renderer.NewRenderer(desc, width, height, options...)
	}
}

// HeadlessRendererFactory returns a factory creating renderers that draw nothing. Useful for
// driving a scene without a GPU.
func HeadlessRendererFactory(options ...renderer.RendererBuilderOption) RendererFactory {
	return func(_ MountTarget, width, height int) (renderer.Renderer, error) {
		return renderer.NewRendererWithBackend(renderer.NewHeadlessBackend(), width, height, options...)
	}
}

// Composer adds the content of a scene during Start. Returning an error aborts Start.
type Composer func(stage Stage) error

// Stage is what a Composer builds the scene with. Tracks and drivers registered while the
// animation subsystem is disabled never run.
type Stage interface {
	// Config returns the normalised configuration of the lifecycle being started.
	Config() Config

	// Scene returns the scene under construction.
	Scene() scene.Scene

	// Camera returns the lifecycle camera.
	Camera() camera.Camera

	// Loader returns the lifecycle loader.
	Loader() loader.Loader

	// Add appends top-level nodes to the scene.
	Add(nodes ...node.Node) error

	// Texture requests an image asset. The returned source yields nil until the decode finishes.
	Texture(path string) scene.TextureSource

	// AddTrack registers a procedural track with the lifecycle mixer.
	AddTrack(t animation.Track)

	// AddDriver registers a clip driver with the lifecycle mixer.
	AddDriver(d animation.Driver)
}

// stage is the implementation of the Stage interface.
type stage struct {
	h *handle
}

var _ Stage = &stage{}

func (s *stage) Config() Config {
	return s.h.cfg.Clone()
}

func (s *stage) Scene() scene.Scene {
	return s.h.scene
}

func (s *stage) Camera() camera.Camera {
	return s.h.camera
}

func (s *stage) Loader() loader.Loader {
	return s.h.loader
}

func (s *stage) Add(nodes ...node.Node) error {
	return s.h.scene.Add(nodes...)
}

func (s *stage) Texture(path string) scene.TextureSource {
	return s.h.loader.Request(path)
}

func (s *stage) AddTrack(t animation.Track) {
	s.h.mixer.AddTrack(t)
}

func (s *stage) AddDriver(d animation.Driver) {
	s.h.mixer.AddDriver(d)
}
