package renderer

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// GPUPointVertex is one instance of the points pipeline: a local-space centre and a colour that
// multiplies the material colour. Matches the PointInput struct of assets/points.wgsl (28 bytes).
type GPUPointVertex struct {
	Position [3]float32
	Color    [4]float32
}

// DrawItem is one staged points draw.
type DrawItem struct {
	// PipelineKey selects the alpha or additive pipeline.
	PipelineKey string

	// Provider holds the vertex buffer, uniform buffer and bind group of the drawable.
	Provider bind_group_provider.BindGroupProvider
}

// RendererBackend is the GPU side of the renderer. The renderer front walks the scene, culls and
// resolves materials; the backend owns the device, the surface and every GPU object.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the size-dependent attachments.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: error if the attachments cannot be created
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the surface present mode. It takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// UploadPoints creates the GPU copy of a point set: a vertex buffer holding the points and a
	// uniform buffer with its bind group.
	//
	// Parameters:
	//   - label: debug label of the drawable
	//   - vertices: the points
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the GPU resources, released by the caller
	//   - error: error if a GPU object cannot be created
	UploadPoints(label string, vertices []GPUPointVertex) (bind_group_provider.BindGroupProvider, error)

	// UploadTexture creates a sampled texture with its sampler and bind group.
	//
	// Parameters:
	//   - label: debug label
	//   - tex: the decoded pixels
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the GPU resources, released by the caller
	//   - error: error if a GPU object cannot be created
	UploadTexture(label string, tex *common.TextureData) (bind_group_provider.BindGroupProvider, error)

	// WriteBuffers writes staged uniform data. Writes land before the next submitted frame.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next swapchain texture and begins the main render pass cleared to
	// the given colour. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame(clear common.Color) error

	// DrawBackground draws a full-screen texture uploaded by UploadTexture.
	DrawBackground(provider bind_group_provider.BindGroupProvider)

	// DrawPoints encodes one instanced points draw within the current render pass.
	DrawPoints(item DrawItem) error

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release frees the pipelines, attachments, device and surface. Later calls are no-ops.
	Release()
}
