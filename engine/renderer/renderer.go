package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrReleased is returned by Render after Release.
var ErrReleased = errors.New("renderer released")

// FrameStats describes the most recent frame.
type FrameStats struct {
	// Frame counts rendered frames since construction.
	Frame uint64

	// Drawn is the number of point sets drawn.
	Drawn int

	// Culled is the number of point sets skipped by the frustum test.
	Culled int

	// Points is the total number of points drawn.
	Points int
}

// drawable is the GPU copy of one payload.
type drawable struct {
	provider bind_group_provider.BindGroupProvider
	radius   float32
	textured bool
	failed   bool
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend
	logger  *log.Logger

	width  int
	height int

	culling bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount

	drawables map[any]*drawable

	background       bind_group_provider.BindGroupProvider
	backgroundSource *common.TextureData

	stats    FrameStats
	released bool
}

// Renderer draws a scene graph through a RendererBackend.
//
// Every visible particle system and mesh in the scene is drawn as instanced points. GPU copies are
// created on first sight and attached to their payload, so disposing a node releases its GPU
// resources without the renderer having to track scene membership.
type Renderer interface {
	// Render draws one frame of s as seen from cam.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewpoint
	//
	// Returns:
	//   - error: ErrReleased after Release, or the backend error that aborted the frame
	Render(s scene.Scene, cam camera.Camera) error

	// SetSize reconfigures the surface. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	SetSize(width, height int)

	// Size returns the surface size in pixels.
	Size() (width, height int)

	// Stats returns the statistics of the most recent frame.
	Stats() FrameStats

	// Release frees every GPU copy and the backend. Later calls are no-ops.
	Release()

	// Released reports whether Release has run.
	Released() bool
}

var _ Renderer = &renderer{}

// NewRenderer creates a WebGPU renderer drawing into the given surface.
//
// Parameters:
//   - surface: the platform surface descriptor
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if no adapter or device is available, or the surface cannot be configured
func NewRenderer(surface *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(options...)
	backend, err := newWGPURendererBackend(surface, r.forceFallbackAdapter, r.msaa, r.presentMode)
	if err != nil {
		return nil, err
	}
	return r.start(backend, width, height)
}

// NewRendererWithBackend creates a renderer drawing through an existing backend.
//
// Parameters:
//   - backend: the GPU backend, owned by the renderer afterwards
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the surface cannot be configured
func NewRendererWithBackend(backend RendererBackend, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	if backend == nil {
		return nil, errors.New("nil renderer backend")
	}
	r := newRenderer(options...)
	backend.SetPresentMode(r.presentMode)
	return r.start(backend, width, height)
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      log.Default(),
		culling:     true,
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
		drawables:   make(map[any]*drawable),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) start(backend RendererBackend, width, height int) (Renderer, error) {
	r.backend = backend
	r.width, r.height = max(width, 1), max(height, 1)
	if err := backend.ConfigureSurface(r.width, r.height); err != nil {
		backend.Release()
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}
	return r, nil
}

func (r *renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released || (width == r.width && height == r.height) {
		return
	}
	r.width, r.height = width, height
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Printf("[Renderer] resize to %dx%d failed: %v", width, height, err)
	}
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// gpuOwner is implemented by payloads that hold their GPU copy.
type gpuOwner interface {
	AttachGPU(common.Releaser)
	Disposed() bool
}

// visit is one payload found by the scene walk.
type visit struct {
	payload any
	world   mgl32.Mat4
}

// collect walks the scene depth first and returns the payloads of every visible node. An
// invisible node hides its whole subtree.
func collect(root node.Node) []visit {
	var out []visit
	var walk func(n node.Node)
	walk = func(n node.Node) {
		if n.Disposed() || !n.Visible() {
			return
		}
		if p := n.Payload(); p != nil {
			switch p.(type) {
			case particles.System, *scene.Mesh:
				out = append(out, visit{payload: p, world: n.WorldMatrix()})
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return out
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	if s == nil || cam == nil {
		return errors.New("render needs a scene and a camera")
	}
	visits := collect(s.Root())

	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return ErrReleased
	}

	view := cam.ViewMatrix()
	projection := cam.ProjectionMatrix()
	frustum := cam.Frustum()
	fog := s.Fog()

	var attach []func()
	var alpha, additive []DrawItem
	var writes []bind_group_provider.BufferWrite
	stats := FrameStats{Frame: r.stats.Frame + 1}

	for _, v := range visits {
		var (
			mat   material.Material
			model mgl32.Mat4
		)
		switch p := v.payload.(type) {
		case particles.System:
			mat = material.FromVisual("particles", p.Visual())
			model = v.world.Mul4(p.Transform())
		case *scene.Mesh:
			mat = material.FromMesh(p)
			model = v.world
		}

		d, hook := r.drawableLocked(v.payload)
		if hook != nil {
			attach = append(attach, hook)
		}
		if d == nil || d.provider == nil {
			continue
		}

		if r.culling {
			center := model.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
			if !frustum.ContainsSphere(center, d.radius*maxScale(model)) {
				stats.Culled++
				continue
			}
		}

		uniform := mat.Uniform(view, projection, model, fog)
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: d.provider,
			Binding:  0,
			Data:     uniform.Marshal(),
		})
		item := DrawItem{PipelineKey: mat.PipelineKey(), Provider: d.provider}
		if mat.Blend() == particles.BlendAdditive {
			additive = append(additive, item)
		} else {
			alpha = append(alpha, item)
		}
		stats.Drawn++
		stats.Points += d.provider.VertexCount()
	}

	bg := r.backgroundLocked(s.BackgroundTexture())
	err := r.drawLocked(s.Background(), bg, writes, append(alpha, additive...))
	r.stats = stats
	r.mu.Unlock()

	// AttachGPU may release a previous copy through forget, which takes the lock
	for _, fn := range attach {
		fn()
	}
	return err
}

func (r *renderer) drawLocked(clear common.Color, bg bind_group_provider.BindGroupProvider, writes []bind_group_provider.BufferWrite, items []DrawItem) error {
	r.backend.WriteBuffers(writes)
	if err := r.backend.BeginFrame(clear); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	if bg != nil {
		r.backend.DrawBackground(bg)
	}
	var drawErr error
	for _, item := range items {
		if err := r.backend.DrawPoints(item); err != nil && drawErr == nil {
			drawErr = fmt.Errorf("draw %s: %w", item.Provider.Label(), err)
		}
	}
	r.backend.EndFrame()
	r.backend.Present()
	return drawErr
}

// drawableLocked returns the GPU copy of payload, uploading it when missing or when a mesh
// texture became ready since the last upload. The returned hook attaches a new copy to its
// payload and must run without the renderer lock.
func (r *renderer) drawableLocked(payload any) (*drawable, func()) {
	owner, ok := payload.(gpuOwner)
	if !ok || owner.Disposed() {
		return nil, nil
	}

	d := r.drawables[payload]
	var (
		vertices []GPUPointVertex
		textured bool
		label    string
	)
	switch p := payload.(type) {
	case particles.System:
		if d != nil {
			return d, nil
		}
		label = "particles"
		positions := p.Positions()
		vertices = make([]GPUPointVertex, len(positions))
		for i, pos := range positions {
			vertices[i] = GPUPointVertex{Position: pos, Color: [4]float32{1, 1, 1, 1}}
		}
	case *scene.Mesh:
		if d != nil && (d.textured || p.Texture() == nil || p.Texture().Texture() == nil) {
			return d, nil
		}
		label = p.Name()
		positions := p.Positions()
		var colors []common.Color
		colors, textured = p.Colors()
		vertices = make([]GPUPointVertex, len(positions))
		flat := p.Color()
		for i, pos := range positions {
			c := colors[i]
			// the material colour is multiplied in the shader, so vertices carry the ratio
			vertices[i] = GPUPointVertex{Position: pos, Color: [4]float32{
				ratio(c.R, flat.R), ratio(c.G, flat.G), ratio(c.B, flat.B), 1,
			}}
		}
	default:
		return nil, nil
	}
	if d != nil && d.failed {
		return d, nil
	}
	if len(vertices) == 0 {
		return nil, nil
	}

	provider, err := r.backend.UploadPoints(label, vertices)
	if err != nil {
		r.logger.Printf("[Renderer] upload of %s failed: %v", label, err)
		failed := &drawable{failed: true}
		r.drawables[payload] = failed
		return failed, nil
	}

	next := &drawable{provider: provider, radius: boundingRadius(vertices), textured: textured}
	r.drawables[payload] = next
	var once sync.Once
	forget := common.ReleaserFunc(func() {
		once.Do(func() {
			r.mu.Lock()
			if r.drawables[payload] == next {
				delete(r.drawables, payload)
			}
			r.mu.Unlock()
			provider.Release()
		})
	})
	return next, func() { owner.AttachGPU(forget) }
}

// backgroundLocked returns the background texture binding, uploading it when the source pixels
// changed. Nil when the scene has no ready background texture.
func (r *renderer) backgroundLocked(src scene.TextureSource) bind_group_provider.BindGroupProvider {
	var tex *common.TextureData
	if src != nil {
		tex = src.Texture()
	}
	if tex == r.backgroundSource {
		return r.background
	}
	if r.background != nil {
		r.background.Release()
		r.background = nil
	}
	r.backgroundSource = tex
	if tex == nil {
		return nil
	}
	provider, err := r.backend.UploadTexture("background", tex)
	if err != nil {
		r.logger.Printf("[Renderer] background upload failed: %v", err)
		return nil
	}
	r.background = provider
	return provider
}

func (r *renderer) Release() {
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	providers := make([]bind_group_provider.BindGroupProvider, 0, len(r.drawables)+1)
	for _, d := range r.drawables {
		if d.provider != nil {
			providers = append(providers, d.provider)
		}
	}
	r.drawables = make(map[any]*drawable)
	if r.background != nil {
		providers = append(providers, r.background)
		r.background = nil
	}
	r.mu.Unlock()

	for _, p := range providers {
		p.Release()
	}
	r.backend.Release()
}

func (r *renderer) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

func ratio(c, flat float32) float32 {
	if flat <= 0 {
		return c
	}
	return c / flat
}

func boundingRadius(vertices []GPUPointVertex) float32 {
	var r float32
	for _, v := range vertices {
		r = max(r, mgl32.Vec3(v.Position).Len())
	}
	return r
}

// maxScale returns the largest axis scale of a model matrix.
func maxScale(m mgl32.Mat4) float32 {
	return max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
}
