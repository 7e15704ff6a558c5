package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/loop"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
)

// manager implements the Manager interface.
type manager struct {
	mu *sync.Mutex

	logger          *log.Logger
	rendererFactory RendererFactory
	frameSource     func() loop.FrameSource
	tickRate        time.Duration
	clock           func() time.Time
	loaderOptions   []loader.LoaderBuilderOption

	handles map[*handle]struct{}
}

// Manager starts and stops scene lifecycles. Each Start builds a renderer, scene, camera and the
// enabled subsystems on a mount target and runs them on a frame loop until the returned Handle
// is stopped. Everything acquired by Start is released by the matching Stop.
type Manager interface {
	// Start mounts a new scene lifecycle and starts its frame loop.
	//
	// Parameters:
	//   - mount: the target to draw into; it must be valid and not owned by another lifecycle
	//   - cfg: the scene configuration, normalised and deep copied
	//
	// Returns:
	//   - Handle: the running lifecycle
	//   - error: wraps ErrMountUnavailable, ErrRendererUnavailable or ErrInvalidConfig, or the
	//     error returned by cfg.Compose; nothing is left running on error
	Start(mount MountTarget, cfg Config) (Handle, error)

	// Stop stops a handle started by this manager. Stopping twice, or stopping a handle of
	// another manager, is a no-op.
	Stop(h Handle)

	// StopAll stops every running handle of this manager.
	StopAll()

	// Handles returns the running handles.
	Handles() []Handle
}

var _ Manager = &manager{}

// NewManager creates a Manager. By default renderers are created through WGPURendererFactory and
// frames are paced by a 60 Hz ticker.
//
// Parameters:
//   - options: functional options for manager configuration
//
// Returns:
//   - Manager: the newly created manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		mu:       &sync.Mutex{},
		logger:   log.Default(),
		tickRate: time.Second / 60,
		clock:    time.Now,
		handles:  make(map[*handle]struct{}),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.rendererFactory == nil {
		m.rendererFactory = WGPURendererFactory(renderer.WithLogger(m.logger))
	}
	if m.frameSource == nil {
		rate := m.tickRate
		m.frameSource = func() loop.FrameSource {
			return loop.NewTickerSource(rate)
		}
	}
	return m
}

func (m *manager) Start(mount MountTarget, cfg Config) (Handle, error) {
	if mount == nil {
		return nil, fmt.Errorf("%w: no mount target", ErrMountUnavailable)
	}
	if !mount.Valid() {
		return nil, fmt.Errorf("%w: mount target is not ready", ErrMountUnavailable)
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &handle{
		mu:      &sync.Mutex{},
		manager: m,
		mount:   mount,
		cfg:     cfg,
		logger:  m.logger,
	}
	if err := mount.Attach(h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMountUnavailable, err)
	}

	width, height := mount.Size()
	r, err := m.rendererFactory(mount, width, height)
	if err != nil {
		mount.Detach(h)
		return nil, fmt.Errorf("%w: %w", ErrRendererUnavailable, err)
	}
	h.renderer = r

	if err := h.build(width, height, m.loaderOptions); err != nil {
		h.mu.Lock()
		h.stopped = true
		h.teardownLocked()
		h.mu.Unlock()
		return nil, err
	}

	h.unsubscribe = append(h.unsubscribe, mount.OnResize(h.resize))
	if in, ok := mount.(InputSource); ok && h.controls != nil {
		h.unsubscribe = append(h.unsubscribe, in.OnInput(h.input))
	}

	h.loop = loop.New(m.frameSource(), h.tick,
		loop.WithMaxDelta(h.cfg.MaxDelta),
		loop.WithClock(m.clock),
		loop.WithLogger(m.logger),
	)

	m.mu.Lock()
	m.handles[h] = struct{}{}
	m.mu.Unlock()

	h.loop.Start()
	m.logger.Printf("[Engine] started scene on %dx%d mount", width, height)
	return h, nil
}

// build creates the loader, camera, scene, composed content and subsystems of h.
func (h *handle) build(width, height int, loaderOptions []loader.LoaderBuilderOption) error {
	cfg := h.cfg
	h.loader = loader.NewLoader(append([]loader.LoaderBuilderOption{loader.WithLogger(h.logger)}, loaderOptions...)...)
	h.mixer = animation.NewMixer()

	h.camera = camera.NewCamera(
		camera.WithFovDegrees(cfg.Fov),
		camera.WithNear(cfg.Near),
		camera.WithFar(cfg.Far),
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithPosition(0, cfg.CameraHeight, cfg.CameraDistance),
		camera.WithTarget(0, 0, 0),
	)

	sceneOptions := []scene.SceneBuilderOption{scene.WithBackground(cfg.Background)}
	if cfg.BackgroundTexture != "" {
		sceneOptions = append(sceneOptions, scene.WithBackgroundTexture(h.loader.Request(cfg.BackgroundTexture)))
	}
	if cfg.Fog != nil {
		sceneOptions = append(sceneOptions, scene.WithFog(cfg.Fog.Color, cfg.Fog.Density))
	}
	h.scene = scene.NewScene("scene", sceneOptions...)

	if cfg.Compose != nil {
		if err := cfg.Compose(&stage{h: h}); err != nil {
			return fmt.Errorf("compose scene: %w", err)
		}
	}
	if err := h.attachSubsystems(); err != nil {
		return err
	}

	if cfg.Profiling {
		h.profiler = profiler.NewProfiler(
			profiler.WithLogger(h.logger),
			profiler.WithCounters(func() profiler.FrameCounters {
				s := h.renderer.Stats()
				return profiler.FrameCounters{Drawn: s.Drawn, Culled: s.Culled, Points: s.Points}
			}),
		)
	}
	return nil
}

func (m *manager) Stop(h Handle) {
	impl, ok := h.(*handle)
	if !ok || impl == nil || impl.manager != m {
		return
	}
	impl.Stop()
}

func (m *manager) StopAll() {
	for _, h := range m.Handles() {
		h.Stop()
	}
}

func (m *manager) Handles() []Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Handle, 0, len(m.handles))
	for h := range m.handles {
		out = append(out, h)
	}
	return out
}

func (m *manager) forget(h *handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, h)
}
