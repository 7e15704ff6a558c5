package engine

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/loop"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle is one running scene lifecycle returned by Manager.Start.
type Handle interface {
	// Stop cancels the frame loop and releases everything Start acquired, in order: loop,
	// subscriptions, controls, scene graph, loaded assets, renderer, mount. Later calls are
	// no-ops. Stop must not be called from inside a frame (a Track or Driver).
	Stop()

	// Running reports whether Stop has not run yet.
	Running() bool

	Scene() scene.Scene
	Camera() camera.Camera

	// Controls returns the orbit controls, nil when the controls subsystem is disabled.
	Controls() camera.OrbitControls

	// Particles returns the particle system, nil when the particles subsystem is disabled.
	Particles() particles.System

	// Mixer returns the animation mixer, nil when the animation subsystem is disabled.
	Mixer() animation.Mixer

	Renderer() renderer.Renderer
	Loader() loader.Loader

	// Frames returns the number of frames run.
	Frames() uint64
}

// handle implements the Handle interface. The frame tick, resize and input handlers and Stop all
// run under mu, so no frame overlaps teardown.
type handle struct {
	mu      *sync.Mutex
	manager *manager
	mount   MountTarget
	cfg     Config
	logger  *log.Logger

	renderer  renderer.Renderer
	loader    loader.Loader
	scene     scene.Scene
	camera    camera.Camera
	controls  camera.OrbitControls
	particles particles.System
	mixer     animation.Mixer
	profiler  *profiler.Profiler
	loop      loop.Loop

	model        loader.Handle
	modelGroup   node.Node
	modelDriver  animation.Driver
	modelMounted bool

	unsubscribe []func()
	frames      atomic.Uint64
	stopped     bool
	stopOnce    sync.Once
}

var _ Handle = &handle{}

// attachSubsystems creates the controls, the particle system and the model node per the
// configuration.
func (h *handle) attachSubsystems() error {
	cfg := h.cfg
	if cfg.Enabled(SubsystemControls) {
		h.controls = camera.NewOrbitControls(h.camera,
			camera.WithMinDistance(cfg.MinDistance),
			camera.WithMaxDistance(cfg.MaxDistance),
			camera.WithEnablePan(cfg.EnablePan),
			camera.WithDampingFactor(cfg.DampingFactor),
		)
	}

	if cfg.Enabled(SubsystemParticles) {
		options := []particles.SystemBuilderOption{
			particles.WithAxis(0, 1, 0),
			particles.WithRotationSpeed(cfg.ParticleRotationSpeed),
		}
		if cfg.ParticleSeed != 0 {
			options = append(options, particles.WithSeed(cfg.ParticleSeed))
		}
		if cfg.ParticleHeight != nil {
			options = append(options, particles.WithVerticalRange(cfg.ParticleHeight[0], cfg.ParticleHeight[1]))
		}
		h.particles = particles.New(cfg.ParticleCount, cfg.ParticleExtent, particles.Visual{
			Color:   cfg.ParticleColor,
			Size:    cfg.ParticleSize,
			Blend:   cfg.ParticleBlend,
			Opacity: cfg.ParticleOpacity,
		}, options...)
		if err := h.scene.Add(node.New(
			node.WithName("particles"),
			node.WithKind(node.KindPoints),
			node.WithPayload(h.particles),
		)); err != nil {
			return err
		}
	}

	if cfg.ModelPath != "" {
		h.modelGroup = node.New(
			node.WithName("model"),
			node.WithPosition(cfg.ModelPosition[0], cfg.ModelPosition[1], cfg.ModelPosition[2]),
		)
		if err := h.scene.Add(h.modelGroup); err != nil {
			return err
		}
		h.model = h.loader.Request(cfg.ModelPath)
		if cfg.Enabled(SubsystemAnimation) {
			h.modelDriver = animation.NewDriver(animation.WithLogger(h.logger))
			h.mixer.AddDriver(h.modelDriver)
			if cfg.RotationSpeed != 0 {
				h.mixer.AddTrack(animation.NewSpin(h.modelGroup, mgl32.Vec3{0, 1, 0}, cfg.RotationSpeed))
			}
		}
	}
	return nil
}

// tick runs one frame: controls, particles, animation, render.
func (h *handle) tick(delta float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}

	if h.controls != nil {
		h.guard("controls", func() error {
			h.controls.Update(delta)
			return nil
		})
	}
	if h.particles != nil {
		h.guard("particles", func() error {
			h.particles.Update(delta)
			return nil
		})
	}
	h.guard("model", h.mountModel)
	if h.cfg.Enabled(SubsystemAnimation) {
		h.guard("animation", func() error {
			h.mixer.Update(delta)
			return nil
		})
	}
	h.guard("render", func() error {
		return h.renderer.Render(h.scene, h.camera)
	})

	h.frames.Add(1)
	if h.profiler != nil {
		h.profiler.Tick()
	}
}

// guard runs one subsystem of a frame, logging its error or panic so the frame continues.
func (h *handle) guard(subsystem string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Printf("[Engine] panic in %s: %v", subsystem, r)
		}
	}()
	if err := fn(); err != nil {
		h.logger.Printf("[Engine] %s failed: %v", subsystem, err)
	}
}

// mountModel attaches the model to its group once the loader has decoded it and binds the clip
// driver. A failed load is logged by the loader and leaves the group empty.
func (h *handle) mountModel() error {
	if h.model == nil || h.modelMounted {
		return nil
	}
	switch h.model.State() {
	case loader.StatePending:
		return nil
	case loader.StateFailed:
		h.modelMounted = true
		return nil
	}
	h.modelMounted = true

	m := h.model.Model()
	if m == nil {
		return errors.New(h.model.Path() + " is not a model")
	}
	if err := h.modelGroup.AddChild(m.Root()); err != nil {
		return err
	}
	if h.modelDriver == nil {
		return nil
	}
	clips := m.Clips()
	name := h.cfg.ClipName
	if name == "" && len(clips) > 0 {
		name = clips[0].Name
	}
	if name != "" {
		// a missing clip is reported once by the driver, which then stays idle
		_ = h.modelDriver.Bind(h.modelGroup, clips, name)
	}
	return nil
}

func (h *handle) Stop() {
	h.stopOnce.Do(func() {
		h.loop.Stop()

		h.mu.Lock()
		h.stopped = true
		h.teardownLocked()
		h.mu.Unlock()

		h.manager.forget(h)
		h.logger.Printf("[Engine] stopped scene after %d frames", h.frames.Load())
	})
}

// teardownLocked releases what Start acquired, in reverse dependency order.
func (h *handle) teardownLocked() {
	for _, unsubscribe := range h.unsubscribe {
		unsubscribe()
	}
	h.unsubscribe = nil
	if h.controls != nil {
		h.controls.Dispose()
	}
	if h.scene != nil {
		// disposes particle buffers and mesh payloads, which release their GPU copies
		h.scene.Dispose()
	}
	if h.loader != nil {
		h.loader.ReleaseAll()
	}
	if h.renderer != nil {
		h.renderer.Release()
	}
	h.mount.Detach(h)
}

func (h *handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped
}

func (h *handle) Scene() scene.Scene {
	return h.scene
}

func (h *handle) Camera() camera.Camera {
	return h.camera
}

func (h *handle) Controls() camera.OrbitControls {
	return h.controls
}

func (h *handle) Particles() particles.System {
	return h.particles
}

func (h *handle) Mixer() animation.Mixer {
	if !h.cfg.Enabled(SubsystemAnimation) {
		return nil
	}
	return h.mixer
}

func (h *handle) Renderer() renderer.Renderer {
	return h.renderer
}

func (h *handle) Loader() loader.Loader {
	return h.loader
}

func (h *handle) Frames() uint64 {
	return h.frames.Load()
}
