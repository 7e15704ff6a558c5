package engine

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/loop"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// syncBuffer is a log sink safe to write from the frame loop goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeMount is an in-memory MountTarget and InputSource.
type fakeMount struct {
	mu     sync.Mutex
	valid  bool
	width  int
	height int
	owner  any
	resize map[int]func(int, int)
	input  map[int]func(common.InputEvent)
	nextID int
}

func newFakeMount() *fakeMount {
	return &fakeMount{
		valid:  true,
		width:  640,
		height: 480,
		resize: make(map[int]func(int, int)),
		input:  make(map[int]func(common.InputEvent)),
	}
}

func (m *fakeMount) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

func (m *fakeMount) Size() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

func (m *fakeMount) Attach(owner any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner != nil && m.owner != owner {
		return errors.New("mount in use")
	}
	m.owner = owner
	return nil
}

func (m *fakeMount) Detach(owner any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner == owner {
		m.owner = nil
	}
}

func (m *fakeMount) Owner() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

func (m *fakeMount) OnResize(fn func(int, int)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.resize[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.resize, id)
	}
}

func (m *fakeMount) OnInput(fn func(common.InputEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.input[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.input, id)
	}
}

func (m *fakeMount) Resize(width, height int) {
	m.mu.Lock()
	m.width, m.height = width, height
	subscribers := make([]func(int, int), 0, len(m.resize))
	for _, fn := range m.resize {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()
	for _, fn := range subscribers {
		fn(width, height)
	}
}

func (m *fakeMount) Send(ev common.InputEvent) {
	m.mu.Lock()
	subscribers := make([]func(common.InputEvent), 0, len(m.input))
	for _, fn := range m.input {
		subscribers = append(subscribers, fn)
	}
	m.mu.Unlock()
	for _, fn := range subscribers {
		fn(ev)
	}
}

func (m *fakeMount) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resize) + len(m.input)
}

// harness runs a manager with a headless renderer and hand-stepped frames.
type harness struct {
	manager  Manager
	mount    *fakeMount
	logs     *syncBuffer
	backends []*renderer.HeadlessBackend
	sources  []*loop.ManualSource
	now      time.Time
}

func newHarness(t *testing.T, options ...ManagerBuilderOption) *harness {
	t.Helper()
	hs := &harness{mount: newFakeMount(), logs: &syncBuffer{}, now: epoch}
	base := []ManagerBuilderOption{
		WithLogger(log.New(hs.logs, "", 0)),
		WithClock(func() time.Time { return epoch }),
		WithRendererFactory(func(_ MountTarget, width, height int) (renderer.Renderer, error) {
			backend := renderer.NewHeadlessBackend()
			hs.backends = append(hs.backends, backend)
			return renderer.NewRendererWithBackend(backend, width, height)
		}),
		WithFrameSource(func() loop.FrameSource {
			src := loop.NewManualSource()
			hs.sources = append(hs.sources, src)
			return src
		}),
	}
	hs.manager = NewManager(append(base, options...)...)
	t.Cleanup(hs.manager.StopAll)
	return hs
}

func (hs *harness) start(t *testing.T, cfg Config) Handle {
	t.Helper()
	h, err := hs.manager.Start(hs.mount, cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h
}

// step delivers n frames 1/60 s apart to the most recently started lifecycle.
func (hs *harness) step(t *testing.T, n int) {
	t.Helper()
	hs.stepBy(t, n, time.Second/60)
}

func (hs *harness) stepBy(t *testing.T, n int, interval time.Duration) {
	t.Helper()
	src := hs.sources[len(hs.sources)-1]
	for range n {
		hs.now = hs.now.Add(interval)
		if !src.Tick(hs.now) {
			t.Fatal("frame source stopped")
		}
	}
}

func (hs *harness) backend() *renderer.HeadlessBackend {
	return hs.backends[len(hs.backends)-1]
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ParticleCount = 50
	cfg.ParticleSeed = 7
	return cfg
}

func TestStartErrors(t *testing.T) {
	hs := newHarness(t)

	if _, err := hs.manager.Start(nil, testConfig()); !errors.Is(err, ErrMountUnavailable) {
		t.Fatalf("Start(nil)\nhave %v\nwant %v", err, ErrMountUnavailable)
	}

	invalid := newFakeMount()
	invalid.valid = false
	if _, err := hs.manager.Start(invalid, testConfig()); !errors.Is(err, ErrMountUnavailable) {
		t.Fatalf("Start(invalid)\nhave %v\nwant %v", err, ErrMountUnavailable)
	}

	bad := testConfig()
	bad.Fov = 200
	if _, err := hs.manager.Start(hs.mount, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Start(fov 200)\nhave %v\nwant %v", err, ErrInvalidConfig)
	}
	if owner := hs.mount.Owner(); owner != nil {
		t.Fatalf("mount owner after rejected config\nhave %v\nwant nil", owner)
	}

	// an unset maximum defaults to 10, below the requested minimum
	inverted := testConfig()
	inverted.MinDistance, inverted.MaxDistance = 20, 0
	if _, err := hs.manager.Start(hs.mount, inverted); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Start(min 20, max unset)\nhave %v\nwant %v", err, ErrInvalidConfig)
	}

	h := hs.start(t, testConfig())
	if _, err := hs.manager.Start(hs.mount, testConfig()); !errors.Is(err, ErrMountUnavailable) {
		t.Fatalf("Start(occupied)\nhave %v\nwant %v", err, ErrMountUnavailable)
	}
	h.Stop()
	if len(hs.manager.Handles()) != 0 {
		t.Fatalf("handles after stop\nhave %d\nwant 0", len(hs.manager.Handles()))
	}
}

func TestStartRendererUnavailable(t *testing.T) {
	cause := errors.New("no adapter")
	hs := newHarness(t, WithRendererFactory(func(MountTarget, int, int) (renderer.Renderer, error) {
		return nil, cause
	}))

	_, err := hs.manager.Start(hs.mount, testConfig())
	if !errors.Is(err, ErrRendererUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("Start\nhave %v\nwant %v wrapping %v", err, ErrRendererUnavailable, cause)
	}
	if owner := hs.mount.Owner(); owner != nil {
		t.Fatalf("mount owner\nhave %v\nwant nil", owner)
	}
	if len(hs.sources) != 0 {
		t.Fatalf("frame sources created\nhave %d\nwant 0", len(hs.sources))
	}
}

func TestStartComposeError(t *testing.T) {
	hs := newHarness(t)
	cause := errors.New("missing asset")
	cfg := testConfig()
	cfg.Compose = func(Stage) error { return cause }

	if _, err := hs.manager.Start(hs.mount, cfg); !errors.Is(err, cause) {
		t.Fatalf("Start\nhave %v\nwant %v", err, cause)
	}
	if owner := hs.mount.Owner(); owner != nil {
		t.Fatalf("mount owner\nhave %v\nwant nil", owner)
	}
	if have := hs.backend().ReleaseCount(); have != 1 {
		t.Fatalf("renderer releases\nhave %d\nwant 1", have)
	}
	if hs.mount.Subscribers() != 0 {
		t.Fatalf("subscribers\nhave %d\nwant 0", hs.mount.Subscribers())
	}
}

func TestFrames(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	var composed Config
	cfg.Compose = func(s Stage) error {
		composed = s.Config()
		return s.Add(node.New(
			node.WithName("cube"),
			node.WithKind(node.KindMesh),
			node.WithPayload(scene.NewMesh("cube", scene.BoxVertices(1, 2), common.Color{G: 1, A: 1})),
		))
	}
	h := hs.start(t, cfg)
	if composed.CameraDistance != 5 {
		t.Fatalf("composed config distance\nhave %v\nwant 5", composed.CameraDistance)
	}
	if h.Controls() == nil || h.Particles() == nil || h.Mixer() == nil {
		t.Fatal("default config should enable every subsystem")
	}

	hs.step(t, 3)
	if have := h.Frames(); have != 3 {
		t.Fatalf("Frames\nhave %d\nwant 3", have)
	}
	if have := hs.backend().Frames(); have != 3 {
		t.Fatalf("rendered frames\nhave %d\nwant 3", have)
	}
	draws, clear, _ := hs.backend().LastFrame()
	if len(draws) != 2 {
		t.Fatalf("draws per frame\nhave %d\nwant 2 (particles and cube)", len(draws))
	}
	if clear != (common.Color{A: 1}) {
		t.Fatalf("clear colour\nhave %v\nwant opaque black", clear)
	}
}

func TestParticleOpacityZero(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	cfg.ParticleOpacity = 0
	h := hs.start(t, cfg)

	if have := h.Particles().Visual().Opacity; have != 0 {
		t.Fatalf("particle opacity\nhave %v\nwant 0", have)
	}
}

func TestSubsystemSelection(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	cfg.EnabledSubsystems = []Subsystem{SubsystemAnimation}
	h := hs.start(t, cfg)

	if h.Controls() != nil || h.Particles() != nil {
		t.Fatal("controls and particles should be disabled")
	}
	if h.Mixer() == nil {
		t.Fatal("animation should be enabled")
	}
	hs.step(t, 1)
	if draws, _, _ := hs.backend().LastFrame(); len(draws) != 0 {
		t.Fatalf("draws\nhave %d\nwant 0", len(draws))
	}
	h.Stop()

	cfg.EnabledSubsystems = []Subsystem{}
	h = hs.start(t, cfg)
	if h.Mixer() != nil {
		t.Fatal("an empty subsystem list should disable animation")
	}
}

type panicTrack struct{}

func (panicTrack) Update(float32) { panic("boom") }

func (panicTrack) Node() node.Node { return nil }

func (panicTrack) Angle() float32 { return 0 }

func TestTickPanicIsolated(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	cfg.Compose = func(s Stage) error {
		s.AddTrack(panicTrack{})
		return nil
	}
	h := hs.start(t, cfg)

	hs.step(t, 2)
	if have := h.Frames(); have != 2 {
		t.Fatalf("Frames\nhave %d\nwant 2", have)
	}
	if have := hs.backend().Frames(); have != 2 {
		t.Fatalf("rendered frames after panics\nhave %d\nwant 2", have)
	}
	if have := strings.Count(hs.logs.String(), "[Engine] panic in animation: boom"); have != 2 {
		t.Fatalf("panic log lines\nhave %d\nwant 2\nlog:\n%s", have, hs.logs.String())
	}
}

func TestSpinTrackUsesElapsedTime(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	var spin animation.Track
	cfg.Compose = func(s Stage) error {
		n := node.New(node.WithName("spinner"))
		spin = animation.NewSpin(n, axisY, 0.6)
		s.AddTrack(spin)
		return s.Add(n)
	}
	hs.start(t, cfg)
	hs.step(t, 30)

	angle := spin.Angle()
	if diff := angle - 0.3; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("angle after 0.5 s at 0.6 rad/s\nhave %v\nwant 0.3", angle)
	}
}

// pendingTexture is a texture source whose image arrives after the scene starts drawing.
type pendingTexture struct {
	mu  sync.Mutex
	tex *common.TextureData
}

func (p *pendingTexture) Texture() *common.TextureData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tex
}

func (p *pendingTexture) set(tex *common.TextureData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tex = tex
}

func TestTextureArrivesWhileRunning(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	cfg.EnabledSubsystems = []Subsystem{}
	src := &pendingTexture{}
	cfg.Compose = func(s Stage) error {
		mesh := scene.NewMesh("earth", scene.SphereVertices(1, 8, 6), common.Color{R: 1, G: 1, B: 1, A: 1})
		mesh.SetTexture(src)
		return s.Add(node.New(node.WithName("earth"), node.WithKind(node.KindMesh), node.WithPayload(mesh)))
	}
	h := hs.start(t, cfg)

	hs.step(t, 1)
	flat, _, _ := hs.backend().LastFrame()
	if len(flat) != 1 {
		t.Fatalf("draws before the texture\nhave %d\nwant 1", len(flat))
	}
	uploads := hs.backend().Uploads()

	src.set(&common.TextureData{Width: 1, Height: 1, Pixels: []byte{0, 0, 255, 255}})
	hs.step(t, 2)

	if strings.Contains(hs.logs.String(), "[Engine] panic") {
		t.Fatalf("re-upload panicked:\n%s", hs.logs.String())
	}
	if have := hs.backend().Uploads(); have != uploads+1 {
		t.Fatalf("uploads after the texture arrived\nhave %d\nwant %d", have, uploads+1)
	}
	if !flat[0].Provider.Released() {
		t.Fatal("flat-coloured copy not released after the textured upload")
	}
	textured, _, _ := hs.backend().LastFrame()
	if len(textured) != 1 || textured[0].Provider.Released() {
		t.Fatal("textured copy missing or released")
	}
	if have := h.Frames(); have != 3 {
		t.Fatalf("Frames\nhave %d\nwant 3", have)
	}
}

func TestResize(t *testing.T) {
	hs := newHarness(t)
	h := hs.start(t, testConfig())

	hs.mount.Resize(800, 400)
	if have := h.Camera().Aspect(); have != 2 {
		t.Fatalf("aspect\nhave %v\nwant 2", have)
	}
	if w, ht := hs.backend().Size(); w != 800 || ht != 400 {
		t.Fatalf("surface size\nhave %dx%d\nwant 800x400", w, ht)
	}

	// degenerate sizes, as reported while minimised, are ignored
	hs.mount.Resize(0, 400)
	if have := h.Camera().Aspect(); have != 2 {
		t.Fatalf("aspect after zero width\nhave %v\nwant 2", have)
	}

	h.Stop()
	if hs.mount.Subscribers() != 0 {
		t.Fatalf("subscribers after stop\nhave %d\nwant 0", hs.mount.Subscribers())
	}
	h.(*handle).resize(1000, 100)
	if have := h.Camera().Aspect(); have != 2 {
		t.Fatalf("aspect after stop\nhave %v\nwant 2", have)
	}
}

func TestStop(t *testing.T) {
	hs := newHarness(t)
	h := hs.start(t, testConfig())
	hs.step(t, 1)
	src := hs.sources[0]

	h.Stop()
	if h.Running() {
		t.Fatal("Running after Stop")
	}
	if owner := hs.mount.Owner(); owner != nil {
		t.Fatalf("mount owner\nhave %v\nwant nil", owner)
	}
	if !h.Scene().Disposed() || !h.Controls().Disposed() || !h.Loader().Released() || !h.Renderer().Released() {
		t.Fatal("Stop left resources alive")
	}
	if src.Tick(hs.now.Add(time.Second)) {
		t.Fatal("frame delivered after Stop")
	}
	if have := h.Frames(); have != 1 {
		t.Fatalf("Frames\nhave %d\nwant 1", have)
	}

	h.Stop()
	hs.manager.Stop(h)
	if have := hs.backend().ReleaseCount(); have != 1 {
		t.Fatalf("renderer releases after repeated stops\nhave %d\nwant 1", have)
	}
	if have := strings.Count(hs.logs.String(), "[Engine] stopped scene"); have != 1 {
		t.Fatalf("stop log lines\nhave %d\nwant 1", have)
	}

	// the mount is free again
	h = hs.start(t, testConfig())
	hs.step(t, 1)
	if !h.Running() {
		t.Fatal("restarted handle not running")
	}
}

func TestStopForeignHandle(t *testing.T) {
	hs := newHarness(t)
	h := hs.start(t, testConfig())

	other := newHarness(t)
	other.manager.Stop(h)
	if !h.Running() {
		t.Fatal("a foreign manager stopped the handle")
	}
}

func TestStopAll(t *testing.T) {
	hs := newHarness(t)
	first := hs.start(t, testConfig())
	second, err := hs.manager.Start(newFakeMount(), testConfig())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if have := len(hs.manager.Handles()); have != 2 {
		t.Fatalf("handles\nhave %d\nwant 2", have)
	}

	hs.manager.StopAll()
	if first.Running() || second.Running() {
		t.Fatal("StopAll left a handle running")
	}
	if have := len(hs.manager.Handles()); have != 0 {
		t.Fatalf("handles after StopAll\nhave %d\nwant 0", have)
	}
}

func TestInput(t *testing.T) {
	hs := newHarness(t)
	cfg := testConfig()
	cfg.DampingFactor = 0
	h := hs.start(t, cfg)
	controls := h.Controls()

	hs.mount.Send(common.InputEvent{Kind: common.InputWheel, Delta: 1})
	if have := controls.GoalDistance(); have >= 5 {
		t.Fatalf("goal distance after wheel up\nhave %v\nwant < 5", have)
	}

	hs.mount.Send(common.InputEvent{Kind: common.InputPointerDown, Button: common.MouseButtonLeft, X: 100, Y: 100})
	hs.mount.Send(common.InputEvent{Kind: common.InputPointerMove, X: 200, Y: 100})
	hs.mount.Send(common.InputEvent{Kind: common.InputPointerUp, Button: common.MouseButtonLeft})
	hs.mount.Send(common.InputEvent{Kind: common.InputKeyDown, Key: common.KeyD})
	hs.step(t, 1)

	if have := controls.Azimuth(); have == 0 {
		t.Fatal("drag did not orbit the camera")
	}
	if have := controls.Target(); have[0] == 0 && have[1] == 0 && have[2] == 0 {
		t.Fatal("key press did not pan the target")
	}

	// moves after the drag ended do nothing
	azimuth := controls.Azimuth()
	hs.mount.Send(common.InputEvent{Kind: common.InputPointerMove, X: 400, Y: 100})
	hs.step(t, 1)
	if have := controls.Azimuth(); have != azimuth {
		t.Fatalf("azimuth after released move\nhave %v\nwant %v", have, azimuth)
	}
}

func TestModelClipPlays(t *testing.T) {
	arm := node.New(node.WithName("arm"))
	root := node.New(node.WithName("robot"))
	if err := root.AddChild(arm); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	robot := model.NewModel(
		model.WithName("robot"),
		model.WithRoot(root),
		model.WithClips([]*animation.Clip{{
			Name:     "Wave",
			Duration: 1,
			Channels: []animation.Channel{{
				Target: "arm",
				TranslationKeys: []animation.VectorKeyframe{
					{Time: 0, Value: mgl32.Vec3{0, 1, 0}},
					{Time: 1, Value: mgl32.Vec3{0, 3, 0}},
				},
			}},
		}}),
	)
	var decoded []string
	hs := newHarness(t, WithLoaderOptions(loader.WithBackend(".glb", func(path string) (any, error) {
		decoded = append(decoded, path)
		return robot, nil
	})))
	cfg := testConfig()
	cfg.ModelPath = "robot.glb"
	cfg.ModelPosition = [3]float32{0, -0.5, 0}
	h := hs.start(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Loader().Get(cfg.ModelPath).Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != "robot.glb" {
		t.Fatalf("decoded paths\nhave %v\nwant [robot.glb]", decoded)
	}

	hs.step(t, 1)
	group := h.Scene().Find("model")
	if group == nil || group.Find("arm") == nil {
		t.Fatal("model not mounted under its group")
	}
	first := arm.Position()[1]

	hs.step(t, 15)
	second := arm.Position()[1]
	if first <= 1 || second <= first || second >= 3 {
		t.Fatalf("arm y across ticks\nhave %v then %v\nwant increasing within (1, 3)", first, second)
	}
	if strings.Contains(hs.logs.String(), "[Animation]") || strings.Contains(hs.logs.String(), "[Engine] model") {
		t.Fatalf("unexpected warning:\n%s", hs.logs.String())
	}
}

func TestParticleRotationOverTicks(t *testing.T) {
	hs := newHarness(t)
	cfg := DefaultConfig()
	cfg.ParticleCount = 5000
	cfg.ParticleRotationSpeed = 0.5
	h := hs.start(t, cfg)

	hs.stepBy(t, 100, 16*time.Millisecond)
	p := h.Particles()
	want := float32(100 * 0.016 * 0.5)
	if diff := p.Rotation() - want; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("particle rotation\nhave %v\nwant %v", p.Rotation(), want)
	}
	if have := p.Len(); have != 5000 {
		t.Fatalf("particle count\nhave %d\nwant 5000", have)
	}
}

func TestResizeScenario(t *testing.T) {
	hs := newHarness(t)
	hs.mount.width, hs.mount.height = 800, 600
	h := hs.start(t, testConfig())
	if have := h.Camera().Aspect(); have != float32(800)/600 {
		t.Fatalf("initial aspect\nhave %v\nwant %v", have, float32(800)/600)
	}

	hs.mount.Resize(1600, 900)
	if have := h.Camera().Aspect(); have != float32(1600)/900 {
		t.Fatalf("aspect\nhave %v\nwant %v", have, float32(1600)/900)
	}
	if w, ht := h.Renderer().Size(); w != 1600 || ht != 900 {
		t.Fatalf("renderer size\nhave %dx%d\nwant 1600x900", w, ht)
	}
}
