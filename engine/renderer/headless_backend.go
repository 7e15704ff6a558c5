package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/bind_group_provider"
)

// HeadlessBackend is a RendererBackend that creates no GPU objects. It records what a frame
// would draw, which makes it suitable for tests and for running a scene without a display.
type HeadlessBackend struct {
	mu *sync.Mutex

	width, height int
	presentMode   PresentMode

	uploads   int
	uploadErr error
	writes    int

	inFrame    bool
	frames     int
	clear      common.Color
	background bool
	draws      []DrawItem
	lastDraws  []DrawItem

	released int
}

var _ RendererBackend = &HeadlessBackend{}

// NewHeadlessBackend creates a backend that draws nothing.
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{mu: &sync.Mutex{}}
}

// FailUploads makes every later upload return err. Nil restores successful uploads.
func (b *HeadlessBackend) FailUploads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadErr = err
}

// Uploads returns the number of successful uploads.
func (b *HeadlessBackend) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

// Frames returns the number of presented frames.
func (b *HeadlessBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// LastFrame returns the points draws of the most recent presented frame in draw order, its clear
// colour and whether it drew a background texture.
func (b *HeadlessBackend) LastFrame() (draws []DrawItem, clear common.Color, background bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawItem(nil), b.lastDraws...), b.clear, b.background
}

// Size returns the last configured surface size.
func (b *HeadlessBackend) Size() (width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// ReleaseCount returns how many times Release was called.
func (b *HeadlessBackend) ReleaseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *HeadlessBackend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width <= 0 || height <= 0 {
		return errors.New("invalid surface size")
	}
	b.width, b.height = width, height
	return nil
}

func (b *HeadlessBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *HeadlessBackend) UploadPoints(label string, vertices []GPUPointVertex) (bind_group_provider.BindGroupProvider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	b.uploads++
	p := bind_group_provider.NewBindGroupProvider(label)
	p.SetVertexBuffer(nil, len(vertices))
	return p, nil
}

func (b *HeadlessBackend) UploadTexture(label string, tex *common.TextureData) (bind_group_provider.BindGroupProvider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	if tex == nil || tex.Width == 0 || tex.Height == 0 {
		return nil, errors.New("empty texture")
	}
	b.uploads++
	return bind_group_provider.NewBindGroupProvider(label), nil
}

func (b *HeadlessBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes += len(writes)
}

func (b *HeadlessBackend) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFrame {
		return errors.New("previous frame not ended")
	}
	b.inFrame = true
	b.clear = clear
	b.background = false
	b.draws = b.draws[:0]
	return nil
}

func (b *HeadlessBackend) DrawBackground(provider bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFrame && provider != nil && !provider.Released() {
		b.background = true
	}
}

func (b *HeadlessBackend) DrawPoints(item DrawItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inFrame {
		return errors.New("no frame in progress")
	}
	if item.Provider == nil || item.Provider.Released() {
		return errors.New("drawable released")
	}
	b.draws = append(b.draws, item)
	return nil
}

func (b *HeadlessBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFrame = false
}

func (b *HeadlessBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
	b.lastDraws = append(b.lastDraws[:0], b.draws...)
}

func (b *HeadlessBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released++
}
