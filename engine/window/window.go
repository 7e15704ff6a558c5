package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrOccupied is returned by Attach when another owner already holds the window.
var ErrOccupied = errors.New("window already has an owner")

// Window provides platform windowing and input event handling, and is the surface a scene is
// mounted on. It implements the engine's mount contract: validity, size, single ownership and
// resize subscriptions, plus input subscriptions for camera controls.
type Window interface {
	// Valid reports whether the window has a live platform surface.
	Valid() bool

	// Size returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - width: width in pixels
	//   - height: height in pixels
	Size() (width, height int)

	// Attach claims the window for owner. Attaching the current owner again succeeds.
	//
	// Parameters:
	//   - owner: the claiming lifecycle, compared by identity
	//
	// Returns:
	//   - error: ErrOccupied when another owner holds the window, or an error when it is closed
	Attach(owner any) error

	// Detach releases the claim of owner. Detaching a non-owner is a no-op.
	Detach(owner any)

	// OnResize subscribes fn to framebuffer resizes.
	//
	// Parameters:
	//   - fn: function receiving the new width and height in pixels
	//
	// Returns:
	//   - func(): removes the subscription, safe to call more than once
	OnResize(fn func(width, height int)) (unsubscribe func())

	// OnInput subscribes fn to pointer and keyboard events.
	//
	// Parameters:
	//   - fn: function receiving each event
	//
	// Returns:
	//   - func(): removes the subscription, safe to call more than once
	OnInput(fn func(common.InputEvent)) (unsubscribe func())

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, ownership and event subscribers.
type engineWindow struct {
	mu *sync.Mutex

	// title is the window title displayed in the title bar.
	title string

	// size limits applied to the platform window
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any
	closed         bool

	owner any

	nextID         uint64
	resizeSubs     map[uint64]func(width, height int)
	inputSubs      map[uint64]func(common.InputEvent)
	subscribeOrder []uint64

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a platform window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

// newEngineWindow builds the window state without a platform surface.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:         &sync.Mutex{},
		title:      "oxy-scene",
		maxWidth:   3840,
		maxHeight:  2160,
		minWidth:   320,
		minHeight:  200,
		width:      1280,
		height:     720,
		resizeSubs: make(map[uint64]func(int, int)),
		inputSubs:  make(map[uint64]func(common.InputEvent)),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.internalWindow != nil && !w.closed && w.width > 0 && w.height > 0
}

func (w *engineWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

func (w *engineWindow) Attach(owner any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("window is closed")
	}
	if w.owner != nil && w.owner != owner {
		return ErrOccupied
	}
	w.owner = owner
	return nil
}

func (w *engineWindow) Detach(owner any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.owner == owner {
		w.owner = nil
	}
}

func (w *engineWindow) OnResize(fn func(width, height int)) func() {
	if fn == nil {
		return func() {}
	}
	w.mu.Lock()
	id := w.subscribeLocked()
	w.resizeSubs[id] = fn
	w.mu.Unlock()
	return w.unsubscriber(id)
}

func (w *engineWindow) OnInput(fn func(common.InputEvent)) func() {
	if fn == nil {
		return func() {}
	}
	w.mu.Lock()
	id := w.subscribeLocked()
	w.inputSubs[id] = fn
	w.mu.Unlock()
	return w.unsubscriber(id)
}

func (w *engineWindow) subscribeLocked() uint64 {
	w.nextID++
	w.subscribeOrder = append(w.subscribeOrder, w.nextID)
	return w.nextID
}

func (w *engineWindow) unsubscriber(id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.resizeSubs, id)
			delete(w.inputSubs, id)
			for i, v := range w.subscribeOrder {
				if v == id {
					w.subscribeOrder = append(w.subscribeOrder[:i], w.subscribeOrder[i+1:]...)
					break
				}
			}
		})
	}
}

// resized records the new framebuffer size and notifies subscribers in subscription order.
// Subscribers run without the window lock so they may unsubscribe.
func (w *engineWindow) resized(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	var subs []func(int, int)
	for _, id := range w.subscribeOrder {
		if fn, ok := w.resizeSubs[id]; ok {
			subs = append(subs, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(width, height)
	}
}

// input forwards an event to the input subscribers in subscription order.
func (w *engineWindow) input(ev common.InputEvent) {
	w.mu.Lock()
	var subs []func(common.InputEvent)
	for _, id := range w.subscribeOrder {
		if fn, ok := w.inputSubs[id]; ok {
			subs = append(subs, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		w.mu.Lock()
		update := w.onUpdate
		w.mu.Unlock()
		if update != nil {
			update()
		}

		runtime.Gosched()
	}
}
