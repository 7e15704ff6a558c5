package loader

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"
)

// State is the load state of a Handle.
type State int

const (
	// StatePending means the decode has been scheduled but has not finished.
	StatePending State = iota
	// StateReady means the payload is available.
	StateReady
	// StateFailed means the decode failed or the handle was released before it finished.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// disposable is implemented by payloads owning resources, such as models.
type disposable interface {
	Dispose()
}

// handle is the implementation of the Handle interface.
type handle struct {
	mu       *sync.Mutex
	path     string
	state    State
	payload  any
	err      error
	released bool
	done     chan struct{}
}

// Handle is the cache entry of one asset path. It starts pending and settles exactly once,
// either ready with a payload or failed with an error. Renderable content referencing a
// handle draws nothing until it is ready.
type Handle interface {
	// Path returns the asset path the handle was requested with.
	Path() string

	// State returns the current load state.
	State() State

	// Payload returns the decoded payload, or nil unless the handle is ready.
	Payload() any

	// Texture returns the decoded pixels for image assets, nil for anything else or while pending.
	Texture() *common.TextureData

	// Model returns the imported model for glTF assets, nil for anything else or while pending.
	Model() model.Model

	// Err returns the load error of a failed handle.
	Err() error

	// Done returns a channel closed once the handle leaves the pending state.
	Done() <-chan struct{}

	// Wait blocks until the handle settles or ctx is done.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//
	// Returns:
	//   - error: the load error, or ctx.Err() if the context ended first
	Wait(ctx context.Context) error

	// Release drops the payload, disposing it when it owns resources. A pending handle settles
	// as failed with ErrReleased and its eventual decode result is discarded. Later calls are
	// no-ops.
	Release()

	// Released reports whether Release has run.
	Released() bool
}

var _ Handle = &handle{}

func newHandle(path string) *handle {
	return &handle{
		mu:    &sync.Mutex{},
		path:  path,
		state: StatePending,
		done:  make(chan struct{}),
	}
}

func (h *handle) Path() string {
	return h.path
}

func (h *handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *handle) Payload() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.payload
}

func (h *handle) Texture() *common.TextureData {
	tex, _ := h.Payload().(*common.TextureData)
	return tex
}

func (h *handle) Model() model.Model {
	m, _ := h.Payload().(model.Model)
	return m
}

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}

func (h *handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle records the decode result. It reports false when the handle was released meanwhile,
// in which case the caller owns the payload.
func (h *handle) settle(payload any, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StatePending {
		return false
	}
	if err != nil {
		h.state, h.err = StateFailed, err
	} else {
		h.state, h.payload = StateReady, payload
	}
	close(h.done)
	return true
}

func (h *handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	payload := h.payload
	h.payload = nil
	if h.state == StatePending {
		h.state, h.err = StateFailed, ErrReleased
		close(h.done)
	}
	h.mu.Unlock()

	if d, ok := payload.(disposable); ok {
		d.Dispose()
	}
}

func (h *handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
