package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrResourceLoad wraps every decode failure recorded on a handle.
	ErrResourceLoad = errors.New("resource load failed")

	// ErrReleased is the error of a handle released before its decode finished, and of
	// every Request made after ReleaseAll.
	ErrReleased = errors.New("resource released")
)

const (
	defaultLoaderWorkers = 4
	loaderQueueSize      = 256
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger  *log.Logger
	workers int
	pool    worker.DynamicWorkerPool
	taskID  int

	handles  map[string]*handle
	order    []string
	backends map[string]loaderBackend
	released bool
}

// Loader resolves asset paths to handles. Every path is decoded at most once per loader;
// repeated requests return the same handle. Decoding runs on a worker pool and never blocks
// the caller, so the frame loop can reference a handle while it is still pending.
// One loader belongs to one lifecycle instance and is released with it.
type Loader interface {
	// Request returns the handle for path, scheduling its decode on first use.
	// After ReleaseAll it returns a failed handle without scheduling anything.
	//
	// Parameters:
	//   - path: the asset path; the backend is chosen by extension
	//
	// Returns:
	//   - Handle: the cached or new handle
	Request(path string) Handle

	// Get returns the handle of a previously requested path, or nil.
	Get(path string) Handle

	// Preload requests every path and waits until all of them settle.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//   - paths: the asset paths
	//
	// Returns:
	//   - error: the first load error, or ctx.Err()
	Preload(ctx context.Context, paths ...string) error

	// Handles returns every handle in request order.
	Handles() []Handle

	// ReleaseAll releases every handle exactly once and stops the worker pool.
	// Later calls are no-ops.
	ReleaseAll()

	// Released reports whether ReleaseAll has run.
	Released() bool
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the texture and glTF backends registered and the
// options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	gltf := newGLTFLoaderBackend()
	l := &loader{
		mu:      sync.RWMutex{},
		logger:  log.Default(),
		workers: defaultLoaderWorkers,
		handles: make(map[string]*handle),
		backends: map[string]loaderBackend{
			".png":  textureLoaderBackend{},
			".jpg":  textureLoaderBackend{},
			".jpeg": textureLoaderBackend{},
			".webp": textureLoaderBackend{},
			".gltf": gltf,
			".glb":  gltf,
		},
	}

	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, loaderQueueSize, 1*time.Second)
	return l
}

func (l *loader) Request(path string) Handle {
	l.mu.Lock()
	if h, ok := l.handles[path]; ok {
		l.mu.Unlock()
		return h
	}
	h := newHandle(path)
	if l.released {
		l.mu.Unlock()
		h.settle(nil, fmt.Errorf("%s: %w", path, ErrReleased))
		return h
	}
	l.handles[path] = h
	l.order = append(l.order, path)

	backend, err := l.resolveBackend(path)
	if err != nil {
		l.mu.Unlock()
		l.fail(h, err)
		return h
	}

	id := l.taskID
	l.taskID++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: path,
		Do: func() (any, error) {
			l.decode(h, backend)
			return nil, nil
		},
	})
	return h
}

// decode runs one backend on a pool worker. A panicking backend must not take the worker's
// goroutine, and with it the process, down.
func (l *loader) decode(h *handle, backend loaderBackend) {
	var payload any
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		payload, err = backend.Load(h.path)
	}()

	if err != nil {
		l.fail(h, err)
		return
	}
	if !h.settle(payload, nil) {
		// released while decoding
		if d, ok := payload.(disposable); ok {
			d.Dispose()
		}
	}
}

func (l *loader) fail(h *handle, cause error) {
	err := fmt.Errorf("%s: %w: %w", h.path, ErrResourceLoad, cause)
	if h.settle(nil, err) {
		l.logger.Printf("[Loader] failed to load %s: %v", h.path, cause)
	}
}

func (l *loader) Get(path string) Handle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if h, ok := l.handles[path]; ok {
		return h
	}
	return nil
}

func (l *loader) Preload(ctx context.Context, paths ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range paths {
		h := l.Request(p)
		g.Go(func() error {
			return h.Wait(ctx)
		})
	}
	return g.Wait()
}

func (l *loader) Handles() []Handle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Handle, 0, len(l.order))
	for _, p := range l.order {
		out = append(out, l.handles[p])
	}
	return out
}

func (l *loader) ReleaseAll() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	handles := make([]*handle, 0, len(l.order))
	for _, p := range l.order {
		handles = append(handles, l.handles[p])
	}
	l.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
	l.pool.Stop()
}

func (l *loader) Released() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.released
}

// resolveBackend selects a loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if b, ok := l.backends[ext]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("unsupported asset format: %q", ext)
}
