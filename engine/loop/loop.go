package loop

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// loopImpl is the implementation of the Loop interface.
type loopImpl struct {
	source FrameSource
	tick   func(delta float32)

	logger   *log.Logger
	maxDelta float32
	clock    func() time.Time

	startOnce sync.Once
	quit      chan struct{}
	quitOnce  sync.Once
	done      chan struct{}

	ticks atomic.Uint64
}

// Loop is a cancellable repeating task: it runs tick once per frame of its source, strictly
// sequentially, until stopped. A frame received after Stop is discarded without running.
type Loop interface {
	// Start launches the loop goroutine. Later calls are no-ops.
	Start()

	// Stop cancels the loop and stops its source. It does not wait for an in-flight tick;
	// use Done for that. Later calls are no-ops.
	Stop()

	// Stopped reports whether Stop has run.
	Stopped() bool

	// Done returns a channel closed once the loop goroutine has exited.
	Done() <-chan struct{}

	// Ticks returns the number of ticks run so far.
	Ticks() uint64
}

var _ Loop = &loopImpl{}

// New creates a stopped loop over source. Each tick receives the seconds since the previous
// frame (the first one: since Start) clamped to [0, maxDelta].
// Defaults: maxDelta 0.1 s, the wall clock, log.Default().
//
// Parameters:
//   - source: the frame source; the loop stops it on Stop
//   - tick: the per-frame work
//   - options: a variadic list of LoopBuilderOption functions
//
// Returns:
//   - Loop: the loop
func New(source FrameSource, tick func(delta float32), options ...LoopBuilderOption) Loop {
	l := &loopImpl{
		source:   source,
		tick:     tick,
		logger:   log.Default(),
		maxDelta: 0.1,
		clock:    time.Now,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loopImpl) Start() {
	l.startOnce.Do(func() {
		start := l.clock()
		go l.run(start)
	})
}

func (l *loopImpl) run(last time.Time) {
	defer close(l.done)
	frames := l.source.Frames()
	for {
		select {
		case <-l.quit:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			// a stop that raced with this frame's delivery wins
			if l.Stopped() {
				f.finish()
				return
			}
			delta := l.clampDelta(float32(f.At.Sub(last).Seconds()))
			last = f.At
			l.runTick(delta)
			f.finish()
		}
	}
}

func (l *loopImpl) clampDelta(delta float32) float32 {
	if delta < 0 || delta != delta {
		return 0
	}
	if l.maxDelta > 0 && delta > l.maxDelta {
		return l.maxDelta
	}
	return delta
}

func (l *loopImpl) runTick(delta float32) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Printf("[Loop] tick recovered from panic: %v", r)
		}
	}()
	l.ticks.Add(1)
	l.tick(delta)
}

func (l *loopImpl) Stop() {
	l.quitOnce.Do(func() {
		close(l.quit)
		l.source.Stop()
		// a loop that never started has nothing to wait for
		l.startOnce.Do(func() {
			close(l.done)
		})
	})
}

func (l *loopImpl) Stopped() bool {
	select {
	case <-l.quit:
		return true
	default:
		return false
	}
}

func (l *loopImpl) Done() <-chan struct{} {
	return l.done
}

func (l *loopImpl) Ticks() uint64 {
	return l.ticks.Load()
}
