package loop

import (
	"sync"
	"time"
)

// Frame is one display refresh delivered by a FrameSource.
type Frame struct {
	// At is the refresh timestamp; deltas are measured between consecutive frames.
	At time.Time

	done chan struct{}
}

// finish tells a waiting ManualSource the frame has been consumed.
func (f Frame) finish() {
	if f.done != nil {
		close(f.done)
	}
}

// FrameSource delivers display refresh ticks to a Loop.
type FrameSource interface {
	// Frames returns the channel frames arrive on.
	Frames() <-chan Frame

	// Stop ends delivery. Later calls are no-ops.
	Stop()
}

// tickerSource is a FrameSource driven by a time.Ticker.
type tickerSource struct {
	ticker   *time.Ticker
	out      chan Frame
	quit     chan struct{}
	quitOnce sync.Once
}

// NewTickerSource creates a FrameSource ticking at a fixed rate. Ticks the loop is too busy to
// take are dropped rather than queued.
//
// Parameters:
//   - rate: the interval between frames, values of zero or less select 60 Hz
//
// Returns:
//   - FrameSource: the running source
func NewTickerSource(rate time.Duration) FrameSource {
	if rate <= 0 {
		rate = time.Second / 60
	}
	s := &tickerSource{
		ticker: time.NewTicker(rate),
		out:    make(chan Frame),
		quit:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *tickerSource) run() {
	defer s.ticker.Stop()
	for {
		select {
		case <-s.quit:
			return
		case t := <-s.ticker.C:
			select {
			case s.out <- Frame{At: t}:
			case <-s.quit:
				return
			}
		}
	}
}

func (s *tickerSource) Frames() <-chan Frame {
	return s.out
}

func (s *tickerSource) Stop() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
}

// ManualSource is a FrameSource stepped by hand, for tests and offline rendering.
type ManualSource struct {
	out      chan Frame
	quit     chan struct{}
	quitOnce sync.Once
}

var _ FrameSource = &ManualSource{}

// NewManualSource creates a ManualSource.
func NewManualSource() *ManualSource {
	return &ManualSource{
		out:  make(chan Frame),
		quit: make(chan struct{}),
	}
}

// Tick delivers one frame stamped at and blocks until the loop has consumed it, either by
// running its tick or by discarding it after a stop.
//
// Parameters:
//   - at: the frame timestamp
//
// Returns:
//   - bool: false when the source was stopped before the frame was delivered
func (s *ManualSource) Tick(at time.Time) bool {
	f := Frame{At: at, done: make(chan struct{})}
	select {
	case s.out <- f:
	case <-s.quit:
		return false
	}
	<-f.done
	return true
}

func (s *ManualSource) Frames() <-chan Frame {
	return s.out
}

func (s *ManualSource) Stop() {
	s.quitOnce.Do(func() {
		close(s.quit)
	})
}
