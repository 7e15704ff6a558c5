package loop

import (
	"log"
	"time"
)

// LoopBuilderOption is a functional option for configuring a Loop via New.
type LoopBuilderOption func(*loopImpl)

// WithMaxDelta caps the delta passed to a tick, so a stall (a suspended window, a debugger)
// does not produce one huge step. Zero or less disables the cap.
//
// Parameters:
//   - seconds: the largest delta
//
// Returns:
//   - LoopBuilderOption: a function that applies the cap to a loop
func WithMaxDelta(seconds float32) LoopBuilderOption {
	return func(l *loopImpl) {
		l.maxDelta = seconds
	}
}

// WithClock replaces the clock used to stamp the loop start.
func WithClock(clock func() time.Time) LoopBuilderOption {
	return func(l *loopImpl) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithLogger sets the logger tick panics are reported to. A nil logger is ignored.
func WithLogger(logger *log.Logger) LoopBuilderOption {
	return func(l *loopImpl) {
		if logger != nil {
			l.logger = logger
		}
	}
}
