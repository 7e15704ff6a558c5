package animation

import "log"

// DriverBuilderOption is a functional option for configuring a Driver.
type DriverBuilderOption func(*driverImpl)

// WithLogger sets the logger that receives the driver's warnings.
//
// Parameters:
//   - logger: the logger to use; nil keeps the default
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithLogger(logger *log.Logger) DriverBuilderOption {
	return func(d *driverImpl) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithLoop sets whether playback wraps around at the end of the clip.
// A non-looping driver stops at the clip boundary.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithLoop(loop bool) DriverBuilderOption {
	return func(d *driverImpl) {
		d.loop = loop
	}
}

// WithSpeed sets the playback rate multiplier.
//
// Parameters:
//   - speed: the rate; 1 is real time
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithSpeed(speed float32) DriverBuilderOption {
	return func(d *driverImpl) {
		d.speed = speed
	}
}

// WithAutoPlay sets whether a successful Bind starts playback.
func WithAutoPlay(autoPlay bool) DriverBuilderOption {
	return func(d *driverImpl) {
		d.autoPlay = autoPlay
	}
}
