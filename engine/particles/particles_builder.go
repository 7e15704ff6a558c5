package particles

import "github.com/go-gl/mathgl/mgl32"

// SystemBuilderOption is a functional option for configuring a System via New.
type SystemBuilderOption func(*system)

// WithSeed makes the position generator deterministic.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - SystemBuilderOption: a function that applies the seed option to a system
func WithSeed(seed int64) SystemBuilderOption {
	return func(s *system) {
		s.seed = seed
		s.seeded = true
	}
}

// WithVerticalRange replaces the Y spawn range, for effects such as embers rising from the
// ground. A reversed range is swapped.
//
// Parameters:
//   - lo: the lowest Y
//   - hi: the highest Y
//
// Returns:
//   - SystemBuilderOption: a function that applies the vertical range to a system
func WithVerticalRange(lo, hi float32) SystemBuilderOption {
	return func(s *system) {
		if lo > hi {
			lo, hi = hi, lo
		}
		s.vertical = &[2]float32{lo, hi}
	}
}

// WithAxis sets the aggregate rotation axis. A zero axis is ignored.
func WithAxis(x, y, z float32) SystemBuilderOption {
	return func(s *system) {
		if axis := (mgl32.Vec3{x, y, z}); axis.Len() > 0 {
			s.axis = axis.Normalize()
		}
	}
}

// WithRotationSpeed sets the aggregate rotation speed in radians per second.
func WithRotationSpeed(speed float32) SystemBuilderOption {
	return func(s *system) {
		s.rotationSpeed = speed
	}
}
