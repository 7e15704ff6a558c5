package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControlsOption is a functional option for configuring OrbitControls.
type OrbitControlsOption func(*orbitControlsImpl)

// WithMinDistance sets the closest allowed distance from the target.
//
// Parameters:
//   - d: the minimum distance
//
// Returns:
//   - OrbitControlsOption: functional option to set the minimum distance
func WithMinDistance(d float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.minDistance = max(d, 0)
	}
}

// WithMaxDistance sets the farthest allowed distance from the target.
//
// Parameters:
//   - d: the maximum distance
//
// Returns:
//   - OrbitControlsOption: functional option to set the maximum distance
func WithMaxDistance(d float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.maxDistance = max(d, 0)
	}
}

// WithEnablePan toggles panning.
func WithEnablePan(enabled bool) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.enablePan = enabled
	}
}

// WithDampingFactor sets the fraction of the remaining orbit delta covered per tick at 60 Hz.
// Zero or less disables damping.
//
// Parameters:
//   - f: the damping factor
//
// Returns:
//   - OrbitControlsOption: functional option to set the damping factor
func WithDampingFactor(f float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.dampingFactor = f
	}
}

// WithRotateSpeed sets the drag rotation in radians per pixel.
func WithRotateSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.rotateSpeed = speed
	}
}

// WithZoomSpeed sets the wheel zoom base; each wheel unit scales the distance by this factor.
// Values of one or less are ignored.
func WithZoomSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		if speed > 1 {
			oc.zoomSpeed = speed
		}
	}
}

// WithPanSpeed sets the pan distance per pixel, relative to the orbit distance.
func WithPanSpeed(speed float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.panSpeed = speed
	}
}

// WithElevationLimits sets the vertical angle range in radians.
//
// Parameters:
//   - lo: the lowest elevation
//   - hi: the highest elevation
//
// Returns:
//   - OrbitControlsOption: functional option to set the elevation limits
func WithElevationLimits(lo, hi float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		if lo > hi {
			lo, hi = hi, lo
		}
		oc.minElevation, oc.maxElevation = lo, hi
	}
}

// WithOrbitTarget sets the orbit centre, overriding the camera's target.
//
// Parameters:
//   - x, y, z: the centre in world space
//
// Returns:
//   - OrbitControlsOption: functional option to set the target
func WithOrbitTarget(x, y, z float32) OrbitControlsOption {
	return func(oc *orbitControlsImpl) {
		oc.target = mgl32.Vec3{x, y, z}
	}
}
