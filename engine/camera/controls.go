package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitControlsImpl is the implementation of OrbitControls.
// Azimuth and elevation are spherical coordinates of the camera around the target: azimuth 0
// faces +Z, elevation 0 is the horizontal plane.
type orbitControlsImpl struct {
	mu *sync.Mutex

	camera Camera
	target mgl32.Vec3

	azimuth, elevation, distance             float32
	goalAzimuth, goalElevation, goalDistance float32
	pendingPan                               mgl32.Vec2

	minDistance, maxDistance   float32
	minElevation, maxElevation float32
	enablePan                  bool
	dampingFactor              float32
	rotateSpeed                float32
	zoomSpeed                  float32
	panSpeed                   float32

	dragging     bool
	lastX, lastY float32
	disposed     bool
}

// OrbitControls drives a camera around a target point from pointer input. Input moves a goal
// orbit state; Update eases the current state toward it and repositions the camera. The
// controls reference the camera but never own it.
type OrbitControls interface {
	// Update eases the orbit toward its goal and writes the camera position and target.
	// Each call moves a fraction 1 - (1 - dampingFactor)^(delta*60) of the remaining distance,
	// which is exactly dampingFactor per tick at 60 Hz. A damping factor of zero or less snaps.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float32)

	// DragStart begins a rotate gesture at pointer position (x, y) in pixels.
	DragStart(x, y float32)

	// DragMove rotates the goal orbit by rotateSpeed radians per pixel moved since the last
	// drag event. Ignored outside a gesture.
	DragMove(x, y float32)

	// DragEnd ends the rotate gesture.
	DragEnd()

	// Wheel scales the goal distance by zoomSpeed^delta; positive deltas move away.
	Wheel(delta float32)

	// Pan queues a screen-space target translation in pixels, applied on the next Update.
	// Discarded when panning is disabled.
	Pan(dx, dy float32)

	// Camera returns the controlled camera, nil after Dispose.
	Camera() Camera

	// Target returns the orbit centre.
	Target() mgl32.Vec3

	// Azimuth returns the current horizontal angle in radians.
	Azimuth() float32

	// Elevation returns the current vertical angle in radians.
	Elevation() float32

	// Distance returns the current distance from the target.
	Distance() float32

	// GoalDistance returns the distance the orbit is easing toward.
	GoalDistance() float32

	// MinDistance returns the closest allowed distance.
	MinDistance() float32

	// MaxDistance returns the farthest allowed distance.
	MaxDistance() float32

	// EnablePan reports whether Pan has any effect.
	EnablePan() bool

	// SetEnablePan toggles panning. Disabling drops any queued pan.
	SetEnablePan(enabled bool)

	// DampingFactor returns the per-tick easing fraction at 60 Hz.
	DampingFactor() float32

	// Dispose drops the camera reference. Later calls are no-ops.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool
}

var _ OrbitControls = &orbitControlsImpl{}

// NewOrbitControls creates orbit controls for cam. The initial orbit is read from the camera's
// position relative to the target, with the distance clamped into range.
// Defaults: distance limits [0.1, 1000], pan enabled, damping 0.05, rotate speed 0.005 rad/px,
// zoom speed 1.1, pan speed 0.002.
//
// Parameters:
//   - cam: the camera to drive
//   - options: a variadic list of OrbitControlsOption functions
//
// Returns:
//   - OrbitControls: the controls
func NewOrbitControls(cam Camera, options ...OrbitControlsOption) OrbitControls {
	oc := &orbitControlsImpl{
		mu:            &sync.Mutex{},
		camera:        cam,
		minDistance:   0.1,
		maxDistance:   1000,
		minElevation:  -(math32.Pi/2 - 0.01),
		maxElevation:  math32.Pi/2 - 0.01,
		enablePan:     true,
		dampingFactor: 0.05,
		rotateSpeed:   0.005,
		zoomSpeed:     1.1,
		panSpeed:      0.002,
	}
	if cam != nil {
		oc.target = cam.Target()
	}
	for _, option := range options {
		option(oc)
	}
	if oc.minDistance > oc.maxDistance {
		oc.minDistance, oc.maxDistance = oc.maxDistance, oc.minDistance
	}

	if cam != nil {
		offset := cam.Position().Sub(oc.target)
		oc.distance = offset.Len()
		if oc.distance > 0 {
			oc.azimuth = math32.Atan2(offset[0], offset[2])
			oc.elevation = math32.Asin(common.Clamp(offset[1]/oc.distance, -1, 1))
		}
	}
	oc.distance = common.Clamp(oc.distance, oc.minDistance, oc.maxDistance)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	oc.goalAzimuth, oc.goalElevation, oc.goalDistance = oc.azimuth, oc.elevation, oc.distance
	return oc
}

func (oc *orbitControlsImpl) Update(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if oc.camera == nil {
		return
	}

	alpha := float32(1)
	if oc.dampingFactor > 0 {
		alpha = 0
		if delta > 0 {
			alpha = 1 - math32.Pow(1-min(oc.dampingFactor, 1), delta*60)
		}
	}
	oc.azimuth += (oc.goalAzimuth - oc.azimuth) * alpha
	oc.elevation += (oc.goalElevation - oc.elevation) * alpha
	oc.distance += (oc.goalDistance - oc.distance) * alpha
	oc.distance = common.Clamp(oc.distance, oc.minDistance, oc.maxDistance)

	if oc.pendingPan != (mgl32.Vec2{}) {
		right, up := oc.axesLocked()
		scale := oc.panSpeed * oc.distance
		oc.target = oc.target.
			Add(right.Mul(-oc.pendingPan[0] * scale)).
			Add(up.Mul(oc.pendingPan[1] * scale))
		oc.pendingPan = mgl32.Vec2{}
	}

	pos := oc.target.Add(oc.offsetLocked())
	oc.camera.SetTarget(oc.target[0], oc.target[1], oc.target[2])
	oc.camera.SetPosition(pos[0], pos[1], pos[2])
}

// offsetLocked returns the camera position relative to the target. Caller must hold the mutex.
func (oc *orbitControlsImpl) offsetLocked() mgl32.Vec3 {
	sinE, cosE := math32.Sincos(oc.elevation)
	sinA, cosA := math32.Sincos(oc.azimuth)
	return mgl32.Vec3{cosE * sinA, sinE, cosE * cosA}.Mul(oc.distance)
}

// axesLocked returns the camera's right and up axes, consistent with the LookAt matrix.
// Caller must hold the mutex.
func (oc *orbitControlsImpl) axesLocked() (right, up mgl32.Vec3) {
	sinE, cosE := math32.Sincos(oc.elevation)
	sinA, cosA := math32.Sincos(oc.azimuth)
	backward := mgl32.Vec3{cosE * sinA, sinE, cosE * cosA}
	right = mgl32.Vec3{cosA, 0, -sinA}
	up = backward.Cross(right)
	return right, up
}

func (oc *orbitControlsImpl) DragStart(x, y float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragging = true
	oc.lastX, oc.lastY = x, y
}

func (oc *orbitControlsImpl) DragMove(x, y float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.dragging || oc.camera == nil {
		return
	}
	dx, dy := x-oc.lastX, y-oc.lastY
	oc.lastX, oc.lastY = x, y

	oc.goalAzimuth -= dx * oc.rotateSpeed
	oc.goalElevation = common.Clamp(oc.goalElevation+dy*oc.rotateSpeed, oc.minElevation, oc.maxElevation)
}

func (oc *orbitControlsImpl) DragEnd() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragging = false
}

func (oc *orbitControlsImpl) Wheel(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if oc.camera == nil || delta == 0 {
		return
	}
	d := oc.goalDistance * math32.Pow(oc.zoomSpeed, delta)
	if math32.IsNaN(d) || math32.IsInf(d, 0) {
		return
	}
	oc.goalDistance = common.Clamp(d, oc.minDistance, oc.maxDistance)
}

func (oc *orbitControlsImpl) Pan(dx, dy float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enablePan || oc.camera == nil {
		return
	}
	oc.pendingPan = oc.pendingPan.Add(mgl32.Vec2{dx, dy})
}

func (oc *orbitControlsImpl) Camera() Camera {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.camera
}

func (oc *orbitControlsImpl) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitControlsImpl) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitControlsImpl) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitControlsImpl) Distance() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.distance
}

func (oc *orbitControlsImpl) GoalDistance() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.goalDistance
}

func (oc *orbitControlsImpl) MinDistance() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.minDistance
}

func (oc *orbitControlsImpl) MaxDistance() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.maxDistance
}

func (oc *orbitControlsImpl) EnablePan() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.enablePan
}

func (oc *orbitControlsImpl) SetEnablePan(enabled bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.enablePan = enabled
	if !enabled {
		oc.pendingPan = mgl32.Vec2{}
	}
}

func (oc *orbitControlsImpl) DampingFactor() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.dampingFactor
}

func (oc *orbitControlsImpl) Dispose() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.camera = nil
	oc.disposed = true
	oc.dragging = false
	oc.pendingPan = mgl32.Vec2{}
}

func (oc *orbitControlsImpl) Disposed() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.disposed
}
