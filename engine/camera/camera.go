package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	// projection is rebuilt on read when dirty
	dirty      bool
	projection mgl32.Mat4
}

// Camera defines a perspective camera looking from Position toward Target.
// The projection matrix depends on fov, aspect, near and far; setters only mark it dirty and the
// next read rebuilds it, so it is always consistent before a render reads it.
type Camera interface {
	// Position returns the eye position in world space.
	Position() mgl32.Vec3

	// SetPosition moves the eye.
	SetPosition(x, y, z float32)

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// SetTarget sets the point the camera looks at.
	SetTarget(x, y, z float32)

	// Up returns the up vector.
	Up() mgl32.Vec3

	// SetUp sets the up vector.
	SetUp(x, y, z float32)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view in radians and marks the projection dirty.
	SetFov(fov float32)

	// Aspect returns the viewport aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio and marks the projection dirty. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Near returns the near plane distance.
	Near() float32

	// SetNear sets the near plane distance and marks the projection dirty.
	SetNear(near float32)

	// Far returns the far plane distance.
	Far() float32

	// SetFar sets the far plane distance and marks the projection dirty.
	SetFar(far float32)

	// ProjectionDirty reports whether the projection will be rebuilt on the next read.
	ProjectionDirty() bool

	// ProjectionMatrix returns the projection matrix, rebuilding it first when dirty.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (column-major, depth range [0, 1])
	ProjectionMatrix() mgl32.Mat4

	// ViewMatrix returns the world-to-view matrix.
	ViewMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the world-space view frustum.
	Frustum() common.Frustum
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera instance with the provided options.
// Defaults: position (0, 0, 5) looking at the origin, fov 75 degrees, aspect 1, near 0.1, far 1000.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions to configure the Camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 5},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      mgl32.DegToRad(75),
		aspect:   1,
		near:     0.1,
		far:      1000,
		dirty:    true,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = mgl32.Vec3{x, y, z}
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = mgl32.Vec3{x, y, z}
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.dirty = true
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsInf(aspect, 0) || math32.IsNaN(aspect) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.dirty = true
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.dirty = true
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.dirty = true
}

func (c *cameraImpl) ProjectionDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionLocked()
}

// projectionLocked rebuilds the projection when dirty. Caller must hold the mutex.
func (c *cameraImpl) projectionLocked() mgl32.Mat4 {
	if c.dirty {
		c.projection = common.Perspective(c.fov, c.aspect, c.near, c.far)
		c.dirty = false
	}
	return c.projection
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.LookAt(c.position, c.target, c.up)
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionLocked().Mul4(common.LookAt(c.position, c.target, c.up))
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustum(c.ViewProjectionMatrix())
}
