package particles

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode controls how particle colours composite with the scene.
type BlendMode int

const (
	BlendAlpha    BlendMode = iota // standard alpha blend (dust, stars)
	BlendAdditive                  // additive blend (fire, embers, glow)
)

func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b BlendMode) MarshalText() ([]byte, error) {
	switch b {
	case BlendAlpha, BlendAdditive:
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("invalid blend mode %d", int(b))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting "alpha" and "additive".
func (b *BlendMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "alpha", "":
		*b = BlendAlpha
	case "additive":
		*b = BlendAdditive
	default:
		return fmt.Errorf("invalid blend mode %q", text)
	}
	return nil
}

// Visual holds the uniform look of every particle of a system.
type Visual struct {
	Color   common.Color
	Size    float32
	Blend   BlendMode
	Opacity float32
}

// system is the implementation of the System interface.
type system struct {
	mu *sync.Mutex

	positions []mgl32.Vec3
	count     int
	extent    float32
	visual    Visual

	axis          mgl32.Vec3
	rotation      float32
	rotationSpeed float32

	// construction-only settings
	seed     int64
	seeded   bool
	vertical *[2]float32
	gpu      common.Releaser
	disposed bool
}

// System owns a fixed-length buffer of particle positions. The buffer is filled once at
// construction and never resized; per frame only the aggregate rotation of the whole buffer
// changes, so the GPU copy is uploaded once and moved with a single model matrix.
type System interface {
	// Update advances the aggregate rotation by rotationSpeed*delta, kept in [0, 2π).
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float32)

	// Positions returns a copy of the particle positions in the system's local space, nil
	// once disposed.
	Positions() []mgl32.Vec3

	// Len returns the construction count until the system is disposed, then zero.
	Len() int

	// Extent returns the edge length of the cube the positions were drawn from.
	Extent() float32

	// Rotation returns the aggregate rotation angle in radians.
	Rotation() float32

	// RotationSpeed returns the rotation speed in radians per second.
	RotationSpeed() float32

	// Axis returns the unit rotation axis.
	Axis() mgl32.Vec3

	// Transform returns the model matrix of the aggregate rotation.
	Transform() mgl32.Mat4

	// Visual returns the particle look.
	Visual() Visual

	// AttachGPU registers the GPU-resident copy of the buffer, releasing any previous one.
	// A copy attached after Dispose is released immediately.
	//
	// Parameters:
	//   - r: the GPU copy
	AttachGPU(r common.Releaser)

	// GPU returns the attached GPU copy, or nil.
	GPU() common.Releaser

	// Dispose releases the buffer and its GPU copy. Later calls are no-ops.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool
}

var _ System = &system{}

// New creates a particle system with count positions drawn uniformly from
// [-extent/2, extent/2] on every axis. A count of zero or less yields an empty buffer.
// Defaults: rotation about +Y at zero speed, a time-seeded generator.
//
// Parameters:
//   - count: the number of particles
//   - extent: the edge length of the spawn cube
//   - visual: the particle look
//   - options: a variadic list of SystemBuilderOption functions
//
// Returns:
//   - System: the particle system
func New(count int, extent float32, visual Visual, options ...SystemBuilderOption) System {
	s := &system{
		mu:     &sync.Mutex{},
		count:  max(count, 0),
		extent: extent,
		visual: visual,
		axis:   mgl32.Vec3{0, 1, 0},
	}
	for _, option := range options {
		option(s)
	}
	if !s.seeded {
		s.seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(s.seed))
	half := extent / 2
	lo, hi := -half, half
	if s.vertical != nil {
		lo, hi = s.vertical[0], s.vertical[1]
	}
	s.positions = make([]mgl32.Vec3, s.count)
	for i := range s.positions {
		s.positions[i] = mgl32.Vec3{
			-half + rng.Float32()*extent,
			lo + rng.Float32()*(hi-lo),
			-half + rng.Float32()*extent,
		}
	}
	return s
}

func (s *system) Update(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.rotation = common.WrapAngle(s.rotation + s.rotationSpeed*delta)
}

func (s *system) Positions() []mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	return append([]mgl32.Vec3(nil), s.positions...)
}

func (s *system) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.positions)
}

func (s *system) Extent() float32 {
	return s.extent
}

func (s *system) Rotation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation
}

func (s *system) RotationSpeed() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotationSpeed
}

func (s *system) Axis() mgl32.Vec3 {
	return s.axis
}

func (s *system) Transform() mgl32.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mgl32.HomogRotate3D(s.rotation, s.axis)
}

func (s *system) Visual() Visual {
	return s.visual
}

func (s *system) AttachGPU(r common.Releaser) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		if r != nil {
			r.Release()
		}
		return
	}
	prev := s.gpu
	s.gpu = r
	s.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
}

func (s *system) GPU() common.Releaser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gpu
}

func (s *system) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.positions = nil
	gpu := s.gpu
	s.gpu = nil
	s.mu.Unlock()

	if gpu != nil {
		gpu.Release()
	}
}

func (s *system) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
