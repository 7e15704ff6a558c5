package animation

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Track is a procedural per-frame transform animation bound to a single node.
// Tracks are scaled by elapsed time, so their motion is independent of the frame rate.
type Track interface {
	// Update advances the track by delta seconds and writes the node transform.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float32)

	// Node returns the animated node.
	Node() node.Node

	// Angle returns the accumulated angle in radians, in [0, 2π).
	Angle() float32
}

type spinTrack struct {
	mu    *sync.Mutex
	node  node.Node
	axis  mgl32.Vec3
	speed float32
	angle float32
}

var _ Track = &spinTrack{}

// NewSpin creates a track rotating node about axis at speed radians per second.
// The rotation is applied on top of whatever orientation the node already has.
//
// Parameters:
//   - n: the node to rotate
//   - axis: the rotation axis in the node's local space; a zero axis defaults to +Y
//   - speed: angular speed in radians per second
//
// Returns:
//   - Track: the spin track
func NewSpin(n node.Node, axis mgl32.Vec3, speed float32) Track {
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return &spinTrack{
		mu:    &sync.Mutex{},
		node:  n,
		axis:  axis.Normalize(),
		speed: speed,
	}
}

func (s *spinTrack) Update(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	step := s.speed * delta
	s.angle = common.WrapAngle(s.angle + step)
	if s.node == nil || step == 0 {
		return
	}
	q := s.node.Rotation().Mul(mgl32.QuatRotate(step, s.axis)).Normalize()
	s.node.SetRotation(q)
}

func (s *spinTrack) Node() node.Node {
	return s.node
}

func (s *spinTrack) Angle() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

type orbitTrack struct {
	mu     *sync.Mutex
	node   node.Node
	radius float32
	speed  float32
	phase  float32
	t      float32
}

var _ Track = &orbitTrack{}

// NewOrbit creates a track placing node on a circle in the XZ plane of its parent,
// at angle phase + speed*t where t is the accumulated time. The node's Y coordinate is kept.
//
// Parameters:
//   - n: the node to move
//   - radius: circle radius
//   - speed: angular speed in radians per second
//   - phase: starting angle in radians
//
// Returns:
//   - Track: the orbit track
func NewOrbit(n node.Node, radius, speed, phase float32) Track {
	o := &orbitTrack{
		mu:     &sync.Mutex{},
		node:   n,
		radius: radius,
		speed:  speed,
		phase:  phase,
	}
	o.apply()
	return o
}

func (o *orbitTrack) Update(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.t += delta
	o.apply()
}

func (o *orbitTrack) apply() {
	if o.node == nil {
		return
	}
	sin, cos := math32.Sincos(o.phase + o.speed*o.t)
	y := o.node.Position()[1]
	o.node.SetPosition(o.radius*cos, y, o.radius*sin)
}

func (o *orbitTrack) Node() node.Node {
	return o.node
}

func (o *orbitTrack) Angle() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return common.WrapAngle(o.phase + o.speed*o.t)
}
