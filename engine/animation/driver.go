package animation

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
)

// ErrClipNotFound is returned by Bind when no clip carries the requested name.
var ErrClipNotFound = errors.New("animation clip not found")

// driverImpl is the implementation of the Driver interface.
type driverImpl struct {
	mu     *sync.Mutex
	logger *log.Logger

	loop     bool
	speed    float32
	autoPlay bool

	clip    *Clip
	targets []node.Node // parallel to clip.Channels, nil when the channel's node is absent
	time    float32
	playing bool
	idle    bool
}

// Driver plays one animation clip on a node subtree. Channels are matched to nodes by name.
//
// A driver whose Bind failed is idle for the rest of its life: Update and Play are no-ops.
type Driver interface {
	// Bind selects the clip named name from clips and binds its channels to the nodes of target.
	// Playback restarts at time zero and begins immediately unless auto play was disabled.
	//
	// Parameters:
	//   - target: the subtree whose nodes are animated
	//   - clips: the clips available, typically those of a loaded model
	//   - name: the exact clip name
	//
	// Returns:
	//   - error: an error wrapping ErrClipNotFound if no clip matched; a single warning is logged
	Bind(target node.Node, clips []*Clip, name string) error

	// Update advances playback by delta seconds and writes the sampled transforms to the bound nodes.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float32)

	// Play resumes playback. Ignored by an idle driver.
	Play()

	// Pause halts playback, keeping the current time.
	Pause()

	// Playing reports whether the driver advances on Update.
	Playing() bool

	// Time returns the playback position in seconds.
	Time() float32

	// SetTime moves the playback position and applies the pose at that time.
	SetTime(t float32)

	// Speed returns the playback rate multiplier.
	Speed() float32

	// SetSpeed sets the playback rate multiplier. Negative values play backwards.
	SetSpeed(speed float32)

	// Idle reports whether the driver has given up after a failed Bind.
	Idle() bool

	// Clip returns the bound clip, or nil.
	Clip() *Clip
}

var _ Driver = &driverImpl{}

// NewDriver creates an unbound driver. Defaults: looping, speed 1, auto play, log.Default().
//
// Parameters:
//   - options: functional options to configure the driver
//
// Returns:
//   - Driver: the newly created driver
func NewDriver(options ...DriverBuilderOption) Driver {
	d := &driverImpl{
		mu:       &sync.Mutex{},
		logger:   log.Default(),
		loop:     true,
		speed:    1,
		autoPlay: true,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *driverImpl) Bind(target node.Node, clips []*Clip, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.idle {
		return fmt.Errorf("driver is idle: %w", ErrClipNotFound)
	}

	clip := FindClip(clips, name)
	if clip == nil || target == nil {
		d.idle = true
		d.playing = false
		d.clip = nil
		d.targets = nil
		d.logger.Printf("[Animation] clip %q not found among %d clips, animation disabled", name, len(clips))
		return fmt.Errorf("clip %q: %w", name, ErrClipNotFound)
	}

	d.clip = clip
	d.targets = make([]node.Node, len(clip.Channels))
	for i, ch := range clip.Channels {
		d.targets[i] = target.Find(ch.Target)
	}
	d.time = 0
	d.playing = d.autoPlay
	d.applyLocked()
	return nil
}

func (d *driverImpl) Update(delta float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.idle || d.clip == nil || !d.playing {
		return
	}

	d.time += delta * d.speed
	duration := d.clip.Duration
	switch {
	case duration <= 0:
		d.time = 0
	case d.loop:
		d.time = math32.Mod(d.time, duration)
		if d.time < 0 {
			d.time += duration
		}
	case d.time >= duration:
		d.time = duration
		d.playing = false
	case d.time <= 0:
		d.time = 0
		d.playing = false
	}

	d.applyLocked()
}

// applyLocked samples every channel at the current time and writes the results. Caller holds d.mu.
func (d *driverImpl) applyLocked() {
	for i := range d.clip.Channels {
		n := d.targets[i]
		if n == nil {
			continue
		}
		ch := &d.clip.Channels[i]
		if v, ok := sampleVector(ch.TranslationKeys, ch.TranslationInterpolation, d.time); ok {
			n.SetPosition(v[0], v[1], v[2])
		}
		if q, ok := sampleQuaternion(ch.RotationKeys, ch.RotationInterpolation, d.time); ok {
			n.SetRotation(q)
		}
		if v, ok := sampleVector(ch.ScaleKeys, ch.ScaleInterpolation, d.time); ok {
			n.SetScale(v[0], v[1], v[2])
		}
	}
}

func (d *driverImpl) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idle || d.clip == nil {
		return
	}
	d.playing = true
}

func (d *driverImpl) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
}

func (d *driverImpl) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}

func (d *driverImpl) Time() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.time
}

func (d *driverImpl) SetTime(t float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idle || d.clip == nil {
		return
	}
	d.time = max(0, min(t, d.clip.Duration))
	d.applyLocked()
}

func (d *driverImpl) Speed() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speed
}

func (d *driverImpl) SetSpeed(speed float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speed = speed
}

func (d *driverImpl) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}

func (d *driverImpl) Clip() *Clip {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clip
}
