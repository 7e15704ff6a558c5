package animation

import "sync"

type mixerImpl struct {
	mu      *sync.Mutex
	drivers []Driver
	tracks  []Track
}

// Mixer groups the clip drivers and procedural tracks of a scene so they advance together.
type Mixer interface {
	// AddDriver registers a clip driver.
	AddDriver(d Driver)

	// AddTrack registers a procedural track.
	AddTrack(t Track)

	// Update advances every driver and then every track by delta seconds, in registration order.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous update
	Update(delta float32)

	// Drivers returns a snapshot of the registered drivers.
	Drivers() []Driver

	// Tracks returns a snapshot of the registered tracks.
	Tracks() []Track
}

var _ Mixer = &mixerImpl{}

// NewMixer creates an empty mixer.
func NewMixer() Mixer {
	return &mixerImpl{mu: &sync.Mutex{}}
}

func (m *mixerImpl) AddDriver(d Driver) {
	if d == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = append(m.drivers, d)
}

func (m *mixerImpl) AddTrack(t Track) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, t)
}

func (m *mixerImpl) Update(delta float32) {
	drivers, tracks := m.Drivers(), m.Tracks()
	for _, d := range drivers {
		d.Update(delta)
	}
	for _, t := range tracks {
		t.Update(delta)
	}
}

func (m *mixerImpl) Drivers() []Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Driver(nil), m.drivers...)
}

func (m *mixerImpl) Tracks() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Track(nil), m.tracks...)
}
