package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// Subsystem names an optional per-frame subsystem.
type Subsystem string

const (
	SubsystemControls  Subsystem = "controls"
	SubsystemParticles Subsystem = "particles"
	SubsystemAnimation Subsystem = "animation"
)

// AllSubsystems lists every subsystem in tick order.
var AllSubsystems = []Subsystem{SubsystemControls, SubsystemParticles, SubsystemAnimation}

// Config describes one scene lifecycle. Start from DefaultConfig: fields whose zero value is
// meaningful (camera height, pan, damping, rotation speeds, particle opacity) are not defaulted
// by Start.
type Config struct {
	// CameraDistance is the initial camera distance from the origin along +Z.
	CameraDistance float32 `json:"cameraDistance" yaml:"cameraDistance"`

	// CameraHeight is the initial camera Y.
	CameraHeight float32 `json:"cameraHeight" yaml:"cameraHeight"`

	// Fov is the vertical field of view in degrees.
	Fov  float32 `json:"fov" yaml:"fov"`
	Near float32 `json:"near" yaml:"near"`
	Far  float32 `json:"far" yaml:"far"`

	Background        common.Color `json:"background" yaml:"background"`
	BackgroundTexture string       `json:"backgroundTexture" yaml:"backgroundTexture"`
	Fog               *scene.Fog   `json:"fog,omitempty" yaml:"fog,omitempty"`

	MinDistance float32 `json:"minDistance" yaml:"minDistance"`
	MaxDistance float32 `json:"maxDistance" yaml:"maxDistance"`
	EnablePan   bool    `json:"enablePan" yaml:"enablePan"`

	// DampingFactor is the fraction of the remaining motion applied per 60 Hz frame. Zero or
	// negative disables damping.
	DampingFactor float32 `json:"dampingFactor" yaml:"dampingFactor"`

	// EnabledSubsystems selects the per-frame subsystems; nil enables all of them.
	EnabledSubsystems []Subsystem `json:"enabledSubsystems" yaml:"enabledSubsystems"`

	ParticleCount         int                 `json:"particleCount" yaml:"particleCount"`
	ParticleExtent        float32             `json:"particleExtent" yaml:"particleExtent"`
	ParticleHeight        *[2]float32         `json:"particleHeight,omitempty" yaml:"particleHeight,omitempty"`
	ParticleColor         common.Color        `json:"particleColor" yaml:"particleColor"`
	ParticleSize          float32             `json:"particleSize" yaml:"particleSize"`
	ParticleOpacity       float32             `json:"particleOpacity" yaml:"particleOpacity"` // zero hides the points
	ParticleBlend         particles.BlendMode `json:"particleBlend" yaml:"particleBlend"`
	ParticleRotationSpeed float32             `json:"particleRotationSpeed" yaml:"particleRotationSpeed"`

	// ParticleSeed makes particle placement deterministic when non-zero.
	ParticleSeed int64 `json:"particleSeed" yaml:"particleSeed"`

	// RotationSpeed spins the model node about +Y, in radians per second.
	RotationSpeed float32 `json:"rotationSpeed" yaml:"rotationSpeed"`

	ModelPath     string     `json:"modelPath" yaml:"modelPath"`
	ClipName      string     `json:"clipName" yaml:"clipName"`
	ModelPosition [3]float32 `json:"modelPosition" yaml:"modelPosition"`

	// MaxDelta clamps the per-frame delta in seconds.
	MaxDelta float32 `json:"maxDelta" yaml:"maxDelta"`

	Profiling bool `json:"profiling" yaml:"profiling"`

	// Compose adds content to the scene during Start. It cannot be set from a file.
	Compose Composer `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration of a bare orbitable scene.
func DefaultConfig() Config {
	return Config{
		CameraDistance:    5,
		Fov:               75,
		Near:              0.1,
		Far:               1000,
		Background:        common.Color{A: 1},
		MinDistance:       1.5,
		MaxDistance:       10,
		EnablePan:         true,
		DampingFactor:     0.05,
		EnabledSubsystems: slices.Clone(AllSubsystems),
		ParticleCount:     5000,
		ParticleExtent:    10,
		ParticleColor:     common.ColorFromHex(0x888888),
		ParticleSize:      0.05,
		ParticleOpacity:   1,
		ParticleBlend:     particles.BlendAlpha,
		RotationSpeed:     0.06,
		MaxDelta:          0.1,
	}
}

// LoadConfig reads a JSON (.json) or YAML (.yaml, .yml) file on top of DefaultConfig. Unknown
// keys are rejected.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error wrapping ErrInvalidConfig for unreadable, unknown or invalid content
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg := DefaultConfig()
	// a file listing subsystems replaces the default list instead of merging into it
	cfg.EnabledSubsystems = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	var out Config
	if err := copier.CopyWithOption(&out, &c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types, which cannot happen between two Configs
		panic(err)
	}
	// copier materialises a nil slice as an empty one, and nil means "all subsystems"
	if c.EnabledSubsystems == nil {
		out.EnabledSubsystems = nil
	}
	return out
}

// Validate checks value ranges and subsystem names.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig describing the first problem
func (c Config) Validate() error {
	for _, s := range c.EnabledSubsystems {
		if !slices.Contains(AllSubsystems, s) {
			return fmt.Errorf("%w: unknown subsystem %q", ErrInvalidConfig, s)
		}
	}
	switch {
	case c.Fov < 0 || c.Fov >= 180:
		return fmt.Errorf("%w: fov %v out of range", ErrInvalidConfig, c.Fov)
	case c.Near < 0 || c.Far < 0 || (c.Far > 0 && c.Near >= c.Far):
		return fmt.Errorf("%w: near %v, far %v", ErrInvalidConfig, c.Near, c.Far)
	case c.MinDistance < 0 || (c.MaxDistance > 0 && c.MinDistance > c.MaxDistance):
		return fmt.Errorf("%w: distance range [%v, %v]", ErrInvalidConfig, c.MinDistance, c.MaxDistance)
	case c.ParticleCount < 0:
		return fmt.Errorf("%w: particle count %d", ErrInvalidConfig, c.ParticleCount)
	case c.ParticleOpacity < 0 || c.ParticleOpacity > 1:
		return fmt.Errorf("%w: particle opacity %v", ErrInvalidConfig, c.ParticleOpacity)
	case c.ParticleHeight != nil && c.ParticleHeight[0] > c.ParticleHeight[1]:
		return fmt.Errorf("%w: particle height %v", ErrInvalidConfig, *c.ParticleHeight)
	case c.MaxDelta < 0:
		return fmt.Errorf("%w: max delta %v", ErrInvalidConfig, c.MaxDelta)
	}
	return nil
}

// Enabled reports whether subsystem s runs.
func (c Config) Enabled(s Subsystem) bool {
	return c.EnabledSubsystems == nil || slices.Contains(c.EnabledSubsystems, s)
}

// normalized returns a deep copy with defaults filled in for zero values that are never valid.
func (c Config) normalized() Config {
	out := c.Clone()
	def := DefaultConfig()
	out.CameraDistance = common.Coalesce(out.CameraDistance, def.CameraDistance)
	out.Fov = common.Coalesce(out.Fov, def.Fov)
	out.Near = common.Coalesce(out.Near, def.Near)
	out.Far = common.Coalesce(out.Far, def.Far)
	out.MinDistance = common.Coalesce(out.MinDistance, def.MinDistance)
	out.MaxDistance = common.Coalesce(out.MaxDistance, def.MaxDistance)
	out.DampingFactor = max(out.DampingFactor, 0)
	out.ParticleCount = common.Coalesce(out.ParticleCount, def.ParticleCount)
	out.ParticleExtent = common.Coalesce(out.ParticleExtent, def.ParticleExtent)
	out.ParticleSize = common.Coalesce(out.ParticleSize, def.ParticleSize)
	out.MaxDelta = common.Coalesce(out.MaxDelta, def.MaxDelta)
	if out.Background == (common.Color{}) {
		out.Background = def.Background
	}
	if out.ParticleColor == (common.Color{}) {
		out.ParticleColor = def.ParticleColor
	}
	return out
}
