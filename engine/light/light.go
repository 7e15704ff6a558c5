package light

import "github.com/Carmen-Shannon/oxy-scene/common"

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every surface equally, regardless of position or direction.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a distant source with a direction but no position.
	LightTypeDirectional

	// LightTypePoint emits in all directions from the world position of its node and
	// attenuates with distance up to its range. A range of zero means no cutoff.
	LightTypePoint
)

func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType  LightType
	direction  [3]float32
	color      common.Color
	intensity  float32
	lightRange float32
	enabled    bool
}

// Light is the payload of a KindLight scene node. The light's position is the world
// position of the node that carries it.
type Light interface {
	// Type returns the kind of light source.
	Type() LightType

	// Direction returns the normalized direction of a directional light.
	Direction() [3]float32

	// Color returns the light colour.
	Color() common.Color

	// Intensity returns the scalar intensity multiplier.
	Intensity() float32

	// Range returns the attenuation cutoff of a point light, zero for none.
	Range() float32

	// Enabled returns whether the light contributes to rendering.
	Enabled() bool

	// SetDirection sets and normalizes the direction.
	//
	// Parameters:
	//   - x, y, z: direction components
	SetDirection(x, y, z float32)

	// SetColor sets the light colour.
	SetColor(c common.Color)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetRange sets the attenuation cutoff of a point light.
	SetRange(lightRange float32)

	// SetEnabled enables or disables the light.
	SetEnabled(enabled bool)

	// Contribution returns the colour this light adds at distance d from its node, colour
	// channels scaled by intensity and, for point lights, by a linear falloff to Range.
	//
	// Parameters:
	//   - d: distance from the light's node; ignored by ambient and directional lights
	//
	// Returns:
	//   - common.Color: the additive contribution, alpha fixed at 1
	Contribution(d float32) common.Color
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type. Defaults: white, intensity 1, no range cutoff,
// pointing down, enabled.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: [3]float32{0, -1, 0},
		color:     common.Color{R: 1, G: 1, B: 1, A: 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(c common.Color) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = lightRange
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) Contribution(d float32) common.Color {
	if !l.enabled {
		return common.Color{A: 1}
	}
	k := l.intensity
	if l.lightType == LightTypePoint && l.lightRange > 0 {
		k *= common.Clamp(1-d/l.lightRange, 0, 1)
	}
	return common.Color{R: l.color.R * k, G: l.color.G * k, B: l.color.B * k, A: 1}
}
