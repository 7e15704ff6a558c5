package material

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Pipeline keys of the two point pipelines.
const (
	PipelineKeyAlpha    = "points_alpha"
	PipelineKeyAdditive = "points_additive"
)

// material is the implementation of the Material interface.
type material struct {
	name      string
	color     common.Color
	opacity   float32
	pointSize float32
	blend     particles.BlendMode
}

// Material is the resolved look of one drawable: a flat colour, an opacity, the world-space size of
// each point and the blend mode that selects the render pipeline. Materials are immutable and cheap
// to rebuild every frame from the payload they describe.
type Material interface {
	// Name retrieves the material identifier.
	Name() string

	// Color returns the colour with the opacity folded into alpha.
	Color() common.Color

	// Opacity returns the opacity in [0, 1].
	Opacity() float32

	// PointSize returns the world-space edge length of each drawn point.
	PointSize() float32

	// Blend returns the blend mode.
	Blend() particles.BlendMode

	// DepthWrite reports whether points write depth. Additive points do not, so overlapping glow
	// accumulates instead of occluding.
	DepthWrite() bool

	// PipelineKey retrieves the key identifying the render pipeline this material uses.
	PipelineKey() string

	// Uniform builds the per-draw uniform.
	//
	// Parameters:
	//   - view: the camera view matrix
	//   - projection: the camera projection matrix
	//   - model: the drawable's world matrix
	//   - fog: the scene fog, nil when disabled
	//
	// Returns:
	//   - GPUPointsUniform: the uniform ready to marshal
	Uniform(view, projection, model mgl32.Mat4, fog *scene.Fog) GPUPointsUniform
}

var _ Material = &material{}

// NewMaterial creates a white, opaque, alpha-blended material.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		color:     common.Color{R: 1, G: 1, B: 1, A: 1},
		opacity:   1,
		pointSize: 0.02,
		blend:     particles.BlendAlpha,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromVisual resolves the material of a particle system.
//
// Parameters:
//   - name: the material name
//   - v: the particle look
//
// Returns:
//   - Material: the material
func FromVisual(name string, v particles.Visual) Material {
	return NewMaterial(
		WithName(name),
		WithColor(v.Color),
		WithOpacity(v.Opacity),
		WithPointSize(v.Size),
		WithBlend(v.Blend),
	)
}

// FromMesh resolves the material of a mesh payload. Meshes always alpha blend.
func FromMesh(m *scene.Mesh) Material {
	return NewMaterial(
		WithName(m.Name()),
		WithColor(m.Color()),
		WithOpacity(m.Color().A),
		WithPointSize(m.PointSize()),
	)
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() common.Color {
	return m.color.WithAlpha(m.opacity)
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) PointSize() float32 {
	return m.pointSize
}

func (m *material) Blend() particles.BlendMode {
	return m.blend
}

func (m *material) DepthWrite() bool {
	return m.blend != particles.BlendAdditive
}

func (m *material) PipelineKey() string {
	if m.blend == particles.BlendAdditive {
		return PipelineKeyAdditive
	}
	return PipelineKeyAlpha
}

func (m *material) Uniform(view, projection, model mgl32.Mat4, fog *scene.Fog) GPUPointsUniform {
	u := GPUPointsUniform{
		View:       view,
		Projection: projection,
		Model:      model,
		Color:      m.Color().Array(),
		Params:     [4]float32{m.pointSize, 0, 0, 0},
	}
	if fog != nil {
		u.Params[1] = fog.Density
		u.Params[2] = 1
		u.FogColor = fog.Color.Array()
	}
	return u
}
