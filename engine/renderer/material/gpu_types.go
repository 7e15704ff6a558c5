package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUPointsUniformSource is the canonical WGSL definition of the PointsUniform struct.
// Matches GPUPointsUniform layout exactly (240 bytes, std140 aligned).
//
//go:embed assets/points_uniform.wgsl
var GPUPointsUniformSource string

// GPUPointsUniform is the per-draw uniform of the points shader.
// Matches the WGSL PointsUniform struct layout exactly (see GPUPointsUniformSource).
type GPUPointsUniform struct {
	View       mgl32.Mat4 // offset 0
	Projection mgl32.Mat4 // offset 64
	Model      mgl32.Mat4 // offset 128
	Color      [4]float32 // offset 192: linear RGBA, opacity folded into alpha
	Params     [4]float32 // offset 208: point size, fog density, fog enabled, unused
	FogColor   [4]float32 // offset 224
}

// Size returns the size of the GPUPointsUniform struct in bytes.
func (g *GPUPointsUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 240-byte buffer ready for GPU upload.
func (g *GPUPointsUniform) Marshal() []byte {
	floats := make([]float32, 0, 60)
	floats = append(floats, g.View[:]...)
	floats = append(floats, g.Projection[:]...)
	floats = append(floats, g.Model[:]...)
	floats = append(floats, g.Color[:]...)
	floats = append(floats, g.Params[:]...)
	floats = append(floats, g.FogColor[:]...)

	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
