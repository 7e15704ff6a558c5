package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the payload of a KindMesh node: vertex positions in the node's local space and a flat
// colour. The renderer draws the vertices as points; surface shading is not modelled.
type Mesh struct {
	mu *sync.Mutex

	name      string
	positions []mgl32.Vec3
	color     common.Color
	pointSize float32
	texture   TextureSource

	gpu      common.Releaser
	disposed bool
}

// NewMesh creates a mesh payload. The positions slice is copied.
//
// Parameters:
//   - name: the mesh name
//   - positions: vertex positions in local space
//   - color: the flat colour
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(name string, positions []mgl32.Vec3, color common.Color) *Mesh {
	return &Mesh{
		mu:        &sync.Mutex{},
		name:      name,
		positions: append([]mgl32.Vec3(nil), positions...),
		color:     color,
		pointSize: 0.02,
	}
}

// Name returns the mesh name.
func (m *Mesh) Name() string {
	return m.name
}

// Positions returns a copy of the vertex positions, nil once disposed.
func (m *Mesh) Positions() []mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mgl32.Vec3(nil), m.positions...)
}

// Len returns the vertex count.
func (m *Mesh) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.positions)
}

// Color returns the flat colour.
func (m *Mesh) Color() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

// SetColor sets the flat colour.
func (m *Mesh) SetColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = c
}

// PointSize returns the world-space size of each drawn vertex.
func (m *Mesh) PointSize() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointSize
}

// SetPointSize sets the world-space size of each drawn vertex.
func (m *Mesh) SetPointSize(size float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointSize = size
}

// Texture returns the surface texture source, or nil.
func (m *Mesh) Texture() TextureSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texture
}

// SetTexture sets the surface texture source.
func (m *Mesh) SetTexture(src TextureSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texture = src
}

// AttachGPU registers the GPU copy of the vertices. A previously attached copy is released.
// Attaching to a disposed mesh releases r immediately.
//
// Parameters:
//   - r: the GPU resource to release with the mesh
func (m *Mesh) AttachGPU(r common.Releaser) {
	m.mu.Lock()
	prev := m.gpu
	disposed := m.disposed
	if !disposed {
		m.gpu = r
	}
	m.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
	if disposed && r != nil {
		r.Release()
	}
}

// GPU returns the attached GPU copy, or nil.
func (m *Mesh) GPU() common.Releaser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gpu
}

// Dispose drops the vertices and releases the GPU copy. Later calls are no-ops.
func (m *Mesh) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	m.positions = nil
	gpu := m.gpu
	m.gpu = nil
	m.mu.Unlock()

	if gpu != nil {
		gpu.Release()
	}
}

// Disposed reports whether Dispose has run.
func (m *Mesh) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

// SphereVertices returns the vertices of a UV sphere with the given number of segments around
// and rings from pole to pole, poles included once each.
//
// Parameters:
//   - radius: the sphere radius
//   - widthSegments: segments around the Y axis (minimum 3)
//   - heightSegments: rings from pole to pole (minimum 2)
//
// Returns:
//   - []mgl32.Vec3: the vertex positions
func SphereVertices(radius float32, widthSegments, heightSegments int) []mgl32.Vec3 {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	out := make([]mgl32.Vec3, 0, widthSegments*(heightSegments-1)+2)
	out = append(out, mgl32.Vec3{0, radius, 0})
	for y := 1; y < heightSegments; y++ {
		theta := math32.Pi * float32(y) / float32(heightSegments)
		sinT, cosT := math32.Sincos(theta)
		for x := 0; x < widthSegments; x++ {
			phi := common.TwoPi * float32(x) / float32(widthSegments)
			sinP, cosP := math32.Sincos(phi)
			out = append(out, mgl32.Vec3{radius * sinT * cosP, radius * cosT, radius * sinT * sinP})
		}
	}
	return append(out, mgl32.Vec3{0, -radius, 0})
}

// BoxVertices returns a lattice of points on the surface of an axis-aligned cube centred on the
// origin, divisions+1 points per edge.
//
// Parameters:
//   - size: the edge length
//   - divisions: subdivisions per edge (minimum 1)
//
// Returns:
//   - []mgl32.Vec3: the vertex positions
func BoxVertices(size float32, divisions int) []mgl32.Vec3 {
	divisions = max(divisions, 1)
	half := size / 2
	step := size / float32(divisions)

	var out []mgl32.Vec3
	for i := 0; i <= divisions; i++ {
		for j := 0; j <= divisions; j++ {
			for k := 0; k <= divisions; k++ {
				// keep only points with at least one coordinate on a face
				if i != 0 && i != divisions && j != 0 && j != divisions && k != 0 && k != divisions {
					continue
				}
				out = append(out, mgl32.Vec3{
					-half + float32(i)*step,
					-half + float32(j)*step,
					-half + float32(k)*step,
				})
			}
		}
	}
	return out
}

// Colors returns one colour per vertex. When the mesh has a texture whose pixels are available,
// each vertex samples it with an equirectangular mapping of its direction from the mesh origin and
// textured is true; otherwise every vertex gets the flat colour.
//
// Returns:
//   - []common.Color: the vertex colours
//   - bool: whether the texture was sampled
func (m *Mesh) Colors() (colors []common.Color, textured bool) {
	m.mu.Lock()
	positions := m.positions
	flat := m.color
	src := m.texture
	m.mu.Unlock()

	var tex *common.TextureData
	if src != nil {
		tex = src.Texture()
	}

	colors = make([]common.Color, len(positions))
	for i, p := range positions {
		if tex == nil {
			colors[i] = flat
			continue
		}
		d := p
		if l := d.Len(); l > 0 {
			d = d.Mul(1 / l)
		}
		u := 0.5 + math32.Atan2(d[2], d[0])/common.TwoPi
		v := common.Clamp(0.5-math32.Asin(common.Clamp(d[1], -1, 1))/math32.Pi, 0, 0.999999)
		c := tex.At(u, v)
		c.A = flat.A
		colors[i] = c
	}
	return colors, tex != nil
}
