package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/engine/animation"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	mu       *sync.Mutex
	name     string
	root     node.Node
	clips    []*animation.Clip
	disposed bool
}

// Model defines the interface for an imported model asset.
// A Model holds the node hierarchy read from the model file together with the animation
// clips that address those nodes by name. It is produced by the Loader and handed to the
// scene through Instance, which detaches the hierarchy for placement in a scene graph.
type Model interface {
	// Name retrieves the model identifier, usually the file name without extension.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Root retrieves the group node that owns the imported hierarchy.
	// Returns nil once the model is disposed.
	//
	// Returns:
	//   - node.Node: the root group
	Root() node.Node

	// Clips retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*animation.Clip: a copy of the clip list
	Clips() []*animation.Clip

	// ClipNames returns the names of all animation clips in file order.
	//
	// Returns:
	//   - []string: the clip names
	ClipNames() []string

	// ClipIndex returns the index of a clip by exact name, or -1 if not found.
	//
	// Parameters:
	//   - name: the clip name to search for
	//
	// Returns:
	//   - int: the clip index, or -1 if not found
	ClipIndex(name string) int

	// VertexCount returns the number of mesh vertices across the whole hierarchy.
	VertexCount() int

	// BoundingRadius returns the largest distance of a mesh vertex from the model origin,
	// with every node transform applied.
	BoundingRadius() float32

	// Dispose disposes the hierarchy and its mesh payloads. Later calls are no-ops.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool
}

var _ Model = &model{}

// NewModel creates a new Model instance with the provided options.
// Without WithRoot an empty group named after the model is created.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{mu: &sync.Mutex{}}
	for _, opt := range options {
		opt(m)
	}
	if m.root == nil {
		m.root = node.New(node.WithName(m.name))
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Root() node.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return nil
	}
	return m.root
}

func (m *model) Clips() []*animation.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*animation.Clip(nil), m.clips...)
}

func (m *model) ClipNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.clips))
	for i, c := range m.clips {
		names[i] = c.Name
	}
	return names
}

func (m *model) ClipIndex(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.clips {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) VertexCount() int {
	var count int
	m.walkMeshes(func(_ node.Node, positions []mgl32.Vec3) {
		count += len(positions)
	})
	return count
}

func (m *model) BoundingRadius() float32 {
	root := m.Root()
	if root == nil {
		return 0
	}
	inv := root.WorldMatrix().Inv()
	var radius float32
	m.walkMeshes(func(n node.Node, positions []mgl32.Vec3) {
		local := inv.Mul4(n.WorldMatrix())
		for _, p := range positions {
			radius = max(radius, local.Mul4x1(p.Vec4(1)).Vec3().Len())
		}
	})
	return radius
}

// positioned is the part of a mesh payload the model reads.
type positioned interface {
	Positions() []mgl32.Vec3
}

func (m *model) walkMeshes(fn func(n node.Node, positions []mgl32.Vec3)) {
	root := m.Root()
	if root == nil {
		return
	}
	visit := func(n node.Node) bool {
		if p, ok := n.Payload().(positioned); ok {
			fn(n, p.Positions())
		}
		return true
	}
	visit(root)
	root.ForEach(visit)
}

func (m *model) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	root := m.root
	m.mu.Unlock()

	root.Dispose()
}

func (m *model) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}
