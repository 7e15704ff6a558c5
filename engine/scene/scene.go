package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureSource provides decoded texture pixels. Texture returns nil while the pixels are not
// available yet (for example a loader handle still decoding), in which case nothing is drawn.
type TextureSource interface {
	Texture() *common.TextureData
}

// Fog is exponential-squared distance fog.
type Fog struct {
	// Color is the colour fragments fade toward.
	Color common.Color `json:"color" yaml:"color"`

	// Density controls how quickly fog thickens with distance.
	Density float32 `json:"density" yaml:"density"`
}

// Factor returns the fog amount in [0, 1] at distance d from the camera: 1 - exp(-(density*d)^2).
func (f Fog) Factor(d float32) float32 {
	x := f.Density * d
	return common.Clamp(1-math32.Exp(-x*x), 0, 1)
}

// WorldLight is a light payload together with the world position of its node.
type WorldLight struct {
	Light    light.Light
	Position mgl32.Vec3
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name              string
	root              node.Node
	background        common.Color
	backgroundTexture TextureSource
	fog               *Fog
	disposed          bool
}

// Scene is the root container of everything drawn in one lifecycle: an ordered list of top-level
// nodes, the background colour or texture, and optional fog. The scene owns its nodes; Dispose
// releases the whole graph.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Root returns the hidden group node every top-level node is attached to.
	Root() node.Node

	// Add attaches nodes as top-level children, detaching them from any previous parent.
	//
	// Parameters:
	//   - nodes: the nodes to add
	//
	// Returns:
	//   - error: the first graph error, nodes before it stay attached
	Add(nodes ...node.Node) error

	// Remove detaches a top-level node without disposing it.
	//
	// Parameters:
	//   - n: the node to remove
	//
	// Returns:
	//   - bool: true if n was a top-level node
	Remove(n node.Node) bool

	// Nodes returns the top-level nodes in insertion order.
	Nodes() []node.Node

	// ForEach visits every node of the scene breadth first. If fn returns false the walk stops.
	//
	// Parameters:
	//   - fn: the visitor
	ForEach(fn func(node.Node) bool)

	// Find returns the first node with the given name, or nil.
	Find(name string) node.Node

	// Lights returns every enabled light payload in the scene with its world position.
	Lights() []WorldLight

	// Background returns the clear colour.
	Background() common.Color

	// SetBackground sets the clear colour.
	SetBackground(c common.Color)

	// BackgroundTexture returns the background texture source, or nil.
	BackgroundTexture() TextureSource

	// SetBackgroundTexture sets a texture drawn behind the scene instead of the clear colour.
	SetBackgroundTexture(src TextureSource)

	// Fog returns a copy of the fog settings, or nil when fog is disabled.
	Fog() *Fog

	// SetFog enables fog with the given settings; nil disables it.
	SetFog(f *Fog)

	// Dispose disposes every node and payload of the scene. Later calls are no-ops.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool
}

var _ Scene = &scene{}

// NewScene creates an empty scene with a black background and no fog.
//
// Parameters:
//   - name: the scene's identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:         &sync.Mutex{},
		name:       name,
		root:       node.New(node.WithName(name)),
		background: common.Color{A: 1},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() node.Node {
	return s.root
}

func (s *scene) Add(nodes ...node.Node) error {
	for _, n := range nodes {
		if err := s.root.AddChild(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) Remove(n node.Node) bool {
	return s.root.RemoveChild(n)
}

func (s *scene) Nodes() []node.Node {
	return s.root.Children()
}

func (s *scene) ForEach(fn func(node.Node) bool) {
	s.root.ForEach(fn)
}

func (s *scene) Find(name string) node.Node {
	var found node.Node
	s.root.ForEach(func(n node.Node) bool {
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

func (s *scene) Lights() []WorldLight {
	var out []WorldLight
	s.root.ForEach(func(n node.Node) bool {
		if l, ok := n.Payload().(light.Light); ok && l.Enabled() {
			out = append(out, WorldLight{Light: l, Position: n.WorldMatrix().Col(3).Vec3()})
		}
		return true
	})
	return out
}

func (s *scene) Background() common.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background
}

func (s *scene) SetBackground(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = c
}

func (s *scene) BackgroundTexture() TextureSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backgroundTexture
}

func (s *scene) SetBackgroundTexture(src TextureSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgroundTexture = src
}

func (s *scene) Fog() *Fog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fog == nil {
		return nil
	}
	f := *s.fog
	return &f
}

func (s *scene) SetFog(f *Fog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == nil {
		s.fog = nil
		return
	}
	cp := *f
	s.fog = &cp
}

func (s *scene) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.backgroundTexture = nil
	s.mu.Unlock()

	s.root.Dispose()
}

func (s *scene) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
