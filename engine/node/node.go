package node

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrCycle is returned when a node would become its own ancestor.
	ErrCycle = errors.New("node: child is the node itself or one of its ancestors")
	// ErrForeignNode is returned when a Node implementation from outside this package is added as a child.
	ErrForeignNode = errors.New("node: unsupported Node implementation")
	// ErrDisposed is returned when a disposed node takes part in a graph operation.
	ErrDisposed = errors.New("node: node has been disposed")
)

// graphMu guards every parent/children link. Structural edits are rare compared to
// per-frame transform writes, so a single lock keeps multi-node edits free of lock ordering.
var graphMu sync.RWMutex

// Kind identifies what a node represents.
type Kind int

const (
	// KindGroup is a pure grouping node without payload.
	KindGroup Kind = iota
	// KindMesh carries geometry/material data.
	KindMesh
	// KindPoints carries a point cloud (particle system).
	KindPoints
	// KindLight carries light parameters.
	KindLight
	// KindCamera carries camera parameters.
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindPoints:
		return "points"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Disposer is implemented by payloads that hold releasable resources.
type Disposer interface {
	Dispose()
}

type nodeImpl struct {
	mu *sync.Mutex

	name string
	kind Kind

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	visible  bool

	payload any

	// guarded by graphMu
	parent   *nodeImpl
	children []*nodeImpl
	disposed bool
}

// Node is an entry of the scene graph: a transform, an optional payload and the children it owns.
// A node has at most one parent; adding it to another parent detaches it from the previous one.
type Node interface {
	// Name returns the node's name. Animation channels target nodes by name.
	Name() string

	// SetName sets the node's name.
	SetName(name string)

	// Kind returns what the node represents.
	Kind() Kind

	// Position returns the translation relative to the parent.
	Position() mgl32.Vec3

	// SetPosition sets the translation relative to the parent.
	SetPosition(x, y, z float32)

	// Rotation returns the orientation relative to the parent.
	Rotation() mgl32.Quat

	// SetRotation sets the orientation relative to the parent.
	SetRotation(q mgl32.Quat)

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// SetScale sets the per-axis scale.
	SetScale(x, y, z float32)

	// Visible reports whether the node and its subtree should be drawn.
	Visible() bool

	// SetVisible toggles drawing of the node and its subtree.
	SetVisible(visible bool)

	// Payload returns the geometry, light, camera or point-cloud data attached to the node, or nil.
	Payload() any

	// SetPayload replaces the node's payload. The previous payload is not disposed.
	SetPayload(payload any)

	// Parent returns the node's parent, or nil for a root.
	Parent() Node

	// Children returns a snapshot of the node's immediate children in insertion order.
	Children() []Node

	// AddChild makes child an immediate descendant of this node, detaching it from its previous parent first.
	//
	// Parameters:
	//   - child: the node to adopt
	//
	// Returns:
	//   - error: ErrCycle, ErrForeignNode or ErrDisposed when the edit is not allowed
	AddChild(child Node) error

	// RemoveChild detaches child if it is an immediate descendant of this node.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: true if child was detached
	RemoveChild(child Node) bool

	// Detach removes the node from its parent, making it a root.
	Detach()

	// ForEach calls f for every descendant of the node, breadth first (ancestors before descendants).
	// The node itself is not visited. If f returns false the walk stops.
	//
	// Parameters:
	//   - f: the visitor
	ForEach(f func(Node) bool)

	// Find returns the first node in the subtree (including this node) with the given name, or nil.
	//
	// Parameters:
	//   - name: the name to match exactly
	//
	// Returns:
	//   - Node: the matching node or nil
	Find(name string) Node

	// LocalMatrix returns Translation * Rotation * Scale of this node.
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the product of all ancestor local matrices and this node's local matrix.
	WorldMatrix() mgl32.Mat4

	// Dispose detaches the node, disposes every node of its subtree and any payload implementing Disposer.
	// Each node and payload is disposed at most once; later calls are no-ops.
	Dispose()

	// Disposed reports whether Dispose has run on this node.
	Disposed() bool
}

var _ Node = &nodeImpl{}

// New creates a detached node. Defaults: KindGroup, identity transform, visible, no payload.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the newly created node
func New(options ...NodeBuilderOption) Node {
	n := &nodeImpl{
		mu:       &sync.Mutex{},
		kind:     KindGroup,
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
		visible:  true,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *nodeImpl) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

func (n *nodeImpl) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *nodeImpl) Kind() Kind {
	return n.kind
}

func (n *nodeImpl) Position() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *nodeImpl) SetPosition(x, y, z float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = mgl32.Vec3{x, y, z}
}

func (n *nodeImpl) Rotation() mgl32.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rotation
}

func (n *nodeImpl) SetRotation(q mgl32.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = q
}

func (n *nodeImpl) Scale() mgl32.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *nodeImpl) SetScale(x, y, z float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = mgl32.Vec3{x, y, z}
}

func (n *nodeImpl) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

func (n *nodeImpl) SetVisible(visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visible = visible
}

func (n *nodeImpl) Payload() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payload
}

func (n *nodeImpl) SetPayload(payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payload = payload
}

func (n *nodeImpl) Parent() Node {
	graphMu.RLock()
	defer graphMu.RUnlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *nodeImpl) Children() []Node {
	graphMu.RLock()
	defer graphMu.RUnlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *nodeImpl) AddChild(child Node) error {
	c, ok := child.(*nodeImpl)
	if !ok || c == nil {
		return ErrForeignNode
	}

	graphMu.Lock()
	defer graphMu.Unlock()

	if n.disposed || c.disposed {
		return ErrDisposed
	}
	for a := n; a != nil; a = a.parent {
		if a == c {
			return ErrCycle
		}
	}

	c.detachLocked()
	c.parent = n
	n.children = append(n.children, c)
	return nil
}

func (n *nodeImpl) RemoveChild(child Node) bool {
	c, ok := child.(*nodeImpl)
	if !ok || c == nil {
		return false
	}

	graphMu.Lock()
	defer graphMu.Unlock()

	if c.parent != n {
		return false
	}
	c.detachLocked()
	return true
}

func (n *nodeImpl) Detach() {
	graphMu.Lock()
	defer graphMu.Unlock()
	n.detachLocked()
}

// detachLocked unlinks n from its parent. Caller must hold graphMu for writing.
func (n *nodeImpl) detachLocked() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *nodeImpl) ForEach(f func(Node) bool) {
	for _, d := range n.descendants() {
		if !f(d) {
			return
		}
	}
}

// descendants snapshots the subtree below n in breadth-first order so visitors may edit the graph.
func (n *nodeImpl) descendants() []*nodeImpl {
	graphMu.RLock()
	defer graphMu.RUnlock()

	var out []*nodeImpl
	queue := []*nodeImpl{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, c := range cur.children {
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}

func (n *nodeImpl) Find(name string) Node {
	if n.Name() == name {
		return n
	}
	for _, d := range n.descendants() {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func (n *nodeImpl) LocalMatrix() mgl32.Mat4 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return common.ComposeTRS(n.position, n.rotation, n.scale)
}

func (n *nodeImpl) WorldMatrix() mgl32.Mat4 {
	graphMu.RLock()
	chain := []*nodeImpl{}
	for a := n; a != nil; a = a.parent {
		chain = append(chain, a)
	}
	graphMu.RUnlock()

	world := mgl32.Ident4()
	for i := len(chain) - 1; i >= 0; i-- {
		world = world.Mul4(chain[i].LocalMatrix())
	}
	return world
}

func (n *nodeImpl) Dispose() {
	graphMu.Lock()
	if n.disposed {
		graphMu.Unlock()
		return
	}
	n.detachLocked()

	var subtree []*nodeImpl
	queue := []*nodeImpl{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.disposed {
			continue
		}
		cur.disposed = true
		subtree = append(subtree, cur)
		queue = append(queue, cur.children...)
		for _, c := range cur.children {
			c.parent = nil
		}
		cur.children = nil
	}
	graphMu.Unlock()

	// payloads are released outside graphMu so a Disposer may inspect the graph
	for _, cur := range subtree {
		cur.mu.Lock()
		payload := cur.payload
		cur.payload = nil
		cur.mu.Unlock()
		if d, ok := payload.(Disposer); ok {
			d.Dispose()
		}
	}
}

func (n *nodeImpl) Disposed() bool {
	graphMu.RLock()
	defer graphMu.RUnlock()
	return n.disposed
}
