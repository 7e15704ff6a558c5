package node

import "github.com/go-gl/mathgl/mgl32"

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(*nodeImpl)

// WithName sets the node's name.
//
// Parameters:
//   - name: the node name, used by animation channels and Find
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithName(name string) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.name = name
	}
}

// WithKind sets what the node represents.
//
// Parameters:
//   - kind: the node kind
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithKind(kind Kind) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.kind = kind
	}
}

// WithPosition sets the initial translation.
//
// Parameters:
//   - x, y, z: translation relative to the parent
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial orientation.
//
// Parameters:
//   - q: orientation relative to the parent
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.rotation = q
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - x, y, z: scale factors
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithScale(x, y, z float32) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.scale = mgl32.Vec3{x, y, z}
	}
}

// WithUniformScale sets the same scale on all three axes.
func WithUniformScale(s float32) NodeBuilderOption {
	return WithScale(s, s, s)
}

// WithPayload attaches geometry, light, camera or point-cloud data to the node.
//
// Parameters:
//   - payload: the data to attach; payloads implementing Disposer are released with the node
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithPayload(payload any) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.payload = payload
	}
}

// WithVisible sets the initial visibility.
func WithVisible(visible bool) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.visible = visible
	}
}
