package loader

import "github.com/Carmen-Shannon/oxy-scene/common"

// loaderBackend decodes one asset format. Concrete implementations (textureLoaderBackend,
// gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes the asset at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - any: the decoded payload
	//   - error: error if loading fails
	Load(path string) (any, error)
}

// BackendFunc adapts a plain decode function to a loader backend, see WithBackend.
type BackendFunc func(path string) (any, error)

// Load calls f(path).
func (f BackendFunc) Load(path string) (any, error) {
	return f(path)
}

// textureLoaderBackend decodes PNG, JPEG and WebP images into CPU-side pixels.
type textureLoaderBackend struct{}

func (textureLoaderBackend) Load(path string) (any, error) {
	return common.LoadTexture(path)
}
