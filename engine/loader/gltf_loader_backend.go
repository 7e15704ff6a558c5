package loader

// gltfLoaderBackend is a loaderBackend for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackend{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - loaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackend{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackend) Load(path string) (any, error) {
	return b.importer.Import(path)
}
