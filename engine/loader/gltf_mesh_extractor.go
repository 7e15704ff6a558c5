package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser    gltfParser
	materials gltfMaterialExtractor
}

// gltfMeshExtractor converts glTF meshes into scene mesh payloads.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index. The POSITION data of every primitive is
	// concatenated into one payload coloured by the first primitive's material.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *scene.Mesh: the mesh payload
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (*scene.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, materials: newGLTFMaterialExtractor(parser)}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*scene.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	var positions []mgl32.Vec3
	materialIndex := -1

	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if primIdx == 0 && prim.Material != nil {
			materialIndex = *prim.Material
		}
		accessor, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		values, err := e.parser.ReadVec3Accessor(accessor)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: failed to read positions: %w", meshIndex, primIdx, err)
		}
		for _, v := range values {
			positions = append(positions, mgl32.Vec3(v))
		}
	}

	color, err := e.materials.BaseColor(materialIndex)
	if err != nil {
		return nil, fmt.Errorf("mesh %d: %w", meshIndex, err)
	}

	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	return scene.NewMesh(name, positions, color), nil
}
