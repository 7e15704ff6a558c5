package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// gltfDefaultBaseColor is used for primitives without a material.
var gltfDefaultBaseColor = common.ColorFromHex(0xcccccc)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor reads the flat colour of glTF materials.
type gltfMaterialExtractor interface {
	// BaseColor returns the base colour factor of a material. A negative index yields the
	// default colour used for primitives without a material.
	//
	// Parameters:
	//   - materialIndex: the index of the material in the document, or -1
	//
	// Returns:
	//   - common.Color: the base colour
	//   - error: error if the index is out of range
	BaseColor(materialIndex int) (common.Color, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) BaseColor(materialIndex int) (common.Color, error) {
	if materialIndex < 0 {
		return gltfDefaultBaseColor, nil
	}
	doc := e.parser.Document()
	if doc == nil {
		return common.Color{}, fmt.Errorf("no document loaded")
	}
	if materialIndex >= len(doc.Materials) {
		return common.Color{}, fmt.Errorf("material index %d out of range", materialIndex)
	}

	pbr := doc.Materials[materialIndex].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return common.Color{R: 1, G: 1, B: 1, A: 1}, nil
	}
	f := pbr.BaseColorFactor
	return common.Color{R: f[0], G: f[1], B: f[2], A: f[3]}, nil
}
