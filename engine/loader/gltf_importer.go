package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter orchestrates a full glTF/GLB import: it combines the parser and the extractors
// to produce a Model holding the node hierarchy, mesh payloads and name-addressed clips.
type gltfImporter interface {
	// Import loads a glTF/GLB file.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if import fails
	Import(path string) (model.Model, error)

	// ImportBytes imports an in-memory glTF JSON or GLB document.
	//
	// Parameters:
	//   - name: the model name, used for the root group
	//   - data: the document bytes
	//   - baseDir: directory external buffers resolve against, may be empty
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if import fails
	ImportBytes(name string, data []byte, baseDir string) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return imp.ImportBytes(gltfModelName(path), data, filepath.Dir(path))
}

func (imp *gltfImporterImpl) ImportBytes(name string, data []byte, baseDir string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.ParseBytes(data, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(parser, name)
}

// importFromParser builds the node hierarchy of the default scene and extracts its animations.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - name: the model name
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, name string) (model.Model, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshExtractor := newGLTFMeshExtractor(parser)
	animationExtractor := newGLTFAnimationExtractor(parser)

	nodeNames := make([]string, len(doc.Nodes))
	nodes := make([]node.Node, len(doc.Nodes))
	for i := range doc.Nodes {
		gn := &doc.Nodes[i]
		nodeNames[i] = gn.Name
		if nodeNames[i] == "" {
			nodeNames[i] = fmt.Sprintf("node_%d", i)
		}

		pos, rot, scale := gltfNodeTransform(gn)
		opts := []node.NodeBuilderOption{
			node.WithName(nodeNames[i]),
			node.WithPosition(pos[0], pos[1], pos[2]),
			node.WithRotation(rot),
			node.WithScale(scale[0], scale[1], scale[2]),
		}
		if gn.Mesh != nil {
			mesh, err := meshExtractor.ExtractMesh(*gn.Mesh)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nodeNames[i], err)
			}
			opts = append(opts, node.WithKind(node.KindMesh), node.WithPayload(mesh))
		}
		nodes[i] = node.New(opts...)
	}

	hasParent := make([]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		for _, c := range doc.Nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("node %q: child %d out of range", nodeNames[i], c)
			}
			if err := nodes[i].AddChild(nodes[c]); err != nil {
				return nil, fmt.Errorf("node %q: child %q: %w", nodeNames[i], nodeNames[c], err)
			}
			hasParent[c] = true
		}
	}

	root := node.New(node.WithName(name))
	for _, idx := range gltfRootNodes(doc, hasParent) {
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("scene root %d out of range", idx)
		}
		if err := root.AddChild(nodes[idx]); err != nil {
			return nil, fmt.Errorf("scene root %q: %w", nodeNames[idx], err)
		}
	}

	clips, err := animationExtractor.ExtractAllAnimations(nodeNames)
	if err != nil {
		root.Dispose()
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	return model.NewModel(
		model.WithName(name),
		model.WithRoot(root),
		model.WithClips(clips),
	), nil
}

// gltfRootNodes returns the roots of the default scene, or every parentless node when the
// document declares no scenes.
func gltfRootNodes(doc *gltfDocument, hasParent []bool) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}
	var roots []int
	for i, p := range hasParent {
		if !p {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeTransform returns the local translation, rotation and scale of a node, decomposing
// Matrix when present.
func gltfNodeTransform(gn *gltfNode) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if gn.Matrix != nil {
		m := mgl32.Mat4(*gn.Matrix)
		pos := m.Col(3).Vec3()
		scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
		rotMat := mgl32.Ident4()
		for c := range 3 {
			if scale[c] == 0 {
				return pos, mgl32.QuatIdent(), scale
			}
			rotMat.SetCol(c, m.Col(c).Mul(1/scale[c]))
		}
		return pos, mgl32.Mat4ToQuat(rotMat).Normalize(), scale
	}

	pos := mgl32.Vec3{}
	if gn.Translation != nil {
		pos = mgl32.Vec3(*gn.Translation)
	}
	rot := mgl32.QuatIdent()
	if gn.Rotation != nil {
		rot = gltfQuat(*gn.Rotation)
	}
	scale := mgl32.Vec3{1, 1, 1}
	if gn.Scale != nil {
		scale = mgl32.Vec3(*gn.Scale)
	}
	return pos, rot, scale
}

// gltfModelName derives a model name from a file path.
func gltfModelName(path string) string {
	base := filepath.Base(path)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." {
		return name
	}
	return "unnamed_model"
}
