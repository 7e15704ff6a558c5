package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// testGLTFBinary packs positions, keyframe times and translation keys.
func testGLTFBinary(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	values := []float32{
		// positions
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		// times
		0, 1,
		// translations
		0, 1, 0, 0, 3, 0,
	}
	if err := binary.Write(&buf, binary.LittleEndian, values); err != nil {
		t.Fatalf("binary.Write: %v", err)
	}
	return buf.Bytes()
}

// testGLTFDocument returns a document with an armature, a mesh node, a matrix node and one
// translation clip. An empty uri leaves the buffer to the GLB binary chunk.
func testGLTFDocument(t *testing.T, uri string) []byte {
	t.Helper()
	buffer := map[string]any{"byteLength": 68}
	if uri != "" {
		buffer["uri"] = uri
	}
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0, 2}}},
		"nodes": []any{
			map[string]any{"name": "armature", "children": []int{1}},
			map[string]any{"name": "hips", "mesh": 0, "translation": []float32{0, 1, 0}},
			map[string]any{"matrix": []float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 5, 0, 0, 1}},
		},
		"meshes": []any{map[string]any{
			"name":       "body",
			"primitives": []any{map[string]any{"attributes": map[string]int{"POSITION": 0}, "material": 0}},
		}},
		"materials": []any{map[string]any{
			"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float32{1, 0, 0, 1}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5126, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 2, "componentType": 5126, "count": 2, "type": "VEC3"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 44, "byteLength": 24},
		},
		"buffers": []any{buffer},
		"animations": []any{map[string]any{
			"name":     "Walk Cycle",
			"channels": []any{map[string]any{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}}},
			"samplers": []any{map[string]any{"input": 1, "output": 2}},
		}},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	return data
}

func testGLTF(t *testing.T) []byte {
	t.Helper()
	return testGLTFDocument(t, "data:application/octet-stream;base64,"+base64.StdEncoding.EncodeToString(testGLTFBinary(t)))
}

func testGLB(t *testing.T) []byte {
	t.Helper()
	jsonChunk := testGLTFDocument(t, "")
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := testGLTFBinary(t)

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	buf.Write(jsonChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN})
	buf.Write(binChunk)
	return buf.Bytes()
}

func TestImportBytes(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"gltf", testGLTF(t)},
		{"glb", testGLB(t)},
	} {
		m, err := newGLTFImporter().ImportBytes("skeleton", tc.data, "")
		if err != nil {
			t.Fatalf("%s: ImportBytes: %v", tc.name, err)
		}
		root := m.Root()
		if have, want := root.Name(), "skeleton"; have != want {
			t.Fatalf("%s: root name\nhave %q\nwant %q", tc.name, have, want)
		}
		if have, want := len(root.Children()), 2; have != want {
			t.Fatalf("%s: root children\nhave %d\nwant %d", tc.name, have, want)
		}

		hips := root.Find("hips")
		if hips == nil || hips.Parent() == nil || hips.Parent().Name() != "armature" {
			t.Fatalf("%s: expected hips under armature", tc.name)
		}
		if hips.Kind() != node.KindMesh {
			t.Fatalf("%s: hips kind\nhave %v\nwant %v", tc.name, hips.Kind(), node.KindMesh)
		}
		mesh, ok := hips.Payload().(*scene.Mesh)
		if !ok || mesh.Len() != 3 {
			t.Fatalf("%s: expected a 3 vertex mesh payload, have %T", tc.name, hips.Payload())
		}
		if have, want := mesh.Color(), (common.Color{R: 1, A: 1}); have != want {
			t.Fatalf("%s: mesh colour\nhave %v\nwant %v", tc.name, have, want)
		}
		if have, want := hips.Position(), (mgl32.Vec3{0, 1, 0}); have != want {
			t.Fatalf("%s: hips position\nhave %v\nwant %v", tc.name, have, want)
		}

		scaled := root.Find("node_2")
		if scaled == nil {
			t.Fatalf("%s: expected the unnamed node as node_2", tc.name)
		}
		if have, want := scaled.Position(), (mgl32.Vec3{5, 0, 0}); !have.ApproxEqual(want) {
			t.Fatalf("%s: matrix position\nhave %v\nwant %v", tc.name, have, want)
		}
		if have, want := scaled.Scale(), (mgl32.Vec3{2, 2, 2}); !have.ApproxEqual(want) {
			t.Fatalf("%s: matrix scale\nhave %v\nwant %v", tc.name, have, want)
		}
		if have := scaled.Rotation(); !have.ApproxEqualThreshold(mgl32.QuatIdent(), 1e-5) {
			t.Fatalf("%s: matrix rotation\nhave %v\nwant identity", tc.name, have)
		}

		clips := m.Clips()
		if len(clips) != 1 || clips[0].Name != "Walk Cycle" || clips[0].Duration != 1 {
			t.Fatalf("%s: clips\nhave %+v\nwant one 1s Walk Cycle", tc.name, clips)
		}
		ch := clips[0].Channels
		if len(ch) != 1 || ch[0].Target != "hips" || len(ch[0].TranslationKeys) != 2 {
			t.Fatalf("%s: channels\nhave %+v\nwant one hips translation channel", tc.name, ch)
		}
		if have, want := ch[0].TranslationKeys[1].Value, (mgl32.Vec3{0, 3, 0}); have != want {
			t.Fatalf("%s: last key\nhave %v\nwant %v", tc.name, have, want)
		}
	}
}

func TestImportBytesErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
		want error
	}{
		{"version", []byte(`{"asset":{"version":"1.0"}}`), errInvalidGLTFVersion},
		{"glb version", append(binary.LittleEndian.AppendUint32(binary.LittleEndian.AppendUint32(nil, gltfGLBMagic), 1), 0, 0, 0, 0), errInvalidGLBVersion},
		{"short buffer", []byte(`{"asset":{"version":"2.0"},"buffers":[{"uri":"data:;base64,AAAA","byteLength":8}]}`), errBufferSizeMismatch},
	} {
		if _, err := newGLTFImporter().ImportBytes(tc.name, tc.data, ""); !errors.Is(err, tc.want) {
			t.Fatalf("ImportBytes(%s)\nhave %v\nwant %v", tc.name, err, tc.want)
		}
	}

	// accessor past the end of its buffer
	bad := []byte(`{"asset":{"version":"2.0"},
		"nodes":[{"mesh":0}],
		"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],
		"accessors":[{"bufferView":0,"componentType":5126,"count":4,"type":"VEC3"}],
		"bufferViews":[{"buffer":0,"byteLength":12}],
		"buffers":[{"uri":"data:;base64,AAAAAAAAAAAAAAAA","byteLength":12}]}`)
	if _, err := newGLTFImporter().ImportBytes("bad", bad, ""); !errors.Is(err, errAccessorOutOfRange) {
		t.Fatalf("ImportBytes(bad accessor)\nhave %v\nwant %v", err, errAccessorOutOfRange)
	}
}

func TestModelName(t *testing.T) {
	for _, tc := range []struct{ path, want string }{
		{"assets/skeleton.glb", "skeleton"},
		{"Fox.gltf", "Fox"},
		{"", "unnamed_model"},
	} {
		if have := gltfModelName(tc.path); have != tc.want {
			t.Fatalf("gltfModelName(%q)\nhave %q\nwant %q", tc.path, have, tc.want)
		}
	}
}
