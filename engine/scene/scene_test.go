package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/node"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type countingReleaser struct{ n int }

func (r *countingReleaser) Release() { r.n++ }

type staticTexture struct{ tex *common.TextureData }

func (s staticTexture) Texture() *common.TextureData { return s.tex }

func TestNewScene(t *testing.T) {
	s := NewScene("globe")
	if s.Name() != "globe" || len(s.Nodes()) != 0 {
		t.Fatalf("NewScene\nhave %q with %d nodes\nwant globe with 0", s.Name(), len(s.Nodes()))
	}
	if have := s.Background(); have != (common.Color{A: 1}) {
		t.Fatalf("Background\nhave %v\nwant opaque black", have)
	}
	if s.Fog() != nil || s.BackgroundTexture() != nil {
		t.Fatal("NewScene: expected no fog and no background texture")
	}

	fire := common.ColorFromHex(0xff4500)
	tex := staticTexture{&common.TextureData{Width: 1, Height: 1, Pixels: []byte{1, 2, 3, 4}}}
	s = NewScene("fire", WithBackground(fire), WithFog(fire, 0.1), WithBackgroundTexture(tex))
	if s.Background() != fire {
		t.Fatalf("Background\nhave %v\nwant %v", s.Background(), fire)
	}
	if f := s.Fog(); f == nil || f.Density != 0.1 || f.Color != fire {
		t.Fatalf("Fog\nhave %v\nwant {%v 0.1}", f, fire)
	}
	if s.BackgroundTexture().Texture().Width != 1 {
		t.Fatal("BackgroundTexture: unexpected source")
	}

	s.Fog().Density = 5
	if s.Fog().Density != 0.1 {
		t.Fatal("Fog: returned value must be a copy")
	}
	s.SetFog(nil)
	if s.Fog() != nil {
		t.Fatal("SetFog(nil): expected fog disabled")
	}
}

func TestFogFactor(t *testing.T) {
	f := Fog{Density: 0.1}
	if have := f.Factor(0); have != 0 {
		t.Fatalf("Factor(0)\nhave %v\nwant 0", have)
	}
	want := 1 - math32.Exp(-1)
	if have := f.Factor(10); math32.Abs(have-want) > 1e-6 {
		t.Fatalf("Factor(10)\nhave %v\nwant %v", have, want)
	}
	if have := f.Factor(1000); math32.Abs(have-1) > 1e-6 {
		t.Fatalf("Factor(1000)\nhave %v\nwant 1", have)
	}
}

func TestAddRemove(t *testing.T) {
	s := NewScene("test")
	a := node.New(node.WithName("a"))
	b := node.New(node.WithName("b"))
	child := node.New(node.WithName("child"))
	_ = b.AddChild(child)

	if err := s.Add(a, b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(s.Nodes()) != 2 {
		t.Fatalf("Nodes\nhave %d\nwant 2", len(s.Nodes()))
	}
	if s.Find("child") != child || s.Find(s.Name()) != nil {
		t.Fatal("Find: expected descendants only, not the hidden root")
	}

	count := 0
	s.ForEach(func(node.Node) bool { count++; return true })
	if count != 3 {
		t.Fatalf("ForEach visits\nhave %d\nwant 3", count)
	}

	if !s.Remove(a) || s.Remove(child) {
		t.Fatal("Remove: expected only top-level nodes to be removable")
	}
	if a.Parent() != nil || a.Disposed() {
		t.Fatal("Remove: expected a detached and not disposed")
	}
}

func TestLights(t *testing.T) {
	s := NewScene("lit")
	group := node.New(node.WithPosition(1, 0, 0))
	point := node.New(node.WithKind(node.KindLight), node.WithPosition(0, 5, 0),
		node.WithPayload(light.NewLight(light.LightTypePoint)))
	off := node.New(node.WithKind(node.KindLight),
		node.WithPayload(light.NewLight(light.LightTypeAmbient, light.WithEnabled(false))))
	_ = group.AddChild(point)
	_ = s.Add(group, off)

	lights := s.Lights()
	if len(lights) != 1 {
		t.Fatalf("Lights\nhave %d\nwant 1", len(lights))
	}
	if want := (mgl32.Vec3{1, 5, 0}); !lights[0].Position.ApproxEqual(want) {
		t.Fatalf("Lights[0].Position\nhave %v\nwant %v", lights[0].Position, want)
	}
}

func TestDispose(t *testing.T) {
	s := NewScene("test")
	gpu := &countingReleaser{}
	mesh := NewMesh("sphere", SphereVertices(1, 8, 4), common.ColorFromHex(0xffffff))
	mesh.AttachGPU(gpu)
	n := node.New(node.WithKind(node.KindMesh), node.WithPayload(mesh))
	_ = s.Add(n)

	s.Dispose()
	s.Dispose()

	if !s.Disposed() || !n.Disposed() || !mesh.Disposed() {
		t.Fatal("Dispose: expected scene, node and mesh disposed")
	}
	if gpu.n != 1 {
		t.Fatalf("GPU releases\nhave %d\nwant 1", gpu.n)
	}
	if mesh.Len() != 0 {
		t.Fatalf("Len after Dispose\nhave %d\nwant 0", mesh.Len())
	}

	late := &countingReleaser{}
	mesh.AttachGPU(late)
	if late.n != 1 || mesh.GPU() != nil {
		t.Fatal("AttachGPU after Dispose: expected immediate release")
	}
}

func TestMeshReplaceGPU(t *testing.T) {
	var released int
	mesh := NewMesh("sphere", SphereVertices(1, 8, 4), common.ColorFromHex(0xffffff))
	mesh.AttachGPU(common.ReleaserFunc(func() { released++ }))
	mesh.AttachGPU(common.ReleaserFunc(func() { released += 10 }))
	if released != 1 {
		t.Fatalf("replacing the GPU copy\nhave release count %d\nwant 1", released)
	}

	mesh.Dispose()
	if released != 11 {
		t.Fatalf("Dispose\nhave release count %d\nwant 11", released)
	}
}

func TestGeometry(t *testing.T) {
	sphere := SphereVertices(2, 8, 4)
	if len(sphere) != 8*3+2 {
		t.Fatalf("SphereVertices count\nhave %d\nwant %d", len(sphere), 8*3+2)
	}
	for i, v := range sphere {
		if math32.Abs(v.Len()-2) > 1e-5 {
			t.Fatalf("SphereVertices[%d] radius\nhave %v\nwant 2", i, v.Len())
		}
	}

	box := BoxVertices(1, 2)
	// 3^3 lattice minus the single interior point
	if len(box) != 26 {
		t.Fatalf("BoxVertices count\nhave %d\nwant 26", len(box))
	}
	for _, v := range box {
		if max(math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])) != 0.5 {
			t.Fatalf("BoxVertices: %v is not on the surface", v)
		}
	}
}

func TestMeshColors(t *testing.T) {
	flat := common.ColorFromHex(0x808080)
	mesh := NewMesh("globe", []mgl32.Vec3{{0, 1, 0}, {0, -1, 0}}, flat)
	colors, textured := mesh.Colors()
	if textured || colors[0] != flat || colors[1] != flat {
		t.Fatalf("untextured Colors\nhave %v textured=%v\nwant flat", colors, textured)
	}

	// top row red, bottom row blue
	tex := &common.TextureData{Width: 1, Height: 2, Pixels: []byte{255, 0, 0, 255, 0, 0, 255, 255}}
	mesh.SetTexture(staticTexture{tex})
	colors, textured = mesh.Colors()
	if !textured {
		t.Fatal("Colors: expected textured")
	}
	if colors[0] != (common.Color{R: 1, A: 1}) || colors[1] != (common.Color{B: 1, A: 1}) {
		t.Fatalf("textured Colors\nhave %v\nwant [red blue]", colors)
	}

	mesh.SetTexture(staticTexture{nil})
	if _, textured = mesh.Colors(); textured {
		t.Fatal("Colors: pending texture must fall back to the flat colour")
	}
}
