package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/particles"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

func TestFromVisual(t *testing.T) {
	embers := FromVisual("embers", particles.Visual{
		Color:   common.ColorFromHex(0xff0000),
		Size:    0.5,
		Blend:   particles.BlendAdditive,
		Opacity: 0.8,
	})
	if have, want := embers.PipelineKey(), PipelineKeyAdditive; have != want {
		t.Fatalf("PipelineKey\nhave %q\nwant %q", have, want)
	}
	if embers.DepthWrite() {
		t.Fatal("DepthWrite: additive material writes depth")
	}
	if have, want := embers.Color(), (common.Color{R: 1, A: 0.8}); have != want {
		t.Fatalf("Color\nhave %v\nwant %v", have, want)
	}

	dust := FromVisual("dust", particles.Visual{Color: common.ColorFromHex(0x888888), Size: 0.05, Opacity: 1})
	if dust.PipelineKey() != PipelineKeyAlpha || !dust.DepthWrite() {
		t.Fatalf("alpha material\nhave key %q depth write %v", dust.PipelineKey(), dust.DepthWrite())
	}
}

func TestMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithOpacity(3), WithPointSize(-1))
	if m.Opacity() != 1 {
		t.Fatalf("Opacity clamp\nhave %v\nwant 1", m.Opacity())
	}
	if m.PointSize() != 0.02 {
		t.Fatalf("PointSize\nhave %v\nwant 0.02", m.PointSize())
	}
}

func TestUniformMarshal(t *testing.T) {
	m := NewMaterial(WithPointSize(0.5))
	fog := &scene.Fog{Color: common.ColorFromHex(0xff4500), Density: 0.1}
	u := m.Uniform(mgl32.Ident4(), mgl32.Ident4(), mgl32.Translate3D(1, 2, 3), fog)

	raw := u.Marshal()
	if len(raw) != u.Size() || len(raw) != 240 {
		t.Fatalf("Marshal length\nhave %d (Size %d)\nwant 240", len(raw), u.Size())
	}
	at := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	// model translation is column 3 of the third matrix
	if have := [3]float32{at(32 + 12), at(32 + 13), at(32 + 14)}; have != [3]float32{1, 2, 3} {
		t.Fatalf("model translation\nhave %v\nwant [1 2 3]", have)
	}
	if have := [3]float32{at(52), at(53), at(54)}; have != [3]float32{0.5, 0.1, 1} {
		t.Fatalf("params\nhave %v\nwant [0.5 0.1 1]", have)
	}

	noFog := m.Uniform(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4(), nil)
	if noFog.Params[2] != 0 {
		t.Fatalf("fog flag without fog\nhave %v\nwant 0", noFog.Params[2])
	}
}
