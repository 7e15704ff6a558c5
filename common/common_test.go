package common

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{1, 0, 0, 1}},
		{"0x00ff00", Color{0, 1, 0, 1}},
		{"0000ff", Color{0, 0, 1, 1}},
		{"#ffffff00", Color{1, 1, 1, 0}},
	}
	for _, c := range cases {
		have, err := ParseColor(c.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): unexpected error: %v", c.in, err)
		}
		if have != c.want {
			t.Fatalf("ParseColor(%q)\nhave %v\nwant %v", c.in, have, c.want)
		}
	}
	for _, bad := range []string{"", "#fff", "#gggggg", "12345"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q): expected error", bad)
		}
	}
}

func TestColorTextRoundTrip(t *testing.T) {
	in := struct {
		Fog Color `json:"fog"`
	}{Fog: ColorFromHex(0xff4500)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if string(data) != `{"fog":"#ff4500"}` {
		t.Fatalf("json.Marshal\nhave %s\nwant %s", data, `{"fog":"#ff4500"}`)
	}
	var out struct {
		Fog Color `json:"fog"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out.Fog.Hex() != "#ff4500" {
		t.Fatalf("Fog.Hex\nhave %s\nwant #ff4500", out.Fog.Hex())
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0},
		{math32.Pi, math32.Pi},
		{TwoPi + 1, 1},
		{-1, TwoPi - 1},
	}
	for _, c := range cases {
		if have := WrapAngle(c.in); math32.Abs(have-c.want) > 1e-4 {
			t.Fatalf("WrapAngle(%v)\nhave %v\nwant %v", c.in, have, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if have := Clamp(12, 1, 10); have != 10 {
		t.Fatalf("Clamp(12, 1, 10)\nhave %d\nwant 10", have)
	}
	if have := Clamp(float32(0.5), 1.5, 10); have != 1.5 {
		t.Fatalf("Clamp(0.5, 1.5, 10)\nhave %v\nwant 1.5", have)
	}
}

func TestComposeTRS(t *testing.T) {
	m := ComposeTRS(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	want := mgl32.Vec4{3, 4, 5, 1}
	if !p.ApproxEqual(want) {
		t.Fatalf("ComposeTRS * (1,1,1)\nhave %v\nwant %v", p, want)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(1000)
	proj := Perspective(mgl32.DegToRad(75), 16.0/9.0, near, far)
	for _, c := range []struct{ z, want float32 }{{-near, 0}, {-far, 1}} {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, c.z, 1})
		if d := clip[2] / clip[3]; math32.Abs(d-c.want) > 1e-4 {
			t.Fatalf("depth at z=%v\nhave %v\nwant %v", c.z, d, c.want)
		}
	}
}

func TestDecodeTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.Set(1, 2, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	tex, err := DecodeTexture(&buf)
	if err != nil {
		t.Fatalf("DecodeTexture: %v", err)
	}
	if tex.Width != 2 || tex.Height != 3 {
		t.Fatalf("DecodeTexture: size\nhave %dx%d\nwant 2x3", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 2*3*4 {
		t.Fatalf("DecodeTexture: len(Pixels)\nhave %d\nwant %d", len(tex.Pixels), 2*3*4)
	}
	if _, err := DecodeTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("DecodeTexture: expected error for garbage input")
	}
}

func TestTextureAt(t *testing.T) {
	tex := &TextureData{
		Width:  2,
		Height: 1,
		Pixels: []byte{255, 0, 0, 255, 0, 0, 255, 255},
	}
	cases := []struct {
		u, v float32
		want Color
	}{
		{0.1, 0.5, Color{1, 0, 0, 1}},
		{0.9, 0.5, Color{0, 0, 1, 1}},
		{1.1, 0.5, Color{1, 0, 0, 1}},
		{-0.1, 0.5, Color{0, 0, 1, 1}},
	}
	for _, c := range cases {
		if have := tex.At(c.u, c.v); have != c.want {
			t.Fatalf("At(%v, %v)\nhave %v\nwant %v", c.u, c.v, have, c.want)
		}
	}
	var empty *TextureData
	if have := empty.At(0, 0); have != (Color{}) {
		t.Fatalf("nil At\nhave %v\nwant zero", have)
	}
}

func TestFrustumContainsSphere(t *testing.T) {
	proj := Perspective(mgl32.DegToRad(75), 1, 0.1, 100)
	view := LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := ExtractFrustum(proj.Mul4(view))

	cases := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"origin", mgl32.Vec3{}, 1, true},
		{"behind camera", mgl32.Vec3{0, 0, 50}, 1, false},
		{"straddles near plane", mgl32.Vec3{0, 0, 5}, 1, true},
		{"beyond far plane", mgl32.Vec3{0, 0, -200}, 1, false},
		{"far to the left", mgl32.Vec3{-100, 0, 0}, 1, false},
		{"large sphere reaching in", mgl32.Vec3{-100, 0, 0}, 120, true},
	}
	for _, c := range cases {
		if have := f.ContainsSphere(c.center, c.radius); have != c.want {
			t.Fatalf("ContainsSphere: %s\nhave %v\nwant %v", c.name, have, c.want)
		}
	}
}
