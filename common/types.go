// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	_ "golang.org/x/image/webp"
)

// Color is a linear RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// ColorFromHex converts a 0xRRGGBB value into an opaque Color.
//
// Parameters:
//   - hex: the packed 24-bit colour
//
// Returns:
//   - Color: the opaque colour
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xFF) / 255,
		G: float32((hex>>8)&0xFF) / 255,
		B: float32(hex&0xFF) / 255,
		A: 1,
	}
}

// ParseColor parses "#rrggbb", "#rrggbbaa", "0xrrggbb" or "rrggbb".
//
// Parameters:
//   - s: the textual colour
//
// Returns:
//   - Color: the parsed colour
//   - error: error if s is not a hex colour
func ParseColor(s string) (Color, error) {
	h := strings.TrimSpace(s)
	h = strings.TrimPrefix(h, "#")
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if len(h) == 6 {
		return ColorFromHex(uint32(v)), nil
	}
	c := ColorFromHex(uint32(v >> 8))
	c.A = float32(v&0xFF) / 255
	return c, nil
}

// WithAlpha returns a copy of c with the alpha component replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Array returns the colour as an RGBA array, the layout GPU uniforms expect.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Hex returns the colour as "#rrggbb" (or "#rrggbbaa" when not opaque).
func (c Color) Hex() string {
	to8 := func(f float32) uint32 { return uint32(Clamp(f, 0, 1)*255 + 0.5) }
	rgb := to8(c.R)<<16 | to8(c.G)<<8 | to8(c.B)
	if c.A >= 1 {
		return fmt.Sprintf("#%06x", rgb)
	}
	return fmt.Sprintf("#%06x%02x", rgb, to8(c.A))
}

// MarshalText implements encoding.TextMarshaler so colours serialise as hex strings.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON and YAML configuration files.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TextureData holds decoded RGBA pixel data ready for GPU upload.
type TextureData struct {
	// Path is the source path the texture was decoded from, empty for in-memory sources.
	Path string
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the texture width in pixels.
	Width uint32
	// Height is the texture height in pixels.
	Height uint32
}

// DecodeTexture decodes a PNG, JPEG or WebP stream into RGBA pixels.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - *TextureData: the decoded texture
//   - error: error if decoding fails
func DecodeTexture(r io.Reader) (*TextureData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return &TextureData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// At samples the texture at normalized coordinates with nearest filtering and repeat wrapping.
// (0, 0) is the top-left texel.
//
// Parameters:
//   - u: horizontal coordinate
//   - v: vertical coordinate
//
// Returns:
//   - Color: the texel colour, transparent black for an empty texture
func (t *TextureData) At(u, v float32) Color {
	if t == nil || t.Width == 0 || t.Height == 0 || len(t.Pixels) < int(t.Width*t.Height*4) {
		return Color{}
	}
	wrap := func(f float32, n uint32) uint32 {
		f -= math32.Floor(f)
		return min(uint32(f*float32(n)), n-1)
	}
	x, y := wrap(u, t.Width), wrap(v, t.Height)
	i := (y*t.Width + x) * 4
	p := t.Pixels[i : i+4]
	return Color{R: float32(p[0]) / 255, G: float32(p[1]) / 255, B: float32(p[2]) / 255, A: float32(p[3]) / 255}
}

// LoadTexture opens and decodes a texture file from disk.
//
// Parameters:
//   - path: the texture file path
//
// Returns:
//   - *TextureData: the decoded texture with Path set
//   - error: error if the file cannot be opened or decoded
func LoadTexture(path string) (*TextureData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	tex, err := DecodeTexture(file)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	tex.Path = path
	return tex, nil
}

// Releaser is implemented by GPU-side copies of CPU data (vertex buffers, textures) that must be freed
// when their owner is disposed.
type Releaser interface {
	Release()
}

// ReleaserFunc adapts a plain function to the Releaser interface.
type ReleaserFunc func()

// Release calls f.
func (f ReleaserFunc) Release() {
	f()
}
