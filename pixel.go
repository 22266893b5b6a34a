package imageflow

import "github.com/imageflow/imageflow/internal/effects"

// NewColor constructs a Color from three 8-bit channels. Color itself is
// declared in surface.go as an alias onto internal/draw's type.
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// PixelRGBA8 is a straight-alpha (non-premultiplied) 8-bit-per-channel RGBA
// pixel. It is an alias for internal/effects' pixel type so ImageBuffer
// satisfies effects.Buffer structurally, the same way Color aliases
// internal/draw's type for draw.Surface.
type PixelRGBA8 = effects.Pixel

// NewPixelRGBA8 constructs a PixelRGBA8 from four 8-bit channels.
func NewPixelRGBA8(r, g, b, a uint8) PixelRGBA8 {
	return PixelRGBA8{R: r, G: g, B: b, A: a}
}

// Opaque constructs a fully opaque PixelRGBA8 from a Color.
func Opaque(c Color) PixelRGBA8 {
	return PixelRGBA8{R: c.R, G: c.G, B: c.B, A: 255}
}

// PixelRGB discards a pixel's alpha channel, returning the underlying
// Color. A method can't hang off PixelRGBA8 itself since it's an alias
// for a type declared in internal/effects.
func PixelRGB(p PixelRGBA8) Color {
	return Color{R: p.R, G: p.G, B: p.B}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
