package imageflow

import (
	"fmt"

	"github.com/imageflow/imageflow/internal/draw"
)

// Color is an alias for draw.Color so that every concrete surface type in
// this package satisfies draw.Surface structurally without internal/draw
// needing to depend on this package.
type Color = draw.Color

// ErrInvalidDimensions is returned when a surface or buffer is constructed
// with non-positive width or height.
var ErrInvalidDimensions = fmt.Errorf("imageflow: width and height must be positive")

// RasterImage is a row-major, bounds-checked 2D store of [Color] (RGB, no
// alpha) pixels. It implements draw.Surface and is the type the rasterizer
// draws directly into when no destination alpha channel is needed.
type RasterImage struct {
	width, height int
	pixels         []Color
}

// NewRasterImage constructs a RasterImage filled with fill. Returns
// ErrInvalidDimensions if width or height is <= 0.
func NewRasterImage(width, height int, fill Color) (*RasterImage, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	px := make([]Color, width*height)
	for i := range px {
		px[i] = fill
	}
	return &RasterImage{width: width, height: height, pixels: px}, nil
}

func (r *RasterImage) Width() int  { return r.width }
func (r *RasterImage) Height() int { return r.height }

func (r *RasterImage) InBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// At returns the pixel at (x,y). Out-of-bounds access returns the zero
// Color rather than failing, matching draw.Surface's read contract used by
// the rasterizer's clamp-to-edge sampling helpers; callers that need the
// spec's "fails if out of bounds" semantics should check InBounds first.
func (r *RasterImage) At(x, y int) Color {
	if !r.InBounds(x, y) {
		return Color{}
	}
	return r.pixels[y*r.width+x]
}

// Set writes the pixel at (x,y), silently ignoring out-of-bounds writes.
func (r *RasterImage) Set(x, y int, c Color) {
	if !r.InBounds(x, y) {
		return
	}
	r.pixels[y*r.width+x] = c
}

// Fill overwrites every pixel with c.
func (r *RasterImage) Fill(c Color) {
	for i := range r.pixels {
		r.pixels[i] = c
	}
}

// ImageBuffer is a row-major, bounds-checked 2D store of [PixelRGBA8]
// pixels: the compositing medium for the whole document model.
type ImageBuffer struct {
	width, height int
	pixels         []PixelRGBA8
}

// NewImageBuffer constructs an ImageBuffer filled with fill. Returns
// ErrInvalidDimensions if width or height is <= 0.
func NewImageBuffer(width, height int, fill PixelRGBA8) (*ImageBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	px := make([]PixelRGBA8, width*height)
	for i := range px {
		px[i] = fill
	}
	return &ImageBuffer{width: width, height: height, pixels: px}, nil
}

func (b *ImageBuffer) Width() int  { return b.width }
func (b *ImageBuffer) Height() int { return b.height }

func (b *ImageBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// GetPixel returns the pixel at (x,y), or the zero pixel if out of bounds.
func (b *ImageBuffer) GetPixel(x, y int) PixelRGBA8 {
	if !b.InBounds(x, y) {
		return PixelRGBA8{}
	}
	return b.pixels[y*b.width+x]
}

// SetPixel writes the pixel at (x,y), silently ignoring out-of-bounds
// writes.
func (b *ImageBuffer) SetPixel(x, y int, p PixelRGBA8) {
	if !b.InBounds(x, y) {
		return
	}
	b.pixels[y*b.width+x] = p
}

// Fill overwrites every pixel with p.
func (b *ImageBuffer) Fill(p PixelRGBA8) {
	for i := range b.pixels {
		b.pixels[i] = p
	}
}

// At returns the pixel at (x,y), or the zero pixel if out of bounds. It
// exists alongside GetPixel so *ImageBuffer satisfies effects.Buffer.
func (b *ImageBuffer) At(x, y int) PixelRGBA8 { return b.GetPixel(x, y) }

// Set writes the pixel at (x,y), silently ignoring out-of-bounds writes. It
// exists alongside SetPixel so *ImageBuffer satisfies effects.Buffer.
func (b *ImageBuffer) Set(x, y int, p PixelRGBA8) { b.SetPixel(x, y, p) }

// Clone returns a deep copy of the buffer.
func (b *ImageBuffer) Clone() *ImageBuffer {
	out := &ImageBuffer{width: b.width, height: b.height, pixels: make([]PixelRGBA8, len(b.pixels))}
	copy(out.pixels, b.pixels)
	return out
}

// BufferView adapts an *ImageBuffer into a draw.Surface over RGB Color
// values, matching the teacher-repo-adjacent original's BufferImageView:
// reads discard alpha, writes apply a configurable alpha (either a fixed
// draw alpha, or the destination pixel's existing alpha when ForceAlpha is
// false).
type BufferView struct {
	Buffer     *ImageBuffer
	DrawAlpha  uint8
	ForceAlpha bool
}

// NewBufferView constructs a BufferView that always stamps DrawAlpha into
// written pixels' alpha channel.
func NewBufferView(buf *ImageBuffer, drawAlpha uint8) *BufferView {
	return &BufferView{Buffer: buf, DrawAlpha: drawAlpha, ForceAlpha: true}
}

func (v *BufferView) Width() int  { return v.Buffer.Width() }
func (v *BufferView) Height() int { return v.Buffer.Height() }

func (v *BufferView) InBounds(x, y int) bool { return v.Buffer.InBounds(x, y) }

func (v *BufferView) At(x, y int) Color {
	p := v.Buffer.GetPixel(x, y)
	return Color{R: p.R, G: p.G, B: p.B}
}

func (v *BufferView) Set(x, y int, c Color) {
	if !v.Buffer.InBounds(x, y) {
		return
	}
	alpha := v.DrawAlpha
	if !v.ForceAlpha {
		alpha = v.Buffer.GetPixel(x, y).A
	}
	v.Buffer.SetPixel(x, y, PixelRGBA8{R: c.R, G: c.G, B: c.B, A: alpha})
}
