package imageflow

import "github.com/imageflow/imageflow/internal/resample"

// ResampleFilter selects the kernel used by [ImageBuffer.Resize].
type ResampleFilter int

const (
	ResampleNearest ResampleFilter = ResampleFilter(resample.Nearest)
	ResampleBilinear ResampleFilter = ResampleFilter(resample.Bilinear)
	ResampleBoxArea  ResampleFilter = ResampleFilter(resample.BoxArea)
)

// imageBufferAdapter adapts an *ImageBuffer to resample.Image without
// copying pixel data.
type imageBufferAdapter struct {
	buf *ImageBuffer
}

func (a imageBufferAdapter) Width() int  { return a.buf.Width() }
func (a imageBufferAdapter) Height() int { return a.buf.Height() }
func (a imageBufferAdapter) At(x, y int) resample.Pixel {
	p := a.buf.GetPixel(x, y)
	return resample.Pixel{R: p.R, G: p.G, B: p.B, A: p.A}
}

// Resize returns a new ImageBuffer of size newW x newH, resampled from b
// using filter, per §4.6.
func (b *ImageBuffer) Resize(newW, newH int, filter ResampleFilter) (*ImageBuffer, error) {
	if newW <= 0 || newH <= 0 {
		return nil, ErrInvalidDimensions
	}
	out := resample.Resize(imageBufferAdapter{buf: b}, newW, newH, resample.Filter(filter))
	result, err := NewImageBuffer(newW, newH, PixelRGBA8{})
	if err != nil {
		return nil, err
	}
	for y := 0; y < newH; y++ {
		for x := 0; x < newW; x++ {
			p := out.At(x, y)
			result.SetPixel(x, y, PixelRGBA8{R: p.R, G: p.G, B: p.B, A: p.A})
		}
	}
	return result, nil
}
