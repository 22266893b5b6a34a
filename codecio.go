package imageflow

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/imageflow/imageflow/codec/bmp"
	"github.com/imageflow/imageflow/codec/gif"
	"github.com/imageflow/imageflow/codec/jpeg"
	"github.com/imageflow/imageflow/codec/png"
)

// RasterFormat identifies one of the four raster codecs this toolkit
// carries, selected by file extension through [FormatFromExtension] (as
// [LoadFile] does) or passed explicitly to [LoadImage] and [SaveImage].
type RasterFormat int

const (
	FormatBMP RasterFormat = iota
	FormatPNG
	FormatGIF
	FormatJPEG
)

// FormatFromExtension maps a file extension (with or without a leading
// dot, case-insensitive) to a RasterFormat.
func FormatFromExtension(ext string) (RasterFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "bmp":
		return FormatBMP, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return 0, fmt.Errorf("imageflow: unrecognized raster extension %q", ext)
	}
}

// LoadImage decodes an RGB raster of the given format from r into a new
// fully-opaque ImageBuffer.
func LoadImage(r io.Reader, format RasterFormat) (*ImageBuffer, error) {
	switch format {
	case FormatBMP:
		im, err := bmp.Decode(r)
		if err != nil {
			return nil, err
		}
		return bufferFromRGBTriples(im.Width, im.Height, im.Pix)
	case FormatPNG:
		im, err := png.Decode(r)
		if err != nil {
			return nil, err
		}
		return bufferFromRGBTriples(im.Width, im.Height, im.Pix)
	case FormatGIF:
		im, err := gif.Decode(r)
		if err != nil {
			return nil, err
		}
		buf, err := NewImageBuffer(im.Width, im.Height, PixelRGBA8{A: 255})
		if err != nil {
			return nil, err
		}
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				c := im.Pix[y*im.Width+x]
				buf.SetPixel(x, y, PixelRGBA8{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
		return buf, nil
	case FormatJPEG:
		im, err := jpeg.Decode(r)
		if err != nil {
			return nil, err
		}
		return bufferFromRGBTriples(im.Width, im.Height, im.Pix)
	default:
		return nil, fmt.Errorf("imageflow: unknown raster format %d", format)
	}
}

func bufferFromRGBTriples(width, height int, pix []byte) (*ImageBuffer, error) {
	buf, err := NewImageBuffer(width, height, PixelRGBA8{A: 255})
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := 3 * (y*width + x)
			buf.SetPixel(x, y, PixelRGBA8{R: pix[i], G: pix[i+1], B: pix[i+2], A: 255})
		}
	}
	return buf, nil
}

// SaveImage encodes b's RGB channels (alpha is discarded; the codecs are
// opaque-raster only) to w in the given format.
func SaveImage(w io.Writer, b *ImageBuffer, format RasterFormat) error {
	switch format {
	case FormatBMP:
		im := bmp.NewImage(b.Width(), b.Height())
		copyBufferIntoRGBTriples(b, im.Pix)
		return bmp.Encode(w, im)
	case FormatPNG:
		im := png.NewImage(b.Width(), b.Height())
		copyBufferIntoRGBTriples(b, im.Pix)
		return png.Encode(w, im)
	case FormatGIF:
		im := gif.NewImage(b.Width(), b.Height())
		for y := 0; y < b.Height(); y++ {
			for x := 0; x < b.Width(); x++ {
				p := b.GetPixel(x, y)
				im.Pix[y*b.Width()+x] = gif.Color{R: p.R, G: p.G, B: p.B}
			}
		}
		return gif.Encode(w, im)
	case FormatJPEG:
		im := jpeg.NewImage(b.Width(), b.Height())
		copyBufferIntoRGBTriples(b, im.Pix)
		return jpeg.Encode(w, im)
	default:
		return fmt.Errorf("imageflow: unknown raster format %d", format)
	}
}

func copyBufferIntoRGBTriples(b *ImageBuffer, pix []byte) {
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			p := b.GetPixel(x, y)
			i := 3 * (y*b.Width() + x)
			pix[i], pix[i+1], pix[i+2] = p.R, p.G, p.B
		}
	}
}

// LoadFile loads a raster image from path, selecting the codec by its
// extension.
func LoadFile(open func(string) (io.ReadCloser, error), path string) (*ImageBuffer, error) {
	format, err := FormatFromExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadImage(f, format)
}
