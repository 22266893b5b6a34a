// Package bmp encodes and decodes the uncompressed 24-bit-per-pixel BMP
// variant (BITMAPFILEHEADER immediately followed by a 40-byte
// BITMAPINFOHEADER, BI_RGB, no color table) against the imageflow pixel
// model.
package bmp

import (
	"encoding/binary"
	"io"

	"github.com/imageflow/imageflow/internal/pool"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	magic         = 0x4D42 // "BM"
	biRGB         = 0
)

// FormatError reports that the input is not a valid BMP file.
type FormatError string

func (e FormatError) Error() string { return "bmp: invalid format: " + string(e) }

// UnsupportedError reports a structurally valid BMP this package does not
// decode (compressed, indexed, or non-24-bit).
type UnsupportedError string

func (e UnsupportedError) Error() string { return "bmp: unsupported feature: " + string(e) }

// Image is the minimal pixel source this package needs to encode, and the
// type Decode produces.
type Image struct {
	Width, Height int
	// Pix holds RGB triples in row-major, top-down order: Pix[3*(y*Width+x)+0..2].
	Pix []byte
}

// NewImage allocates a zeroed top-down RGB image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

func (im *Image) at(x, y int) (r, g, b uint8) {
	i := 3 * (y*im.Width + x)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

func (im *Image) set(x, y int, r, g, b uint8) {
	i := 3 * (y*im.Width + x)
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = r, g, b
}

func paddedRowSize(width int) int {
	return (width*3 + 3) &^ 3
}

// Encode writes im to w as an uncompressed 24-bit bottom-up BMP.
func Encode(w io.Writer, im *Image) error {
	if im.Width <= 0 || im.Height <= 0 {
		return FormatError("non-positive image dimensions")
	}
	rowSize := paddedRowSize(im.Width)
	imageSize := uint32(rowSize * im.Height)

	fileHeader := struct {
		FileType   uint16
		FileSize   uint32
		Reserved1  uint16
		Reserved2  uint16
		OffsetData uint32
	}{
		FileType:   magic,
		FileSize:   uint32(fileHeaderLen+infoHeaderLen) + imageSize,
		OffsetData: uint32(fileHeaderLen + infoHeaderLen),
	}
	infoHeader := struct {
		HeaderSize      uint32
		Width           int32
		Height          int32
		Planes          uint16
		BitCount        uint16
		Compression     uint32
		ImageSize       uint32
		XPixelsPerMeter int32
		YPixelsPerMeter int32
		ColorsUsed      uint32
		ColorsImportant uint32
	}{
		HeaderSize: infoHeaderLen,
		Width:      int32(im.Width),
		Height:     int32(im.Height),
		Planes:     1,
		BitCount:   24,
		ImageSize:  imageSize,
	}

	if err := binary.Write(w, binary.LittleEndian, fileHeader); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, infoHeader); err != nil {
		return err
	}

	row := pool.Get(rowSize)
	defer pool.Put(row)
	for i := range row {
		row[i] = 0
	}

	for y := im.Height - 1; y >= 0; y-- {
		for x := 0; x < im.Width; x++ {
			r, g, b := im.at(x, y)
			off := x * 3
			row[off], row[off+1], row[off+2] = b, g, r
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads an uncompressed 24-bit BMP, supporting both bottom-up
// (positive height) and top-down (negative height) row order.
func Decode(r io.Reader) (*Image, error) {
	var fileHeader [fileHeaderLen]byte
	if _, err := io.ReadFull(r, fileHeader[:]); err != nil {
		return nil, FormatError("truncated file header")
	}
	fileType := binary.LittleEndian.Uint16(fileHeader[0:2])
	offsetData := binary.LittleEndian.Uint32(fileHeader[10:14])
	if fileType != magic {
		return nil, FormatError("missing \"BM\" signature")
	}

	var infoHeader [infoHeaderLen]byte
	if _, err := io.ReadFull(r, infoHeader[:]); err != nil {
		return nil, FormatError("truncated info header")
	}
	headerSize := binary.LittleEndian.Uint32(infoHeader[0:4])
	width := int32(binary.LittleEndian.Uint32(infoHeader[4:8]))
	height := int32(binary.LittleEndian.Uint32(infoHeader[8:12]))
	bitCount := binary.LittleEndian.Uint16(infoHeader[14:16])
	compression := binary.LittleEndian.Uint32(infoHeader[16:20])

	if headerSize != infoHeaderLen {
		return nil, UnsupportedError("only the 40-byte BITMAPINFOHEADER is supported")
	}
	if bitCount != 24 || compression != biRGB {
		return nil, UnsupportedError("only uncompressed 24-bit BMP is supported")
	}
	if width <= 0 || height == 0 {
		return nil, FormatError("invalid dimensions")
	}

	topDown := height < 0
	h := int(height)
	if topDown {
		h = -h
	}
	w := int(width)

	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(int64(offsetData), io.SeekStart); err != nil {
			return nil, err
		}
	}

	out := NewImage(w, h)
	rowSize := paddedRowSize(w)
	row := pool.Get(rowSize)
	defer pool.Put(row)

	for fileY := 0; fileY < h; fileY++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, FormatError("truncated pixel data")
		}
		y := fileY
		if !topDown {
			y = h - 1 - fileY
		}
		for x := 0; x < w; x++ {
			off := x * 3
			out.set(x, y, row[off+2], row[off+1], row[off])
		}
	}
	return out, nil
}
