// Package gif implements single-frame GIF87a/GIF89a encode/decode: a
// global color table, LZW-compressed index stream, and optional
// interlacing on read.
package gif

import (
	"encoding/binary"
	"io"

	"github.com/imageflow/imageflow/internal/bitio"
)

// FormatError reports malformed GIF structure.
type FormatError string

func (e FormatError) Error() string { return "gif: invalid format: " + string(e) }

// UnsupportedError reports a structurally valid GIF feature this package
// does not implement.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "gif: unsupported feature: " + string(e) }

// Color is an RGB palette entry.
type Color struct {
	R, G, B uint8
}

// Image is the minimal pixel source/sink this package needs.
type Image struct {
	Width, Height int
	Pix           []Color
}

// NewImage allocates a zeroed image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]Color, width*height)}
}

func (im *Image) at(x, y int) Color      { return im.Pix[y*im.Width+x] }
func (im *Image) set(x, y int, c Color)  { im.Pix[y*im.Width+x] = c }

func ceilLog2(n int) int {
	bits := 0
	v := 1
	for v < n {
		v <<= 1
		bits++
	}
	return bits
}

// Encode writes im as a single-frame GIF89a with an adaptive global color
// table. Returns an error if the image uses more than 256 distinct colors.
func Encode(w io.Writer, im *Image) error {
	if im.Width <= 0 || im.Height <= 0 {
		return FormatError("non-positive image dimensions")
	}

	colorToIndex := make(map[Color]uint8)
	palette := make([]Color, 0, 256)
	indices := make([]byte, len(im.Pix))
	for i, c := range im.Pix {
		if idx, ok := colorToIndex[c]; ok {
			indices[i] = idx
			continue
		}
		if len(palette) >= 256 {
			return FormatError("more than 256 distinct colors")
		}
		idx := uint8(len(palette))
		palette = append(palette, c)
		colorToIndex[c] = idx
		indices[i] = idx
	}

	colorCount := len(palette)
	tableBits := ceilLog2(maxInt(2, colorCount))
	if tableBits < 1 {
		tableBits = 1
	}
	tableSize := 1 << tableBits
	minCodeSize := maxInt(2, tableBits)

	var out []byte
	out = append(out, 'G', 'I', 'F', '8', '9', 'a')
	out = appendU16LE(out, uint16(im.Width))
	out = appendU16LE(out, uint16(im.Height))
	packed := byte(0x80 | (7 << 4) | (tableBits - 1))
	out = append(out, packed, 0x00, 0x00)

	for i := 0; i < tableSize; i++ {
		if i < colorCount {
			out = append(out, palette[i].R, palette[i].G, palette[i].B)
		} else {
			out = append(out, 0, 0, 0)
		}
	}

	out = append(out, 0x2C)
	out = appendU16LE(out, 0)
	out = appendU16LE(out, 0)
	out = appendU16LE(out, uint16(im.Width))
	out = appendU16LE(out, uint16(im.Height))
	out = append(out, 0x00)

	out = append(out, byte(minCodeSize))
	compressed := lzwCompress(indices, minCodeSize)
	out = appendSubBlocks(out, compressed)

	out = append(out, 0x3B)

	_, err := w.Write(out)
	return err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func appendU16LE(b []byte, v uint16) []byte {
	return append(b, byte(v), byte(v>>8))
}

func appendSubBlocks(out []byte, data []byte) []byte {
	pos := 0
	for pos < len(data) {
		n := len(data) - pos
		if n > 255 {
			n = 255
		}
		out = append(out, byte(n))
		out = append(out, data[pos:pos+n]...)
		pos += n
	}
	return append(out, 0x00)
}

func lzwCompress(indices []byte, minCodeSize int) []byte {
	clearCode := 1 << minCodeSize
	endCode := clearCode + 1

	bw := bitio.NewLSBWriter()
	nextCode := endCode + 1
	codeSize := minCodeSize + 1
	haveOld := false

	bw.Put(clearCode, codeSize)

	for _, idx := range indices {
		if haveOld && nextCode >= 4096 {
			bw.Put(clearCode, codeSize)
			nextCode = endCode + 1
			codeSize = minCodeSize + 1
			haveOld = false
		}
		bw.Put(int(idx), codeSize)
		if haveOld {
			nextCode++
			if nextCode == (1<<codeSize) && codeSize < 12 {
				codeSize++
			}
		}
		haveOld = true
	}

	bw.Put(endCode, codeSize)
	bw.Flush()
	return bw.Bytes()
}

func lzwDecompress(data []byte, minCodeSize int, expectedPixels int) ([]byte, error) {
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, UnsupportedError("LZW minimum code size outside [2,8]")
	}
	clearCode := 1 << minCodeSize
	endCode := clearCode + 1

	var prefix [4096]int
	var suffix [4096]byte
	var stack [4096]byte

	resetTable := func() {
		for i := 0; i < clearCode; i++ {
			prefix[i] = -1
			suffix[i] = byte(i)
		}
	}
	resetTable()

	nextCode := endCode + 1
	codeSize := minCodeSize + 1
	oldCode := -1
	var firstChar byte

	br := bitio.NewLSBReader(data)
	out := make([]byte, 0, expectedPixels)

	for {
		code, ok := br.Read(codeSize)
		if !ok {
			break
		}

		if code == clearCode {
			resetTable()
			nextCode = endCode + 1
			codeSize = minCodeSize + 1
			oldCode = -1
			continue
		}
		if code == endCode {
			break
		}

		if oldCode < 0 {
			if code >= clearCode {
				return nil, FormatError("corrupt LZW first code")
			}
			firstChar = byte(code)
			out = append(out, firstChar)
			oldCode = code
			continue
		}

		inCode := code
		top := 0

		if code == nextCode {
			stack[top] = firstChar
			top++
			code = oldCode
		} else if code > nextCode {
			return nil, FormatError("corrupt LZW code")
		}

		for code >= clearCode {
			if code == clearCode || code == endCode {
				return nil, FormatError("corrupt LZW prefix chain")
			}
			if top >= 4096 {
				return nil, FormatError("corrupt LZW string")
			}
			stack[top] = suffix[code]
			top++
			code = prefix[code]
			if code < 0 {
				return nil, FormatError("corrupt LZW prefix")
			}
		}

		firstChar = byte(code)
		stack[top] = firstChar
		top++

		for top > 0 {
			top--
			out = append(out, stack[top])
		}

		if nextCode < 4096 {
			prefix[nextCode] = oldCode
			suffix[nextCode] = firstChar
			nextCode++
			if nextCode == (1<<codeSize) && codeSize < 12 {
				codeSize++
			}
		}

		oldCode = inCode
		if len(out) >= expectedPixels {
			break
		}
	}

	if len(out) < expectedPixels {
		return nil, FormatError("truncated image data")
	}
	return out[:expectedPixels], nil
}

func readSubBlocks(data []byte, pos *int) ([]byte, error) {
	var out []byte
	for {
		if *pos >= len(data) {
			return nil, FormatError("corrupt sub-block stream")
		}
		n := int(data[*pos])
		*pos++
		if n == 0 {
			break
		}
		if *pos+n > len(data) {
			return nil, FormatError("corrupt sub-block length")
		}
		out = append(out, data[*pos:*pos+n]...)
		*pos += n
	}
	return out, nil
}

func validateDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return FormatError("invalid dimensions")
	}
	return nil
}

// Decode reads the first image frame of a GIF87a/GIF89a stream, skipping
// extension blocks, optionally honoring a local color table and
// interlacing.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 13 {
		return nil, FormatError("file too small")
	}
	sig87 := string(data[0:6]) == "GIF87a"
	sig89 := string(data[0:6]) == "GIF89a"
	if !sig87 && !sig89 {
		return nil, FormatError("missing GIF signature")
	}

	pos := 6
	canvasW := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
	canvasH := int(binary.LittleEndian.Uint16(data[pos+2 : pos+4]))
	lsdPacked := data[pos+4]
	pos += 7

	if err := validateDimensions(canvasW, canvasH); err != nil {
		return nil, err
	}

	var globalPalette []Color
	if lsdPacked&0x80 != 0 {
		sizeBits := int(lsdPacked&0x07) + 1
		gctSize := 1 << sizeBits
		if pos+gctSize*3 > len(data) {
			return nil, FormatError("corrupt global color table")
		}
		globalPalette = make([]Color, gctSize)
		for i := 0; i < gctSize; i++ {
			globalPalette[i] = Color{R: data[pos], G: data[pos+1], B: data[pos+2]}
			pos += 3
		}
	}

	image := NewImage(canvasW, canvasH)
	gotImage := false

	for pos < len(data) {
		introducer := data[pos]
		pos++
		if introducer == 0x3B {
			break
		}
		if introducer == 0x21 {
			if pos >= len(data) {
				return nil, FormatError("corrupt extension block")
			}
			pos++
			if _, err := readSubBlocks(data, &pos); err != nil {
				return nil, err
			}
			continue
		}
		if introducer != 0x2C {
			return nil, UnsupportedError("unsupported block introducer")
		}

		if pos+9 > len(data) {
			return nil, FormatError("corrupt image descriptor")
		}
		left := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
		top := int(binary.LittleEndian.Uint16(data[pos+2 : pos+4]))
		imageW := int(binary.LittleEndian.Uint16(data[pos+4 : pos+6]))
		imageH := int(binary.LittleEndian.Uint16(data[pos+6 : pos+8]))
		idPacked := data[pos+8]
		pos += 9

		if err := validateDimensions(imageW, imageH); err != nil {
			return nil, err
		}

		palette := globalPalette
		if idPacked&0x80 != 0 {
			sizeBits := int(idPacked&0x07) + 1
			lctSize := 1 << sizeBits
			if pos+lctSize*3 > len(data) {
				return nil, FormatError("corrupt local color table")
			}
			palette = make([]Color, lctSize)
			for i := 0; i < lctSize; i++ {
				palette[i] = Color{R: data[pos], G: data[pos+1], B: data[pos+2]}
				pos += 3
			}
		}
		if len(palette) == 0 {
			return nil, FormatError("no color table")
		}

		if pos >= len(data) {
			return nil, FormatError("corrupt LZW header")
		}
		minCodeSize := int(data[pos])
		pos++
		compressed, err := readSubBlocks(data, &pos)
		if err != nil {
			return nil, err
		}
		indices, err := lzwDecompress(compressed, minCodeSize, imageW*imageH)
		if err != nil {
			return nil, err
		}

		interlaced := idPacked&0x40 != 0
		src := 0
		plot := func(x, y int, idx byte) {
			if int(idx) >= len(palette) {
				return
			}
			px, py := left+x, top+y
			if px < 0 || px >= image.Width || py < 0 || py >= image.Height {
				return
			}
			image.set(px, py, palette[idx])
		}
		if !interlaced {
			for y := 0; y < imageH; y++ {
				for x := 0; x < imageW; x++ {
					plot(x, y, indices[src])
					src++
				}
			}
		} else {
			starts := [4]int{0, 4, 2, 1}
			steps := [4]int{8, 8, 4, 2}
			for pass := 0; pass < 4; pass++ {
				for y := starts[pass]; y < imageH; y += steps[pass] {
					for x := 0; x < imageW; x++ {
						if src >= len(indices) {
							break
						}
						plot(x, y, indices[src])
						src++
					}
				}
			}
		}

		gotImage = true
		break
	}

	if !gotImage {
		return nil, FormatError("no image frame found")
	}
	return image, nil
}
