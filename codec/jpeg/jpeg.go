// Package jpeg implements baseline sequential JPEG encode/decode for
// 3-component Y'CbCr images, 4:2:0 chroma subsampling on encode and
// arbitrary supported sampling ratios on decode, using the standard
// Annex K quantization and Huffman tables.
package jpeg

import (
	"io"
	"math"

	"github.com/imageflow/imageflow/internal/bitio"
)

// FormatError reports malformed JPEG structure.
type FormatError string

func (e FormatError) Error() string { return "jpeg: invalid format: " + string(e) }

// UnsupportedError reports a structurally valid JPEG feature this package
// does not implement (progressive scans, non-3-component, etc).
type UnsupportedError string

func (e UnsupportedError) Error() string { return "jpeg: unsupported feature: " + string(e) }

// Image is the minimal pixel source/sink this package needs.
type Image struct {
	Width, Height int
	// Pix holds RGB triples in row-major order: Pix[3*(y*Width+x)+0..2].
	Pix []byte
}

// NewImage allocates a zeroed RGB image.
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

func (im *Image) at(x, y int) (r, g, b uint8) {
	if x < 0 {
		x = 0
	}
	if x >= im.Width {
		x = im.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= im.Height {
		y = im.Height - 1
	}
	i := 3 * (y*im.Width + x)
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

func (im *Image) set(x, y int, r, g, b uint8) {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		return
	}
	i := 3 * (y*im.Width + x)
	im.Pix[i], im.Pix[i+1], im.Pix[i+2] = r, g, b
}

var zigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

var quantLuma = [64]byte{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

var quantChroma = [64]byte{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

var dcLumaBits = [17]byte{0, 0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
var dcLumaVals = [12]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

var acLumaBits = [17]byte{0, 0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 0x7D}
var acLumaVals = [162]byte{
	0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
	0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
	0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xA1, 0x08,
	0x23, 0x42, 0xB1, 0xC1, 0x15, 0x52, 0xD1, 0xF0,
	0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0A, 0x16,
	0x17, 0x18, 0x19, 0x1A, 0x25, 0x26, 0x27, 0x28,
	0x29, 0x2A, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
	0x3A, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
	0x4A, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
	0x5A, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
	0x6A, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
	0x7A, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
	0x8A, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
	0x99, 0x9A, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7,
	0xA8, 0xA9, 0xAA, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6,
	0xB7, 0xB8, 0xB9, 0xBA, 0xC2, 0xC3, 0xC4, 0xC5,
	0xC6, 0xC7, 0xC8, 0xC9, 0xCA, 0xD2, 0xD3, 0xD4,
	0xD5, 0xD6, 0xD7, 0xD8, 0xD9, 0xDA, 0xE1, 0xE2,
	0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9, 0xEA,
	0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8,
	0xF9, 0xFA,
}

var dcChromaBits = [17]byte{0, 0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
var dcChromaVals = [12]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

var acChromaBits = [17]byte{0, 0, 2, 1, 2, 4, 4, 3, 4, 7, 5, 4, 4, 0, 1, 2, 0x77}
var acChromaVals = [162]byte{
	0x00, 0x01, 0x02, 0x03, 0x11, 0x04, 0x05, 0x21,
	0x31, 0x06, 0x12, 0x41, 0x51, 0x07, 0x61, 0x71,
	0x13, 0x22, 0x32, 0x81, 0x08, 0x14, 0x42, 0x91,
	0xA1, 0xB1, 0xC1, 0x09, 0x23, 0x33, 0x52, 0xF0,
	0x15, 0x62, 0x72, 0xD1, 0x0A, 0x16, 0x24, 0x34,
	0xE1, 0x25, 0xF1, 0x17, 0x18, 0x19, 0x1A, 0x26,
	0x27, 0x28, 0x29, 0x2A, 0x35, 0x36, 0x37, 0x38,
	0x39, 0x3A, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48,
	0x49, 0x4A, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58,
	0x59, 0x5A, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
	0x69, 0x6A, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78,
	0x79, 0x7A, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87,
	0x88, 0x89, 0x8A, 0x92, 0x93, 0x94, 0x95, 0x96,
	0x97, 0x98, 0x99, 0x9A, 0xA2, 0xA3, 0xA4, 0xA5,
	0xA6, 0xA7, 0xA8, 0xA9, 0xAA, 0xB2, 0xB3, 0xB4,
	0xB5, 0xB6, 0xB7, 0xB8, 0xB9, 0xBA, 0xC2, 0xC3,
	0xC4, 0xC5, 0xC6, 0xC7, 0xC8, 0xC9, 0xCA, 0xD2,
	0xD3, 0xD4, 0xD5, 0xD6, 0xD7, 0xD8, 0xD9, 0xDA,
	0xE2, 0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9,
	0xEA, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8,
	0xF9, 0xFA,
}

// huffmanTable holds both the encoding (code/codeLen indexed by symbol)
// and decoding (minCode/maxCode/valPtr indexed by bit length) views of one
// JPEG Huffman table.
type huffmanTable struct {
	bits    [17]byte
	values  []byte
	minCode [17]int
	maxCode [17]int
	valPtr  [17]int
	code    [256]uint16
	codeLen [256]byte
}

func buildHuffmanTable(bits [17]byte, values []byte) *huffmanTable {
	t := &huffmanTable{bits: bits, values: values}

	code := 0
	k := 0
	for i := 1; i <= 16; i++ {
		if t.bits[i] == 0 {
			t.minCode[i] = -1
			t.maxCode[i] = -1
			t.valPtr[i] = -1
		} else {
			t.minCode[i] = code
			t.valPtr[i] = k
			code += int(t.bits[i]) - 1
			t.maxCode[i] = code
			code++
			k += int(t.bits[i])
		}
		code <<= 1
	}

	code = 0
	k = 0
	for i := 1; i <= 16; i++ {
		for j := 0; j < int(t.bits[i]); j++ {
			symbol := t.values[k]
			k++
			t.code[symbol] = uint16(code)
			t.codeLen[symbol] = byte(i)
			code++
		}
		code <<= 1
	}
	return t
}

func magnitudeCategory(value int) int {
	if value == 0 {
		return 0
	}
	absVal := value
	if absVal < 0 {
		absVal = -absVal
	}
	category := 0
	for absVal > 0 {
		category++
		absVal >>= 1
	}
	return category
}

func magnitudeBits(value, category int) uint16 {
	if category == 0 {
		return 0
	}
	if value >= 0 {
		return uint16(value)
	}
	return uint16((1 << uint(category)) - 1 + value)
}

func extendSign(bits uint32, category int) int {
	if category == 0 {
		return 0
	}
	vt := 1 << uint(category-1)
	if int(bits) >= vt {
		return int(bits)
	}
	return int(bits) - ((1 << uint(category)) - 1)
}

// fdct8x8 is the reference naive forward DCT-II.
func fdct8x8(in [64]float64) [64]float64 {
	var out [64]float64
	for v := 0; v < 8; v++ {
		for u := 0; u < 8; u++ {
			var sum float64
			for y := 0; y < 8; y++ {
				for x := 0; x < 8; x++ {
					sum += in[y*8+x] *
						math.Cos(((2*float64(x)+1)*float64(u)*math.Pi)/16) *
						math.Cos(((2*float64(y)+1)*float64(v)*math.Pi)/16)
				}
			}
			cu, cv := 1.0, 1.0
			if u == 0 {
				cu = 1 / math.Sqrt2
			}
			if v == 0 {
				cv = 1 / math.Sqrt2
			}
			out[v*8+u] = 0.25 * cu * cv * sum
		}
	}
	return out
}

func idct8x8(in [64]float64) [64]float64 {
	var out [64]float64
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for v := 0; v < 8; v++ {
				for u := 0; u < 8; u++ {
					cu, cv := 1.0, 1.0
					if u == 0 {
						cu = 1 / math.Sqrt2
					}
					if v == 0 {
						cv = 1 / math.Sqrt2
					}
					sum += cu * cv * in[v*8+u] *
						math.Cos(((2*float64(x)+1)*float64(u)*math.Pi)/16) *
						math.Cos(((2*float64(y)+1)*float64(v)*math.Pi)/16)
				}
			}
			out[y*8+x] = 0.25 * sum
		}
	}
	return out
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

func writeMarker(out []byte, marker byte) []byte {
	return append(out, 0xFF, marker)
}

func writeU16BE(out []byte, v uint16) []byte {
	return append(out, byte(v>>8), byte(v))
}

const (
	markerSOI = 0xD8
	markerEOI = 0xD9
	markerAPP0 = 0xE0
	markerDQT  = 0xDB
	markerSOF0 = 0xC0
	markerDHT  = 0xC4
	markerSOS  = 0xDA
)

func emitDQT(out []byte, id byte, table [64]byte) []byte {
	out = writeMarker(out, markerDQT)
	out = writeU16BE(out, uint16(2+1+64))
	out = append(out, id)
	out = append(out, table[:]...)
	return out
}

func emitDHT(out []byte, class, id byte, bits [17]byte, values []byte) []byte {
	out = writeMarker(out, markerDHT)
	length := 2 + 1 + 16 + len(values)
	out = writeU16BE(out, uint16(length))
	out = append(out, (class<<4)|id)
	out = append(out, bits[1:17]...)
	out = append(out, values...)
	return out
}

func writeHuffmanCode(w *bitio.MSBWriter, t *huffmanTable, symbol byte) {
	w.PutBits(t.code[symbol], int(t.codeLen[symbol]))
}

// encodeBlock zigzag-quantizes a natural-order 8x8 DCT output, Huffman-codes
// the DC difference against prevDC, and run-length Huffman-codes the AC
// coefficients.
func encodeBlock(w *bitio.MSBWriter, dct [64]float64, quant [64]byte, dcTable, acTable *huffmanTable, prevDC *int) {
	var coeffs [64]int
	for k := 0; k < 64; k++ {
		natural := zigZag[k]
		coeffs[k] = int(math.Round(dct[natural] / float64(quant[k])))
	}

	diff := coeffs[0] - *prevDC
	*prevDC = coeffs[0]
	dcCategory := magnitudeCategory(diff)
	writeHuffmanCode(w, dcTable, byte(dcCategory))
	if dcCategory > 0 {
		w.PutBits(magnitudeBits(diff, dcCategory), dcCategory)
	}

	run := 0
	for k := 1; k < 64; k++ {
		if coeffs[k] == 0 {
			run++
			continue
		}
		for run >= 16 {
			writeHuffmanCode(w, acTable, 0xF0) // ZRL
			run -= 16
		}
		acCategory := magnitudeCategory(coeffs[k])
		symbol := byte(run<<4) | byte(acCategory)
		writeHuffmanCode(w, acTable, symbol)
		w.PutBits(magnitudeBits(coeffs[k], acCategory), acCategory)
		run = 0
	}
	if run > 0 {
		writeHuffmanCode(w, acTable, 0x00) // EOB
	}
}

func rgbToYCbCr(r, g, b uint8) (y, cb, cr float64) {
	fr, fg, fb := float64(r), float64(g), float64(b)
	y = 0.299*fr + 0.587*fg + 0.114*fb
	cb = -0.168736*fr - 0.331264*fg + 0.5*fb + 128
	cr = 0.5*fr - 0.418688*fg - 0.081312*fb + 128
	return
}

// Encode writes im as a baseline sequential JPEG: 3-component Y'CbCr with
// 4:2:0 chroma subsampling, standard Annex K quantization and Huffman
// tables.
func Encode(w io.Writer, im *Image) error {
	if im.Width <= 0 || im.Height <= 0 {
		return FormatError("non-positive image dimensions")
	}

	dcLuma := buildHuffmanTable(dcLumaBits, dcLumaVals[:])
	acLuma := buildHuffmanTable(acLumaBits, acLumaVals[:])
	dcChroma := buildHuffmanTable(dcChromaBits, dcChromaVals[:])
	acChroma := buildHuffmanTable(acChromaBits, acChromaVals[:])

	var out []byte
	out = writeMarker(out, markerSOI)

	out = writeMarker(out, markerAPP0)
	out = writeU16BE(out, 16)
	out = append(out, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00)
	out = writeU16BE(out, 1)
	out = writeU16BE(out, 1)
	out = append(out, 0x00, 0x00)

	out = emitDQT(out, 0, quantLuma)
	out = emitDQT(out, 1, quantChroma)

	out = writeMarker(out, markerSOF0)
	out = writeU16BE(out, uint16(8+3*3))
	out = append(out, 8) // precision
	out = writeU16BE(out, uint16(im.Height))
	out = writeU16BE(out, uint16(im.Width))
	out = append(out, 3) // components
	out = append(out, 1, 0x22, 0)
	out = append(out, 2, 0x11, 1)
	out = append(out, 3, 0x11, 1)

	out = emitDHT(out, 0, 0, dcLumaBits, dcLumaVals[:])
	out = emitDHT(out, 1, 0, acLumaBits, acLumaVals[:])
	out = emitDHT(out, 0, 1, dcChromaBits, dcChromaVals[:])
	out = emitDHT(out, 1, 1, acChromaBits, acChromaVals[:])

	out = writeMarker(out, markerSOS)
	out = writeU16BE(out, uint16(6+2*3))
	out = append(out, 3)
	out = append(out, 1, 0x00)
	out = append(out, 2, 0x11)
	out = append(out, 3, 0x11)
	out = append(out, 0, 63, 0)

	if _, err := w.Write(out); err != nil {
		return err
	}

	mcuW := (im.Width + 15) / 16
	mcuH := (im.Height + 15) / 16

	sampleAt := func(x, y int) (r, g, b uint8) { return im.at(x, y) }

	bw := bitio.NewMSBWriter()
	prevDCY, prevDCCb, prevDCCr := 0, 0, 0

	yBlockBuf := func(baseX, baseY int) [64]float64 {
		var block [64]float64
		for j := 0; j < 8; j++ {
			for i := 0; i < 8; i++ {
				r, g, b := sampleAt(baseX+i, baseY+j)
				y, _, _ := rgbToYCbCr(r, g, b)
				block[j*8+i] = y - 128
			}
		}
		return block
	}

	chromaBlockBuf := func(mcuX, mcuY int, wantCb bool) [64]float64 {
		var block [64]float64
		for j := 0; j < 8; j++ {
			for i := 0; i < 8; i++ {
				var sum float64
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						x := mcuX*16 + i*2 + dx
						y := mcuY*16 + j*2 + dy
						r, g, b := sampleAt(x, y)
						_, cb, cr := rgbToYCbCr(r, g, b)
						if wantCb {
							sum += cb
						} else {
							sum += cr
						}
					}
				}
				block[j*8+i] = sum/4 - 128
			}
		}
		return block
	}

	for my := 0; my < mcuH; my++ {
		for mx := 0; mx < mcuW; mx++ {
			for by := 0; by < 2; by++ {
				for bx := 0; bx < 2; bx++ {
					block := yBlockBuf(mx*16+bx*8, my*16+by*8)
					dct := fdct8x8(block)
					encodeBlock(bw, dct, quantLuma, dcLuma, acLuma, &prevDCY)
				}
			}
			cbBlock := chromaBlockBuf(mx, my, true)
			encodeBlock(bw, fdct8x8(cbBlock), quantChroma, dcChroma, acChroma, &prevDCCb)
			crBlock := chromaBlockBuf(mx, my, false)
			encodeBlock(bw, fdct8x8(crBlock), quantChroma, dcChroma, acChroma, &prevDCCr)
		}
	}
	bw.Flush()

	if _, err := w.Write(bw.Bytes()); err != nil {
		return err
	}
	_, err := w.Write([]byte{0xFF, markerEOI})
	return err
}

type jpegComponent struct {
	id                             byte
	h, v                           byte
	quantTableID                   byte
	dcTableID, acTableID           byte
	blocksPerLine, blocksPerColumn int
	samples                        []byte // blocksPerLine*8 x blocksPerColumn*8, row-major
	sampleWidth                    int
}

func decodeHuffmanSymbol(br *bitio.MSBReader, t *huffmanTable) (byte, error) {
	code := 0
	for length := 1; length <= 16; length++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		code = (code << 1) | int(bit)
		if t.maxCode[length] != -1 && code <= t.maxCode[length] && code >= t.minCode[length] {
			idx := t.valPtr[length] + (code - t.minCode[length])
			if idx < 0 || idx >= len(t.values) {
				return 0, FormatError("corrupt Huffman index")
			}
			return t.values[idx], nil
		}
	}
	return 0, FormatError("invalid Huffman code")
}

func decodeBlock(br *bitio.MSBReader, dcTable, acTable *huffmanTable, quant [64]byte, prevDC *int) ([64]float64, error) {
	var coeffs [64]int

	dcCategory, err := decodeHuffmanSymbol(br, dcTable)
	if err != nil {
		return [64]float64{}, err
	}
	var diff int
	if dcCategory > 0 {
		bits, err := br.ReadBits(int(dcCategory))
		if err != nil {
			return [64]float64{}, err
		}
		diff = extendSign(bits, int(dcCategory))
	}
	*prevDC += diff
	coeffs[0] = *prevDC

	k := 1
	for k < 64 {
		symbol, err := decodeHuffmanSymbol(br, acTable)
		if err != nil {
			return [64]float64{}, err
		}
		if symbol == 0x00 { // EOB
			break
		}
		run := int(symbol >> 4)
		category := int(symbol & 0x0F)
		if symbol == 0xF0 { // ZRL
			k += 16
			continue
		}
		k += run
		if k >= 64 {
			return [64]float64{}, FormatError("AC coefficient run overruns block")
		}
		bits, err := br.ReadBits(category)
		if err != nil {
			return [64]float64{}, err
		}
		coeffs[k] = extendSign(bits, category)
		k++
	}

	var natural [64]float64
	for zz := 0; zz < 64; zz++ {
		idx := zigZag[zz]
		natural[idx] = float64(coeffs[zz]) * float64(quant[zz])
	}
	return idct8x8(natural), nil
}

// Decode reads a baseline sequential 3-component Y'CbCr JPEG and returns
// its RGB pixels, upsampling subsampled chroma by nearest replication.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, FormatError("missing SOI marker")
	}

	var quantTables [4][64]byte
	quantDefined := [4]bool{}
	var huffDC, huffAC [4]*huffmanTable

	var width, height int
	var components []*jpegComponent
	haveSOF := false

	pos := 2
	for pos < len(data) {
		if data[pos] != 0xFF {
			return nil, FormatError("expected marker")
		}
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return nil, FormatError("truncated marker stream")
		}
		marker := data[pos]
		pos++
		if marker == markerEOI {
			break
		}
		if pos+2 > len(data) {
			return nil, FormatError("truncated marker length")
		}
		length := int(data[pos])<<8 | int(data[pos+1])
		if length < 2 || pos+length > len(data) {
			return nil, FormatError("invalid marker segment length")
		}
		segment := data[pos+2 : pos+length]
		segEnd := pos + length

		switch marker {
		case markerDQT:
			p := 0
			for p < len(segment) {
				pqTq := segment[p]
				p++
				id := pqTq & 0x0F
				if pqTq>>4 != 0 {
					return nil, UnsupportedError("16-bit quantization tables")
				}
				if id > 3 || p+64 > len(segment) {
					return nil, FormatError("corrupt DQT segment")
				}
				copy(quantTables[id][:], segment[p:p+64])
				quantDefined[id] = true
				p += 64
			}
		case markerSOF0:
			if len(segment) < 6 {
				return nil, FormatError("corrupt SOF0 segment")
			}
			precision := segment[0]
			if precision != 8 {
				return nil, UnsupportedError("only 8-bit sample precision is supported")
			}
			height = int(segment[1])<<8 | int(segment[2])
			width = int(segment[3])<<8 | int(segment[4])
			numComponents := int(segment[5])
			if numComponents != 3 {
				return nil, UnsupportedError("only 3-component JPEGs are supported")
			}
			if width <= 0 || height <= 0 {
				return nil, FormatError("invalid image dimensions")
			}
			p := 6
			for i := 0; i < numComponents; i++ {
				if p+3 > len(segment) {
					return nil, FormatError("corrupt component specification")
				}
				c := &jpegComponent{
					id:            segment[p],
					h:             segment[p+1] >> 4,
					v:             segment[p+1] & 0x0F,
					quantTableID:  segment[p+2],
				}
				if c.h == 0 || c.v == 0 {
					return nil, FormatError("invalid component sampling factor")
				}
				components = append(components, c)
				p += 3
			}
			haveSOF = true
		case markerDHT:
			p := 0
			for p < len(segment) {
				classID := segment[p]
				p++
				class := classID >> 4
				id := classID & 0x0F
				if id > 3 || p+16 > len(segment) {
					return nil, FormatError("corrupt DHT segment")
				}
				var bits [17]byte
				total := 0
				for i := 1; i <= 16; i++ {
					bits[i] = segment[p+i-1]
					total += int(bits[i])
				}
				p += 16
				if p+total > len(segment) {
					return nil, FormatError("corrupt DHT values")
				}
				values := append([]byte(nil), segment[p:p+total]...)
				p += total
				table := buildHuffmanTable(bits, values)
				if class == 0 {
					huffDC[id] = table
				} else {
					huffAC[id] = table
				}
			}
		case markerSOS:
			if !haveSOF {
				return nil, FormatError("SOS before SOF0")
			}
			if len(segment) < 1 {
				return nil, FormatError("corrupt SOS segment")
			}
			ns := int(segment[0])
			if ns != len(components) {
				return nil, UnsupportedError("SOS component count must match SOF0")
			}
			p := 1
			for i := 0; i < ns; i++ {
				if p+2 > len(segment) {
					return nil, FormatError("corrupt SOS component spec")
				}
				cid := segment[p]
				tdTa := segment[p+1]
				p += 2
				for _, c := range components {
					if c.id == cid {
						c.dcTableID = tdTa >> 4
						c.acTableID = tdTa & 0x0F
					}
				}
			}

			for _, c := range components {
				if !quantDefined[c.quantTableID] {
					return nil, FormatError("SOF0 references undefined quantization table")
				}
				if huffDC[c.dcTableID] == nil || huffAC[c.acTableID] == nil {
					return nil, FormatError("SOS references undefined Huffman table")
				}
			}

			im, err := decodeScan(data[segEnd:], width, height, components, quantTables, huffDC, huffAC)
			if err != nil {
				return nil, err
			}
			return im, nil
		}
		pos = segEnd
	}
	return nil, FormatError("missing SOS/entropy-coded scan")
}

func decodeScan(scanData []byte, width, height int, components []*jpegComponent, quantTables [4][64]byte, huffDC, huffAC [4]*huffmanTable) (*Image, error) {
	var maxH, maxV byte
	for _, c := range components {
		if c.h > maxH {
			maxH = c.h
		}
		if c.v > maxV {
			maxV = c.v
		}
	}
	for _, c := range components {
		if int(maxH)%int(c.h) != 0 || int(maxV)%int(c.v) != 0 {
			return nil, UnsupportedError("sampling factors must divide the maximum evenly")
		}
	}

	mcusPerLine := (width + int(maxH)*8 - 1) / (int(maxH) * 8)
	mcusPerColumn := (height + int(maxV)*8 - 1) / (int(maxV) * 8)

	for _, c := range components {
		c.blocksPerLine = mcusPerLine * int(c.h)
		c.blocksPerColumn = mcusPerColumn * int(c.v)
		c.sampleWidth = c.blocksPerLine * 8
		c.samples = make([]byte, c.sampleWidth*c.blocksPerColumn*8)
	}

	br := bitio.NewMSBReader(scanData)
	prevDC := make([]int, len(components))

	for my := 0; my < mcusPerColumn; my++ {
		for mx := 0; mx < mcusPerLine; mx++ {
			for ci, c := range components {
				quant := quantTables[c.quantTableID]
				dcTable := huffDC[c.dcTableID]
				acTable := huffAC[c.acTableID]
				for by := 0; by < int(c.v); by++ {
					for bx := 0; bx < int(c.h); bx++ {
						block, err := decodeBlock(br, dcTable, acTable, quant, &prevDC[ci])
						if err != nil {
							return nil, err
						}
						blockCol := mx*int(c.h) + bx
						blockRow := my*int(c.v) + by
						originX := blockCol * 8
						originY := blockRow * 8
						for j := 0; j < 8; j++ {
							for i := 0; i < 8; i++ {
								v := clampByte(int(math.Round(block[j*8+i])) + 128)
								c.samples[(originY+j)*c.sampleWidth+originX+i] = v
							}
						}
					}
				}
			}
		}
	}

	compY, compCb, compCr := components[0], components[1], components[2]
	im := NewImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			yv := sampleComponent(compY, x, y, width, height, maxH, maxV)
			cb := sampleComponent(compCb, x, y, width, height, maxH, maxV)
			cr := sampleComponent(compCr, x, y, width, height, maxH, maxV)
			fy, fcb, fcr := float64(yv), float64(cb)-128, float64(cr)-128
			r := clampByte(int(math.Round(fy + 1.402*fcr)))
			g := clampByte(int(math.Round(fy - 0.344136*fcb - 0.714136*fcr)))
			b := clampByte(int(math.Round(fy + 1.772*fcb)))
			im.set(x, y, r, g, b)
		}
	}
	return im, nil
}

func sampleComponent(c *jpegComponent, x, y, width, height int, maxH, maxV byte) byte {
	scaleX := int(maxH) / int(c.h)
	scaleY := int(maxV) / int(c.v)
	compWidth := (width*int(c.h) + int(maxH) - 1) / int(maxH)
	compHeight := (height*int(c.v) + int(maxV) - 1) / int(maxV)

	cx := x / scaleX
	cy := y / scaleY
	if cx >= compWidth {
		cx = compWidth - 1
	}
	if cy >= compHeight {
		cy = compHeight - 1
	}
	return c.samples[cy*c.sampleWidth+cx]
}
