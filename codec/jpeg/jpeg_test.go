package jpeg

import (
	"bytes"
	"testing"
)

func solidImage(w, h int, r, g, b uint8) *Image {
	im := NewImage(w, h)
	for i := 0; i < w*h; i++ {
		im.Pix[3*i], im.Pix[3*i+1], im.Pix[3*i+2] = r, g, b
	}
	return im
}

func maxAbsDiff(a, b *Image) int {
	max := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func TestEncodeDecodeRoundTripSolidColorStaysClose(t *testing.T) {
	src := solidImage(16, 16, 128, 64, 200)
	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 16 || got.Height != 16 {
		t.Fatalf("expected 16x16, got %dx%d", got.Width, got.Height)
	}
	// A flat-color block carries only a DC coefficient, so quantization
	// rounding should reproduce the source within a few levels.
	if d := maxAbsDiff(src, got); d > 6 {
		t.Fatalf("solid color round trip drifted by %d levels", d)
	}
}

func TestEncodeDecodeRoundTripNonMultipleOf16Dimensions(t *testing.T) {
	src := NewImage(20, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			i := 3 * (y*20 + x)
			src.Pix[i] = byte(x * 10)
			src.Pix[i+1] = byte(y * 20)
			src.Pix[i+2] = 50
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 20 || got.Height != 10 {
		t.Fatalf("expected 20x10, got %dx%d", got.Width, got.Height)
	}
}

func TestDecodeRejectsMissingSOI(t *testing.T) {
	if _, err := Decode(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Fatalf("expected FormatError for missing SOI")
	}
}

func TestHuffmanTableRoundTrip(t *testing.T) {
	table := buildHuffmanTable(dcLumaBits, dcLumaVals[:])
	for _, symbol := range dcLumaVals {
		code := table.code[symbol]
		length := table.codeLen[symbol]
		if length == 0 {
			t.Fatalf("symbol %d has no assigned code", symbol)
		}
		reconstructed := 0
		for i := int(length) - 1; i >= 0; i-- {
			bit := (code >> uint(i)) & 1
			reconstructed = (reconstructed << 1) | int(bit)
		}
		if reconstructed != int(code) {
			t.Fatalf("bit-order mismatch for symbol %d", symbol)
		}
	}
}

func TestMagnitudeBitsRoundTrip(t *testing.T) {
	for _, v := range []int{-300, -1, 0, 1, 300, 1023} {
		category := magnitudeCategory(v)
		bits := magnitudeBits(v, category)
		got := extendSign(uint32(bits), category)
		if got != v {
			t.Fatalf("extendSign(magnitudeBits(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestFdctIdctRoundTrip(t *testing.T) {
	var block [64]float64
	for i := range block {
		block[i] = float64(i%8*16 - 64)
	}
	coeffs := fdct8x8(block)
	back := idct8x8(coeffs)
	for i := range block {
		d := block[i] - back[i]
		if d < 0 {
			d = -d
		}
		if d > 1.0 {
			t.Fatalf("DCT round trip drifted at %d: want %v got %v", i, block[i], back[i])
		}
	}
}
