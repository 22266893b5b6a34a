package gif

import (
	"bytes"
	"testing"
)

func solidImage(w, h int, c Color) *Image {
	im := NewImage(w, h)
	for i := range im.Pix {
		im.Pix[i] = c
	}
	return im
}

func TestEncodeDecodeRoundTripSolidColor(t *testing.T) {
	src := solidImage(4, 4, Color{R: 10, G: 200, B: 30})
	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 4 || got.Height != 4 {
		t.Fatalf("expected 4x4, got %dx%d", got.Width, got.Height)
	}
	for i, c := range got.Pix {
		if c != src.Pix[i] {
			t.Fatalf("pixel %d mismatch: want %+v got %+v", i, src.Pix[i], c)
		}
	}
}

func TestEncodeDecodeRoundTripMultiColor(t *testing.T) {
	src := NewImage(3, 3)
	colors := []Color{{R: 255}, {G: 255}, {B: 255}, {R: 255, G: 255}}
	for i := range src.Pix {
		src.Pix[i] = colors[i%len(colors)]
	}
	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, c := range got.Pix {
		if c != src.Pix[i] {
			t.Fatalf("pixel %d mismatch: want %+v got %+v", i, src.Pix[i], c)
		}
	}
}

func TestEncodeRejectsTooManyColors(t *testing.T) {
	src := NewImage(17, 16) // 272 pixels, each distinct -> over 256 colors
	n := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 17; x++ {
			src.set(x, y, Color{R: uint8(n), G: uint8(n / 2), B: uint8(n / 3)})
			n++
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, src); err == nil {
		t.Fatalf("expected error for image with more than 256 distinct colors")
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	if _, err := Decode(bytes.NewReader(make([]byte, 20))); err == nil {
		t.Fatalf("expected FormatError for bad signature")
	}
}

func TestLZWRoundTrip(t *testing.T) {
	indices := []byte{0, 0, 1, 1, 1, 2, 0, 1, 2, 3, 3, 3, 3}
	compressed := lzwCompress(indices, 2)
	decoded, err := lzwDecompress(compressed, 2, len(indices))
	if err != nil {
		t.Fatalf("lzwDecompress: %v", err)
	}
	if !bytes.Equal(decoded, indices) {
		t.Fatalf("LZW round trip mismatch: want %v got %v", indices, decoded)
	}
}
