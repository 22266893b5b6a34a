package png

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	im := NewImage(5, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			off := 3 * (y*5 + x)
			im.Pix[off] = byte(x * 40)
			im.Pix[off+1] = byte(y * 60)
			im.Pix[off+2] = byte((x + y) * 10)
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, im); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 5 || got.Height != 3 {
		t.Fatalf("expected 5x3, got %dx%d", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pix, im.Pix) {
		t.Fatalf("round-tripped pixels differ")
	}
}

func TestEncodeLargeImageSpansMultipleStoredBlocks(t *testing.T) {
	im := NewImage(300, 300) // raw scanline data exceeds one 65535-byte stored block
	var buf bytes.Buffer
	if err := Encode(&buf, im); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got.Pix, im.Pix) {
		t.Fatalf("round-tripped pixels differ across multiple stored blocks")
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	if _, err := Decode(bytes.NewReader(make([]byte, 16))); err == nil {
		t.Fatalf("expected FormatError for bad signature")
	}
}

func TestUnfilterPaethRow(t *testing.T) {
	prev := []byte{10, 20, 30}
	cur := []byte{5, 5, 5}
	if err := unfilterRow(4, cur, prev, 3); err != nil {
		t.Fatalf("unfilterRow: %v", err)
	}
	if cur[0] != 15 {
		t.Fatalf("expected Paeth-reconstructed byte 15, got %d", cur[0])
	}
}
