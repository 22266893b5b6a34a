package bmp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := NewImage(3, 2)
	src.set(0, 0, 255, 0, 0)
	src.set(1, 0, 0, 255, 0)
	src.set(2, 0, 0, 0, 255)
	src.set(0, 1, 10, 20, 30)
	src.set(1, 1, 40, 50, 60)
	src.set(2, 1, 70, 80, 90)

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Width != 3 || got.Height != 2 {
		t.Fatalf("expected 3x2, got %dx%d", got.Width, got.Height)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			wr, wg, wb := src.at(x, y)
			gr, gg, gb := got.at(x, y)
			if wr != gr || wg != gg || wb != gb {
				t.Fatalf("pixel mismatch at (%d,%d): want (%d,%d,%d) got (%d,%d,%d)", x, y, wr, wg, wb, gr, gg, gb)
			}
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode(bytes.NewReader(make([]byte, 64))); err == nil {
		t.Fatalf("expected FormatError for missing BM signature")
	}
}

func TestPaddedRowSizeAlignsToFour(t *testing.T) {
	if paddedRowSize(3) != 12 {
		t.Fatalf("expected row of width 3 (9 bytes) padded to 12, got %d", paddedRowSize(3))
	}
	if paddedRowSize(4) != 12 {
		t.Fatalf("expected row of width 4 (12 bytes) to stay 12, got %d", paddedRowSize(4))
	}
}
