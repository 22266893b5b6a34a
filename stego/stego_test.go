package stego

import (
	"bytes"
	"testing"

	imageflow "github.com/imageflow/imageflow"
)

func carrier(t *testing.T, w, h int) *imageflow.ImageBuffer {
	t.Helper()
	buf, err := imageflow.NewImageBuffer(w, h, imageflow.PixelRGBA8{R: 128, G: 128, B: 128, A: 255})
	if err != nil {
		t.Fatalf("NewImageBuffer: %v", err)
	}
	return buf
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := carrier(t, 64, 64)
	payload := []byte("the quick brown fox jumps over the lazy dog")

	var lsb LSB
	encoded, err := lsb.Encode(c, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := lsb.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, payload)
	}
}

func TestEncodeOnlyTouchesLowBitOfRed(t *testing.T) {
	c := carrier(t, 64, 64)
	var lsb LSB
	encoded, err := lsb.Encode(c, []byte("x"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			orig := c.GetPixel(x, y)
			mod := encoded.GetPixel(x, y)
			if orig.G != mod.G || orig.B != mod.B || orig.A != mod.A {
				t.Fatalf("non-red channel modified at (%d,%d): %+v -> %+v", x, y, orig, mod)
			}
			if orig.R&^1 != mod.R&^1 {
				t.Fatalf("red channel high bits modified at (%d,%d): %+v -> %+v", x, y, orig, mod)
			}
		}
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	c := carrier(t, 4, 4)
	var lsb LSB
	if _, err := lsb.Encode(c, make([]byte, 1000)); err != ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestCapacityBytesAccountsForHeader(t *testing.T) {
	c := carrier(t, 100, 1)
	var lsb LSB
	got := lsb.CapacityBytes(c)
	want := (100 - 32) / 8
	if got != want {
		t.Fatalf("CapacityBytes: got %d want %d", got, want)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	c := carrier(t, 64, 64)
	var lsb LSB
	encoded, err := lsb.Encode(c, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := lsb.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected empty payload, got %d bytes", len(decoded))
	}
}
