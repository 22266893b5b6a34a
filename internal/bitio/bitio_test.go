package bitio

import "testing"

func TestMSBRoundTrip(t *testing.T) {
	w := NewMSBWriter()
	w.PutBits(0b101, 3)
	w.PutBits(0b11001100, 8)
	w.PutBits(0b1, 1)
	w.Flush()

	r := NewMSBReader(w.Bytes())
	v, err := r.ReadBits(3)
	if err != nil || v != 0b101 {
		t.Fatalf("expected 0b101, got %b (err=%v)", v, err)
	}
	v, err = r.ReadBits(8)
	if err != nil || v != 0b11001100 {
		t.Fatalf("expected 0b11001100, got %b (err=%v)", v, err)
	}
	v, err = r.ReadBits(1)
	if err != nil || v != 1 {
		t.Fatalf("expected 1, got %b (err=%v)", v, err)
	}
}

func TestMSBWriterStuffsFF(t *testing.T) {
	w := NewMSBWriter()
	w.PutBits(0xFF, 8)
	w.Flush()
	out := w.Bytes()
	if len(out) != 2 || out[0] != 0xFF || out[1] != 0x00 {
		t.Fatalf("expected stuffed 0xFF 0x00, got %x", out)
	}
}

func TestMSBReaderSkipsRestartMarker(t *testing.T) {
	data := []byte{0xAB, 0xFF, 0xD0, 0xCD}
	r := NewMSBReader(data)
	v, err := r.ReadBits(8)
	if err != nil || v != 0xAB {
		t.Fatalf("expected 0xAB, got %x (err=%v)", v, err)
	}
	v, err = r.ReadBits(8)
	if err != nil || v != 0xCD {
		t.Fatalf("expected restart marker transparently skipped to 0xCD, got %x (err=%v)", v, err)
	}
}

func TestMSBReaderReportsMarker(t *testing.T) {
	data := []byte{0xFF, 0xD9}
	r := NewMSBReader(data)
	if _, err := r.ReadBits(8); err == nil {
		t.Fatalf("expected error hitting end-of-image marker")
	}
	if !r.HitMarker() {
		t.Fatalf("expected HitMarker to be true")
	}
}

func TestLSBRoundTrip(t *testing.T) {
	w := NewLSBWriter()
	w.Put(5, 3)
	w.Put(200, 9)
	w.Flush()

	r := NewLSBReader(w.Bytes())
	v, ok := r.Read(3)
	if !ok || v != 5 {
		t.Fatalf("expected 5, got %d (ok=%v)", v, ok)
	}
	v, ok = r.Read(9)
	if !ok || v != 200 {
		t.Fatalf("expected 200, got %d (ok=%v)", v, ok)
	}
}

func TestLSBReaderEOF(t *testing.T) {
	r := NewLSBReader([]byte{0x01})
	if _, ok := r.Read(16); ok {
		t.Fatalf("expected ok=false reading past end of data")
	}
}
