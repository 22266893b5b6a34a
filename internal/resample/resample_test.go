package resample

import "testing"

func checker(w, h int) *Buffer {
	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				b.Set(x, y, Pixel{R: 255, G: 255, B: 255, A: 255})
			} else {
				b.Set(x, y, Pixel{A: 255})
			}
		}
	}
	return b
}

func TestResizeIdentityIsExactCopy(t *testing.T) {
	src := checker(4, 4)
	out := Resize(src, 4, 4, Bilinear)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if out.At(x, y) != src.At(x, y) {
				t.Fatalf("identity resize changed pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestResizeNearestPreservesSolidColor(t *testing.T) {
	src := NewBuffer(4, 4)
	for i := range src.Pix {
		src.Pix[i] = Pixel{R: 50, G: 60, B: 70, A: 255}
	}
	out := Resize(src, 2, 2, Nearest)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			p := out.At(x, y)
			if p.R != 50 || p.G != 60 || p.B != 70 {
				t.Fatalf("expected solid color preserved, got %+v at (%d,%d)", p, x, y)
			}
		}
	}
}

func TestResizeBilinearUpscaleStaysInRange(t *testing.T) {
	src := checker(2, 2)
	out := Resize(src, 8, 8, Bilinear)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			p := out.At(x, y)
			if p.A != 255 {
				t.Fatalf("expected alpha to stay 255 across upscale, got %d at (%d,%d)", p.A, x, y)
			}
		}
	}
}

func TestResizeBoxAreaDownscaleAverages(t *testing.T) {
	src := NewBuffer(2, 1)
	src.Set(0, 0, Pixel{R: 0, A: 255})
	src.Set(1, 0, Pixel{R: 255, A: 255})
	out := Resize(src, 1, 1, BoxArea)
	p := out.At(0, 0)
	if p.R < 100 || p.R > 155 {
		t.Fatalf("expected averaged red channel near 127, got %d", p.R)
	}
}

func TestResizeNearestOutputDimensions(t *testing.T) {
	src := checker(3, 5)
	out := Resize(src, 7, 2, Nearest)
	if out.Width() != 7 || out.Height() != 2 {
		t.Fatalf("expected output dimensions 7x2, got %dx%d", out.Width(), out.Height())
	}
}
