package effects

import "testing"

func solid(w, h int, p Pixel) *Image {
	im := NewImage(w, h)
	for i := range im.Pix {
		im.Pix[i] = p
	}
	return im
}

func TestGrayscalePreservesAlphaAndFlattensChannels(t *testing.T) {
	im := solid(4, 4, Pixel{R: 10, G: 200, B: 30, A: 128})
	Grayscale(im)
	p := im.At(0, 0)
	if p.R != p.G || p.G != p.B {
		t.Fatalf("expected equal RGB channels after grayscale, got %+v", p)
	}
	if p.A != 128 {
		t.Fatalf("expected alpha preserved, got %d", p.A)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	im := solid(2, 2, Pixel{R: 10, G: 20, B: 30, A: 255})
	Invert(im, true)
	Invert(im, true)
	p := im.At(0, 0)
	if p.R != 10 || p.G != 20 || p.B != 30 {
		t.Fatalf("double invert should be identity, got %+v", p)
	}
}

func TestThresholdSplitsOnLuma(t *testing.T) {
	im := solid(2, 2, Pixel{R: 10, G: 10, B: 10, A: 255})
	lo := Pixel{R: 0, G: 0, B: 0, A: 255}
	hi := Pixel{R: 255, G: 255, B: 255, A: 255}
	Threshold(im, 128, lo, hi)
	if im.At(0, 0) != lo {
		t.Fatalf("dark pixel should map to lo, got %+v", im.At(0, 0))
	}
}

func TestGaussianBlurSmoothsImpulse(t *testing.T) {
	im := solid(9, 9, Pixel{A: 255})
	im.Set(4, 4, Pixel{R: 255, G: 255, B: 255, A: 255})
	GaussianBlur(im, 2, 0)
	if im.At(4, 4).R == 255 {
		t.Fatalf("impulse should be spread by blur")
	}
	if im.At(4, 4).R == 0 {
		t.Fatalf("center should retain some of the impulse's energy")
	}
}

func TestSobelFlatImageHasNoEdges(t *testing.T) {
	im := solid(5, 5, Pixel{R: 100, G: 100, B: 100, A: 255})
	Sobel(im, true)
	if im.At(2, 2).R != 0 {
		t.Fatalf("flat image should have zero gradient magnitude, got %d", im.At(2, 2).R)
	}
}

func TestMorphologyRejectsUnknownOp(t *testing.T) {
	im := solid(3, 3, Pixel{})
	if err := Morphology(im, "bogus", 1, 1); err == nil {
		t.Fatalf("expected error for unsupported morphology op")
	}
}

func TestGammaRejectsNonPositive(t *testing.T) {
	im := solid(2, 2, Pixel{})
	if err := Gamma(im, 0); err == nil {
		t.Fatalf("expected error for gamma <= 0")
	}
}

func TestLevelsRejectsInvertedRange(t *testing.T) {
	im := solid(2, 2, Pixel{})
	if err := Levels(im, 200, 50, 1, 0, 255); err == nil {
		t.Fatalf("expected error when in_white <= in_black")
	}
}

func TestBuildCurveLUTIsMonotonicForIdentityPoints(t *testing.T) {
	lut := BuildCurveLUT([]CurvePoint{{X: 0, Y: 0}, {X: 255, Y: 255}})
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("identity curve should be monotonic, broke at %d", i)
		}
	}
}

func TestFractalNoiseIsDeterministicForSameSeed(t *testing.T) {
	a := solid(8, 8, Pixel{R: 128, G: 128, B: 128, A: 255})
	b := solid(8, 8, Pixel{R: 128, G: 128, B: 128, A: 255})
	FractalNoise(a, 16, 3, 2.0, 0.5, 0.5, 42, false)
	FractalNoise(b, 16, 3, 2.0, 0.5, 0.5, 42, false)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("same seed should produce identical noise at pixel %d", i)
		}
	}
}

func TestReplaceColorHardMatch(t *testing.T) {
	im := solid(2, 2, Pixel{R: 10, G: 10, B: 10, A: 255})
	ReplaceColor(im, Pixel{R: 10, G: 10, B: 10}, Pixel{R: 200, G: 0, B: 0}, 0, 0, false)
	p := im.At(0, 0)
	if p.R != 200 || p.G != 0 || p.B != 0 {
		t.Fatalf("exact color match should fully replace, got %+v", p)
	}
}
