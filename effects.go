package imageflow

import "github.com/imageflow/imageflow/internal/effects"

// MorphologyOp selects erosion or dilation for [ImageBuffer.Morphology].
type MorphologyOp string

const (
	MorphologyErode  MorphologyOp = "erode"
	MorphologyDilate MorphologyOp = "dilate"
)

// Grayscale replaces each pixel's RGB with its luma, preserving alpha.
func (b *ImageBuffer) Grayscale() { effects.Grayscale(b) }

// Sepia lerps each pixel toward the standard sepia matrix by strength in
// [0,1].
func (b *ImageBuffer) Sepia(strength float64) { effects.Sepia(b, strength) }

// Invert complements each RGB channel. preserveAlpha controls whether the
// alpha channel is also complemented.
func (b *ImageBuffer) Invert(preserveAlpha bool) { effects.Invert(b, preserveAlpha) }

// Threshold emits lo or hi per pixel depending on whether its luma is below
// or at/above threshold.
func (b *ImageBuffer) Threshold(threshold int, lo, hi PixelRGBA8) {
	effects.Threshold(b, threshold, lo, hi)
}

// GaussianBlur applies a separable Gaussian blur of the given radius. A
// non-positive sigma derives an effective sigma from the radius.
func (b *ImageBuffer) GaussianBlur(radius int, sigma float64) { effects.GaussianBlur(b, radius, sigma) }

// SobelEdges replaces the buffer with a monochrome gradient-magnitude edge
// map.
func (b *ImageBuffer) SobelEdges(keepAlpha bool) { effects.Sobel(b, keepAlpha) }

// CannyEdges replaces the buffer with a binary edge map via Sobel gradients,
// non-maximum suppression, and hysteresis thresholding.
func (b *ImageBuffer) CannyEdges(low, high int, keepAlpha bool) {
	effects.Canny(b, low, high, keepAlpha)
}

// Morphology applies iterations passes of erosion or dilation over a disk
// of the given radius.
func (b *ImageBuffer) Morphology(op MorphologyOp, radius, iterations int) error {
	return effects.Morphology(b, string(op), radius, iterations)
}

// Gamma applies out = 255*(v/255)^(1/gamma) per RGB channel.
func (b *ImageBuffer) Gamma(gamma float64) error { return effects.Gamma(b, gamma) }

// Levels linearly remaps [inBlack,inWhite] to [outBlack,outWhite] with a
// midtone gamma.
func (b *ImageBuffer) Levels(inBlack, inWhite int, midGamma float64, outBlack, outWhite int) error {
	return effects.Levels(b, inBlack, inWhite, midGamma, outBlack, outWhite)
}

// CurvePoint is one (x,y) control point of a piecewise-linear tone curve.
type CurvePoint = effects.CurvePoint

// BuildCurveLUT interpolates a sorted (by X) list of at least two control
// points into a 256-entry lookup table.
func BuildCurveLUT(points []CurvePoint) [256]byte { return effects.BuildCurveLUT(points) }

// Curves applies a master RGB LUT, then optional per-channel LUTs.
func (b *ImageBuffer) Curves(rgbLUT [256]byte, rLUT, gLUT, bLUT *[256]byte) {
	effects.Curves(b, rgbLUT, rLUT, gLUT, bLUT)
}

// FractalNoise adds value noise, summed across octaves, to each channel.
func (b *ImageBuffer) FractalNoise(scale float64, octaves int, lacunarity, gain, amount float64, seed uint32, monochrome bool) {
	effects.FractalNoise(b, scale, octaves, lacunarity, gain, amount, seed, monochrome)
}

// Hatch lerps toward ink along progressively darker cross-hatches.
func (b *ImageBuffer) Hatch(spacing, lineWidth int, ink PixelRGBA8, opacity float64, preserveHighlights bool) {
	effects.Hatch(b, spacing, lineWidth, ink, opacity, preserveHighlights)
}

// PencilStrokesParams bundles the pencil-stroke effect's tunables.
type PencilStrokesParams = effects.PencilStrokesParams

// PencilStrokes stamps short soft-edged strokes over dark regions.
func (b *ImageBuffer) PencilStrokes(p PencilStrokesParams) { effects.PencilStrokes(b, p) }

// ChannelMix applies a 3x3 RGB mix matrix, clamping intermediate results.
func (b *ImageBuffer) ChannelMix(matrix [9]float64, clampMin, clampMax float64) {
	effects.ChannelMix(b, matrix, clampMin, clampMax)
}

// ReplaceColor lerps pixels within tolerance of from toward to.
func (b *ImageBuffer) ReplaceColor(from, to PixelRGBA8, tolerance, softness float64, preserveLuma bool) {
	effects.ReplaceColor(b, from, to, tolerance, softness, preserveLuma)
}
