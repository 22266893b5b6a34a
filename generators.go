package imageflow

import "math"

func lerpColor(a, b Color, t float64) Color {
	t = clamp01(t)
	inv := 1 - t
	return Color{
		R: clampByte(int(math.Round(inv*float64(a.R) + t*float64(b.R)))),
		G: clampByte(int(math.Round(inv*float64(a.G) + t*float64(b.G)))),
		B: clampByte(int(math.Round(inv*float64(a.B) + t*float64(b.B)))),
	}
}

// FillLinearGradient fills the buffer by projecting each pixel onto the
// line from (x0,y0) to (x1,y1), normalized by squared line length, and
// lerping from->to. A degenerate (zero-length) line fills solid from.
func (b *ImageBuffer) FillLinearGradient(x0, y0, x1, y1 float64, from, to PixelRGBA8) {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			var t float64
			if lenSq > 0 {
				px, py := float64(x)-x0, float64(y)-y0
				t = clamp01((px*dx + py*dy) / lenSq)
			}
			rgb := lerpColor(PixelRGB(from), PixelRGB(to), t)
			a := clampByte(int(math.Round(float64(from.A) + (float64(to.A)-float64(from.A))*clamp01(t))))
			b.SetPixel(x, y, PixelRGBA8{R: rgb.R, G: rgb.G, B: rgb.B, A: a})
		}
	}
}

// FillRadialGradient fills the buffer by lerping inner->outer color based
// on normalized distance from (cx,cy), clamped at radius. radius must be
// > 0.
func (b *ImageBuffer) FillRadialGradient(cx, cy, radius float64, inner, outer PixelRGBA8) error {
	if radius <= 0 {
		return errRadialGradientRadius
	}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Sqrt(dx*dx + dy*dy)
			t := clamp01(dist / radius)
			rgb := lerpColor(PixelRGB(inner), PixelRGB(outer), t)
			a := clampByte(int(math.Round(float64(inner.A) + (float64(outer.A)-float64(inner.A))*t)))
			b.SetPixel(x, y, PixelRGBA8{R: rgb.R, G: rgb.G, B: rgb.B, A: a})
		}
	}
	return nil
}

// FillChecker fills the buffer with a checkerboard of two colors. cellWidth
// and cellHeight must both be > 0.
func (b *ImageBuffer) FillChecker(cellWidth, cellHeight, offsetX, offsetY int, first, second PixelRGBA8) error {
	if cellWidth <= 0 || cellHeight <= 0 {
		return errCheckerCellSize
	}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			cx := floorDiv(x+offsetX, cellWidth)
			cy := floorDiv(y+offsetY, cellHeight)
			if (cx+cy)%2 == 0 {
				b.SetPixel(x, y, first)
			} else {
				b.SetPixel(x, y, second)
			}
		}
	}
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AddNoise adds uniform random jitter to the buffer's existing content.
// amount in [0,1] controls blend strength; monochrome applies the same
// jitter value across R/G/B; affectAlpha also jitters alpha.
func (b *ImageBuffer) AddNoise(amount float64, seed int64, monochrome, affectAlpha bool) {
	mix := clamp01(amount)
	rng := newSeededRand(seed)
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			src := b.GetPixel(x, y)
			jr := rng.Float64()*2 - 1
			jg, jb, ja := jr, jr, jr
			if !monochrome {
				jg = rng.Float64()*2 - 1
				jb = rng.Float64()*2 - 1
				ja = rng.Float64()*2 - 1
			}
			out := PixelRGBA8{
				R: clampByte(int(math.Round(float64(src.R) + jr*255*mix))),
				G: clampByte(int(math.Round(float64(src.G) + jg*255*mix))),
				B: clampByte(int(math.Round(float64(src.B) + jb*255*mix))),
				A: src.A,
			}
			if affectAlpha {
				out.A = clampByte(int(math.Round(float64(src.A) + ja*255*mix)))
			}
			b.SetPixel(x, y, out)
		}
	}
}
