// Package resample implements the nearest/bilinear/box-area resize kernels
// against the small [Image] capability interface, using the half-pixel
// center coordinate convention throughout.
package resample

import "math"

// Filter selects the resampling kernel.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
	BoxArea
)

// Pixel is a four-channel 8-bit pixel; channels are resampled
// independently in 8-bit sRGB space (no linearization), a documented
// approximation per §4.6/§9.
type Pixel struct {
	R, G, B, A uint8
}

// Image is the minimal read interface resample needs from a source
// surface.
type Image interface {
	Width() int
	Height() int
	At(x, y int) Pixel
}

// Buffer is a simple row-major output store implementing Image, used both
// as resample's own output type and for testing.
type Buffer struct {
	W, H int
	Pix  []Pixel
}

// NewBuffer allocates a W x H buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]Pixel, w*h)}
}

func (b *Buffer) Width() int  { return b.W }
func (b *Buffer) Height() int { return b.H }
func (b *Buffer) At(x, y int) Pixel {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return Pixel{}
	}
	return b.Pix[y*b.W+x]
}
func (b *Buffer) Set(x, y int, p Pixel) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = p
}

// Resize returns a new Buffer of size newW x newH sampled from src using
// filter. Returns a pixel-identical copy when dimensions are unchanged
// (identity fast path, §8's resample-identity invariant).
func Resize(src Image, newW, newH int, filter Filter) *Buffer {
	srcW, srcH := src.Width(), src.Height()
	out := NewBuffer(newW, newH)

	if newW == srcW && newH == srcH {
		for y := 0; y < srcH; y++ {
			for x := 0; x < srcW; x++ {
				out.Set(x, y, src.At(x, y))
			}
		}
		return out
	}

	scaleX := float64(srcW) / float64(newW)
	scaleY := float64(srcH) / float64(newH)

	switch filter {
	case Nearest:
		resizeNearest(src, out, scaleX, scaleY)
	case Bilinear:
		resizeBilinear(src, out, scaleX, scaleY)
	case BoxArea:
		resizeBoxArea(src, out, scaleX, scaleY)
	default:
		resizeNearest(src, out, scaleX, scaleY)
	}
	return out
}

// srcCoord maps a destination pixel index to the source coordinate of its
// pixel center, using the half-pixel-center convention mandated by §4.6.
func srcCoord(destIdx int, scale float64) float64 {
	return (float64(destIdx)+0.5)*scale - 0.5
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorToInt(v float64) int {
	return int(math.Floor(v))
}

func toByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func resizeNearest(src Image, out *Buffer, scaleX, scaleY float64) {
	srcW, srcH := src.Width(), src.Height()
	for y := 0; y < out.H; y++ {
		sy := clampInt(int(math.Round(srcCoord(y, scaleY))), 0, srcH-1)
		for x := 0; x < out.W; x++ {
			sx := clampInt(int(math.Round(srcCoord(x, scaleX))), 0, srcW-1)
			out.Set(x, y, src.At(sx, sy))
		}
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func resizeBilinear(src Image, out *Buffer, scaleX, scaleY float64) {
	srcW, srcH := src.Width(), src.Height()
	for y := 0; y < out.H; y++ {
		fy := srcCoord(y, scaleY)
		y0 := clampInt(floorToInt(fy), 0, srcH-1)
		y1 := clampInt(y0+1, 0, srcH-1)
		ty := fy - float64(floorToInt(fy))
		if fy < 0 {
			ty = 0
		}
		for x := 0; x < out.W; x++ {
			fx := srcCoord(x, scaleX)
			x0 := clampInt(floorToInt(fx), 0, srcW-1)
			x1 := clampInt(x0+1, 0, srcW-1)
			tx := fx - float64(floorToInt(fx))
			if fx < 0 {
				tx = 0
			}

			p00 := src.At(x0, y0)
			p10 := src.At(x1, y0)
			p01 := src.At(x0, y1)
			p11 := src.At(x1, y1)

			mix := func(a, b, c, d uint8) uint8 {
				top := lerp(float64(a), float64(b), tx)
				bot := lerp(float64(c), float64(d), tx)
				return toByte(lerp(top, bot, ty))
			}

			out.Set(x, y, Pixel{
				R: mix(p00.R, p10.R, p01.R, p11.R),
				G: mix(p00.G, p10.G, p01.G, p11.G),
				B: mix(p00.B, p10.B, p01.B, p11.B),
				A: mix(p00.A, p10.A, p01.A, p11.A),
			})
		}
	}
}

// resizeBoxArea implements the area-overlap-weighted box filter: the
// footprint is max(1, scale) wide/tall, centered on the source coordinate;
// each covered source pixel is weighted by the overlap area between its
// unit square and the footprint. Falls back to nearest when total weight
// is zero (degenerate case, e.g. footprint entirely between integer
// boundaries due to floating point error).
func resizeBoxArea(src Image, out *Buffer, scaleX, scaleY float64) {
	srcW, srcH := src.Width(), src.Height()
	footW := math.Max(1, scaleX)
	footH := math.Max(1, scaleY)

	for y := 0; y < out.H; y++ {
		cy := srcCoord(y, scaleY) + 0.5
		top := cy - footH/2
		bottom := cy + footH/2
		y0 := clampInt(floorToInt(top), -1, srcH)
		y1 := clampInt(floorToInt(bottom), -1, srcH)

		for x := 0; x < out.W; x++ {
			cx := srcCoord(x, scaleX) + 0.5
			left := cx - footW/2
			right := cx + footW/2
			x0 := clampInt(floorToInt(left), -1, srcW)
			x1 := clampInt(floorToInt(right), -1, srcW)

			var totalWeight float64
			var sumR, sumG, sumB, sumA float64

			for sy := y0; sy <= y1; sy++ {
				wy := overlap1D(float64(sy), float64(sy+1), top, bottom)
				if wy <= 0 {
					continue
				}
				for sx := x0; sx <= x1; sx++ {
					wx := overlap1D(float64(sx), float64(sx+1), left, right)
					if wx <= 0 {
						continue
					}
					weight := wx * wy
					px, py := clampInt(sx, 0, srcW-1), clampInt(sy, 0, srcH-1)
					p := src.At(px, py)
					sumR += weight * float64(p.R)
					sumG += weight * float64(p.G)
					sumB += weight * float64(p.B)
					sumA += weight * float64(p.A)
					totalWeight += weight
				}
			}

			if totalWeight <= 0 {
				sx := clampInt(int(math.Round(srcCoord(x, scaleX))), 0, srcW-1)
				sy := clampInt(int(math.Round(srcCoord(y, scaleY))), 0, srcH-1)
				out.Set(x, y, src.At(sx, sy))
				continue
			}

			out.Set(x, y, Pixel{
				R: toByte(sumR / totalWeight),
				G: toByte(sumG / totalWeight),
				B: toByte(sumB / totalWeight),
				A: toByte(sumA / totalWeight),
			})
		}
	}
}

// overlap1D returns the length of overlap between [aLo,aHi) and
// [bLo,bHi).
func overlap1D(aLo, aHi, bLo, bHi float64) float64 {
	lo := math.Max(aLo, bLo)
	hi := math.Min(aHi, bHi)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
