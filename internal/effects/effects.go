// Package effects implements the pixel-effects suite: tone adjustments,
// convolution-based edge detection, morphology, procedural noise, and the
// stylized hatch/pencil renderers. Every effect reads and writes through
// the [Buffer] interface so the root package can apply them directly to an
// ImageBuffer without an import cycle.
package effects

import (
	"math"
	"math/rand"
)

// Pixel is a straight-alpha 8-bit RGBA sample.
type Pixel struct {
	R, G, B, A uint8
}

// Buffer is the minimal pixel store every effect operates on.
type Buffer interface {
	Width() int
	Height() int
	At(x, y int) Pixel
	Set(x, y int, p Pixel)
}

// Image is a standalone Buffer implementation used for intermediate
// results (blur passes, morphology iterations, edge maps).
type Image struct {
	W, H int
	Pix  []Pixel
}

// NewImage allocates a zeroed image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]Pixel, w*h)}
}

func (im *Image) Width() int  { return im.W }
func (im *Image) Height() int { return im.H }
func (im *Image) At(x, y int) Pixel {
	if x < 0 || x >= im.W || y < 0 || y >= im.H {
		return Pixel{}
	}
	return im.Pix[y*im.W+x]
}
func (im *Image) Set(x, y int, p Pixel) {
	if x < 0 || x >= im.W || y < 0 || y >= im.H {
		return
	}
	im.Pix[y*im.W+x] = p
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sampleClamped(b Buffer, x, y int) Pixel {
	if x < 0 {
		x = 0
	}
	if x >= b.Width() {
		x = b.Width() - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= b.Height() {
		y = b.Height() - 1
	}
	return b.At(x, y)
}

func lerpPixel(a, b Pixel, t float64) Pixel {
	t = clamp01(t)
	inv := 1 - t
	mix := func(av, bv uint8) uint8 {
		return clampByte(int(math.Round(inv*float64(av) + t*float64(bv))))
	}
	return Pixel{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func luma01(p Pixel) float64 {
	return (0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)) / 255
}

func rgbDistance(a, b Pixel) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Grayscale replaces each pixel's RGB with its luma, leaving alpha intact.
func Grayscale(buf Buffer) {
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			gray := clampByte(int(math.Round(0.299*float64(src.R) + 0.587*float64(src.G) + 0.114*float64(src.B))))
			buf.Set(x, y, Pixel{R: gray, G: gray, B: gray, A: src.A})
		}
	}
}

// Sepia lerps each pixel toward the standard sepia matrix by strength in
// [0,1].
func Sepia(buf Buffer, strength float64) {
	s := clamp01(strength)
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			r, g, b := float64(src.R), float64(src.G), float64(src.B)
			sr := 0.393*r + 0.769*g + 0.189*b
			sg := 0.349*r + 0.686*g + 0.168*b
			sb := 0.272*r + 0.534*g + 0.131*b
			buf.Set(x, y, Pixel{
				R: clampByte(int(math.Round((1-s)*r + s*sr))),
				G: clampByte(int(math.Round((1-s)*g + s*sg))),
				B: clampByte(int(math.Round((1-s)*b + s*sb))),
				A: src.A,
			})
		}
	}
}

// Invert complements each RGB channel. Alpha is preserved unless
// preserveAlpha is false, in which case it is inverted too.
func Invert(buf Buffer, preserveAlpha bool) {
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			a := src.A
			if !preserveAlpha {
				a = 255 - src.A
			}
			buf.Set(x, y, Pixel{R: 255 - src.R, G: 255 - src.G, B: 255 - src.B, A: a})
		}
	}
}

// Threshold emits lo or hi per pixel depending on whether its luma is below
// or at/above threshold (clamped to [0,255]).
func Threshold(buf Buffer, threshold int, lo, hi Pixel) {
	t := threshold
	if t < 0 {
		t = 0
	}
	if t > 255 {
		t = 255
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			l := int(math.Round(0.299*float64(src.R) + 0.587*float64(src.G) + 0.114*float64(src.B)))
			if l >= t {
				buf.Set(x, y, hi)
			} else {
				buf.Set(x, y, lo)
			}
		}
	}
}

// GaussianBlur applies a separable Gaussian blur of the given radius. The
// effective sigma is max(sigma, 0.3*radius+0.8), so a non-positive sigma
// derives it from the radius alone.
func GaussianBlur(buf Buffer, radius int, sigma float64) {
	if radius <= 0 {
		return
	}
	effectiveSigma := math.Max(sigma, 0.3*float64(radius)+0.8)

	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-float64(i*i) / (2 * effectiveSigma * effectiveSigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	w, h := buf.Width(), buf.Height()
	tmp := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var ar, ag, ab, aa float64
			for k := -radius; k <= radius; k++ {
				s := sampleClamped(buf, x+k, y)
				wk := kernel[k+radius]
				ar += wk * float64(s.R)
				ag += wk * float64(s.G)
				ab += wk * float64(s.B)
				aa += wk * float64(s.A)
			}
			tmp.Set(x, y, Pixel{clampByte(int(math.Round(ar))), clampByte(int(math.Round(ag))), clampByte(int(math.Round(ab))), clampByte(int(math.Round(aa)))})
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var ar, ag, ab, aa float64
			for k := -radius; k <= radius; k++ {
				s := sampleClamped(tmp, x, y+k)
				wk := kernel[k+radius]
				ar += wk * float64(s.R)
				ag += wk * float64(s.G)
				ab += wk * float64(s.B)
				aa += wk * float64(s.A)
			}
			buf.Set(x, y, Pixel{clampByte(int(math.Round(ar))), clampByte(int(math.Round(ag))), clampByte(int(math.Round(ab))), clampByte(int(math.Round(aa)))})
		}
	}
}

var sobelKX = [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
var sobelKY = [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

// Sobel replaces the buffer with a monochrome gradient-magnitude edge map.
func Sobel(buf Buffer, keepAlpha bool) {
	w, h := buf.Width(), buf.Height()
	out := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for j := -1; j <= 1; j++ {
				for i := -1; i <= 1; i++ {
					l := luma01(sampleClamped(buf, x+i, y+j))
					gx += float64(sobelKX[j+1][i+1]) * l
					gy += float64(sobelKY[j+1][i+1]) * l
				}
			}
			mag := math.Sqrt(gx*gx + gy*gy)
			m := clampByte(int(math.Round(255 * math.Min(1, mag/4))))
			a := uint8(255)
			if keepAlpha {
				a = buf.At(x, y).A
			}
			out.Set(x, y, Pixel{R: m, G: m, B: m, A: a})
		}
	}
	copyInto(buf, out)
}

func copyInto(dst Buffer, src *Image) {
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
}

// Canny replaces the buffer with a binary edge map computed by Sobel
// gradients, non-maximum suppression, and hysteresis thresholding between
// low and high (both in [0,255]).
func Canny(buf Buffer, lowThreshold, highThreshold int, keepAlpha bool) {
	w, h := buf.Width(), buf.Height()
	if w <= 0 || h <= 0 {
		return
	}
	idx := func(x, y int) int { return y*w + x }

	mag := make([]float64, w*h)
	dir := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sx, sy float64
			for j := -1; j <= 1; j++ {
				for i := -1; i <= 1; i++ {
					l := luma01(sampleClamped(buf, x+i, y+j))
					sx += float64(sobelKX[j+1][i+1]) * l
					sy += float64(sobelKY[j+1][i+1]) * l
				}
			}
			mag[idx(x, y)] = math.Sqrt(sx*sx + sy*sy)
			dir[idx(x, y)] = math.Atan2(sy, sx)
		}
	}

	nms := make([]float64, w*h)
	for y := 1; y+1 < h; y++ {
		for x := 1; x+1 < w; x++ {
			angle := dir[idx(x, y)] * 180 / math.Pi
			norm := angle
			if norm < 0 {
				norm += 180
			}
			var q, r float64
			switch {
			case (norm >= 0 && norm < 22.5) || (norm >= 157.5 && norm <= 180):
				q, r = mag[idx(x+1, y)], mag[idx(x-1, y)]
			case norm >= 22.5 && norm < 67.5:
				q, r = mag[idx(x+1, y-1)], mag[idx(x-1, y+1)]
			case norm >= 67.5 && norm < 112.5:
				q, r = mag[idx(x, y+1)], mag[idx(x, y-1)]
			default:
				q, r = mag[idx(x-1, y-1)], mag[idx(x+1, y+1)]
			}
			m := mag[idx(x, y)]
			if m >= q && m >= r {
				nms[idx(x, y)] = m
			}
		}
	}

	clampThresh := func(v int) float64 {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return float64(v) / 255
	}
	low := clampThresh(lowThreshold)
	high := clampThresh(highThreshold)

	edges := make([]byte, w*h)
	type point struct{ x, y int }
	var queue []point
	for y := 1; y+1 < h; y++ {
		for x := 1; x+1 < w; x++ {
			m := nms[idx(x, y)]
			if m >= high {
				edges[idx(x, y)] = 255
				queue = append(queue, point{x, y})
			} else if m >= low {
				edges[idx(x, y)] = 128
			}
		}
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				if i == 0 && j == 0 {
					continue
				}
				nx, ny := p.x+i, p.y+j
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				if edges[idx(nx, ny)] == 128 {
					edges[idx(nx, ny)] = 255
					queue = append(queue, point{nx, ny})
				}
			}
		}
	}

	out := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0)
			if edges[idx(x, y)] == 255 {
				v = 255
			}
			a := uint8(255)
			if keepAlpha {
				a = buf.At(x, y).A
			}
			out.Set(x, y, Pixel{R: v, G: v, B: v, A: a})
		}
	}
	copyInto(buf, out)
}

// Morphology applies iterations passes of min (erode) or max (dilate) over
// a disk of the given radius, independently per channel. op must be
// "erode" or "dilate".
func Morphology(buf Buffer, op string, radius, iterations int) error {
	if radius <= 0 || iterations <= 0 {
		return nil
	}
	dilate := op == "dilate"
	if !dilate && op != "erode" {
		return errMorphologyOp
	}
	w, h := buf.Width(), buf.Height()
	for iter := 0; iter < iterations; iter++ {
		out := NewImage(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				init := 0
				if !dilate {
					init = 255
				}
				bestR, bestG, bestB, bestA := init, init, init, init
				for j := -radius; j <= radius; j++ {
					for i := -radius; i <= radius; i++ {
						if i*i+j*j > radius*radius {
							continue
						}
						s := sampleClamped(buf, x+i, y+j)
						if dilate {
							bestR = max(bestR, int(s.R))
							bestG = max(bestG, int(s.G))
							bestB = max(bestB, int(s.B))
							bestA = max(bestA, int(s.A))
						} else {
							bestR = min(bestR, int(s.R))
							bestG = min(bestG, int(s.G))
							bestB = min(bestB, int(s.B))
							bestA = min(bestA, int(s.A))
						}
					}
				}
				out.Set(x, y, Pixel{uint8(bestR), uint8(bestG), uint8(bestB), uint8(bestA)})
			}
		}
		copyInto(buf, out)
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Gamma applies out = 255*(v/255)^(1/gamma) per RGB channel.
func Gamma(buf Buffer, gamma float64) error {
	if gamma <= 0 {
		return errGamma
	}
	invGamma := 1 / gamma
	mapChan := func(v uint8) uint8 {
		n := float64(v) / 255
		return clampByte(int(math.Round(255 * math.Pow(n, invGamma))))
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			buf.Set(x, y, Pixel{mapChan(src.R), mapChan(src.G), mapChan(src.B), src.A})
		}
	}
	return nil
}

// Levels linearly remaps [inBlack,inWhite] to [outBlack,outWhite] with a
// midtone gamma applied to the normalized input.
func Levels(buf Buffer, inBlack, inWhite int, midGamma float64, outBlack, outWhite int) error {
	inB, inW := float64(clampInt(inBlack, 0, 255)), float64(clampInt(inWhite, 0, 255))
	if inW <= inB {
		return errLevelsRange
	}
	if midGamma <= 0 {
		return errLevelsGamma
	}
	outB, outW := float64(clampInt(outBlack, 0, 255)), float64(clampInt(outWhite, 0, 255))

	mapLevel := func(v uint8) uint8 {
		t := (float64(v) - inB) / (inW - inB)
		t = clamp01(t)
		t = math.Pow(t, 1/midGamma)
		out := outB + (outW-outB)*t
		return clampByte(int(math.Round(out)))
	}
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			buf.Set(x, y, Pixel{mapLevel(src.R), mapLevel(src.G), mapLevel(src.B), src.A})
		}
	}
	return nil
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

// CurvePoint is one (x,y) control point of a piecewise-linear tone curve.
type CurvePoint struct{ X, Y int }

// BuildCurveLUT interpolates a sorted (by X) list of at least two control
// points into a 256-entry lookup table.
func BuildCurveLUT(points []CurvePoint) [256]byte {
	var lut [256]byte
	seg := 0
	for x := 0; x <= 255; x++ {
		for seg+1 < len(points) && x > points[seg+1].X {
			seg++
		}
		if seg+1 >= len(points) {
			lut[x] = byte(clampInt(points[len(points)-1].Y, 0, 255))
			continue
		}
		x0, y0 := points[seg].X, points[seg].Y
		x1, y1 := points[seg+1].X, points[seg+1].Y
		if x1 == x0 {
			lut[x] = byte(clampInt(y1, 0, 255))
			continue
		}
		t := float64(x-x0) / float64(x1-x0)
		y := int(math.Round(float64(y0) + float64(y1-y0)*t))
		lut[x] = clampByte(y)
	}
	return lut
}

// Curves applies a master RGB LUT, then optional per-channel LUTs.
func Curves(buf Buffer, rgbLUT [256]byte, rLUT, gLUT, bLUT *[256]byte) {
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			r, g, b := rgbLUT[src.R], rgbLUT[src.G], rgbLUT[src.B]
			if rLUT != nil {
				r = rLUT[r]
			}
			if gLUT != nil {
				g = gLUT[g]
			}
			if bLUT != nil {
				b = bLUT[b]
			}
			buf.Set(x, y, Pixel{r, g, b, src.A})
		}
	}
}

func hashUnitNoise(x, y int, seed uint32) float64 {
	n := uint32(x) * 374761393
	n ^= uint32(y) * 668265263
	n ^= seed * 2246822519
	n = (n ^ (n >> 13)) * 1274126177
	n ^= n >> 16
	return float64(n&0x00ffffff) / float64(0x01000000)
}

func smoothstep01(t float64) float64 {
	c := clamp01(t)
	return c * c * (3 - 2*c)
}

func valueNoise(x, y float64, seed uint32) float64 {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := x0+1, y0+1
	tx := smoothstep01(x - float64(x0))
	ty := smoothstep01(y - float64(y0))

	v00 := hashUnitNoise(x0, y0, seed)
	v10 := hashUnitNoise(x1, y0, seed)
	v01 := hashUnitNoise(x0, y1, seed)
	v11 := hashUnitNoise(x1, y1, seed)

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*ty
}

func fractalNoise(x, y float64, octaves int, lacunarity, gain float64, seed uint32) float64 {
	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for o := 0; o < octaves; o++ {
		octaveSeed := seed + uint32(o*1013)
		sum += amplitude * valueNoise(x*frequency, y*frequency, octaveSeed)
		norm += amplitude
		amplitude *= gain
		frequency *= lacunarity
	}
	if norm <= 0 {
		return 0
	}
	return sum / norm
}

// FractalNoise adds value noise, summed across octaves, to each channel.
// Non-monochrome mode decorrelates the three channels with fixed offsets.
func FractalNoise(buf Buffer, scale float64, octaves int, lacunarity, gain, amount float64, seed uint32, monochrome bool) {
	s := scale
	if s <= 0 {
		s = 64
	}
	oct := octaves
	if oct < 1 {
		oct = 1
	}
	lac := math.Max(1.01, lacunarity)
	g := math.Max(0.01, math.Min(1, gain))
	mix := clamp01(amount)

	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			nx, ny := float64(x)/s, float64(y)/s
			n := fractalNoise(nx, ny, oct, lac, g, seed)
			c := n*2 - 1
			dr := int(math.Round(c * 255 * mix))
			dg, db := dr, dr
			if !monochrome {
				n2 := fractalNoise(nx+37.2, ny+11.7, oct, lac, g, seed+97)
				n3 := fractalNoise(nx+73.9, ny+19.3, oct, lac, g, seed+211)
				dg = int(math.Round((n2*2 - 1) * 255 * mix))
				db = int(math.Round((n3*2 - 1) * 255 * mix))
			}
			buf.Set(x, y, Pixel{
				R: clampByte(int(src.R) + dr),
				G: clampByte(int(src.G) + dg),
				B: clampByte(int(src.B) + db),
				A: src.A,
			})
		}
	}
}

func hatchHit(x, y, spacing, width, mode int) bool {
	m := spacing
	if m < 1 {
		m = 1
	}
	w := width
	if w < 1 {
		w = 1
	}
	switch mode {
	case 0: // forward diagonal
		return ((x+y)%m+m)%m < w
	case 1: // backward diagonal
		return ((x-y)%m+m)%m < w
	case 2: // horizontal
		return ((y%m)+m)%m < w
	default: // vertical
		return ((x%m)+m)%m < w
	}
}

// Hatch lerps toward ink along four progressively darker diagonal/
// horizontal/vertical cross-hatches, with mix scaled by local darkness.
func Hatch(buf Buffer, spacing, lineWidth int, ink Pixel, opacity float64, preserveHighlights bool) {
	mixBase := clamp01(opacity)
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			darkness := 1 - luma01(src)
			if darkness <= 0.05 && preserveHighlights {
				continue
			}
			hit := false
			if darkness > 0.18 {
				hit = hit || hatchHit(x, y, spacing, lineWidth, 0)
			}
			if darkness > 0.35 {
				hit = hit || hatchHit(x, y, spacing+2, lineWidth, 1)
			}
			if darkness > 0.55 {
				hit = hit || hatchHit(x, y, spacing+4, lineWidth, 2)
			}
			if darkness > 0.75 {
				hit = hit || hatchHit(x, y, spacing+6, lineWidth, 3)
			}
			if !hit {
				continue
			}
			target := ink
			target.A = src.A
			buf.Set(x, y, lerpPixel(src, target, mixBase*darkness))
		}
	}
}

func blendPixelOver(buf Buffer, x, y int, color Pixel, alpha float64) {
	if x < 0 || x >= buf.Width() || y < 0 || y >= buf.Height() || alpha <= 0 {
		return
	}
	dst := buf.At(x, y)
	buf.Set(x, y, lerpPixel(dst, Pixel{color.R, color.G, color.B, dst.A}, clamp01(alpha)))
}

func drawSoftLine(buf Buffer, x0, y0, x1, y1 int, ink Pixel, opacity float64, thickness int) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	steps := max(1, max(dx, dy))
	invSteps := 1.0 / float64(steps)
	radius := max(0, thickness/2)

	for i := 0; i <= steps; i++ {
		t := float64(i) * invSteps
		x := int(math.Round(float64(x0) + float64(x1-x0)*t))
		y := int(math.Round(float64(y0) + float64(y1-y0)*t))
		for oy := -radius; oy <= radius; oy++ {
			for ox := -radius; ox <= radius; ox++ {
				d2 := float64(ox*ox + oy*oy)
				falloff := 1.0
				if radius != 0 {
					falloff = math.Max(0, 1-d2/float64((radius+1)*(radius+1)))
				}
				blendPixelOver(buf, x+ox, y+oy, ink, opacity*falloff)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PencilStrokesParams bundles the pencil-stroke effect's tunables.
type PencilStrokesParams struct {
	Spacing, Length, Thickness   int
	AngleDegrees, AngleJitterDeg float64
	PositionJitter               int
	Ink                          Pixel
	Opacity, MinDarkness         float64
	Seed                         uint32
}

// PencilStrokes stamps short soft-edged strokes over dark regions on a
// jittered grid, oriented along a base angle, using a seeded RNG for
// reproducibility.
func PencilStrokes(buf Buffer, p PencilStrokesParams) {
	step := max(1, p.Spacing)
	strokeLength := max(1, p.Length)
	jitter := max(0, p.PositionJitter)
	minDark := clamp01(p.MinDarkness)

	rng := rand.New(rand.NewSource(int64(p.Seed)))
	baseRad := p.AngleDegrees * math.Pi / 180

	for y := 0; y < buf.Height(); y += step {
		for x := 0; x < buf.Width(); x += step {
			sx := x
			sy := y
			if jitter > 0 {
				sx += rng.Intn(2*jitter+1) - jitter
				sy += rng.Intn(2*jitter+1) - jitter
			}
			if sx < 0 || sx >= buf.Width() || sy < 0 || sy >= buf.Height() {
				continue
			}

			darkness := 1 - luma01(buf.At(sx, sy))
			if darkness < minDark {
				continue
			}

			spawnChance := clamp01((darkness - minDark) / math.Max(0.0001, 1-minDark))
			if rng.Float64() > spawnChance {
				continue
			}

			angleJitter := (rng.Float64()*2 - 1) * p.AngleJitterDeg
			theta := baseRad + angleJitter*math.Pi/180
			half := float64(strokeLength) * 0.5
			x0 := int(math.Round(float64(sx) - math.Cos(theta)*half))
			y0 := int(math.Round(float64(sy) - math.Sin(theta)*half))
			x1 := int(math.Round(float64(sx) + math.Cos(theta)*half))
			y1 := int(math.Round(float64(sy) + math.Sin(theta)*half))
			strokeOpacity := clamp01(p.Opacity * (0.45 + darkness*0.9))
			drawSoftLine(buf, x0, y0, x1, y1, p.Ink, strokeOpacity, p.Thickness)
		}
	}
}

// ChannelMix applies a 3x3 RGB mix matrix (row-major: outR,outG,outB each
// from inR,inG,inB), clamping intermediate results to [clampMin,clampMax]
// before quantizing to bytes.
func ChannelMix(buf Buffer, matrix [9]float64, clampMin, clampMax float64) {
	minV, maxV := math.Min(clampMin, clampMax), math.Max(clampMin, clampMax)
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			r, g, b := float64(src.R), float64(src.G), float64(src.B)
			outR := matrix[0]*r + matrix[1]*g + matrix[2]*b
			outG := matrix[3]*r + matrix[4]*g + matrix[5]*b
			outB := matrix[6]*r + matrix[7]*g + matrix[8]*b
			outR = math.Max(minV, math.Min(maxV, outR))
			outG = math.Max(minV, math.Min(maxV, outG))
			outB = math.Max(minV, math.Min(maxV, outB))
			buf.Set(x, y, Pixel{
				clampByte(int(math.Round(outR))),
				clampByte(int(math.Round(outG))),
				clampByte(int(math.Round(outB))),
				src.A,
			})
		}
	}
}

// ReplaceColor lerps pixels within tolerance of from toward to, with a soft
// falloff band of width softness beyond the hard tolerance radius.
// preserveLuma rescales the replacement color to keep the source's luma.
func ReplaceColor(buf Buffer, from, to Pixel, tolerance, softness float64, preserveLuma bool) {
	hard := math.Max(0, tolerance)
	soft := math.Max(0, softness)
	softEnd := hard + soft

	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			src := buf.At(x, y)
			dist := rgbDistance(src, from)

			mix := 0.0
			if dist <= hard {
				mix = 1
			} else if softEnd > hard && dist < softEnd {
				mix = 1 - (dist-hard)/(softEnd-hard)
			}
			if mix <= 0 {
				continue
			}

			adjusted := to
			adjusted.A = src.A
			if preserveLuma {
				srcLuma := 0.299*float64(src.R) + 0.587*float64(src.G) + 0.114*float64(src.B)
				dstLuma := 0.299*float64(adjusted.R) + 0.587*float64(adjusted.G) + 0.114*float64(adjusted.B)
				if dstLuma > 0 {
					scale := srcLuma / dstLuma
					adjusted.R = clampByte(int(math.Round(scale * float64(adjusted.R))))
					adjusted.G = clampByte(int(math.Round(scale * float64(adjusted.G))))
					adjusted.B = clampByte(int(math.Round(scale * float64(adjusted.B))))
				}
			}
			buf.Set(x, y, lerpPixel(src, adjusted, mix))
		}
	}
}
