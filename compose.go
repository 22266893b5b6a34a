package imageflow

import (
	"math"

	"github.com/imageflow/imageflow/internal/compose"
)

// Composite flattens the document's layer tree into a single ImageBuffer
// the size of the canvas, using Porter-Duff "over" compositing in
// linearized sRGB, per §4.8.
func (d *Document) Composite() *ImageBuffer {
	out, _ := NewImageBuffer(d.width, d.height, PixelRGBA8{})
	compositeGroupInto(out, d.root, d.width, d.height, 0, 0)
	return out
}

// compositeGroupInto composites a group's children, depth-first
// post-order: each child group is first flattened into its own buffer the
// size of the document, then that buffer (or a layer's own image) is
// composited onto dst using the child's opacity/blend/mask/offset/
// transform.
func compositeGroupInto(dst *ImageBuffer, group *LayerGroup, canvasW, canvasH, parentOffX, parentOffY int) {
	for _, child := range group.Children() {
		if !child.Visible() || child.Opacity() <= 0 {
			continue
		}
		offX, offY := child.Offset()
		offX += parentOffX
		offY += parentOffY

		switch node := child.(type) {
		case *Layer:
			compositeSurfaceOnto(dst, node.Image(), node, offX, offY)
		case *LayerGroup:
			groupBuf, _ := NewImageBuffer(canvasW, canvasH, PixelRGBA8{})
			compositeGroupInto(groupBuf, node, canvasW, canvasH, 0, 0)
			compositeSurfaceOnto(dst, groupBuf, node, offX, offY)
		}
	}
}

// compositeSurfaceOnto composites src onto dst with node's opacity, blend
// mode and mask, applying offX/offY as a pre-translation and node's affine
// transform (if non-identity) as an inverse-sampling warp.
func compositeSurfaceOnto(dst *ImageBuffer, src *ImageBuffer, node LayerNode, offX, offY int) {
	mode := node.BlendMode()
	opacity := node.Opacity()
	mask := node.Mask()
	transform := node.Transform()
	identity := transform.IsIdentity(1e-9)

	for dy := 0; dy < dst.Height(); dy++ {
		for dx := 0; dx < dst.Width(); dx++ {
			var srcPixel PixelRGBA8
			var ok bool

			if identity {
				sx, sy := dx-offX, dy-offY
				if !src.InBounds(sx, sy) {
					continue
				}
				srcPixel = src.GetPixel(sx, sy)
				ok = true
			} else {
				fx, fy := transform.ApplyInverse(float64(dx-offX), float64(dy-offY))
				srcPixel, ok = sampleBilinearClamped(src, fx, fy)
			}
			if !ok {
				continue
			}

			maskFactor := 1.0
			if mask != nil {
				if mask.InBounds(dx, dy) {
					maskFactor = compose.ByteToUnit(mask.GetPixel(dx, dy).R)
				}
			}

			sa := compose.ByteToUnit(srcPixel.A) * opacity * maskFactor
			if sa <= 0 {
				continue
			}
			dstPixel := dst.GetPixel(dx, dy)
			da := compose.ByteToUnit(dstPixel.A)

			dLin := compose.RGB{
				R: compose.ToLinear(compose.ByteToUnit(dstPixel.R)),
				G: compose.ToLinear(compose.ByteToUnit(dstPixel.G)),
				B: compose.ToLinear(compose.ByteToUnit(dstPixel.B)),
			}
			sLin := compose.RGB{
				R: compose.ToLinear(compose.ByteToUnit(srcPixel.R)),
				G: compose.ToLinear(compose.ByteToUnit(srcPixel.G)),
				B: compose.ToLinear(compose.ByteToUnit(srcPixel.B)),
			}

			outLin, outA := compose.Over(mode, dLin, sLin, da, sa)
			dst.SetPixel(dx, dy, PixelRGBA8{
				R: compose.UnitToByte(compose.ToSRGB(outLin.R)),
				G: compose.UnitToByte(compose.ToSRGB(outLin.G)),
				B: compose.UnitToByte(compose.ToSRGB(outLin.B)),
				A: compose.UnitToByte(outA),
			})
		}
	}
}

// sampleBilinearClamped bilinearly samples src at floating point
// coordinates (fx,fy), clamping to the image edge. Returns ok=false when
// the inverse-transformed point falls entirely outside the source image,
// per §4.8's "contribute nothing" rule for out-of-range inverse samples.
func sampleBilinearClamped(src *ImageBuffer, fx, fy float64) (PixelRGBA8, bool) {
	w, h := src.Width(), src.Height()
	if fx < -1 || fy < -1 || fx > float64(w) || fy > float64(h) {
		return PixelRGBA8{}, false
	}
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	sample := func(x, y int) PixelRGBA8 {
		if x < 0 {
			x = 0
		}
		if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}
		return src.GetPixel(x, y)
	}

	p00 := sample(x0, y0)
	p10 := sample(x0+1, y0)
	p01 := sample(x0, y0+1)
	p11 := sample(x0+1, y0+1)

	lerpF := func(a, b float64, t float64) float64 {
		return a*(1-t) + b*t
	}
	lerpChan := func(a00, a10, a01, a11 uint8) float64 {
		top := lerpF(float64(a00), float64(a10), tx)
		bot := lerpF(float64(a01), float64(a11), tx)
		return lerpF(top, bot, ty)
	}

	return PixelRGBA8{
		R: float64touint8(lerpChan(p00.R, p10.R, p01.R, p11.R)),
		G: float64touint8(lerpChan(p00.G, p10.G, p01.G, p11.G)),
		B: float64touint8(lerpChan(p00.B, p10.B, p01.B, p11.B)),
		A: float64touint8(lerpChan(p00.A, p10.A, p01.A, p11.A)),
	}, true
}

func float64touint8(v float64) uint8 {
	return clampByte(int(math.Round(v)))
}
