package compose

import "math"

// Mode identifies a blend mode applied to linearized RGB channels.
type Mode int

// The supported blend modes. Values operate on [0,1] linear-light channels
// where d is the destination (backdrop) value and s is the source value.
const (
	Normal Mode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	Add
	Subtract
	Difference
	ColorDodge
)

// Blend applies mode to a single destination/source channel pair, both in
// [0,1] linear light, returning the blended linear value.
func Blend(mode Mode, d, s float64) float64 {
	switch mode {
	case Normal:
		return s
	case Multiply:
		return d * s
	case Screen:
		return 1 - (1-d)*(1-s)
	case Overlay:
		if d < 0.5 {
			return 2 * d * s
		}
		return 1 - 2*(1-d)*(1-s)
	case Darken:
		return math.Min(d, s)
	case Lighten:
		return math.Max(d, s)
	case Add:
		return math.Min(1, d+s)
	case Subtract:
		return math.Max(0, d-s)
	case Difference:
		return math.Abs(d - s)
	case ColorDodge:
		if d >= 1 {
			return 1
		}
		if s >= 1 {
			return 1
		}
		return math.Min(1, d/(1-s))
	default:
		return s
	}
}

// RGB holds a linear-light RGB triple.
type RGB struct {
	R, G, B float64
}

// Over computes the Porter-Duff "over" compositing of a source pixel onto a
// destination pixel, both already linearized, following §4.8's formula:
// the blend mode is applied to produce a blended color b, and the final
// output recombines d, s and b weighted by their effective alphas using
// premultiplied math before dividing out by the output alpha.
//
// sa is the effective source alpha (straight alpha * layer opacity * mask
// factor); da is the destination's straight alpha. Returns the output
// linear RGB and output alpha. The caller is responsible for skipping this
// call entirely when sa<=0, per §4.8 step 1.
func Over(mode Mode, d, s RGB, da, sa float64) (out RGB, outA float64) {
	b := RGB{
		R: Blend(mode, d.R, s.R),
		G: Blend(mode, d.G, s.G),
		B: Blend(mode, d.B, s.B),
	}
	outA = sa + da*(1-sa)
	if outA <= 0 {
		return RGB{}, 0
	}
	premR := d.R*da*(1-sa) + s.R*sa*(1-da) + b.R*sa*da
	premG := d.G*da*(1-sa) + s.G*sa*(1-da) + b.G*sa*da
	premB := d.B*da*(1-sa) + s.B*sa*(1-da) + b.B*sa*da
	out = RGB{R: premR / outA, G: premG / outA, B: premB / outA}
	return out, outA
}
