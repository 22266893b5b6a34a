package ops

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	imageflow "github.com/imageflow/imageflow"
)

// parseCurvePoints parses "x0,y0;x1,y1;..." into a sorted-by-X control
// point list, requiring at least two points, matching the reference CLI's
// parseCurvePoints/buildCurveLut pair.
func parseCurvePoints(text string) ([]imageflow.CurvePoint, error) {
	tokens := splitNonEmpty(text, ';')
	points := make([]imageflow.CurvePoint, 0, len(tokens))
	for _, tok := range tokens {
		x, y, err := parseIntPair(tok)
		if err != nil {
			return nil, err
		}
		points = append(points, imageflow.CurvePoint{X: clampIntTo255(x), Y: clampIntTo255(y)})
	}
	if len(points) < 2 {
		return nil, errors.New("curve requires at least 2 points in x0,y0;x1,y1;...")
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points, nil
}

func clampIntTo255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func curveLUTOr(kv KV, key string) (*[256]byte, error) {
	v, ok := kv.get(key)
	if !ok {
		return nil, nil
	}
	points, err := parseCurvePoints(v)
	if err != nil {
		return nil, err
	}
	lut := imageflow.BuildCurveLUT(points)
	return &lut, nil
}

// effectHandlers implements the §4.9 effect suite as op actions, grounded
// on the reference CLI's tryApplyEffectsOperation dispatch table
// (apply-effect/gaussian-blur/edge-detect/morphology/gamma/levels/curves/
// fractal-noise/hatch/pencil-strokes/replace-color/channel-mix).
var effectHandlers = map[string]func(*imageflow.Document, KV) error{
	"apply-effect": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("apply-effect", "path", "effect"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		switch strings.ToLower(kv["effect"]) {
		case "grayscale":
			layer.Image().Grayscale()
			return nil
		case "sepia":
			strength, err := kv.floatOr("strength", 1)
			if err != nil {
				return err
			}
			layer.Image().Sepia(strength)
			return nil
		case "invert":
			preserveAlpha, err := kv.boolOr("preserve_alpha", true)
			if err != nil {
				return err
			}
			layer.Image().Invert(preserveAlpha)
			return nil
		case "threshold":
			threshold, err := kv.intOr("threshold", 128)
			if err != nil {
				return err
			}
			lo, err := parseRGBA(kv.str("lo", "0,0,0,255"), true)
			if err != nil {
				return err
			}
			hi, err := parseRGBA(kv.str("hi", "255,255,255,255"), true)
			if err != nil {
				return err
			}
			layer.Image().Threshold(threshold, toPixel(lo), toPixel(hi))
			return nil
		default:
			return errors.Errorf("unsupported effect: %s", kv["effect"])
		}
	},

	"gaussian-blur": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("gaussian-blur", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		radius, err := kv.intOr("radius", 3)
		if err != nil {
			return err
		}
		sigma, err := kv.floatOr("sigma", 0)
		if err != nil {
			return err
		}
		buf.GaussianBlur(radius, sigma)
		return nil
	},

	"edge-detect": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("edge-detect", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		keepAlpha, err := kv.boolOr("keep_alpha", true)
		if err != nil {
			return err
		}
		switch strings.ToLower(kv.str("method", "sobel")) {
		case "sobel":
			buf.SobelEdges(keepAlpha)
			return nil
		case "canny":
			low, err := kv.intOr("low", 40)
			if err != nil {
				return err
			}
			high, err := kv.intOr("high", 90)
			if err != nil {
				return err
			}
			buf.CannyEdges(low, high, keepAlpha)
			return nil
		default:
			return errors.New("edge-detect method must be sobel or canny")
		}
	},

	"morphology": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("morphology", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		radius, err := kv.intOr("radius", 1)
		if err != nil {
			return err
		}
		iterations, err := kv.intOr("iterations", 1)
		if err != nil {
			return err
		}
		return buf.Morphology(imageflow.MorphologyOp(strings.ToLower(kv.str("op", "dilate"))), radius, iterations)
	},

	"gamma": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("gamma", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		gammaDefault, err := kv.floatOr("gamma", 1)
		if err != nil {
			return err
		}
		gamma, err := kv.floatOr("value", gammaDefault)
		if err != nil {
			return err
		}
		return buf.Gamma(gamma)
	},

	"levels": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("levels", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		inBlack, err := kv.intOr("in_black", 0)
		if err != nil {
			return err
		}
		inWhite, err := kv.intOr("in_white", 255)
		if err != nil {
			return err
		}
		midGamma, err := kv.floatOr("gamma", 1)
		if err != nil {
			return err
		}
		outBlack, err := kv.intOr("out_black", 0)
		if err != nil {
			return err
		}
		outWhite, err := kv.intOr("out_white", 255)
		if err != nil {
			return err
		}
		return buf.Levels(inBlack, inWhite, midGamma, outBlack, outWhite)
	},

	"curves": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("curves", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		rgbPoints := []imageflow.CurvePoint{{X: 0, Y: 0}, {X: 255, Y: 255}}
		if v, ok := kv.get("rgb"); ok {
			if rgbPoints, err = parseCurvePoints(v); err != nil {
				return err
			}
		}
		rgbLUT := imageflow.BuildCurveLUT(rgbPoints)
		rLUT, err := curveLUTOr(kv, "r")
		if err != nil {
			return err
		}
		gLUT, err := curveLUTOr(kv, "g")
		if err != nil {
			return err
		}
		bLUT, err := curveLUTOr(kv, "b")
		if err != nil {
			return err
		}
		buf.Curves(rgbLUT, rLUT, gLUT, bLUT)
		return nil
	},

	"fractal-noise": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("fractal-noise", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		scale, err := kv.floatOr("scale", 64)
		if err != nil {
			return err
		}
		octaves, err := kv.intOr("octaves", 5)
		if err != nil {
			return err
		}
		lacunarity, err := kv.floatOr("lacunarity", 2)
		if err != nil {
			return err
		}
		gain, err := kv.floatOr("gain", 0.5)
		if err != nil {
			return err
		}
		amount, err := kv.floatOr("amount", 0.2)
		if err != nil {
			return err
		}
		seed, err := kv.intOr("seed", 1337)
		if err != nil {
			return err
		}
		monochrome, err := kv.boolOr("monochrome", true)
		if err != nil {
			return err
		}
		buf.FractalNoise(scale, octaves, lacunarity, gain, amount, uint32(seed), monochrome)
		return nil
	},

	"hatch": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("hatch", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		spacing, err := kv.intOr("spacing", 8)
		if err != nil {
			return err
		}
		lineWidth, err := kv.intOr("line_width", 1)
		if err != nil {
			return err
		}
		ink, err := parseRGBA(kv.str("ink", "28,28,28,255"), true)
		if err != nil {
			return err
		}
		opacity, err := kv.floatOr("opacity", 0.9)
		if err != nil {
			return err
		}
		preserveHighlights, err := kv.boolOr("preserve_highlights", true)
		if err != nil {
			return err
		}
		buf.Hatch(spacing, lineWidth, toPixel(ink), opacity, preserveHighlights)
		return nil
	},

	"pencil-strokes": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("pencil-strokes", "path"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		spacing, err := kv.intOr("spacing", 8)
		if err != nil {
			return err
		}
		length, err := kv.intOr("length", 14)
		if err != nil {
			return err
		}
		thickness, err := kv.intOr("thickness", 1)
		if err != nil {
			return err
		}
		angle, err := kv.floatOr("angle", 28)
		if err != nil {
			return err
		}
		angleJitter, err := kv.floatOr("angle_jitter", 26)
		if err != nil {
			return err
		}
		jitter, err := kv.intOr("jitter", 2)
		if err != nil {
			return err
		}
		ink, err := parseRGBA(kv.str("ink", "26,26,26,255"), true)
		if err != nil {
			return err
		}
		opacity, err := kv.floatOr("opacity", 0.22)
		if err != nil {
			return err
		}
		minDarkness, err := kv.floatOr("min_darkness", 0.15)
		if err != nil {
			return err
		}
		seed, err := kv.intOr("seed", 1337)
		if err != nil {
			return err
		}
		buf.PencilStrokes(imageflow.PencilStrokesParams{
			Spacing:        spacing,
			Length:         length,
			Thickness:      thickness,
			AngleDegrees:   angle,
			AngleJitterDeg: angleJitter,
			PositionJitter: jitter,
			Ink:            toPixel(ink),
			Opacity:        opacity,
			MinDarkness:    minDarkness,
			Seed:           uint32(seed),
		})
		return nil
	},

	"replace-color": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("replace-color", "path", "from", "to"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		from, err := parseRGBA(kv["from"], true)
		if err != nil {
			return err
		}
		to, err := parseRGBA(kv["to"], true)
		if err != nil {
			return err
		}
		tolerance, err := kv.floatOr("tolerance", 36)
		if err != nil {
			return err
		}
		softness, err := kv.floatOr("softness", 24)
		if err != nil {
			return err
		}
		preserveLuma, err := kv.boolOr("preserve_luma", true)
		if err != nil {
			return err
		}
		layer.Image().ReplaceColor(toPixel(from), toPixel(to), tolerance, softness, preserveLuma)
		return nil
	},

	"channel-mix": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("channel-mix", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		matrix := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
		fields := [9]string{"rr", "rg", "rb", "gr", "gg", "gb", "br", "bg", "bb"}
		for i, key := range fields {
			v, err := kv.floatOr(key, matrix[i])
			if err != nil {
				return err
			}
			matrix[i] = v
		}
		clampMin, err := kv.floatOr("min", 0)
		if err != nil {
			return err
		}
		clampMax, err := kv.floatOr("max", 255)
		if err != nil {
			return err
		}
		layer.Image().ChannelMix(matrix, clampMin, clampMax)
		return nil
	},
}
