package ops

import (
	"strings"

	imageflow "github.com/imageflow/imageflow"
)

func toPixel(c rgba) imageflow.PixelRGBA8 {
	return imageflow.PixelRGBA8{R: c.r, G: c.g, B: c.b, A: c.a}
}

var generatorHandlers = map[string]func(*imageflow.Document, KV) error{
	"gradient-layer": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("gradient-layer", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		kind := strings.ToLower(kv.str("type", "linear"))
		from, err := parseRGBA(kv.str("from", "0,0,0,255"), true)
		if err != nil {
			return err
		}
		to, err := parseRGBA(kv.str("to", "255,255,255,255"), true)
		if err != nil {
			return err
		}
		buf := layer.Image()

		switch kind {
		case "linear":
			fx0, fy0 := 0.0, 0.0
			if v, ok := kv.get("from_point"); ok {
				if fx0, fy0, err = parseDoublePair(v); err != nil {
					return err
				}
			}
			tx0, ty0 := float64(buf.Width()-1), float64(buf.Height()-1)
			if v, ok := kv.get("to_point"); ok {
				if tx0, ty0, err = parseDoublePair(v); err != nil {
					return err
				}
			}
			buf.FillLinearGradient(fx0, fy0, tx0, ty0, toPixel(from), toPixel(to))
			return nil
		case "radial":
			cx, cy := float64(buf.Width())/2, float64(buf.Height())/2
			if v, ok := kv.get("center"); ok {
				if cx, cy, err = parseDoublePair(v); err != nil {
					return err
				}
			}
			radius := float64(minInt2(buf.Width(), buf.Height())) * 0.5
			if v, ok := kv.get("radius"); ok {
				if radius, err = parseDoubleStrict(v, "radius"); err != nil {
					return err
				}
			}
			return buf.FillRadialGradient(cx, cy, radius, toPixel(from), toPixel(to))
		default:
			return errGradientLayerType
		}
	},

	"checker-layer": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("checker-layer", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		cellWidthDefault, err := kv.intOr("cell", 32)
		if err != nil {
			return err
		}
		cellWidth, err := kv.intOr("cell_width", cellWidthDefault)
		if err != nil {
			return err
		}
		cellHeight, err := kv.intOr("cell_height", cellWidth)
		if err != nil {
			return err
		}
		a, err := parseRGBA(kv.str("a", "0,0,0,255"), true)
		if err != nil {
			return err
		}
		b, err := parseRGBA(kv.str("b", "255,255,255,255"), true)
		if err != nil {
			return err
		}
		offsetX, err := kv.intOr("offset_x", 0)
		if err != nil {
			return err
		}
		offsetY, err := kv.intOr("offset_y", 0)
		if err != nil {
			return err
		}
		return layer.Image().FillChecker(cellWidth, cellHeight, offsetX, offsetY, toPixel(a), toPixel(b))
	},

	"noise-layer": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("noise-layer", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		seed, err := kv.intOr("seed", 1337)
		if err != nil {
			return err
		}
		amount, err := kv.floatOr("amount", 0.2)
		if err != nil {
			return err
		}
		monochrome, err := kv.boolOr("monochrome", false)
		if err != nil {
			return err
		}
		affectAlpha, err := kv.boolOr("affect_alpha", false)
		if err != nil {
			return err
		}
		layer.Image().AddNoise(amount, int64(seed), monochrome, affectAlpha)
		return nil
	},
}

func minInt2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
