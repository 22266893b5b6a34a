package ops

import (
	"math"

	imageflow "github.com/imageflow/imageflow"
	"github.com/imageflow/imageflow/internal/draw"
)

// viewFor builds the Surface adapter a draw-* action paints through: reads
// discard alpha, writes stamp the action's own rgba= alpha, mirroring the
// reference CLI's BufferImageView.
func viewFor(buf *imageflow.ImageBuffer, alpha uint8) *imageflow.BufferView {
	return imageflow.NewBufferView(buf, alpha)
}

func drawTarget(doc *imageflow.Document, kv KV) (*imageflow.ImageBuffer, error) {
	layer, err := resolveLayer(doc, kv.str("path", ""))
	if err != nil {
		return nil, err
	}
	return resolveDrawTargetBuffer(layer, kv)
}

var drawHandlers = map[string]func(*imageflow.Document, KV) error{
	"draw-fill": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-fill", "path", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		draw.Fill(viewFor(buf, c.a), toDrawColor(c))
		return nil
	},
	"draw-line": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-line", "path", "x0", "y0", "x1", "y1", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		x0, err := parseIntStrict(kv["x0"], "x0")
		if err != nil {
			return err
		}
		y0, err := parseIntStrict(kv["y0"], "y0")
		if err != nil {
			return err
		}
		x1, err := parseIntStrict(kv["x1"], "x1")
		if err != nil {
			return err
		}
		y1, err := parseIntStrict(kv["y1"], "y1")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		draw.Line(viewFor(buf, c.a), x0, y0, x1, y1, toDrawColor(c))
		return nil
	},
	"draw-rect":           rectHandler(draw.Rect),
	"draw-fill-rect":      rectHandler(draw.FillRect),
	"draw-round-rect":     roundRectHandler(draw.RoundRect),
	"draw-fill-round-rect": roundRectHandler(draw.FillRoundRect),
	"draw-ellipse":        ellipseHandler(draw.Ellipse),
	"draw-fill-ellipse":   ellipseHandler(draw.FillEllipse),
	"draw-circle":         circleHandler(draw.Circle),
	"draw-fill-circle":    circleHandler(draw.FillCircle),
	"draw-polyline":       polyHandler(draw.Polyline, 2, "draw-polyline"),
	"draw-polygon":        polyHandler(draw.Polygon, 3, "draw-polygon"),
	"draw-fill-polygon":   polyHandler(draw.FillPolygon, 3, "draw-fill-polygon"),

	"draw-flood-fill": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-flood-fill", "path", "x", "y", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		x, err := parseIntStrict(kv["x"], "x")
		if err != nil {
			return err
		}
		y, err := parseIntStrict(kv["y"], "y")
		if err != nil {
			return err
		}
		tolerance, err := kv.intOr("tolerance", 0)
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		draw.FloodFill(viewFor(buf, c.a), x, y, toDrawColor(c), tolerance)
		return nil
	},

	"draw-arc": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-arc", "path", "cx", "cy", "radius", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		cx, err := parseIntStrict(kv["cx"], "cx")
		if err != nil {
			return err
		}
		cy, err := parseIntStrict(kv["cy"], "cy")
		if err != nil {
			return err
		}
		radius, err := parseIntStrict(kv["radius"], "radius")
		if err != nil {
			return err
		}
		var startRad, endRad float64
		if sr, ok1 := kv.get("start_rad"); ok1 {
			er, ok2 := kv.get("end_rad")
			if !ok2 {
				return errMissingArcAngles
			}
			if startRad, err = parseDoubleStrict(sr, "start_rad"); err != nil {
				return err
			}
			if endRad, err = parseDoubleStrict(er, "end_rad"); err != nil {
				return err
			}
		} else if sd, ok1 := kv.get("start_deg"); ok1 {
			ed, ok2 := kv.get("end_deg")
			if !ok2 {
				return errMissingArcAngles
			}
			sdv, err := parseDoubleStrict(sd, "start_deg")
			if err != nil {
				return err
			}
			edv, err := parseDoubleStrict(ed, "end_deg")
			if err != nil {
				return err
			}
			startRad, endRad = sdv*math.Pi/180, edv*math.Pi/180
		} else {
			return errMissingArcAngles
		}
		ccw, err := kv.boolOr("counterclockwise", false)
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		draw.Arc(viewFor(buf, c.a), cx, cy, radius, startRad, endRad, toDrawColor(c), ccw)
		return nil
	},

	"draw-quadratic-bezier": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-quadratic-bezier", "path", "x0", "y0", "cx", "cy", "x1", "y1", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		vals, err := floatFields(kv, "x0", "y0", "cx", "cy", "x1", "y1")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		var p draw.Path
		p.BeginPath()
		p.MoveTo(vals[0], vals[1])
		p.QuadraticCurveTo(vals[2], vals[3], vals[4], vals[5])
		p.Stroke(viewFor(buf, c.a), toDrawColor(c))
		return nil
	},

	"draw-bezier": func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-bezier", "path", "x0", "y0", "cx1", "cy1", "cx2", "cy2", "x1", "y1", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		vals, err := floatFields(kv, "x0", "y0", "cx1", "cy1", "cx2", "cy2", "x1", "y1")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		var p draw.Path
		p.BeginPath()
		p.MoveTo(vals[0], vals[1])
		p.BezierCurveTo(vals[2], vals[3], vals[4], vals[5], vals[6], vals[7])
		p.Stroke(viewFor(buf, c.a), toDrawColor(c))
		return nil
	},
}

func floatFields(kv KV, keys ...string) ([]float64, error) {
	out := make([]float64, len(keys))
	for i, k := range keys {
		v, err := parseDoubleStrict(kv[k], k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func rectHandler(fn func(draw.Surface, int, int, int, int, draw.Color)) func(*imageflow.Document, KV) error {
	return func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-rect", "path", "x", "y", "width", "height", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		x, y, w, h, err := intRect(kv)
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		fn(viewFor(buf, c.a), x, y, w, h, toDrawColor(c))
		return nil
	}
}

func roundRectHandler(fn func(draw.Surface, int, int, int, int, int, draw.Color)) func(*imageflow.Document, KV) error {
	return func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-round-rect", "path", "x", "y", "width", "height", "radius", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		x, y, w, h, err := intRect(kv)
		if err != nil {
			return err
		}
		radius, err := parseIntStrict(kv["radius"], "radius")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		fn(viewFor(buf, c.a), x, y, w, h, radius, toDrawColor(c))
		return nil
	}
}

func ellipseHandler(fn func(draw.Surface, int, int, int, int, draw.Color)) func(*imageflow.Document, KV) error {
	return func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-ellipse", "path", "cx", "cy", "rx", "ry", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		cx, err := parseIntStrict(kv["cx"], "cx")
		if err != nil {
			return err
		}
		cy, err := parseIntStrict(kv["cy"], "cy")
		if err != nil {
			return err
		}
		rx, err := parseIntStrict(kv["rx"], "rx")
		if err != nil {
			return err
		}
		ry, err := parseIntStrict(kv["ry"], "ry")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		fn(viewFor(buf, c.a), cx, cy, rx, ry, toDrawColor(c))
		return nil
	}
}

func circleHandler(fn func(draw.Surface, int, int, int, draw.Color)) func(*imageflow.Document, KV) error {
	return func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require("draw-circle", "path", "cx", "cy", "radius", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		cx, err := parseIntStrict(kv["cx"], "cx")
		if err != nil {
			return err
		}
		cy, err := parseIntStrict(kv["cy"], "cy")
		if err != nil {
			return err
		}
		radius, err := parseIntStrict(kv["radius"], "radius")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		fn(viewFor(buf, c.a), cx, cy, radius, toDrawColor(c))
		return nil
	}
}

func polyHandler(fn func(draw.Surface, [][2]int, draw.Color), minPoints int, action string) func(*imageflow.Document, KV) error {
	return func(doc *imageflow.Document, kv KV) error {
		if err := kv.Require(action, "path", "points", "rgba"); err != nil {
			return err
		}
		buf, err := drawTarget(doc, kv)
		if err != nil {
			return err
		}
		points, err := parseDrawPoints(kv["points"], minPoints, action)
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], true)
		if err != nil {
			return err
		}
		fn(viewFor(buf, c.a), points, toDrawColor(c))
		return nil
	}
}

func intRect(kv KV) (x, y, w, h int, err error) {
	if x, err = parseIntStrict(kv["x"], "x"); err != nil {
		return
	}
	if y, err = parseIntStrict(kv["y"], "y"); err != nil {
		return
	}
	if w, err = parseIntStrict(kv["width"], "width"); err != nil {
		return
	}
	h, err = parseIntStrict(kv["height"], "height")
	return
}
