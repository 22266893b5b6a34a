package ops

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	imageflow "github.com/imageflow/imageflow"
)

func parseBlendMode(value string) (imageflow.BlendMode, error) {
	switch strings.ToLower(value) {
	case "normal":
		return imageflow.BlendNormal, nil
	case "multiply":
		return imageflow.BlendMultiply, nil
	case "screen":
		return imageflow.BlendScreen, nil
	case "overlay":
		return imageflow.BlendOverlay, nil
	case "darken":
		return imageflow.BlendDarken, nil
	case "lighten":
		return imageflow.BlendLighten, nil
	case "add":
		return imageflow.BlendAdd, nil
	case "subtract":
		return imageflow.BlendSubtract, nil
	case "difference":
		return imageflow.BlendDifference, nil
	case "color-dodge", "colordodge":
		return imageflow.BlendColorDodge, nil
	default:
		return 0, errors.Errorf("unsupported blend mode: %s", value)
	}
}

func parseResizeFilter(value string) (imageflow.ResampleFilter, error) {
	switch strings.ToLower(value) {
	case "nearest":
		return imageflow.ResampleNearest, nil
	case "bilinear":
		return imageflow.ResampleBilinear, nil
	case "box", "boxaverage", "box_average":
		return imageflow.ResampleBoxArea, nil
	default:
		return 0, errors.Errorf("unsupported resize filter: %s", value)
	}
}

// buildTransformFromKV mirrors the reference CLI's buildTransformFromKV: an
// explicit matrix= wins outright; otherwise translate=/scale=/skew=/rotate=
// compose onto identity in that order, around an optional pivot=.
func buildTransformFromKV(kv KV) (imageflow.Transform2D, error) {
	if v, ok := kv.get("matrix"); ok {
		parts := strings.Split(v, ",")
		if len(parts) != 6 {
			return imageflow.Transform2D{}, errors.New("matrix= expects 6 comma-separated values")
		}
		vals := make([]float64, 6)
		for i, p := range parts {
			f, err := parseDoubleStrict(p, "matrix")
			if err != nil {
				return imageflow.Transform2D{}, err
			}
			vals[i] = f
		}
		return imageflow.NewTransform2D(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), nil
	}

	t := imageflow.Identity()
	pivotX, pivotY := 0.0, 0.0
	if v, ok := kv.get("pivot"); ok {
		var err error
		if pivotX, pivotY, err = parseDoublePair(v); err != nil {
			return imageflow.Transform2D{}, err
		}
	}

	if v, ok := kv.get("translate"); ok {
		dx, dy, err := parseDoublePair(v)
		if err != nil {
			return imageflow.Transform2D{}, err
		}
		t = t.Compose(imageflow.Translation(dx, dy))
	}

	if v, ok := kv.get("scale"); ok {
		parts := strings.Split(v, ",")
		switch len(parts) {
		case 1:
			s, err := parseDoubleStrict(parts[0], "scale")
			if err != nil {
				return imageflow.Transform2D{}, err
			}
			t = t.Scale(s, s, pivotX, pivotY)
		case 2:
			sx, err := parseDoubleStrict(parts[0], "scale")
			if err != nil {
				return imageflow.Transform2D{}, err
			}
			sy, err := parseDoubleStrict(parts[1], "scale")
			if err != nil {
				return imageflow.Transform2D{}, err
			}
			t = t.Scale(sx, sy, pivotX, pivotY)
		default:
			return imageflow.Transform2D{}, errors.New("scale= expects s or sx,sy")
		}
	}

	if v, ok := kv.get("skew"); ok {
		degX, degY, err := parseDoublePair(v)
		if err != nil {
			return imageflow.Transform2D{}, err
		}
		t = t.Shear(math.Tan(degX*math.Pi/180), math.Tan(degY*math.Pi/180), pivotX, pivotY)
	}

	if v, ok := kv.get("rotate"); ok {
		deg, err := parseDoubleStrict(v, "rotate")
		if err != nil {
			return imageflow.Transform2D{}, err
		}
		t = t.RotateDegrees(deg, pivotX, pivotY)
	}

	return t, nil
}

// Importer loads a raster file by path for the import-image action. The
// interpreter takes it as a dependency rather than reaching into the
// filesystem directly, so callers can sandbox or mock file access.
type Importer func(path string) (*imageflow.ImageBuffer, error)

// Exporter writes the document's composite to path for the emit action.
type Exporter func(path string, composite *imageflow.ImageBuffer) error

// Interpreter runs a sequence of op specs against a Document, using the
// supplied Importer/Exporter for import-image/emit actions.
type Interpreter struct {
	Import Importer
	Export Exporter
}

var coreHandlers = map[string]func(*Interpreter, *imageflow.Document, KV) error{
	"add-layer": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		group, err := resolveGroupPath(doc, kv.str("parent", "/"))
		if err != nil {
			return err
		}
		name := kv.str("name", "Layer")
		width, err := kv.intOr("width", doc.Width())
		if err != nil {
			return err
		}
		height, err := kv.intOr("height", doc.Height())
		if err != nil {
			return err
		}
		fill := imageflow.PixelRGBA8{}
		if v, ok := kv.get("fill"); ok {
			c, err := parseRGBA(v, false)
			if err != nil {
				return err
			}
			fill = toPixel(c)
		}
		layer, err := imageflow.NewLayer(name, width, height, fill)
		if err != nil {
			return err
		}
		group.AddChild(layer)
		return nil
	},

	"add-group": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		group, err := resolveGroupPath(doc, kv.str("parent", "/"))
		if err != nil {
			return err
		}
		group.AddChild(imageflow.NewLayerGroup(kv.str("name", "Group")))
		return nil
	},

	"add-grid-layers": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		return addGridLayers(doc, kv)
	},

	"set-layer": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("set-layer", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		return applyNodeAttrs(layer, kv)
	},

	"set-group": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("set-group", "path"); err != nil {
			return err
		}
		node, err := resolveNode(doc, kv["path"])
		if err != nil {
			return err
		}
		group, ok := node.(*imageflow.LayerGroup)
		if !ok {
			return errors.New("set-group path must resolve to a group")
		}
		return applyNodeAttrs(group, kv)
	},

	"set-transform": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("set-transform", "path"); err != nil {
			return err
		}
		node, err := resolveNode(doc, kv["path"])
		if err != nil {
			return err
		}
		t, err := buildTransformFromKV(kv)
		if err != nil {
			return err
		}
		node.SetTransform(t)
		return nil
	},

	"concat-transform": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("concat-transform", "path"); err != nil {
			return err
		}
		node, err := resolveNode(doc, kv["path"])
		if err != nil {
			return err
		}
		t, err := buildTransformFromKV(kv)
		if err != nil {
			return err
		}
		node.SetTransform(node.Transform().Compose(t))
		return nil
	},

	"clear-transform": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("clear-transform", "path"); err != nil {
			return err
		}
		node, err := resolveNode(doc, kv["path"])
		if err != nil {
			return err
		}
		node.SetTransform(imageflow.Identity())
		return nil
	},

	"fill-layer": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("fill-layer", "path", "rgba"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], false)
		if err != nil {
			return err
		}
		layer.Image().Fill(toPixel(c))
		return nil
	},

	"set-pixel": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("set-pixel", "path", "x", "y", "rgba"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
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
		c, err := parseRGBA(kv["rgba"], false)
		if err != nil {
			return err
		}
		layer.Image().SetPixel(x, y, toPixel(c))
		return nil
	},

	"mask-enable": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("mask-enable", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		fill := imageflow.PixelRGBA8{R: 255, G: 255, B: 255, A: 255}
		if v, ok := kv.get("fill"); ok {
			c, err := parseRGBA(v, false)
			if err != nil {
				return err
			}
			fill = toPixel(c)
		}
		mask, err := imageflow.NewImageBuffer(layer.Image().Width(), layer.Image().Height(), fill)
		if err != nil {
			return err
		}
		layer.SetMask(mask)
		return nil
	},

	"mask-clear": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("mask-clear", "path"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		layer.SetMask(nil)
		return nil
	},

	"mask-set-pixel": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("mask-set-pixel", "path", "x", "y", "rgba"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		if layer.Mask() == nil {
			mask, err := imageflow.NewImageBuffer(layer.Image().Width(), layer.Image().Height(), imageflow.PixelRGBA8{A: 255})
			if err != nil {
				return err
			}
			layer.SetMask(mask)
		}
		x, err := parseIntStrict(kv["x"], "x")
		if err != nil {
			return err
		}
		y, err := parseIntStrict(kv["y"], "y")
		if err != nil {
			return err
		}
		c, err := parseRGBA(kv["rgba"], false)
		if err != nil {
			return err
		}
		layer.Mask().SetPixel(x, y, toPixel(c))
		return nil
	},

	"resize-layer": func(_ *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("resize-layer", "path", "width", "height"); err != nil {
			return err
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		filter := imageflow.ResampleBilinear
		if v, ok := kv.get("filter"); ok {
			if filter, err = parseResizeFilter(v); err != nil {
				return err
			}
		}
		width, err := parseIntInRange(kv["width"], "width", 1, maxIntPlatform)
		if err != nil {
			return err
		}
		height, err := parseIntInRange(kv["height"], "height", 1, maxIntPlatform)
		if err != nil {
			return err
		}
		resized, err := layer.Image().Resize(width, height, filter)
		if err != nil {
			return err
		}
		layer.SetImage(resized)
		return nil
	},

	"import-image": func(in *Interpreter, doc *imageflow.Document, kv KV) error {
		if err := kv.Require("import-image", "path", "file"); err != nil {
			return err
		}
		if in.Import == nil {
			return errors.New("import-image is not supported in this context")
		}
		layer, err := resolveLayer(doc, kv["path"])
		if err != nil {
			return err
		}
		loaded, err := in.Import(kv["file"])
		if err != nil {
			return errors.Wrapf(err, "import-image file=%s", kv["file"])
		}
		alpha := uint8(255)
		if v, ok := kv.get("alpha"); ok {
			a, err := parseByte(v, "alpha")
			if err != nil {
				return err
			}
			alpha = a
		}
		for y := 0; y < loaded.Height() && y < layer.Image().Height(); y++ {
			for x := 0; x < loaded.Width() && x < layer.Image().Width(); x++ {
				p := loaded.GetPixel(x, y)
				layer.Image().SetPixel(x, y, imageflow.PixelRGBA8{R: p.R, G: p.G, B: p.B, A: alpha})
			}
		}
		return nil
	},

	"emit": func(in *Interpreter, doc *imageflow.Document, kv KV) error {
		if in.Export == nil {
			return errEmitNotSupported
		}
		outputPath := kv.str("file", kv.str("out", ""))
		if outputPath == "" {
			return errEmitRequiresFile
		}
		return in.Export(outputPath, doc.Composite())
	},
}

const maxIntPlatform = int(^uint(0) >> 1)

func applyNodeAttrs(node imageflow.LayerNode, kv KV) error {
	if v, ok := kv.get("name"); ok {
		node.SetName(v)
	}
	if v, ok := kv.get("visible"); ok {
		b, err := parseBoolFlag(v)
		if err != nil {
			return err
		}
		node.SetVisible(b)
	}
	if v, ok := kv.get("opacity"); ok {
		f, err := parseDoubleStrict(v, "opacity")
		if err != nil {
			return err
		}
		node.SetOpacity(f)
	}
	if v, ok := kv.get("blend"); ok {
		m, err := parseBlendMode(v)
		if err != nil {
			return err
		}
		node.SetBlendMode(m)
	}
	if v, ok := kv.get("offset"); ok {
		x, y, err := parseIntPair(v)
		if err != nil {
			return err
		}
		node.SetOffset(x, y)
	}
	return nil
}

func addGridLayers(doc *imageflow.Document, kv KV) error {
	group, err := resolveGroupPath(doc, kv.str("parent", "/"))
	if err != nil {
		return err
	}
	rows, err := kv.intOr("rows", 1)
	if err != nil {
		return err
	}
	cols, err := kv.intOr("cols", 1)
	if err != nil {
		return err
	}
	if rows <= 0 || cols <= 0 {
		return errors.New("add-grid-layers requires rows>0 and cols>0")
	}
	border, err := kv.intOr("border", 0)
	if err != nil {
		return err
	}
	startX, err := kv.intOr("start_x", 0)
	if err != nil {
		return err
	}
	startY, err := kv.intOr("start_y", 0)
	if err != nil {
		return err
	}
	tileWidth, err := kv.intOr("tile_width", doc.Width()/cols)
	if err != nil {
		return err
	}
	tileHeight, err := kv.intOr("tile_height", doc.Height()/rows)
	if err != nil {
		return err
	}
	if tileWidth <= 0 || tileHeight <= 0 {
		return errors.New("add-grid-layers tile dimensions must be positive")
	}
	innerWidth := tileWidth - border*2
	innerHeight := tileHeight - border*2
	if innerWidth <= 0 || innerHeight <= 0 {
		return errors.New("add-grid-layers border is too large for tile size")
	}

	prefix := kv.str("name_prefix", "Tile")
	opacity, err := kv.floatOr("opacity", 1)
	if err != nil {
		return err
	}
	blend := imageflow.BlendNormal
	if v, ok := kv.get("blend"); ok {
		if blend, err = parseBlendMode(v); err != nil {
			return err
		}
	}
	defaultFill := imageflow.PixelRGBA8{}
	if v, ok := kv.get("fill"); ok {
		c, err := parseRGBA(v, false)
		if err != nil {
			return err
		}
		defaultFill = toPixel(c)
	}

	var fillSequence []imageflow.PixelRGBA8
	if v, ok := kv.get("fills"); ok {
		for _, tok := range splitNonEmpty(v, ';') {
			c, err := parseRGBA(tok, false)
			if err != nil {
				return err
			}
			fillSequence = append(fillSequence, toPixel(c))
		}
	}
	var blendSequence []imageflow.BlendMode
	if v, ok := kv.get("blends"); ok {
		for _, tok := range splitNonEmpty(v, ';') {
			m, err := parseBlendMode(tok)
			if err != nil {
				return err
			}
			blendSequence = append(blendSequence, m)
		}
	}

	seq := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := startX + col*tileWidth + border
			y := startY + row*tileHeight + border
			fill := defaultFill
			if len(fillSequence) > 0 {
				fill = fillSequence[seq%len(fillSequence)]
			}
			layerBlend := blend
			if len(blendSequence) > 0 {
				layerBlend = blendSequence[seq%len(blendSequence)]
			}
			name := fmt.Sprintf("%s_%d_%d", prefix, row, col)
			layer, err := imageflow.NewLayer(name, innerWidth, innerHeight, fill)
			if err != nil {
				return err
			}
			layer.SetOpacity(opacity)
			layer.SetBlendMode(layerBlend)
			layer.SetOffset(x, y)
			group.AddChild(layer)
			seq++
		}
	}
	return nil
}

// Apply tokenizes and executes a single op spec against doc.
func (in *Interpreter) Apply(doc *imageflow.Document, opSpec string) error {
	tokens, err := Tokenize(opSpec)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return errors.New("empty op spec")
	}
	action := tokens[0]
	kv, err := ParseKeyValues(tokens, 1)
	if err != nil {
		return err
	}

	if h, ok := generatorHandlers[action]; ok {
		return h(doc, kv)
	}
	if h, ok := drawHandlers[action]; ok {
		return h(doc, kv)
	}
	if h, ok := effectHandlers[action]; ok {
		return h(doc, kv)
	}
	if h, ok := coreHandlers[action]; ok {
		return h(in, doc, kv)
	}
	return fmt.Errorf("%w: %s", errUnknownAction, action)
}

// ApplyAll runs opSpecs in order, stopping and wrapping the error with its
// index on the first failure.
func (in *Interpreter) ApplyAll(doc *imageflow.Document, opSpecs []string) error {
	for i, spec := range opSpecs {
		if err := in.Apply(doc, spec); err != nil {
			return errors.Wrapf(err, "op[%d] %q", i, spec)
		}
	}
	return nil
}
