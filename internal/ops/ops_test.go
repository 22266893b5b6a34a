package ops

import (
	"testing"

	imageflow "github.com/imageflow/imageflow"
)

func newTestDoc(t *testing.T) *imageflow.Document {
	t.Helper()
	doc, err := imageflow.NewDocument(8, 8)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}

func TestTokenizeHandlesQuotesAndEscapes(t *testing.T) {
	tokens, err := Tokenize(`draw-fill path=/0 rgba="10, 20, 30, 255" name=a\ b`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []string{"draw-fill", "path=/0", "rgba=10, 20, 30, 255", "name=a b"}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d: got %q want %q", i, tokens[i], want[i])
		}
	}
}

func TestTokenizeRejectsUnterminatedQuote(t *testing.T) {
	if _, err := Tokenize(`draw-fill rgba="1,2,3`); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestParseKeyValuesRejectsBareToken(t *testing.T) {
	if _, err := ParseKeyValues([]string{"draw-fill", "path"}, 1); err == nil {
		t.Fatal("expected error for token without '='")
	}
}

func TestApplyAddLayerAndFillLayer(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "fill-layer path=/0 rgba=10,20,30,255"); err != nil {
		t.Fatalf("fill-layer: %v", err)
	}
	layer, err := doc.ResolveLayer("/0")
	if err != nil {
		t.Fatalf("ResolveLayer: %v", err)
	}
	p := layer.Image().GetPixel(0, 0)
	if p.R != 10 || p.G != 20 || p.B != 30 || p.A != 255 {
		t.Fatalf("unexpected fill result: %+v", p)
	}
}

func TestApplyMissingRequiredKeyFails(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	err := in.Apply(doc, "draw-line path=/0 x0=0 y0=0 rgba=1,2,3,255")
	if err == nil {
		t.Fatal("expected error for missing x1/y1")
	}
}

func TestApplyDrawFillRectPaintsRegion(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "draw-fill-rect path=/0 x=1 y=1 width=2 height=2 rgba=255,0,0,255"); err != nil {
		t.Fatalf("draw-fill-rect: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	p := layer.Image().GetPixel(1, 1)
	if p.R != 255 || p.G != 0 || p.B != 0 {
		t.Fatalf("unexpected pixel at (1,1): %+v", p)
	}
	outside := layer.Image().GetPixel(0, 0)
	if outside.R == 255 && outside.G == 0 && outside.B == 0 {
		t.Fatal("fill leaked outside rect")
	}
}

func TestApplyGradientLayerLinear(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	spec := `gradient-layer path=/0 type=linear from=0,0,0,255 to=255,255,255,255`
	if err := in.Apply(doc, spec); err != nil {
		t.Fatalf("gradient-layer: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	first := layer.Image().GetPixel(0, 0)
	last := layer.Image().GetPixel(7, 7)
	if first.R >= last.R {
		t.Fatalf("expected gradient to brighten toward corner, got %+v -> %+v", first, last)
	}
}

func TestApplyUnknownActionFails(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "not-a-real-action path=/0"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestApplySetTransformAndConcat(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "set-transform path=/0 translate=3,4"); err != nil {
		t.Fatalf("set-transform: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	x, y := layer.Transform().Apply(0, 0)
	if x != 3 || y != 4 {
		t.Fatalf("expected translated origin (3,4), got (%v,%v)", x, y)
	}
	if err := in.Apply(doc, "concat-transform path=/0 translate=1,1"); err != nil {
		t.Fatalf("concat-transform: %v", err)
	}
	x, y = layer.Transform().Apply(0, 0)
	if x != 4 || y != 5 {
		t.Fatalf("expected concatenated origin (4,5), got (%v,%v)", x, y)
	}
}

func TestApplyMaskSetPixelAllocatesMask(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=4 height=4"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "mask-set-pixel path=/0 x=1 y=1 rgba=9,9,9,255"); err != nil {
		t.Fatalf("mask-set-pixel: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	if layer.Mask() == nil {
		t.Fatal("expected mask to be allocated")
	}
	p := layer.Mask().GetPixel(1, 1)
	if p.R != 9 {
		t.Fatalf("unexpected mask pixel: %+v", p)
	}
}

func TestApplyEffectGrayscaleDesaturates(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=4 height=4"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "fill-layer path=/0 rgba=200,50,10,255"); err != nil {
		t.Fatalf("fill-layer: %v", err)
	}
	if err := in.Apply(doc, "apply-effect path=/0 effect=grayscale"); err != nil {
		t.Fatalf("apply-effect grayscale: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	p := layer.Image().GetPixel(0, 0)
	if p.R != p.G || p.G != p.B {
		t.Fatalf("expected grayscale pixel, got %+v", p)
	}
}

func TestApplyGaussianBlurSmoothsImpulse(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=8 height=8"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "set-pixel path=/0 x=4 y=4 rgba=255,255,255,255"); err != nil {
		t.Fatalf("set-pixel: %v", err)
	}
	if err := in.Apply(doc, "gaussian-blur path=/0 radius=2"); err != nil {
		t.Fatalf("gaussian-blur: %v", err)
	}
	layer, _ := doc.ResolveLayer("/0")
	if layer.Image().GetPixel(4, 4).R == 255 {
		t.Fatal("expected blur to spread the impulse, center stayed saturated")
	}
	if layer.Image().GetPixel(3, 4).R == 0 {
		t.Fatal("expected blur to bleed into neighboring pixel")
	}
}

func TestApplyUnknownEffectActionFails(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "add-layer name=Base width=4 height=4"); err != nil {
		t.Fatalf("add-layer: %v", err)
	}
	if err := in.Apply(doc, "apply-effect path=/0 effect=not-a-real-effect"); err == nil {
		t.Fatal("expected error for unsupported effect")
	}
}

func TestApplyEmitRequiresExporter(t *testing.T) {
	doc := newTestDoc(t)
	in := &Interpreter{}
	if err := in.Apply(doc, "emit file=out.png"); err == nil {
		t.Fatal("expected error when no Exporter is configured")
	}
}
