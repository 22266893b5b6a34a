package imageflow

import "testing"

func TestCompositeSingleOpaqueLayerIdempotent(t *testing.T) {
	doc, err := NewDocument(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	layer, err := NewLayer("bg", 4, 4, PixelRGBA8{R: 10, G: 20, B: 30, A: 255})
	if err != nil {
		t.Fatal(err)
	}
	doc.Root().AddChild(layer)
	out := doc.Composite()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			p := out.GetPixel(x, y)
			if p.R != 10 || p.G != 20 || p.B != 30 {
				t.Fatalf("expected idempotent composite at (%d,%d), got %+v", x, y, p)
			}
		}
	}
}

func TestCompositeMaskHidesHalf(t *testing.T) {
	doc, err := NewDocument(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	bg, _ := NewLayer("bg", 2, 1, PixelRGBA8{R: 10, G: 20, B: 30, A: 255})
	doc.Root().AddChild(bg)

	fg, _ := NewLayer("fg", 2, 1, PixelRGBA8{R: 200, G: 100, B: 50, A: 255})
	mask, _ := NewImageBuffer(2, 1, PixelRGBA8{})
	mask.SetPixel(0, 0, PixelRGBA8{R: 255, G: 255, B: 255, A: 255})
	mask.SetPixel(1, 0, PixelRGBA8{R: 0, G: 0, B: 0, A: 255})
	fg.SetMask(mask)
	doc.Root().AddChild(fg)

	out := doc.Composite()
	left := out.GetPixel(0, 0)
	right := out.GetPixel(1, 0)
	if left.R != 200 || left.G != 100 || left.B != 50 {
		t.Fatalf("expected foreground at x=0, got %+v", left)
	}
	if right.R != 10 || right.G != 20 || right.B != 30 {
		t.Fatalf("expected background at x=1 (mask hides fg), got %+v", right)
	}
}

func TestCompositeGroupTranslate(t *testing.T) {
	doc, err := NewDocument(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	group := NewLayerGroup("g")
	group.SetOffset(1, 1)
	doc.Root().AddChild(group)

	layer, _ := NewLayer("green", 4, 4, PixelRGBA8{})
	layer.Image().SetPixel(0, 0, PixelRGBA8{G: 255, A: 255})
	group.AddChild(layer)

	out := doc.Composite()
	p := out.GetPixel(1, 1)
	if p.G != 255 {
		t.Fatalf("expected green channel 255 at (1,1) after group translate, got %+v", p)
	}
}

func TestResolveNodePath(t *testing.T) {
	doc, _ := NewDocument(2, 2)
	group := NewLayerGroup("g")
	doc.Root().AddChild(group)
	layer, _ := NewLayer("l", 2, 2, PixelRGBA8{})
	group.AddChild(layer)

	node, err := doc.ResolveNode("/0/0")
	if err != nil {
		t.Fatal(err)
	}
	if node != LayerNode(layer) {
		t.Fatalf("expected to resolve to the layer")
	}

	if _, err := doc.ResolveNode("/5"); err == nil {
		t.Fatalf("expected error resolving out-of-range index")
	}
}
