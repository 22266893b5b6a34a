package draw

import "testing"

// memSurface is a trivial in-memory Surface for testing the rasterizer in
// isolation from the rest of the module.
type memSurface struct {
	w, h int
	px   []Color
}

func newMemSurface(w, h int) *memSurface {
	return &memSurface{w: w, h: h, px: make([]Color, w*h)}
}

func (m *memSurface) Width() int  { return m.w }
func (m *memSurface) Height() int { return m.h }
func (m *memSurface) InBounds(x, y int) bool {
	return x >= 0 && x < m.w && y >= 0 && y < m.h
}
func (m *memSurface) At(x, y int) Color {
	if !m.InBounds(x, y) {
		return Color{}
	}
	return m.px[y*m.w+x]
}
func (m *memSurface) Set(x, y int, c Color) {
	if !m.InBounds(x, y) {
		return
	}
	m.px[y*m.w+x] = c
}

func TestFillRectClip(t *testing.T) {
	s := newMemSurface(4, 4)
	red := Color{R: 255}
	FillRect(s, -1, -1, 3, 3, red)
	if s.At(0, 0) != red || s.At(1, 1) != red {
		t.Fatalf("expected clipped fill to paint in-bounds pixels")
	}
	if s.At(3, 3) == red {
		t.Fatalf("fill should not have reached (3,3)")
	}
}

func TestRectZeroExtentDrawsNothing(t *testing.T) {
	s := newMemSurface(4, 4)
	Rect(s, 1, 1, 0, 2, Color{R: 255})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if s.At(x, y) != (Color{}) {
				t.Fatalf("zero-width rect must draw nothing, got pixel at %d,%d", x, y)
			}
		}
	}
}

func TestFillCircleSpan(t *testing.T) {
	s := newMemSurface(21, 21)
	FillCircle(s, 10, 10, 5, Color{G: 255})
	if s.At(10, 10) == (Color{}) {
		t.Fatalf("center of filled circle should be painted")
	}
	if s.At(0, 0) != (Color{}) {
		t.Fatalf("corner should be untouched")
	}
}

func TestFillPolygonTriangle(t *testing.T) {
	s := newMemSurface(10, 10)
	pts := [][2]int{{1, 1}, {8, 1}, {4, 8}}
	FillPolygon(s, pts, Color{B: 255})
	if s.At(4, 2) == (Color{}) {
		t.Fatalf("expected interior point near apex base to be filled")
	}
	if s.At(0, 0) != (Color{}) {
		t.Fatalf("expected exterior point to be untouched")
	}
}

func TestFloodFillBoundedRegion(t *testing.T) {
	s := newMemSurface(5, 5)
	Rect(s, 1, 1, 3, 3, Color{R: 10, G: 10, B: 10})
	FloodFill(s, 2, 2, Color{R: 200}, 0)
	if s.At(2, 2) != (Color{R: 200}) {
		t.Fatalf("flood fill should have painted the interior")
	}
	if s.At(0, 0) == (Color{R: 200}) {
		t.Fatalf("flood fill should not have escaped the rect boundary")
	}
}

func TestFloodFillNoOpWhenSeedMatchesTarget(t *testing.T) {
	s := newMemSurface(3, 3)
	FloodFill(s, 1, 1, Color{}, 0)
	if s.At(1, 1) != (Color{}) {
		t.Fatalf("filling with the already-present color should be a no-op")
	}
}

func TestBezierFlattenAndStroke(t *testing.T) {
	s := newMemSurface(20, 20)
	var p Path
	p.BeginPath()
	p.MoveTo(1, 1)
	p.QuadraticCurveTo(10, 1, 18, 18)
	p.Stroke(s, Color{R: 255})
	if s.At(1, 1) != (Color{R: 255}) {
		t.Fatalf("stroke should paint the start point")
	}
}

func TestSegmentCountBoundedAndPositive(t *testing.T) {
	if n := segmentCount(0); n != 1 {
		t.Fatalf("degenerate control polygon should still yield >=1 segment, got %d", n)
	}
	if n := segmentCount(1e9); n != maxBezierSegments {
		t.Fatalf("segment count should be capped at %d, got %d", maxBezierSegments, n)
	}
}
