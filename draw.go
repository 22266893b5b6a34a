package imageflow

import "github.com/imageflow/imageflow/internal/draw"

// view builds the draw.Surface adapter used by every drawing method below.
// Drawing always stamps alpha as fully opaque; compositing onto an existing
// alpha channel is the compositor's job, not the rasterizer's.
func (b *ImageBuffer) view() *BufferView {
	return NewBufferView(b, 255)
}

// DrawLine draws a single-pixel-wide Bresenham line from (x0,y0) to (x1,y1).
func (b *ImageBuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	draw.Line(b.view(), x0, y0, x1, y1, c)
}

// DrawRect strokes the outline of a width x height rectangle at (x,y).
func (b *ImageBuffer) DrawRect(x, y, width, height int, c Color) {
	draw.Rect(b.view(), x, y, width, height, c)
}

// FillRect fills a width x height rectangle at (x,y).
func (b *ImageBuffer) FillRect(x, y, width, height int, c Color) {
	draw.FillRect(b.view(), x, y, width, height, c)
}

// DrawRoundRect strokes a rectangle with corners rounded by radius.
func (b *ImageBuffer) DrawRoundRect(x, y, width, height, radius int, c Color) {
	draw.RoundRect(b.view(), x, y, width, height, radius, c)
}

// FillRoundRect fills a rectangle with corners rounded by radius.
func (b *ImageBuffer) FillRoundRect(x, y, width, height, radius int, c Color) {
	draw.FillRoundRect(b.view(), x, y, width, height, radius, c)
}

// DrawCircle strokes a circle outline centered at (cx,cy).
func (b *ImageBuffer) DrawCircle(cx, cy, radius int, c Color) {
	draw.Circle(b.view(), cx, cy, radius, c)
}

// FillCircle fills a disk centered at (cx,cy).
func (b *ImageBuffer) FillCircle(cx, cy, radius int, c Color) {
	draw.FillCircle(b.view(), cx, cy, radius, c)
}

// DrawArc strokes an arc of a circle centered at (cx,cy) between the given
// angles in radians.
func (b *ImageBuffer) DrawArc(cx, cy, radius int, startRadians, endRadians float64, c Color, counterclockwise bool) {
	draw.Arc(b.view(), cx, cy, radius, startRadians, endRadians, c, counterclockwise)
}

// DrawEllipse strokes an axis-aligned ellipse outline centered at (cx,cy).
func (b *ImageBuffer) DrawEllipse(cx, cy, rx, ry int, c Color) {
	draw.Ellipse(b.view(), cx, cy, rx, ry, c)
}

// FillEllipse fills an axis-aligned ellipse centered at (cx,cy).
func (b *ImageBuffer) FillEllipse(cx, cy, rx, ry int, c Color) {
	draw.FillEllipse(b.view(), cx, cy, rx, ry, c)
}

// DrawPolyline strokes the open segment chain through points.
func (b *ImageBuffer) DrawPolyline(points [][2]int, c Color) {
	draw.Polyline(b.view(), points, c)
}

// DrawPolygon strokes the closed segment chain through points.
func (b *ImageBuffer) DrawPolygon(points [][2]int, c Color) {
	draw.Polygon(b.view(), points, c)
}

// FillPolygon fills the polygon described by points using scanline parity.
func (b *ImageBuffer) FillPolygon(points [][2]int, c Color) {
	draw.FillPolygon(b.view(), points, c)
}

// FloodFill replaces the connected region matching the seed pixel's color
// (within tolerance) starting at (x,y) with c.
func (b *ImageBuffer) FloodFill(x, y int, c Color, tolerance int) {
	draw.FloodFill(b.view(), x, y, c, tolerance)
}

// Path is a two-endpoint curve builder: move to a start point, add one
// quadratic or cubic Bézier segment, then stroke the flattened result.
type Path = draw.Path

// StrokePath flattens p and strokes it as a polyline.
func (b *ImageBuffer) StrokePath(p *Path, c Color) {
	p.Stroke(b.view(), c)
}
