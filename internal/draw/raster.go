// Package draw implements the 2D rasterizer: line, rect, circle, ellipse,
// arc, polyline/polygon, scanline flood fill and Bézier stroking, all
// operating against the small [Surface] capability interface so the
// rasterizer has no dependency on any particular pixel-buffer type.
package draw

import "math"

// Color is an opaque RGB triple; the rasterizer draws shapes with no notion
// of alpha, leaving transparency handling to the surface it writes into.
type Color struct {
	R, G, B uint8
}

// Surface is the capability every raster-like type exposes to the
// rasterizer: bounds-checked reads, clip-on-write writes.
type Surface interface {
	Width() int
	Height() int
	InBounds(x, y int) bool
	At(x, y int) Color
	Set(x, y int, c Color)
}

// Fill overwrites every pixel of the surface with c.
func Fill(s Surface, c Color) {
	w, h := s.Width(), s.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.Set(x, y, c)
		}
	}
}

// Line draws a Bresenham line from (x0,y0) to (x1,y1) inclusive.
func Line(s Surface, x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		s.Set(x, y, c)
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// normalizeRect returns (x0,y0,x1,y1) such that x0<=x1 and y0<=y1, or
// ok==false when the rect has zero width or height (draws nothing).
func normalizeRect(x, y, width, height int) (x0, y0, x1, y1 int, ok bool) {
	if width == 0 || height == 0 {
		return 0, 0, 0, 0, false
	}
	x0, x1 = x, x+width
	if width < 0 {
		x0, x1 = x1, x0
	}
	y0, y1 = y, y+height
	if height < 0 {
		y0, y1 = y1, y0
	}
	return x0, y0, x1 - 1, y1 - 1, true
}

// Rect draws the outline of a rectangle with top-left (x,y) and the given
// width/height. Negative width/height invert the extents; zero draws
// nothing.
func Rect(s Surface, x, y, width, height int, c Color) {
	x0, y0, x1, y1, ok := normalizeRect(x, y, width, height)
	if !ok {
		return
	}
	Line(s, x0, y0, x1, y0, c)
	Line(s, x1, y0, x1, y1, c)
	Line(s, x1, y1, x0, y1, c)
	Line(s, x0, y1, x0, y0, c)
}

// FillRect fills a rectangle, inclusive extents after normalization.
func FillRect(s Surface, x, y, width, height int, c Color) {
	x0, y0, x1, y1, ok := normalizeRect(x, y, width, height)
	if !ok {
		return
	}
	for yy := y0; yy <= y1; yy++ {
		for xx := x0; xx <= x1; xx++ {
			s.Set(xx, yy, c)
		}
	}
}

// RoundRect draws a rectangle outline with its four corners replaced by
// quarter-circle arcs of the given radius. The radius is clamped to at most
// half the smaller of width/height.
func RoundRect(s Surface, x, y, width, height, radius int, c Color) {
	x0, y0, x1, y1, ok := normalizeRect(x, y, width, height)
	if !ok {
		return
	}
	r := clampRoundRectRadius(radius, x1-x0+1, y1-y0+1)
	if r <= 0 {
		Rect(s, x, y, width, height, c)
		return
	}
	Line(s, x0+r, y0, x1-r, y0, c)
	Line(s, x0+r, y1, x1-r, y1, c)
	Line(s, x0, y0+r, x0, y1-r, c)
	Line(s, x1, y0+r, x1, y1-r, c)
	Arc(s, x0+r, y0+r, r, float64(math.Pi), float64(1.5*math.Pi), c, false)
	Arc(s, x1-r, y0+r, r, float64(1.5*math.Pi), float64(2*math.Pi), c, false)
	Arc(s, x1-r, y1-r, r, 0, float64(0.5*math.Pi), c, false)
	Arc(s, x0+r, y1-r, r, float64(0.5*math.Pi), float64(math.Pi), c, false)
}

// FillRoundRect fills a rectangle whose corners are rounded by radius.
func FillRoundRect(s Surface, x, y, width, height, radius int, c Color) {
	x0, y0, x1, y1, ok := normalizeRect(x, y, width, height)
	if !ok {
		return
	}
	r := clampRoundRectRadius(radius, x1-x0+1, y1-y0+1)
	if r <= 0 {
		FillRect(s, x, y, width, height, c)
		return
	}
	for yy := y0; yy <= y1; yy++ {
		for xx := x0; xx <= x1; xx++ {
			if insideRoundRect(xx, yy, x0, y0, x1, y1, r) {
				s.Set(xx, yy, c)
			}
		}
	}
}

func clampRoundRectRadius(radius, width, height int) int {
	maxR := width
	if height < maxR {
		maxR = height
	}
	maxR /= 2
	if radius > maxR {
		return maxR
	}
	if radius < 0 {
		return 0
	}
	return radius
}

func insideRoundRect(x, y, x0, y0, x1, y1, r int) bool {
	if x < x0 || x > x1 || y < y0 || y > y1 {
		return false
	}
	switch {
	case x < x0+r && y < y0+r:
		return withinDisk(x-(x0+r), y-(y0+r), r)
	case x > x1-r && y < y0+r:
		return withinDisk(x-(x1-r), y-(y0+r), r)
	case x > x1-r && y > y1-r:
		return withinDisk(x-(x1-r), y-(y1-r), r)
	case x < x0+r && y > y1-r:
		return withinDisk(x-(x0+r), y-(y1-r), r)
	default:
		return true
	}
}

func withinDisk(dx, dy, r int) bool {
	return dx*dx+dy*dy <= r*r
}

// Circle draws a circle outline using the midpoint algorithm, plotting all
// eight octants per step.
func Circle(s Surface, cx, cy, radius int, c Color) {
	x, y := radius, 0
	err := 0
	for x >= y {
		plotCircleOctants(s, cx, cy, x, y, c)
		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func plotCircleOctants(s Surface, cx, cy, x, y int, c Color) {
	pts := [8][2]int{
		{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
		{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
	}
	for _, p := range pts {
		if s.InBounds(p[0], p[1]) {
			s.Set(p[0], p[1], c)
		}
	}
}

// FillCircle fills a disk of the given radius using horizontal scanlines.
func FillCircle(s Surface, cx, cy, radius int, c Color) {
	if radius < 0 {
		return
	}
	for y := -radius; y <= radius; y++ {
		span := int(math.Floor(math.Sqrt(float64(radius*radius - y*y))))
		Line(s, cx-span, cy+y, cx+span, cy+y, c)
	}
}

// Arc draws line segments approximating the circular arc from startRadians
// to endRadians (swapped if end<start), stepping by 1/max(4,radius)
// radians per sample.
func Arc(s Surface, cx, cy, radius int, startRadians, endRadians float64, c Color, counterclockwise bool) {
	if endRadians < startRadians {
		startRadians, endRadians = endRadians, startRadians
	}
	step := 1.0 / math.Max(4, float64(radius))
	if counterclockwise {
		step = -step
		startRadians, endRadians = endRadians, startRadians
	}
	r := float64(radius)
	prevX := cx + int(math.Round(r*math.Cos(startRadians)))
	prevY := cy + int(math.Round(r*math.Sin(startRadians)))
	theta := startRadians
	for {
		if (step > 0 && theta > endRadians) || (step < 0 && theta < endRadians) {
			break
		}
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy + int(math.Round(r*math.Sin(theta)))
		Line(s, prevX, prevY, x, y, c)
		prevX, prevY = x, y
		theta += step
	}
	x := cx + int(math.Round(r*math.Cos(endRadians)))
	y := cy + int(math.Round(r*math.Sin(endRadians)))
	Line(s, prevX, prevY, x, y, c)
}

// Ellipse draws an outline via parametric sampling with step count
// max(24, 8*max(rx,ry)).
func Ellipse(s Surface, cx, cy, rx, ry int, c Color) {
	steps := 24
	if m := 8 * maxInt(rx, ry); m > steps {
		steps = m
	}
	prevX, prevY := cx+rx, cy
	for i := 1; i <= steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(float64(rx)*math.Cos(theta)))
		y := cy + int(math.Round(float64(ry)*math.Sin(theta)))
		Line(s, prevX, prevY, x, y, c)
		prevX, prevY = x, y
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FillEllipse fills an ellipse using horizontal scanlines with
// xSpan = floor(rx*sqrt(1-(y/ry)^2) + 0.5).
func FillEllipse(s Surface, cx, cy, rx, ry int, c Color) {
	if rx < 0 || ry < 0 || ry == 0 {
		return
	}
	for y := -ry; y <= ry; y++ {
		t := float64(y) / float64(ry)
		inner := 1 - t*t
		if inner < 0 {
			inner = 0
		}
		span := int(math.Floor(float64(rx)*math.Sqrt(inner) + 0.5))
		Line(s, cx-span, cy+y, cx+span, cy+y, c)
	}
}

// Polyline draws straight segments between consecutive points.
func Polyline(s Surface, points [][2]int, c Color) {
	for i := 1; i < len(points); i++ {
		Line(s, points[i-1][0], points[i-1][1], points[i][0], points[i][1], c)
	}
}

// Polygon draws a closed outline through points, closing last back to
// first.
func Polygon(s Surface, points [][2]int, c Color) {
	Polyline(s, points, c)
	if len(points) >= 2 {
		last := points[len(points)-1]
		first := points[0]
		Line(s, last[0], last[1], first[0], first[1], c)
	}
}

// FillPolygon fills the interior of a polygon using a scanline algorithm
// with half-pixel sampling (scanY = y+0.5) and half-open Y-extent
// ([ymin,ymax)) edge crossing tests, matching the §4.7 convention that
// avoids double-counting horizontal-edge crossings.
func FillPolygon(s Surface, points [][2]int, c Color) {
	n := len(points)
	if n < 3 {
		return
	}
	minY, maxY := points[0][1], points[0][1]
	for _, p := range points {
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	for y := minY; y <= maxY; y++ {
		scanY := float64(y) + 0.5
		var xs []float64
		for i := 0; i < n; i++ {
			p0 := points[i]
			p1 := points[(i+1)%n]
			y0, y1 := float64(p0[1]), float64(p1[1])
			edgeMinY, edgeMaxY := y0, y1
			if edgeMinY > edgeMaxY {
				edgeMinY, edgeMaxY = edgeMaxY, edgeMinY
			}
			if scanY < edgeMinY || scanY >= edgeMaxY {
				continue
			}
			t := (scanY - y0) / (y1 - y0)
			x := float64(p0[0]) + t*float64(p1[0]-p0[0])
			xs = append(xs, x)
		}
		sortFloats(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i]))
			x1 := int(math.Floor(xs[i+1]))
			for x := x0; x <= x1; x++ {
				if s.InBounds(x, y) {
					s.Set(x, y, c)
				}
			}
		}
	}
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}
