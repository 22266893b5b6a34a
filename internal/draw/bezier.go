package draw

import "math"

// Path is a minimal path builder supporting the two curve primitives the
// operation interpreter exposes (draw-quadratic-bezier, draw-bezier): move
// to a start point, add one curve segment, then stroke the flattened
// result as a polyline. Unlike a general vector path API, a Path here holds
// at most one curve.
type Path struct {
	start  [2]float64
	points [][2]float64
	curve  bool
}

// BeginPath resets the builder.
func (p *Path) BeginPath() {
	*p = Path{}
}

// MoveTo sets the path's starting point.
func (p *Path) MoveTo(x, y float64) {
	p.start = [2]float64{x, y}
	p.points = nil
	p.curve = false
}

// QuadraticCurveTo appends a flattened quadratic Bézier segment from the
// current start point through control point (cx,cy) to (x,y).
func (p *Path) QuadraticCurveTo(cx, cy, x, y float64) {
	p0 := p.start
	p1 := [2]float64{cx, cy}
	p2 := [2]float64{x, y}
	n := segmentCount(controlPolygonLength(p0, p1, p2))
	p.points = flattenQuadratic(p0, p1, p2, n)
	p.curve = true
}

// BezierCurveTo appends a flattened cubic Bézier segment from the current
// start point through control points (cx1,cy1),(cx2,cy2) to (x,y).
func (p *Path) BezierCurveTo(cx1, cy1, cx2, cy2, x, y float64) {
	p0 := p.start
	p1 := [2]float64{cx1, cy1}
	p2 := [2]float64{cx2, cy2}
	p3 := [2]float64{x, y}
	n := segmentCount(controlPolygonLength(p0, p1, p2, p3))
	p.points = flattenCubic(p0, p1, p2, p3, n)
	p.curve = true
}

// Stroke draws the flattened path as a polyline. The flattening step
// (segmentCount) caps each curve at maxBezierSegments segments, which bounds
// the work done on pathological control polygons.
func (p *Path) Stroke(s Surface, c Color) {
	if !p.curve || len(p.points) < 2 {
		return
	}
	pts := make([][2]int, len(p.points))
	for i, fp := range p.points {
		pts[i] = [2]int{int(math.Round(fp[0])), int(math.Round(fp[1]))}
	}
	Polyline(s, pts, c)
}

const maxBezierSegments = 4096

// segmentCount picks the number of line segments used to flatten a curve:
// the control-polygon length rounded up, so that each flattened leg
// projects to roughly <=1 pixel, capped to bound pathological inputs.
func segmentCount(controlPolygonLen float64) int {
	n := int(math.Ceil(controlPolygonLen))
	if n < 1 {
		n = 1
	}
	if n > maxBezierSegments {
		n = maxBezierSegments
	}
	return n
}

func controlPolygonLength(points ...[2]float64) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		dx := points[i][0] - points[i-1][0]
		dy := points[i][1] - points[i-1][1]
		total += math.Hypot(dx, dy)
	}
	return total
}

func flattenQuadratic(p0, p1, p2 [2]float64, n int) [][2]float64 {
	out := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*p0[0] + 2*mt*t*p1[0] + t*t*p2[0]
		y := mt*mt*p0[1] + 2*mt*t*p1[1] + t*t*p2[1]
		out = append(out, [2]float64{x, y})
	}
	return out
}

func flattenCubic(p0, p1, p2, p3 [2]float64, n int) [][2]float64 {
	out := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		x := mt*mt*mt*p0[0] + 3*mt*mt*t*p1[0] + 3*mt*t*t*p2[0] + t*t*t*p3[0]
		y := mt*mt*mt*p0[1] + 3*mt*mt*t*p1[1] + 3*mt*t*t*p2[1] + t*t*t*p3[1]
		out = append(out, [2]float64{x, y})
	}
	return out
}
