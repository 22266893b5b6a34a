package imageflow

import "math"

// Transform2D is a 2x3 affine transform (a b; c d; tx ty), applied to a
// point (x,y) as:
//
//	x' = a*x + c*y + tx
//	y' = b*x + d*y + ty
//
// The zero value is not identity; use [Identity] or [NewTransform2D].
type Transform2D struct {
	A, B, C, D, Tx, Ty float64
}

// Identity returns the identity transform.
func Identity() Transform2D {
	return Transform2D{A: 1, D: 1}
}

// NewTransform2D constructs a transform from its six matrix components.
func NewTransform2D(a, b, c, d, tx, ty float64) Transform2D {
	return Transform2D{A: a, B: b, C: c, D: d, Tx: tx, Ty: ty}
}

// Translation returns a pure translation transform.
func Translation(dx, dy float64) Transform2D {
	return Transform2D{A: 1, D: 1, Tx: dx, Ty: dy}
}

// Compose returns the matrix product t * other, matching the original's
// `operator*`: applying the result to a point first applies other, then t.
func (t Transform2D) Compose(other Transform2D) Transform2D {
	return Transform2D{
		A:  t.A*other.A + t.C*other.B,
		B:  t.B*other.A + t.D*other.B,
		C:  t.A*other.C + t.C*other.D,
		D:  t.B*other.C + t.D*other.D,
		Tx: t.A*other.Tx + t.C*other.Ty + t.Tx,
		Ty: t.B*other.Tx + t.D*other.Ty + t.Ty,
	}
}

// withPivot applies op around a pivot point by composing
// translate(pivot) * op * translate(-pivot), matching the original's
// rotate/scale/shear pivot handling.
func (t Transform2D) withPivot(op Transform2D, pivotX, pivotY float64) Transform2D {
	if pivotX == 0 && pivotY == 0 {
		return t.Compose(op)
	}
	pre := Translation(pivotX, pivotY)
	post := Translation(-pivotX, -pivotY)
	return t.Compose(pre).Compose(op).Compose(post)
}

// RotateRadians returns t with an additional rotation by radians around
// the given pivot (default origin).
func (t Transform2D) RotateRadians(radians, pivotX, pivotY float64) Transform2D {
	cosR, sinR := math.Cos(radians), math.Sin(radians)
	rot := Transform2D{A: cosR, B: sinR, C: -sinR, D: cosR}
	return t.withPivot(rot, pivotX, pivotY)
}

// RotateDegrees is RotateRadians in degrees.
func (t Transform2D) RotateDegrees(degrees, pivotX, pivotY float64) Transform2D {
	return t.RotateRadians(degrees*math.Pi/180.0, pivotX, pivotY)
}

// Scale returns t with an additional axis-aligned scale around the given
// pivot.
func (t Transform2D) Scale(sx, sy, pivotX, pivotY float64) Transform2D {
	sc := Transform2D{A: sx, D: sy}
	return t.withPivot(sc, pivotX, pivotY)
}

// Shear returns t with an additional shear around the given pivot.
func (t Transform2D) Shear(shx, shy, pivotX, pivotY float64) Transform2D {
	sh := Transform2D{A: 1, B: shy, C: shx, D: 1}
	return t.withPivot(sh, pivotX, pivotY)
}

// IsIdentity reports whether t is the identity transform within eps.
func (t Transform2D) IsIdentity(eps float64) bool {
	return math.Abs(t.A-1) <= eps && math.Abs(t.D-1) <= eps &&
		math.Abs(t.B) <= eps && math.Abs(t.C) <= eps &&
		math.Abs(t.Tx) <= eps && math.Abs(t.Ty) <= eps
}

// Apply transforms a point forward.
func (t Transform2D) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.Tx, t.B*x + t.D*y + t.Ty
}

// ApplyInverse transforms a point by the inverse of t. If t's determinant
// is degenerate (|det| <= 1e-12), the input point is returned unchanged,
// matching the original's fallback rather than failing.
func (t Transform2D) ApplyInverse(x, y float64) (float64, float64) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) <= 1e-12 {
		return x, y
	}
	invA := t.D / det
	invB := -t.B / det
	invC := -t.C / det
	invD := t.A / det
	invTx := -(invA*t.Tx + invC*t.Ty)
	invTy := -(invB*t.Tx + invD*t.Ty)
	return invA*x + invC*y + invTx, invB*x + invD*y + invTy
}
