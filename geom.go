package cad

import "github.com/chewxy/math32"

// Vec2 is a 2-D point or vector in world-space units.
type Vec2 struct {
	X, Y float32
}

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// ColorTransparent is the zero value Color (fully transparent black).
var ColorTransparent = Color{}

// Rect is an axis-aligned rectangle. The coordinate system has no fixed
// handedness requirement; callers are consistent about Y direction.
type Rect struct {
	X, Y, Width, Height float32
}

// Contains reports whether the point (x, y) lies inside the rectangle,
// inclusive of the boundary.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely within r (the
// "Window" marquee-pick semantics).
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Intersects reports whether r and other overlap or touch (the
// "Crossing" marquee-pick semantics).
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other. A
// rectangle with zero width and zero height counts as empty: the other
// rectangle is returned unchanged, so a single point never widens a union.
func (r Rect) Union(other Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return other
	}
	if other.Width == 0 && other.Height == 0 {
		return r
	}
	minX := math32.Min(r.X, other.X)
	minY := math32.Min(r.Y, other.Y)
	maxX := math32.Max(r.X+r.Width, other.X+other.Width)
	maxY := math32.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// affine is a 2-D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// newX = a*x + c*y + tx, newY = b*x + d*y + ty.
//
// This is the standard scene-graph node transform layout: one matrix per
// node, composed pivot -> scale -> rotate -> translate; the engine reuses
// it for per-entity rotation/scale around a pivot.
type affine [6]float32

// identityAffine is the identity matrix.
var identityAffine = affine{1, 0, 0, 1, 0, 0}

// rotateScaleAbout builds the affine transform that rotates by angle
// radians and scales by (sx, sy) about the pivot (px, py), then
// translates so the pivot maps to (px+tx, py+ty).
func rotateScaleAbout(px, py, sx, sy, angle, tx, ty float32) affine {
	sin, cos := math32.Sincos(angle)
	a := cos * sx
	b := sin * sx
	c := -sin * sy
	d := cos * sy
	// Translate(-pivot) -> Scale -> Rotate -> Translate(pivot + t)
	preTx := -px * sx
	preTy := -py * sy
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy
	return affine{a, b, c, d, rtx + px + tx, rty + py + ty}
}

// apply transforms the point (x, y) by m.
func (m affine) apply(x, y float32) (float32, float32) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// multiplyAffine composes two affine matrices: result = p * c (p applied
// after c, i.e. c is the inner transform).
func multiplyAffine(p, c affine) affine {
	return affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the inverse of m, or the identity if m is singular.
func invertAffine(m affine) affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-9 && det < 1e-9 {
		return identityAffine
	}
	invDet := 1 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// worldAABB computes the axis-aligned bounding box of a w x h rectangle
// (local origin at (0,0)) transformed by m.
func worldAABB(m affine, w, h float32) Rect {
	x0, y0 := m.apply(0, 0)
	x1, y1 := m.apply(w, 0)
	x2, y2 := m.apply(w, h)
	x3, y3 := m.apply(0, h)
	minX := math32.Min(math32.Min(x0, x1), math32.Min(x2, x3))
	minY := math32.Min(math32.Min(y0, y1), math32.Min(y2, y3))
	maxX := math32.Max(math32.Max(x0, x1), math32.Max(x2, x3))
	maxY := math32.Max(math32.Max(y0, y1), math32.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// clampf clamps v to [lo, hi].
func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
