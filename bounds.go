package cad

import "github.com/chewxy/math32"

// entityBounds returns the world-space axis-aligned bounding box of a
// drawable entity, used by both the spatial index (cell assignment) and
// picking (coarse rejection before a precise per-kind test). Non-drawable
// kinds (Symbol, Node) report ok=false; Conduit resolves through its two
// endpoint nodes.
func entityBounds(s *Store, id EntityID) (Rect, bool) {
	kind, ok := s.Kind(id)
	if !ok {
		return Rect{}, false
	}
	switch kind {
	case KindRect:
		e, _ := s.FindRect(id)
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.X, e.Y)
		return worldAABB(m, e.W, e.H), true

	case KindLine:
		e, _ := s.FindLine(id)
		return segmentBounds(e.X1, e.Y1, e.X2, e.Y2), true

	case KindPolyline:
		e, _ := s.FindPolyline(id)
		pts := s.PolylinePoints(*e)
		if len(pts) == 0 {
			return Rect{}, false
		}
		minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
		for _, p := range pts[1:] {
			minX, minY = math32.Min(minX, p.X), math32.Min(minY, p.Y)
			maxX, maxY = math32.Max(maxX, p.X), math32.Max(maxY, p.Y)
		}
		return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true

	case KindCircle:
		e, _ := s.FindCircle(id)
		rx, ry := e.RadiusX*e.Scale, e.RadiusY*e.Scale
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.CenterX, e.CenterY)
		return worldAABB(m, 0, 0).Union(circleBounds(m, rx, ry)), true

	case KindPolygon:
		e, _ := s.FindPolygon(id)
		rx, ry := e.RadiusX*e.Scale, e.RadiusY*e.Scale
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.CenterX, e.CenterY)
		return circleBounds(m, rx, ry), true

	case KindArrow:
		e, _ := s.FindArrow(id)
		b := segmentBounds(e.X1, e.Y1, e.X2, e.Y2)
		pad := e.HeadSize
		return Rect{X: b.X - pad, Y: b.Y - pad, Width: b.Width + 2*pad, Height: b.Height + 2*pad}, true

	case KindConduit:
		e, _ := s.FindConduit(id)
		x1, y1, ok1 := s.ResolveNodePosition(e.FromNode)
		x2, y2, ok2 := s.ResolveNodePosition(e.ToNode)
		if !ok1 || !ok2 {
			return Rect{}, false
		}
		return segmentBounds(x1, y1, x2, y2), true

	case KindText:
		e, _ := s.FindText(id)
		w := e.ConstraintWidth
		if e.Box == BoxAutoWidth {
			w = textEstimatedWidth(e)
		}
		h := textEstimatedHeight(e)
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.X, e.Y)
		return worldAABB(m, w, h), true

	default:
		return Rect{}, false
	}
}

func segmentBounds(x1, y1, x2, y2 float32) Rect {
	minX, maxX := math32.Min(x1, x2), math32.Max(x1, x2)
	minY, maxY := math32.Min(y1, y2), math32.Max(y1, y2)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// circleBounds returns the world AABB of an axis-aligned ellipse with
// radii (rx, ry) centered at the translation component of m, accounting
// for m's rotation by bounding the rotated ellipse conservatively via its
// enclosing rotated rectangle's corners.
func circleBounds(m affine, rx, ry float32) Rect {
	return worldAABB(affine{m[0], m[1], m[2], m[3], m[4] - rx*m[0] - ry*m[2], m[5] - rx*m[1] - ry*m[3]}, 2*rx, 2*ry)
}
