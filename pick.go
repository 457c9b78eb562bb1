package cad

import "github.com/chewxy/math32"

// PickTarget classifies what part of an entity a pick landed on.
type PickTarget uint8

const (
	TargetNone PickTarget = iota
	TargetBody
	TargetEdge
	TargetVertex
	TargetResizeHandle
	TargetRotateHandle
	TargetTextBody
	TargetTextCaret
)

// Corner indexes a rectangular resize handle, bottom-left origin,
// counter-clockwise: BL=0, BR=1, TR=2, TL=3.
type Corner uint8

const (
	CornerBL Corner = iota
	CornerBR
	CornerTR
	CornerTL
)

// Side indexes a rectangular side (edge-midpoint) handle: S=0, E=1, N=2,
// W=3.
type Side uint8

const (
	SideS Side = iota
	SideE
	SideN
	SideW
)

// PickResult is the outcome of a point pick: the entity hit, its kind, the
// sub-target classification, a sub-target-specific index, the squared
// distance from the query point to the hit point (world units), and the
// hit point itself clamped onto the entity's geometry (spec.md §4.4).
type PickResult struct {
	ID            EntityID
	Kind          EntityKind
	Target        PickTarget
	HandleIndex   int // Corner or Side value when Target is a handle kind
	VertexIndex   int // polyline point index when Target == TargetVertex
	CharIndex     int // logical caret index when Target == TargetTextCaret
	LineIndex     int // display line index when Target == TargetTextCaret
	IsLeadingEdge bool
	DistSq        float32
	HitX, HitY    float32
}

// MarqueeMode selects the selection-rectangle semantics.
type MarqueeMode uint8

const (
	// MarqueeWindow selects only entities wholly inside the rectangle.
	MarqueeWindow MarqueeMode = iota
	// MarqueeCrossing selects any entity that overlaps the rectangle.
	MarqueeCrossing
)

// Picker performs point and area hit tests against a Store, using a
// SpatialIndex for coarse candidate narrowing before an exact per-kind
// test. Screen-pixel tolerances are converted to world units by dividing
// by the store's current view scale, the same convention render.go uses
// for stroke width.
type Picker struct {
	index *SpatialIndex
}

// NewPicker creates a picker backed by the given spatial index.
func NewPicker(index *SpatialIndex) *Picker {
	return &Picker{index: index}
}

func (pk *Picker) tolWorld(s *Store, tolerancePx float32) float32 {
	scale := s.ViewScale()
	if scale <= 0 {
		scale = 1
	}
	return tolerancePx / scale
}

// Pick finds the topmost drawable entity whose geometry contains (x, y)
// within tolerancePx screen pixels. Draw order is scanned back to front
// (last-drawn wins ties, tie-break rule).
func (pk *Picker) Pick(s *Store, x, y, tolerancePx float32) (PickResult, bool) {
	tol := pk.tolWorld(s, tolerancePx)
	area := Rect{X: x - tol, Y: y - tol, Width: 2 * tol, Height: 2 * tol}
	candidates := pk.index.Query(s, area)
	inCandidates := make(map[EntityID]bool, len(candidates))
	for _, id := range candidates {
		inCandidates[id] = true
	}

	order := s.DrawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if !inCandidates[id] {
			continue
		}
		if hit, ok := pk.hitTest(s, id, x, y, tol); ok {
			kind, _ := s.Kind(id)
			return PickResult{
				ID: id, Kind: kind, Target: hit.Target,
				HandleIndex: hit.HandleIndex, VertexIndex: hit.VertexIndex,
				CharIndex: hit.CharIndex, LineIndex: hit.LineIndex, IsLeadingEdge: hit.IsLeadingEdge,
				DistSq: hit.DistSq, HitX: hit.HitX, HitY: hit.HitY,
			}, true
		}
	}
	return PickResult{}, false
}

// hitInfo is hitTest's per-kind result before the entity id/kind are
// attached by Pick.
type hitInfo struct {
	Target        PickTarget
	HandleIndex   int
	VertexIndex   int
	CharIndex     int
	LineIndex     int
	IsLeadingEdge bool
	DistSq        float32
	HitX, HitY    float32
}

func bodyHit(x, y float32) hitInfo {
	return hitInfo{Target: TargetBody, HitX: x, HitY: y}
}

// hitTest runs the exact, per-kind geometric containment test, preferring
// the most specific sub-target (vertex over edge over body) the spec's
// tie-break rule calls for.
func (pk *Picker) hitTest(s *Store, id EntityID, x, y, tol float32) (hitInfo, bool) {
	kind, ok := s.Kind(id)
	if !ok {
		return hitInfo{}, false
	}
	switch kind {
	case KindRect:
		e, _ := s.FindRect(id)
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.X, e.Y)
		inv := invertAffine(m)
		lx, ly := inv.apply(x, y)
		if lx < -tol || lx > e.W+tol || ly < -tol || ly > e.H+tol {
			return hitInfo{}, false
		}
		clx, cly := clampf(lx, 0, e.W), clampf(ly, 0, e.H)
		dx, dy := lx-clx, ly-cly
		hx, hy := m.apply(clx, cly)
		return hitInfo{Target: TargetBody, DistSq: dx*dx + dy*dy, HitX: hx, HitY: hy}, true

	case KindLine:
		e, _ := s.FindLine(id)
		cx, cy, distSq := closestPointOnSegment(x, y, e.X1, e.Y1, e.X2, e.Y2)
		if math32.Sqrt(distSq) <= tol+e.StrokeWidthPx/2 {
			return hitInfo{Target: TargetEdge, DistSq: distSq, HitX: cx, HitY: cy}, true
		}
		return hitInfo{}, false

	case KindPolyline:
		e, _ := s.FindPolyline(id)
		pts := s.PolylinePoints(*e)
		for i, p := range pts {
			distSq := sqDist(x, y, p.X, p.Y)
			if math32.Sqrt(distSq) <= tol {
				return hitInfo{Target: TargetVertex, VertexIndex: i, DistSq: distSq, HitX: p.X, HitY: p.Y}, true
			}
		}
		for i := 0; i+1 < len(pts); i++ {
			cx, cy, distSq := closestPointOnSegment(x, y, pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y)
			if math32.Sqrt(distSq) <= tol+e.StrokeWidthPx/2 {
				return hitInfo{Target: TargetEdge, VertexIndex: i, DistSq: distSq, HitX: cx, HitY: cy}, true
			}
		}
		return hitInfo{}, false

	case KindCircle:
		e, _ := s.FindCircle(id)
		m := rotateScaleAbout(0, 0, e.Scale, e.Scale, e.Rotation, e.CenterX, e.CenterY)
		inv := invertAffine(m)
		lx, ly := inv.apply(x, y)
		if e.RadiusX <= 0 || e.RadiusY <= 0 {
			return hitInfo{}, false
		}
		nx, ny := lx/e.RadiusX, ly/e.RadiusY
		r := math32.Sqrt(nx*nx + ny*ny)
		if r > 1+tol {
			return hitInfo{}, false
		}
		if r <= 1 {
			return bodyHit(x, y), true
		}
		blx, bly := lx/r, ly/r
		dx, dy := lx-blx, ly-bly
		hx, hy := m.apply(blx, bly)
		return hitInfo{Target: TargetBody, DistSq: dx*dx + dy*dy, HitX: hx, HitY: hy}, true

	case KindPolygon:
		e, _ := s.FindPolygon(id)
		pts := regularPolygonPoints(e.CenterX, e.CenterY, e.RadiusX*e.Scale, e.RadiusY*e.Scale, e.Rotation, e.Sides)
		if pointInPolygon(x, y, pts) {
			return bodyHit(x, y), true
		}
		return hitInfo{}, false

	case KindArrow:
		e, _ := s.FindArrow(id)
		cx, cy, distSq := closestPointOnSegment(x, y, e.X1, e.Y1, e.X2, e.Y2)
		if math32.Sqrt(distSq) <= tol+e.StrokeWidthPx/2+e.HeadSize {
			return hitInfo{Target: TargetEdge, DistSq: distSq, HitX: cx, HitY: cy}, true
		}
		return hitInfo{}, false

	case KindConduit:
		e, _ := s.FindConduit(id)
		x1, y1, ok1 := s.ResolveNodePosition(e.FromNode)
		x2, y2, ok2 := s.ResolveNodePosition(e.ToNode)
		if !ok1 || !ok2 {
			return hitInfo{}, false
		}
		cx, cy, distSq := closestPointOnSegment(x, y, x1, y1, x2, y2)
		if math32.Sqrt(distSq) <= tol+e.StrokeWidthPx/2 {
			return hitInfo{Target: TargetEdge, DistSq: distSq, HitX: cx, HitY: cy}, true
		}
		return hitInfo{}, false

	case KindText:
		e, _ := s.FindText(id)
		w := e.ConstraintWidth
		if e.Box == BoxAutoWidth {
			w = textEstimatedWidth(e)
		}
		h := textEstimatedHeight(e)
		m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.X, e.Y)
		inv := invertAffine(m)
		lx, ly := inv.apply(x, y)
		if lx < -tol || lx > w+tol || ly < -tol || ly > h+tol {
			return hitInfo{}, false
		}
		charIndex, lineIndex, leading := HitTestText(e, lx, ly)
		return hitInfo{
			Target: TargetTextCaret, CharIndex: charIndex, LineIndex: lineIndex,
			IsLeadingEdge: leading, HitX: x, HitY: y,
		}, true

	default:
		return hitInfo{}, false
	}
}

// QueryMarquee returns every drawable entity matching the given marquee
// mode against area.
func (pk *Picker) QueryMarquee(s *Store, area Rect, mode MarqueeMode) []EntityID {
	candidates := pk.index.Query(s, area)
	var out []EntityID
	for _, id := range candidates {
		b, ok := entityBounds(s, id)
		if !ok {
			continue
		}
		switch mode {
		case MarqueeWindow:
			if area.ContainsRect(b) {
				out = append(out, id)
			}
		case MarqueeCrossing:
			if area.Intersects(b) {
				out = append(out, id)
			}
		}
	}
	return out
}

// QueryArea returns every drawable entity whose bounds intersect area,
// without the window/crossing distinction (a plain overlap query).
func (pk *Picker) QueryArea(s *Store, area Rect) []EntityID {
	return pk.QueryMarquee(s, area, MarqueeCrossing)
}

// --- resize/rotate handle layout -----------------------------------------

// HandleLayout computes the world-space positions of an entity's resize
// corners, resize sides, and rotate handle from its local bounding box
// (w, h) and its object-to-world affine transform. The rotate handle sits
// rotateGapWorld world units above the top-center side handle.
type HandleLayout struct {
	Corners [4]Vec2 // indexed by Corner
	Sides   [4]Vec2 // indexed by Side
	Rotate  Vec2
}

func ComputeHandleLayout(m affine, w, h, rotateGapWorld float32) HandleLayout {
	var hl HandleLayout
	hl.Corners[CornerBL].X, hl.Corners[CornerBL].Y = m.apply(0, 0)
	hl.Corners[CornerBR].X, hl.Corners[CornerBR].Y = m.apply(w, 0)
	hl.Corners[CornerTR].X, hl.Corners[CornerTR].Y = m.apply(w, h)
	hl.Corners[CornerTL].X, hl.Corners[CornerTL].Y = m.apply(0, h)

	hl.Sides[SideS].X, hl.Sides[SideS].Y = m.apply(w/2, 0)
	hl.Sides[SideE].X, hl.Sides[SideE].Y = m.apply(w, h/2)
	hl.Sides[SideN].X, hl.Sides[SideN].Y = m.apply(w/2, h)
	hl.Sides[SideW].X, hl.Sides[SideW].Y = m.apply(0, h/2)

	hl.Rotate.X, hl.Rotate.Y = m.apply(w/2, h+rotateGapWorld)
	return hl
}

// PickHandle tests (x, y) against a computed handle layout, returning the
// nearest handle within tolerance, preferring corners over sides over the
// rotate handle on overlap (corners carry the most specific intent).
func PickHandle(hl HandleLayout, x, y, tol float32) (PickTarget, int, bool) {
	for _, group := range [][4]Vec2{hl.Corners, hl.Sides} {
		best, bestDist := -1, tol
		for i, p := range group {
			if d := distPoint(x, y, p.X, p.Y); d <= bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			return TargetResizeHandle, best, true
		}
	}
	if distPoint(x, y, hl.Rotate.X, hl.Rotate.Y) <= tol {
		return TargetRotateHandle, 0, true
	}
	return TargetNone, 0, false
}

// --- geometry helpers ------------------------------------------------------

func distPoint(x1, y1, x2, y2 float32) float32 {
	dx, dy := x2-x1, y2-y1
	return math32.Sqrt(dx*dx + dy*dy)
}

// sqDist returns the squared distance between two points, the form the
// pick record's tie-break rule ranks by (spec.md §4.4).
func sqDist(x1, y1, x2, y2 float32) float32 {
	dx, dy := x2-x1, y2-y1
	return dx*dx + dy*dy
}

// closestPointOnSegment returns the point on segment (x1,y1)-(x2,y2)
// nearest (px,py), along with the squared distance to it.
func closestPointOnSegment(px, py, x1, y1, x2, y2 float32) (cx, cy, distSq float32) {
	dx, dy := x2-x1, y2-y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return x1, y1, sqDist(px, py, x1, y1)
	}
	t := ((px-x1)*dx + (py-y1)*dy) / lenSq
	t = clampf(t, 0, 1)
	cx, cy = x1+t*dx, y1+t*dy
	return cx, cy, sqDist(px, py, cx, cy)
}

func regularPolygonPoints(cx, cy, rx, ry, rotation float32, sides int) []Vec2 {
	if sides < 3 {
		sides = 3
	}
	pts := make([]Vec2, sides)
	m := rotateScaleAbout(0, 0, 1, 1, rotation, cx, cy)
	for i := 0; i < sides; i++ {
		theta := 2 * math32.Pi * float32(i) / float32(sides)
		lx, ly := rx*math32.Cos(theta), ry*math32.Sin(theta)
		wx, wy := m.apply(lx, ly)
		pts[i] = Vec2{X: wx, Y: wy}
	}
	return pts
}

// pointInPolygon is a standard even-odd ray-casting test.
func pointInPolygon(x, y float32, pts []Vec2) bool {
	inside := false
	n := len(pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pts[i], pts[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}
