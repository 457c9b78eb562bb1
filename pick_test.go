package cad

import "testing"

func TestPickerHitsTopmostOnOverlap(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}})
	s.UpsertRect(Rect{ID: 2, X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}})

	ix := NewSpatialIndex(64)
	ix.Rebuild(s)
	pk := NewPicker(ix)

	res, ok := pk.Pick(s, 5, 5, 1)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if res.ID != 2 {
		t.Fatalf("want topmost (last drawn) id 2, got %d", res.ID)
	}
}

func TestPickerMissesOutsideBounds(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	ix := NewSpatialIndex(64)
	ix.Rebuild(s)
	pk := NewPicker(ix)

	if _, ok := pk.Pick(s, 1000, 1000, 1); ok {
		t.Fatalf("expected no hit far from any entity")
	}
}

func TestPickerLineHitsNearSegment(t *testing.T) {
	s := NewStore()
	s.UpsertLine(Line{ID: 1, X1: 0, Y1: 0, X2: 100, Y2: 0, Enabled: true, StrokeWidthPx: 2})
	ix := NewSpatialIndex(64)
	ix.Rebuild(s)
	pk := NewPicker(ix)

	res, ok := pk.Pick(s, 50, 0, 1)
	if !ok || res.Target != TargetEdge {
		t.Fatalf("expected an edge hit on the line, got %+v ok=%v", res, ok)
	}
}

func TestQueryMarqueeWindowVsCrossing(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	s.UpsertRect(Rect{ID: 2, X: 5, Y: 5, W: 100, H: 100})

	ix := NewSpatialIndex(64)
	ix.Rebuild(s)
	pk := NewPicker(ix)

	area := Rect{X: -1, Y: -1, Width: 12, Height: 12}
	window := pk.QueryMarquee(s, area, MarqueeWindow)
	if len(window) != 1 || window[0] != 1 {
		t.Fatalf("window marquee should select only the fully-contained rect, got %v", window)
	}

	crossing := pk.QueryMarquee(s, area, MarqueeCrossing)
	if len(crossing) != 2 {
		t.Fatalf("crossing marquee should select both overlapping rects, got %v", crossing)
	}
}

func TestComputeHandleLayoutAndPickHandle(t *testing.T) {
	m := rotateScaleAbout(0, 0, 1, 1, 0, 10, 10)
	hl := ComputeHandleLayout(m, 20, 20, 5)

	if hl.Corners[CornerBL].X != 10 || hl.Corners[CornerBL].Y != 10 {
		t.Fatalf("bottom-left corner should be at the translation origin, got %+v", hl.Corners[CornerBL])
	}
	if hl.Corners[CornerTR].X != 30 || hl.Corners[CornerTR].Y != 30 {
		t.Fatalf("top-right corner should be at (30,30), got %+v", hl.Corners[CornerTR])
	}

	target, idx, ok := PickHandle(hl, 10, 10, 1)
	if !ok || target != TargetResizeHandle || idx != int(CornerBL) {
		t.Fatalf("want resize handle at corner BL, got target=%v idx=%d ok=%v", target, idx, ok)
	}

	target, _, ok = PickHandle(hl, hl.Rotate.X, hl.Rotate.Y, 1)
	if !ok || target != TargetRotateHandle {
		t.Fatalf("want rotate handle hit, got target=%v ok=%v", target, ok)
	}
}
