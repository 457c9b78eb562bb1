package cad

import "testing"

func TestStoreUpsertAndSwapRemove(t *testing.T) {
	s := NewStore()
	a := EntityID(1)
	b := EntityID(2)
	c := EntityID(3)

	s.UpsertRect(Rect{ID: a, W: 10, H: 10})
	s.UpsertRect(Rect{ID: b, W: 20, H: 20})
	s.UpsertRect(Rect{ID: c, W: 30, H: 30})

	if got := len(s.rects); got != 3 {
		t.Fatalf("want 3 rects, got %d", got)
	}

	s.Delete(a) // removes the first slot, swaps c into it
	if _, ok := s.FindRect(a); ok {
		t.Fatalf("a should be gone")
	}
	rc, ok := s.FindRect(c)
	if !ok || rc.W != 30 {
		t.Fatalf("c should have survived the swap, got %+v ok=%v", rc, ok)
	}
	rb, ok := s.FindRect(b)
	if !ok || rb.W != 20 {
		t.Fatalf("b should be untouched, got %+v ok=%v", rb, ok)
	}
	if len(s.rects) != 2 {
		t.Fatalf("want 2 rects after delete, got %d", len(s.rects))
	}
}

func TestStoreDrawOrderAutoAppendAndDelete(t *testing.T) {
	s := NewStore()
	id := EntityID(1)
	s.UpsertRect(Rect{ID: id, W: 1, H: 1})

	order := s.DrawOrder()
	if len(order) != 1 || order[0] != id {
		t.Fatalf("expected new rect auto-appended to draw order, got %v", order)
	}

	s.Delete(id)
	if len(s.DrawOrder()) != 0 {
		t.Fatalf("expected draw order empty after delete, got %v", s.DrawOrder())
	}
}

func TestStoreUpsertKindMismatchDeletesOld(t *testing.T) {
	s := NewStore()
	id := EntityID(5)
	s.UpsertRect(Rect{ID: id, W: 1, H: 1})
	s.UpsertLine(Line{ID: id, X2: 1})

	if _, ok := s.FindRect(id); ok {
		t.Fatalf("rect should have been replaced by kind mismatch")
	}
	if _, ok := s.FindLine(id); !ok {
		t.Fatalf("line should now exist at id")
	}
}

func TestStoreSetViewScaleRejectsNonFinite(t *testing.T) {
	s := NewStore()
	s.SetViewScale(2.0)
	if s.ViewScale() != 2.0 {
		t.Fatalf("want 2.0, got %v", s.ViewScale())
	}
	nan := float32(0)
	nan = nan / nan
	s.SetViewScale(nan)
	if s.ViewScale() != 1.0 {
		t.Fatalf("NaN should fall back to 1.0, got %v", s.ViewScale())
	}
}

func TestPolylinePointsAndCompact(t *testing.T) {
	s := NewStore()
	id := EntityID(1)
	pts := []Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	s.UpsertPolylinePoints(id, pts, Polyline{})

	p, ok := s.FindPolyline(id)
	if !ok {
		t.Fatalf("polyline not found")
	}
	got := s.PolylinePoints(*p)
	if len(got) != 3 || got[1].X != 1 {
		t.Fatalf("unexpected points: %+v", got)
	}

	other := EntityID(2)
	s.UpsertPolylinePoints(other, []Vec2{{X: 9, Y: 9}}, Polyline{})
	s.Delete(id)
	s.CompactPoints()

	p2, ok := s.FindPolyline(other)
	if !ok {
		t.Fatalf("other polyline missing after compact")
	}
	remaining := s.PolylinePoints(*p2)
	if len(remaining) != 1 || remaining[0].X != 9 {
		t.Fatalf("compact corrupted remaining points: %+v", remaining)
	}
}

func TestResolveNodePosition(t *testing.T) {
	s := NewStore()
	s.UpsertSymbol(Symbol{ID: 1, X: 100, Y: 100, W: 10, H: 10, Scale: 1, AnchorU: 1, AnchorV: 0})
	s.UpsertNode(Node{ID: 2, Kind: NodeAnchored, SymbolID: 1})
	s.UpsertNode(Node{ID: 3, Kind: NodeFree, X: 5, Y: 7})

	x, y, ok := s.ResolveNodePosition(2)
	if !ok {
		t.Fatalf("expected anchored node to resolve")
	}
	if x != 110 || y != 100 {
		t.Fatalf("want (110,100), got (%v,%v)", x, y)
	}

	x, y, ok = s.ResolveNodePosition(3)
	if !ok || x != 5 || y != 7 {
		t.Fatalf("free node should return stored position, got (%v,%v) ok=%v", x, y, ok)
	}

	if _, _, ok := s.ResolveNodePosition(999); ok {
		t.Fatalf("missing node should not resolve")
	}
}
