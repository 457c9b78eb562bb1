package cad

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetViewScale(3.0)
	s.UpsertRect(Rect{ID: 1, X: 1, Y: 2, W: 3, H: 4, Fill: Color{R: 1, A: 1}})
	s.UpsertPolylinePoints(2, []Vec2{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 0}}, Polyline{Stroke: Color{B: 1, A: 1}, StrokeEnabled: true, StrokeWidthPx: 2})
	s.UpsertText(Text{ID: 3, Content: []byte("hi")})

	buf := s.BuildSnapshotBytes()

	loaded, derr := LoadSnapshot(buf)
	if derr != nil {
		t.Fatalf("LoadSnapshot failed: %v", derr)
	}
	if loaded.ViewScale() != 3.0 {
		t.Fatalf("want view scale 3.0, got %v", loaded.ViewScale())
	}
	r, ok := loaded.FindRect(1)
	if !ok || r.X != 1 || r.W != 3 {
		t.Fatalf("rect did not round-trip: %+v ok=%v", r, ok)
	}
	p, ok := loaded.FindPolyline(2)
	if !ok {
		t.Fatalf("polyline missing after round trip")
	}
	pts := loaded.PolylinePoints(*p)
	if len(pts) != 3 || pts[1].X != 5 {
		t.Fatalf("polyline points did not round-trip: %+v", pts)
	}
	if loaded.generation != 0 || !loaded.renderDirty || loaded.snapshotDirty {
		t.Fatalf("loaded snapshot should start at generation 0 with render dirty set and snapshot dirty clear")
	}
}

func TestLoadSnapshotRejectsBadMagic(t *testing.T) {
	_, derr := LoadSnapshot([]byte{1, 2, 3, 4})
	if derr == nil || derr.Kind != KindInvalidMagic {
		t.Fatalf("want InvalidMagic, got %v", derr)
	}
}
