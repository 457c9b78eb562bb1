package cad

import "testing"

func TestSelectionOutlineMetaCoversSelectedEntities(t *testing.T) {
	e := NewEngine()
	e.Store().UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	e.Store().UpsertCircle(Circle{ID: 2, CenterX: 50, CenterY: 50, RadiusX: 5, RadiusY: 5, Scale: 1})

	e.SetSelection(nil)
	if meta := e.GetSelectionOutlineMeta(); meta.VertexCount != 0 {
		t.Fatalf("empty selection should produce an empty outline, got %d vertices", meta.VertexCount)
	}

	e.SetSelection([]EntityID{1, 2})
	meta := e.GetSelectionOutlineMeta()
	if meta.VertexCount == 0 {
		t.Fatalf("non-empty selection should produce outline vertices")
	}
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("Selection() should report the 2 ids just set, got %v", got)
	}
}

func TestSelectionHandleMetaOneCrossPerHandle(t *testing.T) {
	e := NewEngine()
	e.Store().UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	e.SetSelection([]EntityID{1})

	meta := e.GetSelectionHandleMeta()
	// 9 handles (4 corners + 4 sides + 1 rotate), 2 line segments each, 2
	// vertices per segment.
	want := 9 * 2 * 2
	if meta.VertexCount != want {
		t.Fatalf("want %d handle-marker vertices, got %d", want, meta.VertexCount)
	}
}

func TestSnapOverlayDisabledByDefault(t *testing.T) {
	e := NewEngine()
	e.Store().UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	meta := e.GetSnapOverlayMeta(5, 5)
	if meta.VertexCount != 0 {
		t.Fatalf("snap overlay should be empty until SetSnapConfig enables it, got %d", meta.VertexCount)
	}
}

func TestSnapOverlayGridSnapsNearestGridPoint(t *testing.T) {
	e := NewEngine()
	e.SetSnapConfig(SnapConfig{Enabled: true, Grid: true, GridSize: 10})
	meta := e.GetSnapOverlayMeta(12, 3)
	if meta.VertexCount != 4 { // one marker: two crossed line segments
		t.Fatalf("want 4 vertices for a single grid-snap marker, got %d", meta.VertexCount)
	}
}
