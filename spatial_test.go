package cad

import "testing"

func TestSpatialIndexRebuildAndQuery(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	s.UpsertRect(Rect{ID: 2, X: 1000, Y: 1000, W: 10, H: 10})

	ix := NewSpatialIndex(64)
	ix.Rebuild(s)

	near := ix.Query(s, Rect{X: -5, Y: -5, Width: 20, Height: 20})
	found := false
	for _, id := range near {
		if id == 1 {
			found = true
		}
		if id == 2 {
			t.Fatalf("far rect should not be a candidate near the origin")
		}
	}
	if !found {
		t.Fatalf("rect 1 should be a candidate near the origin, got %v", near)
	}
}

func TestSpatialIndexStaleAfterMutation(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})

	ix := NewSpatialIndex(64)
	ix.Rebuild(s)
	if ix.stale(s) {
		t.Fatalf("index should not be stale right after Rebuild")
	}

	s.UpsertRect(Rect{ID: 2, X: 5, Y: 5, W: 5, H: 5})
	s.generation++ // Store mutations never bump generation; batch owners do.
	if !ix.stale(s) {
		t.Fatalf("index should be stale after a store mutation bumped the generation")
	}
}
