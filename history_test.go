package cad

import "testing"

func TestHistoryRecordUndoRedo(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 1, H: 1})
	h := NewHistory(10)

	before := snapshotEntity(s, 1)
	r, _ := s.FindRect(1)
	r.X = 100
	h.RecordChange(s, 1, before)

	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("after recording a change, should be undoable and not redoable")
	}

	if !h.Undo(s) {
		t.Fatalf("undo should succeed")
	}
	e, _ := s.FindRect(1)
	if e.X != 0 {
		t.Fatalf("undo should have restored X=0, got %v", e.X)
	}
	if !h.CanRedo() {
		t.Fatalf("after undo, should be redoable")
	}

	if !h.Redo(s) {
		t.Fatalf("redo should succeed")
	}
	e, _ = s.FindRect(1)
	if e.X != 100 {
		t.Fatalf("redo should have restored X=100, got %v", e.X)
	}
}

func TestHistoryRecordTruncatesRedoTail(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 1, H: 1})
	h := NewHistory(10)

	before := snapshotEntity(s, 1)
	r, _ := s.FindRect(1)
	r.X = 1
	h.RecordChange(s, 1, before)

	h.Undo(s)
	if !h.CanRedo() {
		t.Fatalf("expected a redoable entry after undo")
	}

	before2 := snapshotEntity(s, 1)
	r, _ = s.FindRect(1)
	r.X = 2
	h.RecordChange(s, 1, before2)

	if h.CanRedo() {
		t.Fatalf("recording a new change should have truncated the redo tail")
	}
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 1, H: 1})
	h := NewHistory(2)

	for i := 1; i <= 3; i++ {
		before := snapshotEntity(s, 1)
		r, _ := s.FindRect(1)
		r.X = float32(i)
		h.RecordChange(s, 1, before)
	}

	undone := 0
	for h.Undo(s) {
		undone++
	}
	if undone != 2 {
		t.Fatalf("want exactly 2 undoable entries at capacity 2, got %d", undone)
	}
}

func TestHistoryUndoRedoOnDeletedEntityRecreatesIt(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 1, H: 1})
	h := NewHistory(10)

	before := snapshotEntity(s, 1)
	s.Delete(1)
	h.RecordChange(s, 1, before)

	if _, ok := s.FindRect(1); ok {
		t.Fatalf("setup: rect should be deleted")
	}
	if !h.Undo(s) {
		t.Fatalf("undo should succeed")
	}
	if _, ok := s.FindRect(1); !ok {
		t.Fatalf("undo should have recreated the deleted rect")
	}
	if !h.Redo(s) {
		t.Fatalf("redo should succeed")
	}
	if _, ok := s.FindRect(1); ok {
		t.Fatalf("redo should have deleted the rect again")
	}
}
