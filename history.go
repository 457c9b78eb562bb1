package cad

import "github.com/jinzhu/copier"

// HistoryEntry is one reversible change: the entity's value immediately
// before and immediately after the change, either of which may be nil to
// mean "did not exist" (a create has Before == nil, a delete has
// After == nil). Values are deep copies, not references into Store's
// tables, so a later mutation of the live entity can never corrupt a
// recorded entry.
type HistoryEntry struct {
	ID     EntityID
	Kind   EntityKind
	Before any
	After  any
}

// History is a bounded, append-only undo/redo log with a cursor: entries
// before the cursor are undoable, entries at or after it (up to the log's
// end) are redoable. Recording a new entry while the cursor isn't at the
// end truncates the redo tail, the conventional editor-history contract.
type History struct {
	entries  []HistoryEntry
	cursor   int // number of entries currently applied (undoable)
	capacity int
}

// NewHistory creates a history bounded to capacity entries; once full,
// recording a new entry evicts the oldest.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{capacity: capacity}
}

// snapshotEntity deep-copies the live value at id, or returns nil if id
// does not exist. Used to build a HistoryEntry's Before/After fields.
func snapshotEntity(s *Store, id EntityID) any {
	kind, ok := s.Kind(id)
	if !ok {
		return nil
	}
	switch kind {
	case KindRect:
		e, _ := s.FindRect(id)
		var cp Rect
		copier.Copy(&cp, e)
		return cp
	case KindLine:
		e, _ := s.FindLine(id)
		var cp Line
		copier.Copy(&cp, e)
		return cp
	case KindPolyline:
		e, _ := s.FindPolyline(id)
		var cp Polyline
		copier.Copy(&cp, e)
		cp.Offset, cp.Count = 0, e.Count
		pts := s.PolylinePoints(*e)
		return polylineSnapshot{Style: cp, Points: append([]Vec2(nil), pts...)}
	case KindCircle:
		e, _ := s.FindCircle(id)
		var cp Circle
		copier.Copy(&cp, e)
		return cp
	case KindPolygon:
		e, _ := s.FindPolygon(id)
		var cp Polygon
		copier.Copy(&cp, e)
		return cp
	case KindArrow:
		e, _ := s.FindArrow(id)
		var cp Arrow
		copier.Copy(&cp, e)
		return cp
	case KindSymbol:
		e, _ := s.FindSymbol(id)
		var cp Symbol
		copier.Copy(&cp, e)
		return cp
	case KindNode:
		e, _ := s.FindNode(id)
		var cp Node
		copier.Copy(&cp, e)
		return cp
	case KindConduit:
		e, _ := s.FindConduit(id)
		var cp Conduit
		copier.Copy(&cp, e)
		return cp
	case KindText:
		e, _ := s.FindText(id)
		var cp Text
		copier.CopyWithOption(&cp, e, copier.Option{DeepCopy: true})
		return cp
	default:
		return nil
	}
}

// polylineSnapshot carries a polyline's points alongside its style, since
// the live Polyline struct only stores pool offsets.
type polylineSnapshot struct {
	Style  Polyline
	Points []Vec2
}

// applyEntitySnapshot restores a previously captured snapshot (as
// returned by snapshotEntity) to the store, deleting id if value is nil.
func applyEntitySnapshot(s *Store, id EntityID, kind EntityKind, value any) {
	if value == nil {
		s.DeleteIfPresent(id)
		return
	}
	switch v := value.(type) {
	case Rect:
		v.ID = id
		s.UpsertRect(v)
	case Line:
		v.ID = id
		s.UpsertLine(v)
	case polylineSnapshot:
		v.Style.ID = id
		s.UpsertPolylinePoints(id, v.Points, v.Style)
	case Circle:
		v.ID = id
		s.UpsertCircle(v)
	case Polygon:
		v.ID = id
		s.UpsertPolygon(v)
	case Arrow:
		v.ID = id
		s.UpsertArrow(v)
	case Symbol:
		v.ID = id
		s.UpsertSymbol(v)
	case Node:
		v.ID = id
		s.UpsertNode(v)
	case Conduit:
		v.ID = id
		s.UpsertConduit(v)
	case Text:
		v.ID = id
		s.UpsertText(v)
	}
	_ = kind
}

// Record appends a new entry, truncating any redo tail beyond the
// cursor, then evicting the oldest entry if the log is at capacity.
func (h *History) Record(entry HistoryEntry) {
	h.entries = h.entries[:h.cursor]
	h.entries = append(h.entries, entry)
	h.cursor = len(h.entries)
	if len(h.entries) > h.capacity {
		overflow := len(h.entries) - h.capacity
		h.entries = h.entries[overflow:]
		h.cursor = len(h.entries)
	}
}

// RecordChange records an entry for id whose Before is the caller-captured
// before value and whose After is a fresh snapshot of id's current state.
// It always records; whether the change is worth recording is the
// caller's call.
func (h *History) RecordChange(s *Store, id EntityID, before any) {
	kind, _ := s.Kind(id)
	after := snapshotEntity(s, id)
	h.Record(HistoryEntry{ID: id, Kind: kind, Before: before, After: after})
}

// CanUndo and CanRedo report whether Undo/Redo would do anything.
func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.entries) }

// Undo reverts the most recently applied entry, if any, and advances the
// store's generation (spec.md §4.8: undo "increments generation").
func (h *History) Undo(s *Store) bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	e := h.entries[h.cursor]
	applyEntitySnapshot(s, e.ID, e.Kind, e.Before)
	s.generation++
	return true
}

// Redo re-applies the next entry past the cursor, if any, and advances the
// store's generation (spec.md §4.8: redo "increments generation").
func (h *History) Redo(s *Store) bool {
	if !h.CanRedo() {
		return false
	}
	e := h.entries[h.cursor]
	h.cursor++
	applyEntitySnapshot(s, e.ID, e.Kind, e.After)
	s.generation++
	return true
}

// Clear empties the history.
func (h *History) Clear() {
	h.entries = nil
	h.cursor = 0
}
