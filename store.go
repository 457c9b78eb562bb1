package cad

// location is the (kind, table-index) pair the id index resolves to.
// The table-index always equals the entity's current position in its
// typed table, which is what makes swap-with-last deletion O(1).
type location struct {
	kind EntityKind
	idx  int
}

// Store is the typed entity table: one contiguous slice per kind, a
// central id→(kind,index) index, an explicit draw order, and the shared
// polyline point pool. It has no notion of rendering or the wire format;
// Engine composes it with the codec, spatial index, and render builder.
type Store struct {
	rects     []Rect
	lines     []Line
	polylines []Polyline
	circles   []Circle
	polygons  []Polygon
	arrows    []Arrow
	symbols   []Symbol
	nodes     []Node
	conduits  []Conduit
	texts     []Text

	index map[EntityID]location

	drawOrder []EntityID

	points []Vec2 // shared polyline point pool, append-only until compacted

	viewScale float32

	nextID EntityID

	snapshotDirty bool
	renderDirty   bool
	generation    uint32
}

// NewStore creates an empty store with view scale 1.0.
func NewStore() *Store {
	s := &Store{index: make(map[EntityID]location)}
	s.resetState()
	return s
}

func (s *Store) resetState() {
	s.rects = s.rects[:0]
	s.lines = s.lines[:0]
	s.polylines = s.polylines[:0]
	s.circles = s.circles[:0]
	s.polygons = s.polygons[:0]
	s.arrows = s.arrows[:0]
	s.symbols = s.symbols[:0]
	s.nodes = s.nodes[:0]
	s.conduits = s.conduits[:0]
	s.texts = s.texts[:0]
	for k := range s.index {
		delete(s.index, k)
	}
	s.drawOrder = s.drawOrder[:0]
	s.points = s.points[:0]
	s.viewScale = 1.0
}

// allocID returns the next monotonic identifier. Ids are never reused
// while the engine instance is alive, even across deletes.
func (s *Store) allocID() EntityID {
	s.nextID++
	return s.nextID
}

// markDirty sets both dirty bits. Generation itself is bumped once per
// mutation batch by the caller that owns batch boundaries — once per
// command in Engine.ApplyCommandBuffer's loop, once per
// InteractionSession.Commit, and once per History.Undo/Redo — never here,
// since a single command or commit can call markDirty through more than
// one Upsert/Delete.
func (s *Store) markDirty() {
	s.snapshotDirty = true
	s.renderDirty = true
}

// Clear empties all tables, resets view scale to 1.0, clears the draw
// order, and marks both dirty bits.
func (s *Store) Clear() {
	s.resetState()
	s.markDirty()
}

// appendDrawOrder appends id to the draw order if it is not already
// present. New drawable entities are appended at the end by default;
// SetDrawOrder (§4.1) is the only way to reorder existing ids.
func (s *Store) appendDrawOrder(id EntityID) {
	for _, existing := range s.drawOrder {
		if existing == id {
			return
		}
	}
	s.drawOrder = append(s.drawOrder, id)
}

// removeDrawOrder removes id from the draw order, if present.
func (s *Store) removeDrawOrder(id EntityID) {
	for i, existing := range s.drawOrder {
		if existing == id {
			s.drawOrder = append(s.drawOrder[:i], s.drawOrder[i+1:]...)
			return
		}
	}
}

// SetDrawOrder replaces the draw order wholesale. Ids that do not currently resolve to a drawable kind
// are silently dropped, matching the decoder's tolerance for stale ids in
// a replayed command stream.
func (s *Store) SetDrawOrder(ids []EntityID) {
	order := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		loc, ok := s.index[id]
		if !ok || !loc.kind.isDrawable() {
			continue
		}
		order = append(order, id)
	}
	s.drawOrder = order
	s.markDirty()
}

// DrawOrder returns the current draw order. The returned slice must not be
// mutated by the caller.
func (s *Store) DrawOrder() []EntityID { return s.drawOrder }

// SetViewScale sets the scalar view scale used to size screen-pixel
// strokes in world units. Non-finite input falls back to 1.0; the value is
// clamped to a small positive finite range.
func (s *Store) SetViewScale(scale float32) {
	const minScale, maxScale = 1e-4, 1e6
	if scale-scale != 0 {
		// NaN and +/-Inf both give NaN here; every finite value gives 0.
		s.viewScale = 1.0
	} else {
		s.viewScale = clampf(scale, minScale, maxScale)
	}
	s.markDirty()
}

// ViewScale returns the current view scale.
func (s *Store) ViewScale() float32 { return s.viewScale }

// deleteAt removes the entity at the given location using swap-with-last,
// updating the global index for the entity that moved into its slot.
func (s *Store) deleteAt(loc location) {
	switch loc.kind {
	case KindRect:
		s.rects = swapRemove(s.rects, loc.idx, s.reindex)
	case KindLine:
		s.lines = swapRemove(s.lines, loc.idx, s.reindex)
	case KindPolyline:
		s.polylines = swapRemove(s.polylines, loc.idx, s.reindex)
	case KindCircle:
		s.circles = swapRemove(s.circles, loc.idx, s.reindex)
	case KindPolygon:
		s.polygons = swapRemove(s.polygons, loc.idx, s.reindex)
	case KindArrow:
		s.arrows = swapRemove(s.arrows, loc.idx, s.reindex)
	case KindSymbol:
		s.symbols = swapRemove(s.symbols, loc.idx, s.reindex)
	case KindNode:
		s.nodes = swapRemove(s.nodes, loc.idx, s.reindex)
	case KindConduit:
		s.conduits = swapRemove(s.conduits, loc.idx, s.reindex)
	case KindText:
		s.texts = swapRemove(s.texts, loc.idx, s.reindex)
	}
}

// reindex updates the id index after a swap-with-last moved the entity
// previously at lastIdx down to idx.
func (s *Store) reindex(kind EntityKind, movedID EntityID, idx int) {
	s.index[movedID] = location{kind: kind, idx: idx}
}

// Delete removes the entity by id, if present (no-op otherwise), using
// swap-with-last removal and updating the draw order.
func (s *Store) Delete(id EntityID) {
	loc, ok := s.index[id]
	if !ok {
		return
	}
	s.deleteAt(loc)
	delete(s.index, id)
	if loc.kind.isDrawable() {
		s.removeDrawOrder(id)
	}
	s.markDirty()
}

// DeleteIfPresent reports whether id existed before deleting it. Used by
// the command decoder and interaction commits where IdNotFound is
// non-fatal but observable.
func (s *Store) DeleteIfPresent(id EntityID) bool {
	_, ok := s.index[id]
	s.Delete(id)
	return ok
}

// deleteKindMismatch deletes id first if it currently exists under a
// different kind than want, matching the upsert contract that
// re-typing an id replaces whatever was there before.
func (s *Store) deleteKindMismatch(id EntityID, want EntityKind) {
	if loc, ok := s.index[id]; ok && loc.kind != want {
		s.Delete(id)
	}
}

// Kind reports the kind of a live id, and whether it exists.
func (s *Store) Kind(id EntityID) (EntityKind, bool) {
	loc, ok := s.index[id]
	return loc.kind, ok
}

// --- swap-with-last helper --------------------------------------------

// hasID extracts the id field from a typed table element; each entity type
// implements it below, and swapRemove uses it as its generic constraint.
type hasID interface {
	entityID() EntityID
}

func (r Rect) entityID() EntityID     { return r.ID }
func (l Line) entityID() EntityID     { return l.ID }
func (p Polyline) entityID() EntityID { return p.ID }
func (c Circle) entityID() EntityID   { return c.ID }
func (p Polygon) entityID() EntityID  { return p.ID }
func (a Arrow) entityID() EntityID    { return a.ID }
func (sy Symbol) entityID() EntityID  { return sy.ID }
func (n Node) entityID() EntityID     { return n.ID }
func (c Conduit) entityID() EntityID  { return c.ID }
func (t Text) entityID() EntityID     { return t.ID }

// swapRemove removes table[idx] by moving the last element into its slot
// (if idx wasn't already last), shrinking the table by one, and reporting
// the moved element's new position to reindex.
func swapRemove[T hasID](table []T, idx int, reindex func(EntityKind, EntityID, int)) []T {
	last := len(table) - 1
	var kind EntityKind
	switch any(table).(type) {
	case []Rect:
		kind = KindRect
	case []Line:
		kind = KindLine
	case []Polyline:
		kind = KindPolyline
	case []Circle:
		kind = KindCircle
	case []Polygon:
		kind = KindPolygon
	case []Arrow:
		kind = KindArrow
	case []Symbol:
		kind = KindSymbol
	case []Node:
		kind = KindNode
	case []Conduit:
		kind = KindConduit
	case []Text:
		kind = KindText
	}
	if idx != last {
		table[idx] = table[last]
		reindex(kind, table[idx].entityID(), idx)
	}
	var zero T
	table[last] = zero
	return table[:last]
}

// --- lookups -------------------------------------------------------------

// FindSymbol returns the symbol for id, if it exists.
func (s *Store) FindSymbol(id EntityID) (*Symbol, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindSymbol {
		return nil, false
	}
	return &s.symbols[loc.idx], true
}

// FindNode returns the node for id, if it exists.
func (s *Store) FindNode(id EntityID) (*Node, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindNode {
		return nil, false
	}
	return &s.nodes[loc.idx], true
}

// FindRect, FindLine, ... return pointers into the live table; callers
// must not retain them across any mutating call.
func (s *Store) FindRect(id EntityID) (*Rect, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindRect {
		return nil, false
	}
	return &s.rects[loc.idx], true
}

func (s *Store) FindLine(id EntityID) (*Line, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindLine {
		return nil, false
	}
	return &s.lines[loc.idx], true
}

func (s *Store) FindPolyline(id EntityID) (*Polyline, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindPolyline {
		return nil, false
	}
	return &s.polylines[loc.idx], true
}

func (s *Store) FindCircle(id EntityID) (*Circle, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindCircle {
		return nil, false
	}
	return &s.circles[loc.idx], true
}

func (s *Store) FindPolygon(id EntityID) (*Polygon, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindPolygon {
		return nil, false
	}
	return &s.polygons[loc.idx], true
}

func (s *Store) FindArrow(id EntityID) (*Arrow, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindArrow {
		return nil, false
	}
	return &s.arrows[loc.idx], true
}

func (s *Store) FindConduit(id EntityID) (*Conduit, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindConduit {
		return nil, false
	}
	return &s.conduits[loc.idx], true
}

func (s *Store) FindText(id EntityID) (*Text, bool) {
	loc, ok := s.index[id]
	if !ok || loc.kind != KindText {
		return nil, false
	}
	return &s.texts[loc.idx], true
}

// ResolveNodePosition resolves a node's world position. Free nodes return
// their stored position directly. Anchored nodes compute
// symbol.origin + symbol.transform(connectionAnchor), where transform
// composes the symbol's rotation and scale about its own origin. If the
// anchor symbol is missing, ok is false.
func (s *Store) ResolveNodePosition(id EntityID) (x, y float32, ok bool) {
	n, found := s.FindNode(id)
	if !found {
		return 0, 0, false
	}
	if n.Kind == NodeFree {
		return n.X, n.Y, true
	}
	sym, found := s.FindSymbol(n.SymbolID)
	if !found {
		return 0, 0, false
	}
	m := rotateScaleAbout(0, 0, sym.Scale, sym.Scale, sym.Rotation, sym.X, sym.Y)
	localX := sym.AnchorU * sym.W
	localY := sym.AnchorV * sym.H
	wx, wy := m.apply(localX, localY)
	return wx, wy, true
}
