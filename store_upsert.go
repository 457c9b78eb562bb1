package cad

// UpsertRect creates or updates a Rect entity.
func (s *Store) UpsertRect(e Rect) {
	s.deleteKindMismatch(e.ID, KindRect)
	if loc, ok := s.index[e.ID]; ok {
		s.rects[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindRect, idx: len(s.rects)}
		s.rects = append(s.rects, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertLine creates or updates a Line entity.
func (s *Store) UpsertLine(e Line) {
	s.deleteKindMismatch(e.ID, KindLine)
	if loc, ok := s.index[e.ID]; ok {
		s.lines[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindLine, idx: len(s.lines)}
		s.lines = append(s.lines, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertPolylinePoints creates or updates a Polyline entity, appending pts
// to the shared point pool (append-only; see CompactPoints). Fewer than 2
// points is not rejected here — makes that the
// command decoder's responsibility, so direct Store callers get a
// (degenerate but valid) 0- or 1-point polyline.
func (s *Store) UpsertPolylinePoints(id EntityID, pts []Vec2, style Polyline) {
	style.ID = id
	style.Offset = len(s.points)
	style.Count = len(pts)
	s.points = append(s.points, pts...)

	s.deleteKindMismatch(id, KindPolyline)
	if loc, ok := s.index[id]; ok {
		s.polylines[loc.idx] = style
	} else {
		s.index[id] = location{kind: KindPolyline, idx: len(s.polylines)}
		s.polylines = append(s.polylines, style)
		s.appendDrawOrder(id)
	}
	s.markDirty()
}

// PolylinePoints returns the point slice for a polyline. The returned
// slice aliases the shared pool and must not be retained past the next
// mutating call.
func (s *Store) PolylinePoints(p Polyline) []Vec2 {
	return s.points[p.Offset : p.Offset+p.Count]
}

// CompactPoints rebuilds the point pool in polyline iteration order,
// discarding unreferenced ranges and rewriting offsets. Call after
// applying a batch of commands, not per-command: it is O(total points).
func (s *Store) CompactPoints() {
	total := 0
	for _, p := range s.polylines {
		total += p.Count
	}
	fresh := make([]Vec2, 0, total)
	for i := range s.polylines {
		p := &s.polylines[i]
		start := len(fresh)
		fresh = append(fresh, s.points[p.Offset:p.Offset+p.Count]...)
		p.Offset = start
	}
	s.points = fresh
}

// UpsertCircle creates or updates a Circle entity.
func (s *Store) UpsertCircle(e Circle) {
	s.deleteKindMismatch(e.ID, KindCircle)
	if loc, ok := s.index[e.ID]; ok {
		s.circles[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindCircle, idx: len(s.circles)}
		s.circles = append(s.circles, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertPolygon creates or updates a Polygon entity. Sides is clamped to
// a minimum of 3.
func (s *Store) UpsertPolygon(e Polygon) {
	if e.Sides < 3 {
		e.Sides = 3
	}
	s.deleteKindMismatch(e.ID, KindPolygon)
	if loc, ok := s.index[e.ID]; ok {
		s.polygons[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindPolygon, idx: len(s.polygons)}
		s.polygons = append(s.polygons, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertArrow creates or updates an Arrow entity.
func (s *Store) UpsertArrow(e Arrow) {
	s.deleteKindMismatch(e.ID, KindArrow)
	if loc, ok := s.index[e.ID]; ok {
		s.arrows[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindArrow, idx: len(s.arrows)}
		s.arrows = append(s.arrows, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertSymbol creates or updates a Symbol entity.
func (s *Store) UpsertSymbol(e Symbol) {
	s.deleteKindMismatch(e.ID, KindSymbol)
	if loc, ok := s.index[e.ID]; ok {
		s.symbols[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindSymbol, idx: len(s.symbols)}
		s.symbols = append(s.symbols, e)
	}
	s.markDirty()
}

// UpsertNode creates or updates a Node entity.
func (s *Store) UpsertNode(e Node) {
	s.deleteKindMismatch(e.ID, KindNode)
	if loc, ok := s.index[e.ID]; ok {
		s.nodes[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindNode, idx: len(s.nodes)}
		s.nodes = append(s.nodes, e)
	}
	s.markDirty()
}

// UpsertConduit creates or updates a Conduit entity.
func (s *Store) UpsertConduit(e Conduit) {
	s.deleteKindMismatch(e.ID, KindConduit)
	if loc, ok := s.index[e.ID]; ok {
		s.conduits[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindConduit, idx: len(s.conduits)}
		s.conduits = append(s.conduits, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}

// UpsertText creates or updates a Text entity.
func (s *Store) UpsertText(e Text) {
	s.deleteKindMismatch(e.ID, KindText)
	if loc, ok := s.index[e.ID]; ok {
		s.texts[loc.idx] = e
	} else {
		s.index[e.ID] = location{kind: KindText, idx: len(s.texts)}
		s.texts = append(s.texts, e)
		s.appendDrawOrder(e.ID)
	}
	s.markDirty()
}
