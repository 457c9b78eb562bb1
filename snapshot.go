package cad

// Snapshot format: magic, version, view scale, then one section per entity
// kind in EntityKind order, each section a record count followed by that
// many records of id, payload length and payload (the same payload
// encoding the command stream uses for that kind, so the two formats
// share their per-entity codecs). Polyline records carry their own point
// list inline, same as the command stream's encodePolylinePayload.
//
// Runtime-only fields (the generation counter, dirty bits, spatial index,
// interaction/history state) are never written: a loaded snapshot starts
// at generation 0 with renderDirty set (the view has never been drawn)
// and snapshotDirty clear (the loaded bytes already match the store).
func (s *Store) BuildSnapshotBytes() []byte {
	w := &byteWriter{}
	w.u32(snapshotMagic)
	w.u32(snapshotVersion)
	w.f32(s.viewScale)

	writeSection(w, len(s.rects), func(i int) []byte { return encodeRectPayload(s.rects[i]) }, func(i int) EntityID { return s.rects[i].ID })
	writeSection(w, len(s.lines), func(i int) []byte { return encodeLinePayload(s.lines[i]) }, func(i int) EntityID { return s.lines[i].ID })
	writeSection(w, len(s.polylines), func(i int) []byte {
		p := s.polylines[i]
		return encodePolylinePayload(s.PolylinePoints(p), p)
	}, func(i int) EntityID { return s.polylines[i].ID })
	writeSection(w, len(s.circles), func(i int) []byte { return encodeCirclePayload(s.circles[i]) }, func(i int) EntityID { return s.circles[i].ID })
	writeSection(w, len(s.polygons), func(i int) []byte { return encodePolygonPayload(s.polygons[i]) }, func(i int) EntityID { return s.polygons[i].ID })
	writeSection(w, len(s.arrows), func(i int) []byte { return encodeArrowPayload(s.arrows[i]) }, func(i int) EntityID { return s.arrows[i].ID })
	writeSection(w, len(s.symbols), func(i int) []byte { return encodeSymbolPayload(s.symbols[i]) }, func(i int) EntityID { return s.symbols[i].ID })
	writeSection(w, len(s.nodes), func(i int) []byte { return encodeNodePayload(s.nodes[i]) }, func(i int) EntityID { return s.nodes[i].ID })
	writeSection(w, len(s.conduits), func(i int) []byte { return encodeConduitPayload(s.conduits[i]) }, func(i int) EntityID { return s.conduits[i].ID })
	writeSection(w, len(s.texts), func(i int) []byte { return encodeTextPayload(s.texts[i]) }, func(i int) EntityID { return s.texts[i].ID })

	w.u32(uint32(len(s.drawOrder)))
	for _, id := range s.drawOrder {
		w.u32(uint32(id))
	}
	w.u32(uint32(s.nextID))
	return w.buf
}

func writeSection(w *byteWriter, count int, encode func(i int) []byte, id func(i int) EntityID) {
	w.u32(uint32(count))
	for i := 0; i < count; i++ {
		payload := encode(i)
		w.u32(uint32(id(i)))
		w.u32(uint32(len(payload)))
		w.bytes(payload)
	}
}

// LoadSnapshot replaces the store's contents with the decoded snapshot.
// Draw order and the next-id counter are restored verbatim; generation
// resets to 0, renderDirty is set so the first post-load query sees
// everything as needing a rebuild, and snapshotDirty is clear.
func LoadSnapshot(buf []byte) (*Store, *Error) {
	r := newByteReader(buf)
	magic, err := r.u32()
	if err != nil {
		return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "missing header")
	}
	if magic != snapshotMagic {
		return nil, newErr("LoadSnapshot", KindInvalidMagic, "got %#x", magic)
	}
	version, err := r.u32()
	if err != nil {
		return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "missing version")
	}
	if version != snapshotVersion {
		return nil, newErr("LoadSnapshot", KindUnsupportedVersion, "got %d, want %d", version, snapshotVersion)
	}
	scale, err := r.f32()
	if err != nil {
		return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "view scale")
	}

	s := NewStore()
	s.viewScale = scale

	if derr := readSection(r, "Rect", func(id EntityID, payload []byte) *Error {
		e, derr := decodeRectPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.rects = append(s.rects, e)
		s.index[id] = location{kind: KindRect, idx: len(s.rects) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Line", func(id EntityID, payload []byte) *Error {
		e, derr := decodeLinePayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.lines = append(s.lines, e)
		s.index[id] = location{kind: KindLine, idx: len(s.lines) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Polyline", func(id EntityID, payload []byte) *Error {
		d, derr := decodePolylinePayload(payload)
		if derr != nil {
			return derr
		}
		d.Style.ID = id
		d.Style.Offset = len(s.points)
		d.Style.Count = len(d.Points)
		s.points = append(s.points, d.Points...)
		s.polylines = append(s.polylines, d.Style)
		s.index[id] = location{kind: KindPolyline, idx: len(s.polylines) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Circle", func(id EntityID, payload []byte) *Error {
		e, derr := decodeCirclePayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.circles = append(s.circles, e)
		s.index[id] = location{kind: KindCircle, idx: len(s.circles) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Polygon", func(id EntityID, payload []byte) *Error {
		e, derr := decodePolygonPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.polygons = append(s.polygons, e)
		s.index[id] = location{kind: KindPolygon, idx: len(s.polygons) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Arrow", func(id EntityID, payload []byte) *Error {
		e, derr := decodeArrowPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.arrows = append(s.arrows, e)
		s.index[id] = location{kind: KindArrow, idx: len(s.arrows) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Symbol", func(id EntityID, payload []byte) *Error {
		e, derr := decodeSymbolPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.symbols = append(s.symbols, e)
		s.index[id] = location{kind: KindSymbol, idx: len(s.symbols) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Node", func(id EntityID, payload []byte) *Error {
		e, derr := decodeNodePayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.nodes = append(s.nodes, e)
		s.index[id] = location{kind: KindNode, idx: len(s.nodes) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Conduit", func(id EntityID, payload []byte) *Error {
		e, derr := decodeConduitPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.conduits = append(s.conduits, e)
		s.index[id] = location{kind: KindConduit, idx: len(s.conduits) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}
	if derr := readSection(r, "Text", func(id EntityID, payload []byte) *Error {
		e, derr := decodeTextPayload(payload)
		if derr != nil {
			return derr
		}
		e.ID = id
		s.texts = append(s.texts, e)
		s.index[id] = location{kind: KindText, idx: len(s.texts) - 1}
		return nil
	}); derr != nil {
		return nil, derr
	}

	orderCount, err := r.u32()
	if err != nil {
		return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "draw order count")
	}
	order := make([]EntityID, orderCount)
	for i := range order {
		v, err := r.u32()
		if err != nil {
			return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "draw order entry")
		}
		order[i] = EntityID(v)
	}
	s.drawOrder = order

	nextID, err := r.u32()
	if err != nil {
		return nil, wrapErr("LoadSnapshot", KindBufferTruncated, err, "next id")
	}
	s.nextID = EntityID(nextID)

	s.generation = 0
	s.snapshotDirty = false
	s.renderDirty = true
	return s, nil
}

func readSection(r *byteReader, kind string, add func(id EntityID, payload []byte) *Error) *Error {
	count, err := r.u32()
	if err != nil {
		return wrapErr("LoadSnapshot", KindBufferTruncated, err, kind+" section count")
	}
	for i := uint32(0); i < count; i++ {
		id, err := r.u32()
		if err != nil {
			return wrapErr("LoadSnapshot", KindBufferTruncated, err, kind+" record id")
		}
		length, err := r.u32()
		if err != nil {
			return wrapErr("LoadSnapshot", KindBufferTruncated, err, kind+" record length")
		}
		payload, err := r.bytes(int(length))
		if err != nil {
			return wrapErr("LoadSnapshot", KindBufferTruncated, err, kind+" record payload")
		}
		if derr := add(EntityID(id), payload); derr != nil {
			return derr
		}
	}
	return nil
}
