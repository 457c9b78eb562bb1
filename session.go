package cad

import "github.com/chewxy/math32"

// SessionMode is the kind of pointer interaction an InteractionSession is
// carrying out.
type SessionMode uint8

const (
	ModeMove SessionMode = iota
	ModeVertexDrag
	ModeEdgeDrag
	ModeResize
	ModeRotate
	// ModeDraft is a drag-to-create gesture for a brand-new entity; the
	// entity is provisionally added to the store at Begin and either kept
	// (Commit) or removed (Cancel).
	ModeDraft
)

// CommitOp identifies the shape of a CommitResult's payload.
type CommitOp uint8

const (
	CommitMove CommitOp = iota
	CommitVertexSet
	CommitResize
	CommitRotate
	// CommitDraft reports a newly drafted entity; ID is the assigned id
	// and A, B, C, D carry its drafted bounding box (x, y, w, h).
	CommitDraft
)

// CommitResult is the fixed-shape result of a successful Commit, meant to
// be pushed onto the event queue as an EventInteractionChanged.
type CommitResult struct {
	Op   CommitOp
	ID   EntityID
	A, B, C, D float32
}

// InteractionSession drives exactly one in-progress pointer interaction
// at a time: Begin captures the target's original state, Update applies
// a live preview, Commit finalizes and reports a result, Cancel restores
// the captured state. Only one session may be active; Begin on an
// already-active session reports SessionAlreadyActive.
type InteractionSession struct {
	active   bool
	mode     SessionMode
	id       EntityID
	kind     EntityKind
	captured any // deep copy of the pre-interaction entity, for Cancel

	vertexIndex int  // ModeVertexDrag
	handle      int  // ModeResize: Corner or Side index
	isCorner    bool // ModeResize: Corner (true) vs Side (false)

	startX, startY   float32
	centerX, centerY float32 // ModeRotate pivot
	startAngle       float32 // ModeRotate: entity rotation at Begin
}

// NewInteractionSession creates an inactive session.
func NewInteractionSession() *InteractionSession { return &InteractionSession{} }

// Active reports the current mode and target, if a session is running.
func (ses *InteractionSession) Active() (SessionMode, EntityID, bool) {
	return ses.mode, ses.id, ses.active
}

// BeginMove starts a move interaction on id.
func (ses *InteractionSession) BeginMove(s *Store, id EntityID, startX, startY float32) *Error {
	if ses.active {
		return newErr("BeginMove", KindSessionAlreadyActive, "session already active")
	}
	kind, ok := s.Kind(id)
	if !ok {
		return newErr("BeginMove", KindIDNotFound, "id %d", id)
	}
	ses.reset()
	ses.active, ses.mode, ses.id, ses.kind = true, ModeMove, id, kind
	ses.startX, ses.startY = startX, startY
	ses.captured = snapshotEntity(s, id)
	return nil
}

// BeginVertexDrag starts dragging a single polyline vertex.
func (ses *InteractionSession) BeginVertexDrag(s *Store, id EntityID, vertexIndex int, startX, startY float32) *Error {
	if ses.active {
		return newErr("BeginVertexDrag", KindSessionAlreadyActive, "session already active")
	}
	if _, ok := s.FindPolyline(id); !ok {
		return newErr("BeginVertexDrag", KindIDNotFound, "id %d", id)
	}
	ses.reset()
	ses.active, ses.mode, ses.id, ses.kind = true, ModeVertexDrag, id, KindPolyline
	ses.vertexIndex = vertexIndex
	ses.startX, ses.startY = startX, startY
	ses.captured = snapshotEntity(s, id)
	return nil
}

// BeginResize starts a resize interaction from a specific corner or side
// handle (see Corner/Side in pick.go).
func (ses *InteractionSession) BeginResize(s *Store, id EntityID, handle int, isCorner bool, startX, startY float32) *Error {
	if ses.active {
		return newErr("BeginResize", KindSessionAlreadyActive, "session already active")
	}
	kind, ok := s.Kind(id)
	if !ok {
		return newErr("BeginResize", KindIDNotFound, "id %d", id)
	}
	ses.reset()
	ses.active, ses.mode, ses.id, ses.kind = true, ModeResize, id, kind
	ses.handle, ses.isCorner = handle, isCorner
	ses.startX, ses.startY = startX, startY
	ses.captured = snapshotEntity(s, id)
	return nil
}

// BeginRotate starts a rotate interaction pivoting about (centerX,
// centerY), typically the entity's own center/origin.
func (ses *InteractionSession) BeginRotate(s *Store, id EntityID, centerX, centerY, startRotation float32) *Error {
	if ses.active {
		return newErr("BeginRotate", KindSessionAlreadyActive, "session already active")
	}
	kind, ok := s.Kind(id)
	if !ok {
		return newErr("BeginRotate", KindIDNotFound, "id %d", id)
	}
	ses.reset()
	ses.active, ses.mode, ses.id, ses.kind = true, ModeRotate, id, kind
	ses.centerX, ses.centerY = centerX, centerY
	ses.startAngle = startRotation
	ses.captured = snapshotEntity(s, id)
	return nil
}

// BeginDraft starts a drag-to-create gesture: a new entity of kind is
// provisionally inserted at (startX, startY) with zero extent and
// returned bare id, to be grown by Update and either kept by Commit or
// discarded by Cancel. sides is only meaningful for KindPolygon.
func (ses *InteractionSession) BeginDraft(s *Store, kind EntityKind, startX, startY float32, fill, stroke Color, strokeWidthPx float32, sides int) (EntityID, *Error) {
	if ses.active {
		return 0, newErr("BeginDraft", KindSessionAlreadyActive, "session already active")
	}
	id := s.allocID()
	switch kind {
	case KindRect:
		s.UpsertRect(Rect{ID: id, X: startX, Y: startY, Fill: fill, Stroke: stroke, StrokeEnabled: true, StrokeWidthPx: strokeWidthPx})
	case KindCircle:
		s.UpsertCircle(Circle{ID: id, CenterX: startX, CenterY: startY, Scale: 1, Fill: fill, Stroke: stroke, StrokeEnabled: true, StrokeWidthPx: strokeWidthPx})
	case KindPolygon:
		if sides < 3 {
			sides = 3
		}
		s.UpsertPolygon(Polygon{ID: id, CenterX: startX, CenterY: startY, Scale: 1, Sides: sides, Fill: fill, Stroke: stroke, StrokeEnabled: true, StrokeWidthPx: strokeWidthPx})
	case KindLine:
		s.UpsertLine(Line{ID: id, X1: startX, Y1: startY, X2: startX, Y2: startY, Stroke: stroke, Enabled: true, StrokeWidthPx: strokeWidthPx})
	case KindArrow:
		s.UpsertArrow(Arrow{ID: id, X1: startX, Y1: startY, X2: startX, Y2: startY, HeadSize: 10, Stroke: stroke, StrokeWidthPx: strokeWidthPx})
	default:
		return 0, newErr("BeginDraft", KindUnknownCommand, "kind %v is not draftable", kind)
	}
	ses.reset()
	ses.active, ses.mode, ses.id, ses.kind = true, ModeDraft, id, kind
	ses.startX, ses.startY = startX, startY
	ses.captured = nil // did not exist before Begin; Cancel deletes it
	return id, nil
}

func (ses *InteractionSession) updateDraft(s *Store, x, y float32) *Error {
	x0, y0 := ses.startX, ses.startY
	switch ses.kind {
	case KindRect:
		e, ok := s.FindRect(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.X, e.Y = math32.Min(x0, x), math32.Min(y0, y)
		e.W, e.H = math32.Abs(x-x0), math32.Abs(y-y0)
	case KindCircle:
		e, ok := s.FindCircle(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		dx, dy := x-x0, y-y0
		r := math32.Sqrt(dx*dx + dy*dy)
		e.RadiusX, e.RadiusY = r, r
	case KindPolygon:
		e, ok := s.FindPolygon(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		dx, dy := x-x0, y-y0
		r := math32.Sqrt(dx*dx + dy*dy)
		e.RadiusX, e.RadiusY = r, r
	case KindLine:
		e, ok := s.FindLine(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.X2, e.Y2 = x, y
	case KindArrow:
		e, ok := s.FindArrow(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.X2, e.Y2 = x, y
	default:
		return newErr("Update", KindUnknownCommand, "kind %v is not draftable", ses.kind)
	}
	s.markDirty()
	return nil
}

// draftBounds reports the drafted entity's current world-space bounding
// box, for a CommitDraft result payload.
func (ses *InteractionSession) draftBounds(s *Store) (float32, float32, float32, float32) {
	switch ses.kind {
	case KindRect:
		e, _ := s.FindRect(ses.id)
		return e.X, e.Y, e.W, e.H
	case KindCircle:
		e, _ := s.FindCircle(ses.id)
		return e.CenterX - e.RadiusX, e.CenterY - e.RadiusY, e.RadiusX * 2, e.RadiusY * 2
	case KindPolygon:
		e, _ := s.FindPolygon(ses.id)
		return e.CenterX - e.RadiusX, e.CenterY - e.RadiusY, e.RadiusX * 2, e.RadiusY * 2
	case KindLine:
		e, _ := s.FindLine(ses.id)
		return math32.Min(e.X1, e.X2), math32.Min(e.Y1, e.Y2), math32.Abs(e.X2 - e.X1), math32.Abs(e.Y2 - e.Y1)
	case KindArrow:
		e, _ := s.FindArrow(ses.id)
		return math32.Min(e.X1, e.X2), math32.Min(e.Y1, e.Y2), math32.Abs(e.X2 - e.X1), math32.Abs(e.Y2 - e.Y1)
	default:
		return 0, 0, 0, 0
	}
}

func (ses *InteractionSession) reset() {
	*ses = InteractionSession{}
}

func (ses *InteractionSession) requireActive(op string) *Error {
	if !ses.active {
		return newErr(op, KindSessionNotActive, "no active interaction session")
	}
	return nil
}

// Update applies a live preview mutation for the current pointer
// position. shiftHeld locks aspect ratio during resize; ctrlHeld snaps
// rotation to 15-degree increments.
func (ses *InteractionSession) Update(s *Store, x, y float32, shiftHeld, ctrlHeld bool) *Error {
	if err := ses.requireActive("Update"); err != nil {
		return err
	}
	switch ses.mode {
	case ModeMove:
		return ses.updateMove(s, x, y)
	case ModeVertexDrag:
		return ses.updateVertexDrag(s, x, y)
	case ModeResize:
		return ses.updateResize(s, x, y, shiftHeld)
	case ModeRotate:
		return ses.updateRotate(s, x, y, ctrlHeld)
	case ModeDraft:
		return ses.updateDraft(s, x, y)
	default:
		return newErr("Update", KindUnknownCommand, "mode %d has no Update handler", ses.mode)
	}
}

func (ses *InteractionSession) dxy(x, y float32) (float32, float32) {
	return x - ses.startX, y - ses.startY
}

func (ses *InteractionSession) updateMove(s *Store, x, y float32) *Error {
	dx, dy := ses.dxy(x, y)
	switch ses.kind {
	case KindRect:
		e, ok := s.FindRect(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Rect)
		e.X, e.Y = base.X+dx, base.Y+dy
	case KindLine:
		e, ok := s.FindLine(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Line)
		e.X1, e.Y1 = base.X1+dx, base.Y1+dy
		e.X2, e.Y2 = base.X2+dx, base.Y2+dy
	case KindCircle:
		e, ok := s.FindCircle(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Circle)
		e.CenterX, e.CenterY = base.CenterX+dx, base.CenterY+dy
	case KindPolygon:
		e, ok := s.FindPolygon(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Polygon)
		e.CenterX, e.CenterY = base.CenterX+dx, base.CenterY+dy
	case KindArrow:
		e, ok := s.FindArrow(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Arrow)
		e.X1, e.Y1 = base.X1+dx, base.Y1+dy
		e.X2, e.Y2 = base.X2+dx, base.Y2+dy
	case KindText:
		e, ok := s.FindText(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Text)
		e.X, e.Y = base.X+dx, base.Y+dy
	case KindPolyline:
		e, ok := s.FindPolyline(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(polylineSnapshot)
		pts := s.PolylinePoints(*e)
		for i, p := range base.Points {
			if i < len(pts) {
				pts[i] = Vec2{X: p.X + dx, Y: p.Y + dy}
			}
		}
	default:
		return newErr("Update", KindUnknownCommand, "kind %v is not movable", ses.kind)
	}
	s.markDirty()
	return nil
}

func (ses *InteractionSession) updateVertexDrag(s *Store, x, y float32) *Error {
	e, ok := s.FindPolyline(ses.id)
	if !ok {
		return newErr("Update", KindIDNotFound, "id %d", ses.id)
	}
	pts := s.PolylinePoints(*e)
	if ses.vertexIndex < 0 || ses.vertexIndex >= len(pts) {
		return newErr("Update", KindInvalidPayloadSize, "vertex %d out of range", ses.vertexIndex)
	}
	pts[ses.vertexIndex] = Vec2{X: x, Y: y}
	s.markDirty()
	return nil
}

// updateResize applies a corner or side handle drag. The handle's
// diagonally (corner) or directly (side) opposite point is the anchor:
// its world position never moves. Everything is solved in the entity's
// own unrotated local space (using the rotation captured at Begin), then
// mapped back through the original transform, so the fix holds under
// rotation too. shiftHeld locks the original aspect ratio on corner
// drags, re-deriving the origin from the anchor so the locked box still
// shares it.
func (ses *InteractionSession) updateResize(s *Store, x, y float32, shiftHeld bool) *Error {
	switch ses.kind {
	case KindRect:
		e, ok := s.FindRect(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		base := ses.captured.(Rect)
		m := rotateScaleAbout(0, 0, 1, 1, base.Rotation, base.X, base.Y)
		inv := invertAffine(m)
		lx, ly := inv.apply(x, y)

		var anchorX, anchorY float32
		w, h := base.W, base.H
		originLX, originLY := float32(0), float32(0)

		if ses.isCorner {
			switch Corner(ses.handle) {
			case CornerBL:
				anchorX, anchorY = base.W, base.H
			case CornerBR:
				anchorX, anchorY = 0, base.H
			case CornerTR:
				anchorX, anchorY = 0, 0
			case CornerTL:
				anchorX, anchorY = base.W, 0
			}
			w = math32.Abs(lx - anchorX)
			h = math32.Abs(ly - anchorY)
			originLX = math32.Min(lx, anchorX)
			originLY = math32.Min(ly, anchorY)

			if shiftHeld && base.H != 0 {
				ratio := base.W / base.H
				if math32.Abs(w) > math32.Abs(h*ratio) {
					h = w / ratio
				} else {
					w = h * ratio
				}
				if lx < anchorX {
					originLX = anchorX - w
				} else {
					originLX = anchorX
				}
				if ly < anchorY {
					originLY = anchorY - h
				} else {
					originLY = anchorY
				}
			}
		} else {
			switch Side(ses.handle) {
			case SideS:
				anchorY = base.H
				h = math32.Abs(ly - anchorY)
				originLY = math32.Min(ly, anchorY)
			case SideE:
				w = math32.Abs(lx)
				originLX = math32.Min(lx, 0)
			case SideN:
				h = math32.Abs(ly)
				originLY = math32.Min(ly, 0)
			case SideW:
				anchorX = base.W
				w = math32.Abs(lx - anchorX)
				originLX = math32.Min(lx, anchorX)
			}
		}

		ox, oy := m.apply(originLX, originLY)
		e.X, e.Y, e.W, e.H = ox, oy, w, h
	default:
		return newErr("Update", KindUnknownCommand, "kind %v is not resizable", ses.kind)
	}
	s.markDirty()
	return nil
}

const rotateSnapRadians = 15 * math32.Pi / 180

func (ses *InteractionSession) updateRotate(s *Store, x, y float32, ctrlHeld bool) *Error {
	angle := math32.Atan2(y-ses.centerY, x-ses.centerX)
	if ctrlHeld {
		angle = math32.Round(angle/rotateSnapRadians) * rotateSnapRadians
	}
	switch ses.kind {
	case KindRect:
		e, ok := s.FindRect(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.Rotation = angle
	case KindCircle:
		e, ok := s.FindCircle(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.Rotation = angle
	case KindPolygon:
		e, ok := s.FindPolygon(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.Rotation = angle
	case KindSymbol:
		e, ok := s.FindSymbol(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.Rotation = angle
	case KindText:
		e, ok := s.FindText(ses.id)
		if !ok {
			return newErr("Update", KindIDNotFound, "id %d", ses.id)
		}
		e.Rotation = angle
	default:
		return newErr("Update", KindUnknownCommand, "kind %v is not rotatable", ses.kind)
	}
	s.markDirty()
	return nil
}

// Commit finalizes the session, recording a history entry and returning
// a CommitResult describing what changed.
func (ses *InteractionSession) Commit(s *Store, h *History) (CommitResult, *Error) {
	if err := ses.requireActive("Commit"); err != nil {
		return CommitResult{}, err
	}
	id, mode := ses.id, ses.mode
	before := ses.captured
	h.Record(HistoryEntry{ID: id, Kind: ses.kind, Before: before, After: snapshotEntity(s, id)})

	var result CommitResult
	switch mode {
	case ModeMove:
		dx, dy := ses.currentOffset(s)
		result = CommitResult{Op: CommitMove, ID: id, A: dx, B: dy}
	case ModeVertexDrag:
		e, _ := s.FindPolyline(id)
		pts := s.PolylinePoints(*e)
		var vx, vy float32
		if ses.vertexIndex >= 0 && ses.vertexIndex < len(pts) {
			vx, vy = pts[ses.vertexIndex].X, pts[ses.vertexIndex].Y
		}
		result = CommitResult{Op: CommitVertexSet, ID: id, A: float32(ses.vertexIndex), B: vx, C: vy}
	case ModeResize:
		rx, ry, w, ht := ses.currentGeometry(s)
		result = CommitResult{Op: CommitResize, ID: id, A: rx, B: ry, C: w, D: ht}
	case ModeRotate:
		result = CommitResult{Op: CommitRotate, ID: id, A: ses.currentRotation(s)}
	case ModeDraft:
		bx, by, bw, bh := ses.draftBounds(s)
		result = CommitResult{Op: CommitDraft, ID: id, A: bx, B: by, C: bw, D: bh}
	}
	// spec.md §4.7: "commit(): … increments generation." Update/preview
	// mutations already set the dirty bits via s.markDirty(); only the
	// generation counter still needs bumping here.
	s.generation++
	ses.reset()
	return result, nil
}

// Cancel restores the captured pre-interaction state and ends the
// session without recording history.
func (ses *InteractionSession) Cancel(s *Store) *Error {
	if err := ses.requireActive("Cancel"); err != nil {
		return err
	}
	applyEntitySnapshot(s, ses.id, ses.kind, ses.captured)
	ses.reset()
	return nil
}

func (ses *InteractionSession) currentOffset(s *Store) (float32, float32) {
	switch ses.kind {
	case KindRect:
		e, _ := s.FindRect(ses.id)
		base := ses.captured.(Rect)
		return e.X - base.X, e.Y - base.Y
	case KindCircle:
		e, _ := s.FindCircle(ses.id)
		base := ses.captured.(Circle)
		return e.CenterX - base.CenterX, e.CenterY - base.CenterY
	default:
		return 0, 0
	}
}

// currentGeometry returns the resized entity's committed (x, y, w, h),
// matching a RESIZE commit-result payload's shape.
func (ses *InteractionSession) currentGeometry(s *Store) (float32, float32, float32, float32) {
	if ses.kind == KindRect {
		e, _ := s.FindRect(ses.id)
		return e.X, e.Y, e.W, e.H
	}
	return 0, 0, 0, 0
}

func (ses *InteractionSession) currentRotation(s *Store) float32 {
	switch ses.kind {
	case KindRect:
		e, _ := s.FindRect(ses.id)
		return e.Rotation
	case KindCircle:
		e, _ := s.FindCircle(ses.id)
		return e.Rotation
	case KindPolygon:
		e, _ := s.FindPolygon(ses.id)
		return e.Rotation
	case KindSymbol:
		e, _ := s.FindSymbol(ses.id)
		return e.Rotation
	case KindText:
		e, _ := s.FindText(ses.id)
		return e.Rotation
	default:
		return 0
	}
}
