package cad

import "time"

// Stats reports timing for the engine's three cost centers: decoding and
// applying a command/snapshot buffer, rebuilding the spatial index and
// render buffer, and (rolled into ApplyMillis) the pure entity-store
// mutation cost, split the same way a frame-stepped renderer separates
// one-time load cost from its recurring per-frame rebuild cost.
type Stats struct {
	LoadMillis    float64
	ApplyMillis   float64
	RebuildMillis float64
}

// Engine is the top-level composition of every component: the entity
// store, spatial index, picker, render builder, interaction session,
// history, text subsystem, and event queue. It is the only exported
// surface most hosts need; Store and friends stay reachable for tests and
// for hosts that want to bypass the command-buffer wire format.
type Engine struct {
	store     *Store
	spatial   *SpatialIndex
	pickerRef *Picker
	render    *RenderBuilder
	history *History
	session *InteractionSession
	text    *TextEditor
	fonts   *FontRegistry
	atlas   *GlyphAtlas
	events  *EventQueue

	selection        []EntityID
	selectionOutline *RenderBuilder
	selectionHandles *RenderBuilder
	snapOverlay      *RenderBuilder
	snapConfig       SnapConfig

	lastErr       *Error
	lastCommit    CommitResult
	hasLastCommit bool
	stats         Stats

	// Debug is not read by any code in this package; setting it has no
	// effect on the engine's behavior.
	Debug bool
}

// NewEngine creates an empty engine ready to receive command buffers.
func NewEngine() *Engine {
	return &Engine{
		store:   NewStore(),
		spatial: NewSpatialIndex(64),
		render:  NewRenderBuilder(),
		history: NewHistory(1000),
		session: NewInteractionSession(),
		text:    NewTextEditor(),
		fonts:   NewFontRegistry(),
		atlas:   NewGlyphAtlas(4096),
		events:  NewEventQueue(),
	}
}

// Store exposes the underlying entity store directly, for callers and
// tests that want to bypass the wire format.
func (e *Engine) Store() *Store { return e.store }

// History exposes the undo/redo log directly.
func (e *Engine) History() *History { return e.history }

// Session exposes the active interaction session directly.
func (e *Engine) Session() *InteractionSession { return e.session }

// TextEditor exposes the active text-edit target directly.
func (e *Engine) TextEditor() *TextEditor { return e.text }

// Fonts exposes the font registry for host registration.
func (e *Engine) Fonts() *FontRegistry { return e.fonts }

// Atlas exposes the glyph atlas for host population.
func (e *Engine) Atlas() *GlyphAtlas { return e.atlas }

// Events exposes the event queue.
func (e *Engine) Events() *EventQueue { return e.events }

// LastError returns the most recent operation's error, or nil.
func (e *Engine) LastError() *Error { return e.lastErr }

// ClearError clears LastError.
func (e *Engine) ClearError() { e.lastErr = nil }

func (e *Engine) setErr(err *Error) *Error {
	e.lastErr = err
	return err
}

// Stats returns the most recent timing measurements.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) picker() *Picker {
	if e.pickerRef == nil {
		e.pickerRef = NewPicker(e.spatial)
	}
	return e.pickerRef
}

// Clear empties the store, spatial index, render buffer, history,
// session, and text editor state — a full reset to a blank document.
func (e *Engine) Clear() {
	e.store.Clear()
	e.history.Clear()
	e.session.reset()
	e.text.Deactivate()
	e.atlas.Clear()
	e.selection = nil
	e.hasLastCommit = false
}

// ReserveWorld hints the engine to preallocate capacity for approximately
// n entities and points, avoiding reallocation churn during a large bulk
// load. It is a performance hint only; correctness never depends on it.
func (e *Engine) ReserveWorld(entityHint, pointHint int) {
	if cap(e.store.points) < pointHint {
		grown := make([]Vec2, len(e.store.points), pointHint)
		copy(grown, e.store.points)
		e.store.points = grown
	}
	if cap(e.store.drawOrder) < entityHint {
		grown := make([]EntityID, len(e.store.drawOrder), entityHint)
		copy(grown, e.store.drawOrder)
		e.store.drawOrder = grown
	}
}

// AllocBytes returns a zeroed byte slice of the requested size for a host
// to fill with a command or snapshot buffer before handing it back to
// ApplyCommandBuffer/LoadSnapshot. Go's garbage collector owns the
// memory; FreeBytes is a no-op kept only so a host written against a
// manual-alloc convention has something to call.
func (e *Engine) AllocBytes(n int) []byte { return make([]byte, n) }

// FreeBytes is a no-op; see AllocBytes.
func (e *Engine) FreeBytes(buf []byte) {}

// ApplyCommandBuffer decodes and applies every record in buf in order,
// dispatching entity-store ops to Store and text-editing ops to the
// active TextEditor. A failure partway through stops further records
// (already-applied records stay applied, matching a command stream's
// "strict advancement" contract — there is no implicit transaction/
// rollback here; callers that need atomicity should snapshot first).
func (e *Engine) ApplyCommandBuffer(buf []byte) *Error {
	start := time.Now()
	defer func() { e.stats.ApplyMillis = elapsedMillis(start) }()
	// Compact the shared polyline point pool once per batch regardless of
	// how the batch ends (spec.md §3 invariant 3): even a batch that stops
	// partway through on error has already mutated whatever polylines it
	// got to, and the pool should never carry unreferenced ranges.
	defer e.store.CompactPoints()

	cmds, derr := DecodeCommandBuffer(buf)
	if derr != nil {
		return e.setErr(derr)
	}
	for _, c := range cmds {
		if isTextEditOp(c.Op) {
			if derr := e.applyTextOp(c); derr != nil {
				return e.setErr(derr)
			}
			e.store.generation++
			continue
		}
		if derr := e.store.ApplyEntityCommand(c); derr != nil {
			return e.setErr(derr)
		}
		e.store.generation++
		e.events.Push(Event{Type: EventDocChanged, A: uint32(c.ID), B: uint32(opToKindHint(c.Op))}, e.store.generation)
	}
	e.ClearError()
	return nil
}

func (e *Engine) applyTextOp(c Command) *Error {
	id, active := e.text.Active()
	if !active || id != c.ID {
		if derr := e.text.Activate(e.store, c.ID); derr != nil {
			return derr
		}
	}
	switch c.Op {
	case OpInsertContent:
		op, derr := decodeInsertContentPayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.InsertContent(e.store, op.LogicalIndex, op.Text)
	case OpDeleteContent:
		op, derr := decodeDeleteContentPayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.DeleteContent(e.store, op.Start, op.End)
	case OpSetCaret:
		idx, derr := decodeSetCaretPayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.SetCaret(e.store, idx)
	case OpSetSelection:
		op, derr := decodeSetSelectionPayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.SetSelection(e.store, op.Start, op.End)
	case OpApplyStyle:
		op, derr := decodeApplyStylePayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.ApplyStyle(e.store, op)
	case OpSetAlign:
		align, derr := decodeSetAlignPayload(c.Payload)
		if derr != nil {
			return derr
		}
		return e.text.SetAlign(e.store, align)
	default:
		return newErr("ApplyCommandBuffer", KindUnknownCommand, "op %d", c.Op)
	}
}

func opToKindHint(op Op) EntityKind {
	switch op {
	case OpUpsertRect:
		return KindRect
	case OpUpsertLine:
		return KindLine
	case OpUpsertPolyline:
		return KindPolyline
	case OpUpsertCircle:
		return KindCircle
	case OpUpsertPolygon:
		return KindPolygon
	case OpUpsertArrow:
		return KindArrow
	case OpUpsertSymbol:
		return KindSymbol
	case OpUpsertNode:
		return KindNode
	case OpUpsertConduit:
		return KindConduit
	case OpUpsertText:
		return KindText
	default:
		return KindRect
	}
}

// LoadSnapshot replaces the engine's document with the decoded snapshot,
// resetting runtime-only state (spatial index, render buffer, history,
// session, text editor) to match a freshly loaded document and clearing
// the event queue's overflow latch. Events already buffered stay queued.
func (e *Engine) LoadSnapshot(buf []byte) *Error {
	start := time.Now()
	defer func() { e.stats.LoadMillis = elapsedMillis(start) }()

	s, derr := LoadSnapshot(buf)
	if derr != nil {
		return e.setErr(derr)
	}
	e.store = s
	e.spatial = NewSpatialIndex(64)
	e.render = NewRenderBuilder()
	e.history.Clear()
	e.session.reset()
	e.text.Deactivate()
	e.events.AckResync()
	e.ClearError()
	return nil
}

// BuildSnapshotBytes serializes the current document.
func (e *Engine) BuildSnapshotBytes() []byte {
	return e.store.BuildSnapshotBytes()
}

// rebuildIfDirty refreshes the spatial index and render buffer when the
// store has changed since the last rebuild, recording RebuildMillis.
func (e *Engine) rebuildIfDirty() {
	if !e.store.renderDirty && e.spatial.generation == e.store.generation {
		return
	}
	start := time.Now()
	e.spatial.Rebuild(e.store)
	e.render.Build(e.store, e.store.generation)
	e.store.renderDirty = false
	e.stats.RebuildMillis = elapsedMillis(start)
}

// GetRenderBufferMeta is an alias for GetPositionBufferMeta, spec.md §6's
// get_position_buffer_meta operation.
func (e *Engine) GetRenderBufferMeta() BufferMeta { return e.GetPositionBufferMeta() }

// GetRenderFloats is an alias for GetPositionFloats.
func (e *Engine) GetRenderFloats() []float32 { return e.GetPositionFloats() }

// GetPositionBufferMeta returns the current triangle (fill) vertex
// buffer's metadata, rebuilding first if the store has changed.
func (e *Engine) GetPositionBufferMeta() BufferMeta {
	e.rebuildIfDirty()
	return e.render.TriangleMeta()
}

// GetPositionFloats returns the current triangle vertex buffer's
// contents, rebuilding first if the store has changed. The returned
// slice aliases internal storage and is valid until the next mutation.
func (e *Engine) GetPositionFloats() []float32 {
	e.rebuildIfDirty()
	return e.render.TriangleFloats()
}

// GetLineBufferMeta returns the current stroke (line) vertex buffer's
// metadata, rebuilding first if the store has changed.
func (e *Engine) GetLineBufferMeta() BufferMeta {
	e.rebuildIfDirty()
	return e.render.LineMeta()
}

// GetLineFloats returns the current line vertex buffer's contents,
// rebuilding first if the store has changed.
func (e *Engine) GetLineFloats() []float32 {
	e.rebuildIfDirty()
	return e.render.LineFloats()
}

// GetSnapshotBufferMeta reports the byte length of the document's current
// canonical snapshot encoding without exposing the bytes themselves; the
// generation matches Store's, so a host can detect staleness the same
// way it does for the vertex buffers.
func (e *Engine) GetSnapshotBufferMeta() BufferMeta {
	b := e.store.BuildSnapshotBytes()
	return BufferMeta{Generation: e.store.generation, VertexCount: len(b), CapacityVertices: len(b), FloatCount: len(b)}
}

// GetEntityAABB returns the world-space axis-aligned bounding box of a
// drawable entity.
func (e *Engine) GetEntityAABB(id EntityID) (Rect, bool) {
	e.rebuildIfDirty()
	return entityBounds(e.store, id)
}

// GetEntityTransform returns the entity's local-to-world affine
// transform as (posX, posY, rotation, scaleX, scaleY), covering every
// kind that carries a rotation/scale; kinds with neither (Line, Arrow,
// Conduit) report their first endpoint as position with identity
// rotation/scale.
func (e *Engine) GetEntityTransform(id EntityID) (EntityTransform, bool) {
	kind, ok := e.store.Kind(id)
	if !ok {
		return EntityTransform{}, false
	}
	switch kind {
	case KindRect:
		r, _ := e.store.FindRect(id)
		return EntityTransform{X: r.X, Y: r.Y, Rotation: r.Rotation, ScaleX: 1, ScaleY: 1}, true
	case KindCircle:
		c, _ := e.store.FindCircle(id)
		return EntityTransform{X: c.CenterX, Y: c.CenterY, Rotation: c.Rotation, ScaleX: c.Scale, ScaleY: c.Scale}, true
	case KindPolygon:
		p, _ := e.store.FindPolygon(id)
		return EntityTransform{X: p.CenterX, Y: p.CenterY, Rotation: p.Rotation, ScaleX: p.Scale, ScaleY: p.Scale}, true
	case KindSymbol:
		sym, _ := e.store.FindSymbol(id)
		return EntityTransform{X: sym.X, Y: sym.Y, Rotation: sym.Rotation, ScaleX: sym.Scale, ScaleY: sym.Scale}, true
	case KindText:
		t, _ := e.store.FindText(id)
		return EntityTransform{X: t.X, Y: t.Y, Rotation: t.Rotation, ScaleX: 1, ScaleY: 1}, true
	case KindLine:
		l, _ := e.store.FindLine(id)
		return EntityTransform{X: l.X1, Y: l.Y1, ScaleX: 1, ScaleY: 1}, true
	case KindArrow:
		a, _ := e.store.FindArrow(id)
		return EntityTransform{X: a.X1, Y: a.Y1, ScaleX: 1, ScaleY: 1}, true
	case KindConduit:
		c, _ := e.store.FindConduit(id)
		x, y, resolved := e.store.ResolveNodePosition(c.FromNode)
		if !resolved {
			return EntityTransform{}, false
		}
		return EntityTransform{X: x, Y: y, ScaleX: 1, ScaleY: 1}, true
	case KindPolyline:
		p, _ := e.store.FindPolyline(id)
		pts := e.store.PolylinePoints(*p)
		if len(pts) == 0 {
			return EntityTransform{ScaleX: 1, ScaleY: 1}, true
		}
		return EntityTransform{X: pts[0].X, Y: pts[0].Y, ScaleX: 1, ScaleY: 1}, true
	default:
		return EntityTransform{}, false
	}
}

// Pick finds the topmost entity at (x, y) within tolerancePx screen
// pixels, rebuilding the spatial index first if needed.
func (e *Engine) Pick(x, y, tolerancePx float32) (PickResult, bool) {
	e.rebuildIfDirty()
	return e.picker().Pick(e.store, x, y, tolerancePx)
}

// PickEx tests (x, y) against the resize/rotate handle layout of id's
// world-space bounding box, for refining a pick on an already-selected
// entity into a specific handle target. It does not run Pick itself and
// never reports a vertex target.
func (e *Engine) PickEx(id EntityID, x, y, tolerancePx float32) (PickTarget, int, bool) {
	b, ok := entityBounds(e.store, id)
	if !ok {
		return TargetNone, 0, false
	}
	scale := e.store.ViewScale()
	if scale <= 0 {
		scale = 1
	}
	hl := ComputeHandleLayout(identityAffine, b.Width, b.Height, 20/scale)
	// Re-root the layout at the entity's actual world position: the
	// identity-transform layout above is local to (0,0); translate it.
	for i := range hl.Corners {
		hl.Corners[i].X += b.X
		hl.Corners[i].Y += b.Y
	}
	for i := range hl.Sides {
		hl.Sides[i].X += b.X
		hl.Sides[i].Y += b.Y
	}
	hl.Rotate.X += b.X
	hl.Rotate.Y += b.Y
	return PickHandle(hl, x, y, tolerancePx/scale)
}

// QueryArea returns every drawable entity overlapping area.
func (e *Engine) QueryArea(area Rect) []EntityID {
	e.rebuildIfDirty()
	return e.picker().QueryArea(e.store, area)
}

// QueryMarquee returns every drawable entity matching mode against area.
func (e *Engine) QueryMarquee(area Rect, mode MarqueeMode) []EntityID {
	e.rebuildIfDirty()
	return e.picker().QueryMarquee(e.store, area, mode)
}

// Undo/Redo forward to the history log, each emitting EventHistoryChanged
// on success (spec.md §4.8: "Both increment generation and emit a
// history-changed event").
func (e *Engine) Undo() bool {
	ok := e.history.Undo(e.store)
	if ok {
		e.events.Push(Event{Type: EventHistoryChanged, A: e.store.generation, B: 1}, e.store.generation)
	}
	return ok
}

func (e *Engine) Redo() bool {
	ok := e.history.Redo(e.store)
	if ok {
		e.events.Push(Event{Type: EventHistoryChanged, A: e.store.generation, B: 2}, e.store.generation)
	}
	return ok
}

// HistoryMeta summarizes the undo/redo log's current state.
type HistoryMeta struct {
	CanUndo bool
	CanRedo bool
	Cursor  int
	Count   int
}

// GetHistoryMeta reports the history log's current undo/redo state.
func (e *Engine) GetHistoryMeta() HistoryMeta {
	return HistoryMeta{
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
		Cursor:  e.history.cursor,
		Count:   len(e.history.entries),
	}
}

// BeginMove, BeginVertexDrag, BeginResize, and BeginRotate start the one
// interaction session the engine supports at a time; each reports
// SessionAlreadyActive if a session is already running.
func (e *Engine) BeginMove(id EntityID, startX, startY float32) *Error {
	return e.setErr(e.session.BeginMove(e.store, id, startX, startY))
}

func (e *Engine) BeginVertexDrag(id EntityID, vertexIndex int, startX, startY float32) *Error {
	return e.setErr(e.session.BeginVertexDrag(e.store, id, vertexIndex, startX, startY))
}

func (e *Engine) BeginResize(id EntityID, handle int, isCorner bool, startX, startY float32) *Error {
	return e.setErr(e.session.BeginResize(e.store, id, handle, isCorner, startX, startY))
}

func (e *Engine) BeginRotate(id EntityID, centerX, centerY, startRotation float32) *Error {
	return e.setErr(e.session.BeginRotate(e.store, id, centerX, centerY, startRotation))
}

// BeginDraft starts a drag-to-create gesture for a brand-new entity of
// kind, provisionally inserted at (startX, startY); Commit keeps it and
// reports its assigned id, Cancel removes it. sides is only meaningful
// for KindPolygon.
func (e *Engine) BeginDraft(kind EntityKind, startX, startY float32, fill, stroke Color, strokeWidthPx float32, sides int) (EntityID, *Error) {
	id, err := e.session.BeginDraft(e.store, kind, startX, startY, fill, stroke, strokeWidthPx, sides)
	e.setErr(err)
	return id, err
}

// IsInteractionActive reports the mode and target of the running
// interaction session, if any.
func (e *Engine) IsInteractionActive() (SessionMode, EntityID, bool) {
	return e.session.Active()
}

// UpdateSession applies a live preview for the active interaction.
func (e *Engine) UpdateSession(x, y float32, shiftHeld, ctrlHeld bool) *Error {
	return e.setErr(e.session.Update(e.store, x, y, shiftHeld, ctrlHeld))
}

// CommitSession finalizes the active interaction, records history, and
// returns a result describing what changed.
func (e *Engine) CommitSession() (CommitResult, *Error) {
	result, err := e.session.Commit(e.store, e.history)
	e.setErr(err)
	if err == nil {
		e.lastCommit, e.hasLastCommit = result, true
		e.events.Push(Event{Type: EventInteractionChanged, A: uint32(result.Op), B: uint32(result.ID)}, e.store.generation)
	}
	return result, err
}

// LastCommitResult returns the most recent successful CommitSession
// result, letting a host that observed EventInteractionChanged read the
// payload back without having kept CommitSession's own return value
// around.
func (e *Engine) LastCommitResult() (CommitResult, bool) {
	return e.lastCommit, e.hasLastCommit
}

// CancelSession restores the pre-interaction state and ends the active
// interaction without recording history.
func (e *Engine) CancelSession() *Error {
	return e.setErr(e.session.Cancel(e.store))
}

// DrainEvents returns and clears all buffered events.
func (e *Engine) DrainEvents() []Event { return e.events.Drain() }

// AckResync acknowledges an Overflow sentinel, re-enabling event
// delivery.
func (e *Engine) AckResync() { e.events.AckResync() }

func elapsedMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
