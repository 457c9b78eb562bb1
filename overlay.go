package cad

import "github.com/chewxy/math32"

// SnapConfig toggles which candidate classes GetSnapOverlayMeta considers
// when building snap markers around a pointer position.
type SnapConfig struct {
	Enabled      bool
	Endpoint     bool
	Midpoint     bool
	Center       bool
	Intersection bool
	Grid         bool
	GridSize     float32
	RadiusWorld  float32 // search radius for entity-derived candidates
}

var (
	selectionOutlineColor = Color{R: 0.2, G: 0.6, B: 1, A: 1}
	selectionHandleColor  = Color{R: 1, G: 1, B: 1, A: 1}
	snapMarkerColor       = Color{R: 1, G: 0.8, B: 0, A: 1}
)

const handleMarkerHalfPx = 4

// SetSelection replaces the host's current selection set. Selection is
// engine-side UI state, not part of the document: it is never written to
// a snapshot or undo entry.
func (e *Engine) SetSelection(ids []EntityID) {
	e.selection = append(e.selection[:0], ids...)
}

// Selection returns the current selection set.
func (e *Engine) Selection() []EntityID { return e.selection }

// SetSnapConfig replaces the active snap configuration.
func (e *Engine) SetSnapConfig(cfg SnapConfig) { e.snapConfig = cfg }

// SnapConfig returns the active snap configuration.
func (e *Engine) SnapConfig() SnapConfig { return e.snapConfig }

func (e *Engine) rebuildSelectionOutline() {
	e.rebuildIfDirty()
	if e.selectionOutline == nil {
		e.selectionOutline = NewRenderBuilder()
	}
	b := e.selectionOutline
	b.lines = b.lines[:0]
	for _, id := range e.selection {
		r, ok := entityBounds(e.store, id)
		if !ok {
			continue
		}
		x0, y0 := r.X, r.Y
		x1, y1 := r.X+r.Width, r.Y+r.Height
		b.appendStrokePath([]Vec2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}, {X: x0, Y: y0}}, 1, selectionOutlineColor)
	}
	b.generation = e.store.generation
}

// GetSelectionOutlineMeta reports the line-buffer metadata for the
// current selection's bounding-box outlines.
func (e *Engine) GetSelectionOutlineMeta() BufferMeta {
	e.rebuildSelectionOutline()
	return e.selectionOutline.LineMeta()
}

// GetSelectionOutlineFloats returns the selection outline's vertex data.
func (e *Engine) GetSelectionOutlineFloats() []float32 {
	e.rebuildSelectionOutline()
	return e.selectionOutline.LineFloats()
}

func (e *Engine) rebuildSelectionHandles() {
	e.rebuildIfDirty()
	if e.selectionHandles == nil {
		e.selectionHandles = NewRenderBuilder()
	}
	b := e.selectionHandles
	b.lines = b.lines[:0]
	scale := e.store.ViewScale()
	if scale <= 0 {
		scale = 1
	}
	half := float32(handleMarkerHalfPx) / scale
	for _, id := range e.selection {
		r, ok := entityBounds(e.store, id)
		if !ok {
			continue
		}
		hl := ComputeHandleLayout(identityAffine, r.Width, r.Height, 20/scale)
		pts := make([]Vec2, 0, 9)
		pts = append(pts, hl.Corners[:]...)
		pts = append(pts, hl.Sides[:]...)
		pts = append(pts, hl.Rotate)
		for _, p := range pts {
			px, py := p.X+r.X, p.Y+r.Y
			b.emitLineSegment(px-half, py, px+half, py, selectionHandleColor)
			b.emitLineSegment(px, py-half, px, py+half, selectionHandleColor)
		}
	}
	b.generation = e.store.generation
}

// GetSelectionHandleMeta reports the line-buffer metadata for the
// resize/rotate handle markers of the current selection.
func (e *Engine) GetSelectionHandleMeta() BufferMeta {
	e.rebuildSelectionHandles()
	return e.selectionHandles.LineMeta()
}

// GetSelectionHandleFloats returns the selection handle markers' vertex
// data, 9 handles per selected entity (4 corners, 4 sides, 1 rotate),
// each drawn as a small two-segment cross.
func (e *Engine) GetSelectionHandleFloats() []float32 {
	e.rebuildSelectionHandles()
	return e.selectionHandles.LineFloats()
}

func (e *Engine) rebuildSnapOverlay(x, y float32) {
	e.rebuildIfDirty()
	if e.snapOverlay == nil {
		e.snapOverlay = NewRenderBuilder()
	}
	b := e.snapOverlay
	b.lines = b.lines[:0]
	cfg := e.snapConfig
	if !cfg.Enabled {
		b.generation = e.store.generation
		return
	}
	scale := e.store.ViewScale()
	if scale <= 0 {
		scale = 1
	}
	radius := cfg.RadiusWorld
	if radius <= 0 {
		radius = 20 / scale
	}
	half := float32(handleMarkerHalfPx) / scale

	mark := func(px, py float32) {
		b.emitLineSegment(px-half, py, px+half, py, snapMarkerColor)
		b.emitLineSegment(px, py-half, px, py+half, snapMarkerColor)
	}

	if cfg.Grid && cfg.GridSize > 0 {
		gx := math32.Round(x/cfg.GridSize) * cfg.GridSize
		gy := math32.Round(y/cfg.GridSize) * cfg.GridSize
		mark(gx, gy)
	}

	if cfg.Endpoint || cfg.Midpoint || cfg.Center {
		area := Rect{X: x - radius, Y: y - radius, Width: 2 * radius, Height: 2 * radius}
		for _, id := range e.QueryArea(area) {
			r, ok := entityBounds(e.store, id)
			if !ok {
				continue
			}
			if cfg.Center {
				mark(r.X+r.Width/2, r.Y+r.Height/2)
			}
			if cfg.Endpoint {
				mark(r.X, r.Y)
				mark(r.X+r.Width, r.Y+r.Height)
			}
			if cfg.Midpoint {
				mark(r.X+r.Width/2, r.Y)
				mark(r.X, r.Y+r.Height/2)
			}
		}
	}
	b.generation = e.store.generation
}

// GetSnapOverlayMeta reports the line-buffer metadata for the snap
// candidate markers near (x, y) under the active SnapConfig. Intersection
// candidates are left to a future pass (they need segment-pair testing
// across the query result, not just per-entity bounds) and are currently
// never emitted even when SnapConfig.Intersection is set.
func (e *Engine) GetSnapOverlayMeta(x, y float32) BufferMeta {
	e.rebuildSnapOverlay(x, y)
	return e.snapOverlay.LineMeta()
}

// GetSnapOverlayFloats returns the snap overlay's vertex data.
func (e *Engine) GetSnapOverlayFloats(x, y float32) []float32 {
	e.rebuildSnapOverlay(x, y)
	return e.snapOverlay.LineFloats()
}
