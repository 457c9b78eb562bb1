package cad

import (
	"bytes"

	"github.com/rivo/uniseg"
)

// Font is a registered font's layout metrics. The engine never loads font
// files or shapes glyphs itself (that is a host/platform responsibility);
// it only needs enough metrics to lay out caret positions and soft-wrap
// points, which the host supplies when it registers a font.
type Font struct {
	ID            uint32
	Family        string
	AdvancePx     float32 // average glyph advance at PointSize 12
	LineHeightPx  float32 // at PointSize 12
}

// FontRegistry is the engine's table of host-registered fonts.
type FontRegistry struct {
	fonts  map[uint32]Font
	nextID uint32
}

// NewFontRegistry creates an empty registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fonts: make(map[uint32]Font)}
}

// Register adds a font and returns its allocated id.
func (f *FontRegistry) Register(family string, advancePx, lineHeightPx float32) uint32 {
	f.nextID++
	id := f.nextID
	f.fonts[id] = Font{ID: id, Family: family, AdvancePx: advancePx, LineHeightPx: lineHeightPx}
	return id
}

// Get returns the font for id, if registered.
func (f *FontRegistry) Get(id uint32) (Font, bool) {
	font, ok := f.fonts[id]
	return font, ok
}

const defaultGlyphAdvancePx = 7
const defaultLineHeightPx = 16
const defaultPointSize = 12

// textEstimatedWidth approximates a Text entity's auto-sized box width
// from its content length and the average run point size, without
// needing a FontRegistry at every call site (picking and spatial
// indexing only need a coarse box, not exact shaping).
func textEstimatedWidth(e *Text) float32 {
	lines := bytes.Split(e.Content, []byte{'\n'})
	maxLineGraphemes := 0
	for _, line := range lines {
		n := uniseg.GraphemeClusterCount(string(line))
		if n > maxLineGraphemes {
			maxLineGraphemes = n
		}
	}
	return float32(maxLineGraphemes) * defaultGlyphAdvancePx * avgPointSizeScale(e)
}

// textEstimatedHeight approximates a Text entity's box height from its
// line count, accounting for FixedWidth soft-wrap if a constraint width
// is set.
func textEstimatedHeight(e *Text) float32 {
	lines := textLayoutLines(e)
	return float32(len(lines)) * defaultLineHeightPx * avgPointSizeScale(e)
}

func avgPointSizeScale(e *Text) float32 {
	if len(e.Runs) == 0 {
		return 1
	}
	var sum float32
	for _, r := range e.Runs {
		ps := r.PointSize
		if ps <= 0 {
			ps = defaultPointSize
		}
		sum += ps
	}
	return (sum / float32(len(e.Runs))) / defaultPointSize
}

// textLayoutLines splits content into display lines: hard breaks at '\n'
// always, plus soft breaks inserted greedily at grapheme-cluster
// boundaries when Box is BoxFixedWidth and a line would exceed
// ConstraintWidth.
func textLayoutLines(e *Text) [][]byte {
	hard := bytes.Split(e.Content, []byte{'\n'})
	if e.Box != BoxFixedWidth || e.ConstraintWidth <= 0 {
		return hard
	}
	scale := avgPointSizeScale(e)
	maxGraphemes := int(e.ConstraintWidth / (defaultGlyphAdvancePx * scale))
	if maxGraphemes < 1 {
		maxGraphemes = 1
	}
	var out [][]byte
	for _, line := range hard {
		gr := uniseg.NewGraphemes(string(line))
		var current []byte
		count := 0
		for gr.Next() {
			cluster := gr.Str()
			if count >= maxGraphemes {
				out = append(out, current)
				current = nil
				count = 0
			}
			current = append(current, cluster...)
			count++
		}
		out = append(out, current)
	}
	return out
}

// HitTestText maps a point in the text box's local (unrotated) space to a
// logical caret position: the grapheme-cluster index into e.Content, the
// display line it falls on, and whether the point landed on the leading
// (left) or trailing (right) half of that grapheme's estimated cell —
// the caret-placement convention a host needs to decide whether a click
// should land before or after the nearest cluster boundary.
func HitTestText(e *Text, localX, localY float32) (charIndex, lineIndex int, isLeadingEdge bool) {
	lines := textLayoutLines(e)
	if len(lines) == 0 {
		return 0, 0, true
	}
	scale := avgPointSizeScale(e)
	lineHeight := defaultLineHeightPx * scale
	if lineHeight <= 0 {
		lineHeight = 1
	}
	lineIndex = clampInt(int(localY/lineHeight), 0, len(lines)-1)

	hard := bytes.Split(e.Content, []byte{'\n'})
	byteOffset := 0
	consumed := 0
outer:
	for _, h := range hard {
		sub := textLayoutLines(&Text{Content: h, Box: e.Box, ConstraintWidth: e.ConstraintWidth, Runs: e.Runs})
		for _, ln := range sub {
			if consumed == lineIndex {
				break outer
			}
			byteOffset += len(ln)
			consumed++
		}
		byteOffset++ // the '\n' separating hard lines
	}

	line := lines[lineIndex]
	advance := defaultGlyphAdvancePx * scale
	if advance <= 0 {
		advance = 1
	}
	graphemeCount := uniseg.GraphemeClusterCount(string(line))
	raw := localX / advance
	graphemeIdx := int(raw)
	frac := raw - float32(graphemeIdx)
	isLeadingEdge = frac < 0.5
	graphemeIdx = clampInt(graphemeIdx, 0, graphemeCount)

	lineByteWithin := textLogicalToByte(line, graphemeIdx)
	charIndex = textByteToLogical(e.Content, byteOffset+lineByteWithin)
	return charIndex, lineIndex, isLeadingEdge
}

// --- logical (grapheme-cluster) <-> byte index conversion -----------------

// textLogicalToByte converts a logical (grapheme-cluster) index into a
// byte offset into content. A logical index of N means "N grapheme
// clusters from the start"; indices beyond the content length clamp to
// len(content).
func textLogicalToByte(content []byte, logicalIndex int) int {
	if logicalIndex <= 0 {
		return 0
	}
	pos := 0
	rest := content
	for i := 0; i < logicalIndex && len(rest) > 0; i++ {
		cluster, remainder, _, _ := uniseg.FirstGraphemeCluster(rest, -1)
		if len(cluster) == 0 {
			break
		}
		pos += len(cluster)
		rest = remainder
	}
	return pos
}

// textByteToLogical converts a byte offset into content into the logical
// (grapheme-cluster) index it falls on, i.e. the count of whole grapheme
// clusters before byteIndex. byteIndex values that land mid-cluster round
// down to the start of that cluster.
func textByteToLogical(content []byte, byteIndex int) int {
	if byteIndex <= 0 {
		return 0
	}
	pos := 0
	logical := 0
	rest := content
	for len(rest) > 0 && pos < byteIndex {
		cluster, remainder, _, _ := uniseg.FirstGraphemeCluster(rest, -1)
		if len(cluster) == 0 || pos+len(cluster) > byteIndex {
			break
		}
		pos += len(cluster)
		rest = remainder
		logical++
	}
	return logical
}

// textLogicalLength returns content's length in grapheme clusters.
func textLogicalLength(content []byte) int {
	return uniseg.GraphemeClusterCount(string(content))
}

// --- active text edit state -----------------------------------------------

// TextEditor holds the engine's single active caret/selection target, the
// way InteractionSession holds the single active pointer interaction.
type TextEditor struct {
	active    bool
	textID    EntityID
	caret     int // logical index
	selStart  int // logical index; selStart == selEnd means no selection
	selEnd    int
}

// NewTextEditor creates an inactive text editor.
func NewTextEditor() *TextEditor { return &TextEditor{} }

// Activate targets id for subsequent content/caret/style ops. id must
// resolve to a Text entity.
func (t *TextEditor) Activate(s *Store, id EntityID) *Error {
	e, ok := s.FindText(id)
	if !ok {
		return newErr("TextEditor.Activate", KindIDNotFound, "id %d", id)
	}
	t.active = true
	t.textID = id
	t.caret = textLogicalLength(e.Content)
	t.selStart, t.selEnd = t.caret, t.caret
	return nil
}

// Deactivate clears the active edit target.
func (t *TextEditor) Deactivate() {
	t.active = false
	t.textID = 0
}

// Active reports the current edit target, if any.
func (t *TextEditor) Active() (EntityID, bool) { return t.textID, t.active }

func (t *TextEditor) requireActive(op string) *Error {
	if !t.active {
		return newErr(op, KindSessionNotActive, "no active text edit target")
	}
	return nil
}

// InsertContent inserts text at a logical index, shifting the caret and
// any style runs that start at or after the insertion point.
func (t *TextEditor) InsertContent(s *Store, logicalIndex int, text []byte) *Error {
	if err := t.requireActive("InsertContent"); err != nil {
		return err
	}
	e, ok := s.FindText(t.textID)
	if !ok {
		return newErr("InsertContent", KindIDNotFound, "id %d", t.textID)
	}
	byteIdx := textLogicalToByte(e.Content, logicalIndex)
	insertLen := len(text)

	next := make([]byte, 0, len(e.Content)+insertLen)
	next = append(next, e.Content[:byteIdx]...)
	next = append(next, text...)
	next = append(next, e.Content[byteIdx:]...)
	e.Content = next

	for i := range e.Runs {
		r := &e.Runs[i]
		if r.ByteStart >= byteIdx {
			r.ByteStart += insertLen
		}
		if r.ByteEnd >= byteIdx {
			r.ByteEnd += insertLen
		}
	}

	insertedLogical := textLogicalLength(text)
	if t.caret >= logicalIndex {
		t.caret += insertedLogical
	}
	t.selStart, t.selEnd = t.caret, t.caret
	s.markDirty()
	return nil
}

// DeleteContent removes the logical range [start, end), clamping to
// content bounds, and collapses the caret/selection to start.
func (t *TextEditor) DeleteContent(s *Store, start, end int) *Error {
	if err := t.requireActive("DeleteContent"); err != nil {
		return err
	}
	e, ok := s.FindText(t.textID)
	if !ok {
		return newErr("DeleteContent", KindIDNotFound, "id %d", t.textID)
	}
	if end < start {
		start, end = end, start
	}
	byteStart := textLogicalToByte(e.Content, start)
	byteEnd := textLogicalToByte(e.Content, end)
	if byteEnd < byteStart {
		byteStart, byteEnd = byteEnd, byteStart
	}
	removed := byteEnd - byteStart

	next := make([]byte, 0, len(e.Content)-removed)
	next = append(next, e.Content[:byteStart]...)
	next = append(next, e.Content[byteEnd:]...)
	e.Content = next

	var kept []StyleRun
	for _, r := range e.Runs {
		switch {
		case r.ByteEnd <= byteStart:
			kept = append(kept, r)
		case r.ByteStart >= byteEnd:
			r.ByteStart -= removed
			r.ByteEnd -= removed
			kept = append(kept, r)
		default:
			// Run overlaps the deleted range: clip it, dropping it
			// entirely if nothing remains.
			newStart, newEnd := r.ByteStart, r.ByteEnd
			if newStart > byteStart {
				newStart -= removed
			} else {
				newStart = byteStart
			}
			if newEnd > byteEnd {
				newEnd -= removed
			} else {
				newEnd = byteStart
			}
			if newEnd > newStart {
				r.ByteStart, r.ByteEnd = newStart, newEnd
				kept = append(kept, r)
			}
		}
	}
	e.Runs = kept

	t.caret = start
	t.selStart, t.selEnd = start, start
	s.markDirty()
	return nil
}

// SetCaret moves the caret (and collapses any selection) to a logical
// index, clamped to content length.
func (t *TextEditor) SetCaret(s *Store, logicalIndex int) *Error {
	if err := t.requireActive("SetCaret"); err != nil {
		return err
	}
	e, _ := s.FindText(t.textID)
	idx := clampInt(logicalIndex, 0, textLogicalLength(e.Content))
	t.caret = idx
	t.selStart, t.selEnd = idx, idx
	return nil
}

// SetSelection sets the logical selection range; the caret follows the
// end of the range.
func (t *TextEditor) SetSelection(s *Store, start, end int) *Error {
	if err := t.requireActive("SetSelection"); err != nil {
		return err
	}
	e, _ := s.FindText(t.textID)
	n := textLogicalLength(e.Content)
	start = clampInt(start, 0, n)
	end = clampInt(end, 0, n)
	t.selStart, t.selEnd = start, end
	t.caret = end
	return nil
}

// Caret and Selection report the editor's current logical positions.
func (t *TextEditor) Caret() int                { return t.caret }
func (t *TextEditor) Selection() (int, int)      { return t.selStart, t.selEnd }

// ApplyStyle applies a tri-state decoration mask and optional font/size/
// color overrides to the logical range [op.Start, op.End), splitting
// StyleRuns at the range boundaries so runs never overlap. Adjacent runs
// with equal styles are not merged.
func (t *TextEditor) ApplyStyle(s *Store, op applyStyleOp) *Error {
	if err := t.requireActive("ApplyStyle"); err != nil {
		return err
	}
	e, ok := s.FindText(t.textID)
	if !ok {
		return newErr("ApplyStyle", KindIDNotFound, "id %d", t.textID)
	}
	byteStart := textLogicalToByte(e.Content, op.Start)
	byteEnd := textLogicalToByte(e.Content, op.End)
	if byteEnd < byteStart {
		byteStart, byteEnd = byteEnd, byteStart
	}
	if byteEnd == byteStart {
		return nil
	}

	var result []StyleRun
	applied := false
	for _, r := range e.Runs {
		if r.ByteEnd <= byteStart || r.ByteStart >= byteEnd {
			result = append(result, r)
			continue
		}
		// Split off any part of r outside [byteStart, byteEnd).
		if r.ByteStart < byteStart {
			result = append(result, StyleRun{ByteStart: r.ByteStart, ByteEnd: byteStart, FontID: r.FontID, PointSize: r.PointSize, Color: r.Color, Flags: r.Flags})
		}
		mid := r
		if mid.ByteStart < byteStart {
			mid.ByteStart = byteStart
		}
		if mid.ByteEnd > byteEnd {
			mid.ByteEnd = byteEnd
		}
		mid.Flags = (mid.Flags &^ op.ClearMask) | op.SetMask
		if op.ApplyFont {
			mid.FontID = op.FontID
		}
		if op.ApplySize {
			mid.PointSize = op.PointSize
		}
		if op.ApplyColor {
			mid.Color = op.Color
		}
		result = append(result, mid)
		applied = true
		if r.ByteEnd > byteEnd {
			result = append(result, StyleRun{ByteStart: byteEnd, ByteEnd: r.ByteEnd, FontID: r.FontID, PointSize: r.PointSize, Color: r.Color, Flags: r.Flags})
		}
	}
	if !applied {
		// No existing run covered the range: synthesize one with engine
		// defaults plus the requested overrides.
		run := StyleRun{ByteStart: byteStart, ByteEnd: byteEnd, PointSize: defaultPointSize, Flags: op.SetMask}
		if op.ApplyFont {
			run.FontID = op.FontID
		}
		if op.ApplySize {
			run.PointSize = op.PointSize
		}
		if op.ApplyColor {
			run.Color = op.Color
		}
		result = append(result, run)
	}
	e.Runs = normalizeRuns(result)
	s.markDirty()
	return nil
}

// SetAlign sets the text entity's horizontal alignment.
func (t *TextEditor) SetAlign(s *Store, align TextAlign) *Error {
	if err := t.requireActive("SetAlign"); err != nil {
		return err
	}
	e, ok := s.FindText(t.textID)
	if !ok {
		return newErr("SetAlign", KindIDNotFound, "id %d", t.textID)
	}
	e.Align = align
	s.markDirty()
	return nil
}

// normalizeRuns drops empty runs and sorts by ByteStart, matching the
// run ordering invariant StyleRun consumers (render, layout) rely on.
func normalizeRuns(runs []StyleRun) []StyleRun {
	var out []StyleRun
	for _, r := range runs {
		if r.ByteEnd > r.ByteStart {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ByteStart > out[j].ByteStart; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
