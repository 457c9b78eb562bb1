package cad

// DecodeCommandBuffer parses a full command stream: a header (magic,
// version) followed by zero or more records (op u32, entity id u32,
// payload length u32, payload bytes). The cursor advances strictly
// through every record; a truncated trailing record reports
// BufferTruncated rather than silently stopping, so a caller can tell a
// short write from an intentionally empty buffer.
func DecodeCommandBuffer(buf []byte) ([]Command, *Error) {
	r := newByteReader(buf)

	magic, err := r.u32()
	if err != nil {
		return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "missing header")
	}
	if magic != commandMagic {
		return nil, newErr("DecodeCommandBuffer", KindInvalidMagic, "got %#x", magic)
	}
	version, err := r.u32()
	if err != nil {
		return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "missing version")
	}
	if version != commandVersion {
		return nil, newErr("DecodeCommandBuffer", KindUnsupportedVersion, "got %d, want %d", version, commandVersion)
	}

	var cmds []Command
	for r.remaining() > 0 {
		opRaw, err := r.u32()
		if err != nil {
			return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "record op")
		}
		if opRaw >= uint32(opCount) {
			return nil, newErr("DecodeCommandBuffer", KindUnknownCommand, "op %d", opRaw)
		}
		id, err := r.u32()
		if err != nil {
			return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "record id")
		}
		length, err := r.u32()
		if err != nil {
			return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "record length")
		}
		payload, err := r.bytes(int(length))
		if err != nil {
			return nil, wrapErr("DecodeCommandBuffer", KindBufferTruncated, err, "record payload")
		}
		cmds = append(cmds, Command{Op: Op(opRaw), ID: EntityID(id), Payload: payload})
	}
	return cmds, nil
}

// EncodeCommandBuffer is the inverse of DecodeCommandBuffer, used by the
// CLI and by tests that need to build a stream by hand.
func EncodeCommandBuffer(cmds []Command) []byte {
	w := &byteWriter{}
	w.u32(commandMagic)
	w.u32(commandVersion)
	for _, c := range cmds {
		w.u32(uint32(c.Op))
		w.u32(uint32(c.ID))
		w.u32(uint32(len(c.Payload)))
		w.bytes(c.Payload)
	}
	return w.buf
}

// --- entity payload codecs ---------------------------------------------

func decodeRectPayload(p []byte) (Rect, *Error) {
	r := newByteReader(p)
	var e Rect
	var err error
	if e.X, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.Y, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.W, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.H, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.Rotation, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.Fill, err = r.color(); err != nil {
		return e, payloadErr("Rect", err)
	}
	if e.Stroke, err = r.color(); err != nil {
		return e, payloadErr("Rect", err)
	}
	enabled, err := r.u8()
	if err != nil {
		return e, payloadErr("Rect", err)
	}
	e.StrokeEnabled = enabled != 0
	if e.StrokeWidthPx, err = r.f32(); err != nil {
		return e, payloadErr("Rect", err)
	}
	return e, nil
}

func encodeRectPayload(e Rect) []byte {
	w := &byteWriter{}
	w.f32(e.X)
	w.f32(e.Y)
	w.f32(e.W)
	w.f32(e.H)
	w.f32(e.Rotation)
	w.color(e.Fill)
	w.color(e.Stroke)
	w.u8(boolByte(e.StrokeEnabled))
	w.f32(e.StrokeWidthPx)
	return w.buf
}

func decodeLinePayload(p []byte) (Line, *Error) {
	r := newByteReader(p)
	var e Line
	var err error
	if e.X1, err = r.f32(); err != nil {
		return e, payloadErr("Line", err)
	}
	if e.Y1, err = r.f32(); err != nil {
		return e, payloadErr("Line", err)
	}
	if e.X2, err = r.f32(); err != nil {
		return e, payloadErr("Line", err)
	}
	if e.Y2, err = r.f32(); err != nil {
		return e, payloadErr("Line", err)
	}
	if e.Stroke, err = r.color(); err != nil {
		return e, payloadErr("Line", err)
	}
	enabled, err := r.u8()
	if err != nil {
		return e, payloadErr("Line", err)
	}
	e.Enabled = enabled != 0
	if e.StrokeWidthPx, err = r.f32(); err != nil {
		return e, payloadErr("Line", err)
	}
	return e, nil
}

func encodeLinePayload(e Line) []byte {
	w := &byteWriter{}
	w.f32(e.X1)
	w.f32(e.Y1)
	w.f32(e.X2)
	w.f32(e.Y2)
	w.color(e.Stroke)
	w.u8(boolByte(e.Enabled))
	w.f32(e.StrokeWidthPx)
	return w.buf
}

// decodedPolyline carries the points alongside the style fields, since
// Polyline itself only stores pool offsets, not points.
type decodedPolyline struct {
	Points []Vec2
	Style  Polyline
}

func decodePolylinePayload(p []byte) (decodedPolyline, *Error) {
	r := newByteReader(p)
	var d decodedPolyline
	var err error
	if d.Style.Fill, err = r.color(); err != nil {
		return d, payloadErr("Polyline", err)
	}
	if d.Style.Stroke, err = r.color(); err != nil {
		return d, payloadErr("Polyline", err)
	}
	enabled, err := r.u8()
	if err != nil {
		return d, payloadErr("Polyline", err)
	}
	d.Style.StrokeEnabled = enabled != 0
	if d.Style.StrokeWidthPx, err = r.f32(); err != nil {
		return d, payloadErr("Polyline", err)
	}
	count, err := r.u32()
	if err != nil {
		return d, payloadErr("Polyline", err)
	}
	d.Points = make([]Vec2, count)
	for i := range d.Points {
		if d.Points[i].X, err = r.f32(); err != nil {
			return d, payloadErr("Polyline", err)
		}
		if d.Points[i].Y, err = r.f32(); err != nil {
			return d, payloadErr("Polyline", err)
		}
	}
	return d, nil
}

func encodePolylinePayload(pts []Vec2, style Polyline) []byte {
	w := &byteWriter{}
	w.color(style.Fill)
	w.color(style.Stroke)
	w.u8(boolByte(style.StrokeEnabled))
	w.f32(style.StrokeWidthPx)
	w.u32(uint32(len(pts)))
	for _, p := range pts {
		w.f32(p.X)
		w.f32(p.Y)
	}
	return w.buf
}

func decodeCircleOrPolygonFields(r *byteReader) (cx, cy, rx, ry, rot, scale float32, fill, stroke Color, enabled bool, width float32, err error) {
	if cx, err = r.f32(); err != nil {
		return
	}
	if cy, err = r.f32(); err != nil {
		return
	}
	if rx, err = r.f32(); err != nil {
		return
	}
	if ry, err = r.f32(); err != nil {
		return
	}
	if rot, err = r.f32(); err != nil {
		return
	}
	if scale, err = r.f32(); err != nil {
		return
	}
	if fill, err = r.color(); err != nil {
		return
	}
	if stroke, err = r.color(); err != nil {
		return
	}
	var e uint8
	if e, err = r.u8(); err != nil {
		return
	}
	enabled = e != 0
	width, err = r.f32()
	return
}

func decodeCirclePayload(p []byte) (Circle, *Error) {
	r := newByteReader(p)
	var e Circle
	cx, cy, rx, ry, rot, scale, fill, stroke, enabled, width, err := decodeCircleOrPolygonFields(r)
	if err != nil {
		return e, payloadErr("Circle", err)
	}
	e.CenterX, e.CenterY, e.RadiusX, e.RadiusY = cx, cy, rx, ry
	e.Rotation, e.Scale = rot, scale
	e.Fill, e.Stroke, e.StrokeEnabled, e.StrokeWidthPx = fill, stroke, enabled, width
	return e, nil
}

func encodeCirclePayload(e Circle) []byte {
	w := &byteWriter{}
	w.f32(e.CenterX)
	w.f32(e.CenterY)
	w.f32(e.RadiusX)
	w.f32(e.RadiusY)
	w.f32(e.Rotation)
	w.f32(e.Scale)
	w.color(e.Fill)
	w.color(e.Stroke)
	w.u8(boolByte(e.StrokeEnabled))
	w.f32(e.StrokeWidthPx)
	return w.buf
}

func decodePolygonPayload(p []byte) (Polygon, *Error) {
	r := newByteReader(p)
	var e Polygon
	cx, cy, rx, ry, rot, scale, fill, stroke, enabled, width, err := decodeCircleOrPolygonFields(r)
	if err != nil {
		return e, payloadErr("Polygon", err)
	}
	sides, err := r.u32()
	if err != nil {
		return e, payloadErr("Polygon", err)
	}
	e.CenterX, e.CenterY, e.RadiusX, e.RadiusY = cx, cy, rx, ry
	e.Rotation, e.Scale = rot, scale
	e.Fill, e.Stroke, e.StrokeEnabled, e.StrokeWidthPx = fill, stroke, enabled, width
	e.Sides = int(sides)
	return e, nil
}

func encodePolygonPayload(e Polygon) []byte {
	w := &byteWriter{}
	w.f32(e.CenterX)
	w.f32(e.CenterY)
	w.f32(e.RadiusX)
	w.f32(e.RadiusY)
	w.f32(e.Rotation)
	w.f32(e.Scale)
	w.color(e.Fill)
	w.color(e.Stroke)
	w.u8(boolByte(e.StrokeEnabled))
	w.f32(e.StrokeWidthPx)
	w.u32(uint32(e.Sides))
	return w.buf
}

func decodeArrowPayload(p []byte) (Arrow, *Error) {
	r := newByteReader(p)
	var e Arrow
	var err error
	if e.X1, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.Y1, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.X2, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.Y2, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.HeadSize, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.Stroke, err = r.color(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	if e.StrokeWidthPx, err = r.f32(); err != nil {
		return e, payloadErr("Arrow", err)
	}
	return e, nil
}

func encodeArrowPayload(e Arrow) []byte {
	w := &byteWriter{}
	w.f32(e.X1)
	w.f32(e.Y1)
	w.f32(e.X2)
	w.f32(e.Y2)
	w.f32(e.HeadSize)
	w.color(e.Stroke)
	w.f32(e.StrokeWidthPx)
	return w.buf
}

func decodeSymbolPayload(p []byte) (Symbol, *Error) {
	r := newByteReader(p)
	var e Symbol
	keyLen, err := r.u32()
	if err != nil {
		return e, payloadErr("Symbol", err)
	}
	keyBytes, err := r.bytes(int(keyLen))
	if err != nil {
		return e, payloadErr("Symbol", err)
	}
	e.LibraryKey = string(keyBytes)
	if e.X, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.Y, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.W, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.H, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.Rotation, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.Scale, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.AnchorU, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	if e.AnchorV, err = r.f32(); err != nil {
		return e, payloadErr("Symbol", err)
	}
	return e, nil
}

func encodeSymbolPayload(e Symbol) []byte {
	w := &byteWriter{}
	key := []byte(e.LibraryKey)
	w.u32(uint32(len(key)))
	w.bytes(key)
	w.f32(e.X)
	w.f32(e.Y)
	w.f32(e.W)
	w.f32(e.H)
	w.f32(e.Rotation)
	w.f32(e.Scale)
	w.f32(e.AnchorU)
	w.f32(e.AnchorV)
	return w.buf
}

func decodeNodePayload(p []byte) (Node, *Error) {
	r := newByteReader(p)
	var e Node
	kind, err := r.u8()
	if err != nil {
		return e, payloadErr("Node", err)
	}
	e.Kind = NodeKind(kind)
	if e.X, err = r.f32(); err != nil {
		return e, payloadErr("Node", err)
	}
	if e.Y, err = r.f32(); err != nil {
		return e, payloadErr("Node", err)
	}
	symID, err := r.u32()
	if err != nil {
		return e, payloadErr("Node", err)
	}
	e.SymbolID = EntityID(symID)
	return e, nil
}

func encodeNodePayload(e Node) []byte {
	w := &byteWriter{}
	w.u8(uint8(e.Kind))
	w.f32(e.X)
	w.f32(e.Y)
	w.u32(uint32(e.SymbolID))
	return w.buf
}

func decodeConduitPayload(p []byte) (Conduit, *Error) {
	r := newByteReader(p)
	var e Conduit
	from, err := r.u32()
	if err != nil {
		return e, payloadErr("Conduit", err)
	}
	to, err := r.u32()
	if err != nil {
		return e, payloadErr("Conduit", err)
	}
	e.FromNode, e.ToNode = EntityID(from), EntityID(to)
	if e.Stroke, err = r.color(); err != nil {
		return e, payloadErr("Conduit", err)
	}
	if e.StrokeWidthPx, err = r.f32(); err != nil {
		return e, payloadErr("Conduit", err)
	}
	return e, nil
}

func encodeConduitPayload(e Conduit) []byte {
	w := &byteWriter{}
	w.u32(uint32(e.FromNode))
	w.u32(uint32(e.ToNode))
	w.color(e.Stroke)
	w.f32(e.StrokeWidthPx)
	return w.buf
}

func decodeTextPayload(p []byte) (Text, *Error) {
	r := newByteReader(p)
	var e Text
	var err error
	if e.X, err = r.f32(); err != nil {
		return e, payloadErr("Text", err)
	}
	if e.Y, err = r.f32(); err != nil {
		return e, payloadErr("Text", err)
	}
	if e.Rotation, err = r.f32(); err != nil {
		return e, payloadErr("Text", err)
	}
	box, err := r.u8()
	if err != nil {
		return e, payloadErr("Text", err)
	}
	e.Box = TextBoxMode(box)
	if e.ConstraintWidth, err = r.f32(); err != nil {
		return e, payloadErr("Text", err)
	}
	align, err := r.u8()
	if err != nil {
		return e, payloadErr("Text", err)
	}
	e.Align = TextAlign(align)
	contentLen, err := r.u32()
	if err != nil {
		return e, payloadErr("Text", err)
	}
	content, err := r.bytes(int(contentLen))
	if err != nil {
		return e, payloadErr("Text", err)
	}
	e.Content = append([]byte(nil), content...)
	runCount, err := r.u32()
	if err != nil {
		return e, payloadErr("Text", err)
	}
	e.Runs = make([]StyleRun, runCount)
	for i := range e.Runs {
		run := &e.Runs[i]
		start, err := r.u32()
		if err != nil {
			return e, payloadErr("Text", err)
		}
		end, err := r.u32()
		if err != nil {
			return e, payloadErr("Text", err)
		}
		run.ByteStart, run.ByteEnd = int(start), int(end)
		if run.FontID, err = r.u32(); err != nil {
			return e, payloadErr("Text", err)
		}
		if run.PointSize, err = r.f32(); err != nil {
			return e, payloadErr("Text", err)
		}
		if run.Color, err = r.color(); err != nil {
			return e, payloadErr("Text", err)
		}
		flags, err := r.u8()
		if err != nil {
			return e, payloadErr("Text", err)
		}
		run.Flags = StyleFlags(flags)
	}
	return e, nil
}

func encodeTextPayload(e Text) []byte {
	w := &byteWriter{}
	w.f32(e.X)
	w.f32(e.Y)
	w.f32(e.Rotation)
	w.u8(uint8(e.Box))
	w.f32(e.ConstraintWidth)
	w.u8(uint8(e.Align))
	w.u32(uint32(len(e.Content)))
	w.bytes(e.Content)
	w.u32(uint32(len(e.Runs)))
	for _, run := range e.Runs {
		w.u32(uint32(run.ByteStart))
		w.u32(uint32(run.ByteEnd))
		w.u32(run.FontID)
		w.f32(run.PointSize)
		w.color(run.Color)
		w.u8(uint8(run.Flags))
	}
	return w.buf
}

func decodeSetDrawOrderPayload(p []byte) ([]EntityID, *Error) {
	r := newByteReader(p)
	count, err := r.u32()
	if err != nil {
		return nil, payloadErr("SetDrawOrder", err)
	}
	ids := make([]EntityID, count)
	for i := range ids {
		v, err := r.u32()
		if err != nil {
			return nil, payloadErr("SetDrawOrder", err)
		}
		ids[i] = EntityID(v)
	}
	return ids, nil
}

func encodeSetDrawOrderPayload(ids []EntityID) []byte {
	w := &byteWriter{}
	w.u32(uint32(len(ids)))
	for _, id := range ids {
		w.u32(uint32(id))
	}
	return w.buf
}

func decodeViewScalePayload(p []byte) (float32, *Error) {
	r := newByteReader(p)
	v, err := r.f32()
	if err != nil {
		return 0, payloadErr("SetViewScale", err)
	}
	return v, nil
}

func encodeViewScalePayload(scale float32) []byte {
	w := &byteWriter{}
	w.f32(scale)
	return w.buf
}

func payloadErr(op string, err error) *Error {
	return wrapErr(op, KindInvalidPayloadSize, err, "malformed payload")
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// --- text editing payload codecs ----------------------------------------
//
// These target the text subsystem rather than the Store directly: the
// entity id on the owning Command names the Text entity, and the logical
// indices below are code-point/grapheme positions, not byte offsets (see
// textLogicalToByte).

type insertContentOp struct {
	LogicalIndex int
	Text         []byte
}

func decodeInsertContentPayload(p []byte) (insertContentOp, *Error) {
	r := newByteReader(p)
	var op insertContentOp
	idx, err := r.u32()
	if err != nil {
		return op, payloadErr("InsertContent", err)
	}
	op.LogicalIndex = int(idx)
	n, err := r.u32()
	if err != nil {
		return op, payloadErr("InsertContent", err)
	}
	text, err := r.bytes(int(n))
	if err != nil {
		return op, payloadErr("InsertContent", err)
	}
	op.Text = append([]byte(nil), text...)
	return op, nil
}

func encodeInsertContentPayload(logicalIndex int, text []byte) []byte {
	w := &byteWriter{}
	w.u32(uint32(logicalIndex))
	w.u32(uint32(len(text)))
	w.bytes(text)
	return w.buf
}

type rangeOp struct {
	Start, End int
}

func decodeRangePayload(op string, p []byte) (rangeOp, *Error) {
	r := newByteReader(p)
	var ro rangeOp
	start, err := r.u32()
	if err != nil {
		return ro, payloadErr(op, err)
	}
	end, err := r.u32()
	if err != nil {
		return ro, payloadErr(op, err)
	}
	ro.Start, ro.End = int(start), int(end)
	return ro, nil
}

func encodeRangePayload(start, end int) []byte {
	w := &byteWriter{}
	w.u32(uint32(start))
	w.u32(uint32(end))
	return w.buf
}

func decodeDeleteContentPayload(p []byte) (rangeOp, *Error) {
	return decodeRangePayload("DeleteContent", p)
}

func decodeSetSelectionPayload(p []byte) (rangeOp, *Error) {
	return decodeRangePayload("SetSelection", p)
}

func decodeSetCaretPayload(p []byte) (int, *Error) {
	r := newByteReader(p)
	idx, err := r.u32()
	if err != nil {
		return 0, payloadErr("SetCaret", err)
	}
	return int(idx), nil
}

func encodeSetCaretPayload(logicalIndex int) []byte {
	w := &byteWriter{}
	w.u32(uint32(logicalIndex))
	return w.buf
}

// applyStyleOp carries a tri-state decoration mask plus optional
// font/size/color overrides, each gated by its own Apply* flag so "don't
// touch this field" is representable on the wire.
type applyStyleOp struct {
	Start, End int
	SetMask    StyleFlags
	ClearMask  StyleFlags
	ApplyFont  bool
	FontID     uint32
	ApplySize  bool
	PointSize  float32
	ApplyColor bool
	Color      Color
}

func decodeApplyStylePayload(p []byte) (applyStyleOp, *Error) {
	r := newByteReader(p)
	var op applyStyleOp
	start, err := r.u32()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	end, err := r.u32()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.Start, op.End = int(start), int(end)
	setMask, err := r.u8()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.SetMask = StyleFlags(setMask)
	clearMask, err := r.u8()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.ClearMask = StyleFlags(clearMask)
	applyFont, err := r.u8()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.ApplyFont = applyFont != 0
	if op.FontID, err = r.u32(); err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	applySize, err := r.u8()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.ApplySize = applySize != 0
	if op.PointSize, err = r.f32(); err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	applyColor, err := r.u8()
	if err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	op.ApplyColor = applyColor != 0
	if op.Color, err = r.color(); err != nil {
		return op, payloadErr("ApplyStyle", err)
	}
	return op, nil
}

func encodeApplyStylePayload(op applyStyleOp) []byte {
	w := &byteWriter{}
	w.u32(uint32(op.Start))
	w.u32(uint32(op.End))
	w.u8(uint8(op.SetMask))
	w.u8(uint8(op.ClearMask))
	w.u8(boolByte(op.ApplyFont))
	w.u32(op.FontID)
	w.u8(boolByte(op.ApplySize))
	w.f32(op.PointSize)
	w.u8(boolByte(op.ApplyColor))
	w.color(op.Color)
	return w.buf
}

func decodeSetAlignPayload(p []byte) (TextAlign, *Error) {
	r := newByteReader(p)
	v, err := r.u8()
	if err != nil {
		return 0, payloadErr("SetAlign", err)
	}
	return TextAlign(v), nil
}

func encodeSetAlignPayload(align TextAlign) []byte {
	w := &byteWriter{}
	w.u8(uint8(align))
	return w.buf
}
