package cad

import "github.com/chewxy/math32"

// vertexStride is the per-vertex float count: x, y, z, r, g, b, a. z is
// always 0 (the engine is a 2-D system); it is carried so a host renderer
// can feed the buffer straight into a 3-D pipeline without reshaping it.
const vertexStride = 7

const circleSegments = 32

// BufferMeta describes a built render buffer: its generation (so a host
// can skip re-uploading an unchanged buffer), vertex/float counts, and
// the backing capacity (which may exceed the live count — the builder
// reuses its backing array across rebuilds rather than reallocating).
type BufferMeta struct {
	Generation       uint32
	VertexCount      int
	CapacityVertices int
	FloatCount       int
}

func bufferMetaFor(buf []float32, generation uint32) BufferMeta {
	return BufferMeta{
		Generation:       generation,
		VertexCount:      len(buf) / vertexStride,
		CapacityVertices: cap(buf) / vertexStride,
		FloatCount:       len(buf),
	}
}

// RenderBuilder tessellates a Store's drawable entities into two flat
// vertex streams with the same 7-float stride: a triangle buffer (fan
// triangulation of filled shapes) and a line buffer (one 2-vertex segment
// per stroked edge, meant to be drawn as an unindexed line list — stroke
// width is a host-side line-width concern, not baked into geometry).
type RenderBuilder struct {
	triangles  []float32
	lines      []float32
	generation uint32
}

// NewRenderBuilder creates an empty builder.
func NewRenderBuilder() *RenderBuilder { return &RenderBuilder{} }

// TriangleMeta reports the current triangle buffer's metadata without
// rebuilding.
func (b *RenderBuilder) TriangleMeta() BufferMeta {
	return bufferMetaFor(b.triangles, b.generation)
}

// LineMeta reports the current line buffer's metadata without rebuilding.
func (b *RenderBuilder) LineMeta() BufferMeta {
	return bufferMetaFor(b.lines, b.generation)
}

// TriangleFloats returns the live triangle vertex buffer. The returned
// slice aliases internal storage and is only valid until the next Build
// call.
func (b *RenderBuilder) TriangleFloats() []float32 { return b.triangles }

// LineFloats returns the live line vertex buffer. The returned slice
// aliases internal storage and is only valid until the next Build call.
func (b *RenderBuilder) LineFloats() []float32 { return b.lines }

// Build retessellates every entity in draw order into the two vertex
// buffers, reusing each backing array when it's large enough. Text
// entities are skipped and emit no vertices; this package has no
// glyph-quad path for text.
func (b *RenderBuilder) Build(s *Store, generation uint32) {
	b.triangles = b.triangles[:0]
	b.lines = b.lines[:0]
	scale := s.ViewScale()
	if scale <= 0 {
		scale = 1
	}

	for _, id := range s.DrawOrder() {
		kind, ok := s.Kind(id)
		if !ok {
			continue
		}
		switch kind {
		case KindRect:
			e, _ := s.FindRect(id)
			b.appendRect(*e, scale)
		case KindLine:
			e, _ := s.FindLine(id)
			if e.Enabled {
				b.appendStrokeSegment(e.X1, e.Y1, e.X2, e.Y2, e.StrokeWidthPx/scale, e.Stroke)
			}
		case KindPolyline:
			e, _ := s.FindPolyline(id)
			b.appendPolyline(*e, s.PolylinePoints(*e), scale)
		case KindCircle:
			e, _ := s.FindCircle(id)
			b.appendCircle(*e, scale)
		case KindPolygon:
			e, _ := s.FindPolygon(id)
			b.appendPolygon(*e, scale)
		case KindArrow:
			e, _ := s.FindArrow(id)
			b.appendArrow(*e, scale)
		case KindConduit:
			e, _ := s.FindConduit(id)
			x1, y1, ok1 := s.ResolveNodePosition(e.FromNode)
			x2, y2, ok2 := s.ResolveNodePosition(e.ToNode)
			if ok1 && ok2 {
				b.appendStrokeSegment(x1, y1, x2, y2, e.StrokeWidthPx/scale, e.Stroke)
			}
		case KindText:
			// text emits no vertices.
		}
	}
	b.generation = generation
}

func (b *RenderBuilder) emitTriangle(ax, ay, bx, by, cx, cy float32, col Color) {
	b.triangles = append(b.triangles,
		ax, ay, 0, col.R, col.G, col.B, col.A,
		bx, by, 0, col.R, col.G, col.B, col.A,
		cx, cy, 0, col.R, col.G, col.B, col.A,
	)
}

// emitFan triangulates a closed polygon as a fan from pts[0]. Correct for
// convex polygons; concave input produces a visually approximate but
// still gap-free mesh.
func (b *RenderBuilder) emitFan(pts []Vec2, col Color) {
	if len(pts) < 3 {
		return
	}
	for i := 1; i < len(pts)-1; i++ {
		b.emitTriangle(pts[0].X, pts[0].Y, pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, col)
	}
}

func (b *RenderBuilder) emitLineSegment(x1, y1, x2, y2 float32, col Color) {
	b.lines = append(b.lines,
		x1, y1, 0, col.R, col.G, col.B, col.A,
		x2, y2, 0, col.R, col.G, col.B, col.A,
	)
}

func (b *RenderBuilder) appendStrokeSegment(x1, y1, x2, y2, widthWorld float32, col Color) {
	if widthWorld <= 0 {
		return
	}
	b.emitLineSegment(x1, y1, x2, y2, col)
}

func (b *RenderBuilder) appendStrokePath(pts []Vec2, widthWorld float32, col Color) {
	if widthWorld <= 0 {
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		b.emitLineSegment(pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, col)
	}
}

func (b *RenderBuilder) appendRect(e Rect, scale float32) {
	m := rotateScaleAbout(0, 0, 1, 1, e.Rotation, e.X, e.Y)
	x0, y0 := m.apply(0, 0)
	x1, y1 := m.apply(e.W, 0)
	x2, y2 := m.apply(e.W, e.H)
	x3, y3 := m.apply(0, e.H)
	if e.Fill.A > 0 {
		b.emitTriangle(x0, y0, x1, y1, x2, y2, e.Fill)
		b.emitTriangle(x0, y0, x2, y2, x3, y3, e.Fill)
	}
	if e.StrokeEnabled {
		w := e.StrokeWidthPx / scale
		b.appendStrokePath([]Vec2{{X: x0, Y: y0}, {X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}, {X: x0, Y: y0}}, w, e.Stroke)
	}
}

func (b *RenderBuilder) appendPolyline(e Polyline, pts []Vec2, scale float32) {
	if e.Fill.A > 0 {
		b.emitFan(pts, e.Fill)
	}
	if e.StrokeEnabled {
		b.appendStrokePath(pts, e.StrokeWidthPx/scale, e.Stroke)
	}
}

func ellipsePoints(cx, cy, rx, ry, rotation float32, segments int) []Vec2 {
	pts := make([]Vec2, segments)
	m := rotateScaleAbout(0, 0, 1, 1, rotation, cx, cy)
	for i := 0; i < segments; i++ {
		theta := 2 * math32.Pi * float32(i) / float32(segments)
		lx, ly := rx*math32.Cos(theta), ry*math32.Sin(theta)
		wx, wy := m.apply(lx, ly)
		pts[i] = Vec2{X: wx, Y: wy}
	}
	return pts
}

func (b *RenderBuilder) appendCircle(e Circle, scale float32) {
	pts := ellipsePoints(e.CenterX, e.CenterY, e.RadiusX*e.Scale, e.RadiusY*e.Scale, e.Rotation, circleSegments)
	if e.Fill.A > 0 {
		b.emitFan(pts, e.Fill)
	}
	if e.StrokeEnabled {
		closed := append(append([]Vec2(nil), pts...), pts[0])
		b.appendStrokePath(closed, e.StrokeWidthPx/scale, e.Stroke)
	}
}

func (b *RenderBuilder) appendPolygon(e Polygon, scale float32) {
	pts := regularPolygonPoints(e.CenterX, e.CenterY, e.RadiusX*e.Scale, e.RadiusY*e.Scale, e.Rotation, e.Sides)
	if e.Fill.A > 0 {
		b.emitFan(pts, e.Fill)
	}
	if e.StrokeEnabled {
		closed := append(append([]Vec2(nil), pts...), pts[0])
		b.appendStrokePath(closed, e.StrokeWidthPx/scale, e.Stroke)
	}
}

func (b *RenderBuilder) appendArrow(e Arrow, scale float32) {
	w := e.StrokeWidthPx / scale
	b.appendStrokeSegment(e.X1, e.Y1, e.X2, e.Y2, w, e.Stroke)

	dx, dy := e.X2-e.X1, e.Y2-e.Y1
	length := math32.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy, ux
	head := e.HeadSize
	baseX, baseY := e.X2-ux*head, e.Y2-uy*head
	leftX, leftY := baseX+nx*head/2, baseY+ny*head/2
	rightX, rightY := baseX-nx*head/2, baseY-ny*head/2
	b.emitTriangle(e.X2, e.Y2, leftX, leftY, rightX, rightY, e.Stroke)
}
