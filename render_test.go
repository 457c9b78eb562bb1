package cad

import "testing"

func TestRenderBuilderBuildsRectFillAndStroke(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}, StrokeEnabled: true, StrokeWidthPx: 2, Stroke: Color{R: 1, A: 1}})

	rb := NewRenderBuilder()
	rb.Build(s, 7)

	triMeta := rb.TriangleMeta()
	if triMeta.Generation != 7 {
		t.Fatalf("want generation 7, got %d", triMeta.Generation)
	}
	// 2 fill triangles = 6 vertices.
	if triMeta.VertexCount != 6 {
		t.Fatalf("want 6 triangle vertices (two fill triangles), got %d", triMeta.VertexCount)
	}
	if triMeta.FloatCount != triMeta.VertexCount*vertexStride {
		t.Fatalf("float count should be vertexCount*stride, got %d vs %d", triMeta.FloatCount, triMeta.VertexCount*vertexStride)
	}

	lineMeta := rb.LineMeta()
	if lineMeta.Generation != 7 {
		t.Fatalf("want generation 7, got %d", lineMeta.Generation)
	}
	// 4 outline segments * 2 vertices each = 8 line vertices.
	if lineMeta.VertexCount != 8 {
		t.Fatalf("want 8 line vertices (four stroke segments), got %d", lineMeta.VertexCount)
	}
	if lineMeta.FloatCount != lineMeta.VertexCount*vertexStride {
		t.Fatalf("float count should be vertexCount*stride, got %d vs %d", lineMeta.FloatCount, lineMeta.VertexCount*vertexStride)
	}
}

func TestRenderBuilderSkipsTextEntities(t *testing.T) {
	s := NewStore()
	s.UpsertText(Text{ID: 1, Content: []byte("hello")})

	rb := NewRenderBuilder()
	rb.Build(s, 1)
	if len(rb.TriangleFloats()) != 0 {
		t.Fatalf("text entities should contribute no vertices to the triangle buffer")
	}
	if len(rb.LineFloats()) != 0 {
		t.Fatalf("text entities should contribute no vertices to the line buffer")
	}
}

func TestRenderBuilderReusesBackingArraysAcrossBuilds(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}, StrokeEnabled: true, StrokeWidthPx: 2, Stroke: Color{R: 1, A: 1}})

	rb := NewRenderBuilder()
	rb.Build(s, 1)
	firstTriCap := cap(rb.TriangleFloats())
	firstLineCap := cap(rb.LineFloats())

	s.UpsertRect(Rect{ID: 2, X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}, StrokeEnabled: true, StrokeWidthPx: 2, Stroke: Color{R: 1, A: 1}})
	rb.Build(s, 2)
	if cap(rb.TriangleFloats()) < firstTriCap {
		t.Fatalf("triangle backing array capacity should not shrink across rebuilds")
	}
	if cap(rb.LineFloats()) < firstLineCap {
		t.Fatalf("line backing array capacity should not shrink across rebuilds")
	}
}
