package cad

import "testing"

func TestCommandBufferRoundTrip(t *testing.T) {
	rect := Rect{X: 1, Y: 2, W: 3, H: 4, Rotation: 0.5, Fill: Color{R: 1}, Stroke: Color{G: 1}, StrokeEnabled: true, StrokeWidthPx: 2}
	cmds := []Command{
		{Op: OpUpsertRect, ID: 7, Payload: encodeRectPayload(rect)},
		{Op: OpSetViewScale, Payload: encodeViewScalePayload(2.5)},
		{Op: OpSetDrawOrder, Payload: encodeSetDrawOrderPayload([]EntityID{7})},
	}
	buf := EncodeCommandBuffer(cmds)

	decoded, derr := DecodeCommandBuffer(buf)
	if derr != nil {
		t.Fatalf("decode failed: %v", derr)
	}
	if len(decoded) != 3 {
		t.Fatalf("want 3 commands, got %d", len(decoded))
	}

	got, derr := decodeRectPayload(decoded[0].Payload)
	if derr != nil {
		t.Fatalf("decodeRectPayload: %v", derr)
	}
	if got.X != 1 || got.H != 4 || !got.StrokeEnabled {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestDecodeCommandBufferRejectsBadMagic(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 1, 0, 0, 0}
	_, derr := DecodeCommandBuffer(buf)
	if derr == nil || derr.Kind != KindInvalidMagic {
		t.Fatalf("want InvalidMagic, got %v", derr)
	}
}

func TestDecodeCommandBufferRejectsBadVersion(t *testing.T) {
	w := &byteWriter{}
	w.u32(commandMagic)
	w.u32(9999)
	_, derr := DecodeCommandBuffer(w.buf)
	if derr == nil || derr.Kind != KindUnsupportedVersion {
		t.Fatalf("want UnsupportedVersion, got %v", derr)
	}
}

func TestDecodeCommandBufferTruncated(t *testing.T) {
	w := &byteWriter{}
	w.u32(commandMagic)
	w.u32(commandVersion)
	w.u32(uint32(OpUpsertRect))
	w.u32(1)
	w.u32(100) // claims 100 payload bytes but provides none
	_, derr := DecodeCommandBuffer(w.buf)
	if derr == nil || derr.Kind != KindBufferTruncated {
		t.Fatalf("want BufferTruncated, got %v", derr)
	}
}

func TestApplyEntityCommandPolylineShrinkBecomesDelete(t *testing.T) {
	s := NewStore()
	id := EntityID(1)
	s.UpsertPolylinePoints(id, []Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}, Polyline{})
	if _, ok := s.FindPolyline(id); !ok {
		t.Fatalf("setup: polyline should exist")
	}

	payload := encodePolylinePayload([]Vec2{{X: 0, Y: 0}}, Polyline{})
	cmd := Command{Op: OpUpsertPolyline, ID: id, Payload: payload}
	if derr := s.ApplyEntityCommand(cmd); derr != nil {
		t.Fatalf("apply failed: %v", derr)
	}
	if _, ok := s.FindPolyline(id); ok {
		t.Fatalf("polyline should have been deleted when it shrank below 2 points")
	}
}

func TestApplyEntityCommandClearAndDelete(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, W: 1, H: 1})

	if derr := s.ApplyEntityCommand(Command{Op: OpDeleteEntity, ID: 1}); derr != nil {
		t.Fatalf("delete failed: %v", derr)
	}
	if _, ok := s.FindRect(1); ok {
		t.Fatalf("rect should be deleted")
	}

	s.UpsertRect(Rect{ID: 2, W: 1, H: 1})
	if derr := s.ApplyEntityCommand(Command{Op: OpClearAll}); derr != nil {
		t.Fatalf("clear failed: %v", derr)
	}
	if len(s.DrawOrder()) != 0 {
		t.Fatalf("expected empty draw order after ClearAll")
	}
}
