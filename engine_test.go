package cad

import "testing"

func TestEngineApplyCommandBufferEndToEnd(t *testing.T) {
	eng := NewEngine()
	rect := Rect{X: 0, Y: 0, W: 10, H: 10, Fill: Color{A: 1}}
	cmds := []Command{
		{Op: OpUpsertRect, ID: 1, Payload: encodeRectPayload(rect)},
		{Op: OpSetViewScale, Payload: encodeViewScalePayload(2)},
	}
	buf := EncodeCommandBuffer(cmds)

	if derr := eng.ApplyCommandBuffer(buf); derr != nil {
		t.Fatalf("apply failed: %v", derr)
	}

	e, ok := eng.Store().FindRect(1)
	if !ok || e.W != 10 {
		t.Fatalf("rect did not land in the store: %+v ok=%v", e, ok)
	}

	events := eng.DrainEvents()
	if len(events) != 2 {
		t.Fatalf("want 2 doc-changed events, got %d", len(events))
	}
	if events[0].Type != EventDocChanged || events[0].A != 1 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}

	meta := eng.GetRenderBufferMeta()
	if meta.VertexCount == 0 {
		t.Fatalf("expected the rebuilt render buffer to contain the rect's fill triangles")
	}
}

func TestEngineApplyTextOpsEndToEnd(t *testing.T) {
	eng := NewEngine()
	upsert := Command{Op: OpUpsertText, ID: 1, Payload: encodeTextPayload(Text{Content: []byte("hello")})}
	insert := Command{Op: OpInsertContent, ID: 1, Payload: encodeInsertContentPayload(0, []byte("say "))}
	buf := EncodeCommandBuffer([]Command{upsert, insert})

	if derr := eng.ApplyCommandBuffer(buf); derr != nil {
		t.Fatalf("apply failed: %v", derr)
	}
	e, ok := eng.Store().FindText(1)
	if !ok || string(e.Content) != "say hello" {
		t.Fatalf("want \"say hello\", got %q ok=%v", e.Content, ok)
	}
}

func TestEnginePickAfterApply(t *testing.T) {
	eng := NewEngine()
	rect := Rect{X: 0, Y: 0, W: 10, H: 10}
	cmd := Command{Op: OpUpsertRect, ID: 1, Payload: encodeRectPayload(rect)}
	buf := EncodeCommandBuffer([]Command{cmd})
	if derr := eng.ApplyCommandBuffer(buf); derr != nil {
		t.Fatalf("apply failed: %v", derr)
	}

	res, ok := eng.Pick(5, 5, 1)
	if !ok || res.ID != 1 {
		t.Fatalf("want a pick hit on rect 1, got %+v ok=%v", res, ok)
	}
}

func TestEngineUndoRedoThroughSession(t *testing.T) {
	eng := NewEngine()
	eng.Store().UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 5, H: 5})

	if derr := eng.BeginMove(1, 0, 0); derr != nil {
		t.Fatalf("begin move: %v", derr)
	}
	if derr := eng.UpdateSession(10, 10, false, false); derr != nil {
		t.Fatalf("update: %v", derr)
	}
	if _, derr := eng.CommitSession(); derr != nil {
		t.Fatalf("commit: %v", derr)
	}

	e, _ := eng.Store().FindRect(1)
	if e.X != 10 || e.Y != 10 {
		t.Fatalf("want rect moved to (10,10), got (%v,%v)", e.X, e.Y)
	}

	events := eng.DrainEvents()
	foundInteraction := false
	for _, ev := range events {
		if ev.Type == EventInteractionChanged {
			foundInteraction = true
		}
	}
	if !foundInteraction {
		t.Fatalf("commit should have pushed an EventInteractionChanged")
	}

	if !eng.Undo() {
		t.Fatalf("undo should succeed")
	}
	e, _ = eng.Store().FindRect(1)
	if e.X != 0 || e.Y != 0 {
		t.Fatalf("undo should restore (0,0), got (%v,%v)", e.X, e.Y)
	}
	if !eng.Redo() {
		t.Fatalf("redo should succeed")
	}
	e, _ = eng.Store().FindRect(1)
	if e.X != 10 || e.Y != 10 {
		t.Fatalf("redo should restore (10,10), got (%v,%v)", e.X, e.Y)
	}
}

func TestEngineSnapshotSaveLoadRoundTrip(t *testing.T) {
	eng := NewEngine()
	eng.Store().UpsertRect(Rect{ID: 1, X: 1, Y: 2, W: 3, H: 4})
	eng.Store().SetViewScale(2)

	buf := eng.BuildSnapshotBytes()

	eng2 := NewEngine()
	if derr := eng2.LoadSnapshot(buf); derr != nil {
		t.Fatalf("load failed: %v", derr)
	}
	e, ok := eng2.Store().FindRect(1)
	if !ok || e.W != 3 {
		t.Fatalf("rect did not round-trip through the engine: %+v ok=%v", e, ok)
	}
	if eng2.Store().ViewScale() != 2 {
		t.Fatalf("view scale did not round-trip")
	}
}

func TestEngineApplyCommandBufferStopsOnFirstError(t *testing.T) {
	eng := NewEngine()
	good := Command{Op: OpUpsertRect, ID: 1, Payload: encodeRectPayload(Rect{W: 1, H: 1})}
	bad := Command{Op: OpDeleteEntity, ID: 2}
	buf := EncodeCommandBuffer([]Command{good, bad})

	// DeleteEntity on a missing id is a no-op, not an error, so this
	// buffer should apply cleanly end to end; a malformed buffer is what
	// actually exercises the stop-on-error path below.
	if derr := eng.ApplyCommandBuffer(buf); derr != nil {
		t.Fatalf("apply failed unexpectedly: %v", derr)
	}

	malformed := []byte{1, 2, 3}
	if derr := eng.ApplyCommandBuffer(malformed); derr == nil {
		t.Fatalf("expected an error decoding a malformed buffer")
	}
	if eng.LastError() == nil {
		t.Fatalf("LastError should be populated after a failed apply")
	}
}
