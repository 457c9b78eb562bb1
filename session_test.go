package cad

import "testing"

func TestSessionMoveBeginUpdateCommit(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 10, Y: 10, W: 5, H: 5})
	h := NewHistory(10)
	ses := NewInteractionSession()

	if err := ses.BeginMove(s, 1, 0, 0); err != nil {
		t.Fatalf("begin move: %v", err)
	}
	if err := ses.Update(s, 3, 4, false, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := s.FindRect(1)
	if e.X != 13 || e.Y != 14 {
		t.Fatalf("want rect moved to (13,14), got (%v,%v)", e.X, e.Y)
	}

	res, err := ses.Commit(s, h)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if res.Op != CommitMove || res.A != 3 || res.B != 4 {
		t.Fatalf("unexpected commit result: %+v", res)
	}
	if !h.CanUndo() {
		t.Fatalf("commit should have recorded an undoable history entry")
	}
	if _, _, active := ses.Active(); active {
		t.Fatalf("session should be inactive after commit")
	}
}

func TestSessionBeginTwiceFails(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, W: 1, H: 1})
	ses := NewInteractionSession()
	if err := ses.BeginMove(s, 1, 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ses.BeginMove(s, 1, 0, 0); err == nil || err.Kind != KindSessionAlreadyActive {
		t.Fatalf("want SessionAlreadyActive, got %v", err)
	}
}

func TestSessionCancelRestoresOriginal(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 10, Y: 10, W: 5, H: 5})
	ses := NewInteractionSession()

	if err := ses.BeginMove(s, 1, 0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := ses.Update(s, 100, 100, false, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := ses.Cancel(s); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	e, _ := s.FindRect(1)
	if e.X != 10 || e.Y != 10 {
		t.Fatalf("cancel should have restored the original position, got (%v,%v)", e.X, e.Y)
	}
}

func TestSessionResizeCornerWithAspectLock(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 5})
	h := NewHistory(10)
	ses := NewInteractionSession()

	if err := ses.BeginResize(s, 1, int(CornerTR), true, 0, 0); err != nil {
		t.Fatalf("begin resize: %v", err)
	}
	// Drag the top-right corner to (20, 6): with aspect lock, height should
	// be derived from width (ratio 10/5 = 2), not taken as-is. The anchor
	// (bottom-left) stays at the origin, so x/y don't move.
	if err := ses.Update(s, 20, 6, true, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := s.FindRect(1)
	if e.X != 0 || e.Y != 0 {
		t.Fatalf("want origin unchanged at (0,0), got (%v,%v)", e.X, e.Y)
	}
	if e.W != 20 {
		t.Fatalf("want width 20, got %v", e.W)
	}
	if e.H != 10 {
		t.Fatalf("want height locked to width/ratio = 10, got %v", e.H)
	}
	res, err := ses.Commit(s, h)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if res.Op != CommitResize || res.A != 0 || res.B != 0 || res.C != 20 || res.D != 10 {
		t.Fatalf("want commit result (x=0,y=0,w=20,h=10), got %+v", res)
	}
}

// resizeHandleCase drags a single corner/side handle on a 10x10 rect
// anchored at the origin and checks the resulting geometry.
type resizeHandleCase struct {
	name         string
	handle       int
	isCorner     bool
	dragX, dragY float32
	wantX, wantY float32
	wantW, wantH float32
}

func TestSessionResizeAllHandlesAnchorOppositePoint(t *testing.T) {
	cases := []resizeHandleCase{
		{"CornerBL", int(CornerBL), true, -2, -2, -2, -2, 12, 12},
		{"CornerBR", int(CornerBR), true, 12, -2, 0, -2, 12, 12},
		{"CornerTR", int(CornerTR), true, 12, 12, 0, 0, 12, 12},
		{"CornerTL", int(CornerTL), true, -2, 12, -2, 0, 12, 12},
		{"SideS", int(SideS), false, 0, -2, 0, -2, 10, 12},
		{"SideE", int(SideE), false, 12, 0, 0, 0, 12, 10},
		{"SideN", int(SideN), false, 0, 12, 0, 0, 10, 12},
		{"SideW", int(SideW), false, -2, 0, -2, 0, 12, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewStore()
			s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
			ses := NewInteractionSession()
			if err := ses.BeginResize(s, 1, c.handle, c.isCorner, 0, 0); err != nil {
				t.Fatalf("begin resize: %v", err)
			}
			if err := ses.Update(s, c.dragX, c.dragY, false, false); err != nil {
				t.Fatalf("update: %v", err)
			}
			e, _ := s.FindRect(1)
			if e.X != c.wantX || e.Y != c.wantY || e.W != c.wantW || e.H != c.wantH {
				t.Fatalf("want (x=%v,y=%v,w=%v,h=%v), got (x=%v,y=%v,w=%v,h=%v)",
					c.wantX, c.wantY, c.wantW, c.wantH, e.X, e.Y, e.W, e.H)
			}
		})
	}
}

func TestSessionRotateSnapsWithCtrl(t *testing.T) {
	s := NewStore()
	s.UpsertRect(Rect{ID: 1, X: 0, Y: 0, W: 10, H: 10})
	ses := NewInteractionSession()

	if err := ses.BeginRotate(s, 1, 5, 5, 0); err != nil {
		t.Fatalf("begin rotate: %v", err)
	}
	// Point almost exactly 90 degrees off from center (5,5): should snap to
	// pi/2 exactly when ctrl is held.
	if err := ses.Update(s, 5, 20, true, true); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := s.FindRect(1)
	want := float32(90 * 3.14159265 / 180)
	diff := e.Rotation - want
	if diff < -0.001 || diff > 0.001 {
		t.Fatalf("want rotation snapped near pi/2, got %v", e.Rotation)
	}
}

func TestSessionDraftCreatesAndCommitsRect(t *testing.T) {
	s := NewStore()
	h := NewHistory(10)
	ses := NewInteractionSession()

	id, err := ses.BeginDraft(s, KindRect, 5, 5, Color{A: 1}, Color{A: 1}, 1, 0)
	if err != nil {
		t.Fatalf("begin draft: %v", err)
	}
	if _, ok := s.FindRect(id); !ok {
		t.Fatalf("draft should provisionally insert the entity")
	}
	if err := ses.Update(s, 15, 12, false, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := s.FindRect(id)
	if e.X != 5 || e.Y != 5 || e.W != 10 || e.H != 7 {
		t.Fatalf("want drafted rect (5,5,10,7), got (%v,%v,%v,%v)", e.X, e.Y, e.W, e.H)
	}
	res, err := ses.Commit(s, h)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if res.Op != CommitDraft || res.ID != id || res.C != 10 || res.D != 7 {
		t.Fatalf("unexpected draft commit result: %+v", res)
	}
	if !h.CanUndo() {
		t.Fatalf("committing a draft should record an undoable create entry")
	}
	h.Undo(s)
	if _, ok := s.FindRect(id); ok {
		t.Fatalf("undoing a draft commit should remove the drafted entity")
	}
}

func TestSessionDraftCancelRemovesEntity(t *testing.T) {
	s := NewStore()
	ses := NewInteractionSession()

	id, err := ses.BeginDraft(s, KindCircle, 0, 0, Color{A: 1}, Color{A: 1}, 1, 0)
	if err != nil {
		t.Fatalf("begin draft: %v", err)
	}
	if err := ses.Update(s, 3, 4, false, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := ses.Cancel(s); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := s.FindCircle(id); ok {
		t.Fatalf("cancelling a draft should delete the provisional entity")
	}
}

func TestSessionUpdateWithoutBeginFails(t *testing.T) {
	s := NewStore()
	ses := NewInteractionSession()
	if err := ses.Update(s, 0, 0, false, false); err == nil || err.Kind != KindSessionNotActive {
		t.Fatalf("want SessionNotActive, got %v", err)
	}
}
