package cad

import "testing"

func TestTextLogicalByteConversionASCII(t *testing.T) {
	content := []byte("hello")
	for i := 0; i <= len(content); i++ {
		if got := textLogicalToByte(content, i); got != i {
			t.Fatalf("ascii logical->byte(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestTextLogicalByteConversionGraphemeCluster(t *testing.T) {
	// "e" + combining acute accent (U+0301) is one grapheme cluster
	// spanning 3 bytes (1 + 2), followed by a plain "f" (1 byte).
	content := []byte("éf")
	if got := textLogicalLength(content); got != 2 {
		t.Fatalf("want 2 logical clusters, got %d", got)
	}
	if got := textLogicalToByte(content, 1); got != 3 {
		t.Fatalf("logical index 1 should land after the 3-byte cluster, got byte %d", got)
	}
	if got := textByteToLogical(content, 3); got != 1 {
		t.Fatalf("byte 3 should map back to logical 1, got %d", got)
	}
}

func TestTextEditorInsertAndDeleteShiftsRuns(t *testing.T) {
	s := NewStore()
	s.UpsertText(Text{ID: 1, Content: []byte("hello"), Runs: []StyleRun{{ByteStart: 0, ByteEnd: 5, Flags: StyleBold}}})

	ed := NewTextEditor()
	if err := ed.Activate(s, 1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := ed.InsertContent(s, 0, []byte("XX")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	e, _ := s.FindText(1)
	if string(e.Content) != "XXhello" {
		t.Fatalf("want XXhello, got %q", e.Content)
	}
	if e.Runs[0].ByteStart != 2 || e.Runs[0].ByteEnd != 7 {
		t.Fatalf("run should have shifted by inserted length, got %+v", e.Runs[0])
	}

	if err := ed.DeleteContent(s, 0, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e, _ = s.FindText(1)
	if string(e.Content) != "hello" {
		t.Fatalf("want hello after delete, got %q", e.Content)
	}
}

func TestTextEditorApplyStyleSplitsRuns(t *testing.T) {
	s := NewStore()
	s.UpsertText(Text{ID: 1, Content: []byte("hello world")})
	ed := NewTextEditor()
	if err := ed.Activate(s, 1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	op := applyStyleOp{Start: 0, End: 5, SetMask: StyleBold}
	if err := ed.ApplyStyle(s, op); err != nil {
		t.Fatalf("apply style: %v", err)
	}
	e, _ := s.FindText(1)
	if len(e.Runs) != 1 || e.Runs[0].Flags&StyleBold == 0 {
		t.Fatalf("expected one bold run, got %+v", e.Runs)
	}
	if e.Runs[0].ByteStart != 0 || e.Runs[0].ByteEnd != 5 {
		t.Fatalf("run should cover [0,5), got %+v", e.Runs[0])
	}
}

func TestHitTestTextLeadingAndTrailingEdge(t *testing.T) {
	e := &Text{Content: []byte("hello world")}

	charIndex, lineIndex, leading := HitTestText(e, 0, 0)
	if charIndex != 0 || lineIndex != 0 || !leading {
		t.Fatalf("want (0,0,leading) at origin, got (%d,%d,%v)", charIndex, lineIndex, leading)
	}

	// defaultGlyphAdvancePx=7: 3.2 advances into cluster 3, left half.
	charIndex, _, leading = HitTestText(e, 3.2*7, 0)
	if charIndex != 3 || !leading {
		t.Fatalf("want (3,leading), got (%d,%v)", charIndex, leading)
	}

	// 3.7 advances into the same cluster's right half.
	charIndex, _, leading = HitTestText(e, 3.7*7, 0)
	if charIndex != 3 || leading {
		t.Fatalf("want (3,trailing), got (%d,%v)", charIndex, leading)
	}
}

func TestHitTestTextMultilineSelectsLine(t *testing.T) {
	e := &Text{Content: []byte("ab\ncd")}
	_, lineIndex, _ := HitTestText(e, 0, defaultLineHeightPx+1)
	if lineIndex != 1 {
		t.Fatalf("want line 1 below the first line height, got %d", lineIndex)
	}
	charIndex, lineIndex, _ := HitTestText(e, 0, defaultLineHeightPx+1)
	if lineIndex != 1 || charIndex != 3 {
		t.Fatalf("want charIndex 3 (start of second line, after 'ab\\n'), got (%d,%d)", charIndex, lineIndex)
	}
}

func TestTextEditorRequiresActiveSession(t *testing.T) {
	s := NewStore()
	ed := NewTextEditor()
	if err := ed.SetCaret(s, 0); err == nil || err.Kind != KindSessionNotActive {
		t.Fatalf("want SessionNotActive, got %v", err)
	}
}
