package cad

import "testing"

func TestEventQueuePushDrainFIFO(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Type: EventDocChanged, A: 1}, 1)
	q.Push(Event{Type: EventDocChanged, A: 2}, 2)

	if q.Len() != 2 {
		t.Fatalf("want 2 buffered events, got %d", q.Len())
	}
	drained := q.Drain()
	if len(drained) != 2 || drained[0].A != 1 || drained[1].A != 2 {
		t.Fatalf("drain should preserve FIFO order, got %+v", drained)
	}
	if q.Len() != 0 {
		t.Fatalf("queue should be empty after drain")
	}
}

func TestEventQueueOverflowLatchesAndSentinels(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < eventQueueCapacity; i++ {
		q.Push(Event{Type: EventDocChanged, A: uint32(i)}, uint32(i))
	}
	if q.Overflowed() {
		t.Fatalf("queue should not be overflowed while exactly at capacity")
	}
	q.Push(Event{Type: EventDocChanged, A: 99999}, 99999) // this push overflows the ring
	if !q.Overflowed() {
		t.Fatalf("pushing past capacity should latch the overflowed state")
	}

	drained := q.Drain()
	if len(drained) != 1 {
		t.Fatalf("want exactly one overflow sentinel and nothing else, got %d events", len(drained))
	}
	last := drained[0]
	if last.Type != EventOverflow || last.A != 99999 {
		t.Fatalf("want overflow sentinel carrying the overflowing generation, got %+v", last)
	}

	// Still latched until AckResync, even though the buffer is now empty.
	q.Push(Event{Type: EventDocChanged, A: 123456}, 123456)
	drainedAgain := q.Drain()
	if len(drainedAgain) != 0 {
		t.Fatalf("pushes while latched should be absorbed, got %+v", drainedAgain)
	}
	if !q.Overflowed() {
		t.Fatalf("latch should persist across drains until AckResync")
	}

	q.AckResync()
	if q.Overflowed() {
		t.Fatalf("AckResync should clear the overflowed latch")
	}
	q.Push(Event{Type: EventDocChanged, A: 1}, 1)
	if q.Overflowed() {
		t.Fatalf("pushes after AckResync should be accepted again")
	}
	if q.Len() != 1 {
		t.Fatalf("want 1 buffered event after resync push, got %d", q.Len())
	}
}

func TestEventEncodeDecodeRoundTrip(t *testing.T) {
	e := Event{Type: EventInteractionChanged, Flags: 7, A: 1, B: 2, C: 3, D: 4}
	buf := EncodeEvent(e)
	if len(buf) != 20 {
		t.Fatalf("want 20-byte wire stride, got %d", len(buf))
	}
	got, derr := DecodeEvent(buf)
	if derr != nil {
		t.Fatalf("decode failed: %v", derr)
	}
	if got != e {
		t.Fatalf("round-trip mismatch: want %+v, got %+v", e, got)
	}
}
