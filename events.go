package cad

// EventType identifies an Event's payload shape.
type EventType uint16

const (
	// EventDocChanged signals a document mutation (A = EntityID affected,
	// B = EntityKind, C/D unused).
	EventDocChanged EventType = iota
	// EventInteractionChanged signals an interaction session state
	// transition (A = session op code, B = EntityID, C/D op-specific).
	EventInteractionChanged
	// EventOverflow is the single event left in the queue after a push
	// finds the ring full; A carries the generation at the moment of
	// overflow, not a dropped count — a host that reloads state as of
	// that generation has resynchronized.
	EventOverflow
	// EventHistoryChanged signals an undo/redo (A = generation after the
	// change, B = 1 for undo / 2 for redo, C/D unused).
	EventHistoryChanged
)

// eventQueueCapacity is the ring's fixed slot count.
const eventQueueCapacity = 2048

// Event is one fixed-size (20-byte wire stride: u16 type, u16 flags, four
// u32 fields) queue entry.
type Event struct {
	Type  EventType
	Flags uint16
	A, B, C, D uint32
}

// EncodeEvent writes e in its 20-byte wire layout.
func EncodeEvent(e Event) []byte {
	w := &byteWriter{}
	w.u16(uint16(e.Type))
	w.u16(e.Flags)
	w.u32(e.A)
	w.u32(e.B)
	w.u32(e.C)
	w.u32(e.D)
	return w.buf
}

// DecodeEvent reads a 20-byte wire-format event.
func DecodeEvent(p []byte) (Event, *Error) {
	r := newByteReader(p)
	var e Event
	t, err := r.u16()
	if err != nil {
		return e, payloadErr("Event", err)
	}
	e.Type = EventType(t)
	if e.Flags, err = r.u16(); err != nil {
		return e, payloadErr("Event", err)
	}
	if e.A, err = r.u32(); err != nil {
		return e, payloadErr("Event", err)
	}
	if e.B, err = r.u32(); err != nil {
		return e, payloadErr("Event", err)
	}
	if e.C, err = r.u32(); err != nil {
		return e, payloadErr("Event", err)
	}
	if e.D, err = r.u32(); err != nil {
		return e, payloadErr("Event", err)
	}
	return e, nil
}

// EventQueue is a fixed-capacity ring buffer of engine-lifecycle events.
// When a push finds the ring full, the entire ring is cleared and
// replaced with a single Overflow event: a consumer that drains always
// sees at most one Overflow record with no stale events behind it,
// rather than a queue full of events it has no way to tell apart from
// the ones it already missed. The queue then latches into an
// overflowed state — further pushes are absorbed without touching the
// buffer — until the host explicitly calls AckResync.
type EventQueue struct {
	buf        []Event
	head       int
	count      int
	overflowed bool
}

// NewEventQueue creates an empty queue at the fixed engine capacity.
func NewEventQueue() *EventQueue {
	return &EventQueue{buf: make([]Event, eventQueueCapacity)}
}

// Push enqueues e, tagging generation (the document generation at the
// moment of the push) for use if this push is the one that overflows
// the ring. While already latched overflowed, Push is a no-op.
func (q *EventQueue) Push(e Event, generation uint32) {
	if q.overflowed {
		return
	}
	if q.count == len(q.buf) {
		q.head = 0
		q.buf[0] = Event{Type: EventOverflow, A: generation}
		q.count = 1
		q.overflowed = true
		return
	}
	tail := (q.head + q.count) % len(q.buf)
	q.buf[tail] = e
	q.count++
}

// Len reports the number of buffered (not yet drained) events.
func (q *EventQueue) Len() int { return q.count }

// Overflowed reports whether the queue is latched in the overflowed
// state.
func (q *EventQueue) Overflowed() bool { return q.overflowed }

// Drain returns every buffered event in FIFO order and empties the
// queue. While overflowed, the only buffered event is the single
// Overflow record; the overflowed state itself stays latched (and
// further pushes keep being absorbed) until AckResync is called.
func (q *EventQueue) Drain() []Event {
	out := make([]Event, q.count)
	for i := 0; i < q.count; i++ {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.head = 0
	q.count = 0
	return out
}

// AckResync clears the overflowed latch, acknowledging that the host has
// observed the Overflow sentinel and resynchronized (e.g. by reloading a
// fresh snapshot). Pushes are accepted again after this call.
func (q *EventQueue) AckResync() {
	q.overflowed = false
}
