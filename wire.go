package cad

import (
	"encoding/binary"
	"math"
)

// Wire format constants. Everything on the wire is little-endian,
// independent of host byte order, the same encoding/binary.LittleEndian
// convention a magic+version+sections binary format typically uses.
const (
	commandMagic   uint32 = 0x30444143 // "CAD0" little-endian
	commandVersion uint32 = 1

	snapshotMagic   uint32 = 0x53444143 // "CADS"
	snapshotVersion uint32 = 1
)

// Op identifies a command stream record's operation.
type Op uint32

const (
	OpClearAll Op = iota
	OpDeleteEntity
	OpSetViewScale
	OpSetDrawOrder
	OpUpsertRect
	OpUpsertLine
	OpUpsertPolyline
	OpUpsertCircle
	OpUpsertPolygon
	OpUpsertArrow
	OpUpsertSymbol
	OpUpsertNode
	OpUpsertConduit
	OpUpsertText
	OpInsertContent
	OpDeleteContent
	OpSetCaret
	OpSetSelection
	OpApplyStyle
	OpSetAlign
	opCount
)

// Command is one decoded command-stream record: an op code, the entity id
// it targets (0 for ops like ClearAll/SetDrawOrder that target no single
// id), and its raw payload bytes.
type Command struct {
	Op      Op
	ID      EntityID
	Payload []byte
}

// --- byte cursor -----------------------------------------------------------

// byteReader is a bounds-checked little-endian cursor over a byte slice.
// Every read advances the cursor strictly; any read past the end reports
// BufferTruncated, matching the decoder's "advances strictly" contract.
type byteReader struct {
	buf []byte
	pos int
}

func newByteReader(buf []byte) *byteReader { return &byteReader{buf: buf} }

func (r *byteReader) remaining() int { return len(r.buf) - r.pos }

func (r *byteReader) need(n int) error {
	if r.remaining() < n {
		return ErrBufferTruncated
	}
	return nil
}

func (r *byteReader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *byteReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *byteReader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return float32FromBits(v), nil
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func (r *byteReader) color() (Color, error) {
	rr, err := r.f32()
	if err != nil {
		return Color{}, err
	}
	g, err := r.f32()
	if err != nil {
		return Color{}, err
	}
	b, err := r.f32()
	if err != nil {
		return Color{}, err
	}
	a, err := r.f32()
	if err != nil {
		return Color{}, err
	}
	return Color{R: rr, G: g, B: b, A: a}, nil
}

// --- byte writer -------------------------------------------------------

type byteWriter struct {
	buf []byte
}

func (w *byteWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *byteWriter) u16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *byteWriter) u32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *byteWriter) f32(v float32) { w.u32(float32Bits(v)) }
func (w *byteWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *byteWriter) color(c Color) {
	w.f32(c.R)
	w.f32(c.G)
	w.f32(c.B)
	w.f32(c.A)
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float32Bits(v float32) uint32 {
	return math.Float32bits(v)
}
