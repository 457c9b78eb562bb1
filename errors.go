package cad

import "fmt"

// Kind is a stable, enumerated error classification. Every operation that
// can fail reports one of these, keeping errors data the caller can
// inspect rather than a language-level exception raised across the
// engine boundary.
type Kind uint8

const (
	// KindOk is the zero value; it is never carried by a non-nil *Error.
	KindOk Kind = iota
	KindInvalidMagic
	KindUnsupportedVersion
	KindBufferTruncated
	KindInvalidPayloadSize
	KindUnknownCommand
	// KindIDNotFound is non-fatal: deletes of a missing id are a no-op,
	// but lookups report it so callers can distinguish "nothing to do"
	// from "nothing there".
	KindIDNotFound
	KindSessionNotActive
	KindSessionAlreadyActive
	KindAtlasFull
)

// String returns the stable name used in error messages and tests.
func (k Kind) String() string {
	switch k {
	case KindOk:
		return "Ok"
	case KindInvalidMagic:
		return "InvalidMagic"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindBufferTruncated:
		return "BufferTruncated"
	case KindInvalidPayloadSize:
		return "InvalidPayloadSize"
	case KindUnknownCommand:
		return "UnknownCommand"
	case KindIDNotFound:
		return "IdNotFound"
	case KindSessionNotActive:
		return "SessionNotActive"
	case KindSessionAlreadyActive:
		return "SessionAlreadyActive"
	case KindAtlasFull:
		return "AtlasFull"
	default:
		return "Unknown"
	}
}

// Error is the engine's single error type. It always carries a non-zero
// Kind so callers can switch on Err.Kind instead of string-matching.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "ApplyCommandBuffer"
	Message string // human-readable detail
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cad: %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cad: %s: %s", e.Op, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, &cad.Error{Kind: cad.KindUnsupportedVersion}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapErr(op string, kind Kind, err error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel errors for errors.Is comparisons against a specific kind
// without constructing a full message, e.g.:
//
//	if errors.Is(err, cad.ErrUnsupportedVersion) { ... }
var (
	ErrInvalidMagic          = &Error{Kind: KindInvalidMagic, Message: "invalid magic"}
	ErrUnsupportedVersion    = &Error{Kind: KindUnsupportedVersion, Message: "unsupported version"}
	ErrBufferTruncated       = &Error{Kind: KindBufferTruncated, Message: "buffer truncated"}
	ErrInvalidPayloadSize    = &Error{Kind: KindInvalidPayloadSize, Message: "invalid payload size"}
	ErrUnknownCommand        = &Error{Kind: KindUnknownCommand, Message: "unknown command"}
	ErrIDNotFound            = &Error{Kind: KindIDNotFound, Message: "id not found"}
	ErrSessionNotActive      = &Error{Kind: KindSessionNotActive, Message: "session not active"}
	ErrSessionAlreadyActive  = &Error{Kind: KindSessionAlreadyActive, Message: "session already active"}
	ErrAtlasFull             = &Error{Kind: KindAtlasFull, Message: "atlas full"}
)
