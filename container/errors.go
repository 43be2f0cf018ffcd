package container

import "fmt"

// Code discriminates the fatal, non-recoverable container failures of
// §4.B; containers never partially commit on a read failure.
type Code int

const (
	ErrBadMagic Code = iota
	ErrShortRead
	ErrCRCMismatch
	ErrTooManySegments
)

func (c Code) String() string {
	switch c {
	case ErrBadMagic:
		return "bad magic"
	case ErrShortRead:
		return "short read"
	case ErrCRCMismatch:
		return "CRC mismatch"
	case ErrTooManySegments:
		return "too many segments"
	default:
		return "unknown container error"
	}
}

// Error is the typed, discriminated result the codec returns instead
// of throwing (§9 Design Notes, "exception use in containers").
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
