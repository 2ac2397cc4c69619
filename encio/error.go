package encio

import (
	"errors"
	"fmt"
	"runtime"
)

// Error handling in amf distinguishes io errors from bad data and from values the codec cannot handle.
// All error cases are grouped under two wrappers; IOError and Error.
// IOError errors indicate a bad io.Reader/io.Writer and the caller should stop using it.
// Error errors indicate malformed data, or a value or type the codec cannot map.
//
// The wrapped kinds below are checked with errors.Is
//
//	if errors.Is(err, encio.ErrInvalidReference) {
//		// the stream cannot be resynchronised
//	} else if errors.Is(err, encio.ErrMemberBind) {
//		// a decoded member could not be applied
//	}
var (
	// ErrFormat is returned when the read data is impossible to decode; bad markers, invalid UTF-8, impossible lengths.
	ErrFormat = errors.New("format error")

	// ErrUnsupportedMarker is returned for markers that are known but not implemented, i.e. AMF0 Movieclip.
	// It wraps ErrFormat.
	ErrUnsupportedMarker = fmt.Errorf("%w: unsupported marker", ErrFormat)

	// ErrInvalidReference is returned when a reference handle is outside of its reference table.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrNoSerializer is returned when a value's type has no writer and no resolvable class definition.
	ErrNoSerializer = errors.New("no serializer found")

	// ErrMemberBind is returned when a decoded member cannot be applied to its object;
	// the member doesn't exist, has the wrong type or cannot be set.
	// It is the only error kind that fault tolerant decoding will record and continue from.
	ErrMemberBind = errors.New("member bind failure")

	// ErrBadType is returned when a type, where possible to detect, is wrong, unresolvable or inappropriate.
	ErrBadType = errors.New("bad type")

	// ErrNilPointer is returned if a pointer that should not be nil is nil.
	ErrNilPointer = errors.New("nil pointer")
)

// IsStructural reports whether err leaves the stream in an unknown state.
// Only member bind failures are recoverable.
func IsStructural(err error) bool {
	return err != nil && !errors.Is(err, ErrMemberBind)
}

// NewIOError returns an IOError wrapping err with the given message.
// err is typically the error returned from the io.Reader/io.Writer, or another error describing why the reader isn't operating correctly.
// message has extra information about the error; if empty, it is filled with the calling function's name.
func NewIOError(err error, message string) error {
	if err == nil {
		return NewError(errors.New("unknown error"), "trying to create new IOError", 0)
	}
	if message == "" {
		message = "in " + GetCaller(1)
	}

	return IOError{
		Err:     err,
		Message: message,
	}
}

// IOError is returned when io errors occour.
type IOError struct {
	Err     error
	Message string
}

// Error implements error
func (e IOError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap implements errors's Unwrap()
func (e IOError) Unwrap() error {
	return e.Err
}

// NewError returns an Error wrapping err with message.
// The caller is filled with the name of the function skip frames above the caller of NewError.
func NewError(err error, message string, skip int) error {
	return Error{
		Err:     err,
		Message: message,
		Caller:  GetCaller(skip + 1),
	}
}

// Error is returned when bad data or an unusable value is encountered.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}

	str += e.Err.Error()

	if e.Message != "" {
		str += " (" + e.Message + ")"
	}

	return str
}

// Unwrap implements errors's Unwrap()
func (e Error) Unwrap() error {
	return e.Err
}

// GetCaller returns the name of the calling function, skipping skip functions.
// i.e. 0 writes the calling function, 1 the function calling that etc...
func GetCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "Unknown Function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
