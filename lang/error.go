package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	// Argument-syntax errors.
	ErrSyntax        = NewError("invalid argument syntax")
	ErrEmptyToken    = NewError("empty argument token")
	ErrBadSplat      = NewError("splat operator must be '...'")
	ErrUnknownType   = NewError("unknown type name")
	ErrBadCollection = NewError("malformed collection marker")
	ErrBadAttribute  = NewError("malformed attribute segment")

	// Configuration errors.
	ErrUnknownPreset = NewError("defaults preset not registered")
	ErrBadPreset     = NewError("invalid defaults preset")
	ErrBadShape      = NewError("invalid collection shape")

	// Reference errors.
	ErrUnbound     = NewError("unbound variable reference")
	ErrMissingFile = NewError("missing or unreadable file")

	// Encoding errors.
	ErrInvalidNumber  = NewError("invalid number value")
	ErrInvalidBoolean = NewError("invalid boolean value")
	ErrInvalidNull    = NewError("invalid null value")
	ErrEmptyRaw       = NewError("raw JSON value is empty")
	ErrInvalidJSON    = NewError("invalid JSON value")
	ErrScalarValues   = NewError("multiple values for scalar entry")
)

// Class partitions fatal errors into the categories that callers branch on.
// Process-boundary wrappers map each class to a distinct exit code.
type Class int

const (
	ClassNone     Class = iota // no error
	ClassEncoding              // invalid value for its declared type
	ClassSyntax                // malformed argument token
	ClassConfig                // invalid or unregistered configuration
	ClassUnbound               // strict reference to an unset variable
	ClassResource              // missing or unreadable file
)

// ClassOf reports the error class of err by matching sentinel values.
// Unrecognized errors are classified as ClassEncoding, the catch-all for
// failures surfaced while producing output.
func ClassOf(err error) Class {
	if err == nil {
		return ClassNone
	}

	switch {
	case errors.Is(err, ErrSyntax),
		errors.Is(err, ErrEmptyToken),
		errors.Is(err, ErrBadSplat),
		errors.Is(err, ErrUnknownType),
		errors.Is(err, ErrBadCollection),
		errors.Is(err, ErrBadAttribute):
		return ClassSyntax

	case errors.Is(err, ErrUnknownPreset),
		errors.Is(err, ErrBadPreset),
		errors.Is(err, ErrBadShape):
		return ClassConfig

	case errors.Is(err, ErrUnbound):
		return ClassUnbound

	case errors.Is(err, ErrMissingFile):
		return ClassResource
	}

	return ClassEncoding
}

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error carrying the same base message.
// Derivatives created by Wrap and With compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}
