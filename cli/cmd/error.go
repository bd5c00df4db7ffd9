package cmd

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/pkg"
)

// Error represents a CLI command error with structured logging support.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error carrying the same base message.
// Derivatives created by Wrap and With compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

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

var (
	ErrWriteConfig = NewError("write configuration file")
	ErrOpenOutput  = NewError("open output file")
)

// Exit codes reported to the shell, partitioned by failure category so
// scripts can branch without parsing log output.
const (
	ExitOK       = 0
	ExitEncoding = 1 // invalid value or malformed token
	ExitConfig   = 2 // invalid configuration or usage
	ExitUnbound  = 3 // strict reference to an unset variable
	ExitResource = 4 // missing or unreadable file
)

// ExitCode maps an error to its shell exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, pkg.ErrReadConfig) ||
		errors.Is(err, pkg.ErrFileExists) ||
		errors.Is(err, ErrWriteConfig) {
		return ExitConfig
	}

	switch lang.ClassOf(err) {
	case lang.ClassConfig:
		return ExitConfig

	case lang.ClassUnbound:
		return ExitUnbound

	case lang.ClassResource:
		return ExitResource

	default:
		return ExitEncoding
	}
}
