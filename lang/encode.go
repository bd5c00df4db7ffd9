package lang

import (
	"log/slog"
	"strings"
)

// hexDigits is the alphabet for \u00XX control escapes.
const hexDigits = "0123456789abcdef"

// AppendQuote appends s to dst as a JSON string literal. Backslash, double
// quote, and every control byte below 0x20 are escaped; all other bytes,
// including multi-byte UTF-8 sequences, pass through unchanged.
func AppendQuote(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = appendEscaped(dst, s)

	return append(dst, '"')
}

// appendEscaped appends the escaped content of s without the surrounding
// quotes. Splitting a value across calls is safe: escaping is byte-local,
// so chunked sources may be escaped piecewise.
func appendEscaped(dst []byte, s string) []byte {
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}

		dst = append(dst, s[start:i]...)

		switch c {
		case '"', '\\':
			dst = append(dst, '\\', c)
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\r':
			dst = append(dst, '\\', 'r')
		default:
			dst = append(dst, '\\', 'u', '0', '0',
				hexDigits[c>>4], hexDigits[c&0xf])
		}

		start = i + 1
	}

	return append(dst, s[start:]...)
}

// Quote returns s encoded as a JSON string literal.
func Quote(s string) string {
	return string(AppendQuote(make([]byte, 0, len(s)+2), s))
}

// validNumber reports whether s matches the JSON number grammar:
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
//
// Valid inputs pass through encoding unmodified, so no renormalization of
// exponents or leading zeros happens beyond this check.
func validNumber(s string) bool {
	i := 0

	if i < len(s) && s[i] == '-' {
		i++
	}

	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}

	if i < len(s) && s[i] == '.' {
		i++
		if i >= len(s) || !isDigit(s[i]) {
			return false
		}

		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}

		if i >= len(s) || !isDigit(s[i]) {
			return false
		}

		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// classify reports the auto-type classification of one value: true when it
// is a bare literal (boolean, null, or number) passed through unquoted.
func classify(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}

	return validNumber(s)
}

// EncodeValues encodes a batch of raw values as JSON fragments of the given
// type, one fragment per input. Batches are processed in a single pass with
// no intermediate parse tree; output is identical whether the batch holds
// one value or many.
//
// Validation failures are collected across the whole batch and reported
// together, naming every rejected value.
func EncodeValues(typ Type, values []string) ([]string, error) {
	out := make([]string, len(values))

	var bad []string

	for i, v := range values {
		switch typ {
		case TypeString:
			out[i] = Quote(v)

		case TypeNumber:
			if !validNumber(v) {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeBool:
			if v != "true" && v != "false" {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeTrue:
			if v != "true" {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeFalse:
			if v != "false" {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeNull:
			if v != "null" {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeRaw:
			if v == "" {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeJSON:
			if err := Check([]byte(v)); err != nil {
				bad = append(bad, v)

				continue
			}

			out[i] = v

		case TypeAuto:
			if classify(v) {
				out[i] = v
			} else {
				out[i] = Quote(v)
			}
		}
	}

	if len(bad) > 0 {
		return nil, encodeError(typ).With(
			slog.String("values", strings.Join(bad, ", ")),
		)
	}

	return out, nil
}

// encodeError returns the sentinel error matching a type's validity
// grammar.
func encodeError(typ Type) *Error {
	switch typ {
	case TypeNumber:
		return ErrInvalidNumber
	case TypeBool, TypeTrue, TypeFalse:
		return ErrInvalidBoolean
	case TypeNull:
		return ErrInvalidNull
	case TypeRaw:
		return ErrEmptyRaw
	case TypeJSON:
		return ErrInvalidJSON
	}

	return ErrInvalidJSON
}

// EmptyValue returns the type's empty JSON fragment, substituted for absent
// references carrying a doubled '?' flag.
func EmptyValue(typ Type) string {
	if typ == TypeString {
		return `""`
	}

	return "null"
}
