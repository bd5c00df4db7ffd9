package lang

import (
	"log/slog"
)

// Valid reports whether data is exactly one well-formed JSON value with no
// leading or trailing non-whitespace content.
func Valid(data []byte) bool { return Check(data) == nil }

// Check validates that data is exactly one well-formed JSON value. The scan
// is a single left-to-right pass over the bytes with an explicit container
// stack, so memory stays bounded and arbitrarily nested input cannot
// exhaust the call stack.
func Check(data []byte) error {
	s := scanner{data: data}

	s.skipSpace()

	err := s.scanValue()
	if err != nil {
		return err
	}

	s.skipSpace()

	if !s.eof() {
		return ErrInvalidJSON.With(
			slog.String("trailing", string(s.data[s.pos:])),
		)
	}

	return nil
}

// CheckType validates that data is one well-formed JSON value of the given
// sub-type. TypeJSON, TypeRaw, and TypeAuto accept any valid value.
func CheckType(data []byte, typ Type) error {
	s := scanner{data: data}

	s.skipSpace()
	start := s.pos

	err := s.scanValue()
	if err != nil {
		return err
	}

	token := s.data[start:s.pos]

	s.skipSpace()

	if !s.eof() {
		return ErrInvalidJSON.With(
			slog.String("trailing", string(s.data[s.pos:])),
		)
	}

	return checkTypeToken(token, typ)
}

// checkTypeToken matches one already-validated value against a sub-type.
func checkTypeToken(token []byte, typ Type) error {
	ok := true

	switch typ {
	case TypeJSON, TypeRaw, TypeAuto:
	case TypeString:
		ok = len(token) > 0 && token[0] == '"'
	case TypeNumber:
		ok = validNumber(string(token))
	case TypeBool:
		ok = string(token) == "true" || string(token) == "false"
	case TypeTrue:
		ok = string(token) == "true"
	case TypeFalse:
		ok = string(token) == "false"
	case TypeNull:
		ok = string(token) == "null"
	}

	if !ok {
		return ErrInvalidJSON.With(
			slog.String("value", string(token)),
			slog.String("want", typ.String()),
		)
	}

	return nil
}

// CheckCollection validates that data is a well-formed JSON array or object
// whose every element (or member value) individually satisfies the given
// sub-type. One level of contents is type-checked; nested containers are
// validated structurally only.
func CheckCollection(data []byte, kind CollectionKind, typ Type) error {
	if kind == Scalar {
		return CheckType(data, typ)
	}

	err := Check(data)
	if err != nil {
		return err
	}

	s := scanner{data: data}
	s.skipSpace()

	opener, closer := byte('['), byte(']')
	if kind == Object {
		opener, closer = '{', '}'
	}

	if s.eof() || s.data[s.pos] != opener {
		return ErrInvalidJSON.With(
			slog.String("value", string(data)),
			slog.String("want", kind.String()),
		)
	}

	s.pos++
	s.skipSpace()

	if !s.eof() && s.data[s.pos] == closer {
		return nil
	}

	for {
		if kind == Object {
			// Member key and separator precede each value.
			if err := s.scanString(); err != nil {
				return err
			}

			s.skipSpace()
			s.pos++ // ':' guaranteed by Check above
			s.skipSpace()
		}

		start := s.pos

		if err := s.scanValue(); err != nil {
			return err
		}

		if err := checkTypeToken(s.data[start:s.pos], typ); err != nil {
			return err
		}

		s.skipSpace()

		if s.eof() || s.data[s.pos] == closer {
			return nil
		}

		s.pos++ // ','
		s.skipSpace()
	}
}

// scanner is the cursor state for one validation pass.
type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) eof() bool { return s.pos >= len(s.data) }

// skipSpace advances past insignificant whitespace.
func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.data[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		default:
			return
		}
	}
}

// frame is one open container on the scan stack.
type frame struct {
	closer byte // ']' or '}'
}

// scanValue consumes exactly one JSON value starting at the cursor. It is
// iterative: containers push a frame instead of recursing.
func (s *scanner) scanValue() error {
	var stack []frame

	expectValue := true

	for {
		if expectValue {
			err := s.scanOne(&stack)
			if err != nil {
				return err
			}

			expectValue = false
		}

		if len(stack) == 0 {
			return nil
		}

		// After a complete value inside a container: expect a comma
		// continuing the container, or its closing bracket.
		s.skipSpace()

		if s.eof() {
			return s.fail("',' or closing bracket")
		}

		top := stack[len(stack)-1]

		switch s.data[s.pos] {
		case ',':
			s.pos++
			s.skipSpace()

			if top.closer == '}' {
				err := s.scanMemberKey()
				if err != nil {
					return err
				}
			}

			expectValue = true

		case top.closer:
			s.pos++

			stack = stack[:len(stack)-1]
			expectValue = false

		default:
			return s.fail("',' or closing bracket")
		}
	}
}

// scanOne consumes one value start: a full scalar, or a container opener
// (pushing a frame and, for non-empty containers, leaving the cursor at the
// first element).
func (s *scanner) scanOne(stack *[]frame) error {
	for {
		s.skipSpace()

		if s.eof() {
			return s.fail("value")
		}

		switch c := s.data[s.pos]; c {
		case '{':
			s.pos++
			s.skipSpace()

			if !s.eof() && s.data[s.pos] == '}' {
				s.pos++

				return nil
			}

			*stack = append(*stack, frame{closer: '}'})

			err := s.scanMemberKey()
			if err != nil {
				return err
			}

			continue

		case '[':
			s.pos++
			s.skipSpace()

			if !s.eof() && s.data[s.pos] == ']' {
				s.pos++

				return nil
			}

			*stack = append(*stack, frame{closer: ']'})

			continue

		case '"':
			return s.scanString()

		case 't':
			return s.scanLiteral("true")

		case 'f':
			return s.scanLiteral("false")

		case 'n':
			return s.scanLiteral("null")

		default:
			return s.scanNumber()
		}
	}
}

// scanMemberKey consumes a quoted object key and its ':' separator.
func (s *scanner) scanMemberKey() error {
	s.skipSpace()

	if s.eof() || s.data[s.pos] != '"' {
		return s.fail("object key")
	}

	err := s.scanString()
	if err != nil {
		return err
	}

	s.skipSpace()

	if s.eof() || s.data[s.pos] != ':' {
		return s.fail("':'")
	}

	s.pos++

	return nil
}

// scanString consumes one quoted string, validating escape sequences and
// rejecting unescaped control bytes.
func (s *scanner) scanString() error {
	s.pos++ // opening quote

	for !s.eof() {
		c := s.data[s.pos]

		switch {
		case c == '"':
			s.pos++

			return nil

		case c == '\\':
			s.pos++

			if s.eof() {
				return s.fail("escape sequence")
			}

			switch s.data[s.pos] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.pos++

			case 'u':
				s.pos++
				for range 4 {
					if s.eof() || !isHexDigit(s.data[s.pos]) {
						return s.fail("hex digit")
					}

					s.pos++
				}

			default:
				return s.fail("escape sequence")
			}

		case c < 0x20:
			return s.fail("escaped control byte")

		default:
			s.pos++
		}
	}

	return s.fail("closing quote")
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'f') ||
		(c >= 'A' && c <= 'F')
}

// scanLiteral consumes one bare keyword literal.
func (s *scanner) scanLiteral(lit string) error {
	if s.pos+len(lit) > len(s.data) ||
		string(s.data[s.pos:s.pos+len(lit)]) != lit {
		return s.fail(lit)
	}

	s.pos += len(lit)

	return nil
}

// scanNumber consumes the maximal numeric token at the cursor and validates
// it against the number grammar.
func (s *scanner) scanNumber() error {
	start := s.pos

	for !s.eof() {
		switch c := s.data[s.pos]; {
		case isDigit(c), c == '-', c == '+', c == '.', c == 'e', c == 'E':
			s.pos++
		default:
			goto done
		}
	}

done:
	if !validNumber(string(s.data[start:s.pos])) {
		return s.fail("number")
	}

	return nil
}

func (s *scanner) fail(want string) error {
	return ErrInvalidJSON.With(
		slog.Int("offset", s.pos),
		slog.String("want", want),
	)
}
