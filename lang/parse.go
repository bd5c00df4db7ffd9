package lang

import (
	"log/slog"
	"strings"
)

// ParseToken decodes one argument token into a Descriptor. The ambient type
// applies when the token carries no type segment of its own.
//
// The grammar is greedy and anchored, consumed left to right:
//
//	[...][flags][key][:type[collection][/attrs/]][flags](=literal|@ref)
//
// Reserved bytes inside the key segment are escaped by doubling ("==",
// "@@", "::"), and a leading "=" escapes the byte that follows it.
func ParseToken(token string, ambient Type) (*Descriptor, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	p := parser{src: token}

	d, err := p.parse(ambient)
	if err != nil {
		return nil, WrapError(err).With(slog.String("token", token))
	}

	return d, nil
}

// parser is a single-pass cursor over one token string.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}

	return p.src[p.pos]
}

// peekAt returns the byte at offset n past the cursor, or 0 past the end.
func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}

	return p.src[p.pos+n]
}

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) parse(ambient Type) (*Descriptor, error) {
	d := &Descriptor{
		Token: p.src,
		Type:  ambient,
	}

	err := p.parseSplat(d)
	if err != nil {
		return nil, err
	}

	p.parseFlags(&d.KeyFlags)

	key, term, valueFlags, err := p.parseKey()
	if err != nil {
		return nil, err
	}

	d.Key = key

	if term == ':' {
		term, err = p.parseTypeSegment(d)
		if err != nil {
			return nil, err
		}

		valueFlags = p.flagRun()
	}

	for _, c := range valueFlags {
		d.ValueFlags.add(c)
	}

	switch term {
	case 0:
		switch p.peek() {
		case '=':
			p.pos++
			d.Value = Ref{Kind: Literal, Text: p.rest()}

		case '@':
			p.pos++

			ref, err := p.parseValueRef()
			if err != nil {
				return nil, err
			}

			d.Value = ref

		default:
			if !p.eof() {
				return nil, ErrSyntax.With(
					slog.String("trailing", p.rest()),
				)
			}

			p.adoptKeyAsValue(d, valueFlags)
		}

	case '=':
		d.Value = Ref{Kind: Literal, Text: p.rest()}

	case '@':
		ref, err := p.parseValueRef()
		if err != nil {
			return nil, err
		}

		d.Value = ref
	}

	return d, nil
}

// parseSplat consumes an optional leading "..." splat marker. A leading dot
// run of any other length is a syntax error, except a single dot beginning
// the "./" file-reference marker.
func (p *parser) parseSplat(d *Descriptor) error {
	dots := 0
	for p.peekAt(dots) == '.' {
		dots++
	}

	switch {
	case dots == 0:
		return nil

	case dots == 1 && p.peekAt(1) == '/':
		// "./path" file-reference key
		return nil

	case dots == 3:
		d.Splat = true
		p.pos += 3

		// The key that follows may itself be a "./path" reference,
		// but any other dot run here is malformed.
		n := 0
		for p.peekAt(n) == '.' {
			n++
		}

		if n == 0 || (n == 1 && p.peekAt(1) == '/') {
			return nil
		}
	}

	return ErrBadSplat
}

// parseFlags consumes a run of modifier flag bytes into f.
func (p *parser) parseFlags(f *Flags) {
	for !p.eof() && f.add(p.peek()) {
		p.pos++
	}
}

// flagRun consumes and returns a run of modifier flag bytes.
func (p *parser) flagRun() []byte {
	start := p.pos
	for !p.eof() {
		switch p.peek() {
		case '?', '+', '~':
			p.pos++

			continue
		}

		break
	}

	return []byte(p.src[start:p.pos])
}

// parseKey consumes the key segment: an optional reference marker followed
// by text terminated by an unescaped ':', '=', '@', or end of token. The
// returned term is the consumed terminator byte, or 0 at end of token.
//
// A run of flag bytes immediately preceding a '=' or '@' terminator belongs
// to the value segment and is returned separately.
func (p *parser) parseKey() (ref Ref, term byte, valueFlags []byte, err error) {
	switch {
	case p.peek() == '@':
		ref.Kind = VariableRef
		p.pos++

	case p.peek() == '/',
		p.peek() == '.' && p.peekAt(1) == '/':
		ref.Kind = FileRef
	}

	var (
		text    []byte
		escaped []bool
	)

	// Leading '=' escapes the next byte so keys may start with a byte the
	// grammar otherwise reserves.
	if p.peek() == '=' && p.pos+1 < len(p.src) {
		text = append(text, p.src[p.pos+1])
		escaped = append(escaped, true)
		p.pos += 2
	}

scan:
	for !p.eof() {
		c := p.peek()

		switch c {
		case ':', '=', '@':
			if p.peekAt(1) == c {
				// Doubled reserved byte is one literal occurrence.
				text = append(text, c)
				escaped = append(escaped, true)
				p.pos += 2

				continue
			}

			term = c
			p.pos++

			break scan

		default:
			text = append(text, c)
			escaped = append(escaped, false)
			p.pos++
		}
	}

	// Trailing unescaped flag bytes before a value terminator modify the
	// value segment, not the key text.
	if term == '=' || term == '@' {
		n := len(text)
		for n > 0 && !escaped[n-1] && isFlagByte(text[n-1]) {
			n--
		}

		valueFlags = text[n:]
		text = text[:n]
	}

	ref.Text = string(text)

	return ref, term, valueFlags, nil
}

func isFlagByte(c byte) bool { return c == '?' || c == '+' || c == '~' }

// parseTypeSegment consumes the type name, an optional collection marker,
// and an optional attribute segment. It returns the value terminator if one
// directly follows, or 0 when value flags may still precede it.
func (p *parser) parseTypeSegment(d *Descriptor) (term byte, err error) {
	start := p.pos
	for !p.eof() && isTypeNameByte(p.peek()) {
		p.pos++
	}

	if name := p.src[start:p.pos]; name != "" {
		d.Type, err = ParseType(name)
		if err != nil {
			return 0, err
		}
	}

	err = p.parseCollection(&d.Collection)
	if err != nil {
		return 0, err
	}

	if p.peek() == '/' {
		err = p.parseAttrs(d)
		if err != nil {
			return 0, err
		}
	}

	return 0, nil
}

func isTypeNameByte(c byte) bool { return c >= 'a' && c <= 'z' }

// parseCollection consumes an optional "[...]" or "{...}" marker. The
// interior holds at most a single split byte and, for objects, an embedded
// ":format" naming how pre-structured chunks are interpreted.
func (p *parser) parseCollection(col *Collection) error {
	var opener, closer byte

	switch p.peek() {
	case '[':
		opener, closer = '[', ']'
		col.Kind = Array

	case '{':
		opener, closer = '{', '}'
		col.Kind = Object

	default:
		return nil
	}

	p.pos++

	end := strings.IndexByte(p.rest(), closer)
	if end < 0 {
		return ErrBadCollection.With(
			slog.String("marker", string(opener)+p.rest()),
		)
	}

	interior := p.rest()[:end]
	p.pos += end + 1

	split := interior

	if col.Kind == Object {
		if i := strings.IndexByte(interior, ':'); i >= 0 {
			split = interior[:i]

			format, err := ParseFormat(interior[i+1:])
			if err != nil {
				return err
			}

			col.Format = format
		}
	}

	switch len(split) {
	case 0:
	case 1:
		col.Split = split[0]
		col.HasSplit = true
	default:
		return ErrBadCollection.With(slog.String("split", split))
	}

	return nil
}

// parseAttrs consumes a "/k=v,k2=v2/" attribute segment. Commas and equals
// signs inside keys or values are escaped by doubling. Recognized keys
// override the collection settings out of band; all pairs are retained in
// declaration order.
func (p *parser) parseAttrs(d *Descriptor) error {
	p.pos++ // consume opening '/'

	end := strings.IndexByte(p.rest(), '/')
	if end < 0 {
		return ErrBadAttribute.With(slog.String("segment", "/"+p.rest()))
	}

	interior := p.rest()[:end]
	p.pos += end + 1

	if interior == "" {
		return nil
	}

	var (
		key, val []byte
		inVal    bool
	)

	flush := func() error {
		attr := Attr{Key: string(key), Value: string(val)}
		d.Attrs = append(d.Attrs, attr)
		key, val, inVal = key[:0], val[:0], false

		return d.applyAttr(attr)
	}

	for i := 0; i < len(interior); i++ {
		c := interior[i]

		switch c {
		case ',':
			if i+1 < len(interior) && interior[i+1] == ',' {
				i++

				break
			}

			if err := flush(); err != nil {
				return err
			}

			continue

		case '=':
			if i+1 < len(interior) && interior[i+1] == '=' {
				i++

				break
			}

			if !inVal {
				inVal = true

				continue
			}
		}

		if inVal {
			val = append(val, c)
		} else {
			key = append(key, c)
		}
	}

	if len(key) == 0 && len(val) == 0 && !inVal {
		return nil
	}

	return flush()
}

// applyAttr applies one recognized attribute to the descriptor. Pairs with
// unrecognized keys are retained but have no effect on assembly.
func (d *Descriptor) applyAttr(attr Attr) error {
	switch attr.Key {
	case "split":
		if len(attr.Value) != 1 {
			return ErrBadAttribute.With(slog.String("split", attr.Value))
		}

		d.Collection.Split = attr.Value[0]
		d.Collection.HasSplit = true

	case "collection":
		kind, err := ParseCollectionKind(attr.Value)
		if err != nil {
			return err
		}

		d.Collection.Kind = kind

	case "format":
		format, err := ParseFormat(attr.Value)
		if err != nil {
			return ErrBadAttribute.Wrap(err)
		}

		d.Collection.Format = format

	case "type":
		typ, err := ParseType(attr.Value)
		if err != nil {
			return err
		}

		d.Type = typ
	}

	return nil
}

// parseValueRef consumes the remainder of the token after a '@' value
// marker as a variable or file reference.
func (p *parser) parseValueRef() (Ref, error) {
	rest := p.rest()
	p.pos = len(p.src)

	if rest == "" {
		return Ref{}, ErrSyntax.With(slog.String("reference", "@"))
	}

	if rest[0] == '/' || strings.HasPrefix(rest, "./") || rest == "-" {
		return Ref{Kind: FileRef, Text: rest}, nil
	}

	return Ref{Kind: VariableRef, Text: rest}, nil
}

// adoptKeyAsValue implements the value-absent rule: the key text doubles as
// the value. A reference key moves to the value position and the reference
// name or path remains as the literal key. The single-literal types supply
// their own value, so "active:true" needs no value segment.
func (p *parser) adoptKeyAsValue(d *Descriptor, valueFlags []byte) {
	switch d.Type {
	case TypeTrue, TypeFalse, TypeNull:
		d.Value = Ref{Kind: Literal, Text: d.Type.String()}

		return
	}

	d.Value = d.Key

	if d.Key.Kind != Literal {
		d.Key = Ref{Kind: Literal, Text: d.Key.Text}
	}

	if len(valueFlags) == 0 {
		d.ValueFlags = d.KeyFlags
	}
}
