package lang

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/jarg/log"
)

// Cancel is the reserved control byte appended as the terminal byte of a
// streamed output after a failure that could not be retracted. Consumers
// reading the stream incrementally must discard everything read when the
// stream ends with it.
const Cancel byte = 0x18

// cancelGlyph is the visible marker printed after the Cancel byte on
// interactive terminal destinations.
const cancelGlyph = "␘"

//nolint:gochecknoglobals
var cancelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("1")).
	Bold(true)

// Default chunking bounds for streamed emission.
const (
	DefaultChunkSize  = 8192 // bytes per streamed read of a large source
	DefaultChunkCount = 16   // entries per emitted batch
)

// Config is the ambient configuration of one encode call.
type Config struct {
	// Shape is the top-level collection: Object or Array.
	Shape CollectionKind

	// Type applies to tokens without a type segment of their own.
	Type Type

	// Preset names a registered defaults preset merged into this
	// configuration before processing begins.
	Preset string

	// Strict treats unflagged references to unset variables as fatal.
	Strict bool

	// Join merges multi-valued scalar entries with this separator before
	// encoding. Without it, a multi-valued scalar is an error.
	Join string

	// ChunkSize bounds each streamed read of a large string/raw source.
	ChunkSize int

	// ChunkCount bounds the number of entries grouped into one emitted
	// batch in streaming mode.
	ChunkCount int

	// Marker prints a visible glyph after the Cancel byte; set it when
	// the stream destination is an interactive terminal.
	Marker bool

	// Stdin satisfies file references naming "-" or "/dev/stdin".
	Stdin io.Reader
}

// withDefaults fills unset chunking bounds and merges the named preset.
func (cfg Config) withDefaults() (Config, Preset, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	if cfg.ChunkCount <= 0 {
		cfg.ChunkCount = DefaultChunkCount
	}

	if cfg.Shape == Scalar {
		cfg.Shape = Object
	}

	if cfg.Preset == "" {
		return cfg, Preset{}, nil
	}

	preset, err := ResolvePreset(cfg.Preset)
	if err != nil {
		return cfg, preset, err
	}

	if preset.HasType {
		cfg.Type = preset.Type
	}

	if preset.HasKind {
		if preset.Collection.Kind == Scalar {
			return cfg, preset, ErrBadShape.With(
				slog.String("preset", cfg.Preset),
			)
		}

		cfg.Shape = preset.Collection.Kind
	}

	return cfg, preset, nil
}

// Encode assembles the argument tokens into one buffered JSON text,
// terminated by a single trailing newline. Nothing is returned on failure:
// buffered output is all-or-nothing.
func Encode(ctx context.Context, cfg Config, env Source, tokens []string) ([]byte, error) {
	a, err := newAssembler(cfg, env, nil, nil)
	if err != nil {
		return nil, err
	}

	err = a.run(ctx, tokens)
	if err != nil {
		return nil, err
	}

	return a.buf.Bytes(), nil
}

// EncodeTo assembles the argument tokens into w incrementally. Entries are
// emitted as soon as they are ready, grouped into batches of at most
// ChunkCount entries; onChunk, when non-nil, observes every emitted batch.
//
// Output that already left the sink cannot be retracted: a failure after
// partial emission appends the Cancel byte as the terminal byte of the
// stream and the real error is returned on the error channel.
func EncodeTo(
	ctx context.Context,
	cfg Config,
	env Source,
	w io.Writer,
	onChunk func([]byte),
	tokens []string,
) error {
	a, err := newAssembler(cfg, env, w, onChunk)
	if err != nil {
		return err
	}

	err = a.run(ctx, tokens)
	if err != nil {
		a.poison()

		return err
	}

	return nil
}

// assembler drives the resolver and encoders over all tokens and joins the
// results into object or array syntax. One assembler is confined to one
// encode call on one goroutine.
type assembler struct {
	cfg    Config
	preset Preset
	res    Resolver

	out     io.Writer // nil in buffered mode
	onChunk func([]byte)

	buf     bytes.Buffer // pending (buffered mode: entire) output
	batch   int          // entries in the pending batch
	sep     bool         // separator required before the next entry
	emitted bool         // bytes already flushed to out
}

func newAssembler(cfg Config, env Source, w io.Writer, onChunk func([]byte)) (*assembler, error) {
	cfg, preset, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	return &assembler{
		cfg:    cfg,
		preset: preset,
		res: Resolver{
			Env:    env,
			Stdin:  cfg.Stdin,
			Strict: cfg.Strict,
		},
		out:     w,
		onChunk: onChunk,
	}, nil
}

// run parses every token before anything is resolved or emitted, so syntax
// errors never produce partial output, then assembles entries in
// declaration order.
func (a *assembler) run(ctx context.Context, tokens []string) error {
	descriptors := make([]*Descriptor, len(tokens))

	for i, token := range tokens {
		d, err := parseCached(token, a.cfg.Type)
		if err != nil {
			return err
		}

		a.applyPreset(d)
		descriptors[i] = d
	}

	log.DebugContext(ctx, "encode",
		slog.Int("tokens", len(tokens)),
		slog.String("shape", a.cfg.Shape.String()),
	)

	opener, closer := byte('{'), byte('}')
	if a.cfg.Shape == Array {
		opener, closer = '[', ']'
	}

	a.buf.WriteByte(opener)

	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return WrapError(err)
		}

		err := a.appendEntry(d)
		if err != nil {
			return err
		}
	}

	a.buf.WriteByte(closer)
	a.buf.WriteByte('\n')

	return a.flush()
}

// applyPreset fills collection settings the token left unset.
func (a *assembler) applyPreset(d *Descriptor) {
	if !d.Collection.HasSplit && a.preset.Collection.HasSplit {
		d.Collection.Split = a.preset.Collection.Split
		d.Collection.HasSplit = true
	}

	if d.Collection.Format == FormatNone {
		d.Collection.Format = a.preset.Collection.Format
	}
}

// appendEntry resolves, encodes, and writes the entries contributed by one
// descriptor.
func (a *assembler) appendEntry(d *Descriptor) error {
	if a.streamable(d) {
		return a.streamEntry(d)
	}

	value, err := a.res.Resolve(d.Value, d.ValueFlags, d)
	if err != nil {
		return err
	}

	if value.omit {
		return nil
	}

	if d.Splat {
		return a.appendSplat(d, value)
	}

	// An array-collection token inside an array-shape call contributes
	// its elements directly rather than one nested array.
	if a.cfg.Shape == Array && d.Collection.Kind == Array && !value.subst {
		encoded, err := a.encode(d, value.values)
		if err != nil {
			return err
		}

		for _, fragment := range encoded {
			err := a.writeEntry("", fragment)
			if err != nil {
				return err
			}
		}

		return nil
	}

	fragment, err := a.fragment(d, value)
	if err != nil {
		return err
	}

	if a.cfg.Shape == Array {
		return a.writeEntry("", fragment)
	}

	key, omit, err := a.resolveKey(d)
	if err != nil || omit {
		return err
	}

	return a.writeEntry(Quote(key), fragment)
}

// resolveKey resolves the key segment to the entry's member name.
func (a *assembler) resolveKey(d *Descriptor) (key string, omit bool, err error) {
	res, err := a.res.Resolve(d.Key, d.KeyFlags, d)
	if err != nil {
		return "", false, err
	}

	if res.omit {
		return "", true, nil
	}

	if len(res.values) > 0 {
		key = res.values[0]
	}

	return key, false, nil
}

// fragment builds the single JSON fragment contributed by a non-splat
// descriptor: a scalar literal, an array, or a merged object.
func (a *assembler) fragment(d *Descriptor, value resolution) (string, error) {
	if value.subst {
		switch d.Collection.Kind {
		case Array:
			return "[]", nil
		case Object:
			return "{}", nil
		default:
			return EmptyValue(d.Type), nil
		}
	}

	switch d.Collection.Kind {
	case Array:
		encoded, err := a.encode(d, value.values)
		if err != nil {
			return "", err
		}

		return "[" + strings.Join(encoded, ",") + "]", nil

	case Object:
		pairs, err := a.objectPairs(d, value.values)
		if err != nil {
			return "", err
		}

		return "{" + strings.Join(pairs, ",") + "}", nil
	}

	values := value.values

	if len(values) > 1 {
		if a.cfg.Join == "" {
			return "", ErrScalarValues.With(
				slog.String("token", d.Token),
				slog.String("values", strings.Join(values, ", ")),
			)
		}

		values = []string{strings.Join(values, a.cfg.Join)}
	}

	if len(values) == 0 {
		values = []string{""}
	}

	encoded, err := a.encode(d, values)
	if err != nil {
		return "", err
	}

	return encoded[0], nil
}

// encode runs the type encoder and attributes failures to the token.
func (a *assembler) encode(d *Descriptor, values []string) ([]string, error) {
	encoded, err := EncodeValues(d.Type, values)
	if err != nil {
		return nil, WrapError(err).With(slog.String("token", d.Token))
	}

	return encoded, nil
}

// objectPairs builds the member list of an object-collection value from
// its pre-structured chunks.
func (a *assembler) objectPairs(d *Descriptor, chunks []string) ([]string, error) {
	if d.Collection.Format == FormatAttrs {
		pairs := make([]string, 0, len(chunks))

		for _, chunk := range chunks {
			name, value, _ := strings.Cut(chunk, "=")

			encoded, err := a.encode(d, []string{value})
			if err != nil {
				return nil, err
			}

			pairs = append(pairs, Quote(name)+":"+encoded[0])
		}

		return pairs, nil
	}

	// Default format: each chunk is a complete JSON object whose members
	// merge in chunk order. Empty objects contribute no members and no
	// spurious separators.
	pairs := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}

		members, err := objectMembers(chunk, d.Token)
		if err != nil {
			return nil, err
		}

		if members != "" {
			pairs = append(pairs, members)
		}
	}

	return pairs, nil
}

// objectMembers validates one JSON object fragment and returns its interior
// member list, or the empty string for an empty object.
func objectMembers(fragment, token string) (string, error) {
	err := CheckCollection([]byte(fragment), Object, TypeJSON)
	if err != nil {
		return "", WrapError(err).With(slog.String("token", token))
	}

	interior := strings.TrimSpace(fragment)
	interior = strings.TrimSpace(interior[1 : len(interior)-1])

	return interior, nil
}

// arrayElements validates one JSON array fragment and returns its interior
// element list, or the empty string for an empty array.
func arrayElements(fragment, token string) (string, error) {
	err := CheckCollection([]byte(fragment), Array, TypeJSON)
	if err != nil {
		return "", WrapError(err).With(slog.String("token", token))
	}

	interior := strings.TrimSpace(fragment)
	interior = strings.TrimSpace(interior[1 : len(interior)-1])

	return interior, nil
}

// appendSplat expands a container value into multiple entries of the
// enclosing collection instead of one.
func (a *assembler) appendSplat(d *Descriptor, value resolution) error {
	if value.subst {
		return nil
	}

	if a.cfg.Shape == Object {
		pairs, err := a.objectPairs(d, value.values)
		if err != nil {
			return err
		}

		for _, pair := range pairs {
			err := a.writeRaw(pair)
			if err != nil {
				return err
			}
		}

		return nil
	}

	// Array parent: each resolved value becomes one element, except a
	// json-typed array value is spliced in place.
	for _, v := range value.values {
		if d.Type == TypeJSON && strings.TrimSpace(v) == "" {
			continue
		}

		if d.Type == TypeJSON && strings.HasPrefix(strings.TrimSpace(v), "[") {
			elements, err := arrayElements(v, d.Token)
			if err != nil {
				return err
			}

			if elements == "" {
				continue
			}

			err = a.writeRaw(elements)
			if err != nil {
				return err
			}

			continue
		}

		encoded, err := a.encode(d, []string{v})
		if err != nil {
			return err
		}

		err = a.writeEntry("", encoded[0])
		if err != nil {
			return err
		}
	}

	return nil
}

// writeEntry writes one complete entry with its separator and, in object
// shape, its quoted key.
func (a *assembler) writeEntry(key, fragment string) error {
	if a.sep {
		a.buf.WriteByte(',')
	}

	a.sep = true

	if key != "" {
		a.buf.WriteString(key)
		a.buf.WriteByte(':')
	}

	a.buf.WriteString(fragment)
	a.batch++

	return a.flushBatch()
}

// writeRaw writes pre-encoded member or element content as one entry.
func (a *assembler) writeRaw(content string) error {
	if a.sep {
		a.buf.WriteByte(',')
	}

	a.sep = true
	a.buf.WriteString(content)
	a.batch++

	return a.flushBatch()
}

// streamable reports whether the descriptor's value is a large scalar
// source read and emitted in bounded chunks.
func (a *assembler) streamable(d *Descriptor) bool {
	return a.out != nil &&
		!d.Splat &&
		d.Collection.Kind == Scalar &&
		(d.Type == TypeString || d.Type == TypeRaw) &&
		d.Value.Kind == FileRef
}

// streamEntry emits one string or raw entry read from a file in chunks of
// at most ChunkSize bytes, so a source of any size occupies bounded
// memory. String content is escaped piecewise between the surrounding
// quotes as soon as each chunk arrives.
func (a *assembler) streamEntry(d *Descriptor) error {
	src, err := a.res.Open(d.Value.Text)
	if err != nil {
		return ErrMissingFile.Wrap(err).With(
			slog.String("path", d.Value.Text),
			slog.String("token", d.Token),
		)
	}
	defer src.Close()

	if a.cfg.Shape == Object {
		key, omit, err := a.resolveKey(d)
		if err != nil {
			return err
		}

		if omit {
			return nil
		}

		if a.sep {
			a.buf.WriteByte(',')
		}

		a.sep = true
		a.buf.Write(AppendQuote(nil, key))
		a.buf.WriteByte(':')
	} else {
		if a.sep {
			a.buf.WriteByte(',')
		}

		a.sep = true
	}

	quoted := d.Type == TypeString
	if quoted {
		a.buf.WriteByte('"')
	}

	chunk := make([]byte, a.cfg.ChunkSize)
	total := 0

	for {
		n, err := src.Read(chunk)
		if n > 0 {
			total += n

			if quoted {
				a.buf.Write(appendEscaped(nil, string(chunk[:n])))
			} else {
				a.buf.Write(chunk[:n])
			}

			ferr := a.flush()
			if ferr != nil {
				return ferr
			}
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return ErrMissingFile.Wrap(err).With(
				slog.String("path", d.Value.Text),
				slog.String("token", d.Token),
			)
		}
	}

	if quoted {
		a.buf.WriteByte('"')
	} else if total == 0 {
		return ErrEmptyRaw.With(slog.String("token", d.Token))
	}

	a.batch++

	return a.flushBatch()
}

// flushBatch emits the pending batch once it reaches the configured entry
// count. Buffered mode never emits early.
func (a *assembler) flushBatch() error {
	if a.out == nil || a.batch < a.cfg.ChunkCount {
		return nil
	}

	return a.flush()
}

// flush hands the pending bytes to the output sink and invokes the chunk
// callback. In buffered mode out is nil and the buffer is the result, so
// flushing never emits.
func (a *assembler) flush() error {
	if a.out == nil {
		return nil
	}

	if a.buf.Len() == 0 {
		return nil
	}

	chunk := make([]byte, a.buf.Len())
	copy(chunk, a.buf.Bytes())
	a.buf.Reset()
	a.batch = 0

	_, err := a.out.Write(chunk)
	if err != nil {
		return WrapError(err)
	}

	a.emitted = true

	if a.onChunk != nil {
		a.onChunk(chunk)
	}

	return nil
}

// poison marks a partially emitted stream as invalid with the terminal
// Cancel byte. The real error travels on the error channel; the in-band
// byte only tells incremental consumers to discard what they read.
func (a *assembler) poison() {
	if !a.emitted {
		return
	}

	_, _ = a.out.Write([]byte{Cancel})

	if a.cfg.Marker {
		_, _ = io.WriteString(a.out, cancelStyle.Render(cancelGlyph))
	}
}
