package lang

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/readahead"
)

// Source is an environment snapshot consulted by variable references.
// Lookup returns the values bound to name in container order: a scalar
// variable yields one value, a container variable yields one per element.
type Source interface {
	Lookup(name string) ([]string, bool)
}

// OSSource resolves variable references against the process environment.
// Process variables are always single-valued.
type OSSource struct{}

// Lookup implements Source over os.LookupEnv.
func (OSSource) Lookup(name string) ([]string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil, false
	}

	return []string{v}, true
}

// MapSource is an in-memory Source supporting multi-valued variables. It is
// the snapshot form used by API callers and tests.
type MapSource map[string][]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) ([]string, bool) {
	v, ok := m[name]

	return v, ok
}

// fileSuffix names the companion-variable fallback: a reference to an unset
// variable "name" reads the file at the path held by "name_FILE" instead.
// Secrets mounted as files are injected this way.
const fileSuffix = "_FILE"

// Resolver turns key and value reference descriptors into raw byte strings.
type Resolver struct {
	// Env is the environment snapshot for variable references.
	Env Source

	// Stdin satisfies file references naming "-" or "/dev/stdin".
	Stdin io.Reader

	// Strict causes unflagged references to unset variables to fail
	// instead of resolving to the empty string.
	Strict bool
}

// resolution is the outcome of resolving one reference.
type resolution struct {
	values []string

	// omit drops the entry entirely ('~' flag on an absent reference).
	omit bool

	// subst replaces empty values with the type's empty JSON fragment
	// (doubled '?' flag).
	subst bool
}

// Resolve returns the raw values of ref, applying the modifier flags and
// the descriptor's collection split to file and variable content.
func (r *Resolver) Resolve(ref Ref, flags Flags, d *Descriptor) (resolution, error) {
	switch ref.Kind {
	case Literal:
		return resolution{values: []string{ref.Text}}, nil

	case VariableRef:
		return r.resolveVariable(ref, flags, d)

	case FileRef:
		return r.resolveFile(ref.Text, flags, d)
	}

	return resolution{}, ErrSyntax.With(slog.String("token", d.Token))
}

func (r *Resolver) resolveVariable(ref Ref, flags Flags, d *Descriptor) (resolution, error) {
	values, ok := r.Env.Lookup(ref.Text)
	if ok {
		// A single-valued variable feeding a collection splits on the
		// split byte; a container variable already has its elements.
		if d.Collection.Kind != Scalar && len(values) == 1 {
			values = splitContent(values[0], d.Collection.SplitByte())
		}

		return r.found(values, flags, d), nil
	}

	// Companion-variable indirection for file-mounted secrets.
	if path, ok := r.Env.Lookup(ref.Text + fileSuffix); ok && len(path) > 0 {
		return r.resolveFile(path[0], flags, d)
	}

	return r.absent(ref, flags, d)
}

// found applies the set-but-present flag policy and trimming to resolved
// values.
func (r *Resolver) found(values []string, flags Flags, d *Descriptor) resolution {
	values = trimValues(values, d.Type)

	if allEmpty(values) {
		if flags.Omit > 0 {
			return resolution{omit: true}
		}

		if flags.Empty >= maxEmptyFlags {
			return resolution{values: values, subst: true}
		}
	}

	return resolution{values: values}
}

// absent applies the unset-reference flag policy: strict references fail,
// omit flags drop the entry, and everything else resolves to one empty
// string (substituted per the doubled '?' flag).
func (r *Resolver) absent(ref Ref, flags Flags, d *Descriptor) (resolution, error) {
	switch {
	case flags.Strict > 0:
		return resolution{}, ErrUnbound.With(
			slog.String("variable", ref.Text),
			slog.String("token", d.Token),
		)

	case flags.Omit > 0:
		return resolution{omit: true}, nil

	case flags.Empty >= maxEmptyFlags:
		return resolution{values: []string{""}, subst: true}, nil

	case flags.Empty > 0:
		return resolution{values: []string{""}}, nil

	case r.Strict:
		return resolution{}, ErrUnbound.With(
			slog.String("variable", ref.Text),
			slog.String("token", d.Token),
		)
	}

	return resolution{values: []string{""}}, nil
}

func (r *Resolver) resolveFile(path string, flags Flags, d *Descriptor) (resolution, error) {
	data, err := r.readFile(path)
	if err != nil {
		// A missing file is always fatal, never downgraded by flags.
		return resolution{}, ErrMissingFile.Wrap(err).With(
			slog.String("path", path),
			slog.String("token", d.Token),
		)
	}

	content := string(data)

	if d.Collection.Kind != Scalar {
		return r.found(splitContent(content, d.Collection.SplitByte()), flags, d), nil
	}

	return r.found([]string{content}, flags, d), nil
}

// Open returns a reader over the file reference at path, wrapped with
// asynchronous read-ahead so consumption overlaps with I/O. The caller owns
// closing it.
func (r *Resolver) Open(path string) (io.ReadCloser, error) {
	if isStdin(path) {
		if r.Stdin == nil {
			return nil, os.ErrNotExist
		}

		return readahead.NewReader(r.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return readahead.NewReadCloser(file), nil
}

// readFile reads the full content of the file reference at path.
func (r *Resolver) readFile(path string) ([]byte, error) {
	src, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func isStdin(path string) bool {
	return path == "-" || path == "/dev/stdin"
}

// splitContent splits collection content on the split byte, discarding one
// trailing separator so a final newline contributes no empty element.
func splitContent(content string, split byte) []string {
	content = strings.TrimSuffix(content, string(split))
	if content == "" {
		return nil
	}

	return strings.Split(content, string(split))
}

// trimValues trims trailing ASCII whitespace from each resolved value for
// every type except string and raw, which are exact. The convention lets
// other types tolerate incidental trailing formatting from files and
// substitutions.
func trimValues(values []string, typ Type) []string {
	if typ == TypeString || typ == TypeRaw {
		return values
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimRight(v, " \t\r\n")
	}

	return out
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}

	return len(values) <= 1
}
