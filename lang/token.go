package lang

import (
	"log/slog"
	"slices"

	"github.com/sahilm/fuzzy"
)

// Type identifies the JSON encoding applied to a resolved value.
type Type int

const (
	// TypeString encodes values as JSON strings with full escaping.
	TypeString Type = iota

	// TypeNumber validates values against the JSON number grammar and
	// passes them through unmodified.
	TypeNumber

	// TypeBool requires each value to be exactly "true" or "false".
	TypeBool

	// TypeTrue requires each value to be exactly "true".
	TypeTrue

	// TypeFalse requires each value to be exactly "false".
	TypeFalse

	// TypeNull requires each value to be exactly "null".
	TypeNull

	// TypeRaw passes values through unchecked, except empty values are
	// rejected.
	TypeRaw

	// TypeJSON passes values through after structural validation.
	TypeJSON

	// TypeAuto classifies each value as true, false, null, or number and
	// passes it through unquoted; anything else is encoded as a string.
	TypeAuto
)

// typeNames maps type names to their Type values. The name set is closed:
// tokens naming any other type are syntax errors.
var typeNames = map[string]Type{
	"auto":   TypeAuto,
	"bool":   TypeBool,
	"false":  TypeFalse,
	"json":   TypeJSON,
	"null":   TypeNull,
	"number": TypeNumber,
	"raw":    TypeRaw,
	"string": TypeString,
	"true":   TypeTrue,
}

// String returns the grammar name of the type.
func (t Type) String() string {
	for name, typ := range typeNames {
		if typ == t {
			return name
		}
	}

	return "string"
}

// TypeNames returns the sorted list of recognized type names.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ParseType resolves a type name from the grammar to its Type value.
// Unknown names fail with a suggestion for the closest recognized name.
func ParseType(name string) (Type, error) {
	if t, ok := typeNames[name]; ok {
		return t, nil
	}

	err := ErrUnknownType.With(slog.String("type", name))

	if match := fuzzy.Find(name, TypeNames()); len(match) > 0 {
		err = err.With(slog.String("suggest", match[0].Str))
	}

	return TypeString, err
}

// CollectionKind identifies the shape a token's value contributes.
type CollectionKind int

const (
	// Scalar contributes a single JSON value.
	Scalar CollectionKind = iota

	// Array wraps the resolved values in a JSON array.
	Array

	// Object treats the resolved values as pre-structured object content.
	Object
)

// String returns the attribute-grammar name of the collection kind.
func (k CollectionKind) String() string {
	switch k {
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "scalar"
	}
}

// ParseCollectionKind resolves a collection name from the attribute grammar.
func ParseCollectionKind(name string) (CollectionKind, error) {
	switch name {
	case "scalar":
		return Scalar, nil
	case "array":
		return Array, nil
	case "object":
		return Object, nil
	}

	return Scalar, ErrBadAttribute.With(slog.String("collection", name))
}

// Format names how file or variable chunks of an object collection are
// pre-structured.
type Format int

const (
	// FormatNone leaves the format at the collection default.
	FormatNone Format = iota

	// FormatJSON treats each chunk as a complete JSON object to merge.
	FormatJSON

	// FormatAttrs treats each chunk as a key=value attribute pair.
	FormatAttrs
)

// ParseFormat resolves a format name from the collection marker grammar.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return FormatJSON, nil
	case "attrs":
		return FormatAttrs, nil
	}

	return FormatNone, ErrBadCollection.With(slog.String("format", name))
}

// Collection describes the shape segment of a token: the collection kind,
// an optional split byte for file and variable expansion, and the chunk
// format for object collections.
type Collection struct {
	Kind     CollectionKind
	Split    byte
	HasSplit bool
	Format   Format
}

// SplitByte returns the effective split byte, defaulting to newline.
func (c Collection) SplitByte() byte {
	if c.HasSplit {
		return c.Split
	}

	return '\n'
}

// RefKind identifies how a key or value segment names its content.
type RefKind int

const (
	// Literal content is the segment text itself.
	Literal RefKind = iota

	// VariableRef dereferences a named variable from the environment.
	VariableRef

	// FileRef reads the named path, or stdin for "-" and "/dev/stdin".
	FileRef
)

// Ref is a key or value segment: literal text, a variable name, or a path.
type Ref struct {
	Kind RefKind
	Text string
}

// Saturation limits for repeated modifier flags. Additional repeats beyond
// the limit behave as the limit.
const (
	maxEmptyFlags  = 2
	maxStrictFlags = 1
	maxOmitFlags   = 1
)

// Flags holds the repeat counts of the {~, +, ?} modifier flags attached to
// a key or value segment.
type Flags struct {
	// Empty counts '?' flags: 1 resolves unset references to the empty
	// string, 2 additionally substitutes the type's empty JSON value.
	Empty uint8

	// Strict counts '+' flags: an unset reference is a fatal error.
	Strict uint8

	// Omit counts '~' flags: an entry whose reference resolves empty is
	// dropped from the output.
	Omit uint8
}

// add records one occurrence of flag c, saturating at each flag's limit.
// It reports whether c is a recognized flag byte.
func (f *Flags) add(c byte) bool {
	switch c {
	case '?':
		if f.Empty < maxEmptyFlags {
			f.Empty++
		}
	case '+':
		if f.Strict < maxStrictFlags {
			f.Strict++
		}
	case '~':
		if f.Omit < maxOmitFlags {
			f.Omit++
		}
	default:
		return false
	}

	return true
}

// IsZero reports whether no modifier flags are set.
func (f Flags) IsZero() bool {
	return f.Empty == 0 && f.Strict == 0 && f.Omit == 0
}

// Attr is one key=value pair from a token's /.../ attribute segment.
// Order is preserved as written.
type Attr struct {
	Key   string
	Value string
}

// Descriptor is the parsed, structured form of one argument token.
type Descriptor struct {
	// Token is the original argument text, retained for error reporting.
	Token string

	// Splat marks the token as expanding a container value into multiple
	// entries of the enclosing collection.
	Splat bool

	Key      Ref
	KeyFlags Flags

	Type       Type
	Collection Collection
	Attrs      []Attr

	Value      Ref
	ValueFlags Flags
}
