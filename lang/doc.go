// Package lang implements the argument-token grammar and the JSON
// composition engine built on it.
//
// Each command-line token describes one entry of the output document: a key,
// an optional type and collection marker, optional behavior flags, and a
// value given inline or by reference to an environment variable or file.
//
// # Grammar
//
// Informal shape of one token:
//
//	Token      → Splat? Flags? Key? (':' Type Collection? Attrs?)? Flags? Value?
//	Splat      → '...'
//	Flags      → ('~' | '+' | '?')*
//	Key        → <text; doubled '=' ':' '@' escape the metacharacters>
//	Type       → string | number | bool | true | false | null | raw | json | auto
//	Collection → '[' Split? ']' | '{' Split? (':' Format)? '}'
//	Attrs      → '/' Pair (',' Pair)* '/'
//	Value      → '=' Literal | '@' Name | '@' Path
//
// Parsing yields a [Descriptor]. Descriptors are resolved against a [Source]
// (environment variables, files, stdin), their values pass through the typed
// encoders, and [Encode] or [EncodeTo] joins the results into a single JSON
// object or array.
//
// # Validation
//
// [Valid], [CheckType], and [CheckCollection] verify JSON syntax without
// building any document tree, so pass-through values of type json and raw
// are vetted at full input size with constant memory.
//
// # Failure containment
//
// Buffered encoding is all-or-nothing: no bytes are produced unless every
// entry resolved and encoded. Streaming encoding cannot take bytes back, so
// a failure after the first flush poisons the stream with [Cancel] to keep
// consumers from mistaking a truncated document for a complete one.
package lang
