package repl

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/jarg/lang"
)

// splitTokens breaks an input line into argument tokens the way a shell
// would: fields separated by unquoted whitespace, with single or double
// quotes grouping text (quotes are stripped).
func splitTokens(line string) []string {
	var (
		tokens []string
		field  strings.Builder
		quote  byte
		open   bool
	)

	flush := func() {
		if field.Len() > 0 {
			tokens = append(tokens, field.String())
			field.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case open:
			if c == quote {
				open = false
			} else {
				field.WriteByte(c)
			}

		case c == '\'' || c == '"':
			open, quote = true, c

		case c == ' ' || c == '\t':
			flush()

		default:
			field.WriteByte(c)
		}
	}

	flush()

	return tokens
}

// typeSegment locates the partial type name at the cursor. It reports the
// half-open byte range of the name and true only when the cursor sits
// directly after "…:<partial>" within the current field.
func typeSegment(text string, cursor int) (start, end int, ok bool) {
	if cursor > len(text) {
		cursor = len(text)
	}

	// Walk back over lowercase type-name bytes to the introducing colon.
	start = cursor
	for start > 0 && text[start-1] >= 'a' && text[start-1] <= 'z' {
		start--
	}

	if start == 0 || text[start-1] != ':' {
		return 0, 0, false
	}

	// A doubled colon is an escape, not a type segment.
	if start >= 2 && text[start-2] == ':' {
		return 0, 0, false
	}

	return start, cursor, true
}

// typeMatches returns the type names matching the partial name at the
// cursor, best match first. An empty partial name lists every type.
func typeMatches(text string, cursor int) []string {
	start, end, ok := typeSegment(text, cursor)
	if !ok {
		return nil
	}

	partial := text[start:end]
	if partial == "" {
		return lang.TypeNames()
	}

	matches := fuzzy.Find(partial, lang.TypeNames())

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match.Str)
	}

	return names
}

// completeType replaces the partial type name at the cursor with its best
// match and returns the new text and cursor position.
func completeType(text string, cursor int) (string, int, bool) {
	start, end, ok := typeSegment(text, cursor)
	if !ok {
		return text, cursor, false
	}

	names := typeMatches(text, cursor)
	if len(names) == 0 {
		return text, cursor, false
	}

	name := names[0]

	return text[:start] + name + text[end:], start + len(name), true
}
