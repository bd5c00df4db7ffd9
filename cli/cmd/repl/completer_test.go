package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/jarg/lang"
)

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "fields split on whitespace",
			line: "a=1  b=2\tc=3",
			want: []string{"a=1", "b=2", "c=3"},
		},
		{
			name: "double quotes group and strip",
			line: `msg="hello world" n=1`,
			want: []string{"msg=hello world", "n=1"},
		},
		{
			name: "single quotes group and strip",
			line: "msg='a b'",
			want: []string{"msg=a b"},
		},
		{
			name: "quote kind nests the other",
			line: `msg="it's fine"`,
			want: []string{"msg=it's fine"},
		},
		{
			name: "empty line",
			line: "   ",
			want: nil,
		},
		{
			name: "unterminated quote keeps the remainder",
			line: `msg="partial`,
			want: []string{"msg=partial"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTokens(tt.line)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeSegment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		cursor    int
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{
			name:      "partial type at cursor",
			text:      "data:num",
			cursor:    8,
			wantStart: 5,
			wantEnd:   8,
			wantOK:    true,
		},
		{
			name:      "empty partial after colon",
			text:      "data:",
			cursor:    5,
			wantStart: 5,
			wantEnd:   5,
			wantOK:    true,
		},
		{
			name:   "no colon before the cursor",
			text:   "data",
			cursor: 4,
			wantOK: false,
		},
		{
			name:   "doubled colon is an escape",
			text:   "a::num",
			cursor: 6,
			wantOK: false,
		},
		{
			name:      "cursor inside the name",
			text:      "data:number",
			cursor:    8,
			wantStart: 5,
			wantEnd:   8,
			wantOK:    true,
		},
		{
			name:   "cursor past the end clamps",
			text:   "x:s",
			cursor: 99,
			wantStart: 2,
			wantEnd:   3,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := typeSegment(tt.text, tt.cursor)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}

			if !ok {
				return
			}

			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("range: got [%d,%d), want [%d,%d)",
					start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestTypeMatches(t *testing.T) {
	t.Run("empty partial lists every type", func(t *testing.T) {
		got := typeMatches("k:", 2)
		if !slices.Equal(got, lang.TypeNames()) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("partial narrows the list", func(t *testing.T) {
		got := typeMatches("k:num", 5)
		if len(got) == 0 || got[0] != "number" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("outside a type segment matches nothing", func(t *testing.T) {
		if got := typeMatches("key=value", 9); got != nil {
			t.Errorf("got %v", got)
		}
	})
}

func TestCompleteType(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		cursor     int
		wantText   string
		wantCursor int
		wantOK     bool
	}{
		{
			name:       "completes a unique prefix",
			text:       "data:num",
			cursor:     8,
			wantText:   "data:number",
			wantCursor: 11,
			wantOK:     true,
		},
		{
			name:       "completes mid-token preserving the tail",
			text:       "data:num=42",
			cursor:     8,
			wantText:   "data:number=42",
			wantCursor: 11,
			wantOK:     true,
		},
		{
			name:     "no segment leaves input untouched",
			text:     "data=42",
			cursor:   7,
			wantText: "data=42",
			wantOK:   false,
		},
		{
			name:     "no match leaves input untouched",
			text:     "data:qqq",
			cursor:   8,
			wantText: "data:qqq",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, cursor, ok := completeType(tt.text, tt.cursor)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}

			if text != tt.wantText {
				t.Errorf("text: got %q, want %q", text, tt.wantText)
			}

			if ok && cursor != tt.wantCursor {
				t.Errorf("cursor: got %d, want %d", cursor, tt.wantCursor)
			}
		})
	}
}
