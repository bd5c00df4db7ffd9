package log

import (
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{in: "debug", want: LevelDebug},
		{in: "DEBUG", want: LevelDebug},
		{in: "info", want: LevelInfo},
		{in: "warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "warn+1", want: LevelWarn + 1},
		{in: "bogus", want: DefaultLevel},
		{in: "", want: DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{level: LevelDebug, want: "debug"},
		{level: LevelInfo, want: "info"},
		{level: LevelWarn, want: "warn"},
		{level: LevelError, want: "error"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d: got %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevels(t *testing.T) {
	got := slices.Collect(Levels())
	want := []string{"debug", "info", "warn", "error"}

	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{in: "json", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: " json ", want: FormatJSON},
		{in: "text", want: FormatText},
		{in: "bogus", want: FormatText},
		{in: "", want: FormatText},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormats(t *testing.T) {
	got := slices.Collect(Formats())

	if !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("got %v", got)
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	stamp := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{name: "named layout", layout: "RFC3339", want: "2024-03-05T14:30:00Z"},
		{name: "named layout lowercased", layout: "kitchen", want: "2:30PM"},
		{name: "verbatim layout", layout: "2006-01-02", want: "2024-03-05"},
		{name: "none disables timestamps", layout: "none", want: ""},
		{name: "empty disables timestamps", layout: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(stamp); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevelLabel(t *testing.T) {
	for level, want := range map[Level]string{
		LevelDebug: "DEBUG",
		LevelError: "ERROR",
	} {
		got := levelLabel(slog.Level(level))
		if strings.TrimSpace(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}
