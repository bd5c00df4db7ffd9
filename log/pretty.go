package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles applied by the pretty handler, keyed loosely by token role.
//
//nolint:gochecknoglobals
var (
	styleTime  = lipgloss.NewStyle().Faint(true)
	styleKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	styleLevel = map[slog.Level]lipgloss.Style{
		slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler is a colorized text handler for interactive terminals.
// It renders one record per line: time, level, message, then attributes as
// key=value pairs without quoting.
type prettyHandler struct {
	opts       slog.HandlerOptions
	mu         *sync.Mutex
	w          io.Writer
	formatTime FormatTime
	attrs      []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		mu:         &sync.Mutex{},
		w:          w,
		formatTime: formatTime,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if stamp := h.formatTime(r.Time); stamp != "" {
			buf.WriteString(styleTime.Render(stamp))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(h.levelStyle(r.Level).Render(levelLabel(r.Level)))
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			writePair(buf, slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line))
		}
	}

	for _, a := range h.attrs {
		writePair(buf, a.Key, a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		writePair(buf, a.Key, a.Value.String())

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

// WithGroup is accepted but group names are not rendered; pretty output is
// for humans scanning a terminal, not for parsers.
func (h *prettyHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *prettyHandler) levelStyle(level slog.Level) lipgloss.Style {
	if style, ok := styleLevel[level]; ok {
		return style
	}

	return styleLevel[slog.LevelError]
}

// levelLabel pads level names to a fixed width so messages align.
func levelLabel(level slog.Level) string {
	label := level.String()
	for len(label) < 5 {
		label += " "
	}

	return label
}

func writePair(buf *bytes.Buffer, key, value string) {
	buf.WriteByte(' ')
	buf.WriteString(styleKey.Render(key + "="))
	buf.WriteString(styleValue.Render(value))
}
