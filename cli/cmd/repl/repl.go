// Package repl implements an interactive composer: tokens typed at the
// prompt are encoded live, with the resulting JSON (or the error that
// prevented it) rendered beneath the input line.
package repl

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/jarg/lang"
)

const prompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// Repl composes JSON interactively from tokens typed at a prompt.
type Repl struct {
	Array bool   `help:"Compose a top-level array"      short:"a"`
	Type  string `help:"Type applied to untyped tokens" short:"t" default:"string" enum:"${typeEnum}" placeholder:"${enum}"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	typ, err := lang.ParseType(r.Type)
	if err != nil {
		return err
	}

	shape := lang.Object
	if r.Array {
		shape = lang.Array
	}

	_, err = tea.NewProgram(
		newModel(ctx, shape, typ),
		tea.WithContext(ctx),
	).Run()

	return err
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx      context.Context
	input    textinput.Model
	shape    lang.CollectionKind
	typ      lang.Type
	history  []string // committed result lines
	preview  string   // live encoding of the current line
	problem  string   // live encoding failure, when any
	matches  []string // type-name completions for the current word
	quitting bool
}

func newModel(ctx context.Context, shape lang.CollectionKind, typ lang.Type) model {
	input := textinput.New()
	input.Prompt = promptStyle.Render(prompt)
	input.Placeholder = "key:type=value ..."
	input.Focus()

	return model{
		ctx:   ctx,
		input: input,
		shape: shape,
		typ:   typ,
	}
}

// Init implements [tea.Model].
func (m model) Init() tea.Cmd { return textinput.Blink }

// Update implements [tea.Model].
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.refresh(msg)
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		return m.commit(), nil

	case tea.KeyTab:
		return m.complete().refresh(nil)
	}

	return m.refresh(msg)
}

// refresh forwards msg to the input field and recomputes the live preview.
func (m model) refresh(msg tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd

	if msg != nil {
		m.input, cmd = m.input.Update(msg)
	}

	m.preview, m.problem = "", ""
	m.matches = typeMatches(m.input.Value(), m.input.Position())

	tokens := splitTokens(m.input.Value())
	if len(tokens) == 0 {
		return m, cmd
	}

	out, err := lang.Encode(m.ctx, lang.Config{
		Shape: m.shape,
		Type:  m.typ,
	}, lang.OSSource{}, tokens)
	if err != nil {
		m.problem = err.Error()

		return m, cmd
	}

	m.preview = strings.TrimRight(string(out), "\n")

	return m, cmd
}

// commit appends the current preview to the session transcript and clears
// the input line. Lines that do not encode are kept for editing.
func (m model) commit() model {
	if m.problem != "" || m.preview == "" {
		return m
	}

	m.history = append(m.history,
		m.input.Prompt+m.input.Value(),
		resultStyle.Render(m.preview),
	)
	m.input.SetValue("")
	m.preview, m.matches = "", nil

	return m
}

// complete replaces the partial type name at the cursor with its closest
// match among the recognized type names.
func (m model) complete() model {
	text, pos := m.input.Value(), m.input.Position()

	completed, moved, ok := completeType(text, pos)
	if !ok {
		return m
	}

	m.input.SetValue(completed)
	m.input.SetCursor(moved)

	return m
}

// View implements [tea.Model].
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	for _, line := range m.history {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if len(m.matches) > 0 {
		b.WriteString(suggStyle.Render(strings.Join(m.matches, "  ")))
		b.WriteByte('\n')
	}

	switch {
	case m.problem != "":
		b.WriteString(errorStyle.Render(m.problem))
		b.WriteByte('\n')

	case m.preview != "":
		b.WriteString(resultStyle.Render(m.preview))
		b.WriteByte('\n')
	}

	b.WriteString(hintStyle.Render(
		"tab: complete type  enter: commit  esc: quit",
	))
	b.WriteByte('\n')

	return b.String()
}
