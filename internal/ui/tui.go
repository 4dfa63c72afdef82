package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// TUIEditor edits the message in a full-screen text input.
type TUIEditor struct {
	in  io.Reader
	out io.Writer
}

// NewTUIEditor creates a TUIEditor. Nil in or out select the terminal.
func NewTUIEditor(in io.Reader, out io.Writer) *TUIEditor {
	return &TUIEditor{in: in, out: out}
}

// Edit runs the editor until the user submits a non-blank message or
// cancels with Esc or Ctrl+C, which yields ErrInterrupted.
func (e *TUIEditor) Edit(ctx context.Context, message string) (string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if e.in != nil {
		opts = append(opts, tea.WithInput(e.in))
	}
	if e.out != nil {
		opts = append(opts, tea.WithOutput(e.out))
	}

	final, err := tea.NewProgram(newEditModel(message), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrInterrupted
		}
		return "", fmt.Errorf("failed to run editor: %w", err)
	}

	m := final.(*editModel)
	if m.cancelled {
		return "", ErrInterrupted
	}
	return m.message(), nil
}

type editModel struct {
	input     textinput.Model
	warning   string
	submitted bool
	cancelled bool
}

func newEditModel(message string) *editModel {
	ti := textinput.New()
	ti.Placeholder = "type(scope): subject"
	ti.Prompt = "> "
	ti.Width = 72
	ti.SetValue(message)
	ti.CursorEnd()
	ti.Focus()

	return &editModel{input: ti}
}

func (m *editModel) message() string {
	return strings.TrimSpace(m.input.Value())
}

func (m *editModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.message() == "" {
				m.warning = EmptyMessageWarning
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
		m.warning = ""
	case tea.WindowSizeMsg:
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	frameStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func (m *editModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Edit commit message"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(warningStyle.Render(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter to accept, esc to cancel"))

	return frameStyle.Render(b.String())
}
