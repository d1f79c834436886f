package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/frege/pkg/core/version"
)

const prompt = "frege> "

// entry is one block of the transcript
type entry struct {
	input string
	reply Reply
}

// evalResultMsg carries the reply of a submitted line
type evalResultMsg struct {
	input string
	reply Reply
}

// Model is the REPL TUI model
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	running bool

	// Components
	input    textinput.Model
	viewport viewport.Model

	interp     *Interpreter
	ctx        context.Context
	transcript []entry

	// Submitted lines for up/down recall
	recall    []string
	recallPos int
}

// NewModel creates a REPL model on top of interp
func NewModel(ctx context.Context, interp *Interpreter) Model {
	ti := textinput.New()
	ti.Prompt = PromptStyle.Render(prompt)
	ti.Placeholder = "x = 4 * 2; print(x);"
	ti.CharLimit = 4000
	ti.Focus()

	return Model{
		input:  ti,
		interp: interp,
		ctx:    ctx,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			if m.running {
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) != "" {
				m.recall = append(m.recall, line)
			}
			m.recallPos = len(m.recall)
			m.running = true
			return m, m.evaluate(line)

		case "up":
			if m.recallPos > 0 {
				m.recallPos--
				m.input.SetValue(m.recall[m.recallPos])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recallPos < len(m.recall)-1 {
				m.recallPos++
				m.input.SetValue(m.recall[m.recallPos])
				m.input.CursorEnd()
			} else {
				m.recallPos = len(m.recall)
				m.input.Reset()
			}
			return m, nil

		case "ctrl+l":
			m.transcript = nil
			m.updateContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 6
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 4
		m.updateContent()

	case evalResultMsg:
		m.running = false
		if msg.reply.Kind == ReplyQuit {
			return m, tea.Quit
		}
		m.transcript = append(m.transcript, entry{input: msg.input, reply: msg.reply})
		m.updateContent()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// evaluate runs the line off the update loop
func (m Model) evaluate(line string) tea.Cmd {
	interp, ctx := m.interp, m.ctx
	return func() tea.Msg {
		return evalResultMsg{input: line, reply: interp.Eval(ctx, line)}
	}
}

func (m *Model) updateContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	var s strings.Builder
	for _, e := range m.transcript {
		s.WriteString(PromptStyle.Render(prompt))
		s.WriteString(e.input)
		s.WriteString("\n")
		for _, line := range e.reply.Lines {
			switch e.reply.Kind {
			case ReplyError:
				s.WriteString(ErrorMessageStyle.Render(line))
			case ReplyInfo:
				s.WriteString(InfoStyle.Render(line))
			default:
				s.WriteString(OutputStyle.Render(line))
			}
			s.WriteString("\n")
		}
	}
	return s.String()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(TitleStyle.Render("Frege " + version.Platform))
	s.WriteString("  ")
	s.WriteString(SubtitleStyle.Render(":help for commands"))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(FocusedInputStyle.Render(m.input.View()))
	s.WriteString("\n")
	s.WriteString(m.renderStatusBar())
	return s.String()
}

func (m Model) renderStatusBar() string {
	state := "ready"
	if m.running {
		state = "running"
	}
	return StatusBarStyle.Render(fmt.Sprintf("%s | %d bindings | up/down history, ctrl+l clear, ctrl+c quit",
		state, m.interp.Bindings()))
}

// Run starts the REPL on the terminal and blocks until the user quits
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, NewInterpreter(opts)), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
