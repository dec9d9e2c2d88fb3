// Package tui is the interactive crafting screen: a seed editor, a live
// view of the model's answer as it streams, and the stage checklist.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/visioncrafter/internal/model"
	"github.com/amishk599/visioncrafter/internal/pipeline"
	"github.com/amishk599/visioncrafter/internal/session"
)

const (
	sidebarWidth = 32
	inputHeight  = 5
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	sectionHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))
)

// tokenMsg carries one streamed token from the model.
type tokenMsg string

// stepDoneMsg is sent when a pipeline advance returns.
type stepDoneMsg struct {
	step pipeline.Step
	err  error
}

// Model is the bubbletea model for one crafting session. Only the command
// returned by advanceCmd touches the pipeline while busy is set.
type Model struct {
	pipeline    *pipeline.Pipeline
	onAssembled func(pipeline.Step)
	send        func(tea.Msg)

	ctx    context.Context
	cancel context.CancelFunc

	input   textarea.Model
	output  viewport.Model
	spinner spinner.Model

	progress     pipeline.Progress
	answered     string // rendered sections received so far
	streamed     string // tokens of the call in flight
	status       string
	err          error
	busy         bool
	resetPending bool
	quitting     bool // quit once the call in flight returns

	width  int
	height int
	ready  bool
}

// New builds the crafting model. onAssembled, when set, runs after the
// document is written and before the TUI sees the result. send delivers
// streamed tokens back into the program; nil drops them.
func New(p *pipeline.Pipeline, onAssembled func(pipeline.Step), send func(tea.Msg)) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the role in a sentence or two..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(inputHeight)
	ta.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33"))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		pipeline:    p,
		onAssembled: onAssembled,
		send:        send,
		ctx:         ctx,
		cancel:      cancel,
		input:       ta,
		output:      viewport.New(0, 0),
		spinner:     sp,
		progress:    p.Progress(),
		status:      "ctrl+s to generate",
	}
	m.answered = m.renderAnswered()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tokenMsg:
		if m.resetPending {
			return m, nil
		}
		m.streamed += string(msg)
		m.refreshOutput(true)
		return m, nil

	case stepDoneMsg:
		return m.handleStep(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancel()
		if m.busy && !m.quitting {
			m.quitting = true
			m.status = "finishing the current step..."
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+r":
		if m.busy {
			m.resetPending = true
			m.status = "reset queued until the current call returns"
			return m, nil
		}
		return m, m.reset()
	case "ctrl+s":
		return m.generate()
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

func (m Model) generate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	state := m.pipeline.Session()
	if !state.Has(session.KeySeed) {
		seed := strings.TrimSpace(m.input.Value())
		if seed == "" {
			m.status = "describe the role first"
			return m, nil
		}
		m.pipeline.Submit(seed)
		m.input.Blur()
	}
	if m.progress = m.pipeline.Progress(); m.progress.Assembled {
		m.status = "already saved to " + state.Text(session.KeyTranscript)
		return m, nil
	}

	m.err = nil
	m.status = ""
	return m.startAdvance()
}

func (m Model) startAdvance() (tea.Model, tea.Cmd) {
	m.busy = true
	m.streamed = ""
	m.progress = m.pipeline.Progress()
	m.refreshOutput(true)
	return m, tea.Batch(m.advanceCmd(), m.spinner.Tick)
}

// advanceCmd runs one pipeline step off the UI goroutine.
func (m Model) advanceCmd() tea.Cmd {
	p, send, hook, ctx := m.pipeline, m.send, m.onAssembled, m.ctx
	return func() tea.Msg {
		step, err := p.Advance(ctx, func(tok string) {
			if send != nil {
				send(tokenMsg(tok))
			}
		})
		if err == nil && step.Kind == pipeline.StepAssembled && hook != nil {
			hook(step)
		}
		return stepDoneMsg{step: step, err: err}
	}
}

func (m Model) handleStep(msg stepDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.streamed = ""

	if m.quitting {
		return m, tea.Quit
	}
	if m.resetPending {
		return m, m.reset()
	}

	m.progress = m.pipeline.Progress()
	if msg.err != nil {
		m.err = msg.err
		m.status = "ctrl+s to retry"
		m.refreshOutput(false)
		return m, nil
	}

	switch msg.step.Kind {
	case pipeline.StepStage:
		m.answered = m.renderAnswered()
		// Keep going until the document is written.
		return m.startAdvance()
	case pipeline.StepAssembled:
		m.answered = msg.step.Markdown
		m.status = "saved to " + msg.step.Path
		m.refreshOutput(false)
		m.output.GotoTop()
	default:
		m.status = "nothing to do; ctrl+r to start over"
		m.refreshOutput(false)
	}
	return m, nil
}

func (m *Model) reset() tea.Cmd {
	m.pipeline.Reset()
	m.resetPending = false
	m.busy = false
	m.err = nil
	m.streamed = ""
	m.progress = m.pipeline.Progress()
	m.answered = m.renderAnswered()
	m.status = "session reset"
	m.input.Reset()
	m.refreshOutput(false)
	return m.input.Focus()
}

func (m *Model) recalcLayout() {
	mainWidth := max(m.width-sidebarWidth-5, 20)
	// Input box (inputHeight + 2 border) + output border (2) + status bar (1).
	outputHeight := max(m.height-inputHeight-5, 3)

	m.input.SetWidth(mainWidth)
	if !m.ready {
		m.output = viewport.New(mainWidth, outputHeight)
		m.ready = true
	} else {
		m.output.Width = mainWidth
		m.output.Height = outputHeight
	}
	m.refreshOutput(false)
}

func (m *Model) refreshOutput(follow bool) {
	width := max(m.output.Width, 20)
	content := m.answered
	if m.busy && m.progress.Stage >= 0 {
		st := m.pipeline.Stages()[m.progress.Stage]
		content += "\n" + sectionHeadingStyle.Render(st.Heading) + "\n" + m.streamed
	}
	if m.err != nil {
		content += "\n\n" + errorStyle.Render("⚠ "+errorText(m.err))
	}
	m.output.SetContent(lipgloss.NewStyle().Width(width).Render(content))
	if follow {
		m.output.GotoBottom()
	}
}

// renderAnswered reads the stage slots. Call only while no advance is in flight.
func (m Model) renderAnswered() string {
	state := m.pipeline.Session()
	var b strings.Builder
	for _, st := range m.pipeline.Stages() {
		if !state.Has(st.ID) {
			break
		}
		b.WriteString(sectionHeadingStyle.Render(st.Heading))
		b.WriteByte('\n')
		b.WriteString(state.Text(st.ID))
		b.WriteString("\n\n")
	}
	return b.String()
}

func errorText(err error) string {
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		return "configuration: " + err.Error()
	}
	if model.IsTransient(err) {
		return "model call failed: " + err.Error()
	}
	return err.Error()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	mainWidth := m.output.Width
	inputBorder, outputBorder := activeBorderStyle, inactiveBorderStyle
	if !m.input.Focused() {
		inputBorder, outputBorder = inactiveBorderStyle, activeBorderStyle
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		inputBorder.Width(mainWidth).Render(m.input.View()),
		outputBorder.Width(mainWidth).Render(m.output.View()),
	)
	sidebar := inactiveBorderStyle.
		Width(sidebarWidth).
		Height(m.output.Height + inputHeight + 2).
		Render(m.renderChecklist())

	panes := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	return panes + "\n" + statusBarStyle.Width(m.width).Render(m.statusLine())
}

func (m Model) renderChecklist() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("VisionCrafter"))
	b.WriteString("\n\n")
	for i, st := range m.pipeline.Stages() {
		label := st.Heading
		switch {
		case i < m.progress.Completed:
			b.WriteString(doneStyle.Render("✓ " + label))
		case m.busy && i == m.progress.Stage:
			b.WriteString(m.spinner.View() + " " + pendingStyle.Render(label))
		default:
			b.WriteString(waitingStyle.Render("○ " + label))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.progress.Assembled {
		b.WriteString(doneStyle.Render("✓ Document saved"))
	} else {
		b.WriteString(waitingStyle.Render("○ Document"))
	}
	b.WriteString("\n\n")

	state := m.pipeline.Session()
	if !m.busy {
		b.WriteString(waitingStyle.Render(fmt.Sprintf("tokens %d · $%.4f", state.Tokens(), state.Cost())))
	}
	return b.String()
}

func (m Model) statusLine() string {
	keys := "ctrl+s generate  ctrl+r reset  esc quit"
	if m.status == "" {
		return " " + keys
	}
	return " " + m.status + "    " + keys
}

// Run starts the crafting TUI on the alternate screen and blocks until the
// user quits.
func Run(p *pipeline.Pipeline, onAssembled func(pipeline.Step)) error {
	var prog *tea.Program
	m := New(p, onAssembled, func(msg tea.Msg) { prog.Send(msg) })
	prog = tea.NewProgram(m, tea.WithAltScreen())

	result, err := prog.Run()
	if final, ok := result.(Model); ok {
		final.cancel()
	}
	return err
}
