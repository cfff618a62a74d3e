// Package tui renders live pipeline progress for one run. The model
// consumes engine events forwarded from the event bus and draws one line
// per stage; it never talks to the engine directly except through the
// cancel callback handed in at construction.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/event"
	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/util"
)

// EventMsg wraps a bus event for delivery into the bubbletea loop.
type EventMsg struct {
	Event event.Event
}

// stageView is the render state of one pipeline stage.
type stageView struct {
	name   string
	status string // pending, running, succeeded, skipped, failed, blocked
	detail string
}

// Model is the live progress view for one run.
type Model struct {
	runID   string
	network string
	prompt  string

	spinner  spinner.Model
	stages   []stageView
	attempts []string
	verdict  string
	outcome  string
	errText  string

	cancel    func()
	canceling bool
	width     int
	done      bool
}

var pipelineStages = []string{"generate", "audit", "deploy", "verify", "test"}

// New creates a progress model. cancel is invoked once when the user
// interrupts; pass the engine's Cancel bound to this run.
func New(runID, network, prompt string, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipglossSpinnerStyle

	stages := make([]stageView, 0, len(pipelineStages))
	for _, name := range pipelineStages {
		stages = append(stages, stageView{name: name, status: "pending"})
	}

	return Model{
		runID:   runID,
		network: network,
		prompt:  prompt,
		spinner: sp,
		stages:  stages,
		cancel:  cancel,
		width:   80,
	}
}

var lipglossSpinnerStyle = titleStyle

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles spinner ticks, window sizing, interrupts, and forwarded
// engine events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.done {
				return m, tea.Quit
			}
			if !m.canceling && m.cancel != nil {
				m.canceling = true
				m.cancel()
			}
			return m, nil
		}
		return m, nil

	case EventMsg:
		return m.applyEvent(msg.Event)
	}
	return m, nil
}

func (m Model) applyEvent(ev event.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case event.StageStartedEvent:
		m.setStage(ev.Stage, "running", "")

	case event.StageCompletedEvent:
		m.setStage(ev.Stage, ev.Status, ev.Detail)

	case event.ProviderAttemptedEvent:
		m.attempts = append(m.attempts,
			fmt.Sprintf("%s #%d %s (%s)", ev.Provider, ev.Attempt, ev.Outcome, ev.Latency.Round(time.Millisecond)))

	case event.VerdictReachedEvent:
		m.verdict = fmt.Sprintf("%s (confidence %.2f, %d findings, %d analyzers)",
			ev.Severity, ev.Confidence, ev.Findings, ev.Analyzers)

	case event.RunCompletedEvent:
		m.outcome = ev.Outcome
		m.errText = ev.Error
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) setStage(name, status, detail string) {
	for i := range m.stages {
		if m.stages[i].name == name {
			m.stages[i].status = status
			m.stages[i].detail = detail
			return
		}
	}
}

// View renders the stage list with one line per stage.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hyperagent run "+m.runID) + "\n")
	b.WriteString(util.TruncateANSI(mutedStyle.Render(m.prompt), m.width) + "\n")
	b.WriteString(mutedStyle.Render("network: "+m.network) + "\n\n")

	for _, s := range m.stages {
		b.WriteString(m.stageLine(s) + "\n")
	}

	if len(m.attempts) > 0 {
		b.WriteString("\n" + util.TruncateANSI(mutedStyle.Render("providers: "+strings.Join(m.attempts, ", ")), m.width) + "\n")
	}
	if m.verdict != "" {
		b.WriteString("\n" + mutedStyle.Render("verdict: "+m.verdict) + "\n")
	}
	if m.canceling && !m.done {
		b.WriteString("\n" + warningStyle.Render("canceling, waiting for the current stage to settle") + "\n")
	}
	if m.done {
		b.WriteString("\n" + m.outcomeLine() + "\n")
	}

	return b.String()
}

func (m Model) stageLine(s stageView) string {
	var marker string
	switch s.status {
	case "running":
		marker = m.spinner.View()
	case "succeeded":
		marker = successStyle.Render("✓")
	case "skipped":
		marker = mutedStyle.Render("–")
	case "failed":
		marker = errorStyle.Render("✗")
	case "blocked":
		marker = warningStyle.Render("⊘")
	default:
		marker = mutedStyle.Render("·")
	}

	line := fmt.Sprintf("%s %-8s", marker, s.name)
	if s.detail != "" {
		line += " " + mutedStyle.Render(s.detail)
	}
	return util.TruncateANSI(line, m.width)
}

func (m Model) outcomeLine() string {
	switch m.outcome {
	case "completed", "completed_test_only":
		return successStyle.Render("outcome: " + m.outcome)
	case "aborted":
		return warningStyle.Render("outcome: aborted (deployment blocked by audit verdict)")
	case "canceled":
		return warningStyle.Render("outcome: canceled")
	default:
		line := errorStyle.Render("outcome: " + m.outcome)
		if m.errText != "" {
			line += "\n" + errorStyle.Render(m.errText)
		}
		return line
	}
}
