// Package tui renders a live progress view for one compositing job.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kartoza/kartoza-chromakey/internal/engine"
)

// UI color palette
var (
	ColorOrange = lipgloss.Color("#DDA036") // Primary/Active
	ColorGray   = lipgloss.Color("#9A9EA0") // Inactive/Subtle
	ColorWhite  = lipgloss.Color("#FFFFFF") // Text
	ColorRed    = lipgloss.Color("#E95420") // Error
	ColorGreen  = lipgloss.Color("#4CAF50") // Success
)

// ProgressMsg carries one engine progress update into the UI.
type ProgressMsg struct {
	Percent int
	Message string
}

// DoneMsg reports the job's terminal state.
type DoneMsg struct {
	Result *engine.Result
	Err    error
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Model is the bubbletea model for a running job. The engine runs in its
// own goroutine and feeds the model through Program.Send.
type Model struct {
	width  int
	height int

	jobName  string
	progress progress.Model
	pct      int
	message  string
	started  time.Time

	done   bool
	result *engine.Result
	err    error

	// cancel stops the engine when the user aborts the job.
	cancel context.CancelFunc
}

// NewModel creates the progress model for one job.
func NewModel(jobName string, cancel context.CancelFunc) *Model {
	return &Model{
		jobName:  jobName,
		progress: progress.New(progress.WithDefaultGradient()),
		message:  "Starting",
		started:  time.Now(),
		cancel:   cancel,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = m.width - 20
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			m.message = "Cancelling"
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		default:
			if m.done {
				return m, tea.Quit
			}
			return m, nil
		}

	case ProgressMsg:
		m.pct = msg.Percent
		if msg.Message != "" {
			m.message = msg.Message
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if m.err == nil {
			m.pct = 100
		}
		return m, tea.Quit

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	}

	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorOrange).
		MarginBottom(1)
	title := titleStyle.Render("Compositing " + m.jobName)

	bar := m.progress.ViewAs(float64(m.pct) / 100)

	msgStyle := lipgloss.NewStyle().Foreground(ColorWhite)
	status := msgStyle.Render(m.message)

	elapsed := time.Since(m.started).Round(time.Second)
	timeStyle := lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	elapsedStr := timeStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed))

	var footer string
	switch {
	case m.done && m.err != nil:
		footer = lipgloss.NewStyle().Foreground(ColorRed).
			Render(fmt.Sprintf("Failed: %v", m.err))
	case m.done && m.result != nil:
		footer = lipgloss.NewStyle().Foreground(ColorGreen).
			Render(fmt.Sprintf("Done: %d frames, %.1fs of video -> %s",
				m.result.FramesProcessed, m.result.VideoDuration, m.result.OutputPath))
	default:
		footer = lipgloss.NewStyle().Foreground(ColorGray).
			Render("Press q to cancel")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		bar,
		"",
		status,
		elapsedStr,
		"",
		footer,
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content + "\n"
}

// Done reports whether the job reached a terminal state.
func (m *Model) Done() bool {
	return m.done
}

// Err returns the job's terminal error, if any.
func (m *Model) Err() error {
	return m.err
}
