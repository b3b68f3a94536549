// Package ui renders the optional full-screen countdown for foreground
// sessions (start --ui).
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dayrun/dayrun/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7"))

	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9ece6a"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#787fa0"))
)

type tickMsg time.Time

// CountdownModel is the bubbletea model for the countdown screen. It
// owns no session side effects; the caller inspects Interrupted after
// the program exits and finishes or abandons the session accordingly.
type CountdownModel struct {
	total     int
	remaining int
	template  string
	bar       progress.Model
	width     int

	// Interrupted is set when the user quits before the timer runs out.
	Interrupted bool
}

func NewCountdown(totalSeconds int, template string) CountdownModel {
	return CountdownModel{
		total:     totalSeconds,
		remaining: totalSeconds,
		template:  template,
		bar:       progress.New(progress.WithDefaultGradient()),
	}
}

func (m CountdownModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m CountdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 8
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.bar.Width = w
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"))) {
			m.Interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.remaining--
		if m.remaining <= 0 {
			m.remaining = 0
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m CountdownModel) View() string {
	var b strings.Builder

	title := "DayRun"
	if m.template != "" {
		title += ": " + m.template
	}
	b.WriteString("\n  " + titleStyle.Render(title) + "\n")
	b.WriteString("  " + helpStyle.Render(session.HumanDuration(m.total)+" session") + "\n\n")

	if m.remaining == 0 {
		b.WriteString("  " + timerStyle.Render("Session complete") + "\n")
		return b.String()
	}

	b.WriteString("  " + timerStyle.Render(formatClock(m.remaining)) + " remaining\n\n")
	b.WriteString("  " + m.bar.ViewAs(m.percent()) + "\n\n")
	b.WriteString("  " + helpStyle.Render("q or ctrl+c stops the session early") + "\n")
	return b.String()
}

func (m CountdownModel) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.total-m.remaining) / float64(m.total)
}

// RunCountdown runs the countdown program in the alternate screen and
// reports whether the session ran to completion.
func RunCountdown(totalSeconds int, template string) (bool, error) {
	p := tea.NewProgram(NewCountdown(totalSeconds, template), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(CountdownModel)
	if !ok {
		return false, fmt.Errorf("unexpected final model %T", final)
	}
	return !m.Interrupted, nil
}

func formatClock(seconds int) string {
	h := seconds / 3600
	min := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("%d:%02d", min, sec)
}
