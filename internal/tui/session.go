// Package tui renders a live view of one email processing session. It
// consumes only the collector's views (transcript, final response, summary)
// and never inspects raw events beyond handing them to the collector.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/mail-triage/internal/stream"
)

// EventSource feeds the session view. Next blocks until an event is
// available and reports false when the stream is exhausted.
type EventSource interface {
	Next() (stream.Event, bool)
}

// flushTick drives the time-based reasoning flush while the stream is quiet.
const flushTick = time.Second

type eventMsg struct {
	event stream.Event
	ok    bool
}

type tickMsg time.Time

// Model is the bubbletea model for a live processing session.
type Model struct {
	source    EventSource
	collector *stream.Collector

	width  int
	height int

	done  bool
	final string
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	transcriptStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	responseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewModel creates a session view over an event source.
func NewModel(source EventSource) Model {
	return Model{
		source:    source,
		collector: stream.NewCollector(),
	}
}

// Collector exposes the underlying collector so the caller can extract the
// final views after the program exits.
func (m Model) Collector() *stream.Collector {
	return m.collector
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.nextEvent(), scheduleTick())
}

func (m Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := m.source.Next()
		return eventMsg{event: e, ok: ok}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(flushTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if !m.done {
				m.collector.MarkComplete()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case eventMsg:
		if !msg.ok {
			m.collector.MarkComplete()
			m.final, _ = m.collector.FinalResponse()
			m.done = true
			return m, nil
		}
		m.collector.AddEvent(msg.event)
		return m, m.nextEvent()

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.collector.CheckFlush()
		return m, scheduleTick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Mail Triage Session ")

	var status string
	if m.done {
		status = statusDone.Render("complete")
	} else {
		status = statusRunning.Render("processing...")
	}

	panelWidth := m.width - 6
	if panelWidth < 20 {
		panelWidth = 20
	}

	transcript := m.renderTranscript(panelWidth)
	body := transcriptStyle.Width(panelWidth).Render(transcript)

	if m.done {
		response := m.renderResponse()
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			responseStyle.Width(panelWidth).Render(response))
	}

	help := helpStyle.Render("q: quit")

	return fmt.Sprintf("%s %s\n\n%s\n\n%s", title, status, body, help)
}

// renderTranscript returns the transcript tail that fits the available
// height, so the view follows the newest activity.
func (m Model) renderTranscript(width int) string {
	text := strings.TrimRight(m.collector.Transcript(), "\n")
	lines := strings.Split(text, "\n")

	maxLines := m.height - 12
	if maxLines < 5 {
		maxLines = 5
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderResponse() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Final Response"))
	b.WriteString("\n\n")
	b.WriteString(m.final)
	b.WriteString("\n\n")
	b.WriteString(stream.FormatSummary(m.collector.Summary()))
	return strings.TrimRight(b.String(), "\n")
}
