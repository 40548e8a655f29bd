package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/mail-triage/internal/stream"
)

// fakeSource replays a fixed event slice.
type fakeSource struct {
	events []stream.Event
	pos    int
}

func (s *fakeSource) Next() (stream.Event, bool) {
	if s.pos >= len(s.events) {
		return stream.Event{}, false
	}
	e := s.events[s.pos]
	s.pos++
	return e, true
}

func sessionEvents() []stream.Event {
	return []stream.Event{
		stream.Lifecycle(stream.PhaseInit),
		stream.Reasoning("Checking the order status."),
		stream.ToolUse("query_order", map[string]string{"order_id": "LC100001"}, "inv-0001"),
		stream.TextChunk("Your order is on its way."),
		stream.Boundary(),
	}
}

func TestModelInitReturnsCommands(t *testing.T) {
	m := NewModel(&fakeSource{})
	if cmd := m.Init(); cmd == nil {
		t.Fatal("expected Init to return a non-nil command")
	}
}

func TestModelConsumesEventsUntilExhausted(t *testing.T) {
	m := NewModel(&fakeSource{events: sessionEvents()})

	for _, e := range sessionEvents() {
		updated, cmd := m.Update(eventMsg{event: e, ok: true})
		m = updated.(Model)
		if cmd == nil {
			t.Fatal("expected a follow-up command while the stream is open")
		}
	}
	if m.done {
		t.Fatal("model should not be done before the stream is exhausted")
	}

	updated, _ := m.Update(eventMsg{ok: false})
	m = updated.(Model)
	if !m.done {
		t.Fatal("model should be done after the stream is exhausted")
	}
	if !m.collector.Complete() {
		t.Error("collector should be marked complete")
	}
	if m.final != "Your order is on its way." {
		t.Errorf("unexpected final response: %q", m.final)
	}
}

func TestModelViewShowsTranscriptAndResponse(t *testing.T) {
	m := NewModel(&fakeSource{events: sessionEvents()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	for _, e := range sessionEvents() {
		updated, _ := m.Update(eventMsg{event: e, ok: true})
		m = updated.(Model)
	}

	view := m.View()
	if !strings.Contains(view, "TOOL CALL: query_order") {
		t.Errorf("view missing tool call, got:\n%s", view)
	}
	if strings.Contains(view, "Final Response") {
		t.Error("final response should be hidden while processing")
	}

	updated, _ = m.Update(eventMsg{ok: false})
	m = updated.(Model)
	view = m.View()
	if !strings.Contains(view, "Final Response") {
		t.Error("expected final response panel after completion")
	}
	if !strings.Contains(view, "Your order is on its way.") {
		t.Error("expected answer text after completion")
	}
	if !strings.Contains(view, "SESSION SUMMARY") {
		t.Error("expected session summary after completion")
	}
}

func TestModelQuitKeyFlushesCollector(t *testing.T) {
	m := NewModel(&fakeSource{events: sessionEvents()})
	updated, _ := m.Update(eventMsg{event: stream.Reasoning("partial thought"), ok: true})
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.collector.Complete() {
		t.Error("quitting mid-session should mark the collector complete")
	}
	if !strings.Contains(m.collector.Transcript(), "partial thought") {
		t.Error("buffered reasoning should be flushed on quit")
	}
}
