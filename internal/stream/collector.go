package stream

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Reasoning-buffer flush thresholds. The policy deliberately favors large
// coherent blocks over frequent small updates: a flush happens when the
// buffer reaches flushMaxChars, or when more than flushInterval has passed
// since the last flush and the buffer exceeds flushMinChars. Nothing else
// (sentence punctuation, paragraph breaks) triggers a flush.
const (
	flushMaxChars = 2000
	flushMinChars = 500
	flushInterval = 15 * time.Second
)

// NoResponse is returned by FinalResponse when the session completed without
// any answer text.
const NoResponse = "No response generated. Please check the thinking process for details."

// timedEvent is a received event stamped with its arrival time and elapsed
// time since the session started.
type timedEvent struct {
	Event
	At      time.Time
	Elapsed time.Duration
}

// Summary is the deterministic aggregate view of a session. ToolInvocations
// counts distinct invocation ids, so a tool call that emits several
// incremental events under one id counts once.
type Summary struct {
	TotalEvents     int      `json:"total_events"`
	ReasoningSteps  int      `json:"reasoning_steps"`
	ToolInvocations int      `json:"tool_invocations"`
	ToolNames       []string `json:"tool_names,omitempty"`
	TextChunks      int      `json:"text_chunks"`
	LifecycleEvents int      `json:"lifecycle_events"`
	Errors          int      `json:"errors"`
	ErrorMessages   []string `json:"error_messages,omitempty"`
}

// Collector owns one streaming session: it records every event, buffers
// reasoning text, and gates the final response on the message boundary.
// A Collector is created per processing run, driven by exactly one caller,
// and discarded after the views are extracted. It is not safe for concurrent
// use.
type Collector struct {
	events      []timedEvent
	transcript  strings.Builder
	thinking    strings.Builder
	messageSeen bool
	complete    bool
	start       time.Time
	lastFlush   time.Time
	now         func() time.Time
}

// NewCollector creates a collector for a fresh session.
func NewCollector() *Collector {
	return newCollector(time.Now)
}

// newCollector allows tests to inject a simulated clock.
func newCollector(now func() time.Time) *Collector {
	start := now()
	return &Collector{
		start:     start,
		lastFlush: start,
		now:       now,
	}
}

// AddEvent records an event and applies the formatting policy: errors,
// tool calls, boundaries, and lifecycle markers surface immediately;
// reasoning accumulates in the buffer; text chunks are retained in raw
// history but kept out of the transcript.
func (c *Collector) AddEvent(e Event) {
	at := c.now()
	c.events = append(c.events, timedEvent{Event: e, At: at, Elapsed: at.Sub(c.start)})

	switch e.Kind {
	case KindReasoning:
		c.thinking.WriteString(e.Text)
		c.checkFlushAt(at)

	case KindBoundary:
		// Flush pending reasoning first so no thinking text appears after
		// the boundary marker in the transcript.
		c.flushAt(at)
		c.messageSeen = true
		c.transcript.WriteString(formatEvent(e, at))

	case KindText:
		// Suppressed until the boundary: answer tokens can interleave with
		// reasoning, and the boundary is the only reliable completion signal.

	default:
		c.transcript.WriteString(formatEvent(e, at))
	}
}

// CheckFlush applies the time-based flush rule without new input. Callers
// driving a live view invoke it periodically so a quiet stream still flushes
// once the interval and minimum size are both met.
func (c *Collector) CheckFlush() bool {
	return c.checkFlushAt(c.now())
}

func (c *Collector) checkFlushAt(at time.Time) bool {
	n := c.thinking.Len()
	if n >= flushMaxChars {
		c.flushAt(at)
		return true
	}
	if at.Sub(c.lastFlush) > flushInterval && n > flushMinChars {
		c.flushAt(at)
		return true
	}
	return false
}

// FlushThinking forces any buffered reasoning into the transcript, ignoring
// thresholds. Used at session teardown so no reasoning text is lost.
func (c *Collector) FlushThinking() {
	c.flushAt(c.now())
}

func (c *Collector) flushAt(at time.Time) {
	if c.thinking.Len() == 0 {
		c.lastFlush = at
		return
	}
	c.transcript.WriteString(formatThinking(c.thinking.String(), at))
	c.thinking.Reset()
	c.lastFlush = at
}

// MarkComplete flushes pending reasoning and marks the session finished.
func (c *Collector) MarkComplete() {
	c.FlushThinking()
	c.complete = true
}

// Complete reports whether MarkComplete has been called.
func (c *Collector) Complete() bool {
	return c.complete
}

// PendingThinking returns the size of the unflushed reasoning buffer.
func (c *Collector) PendingThinking() int {
	return c.thinking.Len()
}

// Transcript returns the thinking-process view accumulated so far.
func (c *Collector) Transcript() string {
	var b strings.Builder
	b.WriteString("AGENT THINKING PROCESS\n")
	b.WriteString(fmt.Sprintf("session started: %s\n", c.start.Format("2006-01-02 15:04:05")))
	b.WriteString(strings.Repeat("-", 40) + "\n\n")

	if c.transcript.Len() == 0 && c.thinking.Len() == 0 {
		b.WriteString("no events captured yet\n")
		return b.String()
	}

	b.WriteString(c.transcript.String())
	return b.String()
}

// FinalResponse returns the answer body. It is not ready (ok == false) until
// a message boundary has been observed, regardless of how many text chunks
// arrived. Once ready it is idempotent: the concatenation of every text
// chunk in arrival order, or NoResponse if that concatenation is empty.
func (c *Collector) FinalResponse() (string, bool) {
	if !c.messageSeen {
		return "", false
	}

	var b strings.Builder
	for _, te := range c.events {
		if te.Kind == KindText {
			b.WriteString(te.Text)
		}
	}

	response := strings.TrimSpace(b.String())
	if response == "" {
		return NoResponse, true
	}
	return response, true
}

// Errors returns the messages of every error event received so far.
func (c *Collector) Errors() []string {
	var msgs []string
	for _, te := range c.events {
		if te.Kind == KindError {
			msgs = append(msgs, te.Err)
		}
	}
	return msgs
}

// Summary aggregates the session's raw event history.
func (c *Collector) Summary() Summary {
	s := Summary{TotalEvents: len(c.events)}

	invocations := make(map[string]bool)
	names := make(map[string]bool)

	for _, te := range c.events {
		switch te.Kind {
		case KindReasoning:
			s.ReasoningSteps++
		case KindText:
			s.TextChunks++
		case KindLifecycle, KindBoundary:
			s.LifecycleEvents++
		case KindError:
			s.Errors++
			s.ErrorMessages = append(s.ErrorMessages, te.Err)
		case KindToolUse:
			if te.Tool != nil && te.Tool.Name != "" && te.Tool.InvocationID != "" {
				invocations[te.Tool.InvocationID] = true
				names[te.Tool.Name] = true
			}
		}
	}

	s.ToolInvocations = len(invocations)
	for name := range names {
		s.ToolNames = append(s.ToolNames, name)
	}
	sort.Strings(s.ToolNames)

	return s
}

// FormatSummary renders a Summary as display text.
func FormatSummary(s Summary) string {
	var b strings.Builder
	b.WriteString("SESSION SUMMARY\n")
	fmt.Fprintf(&b, "total events:     %d\n", s.TotalEvents)
	fmt.Fprintf(&b, "reasoning steps:  %d\n", s.ReasoningSteps)
	fmt.Fprintf(&b, "tools used:       %d\n", s.ToolInvocations)
	fmt.Fprintf(&b, "text chunks:      %d\n", s.TextChunks)
	fmt.Fprintf(&b, "lifecycle events: %d\n", s.LifecycleEvents)
	fmt.Fprintf(&b, "errors:           %d\n", s.Errors)

	if len(s.ToolNames) > 0 {
		fmt.Fprintf(&b, "tools called:     %s\n", strings.Join(s.ToolNames, ", "))
	}
	for i, msg := range s.ErrorMessages {
		fmt.Fprintf(&b, "error %d: %s\n", i+1, msg)
	}
	return b.String()
}
