package stream

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeClock lets tests control the collector's notion of time.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time {
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func TestFinalResponseNotReadyBeforeBoundary(t *testing.T) {
	c := NewCollector()

	c.AddEvent(TextChunk("partial "))
	c.AddEvent(TextChunk("answer"))

	if resp, ok := c.FinalResponse(); ok {
		t.Errorf("final response ready before boundary, got %q", resp)
	}
}

func TestFinalResponseConcatenatesTextChunks(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Reasoning("a"))
	c.AddEvent(Reasoning("b"))
	c.AddEvent(Boundary())
	c.AddEvent(TextChunk("R1"))
	c.AddEvent(TextChunk("R2"))

	resp, ok := c.FinalResponse()
	if !ok {
		t.Fatal("final response not ready after boundary")
	}
	if resp != "R1R2" {
		t.Errorf("final response = %q, want %q", resp, "R1R2")
	}

	// Idempotent: repeated calls return the same result.
	again, ok := c.FinalResponse()
	if !ok || again != resp {
		t.Errorf("repeated call = (%q, %v), want (%q, true)", again, ok, resp)
	}
}

func TestFinalResponseSentinelWhenEmpty(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Reasoning("only thinking"))
	c.AddEvent(Boundary())

	resp, ok := c.FinalResponse()
	if !ok {
		t.Fatal("final response not ready after boundary")
	}
	if resp != NoResponse {
		t.Errorf("final response = %q, want sentinel", resp)
	}
}

func TestThinkingFlushAtSizeCap(t *testing.T) {
	clock := newFakeClock()
	c := newCollector(clock.now)

	// 1999 characters: below the cap, nothing flushes.
	c.AddEvent(Reasoning(strings.Repeat("x", 1999)))
	if got := c.Transcript(); strings.Contains(got, "THINKING:") {
		t.Error("buffer flushed below the size cap")
	}

	// One more character reaches exactly 2000 and flushes immediately.
	c.AddEvent(Reasoning("x"))
	if got := c.Transcript(); !strings.Contains(got, "THINKING:") {
		t.Error("buffer did not flush at the size cap")
	}
	if c.PendingThinking() != 0 {
		t.Errorf("pending thinking = %d after flush, want 0", c.PendingThinking())
	}
}

func TestThinkingFlushAfterIntervalWithMinimumSize(t *testing.T) {
	clock := newFakeClock()
	c := newCollector(clock.now)

	c.AddEvent(Reasoning(strings.Repeat("y", 501)))
	if strings.Contains(c.Transcript(), "THINKING:") {
		t.Fatal("flushed before the interval elapsed")
	}

	clock.advance(16 * time.Second)
	if !c.CheckFlush() {
		t.Error("expected flush after interval with >500 chars buffered")
	}
	if !strings.Contains(c.Transcript(), "THINKING:") {
		t.Error("transcript missing flushed thinking block")
	}
}

func TestThinkingNoFlushBelowMinimumSize(t *testing.T) {
	clock := newFakeClock()
	c := newCollector(clock.now)

	c.AddEvent(Reasoning(strings.Repeat("z", 400)))
	clock.advance(20 * time.Second)

	if c.CheckFlush() {
		t.Error("flushed with only 400 chars buffered")
	}
	if strings.Contains(c.Transcript(), "THINKING:") {
		t.Error("transcript contains thinking block below minimum size")
	}

	// Meeting the size minimum afterwards allows the flush.
	c.AddEvent(Reasoning(strings.Repeat("z", 101)))
	if !strings.Contains(c.Transcript(), "THINKING:") {
		t.Error("buffer did not flush once both thresholds were met")
	}
}

func TestToolCallNeverDelayedByReasoningBuffer(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Reasoning("x"))
	c.AddEvent(ToolUse("query_order_by_id", map[string]string{"order_id": "LC100001"}, "inv-1"))
	c.AddEvent(Reasoning("more thinking"))

	got := c.Transcript()
	if !strings.Contains(got, "TOOL CALL: query_order_by_id") {
		t.Fatal("tool call missing from transcript")
	}
	if strings.Contains(got, "THINKING:") {
		t.Error("reasoning flushed before thresholds were met")
	}
}

func TestBoundaryFlushesThinkingFirst(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Reasoning("pending thought"))
	c.AddEvent(Boundary())

	got := c.Transcript()
	thinkingIdx := strings.Index(got, "THINKING")
	boundaryIdx := strings.Index(got, "MESSAGE: response complete")

	if thinkingIdx == -1 {
		t.Fatal("boundary did not force a thinking flush")
	}
	if boundaryIdx == -1 {
		t.Fatal("boundary marker missing from transcript")
	}
	if thinkingIdx > boundaryIdx {
		t.Error("thinking text appears after the boundary marker")
	}
}

func TestErrorSurfacesImmediatelyWithoutCompleting(t *testing.T) {
	c := NewCollector()

	c.AddEvent(ErrorEvent("gateway timed out"))

	if !strings.Contains(c.Transcript(), "ERROR: gateway timed out") {
		t.Error("error not surfaced in transcript")
	}
	if _, ok := c.FinalResponse(); ok {
		t.Error("error event made the final response ready")
	}
	if c.Complete() {
		t.Error("error event marked the session complete")
	}
}

func TestSummaryDeduplicatesToolInvocations(t *testing.T) {
	c := NewCollector()

	// One tool call emitting three incremental updates under the same id.
	for i := 0; i < 3; i++ {
		c.AddEvent(ToolUse("query_logistics_status", map[string]string{"order_id": "LC100002"}, "inv-7"))
	}
	c.AddEvent(ToolUse("query_customer_by_email", nil, "inv-8"))

	s := c.Summary()
	if s.ToolInvocations != 2 {
		t.Errorf("tool invocations = %d, want 2", s.ToolInvocations)
	}
	want := []string{"query_customer_by_email", "query_logistics_status"}
	if len(s.ToolNames) != len(want) {
		t.Fatalf("tool names = %v, want %v", s.ToolNames, want)
	}
	for i, name := range want {
		if s.ToolNames[i] != name {
			t.Errorf("tool name[%d] = %q, want %q", i, s.ToolNames[i], name)
		}
	}
}

func TestSummaryCounts(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Lifecycle(PhaseInit))
	c.AddEvent(Lifecycle(PhaseStart))
	c.AddEvent(Reasoning("a"))
	c.AddEvent(Reasoning("b"))
	c.AddEvent(TextChunk("answer"))
	c.AddEvent(Boundary())
	c.AddEvent(ErrorEvent("boom"))

	s := c.Summary()
	if s.TotalEvents != 7 {
		t.Errorf("total events = %d, want 7", s.TotalEvents)
	}
	if s.ReasoningSteps != 2 {
		t.Errorf("reasoning steps = %d, want 2", s.ReasoningSteps)
	}
	if s.TextChunks != 1 {
		t.Errorf("text chunks = %d, want 1", s.TextChunks)
	}
	if s.LifecycleEvents != 3 {
		t.Errorf("lifecycle events = %d, want 3", s.LifecycleEvents)
	}
	if s.Errors != 1 || len(s.ErrorMessages) != 1 || s.ErrorMessages[0] != "boom" {
		t.Errorf("errors = %d %v, want 1 [boom]", s.Errors, s.ErrorMessages)
	}
}

func TestMarkCompleteFlushesRemainingThinking(t *testing.T) {
	c := NewCollector()

	c.AddEvent(Reasoning("tail thought"))
	c.MarkComplete()

	if !c.Complete() {
		t.Error("session not marked complete")
	}
	if !strings.Contains(c.Transcript(), "tail thought") {
		t.Error("teardown lost buffered reasoning text")
	}
}

func TestTranscriptEmptySession(t *testing.T) {
	c := NewCollector()
	if got := c.Transcript(); !strings.Contains(got, "no events captured yet") {
		t.Errorf("empty transcript = %q", got)
	}
}

func TestForceStopFormatting(t *testing.T) {
	c := NewCollector()
	c.AddEvent(ForceStop("token limit reached"))

	if got := c.Transcript(); !strings.Contains(got, "STOPPED: processing stopped - token limit reached") {
		t.Errorf("force-stop missing from transcript:\n%s", got)
	}
}

func TestTextChunksSuppressedFromTranscript(t *testing.T) {
	c := NewCollector()

	for i := 0; i < 5; i++ {
		c.AddEvent(TextChunk(fmt.Sprintf("chunk-%d ", i)))
	}
	c.AddEvent(Boundary())

	if strings.Contains(c.Transcript(), "chunk-") {
		t.Error("answer text leaked into the transcript")
	}

	resp, ok := c.FinalResponse()
	if !ok || !strings.Contains(resp, "chunk-4") {
		t.Errorf("final response = (%q, %v), want all chunks retained", resp, ok)
	}
}
