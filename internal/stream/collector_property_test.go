package stream

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Verifies that the final response is always the concatenation of every
// text chunk in arrival order, and stays unavailable until the boundary is
// observed, for arbitrary chunk sequences around the boundary.
func TestPropertyFinalResponsePreservesChunkOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := NewCollector()

		numBefore := rapid.IntRange(0, 5).Draw(rt, "numBefore")
		numAfter := rapid.IntRange(0, 5).Draw(rt, "numAfter")

		var want strings.Builder
		for i := 0; i < numBefore; i++ {
			chunk := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, fmt.Sprintf("before_%d", i))
			want.WriteString(chunk)
			c.AddEvent(TextChunk(chunk))
		}

		if _, ok := c.FinalResponse(); ok {
			rt.Fatal("final response ready before boundary")
		}

		c.AddEvent(Boundary())

		for i := 0; i < numAfter; i++ {
			chunk := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, fmt.Sprintf("after_%d", i))
			want.WriteString(chunk)
			c.AddEvent(TextChunk(chunk))
		}

		resp, ok := c.FinalResponse()
		if !ok {
			rt.Fatal("final response not ready after boundary")
		}

		expected := strings.TrimSpace(want.String())
		if expected == "" {
			expected = NoResponse
		}
		if resp != expected {
			rt.Errorf("final response = %q, want %q", resp, expected)
		}
	})
}

// Verifies that the summary counts each distinct invocation id exactly
// once, however many incremental events share the same id.
func TestPropertyDistinctToolInvocationCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := NewCollector()

		numIDs := rapid.IntRange(1, 8).Draw(rt, "numIDs")
		for i := 0; i < numIDs; i++ {
			id := fmt.Sprintf("inv-%d", i)
			repeats := rapid.IntRange(1, 4).Draw(rt, fmt.Sprintf("repeats_%d", i))
			for j := 0; j < repeats; j++ {
				c.AddEvent(ToolUse("query_order_by_id", map[string]string{"order_id": "LC100001"}, id))
			}
		}

		if got := c.Summary().ToolInvocations; got != numIDs {
			rt.Errorf("tool invocations = %d, want %d", got, numIDs)
		}
	})
}

// Verifies that no reasoning text is ever lost: after MarkComplete the
// transcript contains every chunk regardless of whether thresholds fired.
func TestPropertyReasoningNeverLost(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := NewCollector()

		numChunks := rapid.IntRange(1, 10).Draw(rt, "numChunks")
		chunks := make([]string, numChunks)
		for i := range chunks {
			chunks[i] = rapid.StringMatching(`[a-z]{5,300}`).Draw(rt, fmt.Sprintf("chunk_%d", i))
			c.AddEvent(Reasoning(chunks[i]))
		}

		c.MarkComplete()

		// A chunk is appended to the buffer whole before any flush check, so
		// it always lands intact inside one flushed block.
		transcript := c.Transcript()
		for _, chunk := range chunks {
			if !strings.Contains(transcript, chunk) {
				rt.Errorf("transcript lost reasoning chunk %q", chunk)
			}
		}
	})
}
