package stream

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// formatEvent renders one event as a transcript line. Text chunks return the
// empty string: the answer body is never shown in the transcript.
func formatEvent(e Event, at time.Time) string {
	ts := at.Format("15:04:05")

	switch e.Kind {
	case KindError:
		return fmt.Sprintf("[%s] ERROR: %s\n\n", ts, e.Err)

	case KindToolUse:
		return formatToolCall(e.Tool, ts)

	case KindBoundary:
		return fmt.Sprintf("[%s] MESSAGE: response complete\n\n", ts)

	case KindLifecycle:
		switch e.Phase {
		case PhaseInit:
			return fmt.Sprintf("[%s] INITIALIZING: starting agent processing\n\n", ts)
		case PhaseStart:
			return fmt.Sprintf("[%s] STARTED: agent is processing the request\n\n", ts)
		case PhaseNewCycle:
			return fmt.Sprintf("[%s] NEW CYCLE: beginning analysis cycle\n\n", ts)
		case PhaseForceStop:
			reason := e.StopReason
			if reason == "" {
				reason = "unknown reason"
			}
			return fmt.Sprintf("[%s] STOPPED: processing stopped - %s\n\n", ts, reason)
		}
		return fmt.Sprintf("[%s] EVENT: lifecycle %s\n\n", ts, e.Phase)

	case KindText, KindReasoning:
		// Text is suppressed; reasoning goes through the buffer, not here.
		return ""
	}
	return ""
}

// formatToolCall renders a tool invocation with its parameters in sorted key
// order so transcripts are deterministic.
func formatToolCall(tc *ToolCall, ts string) string {
	if tc == nil {
		return ""
	}

	name := tc.Name
	if name == "" {
		name = "unknown tool"
	}

	var params string
	if len(tc.Input) > 0 {
		keys := make([]string, 0, len(tc.Input))
		for k := range tc.Input {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s='%s'", k, tc.Input[k]))
		}
		params = "\n  parameters: " + strings.Join(pairs, ", ")
	}

	id := tc.InvocationID
	if len(id) > 8 {
		id = id[:8] + "..."
	}

	return fmt.Sprintf("[%s] TOOL CALL: %s%s\n  invocation: %s\n\n", ts, name, params, id)
}

// formatThinking renders a flushed reasoning block.
func formatThinking(text string, at time.Time) string {
	return fmt.Sprintf("[%s] THINKING:\n%s\n\n", at.Format("15:04:05"), text)
}
