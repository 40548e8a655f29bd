// Package stream implements the streaming-event collector: it consumes the
// raw event sequence produced by the agent gateway and reassembles it into a
// readable thinking-process transcript, a single final response, and a run
// summary. Reasoning text is buffered into large coherent blocks; the final
// response stays hidden until the message boundary fires.
package stream

// Kind identifies one of the recognized stream event shapes. The set is
// closed: the collector handles every kind exhaustively.
type Kind string

const (
	KindReasoning Kind = "reasoning"
	KindToolUse   Kind = "tool_use"
	KindText      Kind = "text"
	KindBoundary  Kind = "message_boundary"
	KindLifecycle Kind = "lifecycle"
	KindError     Kind = "error"
)

// Phase names a lifecycle marker within an agent run.
type Phase string

const (
	PhaseInit      Phase = "init"
	PhaseStart     Phase = "start"
	PhaseNewCycle  Phase = "new_cycle"
	PhaseForceStop Phase = "force_stop"
)

// ToolCall describes a tool invocation surfaced by the gateway. A single
// call may emit several incremental events carrying the same InvocationID.
type ToolCall struct {
	Name         string            `json:"name"`
	Input        map[string]string `json:"input,omitempty"`
	InvocationID string            `json:"invocation_id"`
}

// Event is a tagged union over the recognized gateway event shapes. Kind
// selects which payload fields are meaningful.
type Event struct {
	Kind Kind `json:"kind"`

	// Text carries the payload for reasoning and text-output chunks.
	Text string `json:"text,omitempty"`

	// Tool is set for KindToolUse events.
	Tool *ToolCall `json:"tool,omitempty"`

	// Phase and StopReason are set for KindLifecycle events.
	Phase      Phase  `json:"phase,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`

	// Err is set for KindError events.
	Err string `json:"error,omitempty"`
}

// Reasoning returns a reasoning-text chunk event.
func Reasoning(text string) Event {
	return Event{Kind: KindReasoning, Text: text}
}

// TextChunk returns a text-output chunk event carrying part of the answer body.
func TextChunk(text string) Event {
	return Event{Kind: KindText, Text: text}
}

// ToolUse returns a tool-invocation event.
func ToolUse(name string, input map[string]string, invocationID string) Event {
	return Event{Kind: KindToolUse, Tool: &ToolCall{Name: name, Input: input, InvocationID: invocationID}}
}

// Boundary returns the message-completion boundary marker.
func Boundary() Event {
	return Event{Kind: KindBoundary}
}

// Lifecycle returns an informational lifecycle event.
func Lifecycle(phase Phase) Event {
	return Event{Kind: KindLifecycle, Phase: phase}
}

// ForceStop returns a force-stop lifecycle event with a reason.
func ForceStop(reason string) Event {
	return Event{Kind: KindLifecycle, Phase: PhaseForceStop, StopReason: reason}
}

// ErrorEvent returns an error event carrying the given message.
func ErrorEvent(msg string) Event {
	return Event{Kind: KindError, Err: msg}
}
