// ABOUTME: Event types for the script execution stream
// ABOUTME: Tagged union delivered to SSE consumers, matching the wire format clients decode

package script

// EventType identifies the variant of a stream Event.
type EventType string

const (
	EventStdout EventType = "stdout"
	EventStderr EventType = "stderr"
	EventResult EventType = "result"
	EventError  EventType = "error"
	EventExit   EventType = "exit"
)

// Event is one unit in an execution's output stream. Exactly one of
// Result/Error is delivered per execution, followed by a single Exit
// sentinel; Output events (stdout/stderr) may precede them zero or more
// times in the order the script produced them.
type Event struct {
	Type   EventType `json:"type"`
	Text   string    `json:"text,omitempty"`
	Result any       `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// IsOutput reports whether the event carries a captured output line.
func (e Event) IsOutput() bool {
	return e.Type == EventStdout || e.Type == EventStderr
}

// IsTerminal reports whether the event is the result or error of an execution.
func (e Event) IsTerminal() bool {
	return e.Type == EventResult || e.Type == EventError
}
