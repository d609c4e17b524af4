// ABOUTME: LineWriter frames partial text writes into per-line output events
// ABOUTME: Blank lines are suppressed; a trailing partial line is flushed on close

package script

import "strings"

// LineWriter is an io.Writer that buffers arbitrary writes and emits one
// Output event per completed line, as soon as the newline arrives. Lines
// that are empty after trimming are suppressed. A partial line left in the
// buffer is emitted (trimmed) by Flush, which must be called once when the
// execution ends.
//
// LineWriter is not safe for concurrent use; each execution wires one
// writer per stream into its single worker goroutine.
type LineWriter struct {
	kind EventType
	emit func(Event)
	buf  strings.Builder
}

// NewLineWriter returns a framer for the given stream kind (EventStdout or
// EventStderr) that pushes completed lines through emit.
func NewLineWriter(kind EventType, emit func(Event)) *LineWriter {
	return &LineWriter{kind: kind, emit: emit}
}

// Write appends p to the buffer and emits an event for every completed line.
// It never fails; the byte count returned is always len(p).
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		s := w.buf.String()
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		line, rest := s[:i], s[i+1:]
		w.buf.Reset()
		w.buf.WriteString(rest)
		if strings.TrimSpace(line) != "" {
			w.emit(Event{Type: w.kind, Text: line})
		}
	}
	return len(p), nil
}

// WriteString is a convenience wrapper around Write.
func (w *LineWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush emits the buffered remainder as one final event if it is non-blank,
// then clears the buffer.
func (w *LineWriter) Flush() {
	if s := strings.TrimSpace(w.buf.String()); s != "" {
		w.emit(Event{Type: w.kind, Text: s})
	}
	w.buf.Reset()
}
