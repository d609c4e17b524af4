// ABOUTME: Tests for LineWriter framing of partial writes into line events
// ABOUTME: Covers blank-line suppression, coalescing, and flush of trailing partials

package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectWriter(kind EventType) (*LineWriter, *[]Event) {
	events := &[]Event{}
	w := NewLineWriter(kind, func(ev Event) {
		*events = append(*events, ev)
	})
	return w, events
}

func TestLineWriter_EmitsCompletedLines(t *testing.T) {
	w, events := collectWriter(EventStdout)

	_, err := w.WriteString("hello\nworld\n")
	require.NoError(t, err)

	require.Len(t, *events, 2)
	assert.Equal(t, Event{Type: EventStdout, Text: "hello"}, (*events)[0])
	assert.Equal(t, Event{Type: EventStdout, Text: "world"}, (*events)[1])
}

func TestLineWriter_CoalescesPartialWrites(t *testing.T) {
	// Writing "a" then "b\n" is one logical line "ab", not two events.
	w, events := collectWriter(EventStdout)

	w.WriteString("a")
	require.Empty(t, *events)

	w.WriteString("b\n")
	require.Len(t, *events, 1)
	assert.Equal(t, "ab", (*events)[0].Text)
}

func TestLineWriter_SuppressesBlankLines(t *testing.T) {
	w, events := collectWriter(EventStdout)

	w.WriteString("\n   \n\t\nreal\n\n")

	require.Len(t, *events, 1)
	assert.Equal(t, "real", (*events)[0].Text)
}

func TestLineWriter_FlushEmitsTrimmedRemainder(t *testing.T) {
	w, events := collectWriter(EventStderr)

	w.WriteString("partial line  ")
	require.Empty(t, *events)

	w.Flush()
	require.Len(t, *events, 1)
	assert.Equal(t, Event{Type: EventStderr, Text: "partial line"}, (*events)[0])

	// Buffer is cleared; a second flush emits nothing.
	w.Flush()
	assert.Len(t, *events, 1)
}

func TestLineWriter_FlushOfBlankRemainderEmitsNothing(t *testing.T) {
	w, events := collectWriter(EventStdout)

	w.WriteString("   \t ")
	w.Flush()

	assert.Empty(t, *events)
}

func TestLineWriter_StreamKindTagging(t *testing.T) {
	out, outEvents := collectWriter(EventStdout)
	errw, errEvents := collectWriter(EventStderr)

	out.WriteString("to stdout\n")
	errw.WriteString("to stderr\n")

	require.Len(t, *outEvents, 1)
	require.Len(t, *errEvents, 1)
	assert.Equal(t, EventStdout, (*outEvents)[0].Type)
	assert.Equal(t, EventStderr, (*errEvents)[0].Type)
}

func TestLineWriter_ReconstructionRoundTrip(t *testing.T) {
	// Concatenating delivered lines with newlines reinserted reproduces the
	// original output modulo blank-line suppression.
	input := "first\nsecond line\n\nthird\ntail"
	w, events := collectWriter(EventStdout)

	// Feed in awkward chunks to exercise the buffer.
	for _, chunk := range []string{"fir", "st\nsec", "ond line\n\nthi", "rd\ntail"} {
		w.WriteString(chunk)
	}
	w.Flush()

	var lines []string
	for _, ev := range *events {
		lines = append(lines, ev.Text)
	}

	var want []string
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			want = append(want, line)
		}
	}
	assert.Equal(t, want, lines)
}
