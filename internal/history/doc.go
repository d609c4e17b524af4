// Package history records finished executions while forwarding their streams.
//
// Recorder wraps an execution's event channel: events pass through unchanged
// and in order, the terminal result or error is captured along the way, and
// one record is saved to the store once the exit sentinel has passed. If the
// consumer's context dies mid-stream the recorder keeps draining the source
// so the worker finishes and the record is still written.
package history
