// Package execution runs scripts on worker goroutines and streams their events.
//
// # Overview
//
// An Execution is one end-to-end run of a single script. The worker
// goroutine resolves the script, injects framed output writers, invokes the
// entry point, and pushes events through a bounded channel to exactly one
// consumer.
//
// # Event Protocol
//
// Every stream follows the same grammar, no matter how the script ends:
//
//	(stdout | stderr)* (result | error) exit
//
// Resolution failures, returned errors, script panics, and panics in the
// runner's own bookkeeping all collapse into a single error event; the exit
// sentinel is emitted last on every path and the channel is closed after it.
//
// # Usage
//
//	exec := execution.New(registry, outputDir, req, logger)
//	exec.Start(serverCtx)
//	for ev := range exec.Events() {
//	    // deliver ev
//	}
//
// Start takes the server-lifetime context rather than the request context:
// a consumer that disappears must not cancel a script mid-run. The bounded
// channel applies backpressure to chatty scripts; the consumer (or a
// draining wrapper like history.Recorder) must keep pulling until the
// channel closes.
//
// Run is the non-streaming variant: same runner, but it drains the stream
// itself and returns only the terminal {"result": ...} or {"error": ...}
// mapping.
package execution
