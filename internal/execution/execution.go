// ABOUTME: Execution runs one script invocation on a dedicated worker goroutine
// ABOUTME: Streams framed output plus exactly one result/error and a final exit sentinel

package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/finrobot/script-gateway/internal/metrics"
	"github.com/finrobot/script-gateway/internal/script"
)

// eventBuffer is the broker capacity between the worker and the consumer.
// Sends block once the consumer falls this far behind, applying backpressure
// to the script instead of growing an unbounded queue.
const eventBuffer = 256

// Request describes one script invocation.
type Request struct {
	ScriptPath string        `json:"script_path"`
	Params     script.Params `json:"params"`
	Lang       string        `json:"lang"`
}

// Execution is one end-to-end run of a single script, from load to exit.
// It owns one event channel and one worker goroutine; both are torn down
// once the exit sentinel has been delivered. Executions are single-use: a
// retry needs a fresh Execution.
type Execution struct {
	ID string

	registry  *script.Registry
	req       Request
	outputDir string
	logger    *slog.Logger

	events chan script.Event
	done   chan struct{}
}

// New creates an Execution for the given request. Pass nil logger for default.
func New(reg *script.Registry, outputDir string, req Request, logger *slog.Logger) *Execution {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Execution{
		ID:        id,
		registry:  reg,
		req:       req,
		outputDir: outputDir,
		logger:    logger.With("component", "execution", "execution_id", id, "script", req.ScriptPath),
		events:    make(chan script.Event, eventBuffer),
		done:      make(chan struct{}),
	}
}

// Request returns the invocation this execution was created for.
func (e *Execution) Request() Request {
	return e.req
}

// Start launches the worker goroutine. ctx should derive from the server
// lifetime, not the HTTP request: a disconnecting consumer must not cancel
// a script mid-run. Start must be called exactly once.
func (e *Execution) Start(ctx context.Context) {
	go e.run(ctx)
}

// Events returns the ordered event stream: zero or more output events, then
// exactly one result or error, then exactly one exit. The channel is closed
// after the exit sentinel, so ranging over it terminates. The stream is
// one-pass and not restartable.
func (e *Execution) Events() <-chan script.Event {
	return e.events
}

// Wait blocks until the worker goroutine has finished or ctx is cancelled.
// Waiting does not consume events; a caller that stops pulling from Events
// must keep draining (or use history.Recorder, which drains for it) so the
// worker can finish.
func (e *Execution) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the worker body. No fault escapes it: resolution failures, script
// errors, script panics, and panics in the runner's own bookkeeping all end
// in exactly one error event followed by the exit sentinel.
func (e *Execution) run(ctx context.Context) {
	defer close(e.done)
	defer close(e.events)

	start := time.Now()
	status := "ok"
	metrics.ActiveExecutions.Inc()
	defer func() {
		metrics.ActiveExecutions.Dec()
		metrics.ExecutionsTotal.WithLabelValues(status).Inc()
		metrics.ExecutionDuration.Observe(time.Since(start).Seconds())
		e.logger.Info("execution finished", "status", status, "duration", time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			status = "error"
			e.logger.Error("runner panic", "panic", r)
			e.emit(script.Event{Type: script.EventError, Error: renderPanic("execution runner", r)})
		}
		e.emit(script.Event{Type: script.EventExit})
	}()

	result, err := e.invoke(ctx)
	if err != nil {
		status = "error"
		e.logger.Warn("script failed", "error", err)
		e.emit(script.Event{Type: script.EventError, Error: err.Error()})
		return
	}

	// The payload crosses the wire as JSON; a non-serializable return is a
	// script fault, not a stream fault.
	if _, err := json.Marshal(result); err != nil {
		status = "error"
		e.emit(script.Event{
			Type:  script.EventError,
			Error: fmt.Sprintf("script %s returned a non-serializable value: %v", e.req.ScriptPath, err),
		})
		return
	}

	e.emit(script.Event{Type: script.EventResult, Result: result})
}

// invoke resolves and calls the script entry point with framed output
// writers injected. Both framers are flushed, stdout first, on every exit
// path; a panic inside the script is converted to a returned error carrying
// the stack trace.
func (e *Execution) invoke(ctx context.Context) (result any, err error) {
	s, rerr := e.registry.Resolve(e.req.ScriptPath)
	if rerr != nil {
		return nil, rerr
	}

	out := script.NewLineWriter(script.EventStdout, e.emit)
	errw := script.NewLineWriter(script.EventStderr, e.emit)
	env := &script.Env{Stdout: out, Stderr: errw, OutputDir: e.outputDir}

	defer func() {
		out.Flush()
		errw.Flush()
	}()
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%s", renderPanic("script "+e.req.ScriptPath, r))
		}
	}()

	return s.Run(ctx, env, e.req.Params, e.req.Lang)
}

// emit pushes one event to the consumer, blocking when the channel is full.
func (e *Execution) emit(ev script.Event) {
	metrics.EventsEmitted.WithLabelValues(string(ev.Type)).Inc()
	e.events <- ev
}

// renderPanic formats a recovered panic with its stack trace so the client
// sees the origin of the fault, not just the message.
func renderPanic(where string, r any) string {
	return fmt.Sprintf("%s panicked: %v\n%s", where, r, debug.Stack())
}
