// ABOUTME: Recorder tees an execution's event stream into the history store
// ABOUTME: Forwards events unchanged and persists one record once the stream ends

package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/finrobot/script-gateway/internal/execution"
	"github.com/finrobot/script-gateway/internal/script"
	"github.com/finrobot/script-gateway/internal/store"
)

// Recorder wraps execution event streams and persists a history record for
// each finished execution. Pass a nil store to disable persistence while
// keeping the draining behavior.
type Recorder struct {
	store  store.Store
	logger *slog.Logger
}

// NewRecorder creates a recorder. Pass nil logger for default.
func NewRecorder(s store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  s,
		logger: logger.With("component", "history"),
	}
}

// Record returns a channel that forwards every event from exec in order and
// closes when the source closes. The terminal result/error is captured along
// the way and saved once the exit sentinel has passed through.
//
// If ctx (the consumer's request context) is cancelled mid-stream, delivery
// stops but the source keeps being drained so the worker runs to completion
// and the record is still saved. The worker is never cancelled by a
// disappearing consumer.
func (r *Recorder) Record(ctx context.Context, exec *execution.Execution) <-chan script.Event {
	out := make(chan script.Event)

	go func() {
		defer close(out)

		req := exec.Request()
		rec := &store.ExecutionRecord{
			ID:        exec.ID,
			Script:    req.ScriptPath,
			Params:    req.Params,
			Lang:      req.Lang,
			CreatedAt: time.Now().UTC(),
		}

		delivering := true
		for ev := range exec.Events() {
			switch ev.Type {
			case script.EventResult:
				rec.Status = store.StatusOK
				rec.Result = ev.Result
			case script.EventError:
				rec.Status = store.StatusError
				rec.Error = ev.Error
			}

			if delivering {
				select {
				case out <- ev:
				case <-ctx.Done():
					delivering = false
					r.logger.Debug("consumer gone, draining to completion",
						"execution_id", exec.ID, "script", req.ScriptPath)
				}
			}
		}
		rec.FinishedAt = time.Now().UTC()

		if r.store == nil {
			return
		}
		// Saving uses its own context: the consumer's may already be dead.
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.SaveExecution(saveCtx, rec); err != nil {
			r.logger.Error("failed to save execution record",
				"error", err, "execution_id", exec.ID, "script", req.ScriptPath)
		}
	}()

	return out
}
