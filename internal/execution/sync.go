// ABOUTME: Non-streaming execution variant for simple request/response clients
// ABOUTME: Same loader and runner semantics, terminal mapping returned directly

package execution

import (
	"context"
	"log/slog"

	"github.com/finrobot/script-gateway/internal/script"
)

// Run executes one script synchronously and returns the terminal mapping:
// {"result": ...} on success or {"error": ...} on failure. Captured output
// lines are not streamed; they are logged at debug level. The same
// exactly-one-terminal guarantee as the streaming path applies.
func Run(ctx context.Context, reg *script.Registry, outputDir string, req Request, logger *slog.Logger) map[string]any {
	e := New(reg, outputDir, req, logger)
	e.Start(ctx)

	terminal := map[string]any{"error": "execution produced no terminal event"}
	for ev := range e.Events() {
		switch ev.Type {
		case script.EventStdout, script.EventStderr:
			e.logger.Debug("script output", "stream", string(ev.Type), "text", ev.Text)
		case script.EventResult:
			terminal = map[string]any{"result": ev.Result}
		case script.EventError:
			terminal = map[string]any{"error": ev.Error}
		}
	}
	return terminal
}
