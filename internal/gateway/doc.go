// Package gateway orchestrates the script-gateway server components.
//
// # Overview
//
// The gateway package is the central coordinator of the script-gateway
// server. It owns the script registry, the history store, the execution
// recorder, and the HTTP server, and wires them together behind one mux.
//
// # HTTP API
//
// Endpoints live in api.go:
//
//   - GET /api/run-script/stream - Run a script, stream events (SSE)
//   - POST /api/run-script - Run a script, return only the terminal payload
//   - GET /api/scripts - List registered scripts grouped by folder
//   - GET /api/history - Per-script history overview
//   - GET /api/history/{script} - Records for one script, newest first
//   - DELETE /api/history/{script} - Delete one record (?id=) or all
//   - GET /static/ - Files written by scripts to the output directory
//   - GET /health, /health/ready - Liveness and readiness checks
//   - GET /metrics - Prometheus scrape endpoint (when enabled)
//
// # SSE Streaming
//
// Execution events are streamed as Server-Sent Events, each carrying the
// JSON-encoded event:
//
//	event: message
//	data: {"type": "stdout", "text": "processing AAPL"}
//
//	event: message
//	data: {"type": "result", "result": {...}}
//
//	event: message
//	data: {"type": "exit"}
//
// The worker runs under the server lifetime context. A client that
// disconnects mid-stream stops receiving events, but the script runs to
// completion and its history record is still saved.
//
// # Authentication
//
// When auth.jwt_secret is configured, all /api/ routes require a bearer
// token; health, static files, and metrics stay open.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, registry, logger)
//	err = gw.Run(ctx)
//
// Run blocks until ctx is cancelled, then drains in-flight requests for up
// to server.shutdown_timeout before cancelling running script workers.
package gateway
