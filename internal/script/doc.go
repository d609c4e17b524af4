// Package script defines the script contract, the registry, and event framing.
//
// # Overview
//
// A script is a named unit of analysis code registered under a stable
// folder/name path. The package owns the three building blocks everything
// else composes: the Script contract, the Registry that resolves request
// paths to registered scripts, and the Event/LineWriter pair that turns raw
// output writes into an ordered stream of typed events.
//
// # Script Contract
//
// Every script implements one entry point:
//
//	func(ctx context.Context, env *Env, params Params, lang string) (any, error)
//
// The Env carries the injected output sinks and the shared output directory;
// params is the request's key/value mapping; lang is a language hint the
// script may ignore. The returned value must be JSON-serializable.
//
// # Registry
//
// Scripts register at startup under validated folder/name paths:
//
//	reg := script.NewRegistry(logger)
//	reg.Register(&script.Script{Path: "beginner/sma_strategy", Run: ...})
//	s, err := reg.Resolve("beginner/sma_strategy")
//
// Resolve never touches the filesystem. Any path that does not match a
// registered entry, including traversal attempts like "../../etc/passwd",
// fails with ErrNotFound.
//
// # Events
//
// Event is the tagged union carried on every stream:
//
//	{"type": "stdout", "text": "..."}
//	{"type": "stderr", "text": "..."}
//	{"type": "result", "result": ...}
//	{"type": "error",  "error": "..."}
//	{"type": "exit"}
//
// # Line Framing
//
// LineWriter is an io.Writer that buffers partial writes and emits one
// output event per completed line. Blank lines are suppressed; Flush emits
// any trailing remainder without a newline. One writer per stream per
// execution; writers are not safe for concurrent use.
package script
