// ABOUTME: Script contract and parameter metadata for registered scripts
// ABOUTME: Defines RunFunc, the Env handed to scripts, and per-script param specs

package script

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Params carries the caller-supplied parameters for one invocation.
type Params map[string]any

// String returns the named parameter as a string, falling back to def when
// the key is absent or empty. Non-string values are rendered with %v, since
// params arrive from JSON and may decode as numbers.
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return def
	}
	return s
}

// Env is the execution environment handed to a script's entry point.
// Stdout and Stderr are captured line by line and streamed to the caller;
// OutputDir is where the script may drop report or chart files, served
// back to clients under /static/.
type Env struct {
	Stdout    io.Writer
	Stderr    io.Writer
	OutputDir string
}

// Printf writes formatted text to the captured stdout stream.
func (e *Env) Printf(format string, args ...any) {
	fmt.Fprintf(e.Stdout, format, args...)
}

// Errorf writes formatted text to the captured stderr stream.
func (e *Env) Errorf(format string, args ...any) {
	fmt.Fprintf(e.Stderr, format, args...)
}

// RunFunc is the entry point every registered script must provide. The
// return value must be JSON-serializable; by convention it carries a
// "result" field with the messages or report payload. ctx derives from the
// server lifetime, not the HTTP request: a disconnecting consumer never
// cancels a running script, server shutdown does.
type RunFunc func(ctx context.Context, env *Env, params Params, lang string) (any, error)

// ParamSpec describes one parameter a script accepts, surfaced through the
// script-listing API so frontends can render input forms.
type ParamSpec struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // "string" or "date"
	Default string `json:"defaultValue"`
}

// Script is one registered entry in the Registry.
type Script struct {
	// Path is the slash-delimited logical path, e.g. "beginner/sma_strategy".
	Path        string
	Description string
	Params      []ParamSpec
	Run         RunFunc
}

// Folder returns the leading path segment, used for grouping in listings.
func (s *Script) Folder() string {
	if i := strings.IndexByte(s.Path, '/'); i >= 0 {
		return s.Path[:i]
	}
	return ""
}

// Name returns the final path segment.
func (s *Script) Name() string {
	if i := strings.LastIndexByte(s.Path, '/'); i >= 0 {
		return s.Path[i+1:]
	}
	return s.Path
}
