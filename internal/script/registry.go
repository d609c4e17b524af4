// ABOUTME: Thread-safe allowlist registry resolving logical script paths to entry points
// ABOUTME: Registration happens at startup; request-time resolution is read-only and idempotent

package script

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
)

// ErrNotFound indicates the path does not resolve to a registered script.
var ErrNotFound = errors.New("script not found")

// ErrNoEntryPoint indicates a registered script lacks a run entry point.
var ErrNoEntryPoint = errors.New("script has no entry point")

// ErrAlreadyRegistered indicates a script with the same path is already registered.
var ErrAlreadyRegistered = errors.New("script already registered")

// pathPattern restricts logical paths to folder/name segments of word
// characters. Script paths originate from HTTP requests, so anything else
// (absolute paths, dots, traversal sequences) is rejected before any lookup.
var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)+$`)

// Registry maps allowlisted logical script paths to statically linked entry
// points. It replaces dynamic import-by-string loading: only paths that were
// explicitly registered at startup can ever be resolved, which closes the
// path-traversal surface of the loader boundary.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]*Script
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		scripts: make(map[string]*Script),
		logger:  logger.With("component", "script-registry"),
	}
}

// Register adds a script under its logical path. The path must match the
// folder/name form and must not already be taken.
func (r *Registry) Register(s *Script) error {
	if !pathPattern.MatchString(s.Path) {
		return fmt.Errorf("invalid script path %q", s.Path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scripts[s.Path]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, s.Path)
	}
	r.scripts[s.Path] = s

	r.logger.Debug("script registered", "path", s.Path)
	return nil
}

// Resolve maps a caller-supplied path to its registered script. Paths that
// are malformed or unknown fail with ErrNotFound; a registered script with
// a nil entry point fails with ErrNoEntryPoint. Resolution has no side
// effects, so resolving the same path twice yields the same script.
func (r *Registry) Resolve(path string) (*Script, error) {
	if !pathPattern.MatchString(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	r.mu.RLock()
	s, ok := r.scripts[path]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if s.Run == nil {
		return nil, fmt.Errorf("%w: %s missing run(params, lang)", ErrNoEntryPoint, path)
	}
	return s, nil
}

// List returns all registered scripts sorted by folder, then name.
func (r *Registry) List() []*Script {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Script, 0, len(r.scripts))
	for _, s := range r.scripts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Folder() != out[j].Folder() {
			return out[i].Folder() < out[j].Folder()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
