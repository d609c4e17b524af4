// ABOUTME: Tests for the allowlist script registry
// ABOUTME: Covers resolution, contract violations, and the path-traversal boundary

package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRun(ctx context.Context, env *Env, params Params, lang string) (any, error) {
	return map[string]any{"result": "ok"}, nil
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(&Script{Path: "demo/ok", Run: noopRun}))

	s, err := reg.Resolve("demo/ok")
	require.NoError(t, err)
	assert.Equal(t, "demo/ok", s.Path)
	assert.Equal(t, "demo", s.Folder())
	assert.Equal(t, "ok", s.Name())
}

func TestRegistry_ResolveIsIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(&Script{Path: "demo/ok", Run: noopRun}))

	first, err := reg.Resolve("demo/ok")
	require.NoError(t, err)
	second, err := reg.Resolve("demo/ok")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestRegistry_UnknownPath(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.Resolve("nope/nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nope/nope")
}

func TestRegistry_RejectsTraversalPaths(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(&Script{Path: "demo/ok", Run: noopRun}))

	paths := []string{
		"../../etc/passwd",
		"demo/../demo/ok",
		"/etc/passwd",
		"demo/ok/",
		"demo//ok",
		"demo/ok\x00",
		"demo/ok.py",
		"ok",
		"",
	}
	for _, p := range paths {
		_, err := reg.Resolve(p)
		assert.ErrorIs(t, err, ErrNotFound, "path %q must not resolve", p)
	}
}

func TestRegistry_MissingEntryPoint(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(&Script{Path: "demo/broken"}))

	_, err := reg.Resolve("demo/broken")
	require.ErrorIs(t, err, ErrNoEntryPoint)
	assert.Contains(t, err.Error(), "demo/broken")
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, reg.Register(&Script{Path: "demo/ok", Run: noopRun}))

	err := reg.Register(&Script{Path: "demo/ok", Run: noopRun})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_RegisterRejectsInvalidPath(t *testing.T) {
	reg := NewRegistry(nil)

	assert.Error(t, reg.Register(&Script{Path: "no-folder", Run: noopRun}))
	assert.Error(t, reg.Register(&Script{Path: "../escape", Run: noopRun}))
}

func TestRegistry_ListSortedByFolderThenName(t *testing.T) {
	reg := NewRegistry(nil)
	for _, p := range []string{"beginner/zeta", "advanced/alpha", "beginner/alpha"} {
		require.NoError(t, reg.Register(&Script{Path: p, Run: noopRun}))
	}

	var paths []string
	for _, s := range reg.List() {
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{"advanced/alpha", "beginner/alpha", "beginner/zeta"}, paths)
}

func TestParams_String(t *testing.T) {
	p := Params{"company": "apple", "days": float64(30), "empty": ""}

	assert.Equal(t, "apple", p.String("company", "msft"))
	assert.Equal(t, "30", p.String("days", "7"))
	assert.Equal(t, "dflt", p.String("empty", "dflt"))
	assert.Equal(t, "dflt", p.String("missing", "dflt"))
}
