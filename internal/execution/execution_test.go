// ABOUTME: Tests for the execution runner, event ordering, and terminal guarantees
// ABOUTME: Covers the success, fault, and not-found flows plus cross-execution isolation

package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrobot/script-gateway/internal/script"
)

func testRegistry(t *testing.T) *script.Registry {
	t.Helper()
	reg := script.NewRegistry(nil)

	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/ok",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			env.Printf("hello\n")
			return map[string]any{"x": 1}, nil
		},
	}))
	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/boom",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			env.Printf("start\n")
			return nil, errors.New("bad input")
		},
	}))
	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/panic",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			env.Printf("before panic\n")
			panic("kaboom")
		},
	}))
	return reg
}

func collect(t *testing.T, e *Execution) []script.Event {
	t.Helper()
	var events []script.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-e.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", events)
		}
	}
}

func TestExecution_SuccessStream(t *testing.T) {
	e := New(testRegistry(t), "", Request{ScriptPath: "demo/ok"}, nil)
	e.Start(context.Background())

	events := collect(t, e)

	require.Len(t, events, 3)
	assert.Equal(t, script.Event{Type: script.EventStdout, Text: "hello"}, events[0])
	assert.Equal(t, script.EventResult, events[1].Type)
	assert.Equal(t, map[string]any{"x": 1}, events[1].Result)
	assert.Equal(t, script.EventExit, events[2].Type)
}

func TestExecution_ScriptFaultStream(t *testing.T) {
	e := New(testRegistry(t), "", Request{ScriptPath: "demo/boom"}, nil)
	e.Start(context.Background())

	events := collect(t, e)

	require.Len(t, events, 3)
	assert.Equal(t, script.Event{Type: script.EventStdout, Text: "start"}, events[0])
	assert.Equal(t, script.EventError, events[1].Type)
	assert.Contains(t, events[1].Error, "bad input")
	assert.Equal(t, script.EventExit, events[2].Type)
}

func TestExecution_UnknownScript(t *testing.T) {
	e := New(testRegistry(t), "", Request{ScriptPath: "nope/nope"}, nil)
	e.Start(context.Background())

	events := collect(t, e)

	require.Len(t, events, 2)
	assert.Equal(t, script.EventError, events[0].Type)
	assert.Contains(t, events[0].Error, "nope/nope")
	assert.Equal(t, script.EventExit, events[1].Type)
}

func TestExecution_PanicBecomesErrorWithTrace(t *testing.T) {
	e := New(testRegistry(t), "", Request{ScriptPath: "demo/panic"}, nil)
	e.Start(context.Background())

	events := collect(t, e)

	// Output written before the panic is flushed ahead of the error event.
	require.Len(t, events, 3)
	assert.Equal(t, "before panic", events[0].Text)
	assert.Equal(t, script.EventError, events[1].Type)
	assert.Contains(t, events[1].Error, "kaboom")
	assert.Contains(t, events[1].Error, "goroutine")
	assert.Equal(t, script.EventExit, events[2].Type)
}

func TestExecution_NonSerializableResult(t *testing.T) {
	reg := testRegistry(t)
	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/badvalue",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			return map[string]any{"ch": make(chan int)}, nil
		},
	}))

	e := New(reg, "", Request{ScriptPath: "demo/badvalue"}, nil)
	e.Start(context.Background())

	events := collect(t, e)

	require.Len(t, events, 2)
	assert.Equal(t, script.EventError, events[0].Type)
	assert.Contains(t, events[0].Error, "non-serializable")
	assert.Equal(t, script.EventExit, events[1].Type)
}

func TestExecution_ExactlyOneTerminalAndOneExit(t *testing.T) {
	for _, path := range []string{"demo/ok", "demo/boom", "demo/panic", "nope/nope"} {
		t.Run(path, func(t *testing.T) {
			e := New(testRegistry(t), "", Request{ScriptPath: path}, nil)
			e.Start(context.Background())

			var terminals, exits int
			events := collect(t, e)
			for _, ev := range events {
				if ev.IsTerminal() {
					terminals++
				}
				if ev.Type == script.EventExit {
					exits++
				}
			}
			assert.Equal(t, 1, terminals)
			assert.Equal(t, 1, exits)
			assert.Equal(t, script.EventExit, events[len(events)-1].Type)
		})
	}
}

func TestExecution_FIFOOrdering(t *testing.T) {
	reg := script.NewRegistry(nil)
	const n = 50
	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/counter",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			for i := 0; i < n; i++ {
				env.Printf("line %03d\n", i)
			}
			return nil, nil
		},
	}))

	e := New(reg, "", Request{ScriptPath: "demo/counter"}, nil)
	e.Start(context.Background())

	events := collect(t, e)
	require.Len(t, events, n+2)
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("line %03d", i), events[i].Text)
	}
	// A nil return is still a success: result then exit.
	assert.Equal(t, script.EventResult, events[n].Type)
	assert.Equal(t, script.EventExit, events[n+1].Type)
}

func TestExecution_ConcurrentExecutionsAreIsolated(t *testing.T) {
	reg := script.NewRegistry(nil)
	const workers = 8
	for i := 0; i < workers; i++ {
		marker := fmt.Sprintf("worker-%d", i)
		require.NoError(t, reg.Register(&script.Script{
			Path: fmt.Sprintf("demo/%s", marker),
			Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
				for j := 0; j < 20; j++ {
					env.Printf("%s line %d\n", marker, j)
				}
				return map[string]any{"marker": marker}, nil
			},
		}))
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		marker := fmt.Sprintf("worker-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := New(reg, "", Request{ScriptPath: "demo/" + marker}, nil)
			e.Start(context.Background())

			var lines int
			for ev := range e.Events() {
				switch ev.Type {
				case script.EventStdout:
					assert.Contains(t, ev.Text, marker)
					assert.Equal(t, fmt.Sprintf("%s line %d", marker, lines), ev.Text)
					lines++
				case script.EventResult:
					assert.Equal(t, map[string]any{"marker": marker}, ev.Result)
				}
			}
			assert.Equal(t, 20, lines)
		}()
	}
	wg.Wait()
}

func TestExecution_Wait(t *testing.T) {
	e := New(testRegistry(t), "", Request{ScriptPath: "demo/ok"}, nil)
	e.Start(context.Background())

	go func() {
		for range e.Events() {
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

func TestExecution_WaitHonorsContext(t *testing.T) {
	reg := script.NewRegistry(nil)
	release := make(chan struct{})
	require.NoError(t, reg.Register(&script.Script{
		Path: "demo/slow",
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			<-release
			return nil, nil
		},
	}))

	e := New(reg, "", Request{ScriptPath: "demo/slow"}, nil)
	e.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Wait(ctx), context.DeadlineExceeded)

	close(release)
	for range e.Events() {
	}
}

func TestRun_Sync(t *testing.T) {
	reg := testRegistry(t)

	got := Run(context.Background(), reg, "", Request{ScriptPath: "demo/ok"}, nil)
	assert.Equal(t, map[string]any{"result": map[string]any{"x": 1}}, got)

	got = Run(context.Background(), reg, "", Request{ScriptPath: "demo/boom"}, nil)
	require.Contains(t, got, "error")
	assert.Contains(t, got["error"], "bad input")

	got = Run(context.Background(), reg, "", Request{ScriptPath: "nope/nope"}, nil)
	require.Contains(t, got, "error")
}
