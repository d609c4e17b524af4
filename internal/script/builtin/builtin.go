// ABOUTME: Built-in sample scripts exercising the script contract
// ABOUTME: Registered at startup; self-contained, no external data sources

package builtin

import (
	"context"
	"fmt"
	"sort"

	"github.com/finrobot/script-gateway/internal/script"
)

// RegisterAll registers the built-in script pack on the given registry.
func RegisterAll(reg *script.Registry) error {
	scripts := []*script.Script{
		echoScript(),
		priceSummaryScript(),
		smaStrategyScript(),
	}
	for _, s := range scripts {
		if err := reg.Register(s); err != nil {
			return fmt.Errorf("registering %s: %w", s.Path, err)
		}
	}
	return nil
}

// echoScript prints its parameters back and returns them, useful for
// wiring checks from frontends.
func echoScript() *script.Script {
	return &script.Script{
		Path:        "demo/echo",
		Description: "Echoes the supplied parameters back as result messages.",
		Params: []script.ParamSpec{
			{Name: "message", Type: "string", Default: "hello"},
		},
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			msg := params.String("message", "hello")
			env.Printf("echo: %s\n", msg)

			keys := make([]string, 0, len(params))
			for k := range params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				env.Printf("param %s=%v\n", k, params[k])
			}

			return map[string]any{
				"result": []map[string]any{
					{"role": "assistant", "content": msg},
				},
				"lang": lang,
			}, nil
		},
	}
}
