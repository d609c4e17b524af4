// ABOUTME: Built-in analysis scripts: price summary and SMA crossover strategy
// ABOUTME: Operate on synthetic series and write report files to the output dir

package builtin

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/finrobot/script-gateway/internal/script"
)

func priceSummaryScript() *script.Script {
	return &script.Script{
		Path:        "beginner/price_summary",
		Description: "Summarizes the recent price series for a symbol.",
		Params: []script.ParamSpec{
			{Name: "symbol", Type: "string", Default: "AAPL"},
			{Name: "days", Type: "string", Default: "30"},
		},
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			symbol := params.String("symbol", "AAPL")
			days, err := intParam(params, "days", 30, 2, 3650)
			if err != nil {
				return nil, err
			}

			prices := syntheticPrices(symbol, days)
			low, high, sum := prices[0], prices[0], 0.0
			for _, p := range prices {
				low = math.Min(low, p)
				high = math.Max(high, p)
				sum += p
			}
			last := prices[len(prices)-1]
			change := (last/prices[0] - 1) * 100

			env.Printf("summary for %s over %d days\n", symbol, days)
			env.Printf("low=%.2f high=%.2f mean=%.2f last=%.2f\n", low, high, sum/float64(days), last)
			env.Printf("change=%.2f%%\n", change)

			return map[string]any{
				"result": []map[string]any{
					{"role": "assistant", "content": fmt.Sprintf(
						"%s closed at %.2f, %.2f%% over the period.", symbol, last, change)},
				},
				"symbol": symbol,
				"metrics": map[string]any{
					"low":        low,
					"high":       high,
					"mean":       sum / float64(days),
					"last":       last,
					"change_pct": change,
				},
			}, nil
		},
	}
}

func smaStrategyScript() *script.Script {
	return &script.Script{
		Path:        "beginner/sma_strategy",
		Description: "Simple moving average crossover strategy with a CSV report.",
		Params: []script.ParamSpec{
			{Name: "symbol", Type: "string", Default: "AAPL"},
			{Name: "short_window", Type: "string", Default: "5"},
			{Name: "long_window", Type: "string", Default: "20"},
			{Name: "days", Type: "string", Default: "120"},
		},
		Run: func(ctx context.Context, env *script.Env, params script.Params, lang string) (any, error) {
			symbol := params.String("symbol", "AAPL")
			short, err := intParam(params, "short_window", 5, 1, 365)
			if err != nil {
				return nil, err
			}
			long, err := intParam(params, "long_window", 20, 2, 365)
			if err != nil {
				return nil, err
			}
			if short >= long {
				return nil, fmt.Errorf("short_window (%d) must be smaller than long_window (%d)", short, long)
			}
			days, err := intParam(params, "days", 120, long+1, 3650)
			if err != nil {
				return nil, err
			}

			prices := syntheticPrices(symbol, days)
			fast := sma(prices, short)
			slow := sma(prices, long)

			env.Printf("running SMA crossover for %s (%d/%d over %d days)\n", symbol, short, long, days)

			type signal struct {
				Day    int     `json:"day"`
				Action string  `json:"action"`
				Price  float64 `json:"price"`
			}
			var signals []signal
			for i := long; i < days; i++ {
				crossedUp := fast[i-1] <= slow[i-1] && fast[i] > slow[i]
				crossedDown := fast[i-1] >= slow[i-1] && fast[i] < slow[i]
				if crossedUp {
					signals = append(signals, signal{Day: i, Action: "buy", Price: prices[i]})
					env.Printf("day %d: buy at %.2f\n", i, prices[i])
				}
				if crossedDown {
					signals = append(signals, signal{Day: i, Action: "sell", Price: prices[i]})
					env.Printf("day %d: sell at %.2f\n", i, prices[i])
				}
			}
			if len(signals) == 0 {
				env.Printf("no crossover signals in the period\n")
			}

			out := map[string]any{
				"result": []map[string]any{
					{"role": "assistant", "content": fmt.Sprintf(
						"SMA %d/%d strategy on %s produced %d signals.", short, long, symbol, len(signals))},
				},
				"symbol":  symbol,
				"signals": signals,
			}

			if env.OutputDir != "" {
				name := fmt.Sprintf("sma_%s_%d_%d.csv", symbol, short, long)
				if err := writeReport(env.OutputDir, name, prices, fast, slow); err != nil {
					return nil, fmt.Errorf("writing report: %w", err)
				}
				env.Printf("report written to %s\n", name)
				out["report_file"] = "/static/" + name
			}

			return out, nil
		},
	}
}

// writeReport dumps the series and both averages as CSV into the output dir.
func writeReport(dir, name string, prices, fast, slow []float64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"day", "close", "sma_fast", "sma_slow"}); err != nil {
		return err
	}
	cell := func(v float64) string {
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	for i := range prices {
		if err := w.Write([]string{strconv.Itoa(i), cell(prices[i]), cell(fast[i]), cell(slow[i])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
