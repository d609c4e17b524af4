// ABOUTME: Synthetic daily price series shared by the analysis scripts
// ABOUTME: Deterministic per symbol so runs are reproducible without market data

package builtin

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/finrobot/script-gateway/internal/script"
)

// syntheticPrices produces a deterministic pseudo-random walk for a symbol.
// The same symbol always yields the same series, which keeps the sample
// scripts reproducible without a market-data dependency.
func syntheticPrices(symbol string, days int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(symbol)))
	state := h.Sum64() | 1

	next := func() float64 {
		// xorshift64
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return float64(state%10000)/10000.0 - 0.5
	}

	price := 50.0 + float64(state%150)
	out := make([]float64, days)
	for i := range out {
		drift := 0.05 * math.Sin(float64(i)/9.0)
		price *= 1.0 + 0.02*next() + drift/100.0
		if price < 1.0 {
			price = 1.0
		}
		out[i] = math.Round(price*100) / 100
	}
	return out
}

// intParam parses an integer parameter with a default and bounds.
func intParam(params script.Params, key string, def, min, max int) (int, error) {
	raw := params.String(key, strconv.Itoa(def))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q must be an integer, got %q", key, raw)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("parameter %q must be between %d and %d, got %d", key, min, max, n)
	}
	return n, nil
}

// sma computes the trailing simple moving average of the series with the
// given window. The first window-1 positions are NaN.
func sma(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	var sum float64
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
