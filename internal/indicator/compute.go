// Package indicator derives the rolling technical indicator battery
// from a raw bar series. All functions are pure: output depends only on
// the input values and their order.
package indicator

import (
	"fmt"
	"math"

	"PatternScout/internal/model"
)

// Windows of the standard battery. Pattern specs reference these
// columns by name (ma21, vol_ma5, rsi6, ...).
var (
	maWindows    = []int{5, 10, 20, 21, 60}
	volMAWindows = []int{5, 20}
	rsiWindows   = []int{6, 12}
)

// Compute derives the full indicator battery for one series. The input
// series is never mutated; derived columns live only in the returned Set.
func Compute(series *model.BarSeries) *Set {
	closes := series.Closes()
	volumes := series.Volumes()

	set := NewSet(len(closes))

	for _, w := range maWindows {
		set.Add(fmt.Sprintf("ma%d", w), SMA(closes, w))
	}
	for _, w := range volMAWindows {
		set.Add(fmt.Sprintf("vol_ma%d", w), SMA(volumes, w))
	}

	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	dif := make([]float64, len(closes))
	for i := range dif {
		dif[i] = ema12[i] - ema26[i]
	}
	dea := EMA(dif, 9)
	macd := make([]float64, len(closes))
	for i := range macd {
		macd[i] = 2 * (dif[i] - dea[i])
	}
	set.Add("dif", dif)
	set.Add("dea", dea)
	set.Add("macd", macd)

	for _, w := range rsiWindows {
		set.Add(fmt.Sprintf("rsi%d", w), RSI(closes, w))
	}

	set.Add("pct_change", PctChange(closes))

	return set
}

// SMA computes the simple moving average over the given window. The
// first window-1 entries are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(span+1), seeded at the first value. Defined from index 0.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the relative strength index over the given window using
// rolling simple averages of gains and losses. When the loss average is
// exactly zero the RSI saturates to 100. The first `window` entries are
// NaN (a window of changes needs window+1 closes).
func RSI(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) <= window {
		return out
	}
	for i := window; i < len(values); i++ {
		var gain, loss float64
		for j := i - window + 1; j <= i; j++ {
			change := values[j] - values[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		avgGain := gain / float64(window)
		avgLoss := loss / float64(window)
		if avgLoss == 0 {
			out[i] = 100.0
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

// PctChange computes (close[i]-close[i-1])/close[i-1]*100. NaN at
// index 0 and wherever the previous close is zero.
func PctChange(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i] = (values[i] - values[i-1]) / values[i-1] * 100
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
