package indicator

import "math"

// SignalMode selects how the MACD signal line is smoothed. The two
// variants shift crossover timing, so a rule family picks exactly one
// and never mixes them.
type SignalMode string

const (
	// SignalSMA smooths the signal line with a simple moving average,
	// matching the retail platform the exit rules were tuned against.
	SignalSMA SignalMode = "sma"
	// SignalEMA smooths the signal line exponentially, the textbook
	// MACD definition.
	SignalEMA SignalMode = "ema"
)

// MACDResult holds the three MACD series, aligned to the input closes.
type MACDResult struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD computes line = EMA(fast) − EMA(slow), the smoothed signal line,
// and hist = line − signal. Samples before convergence are NaN.
func MACD(closes []float64, fast, slow, signalPeriod int, mode SignalMode) MACDResult {
	line := nanSlice(len(closes))
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	for i := range closes {
		if math.IsNaN(emaFast[i]) || math.IsNaN(emaSlow[i]) {
			continue
		}
		line[i] = emaFast[i] - emaSlow[i]
	}

	var signal []float64
	switch mode {
	case SignalEMA:
		signal = EMA(line, signalPeriod)
	default:
		signal = SMA(line, signalPeriod)
	}

	hist := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(line[i]) || math.IsNaN(signal[i]) {
			continue
		}
		hist[i] = line[i] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Hist: hist}
}
