package indicator

import "math"

// ATR calculates the average true range as an exponential smoothing of
// the true range with period+1 weighting. The first bar's range is
// high minus low; later bars widen it by the gap from the prior close.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if len(highs) != n || len(lows) != n {
		return nanSlice(n)
	}

	tr := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(highs[i]) || math.IsNaN(lows[i]) {
			continue
		}
		r := highs[i] - lows[i]
		if i > 0 && !math.IsNaN(closes[i-1]) {
			if d := math.Abs(highs[i] - closes[i-1]); d > r {
				r = d
			}
			if d := math.Abs(lows[i] - closes[i-1]); d > r {
				r = d
			}
		}
		tr[i] = r
	}
	return EMA(tr, period)
}
