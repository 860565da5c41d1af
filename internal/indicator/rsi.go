package indicator

import "math"

// RSI calculates the relative strength index with Wilder-style
// exponential smoothing of average gain and loss. The first period
// outputs are NaN, and so is any position whose average loss is zero:
// a loss-free stretch has no relative strength to measure, and exit
// rules must skip it rather than see a pegged 100.
func RSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := nanSlice(len(closes))
	losses := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gains[i], losses[i] = diff, 0
		} else {
			gains[i], losses[i] = 0, -diff
		}
	}

	avgGain := EMA(gains, period)
	avgLoss := EMA(losses, period)

	for i := range closes {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
