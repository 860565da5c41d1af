// Package indicator computes price indicators over close sequences.
//
// Every function returns a slice aligned to its input: output[i] belongs
// to input[i], and positions before the indicator has converged hold NaN,
// never zero. Callers test samples with HasValue before comparing them.
package indicator

import "math"

// HasValue reports whether an indicator sample has converged.
func HasValue(v float64) bool {
	return !math.IsNaN(v)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA calculates a simple moving average. The first window-1 outputs are
// NaN; a NaN input inside the window poisons that output.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA calculates an exponential moving average with smoothing
// 2/(period+1). The recursion is seeded at the first non-NaN input and
// runs through every later sample; outputs are masked to NaN until
// period samples have been observed.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) == 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)

	start := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}

	ema := values[start]
	seen := 1
	if seen >= period {
		out[start] = ema
	}
	for i := start + 1; i < len(values); i++ {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		ema = (v-ema)*alpha + ema
		seen++
		if seen >= period {
			out[i] = ema
		}
	}
	return out
}
