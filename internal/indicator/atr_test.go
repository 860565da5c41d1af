package indicator

import (
	"math"
	"testing"
)

func TestATR_SteadyRange(t *testing.T) {
	highs := []float64{12, 13, 14, 15}
	lows := []float64{10, 11, 12, 13}
	closes := []float64{11, 12, 13, 14}

	atr := ATR(highs, lows, closes, 2)

	if len(atr) != len(closes) {
		t.Fatalf("expected aligned output, got %d", len(atr))
	}
	if HasValue(atr[0]) {
		t.Errorf("atr[0] should be NaN, got %f", atr[0])
	}
	// Every true range is 2, so the smoothing stays at 2.
	for i := 1; i < len(atr); i++ {
		if math.Abs(atr[i]-2) > 1e-9 {
			t.Errorf("atr[%d] = %f, want 2", i, atr[i])
		}
	}
}

func TestATR_GapWidensRange(t *testing.T) {
	// The second bar gaps up: true range is measured from the prior
	// close, not just the bar's own high-low span.
	highs := []float64{11, 16}
	lows := []float64{9, 15}
	closes := []float64{10, 15}

	atr := ATR(highs, lows, closes, 1)

	if math.Abs(atr[0]-2) > 1e-9 {
		t.Errorf("atr[0] = %f, want 2", atr[0])
	}
	// tr[1] = max(16-15, |16-10|, |15-10|) = 6; alpha=1 tracks it.
	if math.Abs(atr[1]-6) > 1e-9 {
		t.Errorf("atr[1] = %f, want 6", atr[1])
	}
}

func TestATR_MismatchedLengths(t *testing.T) {
	atr := ATR([]float64{1, 2}, []float64{1}, []float64{1, 2}, 2)
	for i, v := range atr {
		if HasValue(v) {
			t.Errorf("atr[%d] = %f, want NaN", i, v)
		}
	}
}
