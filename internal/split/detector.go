// Package split infers corporate-action ratios from the discontinuity
// between a candidate's reference price and the first session open.
//
// A split that lands between signal generation and simulation would
// otherwise shear the price series in half: indicators computed across
// the gap and P&L against the reference price both break. Detection is
// heuristic, so unknown ratios fall back to no adjustment rather than
// guessing.
package split

import (
	"fmt"
	"math"

	"github.com/okabe-h/sessionex/internal/core"
)

// KnownRatios are the split factors the detector will snap to.
var KnownRatios = []float64{2, 3, 4, 5, 10, 20}

// minDiscontinuity is the reference/open ratio below which no split is
// assumed; ordinary overnight gaps stay well under it.
const minDiscontinuity = 1.3

// maxRelativeError bounds how far the observed ratio may sit from a
// known factor before detection is declared ambiguous.
const maxRelativeError = 0.15

// Detect estimates the split ratio from the externally known reference
// price and the first bar's open. It returns 1.0 when no split is
// present. When the discontinuity is large but matches no known factor,
// it returns 1.0 with core.ErrSplitAmbiguous; callers treat that as a
// non-fatal flag.
func Detect(referencePrice, firstOpen float64) (float64, error) {
	if referencePrice <= 0 || firstOpen <= 0 {
		return 1.0, nil
	}

	raw := referencePrice / firstOpen
	if raw < minDiscontinuity {
		return 1.0, nil
	}

	best := KnownRatios[0]
	for _, c := range KnownRatios[1:] {
		if math.Abs(raw-c) < math.Abs(raw-best) {
			best = c
		}
	}

	if math.Abs(raw-best)/best < maxRelativeError {
		return best, nil
	}
	return 1.0, core.WrapError(core.ErrSplitAmbiguous,
		fmt.Errorf("reference/open ratio %.3f is not near any of %v", raw, KnownRatios))
}

// Adjust returns a copy of bars with OHLC multiplied and volume divided
// by ratio. The whole window is adjusted at once, warm-up bars included,
// so indicator continuity survives the split. A ratio of 1.0 returns the
// input unchanged.
func Adjust(bars []core.Bar, ratio float64) []core.Bar {
	if ratio == 1.0 {
		return bars
	}

	out := make([]core.Bar, len(bars))
	for i, b := range bars {
		b.Open *= ratio
		b.High *= ratio
		b.Low *= ratio
		b.Close *= ratio
		b.Volume /= ratio
		out[i] = b
	}
	return out
}
