package exitrule

import (
	"math"

	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/indicator"
)

// Granville fires on the first of the eight Granville signals that
// moves against the position: a short is covered on any of the four
// buy variants, a long is closed on any of the four sell variants.
//
// The variants read the moving-average slope over SlopeLookback bars,
// proximity to the average within ProximityATRMult true ranges, and
// percentage deviation beyond DeviationPct:
//
//	buy 1 / sell 1: close crosses the rising (falling) average
//	buy 2 / sell 2: reversal after the prior bar's low (high) neared it
//	buy 3 / sell 3: same-bar touch of the average with a confirming close
//	buy 4 / sell 4: rebound from a deep deviation against the slope
//
// Fill is the close of the signal bar.
type Granville struct {
	MAKey            string
	ATRKey           string
	SlopeLookback    int
	ProximityATRMult float64
	DeviationPct     float64
	Reason           core.ExitReason
}

func (r Granville) Name() string { return string(r.Reason) }

func (r Granville) Evaluate(w Window) (Trigger, bool) {
	ma := w.Series(r.MAKey)
	atr := w.Series(r.ATRKey)
	if len(ma) != len(w.Bars) || len(atr) != len(w.Bars) {
		return Trigger{}, false
	}

	start := r.SlopeLookback
	if start < 1 {
		start = 1
	}
	for i := start; i < len(w.Bars); i++ {
		if !indicator.HasValue(ma[i]) || !indicator.HasValue(ma[i-r.SlopeLookback]) ||
			!indicator.HasValue(ma[i-1]) || !indicator.HasValue(atr[i]) {
			continue
		}

		slope := ma[i] - ma[i-r.SlopeLookback]
		prox := atr[i] * r.ProximityATRMult
		devPct := 0.0
		if ma[i] != 0 {
			devPct = (w.Bars[i].Close - ma[i]) / ma[i] * 100
		}

		fired := false
		if w.Side == core.SideShort {
			fired = r.buySignal(w, ma, i, slope > 0, slope < 0, prox, devPct)
		} else {
			fired = r.sellSignal(w, ma, i, slope > 0, slope < 0, prox, devPct)
		}
		if fired {
			return Trigger{BarOffset: i, Price: w.Bars[i].Close, Reason: r.Reason}, true
		}
	}
	return Trigger{}, false
}

// buySignal covers a short: any of the four buy variants on bar i.
func (r Granville) buySignal(w Window, ma []float64, i int, rising, falling bool, prox, devPct float64) bool {
	cur, prev := w.Bars[i], w.Bars[i-1]

	// Breakout: close crosses the rising average from below.
	if rising && prev.Close <= ma[i-1] && cur.Close > ma[i] {
		return true
	}
	// Pullback: the prior low neared the rising average, then reversal.
	if rising && i >= 2 && math.Abs(prev.Low-ma[i-1]) < prox &&
		cur.Close > prev.Close && prev.Close < w.Bars[i-2].Close {
		return true
	}
	// Touch: the bar's own low nears the average and closes above it.
	if rising && math.Abs(cur.Low-ma[i]) < prox &&
		cur.Close > ma[i] && cur.Close > prev.Close {
		return true
	}
	// Deviation rebound under a falling average.
	if falling && devPct < -r.DeviationPct && cur.Close > prev.Close {
		return true
	}
	return false
}

// sellSignal closes a long: the mirrored sell variants on bar i.
func (r Granville) sellSignal(w Window, ma []float64, i int, rising, falling bool, prox, devPct float64) bool {
	cur, prev := w.Bars[i], w.Bars[i-1]

	if falling && prev.Close >= ma[i-1] && cur.Close < ma[i] {
		return true
	}
	if falling && i >= 2 && math.Abs(prev.High-ma[i-1]) < prox &&
		cur.Close < prev.Close && prev.Close > w.Bars[i-2].Close {
		return true
	}
	if falling && math.Abs(cur.High-ma[i]) < prox &&
		cur.Close < ma[i] && cur.Close < prev.Close {
		return true
	}
	if rising && devPct > r.DeviationPct && cur.Close < prev.Close {
		return true
	}
	return false
}
