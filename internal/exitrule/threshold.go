package exitrule

import (
	"github.com/okabe-h/sessionex/internal/core"
)

// StopLoss exits when the adverse excursion from entry reaches Pct.
// The fill is optimistic-intrabar: the exact threshold price, not the
// bar's own extreme.
type StopLoss struct {
	Pct float64 // e.g. 0.03 for a 3% stop
}

func (r StopLoss) Name() string { return "stop_loss" }

func (r StopLoss) Evaluate(w Window) (Trigger, bool) {
	if r.Pct <= 0 {
		return Trigger{}, false
	}

	if w.Side == core.SideShort {
		threshold := w.EntryPrice * (1 + r.Pct)
		for i, b := range w.Bars {
			if b.High >= threshold {
				return Trigger{BarOffset: i, Price: threshold, Reason: core.ExitStopLoss}, true
			}
		}
		return Trigger{}, false
	}

	threshold := w.EntryPrice * (1 - r.Pct)
	for i, b := range w.Bars {
		if b.Low <= threshold {
			return Trigger{BarOffset: i, Price: threshold, Reason: core.ExitStopLoss}, true
		}
	}
	return Trigger{}, false
}

// TakeProfit exits when the favorable excursion from entry reaches Pct,
// filling at the threshold price.
type TakeProfit struct {
	Pct float64
}

func (r TakeProfit) Name() string { return "take_profit" }

func (r TakeProfit) Evaluate(w Window) (Trigger, bool) {
	if r.Pct <= 0 {
		return Trigger{}, false
	}

	if w.Side == core.SideShort {
		threshold := w.EntryPrice * (1 - r.Pct)
		for i, b := range w.Bars {
			if b.Low <= threshold {
				return Trigger{BarOffset: i, Price: threshold, Reason: core.ExitTakeProfit}, true
			}
		}
		return Trigger{}, false
	}

	threshold := w.EntryPrice * (1 + r.Pct)
	for i, b := range w.Bars {
		if b.High >= threshold {
			return Trigger{BarOffset: i, Price: threshold, Reason: core.ExitTakeProfit}, true
		}
	}
	return Trigger{}, false
}
