package exitrule

import (
	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/indicator"
)

// Band fires when an oscillator sample enters an extreme band, e.g.
// RSI(9) dropping under 30. Fill is the same bar's close.
type Band struct {
	Key       string
	Threshold float64
	// Below triggers on sample < Threshold; otherwise sample > Threshold.
	Below  bool
	Reason core.ExitReason
}

func (r Band) Name() string { return string(r.Reason) }

func (r Band) Evaluate(w Window) (Trigger, bool) {
	series := w.Series(r.Key)
	if len(series) != len(w.Bars) {
		return Trigger{}, false
	}

	for i, v := range series {
		if !indicator.HasValue(v) {
			continue
		}
		if (r.Below && v < r.Threshold) || (!r.Below && v > r.Threshold) {
			return Trigger{BarOffset: i, Price: w.Bars[i].Close, Reason: r.Reason}, true
		}
	}
	return Trigger{}, false
}
