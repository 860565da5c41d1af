package exitrule

import (
	"github.com/okabe-h/sessionex/internal/core"
)

// Expiry closes the position after MaxHoldBars bars with no other
// trigger, filling at the next available bar's open. It is always the
// last rule in a set so the lifecycle state machine terminates. When
// the window ends before the expiry bar exists, Evaluate reports no
// trigger and the simulator decides between skipping the candidate and
// a best-effort forced close.
type Expiry struct {
	MaxHoldBars int
}

func (r Expiry) Name() string { return "time_expiry" }

func (r Expiry) Evaluate(w Window) (Trigger, bool) {
	if r.MaxHoldBars <= 0 {
		return Trigger{}, false
	}
	if r.MaxHoldBars >= len(w.Bars) {
		return Trigger{}, false
	}
	b := w.Bars[r.MaxHoldBars]
	return Trigger{BarOffset: r.MaxHoldBars, Price: b.Open, Reason: core.ExitTimeExpiry}, true
}
