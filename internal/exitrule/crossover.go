package exitrule

import (
	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/indicator"
)

// CrossDirection says which reordering of the two series fires the rule.
type CrossDirection string

const (
	// CrossAbove fires when series A moves from at-or-below B to above B.
	CrossAbove CrossDirection = "above"
	// CrossBelow fires when series A moves from at-or-above B to below B.
	CrossBelow CrossDirection = "below"
)

// FillMode picks the fill price for indicator-driven exits. The two
// semantics shift P&L by one bar, so a rule carries its mode explicitly
// instead of a package-wide default.
type FillMode string

const (
	// FillSameBarClose fills at the close of the bar that confirmed the
	// cross.
	FillSameBarClose FillMode = "same_bar_close"
	// FillNextBarOpen fills at the open of the following bar; if that
	// bar does not exist the rule does not trigger.
	FillNextBarOpen FillMode = "next_bar_open"
)

// Crossover fires when two consecutive valid samples of series A and B
// change relative ordering. Pairs where either sample has not converged
// are skipped, never treated as zero.
type Crossover struct {
	A         string // indicator key of the crossing series
	B         string // indicator key of the reference series
	Direction CrossDirection
	Fill      FillMode
	Reason    core.ExitReason
}

func (r Crossover) Name() string { return string(r.Reason) }

func (r Crossover) Evaluate(w Window) (Trigger, bool) {
	a := w.Series(r.A)
	b := w.Series(r.B)
	if len(a) != len(w.Bars) || len(b) != len(w.Bars) {
		return Trigger{}, false
	}

	for i := 1; i < len(w.Bars); i++ {
		if !indicator.HasValue(a[i-1]) || !indicator.HasValue(b[i-1]) ||
			!indicator.HasValue(a[i]) || !indicator.HasValue(b[i]) {
			continue
		}

		crossed := false
		switch r.Direction {
		case CrossBelow:
			crossed = a[i-1] >= b[i-1] && a[i] < b[i]
		default:
			crossed = a[i-1] <= b[i-1] && a[i] > b[i]
		}
		if !crossed {
			continue
		}

		return r.fill(w, i)
	}
	return Trigger{}, false
}

func (r Crossover) fill(w Window, i int) (Trigger, bool) {
	if r.Fill == FillNextBarOpen {
		if i+1 >= len(w.Bars) {
			return Trigger{}, false
		}
		return Trigger{BarOffset: i + 1, Price: w.Bars[i+1].Open, Reason: r.Reason}, true
	}
	return Trigger{BarOffset: i, Price: w.Bars[i].Close, Reason: r.Reason}, true
}

// ZeroRecross fires when a series returns above zero after having been
// at or below it, scanning forward from the entry bar.
type ZeroRecross struct {
	Key    string
	Reason core.ExitReason
}

func (r ZeroRecross) Name() string { return string(r.Reason) }

func (r ZeroRecross) Evaluate(w Window) (Trigger, bool) {
	series := w.Series(r.Key)
	if len(series) != len(w.Bars) {
		return Trigger{}, false
	}

	wasBelow := false
	for i, v := range series {
		if !indicator.HasValue(v) {
			continue
		}
		if v <= 0 {
			wasBelow = true
			continue
		}
		if wasBelow {
			return Trigger{BarOffset: i, Price: w.Bars[i].Close, Reason: r.Reason}, true
		}
	}
	return Trigger{}, false
}
