// Package exitrule holds the pure exit rule evaluators. Every rule
// scans a bar window forward from the entry bar and reports the first
// bar on which its condition holds. Rules share no state and see only
// closed-bar data; the simulator owns priority between them.
package exitrule

import (
	"github.com/okabe-h/sessionex/internal/core"
)

// Indicator series keys resolvable inside a Window.
const (
	SeriesClose      = "close"
	SeriesRSI        = "rsi"
	SeriesMACDLine   = "macd_line"
	SeriesMACDSignal = "macd_signal"
	SeriesMA         = "ma"
	SeriesGranvMA    = "granville_ma"
	SeriesGranvATR   = "granville_atr"
)

// Window is the evaluation context for one candidate: adjusted bars
// starting at the entry bar (inclusive), the entry fill, the position
// side, and indicator series aligned one-to-one with Bars.
type Window struct {
	Bars       []core.Bar
	EntryPrice float64
	Side       core.Side
	Indicators map[string][]float64
}

// Series resolves an indicator key. SeriesClose is always available and
// derived from the bars themselves.
func (w Window) Series(key string) []float64 {
	if key == SeriesClose {
		closes := make([]float64, len(w.Bars))
		for i, b := range w.Bars {
			closes[i] = b.Close
		}
		return closes
	}
	return w.Indicators[key]
}

// Trigger is a rule firing. BarOffset indexes the exit bar within the
// window: offset 0 is the entry bar, so bars held = BarOffset + 1.
type Trigger struct {
	BarOffset int
	Price     float64
	Reason    core.ExitReason
}

// Rule is the uniform evaluator contract. Evaluate returns the first
// trigger scanning forward, or ok=false when the condition never holds
// inside the window.
type Rule interface {
	Name() string
	Evaluate(w Window) (Trigger, bool)
}
