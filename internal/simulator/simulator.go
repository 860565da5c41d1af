package simulator

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okabe-h/sessionex/internal/bars"
	"github.com/okabe-h/sessionex/internal/config"
	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/exitrule"
	"github.com/okabe-h/sessionex/internal/logger"
	"github.com/okabe-h/sessionex/internal/split"
)

// Simulator runs the trade lifecycle for one candidate at a time
// against an immutable bar snapshot. It holds no per-trade state, so
// one instance may be shared by concurrent workers.
type Simulator struct {
	series *bars.Series
	cfg    config.StrategyConfig
	warmup int
	loc    *time.Location
	log    *zap.Logger
}

// New creates a simulator over a loaded bar snapshot.
func New(series *bars.Series, cfg config.StrategyConfig, warmupBars int, loc *time.Location, log *zap.Logger) *Simulator {
	return &Simulator{
		series: series,
		cfg:    cfg,
		warmup: warmupBars,
		loc:    loc,
		log:    log,
	}
}

// Simulate walks one candidate through entry, monitoring and exit.
// Data errors come back wrapped in the core sentinels so callers can
// tally skips without inspecting messages.
func (s *Simulator) Simulate(c core.Candidate) (core.TradeRecord, error) {
	side := c.Side
	if side == "" {
		side = core.Side(s.cfg.Side)
	}

	window, err := s.series.EntryWindow(c.Ticker, s.entryCutoff(c.SignalDate), s.warmup)
	if err != nil {
		return core.TradeRecord{}, err
	}

	// Split adjustment covers the whole window, warm-up included, so
	// indicator continuity survives the discontinuity.
	firstOpen := window.Bars[window.EntryIndex].Open
	ratio, err := split.Detect(c.ReferencePrice, firstOpen)
	if err != nil && errors.Is(err, core.ErrSplitAmbiguous) {
		logger.WithTicker(s.log, c.Ticker).Warn("ambiguous split ratio, using 1.0",
			zap.Float64("reference", c.ReferencePrice),
			zap.Float64("first_open", firstOpen))
	}
	adjusted := split.Adjust(window.Bars, ratio)

	session := adjusted[window.EntryIndex:]
	entryBar := session[0]
	entryPrice := entryBar.Open

	indicators := sessionView(computeIndicators(adjusted, s.cfg), window.EntryIndex)

	w := exitrule.Window{
		Bars:       session,
		EntryPrice: entryPrice,
		Side:       side,
		Indicators: indicators,
	}

	trigger, ok := s.firstTrigger(w, side)
	if !ok {
		// Expiry fires whenever a bar past the horizon exists, so a
		// longer session with no trigger means the rule set lost it.
		if len(session) > s.cfg.Horizon.MaxHoldBars {
			return core.TradeRecord{}, core.WrapError(core.ErrNoTrigger,
				fmt.Errorf("ticker %s: %d bars but no rule fired", c.Ticker, len(session)))
		}
		if !s.cfg.CloseOnExhaustedData {
			return core.TradeRecord{}, core.WrapError(core.ErrExhaustedWindow,
				fmt.Errorf("ticker %s: window ended after %d bars with no exit", c.Ticker, len(session)))
		}
		last := len(session) - 1
		trigger = exitrule.Trigger{
			BarOffset: last,
			Price:     session[last].Close,
			Reason:    core.ExitForcedClose,
		}
	}

	exitBar := session[trigger.BarOffset]
	pnl := core.DirectionalPnL(side, entryPrice, trigger.Price)

	return core.TradeRecord{
		Ticker:     c.Ticker,
		Name:       c.Name,
		SignalDate: c.SignalDate,
		Side:       side,
		EntryTime:  entryBar.Time,
		EntryPrice: entryPrice,
		ExitTime:   exitBar.Time,
		ExitPrice:  trigger.Price,
		ExitReason: trigger.Reason,
		BarsHeld:   trigger.BarOffset + 1,
		PnL:        pnl,
		ReturnPct:  pnl / entryPrice * 100,
		SplitRatio: ratio,
		Rank:       c.Rank,
		Score:      c.Score,
		Reason:     c.Reason,
	}, nil
}

// firstTrigger evaluates every rule over the window and picks the
// earliest bar offset; rule order breaks same-bar ties.
func (s *Simulator) firstTrigger(w exitrule.Window, side core.Side) (exitrule.Trigger, bool) {
	var best exitrule.Trigger
	found := false
	for _, rule := range buildRules(s.cfg, side) {
		t, ok := rule.Evaluate(w)
		if !ok {
			continue
		}
		if !found || t.BarOffset < best.BarOffset {
			best = t
			found = true
		}
	}
	return best, found
}

// entryCutoff returns the last instant of the signal date in the
// session timezone; the entry bar is the first bar after it.
func (s *Simulator) entryCutoff(signalDate time.Time) time.Time {
	d := signalDate.In(s.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
}
