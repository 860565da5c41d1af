package simulator

import (
	"github.com/okabe-h/sessionex/internal/config"
	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/exitrule"
)

// Series key for the zero-recross MACD line. It is computed separately
// from the crossover rule's line so the two families can run different
// periods side by side.
const seriesMACDZeroLine = "macd_zero_line"

// buildRules assembles the enabled exit rules in priority order:
// stop-loss first, then take-profit, then the indicator rules, with
// time expiry always appended last so every simulation terminates.
// The slice order is the deterministic tie-break when several rules
// fire on the same bar.
func buildRules(cfg config.StrategyConfig, side core.Side) []exitrule.Rule {
	var rules []exitrule.Rule

	if cfg.StopLoss.Enabled {
		rules = append(rules, exitrule.StopLoss{Pct: cfg.StopLoss.Pct})
	}
	if cfg.TakeProfit.Enabled {
		rules = append(rules, exitrule.TakeProfit{Pct: cfg.TakeProfit.Pct})
	}
	if cfg.MACDCross.Enabled {
		rules = append(rules, exitrule.Crossover{
			A:         exitrule.SeriesMACDLine,
			B:         exitrule.SeriesMACDSignal,
			Direction: againstSide(side),
			Fill:      exitrule.FillMode(cfg.MACDCross.Fill),
			Reason:    core.ExitMACDCross,
		})
	}
	if cfg.MACDZero.Enabled {
		rules = append(rules, exitrule.ZeroRecross{
			Key:    seriesMACDZeroLine,
			Reason: core.ExitMACDZero,
		})
	}
	if cfg.MACross.Enabled {
		rules = append(rules, exitrule.Crossover{
			A:         exitrule.SeriesClose,
			B:         exitrule.SeriesMA,
			Direction: againstSide(side),
			Fill:      exitrule.FillMode(cfg.MACross.Fill),
			Reason:    core.ExitMACross,
		})
	}
	if cfg.RSIBand.Enabled {
		rules = append(rules, exitrule.Band{
			Key:       exitrule.SeriesRSI,
			Threshold: cfg.RSIBand.Threshold,
			Below:     cfg.RSIBand.Below,
			Reason:    core.ExitRSIBand,
		})
	}
	if cfg.Granville.Enabled {
		rules = append(rules, exitrule.Granville{
			MAKey:            exitrule.SeriesGranvMA,
			ATRKey:           exitrule.SeriesGranvATR,
			SlopeLookback:    cfg.Granville.SlopeLookback,
			ProximityATRMult: cfg.Granville.ProximityATRMult,
			DeviationPct:     cfg.Granville.DeviationPct,
			Reason:           core.ExitGranville,
		})
	}

	rules = append(rules, exitrule.Expiry{MaxHoldBars: cfg.Horizon.MaxHoldBars})
	return rules
}

// againstSide picks the crossover direction that moves against the
// position: an upward cross closes a short, a downward cross closes a
// long.
func againstSide(side core.Side) exitrule.CrossDirection {
	if side == core.SideLong {
		return exitrule.CrossBelow
	}
	return exitrule.CrossAbove
}
