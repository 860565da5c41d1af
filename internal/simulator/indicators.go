package simulator

import (
	"github.com/okabe-h/sessionex/internal/config"
	"github.com/okabe-h/sessionex/internal/core"
	"github.com/okabe-h/sessionex/internal/exitrule"
	"github.com/okabe-h/sessionex/internal/indicator"
)

// computeIndicators evaluates every series the enabled rules need over
// the full adjusted window, warm-up included, so the values aligned to
// the session have converged by the entry bar. Each output slice is
// aligned one-to-one with bars.
func computeIndicators(bars []core.Bar, cfg config.StrategyConfig) map[string][]float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	out := make(map[string][]float64)

	if cfg.MACDCross.Enabled {
		res := indicator.MACD(closes,
			cfg.MACDCross.Fast, cfg.MACDCross.Slow, cfg.MACDCross.SignalPeriod,
			signalMode(cfg.MACDCross.SignalMode))
		out[exitrule.SeriesMACDLine] = res.Line
		out[exitrule.SeriesMACDSignal] = res.Signal
	}
	if cfg.MACDZero.Enabled {
		res := indicator.MACD(closes,
			cfg.MACDZero.Fast, cfg.MACDZero.Slow, cfg.MACDZero.SignalPeriod,
			signalMode(cfg.MACDZero.SignalMode))
		out[seriesMACDZeroLine] = res.Line
	}
	if cfg.MACross.Enabled {
		out[exitrule.SeriesMA] = indicator.SMA(closes, cfg.MACross.Period)
	}
	if cfg.RSIBand.Enabled {
		out[exitrule.SeriesRSI] = indicator.RSI(closes, cfg.RSIBand.Period)
	}
	if cfg.Granville.Enabled {
		highs := make([]float64, len(bars))
		lows := make([]float64, len(bars))
		for i, b := range bars {
			highs[i], lows[i] = b.High, b.Low
		}
		out[exitrule.SeriesGranvMA] = indicator.SMA(closes, cfg.Granville.Period)
		out[exitrule.SeriesGranvATR] = indicator.ATR(highs, lows, closes, cfg.Granville.ATRPeriod)
	}

	return out
}

func signalMode(s string) indicator.SignalMode {
	if s == "ema" {
		return indicator.SignalEMA
	}
	return indicator.SignalSMA
}

// sessionView slices every series to the session portion so offsets
// line up with the evaluation window. Warm-up output is discarded here.
func sessionView(series map[string][]float64, entryIndex int) map[string][]float64 {
	out := make(map[string][]float64, len(series))
	for k, v := range series {
		if entryIndex <= len(v) {
			out[k] = v[entryIndex:]
		}
	}
	return out
}
