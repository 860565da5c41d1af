package report

import (
	"math"
)

// RuleStats is the win/loss and P&L roll-up for one group of trades.
type RuleStats struct {
	Trades   int
	Wins     int
	Losses   int
	WinRate  float64 // percent
	TotalPnL float64
	AvgPnL   float64
	MaxPnL   float64
	MinPnL   float64
}

func calcStats(trades []Trade) RuleStats {
	if len(trades) == 0 {
		return RuleStats{}
	}

	s := RuleStats{
		Trades: len(trades),
		MaxPnL: math.Inf(-1),
		MinPnL: math.Inf(1),
	}
	for _, t := range trades {
		s.TotalPnL += t.PnL
		if t.PnL > 0 {
			s.Wins++
		} else {
			s.Losses++
		}
		if t.PnL > s.MaxPnL {
			s.MaxPnL = t.PnL
		}
		if t.PnL < s.MinPnL {
			s.MinPnL = t.PnL
		}
	}
	s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	s.AvgPnL = s.TotalPnL / float64(s.Trades)
	return s
}

// maxDrawdown finds the largest peak-to-trough decline over the
// compounded return sequence.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var maxDD float64
	var peak float64
	cumulative := 1.0

	for _, r := range returns {
		cumulative *= (1 + r)
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			dd := (peak - cumulative) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// sharpeRatio computes risk-adjusted return, risk-free rate zero,
// annualized over ~252 sessions.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))

	if stdDev == 0 {
		return 0
	}

	annualizedReturn := mean * 252
	annualizedStdDev := stdDev * math.Sqrt(252)

	return annualizedReturn / annualizedStdDev
}
