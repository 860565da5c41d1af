// Package report aggregates archived trade outcomes into win rate and
// P&L roll-ups. It reads the archive and computes; rendering beyond
// plain text is out of scope.
package report

import (
	"sort"
	"strconv"

	"github.com/okabe-h/sessionex/internal/archive"
	"github.com/okabe-h/sessionex/internal/core"
)

// TopRankCut bounds the high-conviction cohort: ranks 1..TopRankCut.
const TopRankCut = 5

// Trade is the slice of an archive row the reporter needs.
type Trade struct {
	Ticker     string
	SignalDate string
	ExitReason string
	PnL        float64
	ReturnPct  float64
	Rank       int
}

// TradesFromSnapshot extracts reportable trades from archive rows.
// Rows missing a parseable pnl are skipped; legacy rows with empty
// metadata still count.
func TradesFromSnapshot(s *archive.Snapshot) []Trade {
	out := make([]Trade, 0, len(s.Rows))
	for _, row := range s.Rows {
		pnl, err := strconv.ParseFloat(row["pnl"], 64)
		if err != nil {
			continue
		}
		ret, _ := strconv.ParseFloat(row["return_pct"], 64)
		rank, _ := strconv.Atoi(row["rank"])
		out = append(out, Trade{
			Ticker:     row["ticker"],
			SignalDate: row["signal_date"],
			ExitReason: row["exit_reason"],
			PnL:        pnl,
			ReturnPct:  ret,
			Rank:       rank,
		})
	}
	return out
}

// TradesFromRecords adapts freshly simulated records, letting a batch
// be reported before it is merged.
func TradesFromRecords(records []core.TradeRecord) []Trade {
	out := make([]Trade, 0, len(records))
	for _, r := range records {
		out = append(out, Trade{
			Ticker:     r.Ticker,
			SignalDate: r.SignalDate.Format("2006-01-02"),
			ExitReason: string(r.ExitReason),
			PnL:        r.PnL,
			ReturnPct:  r.ReturnPct,
			Rank:       r.Rank,
		})
	}
	return out
}

// DayStats is the roll-up for one signal date.
type DayStats struct {
	Date  string
	Stats RuleStats
}

// Summary is the full aggregate view over a set of trades.
type Summary struct {
	Overall     RuleStats
	ByRule      map[string]RuleStats
	ByDay       []DayStats
	TopRank     RuleStats
	MaxDrawdown float64 // percent, over the return sequence
	Sharpe      float64
	Coverage    float64 // percent of issued signals that completed
}

// BuildSummary aggregates trades. issued is the number of candidates
// the signal generator produced; zero leaves coverage at zero rather
// than guessing.
func BuildSummary(trades []Trade, issued int) Summary {
	byRule := make(map[string][]Trade)
	byDay := make(map[string][]Trade)
	var topRank []Trade

	for _, t := range trades {
		byRule[t.ExitReason] = append(byRule[t.ExitReason], t)
		byDay[t.SignalDate] = append(byDay[t.SignalDate], t)
		if t.Rank >= 1 && t.Rank <= TopRankCut {
			topRank = append(topRank, t)
		}
	}

	s := Summary{
		Overall: calcStats(trades),
		ByRule:  make(map[string]RuleStats, len(byRule)),
		TopRank: calcStats(topRank),
	}
	for rule, ts := range byRule {
		s.ByRule[rule] = calcStats(ts)
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		s.ByDay = append(s.ByDay, DayStats{Date: d, Stats: calcStats(byDay[d])})
	}

	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.ReturnPct / 100
	}
	s.MaxDrawdown = maxDrawdown(returns) * 100
	s.Sharpe = sharpeRatio(returns)

	if issued > 0 {
		s.Coverage = float64(len(trades)) / float64(issued) * 100
	}
	return s
}
