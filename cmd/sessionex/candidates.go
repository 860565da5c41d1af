package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// candidateRow is the exchange format of the external signal
// generator: one JSON array, dates as YYYY-MM-DD.
type candidateRow struct {
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	SignalDate     string  `json:"signal_date"`
	ReferencePrice float64 `json:"reference_price"`
	Side           string  `json:"side"`
	Rank           int     `json:"rank"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

func loadCandidates(path string, loc *time.Location) ([]core.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}

	var rows []candidateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing candidates %s: %w", path, err)
	}

	out := make([]core.Candidate, 0, len(rows))
	for i, r := range rows {
		if r.Ticker == "" {
			return nil, fmt.Errorf("candidate %d: missing ticker", i)
		}
		day, err := time.ParseInLocation("2006-01-02", r.SignalDate, loc)
		if err != nil {
			return nil, fmt.Errorf("candidate %d (%s): bad signal_date %q", i, r.Ticker, r.SignalDate)
		}
		out = append(out, core.Candidate{
			Ticker:         r.Ticker,
			Name:           r.Name,
			SignalDate:     day,
			ReferencePrice: r.ReferencePrice,
			Side:           core.Side(r.Side),
			Rank:           r.Rank,
			Score:          r.Score,
			Reason:         r.Reason,
		})
	}
	return out, nil
}

// uniqueTickers collects the tickers a batch needs, sorted for stable
// fetch order.
func uniqueTickers(candidates []core.Candidate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if !seen[c.Ticker] {
			seen[c.Ticker] = true
			out = append(out, c.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

// dateSpan derives the fetch range: a warm-up margin of sessions before
// the earliest signal, and room for the holding horizon after the
// latest.
func dateSpan(candidates []core.Candidate) (time.Time, time.Time) {
	min, max := candidates[0].SignalDate, candidates[0].SignalDate
	for _, c := range candidates[1:] {
		if c.SignalDate.Before(min) {
			min = c.SignalDate
		}
		if c.SignalDate.After(max) {
			max = c.SignalDate
		}
	}
	return min.AddDate(0, 0, -5), max.AddDate(0, 0, 10)
}
