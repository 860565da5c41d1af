package bars

import (
	"context"
	"fmt"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// Series is an immutable, once-loaded snapshot of normalized bars,
// grouped per ticker. It is the only state a simulation batch shares,
// and it must not be mutated while a batch runs.
type Series struct {
	byTicker map[string][]core.Bar
	loc      *time.Location
}

// NewSeries normalizes raw rows and builds the snapshot.
func NewSeries(raw []core.Bar, loc *time.Location) *Series {
	n := NewNormalizer(loc)
	clean := n.Normalize(raw)

	byTicker := make(map[string][]core.Bar)
	for _, b := range clean {
		byTicker[b.Ticker] = append(byTicker[b.Ticker], b)
	}
	return &Series{byTicker: byTicker, loc: n.loc}
}

// Load fetches bars for every ticker through the provider and returns
// the normalized snapshot.
func Load(ctx context.Context, p Provider, tickers []string, from, to time.Time, loc *time.Location) (*Series, error) {
	var raw []core.Bar
	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		rows, err := p.FetchBars(ctx, ticker, from, to)
		if err != nil {
			return nil, core.WrapError(core.ErrNoData, fmt.Errorf("fetch %s: %w", ticker, err))
		}
		raw = append(raw, rows...)
	}
	return NewSeries(raw, loc), nil
}

// Tickers returns the tickers present in the snapshot.
func (s *Series) Tickers() []string {
	out := make([]string, 0, len(s.byTicker))
	for t := range s.byTicker {
		out = append(out, t)
	}
	return out
}

// Bars returns the full ascending bar sequence for a ticker. The slice
// is shared; callers must not modify it.
func (s *Series) Bars(ticker string) []core.Bar {
	return s.byTicker[ticker]
}

// Window is a contiguous bar run handed to the simulator. Bars before
// EntryIndex are warm-up only: they stabilize indicator convergence and
// are never scanned for entries or exits.
type Window struct {
	Bars       []core.Bar
	EntryIndex int
}

// Session returns the window slice from the entry bar onward.
func (w Window) Session() []core.Bar {
	return w.Bars[w.EntryIndex:]
}

// EntryWindow locates the first bar strictly after `after` and returns
// it together with up to warmupBars preceding bars and every bar that
// follows. Errors:
//
//   - core.ErrNoData when the ticker is absent from the snapshot
//   - core.ErrMissingEntryBar when no bar follows `after`
//   - core.ErrInsufficientData when fewer than MinSessionBars bars
//     exist from the entry bar onward
func (s *Series) EntryWindow(ticker string, after time.Time, warmupBars int) (Window, error) {
	seq, ok := s.byTicker[ticker]
	if !ok || len(seq) == 0 {
		return Window{}, core.WrapError(core.ErrNoData, fmt.Errorf("ticker %s", ticker))
	}

	entry := -1
	for i, b := range seq {
		if b.Time.After(after) {
			entry = i
			break
		}
	}
	if entry < 0 {
		return Window{}, core.WrapError(core.ErrMissingEntryBar,
			fmt.Errorf("ticker %s has no bar after %s", ticker, after.Format(time.RFC3339)))
	}

	if len(seq)-entry < MinSessionBars {
		return Window{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("ticker %s: %d bars from entry, need %d", ticker, len(seq)-entry, MinSessionBars))
	}

	start := entry - warmupBars
	if start < 0 {
		start = 0
	}
	return Window{Bars: seq[start:], EntryIndex: entry - start}, nil
}
