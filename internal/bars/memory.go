package bars

import (
	"context"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// MemoryProvider serves bars from an in-memory slice. It backs tests
// and offline runs where the series was already materialized.
type MemoryProvider struct {
	rows []core.Bar
}

// NewMemoryProvider wraps pre-loaded rows.
func NewMemoryProvider(rows []core.Bar) *MemoryProvider {
	return &MemoryProvider{rows: rows}
}

// FetchBars returns the rows for ticker inside [from, to].
func (m *MemoryProvider) FetchBars(ctx context.Context, ticker string, from, to time.Time) ([]core.Bar, error) {
	var out []core.Bar
	for _, b := range m.rows {
		if b.Ticker != ticker {
			continue
		}
		if b.Time.Before(from) || b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
