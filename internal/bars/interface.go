// Package bars loads, normalizes and windows per-ticker price series.
package bars

import (
	"context"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// MinSessionBars is the fewest bars a session window may hold before it
// is rejected as insufficient. Callers must never compute on partial
// windows below this.
const MinSessionBars = 5

// Provider fetches raw bar rows from a market-data backend. Rows may
// overlap across calls and carry inconsistent timezone tags; the
// Normalizer owns cleanup.
type Provider interface {
	FetchBars(ctx context.Context, ticker string, from, to time.Time) ([]core.Bar, error)
}
