package bars

import (
	"sort"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// Normalizer cleans raw bar rows into a canonical per-ticker ordering:
// one session timezone, no duplicate (ticker, timestamp) pairs,
// ascending time.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer targeting the given session
// location. A nil location defaults to UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Normalize converts all timestamps to the session location, drops
// duplicate (ticker, timestamp) rows keeping the most complete one, and
// sorts ascending by (ticker, time).
func (n *Normalizer) Normalize(raw []core.Bar) []core.Bar {
	type key struct {
		ticker string
		unix   int64
	}

	best := make(map[key]core.Bar, len(raw))
	for _, b := range raw {
		b.Time = b.Time.In(n.loc)
		k := key{ticker: b.Ticker, unix: b.Time.Unix()}
		if prev, ok := best[k]; !ok || completeness(b) > completeness(prev) {
			best[k] = b
		}
	}

	out := make([]core.Bar, 0, len(best))
	for _, b := range best {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// completeness counts populated fields so duplicate rows from a sparser
// source lose to fuller ones.
func completeness(b core.Bar) int {
	n := 0
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if v != 0 {
			n++
		}
	}
	return n
}
