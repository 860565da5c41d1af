package bars

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// fileBar is the on-disk row shape for the file provider.
type fileBar struct {
	Ticker string    `json:"ticker"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// FileProvider serves bars from one JSON file holding every row. It
// exists for offline reruns against exported data; production runs use
// the ClickHouse source.
type FileProvider struct {
	rows []core.Bar
}

// NewFileProvider loads and parses the file once.
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bar file: %w", err)
	}

	var raw []fileBar
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing bar file %s: %w", path, err)
	}

	rows := make([]core.Bar, len(raw))
	for i, r := range raw {
		rows[i] = core.Bar{
			Ticker: r.Ticker,
			Time:   r.Time,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return &FileProvider{rows: rows}, nil
}

// FetchBars returns the rows for ticker inside [from, to].
func (f *FileProvider) FetchBars(ctx context.Context, ticker string, from, to time.Time) ([]core.Bar, error) {
	var out []core.Bar
	for _, b := range f.rows {
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
