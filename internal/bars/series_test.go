package bars

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

func sessionBars(ticker string, day time.Time, n int, startPrice float64) []core.Bar {
	out := make([]core.Bar, n)
	for i := 0; i < n; i++ {
		p := startPrice + float64(i)
		out[i] = core.Bar{
			Ticker: ticker,
			Time:   day.Add(time.Duration(i) * 5 * time.Minute),
			Open:   p, High: p + 1, Low: p - 1, Close: p + 0.5,
			Volume: 1000,
		}
	}
	return out
}

func TestEntryWindow_Basic(t *testing.T) {
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	s := NewSeries(sessionBars("7203", day, 10, 100), time.UTC)

	signal := day.Add(-10 * time.Hour) // previous evening
	w, err := s.EntryWindow("7203", signal, 0)
	if err != nil {
		t.Fatalf("EntryWindow: %v", err)
	}
	if w.EntryIndex != 0 {
		t.Errorf("EntryIndex = %d, want 0", w.EntryIndex)
	}
	if len(w.Session()) != 10 {
		t.Errorf("session length = %d, want 10", len(w.Session()))
	}
	if w.Bars[w.EntryIndex].Open != 100 {
		t.Errorf("entry open = %f", w.Bars[w.EntryIndex].Open)
	}
}

func TestEntryWindow_Warmup(t *testing.T) {
	prev := time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	rows := append(sessionBars("7203", prev, 20, 95), sessionBars("7203", day, 10, 100)...)
	s := NewSeries(rows, time.UTC)

	w, err := s.EntryWindow("7203", day.Add(-time.Hour), 15)
	if err != nil {
		t.Fatalf("EntryWindow: %v", err)
	}
	if w.EntryIndex != 15 {
		t.Errorf("EntryIndex = %d, want 15 warm-up bars", w.EntryIndex)
	}
	if len(w.Session()) != 10 {
		t.Errorf("session length = %d, want 10", len(w.Session()))
	}
}

func TestEntryWindow_WarmupClampedToHistory(t *testing.T) {
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	s := NewSeries(sessionBars("7203", day, 8, 100), time.UTC)

	w, err := s.EntryWindow("7203", day.Add(9*time.Minute), 50)
	if err != nil {
		t.Fatalf("EntryWindow: %v", err)
	}
	// only two bars exist before the entry bar
	if w.EntryIndex != 2 {
		t.Errorf("EntryIndex = %d, want 2", w.EntryIndex)
	}
}

func TestEntryWindow_UnknownTicker(t *testing.T) {
	s := NewSeries(nil, time.UTC)
	_, err := s.EntryWindow("0000", time.Now(), 0)
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestEntryWindow_MissingEntryBar(t *testing.T) {
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	s := NewSeries(sessionBars("7203", day, 10, 100), time.UTC)

	_, err := s.EntryWindow("7203", day.Add(24*time.Hour), 0)
	if !errors.Is(err, core.ErrMissingEntryBar) {
		t.Errorf("expected ErrMissingEntryBar, got %v", err)
	}
}

func TestEntryWindow_InsufficientData(t *testing.T) {
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	s := NewSeries(sessionBars("7203", day, 3, 100), time.UTC)

	_, err := s.EntryWindow("7203", day.Add(-time.Hour), 0)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestLoad_ThroughProvider(t *testing.T) {
	day := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	rows := append(sessionBars("7203", day, 6, 100), sessionBars("9984", day, 6, 5000)...)
	p := NewMemoryProvider(rows)

	s, err := Load(context.Background(), p, []string{"7203", "9984"}, day.Add(-time.Hour), day.Add(time.Hour), time.UTC)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Bars("7203")) != 6 || len(s.Bars("9984")) != 6 {
		t.Errorf("unexpected series sizes: %d / %d", len(s.Bars("7203")), len(s.Bars("9984")))
	}
	if got := len(s.Tickers()); got != 2 {
		t.Errorf("Tickers() = %d, want 2", got)
	}
}
