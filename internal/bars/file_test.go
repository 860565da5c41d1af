package bars

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileProvider_FetchBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")
	content := `[
		{"ticker":"T1","time":"2024-01-09T09:00:00Z","open":1000,"high":1005,"low":995,"close":1002,"volume":500},
		{"ticker":"T1","time":"2024-01-09T09:05:00Z","open":1002,"high":1008,"low":1000,"close":1006,"volume":450},
		{"ticker":"T2","time":"2024-01-09T09:00:00Z","open":200,"high":201,"low":199,"close":200,"volume":100}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	from := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows, err := p.FetchBars(context.Background(), "T1", from, to)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Open != 1000 || rows[1].Close != 1006 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	rows, err = p.FetchBars(context.Background(), "T1", from, from.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows outside range = %d, want 0", len(rows))
	}
}

func TestFileProvider_BadFile(t *testing.T) {
	if _, err := NewFileProvider(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not an array"), 0644)
	if _, err := NewFileProvider(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
