package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

func TestSnapshot_EncodeDecode(t *testing.T) {
	s := NewSnapshot()
	s.Generation = 3
	s.RunID = "run-9"
	s.Rows = append(s.Rows, Row{"ticker": "T1", "signal_date": "2024-01-05"})

	data, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Generation != 3 || got.RunID != "run-9" {
		t.Errorf("roundtrip lost header: %+v", got)
	}
	if len(got.Rows) != 1 || got.Rows[0].Key() != "T1|2024-01-05" {
		t.Errorf("roundtrip lost rows: %+v", got.Rows)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	if err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	var cerr *core.Error
	if !errors.As(err, &cerr) || cerr.Code != "SNAPSHOT_CORRUPT" {
		t.Errorf("expected SNAPSHOT_CORRUPT, got %v", err)
	}
}

func TestDecode_UnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": 99}`))
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestRowFromRecord(t *testing.T) {
	day, _ := time.Parse("2006-01-02", "2024-01-05")
	rec := core.TradeRecord{
		Ticker:     "7203",
		SignalDate: day,
		Side:       core.SideShort,
		EntryPrice: 1000,
		ExitPrice:  970,
		ExitReason: core.ExitStopLoss,
		BarsHeld:   4,
		PnL:        30,
		ReturnPct:  3,
		SplitRatio: 1,
	}

	row := RowFromRecord(rec)
	if row.Key() != "7203|2024-01-05" {
		t.Errorf("key = %q", row.Key())
	}
	if row["exit_reason"] != "stop_loss" {
		t.Errorf("exit_reason = %q", row["exit_reason"])
	}
	if row["bars_held"] != "4" {
		t.Errorf("bars_held = %q", row["bars_held"])
	}
	if row["pnl"] != "30" {
		t.Errorf("pnl = %q", row["pnl"])
	}
}
