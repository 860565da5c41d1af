package archive

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

// SchemaVersion is the snapshot document version this build writes.
const SchemaVersion = 1

// Columns every snapshot carries, in canonical order. Merges may add
// more when a batch introduces new diagnostics.
var baseColumns = []string{
	"ticker",
	"name",
	"signal_date",
	"side",
	"entry_time",
	"entry_price",
	"exit_time",
	"exit_price",
	"exit_reason",
	"bars_held",
	"pnl",
	"return_pct",
	"split_ratio",
	"rank",
	"score",
	"reason",
}

// legacyAliases maps a current column to the older column name it was
// renamed from. When a merge introduces a current column into a
// snapshot that predates it, old rows are backfilled from the alias.
var legacyAliases = map[string]string{
	"signal_date": "date",
	"return_pct":  "profit_rate",
	"exit_reason": "exit_strategy",
}

// Row is one archived trade in tabular form. Cells are strings so the
// snapshot survives column renames and mixed-type history.
type Row map[string]string

// Key returns the upsert key for the row.
func (r Row) Key() string {
	return r["ticker"] + "|" + r["signal_date"]
}

// Snapshot is the whole archive for one strategy family. It is read,
// merged and rewritten wholesale on every batch.
type Snapshot struct {
	Version     int       `json:"version"`
	Generation  int64     `json:"generation"`
	GeneratedAt time.Time `json:"generated_at"`
	RunID       string    `json:"run_id"`
	Columns     []string  `json:"columns"`
	Rows        []Row     `json:"rows"`
}

// NewSnapshot returns an empty snapshot at generation zero.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version: SchemaVersion,
		Columns: append([]string(nil), baseColumns...),
		Rows:    []Row{},
	}
}

// Encode serializes the snapshot as indented JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode parses snapshot bytes, rejecting unknown versions.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, core.WrapError(core.ErrSnapshotCorrupt, err)
	}
	if s.Version <= 0 || s.Version > SchemaVersion {
		return nil, &core.Error{
			Code:    "SNAPSHOT_VERSION",
			Message: "unsupported snapshot version " + strconv.Itoa(s.Version),
		}
	}
	if s.Columns == nil {
		s.Columns = append([]string(nil), baseColumns...)
	}
	if s.Rows == nil {
		s.Rows = []Row{}
	}
	return &s, nil
}

// RowFromRecord flattens a trade record into archive cells.
func RowFromRecord(t core.TradeRecord) Row {
	return Row{
		"ticker":      t.Ticker,
		"name":        t.Name,
		"signal_date": t.SignalDate.Format("2006-01-02"),
		"side":        string(t.Side),
		"entry_time":  t.EntryTime.Format(time.RFC3339),
		"entry_price": formatFloat(t.EntryPrice),
		"exit_time":   t.ExitTime.Format(time.RFC3339),
		"exit_price":  formatFloat(t.ExitPrice),
		"exit_reason": string(t.ExitReason),
		"bars_held":   strconv.Itoa(t.BarsHeld),
		"pnl":         formatFloat(t.PnL),
		"return_pct":  formatFloat(t.ReturnPct),
		"split_ratio": formatFloat(t.SplitRatio),
		"rank":        strconv.Itoa(t.Rank),
		"score":       formatFloat(t.Score),
		"reason":      t.Reason,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
