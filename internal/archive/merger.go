package archive

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/okabe-h/sessionex/internal/core"
	store "github.com/okabe-h/sessionex/internal/storage/archive"
)

// Merger upserts batch results into one snapshot. Merges against the
// same path must be serialized by the caller; a generation moving under
// a merge in flight is reported as a conflict, never partially applied.
type Merger struct {
	store store.Store
	path  string
	log   *zap.Logger

	now func() time.Time
}

// NewMerger creates a merger for the snapshot at path.
func NewMerger(s store.Store, path string, log *zap.Logger) *Merger {
	return &Merger{
		store: s,
		path:  path,
		log:   log,
		now:   time.Now,
	}
}

// Load reads the current snapshot, or an empty one if none exists yet.
func (m *Merger) Load(ctx context.Context) (*Snapshot, error) {
	exists, err := m.store.Exists(ctx, m.path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return NewSnapshot(), nil
	}
	data, err := m.store.Read(ctx, m.path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Merge upserts records into the snapshot and rewrites it. Rows whose
// (ticker, signal_date) key appears in the batch are replaced; all
// other rows are preserved verbatim, including columns this build no
// longer writes.
func (m *Merger) Merge(ctx context.Context, records []core.TradeRecord, runID string) (*Snapshot, error) {
	base, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}

	merged := m.apply(base, records, runID)

	data, err := merged.Encode()
	if err != nil {
		return nil, err
	}

	// A generation that moved since Load means another writer got in.
	current, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	if current.Generation != base.Generation {
		return nil, core.ErrArchiveConflict
	}

	if err := m.store.Write(ctx, m.path, data); err != nil {
		return nil, err
	}

	m.log.Info("archive merged",
		zap.String("path", m.path),
		zap.Int64("generation", merged.Generation),
		zap.Int("batch", len(records)),
		zap.Int("rows", len(merged.Rows)))

	return merged, nil
}

func (m *Merger) apply(base *Snapshot, records []core.TradeRecord, runID string) *Snapshot {
	newRows := make([]Row, 0, len(records))
	replaced := make(map[string]bool, len(records))
	for _, rec := range records {
		row := RowFromRecord(rec)
		replaced[row.Key()] = true
		newRows = append(newRows, row)
	}

	columns := unionColumns(base.Columns, baseColumns)

	// Backfill before matching keys: a legacy row that stores its date
	// under an aliased column must still be replaced by a new record
	// with the same (ticker, signal_date).
	kept := make([]Row, 0, len(base.Rows)+len(newRows))
	for _, row := range base.Rows {
		row = backfill(row, base.Columns, columns)
		if replaced[row.Key()] {
			continue
		}
		kept = append(kept, row)
	}
	kept = append(kept, newRows...)

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i]["ticker"] != kept[j]["ticker"] {
			return kept[i]["ticker"] < kept[j]["ticker"]
		}
		return kept[i]["signal_date"] < kept[j]["signal_date"]
	})

	return &Snapshot{
		Version:     SchemaVersion,
		Generation:  base.Generation + 1,
		GeneratedAt: m.now().UTC(),
		RunID:       runID,
		Columns:     columns,
		Rows:        kept,
	}
}

// unionColumns keeps the existing order and appends columns the batch
// introduces.
func unionColumns(existing, incoming []string) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c] = true
	}
	for _, c := range incoming {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// backfill populates columns a legacy row predates. A renamed column
// copies from its old name when present; anything else stays empty.
func backfill(row Row, oldColumns, columns []string) Row {
	if len(columns) == len(oldColumns) {
		return row
	}
	had := make(map[string]bool, len(oldColumns))
	for _, c := range oldColumns {
		had[c] = true
	}
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	for _, c := range columns {
		if had[c] {
			continue
		}
		if _, ok := out[c]; ok {
			continue
		}
		if legacy, ok := legacyAliases[c]; ok {
			if v, have := row[legacy]; have {
				out[c] = v
				continue
			}
		}
		out[c] = ""
	}
	return out
}
