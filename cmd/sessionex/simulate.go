package main

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okabe-h/sessionex/internal/archive"
	"github.com/okabe-h/sessionex/internal/bars"
	"github.com/okabe-h/sessionex/internal/bars/clickhousesrc"
	"github.com/okabe-h/sessionex/internal/config"
	"github.com/okabe-h/sessionex/internal/logger"
	"github.com/okabe-h/sessionex/internal/metrics"
	"github.com/okabe-h/sessionex/internal/report"
	"github.com/okabe-h/sessionex/internal/simulator"
	store "github.com/okabe-h/sessionex/internal/storage/archive"
)

var (
	simulateCandidates string
	simulateDryRun     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate candidates and merge outcomes into the archive",
	Long: `Load price bars, replay every candidate through the configured exit
rules and upsert the resulting trade records into the archive snapshot.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateCandidates, "candidates", "", "candidates JSON file (required)")
	simulateCmd.Flags().BoolVar(&simulateDryRun, "dry-run", false, "simulate without merging into the archive")

	simulateCmd.MarkFlagRequired("candidates")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Must(debug)
	defer log.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	candidates, err := loadCandidates(simulateCandidates, loc)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates in %s", simulateCandidates)
	}

	provider, err := newProvider(ctx, cfg.Bars)
	if err != nil {
		return err
	}

	from, to := dateSpan(candidates)
	series, err := bars.Load(ctx, provider, uniqueTickers(candidates), from, to, loc)
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	sim := simulator.New(series, cfg.Strategy, cfg.Bars.WarmupBars, loc, log)
	runner := simulator.NewRunner(sim, cfg.Strategy.Workers, log, reg)

	batch, err := runner.Run(ctx, candidates)
	if err != nil {
		return err
	}

	fmt.Printf("=== Simulation %s ===\n", batch.RunID)
	fmt.Printf("Candidates:         %d\n", len(candidates))
	fmt.Printf("Simulated:          %d\n", batch.Simulated)
	fmt.Printf("Skipped no data:    %d\n", batch.SkippedNoData)
	fmt.Printf("Skipped no entry:   %d\n", batch.SkippedNoEntry)
	fmt.Printf("Skipped incomplete: %d\n", batch.SkippedIncomplete)
	fmt.Printf("Duration:           %s\n", batch.Duration.Round(time.Millisecond))
	fmt.Println()

	summary := report.BuildSummary(report.TradesFromRecords(batch.Records), len(candidates))
	printSummary(summary)

	// The run's counters leave the process through a textfile collector;
	// the registry itself lives only as long as the batch.
	emitMetrics := func() {
		if reg == nil || cfg.Metrics.Textfile == "" {
			return
		}
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("writing metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	if simulateDryRun {
		emitMetrics()
		fmt.Println("dry run: archive not updated")
		return nil
	}

	st, err := newStore(cfg.Archive)
	if err != nil {
		return err
	}
	merger := archive.NewMerger(st, snapshotPath(cfg.Archive), log)

	mergeStart := time.Now()
	snap, err := merger.Merge(ctx, batch.Records, batch.RunID)
	if err != nil {
		if reg != nil {
			reg.RecordMerge("conflict", time.Since(mergeStart).Seconds(), 0)
		}
		return err
	}
	if reg != nil {
		reg.RecordMerge("ok", time.Since(mergeStart).Seconds(), len(snap.Rows))
	}

	fmt.Printf("archive updated: generation %d, %d rows\n", snap.Generation, len(snap.Rows))
	emitMetrics()
	return nil
}

func newProvider(ctx context.Context, cfg config.BarsConfig) (bars.Provider, error) {
	switch cfg.Source {
	case "file":
		return bars.NewFileProvider(cfg.Path)
	default:
		return clickhousesrc.New(ctx, cfg.DSN, cfg.Table)
	}
}

func newStore(cfg config.ArchiveConfig) (store.Store, error) {
	if cfg.Type == "s3" {
		return store.NewS3(store.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return store.NewLocalFS(cfg.Path)
}

func snapshotPath(cfg config.ArchiveConfig) string {
	return path.Join("snapshots", cfg.Snapshot+".json")
}
