package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/okabe-h/sessionex/internal/archive"
	"github.com/okabe-h/sessionex/internal/logger"
	"github.com/okabe-h/sessionex/internal/report"
)

var reportByDay bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate archived trade outcomes",
	Long:  "Read the archive snapshot and print win rate and P&L roll-ups per exit rule.",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportByDay, "by-day", false, "include per-day roll-ups")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Must(debug)
	defer log.Sync()

	st, err := newStore(cfg.Archive)
	if err != nil {
		return err
	}
	merger := archive.NewMerger(st, snapshotPath(cfg.Archive), log)

	snap, err := merger.Load(ctx)
	if err != nil {
		return err
	}
	if len(snap.Rows) == 0 {
		fmt.Println("archive is empty")
		return nil
	}

	trades := report.TradesFromSnapshot(snap)
	summary := report.BuildSummary(trades, 0)

	fmt.Printf("=== Archive %s (generation %d, %d rows) ===\n",
		cfg.Archive.Snapshot, snap.Generation, len(snap.Rows))
	printSummary(summary)

	if reportByDay {
		fmt.Println("\nPer day:")
		for _, d := range summary.ByDay {
			fmt.Printf("  %s  trades=%-4d win_rate=%5.1f%%  pnl=%+.1f\n",
				d.Date, d.Stats.Trades, d.Stats.WinRate, d.Stats.TotalPnL)
		}
	}
	return nil
}

func printSummary(s report.Summary) {
	if s.Overall.Trades == 0 {
		fmt.Println("no completed trades")
		return
	}

	fmt.Printf("Trades:    %d (wins %d, losses %d)\n", s.Overall.Trades, s.Overall.Wins, s.Overall.Losses)
	fmt.Printf("Win rate:  %.1f%%\n", s.Overall.WinRate)
	fmt.Printf("Total PnL: %+.1f (avg %+.2f, max %+.1f, min %+.1f)\n",
		s.Overall.TotalPnL, s.Overall.AvgPnL, s.Overall.MaxPnL, s.Overall.MinPnL)
	fmt.Printf("Drawdown:  %.1f%%  Sharpe: %.2f\n", s.MaxDrawdown, s.Sharpe)
	if s.Coverage > 0 {
		fmt.Printf("Coverage:  %.1f%%\n", s.Coverage)
	}
	if s.TopRank.Trades > 0 {
		fmt.Printf("Top %d ranks: %d trades, win rate %.1f%%, pnl %+.1f\n",
			report.TopRankCut, s.TopRank.Trades, s.TopRank.WinRate, s.TopRank.TotalPnL)
	}

	rules := make([]string, 0, len(s.ByRule))
	for r := range s.ByRule {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	fmt.Println("\nPer exit rule:")
	for _, r := range rules {
		st := s.ByRule[r]
		fmt.Printf("  %-14s trades=%-4d win_rate=%5.1f%%  pnl=%+.1f\n",
			r, st.Trades, st.WinRate, st.TotalPnL)
	}
}
