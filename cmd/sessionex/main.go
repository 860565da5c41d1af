package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okabe-h/sessionex/internal/config"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "sessionex",
	Short: "sessionex - session exit backtest engine",
	Long: `sessionex replays candidate trade signals against historical price bars
and evaluates competing exit rules (stop-loss, take-profit, indicator
crossovers, time expiry), merging per-trade outcomes into a durable
performance archive.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		cfg := config.Defaults()
		return cfg, cfg.Validate()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
