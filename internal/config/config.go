package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/okabe-h/sessionex/internal/core"
)

type Config struct {
	Timezone string         `mapstructure:"timezone"`
	Bars     BarsConfig     `mapstructure:"bars"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// BarsConfig selects the market-data backend for price series.
type BarsConfig struct {
	Source     string `mapstructure:"source"` // "clickhouse" or "file"
	DSN        string `mapstructure:"dsn"`
	Table      string `mapstructure:"table"`
	Path       string `mapstructure:"path"` // for file source
	WarmupBars int    `mapstructure:"warmup_bars"`
}

// StrategyConfig is the closed, typed configuration for one strategy
// family. Every rule family has its own struct; there are no untyped
// parameter maps.
type StrategyConfig struct {
	Name    string `mapstructure:"name"`
	Side    string `mapstructure:"side"`
	Workers int    `mapstructure:"workers"`

	// CloseOnExhaustedData opts into a best-effort forced close at the
	// last known close when the window ends before any rule fires.
	// Default false: such candidates are skipped and tallied.
	CloseOnExhaustedData bool `mapstructure:"close_on_exhausted_data"`

	StopLoss   StopLossConfig   `mapstructure:"stop_loss"`
	TakeProfit TakeProfitConfig `mapstructure:"take_profit"`
	MACDCross  MACDCrossConfig  `mapstructure:"macd_cross"`
	MACDZero   MACDZeroConfig   `mapstructure:"macd_zero"`
	MACross    MACrossConfig    `mapstructure:"ma_cross"`
	RSIBand    RSIBandConfig    `mapstructure:"rsi_band"`
	Granville  GranvilleConfig  `mapstructure:"granville"`
	Horizon    HorizonConfig    `mapstructure:"horizon"`
}

// StopLossConfig caps the adverse excursion. Pct is a fraction of the
// entry price (0.03 = 3%).
type StopLossConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Pct     float64 `mapstructure:"pct"`
}

// TakeProfitConfig locks in the favorable excursion.
type TakeProfitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Pct     float64 `mapstructure:"pct"`
}

// MACDCrossConfig exits on a MACD line / signal line crossover against
// the position. SignalMode is "sma" (retail-platform semantics, the
// default everywhere in this codebase) or "ema"; the two shift
// crossover timing and must never be mixed within one family.
type MACDCrossConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Fast         int    `mapstructure:"fast"`
	Slow         int    `mapstructure:"slow"`
	SignalPeriod int    `mapstructure:"signal_period"`
	SignalMode   string `mapstructure:"signal_mode"`
	Fill         string `mapstructure:"fill"` // "same_bar_close" or "next_bar_open"
}

// MACDZeroConfig exits when the MACD line recrosses zero from below.
type MACDZeroConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Fast         int    `mapstructure:"fast"`
	Slow         int    `mapstructure:"slow"`
	SignalPeriod int    `mapstructure:"signal_period"`
	SignalMode   string `mapstructure:"signal_mode"`
}

// MACrossConfig exits when the close crosses the moving average against
// the position.
type MACrossConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Period  int    `mapstructure:"period"`
	Fill    string `mapstructure:"fill"`
}

// RSIBandConfig exits when RSI enters an extreme band.
type RSIBandConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Period    int     `mapstructure:"period"`
	Threshold float64 `mapstructure:"threshold"`
	Below     bool    `mapstructure:"below"`
}

// GranvilleConfig exits on the first Granville signal against the
// position: shorts are covered on a buy variant, longs closed on a
// sell variant. Proximity to the moving average is measured in
// ProximityATRMult true ranges; DeviationPct is the percentage gap
// treated as a deep deviation.
type GranvilleConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Period           int     `mapstructure:"period"`
	SlopeLookback    int     `mapstructure:"slope_lookback"`
	ProximityATRMult float64 `mapstructure:"proximity_atr_mult"`
	DeviationPct     float64 `mapstructure:"deviation_pct"`
	ATRPeriod        int     `mapstructure:"atr_period"`
}

// HorizonConfig bounds the holding time. The expiry rule built from it
// is always present so every simulation terminates.
type HorizonConfig struct {
	MaxHoldBars int `mapstructure:"max_hold_bars"`
}

// ArchiveConfig selects the snapshot storage backend.
type ArchiveConfig struct {
	Type     string   `mapstructure:"type"` // "localfs" or "s3"
	Path     string   `mapstructure:"path"`
	Snapshot string   `mapstructure:"snapshot"` // snapshot name per strategy family
	S3       S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig controls the one-shot metrics emit. Textfile, when
// set, is the path the run's metrics are written to in the Prometheus
// text format for a textfile collector to scrape.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with documented defaults: a short-side
// session strategy on 5-minute bars, 3% stop, 10% take-profit,
// MACD(5,20,9) with SMA signal smoothing, RSI(9) oversold cover,
// MA(25) crossover, one-session horizon of 66 bars.
func Defaults() *Config {
	return &Config{
		Timezone: "Asia/Tokyo",
		Bars: BarsConfig{
			Source:     "clickhouse",
			Table:      "bars_5m",
			WarmupBars: 40,
		},
		Strategy: StrategyConfig{
			Name:    "session_short",
			Side:    "short",
			Workers: 4,
			StopLoss: StopLossConfig{
				Enabled: true,
				Pct:     0.03,
			},
			TakeProfit: TakeProfitConfig{
				Enabled: true,
				Pct:     0.10,
			},
			MACDCross: MACDCrossConfig{
				Enabled:      true,
				Fast:         5,
				Slow:         20,
				SignalPeriod: 9,
				SignalMode:   "sma",
				Fill:         "same_bar_close",
			},
			MACDZero: MACDZeroConfig{
				Fast:         5,
				Slow:         20,
				SignalPeriod: 9,
				SignalMode:   "sma",
			},
			MACross: MACrossConfig{
				Period: 25,
				Fill:   "same_bar_close",
			},
			RSIBand: RSIBandConfig{
				Period:    9,
				Threshold: 30,
				Below:     true,
			},
			Granville: GranvilleConfig{
				Period:           25,
				SlopeLookback:    3,
				ProximityATRMult: 0.5,
				DeviationPct:     1.5,
				ATRPeriod:        14,
			},
			Horizon: HorizonConfig{
				MaxHoldBars: 66,
			},
		},
		Archive: ArchiveConfig{
			Type:     "localfs",
			Path:     "data/archive",
			Snapshot: "session_short",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Strategy.Side != string(core.SideLong) && c.Strategy.Side != string(core.SideShort) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("side must be long or short, got %q", c.Strategy.Side))
	}
	if c.Strategy.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers must be at least 1, got %d", c.Strategy.Workers))
	}
	if c.Strategy.Horizon.MaxHoldBars < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_hold_bars must be at least 1, got %d", c.Strategy.Horizon.MaxHoldBars))
	}
	if c.Strategy.StopLoss.Enabled && (c.Strategy.StopLoss.Pct <= 0 || c.Strategy.StopLoss.Pct >= 1) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stop_loss.pct must be in (0,1), got %f", c.Strategy.StopLoss.Pct))
	}
	if c.Strategy.TakeProfit.Enabled && (c.Strategy.TakeProfit.Pct <= 0 || c.Strategy.TakeProfit.Pct >= 1) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("take_profit.pct must be in (0,1), got %f", c.Strategy.TakeProfit.Pct))
	}
	for _, mode := range []string{c.Strategy.MACDCross.SignalMode, c.Strategy.MACDZero.SignalMode} {
		if mode != "" && mode != "sma" && mode != "ema" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("signal_mode must be sma or ema, got %q", mode))
		}
	}
	if g := c.Strategy.Granville; g.Enabled {
		if g.Period < 2 || g.SlopeLookback < 1 || g.ATRPeriod < 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("granville periods out of range: period=%d slope_lookback=%d atr_period=%d",
					g.Period, g.SlopeLookback, g.ATRPeriod))
		}
		if g.ProximityATRMult <= 0 || g.DeviationPct <= 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("granville proximity_atr_mult and deviation_pct must be positive"))
		}
	}
	for _, fill := range []string{c.Strategy.MACDCross.Fill, c.Strategy.MACross.Fill} {
		if fill != "" && fill != "same_bar_close" && fill != "next_bar_open" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("fill must be same_bar_close or next_bar_open, got %q", fill))
		}
	}
	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive.path required for localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive.s3.bucket required"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive.type must be localfs or s3, got %q", c.Archive.Type))
	}
	if c.Archive.Snapshot == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive.snapshot name required"))
	}
	return nil
}
