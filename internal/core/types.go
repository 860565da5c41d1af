package core

import "time"

// Side is the direction of a simulated position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// ExitReason identifies which rule closed a trade.
type ExitReason string

const (
	ExitStopLoss    ExitReason = "stop_loss"
	ExitTakeProfit  ExitReason = "take_profit"
	ExitMACDCross   ExitReason = "macd_cross"
	ExitMACDZero    ExitReason = "macd_zero"
	ExitMACross     ExitReason = "ma_cross"
	ExitRSIBand     ExitReason = "rsi_band"
	ExitGranville   ExitReason = "granville"
	ExitTimeExpiry  ExitReason = "time_expiry"
	ExitForcedClose ExitReason = "forced_close"
)

// Bar represents one OHLCV sample for a ticker.
type Bar struct {
	Ticker string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsValid checks if the bar has a usable price range.
func (b Bar) IsValid() bool {
	return b.Ticker != "" && b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0
}

// Candidate is one trade candidate issued by the external signal
// generator. Rank, Score and Reason are selector metadata carried
// through to the archive untouched.
type Candidate struct {
	Ticker         string
	Name           string
	SignalDate     time.Time
	ReferencePrice float64
	Side           Side
	Rank           int
	Score          float64
	Reason         string
}

// DateKey returns the signal date in YYYY-MM-DD form.
func (c Candidate) DateKey() string {
	return c.SignalDate.Format("2006-01-02")
}

// TradeRecord is the immutable outcome of one simulated candidate.
type TradeRecord struct {
	Ticker     string
	Name       string
	SignalDate time.Time
	Side       Side
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  float64
	ExitReason ExitReason
	BarsHeld   int
	PnL        float64 // per-share, signed by side
	ReturnPct  float64
	SplitRatio float64
	Rank       int
	Score      float64
	Reason     string
}

// Key identifies a record in the archive: same key overwrites.
func (t TradeRecord) Key() string {
	return t.Ticker + "|" + t.SignalDate.Format("2006-01-02")
}

// IsWin returns true if the trade was profitable.
func (t TradeRecord) IsWin() bool {
	return t.PnL > 0
}

// DirectionalPnL computes per-share profit for the given side.
func DirectionalPnL(side Side, entry, exit float64) float64 {
	if side == SideShort {
		return entry - exit
	}
	return exit - entry
}
