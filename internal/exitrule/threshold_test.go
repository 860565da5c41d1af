package exitrule

import (
	"math"
	"testing"
	"time"

	"github.com/okabe-h/sessionex/internal/core"
)

func barsFromOHLC(rows [][4]float64) []core.Bar {
	base := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	out := make([]core.Bar, len(rows))
	for i, r := range rows {
		out[i] = core.Bar{
			Ticker: "7203",
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   r[0], High: r[1], Low: r[2], Close: r[3],
			Volume: 1000,
		}
	}
	return out
}

func TestStopLoss_Long(t *testing.T) {
	w := Window{
		Bars: barsFromOHLC([][4]float64{
			{1000, 1005, 990, 1002},
			{1002, 1008, 980, 985},
			{985, 990, 950, 960}, // low crosses 970
		}),
		EntryPrice: 1000,
		Side:       core.SideLong,
	}

	trig, ok := StopLoss{Pct: 0.03}.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	if trig.BarOffset != 2 {
		t.Errorf("BarOffset = %d, want 2", trig.BarOffset)
	}
	if math.Abs(trig.Price-970) > 1e-9 {
		t.Errorf("fill = %f, want threshold 970", trig.Price)
	}
	if trig.Reason != core.ExitStopLoss {
		t.Errorf("reason = %s", trig.Reason)
	}
}

func TestStopLoss_ShortMirrors(t *testing.T) {
	w := Window{
		Bars: barsFromOHLC([][4]float64{
			{1000, 1010, 995, 1005},
			{1005, 1035, 1000, 1032}, // high crosses 1030
		}),
		EntryPrice: 1000,
		Side:       core.SideShort,
	}

	trig, ok := StopLoss{Pct: 0.03}.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	if trig.BarOffset != 1 || math.Abs(trig.Price-1030) > 1e-9 {
		t.Errorf("got offset %d fill %f", trig.BarOffset, trig.Price)
	}
}

func TestStopLoss_NoTrigger(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{1000, 1005, 995, 1002}, {1002, 1006, 996, 1000}}),
		EntryPrice: 1000,
		Side:       core.SideLong,
	}
	if _, ok := (StopLoss{Pct: 0.03}).Evaluate(w); ok {
		t.Error("should not trigger inside the band")
	}
}

func TestStopLoss_ZeroPctDisabled(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{1000, 1005, 900, 1002}}),
		EntryPrice: 1000,
		Side:       core.SideLong,
	}
	if _, ok := (StopLoss{}).Evaluate(w); ok {
		t.Error("zero pct must disable the rule")
	}
}

func TestTakeProfit_Long(t *testing.T) {
	w := Window{
		Bars: barsFromOHLC([][4]float64{
			{1000, 1005, 995, 1001},
			{1001, 1120, 1000, 1090}, // high crosses 1100
		}),
		EntryPrice: 1000,
		Side:       core.SideLong,
	}

	trig, ok := TakeProfit{Pct: 0.10}.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	if trig.BarOffset != 1 || math.Abs(trig.Price-1100) > 1e-9 {
		t.Errorf("got offset %d fill %f", trig.BarOffset, trig.Price)
	}
	if trig.Reason != core.ExitTakeProfit {
		t.Errorf("reason = %s", trig.Reason)
	}
}

func TestTakeProfit_Short(t *testing.T) {
	w := Window{
		Bars: barsFromOHLC([][4]float64{
			{1000, 1010, 960, 970}, // low crosses 950? no
			{970, 980, 945, 950},   // low crosses 950
		}),
		EntryPrice: 1000,
		Side:       core.SideShort,
	}

	trig, ok := TakeProfit{Pct: 0.05}.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	if trig.BarOffset != 1 || math.Abs(trig.Price-950) > 1e-9 {
		t.Errorf("got offset %d fill %f", trig.BarOffset, trig.Price)
	}
}

func TestThreshold_EntryBarCanFill(t *testing.T) {
	// Same-bar intrabar fill on the entry bar itself is allowed.
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{1000, 1150, 995, 1100}}),
		EntryPrice: 1000,
		Side:       core.SideLong,
	}
	trig, ok := TakeProfit{Pct: 0.10}.Evaluate(w)
	if !ok || trig.BarOffset != 0 {
		t.Errorf("expected entry-bar trigger, got %+v ok=%v", trig, ok)
	}
}
