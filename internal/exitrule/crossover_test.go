package exitrule

import (
	"math"
	"testing"

	"github.com/okabe-h/sessionex/internal/core"
)

func TestCrossover_AboveSameBarClose(t *testing.T) {
	nan := math.NaN()
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 10.5}, {10.5, 12, 10, 11}, {11, 12, 10, 11.5}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMACDLine:   {nan, -0.2, 0.3, 0.4},
			SeriesMACDSignal: {nan, 0.0, 0.1, 0.2},
		},
	}

	rule := Crossover{
		A: SeriesMACDLine, B: SeriesMACDSignal,
		Direction: CrossAbove, Fill: FillSameBarClose,
		Reason: core.ExitMACDCross,
	}

	trig, ok := rule.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	// pair (1,2): -0.2<=0.0 then 0.3>0.1
	if trig.BarOffset != 2 {
		t.Errorf("BarOffset = %d, want 2", trig.BarOffset)
	}
	if trig.Price != 11 {
		t.Errorf("fill = %f, want same-bar close 11", trig.Price)
	}
}

func TestCrossover_NextBarOpen(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 11}, {11.2, 12, 11, 11.5}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMA: {10.5, 10.6, 10.7},
		},
	}

	rule := Crossover{
		A: SeriesClose, B: SeriesMA,
		Direction: CrossAbove, Fill: FillNextBarOpen,
		Reason: core.ExitMACross,
	}

	trig, ok := rule.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	// cross confirmed on bar 1, fill at bar 2 open
	if trig.BarOffset != 2 {
		t.Errorf("BarOffset = %d, want 2", trig.BarOffset)
	}
	if trig.Price != 11.2 {
		t.Errorf("fill = %f, want next open 11.2", trig.Price)
	}
}

func TestCrossover_NextBarOpenAtWindowEnd(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 11}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMA: {10.5, 10.6},
		},
	}

	rule := Crossover{
		A: SeriesClose, B: SeriesMA,
		Direction: CrossAbove, Fill: FillNextBarOpen,
		Reason: core.ExitMACross,
	}

	// the cross confirms on the final bar; there is no next open to fill
	if _, ok := rule.Evaluate(w); ok {
		t.Error("cross on the last bar must not trigger with next-open fill")
	}
}

func TestCrossover_NaNPairsSkipped(t *testing.T) {
	nan := math.NaN()
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 10.5}, {10.5, 11, 10, 10.8}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMACDLine:   {nan, 0.3, 0.4},
			SeriesMACDSignal: {nan, 0.1, 0.2},
		},
	}

	rule := Crossover{
		A: SeriesMACDLine, B: SeriesMACDSignal,
		Direction: CrossAbove, Fill: FillSameBarClose,
		Reason: core.ExitMACDCross,
	}

	// A is above B everywhere valid; the NaN pair must not read as a
	// below-to-above transition.
	if _, ok := rule.Evaluate(w); ok {
		t.Error("no ordering change, should not trigger")
	}
}

func TestCrossover_Below(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 9.5}}),
		EntryPrice: 10,
		Side:       core.SideLong,
		Indicators: map[string][]float64{
			SeriesMA: {9.8, 9.8},
		},
	}

	rule := Crossover{
		A: SeriesClose, B: SeriesMA,
		Direction: CrossBelow, Fill: FillSameBarClose,
		Reason: core.ExitMACross,
	}

	trig, ok := rule.Evaluate(w)
	if !ok || trig.BarOffset != 1 {
		t.Errorf("expected below-cross on bar 1, got %+v ok=%v", trig, ok)
	}
}

func TestZeroRecross(t *testing.T) {
	nan := math.NaN()
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 9.8}, {9.8, 10, 9.5, 9.6}, {9.6, 10.5, 9.5, 10.2}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMACDLine: {nan, -0.3, -0.1, 0.2},
		},
	}

	rule := ZeroRecross{Key: SeriesMACDLine, Reason: core.ExitMACDZero}
	trig, ok := rule.Evaluate(w)
	if !ok {
		t.Fatal("expected trigger")
	}
	if trig.BarOffset != 3 || trig.Price != 10.2 {
		t.Errorf("got offset %d fill %f", trig.BarOffset, trig.Price)
	}
}

func TestZeroRecross_NeverBelow(t *testing.T) {
	w := Window{
		Bars:       barsFromOHLC([][4]float64{{10, 11, 9, 10}, {10, 11, 9, 10.5}}),
		EntryPrice: 10,
		Side:       core.SideShort,
		Indicators: map[string][]float64{
			SeriesMACDLine: {0.1, 0.2},
		},
	}
	rule := ZeroRecross{Key: SeriesMACDLine, Reason: core.ExitMACDZero}
	if _, ok := rule.Evaluate(w); ok {
		t.Error("a line that never went below zero must not recross")
	}
}
