package strategy

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"EGXAdvisor/internal/domain/models"
)

func fp(x float64) *float64 { return &x }

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func bullishInputs() Inputs {
	return Inputs{
		Symbol:       "COMI",
		AsOfDate:     time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{Symbol: "COMI", PredictedClose: 51.5},
		Technical: &models.TechnicalSignal{
			RSI:      fp(40),
			MACDHist: fp(0.2),
			EMA50:    fp(48),
		},
		Risk:   &models.RiskSignal{VaR95Pct: -0.018},
		Regime: &models.RegimeSignal{ADFPValue: 0.30, Hurst: 0.62},
	}
}

func TestRecommendBuyAllAligned(t *testing.T) {
	e := mustEngine(t)
	rec, err := e.Recommend(bullishInputs())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("action = %v, want buy (summary: %s)", rec.Action, rec.LogicSummary)
	}
	if rec.Regime != models.RegimeTrending {
		t.Fatalf("regime = %v, want trending", rec.Regime)
	}
	if rec.Scores.Alignment != 1.0 {
		t.Fatalf("alignment = %v, want 1.0", rec.Scores.Alignment)
	}
	if rec.Conviction < 30 {
		t.Fatalf("conviction = %d, want >= 30", rec.Conviction)
	}
	g := rec.Geometry
	if g == nil {
		t.Fatal("buy recommendation must carry geometry")
	}
	// d = 0.018: entry [49.1, 50.225], stop below entry, forecast target.
	if g.Entry.Lower != 49.1 || g.Entry.Upper != 50.225 {
		t.Fatalf("entry zone = [%v, %v]", g.Entry.Lower, g.Entry.Upper)
	}
	if g.StopLoss >= g.Entry.Lower {
		t.Fatalf("stop %v must sit below entry lower %v", g.StopLoss, g.Entry.Lower)
	}
	if g.TargetExit != 51.5 {
		t.Fatalf("target = %v, want forecast 51.5", g.TargetExit)
	}
	if g.RiskDistancePct != 1.8 {
		t.Fatalf("risk distance = %v, want 1.8", g.RiskDistancePct)
	}
	if len(rec.Bullish) == 0 {
		t.Fatal("expected bullish evidence")
	}
}

func TestRecommendSellMeanReverting(t *testing.T) {
	e := mustEngine(t)
	in := Inputs{
		Symbol:       "HRHO",
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{PredictedClose: 48.5},
		Technical: &models.TechnicalSignal{
			RSI:      fp(75),
			MACDHist: fp(-0.25),
			EMA50:    fp(52),
		},
		Risk:   &models.RiskSignal{VaR95Pct: -0.08},
		Regime: &models.RegimeSignal{ADFPValue: 0.02, Hurst: 0.40},
	}
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionSell {
		t.Fatalf("action = %v, want sell (summary: %s)", rec.Action, rec.LogicSummary)
	}
	if rec.Regime != models.RegimeMeanReverting {
		t.Fatalf("regime = %v, want mean_reverting", rec.Regime)
	}
	g := rec.Geometry
	if g == nil {
		t.Fatal("sell recommendation must carry geometry")
	}
	// d = 0.08: entry [49, 54], stop above the band.
	if g.Entry.Lower != 49 || g.Entry.Upper != 54 {
		t.Fatalf("entry zone = [%v, %v]", g.Entry.Lower, g.Entry.Upper)
	}
	if g.StopLoss <= g.Entry.Upper {
		t.Fatalf("stop %v must sit above entry upper %v", g.StopLoss, g.Entry.Upper)
	}
	// EMA50 above price offers no profit on a short; fall back to 1.5d.
	if g.TargetExit != 44 {
		t.Fatalf("target = %v, want 44", g.TargetExit)
	}
}

func TestRecommendConflictGateHolds(t *testing.T) {
	e := mustEngine(t)
	in := Inputs{
		Symbol:       "SWDY",
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{PredictedClose: 51.2}, // +2.4%
		Technical: &models.TechnicalSignal{
			RSI: fp(60), // bearish lean
		},
		Risk:   &models.RiskSignal{VaR95Pct: -0.07},
		Regime: &models.RegimeSignal{ADFPValue: 0.01, Hurst: 0.40},
	}
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("mixed evidence must hold, got %v", rec.Action)
	}
	if rec.Geometry != nil {
		t.Fatal("hold must not carry geometry")
	}
	if rec.Scores.Alignment > 0.5 {
		t.Fatalf("alignment = %v, expected a split vote", rec.Scores.Alignment)
	}
}

func TestRecommendMissingForecastHolds(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.Forecast = nil
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("missing source must hold, got %v", rec.Action)
	}
	if rec.Geometry != nil {
		t.Fatal("hold must not carry geometry")
	}
	if want := "ml_forecast unavailable"; !strings.Contains(rec.LogicSummary, want) {
		t.Fatalf("summary %q must name the missing source", rec.LogicSummary)
	}
}

func TestRecommendLowConvictionHolds(t *testing.T) {
	e := mustEngine(t)
	in := Inputs{
		Symbol:       "ETEL",
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{PredictedClose: 50.225}, // +0.45%
		Technical: &models.TechnicalSignal{
			RSI: fp(47),
		},
		Risk:   &models.RiskSignal{VaR95Pct: -0.04},
		Regime: &models.RegimeSignal{ADFPValue: 0.40, Hurst: 0.62},
	}
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Scores.Alignment != 1.0 {
		t.Fatalf("alignment = %v, want full agreement", rec.Scores.Alignment)
	}
	if rec.Conviction >= 30 {
		t.Fatalf("conviction = %d, expected below the floor", rec.Conviction)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("weak agreement must hold, got %v", rec.Action)
	}
	if rec.Geometry != nil {
		t.Fatal("hold must not carry geometry")
	}
}

func TestRecommendNoPriceData(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.CurrentPrice = 0
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("bad price is a business condition, not an error: %v", err)
	}
	if rec.Action != models.ActionHold || rec.Geometry != nil {
		t.Fatalf("expected bare hold, got %v", rec.Action)
	}
	if !strings.Contains(rec.LogicSummary, "no price data") {
		t.Fatalf("summary %q must mention the missing price", rec.LogicSummary)
	}
}

func TestRecommendEmptySymbol(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.Symbol = ""
	if _, err := e.Recommend(in); err == nil {
		t.Fatal("empty symbol must error")
	}
}

func TestRecommendDeterministic(t *testing.T) {
	e := mustEngine(t)
	a, err := e.Recommend(bullishInputs())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	b, err := e.Recommend(bullishInputs())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs must produce identical recommendations")
	}
}

func TestRiskDistanceClamped(t *testing.T) {
	e := mustEngine(t)

	in := bullishInputs()
	in.Risk = &models.RiskSignal{VaR95Pct: -0.0001}
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionBuy || rec.Geometry == nil {
		t.Fatalf("expected buy with geometry, got %v", rec.Action)
	}
	if rec.Geometry.RiskDistancePct != 0.5 {
		t.Fatalf("risk distance = %v, want floor 0.5", rec.Geometry.RiskDistancePct)
	}

	// A catastrophic VaR is clamped at the ceiling when the rest of the
	// evidence still carries the vote.
	in = Inputs{
		Symbol:       "COMI",
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{PredictedClose: 53},
		Technical:    &models.TechnicalSignal{RSI: fp(20)},
		Risk:         &models.RiskSignal{VaR95Pct: -0.20},
		Regime:       &models.RegimeSignal{ADFPValue: 0.30, Hurst: 0.62},
	}
	rec, err = e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionBuy || rec.Geometry == nil {
		t.Fatalf("expected buy with geometry, got %v (summary: %s)", rec.Action, rec.LogicSummary)
	}
	if rec.Geometry.RiskDistancePct != 10 {
		t.Fatalf("risk distance = %v, want ceiling 10", rec.Geometry.RiskDistancePct)
	}
}

func TestGroupScoresBounded(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.Forecast.PredictedClose = 500 // absurd move still saturates at +1
	in.Technical.MACDHist = fp(100)
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for name, s := range map[string]float64{
		"ml":        rec.Scores.ML,
		"technical": rec.Scores.Technical,
		"regime":    rec.Scores.Regime,
		"risk":      rec.Scores.Risk,
	} {
		if s < -1 || s > 1 {
			t.Fatalf("%s score out of bounds: %v", name, s)
		}
	}
	if rec.Conviction < 0 || rec.Conviction > 100 {
		t.Fatalf("conviction out of bounds: %d", rec.Conviction)
	}
}

func TestZeroScoreGroupBreaksAlignment(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.Regime = &models.RegimeSignal{ADFPValue: 0.30, Hurst: 0.50} // random_like, score 0
	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Regime != models.RegimeRandomLike {
		t.Fatalf("regime = %v, want random_like", rec.Regime)
	}
	if rec.Scores.Alignment != 0.75 {
		t.Fatalf("alignment = %v, a zero group must not count as agreement", rec.Scores.Alignment)
	}
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.ML = 0.50
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("weights not summing to 1 must be rejected")
	}
}

func TestBuySellGeometryMonotone(t *testing.T) {
	e := mustEngine(t)
	rec, err := e.Recommend(bullishInputs())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	g := rec.Geometry
	if g == nil {
		t.Fatal("expected geometry")
	}
	if !(g.StopLoss < g.Entry.Lower && g.Entry.Lower < g.Entry.Upper && g.Entry.Upper < g.TargetExit) {
		t.Fatalf("buy levels out of order: stop=%v entry=[%v,%v] target=%v",
			g.StopLoss, g.Entry.Lower, g.Entry.Upper, g.TargetExit)
	}
}

func TestRecommendMeanRevertingBuyTargetsEMA(t *testing.T) {
	e := mustEngine(t)
	in := Inputs{
		Symbol:       "TMGH",
		AsOfDate:     time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		CurrentPrice: 50,
		Forecast:     &models.ForecastSignal{Symbol: "TMGH", PredictedClose: 51.5},
		Technical: &models.TechnicalSignal{
			RSI:      fp(25),
			MACDHist: fp(0.2),
			EMA50:    fp(53),
		},
		Risk:   &models.RiskSignal{VaR95Pct: -0.02},
		Regime: &models.RegimeSignal{ADFPValue: 0.01, Hurst: 0.40},
	}

	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionBuy {
		t.Fatalf("expected buy, got %s (%s)", rec.Action, rec.LogicSummary)
	}
	if rec.Regime != models.RegimeMeanReverting {
		t.Fatalf("expected mean_reverting, got %s", rec.Regime)
	}
	g := rec.Geometry
	if g == nil {
		t.Fatal("expected geometry")
	}
	// EMA50 sits above price, so it is the mean-reversion exit.
	if g.TargetExit != 53 {
		t.Fatalf("expected target at ema50 53, got %v", g.TargetExit)
	}
	if g.Entry.Lower != 49 || g.Entry.Upper != 50.25 {
		t.Fatalf("unexpected entry [%v, %v]", g.Entry.Lower, g.Entry.Upper)
	}
	if g.StopLoss != 48.02 {
		t.Fatalf("unexpected stop %v", g.StopLoss)
	}
}

func TestRecommendMissingRiskHolds(t *testing.T) {
	e := mustEngine(t)
	in := bullishInputs()
	in.Risk = nil

	rec, err := e.Recommend(in)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("expected hold without risk estimate, got %s", rec.Action)
	}
	if rec.Geometry != nil {
		t.Fatalf("hold carries geometry %+v", rec.Geometry)
	}
	if !strings.Contains(rec.LogicSummary, "risk unavailable") {
		t.Fatalf("summary does not name the missing risk source: %q", rec.LogicSummary)
	}
}

func TestBlendedScoreMonotoneInForecast(t *testing.T) {
	e := mustEngine(t)
	prev := -2.0
	for _, forecast := range []float64{50.2, 50.5, 50.8, 51.1, 51.4} {
		in := bullishInputs()
		in.Forecast = &models.ForecastSignal{Symbol: "COMI", PredictedClose: forecast}
		rec, err := e.Recommend(in)
		if err != nil {
			t.Fatalf("Recommend(%v): %v", forecast, err)
		}
		if rec.Scores.Blended <= prev {
			t.Fatalf("blended %v not above %v for forecast %v", rec.Scores.Blended, prev, forecast)
		}
		prev = rec.Scores.Blended
	}
}
