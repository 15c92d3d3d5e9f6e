package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"EGXAdvisor/internal/domain/models"
	"EGXAdvisor/internal/service/ratelimit"
	"EGXAdvisor/internal/services/strategy"
	pkgcache "EGXAdvisor/pkg/cache"
)

type fakeBars struct {
	bars  []models.PriceBar
	calls int
}

func (f *fakeBars) GetBars(_ context.Context, _ string, _, _ time.Time) ([]models.PriceBar, error) {
	return f.bars, nil
}

func (f *fakeBars) GetLatestNBars(_ context.Context, _ string, n int) ([]models.PriceBar, error) {
	f.calls++
	if n > len(f.bars) {
		n = len(f.bars)
	}
	return f.bars[len(f.bars)-n:], nil
}

type fakeJournal struct {
	entries []models.TradeJournalEntry
}

func (f *fakeJournal) Append(_ context.Context, e *models.TradeJournalEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeJournal) List(_ context.Context, symbol string, limit int) ([]models.TradeJournalEntry, error) {
	out := make([]models.TradeJournalEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if symbol == "" || e.Symbol == symbol {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeForecaster struct {
	movePct float64
}

func (f *fakeForecaster) PredictClose(_ context.Context, symbol string, closes []float64) (*models.ForecastSignal, error) {
	last := closes[len(closes)-1]
	return &models.ForecastSignal{
		Symbol:         symbol,
		PredictedClose: last * (1 + f.movePct),
		ModelVersion:   "test",
	}, nil
}

// syntheticBars builds a gently drifting series with enough history for
// every signal source to resolve.
func syntheticBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := 50 + 0.01*float64(i) + 0.5*math.Sin(float64(i)/7)
		bars[i] = models.PriceBar{
			Date:   day.AddDate(0, 0, i),
			Symbol: "COMI",
			Open:   p,
			High:   p + 0.2,
			Low:    p - 0.2,
			Close:  p,
			Volume: 100000,
		}
	}
	return bars
}

func newTestAdvisor(t *testing.T, bars *fakeBars, journal *fakeJournal, fc *fakeForecaster) *Advisor {
	t.Helper()
	engine, err := strategy.NewEngine(strategy.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	p := AdvisorParams{
		Bars:    bars,
		Journal: journal,
		Engine:  engine,
		Cache:   pkgcache.NewMemoryCache(),
		Limiter: ratelimit.New(),
	}
	if fc != nil {
		p.Forecaster = fc
	}
	return NewAdvisor(p)
}

func TestRecommendGeometryMatchesAction(t *testing.T) {
	bars := &fakeBars{bars: syntheticBars(300)}
	journal := &fakeJournal{}
	a := newTestAdvisor(t, bars, journal, &fakeForecaster{movePct: 0.02})

	rec, err := a.Recommend(context.Background(), "COMI", 300, false)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Symbol != "COMI" {
		t.Fatalf("unexpected symbol %q", rec.Symbol)
	}
	directional := rec.Action == models.ActionBuy || rec.Action == models.ActionSell
	if directional && rec.Geometry == nil {
		t.Fatalf("directional action %s without geometry", rec.Action)
	}
	if !directional && rec.Geometry != nil {
		t.Fatalf("hold carries geometry %+v", rec.Geometry)
	}
	if directional && len(journal.entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(journal.entries))
	}
	if !directional && len(journal.entries) != 0 {
		t.Fatalf("hold was journaled")
	}
}

func TestRecommendServesSecondCallFromCache(t *testing.T) {
	bars := &fakeBars{bars: syntheticBars(300)}
	a := newTestAdvisor(t, bars, &fakeJournal{}, &fakeForecaster{movePct: 0.02})

	first, err := a.Recommend(context.Background(), "COMI", 300, false)
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	second, err := a.Recommend(context.Background(), "COMI", 300, false)
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if bars.calls != 1 {
		t.Fatalf("expected 1 bar load, got %d", bars.calls)
	}
	if first.Action != second.Action || first.Conviction != second.Conviction {
		t.Fatalf("cached result diverged: %v/%d vs %v/%d",
			first.Action, first.Conviction, second.Action, second.Conviction)
	}
}

func TestRecommendRefreshBypassesCache(t *testing.T) {
	bars := &fakeBars{bars: syntheticBars(300)}
	a := newTestAdvisor(t, bars, &fakeJournal{}, &fakeForecaster{movePct: 0.02})

	if _, err := a.Recommend(context.Background(), "COMI", 300, false); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if _, err := a.Recommend(context.Background(), "COMI", 300, true); err != nil {
		t.Fatalf("refresh Recommend: %v", err)
	}
	if bars.calls != 2 {
		t.Fatalf("expected refresh to reload bars, got %d loads", bars.calls)
	}
}

func TestRecommendHoldsWithoutForecaster(t *testing.T) {
	bars := &fakeBars{bars: syntheticBars(300)}
	a := newTestAdvisor(t, bars, &fakeJournal{}, nil)

	rec, err := a.Recommend(context.Background(), "COMI", 300, false)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Action != models.ActionHold {
		t.Fatalf("expected hold without forecaster, got %s", rec.Action)
	}
	if rec.Geometry != nil {
		t.Fatalf("hold carries geometry")
	}
}

func TestRecommendEmptySymbol(t *testing.T) {
	a := newTestAdvisor(t, &fakeBars{bars: syntheticBars(300)}, &fakeJournal{}, nil)
	if _, err := a.Recommend(context.Background(), "", 300, false); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestRiskReportInsufficientHistory(t *testing.T) {
	a := newTestAdvisor(t, &fakeBars{bars: syntheticBars(30)}, &fakeJournal{}, nil)

	rep, err := a.RiskReport(context.Background(), "COMI", 30)
	if err != nil {
		t.Fatalf("RiskReport: %v", err)
	}
	if len(rep.Warnings) == 0 {
		t.Fatalf("expected insufficient-history warning")
	}
	if rep.VaR95Pct != nil {
		t.Fatalf("expected nil VaR on short history")
	}
}

func TestRiskReportFullHistory(t *testing.T) {
	a := newTestAdvisor(t, &fakeBars{bars: syntheticBars(300)}, &fakeJournal{}, nil)

	rep, err := a.RiskReport(context.Background(), "COMI", 300)
	if err != nil {
		t.Fatalf("RiskReport: %v", err)
	}
	if rep.VaR95Pct == nil || rep.VaR99Pct == nil {
		t.Fatalf("expected VaR estimates, got %+v", rep)
	}
	if *rep.VaR95Pct > 0 {
		t.Fatalf("VaR95 should be a loss, got %v", *rep.VaR95Pct)
	}
}

func TestValidateReportsRegime(t *testing.T) {
	a := newTestAdvisor(t, &fakeBars{bars: syntheticBars(300)}, &fakeJournal{}, nil)

	rep, err := a.Validate(context.Background(), "COMI", 300)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if rep.Hurst == nil {
		t.Fatalf("expected hurst estimate: %+v", rep.Warnings)
	}
	if rep.Regime == models.RegimeUnknown {
		t.Fatalf("expected a classified regime")
	}
}
