package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"EGXAdvisor/internal/domain/models"
	domrepo "EGXAdvisor/internal/domain/repository"
	domsvc "EGXAdvisor/internal/domain/service"
	"EGXAdvisor/internal/service/ratelimit"
	"EGXAdvisor/internal/services/indicators"
	"EGXAdvisor/internal/services/quant"
	"EGXAdvisor/internal/services/strategy"
	pkgcache "EGXAdvisor/pkg/cache"
	applogger "EGXAdvisor/pkg/logger"
)

// Warmup floors for the technical indicators. Readings below these bar
// counts are treated as absent rather than noisy.
const (
	rsiPeriod   = 14
	emaSpan     = 50
	macdFast    = 12
	macdSlow    = 26
	macdSignal  = 9
	macdMinBars = macdSlow + macdSignal
)

// Advisor orchestrates one recommendation: load bars, resolve the four
// signal sources, run the decision engine, then journal and cache.
type Advisor struct {
	bars       domrepo.BarStore
	journal    domrepo.JournalStore
	forecaster domsvc.Forecaster
	engine     *strategy.Engine
	cache      pkgcache.Service
	limiter    *ratelimit.Limiter
	metrics    domrepo.Metrics
	logger     *applogger.Logger

	cacheTTL      time.Duration
	riskLookback  int
	varConfidence float64
}

type AdvisorParams struct {
	Bars       domrepo.BarStore
	Journal    domrepo.JournalStore
	Forecaster domsvc.Forecaster
	Engine     *strategy.Engine
	Cache      pkgcache.Service
	Limiter    *ratelimit.Limiter
	Metrics    domrepo.Metrics
	Logger     *applogger.Logger

	CacheTTL     time.Duration
	RiskLookback int
}

func NewAdvisor(p AdvisorParams) *Advisor {
	ttl := p.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	lookback := p.RiskLookback
	if lookback <= 0 {
		lookback = 252
	}
	return &Advisor{
		bars:          p.Bars,
		journal:       p.Journal,
		forecaster:    p.Forecaster,
		engine:        p.Engine,
		cache:         p.Cache,
		limiter:       p.Limiter,
		metrics:       p.Metrics,
		logger:        p.Logger,
		cacheTTL:      ttl,
		riskLookback:  lookback,
		varConfidence: 0.95,
	}
}

// Recommend produces the full recommendation for a symbol over the latest
// n EOD bars. Results are cached; refresh bypasses and overwrites the
// cached copy.
func (a *Advisor) Recommend(ctx context.Context, symbol string, n int, refresh bool) (*models.StrategyRecommendation, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = 250
	}

	key := fmt.Sprintf("advisor:rec:%s:%d", symbol, n)
	if a.cache != nil {
		if refresh {
			_ = a.cache.Delete(ctx, key)
		} else {
			var cached models.StrategyRecommendation
			if err := a.cache.Get(ctx, key, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	start := time.Now()
	series, err := a.loadSeries(ctx, symbol, n)
	if err != nil {
		return nil, err
	}

	in := strategy.Inputs{
		Symbol:       symbol,
		AsOfDate:     series.LatestDate(),
		CurrentPrice: series.LatestClose(),
	}
	closes := series.Closes()
	returns := quant.SimpleReturns(closes)

	in.Technical = resolveTechnical(closes)
	in.Risk = a.resolveRisk(returns)
	in.Regime = a.resolveRegime(returns)
	in.Forecast = a.resolveForecast(ctx, symbol, closes)

	rec, err := a.engine.Recommend(in)
	if err != nil {
		return nil, fmt.Errorf("recommend %s: %w", symbol, err)
	}

	if a.metrics != nil {
		a.metrics.RecordRecommendation(string(rec.Action), symbol)
		a.metrics.RecordLatency("recommend", time.Since(start).Seconds())
	}
	if a.logger != nil {
		a.logger.Info("recommendation produced",
			applogger.String("symbol", symbol),
			applogger.String("action", string(rec.Action)),
			applogger.Int("conviction", rec.Conviction),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	a.journalIfDirectional(ctx, rec)

	if a.cache != nil {
		_ = a.cache.Set(ctx, key, rec, a.cacheTTL)
	}
	return rec, nil
}

// RiskReport builds the standalone VaR/Sharpe snapshot for /api/risk.
func (a *Advisor) RiskReport(ctx context.Context, symbol string, n int) (*models.RiskReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = a.riskLookback
	}
	series, err := a.loadSeries(ctx, symbol, n)
	if err != nil {
		return nil, err
	}

	rep := &models.RiskReport{
		Symbol:       symbol,
		AsOfDate:     series.LatestDate(),
		LookbackDays: n,
	}
	closes := series.Closes()
	returns := quant.SimpleReturns(closes)
	price := series.LatestClose()

	if len(returns) < quant.MinObservationsRisk {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("insufficient history: %d returns, need %d", len(returns), quant.MinObservationsRisk))
		return rep, nil
	}

	if v95, ok := quant.VaR(returns, 0.95); ok {
		rep.VaR95Pct = ptrF(round4(v95))
		rep.VaR95Abs = ptrF(round4(price * -v95))
	}
	if v99, ok := quant.VaR(returns, 0.99); ok {
		rep.VaR99Pct = ptrF(round4(v99))
		rep.VaR99Abs = ptrF(round4(price * -v99))
	}
	if s, ok := quant.Sharpe(returns, 0, 252); ok {
		rep.Sharpe = ptrF(round4(s))
	} else {
		rep.Warnings = append(rep.Warnings, "sharpe unavailable: zero volatility")
	}
	return rep, nil
}

// Validate builds the ADF + Hurst stationarity report for /api/validation.
func (a *Advisor) Validate(ctx context.Context, symbol string, n int) (*models.ValidationReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = a.riskLookback
	}
	series, err := a.loadSeries(ctx, symbol, n)
	if err != nil {
		return nil, err
	}

	rep := &models.ValidationReport{
		Symbol:       symbol,
		AsOfDate:     series.LatestDate(),
		LookbackDays: n,
		Regime:       models.RegimeUnknown,
	}
	returns := quant.SimpleReturns(series.Closes())

	if len(returns) < quant.MinObservationsValidation {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("insufficient history: %d returns, need %d", len(returns), quant.MinObservationsValidation))
		return rep, nil
	}

	if adf, err := quant.ADF(returns); err == nil {
		rep.ADFStatistic = ptrF(round4(adf.Statistic))
		rep.ADFPValue = ptrF(round4(adf.PValue))
		lag := adf.UsedLag
		rep.ADFUsedLag = &lag
	} else {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("adf failed: %v", err))
	}

	if h, ok := quant.Hurst(returns); ok {
		rep.Hurst = ptrF(round4(h.Hurst))
		rep.HurstR2 = ptrF(round4(h.R2))
		rep.Regime = quant.ClassifyRegime(h.Hurst, quant.DefaultHurstTrending, quant.DefaultHurstMeanReverting)
	} else {
		rep.Warnings = append(rep.Warnings, "hurst unavailable: too few usable block sizes")
	}
	return rep, nil
}

func (a *Advisor) loadSeries(ctx context.Context, symbol string, n int) (models.PriceSeries, error) {
	bars, err := a.bars.GetLatestNBars(ctx, symbol, n)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("load bars %s: %w", symbol, err)
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// resolveTechnical computes the indicator readings, leaving any indicator
// nil when the series has not cleared its warmup.
func resolveTechnical(closes []float64) *models.TechnicalSignal {
	t := &models.TechnicalSignal{}
	if len(closes) > rsiPeriod {
		if v, ok := indicators.Latest(indicators.RSI(closes, rsiPeriod)); ok {
			t.RSI = ptrF(v)
		}
	}
	if len(closes) >= macdMinBars {
		line, sig, hist := indicators.MACD(closes, macdFast, macdSlow, macdSignal)
		if v, ok := indicators.Latest(hist); ok {
			t.MACDHist = ptrF(v)
			if lv, ok := indicators.Latest(line); ok {
				t.MACDLine = ptrF(lv)
			}
			if sv, ok := indicators.Latest(sig); ok {
				t.MACDSignal = ptrF(sv)
			}
		}
	}
	if len(closes) >= emaSpan {
		if v, ok := indicators.Latest(indicators.EMA(closes, emaSpan)); ok {
			t.EMA50 = ptrF(v)
		}
	}
	return t
}

func (a *Advisor) resolveRisk(returns []float64) *models.RiskSignal {
	v, ok := quant.VaR(returns, a.varConfidence)
	if !ok {
		return nil
	}
	return &models.RiskSignal{VaR95Pct: v}
}

func (a *Advisor) resolveRegime(returns []float64) *models.RegimeSignal {
	h, ok := quant.Hurst(returns)
	if !ok {
		return nil
	}
	adf, err := quant.ADF(returns)
	if err != nil {
		return nil
	}
	return &models.RegimeSignal{ADFPValue: adf.PValue, Hurst: h.Hurst}
}

// resolveForecast calls the model service. Transport failures and rate
// limiting degrade to a missing source instead of failing the request.
func (a *Advisor) resolveForecast(ctx context.Context, symbol string, closes []float64) *models.ForecastSignal {
	if a.forecaster == nil {
		return nil
	}
	if a.limiter != nil && !a.limiter.Allow("forecast:"+symbol, 10, 1) {
		if a.logger != nil {
			a.logger.Warn("forecast rate limited", applogger.String("symbol", symbol))
		}
		return nil
	}
	f, err := a.forecaster.PredictClose(ctx, symbol, closes)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordError("forecast")
		}
		if a.logger != nil {
			a.logger.Warn("forecast unavailable",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil
	}
	return f
}

// journalIfDirectional appends a frozen snapshot for buy/sell calls.
// Journaling is best effort and never fails the request.
func (a *Advisor) journalIfDirectional(ctx context.Context, rec *models.StrategyRecommendation) {
	if a.journal == nil || rec.Action == models.ActionHold || rec.Geometry == nil {
		return
	}
	e := &models.TradeJournalEntry{
		Symbol:          rec.Symbol,
		AsOfDate:        rec.AsOfDate,
		RecordedAt:      time.Now().UTC(),
		Action:          rec.Action,
		Conviction:      rec.Conviction,
		Regime:          rec.Regime,
		EntryLower:      rec.Geometry.Entry.Lower,
		EntryUpper:      rec.Geometry.Entry.Upper,
		TargetExit:      rec.Geometry.TargetExit,
		StopLoss:        rec.Geometry.StopLoss,
		RiskDistancePct: rec.Geometry.RiskDistancePct,
		LogicSummary:    rec.LogicSummary,
	}
	if err := a.journal.Append(ctx, e); err != nil {
		if a.metrics != nil {
			a.metrics.RecordError("journal")
		}
		if a.logger != nil {
			a.logger.Error("journal append failed",
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
	}
}

// Journal lists persisted directional snapshots, newest first.
func (a *Advisor) Journal(ctx context.Context, symbol string, limit int) ([]models.TradeJournalEntry, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("journal not configured")
	}
	return a.journal.List(ctx, symbol, limit)
}

func ptrF(x float64) *float64 { return &x }

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
