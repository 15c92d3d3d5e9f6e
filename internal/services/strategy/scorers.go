package strategy

import (
	"fmt"
	"math"

	"EGXAdvisor/internal/domain/models"
)

// groupResult is one evidence group's contribution before blending.
type groupResult struct {
	name     string
	score    float64
	missing  bool
	evidence []models.EvidenceSignal
}

// scoreML maps the forecasted move to [-1, +1], saturating at
// SaturationPct in either direction.
func (e *Engine) scoreML(price float64, f *models.ForecastSignal) groupResult {
	g := groupResult{name: "ml_forecast"}
	if f == nil {
		g.missing = true
		return g
	}

	pctMove := (f.PredictedClose - price) / price
	g.score = clamp(pctMove/e.cfg.SaturationPct, -1, 1)
	g.evidence = append(g.evidence, models.EvidenceSignal{
		Source:   models.SourceMLForecast,
		Score:    round4(g.score),
		Weight:   e.cfg.Weights.ML,
		RawValue: ptr(round4(f.PredictedClose)),
		Summary:  fmt.Sprintf("model forecasts %+.2f%% move to %.4f", pctMove*100, f.PredictedClose),
	})
	return g
}

// scoreTechnical averages the available indicator sub-scores. RSI maps
// [30, 70] linearly onto [+1, -1] and saturates outside; the MACD histogram
// and the EMA50 gap are scaled relative to price and clamped.
func (e *Engine) scoreTechnical(price float64, t *models.TechnicalSignal) groupResult {
	g := groupResult{name: "technical"}
	if !t.Available() {
		g.missing = true
		return g
	}

	var sum float64
	var count int

	if t.RSI != nil {
		rsi := *t.RSI
		var s float64
		switch {
		case rsi <= 30:
			s = 1
		case rsi >= 70:
			s = -1
		default:
			s = (50 - rsi) / 20
		}
		sum += s
		count++
		g.evidence = append(g.evidence, models.EvidenceSignal{
			Source:   models.SourceRSI,
			Score:    round4(s),
			Weight:   e.cfg.Weights.Technical,
			RawValue: ptr(round4(rsi)),
			Summary:  fmt.Sprintf("rsi %.1f (%s)", rsi, rsiZone(rsi)),
		})
	}

	if t.MACDHist != nil {
		hist := *t.MACDHist
		s := clamp(hist/price*100, -1, 1)
		sum += s
		count++
		g.evidence = append(g.evidence, models.EvidenceSignal{
			Source:   models.SourceMACD,
			Score:    round4(s),
			Weight:   e.cfg.Weights.Technical,
			RawValue: ptr(round4(hist)),
			Summary:  fmt.Sprintf("macd histogram %+.4f", hist),
		})
	}

	if t.EMA50 != nil {
		ema := *t.EMA50
		s := clamp((price-ema)/ema*10, -1, 1)
		sum += s
		count++
		g.evidence = append(g.evidence, models.EvidenceSignal{
			Source:   models.SourceEMA,
			Score:    round4(s),
			Weight:   e.cfg.Weights.Technical,
			RawValue: ptr(round4(ema)),
			Summary:  fmt.Sprintf("price %+.2f%% vs ema50 %.4f", (price-ema)/ema*100, ema),
		})
	}

	if count == 0 {
		g.missing = true
		return g
	}
	g.score = sum / float64(count)
	return g
}

func rsiZone(rsi float64) string {
	switch {
	case rsi <= 30:
		return "oversold"
	case rsi >= 70:
		return "overbought"
	default:
		return "neutral zone"
	}
}

// scoreRegime classifies the Hurst exponent and awards a mild directional
// tilt: trending markets reward momentum entries, mean-reverting markets
// penalize them. The ADF reading is disclosed as neutral context.
func (e *Engine) scoreRegime(r *models.RegimeSignal) (groupResult, models.RegimeLabel) {
	g := groupResult{name: "regime"}
	if r == nil {
		g.missing = true
		return g, models.RegimeUnknown
	}

	var label models.RegimeLabel
	switch {
	case r.Hurst > e.cfg.HurstTrending:
		label = models.RegimeTrending
		g.score = 0.5
	case r.Hurst < e.cfg.HurstMeanReverting:
		label = models.RegimeMeanReverting
		g.score = -0.3
	default:
		label = models.RegimeRandomLike
		g.score = 0
	}

	g.evidence = append(g.evidence, models.EvidenceSignal{
		Source:   models.SourceHurst,
		Score:    round4(g.score),
		Weight:   e.cfg.Weights.Regime,
		RawValue: ptr(round4(r.Hurst)),
		Summary:  fmt.Sprintf("hurst %.3f (%s)", r.Hurst, label),
	})
	g.evidence = append(g.evidence, models.EvidenceSignal{
		Source:   models.SourceADF,
		Score:    0,
		Weight:   e.cfg.Weights.Regime,
		RawValue: ptr(round4(r.ADFPValue)),
		Summary:  fmt.Sprintf("adf p=%.3f (%s at 5%%)", r.ADFPValue, adfVerdict(r.ADFPValue)),
	})
	return g, label
}

func adfVerdict(p float64) string {
	if p <= 0.05 {
		return "stationary"
	}
	return "non-stationary"
}

// scoreRisk interpolates the 1-day VaR95 magnitude piecewise-linearly:
// 0% loss scores +0.5, 5% scores 0, 10% or worse scores -1.
func (e *Engine) scoreRisk(r *models.RiskSignal) groupResult {
	g := groupResult{name: "risk"}
	if r == nil {
		g.missing = true
		return g
	}

	v := math.Abs(r.VaR95Pct)
	switch {
	case v <= 0.05:
		g.score = 0.5 - v/0.05*0.5
	case v <= 0.10:
		g.score = -(v - 0.05) / 0.05
	default:
		g.score = -1
	}

	g.evidence = append(g.evidence, models.EvidenceSignal{
		Source:   models.SourceVaR,
		Score:    round4(g.score),
		Weight:   e.cfg.Weights.Risk,
		RawValue: ptr(round4(r.VaR95Pct)),
		Summary:  fmt.Sprintf("1-day var95 %.2f%% of price", v*100),
	})
	return g
}
