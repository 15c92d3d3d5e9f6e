package strategy

import (
	"math"

	"EGXAdvisor/internal/domain/models"
)

// buildGeometry derives the entry zone, target and stop for a directional
// call. Only called when every signal source resolved, so the forecast and
// VaR inputs are present. All levels share one risk distance d, the VaR95
// magnitude clamped to [MinRiskDistance, MaxRiskDistance].
func (e *Engine) buildGeometry(action models.StrategyAction, in Inputs, regime models.RegimeLabel) *models.TradeGeometry {
	price := in.CurrentPrice
	d := clamp(math.Abs(in.Risk.VaR95Pct), e.cfg.MinRiskDistance, e.cfg.MaxRiskDistance)

	var entry models.EntryZone
	var stop float64
	if action == models.ActionBuy {
		entry = models.EntryZone{Lower: price * (1 - d), Upper: price * (1 + 0.25*d)}
		stop = entry.Lower * (1 - d)
	} else {
		entry = models.EntryZone{Lower: price * (1 - 0.25*d), Upper: price * (1 + d)}
		stop = entry.Upper * (1 + d)
	}

	target := e.targetExit(action, price, d, regime, in)

	return &models.TradeGeometry{
		Entry:           models.EntryZone{Lower: round4(entry.Lower), Upper: round4(entry.Upper)},
		TargetExit:      round4(target),
		StopLoss:        round4(stop),
		RiskDistancePct: round4(d * 100),
	}
}

// targetExit picks the exit level by regime. Trending markets ride toward
// the forecast, capped at 4d from price. Mean-reverting markets target the
// EMA50 when it sits on the profitable side, else a modest 1.5d move.
// Random-like and unknown regimes fall back to the trending formula.
func (e *Engine) targetExit(action models.StrategyAction, price, d float64, regime models.RegimeLabel, in Inputs) float64 {
	forecast := in.Forecast.PredictedClose

	trendTarget := func() float64 {
		if action == models.ActionBuy {
			return math.Min(forecast, price*(1+4*d))
		}
		return math.Max(forecast, price*(1-4*d))
	}

	if regime != models.RegimeMeanReverting {
		return trendTarget()
	}

	ema := in.Technical.EMA50
	if action == models.ActionBuy {
		if ema != nil && *ema > price {
			return *ema
		}
		return price * (1 + 1.5*d)
	}
	if ema != nil && *ema < price {
		return *ema
	}
	return price * (1 - 1.5*d)
}
