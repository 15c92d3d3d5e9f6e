package strategy

import (
	"fmt"
	"math"
	"time"

	"EGXAdvisor/internal/domain/models"
)

// Weights are the blending weights of the four evidence groups. They must
// sum to 1.
type Weights struct {
	ML        float64
	Technical float64
	Regime    float64
	Risk      float64
}

// Config holds every tunable of the decision procedure. Two engines with
// the same config and the same inputs always produce the same
// recommendation.
type Config struct {
	Weights Weights

	// SaturationPct is the forecast move at which the ML score saturates
	// to +/-1.
	SaturationPct float64

	BuyThreshold  float64
	SellThreshold float64
	MinConviction int

	// Entry/stop geometry distance bounds, as return fractions.
	MinRiskDistance float64
	MaxRiskDistance float64

	// Risk-first gate: when alignment is at or below GateAlignment and the
	// blended score magnitude is below GateScore, the call is held back.
	GateAlignment float64
	GateScore     float64

	HurstTrending      float64
	HurstMeanReverting float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			ML:        0.35,
			Technical: 0.30,
			Regime:    0.20,
			Risk:      0.15,
		},
		SaturationPct:      0.03,
		BuyThreshold:       0.20,
		SellThreshold:      -0.20,
		MinConviction:      30,
		MinRiskDistance:    0.005,
		MaxRiskDistance:    0.10,
		GateAlignment:      0.50,
		GateScore:          0.55,
		HurstTrending:      0.55,
		HurstMeanReverting: 0.45,
	}
}

// Engine turns resolved signals into a single recommendation. It is pure:
// no clock, no randomness, no I/O.
type Engine struct {
	cfg Config
}

// NewEngine validates the config and builds an engine. Weights that do not
// sum to 1 are a deployment mistake, not a market condition, so they are
// rejected here.
func NewEngine(cfg Config) (*Engine, error) {
	sum := cfg.Weights.ML + cfg.Weights.Technical + cfg.Weights.Regime + cfg.Weights.Risk
	if math.Abs(sum-1.0) > 1e-6 {
		return nil, fmt.Errorf("strategy: weights must sum to 1, got %v", sum)
	}
	if cfg.SaturationPct <= 0 {
		return nil, fmt.Errorf("strategy: saturation pct must be positive, got %v", cfg.SaturationPct)
	}
	if cfg.MinRiskDistance <= 0 || cfg.MaxRiskDistance <= cfg.MinRiskDistance {
		return nil, fmt.Errorf("strategy: invalid risk distance bounds [%v, %v]", cfg.MinRiskDistance, cfg.MaxRiskDistance)
	}
	return &Engine{cfg: cfg}, nil
}

// Inputs are the resolved signals for one symbol at one as-of date. Nil
// pointers mean the source is unavailable; the engine degrades to HOLD
// instead of failing.
type Inputs struct {
	Symbol       string
	AsOfDate     time.Time
	CurrentPrice float64

	Forecast  *models.ForecastSignal
	Technical *models.TechnicalSignal
	Risk      *models.RiskSignal
	Regime    *models.RegimeSignal
}

// Recommend runs the full decision procedure. Business conditions (missing
// signals, bad prices, conflicting evidence) never produce an error; they
// produce a HOLD. The only error is an empty symbol, which is a caller bug.
func (e *Engine) Recommend(in Inputs) (*models.StrategyRecommendation, error) {
	if in.Symbol == "" {
		return nil, fmt.Errorf("strategy: symbol is required")
	}

	rec := &models.StrategyRecommendation{
		Symbol:   in.Symbol,
		AsOfDate: in.AsOfDate,
		Action:   models.ActionHold,
		Regime:   models.RegimeUnknown,
		Weights:  e.weightMap(),
	}

	if in.CurrentPrice <= 0 {
		rec.LogicSummary = fmt.Sprintf("HOLD %s: no price data", in.Symbol)
		return rec, nil
	}

	ml := e.scoreML(in.CurrentPrice, in.Forecast)
	tech := e.scoreTechnical(in.CurrentPrice, in.Technical)
	regime, label := e.scoreRegime(in.Regime)
	risk := e.scoreRisk(in.Risk)
	rec.Regime = label

	groups := []groupResult{ml, tech, regime, risk}
	blended := ml.score*e.cfg.Weights.ML +
		tech.score*e.cfg.Weights.Technical +
		regime.score*e.cfg.Weights.Regime +
		risk.score*e.cfg.Weights.Risk

	alignment := e.alignment(blended, groups)
	conviction := int(math.Round(100 * math.Min(1, math.Abs(blended)) * alignment))

	rec.Scores = models.GroupScores{
		ML:        round4(ml.score),
		Technical: round4(tech.score),
		Regime:    round4(regime.score),
		Risk:      round4(risk.score),
		Blended:   round4(blended),
		Alignment: round4(alignment),
	}
	rec.Conviction = conviction

	for _, g := range groups {
		for _, ev := range g.evidence {
			switch {
			case ev.Score > 0:
				ev.Direction = models.DirectionBullish
				rec.Bullish = append(rec.Bullish, ev)
			case ev.Score < 0:
				ev.Direction = models.DirectionBearish
				rec.Bearish = append(rec.Bearish, ev)
			default:
				ev.Direction = models.DirectionNeutral
				rec.Neutral = append(rec.Neutral, ev)
			}
		}
	}

	action := models.ActionHold
	switch {
	case blended >= e.cfg.BuyThreshold && conviction >= e.cfg.MinConviction:
		action = models.ActionBuy
	case blended <= e.cfg.SellThreshold && conviction >= e.cfg.MinConviction:
		action = models.ActionSell
	}

	// Risk-first gate. Any unavailable source, or weak agreement on a weak
	// score, overrides the directional call.
	var missing []string
	for _, g := range groups {
		if g.missing {
			missing = append(missing, g.name)
		}
	}
	gated := len(missing) > 0 ||
		(alignment <= e.cfg.GateAlignment && math.Abs(blended) < e.cfg.GateScore)
	if gated {
		action = models.ActionHold
	}
	rec.Action = action

	if action != models.ActionHold {
		rec.Geometry = e.buildGeometry(action, in, label)
	}

	rec.LogicSummary = e.buildSummary(rec, groups, missing, gated)
	return rec, nil
}

// alignment is the fraction of groups whose score sign matches the blended
// score sign. A zero group score only counts as agreement when the blend
// itself is zero.
func (e *Engine) alignment(blended float64, groups []groupResult) float64 {
	matching := 0
	for _, g := range groups {
		if sign(g.score) == sign(blended) && (g.score != 0 || blended == 0) {
			matching++
		}
	}
	return float64(matching) / float64(len(groups))
}

func (e *Engine) weightMap() map[string]float64 {
	return map[string]float64{
		"ml":        e.cfg.Weights.ML,
		"technical": e.cfg.Weights.Technical,
		"regime":    e.cfg.Weights.Regime,
		"risk":      e.cfg.Weights.Risk,
	}
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func ptr(x float64) *float64 { return &x }
