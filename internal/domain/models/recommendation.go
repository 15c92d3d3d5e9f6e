package models

import "time"

// StrategyAction is the advisor's final call.
type StrategyAction string

const (
	ActionBuy  StrategyAction = "buy"
	ActionSell StrategyAction = "sell"
	ActionHold StrategyAction = "hold"
)

// RegimeLabel classifies the statistical behavior of a price series.
type RegimeLabel string

const (
	RegimeTrending      RegimeLabel = "trending"
	RegimeMeanReverting RegimeLabel = "mean_reverting"
	RegimeRandomLike    RegimeLabel = "random_like"
	RegimeUnknown       RegimeLabel = "unknown"
)

// EvidenceSource identifies which collaborator produced a signal.
type EvidenceSource string

const (
	SourceMLForecast EvidenceSource = "ml_forecast"
	SourceRSI        EvidenceSource = "rsi"
	SourceMACD       EvidenceSource = "macd"
	SourceEMA        EvidenceSource = "ema"
	SourceVaR        EvidenceSource = "var"
	SourceHurst      EvidenceSource = "hurst"
	SourceADF        EvidenceSource = "adf"
)

// EvidenceDirection is derived from the sign of an evidence score.
type EvidenceDirection string

const (
	DirectionBullish EvidenceDirection = "bullish"
	DirectionBearish EvidenceDirection = "bearish"
	DirectionNeutral EvidenceDirection = "neutral"
)

// EvidenceSignal is one normalized contribution to the recommendation.
// Score is always in [-1, +1]; Weight is the blending weight of the
// signal's group, disclosed but not re-applied per signal.
type EvidenceSignal struct {
	Source    EvidenceSource
	Direction EvidenceDirection
	Score     float64
	Weight    float64
	Summary   string
	RawValue  *float64
}

// EntryZone is the suggested entry price band.
type EntryZone struct {
	Lower float64
	Upper float64
}

// TradeGeometry holds the price levels that only exist for BUY/SELL.
// The four fields are always populated together; HOLD recommendations
// carry a nil *TradeGeometry instead.
type TradeGeometry struct {
	Entry           EntryZone
	TargetExit      float64
	StopLoss        float64
	RiskDistancePct float64 // clamped to [0.5, 10]
}

// GroupScores discloses the per-group scores and blend that produced a
// recommendation, for auditing.
type GroupScores struct {
	ML        float64
	Technical float64
	Regime    float64
	Risk      float64
	Blended   float64
	Alignment float64
}

// StrategyRecommendation is the advisor's sole output. It is built in one
// shot and never mutated afterwards.
type StrategyRecommendation struct {
	Symbol     string
	AsOfDate   time.Time
	Action     StrategyAction
	Conviction int // 0..100
	Regime     RegimeLabel

	// Geometry is non-nil exactly when Action is buy or sell.
	Geometry *TradeGeometry

	Bullish []EvidenceSignal
	Bearish []EvidenceSignal
	Neutral []EvidenceSignal

	LogicSummary string
	Scores       GroupScores
	Weights      map[string]float64
}

// TradeJournalEntry is a frozen snapshot of a directional recommendation,
// persisted by the journaling layer.
type TradeJournalEntry struct {
	Symbol          string
	AsOfDate        time.Time
	RecordedAt      time.Time
	Action          StrategyAction
	Conviction      int
	Regime          RegimeLabel
	EntryLower      float64
	EntryUpper      float64
	TargetExit      float64
	StopLoss        float64
	RiskDistancePct float64
	LogicSummary    string
}
