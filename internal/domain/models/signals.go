package models

import "time"

// ForecastSignal is the resolved output of the ML forecast collaborator.
// A nil *ForecastSignal means "forecast unavailable".
type ForecastSignal struct {
	Symbol         string
	PredictedClose float64
	ModelVersion   string
	GeneratedAt    time.Time
}

// TechnicalSignal carries the latest indicator readings. Individual
// indicators may be absent (nil) when the series is too short for them.
type TechnicalSignal struct {
	RSI        *float64
	MACDLine   *float64
	MACDSignal *float64
	MACDHist   *float64
	EMA50      *float64
}

// Available reports whether at least one indicator reading is present.
func (t *TechnicalSignal) Available() bool {
	if t == nil {
		return false
	}
	return t.RSI != nil || t.MACDHist != nil || t.EMA50 != nil
}

// RiskSignal is the resolved 1-day VaR estimate. A nil *RiskSignal means
// the risk source reported insufficient data.
type RiskSignal struct {
	VaR95Pct float64 // negative return, e.g. -0.025 for a 2.5% loss
}

// RegimeSignal is the resolved ADF/Hurst statistical classification.
// A nil *RegimeSignal means insufficient data.
type RegimeSignal struct {
	ADFPValue float64
	Hurst     float64
}

// RiskReport is the full risk snapshot served by /api/risk.
type RiskReport struct {
	Symbol       string
	AsOfDate     time.Time
	LookbackDays int
	VaR95Pct     *float64
	VaR99Pct     *float64
	VaR95Abs     *float64
	VaR99Abs     *float64
	Sharpe       *float64
	Warnings     []string
}

// ValidationReport is the ADF + Hurst validation result served by /api/validation.
type ValidationReport struct {
	Symbol       string
	AsOfDate     time.Time
	LookbackDays int
	ADFStatistic *float64
	ADFPValue    *float64
	ADFUsedLag   *int
	Hurst        *float64
	HurstR2      *float64
	Regime       RegimeLabel
	Warnings     []string
}
