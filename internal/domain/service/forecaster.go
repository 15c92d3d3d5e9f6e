package service

import (
	"context"

	"EGXAdvisor/internal/domain/models"
)

// Forecaster predicts the next-session close for a symbol from its close
// history. Implementations must return a nil signal (not an error) when the
// model declines to forecast, so the advisor can degrade to HOLD.
type Forecaster interface {
	PredictClose(ctx context.Context, symbol string, closes []float64) (*models.ForecastSignal, error)
}
