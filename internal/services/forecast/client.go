package forecast

import (
	"context"
	"fmt"
	"time"

	"EGXAdvisor/internal/domain/models"
	domsvc "EGXAdvisor/internal/domain/service"
	"EGXAdvisor/pkg/config"
)

// HTTPForecaster calls the external ML model service for a next-session
// close prediction.
type HTTPForecaster struct {
	base    *HTTPServiceBase
	retries int
}

func NewHTTPForecaster(cfg *config.Config) *HTTPForecaster {
	retries := cfg.Forecast.Retries
	if retries <= 0 {
		retries = 3
	}
	return &HTTPForecaster{base: NewHTTPServiceBase(cfg), retries: retries}
}

type predictRequest struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

type predictResponse struct {
	PredictedClose *float64 `json:"predicted_close"`
	ModelVersion   string   `json:"model_version"`
}

// PredictClose returns a nil signal when the model declines to forecast
// (for example on insufficient history); transport failures are errors.
func (f *HTTPForecaster) PredictClose(ctx context.Context, symbol string, closes []float64) (*models.ForecastSignal, error) {
	var pr predictResponse
	req := predictRequest{Symbol: symbol, Closes: closes}
	if err := f.base.PostJSONWithRetry(ctx, "/forecast/close", req, &pr, f.retries); err != nil {
		return nil, fmt.Errorf("post forecast: %w", err)
	}
	if pr.PredictedClose == nil {
		return nil, nil
	}
	return &models.ForecastSignal{
		Symbol:         symbol,
		PredictedClose: *pr.PredictedClose,
		ModelVersion:   pr.ModelVersion,
		GeneratedAt:    time.Now(),
	}, nil
}

var _ domsvc.Forecaster = (*HTTPForecaster)(nil)
