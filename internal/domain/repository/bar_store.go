package repository

import (
	"context"
	"time"

	"EGXAdvisor/internal/domain/models"
)

// BarStore provides read access to EOD price history for the advisor.
type BarStore interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.PriceBar, error)
}
