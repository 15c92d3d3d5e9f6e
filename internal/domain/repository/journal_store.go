package repository

import (
	"context"

	"EGXAdvisor/internal/domain/models"
)

// JournalStore persists frozen snapshots of directional recommendations.
type JournalStore interface {
	Append(ctx context.Context, e *models.TradeJournalEntry) error
	List(ctx context.Context, symbol string, limit int) ([]models.TradeJournalEntry, error)
}
