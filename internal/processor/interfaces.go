package processor

import (
	"context"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// GameStore resolves the owning game for a scrape job.
type GameStore interface {
	FindByID(ctx context.Context, id string) (*models.Game, error)
}

// PriceStore abstracts the append-only price history.
type PriceStore interface {
	Insert(ctx context.Context, price *models.GamePrice) error
	Latest(ctx context.Context, gameID string) (*models.GamePrice, error)
}

// Notifier abstracts the outbound notification queue.
type Notifier interface {
	Enqueue(ctx context.Context, event models.NotificationEvent) error
}
