package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// PriceRepository appends and reads price observations. History is
// append-only: rows are never updated or deleted here.
type PriceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Insert appends one price observation for a game.
func (r *PriceRepository) Insert(ctx context.Context, price *models.GamePrice) error {
	if err := r.db.WithContext(ctx).Create(price).Error; err != nil {
		return fmt.Errorf("inserting price observation for game %s: %w", price.GameID, err)
	}
	return nil
}

// Latest returns the most recent observation for a game, or nil when the
// game has never been scraped.
func (r *PriceRepository) Latest(ctx context.Context, gameID string) (*models.GamePrice, error) {
	var price models.GamePrice
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at DESC, id DESC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest price for game %s: %w", gameID, err)
	}
	return &price, nil
}

// History returns all observations for a game, oldest first.
func (r *PriceRepository) History(ctx context.Context, gameID string) ([]models.GamePrice, error) {
	var prices []models.GamePrice
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at ASC, id ASC").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("reading price history for game %s: %w", gameID, err)
	}
	return prices, nil
}
