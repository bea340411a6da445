package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// GameRepository maps game identifiers and titles to stored game records.
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// FindByID returns the game with the given ID, or nil if none exists.
func (r *GameRepository) FindByID(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding game %s: %w", id, err)
	}
	return &game, nil
}

// FindByTitle returns the game with the given title, or nil if none exists.
func (r *GameRepository) FindByTitle(ctx context.Context, title string) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).First(&game, "title = ?", title).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding game by title %q: %w", title, err)
	}
	return &game, nil
}

// Insert stores a new game. Returns models.ErrGameExists when another game
// with the same title is already tracked, so concurrent discovery runs can
// treat the race as a skip.
func (r *GameRepository) Insert(ctx context.Context, game *models.Game) error {
	err := r.db.WithContext(ctx).Create(game).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrGameExists
	}
	if err != nil {
		return fmt.Errorf("inserting game %q: %w", game.Title, err)
	}
	return nil
}

// List returns all tracked games ordered by title.
func (r *GameRepository) List(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := r.db.WithContext(ctx).Order("title").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}
