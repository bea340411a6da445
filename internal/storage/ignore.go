package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamewatch-dev/gamewatch/internal/models"
)

// IgnoreRepository answers whether a title is on the administrative ignore
// list. Entries are curated out of band; discovery only reads them.
type IgnoreRepository struct {
	db *gorm.DB
}

func NewIgnoreRepository(db *gorm.DB) *IgnoreRepository {
	return &IgnoreRepository{db: db}
}

func (r *IgnoreRepository) Contains(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IgnoreEntry{}).
		Where("title = ?", title).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking ignore list for %q: %w", title, err)
	}
	return count > 0, nil
}
