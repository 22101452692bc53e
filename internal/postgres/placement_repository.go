package postgres

import (
	"context"

	"ecobins/internal/model"

	"gorm.io/gorm"
)

// PlacementRepository stores the placement audit trail
type PlacementRepository struct {
	db *gorm.DB
}

func NewPlacementRepository(db *gorm.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

func (r *PlacementRepository) Save(ctx context.Context, p *model.PlacementPG) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// RecentByUser returns the newest placements of a user first
func (r *PlacementRepository) RecentByUser(ctx context.Context, userID int64, limit int) ([]model.PlacementPG, error) {
	var rows []model.PlacementPG
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
