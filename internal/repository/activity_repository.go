package repository

import (
	"context"

	"gorm.io/gorm"

	"safebox/internal/model"
)

// ActivityRepository appends and reads the per-user audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	Recent(ctx context.Context, userID uint, limit int) ([]model.ActivityLog, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository builds a GORM-backed repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Append inserts inside its own (nested) transaction. When the repository is
// bound to an outer transaction GORM uses a savepoint, so a failed insert
// rolls back only itself.
func (r *activityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

func (r *activityRepository) Recent(ctx context.Context, userID uint, limit int) ([]model.ActivityLog, error) {
	entries := make([]model.ActivityLog, 0, limit)
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
