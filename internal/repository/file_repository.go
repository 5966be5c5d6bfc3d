package repository

import (
	"context"

	"gorm.io/gorm"

	"safebox/internal/model"
)

// FileRepository defines persistence for file metadata. Every lookup is
// scoped by owner so a foreign id behaves like a missing one.
type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	FindByIDForUser(ctx context.Context, id, userID uint) (*model.File, error)
	ExistsForUser(ctx context.Context, userID uint, filename string) (bool, error)
	ListByUser(ctx context.Context, userID uint, favoritesOnly bool) ([]model.File, error)
	UpdateFavorite(ctx context.Context, id, userID uint, favorite bool) error
	Delete(ctx context.Context, id, userID uint) error
	Stats(ctx context.Context, userID uint) (*model.StorageStats, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, files FileRepository, activity ActivityRepository) error) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository builds a GORM-backed repository.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ExistsForUser(ctx context.Context, userID uint, filename string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.File{}).
		Where("user_id = ? AND filename = ?", userID, filename).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns newest first. The id tie-break keeps the order stable
// for rows created within the same clock tick.
func (r *fileRepository) ListByUser(ctx context.Context, userID uint, favoritesOnly bool) ([]model.File, error) {
	files := make([]model.File, 0)
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if favoritesOnly {
		q = q.Where("favorite = ?", true)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepository) UpdateFavorite(ctx context.Context, id, userID uint, favorite bool) error {
	res := r.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("favorite", favorite)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero when the value did not change, so confirm the row exists.
		if _, err := r.FindByIDForUser(ctx, id, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *fileRepository) Delete(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.File{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fileRepository) Stats(ctx context.Context, userID uint) (*model.StorageStats, error) {
	var stats model.StorageStats
	if err := r.db.WithContext(ctx).Model(&model.File{}).
		Select("COUNT(*) AS file_count, "+
			"COALESCE(SUM(CASE WHEN favorite THEN 1 ELSE 0 END), 0) AS favorite_count, "+
			"COALESCE(SUM(file_size), 0) AS total_bytes").
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// WithTransaction runs fn with repositories bound to one transaction.
func (r *fileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, files FileRepository, activity ActivityRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &fileRepository{db: tx}, &activityRepository{db: tx})
	})
}
