package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/sharelink/models"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByFile returns the file's activity, newest first.
func (r *ActivityRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
