package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/sharelink/models"
)

type ShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create always inserts; repeated invites for the same email are separate rows.
func (r *ShareRepository) Create(ctx context.Context, share *models.Share) error {
	return r.db.WithContext(ctx).Create(share).Error
}

// FindActive returns a share of fileID to email that has not expired at now,
// or nil, nil.
func (r *ShareRepository) FindActive(ctx context.Context, fileID uuid.UUID, email string, now time.Time) (*models.Share, error) {
	var share models.Share
	err := r.db.WithContext(ctx).
		Where("file_id = ? AND invited_email = ? AND (expires_at IS NULL OR expires_at > ?)", fileID, email, now).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &share, nil
}

// ListActiveByEmail returns every unexpired share to email with its file and
// the file's owner, most recent share first.
func (r *ShareRepository) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]models.Share, error) {
	var shares []models.Share
	err := r.db.WithContext(ctx).
		Preload("File.User").
		Where("invited_email = ? AND (expires_at IS NULL OR expires_at > ?)", email, now).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// ListByFile returns all shares of a file, most recent first.
func (r *ShareRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.Share, error) {
	var shares []models.Share
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}
