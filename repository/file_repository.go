package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/sharelink/models"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindByID returns nil, nil when the file does not exist.
func (r *FileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// FindByPublicToken matches the token exactly; nil, nil when nothing matches.
func (r *FileRepository) FindByPublicToken(ctx context.Context, token string) (*models.File, error) {
	var file models.File
	if err := r.db.WithContext(ctx).Where("public_token = ?", token).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// ListByOwner returns the owner's files, newest upload first.
func (r *FileRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	var files []models.File
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

// UpdateLinkExpiry overwrites link_expires_at; nil clears it.
func (r *FileRepository) UpdateLinkExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", id).
		Update("link_expires_at", expiresAt).Error
}
