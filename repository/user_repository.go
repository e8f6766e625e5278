package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/sharelink/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID returns nil, nil when the user does not exist.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail expects an already normalised email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByProviderID looks a user up by the OAuth provider's user ID.
func (r *UserRepository) FindByProviderID(ctx context.Context, provider, providerUserID string) (*models.User, error) {
	switch provider {
	case "google":
		return r.findOne(ctx, "google_id = ?", providerUserID)
	case "github":
		return r.findOne(ctx, "git_hub_id = ?", providerUserID)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (r *UserRepository) Updates(ctx context.Context, user *models.User, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(user).Updates(updates).Error
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
