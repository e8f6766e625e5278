package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/basit/sharelink/models"
)

// Lookups return nil, nil when nothing matches.

type FileRegistry interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	FindByPublicToken(ctx context.Context, token string) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.File, error)
	UpdateLinkExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time) error
}

type ShareRegistry interface {
	Create(ctx context.Context, share *models.Share) error
	FindActive(ctx context.Context, fileID uuid.UUID, email string, now time.Time) (*models.Share, error)
	ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]models.Share, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.Share, error)
}

type ActivityStore interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]models.ActivityLog, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Clock returns the current time. Tests substitute a fixed one.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Identity is an authenticated caller, passed explicitly into every check.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
