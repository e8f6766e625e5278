package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/basit/sharelink/models"
)

var validate = validator.New()

// NormalizeEmail lower-cases and trims an address so that invites and
// logins compare equal regardless of how the address was typed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type ShareService struct {
	files    FileRegistry
	shares   ShareRegistry
	users    UserDirectory
	activity *ActivityLogger
	now      Clock
}

// SharedFile is one entry of a user's "shared with me" list.
type SharedFile struct {
	File       models.File
	OwnerName  string
	OwnerEmail string
	SharedAt   time.Time
	ExpiresAt  *time.Time
}

func NewShareService(files FileRegistry, shares ShareRegistry, users UserDirectory, activity *ActivityLogger, clock Clock) *ShareService {
	if clock == nil {
		clock = SystemClock
	}
	return &ShareService{
		files:    files,
		shares:   shares,
		users:    users,
		activity: activity,
		now:      clock,
	}
}

// Invite grants invitedEmail read access to the owner's file. Inviting
// yourself is rejected before anything else is looked at.
func (s *ShareService) Invite(ctx context.Context, fileID, ownerID uuid.UUID, invitedEmail, source string) (*models.Share, error) {
	email := NormalizeEmail(invitedEmail)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid email address", ErrInvalidArgument, invitedEmail)
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner != nil && NormalizeEmail(owner.Email) == email {
		return nil, fmt.Errorf("%w: you cannot share a file with yourself", ErrInvalidArgument)
	}

	file, err := loadOwnedFile(ctx, s.files, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	share := &models.Share{
		FileID:       file.ID,
		InvitedEmail: email,
		CreatedAt:    s.now(),
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.activity.Append(ctx, file.ID, &ownerID, models.ActionShare, "Shared with "+email, source)
	return share, nil
}

// ListSharedWithMe returns one entry per unexpired share to email, most
// recent share first. A file invited twice shows up twice.
func (s *ShareService) ListSharedWithMe(ctx context.Context, email string) ([]SharedFile, error) {
	shares, err := s.shares.ListActiveByEmail(ctx, NormalizeEmail(email), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shared files: %w", err)
	}

	result := make([]SharedFile, 0, len(shares))
	for _, share := range shares {
		result = append(result, SharedFile{
			File:       share.File,
			OwnerName:  share.File.User.Name,
			OwnerEmail: share.File.User.Email,
			SharedAt:   share.CreatedAt,
			ExpiresAt:  share.ExpiresAt,
		})
	}
	return result, nil
}

// ListShares returns everyone a file was shared with. Owner only.
func (s *ShareService) ListShares(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.Share, error) {
	if _, err := loadOwnedFile(ctx, s.files, fileID, ownerID); err != nil {
		return nil, err
	}
	shares, err := s.shares.ListByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}
