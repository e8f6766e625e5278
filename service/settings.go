package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/basit/sharelink/models"
)

// LinkSettings is the only writer of a file's public link expiry.
type LinkSettings struct {
	files    FileRegistry
	activity *ActivityLogger
}

func NewLinkSettings(files FileRegistry, activity *ActivityLogger) *LinkSettings {
	return &LinkSettings{files: files, activity: activity}
}

// UpdateLinkExpiry sets or, with nil, clears the public link expiry.
// Concurrent updates are last-writer-wins. The public token never changes.
func (s *LinkSettings) UpdateLinkExpiry(ctx context.Context, fileID, ownerID uuid.UUID, expiresAt *time.Time, source string) error {
	if _, err := loadOwnedFile(ctx, s.files, fileID, ownerID); err != nil {
		return err
	}

	var value *time.Time
	if expiresAt != nil {
		t := expiresAt.UTC()
		value = &t
	}
	if err := s.files.UpdateLinkExpiry(ctx, fileID, value); err != nil {
		return fmt.Errorf("failed to update link expiry: %w", err)
	}

	s.activity.Append(ctx, fileID, &ownerID, models.ActionUpdateSettings, describeExpiry(value), source)
	return nil
}

// Describe returns the owner's own file, public token included.
func (s *LinkSettings) Describe(ctx context.Context, fileID, ownerID uuid.UUID) (*models.File, error) {
	return loadOwnedFile(ctx, s.files, fileID, ownerID)
}

func describeExpiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return "Link expiry removed"
	}
	return "Link expiry set to " + expiresAt.Format(time.RFC1123)
}
