package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basit/sharelink/models"
)

// ActivityLogger records who did what to a file. Writing never fails the
// caller; a lost entry is reported to the operator log and metrics instead.
type ActivityLogger struct {
	store ActivityStore
	files FileRegistry
	log   *zap.Logger
	now   Clock
}

func NewActivityLogger(store ActivityStore, files FileRegistry, log *zap.Logger, clock Clock) *ActivityLogger {
	if clock == nil {
		clock = SystemClock
	}
	return &ActivityLogger{store: store, files: files, log: log, now: clock}
}

// Append writes one entry. actor is nil for anonymous public-link visitors.
func (l *ActivityLogger) Append(ctx context.Context, fileID uuid.UUID, actor *uuid.UUID, action models.Action, details, source string) {
	entry := &models.ActivityLog{
		FileID:    fileID,
		UserID:    actor,
		Action:    action,
		Details:   details,
		IPAddress: source,
		CreatedAt: l.now(),
	}

	// The entry is kept even if the client hangs up mid-request.
	if err := l.store.Create(context.WithoutCancel(ctx), entry); err != nil {
		activityWriteFailuresTotal.WithLabelValues(string(action)).Inc()
		l.log.Error("Failed to append activity entry",
			zap.Error(err),
			zap.String("file_id", fileID.String()),
			zap.String("action", string(action)))
		return
	}
	activityEntriesTotal.WithLabelValues(string(action)).Inc()
}

// List returns the file's activity, newest first. Only the owner may read it.
func (l *ActivityLogger) List(ctx context.Context, fileID, ownerID uuid.UUID) ([]models.ActivityLog, error) {
	if _, err := loadOwnedFile(ctx, l.files, fileID, ownerID); err != nil {
		return nil, err
	}

	entries, err := l.store.ListByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

// loadOwnedFile is the owner-only guard shared by settings, sharing and
// activity reads: a missing file is ErrNotFound, someone else's is ErrForbidden.
func loadOwnedFile(ctx context.Context, files FileRegistry, fileID, ownerID uuid.UUID) (*models.File, error) {
	file, err := files.FindByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, ErrNotFound
	}
	if file.UserID != ownerID {
		return nil, ErrForbidden
	}
	return file, nil
}
