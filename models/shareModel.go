package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share grants InvitedEmail read access to one file. Several rows may exist
// for the same (FileID, InvitedEmail) pair.
type Share struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FileID       uuid.UUID `gorm:"type:uuid;not null;index"`
	InvitedEmail string    `gorm:"not null;index"`
	CreatedAt    time.Time
	ExpiresAt    *time.Time

	File File `gorm:"foreignKey:FileID"`
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Active reports whether the share still grants access at now.
func (s *Share) Active(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}
