package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type File struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	DisplayName   string    `gorm:"not null"`
	StorageKey    string    `gorm:"not null"`
	ContentType   string
	MimeCategory  string
	SizeBytes     int64
	UploadedAt    time.Time `gorm:"not null;index"`
	PublicToken   string    `gorm:"uniqueIndex;not null"`
	LinkExpiresAt *time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// LinkExpired reports whether the public link is past its expiry at now.
// The expiry instant itself is still valid.
func (f *File) LinkExpired(now time.Time) bool {
	return f.LinkExpiresAt != nil && now.After(*f.LinkExpiresAt)
}
