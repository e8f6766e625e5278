package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string
	Email        string  `gorm:"uniqueIndex;not null"`
	PasswordHash *string `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	GoogleID *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GitHubID *string `gorm:"uniqueIndex" json:"github_id,omitempty"`
	Provider *string `json:"provider,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
