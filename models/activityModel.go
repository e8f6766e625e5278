package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Action string

const (
	ActionView           Action = "view"
	ActionDownload       Action = "download"
	ActionShare          Action = "share"
	ActionUpdateSettings Action = "update_settings"
)

// ActivityLog rows are written once and never updated. A nil UserID is an
// anonymous public-link visitor.
type ActivityLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FileID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	Action    Action     `gorm:"type:varchar(32);not null"`
	Details   string
	IPAddress string
	CreatedAt time.Time `gorm:"index"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
