package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PushLog records one dispatcher send attempt per row, successful or not.
type PushLog struct {
	gorm.Model

	DeadlineID uint   `gorm:"not null;index"`
	UserID     uint   `gorm:"not null;index"`
	Status     string `gorm:"not null"` // "sent", "failed"
	Message    string
	Payload    datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Deadline Deadline `gorm:"foreignKey:DeadlineID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
